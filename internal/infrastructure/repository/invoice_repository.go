package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/quickbill-api/internal/domain/entity"
	domainRepo "github.com/sangkips/quickbill-api/internal/domain/repository"
	"gorm.io/gorm"
)

var invoiceSortColumns = map[string]string{
	"created_at":     "created_at",
	"issue_date":     "issue_date",
	"invoice_number": "invoice_number",
}

type invoiceRepository struct {
	db *gorm.DB
}

// NewInvoiceRepository creates a new invoice repository
func NewInvoiceRepository(db *gorm.DB) domainRepo.InvoiceRepository {
	return &invoiceRepository{db: db}
}

func (r *invoiceRepository) Create(ctx context.Context, invoice *entity.Invoice) error {
	invoice.NumberPositions()
	err := r.db.WithContext(ctx).Create(invoice).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domainRepo.ErrDuplicateInvoiceNumber
	}
	return err
}

func (r *invoiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	var invoice entity.Invoice
	err := r.db.WithContext(ctx).
		Scopes(OwnerScope(ctx)).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		First(&invoice, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &invoice, err
}

func (r *invoiceRepository) GetByNumber(ctx context.Context, number string) (*entity.Invoice, error) {
	var invoice entity.Invoice
	err := r.db.WithContext(ctx).
		Scopes(OwnerScope(ctx)).
		First(&invoice, "invoice_number = ?", number).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &invoice, err
}

func (r *invoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Scopes(OwnerScope(ctx)).Delete(&entity.Invoice{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		return tx.Delete(&entity.LineItem{}, "invoice_id = ?", id).Error
	})
}

func (r *invoiceRepository) List(ctx context.Context, params *domainRepo.InvoiceFilterParams) ([]entity.Invoice, int64, error) {
	var invoices []entity.Invoice
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Invoice{}).Scopes(OwnerScope(ctx))

	if params.Search != "" {
		like := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where("LOWER(invoice_number) LIKE ? OR LOWER(recipient_name) LIKE ?", like, like)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sortBy := "created_at"
	if col, ok := invoiceSortColumns[params.SortBy]; ok {
		sortBy = col
	}
	sortOrder := "DESC"
	if strings.EqualFold(params.SortOrder, "asc") {
		sortOrder = "ASC"
	}

	params.Pagination.Validate()
	err := query.Offset(params.Pagination.Offset()).Limit(params.Pagination.PerPage).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Order(sortBy + " " + sortOrder).
		Find(&invoices).Error

	return invoices, total, err
}

func (r *invoiceRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Invoice{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

func (r *invoiceRepository) CountByAnonymous(ctx context.Context, anonymousID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Invoice{}).
		Where("anonymous_id = ? AND user_id IS NULL", anonymousID).
		Count(&count).Error
	return count, err
}
