package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sangkips/quickbill-api/internal/domain/entity"
	"github.com/sangkips/quickbill-api/pkg/pagination"
)

// ErrDuplicateInvoiceNumber is returned by Create when the owner already
// stored an invoice with the same number.
var ErrDuplicateInvoiceNumber = errors.New("invoice number already exists")

// InvoiceRepository defines the interface for invoice data operations.
// Reads are limited to the owner carried by the context.
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *entity.Invoice) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Invoice, error)
	GetByNumber(ctx context.Context, number string) (*entity.Invoice, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params *InvoiceFilterParams) ([]entity.Invoice, int64, error)
	CountByUser(ctx context.Context, userID uuid.UUID) (int64, error)
	CountByAnonymous(ctx context.Context, anonymousID string) (int64, error)
}

// InvoiceFilterParams contains filtering parameters for invoice queries
type InvoiceFilterParams struct {
	Pagination *pagination.PaginationParams
	Search     string
	SortBy     string
	SortOrder  string
}
