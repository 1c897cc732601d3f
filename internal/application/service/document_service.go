package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/quickbill-api/internal/domain/entity"
	"github.com/sangkips/quickbill-api/internal/domain/repository"
	"github.com/sangkips/quickbill-api/pkg/apperror"
	"github.com/sangkips/quickbill-api/pkg/format"
)

// DocumentTitle heads every rendered invoice.
const DocumentTitle = "FACTURA"

// RenderDocument projects an invoice into its display form. Rows keep the
// order of the invoice items; amounts come from the totals calculator and
// every string from the formatter.
func RenderDocument(inv *entity.Invoice) *entity.Document {
	if inv == nil {
		return nil
	}

	rows := make([]entity.DocumentRow, len(inv.Items))
	for i, it := range inv.Items {
		rows[i] = entity.DocumentRow{
			Description: it.Description,
			Quantity:    format.Number(it.Quantity),
			UnitPrice:   format.Currency(it.UnitPrice),
			Amount:      format.Currency(it.Amount()),
		}
	}

	t := inv.Totals()
	return &entity.Document{
		Title:     DocumentTitle,
		Issuer:    documentParty(inv.Issuer),
		Recipient: documentParty(inv.Recipient),
		Meta: entity.DocumentMeta{
			Number:    inv.InvoiceNumber,
			IssueDate: format.Date(inv.IssueDate.Time),
			DueDate:   format.Date(inv.DueDate.Time),
		},
		Rows: rows,
		Totals: entity.DocumentTotals{
			Subtotal:     format.Currency(t.Subtotal),
			TaxLabel:     format.TaxLabel(inv.TaxRatePercent),
			TaxAmount:    format.Currency(t.TaxAmount),
			Total:        format.Currency(t.Total),
			Currency:     format.CurrencyCode(),
			RawSubtotal:  t.Subtotal,
			RawTaxAmount: t.TaxAmount,
			RawTotal:     t.Total,
		},
		Notes: strings.TrimSpace(inv.Notes),
	}
}

func documentParty(p entity.Party) entity.DocumentParty {
	country := ""
	if p.Country.IsValid() {
		country = p.Country.String()
	}
	return entity.DocumentParty{
		Name:       p.Name,
		TaxID:      p.TaxID,
		Address:    p.Address,
		City:       p.City,
		PostalCode: p.PostalCode,
		Country:    country,
		Email:      p.Email,
		Phone:      p.Phone,
	}
}

// DocumentService renders stored invoices.
type DocumentService struct {
	invoiceRepo repository.InvoiceRepository
}

// NewDocumentService creates a new document service
func NewDocumentService(invoiceRepo repository.InvoiceRepository) *DocumentService {
	return &DocumentService{invoiceRepo: invoiceRepo}
}

// GetDocument loads an invoice of the current owner and renders it.
func (s *DocumentService) GetDocument(ctx context.Context, id uuid.UUID) (*entity.Document, *entity.Invoice, error) {
	inv, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if inv == nil {
		return nil, nil, apperror.NewNotFoundError("Invoice")
	}
	return RenderDocument(inv), inv, nil
}
