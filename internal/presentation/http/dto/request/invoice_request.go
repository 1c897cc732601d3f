package request

import (
	"github.com/sangkips/quickbill-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// EditInvoiceRequest applies one edit to a draft held by the client
type EditInvoiceRequest struct {
	Invoice entity.Invoice   `json:"invoice"`
	Op      string           `json:"op" binding:"required"`
	Index   int              `json:"index" binding:"min=0"`
	To      int              `json:"to" binding:"min=0"`
	Value   string           `json:"value"`
	Party   *entity.Party    `json:"party"`
	Item    *entity.LineItem `json:"item"`
	TaxRate *decimal.Decimal `json:"tax_rate_percent"`
}

// ListInvoicesQuery represents the invoice list query string
type ListInvoicesQuery struct {
	Page      int    `form:"page"`
	PerPage   int    `form:"per_page"`
	Search    string `form:"search"`
	SortBy    string `form:"sort_by" binding:"omitempty,oneof=invoice_number issue_date created_at"`
	SortOrder string `form:"sort_order" binding:"omitempty,oneof=asc desc"`
}

// ExportInvoiceRequest controls where an exported PDF is kept
type ExportInvoiceRequest struct {
	Store *bool `json:"store"`
}

// CheckoutRequest starts the paid plan checkout
type CheckoutRequest struct {
	ReturnURL string `json:"return_url" binding:"omitempty,url"`
}
