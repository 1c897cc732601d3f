package entity

import "github.com/shopspring/decimal"

// DocumentParty is a formatted issuer or recipient block.
type DocumentParty struct {
	Name       string `json:"name"`
	TaxID      string `json:"tax_id"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
}

// DocumentMeta identifies the invoice on the document.
type DocumentMeta struct {
	Number    string `json:"number"`
	IssueDate string `json:"issue_date"`
	DueDate   string `json:"due_date"`
}

// DocumentRow is a formatted line of the item table.
type DocumentRow struct {
	Description string `json:"description"`
	Quantity    string `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	Amount      string `json:"amount"`
}

// DocumentTotals is the formatted totals block. The raw amounts travel
// along so exporters never recompute them.
type DocumentTotals struct {
	Subtotal     string          `json:"subtotal"`
	TaxLabel     string          `json:"tax_label"`
	TaxAmount    string          `json:"tax_amount"`
	Total        string          `json:"total"`
	Currency     string          `json:"currency"`
	RawSubtotal  decimal.Decimal `json:"raw_subtotal"`
	RawTaxAmount decimal.Decimal `json:"raw_tax_amount"`
	RawTotal     decimal.Decimal `json:"raw_total"`
}

// Document is the display form of an invoice. It is a value object built
// on demand and never stored.
type Document struct {
	Title     string         `json:"title"`
	Issuer    DocumentParty  `json:"issuer"`
	Recipient DocumentParty  `json:"recipient"`
	Meta      DocumentMeta   `json:"meta"`
	Rows      []DocumentRow  `json:"rows"`
	Totals    DocumentTotals `json:"totals"`
	Notes     string         `json:"notes,omitempty"`
}

// HasNotes reports whether the notes block is shown.
func (d *Document) HasNotes() bool {
	return d.Notes != ""
}
