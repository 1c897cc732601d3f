package totals

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Line is a single priced row that contributes to an invoice total.
type Line struct {
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
}

// Amount returns quantity * unit price.
func (l Line) Amount() decimal.Decimal {
	return l.Quantity.Mul(l.UnitPrice)
}

// Totals holds the derived amounts of an invoice. Values are exact; rounding
// happens only when they are formatted for display.
type Totals struct {
	Subtotal  decimal.Decimal `json:"subtotal"`
	TaxAmount decimal.Decimal `json:"tax_amount"`
	Total     decimal.Decimal `json:"total"`
}

// Compute sums the line amounts and applies the tax rate (a percentage).
// An empty slice yields zero for every field.
func Compute(lines []Line, taxRatePercent decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.Amount())
	}

	tax := subtotal.Mul(taxRatePercent).Div(hundred)

	return Totals{
		Subtotal:  subtotal,
		TaxAmount: tax,
		Total:     subtotal.Add(tax),
	}
}
