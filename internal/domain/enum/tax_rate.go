package enum

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// TaxRate is one of the VAT rates an invoice may apply.
type TaxRate int

const (
	TaxRateExempt       TaxRate = 0
	TaxRateSuperReduced TaxRate = 4
	TaxRateReduced      TaxRate = 10
	TaxRateGeneral      TaxRate = 21
)

// DefaultTaxRate is applied to new drafts.
const DefaultTaxRate = TaxRateGeneral

// TaxRates lists the allowed rates in display order.
func TaxRates() []TaxRate {
	return []TaxRate{TaxRateExempt, TaxRateSuperReduced, TaxRateReduced, TaxRateGeneral}
}

func (t TaxRate) String() string {
	switch t {
	case TaxRateExempt:
		return "Exento"
	case TaxRateSuperReduced:
		return "Superreducido"
	case TaxRateReduced:
		return "Reducido"
	case TaxRateGeneral:
		return "General"
	}
	return ""
}

// Percent returns the rate as a percentage, e.g. 21.
func (t TaxRate) Percent() decimal.Decimal {
	return decimal.NewFromInt(int64(t))
}

func (t TaxRate) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]interface{}{
		"name":    t.String(),
		"percent": int(t),
	})
}

// IsAllowedTaxRate reports whether percent matches one of TaxRates.
func IsAllowedTaxRate(percent decimal.Decimal) bool {
	for _, t := range TaxRates() {
		if t.Percent().Equal(percent) {
			return true
		}
	}
	return false
}
