// Package format renders dates and amounts for invoice documents. Every
// string uses the same es-ES convention so line amounts and totals always
// read consistently.
package format

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
)

const (
	dateLayout  = "02/01/2006"
	nbsp        = "\u00a0"
	decimalSep  = ","
	groupSep    = "."
	minGrouping = 5
)

// Locale is the display locale for every rendered document.
var Locale = language.MustParse("es-ES")

var (
	currencyUnit = mustCurrency(Locale)
	symbols      = map[string]string{
		"EUR": "€",
		"USD": "$",
		"MXN": "$",
	}
)

func mustCurrency(tag language.Tag) currency.Unit {
	unit, conf := currency.FromTag(tag)
	if conf == language.No {
		return currency.EUR
	}
	return unit
}

// CurrencyCode returns the ISO 4217 code used for every amount.
func CurrencyCode() string {
	return currencyUnit.String()
}

// Date renders t as dd/mm/yyyy. The zero time renders as an empty string.
func Date(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

// Currency renders an amount rounded to cents, e.g. "1234,56 €" or
// "12.345,00 €". The symbol is separated by a no-break space and grouping
// starts at five integer digits, as the es locale does.
func Currency(amount decimal.Decimal) string {
	rounded := amount.Round(2)
	negative := rounded.IsNegative()

	intPart, fracPart, _ := strings.Cut(rounded.Abs().StringFixed(2), ".")

	var b strings.Builder
	if negative {
		b.WriteString("-")
	}
	b.WriteString(group(intPart))
	b.WriteString(decimalSep)
	b.WriteString(fracPart)
	b.WriteString(nbsp)
	b.WriteString(symbol())
	return b.String()
}

// Number renders a plain decimal with the locale decimal separator and no
// trailing zeros, e.g. quantities "2" or "1,5".
func Number(d decimal.Decimal) string {
	return strings.Replace(d.String(), ".", decimalSep, 1)
}

// Percent renders a tax rate label without the percent sign, e.g. "21".
func Percent(rate decimal.Decimal) string {
	return Number(rate)
}

// TaxLabel renders the tax row label, e.g. "IVA (21%)".
func TaxLabel(rate decimal.Decimal) string {
	return "IVA (" + Percent(rate) + "%)"
}

func symbol() string {
	if s, ok := symbols[currencyUnit.String()]; ok {
		return s
	}
	return currencyUnit.String()
}

func group(digits string) string {
	if len(digits) < minGrouping {
		return digits
	}

	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteString(groupSep)
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
