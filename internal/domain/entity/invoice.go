package entity

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/sangkips/quickbill-api/internal/domain/enum"
	"github.com/sangkips/quickbill-api/pkg/apperror"
	"github.com/sangkips/quickbill-api/pkg/totals"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	// ErrLastItem is returned when removing the only remaining line item.
	ErrLastItem = errors.New("an invoice must have at least one item")
	// ErrItemIndex is returned for an edit that targets a missing line item.
	ErrItemIndex = errors.New("line item index out of range")
)

// Party is the issuer or the recipient of an invoice.
type Party struct {
	Name       string       `gorm:"size:255" json:"name"`
	TaxID      string       `gorm:"size:64" json:"tax_id"`
	Address    string       `gorm:"size:255" json:"address"`
	City       string       `gorm:"size:128" json:"city"`
	PostalCode string       `gorm:"size:32" json:"postal_code"`
	Country    enum.Country `gorm:"default:1" json:"country"`
	Email      string       `gorm:"size:255" json:"email,omitempty"`
	Phone      string       `gorm:"size:64" json:"phone,omitempty"`
}

// LineItem is one row of the invoice table. Its amount is always derived.
type LineItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key" json:"-"`
	InvoiceID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"-"`
	Position    int             `gorm:"not null;default:0" json:"-"`
	Description string          `gorm:"type:text" json:"description"`
	Quantity    decimal.Decimal `gorm:"type:numeric(14,4);not null" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"unit_price"`
}

// NewLineItem returns the blank row added by the editor: quantity 1, price 0.
func NewLineItem() LineItem {
	return LineItem{Quantity: decimal.NewFromInt(1), UnitPrice: decimal.Zero}
}

// Amount returns quantity * unit price.
func (li LineItem) Amount() decimal.Decimal {
	return li.Quantity.Mul(li.UnitPrice)
}

// MarshalJSON adds the derived amount to the API representation.
func (li LineItem) MarshalJSON() ([]byte, error) {
	type Alias LineItem
	return json.Marshal(&struct {
		Alias
		Amount decimal.Decimal `json:"amount"`
	}{
		Alias:  Alias(li),
		Amount: li.Amount(),
	})
}

// BeforeCreate generates a UUID before creating a new line item
func (li *LineItem) BeforeCreate(tx *gorm.DB) error {
	if li.ID == uuid.Nil {
		li.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the LineItem model
func (LineItem) TableName() string {
	return "invoice_items"
}

// Storage limits of the invoice columns. Values outside them would be
// rounded or rejected by the database, so validation refuses them first.
const (
	MaxInvoiceNumberLength = 64
	QuantityScale          = 4
	UnitPriceScale         = 2
)

var (
	maxQuantity  = decimal.New(1, 10) // numeric(14,4)
	maxUnitPrice = decimal.New(1, 12) // numeric(14,2)
)

// Invoice is a billing document. Editing operations return a modified copy
// and never mutate the receiver.
type Invoice struct {
	ID             uuid.UUID          `gorm:"type:uuid;primary_key" json:"id,omitempty"`
	UserID         *uuid.UUID         `gorm:"type:uuid;index;uniqueIndex:idx_invoices_owner_number" json:"user_id,omitempty"`
	AnonymousID    string             `gorm:"size:64;index" json:"-"`
	InvoiceNumber  string             `gorm:"size:64;not null;uniqueIndex:idx_invoices_owner_number" json:"invoice_number"`
	IssueDate      Date               `gorm:"type:date" json:"issue_date"`
	DueDate        Date               `gorm:"type:date" json:"due_date"`
	Issuer         Party              `gorm:"embedded;embeddedPrefix:issuer_" json:"issuer"`
	Recipient      Party              `gorm:"embedded;embeddedPrefix:recipient_" json:"recipient"`
	Items          []LineItem         `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"items"`
	TaxRatePercent decimal.Decimal    `gorm:"type:numeric(5,2);not null" json:"tax_rate_percent"`
	Notes          string             `gorm:"type:text" json:"notes"`
	Status         enum.InvoiceStatus `gorm:"default:0" json:"status"`
	CreatedAt      time.Time          `json:"created_at,omitempty"`
	UpdatedAt      time.Time          `json:"updated_at,omitempty"`
}

// NewDraft returns the invoice a user starts from: numbered for the current
// year, issued today, due in a month, Spanish parties, one blank row and the
// general VAT rate.
func NewDraft(now time.Time) Invoice {
	today := DateOf(now)
	return Invoice{
		InvoiceNumber:  fmt.Sprintf("F-%d-001", now.Year()),
		IssueDate:      today,
		DueDate:        today.AddMonths(1),
		Issuer:         Party{Country: enum.CountrySpain},
		Recipient:      Party{Country: enum.CountrySpain},
		Items:          []LineItem{NewLineItem()},
		TaxRatePercent: enum.DefaultTaxRate.Percent(),
		Status:         enum.InvoiceStatusDraft,
	}
}

// BeforeCreate generates a UUID before creating a new invoice
func (inv *Invoice) BeforeCreate(tx *gorm.DB) error {
	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	return nil
}

// AfterFind restores the editor order of the line items.
func (inv *Invoice) AfterFind(tx *gorm.DB) error {
	sort.SliceStable(inv.Items, func(i, j int) bool {
		return inv.Items[i].Position < inv.Items[j].Position
	})
	return nil
}

// TableName returns the table name for the Invoice model
func (Invoice) TableName() string {
	return "invoices"
}

// Totals computes subtotal, tax and total from the current items.
func (inv Invoice) Totals() totals.Totals {
	lines := make([]totals.Line, len(inv.Items))
	for i, it := range inv.Items {
		lines[i] = totals.Line{Quantity: it.Quantity, UnitPrice: it.UnitPrice}
	}
	return totals.Compute(lines, inv.TaxRatePercent)
}

// MarshalJSON adds the derived totals to the API representation.
func (inv Invoice) MarshalJSON() ([]byte, error) {
	type Alias Invoice
	t := inv.Totals()
	return json.Marshal(&struct {
		Alias
		Subtotal  decimal.Decimal `json:"subtotal"`
		TaxAmount decimal.Decimal `json:"tax_amount"`
		Total     decimal.Decimal `json:"total"`
	}{
		Alias:     Alias(inv),
		Subtotal:  t.Subtotal,
		TaxAmount: t.TaxAmount,
		Total:     t.Total,
	})
}

// NumberPositions stamps each item with its index so storage keeps order.
func (inv *Invoice) NumberPositions() {
	for i := range inv.Items {
		inv.Items[i].Position = i
	}
}

// Validate checks everything a submitted invoice needs. A nil result means
// the invoice can be finalized.
func (inv Invoice) Validate() []apperror.FieldError {
	var errs []apperror.FieldError
	add := func(field, msg string) {
		errs = append(errs, apperror.FieldError{Field: field, Message: msg})
	}

	if strings.TrimSpace(inv.InvoiceNumber) == "" {
		add("invoice_number", "Invoice number is required")
	} else if utf8.RuneCountInString(inv.InvoiceNumber) > MaxInvoiceNumberLength {
		add("invoice_number", fmt.Sprintf("Invoice number must be at most %d characters", MaxInvoiceNumberLength))
	}
	if inv.IssueDate.IsZero() {
		add("issue_date", "Issue date is required")
	}

	validateParty := func(prefix string, p Party) {
		fields := []struct {
			field, value string
			max          int
			required     bool
		}{
			{"name", p.Name, 255, true},
			{"tax_id", p.TaxID, 64, true},
			{"address", p.Address, 255, true},
			{"city", p.City, 128, true},
			{"postal_code", p.PostalCode, 32, true},
			{"email", p.Email, 255, false},
			{"phone", p.Phone, 64, false},
		}
		for _, f := range fields {
			switch {
			case f.required && strings.TrimSpace(f.value) == "":
				add(prefix+"."+f.field, "This field is required")
			case utf8.RuneCountInString(f.value) > f.max:
				add(prefix+"."+f.field, fmt.Sprintf("Must be at most %d characters", f.max))
			}
		}
		if !p.Country.IsValid() {
			add(prefix+".country", "Country is not supported")
		}
	}
	validateParty("issuer", inv.Issuer)
	validateParty("recipient", inv.Recipient)

	if len(inv.Items) == 0 {
		add("items", ErrLastItem.Error())
	}
	for i, it := range inv.Items {
		quantity := fmt.Sprintf("items[%d].quantity", i)
		switch {
		case !it.Quantity.IsPositive():
			add(quantity, "Quantity must be greater than zero")
		case !it.Quantity.Equal(it.Quantity.Truncate(QuantityScale)):
			add(quantity, fmt.Sprintf("Quantity allows at most %d decimals", QuantityScale))
		case it.Quantity.GreaterThanOrEqual(maxQuantity):
			add(quantity, "Quantity is too large")
		}

		unitPrice := fmt.Sprintf("items[%d].unit_price", i)
		switch {
		case it.UnitPrice.IsNegative():
			add(unitPrice, "Unit price cannot be negative")
		case !it.UnitPrice.Equal(it.UnitPrice.Truncate(UnitPriceScale)):
			add(unitPrice, fmt.Sprintf("Unit price allows at most %d decimals", UnitPriceScale))
		case it.UnitPrice.GreaterThanOrEqual(maxUnitPrice):
			add(unitPrice, "Unit price is too large")
		}
	}

	if !enum.IsAllowedTaxRate(inv.TaxRatePercent) {
		add("tax_rate_percent", "Tax rate must be one of 0, 4, 10 or 21")
	}

	return errs
}
