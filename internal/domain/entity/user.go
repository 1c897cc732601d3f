package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/quickbill-api/internal/domain/enum"
	"gorm.io/gorm"
)

// User is an account holder. The business fields prefill the issuer block
// of new drafts.
type User struct {
	ID                 uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	FirstName          string         `gorm:"size:255" json:"first_name"`
	LastName           string         `gorm:"size:255" json:"last_name"`
	Email              string         `gorm:"size:255;unique;not null" json:"email"`
	Password           string         `gorm:"size:255" json:"-"`
	Provider           string         `gorm:"size:50;default:'local'" json:"provider"`
	ProviderID         *string        `gorm:"size:255" json:"-"`
	Photo              *string        `gorm:"size:255" json:"photo,omitempty"`
	BusinessName       *string        `gorm:"size:255" json:"business_name,omitempty"`
	BusinessTaxID      *string        `gorm:"size:64" json:"business_tax_id,omitempty"`
	BusinessAddress    *string        `gorm:"size:255" json:"business_address,omitempty"`
	BusinessCity       *string        `gorm:"size:128" json:"business_city,omitempty"`
	BusinessPostalCode *string        `gorm:"size:32" json:"business_postal_code,omitempty"`
	BusinessCountry    enum.Country   `gorm:"default:1" json:"business_country"`
	BusinessPhone      *string        `gorm:"size:64" json:"business_phone,omitempty"`
	StripeCustomerID   *string        `gorm:"size:255" json:"-"`
	InvoicesCreated    int64          `gorm:"not null;default:0" json:"invoices_created"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate generates a UUID before creating a new user
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the User model
func (User) TableName() string {
	return "users"
}

// IssuerParty returns the business profile as an invoice issuer block.
// Missing fields stay blank.
func (u *User) IssuerParty() Party {
	deref := func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	}
	country := u.BusinessCountry
	if !country.IsValid() {
		country = enum.CountrySpain
	}
	return Party{
		Name:       deref(u.BusinessName),
		TaxID:      deref(u.BusinessTaxID),
		Address:    deref(u.BusinessAddress),
		City:       deref(u.BusinessCity),
		PostalCode: deref(u.BusinessPostalCode),
		Country:    country,
		Email:      u.Email,
		Phone:      deref(u.BusinessPhone),
	}
}
