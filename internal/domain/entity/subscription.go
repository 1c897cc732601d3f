package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/quickbill-api/internal/domain/enum"
	"gorm.io/gorm"
)

// Subscription records a paid plan held by a user.
type Subscription struct {
	ID                   uuid.UUID               `gorm:"type:uuid;primary_key" json:"id"`
	UserID               uuid.UUID               `gorm:"type:uuid;not null;index" json:"user_id"`
	StripeCustomerID     string                  `gorm:"size:255" json:"-"`
	StripeSubscriptionID string                  `gorm:"size:255;uniqueIndex" json:"-"`
	Status               enum.SubscriptionStatus `gorm:"size:32;not null;index" json:"status"`
	CurrentPeriodEnd     *time.Time              `json:"current_period_end,omitempty"`
	CreatedAt            time.Time               `json:"created_at"`
	UpdatedAt            time.Time               `json:"updated_at"`
}

// BeforeCreate generates a UUID before creating a new subscription
func (s *Subscription) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Subscription model
func (Subscription) TableName() string {
	return "subscriptions"
}
