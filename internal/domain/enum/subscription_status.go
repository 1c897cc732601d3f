package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// SubscriptionStatus mirrors the billing provider's subscription states.
type SubscriptionStatus string

const (
	SubscriptionStatusActive     SubscriptionStatus = "active"
	SubscriptionStatusTrialing   SubscriptionStatus = "trialing"
	SubscriptionStatusPastDue    SubscriptionStatus = "past_due"
	SubscriptionStatusCanceled   SubscriptionStatus = "canceled"
	SubscriptionStatusIncomplete SubscriptionStatus = "incomplete"
	SubscriptionStatusUnpaid     SubscriptionStatus = "unpaid"
)

func (s SubscriptionStatus) String() string {
	return string(s)
}

// IsActive reports whether the subscription grants the paid tier.
func (s SubscriptionStatus) IsActive() bool {
	return s == SubscriptionStatusActive || s == SubscriptionStatusTrialing
}

func (s SubscriptionStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(s))
}

func (s SubscriptionStatus) Value() (driver.Value, error) {
	return string(s), nil
}

func (s *SubscriptionStatus) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*s = ""
	case string:
		*s = SubscriptionStatus(v)
	case []byte:
		*s = SubscriptionStatus(v)
	default:
		return fmt.Errorf("cannot scan %T into SubscriptionStatus", value)
	}
	return nil
}
