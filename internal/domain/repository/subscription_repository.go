package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/quickbill-api/internal/domain/entity"
)

// SubscriptionRepository defines the interface for subscription data operations
type SubscriptionRepository interface {
	// GetActiveByUser returns the user's active subscription, or nil.
	GetActiveByUser(ctx context.Context, userID uuid.UUID) (*entity.Subscription, error)
	// Upsert stores a subscription keyed by its provider subscription id.
	Upsert(ctx context.Context, sub *entity.Subscription) error
}
