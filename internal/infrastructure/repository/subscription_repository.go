package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sangkips/quickbill-api/internal/domain/entity"
	"github.com/sangkips/quickbill-api/internal/domain/enum"
	domainRepo "github.com/sangkips/quickbill-api/internal/domain/repository"
	"gorm.io/gorm"
)

type subscriptionRepository struct {
	db *gorm.DB
}

// NewSubscriptionRepository creates a new subscription repository
func NewSubscriptionRepository(db *gorm.DB) domainRepo.SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

func (r *subscriptionRepository) GetActiveByUser(ctx context.Context, userID uuid.UUID) (*entity.Subscription, error) {
	var sub entity.Subscription
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status IN ?", userID, []enum.SubscriptionStatus{
			enum.SubscriptionStatusActive,
			enum.SubscriptionStatusTrialing,
		}).
		Order("updated_at DESC").
		First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &sub, err
}

func (r *subscriptionRepository) Upsert(ctx context.Context, sub *entity.Subscription) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing entity.Subscription
		err := tx.Where("stripe_subscription_id = ?", sub.StripeSubscriptionID).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tx.Create(sub).Error
		}
		if err != nil {
			return err
		}

		sub.ID = existing.ID
		sub.CreatedAt = existing.CreatedAt
		return tx.Model(&existing).Updates(map[string]interface{}{
			"user_id":            sub.UserID,
			"status":             sub.Status,
			"stripe_customer_id": sub.StripeCustomerID,
			"current_period_end": sub.CurrentPeriodEnd,
		}).Error
	})
}
