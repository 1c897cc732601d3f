package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/quickbill-api/internal/domain/entity"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByProvider(ctx context.Context, provider, providerID string) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
	// IncrementInvoicesCreated bumps the lifetime finalized invoice counter.
	IncrementInvoicesCreated(ctx context.Context, id uuid.UUID) error
}
