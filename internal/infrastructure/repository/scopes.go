package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ctxKey string

// OwnerKey is the context key for the invoice owner
const OwnerKey ctxKey = "invoice_owner"

// Owner identifies whose invoices a query may see: a signed-in user or an
// anonymous browser session.
type Owner struct {
	UserID      *uuid.UUID
	AnonymousID string
}

// WithOwner adds the owner to context
func WithOwner(ctx context.Context, owner Owner) context.Context {
	return context.WithValue(ctx, OwnerKey, owner)
}

// GetOwner extracts the owner from context
func GetOwner(ctx context.Context) (Owner, bool) {
	owner, ok := ctx.Value(OwnerKey).(Owner)
	return owner, ok
}

// OwnerScope returns a GORM scope that filters by owner. A context without an
// owner matches nothing, so a missing middleware can never leak rows.
func OwnerScope(ctx context.Context) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		owner, ok := GetOwner(ctx)
		switch {
		case !ok:
			return db.Where("1 = 0")
		case owner.UserID != nil:
			return db.Where("user_id = ?", *owner.UserID)
		case owner.AnonymousID != "":
			return db.Where("user_id IS NULL AND anonymous_id = ?", owner.AnonymousID)
		default:
			return db.Where("1 = 0")
		}
	}
}
