package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/quickbill-api/internal/domain/entity"
	"github.com/sangkips/quickbill-api/internal/domain/enum"
	domainRepo "github.com/sangkips/quickbill-api/internal/domain/repository"
	"github.com/sangkips/quickbill-api/internal/infrastructure/database"
	"github.com/sangkips/quickbill-api/pkg/pagination"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.NewSQLiteDB("file:"+uuid.NewString()+"?mode=memory&cache=shared", logger.Silent)
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	return db
}

func newInvoice(number, recipient string, items ...entity.LineItem) *entity.Invoice {
	inv := entity.NewDraft(time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC))
	inv.InvoiceNumber = number
	inv.Recipient.Name = recipient
	inv.Status = enum.InvoiceStatusFinalized
	if len(items) > 0 {
		inv.Items = items
	}
	return &inv
}

func item(desc string, qty, price int64) entity.LineItem {
	return entity.LineItem{
		Description: desc,
		Quantity:    decimal.NewFromInt(qty),
		UnitPrice:   decimal.NewFromInt(price),
	}
}

func TestInvoiceRepositoryOwnerScope(t *testing.T) {
	db := setupDB(t)
	repo := NewInvoiceRepository(db)

	alice, bob := uuid.New(), uuid.New()
	aliceCtx := WithOwner(context.Background(), Owner{UserID: &alice})
	bobCtx := WithOwner(context.Background(), Owner{UserID: &bob})
	anonCtx := WithOwner(context.Background(), Owner{AnonymousID: "anon_1"})

	inv := newInvoice("F-2024-001", "Cliente SL")
	inv.UserID = &alice
	require.NoError(t, repo.Create(aliceCtx, inv))

	got, err := repo.GetByID(aliceCtx, inv.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "F-2024-001", got.InvoiceNumber)

	got, err = repo.GetByID(bobCtx, inv.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = repo.GetByID(anonCtx, inv.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = repo.GetByID(context.Background(), inv.ID)
	require.NoError(t, err)
	assert.Nil(t, got, "no owner in context matches nothing")

	count, err := repo.CountByUser(context.Background(), alice)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestInvoiceRepositoryKeepsItemOrder(t *testing.T) {
	db := setupDB(t)
	repo := NewInvoiceRepository(db)
	userID := uuid.New()
	ctx := WithOwner(context.Background(), Owner{UserID: &userID})

	inv := newInvoice("F-2024-002", "Cliente SL", item("c", 1, 3), item("a", 1, 1), item("b", 1, 2))
	inv.UserID = &userID
	require.NoError(t, repo.Create(ctx, inv))

	got, err := repo.GetByID(ctx, inv.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 3)
	assert.Equal(t, "c", got.Items[0].Description)
	assert.Equal(t, "a", got.Items[1].Description)
	assert.Equal(t, "b", got.Items[2].Description)
	assert.True(t, got.Totals().Subtotal.Equal(decimal.NewFromInt(6)))
}

func TestInvoiceRepositoryUniqueNumberPerUser(t *testing.T) {
	db := setupDB(t)
	repo := NewInvoiceRepository(db)
	alice, bob := uuid.New(), uuid.New()

	a := newInvoice("F-2024-001", "X")
	a.UserID = &alice
	require.NoError(t, repo.Create(context.Background(), a))

	dup := newInvoice("F-2024-001", "Y")
	dup.UserID = &alice
	assert.Error(t, repo.Create(context.Background(), dup))

	other := newInvoice("F-2024-001", "Z")
	other.UserID = &bob
	assert.NoError(t, repo.Create(context.Background(), other))
}

func TestInvoiceRepositoryListAndDelete(t *testing.T) {
	db := setupDB(t)
	repo := NewInvoiceRepository(db)
	ctx := WithOwner(context.Background(), Owner{AnonymousID: "anon_list"})

	for _, n := range []struct{ number, recipient string }{
		{"F-2024-001", "Acme SL"},
		{"F-2024-002", "Globex SA"},
		{"F-2024-003", "Acme Norte"},
	} {
		inv := newInvoice(n.number, n.recipient)
		inv.AnonymousID = "anon_list"
		require.NoError(t, repo.Create(ctx, inv))
	}

	params := &domainRepo.InvoiceFilterParams{
		Pagination: &pagination.PaginationParams{Page: 1, PerPage: 10},
		Search:     "acme",
		SortBy:     "invoice_number",
		SortOrder:  "asc",
	}
	list, total, err := repo.List(ctx, params)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, list, 2)
	assert.Equal(t, "F-2024-001", list[0].InvoiceNumber)
	assert.Len(t, list[0].Items, 1)

	byNumber, err := repo.GetByNumber(ctx, "F-2024-002")
	require.NoError(t, err)
	require.NotNil(t, byNumber)

	require.NoError(t, repo.Delete(ctx, byNumber.ID))
	gone, err := repo.GetByID(ctx, byNumber.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	var items int64
	require.NoError(t, db.Model(&entity.LineItem{}).Where("invoice_id = ?", byNumber.ID).Count(&items).Error)
	assert.Zero(t, items)
}

func TestUserRepository(t *testing.T) {
	db := setupDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	providerID := "google-123"
	u := &entity.User{Email: " Ana@Example.com ", Provider: "google", ProviderID: &providerID}
	require.NoError(t, repo.Create(ctx, u))

	got, err := repo.GetByEmail(ctx, "ANA@example.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, u.ID, got.ID)

	got, err = repo.GetByProvider(ctx, "google", "google-123")
	require.NoError(t, err)
	require.NotNil(t, got)

	missing, err := repo.GetByID(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSubscriptionRepositoryUpsert(t *testing.T) {
	db := setupDB(t)
	repo := NewSubscriptionRepository(db)
	ctx := context.Background()
	userID := uuid.New()

	require.NoError(t, repo.Upsert(ctx, &entity.Subscription{
		UserID:               userID,
		StripeSubscriptionID: "sub_1",
		Status:               enum.SubscriptionStatusIncomplete,
	}))
	active, err := repo.GetActiveByUser(ctx, userID)
	require.NoError(t, err)
	assert.Nil(t, active)

	require.NoError(t, repo.Upsert(ctx, &entity.Subscription{
		UserID:               userID,
		StripeSubscriptionID: "sub_1",
		Status:               enum.SubscriptionStatusActive,
	}))
	active, err = repo.GetActiveByUser(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, enum.SubscriptionStatusActive, active.Status)

	var rows int64
	require.NoError(t, db.Model(&entity.Subscription{}).Count(&rows).Error)
	assert.Equal(t, int64(1), rows)
}

func TestIdempotencyRepository(t *testing.T) {
	db := setupDB(t)
	repo := NewIdempotencyRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &entity.IdempotencyKey{
		Key: "k1", OwnerKey: "anon:a", Endpoint: "POST /api/v1/invoices",
		ResponseCode: 201, ExpiresAt: time.Now().Add(time.Hour),
	}))
	require.NoError(t, repo.Create(ctx, &entity.IdempotencyKey{
		Key: "k1", OwnerKey: "anon:b", Endpoint: "POST /api/v1/invoices",
		ResponseCode: 201, ExpiresAt: time.Now().Add(-time.Hour),
	}))

	got, err := repo.GetByKey(ctx, "k1", "anon:a")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 201, got.ResponseCode)

	deleted, err := repo.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	got, err = repo.GetByKey(ctx, "k1", "anon:b")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestInvoiceRepositoryDuplicateNumber(t *testing.T) {
	db := setupDB(t)
	repo := NewInvoiceRepository(db)

	alice, bob := uuid.New(), uuid.New()
	aliceCtx := WithOwner(context.Background(), Owner{UserID: &alice})

	first := newInvoice("F-2024-001", "Cliente SL")
	first.UserID = &alice
	require.NoError(t, repo.Create(aliceCtx, first))

	dup := newInvoice("F-2024-001", "Otro cliente")
	dup.UserID = &alice
	assert.ErrorIs(t, repo.Create(aliceCtx, dup), domainRepo.ErrDuplicateInvoiceNumber)

	other := newInvoice("F-2024-001", "Cliente SL")
	other.UserID = &bob
	assert.NoError(t, repo.Create(WithOwner(context.Background(), Owner{UserID: &bob}), other), "numbers are unique per user")
}

func TestInvoiceRepositoryCountByAnonymous(t *testing.T) {
	db := setupDB(t)
	repo := NewInvoiceRepository(db)
	ctx := WithOwner(context.Background(), Owner{AnonymousID: "anon_1"})

	inv := newInvoice("F-2024-001", "Cliente SL")
	inv.AnonymousID = "anon_1"
	require.NoError(t, repo.Create(ctx, inv))

	count, err := repo.CountByAnonymous(context.Background(), "anon_1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	count, err = repo.CountByAnonymous(context.Background(), "anon_2")
	require.NoError(t, err)
	assert.Zero(t, count)
}
