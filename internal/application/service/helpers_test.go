package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/quickbill-api/internal/domain/entity"
	"github.com/sangkips/quickbill-api/internal/domain/enum"
	"github.com/sangkips/quickbill-api/internal/domain/gate"
	"github.com/sangkips/quickbill-api/internal/domain/repository"
	"github.com/sangkips/quickbill-api/internal/infrastructure/database"
	infraGate "github.com/sangkips/quickbill-api/internal/infrastructure/gate"
	infraRepo "github.com/sangkips/quickbill-api/internal/infrastructure/repository"
	"github.com/sangkips/quickbill-api/pkg/billing"
	"github.com/sangkips/quickbill-api/pkg/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testEnv struct {
	db       *gorm.DB
	users    repository.UserRepository
	invoices repository.InvoiceRepository
	subs     repository.SubscriptionRepository
	jwt      *utils.JWTManager
	gate     *infraGate.Service
}

func newTestEnv(t *testing.T, provider billing.Provider) *testEnv {
	t.Helper()
	db, err := database.NewSQLiteDB("file:"+uuid.NewString()+"?mode=memory&cache=shared", logger.Silent)
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	env := &testEnv{
		db:       db,
		users:    infraRepo.NewUserRepository(db),
		invoices: infraRepo.NewInvoiceRepository(db),
		subs:     infraRepo.NewSubscriptionRepository(db),
		jwt:      utils.NewJWTManager("test-secret", time.Hour, 24*time.Hour),
	}
	env.gate = infraGate.New(infraGate.Deps{
		JWT:           env.jwt,
		Users:         env.users,
		Invoices:      env.invoices,
		Subscriptions: env.subs,
		Billing:       provider,
		AnonymousTTL:  time.Hour,
		Logger:        zap.NewNop(),
	})
	return env
}

// anonymous opens a session and request context for an anonymous visitor.
func (e *testEnv) anonymous(t *testing.T) (context.Context, *gate.Session) {
	t.Helper()
	anonID := utils.NewAnonymousID()
	s := gate.Open(context.Background(), e.gate, gate.Credentials{AnonymousID: anonID})
	t.Cleanup(s.Close)
	return infraRepo.WithOwner(context.Background(), infraRepo.Owner{AnonymousID: anonID}), s
}

// signedIn creates a user and opens a session for them.
func (e *testEnv) signedIn(t *testing.T) (context.Context, *gate.Session, *entity.User) {
	t.Helper()
	name := "Estudio Lumen SL"
	user := &entity.User{Email: uuid.NewString() + "@example.com", BusinessName: &name, BusinessCountry: enum.CountrySpain}
	require.NoError(t, e.users.Create(context.Background(), user))

	token, err := e.jwt.GenerateAccessToken(user.ID, user.Email)
	require.NoError(t, err)

	s := gate.Open(context.Background(), e.gate, gate.Credentials{BearerToken: token})
	t.Cleanup(s.Close)
	return infraRepo.WithOwner(context.Background(), infraRepo.Owner{UserID: &user.ID}), s, user
}

func validInvoice(number string) entity.Invoice {
	inv := entity.NewDraft(time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC))
	inv.InvoiceNumber = number
	inv.Issuer = entity.Party{
		Name: "Estudio Lumen SL", TaxID: "B12345678", Address: "Calle Mayor 1",
		City: "Madrid", PostalCode: "28013", Country: enum.CountrySpain,
	}
	inv.Recipient = entity.Party{
		Name: "Cliente Ejemplo", TaxID: "12345678Z", Address: "Avenida del Puerto 7",
		City: "Valencia", PostalCode: "46023", Country: enum.CountrySpain,
	}
	inv.Items = []entity.LineItem{{
		Description: "Diseño de logotipo",
		Quantity:    decimal.NewFromInt(10),
		UnitPrice:   decimal.NewFromInt(50),
	}}
	return inv
}
