package database

import (
	"testing"

	"github.com/sangkips/quickbill-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

func TestNewDBSQLiteAndMigrate(t *testing.T) {
	db, err := NewDB(&config.DatabaseConfig{Driver: "sqlite", SQLitePath: ":memory:", LogLevel: "silent"})
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))

	for _, table := range []string{"users", "subscriptions", "invoices", "invoice_items", "idempotency_keys"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
	assert.True(t, db.Migrator().HasColumn("invoices", "issuer_tax_id"))
	assert.True(t, db.Migrator().HasColumn("invoices", "recipient_postal_code"))
}

func TestNewDBRejectsUnknownDriver(t *testing.T) {
	_, err := NewDB(&config.DatabaseConfig{Driver: "oracle"})
	assert.Error(t, err)
}

func TestGormLogLevel(t *testing.T) {
	assert.Equal(t, logger.Silent, gormLogLevel("silent"))
	assert.Equal(t, logger.Warn, gormLogLevel(""))
}
