package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "quickbill-api", cfg.App.Name)
	assert.Equal(t, "http://localhost:3000", cfg.App.FrontendURL)
	assert.Equal(t, int64(1), cfg.Gate.AnonymousLimit)
	assert.Equal(t, int64(5), cfg.Gate.FreeLimit)
	assert.Equal(t, int64(400), cfg.Billing.PriceCents)
	assert.Equal(t, "QuickBill Pro", cfg.Billing.ProductName)
	assert.Equal(t, 0, cfg.Export.MaxPages)
	assert.Equal(t, 30*time.Second, cfg.Export.Timeout)
	assert.Equal(t, "local", cfg.Storage.Driver)
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("GATE_FREE_LIMIT", "12")
	t.Setenv("EXPORT_MAX_PAGES", "2")
	t.Setenv("FRONTEND_URL", "https://app.example.com/")

	cfg := Load()

	assert.Equal(t, int64(12), cfg.Gate.FreeLimit)
	assert.Equal(t, 2, cfg.Export.MaxPages)
	assert.Equal(t, "https://app.example.com", cfg.Billing.DefaultReturnURL)
}

func TestDSN(t *testing.T) {
	c := DatabaseConfig{Host: "db", User: "u", Password: "p", Name: "n", Port: "5432", SSLMode: "disable", Timezone: "UTC"}
	assert.Equal(t, "host=db user=u password=p dbname=n port=5432 sslmode=disable TimeZone=UTC", c.DSN())
}
