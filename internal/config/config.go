package config

import (
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	Log       LogConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	OAuth     OAuthConfig
	Storage   StorageConfig
	Export    ExportConfig
	Billing   BillingConfig
	Gate      GateConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
}

type AppConfig struct {
	Name        string
	Env         string
	Port        string
	Debug       bool
	FrontendURL string
}

type LogConfig struct {
	Level string
}

type DatabaseConfig struct {
	Driver     string
	Host       string
	Port       string
	Name       string
	User       string
	Password   string
	SSLMode    string
	Timezone   string
	SQLitePath string
	LogLevel   string
}

type JWTConfig struct {
	Secret             string
	ExpiryHours        time.Duration
	RefreshExpiryHours time.Duration
}

type OAuthConfig struct {
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	FrontendSuccessURL string
	FrontendErrorURL   string
}

type StorageConfig struct {
	Driver     string
	Path       string
	S3Bucket   string
	S3Region   string
	S3Endpoint string
	S3Prefix   string
}

type ExportConfig struct {
	MaxPages int
	Timeout  time.Duration
}

type BillingConfig struct {
	StripeSecretKey  string
	ProductName      string
	ProductDesc      string
	PriceCents       int64
	Currency         string
	DefaultReturnURL string
}

type GateConfig struct {
	AnonymousLimit int64
	FreeLimit      int64
	AnonymousTTL   time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

type RateLimitConfig struct {
	Requests int
	Duration int
}

func Load() *Config {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables: %v", err)
	}

	setDefaults()

	return &Config{
		App: AppConfig{
			Name:        viper.GetString("APP_NAME"),
			Env:         viper.GetString("APP_ENV"),
			Port:        viper.GetString("APP_PORT"),
			Debug:       viper.GetBool("APP_DEBUG"),
			FrontendURL: strings.TrimRight(viper.GetString("FRONTEND_URL"), "/"),
		},
		Log: LogConfig{
			Level: viper.GetString("LOG_LEVEL"),
		},
		Database: DatabaseConfig{
			Driver:     viper.GetString("DB_DRIVER"),
			Host:       viper.GetString("DB_HOST"),
			Port:       viper.GetString("DB_PORT"),
			Name:       viper.GetString("DB_NAME"),
			User:       viper.GetString("DB_USER"),
			Password:   viper.GetString("DB_PASSWORD"),
			SSLMode:    viper.GetString("DB_SSL_MODE"),
			Timezone:   viper.GetString("DB_TIMEZONE"),
			SQLitePath: viper.GetString("DB_SQLITE_PATH"),
			LogLevel:   viper.GetString("DB_LOG_LEVEL"),
		},
		JWT: JWTConfig{
			Secret:             viper.GetString("JWT_SECRET"),
			ExpiryHours:        time.Duration(viper.GetInt("JWT_EXPIRY_HOURS")) * time.Hour,
			RefreshExpiryHours: time.Duration(viper.GetInt("JWT_REFRESH_EXPIRY_HOURS")) * time.Hour,
		},
		OAuth: OAuthConfig{
			GoogleClientID:     viper.GetString("GOOGLE_CLIENT_ID"),
			GoogleClientSecret: viper.GetString("GOOGLE_CLIENT_SECRET"),
			GoogleRedirectURL:  viper.GetString("GOOGLE_REDIRECT_URL"),
			FrontendSuccessURL: viper.GetString("OAUTH_SUCCESS_URL"),
			FrontendErrorURL:   viper.GetString("OAUTH_ERROR_URL"),
		},
		Storage: StorageConfig{
			Driver:     viper.GetString("STORAGE_DRIVER"),
			Path:       viper.GetString("STORAGE_PATH"),
			S3Bucket:   viper.GetString("S3_BUCKET"),
			S3Region:   viper.GetString("S3_REGION"),
			S3Endpoint: viper.GetString("S3_ENDPOINT"),
			S3Prefix:   viper.GetString("S3_PREFIX"),
		},
		Export: ExportConfig{
			MaxPages: viper.GetInt("EXPORT_MAX_PAGES"),
			Timeout:  time.Duration(viper.GetInt("EXPORT_TIMEOUT_SECONDS")) * time.Second,
		},
		Billing: BillingConfig{
			StripeSecretKey:  viper.GetString("STRIPE_SECRET_KEY"),
			ProductName:      viper.GetString("BILLING_PRODUCT_NAME"),
			ProductDesc:      viper.GetString("BILLING_PRODUCT_DESCRIPTION"),
			PriceCents:       viper.GetInt64("BILLING_PRICE_CENTS"),
			Currency:         viper.GetString("BILLING_CURRENCY"),
			DefaultReturnURL: strings.TrimRight(viper.GetString("FRONTEND_URL"), "/"),
		},
		Gate: GateConfig{
			AnonymousLimit: viper.GetInt64("GATE_ANONYMOUS_LIMIT"),
			FreeLimit:      viper.GetInt64("GATE_FREE_LIMIT"),
			AnonymousTTL:   time.Duration(viper.GetInt("GATE_ANONYMOUS_TTL_HOURS")) * time.Hour,
		},
		CORS: CORSConfig{
			AllowedOrigins: viper.GetStringSlice("CORS_ALLOWED_ORIGINS"),
			AllowedMethods: viper.GetStringSlice("CORS_ALLOWED_METHODS"),
			AllowedHeaders: viper.GetStringSlice("CORS_ALLOWED_HEADERS"),
		},
		RateLimit: RateLimitConfig{
			Requests: viper.GetInt("RATE_LIMIT_REQUESTS"),
			Duration: viper.GetInt("RATE_LIMIT_DURATION"),
		},
	}
}

func setDefaults() {
	viper.SetDefault("APP_NAME", "quickbill-api")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("APP_DEBUG", true)
	viper.SetDefault("FRONTEND_URL", "http://localhost:3000")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("DB_DRIVER", "postgres")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_NAME", "quickbill")
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_PASSWORD", "postgres")
	viper.SetDefault("DB_SSL_MODE", "disable")
	viper.SetDefault("DB_TIMEZONE", "Europe/Madrid")
	viper.SetDefault("DB_SQLITE_PATH", "quickbill.db")
	viper.SetDefault("DB_LOG_LEVEL", "warn")
	viper.SetDefault("JWT_SECRET", "change-this-secret-in-production")
	viper.SetDefault("JWT_EXPIRY_HOURS", 24)
	viper.SetDefault("JWT_REFRESH_EXPIRY_HOURS", 168)
	viper.SetDefault("GOOGLE_REDIRECT_URL", "http://localhost:8080/api/v1/auth/google/callback")
	viper.SetDefault("OAUTH_SUCCESS_URL", "http://localhost:3000/auth/callback")
	viper.SetDefault("OAUTH_ERROR_URL", "http://localhost:3000/auth?error=oauth")
	viper.SetDefault("STORAGE_DRIVER", "local")
	viper.SetDefault("STORAGE_PATH", "./storage")
	viper.SetDefault("S3_REGION", "eu-west-1")
	viper.SetDefault("S3_PREFIX", "invoices")
	viper.SetDefault("EXPORT_MAX_PAGES", 0)
	viper.SetDefault("EXPORT_TIMEOUT_SECONDS", 30)
	viper.SetDefault("BILLING_PRODUCT_NAME", "QuickBill Pro")
	viper.SetDefault("BILLING_PRODUCT_DESCRIPTION", "Suscripción mensual al plan Pro")
	viper.SetDefault("BILLING_PRICE_CENTS", 400)
	viper.SetDefault("BILLING_CURRENCY", "eur")
	viper.SetDefault("GATE_ANONYMOUS_LIMIT", 1)
	viper.SetDefault("GATE_FREE_LIMIT", 5)
	viper.SetDefault("GATE_ANONYMOUS_TTL_HOURS", 720)
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("CORS_ALLOWED_HEADERS", []string{})
	viper.SetDefault("RATE_LIMIT_REQUESTS", 100)
	viper.SetDefault("RATE_LIMIT_DURATION", 60)
}

func (c *DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" port=" + c.Port +
		" sslmode=" + c.SSLMode +
		" TimeZone=" + c.Timezone
}
