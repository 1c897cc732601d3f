package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/quickbill-api/internal/config"
	domainRepo "github.com/sangkips/quickbill-api/internal/domain/repository"
	"github.com/sangkips/quickbill-api/internal/domain/gate"
	"github.com/sangkips/quickbill-api/internal/presentation/http/handler"
	"github.com/sangkips/quickbill-api/internal/presentation/http/middleware"
	"go.uber.org/zap"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Auth    *handler.AuthHandler
	Account *handler.AccountHandler
	Catalog *handler.CatalogHandler
	Invoice *handler.InvoiceHandler
	Export  *handler.ExportHandler
	Billing *handler.BillingHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	Cfg             *config.Config
	Gate            gate.Gate
	IdempotencyRepo domainRepo.IdempotencyRepository
	RateLimiter     *middleware.IdentityRateLimiter
	Logger          *zap.Logger
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware(deps.Logger))
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		})
	})

	v1 := router.Group("/api/v1")
	{
		// Every API request runs inside a gate session, signed in or not
		v1.Use(middleware.SessionMiddleware(middleware.SessionConfig{
			Gate:         deps.Gate,
			CookieMaxAge: int(deps.Cfg.Gate.AnonymousTTL.Seconds()),
			SecureCookie: deps.Cfg.App.Env == "production",
		}))
		if deps.RateLimiter != nil {
			v1.Use(deps.RateLimiter.Middleware())
		}

		registerAuthRoutes(v1, h)
		registerAccountRoutes(v1, h)
		v1.GET("/catalog", h.Catalog.GetCatalog)
		registerInvoiceRoutes(v1, h, deps)
		registerBillingRoutes(v1, h)
	}

	return router
}

func registerAuthRoutes(v1 *gin.RouterGroup, h *Handlers) {
	auth := v1.Group("/auth")
	{
		auth.POST("/login", h.Auth.Login)
		auth.POST("/register", h.Auth.Register)
		auth.POST("/refresh", h.Auth.RefreshToken)
		auth.POST("/logout", h.Auth.Logout)
		// Google OAuth routes
		auth.GET("/google", h.Auth.GoogleAuth)
		auth.GET("/google/callback", h.Auth.GoogleCallback)
	}
}

func registerAccountRoutes(v1 *gin.RouterGroup, h *Handlers) {
	account := v1.Group("/account")
	{
		account.GET("/session", h.Account.Session)

		protected := account.Group("")
		protected.Use(middleware.RequireUser())
		protected.GET("/profile", h.Account.GetProfile)
		protected.PUT("/profile", h.Account.UpdateProfile)
		protected.PUT("/password", h.Auth.ChangePassword)
	}
}

func registerInvoiceRoutes(v1 *gin.RouterGroup, h *Handlers, deps *Deps) {
	invoices := v1.Group("/invoices")
	{
		invoices.POST("/draft", h.Invoice.NewDraft)
		invoices.POST("/draft/edit", h.Invoice.EditDraft)
		invoices.POST("/preview", h.Invoice.Preview)
		invoices.POST("/preview/html", h.Invoice.PreviewHTML)

		invoices.POST("",
			middleware.Idempotency(middleware.IdempotencyConfig{Repo: deps.IdempotencyRepo}),
			h.Invoice.Finalize,
		)
		invoices.GET("", h.Invoice.ListInvoices)
		invoices.GET("/export.xlsx", h.Invoice.ExportSpreadsheet)

		invoices.GET("/:id", h.Invoice.GetInvoice)
		invoices.GET("/:id/document", h.Invoice.GetDocument)
		invoices.GET("/:id/preview", h.Invoice.GetPreview)
		invoices.POST("/:id/export", h.Export.Export)
		invoices.GET("/:id/pdf", h.Export.DownloadPDF)
		invoices.DELETE("/:id", h.Invoice.DeleteInvoice)
	}
}

func registerBillingRoutes(v1 *gin.RouterGroup, h *Handlers) {
	billing := v1.Group("/billing")
	{
		billing.GET("/subscription", h.Billing.GetSubscription)

		protected := billing.Group("")
		protected.Use(middleware.RequireUser())
		protected.POST("/checkout", h.Billing.CreateCheckout)
		protected.GET("/checkout/complete", h.Billing.CompleteCheckout)
	}
}
