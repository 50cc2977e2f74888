package routes

import (
	"time"

	"github.com/billoapp/tabz/internal/config"
	domainRepo "github.com/billoapp/tabz/internal/domain/repository"
	"github.com/billoapp/tabz/internal/presentation/http/handler"
	"github.com/billoapp/tabz/internal/presentation/http/middleware"
	"github.com/billoapp/tabz/pkg/utils"
	"github.com/gin-gonic/gin"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Auth    *handler.AuthHandler
	Venue   *handler.VenueHandler
	Tab     *handler.TabHandler
	Order   *handler.OrderHandler
	Payment *handler.PaymentHandler
	Admin   *handler.AdminHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	JWTManager      *utils.JWTManager
	Cfg             *config.Config
	TenantRepo      domainRepo.TenantRepository
	IdempotencyRepo domainRepo.IdempotencyRepository
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware())
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		})
	})

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Public routes (no authentication required)
		registerAuthRoutes(v1, h)

		// The payment gateway posts outcomes without user credentials or a
		// tenant subdomain, so the webhook sits outside the protected group.
		v1.POST("/webhooks/payments", h.Payment.Webhook)

		// Protected routes (authentication + tenant required)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(deps.JWTManager))
		protected.Use(middleware.TenantMiddleware(deps.TenantRepo))

		// Per-tenant rate limiter
		rateLimiter := middleware.NewTenantRateLimiter(middleware.RateLimiterConfig{
			RequestsPerSecond: float64(deps.Cfg.RateLimit.Requests) / float64(deps.Cfg.RateLimit.Duration),
			BurstSize:         deps.Cfg.RateLimit.Requests,
			CleanupInterval:   5 * time.Minute,
			EntryTTL:          10 * time.Minute,
		})
		protected.Use(rateLimiter.Middleware())

		registerProtectedRoutes(protected, h, deps)
	}

	return router
}

func registerAuthRoutes(v1 *gin.RouterGroup, h *Handlers) {
	auth := v1.Group("/auth")
	{
		auth.POST("/login", h.Auth.Login)
		auth.POST("/register", h.Auth.Register)
		auth.POST("/refresh", h.Auth.Refresh)
	}
}

func registerProtectedRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	registerVenueRoutes(protected, h)
	registerTabRoutes(protected, h, deps)
	registerAdminRoutes(protected, h)
}

func registerVenueRoutes(protected *gin.RouterGroup, h *Handlers) {
	venues := protected.Group("/venues")
	{
		venues.GET("", h.Venue.List)
		venues.POST("", middleware.RequireRole("owner"), h.Venue.Create)
		venues.GET("/:id", h.Venue.Get)
		venues.PUT("/:id", middleware.RequireRole("owner"), h.Venue.Update)
		venues.GET("/:id/open", h.Venue.OpenNow)
	}
}

func registerTabRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	idempotent := middleware.Idempotency(middleware.IdempotencyConfig{
		Repo: deps.IdempotencyRepo,
	})

	// Tab creation and listing are nested under the venue
	protected.POST("/venues/:id/tabs", idempotent, h.Tab.Open)
	protected.GET("/venues/:id/tabs", h.Tab.List)

	tabs := protected.Group("/tabs")
	{
		tabs.GET("/:id", h.Tab.Get)
		tabs.GET("/:id/balance", h.Tab.Balance)
		tabs.GET("/:id/status", h.Tab.Status)
		tabs.GET("/:id/can-order", h.Tab.CanOrder)
		tabs.POST("/:id/close", h.Tab.Close)
		tabs.GET("/:id/audit", h.Tab.AuditTrail)

		// Order placement uses idempotency middleware to prevent duplicates
		tabs.POST("/:id/orders", idempotent, h.Order.Create)
		tabs.GET("/:id/orders", h.Order.List)

		tabs.POST("/:id/payments", idempotent, h.Payment.Create)
		tabs.GET("/:id/payments", h.Payment.List)
	}

	orders := protected.Group("/orders")
	{
		orders.POST("/:order_id/confirm", h.Order.Confirm)
		orders.POST("/:order_id/cancel", h.Order.Cancel)
	}

	payments := protected.Group("/payments")
	{
		payments.POST("/:payment_id/settle", h.Payment.Settle)
	}
}

func registerAdminRoutes(protected *gin.RouterGroup, h *Handlers) {
	admin := protected.Group("/admin")
	admin.Use(middleware.RequireRole("owner"))
	{
		admin.POST("/sweep", h.Admin.RunSweep)
		admin.POST("/reconcile", h.Admin.RunReconciliation)
	}
}
