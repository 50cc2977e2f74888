package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/billoapp/tabz/internal/application/service"
	"github.com/billoapp/tabz/internal/config"
	"github.com/billoapp/tabz/internal/domain/schedule"
	"github.com/billoapp/tabz/internal/infrastructure/database"
	"github.com/billoapp/tabz/internal/infrastructure/repository"
	"github.com/billoapp/tabz/internal/presentation/http/handler"
	"github.com/billoapp/tabz/internal/presentation/http/routes"
	"github.com/billoapp/tabz/pkg/keylock"
	"github.com/billoapp/tabz/pkg/utils"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize JWT manager
	jwtManager := utils.NewJWTManager(
		cfg.JWT.Secret,
		cfg.JWT.ExpiryHours,
		cfg.JWT.RefreshExpiryHours,
	)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	tenantRepo := repository.NewTenantRepository(db)
	venueRepo := repository.NewVenueRepository(db)
	tabRepo := repository.NewTabRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)

	// Initialize the schedule engine and the per-tab lock registry shared by
	// every service that mutates tabs
	zones := schedule.NewResolver()
	evaluator := schedule.NewEvaluator(zones)
	locks := keylock.NewRegistry()

	// Initialize services
	authService := service.NewAuthService(userRepo, tenantRepo, jwtManager)
	venueService := service.NewVenueService(venueRepo, zones, evaluator)
	tabService := service.NewTabService(tabRepo, orderRepo, paymentRepo, auditRepo, evaluator, locks)
	ledgerService := service.NewLedgerService(tabRepo, orderRepo, paymentRepo, tabService, locks)
	reconciliationService := service.NewReconciliationService(tabRepo, paymentRepo, tabService, locks)

	// Initialize handlers
	handlers := &routes.Handlers{
		Auth:    handler.NewAuthHandler(authService),
		Venue:   handler.NewVenueHandler(venueService),
		Tab:     handler.NewTabHandler(tabService),
		Order:   handler.NewOrderHandler(ledgerService),
		Payment: handler.NewPaymentHandler(ledgerService),
		Admin:   handler.NewAdminHandler(tabService, reconciliationService),
	}

	// Setup routes
	router := routes.Setup(handlers, &routes.Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		TenantRepo:      tenantRepo,
		IdempotencyRepo: idempotencyRepo,
	})

	// Start the background overdue sweep
	if cfg.Sweep.Enabled {
		go runSweepLoop(tabService, cfg.Sweep.Interval)
	}

	// Get port from environment or use default
	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}

	log.Printf("Starting %s server on port %s...", cfg.App.Name, port)
	log.Printf("Environment: %s", cfg.App.Env)

	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
		os.Exit(1)
	}
}

// runSweepLoop periodically re-evaluates every active tab across all
// tenants. The sweep only provides timeliness; correctness never depends on
// it because every ledger mutation re-evaluates synchronously.
func runSweepLoop(tabService *service.TabService, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		ctx := repository.WithSkipTenantScope(context.Background(), true)
		report, err := tabService.RunOverdueSweep(ctx, nil, time.Now())
		if err != nil {
			log.Printf("Overdue sweep failed: %v", err)
			continue
		}
		if report.Transitions > 0 || len(report.Errors) > 0 {
			log.Printf("Overdue sweep: %d tabs examined, %d transitions, %d errors",
				report.TabsExamined, report.Transitions, len(report.Errors))
		}
	}
}
