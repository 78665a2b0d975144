package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	billingapp "github.com/propely/backend/internal/application/billing"
	propertyapp "github.com/propely/backend/internal/application/property"
	"github.com/propely/backend/internal/domain/billing"
	"github.com/propely/backend/internal/domain/shared"
	"github.com/propely/backend/internal/domain/shared/valueobject"
	"github.com/propely/backend/internal/infrastructure/cache"
	"github.com/propely/backend/internal/infrastructure/config"
	"github.com/propely/backend/internal/infrastructure/event"
	"github.com/propely/backend/internal/infrastructure/logger"
	"github.com/propely/backend/internal/infrastructure/persistence"
	"github.com/propely/backend/internal/infrastructure/scheduler"
	"github.com/propely/backend/internal/infrastructure/storage"
	"github.com/propely/backend/internal/infrastructure/telemetry"
	"github.com/propely/backend/internal/interfaces/http/handler"
	"github.com/propely/backend/internal/interfaces/http/middleware"
	"github.com/propely/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

//	@title			Propely Billing API
//	@version		1.0
//	@description	Property-management billing and payment engine: recurring charges, utility statements, invoices and payments.

//	@contact.name	API Support
//	@contact.url	https://github.com/propely/backend
//	@contact.email	support@propely.io

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	OrgHeader
//	@in							header
//	@name						X-Org-ID
//	@description				Organization scoping header set by the API gateway after authentication.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
		Service:    "propely-billing",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Propely Billing",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Initialize tracing
	tracerProvider, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	// Initialize database connection
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, logger.MapGormLogLevel(cfg.Log.Level))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Register query tracing on the GORM connection
	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
			Enabled:         true,
			LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
			SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		}, log)
		if err := dbTracing.RegisterOtelGorm(db.DB); err != nil {
			log.Warn("Failed to register database tracing", zap.Error(err))
		}
	}

	// Initialize repositories
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	chargeRepo := persistence.NewGormRecurringChargeRepository(db.DB)
	ratePlanRepo := persistence.NewGormRatePlanRepository(db.DB)
	statementRepo := persistence.NewGormUtilityStatementRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	confirmationRepo := persistence.NewGormPaymentConfirmationRepository(db.DB)
	ownerRepo := persistence.NewGormOwnerRepository(db.DB)
	shareRepo := persistence.NewGormOwnershipShareRepository(db.DB)
	orgProvider := persistence.NewGormOrgProvider(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	// Initialize event bus
	eventBus := event.NewInMemoryEventBus(log)
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Idempotency store for payment recording (Redis with in-memory fallback)
	var idempotencyStore shared.IdempotencyStore
	if cfg.Idempotency.Enabled {
		storeFactory := cache.NewIdempotencyStoreFactory(cfg.Redis, cache.WithLogger(log))
		idempotencyStore, err = storeFactory.CreateStore()
		if err != nil {
			log.Fatal("Failed to create idempotency store", zap.Error(err))
		}
	} else {
		idempotencyStore = cache.NewInMemoryIdempotencyStore()
		log.Warn("Idempotency suppression disabled, using in-memory store")
	}

	// Object storage for payment proofs
	var objectStorage billingapp.ObjectStorageService
	if cfg.Storage.Endpoint != "" {
		s3Storage, err := storage.NewS3ObjectStorage(&cfg.Storage,
			storage.WithLogger(log),
			storage.WithPresignExpiration(cfg.Storage.PresignExpiration),
		)
		if err != nil {
			log.Fatal("Failed to initialize object storage", zap.Error(err))
		}
		if err := s3Storage.EnsureBucket(context.Background()); err != nil {
			log.Warn("Failed to ensure storage bucket", zap.Error(err))
		}
		objectStorage = s3Storage
		log.Info("Object storage connected", zap.String("bucket", cfg.Storage.Bucket))
	} else {
		objectStorage = storage.NewStubObjectStorage()
		log.Warn("Object storage not configured, payment proof uploads disabled")
	}

	// Billing engine options from config
	invoiceOpts := buildInvoiceOptions(cfg, log)

	// Initialize application services
	invoiceService := billingapp.NewInvoiceService(
		invoiceRepo, chargeRepo, statementRepo, paymentRepo, eventBus, log, invoiceOpts...,
	)
	chargeService := billingapp.NewRecurringChargeService(chargeRepo, eventBus, log)
	ratePlanService := billingapp.NewRatePlanService(ratePlanRepo, log)
	statementService := billingapp.NewStatementService(statementRepo, ratePlanRepo, txScope, eventBus, log)
	paymentService := billingapp.NewPaymentService(paymentRepo, invoiceRepo, txScope, idempotencyStore, eventBus, log)
	confirmationService := billingapp.NewConfirmationService(
		confirmationRepo, paymentRepo, invoiceRepo, txScope, objectStorage, eventBus, log,
	)
	ownerService := propertyapp.NewOwnerService(ownerRepo, log)
	ownershipService := propertyapp.NewOwnershipService(shareRepo, ownerRepo, log,
		shareToleranceOption(cfg.Billing.OwnershipTolerance, log)...,
	)

	// Billing scheduler: overdue sweeps, charge expiry and monthly invoice
	// generation across all active orgs
	if cfg.Scheduler.Enabled {
		executor := scheduler.NewBillingJobExecutor(invoiceService, invoiceService, chargeService, chargeRepo, log)
		billingScheduler := scheduler.NewScheduler(scheduler.SchedulerConfig{
			Enabled:           cfg.Scheduler.Enabled,
			MaxConcurrentJobs: cfg.Scheduler.MaxConcurrentJobs,
			JobTimeout:        cfg.Scheduler.JobTimeout,
			RetryAttempts:     cfg.Scheduler.RetryAttempts,
			RetryDelay:        cfg.Scheduler.RetryDelay,
		}, executor, log)
		if err := billingScheduler.Start(context.Background()); err != nil {
			log.Fatal("Failed to start billing scheduler", zap.Error(err))
		}
		defer func() {
			if err := billingScheduler.Stop(context.Background()); err != nil {
				log.Error("Error stopping billing scheduler", zap.Error(err))
			}
		}()

		cronConfig := scheduler.DefaultCronTriggerConfig()
		cronConfig.DailySweepHour = cfg.Scheduler.DailySweepHour
		cronConfig.DailySweepMinute = cfg.Scheduler.DailySweepMinute
		cronConfig.InvoiceGenDay = cfg.Scheduler.InvoiceGenDay
		cronConfig.InvoiceGenHour = cfg.Scheduler.InvoiceGenHour
		cronTrigger := scheduler.NewCronTrigger(cronConfig, billingScheduler, orgProvider, log)
		if err := cronTrigger.Start(context.Background()); err != nil {
			log.Fatal("Failed to start cron trigger", zap.Error(err))
		}
		defer func() {
			if err := cronTrigger.Stop(context.Background()); err != nil {
				log.Error("Error stopping cron trigger", zap.Error(err))
			}
		}()
		log.Info("Billing scheduler started",
			zap.Int("max_concurrent_jobs", cfg.Scheduler.MaxConcurrentJobs),
			zap.Int("daily_sweep_hour", cfg.Scheduler.DailySweepHour),
			zap.Int("invoice_gen_day", cfg.Scheduler.InvoiceGenDay),
		)
	}

	// Initialize HTTP handlers
	invoiceHandler := handler.NewInvoiceHandler(invoiceService)
	chargeHandler := handler.NewRecurringChargeHandler(chargeService)
	ratePlanHandler := handler.NewRatePlanHandler(ratePlanService)
	statementHandler := handler.NewUtilityStatementHandler(statementService)
	paymentHandler := handler.NewPaymentHandler(paymentService)
	paymentCallbackHandler := handler.NewPaymentCallbackHandler(paymentService)
	confirmationHandler := handler.NewConfirmationHandler(confirmationService)
	ownerHandler := handler.NewOwnerHandler(ownerService)
	shareHandler := handler.NewOwnershipShareHandler(ownershipService)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Security - Add security headers
	// 5. CORS - Handle cross-origin requests
	// 6. BodyLimit - Limit request body size
	// 7. RateLimit - Apply rate limiting (if enabled)
	// 8. Org - Resolve the caller's org from the gateway header
	// 9. Tracing - Span creation and attribute enrichment
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Org scoping for API routes. Gateway callbacks and health/system
	// endpoints are exempt; callback handlers resolve the org from the
	// webhook's configured X-Org-ID header instead.
	orgConfig := middleware.DefaultOrgConfig()
	orgConfig.Logger = log
	orgConfig.SkipPaths = append(orgConfig.SkipPaths,
		"/api/v1/ping",
		"/api/v1/system/ping",
		"/api/v1/system/info",
		"/api/v1/billing/payments/callback/success",
		"/api/v1/billing/payments/callback/failure",
	)
	engine.Use(middleware.OrgMiddlewareWithConfig(orgConfig))

	if cfg.Telemetry.Enabled {
		engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     true,
		}))
		engine.Use(middleware.SpanErrorMarker())
	}

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db, log))

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// Billing domain (invoices, recurring charges, rate plans, utility
	// statements, payments, payment confirmations)
	billingRoutes := router.NewDomainGroup("billing", "/billing")
	billingRoutes.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "billing service ready"})
	})

	// Invoice routes
	billingRoutes.POST("/invoices/generate", invoiceHandler.Generate)
	billingRoutes.GET("/invoices", invoiceHandler.List)
	billingRoutes.GET("/invoices/:id", invoiceHandler.GetByID)
	billingRoutes.POST("/invoices/:id/issue", invoiceHandler.Issue)
	billingRoutes.POST("/invoices/:id/lines", invoiceHandler.AddLine)
	billingRoutes.DELETE("/invoices/:id/lines/:lineId", invoiceHandler.RemoveLine)
	billingRoutes.POST("/invoices/:id/void", invoiceHandler.Void)
	billingRoutes.POST("/invoices/:id/cancel", invoiceHandler.Cancel)
	billingRoutes.POST("/invoices/overdue-sweep", invoiceHandler.RunOverdueSweep)

	// Recurring charge routes
	billingRoutes.POST("/recurring-charges", chargeHandler.Create)
	billingRoutes.GET("/recurring-charges/:id", chargeHandler.GetByID)
	billingRoutes.PUT("/recurring-charges/:id", chargeHandler.Update)
	billingRoutes.POST("/recurring-charges/:id/deactivate", chargeHandler.Deactivate)
	billingRoutes.POST("/recurring-charges/:id/activate", chargeHandler.Activate)
	billingRoutes.GET("/leases/:leaseId/recurring-charges", chargeHandler.ListByLease)

	// Rate plan routes
	billingRoutes.POST("/rate-plans", ratePlanHandler.Create)
	billingRoutes.GET("/rate-plans", ratePlanHandler.ListActive)
	billingRoutes.GET("/rate-plans/:id", ratePlanHandler.GetByID)
	billingRoutes.PUT("/rate-plans/:id/tiers", ratePlanHandler.UpdateTiers)
	billingRoutes.POST("/rate-plans/:id/deactivate", ratePlanHandler.Deactivate)

	// Utility statement routes
	billingRoutes.POST("/utility-statements/meter", statementHandler.CreateMeter)
	billingRoutes.POST("/utility-statements/direct", statementHandler.CreateDirect)
	billingRoutes.GET("/utility-statements", statementHandler.List)
	billingRoutes.GET("/utility-statements/:id", statementHandler.GetByID)
	billingRoutes.PUT("/utility-statements/:id/readings", statementHandler.UpdateReadings)
	billingRoutes.PUT("/utility-statements/:id/amount", statementHandler.UpdateDirectAmount)
	billingRoutes.POST("/utility-statements/:id/finalize", statementHandler.Finalize)
	billingRoutes.POST("/utility-statements/:id/revise", statementHandler.Revise)

	// Payment routes
	billingRoutes.POST("/payments", paymentHandler.Record)
	billingRoutes.GET("/payments/:id", paymentHandler.GetByID)
	billingRoutes.GET("/payments/:id/history", paymentHandler.History)
	billingRoutes.POST("/payments/:id/confirm", paymentHandler.Confirm)
	billingRoutes.POST("/payments/:id/reject", paymentHandler.Reject)
	billingRoutes.POST("/payments/:id/cancel", paymentHandler.Cancel)
	billingRoutes.POST("/payments/:id/refund", paymentHandler.Refund)
	billingRoutes.GET("/invoices/:id/payments", paymentHandler.ListByInvoice)

	// Gateway webhook callbacks (org resolved from webhook headers)
	billingRoutes.POST("/payments/callback/success", paymentCallbackHandler.HandleSuccess)
	billingRoutes.POST("/payments/callback/failure", paymentCallbackHandler.HandleFailure)

	// Payment confirmation request routes (tenant-claimed payments)
	billingRoutes.POST("/payment-confirmations", confirmationHandler.Submit)
	billingRoutes.GET("/payment-confirmations/pending", confirmationHandler.ListPending)
	billingRoutes.GET("/payment-confirmations/:id", confirmationHandler.GetByID)
	billingRoutes.POST("/payment-confirmations/:id/proof-upload", confirmationHandler.RequestProofUpload)
	billingRoutes.POST("/payment-confirmations/:id/confirm", confirmationHandler.Confirm)
	billingRoutes.POST("/payment-confirmations/:id/reject", confirmationHandler.Reject)
	billingRoutes.POST("/payment-confirmations/:id/cancel", confirmationHandler.Cancel)
	billingRoutes.GET("/invoices/:id/payment-confirmations", confirmationHandler.ListByInvoice)

	// Property domain (owners, ownership shares)
	propertyRoutes := router.NewDomainGroup("property", "/property")
	propertyRoutes.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "property service ready"})
	})

	// Owner routes
	propertyRoutes.POST("/owners", ownerHandler.Create)
	propertyRoutes.GET("/owners", ownerHandler.List)
	propertyRoutes.GET("/owners/:id", ownerHandler.GetByID)
	propertyRoutes.DELETE("/owners/:id", ownerHandler.Delete)
	propertyRoutes.GET("/owners/:id/shares", shareHandler.GetByOwner)

	// Ownership share routes
	propertyRoutes.PUT("/ownership-shares", shareHandler.Replace)
	propertyRoutes.POST("/ownership-shares/validate", shareHandler.Validate)
	propertyRoutes.GET("/ownership-shares/:kind/:parentId", shareHandler.GetByParent)

	r.Register(billingRoutes).
		Register(propertyRoutes)

	// System routes
	systemHandler := handler.NewSystemHandler()
	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Ping)
	r.Register(systemRoutes)

	r.Setup()

	log.Info("Routes mounted",
		zap.Int("billing_routes", billingRoutes.RouteCount()),
		zap.Int("property_routes", propertyRoutes.RouteCount()),
		zap.Int("system_routes", systemRoutes.RouteCount()),
	)

	// Also keep a simple ping at root API level for basic health checks
	engine.GET("/api/v1/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// buildInvoiceOptions translates billing config into invoice service options.
// Malformed values are logged and skipped so the engine falls back to its
// built-in defaults.
func buildInvoiceOptions(cfg *config.Config, log *zap.Logger) []billingapp.InvoiceServiceOption {
	var opts []billingapp.InvoiceServiceOption

	if cfg.Billing.DefaultTaxRate != "" {
		rate, err := decimal.NewFromString(cfg.Billing.DefaultTaxRate)
		if err != nil {
			log.Warn("Invalid billing.default_tax_rate, using default",
				zap.String("value", cfg.Billing.DefaultTaxRate), zap.Error(err))
		} else {
			opts = append(opts, billingapp.WithTaxRate(rate))
		}
	}

	switch strings.ToLower(cfg.Billing.DayCountConvention) {
	case "", "actual":
		opts = append(opts, billingapp.WithDayCountConvention(valueobject.ActualDaysInMonth))
	case "fixed_30":
		opts = append(opts, billingapp.WithDayCountConvention(valueobject.ThirtyDayMonth))
	default:
		log.Warn("Unknown billing.day_count_convention, using actual days",
			zap.String("value", cfg.Billing.DayCountConvention))
	}

	if len(cfg.Billing.UtilityChargeTypes) > 0 {
		chargeTypes := make(map[billing.UtilityType]uuid.UUID, len(cfg.Billing.UtilityChargeTypes))
		for name, id := range cfg.Billing.UtilityChargeTypes {
			utilityType := billing.UtilityType(strings.ToUpper(name))
			if !utilityType.IsValid() {
				log.Warn("Unknown utility type in billing.utility_charge_types",
					zap.String("utility_type", name))
				continue
			}
			chargeTypeID, err := uuid.Parse(id)
			if err != nil {
				log.Warn("Invalid charge type ID in billing.utility_charge_types",
					zap.String("utility_type", name), zap.String("value", id))
				continue
			}
			chargeTypes[utilityType] = chargeTypeID
		}
		if len(chargeTypes) > 0 {
			opts = append(opts, billingapp.WithUtilityChargeTypes(chargeTypes))
		}
	}

	return opts
}

// shareToleranceOption parses the configured ownership tolerance, if any
func shareToleranceOption(raw string, log *zap.Logger) []propertyapp.OwnershipServiceOption {
	if raw == "" {
		return nil
	}
	tolerance, err := decimal.NewFromString(raw)
	if err != nil {
		log.Warn("Invalid billing.ownership_tolerance, using default",
			zap.String("value", raw), zap.Error(err))
		return nil
	}
	return []propertyapp.OwnershipServiceOption{propertyapp.WithShareTolerance(tolerance)}
}

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database, _ *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
