package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	partyapp "github.com/mdm/backend/internal/application/party"
	referenceapp "github.com/mdm/backend/internal/application/reference"
	"github.com/mdm/backend/internal/domain/constraint"
	"github.com/mdm/backend/internal/domain/reference"
	"github.com/mdm/backend/internal/domain/validation"
	"github.com/mdm/backend/internal/infrastructure/config"
	"github.com/mdm/backend/internal/infrastructure/logger"
	"github.com/mdm/backend/internal/infrastructure/persistence"
	"github.com/mdm/backend/internal/interfaces/http/handler"
	"github.com/mdm/backend/internal/interfaces/http/middleware"
	"github.com/mdm/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

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
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Party MDM Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize repositories
	partyRepo := persistence.NewGormPartyRepository(db.DB)
	associationRepo := persistence.NewGormAssociationRepository(db.DB)
	mandateRepo := persistence.NewGormMandateRepository(db.DB)
	snapshotStore := persistence.NewGormSnapshotStore(db.DB)
	referenceLoader := persistence.NewGormReferenceLoader(db.DB)
	txManager := persistence.NewGormTransactionManager(db.DB)

	// Load reference data into the in-memory store
	referenceStore := reference.NewStore(referenceLoader, reference.WithStoreLogger(log))
	if err := referenceStore.Reload(context.Background()); err != nil {
		log.Fatal("Failed to load reference data", zap.Error(err))
	}
	log.Info("Reference data loaded")

	// Periodic reference reload, so code table edits show up without a restart
	reloadCtx, stopReload := context.WithCancel(context.Background())
	defer stopReload()
	if cfg.Reference.ReloadInterval > 0 {
		go func() {
			ticker := time.NewTicker(cfg.Reference.ReloadInterval)
			defer ticker.Stop()
			for {
				select {
				case <-reloadCtx.Done():
					return
				case <-ticker.C:
					if err := referenceStore.Reload(reloadCtx); err != nil {
						log.Warn("Reference reload failed", zap.Error(err))
					}
				}
			}
		}()
		log.Info("Reference reload scheduled",
			zap.Duration("interval", cfg.Reference.ReloadInterval))
	}

	resolver, err := reference.NewResolver(referenceStore,
		reference.WithSupportedLocales(cfg.Reference.SupportedLocales))
	if err != nil {
		log.Fatal("Failed to build reference resolver", zap.Error(err))
	}
	constraintEngine := constraint.NewEngine(referenceStore, resolver)
	validationEngine := validation.NewEngine(resolver, constraintEngine)

	// Initialize application services
	partyService := partyapp.NewService(partyRepo, snapshotStore, validationEngine, txManager, log)
	associationService := partyapp.NewAssociationService(
		partyRepo, associationRepo, mandateRepo, snapshotStore, validationEngine, txManager,
	)
	referenceService := referenceapp.NewService(referenceStore, resolver, constraintEngine)

	// Initialize handlers
	systemHandler := handler.NewSystemHandler(db)
	referenceHandler := handler.NewReferenceHandler(referenceService)
	partyHandler := handler.NewPartyHandler(partyService)
	associationHandler := handler.NewAssociationHandler(associationService)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	// Initialize router with custom middleware
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
	// 7. TenantContext - Resolve tenant and locale headers
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	// Configure CORS from config
	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Body size limit
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Tenant and locale resolution
	engine.Use(middleware.TenantContext(middleware.WithDefaultLocale(cfg.Reference.DefaultLocale)))

	// Health check outside the versioned API
	engine.GET("/health", healthHandler(db, log))

	// Register API routes
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	router.RegisterAll(r, router.Handlers{
		System:      systemHandler,
		Reference:   referenceHandler,
		Party:       partyHandler,
		Association: associationHandler,
	})
	r.Setup()

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
	stopReload()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
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
