package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"consolidation-service/internal/clients"
	"consolidation-service/internal/config"
	"consolidation-service/internal/events"
	"consolidation-service/internal/handlers"
	"consolidation-service/internal/middleware"
	"consolidation-service/internal/repository"
	"consolidation-service/internal/services"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Initialize configuration
	cfg := config.Load()

	// Initialize database
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	if cfg.Environment == "production" {
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetLevel(logrus.DebugLevel)
	}

	// Initialize Redis client
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Printf("WARNING: Failed to parse Redis URL: %v (continuing without Redis)", err)
		redisOpts = &redis.Options{
			Addr: "localhost:6379",
		}
	}
	redisClient := redis.NewClient(redisOpts)

	// Test Redis connection
	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		log.Printf("WARNING: Failed to connect to Redis: %v (caching will be disabled)", err)
	} else {
		log.Println("✓ Redis connected successfully")
	}
	cancelPing()

	// Initialize repositories
	suppliersRepo := repository.NewSuppliersRepository(db)
	offersRepo := repository.NewOffersRepository(db)
	masterfileRepo := repository.NewMasterFileRepository(db, redisClient)
	rulesRepo := repository.NewRulesRepository(db)
	jobsRepo := repository.NewJobsRepository(db)
	publishRepo := repository.NewPublishRepository(db)

	// Initialize event publisher only if NATS_URL is set
	var eventsPublisher *events.Publisher
	if os.Getenv("NATS_URL") != "" {
		eventsPublisher, err = events.NewPublisher(logger)
		if err != nil {
			log.Printf("WARNING: Failed to initialize events publisher: %v (continuing without event publishing)", err)
		} else {
			log.Println("✓ Events publisher initialized (NATS connected)")
		}
	} else {
		log.Println("NATS_URL not set, skipping event publishing initialization")
	}
	defer eventsPublisher.Close()

	// Initialize clients
	enrichmentClient := clients.NewEnrichmentClient(cfg.EnrichmentServiceURL)
	storefrontClient := clients.NewStorefrontClient(cfg.StorefrontAPIURL, cfg.StorefrontAPIToken)

	// Initialize services
	fieldMapper := services.NewFieldMapper(suppliersRepo)
	passGate := services.NewTenantPassGate()
	builder := services.NewMasterFileBuilder(
		suppliersRepo, offersRepo, masterfileRepo, rulesRepo, jobsRepo,
		passGate, eventsPublisher, logger,
		cfg.ConsolidationWorkers, cfg.SupplierLoadTimeout, cfg.DefaultCurrency,
	)
	importService := services.NewImportService(
		suppliersRepo, offersRepo, jobsRepo, eventsPublisher, logger, cfg.ImportMaxRowErrors,
	)
	syncService := services.NewSyncService(
		publishRepo, jobsRepo, enrichmentClient, storefrontClient,
		eventsPublisher, logger, cfg.SyncRatePerSecond, cfg.PublishBatchSize,
	)
	sweeper := services.NewStuckJobSweeper(jobsRepo, logger, cfg.StuckJobThreshold, cfg.SweepInterval)

	// Start the stuck-job sweep in the background
	sweepCtx, cancelSweep := context.WithCancel(context.Background())
	defer cancelSweep()
	go sweeper.Run(sweepCtx)
	log.Printf("✓ Stuck-job sweeper started (threshold %s, interval %s)", cfg.StuckJobThreshold, cfg.SweepInterval)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(db)
	suppliersHandler := handlers.NewSuppliersHandler(suppliersRepo, fieldMapper)
	rulesHandler := handlers.NewRulesHandler(rulesRepo)
	importHandler := handlers.NewImportHandler(importService, offersRepo)
	consolidationHandler := handlers.NewConsolidationHandler(builder, masterfileRepo)
	jobsHandler := handlers.NewJobsHandler(jobsRepo, sweeper)
	syncHandler := handlers.NewSyncHandler(syncService, publishRepo)

	// Initialize Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS())

	// Health check endpoints (no tenant context required)
	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)

	// API routes, all tenant-scoped
	api := router.Group("/api/v1")
	api.Use(middleware.TenantMiddleware())
	{
		suppliers := api.Group("/suppliers")
		{
			suppliers.GET("", suppliersHandler.ListSuppliers)
			suppliers.POST("", suppliersHandler.CreateSupplier)
			suppliers.GET("/:id", suppliersHandler.GetSupplier)
			suppliers.PUT("/:id", suppliersHandler.UpdateSupplier)
			suppliers.DELETE("/:id", suppliersHandler.DeleteSupplier)
			suppliers.GET("/:id/mappings", suppliersHandler.GetFieldMappings)
			suppliers.PUT("/:id/mappings", suppliersHandler.SaveFieldMappings)
			suppliers.POST("/:id/import", importHandler.ImportPriceList)
		}

		imports := api.Group("/imports")
		{
			imports.GET("/template", importHandler.GetImportTemplate)
			imports.GET("/:runId/rejections", importHandler.ListRejections)
		}

		rules := api.Group("/rules")
		{
			rules.GET("/filters", rulesHandler.ListFilterRules)
			rules.POST("/filters", rulesHandler.CreateFilterRule)
			rules.PUT("/filters/:id", rulesHandler.UpdateFilterRule)
			rules.DELETE("/filters/:id", rulesHandler.DeleteFilterRule)
			rules.GET("/markups", rulesHandler.ListMarkupRules)
			rules.POST("/markups", rulesHandler.CreateMarkupRule)
			rules.DELETE("/markups/:id", rulesHandler.DeleteMarkupRule)
		}

		api.POST("/consolidation/run", consolidationHandler.TriggerPass)

		masterfile := api.Group("/masterfile")
		{
			masterfile.GET("", consolidationHandler.ListEntries)
			masterfile.GET("/facets", consolidationHandler.GetFacets)
			masterfile.GET("/:identityKey", consolidationHandler.GetEntry)
		}

		jobs := api.Group("/jobs")
		{
			jobs.GET("", jobsHandler.ListJobs)
			jobs.GET("/:id", jobsHandler.GetJob)
			jobs.POST("/sweep", jobsHandler.TriggerSweep)
		}

		sync := api.Group("/sync")
		{
			sync.POST("/run", syncHandler.TriggerSync)
			sync.GET("/records/:entryId", syncHandler.GetPublishRecord)
		}
	}

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Consolidation service starting on port %s", cfg.Port)
		if err := router.Run(":" + cfg.Port); err != nil {
			log.Fatal("Failed to start server:", err)
		}
	}()

	<-quit
	log.Println("Shutting down consolidation-service...")
	cancelSweep()
	log.Println("Consolidation service stopped")
}
