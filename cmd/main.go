package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"brandguard-platform/internal/ai"
	"brandguard-platform/internal/config"
	"brandguard-platform/internal/docstore"
	"brandguard-platform/internal/logger"
	"brandguard-platform/internal/pipeline"
	"brandguard-platform/internal/registry"
	"brandguard-platform/internal/telemetry"
	"brandguard-platform/middleware"
	"brandguard-platform/routes"
	"brandguard-platform/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger.InitLogger(cfg)

	// Tracing and metrics
	shutdownTracer, err := telemetry.InitTracer("brandguard-platform")
	if err != nil {
		logger.Warn("Tracing disabled", "error", err)
	} else {
		defer shutdownTracer()
	}
	metrics, err := telemetry.InitMetrics()
	if err != nil {
		log.Fatal("Failed to init metrics:", err)
	}

	// Connect to MongoDB
	mongoClient, err := config.ConnectMongoDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		mongoClient.Disconnect(ctx)
	}()
	db := mongoClient.Database(cfg.DBName)

	// Connect to Redis
	rdb, err := config.NewRedisClient(cfg)
	if err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer rdb.Close()

	// Tenant registry and document store
	startCtx, startCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startCancel()

	reg, err := registry.NewMongoRegistry(startCtx, db)
	if err != nil {
		log.Fatal("Failed to init client registry:", err)
	}
	store, err := docstore.NewMongoStore(startCtx, db, cfg.VectorIndexName, cfg.VectorSearchEnabled)
	if err != nil {
		log.Fatal("Failed to init document store:", err)
	}

	// Model clients
	geminiEmbedder, err := ai.NewGeminiEmbedder(startCtx, cfg)
	if err != nil {
		log.Fatal("Failed to init embedder:", err)
	}
	defer geminiEmbedder.Close()
	embedder := ai.NewCachedEmbedder(geminiEmbedder, rdb, cfg.GoogleEmbeddingsModel)

	completer, err := ai.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiTier)
	if err != nil {
		log.Fatal("Failed to init Gemini client:", err)
	}
	defer completer.Close()

	pipe := pipeline.New(reg, store, embedder, completer)
	quotas := ai.NewQuotaStore(db)
	exporter := services.NewExportService(reg, store)

	// Background ingestion queue
	queueClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.RedisURL,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer queueClient.Close()

	// Periodic grounding gap scan
	scanner := services.NewGroundingGapScanner(cfg, reg, store)
	if err := scanner.Start(); err != nil {
		logger.Warn("Grounding gap scanner disabled", "error", err)
	} else {
		defer scanner.Stop()
	}

	// Initialize Gin router
	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.TracingMiddleware())
	router.Use(middleware.EnrichTrace())
	router.Use(middleware.MetricsMiddleware(metrics))
	router.Use(middleware.RateLimitMiddleware(rdb, cfg))

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"}
	corsConfig.AllowCredentials = true
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "timestamp": time.Now()})
	})

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg, rdb)
	roleMiddleware := middleware.NewRoleMiddleware()

	// Setup routes
	routes.SetupAuthRoutes(router, cfg, rdb, reg, authMiddleware, roleMiddleware)
	routes.SetupClientRoutes(router, reg, quotas, rdb, authMiddleware, roleMiddleware)
	routes.SetupDocumentRoutes(router, cfg, reg, store, embedder, queueClient, authMiddleware, roleMiddleware)
	routes.SetupContentRoutes(router, pipe, quotas, exporter, metrics, authMiddleware, roleMiddleware)

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	logger.Info("Server exited")
}
