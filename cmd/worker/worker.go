package main

import (
	"context"
	"log"
	"time"

	"brandguard-platform/internal/ai"
	"brandguard-platform/internal/config"
	"brandguard-platform/internal/docstore"
	"brandguard-platform/internal/ingest"
	"brandguard-platform/internal/logger"
	"brandguard-platform/internal/queue"
	"brandguard-platform/internal/registry"

	"github.com/hibiken/asynq"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger.InitLogger(cfg)

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

	// Connect to Redis for the embedding cache
	rdb, err := config.NewRedisClient(cfg)
	if err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer rdb.Close()

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

	geminiEmbedder, err := ai.NewGeminiEmbedder(startCtx, cfg)
	if err != nil {
		log.Fatal("Failed to init embedder:", err)
	}
	defer geminiEmbedder.Close()
	embedder := ai.NewCachedEmbedder(geminiEmbedder, rdb, cfg.GoogleEmbeddingsModel)

	chunker := ingest.NewChunker(cfg.MaxChunkSize, cfg.ChunkOverlap)

	// Redis options for Asynq
	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.RedisURL,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}

	// Create Asynq server
	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 20,
			Queues: map[string]int{
				"critical": 6, // uploads
				"default":  3, // URL imports
				"low":      1,
			},
			StrictPriority: true,
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				logger.Error("Task failed", "type", task.Type(), "error", err)
			}),
		},
	)

	// Create task processor
	processor := queue.NewTaskProcessor(reg, store, embedder, chunker)

	// Create mux and register handlers
	mux := asynq.NewServeMux()
	mux.HandleFunc(queue.TaskProcessDocument, processor.ProcessDocument)
	mux.HandleFunc(queue.TaskImportURL, processor.ImportURL)

	logger.Info("Starting ingestion worker",
		"concurrency", 20,
		"redis", redisOpt.Addr,
	)

	// Start the server
	if err := server.Run(mux); err != nil {
		log.Fatal("Failed to start worker:", err)
	}
}
