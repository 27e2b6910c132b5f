package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sofrecom-tn/chatbot-admin/config"
	"github.com/sofrecom-tn/chatbot-admin/internal/extractor"
	"github.com/sofrecom-tn/chatbot-admin/internal/indexing"
	"github.com/sofrecom-tn/chatbot-admin/internal/service/ingest"
	"github.com/sofrecom-tn/chatbot-admin/internal/store/mongostore"
	"github.com/sofrecom-tn/chatbot-admin/pkg/logger"
	"github.com/sofrecom-tn/chatbot-admin/pkg/queue"
	"github.com/sofrecom-tn/chatbot-admin/pkg/storage"
	"github.com/sofrecom-tn/chatbot-admin/pkg/storage/minio"
	"github.com/sofrecom-tn/chatbot-admin/pkg/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.NewLogger(
		logger.WithLevel(cfg.LogLevel),
		logger.WithEncoding(cfg.LogEncoding),
		logger.WithOutputPaths(cfg.LogOutputs),
	)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mongoClient, err := mongostore.Connect(ctx, cfg.MongoURI, cfg.MongoDB, log)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB", logger.Error(err))
	}
	defer mongoClient.Close(context.Background())

	staging, err := storage.New(storage.Type(cfg.StorageType), minio.Config{
		Endpoint:  cfg.MinioEndpoint,
		AccessKey: cfg.MinioAccessKey,
		SecretKey: cfg.MinioSecretKey,
		Bucket:    cfg.MinioBucket,
		UseSSL:    cfg.MinioUseSSL,
		Region:    cfg.MinioRegion,
	}, log)
	if err != nil {
		log.Fatal("Failed to init staging storage", logger.Error(err))
	}

	var gateway indexing.Gateway
	if cfg.IndexingBaseURL != "" {
		gateway = indexing.NewHTTPGateway(cfg.IndexingBaseURL, cfg.IndexingTimeout, log)
	} else {
		log.Warn("ACTION_SERVER_URL not set, using in-memory index")
		gateway = indexing.NewMemoryGateway()
	}

	jobs := queue.New(queue.Config{RedisAddr: cfg.RedisAddr, RedisDB: cfg.RedisDB})
	defer jobs.Close()

	pipeline := ingest.NewPipeline(
		mongoClient.Documents(), staging, extractor.NewRegistry(log), gateway, jobs, log,
		ingest.Config{ChunkSize: cfg.ChunkSize, ChunkOverlap: cfg.ChunkOverlap},
	)

	ingestWorker := worker.NewIngestWorker(worker.Config{
		RedisAddr:   cfg.RedisAddr,
		RedisDB:     cfg.RedisDB,
		Concurrency: cfg.WorkerConcurrency,
		Queues: map[string]int{
			"critical": 6,
			"default":  3,
			"low":      1,
		},
		ReconcileEvery: cfg.ReconcileEvery,
		StuckThreshold: cfg.StuckThreshold,
	}, pipeline, staging, log)

	if err := ingestWorker.Start(ctx); err != nil {
		log.Fatal("Failed to start worker", logger.Error(err))
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Info("Shutting down worker...")
	ingestWorker.Stop()
	log.Info("Worker stopped")
}
