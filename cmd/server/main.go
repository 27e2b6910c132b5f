package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sofrecom-tn/chatbot-admin/api/handlers"
	"github.com/sofrecom-tn/chatbot-admin/api/routes"
	"github.com/sofrecom-tn/chatbot-admin/config"
	"github.com/sofrecom-tn/chatbot-admin/internal/extractor"
	"github.com/sofrecom-tn/chatbot-admin/internal/indexing"
	"github.com/sofrecom-tn/chatbot-admin/internal/service/analytics"
	"github.com/sofrecom-tn/chatbot-admin/internal/service/auth"
	"github.com/sofrecom-tn/chatbot-admin/internal/service/conversation"
	"github.com/sofrecom-tn/chatbot-admin/internal/service/document"
	"github.com/sofrecom-tn/chatbot-admin/internal/service/intent"
	"github.com/sofrecom-tn/chatbot-admin/internal/store/mongostore"
	"github.com/sofrecom-tn/chatbot-admin/pkg/logger"
	"github.com/sofrecom-tn/chatbot-admin/pkg/queue"
	"github.com/sofrecom-tn/chatbot-admin/pkg/storage"
	"github.com/sofrecom-tn/chatbot-admin/pkg/storage/minio"
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

	ctx := context.Background()

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

	registry := extractor.NewRegistry(log)

	docService := document.NewService(
		mongoClient.Documents(), staging, registry, gateway, jobs, log,
		document.Config{MaxFileSize: cfg.MaxUploadBytes},
	)
	intentService := intent.NewService(mongoClient.Intents(), log)
	convService := conversation.NewService(mongoClient.Conversations(), log)
	statsService := analytics.NewService(mongoClient.Conversations(), mongoClient.Analytics(), log)
	authService := auth.NewService(mongoClient.Users(), log, auth.Config{
		Secret: cfg.JWTSecret,
		TTL:    cfg.JWTTTL,
	})

	h := handlers.NewHandlers(docService, intentService, convService, statsService, authService, log)

	r := gin.New()
	r.Use(gin.Recovery())
	routes.SetupRoutes(r, h, authService)

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	go func() {
		log.Info("Server starting", logger.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server error", logger.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", logger.Error(err))
	}
}
