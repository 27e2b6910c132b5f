package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config is the full runtime configuration, loaded once in main and passed
// into each component at construction time. Nothing reads the environment
// after Load returns.
type Config struct {
	HTTPAddr string

	MongoURI string
	MongoDB  string

	RedisAddr string
	RedisDB   int

	// Staging storage for uploads.
	StorageType    string
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool
	MinioRegion    string

	// Indexing gateway; empty base URL selects the in-memory gateway so a
	// missing embedding service never blocks local development.
	IndexingBaseURL string
	IndexingTimeout time.Duration

	// Upload limits.
	MaxUploadBytes int64

	// Chunking parameters; defaults keep the 80% new-content ratio.
	ChunkSize    int
	ChunkOverlap int

	// Reconciliation sweep.
	ReconcileEvery    time.Duration
	StuckThreshold    time.Duration
	WorkerConcurrency int

	// Auth.
	JWTSecret string
	JWTTTL    time.Duration

	// Logging.
	LogLevel    string
	LogEncoding string
	LogOutputs  []string
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := &Config{
		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),

		MongoURI: getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:  getEnv("MONGO_DB", "chatbot_admin"),

		RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:   getEnvInt("REDIS_DB", 0),

		StorageType:    getEnv("STORAGE_TYPE", "minio"),
		MinioEndpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
		MinioAccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		MinioSecretKey: os.Getenv("MINIO_SECRET_KEY"),
		MinioBucket:    getEnv("MINIO_BUCKET_NAME", "chatbot-uploads"),
		MinioUseSSL:    getEnvBool("MINIO_USE_SSL", false),
		MinioRegion:    os.Getenv("MINIO_REGION"),

		IndexingBaseURL: os.Getenv("ACTION_SERVER_URL"),
		IndexingTimeout: getEnvDuration("INDEXING_TIMEOUT", 30*time.Second),

		MaxUploadBytes: getEnvInt64("MAX_UPLOAD_BYTES", 10*1024*1024),

		ChunkSize:    getEnvInt("CHUNK_SIZE", 1000),
		ChunkOverlap: getEnvInt("CHUNK_OVERLAP", 200),

		ReconcileEvery:    getEnvDuration("RECONCILE_EVERY", 5*time.Minute),
		StuckThreshold:    getEnvDuration("STUCK_THRESHOLD", 10*time.Minute),
		WorkerConcurrency: getEnvInt("WORKER_CONCURRENCY", 10),

		JWTSecret: getEnv("JWT_SECRET", ""),
		JWTTTL:    getEnvDuration("JWT_TTL", 24*time.Hour),

		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogEncoding: getEnv("LOG_ENCODING", "json"),
		LogOutputs:  []string{"stdout"},
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET must be set")
	}
	if cfg.ChunkOverlap >= cfg.ChunkSize {
		return nil, fmt.Errorf("CHUNK_OVERLAP (%d) must be smaller than CHUNK_SIZE (%d)", cfg.ChunkOverlap, cfg.ChunkSize)
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
