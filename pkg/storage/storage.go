package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/sofrecom-tn/chatbot-admin/pkg/logger"
	"github.com/sofrecom-tn/chatbot-admin/pkg/storage/memory"
	"github.com/sofrecom-tn/chatbot-admin/pkg/storage/minio"
)

// Type selects a staging backend.
type Type string

const (
	TypeMinio  Type = "minio"
	TypeMemory Type = "memory"
)

// Storage stages uploaded files between the upload request and the worker
// that ingests them. Objects are transient: the pipeline deletes them once
// ingestion finishes, whatever the outcome.
type Storage interface {
	// Store writes the object and returns its key.
	Store(ctx context.Context, reader io.Reader, key string) (string, error)
	// Get opens the object for reading.
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete removes the object. Deleting a missing object is not an error.
	Delete(ctx context.Context, key string) error
	// CleanupBefore removes objects older than threshold, bounding disk
	// usage when ingestion tasks are lost.
	CleanupBefore(ctx context.Context, threshold time.Time) error
}

// New creates the staging backend for the given type.
func New(storageType Type, cfg minio.Config, log logger.Logger) (Storage, error) {
	switch storageType {
	case TypeMinio:
		return minio.NewStorage(cfg, log)
	case TypeMemory:
		return memory.NewStorage(), nil
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", storageType)
	}
}
