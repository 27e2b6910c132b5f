package document

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sofrecom-tn/chatbot-admin/internal/apperr"
	"github.com/sofrecom-tn/chatbot-admin/internal/extractor"
	"github.com/sofrecom-tn/chatbot-admin/internal/indexing"
	"github.com/sofrecom-tn/chatbot-admin/internal/models"
	"github.com/sofrecom-tn/chatbot-admin/internal/store"
	"github.com/sofrecom-tn/chatbot-admin/pkg/logger"
	"github.com/sofrecom-tn/chatbot-admin/pkg/queue"
	"github.com/sofrecom-tn/chatbot-admin/pkg/storage"
)

// Config bounds what the upload endpoint accepts.
type Config struct {
	MaxFileSize int64
}

// Service owns the admin-facing document operations. Ingestion itself runs
// on the worker; upload only stages the file and enqueues the job so large
// PDFs never block the request.
type Service struct {
	docs    store.DocumentStore
	staging storage.Storage
	extract *extractor.Registry
	gateway indexing.Gateway
	jobs    queue.Queue
	logger  logger.Logger
	cfg     Config
}

func NewService(
	docs store.DocumentStore,
	staging storage.Storage,
	extract *extractor.Registry,
	gateway indexing.Gateway,
	jobs queue.Queue,
	log logger.Logger,
	cfg Config,
) *Service {
	if cfg.MaxFileSize == 0 {
		cfg.MaxFileSize = 10 * 1024 * 1024 // 10MB
	}
	return &Service{
		docs:    docs,
		staging: staging,
		extract: extract,
		gateway: gateway,
		jobs:    jobs,
		logger:  log,
		cfg:     cfg,
	}
}

// Upload validates, stages and registers one uploaded file, then enqueues
// its ingestion. The returned record is in processing state; callers poll
// GET /documents/:id until it reaches indexed or failed.
func (s *Service) Upload(ctx context.Context, file multipart.File, header *multipart.FileHeader) (*models.Document, error) {
	if err := s.validate(header); err != nil {
		return nil, err
	}

	doc := &models.Document{
		ID:           primitive.NewObjectID(),
		Name:         header.Filename,
		OriginalName: header.Filename,
		MimeType:     header.Header.Get("Content-Type"),
		Size:         header.Size,
		Status:       models.StatusProcessing,
	}
	doc.StorageKey = fmt.Sprintf("uploads/%s%s", doc.ID.Hex(), strings.ToLower(filepath.Ext(header.Filename)))

	if _, err := s.staging.Store(ctx, file, doc.StorageKey); err != nil {
		return nil, fmt.Errorf("stage upload: %w", err)
	}

	if err := s.docs.Create(ctx, doc); err != nil {
		// The record is the source of truth; drop the orphaned object.
		if derr := s.staging.Delete(ctx, doc.StorageKey); derr != nil {
			s.logger.Warn("Failed to drop staged upload after create error",
				logger.String("key", doc.StorageKey),
				logger.Error(derr),
			)
		}
		return nil, fmt.Errorf("create document record: %w", err)
	}

	if err := s.jobs.SetJobStatus(ctx, &queue.JobStatus{
		DocumentID: doc.ID.Hex(),
		State:      "pending",
	}); err != nil {
		s.logger.Warn("Failed to publish initial job status",
			logger.String("docId", doc.ID.Hex()),
			logger.Error(err),
		)
	}

	if err := s.jobs.EnqueueIngest(ctx, doc.ID.Hex()); err != nil {
		// Record stays in processing; the reconciliation sweep re-enqueues
		// it, so the upload is not lost.
		s.logger.Error("Failed to enqueue ingestion",
			logger.String("docId", doc.ID.Hex()),
			logger.Error(err),
		)
		return doc, nil
	}

	s.logger.Info("Upload accepted",
		logger.String("docId", doc.ID.Hex()),
		logger.String("filename", header.Filename),
		logger.Int64("size", header.Size),
	)
	return doc, nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.Document, error) {
	return s.docs.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, page, limit int) ([]models.Document, models.Pagination, error) {
	docs, total, err := s.docs.List(ctx, page, limit)
	if err != nil {
		return nil, models.Pagination{}, err
	}
	return docs, models.NewPagination(page, limit, total), nil
}

// Delete removes the record first so it disappears from listings
// immediately, then asks the gateway to drop the document's chunks. The two
// stores are not updated atomically: a gateway failure here leaves orphaned
// chunks, which is logged for the operator rather than failing the request.
func (s *Service) Delete(ctx context.Context, id string) error {
	doc, err := s.docs.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.docs.Delete(ctx, id); err != nil {
		return err
	}

	if err := s.gateway.DeleteByDocument(ctx, id); err != nil {
		s.logger.Error("Orphaned chunks: record deleted but gateway purge failed",
			logger.String("docId", id),
			logger.Error(err),
		)
	}

	if doc.StorageKey != "" {
		if err := s.staging.Delete(ctx, doc.StorageKey); err != nil {
			s.logger.Warn("Failed to drop staged upload on delete",
				logger.String("key", doc.StorageKey),
				logger.Error(err),
			)
		}
	}

	s.logger.Info("Document deleted",
		logger.String("docId", id),
		logger.String("name", doc.Name),
	)
	return nil
}

// Reindex schedules a re-run of chunking and indexing for the document.
func (s *Service) Reindex(ctx context.Context, id string) (*models.Document, error) {
	doc, err := s.docs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc.Content == "" {
		return nil, apperr.Validation("document has no extracted text to reindex")
	}

	if err := s.jobs.EnqueueReindex(ctx, id); err != nil {
		return nil, fmt.Errorf("enqueue reindex: %w", err)
	}

	s.logger.Info("Reindex scheduled", logger.String("docId", id))
	return doc, nil
}

// Search queries the semantic index.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]indexing.Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, apperr.Validation("query must not be empty")
	}
	if limit <= 0 {
		limit = 5
	}
	return s.gateway.Search(ctx, query, limit)
}

// Status reports the ingestion job state for polling clients, falling back
// to the durable record when the fast mirror has expired.
func (s *Service) Status(ctx context.Context, id string) (*queue.JobStatus, error) {
	status, err := s.jobs.GetJobStatus(ctx, id)
	if err == nil {
		return status, nil
	}
	if !errors.Is(err, queue.ErrStatusNotFound) {
		return nil, err
	}

	doc, err := s.docs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	status = &queue.JobStatus{DocumentID: id, UpdatedAt: doc.UpdatedAt}
	switch doc.Status {
	case models.StatusIndexed:
		status.State = "completed"
	case models.StatusFailed:
		status.State = "failed"
		if doc.Error != nil {
			status.Stage = doc.Error.Stage
			status.Error = doc.Error.Message
		}
	default:
		status.State = "running"
		if doc.Error != nil {
			status.Stage = doc.Error.Stage
			status.Error = doc.Error.Message
		}
	}
	return status, nil
}

func (s *Service) validate(header *multipart.FileHeader) error {
	if header.Size > s.cfg.MaxFileSize {
		return apperr.Validation(fmt.Sprintf(
			"file exceeds maximum size of %d bytes", s.cfg.MaxFileSize))
	}
	if !s.extract.Supported(header.Filename) {
		return apperr.Validation(fmt.Sprintf(
			"unsupported file type %q, allowed: %s",
			filepath.Ext(header.Filename), strings.Join(s.extract.Extensions(), " ")))
	}
	return nil
}
