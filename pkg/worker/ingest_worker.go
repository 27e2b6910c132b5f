package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/sofrecom-tn/chatbot-admin/internal/service/ingest"
	"github.com/sofrecom-tn/chatbot-admin/pkg/logger"
	"github.com/sofrecom-tn/chatbot-admin/pkg/queue"
	"github.com/sofrecom-tn/chatbot-admin/pkg/storage"
)

// IngestWorker consumes document tasks and runs the ingestion pipeline.
// It also owns the periodic reconciliation and staging cleanup sweeps.
type IngestWorker struct {
	BaseWorker
	pipeline *ingest.Pipeline
	staging  storage.Storage
	cfg      Config
}

func NewIngestWorker(cfg Config, pipeline *ingest.Pipeline, staging storage.Storage, log logger.Logger) *IngestWorker {
	if cfg.Concurrency == 0 {
		cfg.Concurrency = 10
	}
	if cfg.ReconcileEvery == 0 {
		cfg.ReconcileEvery = 5 * time.Minute
	}
	if cfg.StuckThreshold == 0 {
		cfg.StuckThreshold = 10 * time.Minute
	}
	if cfg.StagingTTL == 0 {
		cfg.StagingTTL = 24 * time.Hour
	}

	server := asynq.NewServer(
		asynq.RedisClientOpt{Addr: cfg.RedisAddr, DB: cfg.RedisDB},
		asynq.Config{
			Concurrency: cfg.Concurrency,
			Queues:      cfg.Queues,
			RetryDelayFunc: func(n int, err error, task *asynq.Task) time.Duration {
				return time.Duration(n) * time.Minute
			},
		},
	)

	w := &IngestWorker{
		BaseWorker: BaseWorker{
			server:   server,
			mux:      asynq.NewServeMux(),
			logger:   log,
			stopChan: make(chan struct{}),
		},
		pipeline: pipeline,
		staging:  staging,
		cfg:      cfg,
	}
	w.registerHandlers()
	return w
}

func (w *IngestWorker) registerHandlers() {
	w.mux.HandleFunc(queue.TaskTypeDocumentIngest, w.handleIngest)
	w.mux.HandleFunc(queue.TaskTypeDocumentReindex, w.handleReindex)
	w.mux.HandleFunc(queue.TaskTypeReconcile, w.handleReconcile)
}

// handleReconcile lets an external scheduler trigger the sweep on demand,
// in addition to the built-in ticker.
func (w *IngestWorker) handleReconcile(ctx context.Context, _ *asynq.Task) error {
	w.sweep(ctx)
	return nil
}

func (w *IngestWorker) handleIngest(ctx context.Context, t *asynq.Task) error {
	docID, err := docIDFromTask(t)
	if err != nil {
		w.logger.Error("Dropping malformed ingest task",
			logger.String("payload", string(t.Payload())),
			logger.Error(err),
		)
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	w.logger.Info("Ingesting document", logger.String("docId", docID))
	return w.pipeline.Run(ctx, docID)
}

func (w *IngestWorker) handleReindex(ctx context.Context, t *asynq.Task) error {
	docID, err := docIDFromTask(t)
	if err != nil {
		w.logger.Error("Dropping malformed reindex task",
			logger.String("payload", string(t.Payload())),
			logger.Error(err),
		)
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	w.logger.Info("Reindexing document", logger.String("docId", docID))
	return w.pipeline.Reindex(ctx, docID)
}

func docIDFromTask(t *asynq.Task) (string, error) {
	var payload queue.IngestPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return "", fmt.Errorf("unmarshal payload: %w", err)
	}
	if payload.DocumentID == "" {
		return "", fmt.Errorf("payload missing document id")
	}
	return payload.DocumentID, nil
}

// Start launches the task server and the periodic sweeps. Both stop when
// ctx is cancelled.
func (w *IngestWorker) Start(ctx context.Context) error {
	go func() {
		if err := w.server.Run(w.mux); err != nil {
			w.logger.Error("Worker server stopped", logger.Error(err))
		}
	}()

	go w.runSweeps(ctx)

	go func() {
		select {
		case <-ctx.Done():
			w.Stop()
		case <-w.stopChan:
		}
	}()

	return nil
}

func (w *IngestWorker) runSweeps(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.ReconcileEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopChan:
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *IngestWorker) sweep(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-w.cfg.StuckThreshold)
	if err := w.pipeline.Reconcile(ctx, cutoff); err != nil {
		w.logger.Error("Reconciliation sweep failed", logger.Error(err))
	}

	threshold := time.Now().UTC().Add(-w.cfg.StagingTTL)
	if err := w.staging.CleanupBefore(ctx, threshold); err != nil {
		w.logger.Error("Staging cleanup failed", logger.Error(err))
	}
}
