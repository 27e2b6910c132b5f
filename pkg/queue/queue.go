package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

// Task types handled by the document worker.
const (
	TaskTypeDocumentIngest  = "document:ingest"
	TaskTypeDocumentReindex = "document:reindex"
	TaskTypeReconcile       = "document:reconcile"
)

// IngestPayload is the payload for ingest and reindex tasks.
type IngestPayload struct {
	DocumentID string `json:"docId"`
}

// JobStatus mirrors the pipeline's progress for fast polling, keyed by
// document id with a bounded TTL.
type JobStatus struct {
	DocumentID string    `json:"docId"`
	State      string    `json:"state"` // pending|running|completed|failed
	Stage      string    `json:"stage,omitempty"`
	Error      string    `json:"error,omitempty"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Queue enqueues ingestion work and tracks job status.
type Queue interface {
	EnqueueIngest(ctx context.Context, docID string) error
	EnqueueReindex(ctx context.Context, docID string) error
	SetJobStatus(ctx context.Context, status *JobStatus) error
	GetJobStatus(ctx context.Context, docID string) (*JobStatus, error)
	Close() error
}

// Config defines queue connection settings.
type Config struct {
	RedisAddr  string
	RedisDB    int
	MaxRetries int
	Timeout    time.Duration
	StatusTTL  time.Duration
}

// AsynqQueue is the Redis-backed Queue used in production.
type AsynqQueue struct {
	client *asynq.Client
	redis  *redis.Client
	cfg    Config
}

// ErrStatusNotFound is returned when no job status is recorded for an id.
var ErrStatusNotFound = errors.New("job status not found")

func New(cfg Config) *AsynqQueue {
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Minute
	}
	if cfg.StatusTTL == 0 {
		cfg.StatusTTL = 24 * time.Hour
	}

	redisOpt := asynq.RedisClientOpt{Addr: cfg.RedisAddr, DB: cfg.RedisDB}
	return &AsynqQueue{
		client: asynq.NewClient(redisOpt),
		redis:  redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB}),
		cfg:    cfg,
	}
}

func (q *AsynqQueue) EnqueueIngest(ctx context.Context, docID string) error {
	return q.enqueue(ctx, TaskTypeDocumentIngest, docID)
}

func (q *AsynqQueue) EnqueueReindex(ctx context.Context, docID string) error {
	return q.enqueue(ctx, TaskTypeDocumentReindex, docID)
}

func (q *AsynqQueue) enqueue(ctx context.Context, taskType, docID string) error {
	payload, err := json.Marshal(IngestPayload{DocumentID: docID})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	opts := []asynq.Option{
		asynq.MaxRetry(q.cfg.MaxRetries),
		asynq.Timeout(q.cfg.Timeout),
		// The id is shared across ingest and reindex: at most one task of
		// either type may be in flight for a document, since reindex purges
		// chunks an in-flight ingest would still be submitting.
		asynq.TaskID("document:" + docID),
	}

	_, err = q.client.EnqueueContext(ctx, asynq.NewTask(taskType, payload, opts...))
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		// Already queued; enqueueing again must stay idempotent.
		return nil
	}
	if err != nil {
		return fmt.Errorf("enqueue %s: %w", taskType, err)
	}
	return nil
}

func (q *AsynqQueue) SetJobStatus(ctx context.Context, status *JobStatus) error {
	status.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("marshal status: %w", err)
	}
	key := statusKey(status.DocumentID)
	if err := q.redis.Set(ctx, key, data, q.cfg.StatusTTL).Err(); err != nil {
		return fmt.Errorf("save status: %w", err)
	}
	return nil
}

func (q *AsynqQueue) GetJobStatus(ctx context.Context, docID string) (*JobStatus, error) {
	data, err := q.redis.Get(ctx, statusKey(docID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrStatusNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get status: %w", err)
	}

	var status JobStatus
	if err := json.Unmarshal(data, &status); err != nil {
		return nil, fmt.Errorf("unmarshal status: %w", err)
	}
	return &status, nil
}

func (q *AsynqQueue) Close() error {
	if err := q.client.Close(); err != nil {
		return err
	}
	return q.redis.Close()
}

func statusKey(docID string) string {
	return "job_status:" + docID
}
