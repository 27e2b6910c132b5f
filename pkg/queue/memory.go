package queue

import (
	"context"
	"sync"
)

// MemoryQueue records enqueued work for tests.
type MemoryQueue struct {
	mu        sync.Mutex
	ingests   []string
	reindexes []string
	statuses  map[string]JobStatus
}

func NewMemoryQueue() *MemoryQueue {
	return &MemoryQueue{statuses: make(map[string]JobStatus)}
}

func (q *MemoryQueue) EnqueueIngest(_ context.Context, docID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.ingests = append(q.ingests, docID)
	return nil
}

func (q *MemoryQueue) EnqueueReindex(_ context.Context, docID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.reindexes = append(q.reindexes, docID)
	return nil
}

func (q *MemoryQueue) SetJobStatus(_ context.Context, status *JobStatus) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.statuses[status.DocumentID] = *status
	return nil
}

func (q *MemoryQueue) GetJobStatus(_ context.Context, docID string) (*JobStatus, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	status, ok := q.statuses[docID]
	if !ok {
		return nil, ErrStatusNotFound
	}
	copied := status
	return &copied, nil
}

func (q *MemoryQueue) Close() error { return nil }

// EnqueuedIngests returns a copy of ingest ids enqueued so far.
func (q *MemoryQueue) EnqueuedIngests() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]string(nil), q.ingests...)
}

// EnqueuedReindexes returns a copy of reindex ids enqueued so far.
func (q *MemoryQueue) EnqueuedReindexes() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]string(nil), q.reindexes...)
}
