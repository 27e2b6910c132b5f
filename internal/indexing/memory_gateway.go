package indexing

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// MemoryGateway keeps chunks in process memory. It backs tests and local
// development when no embedding service is running: searches return scored
// substring matches instead of semantic ones, and nothing ever crashes the
// pipeline.
type MemoryGateway struct {
	mu     sync.RWMutex
	chunks map[string][]string
	meta   map[string]Metadata

	// FailIndexing simulates an unreachable index service in tests.
	FailIndexing bool
}

func NewMemoryGateway() *MemoryGateway {
	return &MemoryGateway{
		chunks: make(map[string][]string),
		meta:   make(map[string]Metadata),
	}
}

func (m *MemoryGateway) IndexChunks(_ context.Context, docID string, chunks []string, meta Metadata) (int, error) {
	if m.FailIndexing {
		return 0, fmt.Errorf("index service unavailable")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.chunks[docID] = append([]string(nil), chunks...)
	m.meta[docID] = meta
	return len(chunks), nil
}

func (m *MemoryGateway) DeleteByDocument(_ context.Context, docID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.chunks, docID)
	delete(m.meta, docID)
	return nil
}

func (m *MemoryGateway) Search(_ context.Context, query string, limit int) ([]Result, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	q := strings.ToLower(query)
	var results []Result
	for docID, chunks := range m.chunks {
		for i, chunk := range chunks {
			if q != "" && !strings.Contains(strings.ToLower(chunk), q) {
				continue
			}
			results = append(results, Result{
				DocumentID: docID,
				ChunkRef:   fmt.Sprintf("%s:%d", docID, i),
				Text:       chunk,
				Score:      1.0,
			})
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].ChunkRef < results[j].ChunkRef })
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// ChunkCount reports how many chunks are held for a document.
func (m *MemoryGateway) ChunkCount(docID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.chunks[docID])
}
