package indexing

import (
	"context"
)

// Metadata travels with a chunk batch to the semantic index.
type Metadata struct {
	Source string `json:"source"`
}

// Result is one search hit returned by the semantic index.
type Result struct {
	DocumentID string  `json:"docId"`
	ChunkRef   string  `json:"chunkRef"`
	Text       string  `json:"text,omitempty"`
	Score      float64 `json:"score"`
}

// Gateway is the boundary to the external embedding/index service. The
// ingestion pipeline depends only on this interface; the HTTP client and the
// in-memory implementation are interchangeable.
type Gateway interface {
	// IndexChunks submits the full chunk sequence for a document and
	// returns how many chunks the index accepted.
	IndexChunks(ctx context.Context, docID string, chunks []string, meta Metadata) (int, error)

	// DeleteByDocument removes every chunk for the document. Deleting from
	// an already-empty index is not an error.
	DeleteByDocument(ctx context.Context, docID string) error

	// Search runs a semantic query outside the ingestion path.
	Search(ctx context.Context, query string, limit int) ([]Result, error)
}
