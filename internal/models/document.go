package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DocumentStatus is the processing lifecycle of an uploaded document.
type DocumentStatus string

const (
	StatusProcessing DocumentStatus = "processing"
	StatusIndexed    DocumentStatus = "indexed"
	StatusFailed     DocumentStatus = "failed"
)

// Stages recorded on Document.Error so operators can tell a bad file from
// an infrastructure failure.
const (
	StageExtraction = "extraction"
	StageIndexing   = "indexing"
)

// PreviewLimit bounds the extracted-text prefix retained on the record.
// The full text is never persisted.
const PreviewLimit = 5000

// Document is a knowledge-base upload and its processing state. The
// ingestion pipeline is the only writer of Status; ChunkCount is set once,
// when chunks are first computed, and never recomputed after indexing.
type Document struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	OriginalName string             `bson:"originalName" json:"originalName"`
	MimeType     string             `bson:"mimeType" json:"mimeType"`
	Size         int64              `bson:"size" json:"size"`
	Content      string             `bson:"content" json:"content"`
	ChunkCount   int                `bson:"chunkCount" json:"chunkCount"`
	Status       DocumentStatus     `bson:"status" json:"status"`
	Error        *DocumentError     `bson:"error,omitempty" json:"error,omitempty"`
	StorageKey   string             `bson:"storageKey" json:"-"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// DocumentError records which pipeline stage failed and why.
type DocumentError struct {
	Stage   string `bson:"stage" json:"stage"`
	Message string `bson:"message" json:"message"`
}

// Preview truncates extracted text to the persisted prefix.
func Preview(text string) string {
	runes := []rune(text)
	if len(runes) <= PreviewLimit {
		return text
	}
	return string(runes[:PreviewLimit])
}
