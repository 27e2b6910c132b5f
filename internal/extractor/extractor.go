package extractor

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sofrecom-tn/chatbot-admin/internal/apperr"
	"github.com/sofrecom-tn/chatbot-admin/pkg/logger"
)

// Extractor converts one file format into plain text. Implementations must
// be safe for concurrent use.
type Extractor interface {
	Extract(ctx context.Context, data []byte) (string, error)
}

// Registry routes a file to the extractor for its extension.
type Registry struct {
	byExt  map[string]Extractor
	logger logger.Logger
}

// NewRegistry wires the default extractors for every supported upload type.
func NewRegistry(log logger.Logger) *Registry {
	return &Registry{
		byExt: map[string]Extractor{
			".pdf":  NewPDFExtractor(log),
			".txt":  NewTextExtractor(),
			".doc":  NewWordExtractor(),
			".docx": NewWordExtractor(),
		},
		logger: log,
	}
}

// Supported reports whether filename's extension has an extractor.
func (r *Registry) Supported(filename string) bool {
	_, ok := r.byExt[normalizeExt(filename)]
	return ok
}

// Extensions lists supported extensions, for validation error messages.
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		exts = append(exts, ext)
	}
	return exts
}

// Extract runs the extractor registered for filename's extension. Any
// failure, including an unsupported extension, surfaces as an extraction
// error: the file cannot be turned into text.
func (r *Registry) Extract(ctx context.Context, filename string, data []byte) (string, error) {
	ext := normalizeExt(filename)
	ex, ok := r.byExt[ext]
	if !ok {
		return "", apperr.Extraction(fmt.Errorf("unsupported file type %q", ext))
	}

	text, err := ex.Extract(ctx, data)
	if err != nil {
		r.logger.Error("Extraction failed",
			logger.String("filename", filename),
			logger.Error(err),
		)
		return "", apperr.Extraction(err)
	}
	return text, nil
}

func normalizeExt(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}
