package extractor

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/ledongthuc/pdf"
	"golang.org/x/sync/errgroup"

	"github.com/sofrecom-tn/chatbot-admin/pkg/logger"
)

const pdfPageWorkers = 4

// PDFExtractor pulls plain text out of a PDF, one page at a time.
type PDFExtractor struct {
	logger logger.Logger
}

func NewPDFExtractor(log logger.Logger) *PDFExtractor {
	return &PDFExtractor{logger: log}
}

// Extract reads every page's text in parallel and joins them in page order.
// A corrupt or password-protected file fails here, before anything is
// persisted downstream.
func (p *PDFExtractor) Extract(ctx context.Context, data []byte) (string, error) {
	reader := bytes.NewReader(data)
	pdfReader, err := pdf.NewReader(reader, reader.Size())
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	numPages := pdfReader.NumPage()
	pages := make([]string, numPages+1)

	g, ctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, pdfPageWorkers)
	var mu sync.Mutex

	for i := 1; i <= numPages; i++ {
		pageNum := i
		g.Go(func() error {
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				return ctx.Err()
			}

			page := pdfReader.Page(pageNum)
			if page.V.IsNull() {
				return nil
			}
			text, err := page.GetPlainText(nil)
			if err != nil {
				return fmt.Errorf("page %d: %w", pageNum, err)
			}

			mu.Lock()
			pages[pageNum] = text
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return "", err
	}

	nonEmpty := make([]string, 0, numPages)
	for _, page := range pages {
		if trimmed := strings.TrimSpace(page); trimmed != "" {
			nonEmpty = append(nonEmpty, trimmed)
		}
	}
	return strings.Join(nonEmpty, "\n\n"), nil
}
