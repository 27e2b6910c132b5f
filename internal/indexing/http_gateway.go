package indexing

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/sofrecom-tn/chatbot-admin/internal/apperr"
	"github.com/sofrecom-tn/chatbot-admin/pkg/logger"
)

// HTTPGateway talks JSON over HTTP to the Python embedding service.
type HTTPGateway struct {
	client *resty.Client
	logger logger.Logger
}

type indexRequest struct {
	DocID    string   `json:"docId"`
	Chunks   []string `json:"chunks"`
	Metadata Metadata `json:"metadata"`
}

type indexResponse struct {
	Indexed int `json:"indexed"`
}

type searchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

type searchResponse struct {
	Results []Result `json:"results"`
}

// NewHTTPGateway builds a client against baseURL, e.g. http://localhost:5055.
func NewHTTPGateway(baseURL string, timeout time.Duration, log logger.Logger) *HTTPGateway {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")

	return &HTTPGateway{client: client, logger: log}
}

func (g *HTTPGateway) IndexChunks(ctx context.Context, docID string, chunks []string, meta Metadata) (int, error) {
	var out indexResponse
	resp, err := g.client.R().
		SetContext(ctx).
		SetBody(indexRequest{DocID: docID, Chunks: chunks, Metadata: meta}).
		SetResult(&out).
		Post("/index")
	if err != nil {
		return 0, apperr.Indexing(fmt.Errorf("index request: %w", err))
	}
	if resp.IsError() {
		return 0, apperr.Indexing(fmt.Errorf("index rejected: %s", resp.Status()))
	}

	g.logger.Info("Chunks indexed",
		logger.String("docId", docID),
		logger.Int("chunks", out.Indexed),
	)
	return out.Indexed, nil
}

func (g *HTTPGateway) DeleteByDocument(ctx context.Context, docID string) error {
	resp, err := g.client.R().
		SetContext(ctx).
		Delete("/documents/" + docID)
	if err != nil {
		return apperr.Indexing(fmt.Errorf("delete request: %w", err))
	}
	// 404 means the index holds nothing for this document, which is fine.
	if resp.IsError() && resp.StatusCode() != http.StatusNotFound {
		return apperr.Indexing(fmt.Errorf("delete rejected: %s", resp.Status()))
	}
	return nil
}

func (g *HTTPGateway) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	var out searchResponse
	resp, err := g.client.R().
		SetContext(ctx).
		SetBody(searchRequest{Query: query, Limit: limit}).
		SetResult(&out).
		Post("/search")
	if err != nil {
		return nil, apperr.Indexing(fmt.Errorf("search request: %w", err))
	}
	if resp.IsError() {
		return nil, apperr.Indexing(fmt.Errorf("search rejected: %s", resp.Status()))
	}
	return out.Results, nil
}
