package indexing

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sofrecom-tn/chatbot-admin/internal/apperr"
	"github.com/sofrecom-tn/chatbot-admin/pkg/logger"
)

func TestMemoryGatewayRoundTrip(t *testing.T) {
	g := NewMemoryGateway()
	ctx := context.Background()

	n, err := g.IndexChunks(ctx, "doc1", []string{"alpha bravo", "charlie"}, Metadata{Source: "a.pdf"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, g.ChunkCount("doc1"))

	results, err := g.Search(ctx, "bravo", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "doc1", results[0].DocumentID)

	require.NoError(t, g.DeleteByDocument(ctx, "doc1"))
	assert.Zero(t, g.ChunkCount("doc1"))
}

func TestMemoryGatewayReindexReplaces(t *testing.T) {
	g := NewMemoryGateway()
	ctx := context.Background()

	_, err := g.IndexChunks(ctx, "doc1", []string{"a", "b", "c"}, Metadata{})
	require.NoError(t, err)
	_, err = g.IndexChunks(ctx, "doc1", []string{"d", "e"}, Metadata{})
	require.NoError(t, err)

	// second submission replaces, never accumulates
	assert.Equal(t, 2, g.ChunkCount("doc1"))
}

func TestMemoryGatewayDeleteEmptyIndex(t *testing.T) {
	g := NewMemoryGateway()
	assert.NoError(t, g.DeleteByDocument(context.Background(), "never-indexed"))
}

func TestMemoryGatewaySearchLimit(t *testing.T) {
	g := NewMemoryGateway()
	ctx := context.Background()
	_, err := g.IndexChunks(ctx, "doc1", []string{"x1", "x2", "x3", "x4"}, Metadata{})
	require.NoError(t, err)

	results, err := g.Search(ctx, "x", 2)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestHTTPGatewayIndexChunks(t *testing.T) {
	var got indexRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/index", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(indexResponse{Indexed: len(got.Chunks)})
	}))
	defer srv.Close()

	g := NewHTTPGateway(srv.URL, 5*time.Second, logger.NewNopLogger())
	n, err := g.IndexChunks(context.Background(), "doc1", []string{"one", "two"}, Metadata{Source: "f.pdf"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "doc1", got.DocID)
	assert.Equal(t, "f.pdf", got.Metadata.Source)
}

func TestHTTPGatewayIndexRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	g := NewHTTPGateway(srv.URL, 5*time.Second, logger.NewNopLogger())
	_, err := g.IndexChunks(context.Background(), "doc1", []string{"one"}, Metadata{})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindIndexing))
}

func TestHTTPGatewayUnreachable(t *testing.T) {
	g := NewHTTPGateway("http://127.0.0.1:1", 200*time.Millisecond, logger.NewNopLogger())
	_, err := g.IndexChunks(context.Background(), "doc1", []string{"one"}, Metadata{})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindIndexing))
}

func TestHTTPGatewayDeleteToleratesNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	g := NewHTTPGateway(srv.URL, 5*time.Second, logger.NewNopLogger())
	assert.NoError(t, g.DeleteByDocument(context.Background(), "gone"))
}

func TestHTTPGatewaySearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/search", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(searchResponse{Results: []Result{
			{DocumentID: "d1", ChunkRef: "d1:0", Score: 0.92},
		}})
	}))
	defer srv.Close()

	g := NewHTTPGateway(srv.URL, 5*time.Second, logger.NewNopLogger())
	results, err := g.Search(context.Background(), "warranty", 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.InDelta(t, 0.92, results[0].Score, 1e-9)
}
