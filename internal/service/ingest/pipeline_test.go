package ingest

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sofrecom-tn/chatbot-admin/internal/extractor"
	"github.com/sofrecom-tn/chatbot-admin/internal/indexing"
	"github.com/sofrecom-tn/chatbot-admin/internal/models"
	"github.com/sofrecom-tn/chatbot-admin/internal/store/memstore"
	"github.com/sofrecom-tn/chatbot-admin/pkg/logger"
	"github.com/sofrecom-tn/chatbot-admin/pkg/queue"
	"github.com/sofrecom-tn/chatbot-admin/pkg/storage/memory"
)

type fixture struct {
	docs    *memstore.DocumentStore
	staging *memory.Storage
	gateway *indexing.MemoryGateway
	jobs    *queue.MemoryQueue
	pipe    *Pipeline
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	docs := memstore.NewDocumentStore()
	staging := memory.NewStorage()
	gateway := indexing.NewMemoryGateway()
	jobs := queue.NewMemoryQueue()
	pipe := NewPipeline(
		docs,
		staging,
		extractor.NewRegistry(logger.NewNopLogger()),
		gateway,
		jobs,
		logger.NewNopLogger(),
		Config{ChunkSize: 1000, ChunkOverlap: 200},
	)
	return &fixture{docs: docs, staging: staging, gateway: gateway, jobs: jobs, pipe: pipe}
}

// stage seeds a processing record with its upload staged, the state the
// upload endpoint leaves behind.
func (f *fixture) stage(t *testing.T, name string, content []byte) *models.Document {
	t.Helper()
	ctx := context.Background()

	doc := &models.Document{
		Name:         name,
		OriginalName: name,
		MimeType:     "text/plain",
		Size:         int64(len(content)),
		Status:       models.StatusProcessing,
	}
	require.NoError(t, f.docs.Create(ctx, doc))

	key := doc.ID.Hex() + "-" + name
	_, err := f.staging.Store(ctx, bytes.NewReader(content), key)
	require.NoError(t, err)
	doc.StorageKey = key
	require.NoError(t, f.docs.Update(ctx, doc))
	return doc
}

func TestRunHappyPath(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	text := strings.Repeat("a", 2400)
	doc := f.stage(t, "guide.txt", []byte(text))

	require.NoError(t, f.pipe.Run(ctx, doc.ID.Hex()))

	got, err := f.docs.GetByID(ctx, doc.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, models.StatusIndexed, got.Status)
	assert.Equal(t, 3, got.ChunkCount)
	assert.Nil(t, got.Error)
	assert.Equal(t, text, got.Content) // under the preview limit, kept whole
	assert.Equal(t, 3, f.gateway.ChunkCount(doc.ID.Hex()))
	assert.Zero(t, f.staging.Len(), "staged upload must be released")

	status, err := f.jobs.GetJobStatus(ctx, doc.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "completed", status.State)
}

func TestRunTruncatesPreview(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	doc := f.stage(t, "big.txt", []byte(strings.Repeat("b", 12000)))

	require.NoError(t, f.pipe.Run(ctx, doc.ID.Hex()))

	got, err := f.docs.GetByID(ctx, doc.ID.Hex())
	require.NoError(t, err)
	assert.Len(t, got.Content, models.PreviewLimit)
	// chunk count reflects the full text, not the preview
	assert.Equal(t, 15, got.ChunkCount)
}

func TestRunExtractionFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	doc := f.stage(t, "corrupt.pdf", []byte("this is not a pdf"))

	// terminal: the worker must not retry
	require.NoError(t, f.pipe.Run(ctx, doc.ID.Hex()))

	got, err := f.docs.GetByID(ctx, doc.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, got.Status)
	require.NotNil(t, got.Error)
	assert.Equal(t, models.StageExtraction, got.Error.Stage)
	assert.Zero(t, got.ChunkCount)
	assert.Zero(t, f.gateway.ChunkCount(doc.ID.Hex()))
	assert.Zero(t, f.staging.Len(), "staged upload released even on failure")
}

func TestRunIndexingFailureLeavesProcessing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.gateway.FailIndexing = true
	doc := f.stage(t, "notes.txt", []byte(strings.Repeat("c", 1500)))

	err := f.pipe.Run(ctx, doc.ID.Hex())
	require.Error(t, err, "indexing failures are retryable")

	got, gerr := f.docs.GetByID(ctx, doc.ID.Hex())
	require.NoError(t, gerr)
	assert.Equal(t, models.StatusProcessing, got.Status)
	require.NotNil(t, got.Error)
	assert.Equal(t, models.StageIndexing, got.Error.Stage)
	// durability checkpoint landed before indexing
	assert.Equal(t, 2, got.ChunkCount)
	assert.NotEmpty(t, got.Content)
	assert.Zero(t, f.staging.Len(), "cleanup is not conditional on success")

	// the record still shows up in listings
	listed, total, lerr := f.docs.List(ctx, 1, 20)
	require.NoError(t, lerr)
	assert.EqualValues(t, 1, total)
	require.Len(t, listed, 1)
	assert.Equal(t, models.StatusProcessing, listed[0].Status)
}

func TestRunStorageFetchFailureKeepsObject(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	doc := f.stage(t, "notes.txt", []byte("hello"))
	f.staging.FailGets = true

	err := f.pipe.Run(ctx, doc.ID.Hex())
	require.Error(t, err)

	got, gerr := f.docs.GetByID(ctx, doc.ID.Hex())
	require.NoError(t, gerr)
	assert.Equal(t, models.StatusProcessing, got.Status)
	assert.NotEmpty(t, got.StorageKey, "object kept for the retry")
	assert.Equal(t, 1, f.staging.Len())
}

func TestRunMissingRecordIsNoop(t *testing.T) {
	f := newFixture(t)
	assert.NoError(t, f.pipe.Run(context.Background(), "64b000000000000000000000"))
}

func TestReindexIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	doc := f.stage(t, "guide.txt", []byte(strings.Repeat("d", 2400)))
	require.NoError(t, f.pipe.Run(ctx, doc.ID.Hex()))
	require.Equal(t, 3, f.gateway.ChunkCount(doc.ID.Hex()))

	require.NoError(t, f.pipe.Reindex(ctx, doc.ID.Hex()))
	require.NoError(t, f.pipe.Reindex(ctx, doc.ID.Hex()))

	// exactly one chunk set active, never accumulated
	assert.Equal(t, 3, f.gateway.ChunkCount(doc.ID.Hex()))

	got, err := f.docs.GetByID(ctx, doc.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, models.StatusIndexed, got.Status)
	assert.Equal(t, 3, got.ChunkCount, "chunk count keeps its creation-time value")
}

func TestReindexRecoversStuckRecord(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.gateway.FailIndexing = true
	doc := f.stage(t, "notes.txt", []byte(strings.Repeat("e", 1500)))
	require.Error(t, f.pipe.Run(ctx, doc.ID.Hex()))

	f.gateway.FailIndexing = false
	require.NoError(t, f.pipe.Reindex(ctx, doc.ID.Hex()))

	got, err := f.docs.GetByID(ctx, doc.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, models.StatusIndexed, got.Status)
	assert.Nil(t, got.Error)
	assert.Equal(t, 2, f.gateway.ChunkCount(doc.ID.Hex()))
}

func TestReindexWithoutExtractedTextIsNoop(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	doc := &models.Document{Name: "x.pdf", Status: models.StatusFailed}
	require.NoError(t, f.docs.Create(ctx, doc))

	require.NoError(t, f.pipe.Reindex(ctx, doc.ID.Hex()))
	assert.Zero(t, f.gateway.ChunkCount(doc.ID.Hex()))
}

func TestReconcileEnqueuesStuckDocuments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// stuck with staged upload: should re-ingest
	withFile := f.stage(t, "stuck1.txt", []byte("abc"))
	f.docs.Touch(withFile.ID.Hex(), time.Now().Add(-time.Hour))

	// stuck without staged upload: should re-index from preview
	noFile := &models.Document{
		Name:    "stuck2.txt",
		Status:  models.StatusProcessing,
		Content: "extracted earlier",
	}
	require.NoError(t, f.docs.Create(ctx, noFile))
	f.docs.Touch(noFile.ID.Hex(), time.Now().Add(-time.Hour))

	// fresh processing record: must be left alone
	fresh := f.stage(t, "fresh.txt", []byte("xyz"))

	require.NoError(t, f.pipe.Reconcile(ctx, time.Now().Add(-10*time.Minute)))

	assert.Equal(t, []string{withFile.ID.Hex()}, f.jobs.EnqueuedIngests())
	assert.Equal(t, []string{noFile.ID.Hex()}, f.jobs.EnqueuedReindexes())
	assert.NotContains(t, f.jobs.EnqueuedIngests(), fresh.ID.Hex())
}

func TestReindexFailureAfterPurgeReturnsToProcessing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	doc := f.stage(t, "guide.txt", []byte(strings.Repeat("f", 2400)))
	require.NoError(t, f.pipe.Run(ctx, doc.ID.Hex()))

	f.gateway.FailIndexing = true
	require.Error(t, f.pipe.Reindex(ctx, doc.ID.Hex()))

	// old chunks are gone, so the record must not read as indexed
	got, err := f.docs.GetByID(ctx, doc.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, models.StatusProcessing, got.Status)
	require.NotNil(t, got.Error)
	assert.Equal(t, models.StageIndexing, got.Error.Stage)
	assert.Zero(t, f.gateway.ChunkCount(doc.ID.Hex()))

	// which puts it back in reach of the reconciliation sweep
	f.docs.Touch(doc.ID.Hex(), time.Now().Add(-time.Hour))
	require.NoError(t, f.pipe.Reconcile(ctx, time.Now().Add(-10*time.Minute)))
	assert.Equal(t, []string{doc.ID.Hex()}, f.jobs.EnqueuedReindexes())
}

func TestRunRebuildsFromPreviewWhenUploadReleased(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// the state a retried task finds after an earlier attempt extracted
	// the text but failed to index: upload released, preview persisted
	doc := &models.Document{
		Name:         "notes.txt",
		OriginalName: "notes.txt",
		Status:       models.StatusProcessing,
		Content:      strings.Repeat("g", 2400),
		ChunkCount:   3,
		Error:        &models.DocumentError{Stage: models.StageIndexing, Message: "boom"},
	}
	require.NoError(t, f.docs.Create(ctx, doc))

	require.NoError(t, f.pipe.Run(ctx, doc.ID.Hex()))

	got, err := f.docs.GetByID(ctx, doc.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, models.StatusIndexed, got.Status)
	assert.Nil(t, got.Error)
	assert.Equal(t, 3, f.gateway.ChunkCount(doc.ID.Hex()))
}

func TestRunWithNoUploadAndNoTextIsTerminal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	doc := &models.Document{Name: "lost.txt", Status: models.StatusProcessing}
	require.NoError(t, f.docs.Create(ctx, doc))

	// nothing left to work from: fail the record instead of retrying
	require.NoError(t, f.pipe.Run(ctx, doc.ID.Hex()))

	got, err := f.docs.GetByID(ctx, doc.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, got.Status)
	require.NotNil(t, got.Error)
}

// blockingGateway appends each submitted batch instead of replacing, the
// weakest behavior the Gateway contract allows, and holds its first
// IndexChunks call until released.
type blockingGateway struct {
	mu       sync.Mutex
	chunks   map[string][]string
	entered  chan struct{}
	release  chan struct{}
	holdOnce sync.Once
}

func newBlockingGateway() *blockingGateway {
	return &blockingGateway{
		chunks:  make(map[string][]string),
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (g *blockingGateway) IndexChunks(_ context.Context, docID string, chunks []string, _ indexing.Metadata) (int, error) {
	var hold bool
	g.holdOnce.Do(func() { hold = true })
	if hold {
		close(g.entered)
		<-g.release
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.chunks[docID] = append(g.chunks[docID], chunks...)
	return len(chunks), nil
}

func (g *blockingGateway) DeleteByDocument(_ context.Context, docID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.chunks, docID)
	return nil
}

func (g *blockingGateway) Search(context.Context, string, int) ([]indexing.Result, error) {
	return nil, nil
}

func (g *blockingGateway) count(docID string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.chunks[docID])
}

func TestReindexWaitsForInFlightIngest(t *testing.T) {
	docs := memstore.NewDocumentStore()
	staging := memory.NewStorage()
	gateway := newBlockingGateway()
	jobs := queue.NewMemoryQueue()
	pipe := NewPipeline(
		docs,
		staging,
		extractor.NewRegistry(logger.NewNopLogger()),
		gateway,
		jobs,
		logger.NewNopLogger(),
		Config{ChunkSize: 1000, ChunkOverlap: 200},
	)

	ctx := context.Background()
	doc := &models.Document{
		Name:         "guide.txt",
		OriginalName: "guide.txt",
		MimeType:     "text/plain",
		Size:         2400,
		Status:       models.StatusProcessing,
	}
	require.NoError(t, docs.Create(ctx, doc))
	key := doc.ID.Hex() + "-guide.txt"
	_, err := staging.Store(ctx, bytes.NewReader([]byte(strings.Repeat("h", 2400))), key)
	require.NoError(t, err)
	doc.StorageKey = key
	require.NoError(t, docs.Update(ctx, doc))

	runDone := make(chan error, 1)
	go func() { runDone <- pipe.Run(ctx, doc.ID.Hex()) }()
	<-gateway.entered // ingest is mid-submission, preview already persisted

	reindexDone := make(chan error, 1)
	go func() { reindexDone <- pipe.Reindex(ctx, doc.ID.Hex()) }()

	select {
	case err := <-reindexDone:
		t.Fatalf("reindex ran while the ingest was still submitting: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	close(gateway.release)
	require.NoError(t, <-runDone)
	require.NoError(t, <-reindexDone)

	// the reindex purge saw the full ingest batch, so exactly one chunk
	// set survives even though the gateway only ever appends
	assert.Equal(t, 3, gateway.count(doc.ID.Hex()))

	got, err := docs.GetByID(ctx, doc.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, models.StatusIndexed, got.Status)
}
