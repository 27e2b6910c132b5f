package document

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sofrecom-tn/chatbot-admin/internal/apperr"
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
	svc     *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		docs:    memstore.NewDocumentStore(),
		staging: memory.NewStorage(),
		gateway: indexing.NewMemoryGateway(),
		jobs:    queue.NewMemoryQueue(),
	}
	f.svc = NewService(
		f.docs,
		f.staging,
		extractor.NewRegistry(logger.NewNopLogger()),
		f.gateway,
		f.jobs,
		logger.NewNopLogger(),
		Config{},
	)
	return f
}

func formFile(t *testing.T, filename, content string) (multipart.File, *multipart.FileHeader) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	file, header, err := req.FormFile("file")
	require.NoError(t, err)
	return file, header
}

func TestUploadStagesAndEnqueues(t *testing.T) {
	f := newFixture(t)

	file, header := formFile(t, "faq.txt", "how do I reset my password")
	doc, err := f.svc.Upload(context.Background(), file, header)
	require.NoError(t, err)

	assert.Equal(t, models.StatusProcessing, doc.Status)
	assert.Equal(t, "faq.txt", doc.OriginalName)
	assert.Equal(t, 1, f.staging.Len())
	assert.Equal(t, []string{doc.ID.Hex()}, f.jobs.EnqueuedIngests())

	stored, err := f.docs.GetByID(context.Background(), doc.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, doc.StorageKey, stored.StorageKey)

	status, err := f.jobs.GetJobStatus(context.Background(), doc.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "pending", status.State)
}

func TestUploadRejectsUnsupportedType(t *testing.T) {
	f := newFixture(t)

	file, header := formFile(t, "virus.exe", "MZ")
	_, err := f.svc.Upload(context.Background(), file, header)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	assert.Equal(t, 0, f.staging.Len())
	assert.Empty(t, f.jobs.EnqueuedIngests())
}

func TestUploadRejectsOversizedFile(t *testing.T) {
	f := newFixture(t)
	f.svc.cfg.MaxFileSize = 8

	file, header := formFile(t, "big.txt", "this exceeds eight bytes")
	_, err := f.svc.Upload(context.Background(), file, header)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestDeleteRemovesRecordChunksAndStagedObject(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	doc := &models.Document{
		ID:         primitive.NewObjectID(),
		Name:       "guide.pdf",
		Status:     models.StatusIndexed,
		StorageKey: "uploads/guide.pdf",
	}
	require.NoError(t, f.docs.Create(ctx, doc))
	_, err := f.staging.Store(ctx, strings.NewReader("raw"), doc.StorageKey)
	require.NoError(t, err)
	_, err = f.gateway.IndexChunks(ctx, doc.ID.Hex(), []string{"a", "b"}, indexing.Metadata{})
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, doc.ID.Hex()))

	_, err = f.docs.GetByID(ctx, doc.ID.Hex())
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
	assert.Equal(t, 0, f.gateway.ChunkCount(doc.ID.Hex()))
	assert.Equal(t, 0, f.staging.Len())
}

func TestDeleteUnknownDocument(t *testing.T) {
	f := newFixture(t)

	err := f.svc.Delete(context.Background(), primitive.NewObjectID().Hex())
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestReindexRequiresExtractedText(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	doc := &models.Document{ID: primitive.NewObjectID(), Status: models.StatusProcessing}
	require.NoError(t, f.docs.Create(ctx, doc))

	_, err := f.svc.Reindex(ctx, doc.ID.Hex())
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	assert.Empty(t, f.jobs.EnqueuedReindexes())
}

func TestReindexEnqueues(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	doc := &models.Document{
		ID:      primitive.NewObjectID(),
		Status:  models.StatusIndexed,
		Content: "stored preview text",
	}
	require.NoError(t, f.docs.Create(ctx, doc))

	got, err := f.svc.Reindex(ctx, doc.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, doc.ID, got.ID)
	assert.Equal(t, []string{doc.ID.Hex()}, f.jobs.EnqueuedReindexes())
}

func TestSearchRejectsEmptyQuery(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Search(context.Background(), "   ", 5)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestSearchDefaultsLimit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	chunks := []string{"alpha one", "alpha two", "alpha three",
		"alpha four", "alpha five", "alpha six", "alpha seven"}
	_, err := f.gateway.IndexChunks(ctx, "doc1", chunks, indexing.Metadata{})
	require.NoError(t, err)

	results, err := f.svc.Search(ctx, "alpha", 0)
	require.NoError(t, err)
	assert.Len(t, results, 5)
}

func TestListPaginates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, f.docs.Create(ctx, &models.Document{
			ID:     primitive.NewObjectID(),
			Status: models.StatusIndexed,
		}))
	}

	docs, page, err := f.svc.List(ctx, 2, 2)
	require.NoError(t, err)
	assert.Len(t, docs, 2)
	assert.Equal(t, int64(5), page.Total)
	assert.Equal(t, int64(3), page.Pages)
}

func TestStatusFallsBackToRecord(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	doc := &models.Document{
		ID:     primitive.NewObjectID(),
		Status: models.StatusFailed,
		Error:  &models.DocumentError{Stage: models.StageExtraction, Message: "corrupt pdf"},
	}
	require.NoError(t, f.docs.Create(ctx, doc))

	status, err := f.svc.Status(ctx, doc.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "failed", status.State)
	assert.Equal(t, models.StageExtraction, status.Stage)
	assert.Equal(t, "corrupt pdf", status.Error)
}

func TestStatusPrefersQueueMirror(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	doc := &models.Document{ID: primitive.NewObjectID(), Status: models.StatusProcessing}
	require.NoError(t, f.docs.Create(ctx, doc))
	require.NoError(t, f.jobs.SetJobStatus(ctx, &queue.JobStatus{
		DocumentID: doc.ID.Hex(),
		State:      "running",
		Stage:      "chunking",
	}))

	status, err := f.svc.Status(ctx, doc.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "running", status.State)
	assert.Equal(t, "chunking", status.Stage)
}
