package ingest

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/sofrecom-tn/chatbot-admin/internal/apperr"
	"github.com/sofrecom-tn/chatbot-admin/internal/chunker"
	"github.com/sofrecom-tn/chatbot-admin/internal/extractor"
	"github.com/sofrecom-tn/chatbot-admin/internal/indexing"
	"github.com/sofrecom-tn/chatbot-admin/internal/models"
	"github.com/sofrecom-tn/chatbot-admin/internal/store"
	"github.com/sofrecom-tn/chatbot-admin/pkg/logger"
	"github.com/sofrecom-tn/chatbot-admin/pkg/queue"
	"github.com/sofrecom-tn/chatbot-admin/pkg/storage"
)

// Config carries chunking parameters into the pipeline.
type Config struct {
	ChunkSize    int
	ChunkOverlap int
}

// Pipeline drives one document through extraction, chunking, persistence
// and indexing. It is the only writer of Document.Status.
type Pipeline struct {
	docs    store.DocumentStore
	staging storage.Storage
	extract *extractor.Registry
	gateway indexing.Gateway
	jobs    queue.Queue
	logger  logger.Logger
	cfg     Config

	mu    sync.Mutex
	locks map[string]*docLock
}

type docLock struct {
	mu   sync.Mutex
	refs int
}

func NewPipeline(
	docs store.DocumentStore,
	staging storage.Storage,
	extract *extractor.Registry,
	gateway indexing.Gateway,
	jobs queue.Queue,
	log logger.Logger,
	cfg Config,
) *Pipeline {
	if cfg.ChunkSize == 0 {
		cfg.ChunkSize = chunker.DefaultSize
		cfg.ChunkOverlap = chunker.DefaultOverlap
	}
	return &Pipeline{
		docs:    docs,
		staging: staging,
		extract: extract,
		gateway: gateway,
		jobs:    jobs,
		logger:  log,
		cfg:     cfg,
		locks:   make(map[string]*docLock),
	}
}

// acquire serializes pipeline work for one document id. Reindex purges the
// gateway before it submits, so an overlapping ingest of the same document
// could land its chunks after the purge and leave a stale second set.
func (p *Pipeline) acquire(docID string) func() {
	p.mu.Lock()
	l, ok := p.locks[docID]
	if !ok {
		l = &docLock{}
		p.locks[docID] = l
	}
	l.refs++
	p.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		p.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(p.locks, docID)
		}
		p.mu.Unlock()
	}
}

// Run ingests the staged upload behind the given document record.
//
// The staged object is released once extraction has had its chance, whatever
// happens afterwards; before that point a transient fetch failure keeps the
// object so the task can be retried. Extraction failures are terminal for
// the upload (the user must re-upload); indexing failures leave the record
// in processing, where the reconciliation sweep will pick it up.
func (p *Pipeline) Run(ctx context.Context, docID string) error {
	unlock := p.acquire(docID)
	defer unlock()

	doc, err := p.docs.GetByID(ctx, docID)
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			// Record deleted while queued; nothing to do.
			return nil
		}
		return err
	}

	p.setJobStatus(ctx, docID, "running", "", "")

	if doc.StorageKey == "" {
		if doc.Content == "" {
			// No staged bytes and no extracted text: nothing a retry
			// could recover from.
			p.failDocument(ctx, doc, models.StageExtraction, fmt.Errorf("staged upload is gone and no text was extracted"))
			return nil
		}
		// An earlier attempt released the upload after extracting;
		// rebuild from the stored preview instead of failing each retry.
		return p.reindex(ctx, doc)
	}

	data, err := p.fetchStaged(ctx, doc)
	if err != nil {
		// Staged object unreachable; keep it for the task retry.
		return err
	}
	defer p.releaseStaged(doc)

	text, err := p.extract.Extract(ctx, doc.OriginalName, data)
	if err != nil {
		p.failDocument(ctx, doc, models.StageExtraction, err)
		// Terminal: retrying a corrupt upload cannot succeed.
		return nil
	}

	chunks, err := chunker.Collect(text, p.cfg.ChunkSize, p.cfg.ChunkOverlap)
	if err != nil {
		p.failDocument(ctx, doc, models.StageExtraction, err)
		return nil
	}

	// Durability checkpoint: once this write lands, the upload is visible
	// with its final chunk count even if indexing fails below.
	doc.Content = models.Preview(text)
	doc.ChunkCount = len(chunks)
	doc.Error = nil
	if err := p.docs.Update(ctx, doc); err != nil {
		return fmt.Errorf("persist extracted document: %w", err)
	}

	if err := p.index(ctx, doc, chunks); err != nil {
		return err
	}

	doc.Status = models.StatusIndexed
	doc.Error = nil
	if err := p.docs.Update(ctx, doc); err != nil {
		return fmt.Errorf("finalize document: %w", err)
	}

	p.setJobStatus(ctx, docID, "completed", "", "")
	p.logger.Info("Document ingested",
		logger.String("docId", docID),
		logger.String("filename", doc.OriginalName),
		logger.Int("chunks", len(chunks)),
	)
	return nil
}

// Reindex re-chunks and re-indexes the stored preview text. Old chunks
// are purged first, so running it twice leaves exactly one chunk set in the
// gateway. ChunkCount keeps its creation-time value.
func (p *Pipeline) Reindex(ctx context.Context, docID string) error {
	unlock := p.acquire(docID)
	defer unlock()

	doc, err := p.docs.GetByID(ctx, docID)
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			return nil
		}
		return err
	}
	return p.reindex(ctx, doc)
}

func (p *Pipeline) reindex(ctx context.Context, doc *models.Document) error {
	docID := doc.ID.Hex()

	if doc.Content == "" {
		// Extraction never succeeded; there is nothing to re-submit.
		p.logger.Warn("Reindex skipped, no extracted text",
			logger.String("docId", docID),
		)
		return nil
	}

	p.setJobStatus(ctx, docID, "running", "", "")

	if err := p.gateway.DeleteByDocument(ctx, docID); err != nil {
		p.setJobStatus(ctx, docID, "failed", models.StageIndexing, err.Error())
		return fmt.Errorf("purge old chunks: %w", err)
	}

	// The gateway no longer holds this document. Keep the record in
	// processing until the new set lands so the reconciliation sweep can
	// repair an interrupted reindex.
	if doc.Status != models.StatusProcessing {
		doc.Status = models.StatusProcessing
		if err := p.docs.Update(ctx, doc); err != nil {
			return fmt.Errorf("mark reindex in flight: %w", err)
		}
	}

	chunks, err := chunker.Collect(doc.Content, p.cfg.ChunkSize, p.cfg.ChunkOverlap)
	if err != nil {
		return err
	}

	if err := p.index(ctx, doc, chunks); err != nil {
		return err
	}

	doc.Status = models.StatusIndexed
	doc.Error = nil
	if err := p.docs.Update(ctx, doc); err != nil {
		return fmt.Errorf("finalize reindex: %w", err)
	}

	p.setJobStatus(ctx, docID, "completed", "", "")
	p.logger.Info("Document reindexed",
		logger.String("docId", docID),
		logger.Int("chunks", len(chunks)),
	)
	return nil
}

// Reconcile re-drives records stuck in processing since before cutoff.
// Records that still have a staged upload are re-ingested from the original
// bytes; the rest are re-indexed from their preview text.
func (p *Pipeline) Reconcile(ctx context.Context, cutoff time.Time) error {
	stuck, err := p.docs.ListStuck(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("list stuck documents: %w", err)
	}
	for _, doc := range stuck {
		id := doc.ID.Hex()
		var err error
		if doc.StorageKey != "" {
			err = p.jobs.EnqueueIngest(ctx, id)
		} else {
			err = p.jobs.EnqueueReindex(ctx, id)
		}
		if err != nil {
			p.logger.Error("Failed to re-enqueue stuck document",
				logger.String("docId", id),
				logger.Error(err),
			)
			continue
		}
		p.logger.Info("Re-enqueued stuck document",
			logger.String("docId", id),
			logger.Time("lastUpdate", doc.UpdatedAt),
		)
	}
	return nil
}

func (p *Pipeline) index(ctx context.Context, doc *models.Document, chunks []string) error {
	docID := doc.ID.Hex()
	_, err := p.gateway.IndexChunks(ctx, docID, chunks, indexing.Metadata{
		Source: doc.OriginalName,
	})
	if err != nil {
		// The record stays in processing with the stage recorded, durable
		// and inspectable until reconciliation retries it.
		doc.Error = &models.DocumentError{Stage: models.StageIndexing, Message: err.Error()}
		if uerr := p.docs.Update(ctx, doc); uerr != nil {
			p.logger.Error("Failed to record indexing error",
				logger.String("docId", docID),
				logger.Error(uerr),
			)
		}
		p.setJobStatus(ctx, docID, "failed", models.StageIndexing, err.Error())
		return fmt.Errorf("index chunks for %s: %w", docID, err)
	}
	return nil
}

func (p *Pipeline) fetchStaged(ctx context.Context, doc *models.Document) ([]byte, error) {
	if doc.StorageKey == "" {
		return nil, fmt.Errorf("document %s has no staged upload", doc.ID.Hex())
	}
	rc, err := p.staging.Get(ctx, doc.StorageKey)
	if err != nil {
		return nil, fmt.Errorf("fetch staged upload: %w", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read staged upload: %w", err)
	}
	return data, nil
}

// releaseStaged deletes the staged object and clears the key on the record
// so later retries go through the preview path. Runs in background context:
// cleanup must happen even when the request context is gone.
func (p *Pipeline) releaseStaged(doc *models.Document) {
	ctx := context.Background()
	if err := p.staging.Delete(ctx, doc.StorageKey); err != nil {
		p.logger.Warn("Failed to release staged upload",
			logger.String("key", doc.StorageKey),
			logger.Error(err),
		)
		return
	}
	doc.StorageKey = ""
	if err := p.docs.Update(ctx, doc); err != nil && !apperr.IsKind(err, apperr.KindNotFound) {
		p.logger.Warn("Failed to clear storage key",
			logger.String("docId", doc.ID.Hex()),
			logger.Error(err),
		)
	}
}

func (p *Pipeline) failDocument(ctx context.Context, doc *models.Document, stage string, cause error) {
	doc.Status = models.StatusFailed
	doc.Error = &models.DocumentError{Stage: stage, Message: cause.Error()}
	if err := p.docs.Update(ctx, doc); err != nil {
		p.logger.Error("Failed to record document failure",
			logger.String("docId", doc.ID.Hex()),
			logger.Error(err),
		)
	}
	p.setJobStatus(ctx, doc.ID.Hex(), "failed", stage, cause.Error())
	p.logger.Warn("Document ingestion failed",
		logger.String("docId", doc.ID.Hex()),
		logger.String("stage", stage),
		logger.Error(cause),
	)
}

func (p *Pipeline) setJobStatus(ctx context.Context, docID, state, stage, msg string) {
	err := p.jobs.SetJobStatus(ctx, &queue.JobStatus{
		DocumentID: docID,
		State:      state,
		Stage:      stage,
		Error:      msg,
	})
	if err != nil {
		p.logger.Warn("Failed to publish job status",
			logger.String("docId", docID),
			logger.Error(err),
		)
	}
}
