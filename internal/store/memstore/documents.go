package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sofrecom-tn/chatbot-admin/internal/apperr"
	"github.com/sofrecom-tn/chatbot-admin/internal/models"
)

// DocumentStore keeps Document records in a map.
type DocumentStore struct {
	mu   sync.Mutex
	docs map[string]models.Document

	// FailUpdates simulates a database outage in tests.
	FailUpdates error
}

func NewDocumentStore() *DocumentStore {
	return &DocumentStore{docs: make(map[string]models.Document)}
}

func (s *DocumentStore) Create(_ context.Context, doc *models.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	if doc.ID.IsZero() {
		doc.ID = primitive.NewObjectID()
	}
	doc.CreatedAt = now
	doc.UpdatedAt = now
	s.docs[doc.ID.Hex()] = *doc
	return nil
}

func (s *DocumentStore) GetByID(_ context.Context, id string) (*models.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[id]
	if !ok {
		return nil, apperr.NotFound("document not found")
	}
	copied := doc
	return &copied, nil
}

func (s *DocumentStore) List(_ context.Context, page, limit int) ([]models.Document, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := make([]models.Document, 0, len(s.docs))
	for _, doc := range s.docs {
		all = append(all, doc)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	total := int64(len(all))
	if page < 1 {
		page = 1
	}
	start := (page - 1) * limit
	if start >= len(all) {
		return []models.Document{}, total, nil
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (s *DocumentStore) Update(_ context.Context, doc *models.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailUpdates != nil {
		return s.FailUpdates
	}
	if _, ok := s.docs[doc.ID.Hex()]; !ok {
		return apperr.NotFound("document not found")
	}
	doc.UpdatedAt = time.Now().UTC()
	s.docs[doc.ID.Hex()] = *doc
	return nil
}

func (s *DocumentStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.docs[id]; !ok {
		return apperr.NotFound("document not found")
	}
	delete(s.docs, id)
	return nil
}

func (s *DocumentStore) ListStuck(_ context.Context, cutoff time.Time) ([]models.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var stuck []models.Document
	for _, doc := range s.docs {
		if doc.Status == models.StatusProcessing && doc.UpdatedAt.Before(cutoff) {
			stuck = append(stuck, doc)
		}
	}
	return stuck, nil
}

// Touch backdates a record's UpdatedAt, for reconciliation tests.
func (s *DocumentStore) Touch(id string, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if doc, ok := s.docs[id]; ok {
		doc.UpdatedAt = at
		s.docs[id] = doc
	}
}
