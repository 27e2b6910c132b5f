package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sofrecom-tn/chatbot-admin/internal/apperr"
	"github.com/sofrecom-tn/chatbot-admin/internal/models"
)

// IntentStore keeps intents in a map.
type IntentStore struct {
	mu      sync.Mutex
	intents map[string]models.Intent
}

func NewIntentStore() *IntentStore {
	return &IntentStore{intents: make(map[string]models.Intent)}
}

func (s *IntentStore) Create(_ context.Context, intent *models.Intent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	if intent.ID.IsZero() {
		intent.ID = primitive.NewObjectID()
	}
	intent.CreatedAt = now
	intent.UpdatedAt = now
	s.intents[intent.ID.Hex()] = *intent
	return nil
}

func (s *IntentStore) GetByID(_ context.Context, id string) (*models.Intent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	intent, ok := s.intents[id]
	if !ok {
		return nil, apperr.NotFound("intent not found")
	}
	copied := intent
	return &copied, nil
}

func (s *IntentStore) List(_ context.Context, page, limit int, search string) ([]models.Intent, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := make([]models.Intent, 0, len(s.intents))
	for _, intent := range s.intents {
		if search != "" && !strings.Contains(strings.ToLower(intent.Name), strings.ToLower(search)) {
			continue
		}
		all = append(all, intent)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })

	total := int64(len(all))
	if page < 1 {
		page = 1
	}
	start := (page - 1) * limit
	if start >= len(all) {
		return []models.Intent{}, total, nil
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (s *IntentStore) Update(_ context.Context, intent *models.Intent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.intents[intent.ID.Hex()]; !ok {
		return apperr.NotFound("intent not found")
	}
	intent.UpdatedAt = time.Now().UTC()
	s.intents[intent.ID.Hex()] = *intent
	return nil
}

func (s *IntentStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.intents[id]; !ok {
		return apperr.NotFound("intent not found")
	}
	delete(s.intents, id)
	return nil
}

func (s *IntentStore) Count(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.intents)), nil
}
