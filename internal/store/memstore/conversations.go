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

// ConversationStore keeps conversations in a map.
type ConversationStore struct {
	mu    sync.Mutex
	convs map[string]models.Conversation
}

func NewConversationStore() *ConversationStore {
	return &ConversationStore{convs: make(map[string]models.Conversation)}
}

// Add seeds a conversation, assigning an id when missing.
func (s *ConversationStore) Add(conv models.Conversation) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if conv.ID.IsZero() {
		conv.ID = primitive.NewObjectID()
	}
	s.convs[conv.ID.Hex()] = conv
	return conv.ID.Hex()
}

func (s *ConversationStore) GetByID(_ context.Context, id string) (*models.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.convs[id]
	if !ok {
		return nil, apperr.NotFound("conversation not found")
	}
	copied := conv
	return &copied, nil
}

func (s *ConversationStore) List(_ context.Context, page, limit int, start, end *time.Time) ([]models.Conversation, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := make([]models.Conversation, 0, len(s.convs))
	for _, conv := range s.convs {
		if start != nil && conv.CreatedAt.Before(*start) {
			continue
		}
		if end != nil && conv.CreatedAt.After(*end) {
			continue
		}
		all = append(all, conv)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	total := int64(len(all))
	if page < 1 {
		page = 1
	}
	lo := (page - 1) * limit
	if lo >= len(all) {
		return []models.Conversation{}, total, nil
	}
	hi := lo + limit
	if hi > len(all) {
		hi = len(all)
	}
	return all[lo:hi], total, nil
}

func (s *ConversationStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.convs[id]; !ok {
		return apperr.NotFound("conversation not found")
	}
	delete(s.convs, id)
	return nil
}

func (s *ConversationStore) CountSince(_ context.Context, since time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for _, conv := range s.convs {
		if !conv.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (s *ConversationStore) MessageCountSince(_ context.Context, since time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for _, conv := range s.convs {
		if !conv.CreatedAt.Before(since) {
			n += int64(len(conv.Messages))
		}
	}
	return n, nil
}

func (s *ConversationStore) DailyCountsSince(_ context.Context, since time.Time) ([]models.DailyCount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	byDay := make(map[string]int64)
	for _, conv := range s.convs {
		if conv.CreatedAt.Before(since) {
			continue
		}
		byDay[conv.CreatedAt.Format("2006-01-02")]++
	}

	days := make([]models.DailyCount, 0, len(byDay))
	for day, count := range byDay {
		days = append(days, models.DailyCount{Date: day, Count: count})
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date < days[j].Date })
	return days, nil
}
