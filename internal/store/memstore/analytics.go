package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/sofrecom-tn/chatbot-admin/internal/models"
)

// AnalyticsStore computes rollups over an in-memory event slice.
type AnalyticsStore struct {
	mu     sync.Mutex
	events []models.AnalyticsEvent
}

func NewAnalyticsStore() *AnalyticsStore {
	return &AnalyticsStore{}
}

// Add seeds an event.
func (s *AnalyticsStore) Add(event models.AnalyticsEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

func (s *AnalyticsStore) AvgConfidenceSince(_ context.Context, since time.Time) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var sum float64
	var n int
	for _, e := range s.events {
		if e.Type == models.EventNLU && !e.CreatedAt.Before(since) {
			sum += e.Confidence
			n++
		}
	}
	if n == 0 {
		return 0, nil
	}
	return sum / float64(n), nil
}

func (s *AnalyticsStore) IntentStatsSince(_ context.Context, since time.Time, limit int) ([]models.IntentStat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	type acc struct {
		count int64
		sum   float64
	}
	byIntent := make(map[string]*acc)
	for _, e := range s.events {
		if e.Type != models.EventNLU || e.CreatedAt.Before(since) {
			continue
		}
		a, ok := byIntent[e.Intent]
		if !ok {
			a = &acc{}
			byIntent[e.Intent] = a
		}
		a.count++
		a.sum += e.Confidence
	}

	stats := make([]models.IntentStat, 0, len(byIntent))
	for intent, a := range byIntent {
		stats = append(stats, models.IntentStat{
			Intent:        intent,
			Count:         a.count,
			AvgConfidence: a.sum / float64(a.count),
		})
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Count > stats[j].Count })
	if limit > 0 && len(stats) > limit {
		stats = stats[:limit]
	}
	return stats, nil
}

func (s *AnalyticsStore) RAGStatsSince(_ context.Context, since time.Time) (*models.RAGStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out models.RAGStats
	var sum float64
	for _, e := range s.events {
		if e.Type == models.EventRAG && !e.CreatedAt.Before(since) {
			out.Total++
			sum += e.Relevance
		}
	}
	if out.Total > 0 {
		out.AvgRelevance = sum / float64(out.Total)
	}
	return &out, nil
}
