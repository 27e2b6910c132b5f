package analytics

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sofrecom-tn/chatbot-admin/internal/models"
	"github.com/sofrecom-tn/chatbot-admin/internal/store"
	"github.com/sofrecom-tn/chatbot-admin/pkg/logger"
)

// DefaultPeriodDays is the rollup window used when the client sends none.
const DefaultPeriodDays = 7

const topIntentsLimit = 20

// Service rolls up runtime events for the dashboard.
type Service struct {
	convs  store.ConversationStore
	events store.AnalyticsStore
	logger logger.Logger
}

func NewService(convs store.ConversationStore, events store.AnalyticsStore, log logger.Logger) *Service {
	return &Service{convs: convs, events: events, logger: log}
}

func since(periodDays int) (time.Time, int) {
	if periodDays <= 0 {
		periodDays = DefaultPeriodDays
	}
	return time.Now().UTC().AddDate(0, 0, -periodDays), periodDays
}

// Dashboard gathers the landing-page summary. The three rollups are
// independent, so they run concurrently.
func (s *Service) Dashboard(ctx context.Context, periodDays int) (*models.DashboardStats, error) {
	from, days := since(periodDays)
	stats := &models.DashboardStats{PeriodDays: days}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stats.TotalConversations, err = s.convs.CountSince(gctx, from)
		return err
	})
	g.Go(func() error {
		var err error
		stats.TotalMessages, err = s.convs.MessageCountSince(gctx, from)
		return err
	})
	g.Go(func() error {
		var err error
		stats.AvgConfidence, err = s.events.AvgConfidenceSince(gctx, from)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return stats, nil
}

// TopIntents returns the most classified intents over the period.
func (s *Service) TopIntents(ctx context.Context, periodDays int) ([]models.IntentStat, error) {
	from, _ := since(periodDays)
	return s.events.IntentStatsSince(ctx, from, topIntentsLimit)
}

// ConversationTrend returns conversations per day over the period.
func (s *Service) ConversationTrend(ctx context.Context, periodDays int) ([]models.DailyCount, error) {
	from, _ := since(periodDays)
	return s.convs.DailyCountsSince(ctx, from)
}

// RAG summarizes retrieval volume and relevance over the period.
func (s *Service) RAG(ctx context.Context, periodDays int) (*models.RAGStats, error) {
	from, _ := since(periodDays)
	return s.events.RAGStatsSince(ctx, from)
}
