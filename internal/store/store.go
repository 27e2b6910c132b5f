package store

import (
	"context"
	"time"

	"github.com/sofrecom-tn/chatbot-admin/internal/models"
)

// DocumentStore is the persistence authority for Document records. Only the
// ingestion pipeline writes status transitions through it.
type DocumentStore interface {
	Create(ctx context.Context, doc *models.Document) error
	GetByID(ctx context.Context, id string) (*models.Document, error)
	List(ctx context.Context, page, limit int) ([]models.Document, int64, error)
	Update(ctx context.Context, doc *models.Document) error
	Delete(ctx context.Context, id string) error

	// ListStuck returns processing records last touched before cutoff,
	// the candidates for the reconciliation sweep.
	ListStuck(ctx context.Context, cutoff time.Time) ([]models.Document, error)
}

// IntentStore persists NLU intents.
type IntentStore interface {
	Create(ctx context.Context, intent *models.Intent) error
	GetByID(ctx context.Context, id string) (*models.Intent, error)
	List(ctx context.Context, page, limit int, search string) ([]models.Intent, int64, error)
	Update(ctx context.Context, intent *models.Intent) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

// ConversationStore reads and prunes recorded chat sessions.
type ConversationStore interface {
	GetByID(ctx context.Context, id string) (*models.Conversation, error)
	List(ctx context.Context, page, limit int, start, end *time.Time) ([]models.Conversation, int64, error)
	Delete(ctx context.Context, id string) error

	CountSince(ctx context.Context, since time.Time) (int64, error)
	MessageCountSince(ctx context.Context, since time.Time) (int64, error)
	DailyCountsSince(ctx context.Context, since time.Time) ([]models.DailyCount, error)
}

// AnalyticsStore rolls up bot runtime events.
type AnalyticsStore interface {
	AvgConfidenceSince(ctx context.Context, since time.Time) (float64, error)
	IntentStatsSince(ctx context.Context, since time.Time, limit int) ([]models.IntentStat, error)
	RAGStatsSince(ctx context.Context, since time.Time) (*models.RAGStats, error)
}

// UserStore persists operator accounts.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
}
