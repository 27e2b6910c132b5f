package mongostore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sofrecom-tn/chatbot-admin/internal/apperr"
	"github.com/sofrecom-tn/chatbot-admin/pkg/logger"
)

// Collection names.
const (
	colDocuments     = "documents"
	colIntents       = "intents"
	colConversations = "conversations"
	colAnalytics     = "analytics"
	colUsers         = "users"
)

// Client wraps one Mongo database and hands out entity stores.
type Client struct {
	db     *mongo.Database
	logger logger.Logger
}

// Connect dials Mongo and pings it before returning.
func Connect(ctx context.Context, uri, dbName string, log logger.Logger) (*Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	log.Info("Connected to MongoDB", logger.String("database", dbName))
	return &Client{db: client.Database(dbName), logger: log}, nil
}

// Close disconnects the underlying client.
func (c *Client) Close(ctx context.Context) error {
	return c.db.Client().Disconnect(ctx)
}

func (c *Client) Documents() *DocumentStore {
	return &DocumentStore{col: c.db.Collection(colDocuments), logger: c.logger}
}

func (c *Client) Intents() *IntentStore {
	return &IntentStore{col: c.db.Collection(colIntents), logger: c.logger}
}

func (c *Client) Conversations() *ConversationStore {
	return &ConversationStore{col: c.db.Collection(colConversations)}
}

func (c *Client) Analytics() *AnalyticsStore {
	return &AnalyticsStore{col: c.db.Collection(colAnalytics)}
}

func (c *Client) Users() *UserStore {
	return &UserStore{col: c.db.Collection(colUsers)}
}

// parseID converts a hex id from the API into an ObjectID. A malformed id
// can never match a record, so it maps to not-found rather than a 500.
func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, apperr.NotFound("record not found")
	}
	return oid, nil
}

func skipFor(page, limit int) int64 {
	if page < 1 {
		page = 1
	}
	return int64((page - 1) * limit)
}
