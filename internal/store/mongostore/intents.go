package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sofrecom-tn/chatbot-admin/internal/apperr"
	"github.com/sofrecom-tn/chatbot-admin/internal/models"
	"github.com/sofrecom-tn/chatbot-admin/pkg/logger"
)

// IntentStore persists intents in the intents collection.
type IntentStore struct {
	col    *mongo.Collection
	logger logger.Logger
}

func (s *IntentStore) Create(ctx context.Context, intent *models.Intent) error {
	now := time.Now().UTC()
	if intent.ID.IsZero() {
		intent.ID = primitive.NewObjectID()
	}
	intent.CreatedAt = now
	intent.UpdatedAt = now

	if _, err := s.col.InsertOne(ctx, intent); err != nil {
		return fmt.Errorf("insert intent: %w", err)
	}
	return nil
}

func (s *IntentStore) GetByID(ctx context.Context, id string) (*models.Intent, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	var intent models.Intent
	err = s.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&intent)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("intent not found")
	}
	if err != nil {
		return nil, fmt.Errorf("find intent: %w", err)
	}
	return &intent, nil
}

func (s *IntentStore) List(ctx context.Context, page, limit int, search string) ([]models.Intent, int64, error) {
	filter := bson.M{}
	if search != "" {
		filter["name"] = bson.M{"$regex": search, "$options": "i"}
	}

	opts := options.Find().
		SetSort(bson.M{"name": 1}).
		SetSkip(skipFor(page, limit)).
		SetLimit(int64(limit))

	cursor, err := s.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list intents: %w", err)
	}
	intents := make([]models.Intent, 0, limit)
	if err := cursor.All(ctx, &intents); err != nil {
		return nil, 0, fmt.Errorf("decode intents: %w", err)
	}

	total, err := s.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count intents: %w", err)
	}
	return intents, total, nil
}

func (s *IntentStore) Update(ctx context.Context, intent *models.Intent) error {
	intent.UpdatedAt = time.Now().UTC()

	res, err := s.col.ReplaceOne(ctx, bson.M{"_id": intent.ID}, intent)
	if err != nil {
		return fmt.Errorf("update intent: %w", err)
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("intent not found")
	}
	return nil
}

func (s *IntentStore) Delete(ctx context.Context, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}

	res, err := s.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete intent: %w", err)
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound("intent not found")
	}
	return nil
}

func (s *IntentStore) Count(ctx context.Context) (int64, error) {
	return s.col.CountDocuments(ctx, bson.M{})
}
