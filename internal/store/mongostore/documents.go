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

// DocumentStore persists Document records in the documents collection.
type DocumentStore struct {
	col    *mongo.Collection
	logger logger.Logger
}

func (s *DocumentStore) Create(ctx context.Context, doc *models.Document) error {
	now := time.Now().UTC()
	if doc.ID.IsZero() {
		doc.ID = primitive.NewObjectID()
	}
	doc.CreatedAt = now
	doc.UpdatedAt = now

	if _, err := s.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

func (s *DocumentStore) GetByID(ctx context.Context, id string) (*models.Document, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	var doc models.Document
	err = s.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("document not found")
	}
	if err != nil {
		return nil, fmt.Errorf("find document: %w", err)
	}
	return &doc, nil
}

func (s *DocumentStore) List(ctx context.Context, page, limit int) ([]models.Document, int64, error) {
	opts := options.Find().
		SetSort(bson.M{"createdAt": -1}).
		SetSkip(skipFor(page, limit)).
		SetLimit(int64(limit))

	cursor, err := s.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list documents: %w", err)
	}
	docs := make([]models.Document, 0, limit)
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("decode documents: %w", err)
	}

	total, err := s.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, fmt.Errorf("count documents: %w", err)
	}
	return docs, total, nil
}

func (s *DocumentStore) Update(ctx context.Context, doc *models.Document) error {
	doc.UpdatedAt = time.Now().UTC()

	res, err := s.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc)
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("document not found")
	}
	return nil
}

func (s *DocumentStore) Delete(ctx context.Context, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}

	res, err := s.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound("document not found")
	}
	return nil
}

func (s *DocumentStore) ListStuck(ctx context.Context, cutoff time.Time) ([]models.Document, error) {
	filter := bson.M{
		"status":    models.StatusProcessing,
		"updatedAt": bson.M{"$lt": cutoff},
	}
	cursor, err := s.col.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list stuck documents: %w", err)
	}
	var docs []models.Document
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode stuck documents: %w", err)
	}
	return docs, nil
}
