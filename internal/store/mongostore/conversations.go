package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sofrecom-tn/chatbot-admin/internal/apperr"
	"github.com/sofrecom-tn/chatbot-admin/internal/models"
)

// ConversationStore reads chat sessions written by the bot runtime.
type ConversationStore struct {
	col *mongo.Collection
}

func (s *ConversationStore) GetByID(ctx context.Context, id string) (*models.Conversation, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	var conv models.Conversation
	err = s.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&conv)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("conversation not found")
	}
	if err != nil {
		return nil, fmt.Errorf("find conversation: %w", err)
	}
	return &conv, nil
}

func (s *ConversationStore) List(ctx context.Context, page, limit int, start, end *time.Time) ([]models.Conversation, int64, error) {
	filter := bson.M{}
	if start != nil || end != nil {
		created := bson.M{}
		if start != nil {
			created["$gte"] = *start
		}
		if end != nil {
			created["$lte"] = *end
		}
		filter["createdAt"] = created
	}

	opts := options.Find().
		SetSort(bson.M{"createdAt": -1}).
		SetSkip(skipFor(page, limit)).
		SetLimit(int64(limit))

	cursor, err := s.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list conversations: %w", err)
	}
	convs := make([]models.Conversation, 0, limit)
	if err := cursor.All(ctx, &convs); err != nil {
		return nil, 0, fmt.Errorf("decode conversations: %w", err)
	}

	total, err := s.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count conversations: %w", err)
	}
	return convs, total, nil
}

func (s *ConversationStore) Delete(ctx context.Context, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}

	res, err := s.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete conversation: %w", err)
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound("conversation not found")
	}
	return nil
}

func (s *ConversationStore) CountSince(ctx context.Context, since time.Time) (int64, error) {
	return s.col.CountDocuments(ctx, bson.M{"createdAt": bson.M{"$gte": since}})
}

func (s *ConversationStore) MessageCountSince(ctx context.Context, since time.Time) (int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"createdAt": bson.M{"$gte": since}}}},
		{{Key: "$project", Value: bson.M{
			"messageCount": bson.M{"$size": bson.M{"$ifNull": bson.A{"$messages", bson.A{}}}},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": "$messageCount"},
		}}},
	}

	cursor, err := s.col.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("aggregate message count: %w", err)
	}
	var out []struct {
		Total int64 `bson:"total"`
	}
	if err := cursor.All(ctx, &out); err != nil {
		return 0, fmt.Errorf("decode message count: %w", err)
	}
	if len(out) == 0 {
		return 0, nil
	}
	return out[0].Total, nil
}

func (s *ConversationStore) DailyCountsSince(ctx context.Context, since time.Time) ([]models.DailyCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"createdAt": bson.M{"$gte": since}}}},
		{{Key: "$group", Value: bson.M{
			"_id": bson.M{"$dateToString": bson.M{
				"format": "%Y-%m-%d",
				"date":   "$createdAt",
			}},
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.M{"_id": 1}}},
	}

	cursor, err := s.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate daily counts: %w", err)
	}
	var daily []models.DailyCount
	if err := cursor.All(ctx, &daily); err != nil {
		return nil, fmt.Errorf("decode daily counts: %w", err)
	}
	return daily, nil
}
