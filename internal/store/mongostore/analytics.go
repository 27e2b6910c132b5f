package mongostore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/sofrecom-tn/chatbot-admin/internal/models"
)

// AnalyticsStore rolls up NLU/RAG events with aggregation pipelines.
type AnalyticsStore struct {
	col *mongo.Collection
}

func (s *AnalyticsStore) AvgConfidenceSince(ctx context.Context, since time.Time) (float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"createdAt": bson.M{"$gte": since},
			"type":      models.EventNLU,
		}}},
		{{Key: "$group", Value: bson.M{
			"_id": nil,
			"avg": bson.M{"$avg": "$confidence"},
		}}},
	}

	cursor, err := s.col.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("aggregate avg confidence: %w", err)
	}
	var out []struct {
		Avg float64 `bson:"avg"`
	}
	if err := cursor.All(ctx, &out); err != nil {
		return 0, fmt.Errorf("decode avg confidence: %w", err)
	}
	if len(out) == 0 {
		return 0, nil
	}
	return out[0].Avg, nil
}

func (s *AnalyticsStore) IntentStatsSince(ctx context.Context, since time.Time, limit int) ([]models.IntentStat, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"createdAt": bson.M{"$gte": since},
			"type":      models.EventNLU,
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":           "$intent",
			"count":         bson.M{"$sum": 1},
			"avgConfidence": bson.M{"$avg": "$confidence"},
		}}},
		{{Key: "$sort", Value: bson.M{"count": -1}}},
		{{Key: "$limit", Value: limit}},
	}

	cursor, err := s.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate intent stats: %w", err)
	}
	var stats []models.IntentStat
	if err := cursor.All(ctx, &stats); err != nil {
		return nil, fmt.Errorf("decode intent stats: %w", err)
	}
	return stats, nil
}

func (s *AnalyticsStore) RAGStatsSince(ctx context.Context, since time.Time) (*models.RAGStats, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"createdAt": bson.M{"$gte": since},
			"type":      models.EventRAG,
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":          nil,
			"total":        bson.M{"$sum": 1},
			"avgRelevance": bson.M{"$avg": "$relevance"},
		}}},
	}

	cursor, err := s.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate rag stats: %w", err)
	}
	var out []models.RAGStats
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode rag stats: %w", err)
	}
	if len(out) == 0 {
		return &models.RAGStats{}, nil
	}
	return &out[0], nil
}
