package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Analytics event types.
const (
	EventNLU = "nlu"
	EventRAG = "rag"
)

// AnalyticsEvent is a single datapoint emitted by the bot runtime: an NLU
// classification or a RAG retrieval.
type AnalyticsEvent struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Type       string             `bson:"type" json:"type"`
	Intent     string             `bson:"intent,omitempty" json:"intent,omitempty"`
	Confidence float64            `bson:"confidence,omitempty" json:"confidence,omitempty"`
	Relevance  float64            `bson:"relevance,omitempty" json:"relevance,omitempty"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
}

// DashboardStats is the aggregate summary for the dashboard landing page.
type DashboardStats struct {
	TotalConversations int64   `json:"totalConversations"`
	TotalMessages      int64   `json:"totalMessages"`
	AvgConfidence      float64 `json:"avgConfidence"`
	PeriodDays         int     `json:"period"`
}

// IntentStat is one row of the top-intents rollup.
type IntentStat struct {
	Intent        string  `bson:"_id" json:"intent"`
	Count         int64   `bson:"count" json:"count"`
	AvgConfidence float64 `bson:"avgConfidence" json:"avgConfidence"`
}

// DailyCount is one day of the conversations-per-day rollup.
type DailyCount struct {
	Date  string `bson:"_id" json:"date"`
	Count int64  `bson:"count" json:"count"`
}

// RAGStats summarizes retrieval quality over a period.
type RAGStats struct {
	Total        int64   `bson:"total" json:"total"`
	AvgRelevance float64 `bson:"avgRelevance" json:"avgRelevance"`
}
