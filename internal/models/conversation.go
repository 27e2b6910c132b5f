package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Conversation is one chatbot session as recorded by the bot runtime.
// The admin API only reads and deletes these.
type Conversation struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SessionID string             `bson:"sessionId" json:"sessionId"`
	Messages  []Message          `bson:"messages,omitempty" json:"messages,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type Message struct {
	Sender     string    `bson:"sender" json:"sender"`
	Text       string    `bson:"text" json:"text"`
	Intent     string    `bson:"intent,omitempty" json:"intent,omitempty"`
	Confidence float64   `bson:"confidence,omitempty" json:"confidence,omitempty"`
	Timestamp  time.Time `bson:"timestamp" json:"timestamp"`
}
