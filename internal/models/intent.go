package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Intent is an NLU intent managed from the dashboard. Training itself
// happens in the external NLU stack; this record is the source of truth the
// sync operation exports.
type Intent struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Examples    []IntentExample    `bson:"examples,omitempty" json:"examples,omitempty"`
	Responses   []IntentResponse   `bson:"responses,omitempty" json:"responses,omitempty"`
	Entities    []IntentEntity     `bson:"entities,omitempty" json:"entities,omitempty"`
	IsActive    bool               `bson:"isActive" json:"isActive"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type IntentExample struct {
	Text string `bson:"text" json:"text"`
}

type IntentResponse struct {
	Text string `bson:"text" json:"text"`
}

type IntentEntity struct {
	Name string `bson:"name" json:"name"`
	Type string `bson:"type" json:"type"`
}
