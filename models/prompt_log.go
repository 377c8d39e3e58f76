package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AIPromptLog records one provider call. Failed generations are logged here
// rather than failing the user-facing operation.
type AIPromptLog struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Provider   string             `bson:"provider" json:"provider"`
	Model      string             `bson:"model" json:"model"`
	Purpose    string             `bson:"purpose" json:"purpose"` // "transcript", "description", "teaser", "avatar"
	EntityType string             `bson:"entityType" json:"entityType"`
	EntityID   primitive.ObjectID `bson:"entityId" json:"entityId"`
	Prompt     string             `bson:"prompt" json:"prompt"`
	Response   string             `bson:"response,omitempty" json:"response,omitempty"`
	Success    bool               `bson:"success" json:"success"`
	Error      string             `bson:"error,omitempty" json:"error,omitempty"`
	Attempt    int                `bson:"attempt" json:"attempt"`
	DurationMs int64              `bson:"durationMs" json:"durationMs"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
}

// PromptLogFilter narrows prompt log listings.
type PromptLogFilter struct {
	Provider   string
	Purpose    string
	EntityType string
	Success    *bool
	Page       Page
}
