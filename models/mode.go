package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Mode is the concrete record behind a template's DEBATE/PODCAST enum. Its
// system prompt frames transcript generation.
type Mode struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name         string             `bson:"name" json:"name"`
	Slug         string             `bson:"slug" json:"slug"`
	Description  string             `bson:"description" json:"description"`
	SystemPrompt string             `bson:"systemPrompt" json:"systemPrompt"`
	IsDefault    bool               `bson:"isDefault" json:"isDefault"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}
