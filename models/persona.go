package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Persona is an AI-driven participant profile. Traits map a taxonomy category
// slug to the selected term slugs.
type Persona struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id,omitempty"`
	Name         string              `bson:"name" json:"name"`
	Slug         string              `bson:"slug" json:"slug"`
	Description  string              `bson:"description" json:"description"`
	Teaser       string              `bson:"teaser,omitempty" json:"teaser,omitempty"`
	AvatarURL    string              `bson:"avatarUrl,omitempty" json:"avatarUrl,omitempty"`
	AvatarKey    string              `bson:"avatarKey,omitempty" json:"-"`
	VoiceID      string              `bson:"voiceId,omitempty" json:"voiceId,omitempty"`
	Traits       map[string][]string `bson:"traits" json:"traits"`
	SystemPrompt string              `bson:"systemPrompt,omitempty" json:"systemPrompt,omitempty"`
	CreatedAt    time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// PersonaFilter narrows persona listings.
type PersonaFilter struct {
	Search string
	Page   Page
}
