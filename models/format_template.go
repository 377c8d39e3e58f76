package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TemplateMode is the textual mode enum carried by format templates.
type TemplateMode string

const (
	TemplateModeDebate  TemplateMode = "DEBATE"
	TemplateModePodcast TemplateMode = "PODCAST"
)

// Valid reports whether m is a known template mode.
func (m TemplateMode) Valid() bool {
	return m == TemplateModeDebate || m == TemplateModePodcast
}

// ModeSlug maps the enum to the slug of its Mode record.
func (m TemplateMode) ModeSlug() string {
	switch m {
	case TemplateModePodcast:
		return "podcast-mode"
	default:
		return "debate-mode"
	}
}

// FormatTemplate is a reusable structural preset for debates.
type FormatTemplate struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name              string             `bson:"name" json:"name"`
	Slug              string             `bson:"slug" json:"slug"`
	Description       string             `bson:"description" json:"description"`
	Category          string             `bson:"category" json:"category"`
	Mode              TemplateMode       `bson:"mode" json:"mode"`
	MinParticipants   int                `bson:"minParticipants" json:"minParticipants"`
	MaxParticipants   int                `bson:"maxParticipants" json:"maxParticipants"`
	RequiresModerator bool               `bson:"requiresModerator" json:"requiresModerator"`
	DurationMinutes   int                `bson:"durationMinutes" json:"durationMinutes"`
	FlexibleTiming    bool               `bson:"flexibleTiming" json:"flexibleTiming"`
	SegmentStructure  []Segment          `bson:"segmentStructure" json:"segmentStructure"`
	IsPreset          bool               `bson:"isPreset" json:"isPreset"`
	CreatedAt         time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// TemplateFilter narrows template listings.
type TemplateFilter struct {
	Search   string
	Mode     TemplateMode
	Category string
	Page     Page
}
