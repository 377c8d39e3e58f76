package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DebateStatus tracks a debate through generation and publishing.
type DebateStatus string

const (
	StatusDraft      DebateStatus = "DRAFT"
	StatusGenerating DebateStatus = "GENERATING"
	StatusCompleted  DebateStatus = "COMPLETED"
	StatusFailed     DebateStatus = "FAILED"
	StatusPublished  DebateStatus = "PUBLISHED"
)

// Valid reports whether s is a known status.
func (s DebateStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusGenerating, StatusCompleted, StatusFailed, StatusPublished:
		return true
	}
	return false
}

// ParticipantRole is the part a persona plays in a debate.
type ParticipantRole string

const (
	RoleDebater   ParticipantRole = "DEBATER"
	RoleModerator ParticipantRole = "MODERATOR"
	RoleExpert    ParticipantRole = "EXPERT"
	RoleHost      ParticipantRole = "HOST"
	RoleJudge     ParticipantRole = "JUDGE"
)

// Valid reports whether r is a known role.
func (r ParticipantRole) Valid() bool {
	switch r {
	case RoleDebater, RoleModerator, RoleExpert, RoleHost, RoleJudge:
		return true
	}
	return false
}

// Participant places a persona in a debate.
type Participant struct {
	PersonaID     primitive.ObjectID `bson:"personaId" json:"personaId"`
	Role          ParticipantRole    `bson:"role" json:"role"`
	SpeakingOrder int                `bson:"speakingOrder" json:"speakingOrder"`
}

// TranscriptEntry is one generated utterance.
type TranscriptEntry struct {
	SegmentKey string             `bson:"segmentKey" json:"segmentKey"`
	PersonaID  primitive.ObjectID `bson:"personaId,omitempty" json:"personaId,omitempty"`
	Speaker    string             `bson:"speaker" json:"speaker"`
	Role       ParticipantRole    `bson:"role,omitempty" json:"role,omitempty"`
	Text       string             `bson:"text" json:"text"`
}

// ReviewDocument is an uploaded reference file attached to a debate.
type ReviewDocument struct {
	Key           string    `bson:"key" json:"key"`
	URL           string    `bson:"url" json:"url"`
	FileName      string    `bson:"fileName" json:"fileName"`
	MimeType      string    `bson:"mimeType" json:"mimeType"`
	SizeBytes     int64     `bson:"sizeBytes" json:"sizeBytes"`
	ExtractedText string    `bson:"extractedText,omitempty" json:"extractedText,omitempty"`
	UploadedAt    time.Time `bson:"uploadedAt" json:"uploadedAt"`
}

// Debate is the mutable working object. SegmentStructure is a copy taken from
// the template at creation or edit time and may diverge from it.
type Debate struct {
	ID                      primitive.ObjectID  `bson:"_id,omitempty" json:"id,omitempty"`
	Title                   string              `bson:"title" json:"title"`
	Topic                   string              `bson:"topic" json:"topic"`
	Description             string              `bson:"description" json:"description"`
	Category                string              `bson:"category,omitempty" json:"category,omitempty"`
	Mode                    TemplateMode        `bson:"mode" json:"mode"`
	ModeID                  *primitive.ObjectID `bson:"modeId,omitempty" json:"modeId,omitempty"`
	FormatTemplateID        *primitive.ObjectID `bson:"formatTemplateId,omitempty" json:"formatTemplateId,omitempty"`
	SegmentStructure        []Segment           `bson:"segmentStructure" json:"segmentStructure"`
	FlexibleTiming          bool                `bson:"flexibleTiming" json:"flexibleTiming"`
	MinParticipants         int                 `bson:"minParticipants" json:"minParticipants"`
	MaxParticipants         int                 `bson:"maxParticipants" json:"maxParticipants"`
	RequiresModerator       bool                `bson:"requiresModerator" json:"requiresModerator"`
	TotalDurationMinutes    int                 `bson:"totalDurationMinutes" json:"totalDurationMinutes"`
	Participants            []Participant       `bson:"participants" json:"participants"`
	Status                  DebateStatus        `bson:"status" json:"status"`
	Transcript              []TranscriptEntry   `bson:"transcript,omitempty" json:"transcript,omitempty"`
	TranscriptIsPlaceholder bool                `bson:"transcriptIsPlaceholder" json:"transcriptIsPlaceholder"`
	Teaser                  string              `bson:"teaser,omitempty" json:"teaser,omitempty"`
	ReviewDocuments         []ReviewDocument    `bson:"reviewDocuments,omitempty" json:"reviewDocuments,omitempty"`
	GenerationError         string              `bson:"generationError,omitempty" json:"generationError,omitempty"`
	CreatedAt               time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt               time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// DebateInput is the creation and full-update payload for a debate, as
// assembled by the wizard's review step or posted directly.
type DebateInput struct {
	Title                string        `json:"title" binding:"required"`
	Topic                string        `json:"topic" binding:"required"`
	Description          string        `json:"description"`
	Category             string        `json:"category"`
	Mode                 TemplateMode  `json:"mode"`
	ModeID               string        `json:"modeId"`
	FormatTemplateID     string        `json:"formatTemplateId"`
	SegmentStructure     []Segment     `json:"segmentStructure"`
	FlexibleTiming       bool          `json:"flexibleTiming"`
	MinParticipants      int           `json:"minParticipants"`
	MaxParticipants      int           `json:"maxParticipants"`
	RequiresModerator    bool          `json:"requiresModerator"`
	TotalDurationMinutes int           `json:"totalDurationMinutes"`
	Participants         []Participant `json:"participants"`
}

// DebateFilter narrows debate listings.
type DebateFilter struct {
	Search   string
	Status   DebateStatus
	Mode     TemplateMode
	Category string
	Page     Page
}
