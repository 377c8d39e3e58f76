// Package wizard implements the five-step debate creation flow. A Wizard
// carries the accumulated form data; steps only ever add to or overwrite it.
package wizard

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"voxarena/internal/format"
	"voxarena/models"
)

type Step int

const (
	StepFormat Step = iota + 1
	StepDetails
	StepSegments
	StepParticipants
	StepReview
)

func (s Step) String() string {
	switch s {
	case StepFormat:
		return "format"
	case StepDetails:
		return "details"
	case StepSegments:
		return "segments"
	case StepParticipants:
		return "participants"
	case StepReview:
		return "review"
	}
	return fmt.Sprintf("step(%d)", int(s))
}

var (
	ErrStepBlocked    = errors.New("current step is incomplete")
	ErrInvalidStep    = errors.New("invalid step")
	ErrNotOnReview    = errors.New("submit is only available on the review step")
	ErrAlreadyOnFirst = errors.New("already on the first step")
	ErrAlreadyOnLast  = errors.New("already on the last step")

	ErrParticipantIndex = errors.New("participant index out of range")
)

// TemplateRef is the part of a selected template the wizard keeps.
type TemplateRef struct {
	ID                string              `json:"id"`
	Name              string              `json:"name"`
	Mode              models.TemplateMode `json:"mode"`
	DurationMinutes   int                 `json:"durationMinutes"`
	MinParticipants   int                 `json:"minParticipants"`
	MaxParticipants   int                 `json:"maxParticipants"`
	RequiresModerator bool                `json:"requiresModerator"`
}

type Details struct {
	Title       string `json:"title"`
	Topic       string `json:"topic"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// SegmentData is step 3 state. The participant bounds here are the custom
// values; a selected template overrides them.
type SegmentData struct {
	Segments          []models.Segment `json:"segments"`
	FlexibleTiming    bool             `json:"flexibleTiming"`
	MinParticipants   int              `json:"minParticipants"`
	MaxParticipants   int              `json:"maxParticipants"`
	RequiresModerator bool             `json:"requiresModerator"`
}

type Data struct {
	Template     *TemplateRef         `json:"template,omitempty"`
	Mode         models.TemplateMode  `json:"mode"`
	ModeID       string               `json:"modeId,omitempty"`
	ModeName     string               `json:"modeName,omitempty"`
	Details      Details              `json:"details"`
	Segments     SegmentData          `json:"segments"`
	Participants []models.Participant `json:"participants"`
}

type Wizard struct {
	ID        string    `json:"id"`
	Current   Step      `json:"current"`
	Data      Data      `json:"data"`
	LastError string    `json:"lastError,omitempty"`
	DebateID  string    `json:"debateId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// New returns a wizard on the format step with default custom values.
func New(id string) *Wizard {
	now := time.Now()
	return &Wizard{
		ID:      id,
		Current: StepFormat,
		Data: Data{
			Mode: models.TemplateModeDebate,
			Segments: SegmentData{
				MinParticipants: 2,
				MaxParticipants: 4,
			},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Constraints resolves the participant rules in effect.
func (w *Wizard) Constraints() format.Constraints {
	var tmpl *format.Constraints
	if t := w.Data.Template; t != nil {
		tmpl = &format.Constraints{
			MinParticipants:   t.MinParticipants,
			MaxParticipants:   t.MaxParticipants,
			RequiresModerator: t.RequiresModerator,
		}
	}
	s := w.Data.Segments
	return format.ResolveConstraints(tmpl, &format.Constraints{
		MinParticipants:   s.MinParticipants,
		MaxParticipants:   s.MaxParticipants,
		RequiresModerator: s.RequiresModerator,
	})
}

// Gate reports whether the given step's data allows moving forward, and why
// not when it does not.
func (w *Wizard) Gate(step Step) (bool, []string) {
	switch step {
	case StepFormat:
		return true, nil
	case StepDetails:
		var problems []string
		if strings.TrimSpace(w.Data.Details.Title) == "" {
			problems = append(problems, "title is required")
		}
		if strings.TrimSpace(w.Data.Details.Topic) == "" {
			problems = append(problems, "topic is required")
		}
		return len(problems) == 0, problems
	case StepSegments:
		if !format.CanAdvanceSegments(w.Data.Segments.Segments) {
			return false, []string{"at least one segment is required"}
		}
		return true, nil
	case StepParticipants:
		check := format.ValidateParticipants(w.Data.Participants, w.Constraints())
		return check.Valid, check.Problems
	case StepReview:
		return false, []string{"review is the last step"}
	}
	return false, []string{ErrInvalidStep.Error()}
}

// CanAdvance is Gate for the current step.
func (w *Wizard) CanAdvance() bool {
	ok, _ := w.Gate(w.Current)
	return ok
}

// Next moves forward one step if the current step's gate passes.
func (w *Wizard) Next() error {
	if w.Current >= StepReview {
		return ErrAlreadyOnLast
	}
	if ok, problems := w.Gate(w.Current); !ok {
		return fmt.Errorf("%w: %s", ErrStepBlocked, strings.Join(problems, "; "))
	}
	w.Current++
	w.touch()
	return nil
}

// Back moves one step backward. Data is kept.
func (w *Wizard) Back() error {
	if w.Current <= StepFormat {
		return ErrAlreadyOnFirst
	}
	w.Current--
	w.touch()
	return nil
}

// Goto jumps backward to an earlier or the current step.
func (w *Wizard) Goto(step Step) error {
	if step < StepFormat || step > w.Current {
		return ErrInvalidStep
	}
	w.Current = step
	w.touch()
	return nil
}

// TotalDuration is the sum over every segment.
func (w *Wizard) TotalDuration() int {
	return format.TotalDuration(w.Data.Segments.Segments)
}

// Payload assembles the debate creation input from the accumulated data.
func (w *Wizard) Payload() models.DebateInput {
	c := w.Constraints()
	in := models.DebateInput{
		Title:                strings.TrimSpace(w.Data.Details.Title),
		Topic:                strings.TrimSpace(w.Data.Details.Topic),
		Description:          w.Data.Details.Description,
		Category:             w.Data.Details.Category,
		Mode:                 w.Data.Mode,
		ModeID:               w.Data.ModeID,
		SegmentStructure:     models.CloneSegments(w.Data.Segments.Segments),
		FlexibleTiming:       w.Data.Segments.FlexibleTiming,
		MinParticipants:      c.MinParticipants,
		MaxParticipants:      c.MaxParticipants,
		RequiresModerator:    c.RequiresModerator,
		TotalDurationMinutes: w.TotalDuration(),
		Participants:         format.Renumber(w.Data.Participants),
	}
	if w.Data.Template != nil {
		in.FormatTemplateID = w.Data.Template.ID
	}
	return in
}

func (w *Wizard) touch() {
	w.UpdatedAt = time.Now()
}
