package wizard

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"voxarena/internal/format"
	"voxarena/models"
)

// TemplateSource fetches format templates.
type TemplateSource interface {
	GetTemplate(ctx context.Context, id primitive.ObjectID) (*models.FormatTemplate, error)
}

// ModeSource resolves a mode record by slug.
type ModeSource interface {
	GetModeBySlug(ctx context.Context, slug string) (*models.Mode, error)
}

// DebateCreator persists the assembled debate. It performs the authoritative
// validation; the wizard gates are advisory.
type DebateCreator interface {
	CreateDebate(ctx context.Context, in models.DebateInput) (*models.Debate, error)
}

// Service drives wizard sessions over a Store.
type Service struct {
	store     Store
	templates TemplateSource
	modes     ModeSource
	debates   DebateCreator
	log       logrus.FieldLogger
}

func NewService(store Store, templates TemplateSource, modes ModeSource, debates DebateCreator, log logrus.FieldLogger) *Service {
	return &Service{store: store, templates: templates, modes: modes, debates: debates, log: log}
}

// Start opens a new session on the format step.
func (s *Service) Start(ctx context.Context) (*Wizard, error) {
	w := New(uuid.NewString())
	s.resolveMode(ctx, w)
	if err := s.store.Save(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Wizard, error) {
	return s.store.Load(ctx, id)
}

// update loads a session, applies fn and saves it if fn succeeds.
func (s *Service) update(ctx context.Context, id string, fn func(w *Wizard) error) (*Wizard, error) {
	w, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(w); err != nil {
		return w, err
	}
	w.touch()
	if err := s.store.Save(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

// SelectTemplate loads the template and seeds the segment step from it.
// Participants and details already entered are kept.
func (s *Service) SelectTemplate(ctx context.Context, id string, templateID primitive.ObjectID) (*Wizard, error) {
	tmpl, err := s.templates.GetTemplate(ctx, templateID)
	if err != nil {
		return nil, fmt.Errorf("failed to load template: %w", err)
	}
	return s.update(ctx, id, func(w *Wizard) error {
		w.Data.Template = &TemplateRef{
			ID:                tmpl.ID.Hex(),
			Name:              tmpl.Name,
			Mode:              tmpl.Mode,
			DurationMinutes:   tmpl.DurationMinutes,
			MinParticipants:   tmpl.MinParticipants,
			MaxParticipants:   tmpl.MaxParticipants,
			RequiresModerator: tmpl.RequiresModerator,
		}
		w.Data.Segments.Segments = models.CloneSegments(tmpl.SegmentStructure)
		w.Data.Segments.FlexibleTiming = tmpl.FlexibleTiming
		if tmpl.Mode.Valid() {
			w.Data.Mode = tmpl.Mode
		}
		if w.Data.Details.Category == "" {
			w.Data.Details.Category = tmpl.Category
		}
		s.resolveMode(ctx, w)
		return nil
	})
}

// ClearTemplate switches to a custom format. Step 3 keeps whatever values it
// last had.
func (s *Service) ClearTemplate(ctx context.Context, id string, mode models.TemplateMode) (*Wizard, error) {
	return s.update(ctx, id, func(w *Wizard) error {
		w.Data.Template = nil
		if mode.Valid() {
			w.Data.Mode = mode
		}
		s.resolveMode(ctx, w)
		return nil
	})
}

// resolveMode maps the mode enum to its record for display. A missing record
// is not an error.
func (s *Service) resolveMode(ctx context.Context, w *Wizard) {
	w.Data.ModeID, w.Data.ModeName = "", ""
	if s.modes == nil {
		return
	}
	mode, err := s.modes.GetModeBySlug(ctx, w.Data.Mode.ModeSlug())
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			s.log.WithError(err).WithField("slug", w.Data.Mode.ModeSlug()).Warn("Failed to resolve debate mode")
		}
		return
	}
	w.Data.ModeID = mode.ID.Hex()
	w.Data.ModeName = mode.Name
}

func (s *Service) UpdateDetails(ctx context.Context, id string, d Details) (*Wizard, error) {
	return s.update(ctx, id, func(w *Wizard) error {
		w.Data.Details = d
		return nil
	})
}

// UpdateSegments replaces step 3 data. Missing segment keys are generated.
func (s *Service) UpdateSegments(ctx context.Context, id string, d SegmentData) (*Wizard, error) {
	return s.update(ctx, id, func(w *Wizard) error {
		d.Segments = format.EnsureKeys(d.Segments)
		w.Data.Segments = d
		return nil
	})
}

func (s *Service) MoveSegment(ctx context.Context, id string, from, to int) (*Wizard, error) {
	return s.update(ctx, id, func(w *Wizard) error {
		moved, err := format.MoveSegment(w.Data.Segments.Segments, from, to)
		if err != nil {
			return err
		}
		w.Data.Segments.Segments = moved
		return nil
	})
}

// UpdateParticipants replaces the participant list, renumbered in order.
func (s *Service) UpdateParticipants(ctx context.Context, id string, ps []models.Participant) (*Wizard, error) {
	return s.update(ctx, id, func(w *Wizard) error {
		w.Data.Participants = format.Renumber(ps)
		return nil
	})
}

func (s *Service) RemoveParticipant(ctx context.Context, id string, index int) (*Wizard, error) {
	return s.update(ctx, id, func(w *Wizard) error {
		if index < 0 || index >= len(w.Data.Participants) {
			return fmt.Errorf("%w: %d", ErrParticipantIndex, index)
		}
		w.Data.Participants = format.RemoveParticipant(w.Data.Participants, index)
		return nil
	})
}

func (s *Service) Next(ctx context.Context, id string) (*Wizard, error) {
	return s.update(ctx, id, func(w *Wizard) error { return w.Next() })
}

func (s *Service) Back(ctx context.Context, id string) (*Wizard, error) {
	return s.update(ctx, id, func(w *Wizard) error { return w.Back() })
}

func (s *Service) Goto(ctx context.Context, id string, step Step) (*Wizard, error) {
	return s.update(ctx, id, func(w *Wizard) error { return w.Goto(step) })
}

// Submit sends the assembled payload in a single create call. On failure the
// session stays on the review step with LastError set and no data lost.
func (s *Service) Submit(ctx context.Context, id string) (*models.Debate, *Wizard, error) {
	w, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if w.Current != StepReview {
		return nil, w, ErrNotOnReview
	}

	debate, err := s.debates.CreateDebate(ctx, w.Payload())
	if err != nil {
		w.LastError = err.Error()
		w.touch()
		if saveErr := s.store.Save(ctx, w); saveErr != nil {
			s.log.WithError(saveErr).WithField("wizard", id).Error("Failed to save wizard after submit error")
		}
		return nil, w, err
	}

	w.LastError = ""
	w.DebateID = debate.ID.Hex()
	if err := s.store.Delete(ctx, id); err != nil {
		s.log.WithError(err).WithField("wizard", id).Warn("Failed to delete submitted wizard session")
	}
	s.log.WithFields(logrus.Fields{"wizard": id, "debate": w.DebateID}).Info("Wizard submitted")
	return debate, w, nil
}
