package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"voxarena/internal/format"
	"voxarena/models"
)

// DebateView is a debate as returned by the API. Drift is only present for
// debates created from a template.
type DebateView struct {
	models.Debate
	Drift  *format.DriftReport  `json:"drift,omitempty"`
	Timing *format.TimingReport `json:"timing,omitempty"`
}

// DebatePatch carries a partial update. Nil fields are left alone.
type DebatePatch struct {
	Title             *string               `json:"title"`
	Topic             *string               `json:"topic"`
	Description       *string               `json:"description"`
	Category          *string               `json:"category"`
	SegmentStructure  *[]models.Segment     `json:"segmentStructure"`
	FlexibleTiming    *bool                 `json:"flexibleTiming"`
	MinParticipants   *int                  `json:"minParticipants"`
	MaxParticipants   *int                  `json:"maxParticipants"`
	RequiresModerator *bool                 `json:"requiresModerator"`
	Participants      *[]models.Participant `json:"participants"`
}

type DebateService struct {
	debates   DebateStore
	templates TemplateStore
	personas  PersonaStore
	modes     ModeStore
	log       logrus.FieldLogger
}

func NewDebateService(debates DebateStore, templates TemplateStore, personas PersonaStore, modes ModeStore, log logrus.FieldLogger) *DebateService {
	return &DebateService{debates: debates, templates: templates, personas: personas, modes: modes, log: log}
}

// CreateDebate validates the input and stores a new DRAFT debate. The
// segment structure is copied, never shared with the template.
func (s *DebateService) CreateDebate(ctx context.Context, in models.DebateInput) (*models.Debate, error) {
	d := &models.Debate{Status: models.StatusDraft}
	if err := s.apply(ctx, d, in); err != nil {
		return nil, err
	}
	if err := s.debates.Create(ctx, d); err != nil {
		return nil, fmt.Errorf("failed to create debate: %w", err)
	}
	s.log.WithFields(logrus.Fields{"debate": d.ID.Hex(), "template": in.FormatTemplateID}).Info("Debate created")
	return d, nil
}

// Replace is a full update with the same validation as create. Status and
// generated content are kept.
func (s *DebateService) Replace(ctx context.Context, id primitive.ObjectID, in models.DebateInput) (*DebateView, error) {
	d, err := s.editable(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, d, in); err != nil {
		return nil, err
	}
	if err := s.save(ctx, d); err != nil {
		return nil, err
	}
	return s.view(ctx, d, nil), nil
}

// Patch applies a partial update, then re-validates the whole debate.
func (s *DebateService) Patch(ctx context.Context, id primitive.ObjectID, p DebatePatch) (*DebateView, error) {
	d, err := s.editable(ctx, id)
	if err != nil {
		return nil, err
	}
	in := inputFromDebate(d)
	if p.Title != nil {
		in.Title = *p.Title
	}
	if p.Topic != nil {
		in.Topic = *p.Topic
	}
	if p.Description != nil {
		in.Description = *p.Description
	}
	if p.Category != nil {
		in.Category = *p.Category
	}
	if p.SegmentStructure != nil {
		in.SegmentStructure = *p.SegmentStructure
	}
	if p.FlexibleTiming != nil {
		in.FlexibleTiming = *p.FlexibleTiming
	}
	if p.MinParticipants != nil {
		in.MinParticipants = *p.MinParticipants
	}
	if p.MaxParticipants != nil {
		in.MaxParticipants = *p.MaxParticipants
	}
	if p.RequiresModerator != nil {
		in.RequiresModerator = *p.RequiresModerator
	}
	if p.Participants != nil {
		in.Participants = *p.Participants
	}
	if err := s.apply(ctx, d, in); err != nil {
		return nil, err
	}
	if err := s.save(ctx, d); err != nil {
		return nil, err
	}
	return s.view(ctx, d, nil), nil
}

// save writes the edit unless a generation run claimed the debate since it
// was read.
func (s *DebateService) save(ctx context.Context, d *models.Debate) error {
	err := s.debates.Update(ctx, d)
	if errors.Is(err, models.ErrStatusConflict) {
		return conflictf("debate cannot be edited while generating")
	}
	return err
}

func (s *DebateService) editable(ctx context.Context, id primitive.ObjectID) (*models.Debate, error) {
	d, err := s.debates.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.Status == models.StatusGenerating {
		return nil, conflictf("debate cannot be edited while generating")
	}
	return d, nil
}

func inputFromDebate(d *models.Debate) models.DebateInput {
	in := models.DebateInput{
		Title:             d.Title,
		Topic:             d.Topic,
		Description:       d.Description,
		Category:          d.Category,
		Mode:              d.Mode,
		SegmentStructure:  d.SegmentStructure,
		FlexibleTiming:    d.FlexibleTiming,
		MinParticipants:   d.MinParticipants,
		MaxParticipants:   d.MaxParticipants,
		RequiresModerator: d.RequiresModerator,
		Participants:      d.Participants,
	}
	if d.ModeID != nil {
		in.ModeID = d.ModeID.Hex()
	}
	if d.FormatTemplateID != nil {
		in.FormatTemplateID = d.FormatTemplateID.Hex()
	}
	return in
}

// apply validates in and copies it onto d. All problems are reported at once.
func (s *DebateService) apply(ctx context.Context, d *models.Debate, in models.DebateInput) error {
	var problems []string

	title, topic := strings.TrimSpace(in.Title), strings.TrimSpace(in.Topic)
	if title == "" {
		problems = append(problems, "title is required")
	}
	if topic == "" {
		problems = append(problems, "topic is required")
	}

	mode := in.Mode
	if mode == "" {
		mode = models.TemplateModeDebate
	}
	if !mode.Valid() {
		problems = append(problems, fmt.Sprintf("unknown mode %q", in.Mode))
	}

	var tmpl *models.FormatTemplate
	var templateID *primitive.ObjectID
	if in.FormatTemplateID != "" {
		oid, err := primitive.ObjectIDFromHex(in.FormatTemplateID)
		if err != nil {
			problems = append(problems, "formatTemplateId is not a valid id")
		} else if tmpl, err = s.templates.Get(ctx, oid); errors.Is(err, models.ErrNotFound) {
			problems = append(problems, "format template not found")
		} else if err != nil {
			return err
		} else {
			templateID = &oid
		}
	}

	segments := format.EnsureKeys(in.SegmentStructure)
	for _, issue := range format.ValidateStructure(segments) {
		problems = append(problems, issue.String())
	}

	constraints := format.ResolveConstraints(format.FromTemplate(tmpl), &format.Constraints{
		MinParticipants:   in.MinParticipants,
		MaxParticipants:   in.MaxParticipants,
		RequiresModerator: in.RequiresModerator,
	})

	participants, participantProblems, err := s.checkParticipants(ctx, in.Participants)
	if err != nil {
		return err
	}
	problems = append(problems, participantProblems...)
	problems = append(problems, format.ValidateParticipants(participants, constraints).Problems...)

	modeID, err := s.resolveModeID(ctx, in.ModeID, mode)
	if err != nil {
		problems = append(problems, err.Error())
	}

	if len(problems) > 0 {
		return newValidationError(problems...)
	}

	d.Title = title
	d.Topic = topic
	d.Description = in.Description
	d.Category = in.Category
	d.Mode = mode
	d.ModeID = modeID
	d.FormatTemplateID = templateID
	d.SegmentStructure = models.CloneSegments(segments)
	d.FlexibleTiming = in.FlexibleTiming
	d.MinParticipants = constraints.MinParticipants
	d.MaxParticipants = constraints.MaxParticipants
	d.RequiresModerator = constraints.RequiresModerator
	d.TotalDurationMinutes = format.TotalDuration(segments)
	d.Participants = participants
	if d.Category == "" && tmpl != nil {
		d.Category = tmpl.Category
	}
	return nil
}

// checkParticipants verifies that every persona exists and returns the list
// renumbered 1..N. Shape rules live in format.ValidateParticipants.
func (s *DebateService) checkParticipants(ctx context.Context, in []models.Participant) ([]models.Participant, []string, error) {
	var problems []string
	seen := make(map[primitive.ObjectID]bool, len(in))
	ids := make([]primitive.ObjectID, 0, len(in))
	for _, p := range in {
		if p.PersonaID.IsZero() || seen[p.PersonaID] {
			continue
		}
		seen[p.PersonaID] = true
		ids = append(ids, p.PersonaID)
	}

	if len(ids) > 0 {
		found, err := s.personas.GetMany(ctx, ids)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load personas: %w", err)
		}
		exists := make(map[primitive.ObjectID]bool, len(found))
		for _, p := range found {
			exists[p.ID] = true
		}
		for _, id := range ids {
			if !exists[id] {
				problems = append(problems, fmt.Sprintf("persona %s not found", id.Hex()))
			}
		}
	}
	return format.Renumber(in), problems, nil
}

func (s *DebateService) resolveModeID(ctx context.Context, raw string, mode models.TemplateMode) (*primitive.ObjectID, error) {
	if raw != "" {
		oid, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			return nil, errors.New("modeId is not a valid id")
		}
		if _, err := s.modes.Get(ctx, oid); err != nil {
			return nil, errors.New("debate mode not found")
		}
		return &oid, nil
	}
	m, err := s.modes.GetBySlug(ctx, mode.ModeSlug())
	if err != nil {
		return nil, nil
	}
	return &m.ID, nil
}

func (s *DebateService) Get(ctx context.Context, id primitive.ObjectID) (*DebateView, error) {
	d, err := s.debates.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, d, nil), nil
}

// List returns a page of debates with drift computed per template-backed row.
func (s *DebateService) List(ctx context.Context, f models.DebateFilter) (*models.ListResult[DebateView], error) {
	items, total, err := s.debates.List(ctx, f)
	if err != nil {
		return nil, err
	}
	cache := make(map[primitive.ObjectID]*models.FormatTemplate)
	views := make([]DebateView, 0, len(items))
	for i := range items {
		views = append(views, *s.view(ctx, &items[i], cache))
	}
	page := f.Page.Normalize()
	return &models.ListResult[DebateView]{Items: views, Total: total, Page: page.Page, PageSize: page.PageSize}, nil
}

// Drift computes the drift report for one debate. Custom-format debates have
// nothing to compare against and return ErrNotFound.
func (s *DebateService) Drift(ctx context.Context, id primitive.ObjectID) (*format.DriftReport, error) {
	d, err := s.debates.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.FormatTemplateID == nil {
		return nil, fmt.Errorf("debate has no format template: %w", models.ErrNotFound)
	}
	tmpl, err := s.templates.Get(ctx, *d.FormatTemplateID)
	if err != nil {
		return nil, fmt.Errorf("format template: %w", err)
	}
	report := format.DetectDrift(d.SegmentStructure, tmpl.SegmentStructure, tmpl.Name)
	return &report, nil
}

func (s *DebateService) view(ctx context.Context, d *models.Debate, cache map[primitive.ObjectID]*models.FormatTemplate) *DebateView {
	v := &DebateView{Debate: *d}
	if d.FormatTemplateID == nil {
		return v
	}
	tmpl, ok := cache[*d.FormatTemplateID]
	if !ok {
		var err error
		tmpl, err = s.templates.Get(ctx, *d.FormatTemplateID)
		if err != nil {
			if !errors.Is(err, models.ErrNotFound) {
				s.log.WithError(err).WithField("debate", d.ID.Hex()).Warn("Failed to load template for drift")
			}
			tmpl = nil
		}
		if cache != nil {
			cache[*d.FormatTemplateID] = tmpl
		}
	}
	if tmpl == nil {
		return v
	}
	report := format.DetectDrift(d.SegmentStructure, tmpl.SegmentStructure, tmpl.Name)
	timing := format.CheckTiming(d.SegmentStructure, tmpl.DurationMinutes, d.FlexibleTiming)
	v.Drift = &report
	v.Timing = &timing
	return v
}

func (s *DebateService) Delete(ctx context.Context, id primitive.ObjectID) error {
	d, err := s.debates.Get(ctx, id)
	if err != nil {
		return err
	}
	if d.Status == models.StatusGenerating {
		return conflictf("debate cannot be deleted while generating")
	}
	return s.debates.Delete(ctx, id)
}

// Publish moves a COMPLETED debate to PUBLISHED.
func (s *DebateService) Publish(ctx context.Context, id primitive.ObjectID) (*models.Debate, error) {
	d, err := s.debates.TransitionStatus(ctx, id, []models.DebateStatus{models.StatusCompleted}, models.StatusPublished)
	if errors.Is(err, models.ErrStatusConflict) {
		return nil, conflictf("only completed debates can be published")
	}
	if err != nil {
		return nil, err
	}
	if d.TranscriptIsPlaceholder {
		s.log.WithField("debate", id.Hex()).Warn("Published debate with placeholder transcript")
	}
	return d, nil
}
