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

// TemplateInput is the create/update payload for a format template.
type TemplateInput struct {
	Name              string              `json:"name" binding:"required"`
	Slug              string              `json:"slug"`
	Description       string              `json:"description"`
	Category          string              `json:"category"`
	Mode              models.TemplateMode `json:"mode" binding:"required"`
	MinParticipants   int                 `json:"minParticipants" binding:"min=1"`
	MaxParticipants   int                 `json:"maxParticipants" binding:"min=1"`
	RequiresModerator bool                `json:"requiresModerator"`
	DurationMinutes   int                 `json:"durationMinutes" binding:"min=0"`
	FlexibleTiming    bool                `json:"flexibleTiming"`
	SegmentStructure  []models.Segment    `json:"segmentStructure"`
}

type TemplateService struct {
	templates TemplateStore
	log       logrus.FieldLogger
}

func NewTemplateService(templates TemplateStore, log logrus.FieldLogger) *TemplateService {
	return &TemplateService{templates: templates, log: log}
}

// Slug turns a name into a URL slug, e.g. "Panel Discussion" -> "panel-discussion".
func Slug(name string) string {
	return strings.ReplaceAll(format.Slugify(name), "_", "-")
}

func (s *TemplateService) validate(in *TemplateInput) error {
	var problems []string
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		problems = append(problems, "name is required")
	}
	if in.Slug == "" {
		in.Slug = Slug(in.Name)
	}
	if !in.Mode.Valid() {
		problems = append(problems, fmt.Sprintf("unknown mode %q", in.Mode))
	}
	if in.MinParticipants < 1 {
		problems = append(problems, "minParticipants must be at least 1")
	}
	if in.MaxParticipants < in.MinParticipants {
		problems = append(problems, "maxParticipants must not be below minParticipants")
	}
	if in.DurationMinutes < 0 {
		problems = append(problems, "durationMinutes must not be negative")
	}
	in.SegmentStructure = format.EnsureKeys(in.SegmentStructure)
	for _, issue := range format.ValidateStructure(in.SegmentStructure) {
		problems = append(problems, issue.String())
	}
	if in.DurationMinutes == 0 {
		in.DurationMinutes = format.TotalDuration(in.SegmentStructure)
	}
	if len(problems) > 0 {
		return newValidationError(problems...)
	}
	return nil
}

func (s *TemplateService) Create(ctx context.Context, in TemplateInput) (*models.FormatTemplate, error) {
	if err := s.validate(&in); err != nil {
		return nil, err
	}
	t := &models.FormatTemplate{}
	copyTemplateInput(t, in)
	if err := s.templates.Create(ctx, t); err != nil {
		if errors.Is(err, models.ErrDuplicate) {
			return nil, conflictf("a template with slug %q already exists", t.Slug)
		}
		return nil, err
	}
	return t, nil
}

// Update edits a custom template. Presets are fixed reference points and
// cannot be changed.
func (s *TemplateService) Update(ctx context.Context, id primitive.ObjectID, in TemplateInput) (*models.FormatTemplate, error) {
	t, err := s.templates.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.IsPreset {
		return nil, conflictf("preset templates cannot be modified")
	}
	if err := s.validate(&in); err != nil {
		return nil, err
	}
	copyTemplateInput(t, in)
	if err := s.templates.Update(ctx, t); err != nil {
		if errors.Is(err, models.ErrDuplicate) {
			return nil, conflictf("a template with slug %q already exists", t.Slug)
		}
		return nil, err
	}
	return t, nil
}

func copyTemplateInput(t *models.FormatTemplate, in TemplateInput) {
	t.Name = in.Name
	t.Slug = in.Slug
	t.Description = in.Description
	t.Category = in.Category
	t.Mode = in.Mode
	t.MinParticipants = in.MinParticipants
	t.MaxParticipants = in.MaxParticipants
	t.RequiresModerator = in.RequiresModerator
	t.DurationMinutes = in.DurationMinutes
	t.FlexibleTiming = in.FlexibleTiming
	t.SegmentStructure = models.CloneSegments(in.SegmentStructure)
}

func (s *TemplateService) Get(ctx context.Context, id primitive.ObjectID) (*models.FormatTemplate, error) {
	return s.templates.Get(ctx, id)
}

// GetTemplate lets the wizard read templates through the service.
func (s *TemplateService) GetTemplate(ctx context.Context, id primitive.ObjectID) (*models.FormatTemplate, error) {
	return s.templates.Get(ctx, id)
}

func (s *TemplateService) List(ctx context.Context, f models.TemplateFilter) (*models.ListResult[models.FormatTemplate], error) {
	items, total, err := s.templates.List(ctx, f)
	if err != nil {
		return nil, err
	}
	page := f.Page.Normalize()
	return &models.ListResult[models.FormatTemplate]{Items: items, Total: total, Page: page.Page, PageSize: page.PageSize}, nil
}

func (s *TemplateService) Delete(ctx context.Context, id primitive.ObjectID) error {
	t, err := s.templates.Get(ctx, id)
	if err != nil {
		return err
	}
	if t.IsPreset {
		return conflictf("preset template %q cannot be deleted", t.Name)
	}
	if err := s.templates.Delete(ctx, id); err != nil {
		return err
	}
	s.log.WithField("template", id.Hex()).Info("Format template deleted")
	return nil
}
