package services

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"voxarena/models"
)

type ModeInput struct {
	Name         string `json:"name" binding:"required"`
	Slug         string `json:"slug"`
	Description  string `json:"description"`
	SystemPrompt string `json:"systemPrompt"`
}

type ModeService struct {
	modes ModeStore
}

func NewModeService(modes ModeStore) *ModeService {
	return &ModeService{modes: modes}
}

func (s *ModeService) List(ctx context.Context) ([]models.Mode, error) {
	return s.modes.List(ctx)
}

func (s *ModeService) Get(ctx context.Context, id primitive.ObjectID) (*models.Mode, error) {
	return s.modes.Get(ctx, id)
}

func (s *ModeService) GetBySlug(ctx context.Context, slug string) (*models.Mode, error) {
	return s.modes.GetBySlug(ctx, slug)
}

// GetModeBySlug lets the wizard resolve modes through the service.
func (s *ModeService) GetModeBySlug(ctx context.Context, slug string) (*models.Mode, error) {
	return s.modes.GetBySlug(ctx, slug)
}

func modeFromInput(m *models.Mode, in ModeInput) error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return newValidationError("name is required")
	}
	m.Name = name
	m.Slug = in.Slug
	if m.Slug == "" {
		m.Slug = Slug(name)
	}
	m.Description = in.Description
	m.SystemPrompt = in.SystemPrompt
	return nil
}

func (s *ModeService) Create(ctx context.Context, in ModeInput) (*models.Mode, error) {
	m := &models.Mode{}
	if err := modeFromInput(m, in); err != nil {
		return nil, err
	}
	if err := s.modes.Create(ctx, m); err != nil {
		return nil, duplicateAsConflict(err, "debate mode", m.Slug)
	}
	return m, nil
}

// Update edits a mode. Built-in modes keep their slug because templates
// resolve to them by slug.
func (s *ModeService) Update(ctx context.Context, id primitive.ObjectID, in ModeInput) (*models.Mode, error) {
	m, err := s.modes.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	slug := m.Slug
	if err := modeFromInput(m, in); err != nil {
		return nil, err
	}
	if m.IsDefault && m.Slug != slug {
		return nil, conflictf("the slug of built-in mode %q cannot change", slug)
	}
	if err := s.modes.Update(ctx, m); err != nil {
		return nil, duplicateAsConflict(err, "debate mode", m.Slug)
	}
	return m, nil
}

func (s *ModeService) Delete(ctx context.Context, id primitive.ObjectID) error {
	m, err := s.modes.Get(ctx, id)
	if err != nil {
		return err
	}
	if m.IsDefault {
		return conflictf("built-in mode %q cannot be deleted", m.Name)
	}
	return s.modes.Delete(ctx, id)
}
