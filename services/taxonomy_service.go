package services

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"voxarena/models"
)

type CategoryInput struct {
	Name          string `json:"name" binding:"required"`
	Slug          string `json:"slug"`
	Description   string `json:"description"`
	AllowMultiple bool   `json:"allowMultiple"`
	SortOrder     int    `json:"sortOrder"`
}

type TermInput struct {
	CategoryID  string `json:"categoryId" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	PromptHint  string `json:"promptHint"`
	SortOrder   int    `json:"sortOrder"`
}

// CategoryWithTerms is a category with its terms attached.
type CategoryWithTerms struct {
	models.TaxonomyCategory
	Terms []models.TaxonomyTerm `json:"terms"`
}

type TaxonomyService struct {
	store TaxonomyStore
}

func NewTaxonomyService(store TaxonomyStore) *TaxonomyService {
	return &TaxonomyService{store: store}
}

func (s *TaxonomyService) ListCategories(ctx context.Context, withTerms bool) ([]CategoryWithTerms, error) {
	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	byCategory := map[primitive.ObjectID][]models.TaxonomyTerm{}
	if withTerms {
		terms, err := s.store.ListTerms(ctx, nil)
		if err != nil {
			return nil, err
		}
		for _, t := range terms {
			byCategory[t.CategoryID] = append(byCategory[t.CategoryID], t)
		}
	}
	out := make([]CategoryWithTerms, 0, len(categories))
	for _, c := range categories {
		terms := byCategory[c.ID]
		if terms == nil {
			terms = []models.TaxonomyTerm{}
		}
		out = append(out, CategoryWithTerms{TaxonomyCategory: c, Terms: terms})
	}
	return out, nil
}

func (s *TaxonomyService) GetCategory(ctx context.Context, id primitive.ObjectID) (*CategoryWithTerms, error) {
	c, err := s.store.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	terms, err := s.store.ListTerms(ctx, &id)
	if err != nil {
		return nil, err
	}
	return &CategoryWithTerms{TaxonomyCategory: *c, Terms: terms}, nil
}

func categoryFromInput(c *models.TaxonomyCategory, in CategoryInput) error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return newValidationError("name is required")
	}
	c.Name = name
	c.Slug = in.Slug
	if c.Slug == "" {
		c.Slug = Slug(name)
	}
	c.Description = in.Description
	c.AllowMultiple = in.AllowMultiple
	c.SortOrder = in.SortOrder
	return nil
}

func (s *TaxonomyService) CreateCategory(ctx context.Context, in CategoryInput) (*models.TaxonomyCategory, error) {
	c := &models.TaxonomyCategory{}
	if err := categoryFromInput(c, in); err != nil {
		return nil, err
	}
	if err := s.store.CreateCategory(ctx, c); err != nil {
		return nil, duplicateAsConflict(err, "taxonomy category", c.Slug)
	}
	return c, nil
}

func (s *TaxonomyService) UpdateCategory(ctx context.Context, id primitive.ObjectID, in CategoryInput) (*models.TaxonomyCategory, error) {
	c, err := s.store.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := categoryFromInput(c, in); err != nil {
		return nil, err
	}
	if err := s.store.UpdateCategory(ctx, c); err != nil {
		return nil, duplicateAsConflict(err, "taxonomy category", c.Slug)
	}
	return c, nil
}

// DeleteCategory removes the category and its terms.
func (s *TaxonomyService) DeleteCategory(ctx context.Context, id primitive.ObjectID) error {
	return s.store.DeleteCategory(ctx, id)
}

func (s *TaxonomyService) ListTerms(ctx context.Context, categoryID *primitive.ObjectID) ([]models.TaxonomyTerm, error) {
	return s.store.ListTerms(ctx, categoryID)
}

func (s *TaxonomyService) GetTerm(ctx context.Context, id primitive.ObjectID) (*models.TaxonomyTerm, error) {
	return s.store.GetTerm(ctx, id)
}

func (s *TaxonomyService) termFromInput(ctx context.Context, t *models.TaxonomyTerm, in TermInput) error {
	var problems []string
	name := strings.TrimSpace(in.Name)
	if name == "" {
		problems = append(problems, "name is required")
	}
	categoryID, err := primitive.ObjectIDFromHex(in.CategoryID)
	if err != nil {
		problems = append(problems, "categoryId is not a valid id")
	} else if _, err := s.store.GetCategory(ctx, categoryID); errors.Is(err, models.ErrNotFound) {
		problems = append(problems, "taxonomy category not found")
	} else if err != nil {
		return err
	}
	if len(problems) > 0 {
		return newValidationError(problems...)
	}
	t.CategoryID = categoryID
	t.Name = name
	t.Slug = in.Slug
	if t.Slug == "" {
		t.Slug = Slug(name)
	}
	t.Description = in.Description
	t.PromptHint = in.PromptHint
	t.SortOrder = in.SortOrder
	return nil
}

func (s *TaxonomyService) CreateTerm(ctx context.Context, in TermInput) (*models.TaxonomyTerm, error) {
	t := &models.TaxonomyTerm{}
	if err := s.termFromInput(ctx, t, in); err != nil {
		return nil, err
	}
	if err := s.store.CreateTerm(ctx, t); err != nil {
		return nil, duplicateAsConflict(err, "taxonomy term", t.Slug)
	}
	return t, nil
}

func (s *TaxonomyService) UpdateTerm(ctx context.Context, id primitive.ObjectID, in TermInput) (*models.TaxonomyTerm, error) {
	t, err := s.store.GetTerm(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.termFromInput(ctx, t, in); err != nil {
		return nil, err
	}
	if err := s.store.UpdateTerm(ctx, t); err != nil {
		return nil, duplicateAsConflict(err, "taxonomy term", t.Slug)
	}
	return t, nil
}

func (s *TaxonomyService) DeleteTerm(ctx context.Context, id primitive.ObjectID) error {
	return s.store.DeleteTerm(ctx, id)
}

func duplicateAsConflict(err error, what, slug string) error {
	if errors.Is(err, models.ErrDuplicate) {
		return conflictf("a %s with slug %q already exists", what, slug)
	}
	return err
}
