package services

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"voxarena/models"
)

// The store interfaces below are satisfied by the repositories in package db.

type DebateStore interface {
	Create(ctx context.Context, d *models.Debate) error
	Get(ctx context.Context, id primitive.ObjectID) (*models.Debate, error)
	List(ctx context.Context, f models.DebateFilter) ([]models.Debate, int64, error)
	Update(ctx context.Context, d *models.Debate) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	TransitionStatus(ctx context.Context, id primitive.ObjectID, from []models.DebateStatus, to models.DebateStatus) (*models.Debate, error)
	CompleteGeneration(ctx context.Context, id primitive.ObjectID, transcript []models.TranscriptEntry, placeholder bool) error
	FailGeneration(ctx context.Context, id primitive.ObjectID, reason string) error
	SetTeaser(ctx context.Context, id primitive.ObjectID, teaser string) error
	AddReviewDocument(ctx context.Context, id primitive.ObjectID, doc models.ReviewDocument) error
	CountByPersona(ctx context.Context, personaID primitive.ObjectID) (int64, error)
	CountByTemplate(ctx context.Context, templateID primitive.ObjectID) (int64, error)
}

type TemplateStore interface {
	Create(ctx context.Context, t *models.FormatTemplate) error
	Get(ctx context.Context, id primitive.ObjectID) (*models.FormatTemplate, error)
	GetBySlug(ctx context.Context, slug string) (*models.FormatTemplate, error)
	List(ctx context.Context, f models.TemplateFilter) ([]models.FormatTemplate, int64, error)
	Update(ctx context.Context, t *models.FormatTemplate) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	UpsertBySlug(ctx context.Context, t *models.FormatTemplate) error
}

type PersonaStore interface {
	Create(ctx context.Context, p *models.Persona) error
	Get(ctx context.Context, id primitive.ObjectID) (*models.Persona, error)
	GetMany(ctx context.Context, ids []primitive.ObjectID) ([]models.Persona, error)
	List(ctx context.Context, f models.PersonaFilter) ([]models.Persona, int64, error)
	Update(ctx context.Context, p *models.Persona) error
	SetDescription(ctx context.Context, id primitive.ObjectID, description string) error
	SetAvatar(ctx context.Context, id primitive.ObjectID, url, key string) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type TaxonomyStore interface {
	ListCategories(ctx context.Context) ([]models.TaxonomyCategory, error)
	GetCategory(ctx context.Context, id primitive.ObjectID) (*models.TaxonomyCategory, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*models.TaxonomyCategory, error)
	CreateCategory(ctx context.Context, c *models.TaxonomyCategory) error
	UpdateCategory(ctx context.Context, c *models.TaxonomyCategory) error
	DeleteCategory(ctx context.Context, id primitive.ObjectID) error
	ListTerms(ctx context.Context, categoryID *primitive.ObjectID) ([]models.TaxonomyTerm, error)
	GetTerm(ctx context.Context, id primitive.ObjectID) (*models.TaxonomyTerm, error)
	CreateTerm(ctx context.Context, t *models.TaxonomyTerm) error
	UpdateTerm(ctx context.Context, t *models.TaxonomyTerm) error
	DeleteTerm(ctx context.Context, id primitive.ObjectID) error
	UpsertCategory(ctx context.Context, c *models.TaxonomyCategory) (primitive.ObjectID, error)
	UpsertTerm(ctx context.Context, t *models.TaxonomyTerm) error
}

type ModeStore interface {
	List(ctx context.Context) ([]models.Mode, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.Mode, error)
	GetBySlug(ctx context.Context, slug string) (*models.Mode, error)
	Create(ctx context.Context, m *models.Mode) error
	Update(ctx context.Context, m *models.Mode) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	UpsertBySlug(ctx context.Context, m *models.Mode) error
}

type PromptLogStore interface {
	Insert(ctx context.Context, l *models.AIPromptLog) error
	List(ctx context.Context, f models.PromptLogFilter) ([]models.AIPromptLog, int64, error)
}

// GenerationEvents receives progress notifications for a debate's
// generation run.
type GenerationEvents interface {
	Publish(ctx context.Context, debateID, eventType string, payload any) error
}

type noopEvents struct{}

func (noopEvents) Publish(context.Context, string, string, any) error { return nil }
