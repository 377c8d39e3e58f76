package db

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"voxarena/models"
)

type TemplateRepository struct {
	collection[models.FormatTemplate]
}

func NewTemplateRepository(database *mongo.Database) *TemplateRepository {
	return &TemplateRepository{collection[models.FormatTemplate]{database.Collection(FormatTemplatesCollection)}}
}

func (r *TemplateRepository) Create(ctx context.Context, t *models.FormatTemplate) error {
	now := time.Now()
	t.CreatedAt, t.UpdatedAt = now, now
	id, err := r.insert(ctx, t)
	if err != nil {
		return err
	}
	t.ID = id
	return nil
}

func (r *TemplateRepository) Get(ctx context.Context, id primitive.ObjectID) (*models.FormatTemplate, error) {
	return r.findByID(ctx, id)
}

func (r *TemplateRepository) GetBySlug(ctx context.Context, slug string) (*models.FormatTemplate, error) {
	return r.findOne(ctx, bson.M{"slug": slug})
}

func (r *TemplateRepository) List(ctx context.Context, f models.TemplateFilter) ([]models.FormatTemplate, int64, error) {
	return r.list(ctx, templateFilter(f), f.Page, bson.D{{Key: "isPreset", Value: -1}, {Key: "name", Value: 1}})
}

func (r *TemplateRepository) Update(ctx context.Context, t *models.FormatTemplate) error {
	t.UpdatedAt = time.Now()
	return r.updateByID(ctx, t.ID, bson.M{"$set": bson.M{
		"name":              t.Name,
		"slug":              t.Slug,
		"description":       t.Description,
		"category":          t.Category,
		"mode":              t.Mode,
		"minParticipants":   t.MinParticipants,
		"maxParticipants":   t.MaxParticipants,
		"requiresModerator": t.RequiresModerator,
		"durationMinutes":   t.DurationMinutes,
		"flexibleTiming":    t.FlexibleTiming,
		"segmentStructure":  t.SegmentStructure,
		"updatedAt":         t.UpdatedAt,
	}})
}

func (r *TemplateRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return r.deleteByID(ctx, id)
}

// UpsertBySlug inserts the template or overwrites the one with the same slug.
// Used for seeding presets.
func (r *TemplateRepository) UpsertBySlug(ctx context.Context, t *models.FormatTemplate) error {
	now := time.Now()
	t.UpdatedAt = now
	update := bson.M{
		"$set": bson.M{
			"name":              t.Name,
			"description":       t.Description,
			"category":          t.Category,
			"mode":              t.Mode,
			"minParticipants":   t.MinParticipants,
			"maxParticipants":   t.MaxParticipants,
			"requiresModerator": t.RequiresModerator,
			"durationMinutes":   t.DurationMinutes,
			"flexibleTiming":    t.FlexibleTiming,
			"segmentStructure":  t.SegmentStructure,
			"isPreset":          t.IsPreset,
			"updatedAt":         now,
		},
		"$setOnInsert": bson.M{"createdAt": now},
	}
	_, err := r.coll.UpdateOne(ctx, bson.M{"slug": t.Slug}, update, options.Update().SetUpsert(true))
	return err
}
