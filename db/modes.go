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

type ModeRepository struct {
	collection[models.Mode]
}

func NewModeRepository(database *mongo.Database) *ModeRepository {
	return &ModeRepository{collection[models.Mode]{database.Collection(ModesCollection)}}
}

func (r *ModeRepository) List(ctx context.Context) ([]models.Mode, error) {
	return r.findAll(ctx, bson.M{}, bson.D{{Key: "isDefault", Value: -1}, {Key: "name", Value: 1}})
}

func (r *ModeRepository) Get(ctx context.Context, id primitive.ObjectID) (*models.Mode, error) {
	return r.findByID(ctx, id)
}

func (r *ModeRepository) GetBySlug(ctx context.Context, slug string) (*models.Mode, error) {
	return r.findOne(ctx, bson.M{"slug": slug})
}

func (r *ModeRepository) Create(ctx context.Context, m *models.Mode) error {
	now := time.Now()
	m.CreatedAt, m.UpdatedAt = now, now
	id, err := r.insert(ctx, m)
	if err != nil {
		return err
	}
	m.ID = id
	return nil
}

func (r *ModeRepository) Update(ctx context.Context, m *models.Mode) error {
	m.UpdatedAt = time.Now()
	return r.updateByID(ctx, m.ID, bson.M{"$set": bson.M{
		"name":         m.Name,
		"slug":         m.Slug,
		"description":  m.Description,
		"systemPrompt": m.SystemPrompt,
		"isDefault":    m.IsDefault,
		"updatedAt":    m.UpdatedAt,
	}})
}

func (r *ModeRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return r.deleteByID(ctx, id)
}

// UpsertBySlug seeds a built-in mode without overwriting an edited prompt.
func (r *ModeRepository) UpsertBySlug(ctx context.Context, m *models.Mode) error {
	now := time.Now()
	_, err := r.coll.UpdateOne(ctx, bson.M{"slug": m.Slug}, bson.M{
		"$set": bson.M{"isDefault": m.IsDefault, "updatedAt": now},
		"$setOnInsert": bson.M{
			"name":         m.Name,
			"description":  m.Description,
			"systemPrompt": m.SystemPrompt,
			"createdAt":    now,
		},
	}, options.Update().SetUpsert(true))
	return err
}
