package db

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"voxarena/models"
)

type PersonaRepository struct {
	collection[models.Persona]
}

func NewPersonaRepository(database *mongo.Database) *PersonaRepository {
	return &PersonaRepository{collection[models.Persona]{database.Collection(PersonasCollection)}}
}

func (r *PersonaRepository) Create(ctx context.Context, p *models.Persona) error {
	now := time.Now()
	p.CreatedAt, p.UpdatedAt = now, now
	id, err := r.insert(ctx, p)
	if err != nil {
		return err
	}
	p.ID = id
	return nil
}

func (r *PersonaRepository) Get(ctx context.Context, id primitive.ObjectID) (*models.Persona, error) {
	return r.findByID(ctx, id)
}

// GetMany returns the personas with the given ids in no particular order.
// Missing ids are simply absent from the result.
func (r *PersonaRepository) GetMany(ctx context.Context, ids []primitive.ObjectID) ([]models.Persona, error) {
	return r.findAll(ctx, bson.M{"_id": bson.M{"$in": ids}}, nil)
}

func (r *PersonaRepository) List(ctx context.Context, f models.PersonaFilter) ([]models.Persona, int64, error) {
	return r.list(ctx, personaFilter(f), f.Page, bson.D{{Key: "name", Value: 1}})
}

func (r *PersonaRepository) Update(ctx context.Context, p *models.Persona) error {
	p.UpdatedAt = time.Now()
	return r.updateByID(ctx, p.ID, bson.M{"$set": bson.M{
		"name":         p.Name,
		"slug":         p.Slug,
		"description":  p.Description,
		"teaser":       p.Teaser,
		"voiceId":      p.VoiceID,
		"traits":       p.Traits,
		"systemPrompt": p.SystemPrompt,
		"updatedAt":    p.UpdatedAt,
	}})
}

func (r *PersonaRepository) SetDescription(ctx context.Context, id primitive.ObjectID, description string) error {
	return r.updateByID(ctx, id, bson.M{"$set": bson.M{"description": description, "updatedAt": time.Now()}})
}

func (r *PersonaRepository) SetAvatar(ctx context.Context, id primitive.ObjectID, url, key string) error {
	return r.updateByID(ctx, id, bson.M{"$set": bson.M{"avatarUrl": url, "avatarKey": key, "updatedAt": time.Now()}})
}

func (r *PersonaRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return r.deleteByID(ctx, id)
}
