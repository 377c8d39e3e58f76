package db

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"voxarena/models"
)

type AdminRepository struct {
	collection[models.Admin]
}

func NewAdminRepository(database *mongo.Database) *AdminRepository {
	return &AdminRepository{collection[models.Admin]{database.Collection(AdminsCollection)}}
}

func (r *AdminRepository) GetByEmail(ctx context.Context, email string) (*models.Admin, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *AdminRepository) Create(ctx context.Context, a *models.Admin) error {
	now := time.Now()
	a.CreatedAt, a.UpdatedAt = now, now
	id, err := r.insert(ctx, a)
	if err != nil {
		return err
	}
	a.ID = id
	return nil
}
