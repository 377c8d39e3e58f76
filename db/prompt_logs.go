package db

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"voxarena/models"
)

type PromptLogRepository struct {
	collection[models.AIPromptLog]
}

func NewPromptLogRepository(database *mongo.Database) *PromptLogRepository {
	return &PromptLogRepository{collection[models.AIPromptLog]{database.Collection(PromptLogsCollection)}}
}

func (r *PromptLogRepository) Insert(ctx context.Context, l *models.AIPromptLog) error {
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now()
	}
	id, err := r.insert(ctx, l)
	if err != nil {
		return err
	}
	l.ID = id
	return nil
}

func (r *PromptLogRepository) List(ctx context.Context, f models.PromptLogFilter) ([]models.AIPromptLog, int64, error) {
	return r.list(ctx, promptLogFilter(f), f.Page, bson.D{{Key: "createdAt", Value: -1}})
}
