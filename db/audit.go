package db

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"voxarena/models"
)

type AuditRepository struct {
	collection[models.AdminActionLog]
}

func NewAuditRepository(database *mongo.Database) *AuditRepository {
	return &AuditRepository{collection[models.AdminActionLog]{database.Collection(AdminActionLogsCollection)}}
}

func (r *AuditRepository) Insert(ctx context.Context, l *models.AdminActionLog) error {
	if l.Timestamp.IsZero() {
		l.Timestamp = time.Now()
	}
	id, err := r.insert(ctx, l)
	if err != nil {
		return err
	}
	l.ID = id
	return nil
}
