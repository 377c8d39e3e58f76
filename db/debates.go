package db

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"voxarena/models"
)

// DebateRepository stores debates.
type DebateRepository struct {
	collection[models.Debate]
}

func NewDebateRepository(database *mongo.Database) *DebateRepository {
	return &DebateRepository{collection[models.Debate]{database.Collection(DebatesCollection)}}
}

func (r *DebateRepository) Create(ctx context.Context, d *models.Debate) error {
	now := time.Now()
	d.CreatedAt, d.UpdatedAt = now, now
	id, err := r.insert(ctx, d)
	if err != nil {
		return err
	}
	d.ID = id
	return nil
}

func (r *DebateRepository) Get(ctx context.Context, id primitive.ObjectID) (*models.Debate, error) {
	return r.findByID(ctx, id)
}

func (r *DebateRepository) List(ctx context.Context, f models.DebateFilter) ([]models.Debate, int64, error) {
	return r.list(ctx, debateFilter(f), f.Page, bson.D{{Key: "createdAt", Value: -1}})
}

// Update writes the editable fields. Status, transcript and documents have
// their own writers. It returns ErrStatusConflict if the debate started
// generating after the caller read it.
func (r *DebateRepository) Update(ctx context.Context, d *models.Debate) error {
	d.UpdatedAt = time.Now()
	res, err := r.coll.UpdateOne(ctx, editableFilter(d.ID), bson.M{"$set": bson.M{
		"title":                d.Title,
		"topic":                d.Topic,
		"description":          d.Description,
		"category":             d.Category,
		"mode":                 d.Mode,
		"modeId":               d.ModeID,
		"formatTemplateId":     d.FormatTemplateID,
		"segmentStructure":     d.SegmentStructure,
		"flexibleTiming":       d.FlexibleTiming,
		"minParticipants":      d.MinParticipants,
		"maxParticipants":      d.MaxParticipants,
		"requiresModerator":    d.RequiresModerator,
		"totalDurationMinutes": d.TotalDurationMinutes,
		"participants":         d.Participants,
		"updatedAt":            d.UpdatedAt,
	}})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.ErrDuplicate
		}
		return err
	}
	if res.MatchedCount == 0 {
		return r.missOrConflict(ctx, d.ID)
	}
	return nil
}

func (r *DebateRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return r.deleteByID(ctx, id)
}

// TransitionStatus moves a debate to `to` only if its current status is one of
// from, in a single conditional update. It returns the updated document, or
// ErrStatusConflict if the debate exists in another state.
func (r *DebateRepository) TransitionStatus(ctx context.Context, id primitive.ObjectID, from []models.DebateStatus, to models.DebateStatus) (*models.Debate, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var out models.Debate
	err := r.coll.FindOneAndUpdate(ctx, transitionFilter(id, from), transitionUpdate(to, time.Now()), opts).Decode(&out)
	if err == nil {
		return &out, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}
	return nil, r.missOrConflict(ctx, id)
}

// missOrConflict tells a missing debate from one in the wrong state after a
// conditional write matched nothing.
func (r *DebateRepository) missOrConflict(ctx context.Context, id primitive.ObjectID) error {
	n, err := r.coll.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if n == 0 {
		return models.ErrNotFound
	}
	return models.ErrStatusConflict
}

func editableFilter(id primitive.ObjectID) bson.M {
	return bson.M{"_id": id, "status": bson.M{"$ne": models.StatusGenerating}}
}

func transitionFilter(id primitive.ObjectID, from []models.DebateStatus) bson.M {
	return bson.M{"_id": id, "status": bson.M{"$in": from}}
}

// transitionUpdate clears the previous run's error when a new run starts.
func transitionUpdate(to models.DebateStatus, now time.Time) bson.M {
	update := bson.M{"$set": bson.M{"status": to, "updatedAt": now}}
	if to == models.StatusGenerating {
		update["$unset"] = bson.M{"generationError": ""}
	}
	return update
}

// CompleteGeneration stores a transcript and marks the debate COMPLETED.
func (r *DebateRepository) CompleteGeneration(ctx context.Context, id primitive.ObjectID, transcript []models.TranscriptEntry, placeholder bool) error {
	return r.updateByID(ctx, id, bson.M{
		"$set": bson.M{
			"status":                  models.StatusCompleted,
			"transcript":              transcript,
			"transcriptIsPlaceholder": placeholder,
			"updatedAt":               time.Now(),
		},
		"$unset": bson.M{"generationError": ""},
	})
}

// FailGeneration marks the debate FAILED with a reason.
func (r *DebateRepository) FailGeneration(ctx context.Context, id primitive.ObjectID, reason string) error {
	return r.updateByID(ctx, id, bson.M{"$set": bson.M{
		"status":          models.StatusFailed,
		"generationError": reason,
		"updatedAt":       time.Now(),
	}})
}

func (r *DebateRepository) SetTeaser(ctx context.Context, id primitive.ObjectID, teaser string) error {
	return r.updateByID(ctx, id, bson.M{"$set": bson.M{"teaser": teaser, "updatedAt": time.Now()}})
}

func (r *DebateRepository) AddReviewDocument(ctx context.Context, id primitive.ObjectID, doc models.ReviewDocument) error {
	return r.updateByID(ctx, id, bson.M{
		"$push": bson.M{"reviewDocuments": doc},
		"$set":  bson.M{"updatedAt": time.Now()},
	})
}

// CountByPersona counts debates any participant of which is the persona.
func (r *DebateRepository) CountByPersona(ctx context.Context, personaID primitive.ObjectID) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{"participants.personaId": personaID})
}

// CountByTemplate counts debates created from the template.
func (r *DebateRepository) CountByTemplate(ctx context.Context, templateID primitive.ObjectID) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{"formatTemplateId": templateID})
}
