package db

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"voxarena/models"
)

func TestTransitionFilter(t *testing.T) {
	id := primitive.NewObjectID()
	from := []models.DebateStatus{models.StatusDraft, models.StatusFailed}
	f := transitionFilter(id, from)

	if f["_id"] != id {
		t.Errorf("Expected _id %s, got %v", id.Hex(), f["_id"])
	}
	status, ok := f["status"].(bson.M)
	if !ok {
		t.Fatalf("Expected a status clause, got %v", f["status"])
	}
	in, ok := status["$in"].([]models.DebateStatus)
	if !ok || len(in) != 2 || in[0] != models.StatusDraft || in[1] != models.StatusFailed {
		t.Errorf("Expected $in over DRAFT and FAILED, got %v", status["$in"])
	}
}

func TestTransitionUpdate(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	start := transitionUpdate(models.StatusGenerating, now)
	set, ok := start["$set"].(bson.M)
	if !ok {
		t.Fatalf("Expected a $set clause, got %v", start)
	}
	if set["status"] != models.StatusGenerating {
		t.Errorf("Expected status GENERATING, got %v", set["status"])
	}
	if set["updatedAt"] != now {
		t.Errorf("Expected updatedAt %v, got %v", now, set["updatedAt"])
	}
	unset, ok := start["$unset"].(bson.M)
	if !ok {
		t.Fatal("Expected a new run to clear generationError")
	}
	if _, ok := unset["generationError"]; !ok {
		t.Errorf("Expected generationError in $unset, got %v", unset)
	}

	publish := transitionUpdate(models.StatusPublished, now)
	if _, ok := publish["$unset"]; ok {
		t.Errorf("Expected publishing to keep other fields, got %v", publish)
	}
}

func TestEditableFilterExcludesGenerating(t *testing.T) {
	id := primitive.NewObjectID()
	f := editableFilter(id)

	if f["_id"] != id {
		t.Errorf("Expected _id %s, got %v", id.Hex(), f["_id"])
	}
	status, ok := f["status"].(bson.M)
	if !ok || status["$ne"] != models.StatusGenerating {
		t.Errorf("Expected status $ne GENERATING, got %v", f["status"])
	}
}
