package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"voxarena/models"
)

func newTaxonomyFixture() *memTaxonomy {
	leaning := models.TaxonomyCategory{ID: primitive.NewObjectID(), Name: "Political Leaning", Slug: "political-leaning"}
	style := models.TaxonomyCategory{ID: primitive.NewObjectID(), Name: "Speaking Style", Slug: "speaking-style", AllowMultiple: true}
	return &memTaxonomy{
		categories: []models.TaxonomyCategory{leaning, style},
		terms: []models.TaxonomyTerm{
			{ID: primitive.NewObjectID(), CategoryID: leaning.ID, Name: "Progressive", Slug: "progressive", PromptHint: "favours reform"},
			{ID: primitive.NewObjectID(), CategoryID: leaning.ID, Name: "Conservative", Slug: "conservative"},
			{ID: primitive.NewObjectID(), CategoryID: style.ID, Name: "Witty", Slug: "witty"},
			{ID: primitive.NewObjectID(), CategoryID: style.ID, Name: "Formal", Slug: "formal"},
		},
	}
}

type personaFixture struct {
	svc      *PersonaService
	personas *memPersonas
	debates  *memDebates
	storage  *memStorage
	logs     *memPromptLogs
}

func newPersonaFixture(text TextGenerator, images ImageGenerator) *personaFixture {
	fx := &personaFixture{
		personas: newMemPersonas(),
		debates:  newMemDebates(),
		storage:  newMemStorage(),
		logs:     &memPromptLogs{},
	}
	fx.svc = NewPersonaService(fx.personas, fx.debates, newTaxonomyFixture(), newCaller(text, images, fx.logs), fx.storage, nil, "test-image", quietLogger())
	return fx
}

func TestCreatePersonaValidatesTraits(t *testing.T) {
	fx := newPersonaFixture(nil, nil)

	p, err := fx.svc.Create(context.Background(), PersonaInput{
		Name:   "Dr. Mara Quell",
		Traits: map[string][]string{"political-leaning": {"progressive"}, "speaking-style": {"witty", "formal"}, "empty": {}},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if p.Slug != "dr-mara-quell" {
		t.Errorf("Expected slug dr-mara-quell, got %q", p.Slug)
	}
	if _, ok := p.Traits["empty"]; ok {
		t.Error("Expected empty trait selections to be dropped")
	}

	_, err = fx.svc.Create(context.Background(), PersonaInput{
		Name:   "Bad Traits",
		Traits: map[string][]string{"political-leaning": {"progressive", "conservative"}, "mood": {"grumpy"}},
	})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Expected ValidationError, got %v", err)
	}
	if len(verr.Problems) != 2 {
		t.Errorf("Expected 2 problems, got %v", verr.Problems)
	}
}

func TestCreatePersonaDuplicateSlug(t *testing.T) {
	fx := newPersonaFixture(nil, nil)
	if _, err := fx.svc.Create(context.Background(), PersonaInput{Name: "Ada"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	_, err := fx.svc.Create(context.Background(), PersonaInput{Name: "ada"})
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Errorf("Expected ConflictError, got %v", err)
	}
}

func TestDeletePersonaInUse(t *testing.T) {
	fx := newPersonaFixture(nil, nil)
	p, _ := fx.svc.Create(context.Background(), PersonaInput{Name: "Ada"})
	_ = fx.debates.Create(context.Background(), &models.Debate{
		Participants: []models.Participant{{PersonaID: p.ID, Role: models.RoleDebater, SpeakingOrder: 1}},
	})

	var conflict *ConflictError
	if err := fx.svc.Delete(context.Background(), p.ID); !errors.As(err, &conflict) {
		t.Errorf("Expected ConflictError, got %v", err)
	}
	if _, err := fx.personas.Get(context.Background(), p.ID); err != nil {
		t.Error("Expected persona to remain after refused delete")
	}
}

func TestGenerateDescription(t *testing.T) {
	fx := newPersonaFixture(&scriptedText{responses: []string{"A sharp-tongued economist."}}, nil)
	p, _ := fx.svc.Create(context.Background(), PersonaInput{Name: "Ada", Traits: map[string][]string{"political-leaning": {"progressive"}}})

	updated, ok, err := fx.svc.GenerateDescription(context.Background(), p.ID)
	if err != nil || !ok {
		t.Fatalf("Expected a description, got ok=%v err=%v", ok, err)
	}
	if updated.Description != "A sharp-tongued economist." {
		t.Errorf("Unexpected description %q", updated.Description)
	}
	if updated.SystemPrompt == "" {
		t.Error("Expected a system prompt to be derived")
	}
	if len(fx.logs.entries) != 1 || fx.logs.entries[0].Purpose != "description" {
		t.Errorf("Expected one description prompt log, got %+v", fx.logs.entries)
	}
	if !strings.Contains(fx.logs.entries[0].Prompt, "Progressive") {
		t.Error("Expected the prompt to include resolved trait names")
	}
}

func TestGenerateDescriptionFailureLeavesPersona(t *testing.T) {
	fx := newPersonaFixture(&scriptedText{errs: []error{errors.New("quota")}}, nil)
	p, _ := fx.svc.Create(context.Background(), PersonaInput{Name: "Ada", Description: "Original"})

	got, ok, err := fx.svc.GenerateDescription(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if ok {
		t.Error("Expected generated=false")
	}
	if got.Description != "Original" {
		t.Errorf("Expected description unchanged, got %q", got.Description)
	}
	if len(fx.logs.entries) != 1 || fx.logs.entries[0].Success {
		t.Error("Expected the failure to be logged")
	}
}

func TestGenerateAvatarStoresImage(t *testing.T) {
	fx := newPersonaFixture(nil, &fakeImages{})
	p, _ := fx.svc.Create(context.Background(), PersonaInput{Name: "Ada"})

	updated, ok, err := fx.svc.GenerateAvatar(context.Background(), p.ID)
	if err != nil || !ok {
		t.Fatalf("Expected an avatar, got ok=%v err=%v", ok, err)
	}
	if !strings.HasPrefix(updated.AvatarKey, "personas/"+p.ID.Hex()+"/avatar/") {
		t.Errorf("Unexpected avatar key %q", updated.AvatarKey)
	}
	if _, ok := fx.storage.objects[updated.AvatarKey]; !ok {
		t.Error("Expected the image to be uploaded")
	}

	first := updated.AvatarKey
	updated, _, _ = fx.svc.GenerateAvatar(context.Background(), p.ID)
	if _, ok := fx.storage.objects[first]; ok {
		t.Error("Expected the previous avatar to be removed")
	}
	if len(fx.storage.objects) != 1 {
		t.Errorf("Expected 1 stored object, got %d", len(fx.storage.objects))
	}
}

func TestGenerateAvatarFailure(t *testing.T) {
	fx := newPersonaFixture(nil, &fakeImages{err: errors.New("blocked")})
	p, _ := fx.svc.Create(context.Background(), PersonaInput{Name: "Ada"})

	got, ok, err := fx.svc.GenerateAvatar(context.Background(), p.ID)
	if err != nil || ok {
		t.Fatalf("Expected generated=false without error, got ok=%v err=%v", ok, err)
	}
	if got.AvatarURL != "" {
		t.Error("Expected no avatar url")
	}
	if len(fx.storage.objects) != 0 {
		t.Error("Expected nothing uploaded")
	}
}
