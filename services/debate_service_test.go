package services

import (
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"voxarena/internal/wizard"
	"voxarena/models"
)

type debateFixture struct {
	svc       *DebateService
	debates   *memDebates
	templates *memTemplates
	panel     *models.FormatTemplate
	personas  []*models.Persona
}

func newDebateFixture() *debateFixture {
	panel := &models.FormatTemplate{
		Name:              "Panel Discussion",
		Slug:              "panel-discussion",
		Mode:              models.TemplateModeDebate,
		MinParticipants:   3,
		MaxParticipants:   5,
		RequiresModerator: true,
		DurationMinutes:   40,
		IsPreset:          true,
		SegmentStructure: []models.Segment{
			{Key: "introductions", Title: "Introductions", DurationMinutes: 5, Required: true},
			{Key: "discussion", Title: "Discussion", DurationMinutes: 20, Required: true, AllowsReordering: true},
			{Key: "closing_thoughts", Title: "Closing Thoughts", DurationMinutes: 2, Required: true},
		},
	}
	templates := newMemTemplates(panel)

	var personas []*models.Persona
	for _, name := range []string{"Ada", "Ben", "Cleo", "Dev"} {
		personas = append(personas, &models.Persona{Name: name, Slug: Slug(name)})
	}
	personaStore := newMemPersonas(personas...)
	modes := &memModes{modes: []models.Mode{
		{ID: primitive.NewObjectID(), Slug: "debate-mode", IsDefault: true},
		{ID: primitive.NewObjectID(), Slug: "podcast-mode", IsDefault: true},
	}}
	debates := newMemDebates()
	return &debateFixture{
		svc:       NewDebateService(debates, templates, personaStore, modes, quietLogger()),
		debates:   debates,
		templates: templates,
		panel:     panel,
		personas:  personas,
	}
}

func (fx *debateFixture) panelInput(roles ...models.ParticipantRole) models.DebateInput {
	in := models.DebateInput{
		Title:            "Future of work",
		Topic:            "Will AI shorten the work week?",
		Mode:             models.TemplateModeDebate,
		FormatTemplateID: fx.panel.ID.Hex(),
		SegmentStructure: models.CloneSegments(fx.panel.SegmentStructure),
	}
	for i, role := range roles {
		in.Participants = append(in.Participants, models.Participant{PersonaID: fx.personas[i].ID, Role: role, SpeakingOrder: 10 - i})
	}
	return in
}

func TestCreateDebateFromTemplate(t *testing.T) {
	fx := newDebateFixture()
	in := fx.panelInput(models.RoleModerator, models.RoleDebater, models.RoleDebater)

	d, err := fx.svc.CreateDebate(context.Background(), in)
	if err != nil {
		t.Fatalf("CreateDebate failed: %v", err)
	}
	if d.Status != models.StatusDraft {
		t.Errorf("Expected status DRAFT, got %s", d.Status)
	}
	if d.MinParticipants != 3 || d.MaxParticipants != 5 || !d.RequiresModerator {
		t.Errorf("Expected template constraints 3..5 with moderator, got %d..%d moderator=%v", d.MinParticipants, d.MaxParticipants, d.RequiresModerator)
	}
	if d.TotalDurationMinutes != 27 {
		t.Errorf("Expected total duration 27, got %d", d.TotalDurationMinutes)
	}
	for i, p := range d.Participants {
		if p.SpeakingOrder != i+1 {
			t.Errorf("Expected participant %d to have speaking order %d, got %d", i, i+1, p.SpeakingOrder)
		}
	}
	if d.ModeID == nil {
		t.Error("Expected mode id to resolve from the mode enum")
	}

	// the debate owns its own copy of the segments
	d.SegmentStructure[0].Title = "Changed"
	stored, _ := fx.templates.Get(context.Background(), fx.panel.ID)
	if stored.SegmentStructure[0].Title != "Introductions" {
		t.Error("Expected template segments to be unaffected by debate edits")
	}
}

func TestCreateDebateCollectsAllProblems(t *testing.T) {
	fx := newDebateFixture()
	in := fx.panelInput(models.RoleDebater, models.RoleDebater)
	in.Title = " "

	_, err := fx.svc.CreateDebate(context.Background(), in)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Expected ValidationError, got %v", err)
	}
	// title, participant minimum, missing moderator
	if len(verr.Problems) != 3 {
		t.Errorf("Expected 3 problems, got %d: %v", len(verr.Problems), verr.Problems)
	}
}

func TestCreateDebateRejectsUnknownAndDuplicatePersonas(t *testing.T) {
	fx := newDebateFixture()
	in := fx.panelInput(models.RoleModerator, models.RoleDebater, models.RoleDebater)
	in.Participants[1].PersonaID = in.Participants[0].PersonaID
	in.Participants = append(in.Participants, models.Participant{PersonaID: primitive.NewObjectID(), Role: models.RoleDebater})

	_, err := fx.svc.CreateDebate(context.Background(), in)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Expected ValidationError, got %v", err)
	}
	if len(fx.debates.byID) != 0 {
		t.Error("Expected nothing to be stored")
	}
}

func TestCustomConstraintsApplyWithoutTemplate(t *testing.T) {
	fx := newDebateFixture()
	in := models.DebateInput{
		Title:             "Kitchen table",
		Topic:             "Is remote work here to stay?",
		Mode:              models.TemplateModePodcast,
		MinParticipants:   2,
		MaxParticipants:   2,
		RequiresModerator: true,
		SegmentStructure:  []models.Segment{{Title: "Chat", DurationMinutes: 10, Required: true}},
		Participants: []models.Participant{
			{PersonaID: fx.personas[0].ID, Role: models.RoleHost},
			{PersonaID: fx.personas[1].ID, Role: models.RoleExpert},
		},
	}
	_, err := fx.svc.CreateDebate(context.Background(), in)
	if err == nil {
		t.Fatal("Expected the custom moderator requirement to be enforced")
	}

	in.Participants[0].Role = models.RoleModerator
	d, err := fx.svc.CreateDebate(context.Background(), in)
	if err != nil {
		t.Fatalf("CreateDebate failed: %v", err)
	}
	if d.SegmentStructure[0].Key != "chat" {
		t.Errorf("Expected generated key 'chat', got %q", d.SegmentStructure[0].Key)
	}
	if d.FormatTemplateID != nil {
		t.Error("Expected no template id on a custom debate")
	}
}

func TestDebateViewCarriesDrift(t *testing.T) {
	fx := newDebateFixture()
	in := fx.panelInput(models.RoleModerator, models.RoleDebater, models.RoleDebater)
	in.SegmentStructure[2].DurationMinutes = 4
	d, err := fx.svc.CreateDebate(context.Background(), in)
	if err != nil {
		t.Fatalf("CreateDebate failed: %v", err)
	}

	v, err := fx.svc.Get(context.Background(), d.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if v.Drift == nil {
		t.Fatal("Expected a drift report")
	}
	if !v.Drift.IsDrifted || v.Drift.DriftPercentage != 67 {
		t.Errorf("Expected 67%% drifted, got %d%% drifted=%v", v.Drift.DriftPercentage, v.Drift.IsDrifted)
	}

	list, err := fx.svc.List(context.Background(), models.DebateFilter{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list.Items) != 1 || list.Items[0].Drift == nil {
		t.Error("Expected listed debates to carry drift")
	}
}

func TestDriftForCustomDebateIsNotFound(t *testing.T) {
	fx := newDebateFixture()
	d := &models.Debate{Title: "x", Status: models.StatusDraft}
	_ = fx.debates.Create(context.Background(), d)

	_, err := fx.svc.Drift(context.Background(), d.ID)
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestEditAndDeleteRefusedWhileGenerating(t *testing.T) {
	fx := newDebateFixture()
	d, err := fx.svc.CreateDebate(context.Background(), fx.panelInput(models.RoleModerator, models.RoleDebater, models.RoleDebater))
	if err != nil {
		t.Fatalf("CreateDebate failed: %v", err)
	}
	_, _ = fx.debates.TransitionStatus(context.Background(), d.ID, []models.DebateStatus{models.StatusDraft}, models.StatusGenerating)

	title := "New title"
	var conflict *ConflictError
	if _, err := fx.svc.Patch(context.Background(), d.ID, DebatePatch{Title: &title}); !errors.As(err, &conflict) {
		t.Errorf("Expected ConflictError on patch, got %v", err)
	}
	if err := fx.svc.Delete(context.Background(), d.ID); !errors.As(err, &conflict) {
		t.Errorf("Expected ConflictError on delete, got %v", err)
	}
}

// claimedAfterRead starts a generation run right after the first read, so the
// caller holds a stale DRAFT copy.
type claimedAfterRead struct {
	*memDebates
	claimed bool
}

func (c *claimedAfterRead) Get(ctx context.Context, id primitive.ObjectID) (*models.Debate, error) {
	d, err := c.memDebates.Get(ctx, id)
	if err == nil && !c.claimed {
		c.claimed = true
		_, _ = c.memDebates.TransitionStatus(ctx, id, []models.DebateStatus{models.StatusDraft}, models.StatusGenerating)
	}
	return d, err
}

func TestPatchLosesRaceWithGeneration(t *testing.T) {
	fx := newDebateFixture()
	d, err := fx.svc.CreateDebate(context.Background(), fx.panelInput(models.RoleModerator, models.RoleDebater, models.RoleDebater))
	if err != nil {
		t.Fatalf("CreateDebate failed: %v", err)
	}
	fx.svc.debates = &claimedAfterRead{memDebates: fx.debates}

	title := "Edited mid-run"
	var conflict *ConflictError
	if _, err := fx.svc.Patch(context.Background(), d.ID, DebatePatch{Title: &title}); !errors.As(err, &conflict) {
		t.Fatalf("Expected ConflictError, got %v", err)
	}
	stored, _ := fx.debates.Get(context.Background(), d.ID)
	if stored.Title != d.Title {
		t.Errorf("Expected title %q to survive, got %q", d.Title, stored.Title)
	}
	if stored.Status != models.StatusGenerating {
		t.Errorf("Expected status GENERATING, got %s", stored.Status)
	}
}

func TestPatchRevalidatesWholeDebate(t *testing.T) {
	fx := newDebateFixture()
	d, err := fx.svc.CreateDebate(context.Background(), fx.panelInput(models.RoleModerator, models.RoleDebater, models.RoleDebater))
	if err != nil {
		t.Fatalf("CreateDebate failed: %v", err)
	}

	title := "Shorter weeks"
	v, err := fx.svc.Patch(context.Background(), d.ID, DebatePatch{Title: &title})
	if err != nil {
		t.Fatalf("Patch failed: %v", err)
	}
	if v.Title != title || v.Topic != d.Topic {
		t.Errorf("Expected only the title to change, got %q / %q", v.Title, v.Topic)
	}

	participants := v.Participants[1:]
	if _, err := fx.svc.Patch(context.Background(), d.ID, DebatePatch{Participants: &participants}); err == nil {
		t.Error("Expected dropping the moderator to fail validation")
	}
}

func TestPublishRequiresCompleted(t *testing.T) {
	fx := newDebateFixture()
	d := &models.Debate{Title: "x", Status: models.StatusDraft}
	_ = fx.debates.Create(context.Background(), d)

	var conflict *ConflictError
	if _, err := fx.svc.Publish(context.Background(), d.ID); !errors.As(err, &conflict) {
		t.Errorf("Expected ConflictError for a draft, got %v", err)
	}

	_ = fx.debates.CompleteGeneration(context.Background(), d.ID, nil, false)
	published, err := fx.svc.Publish(context.Background(), d.ID)
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if published.Status != models.StatusPublished {
		t.Errorf("Expected status PUBLISHED, got %s", published.Status)
	}
}

func TestWizardGateAgreesWithCreateDebate(t *testing.T) {
	fx := newDebateFixture()
	ada, ben := fx.personas[0].ID, fx.personas[1].ID

	cases := []struct {
		name         string
		min, max     int
		moderator    bool
		participants []models.Participant
		valid        bool
	}{
		{"two debaters", 2, 3, false, []models.Participant{
			{PersonaID: ada, Role: models.RoleDebater},
			{PersonaID: ben, Role: models.RoleDebater},
		}, true},
		{"zero minimum with nobody", 0, 2, false, nil, false},
		{"same persona twice", 2, 3, false, []models.Participant{
			{PersonaID: ada, Role: models.RoleDebater},
			{PersonaID: ada, Role: models.RoleModerator},
		}, false},
		{"missing persona id", 2, 3, false, []models.Participant{
			{PersonaID: ada, Role: models.RoleDebater},
			{Role: models.RoleDebater},
		}, false},
		{"unknown role", 2, 3, false, []models.Participant{
			{PersonaID: ada, Role: models.RoleDebater},
			{PersonaID: ben, Role: "NARRATOR"},
		}, false},
		{"moderator required", 2, 3, true, []models.Participant{
			{PersonaID: ada, Role: models.RoleDebater},
			{PersonaID: ben, Role: models.RoleDebater},
		}, false},
	}

	for _, tc := range cases {
		w := wizard.New("agree")
		w.Data.Segments.MinParticipants = tc.min
		w.Data.Segments.MaxParticipants = tc.max
		w.Data.Segments.RequiresModerator = tc.moderator
		w.Data.Participants = tc.participants
		clientOK, problems := w.Gate(wizard.StepParticipants)

		_, err := fx.svc.CreateDebate(context.Background(), models.DebateInput{
			Title:             "Agreement",
			Topic:             "Do both validators agree?",
			Mode:              models.TemplateModeDebate,
			MinParticipants:   tc.min,
			MaxParticipants:   tc.max,
			RequiresModerator: tc.moderator,
			SegmentStructure:  []models.Segment{{Title: "Talk", DurationMinutes: 5, Required: true}},
			Participants:      tc.participants,
		})
		serverOK := err == nil

		if clientOK != serverOK {
			t.Errorf("%s: wizard valid=%v (%v), server err=%v", tc.name, clientOK, problems, err)
		}
		if clientOK != tc.valid {
			t.Errorf("%s: expected valid=%v, got %v", tc.name, tc.valid, clientOK)
		}
	}
}
