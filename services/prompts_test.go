package services

import (
	"strings"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"voxarena/models"
)

func castFixture() (*models.Debate, []CastMember) {
	ada := models.Persona{ID: primitive.NewObjectID(), Name: "Ada"}
	ben := models.Persona{ID: primitive.NewObjectID(), Name: "Ben"}
	d := &models.Debate{
		Title: "Tabs vs spaces",
		Topic: "Which indentation wins?",
		SegmentStructure: []models.Segment{
			{Key: "opening", Title: "Opening", DurationMinutes: 3},
			{Key: "rebuttal", Title: "Rebuttal", DurationMinutes: 4},
		},
		Participants: []models.Participant{
			{PersonaID: ben.ID, Role: models.RoleDebater, SpeakingOrder: 2},
			{PersonaID: ada.ID, Role: models.RoleModerator, SpeakingOrder: 1},
		},
	}
	cast, _ := Cast(d.Participants, []models.Persona{ada, ben})
	return d, cast
}

func TestCastOrdersBySpeakingOrder(t *testing.T) {
	_, cast := castFixture()
	if len(cast) != 2 {
		t.Fatalf("Expected 2 cast members, got %d", len(cast))
	}
	if cast[0].Persona.Name != "Ada" {
		t.Errorf("Expected Ada to speak first, got %s", cast[0].Persona.Name)
	}
}

func TestParseTranscript(t *testing.T) {
	d, cast := castFixture()
	text := "```json\n" + `{"entries":[
		{"segmentKey":"opening","speaker":"ada","text":" Welcome. "},
		{"segmentKey":"rebuttal","speaker":"Ben","text":""},
		{"segmentKey":"rebuttal","speaker":"Ben","text":"Spaces."}
	]}` + "\n```"

	entries, err := ParseTranscript(text, d, cast)
	if err != nil {
		t.Fatalf("ParseTranscript failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected blank entries to be skipped, got %d", len(entries))
	}
	if entries[0].Speaker != "Ada" || entries[0].Text != "Welcome." || entries[0].Role != models.RoleModerator {
		t.Errorf("Unexpected first entry %+v", entries[0])
	}
}

func TestParseTranscriptRejectsUnknowns(t *testing.T) {
	d, cast := castFixture()
	for _, text := range []string{
		`{"entries":[{"segmentKey":"lightning","speaker":"Ada","text":"Hi"}]}`,
		`{"entries":[{"segmentKey":"opening","speaker":"Zed","text":"Hi"}]}`,
		`{"entries":[]}`,
		`no json here`,
	} {
		if _, err := ParseTranscript(text, d, cast); err == nil {
			t.Errorf("Expected %q to be rejected", text)
		}
	}
}

func TestBuildTranscriptPromptUsesModePrompt(t *testing.T) {
	d, cast := castFixture()
	mode := &models.Mode{SystemPrompt: "You moderate a friendly podcast."}
	sys, user := BuildTranscriptPrompt(d, mode, cast, []string{"brief.pdf:\nTabs save bytes."})

	if !strings.HasPrefix(sys, "You moderate a friendly podcast.") {
		t.Errorf("Expected the mode prompt first, got %q", sys)
	}
	for _, want := range []string{"[opening] Opening (3 min)", "1. Ada (MODERATOR)", "Tabs save bytes."} {
		if !strings.Contains(user, want) {
			t.Errorf("Expected prompt to contain %q", want)
		}
	}
}

func TestPlaceholderTranscript(t *testing.T) {
	d, cast := castFixture()
	entries := PlaceholderTranscript(d, cast)
	if len(entries) != 4 {
		t.Fatalf("Expected 4 entries, got %d", len(entries))
	}
	if entries[0].SegmentKey != "opening" || entries[3].SegmentKey != "rebuttal" {
		t.Error("Expected entries in segment order")
	}
	if !strings.HasPrefix(entries[0].Text, "[Placeholder]") {
		t.Errorf("Expected placeholder marker, got %q", entries[0].Text)
	}
}

func TestResolveTraits(t *testing.T) {
	tax := newTaxonomyFixture()
	lines := ResolveTraits(map[string][]string{
		"speaking-style":    {"witty"},
		"political-leaning": {"progressive"},
		"unknown":           {"x"},
	}, tax.categories, tax.terms)
	if len(lines) != 2 {
		t.Fatalf("Expected 2 trait lines, got %d", len(lines))
	}
	if lines[0].Category != "Political Leaning" {
		t.Errorf("Expected categories in taxonomy order, got %s first", lines[0].Category)
	}
}
