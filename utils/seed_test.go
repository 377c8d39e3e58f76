package utils

import (
	"testing"

	"voxarena/internal/format"
	"voxarena/models"
)

func TestPresetTemplatesAreWellFormed(t *testing.T) {
	seen := map[string]bool{}
	for _, p := range PresetTemplates() {
		if !p.IsPreset {
			t.Errorf("%s: expected IsPreset", p.Name)
		}
		if seen[p.Slug] {
			t.Errorf("Duplicate preset slug %s", p.Slug)
		}
		seen[p.Slug] = true
		if issues := format.ValidateStructure(p.SegmentStructure); len(issues) > 0 {
			t.Errorf("%s: unexpected issues %v", p.Name, issues)
		}
		if p.MaxParticipants < p.MinParticipants {
			t.Errorf("%s: max below min", p.Name)
		}
	}
	if len(seen) != 5 {
		t.Errorf("Expected 5 presets, got %d", len(seen))
	}
}

func TestPanelDiscussionPreset(t *testing.T) {
	for _, p := range PresetTemplates() {
		if p.Slug != "panel-discussion" {
			continue
		}
		if len(p.SegmentStructure) != 6 {
			t.Errorf("Expected 6 segments, got %d", len(p.SegmentStructure))
		}
		if p.DurationMinutes != 40 {
			t.Errorf("Expected 40 minutes, got %d", p.DurationMinutes)
		}
		if got := format.RequiredDuration(p.SegmentStructure); got != 26 {
			t.Errorf("Expected 26 required minutes, got %d", got)
		}
		last := p.SegmentStructure[len(p.SegmentStructure)-1]
		if last.Key != "closing_thoughts" || last.DurationMinutes != 2 {
			t.Errorf("Expected closing_thoughts at 2 minutes last, got %+v", last)
		}
		return
	}
	t.Fatal("panel-discussion preset missing")
}

func TestTwoPersonDialogueConstraints(t *testing.T) {
	for _, p := range PresetTemplates() {
		if p.Slug == "two-person-dialogue" {
			if p.MinParticipants != 2 || p.MaxParticipants != 3 || p.RequiresModerator {
				t.Errorf("Unexpected constraints %d..%d moderator=%v", p.MinParticipants, p.MaxParticipants, p.RequiresModerator)
			}
			return
		}
	}
	t.Fatal("two-person-dialogue preset missing")
}

func TestDefaultModesCoverEnums(t *testing.T) {
	slugs := map[string]bool{}
	for _, m := range DefaultModes() {
		slugs[m.Slug] = m.IsDefault
	}
	for _, mode := range []models.TemplateMode{models.TemplateModeDebate, models.TemplateModePodcast} {
		if !slugs[mode.ModeSlug()] {
			t.Errorf("Expected a default mode for %s", mode)
		}
	}
}

func TestDefaultTaxonomyMatchesPersonaForm(t *testing.T) {
	want := map[string]bool{"political-leaning": true, "debate-style": true, "expertise": true}
	for _, sc := range DefaultTaxonomy() {
		delete(want, sc.Category.Slug)
		if len(sc.Terms) == 0 {
			t.Errorf("%s: expected terms", sc.Category.Slug)
		}
	}
	if len(want) != 0 {
		t.Errorf("Missing categories %v", want)
	}
}
