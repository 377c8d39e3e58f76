package format

import (
	"testing"

	"voxarena/models"
)

func panelDiscussion() []models.Segment {
	return []models.Segment{
		{Key: "introduction", Title: "Introduction", Description: "Moderator introduces the panel", DurationMinutes: 3, Required: true},
		{Key: "opening_remarks", Title: "Opening Remarks", Description: "Each panelist states a position", DurationMinutes: 6, Required: true, AllowsReordering: true},
		{Key: "moderated_discussion", Title: "Moderated Discussion", Description: "Moderator-led questions", DurationMinutes: 15, Required: true, AllowsReordering: true},
		{Key: "cross_talk", Title: "Cross Talk", Description: "Panelists respond to each other", DurationMinutes: 8, AllowsReordering: true},
		{Key: "audience_qa", Title: "Audience Q&A", Description: "Questions from the audience", DurationMinutes: 6, AllowsReordering: true},
		{Key: "closing_thoughts", Title: "Closing Thoughts", Description: "Final words", DurationMinutes: 2, Required: true},
	}
}

func TestDetectDriftIdentical(t *testing.T) {
	tmpl := panelDiscussion()
	report := DetectDrift(models.CloneSegments(tmpl), tmpl, "Panel Discussion")

	if report.IsDrifted {
		t.Errorf("Expected identical structures not to be drifted")
	}
	if report.DriftPercentage != 100 {
		t.Errorf("Expected 100%%, got %d", report.DriftPercentage)
	}
	if len(report.Differences) != 0 {
		t.Errorf("Expected no differences, got %d", len(report.Differences))
	}
	if report.TemplateName != "Panel Discussion" {
		t.Errorf("Expected template name to be carried, got %q", report.TemplateName)
	}
}

func TestDetectDriftSingleDurationChange(t *testing.T) {
	for n := 1; n <= 6; n++ {
		tmpl := panelDiscussion()[:n]
		current := models.CloneSegments(tmpl)
		current[n-1].DurationMinutes += 5

		report := DetectDrift(current, tmpl, "t")
		want := int(float64(n-1)/float64(n)*100 + 0.5)
		if report.DriftPercentage != want {
			t.Errorf("n=%d: expected %d%%, got %d", n, want, report.DriftPercentage)
		}
		if !report.IsDrifted {
			t.Errorf("n=%d: expected drifted", n)
		}
		if len(report.Differences) != 1 {
			t.Fatalf("n=%d: expected 1 difference, got %d", n, len(report.Differences))
		}
		d := report.Differences[0]
		if d.Kind != DiffModified || d.Key != tmpl[n-1].Key {
			t.Errorf("n=%d: expected modified %q, got %s %q", n, tmpl[n-1].Key, d.Kind, d.Key)
		}
	}
}

func TestDetectDriftAddedAndRemoved(t *testing.T) {
	tmpl := panelDiscussion()
	current := models.CloneSegments(tmpl[1:]) // drop introduction (required)
	current = append(current, models.Segment{Key: "lightning_round", Title: "Lightning Round", DurationMinutes: 4})

	report := DetectDrift(current, tmpl, "Panel Discussion")

	if len(report.Differences) != 2 {
		t.Fatalf("Expected 2 differences, got %d", len(report.Differences))
	}
	if report.Differences[0].Kind != DiffRemoved || report.Differences[0].Key != "introduction" {
		t.Errorf("Expected removed introduction first, got %+v", report.Differences[0])
	}
	if report.Differences[1].Kind != DiffAdded || report.Differences[1].Key != "lightning_round" {
		t.Errorf("Expected added lightning_round second, got %+v", report.Differences[1])
	}
	if report.DriftPercentage != 83 {
		t.Errorf("Expected 83%%, got %d", report.DriftPercentage)
	}
}

func TestDetectDriftReorderIsNotDrift(t *testing.T) {
	tmpl := panelDiscussion()
	current, err := MoveSegment(tmpl, 1, 3)
	if err != nil {
		t.Fatalf("MoveSegment failed: %v", err)
	}

	report := DetectDrift(current, tmpl, "Panel Discussion")
	if report.IsDrifted || report.DriftPercentage != 100 || len(report.Differences) != 0 {
		t.Errorf("Expected reorder to be drift-free, got %+v", report)
	}
}

func TestDetectDriftPanelDiscussionScenario(t *testing.T) {
	tmpl := panelDiscussion()
	var current []models.Segment
	for _, s := range tmpl {
		if s.Key == "audience_qa" {
			continue
		}
		if s.Key == "closing_thoughts" {
			s.DurationMinutes = 4
		}
		current = append(current, s)
	}

	report := DetectDrift(current, tmpl, "Panel Discussion")

	if !report.IsDrifted {
		t.Errorf("Expected drifted")
	}
	if report.DriftPercentage != 67 {
		t.Errorf("Expected 67%%, got %d", report.DriftPercentage)
	}
	if report.MatchedSegments != 4 || report.TemplateSegments != 6 {
		t.Errorf("Expected 4/6 matched, got %d/%d", report.MatchedSegments, report.TemplateSegments)
	}
	if len(report.Differences) != 2 {
		t.Fatalf("Expected 2 differences, got %d", len(report.Differences))
	}
	if report.Differences[0].Kind != DiffRemoved || report.Differences[0].Key != "audience_qa" {
		t.Errorf("Expected removed audience_qa, got %+v", report.Differences[0])
	}
	mod := report.Differences[1]
	if mod.Kind != DiffModified || mod.Key != "closing_thoughts" {
		t.Errorf("Expected modified closing_thoughts, got %+v", mod)
	}
	if mod.Before != "2 min" || mod.After != "4 min" {
		t.Errorf("Expected 2 min -> 4 min, got %s -> %s", mod.Before, mod.After)
	}
}

func TestDetectDriftTitleAndDescription(t *testing.T) {
	tmpl := panelDiscussion()[:2]
	current := models.CloneSegments(tmpl)
	current[0].Title = "Welcome"
	current[1].Description = "Short statements"

	report := DetectDrift(current, tmpl, "t")
	if len(report.Differences) != 2 {
		t.Fatalf("Expected 2 differences, got %d", len(report.Differences))
	}
	if report.Differences[0].Before != "Introduction" || report.Differences[0].After != "Welcome" {
		t.Errorf("Expected title change recorded, got %+v", report.Differences[0])
	}
	if report.Differences[1].After != "Short statements" {
		t.Errorf("Expected description change recorded, got %+v", report.Differences[1])
	}
	if report.DriftPercentage != 0 {
		t.Errorf("Expected 0%%, got %d", report.DriftPercentage)
	}
}

func TestDetectDriftEmptyTemplate(t *testing.T) {
	if r := DetectDrift(nil, nil, "t"); r.DriftPercentage != 100 || r.IsDrifted {
		t.Errorf("Expected empty vs empty to be 100%%, got %+v", r)
	}
	r := DetectDrift([]models.Segment{{Key: "a", Title: "A"}}, nil, "t")
	if r.DriftPercentage != 0 || !r.IsDrifted {
		t.Errorf("Expected segments vs empty template to be 0%%, got %+v", r)
	}
	if len(r.Differences) != 1 || r.Differences[0].Kind != DiffAdded {
		t.Errorf("Expected a single added entry, got %+v", r.Differences)
	}
}

func TestDetectDriftDoesNotMutate(t *testing.T) {
	tmpl := panelDiscussion()
	current := models.CloneSegments(tmpl)
	current[2].DurationMinutes = 99
	before := models.CloneSegments(current)

	DetectDrift(current, tmpl, "t")

	for i := range current {
		if current[i] != before[i] {
			t.Errorf("Expected current[%d] unchanged", i)
		}
	}
	if tmpl[2].DurationMinutes != 15 {
		t.Errorf("Expected template unchanged")
	}
}
