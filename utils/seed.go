package utils

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"voxarena/internal/format"
	"voxarena/models"
	"voxarena/services"
)

func seg(key, title, description string, minutes int, required, reorder bool) models.Segment {
	return models.Segment{Key: key, Title: title, Description: description, DurationMinutes: minutes, Required: required, AllowsReordering: reorder}
}

// PresetTemplates returns the built-in format templates.
func PresetTemplates() []models.FormatTemplate {
	presets := []models.FormatTemplate{
		{
			Name:            "Two-Person Dialogue",
			Slug:            "two-person-dialogue",
			Description:     "A focused conversation between two voices, optionally joined by a third.",
			Category:        "conversation",
			Mode:            models.TemplateModeDebate,
			MinParticipants: 2,
			MaxParticipants: 3,
			FlexibleTiming:  true,
			SegmentStructure: []models.Segment{
				seg("opening", "Opening", "Each speaker frames their view", 4, true, false),
				seg("exchange", "Exchange", "Back-and-forth on the core question", 12, true, true),
				seg("common_ground", "Common Ground", "Where the speakers agree", 4, false, true),
				seg("closing", "Closing", "Final words from each speaker", 2, true, false),
			},
		},
		{
			Name:              "Oxford Debate",
			Slug:              "oxford-debate",
			Description:       "Formal motion debate with proposition and opposition teams.",
			Category:          "formal",
			Mode:              models.TemplateModeDebate,
			MinParticipants:   3,
			MaxParticipants:   5,
			RequiresModerator: true,
			SegmentStructure: []models.Segment{
				seg("motion", "Motion", "The moderator reads the motion", 2, true, false),
				seg("proposition_opening", "Proposition Opening", "", 6, true, false),
				seg("opposition_opening", "Opposition Opening", "", 6, true, false),
				seg("rebuttals", "Rebuttals", "", 8, true, true),
				seg("floor_questions", "Floor Questions", "", 6, false, true),
				seg("summations", "Summations", "", 4, true, false),
			},
		},
		{
			Name:              "Panel Discussion",
			Slug:              "panel-discussion",
			Description:       "A moderated panel with audience questions.",
			Category:          "panel",
			Mode:              models.TemplateModeDebate,
			MinParticipants:   3,
			MaxParticipants:   6,
			RequiresModerator: true,
			FlexibleTiming:    true,
			SegmentStructure: []models.Segment{
				seg("introductions", "Introductions", "The moderator introduces the panel", 3, true, false),
				seg("opening_statements", "Opening Statements", "", 8, true, false),
				seg("moderated_discussion", "Moderated Discussion", "", 13, true, true),
				seg("open_debate", "Open Debate", "Panelists respond to each other directly", 10, false, true),
				seg("audience_qa", "Audience Q&A", "", 4, false, true),
				seg("closing_thoughts", "Closing Thoughts", "", 2, true, false),
			},
		},
		{
			Name:            "Interview",
			Slug:            "interview",
			Description:     "A host interviews a single guest.",
			Category:        "conversation",
			Mode:            models.TemplateModePodcast,
			MinParticipants: 2,
			MaxParticipants: 2,
			FlexibleTiming:  true,
			SegmentStructure: []models.Segment{
				seg("welcome", "Welcome", "The host introduces the guest", 3, true, false),
				seg("background", "Background", "", 7, true, true),
				seg("deep_dive", "Deep Dive", "", 15, true, true),
				seg("rapid_fire", "Rapid Fire", "Short questions, short answers", 3, false, true),
				seg("wrap_up", "Wrap Up", "", 2, true, false),
			},
		},
		{
			Name:            "Solo Podcast",
			Slug:            "solo-podcast",
			Description:     "One host works through a topic alone.",
			Category:        "monologue",
			Mode:            models.TemplateModePodcast,
			MinParticipants: 1,
			MaxParticipants: 1,
			FlexibleTiming:  true,
			SegmentStructure: []models.Segment{
				seg("intro", "Intro", "", 2, true, false),
				seg("main_topic", "Main Topic", "", 15, true, true),
				seg("listener_mail", "Listener Mail", "", 5, false, true),
				seg("outro", "Outro", "", 1, true, false),
			},
		},
	}
	for i := range presets {
		presets[i].IsPreset = true
		presets[i].DurationMinutes = format.TotalDuration(presets[i].SegmentStructure)
	}
	return presets
}

// DefaultModes returns the built-in modes the DEBATE and PODCAST enums map to.
func DefaultModes() []models.Mode {
	return []models.Mode{
		{
			Name:        "Debate Mode",
			Slug:        models.TemplateModeDebate.ModeSlug(),
			Description: "Adversarial exchanges between personas with opposing views.",
			SystemPrompt: "You write transcripts of structured debates. Every speaker argues from their own " +
				"worldview, engages directly with the previous speaker and never breaks character. " +
				"Moderators keep time, introduce segments and stay neutral.",
			IsDefault: true,
		},
		{
			Name:        "Podcast Mode",
			Slug:        models.TemplateModePodcast.ModeSlug(),
			Description: "Conversational episodes where personas explore a topic together.",
			SystemPrompt: "You write transcripts of conversational podcasts. Speakers are curious and warm, " +
				"build on each other's points and use concrete stories. Hosts guide the episode " +
				"through its segments.",
			IsDefault: true,
		},
	}
}

// SeedCategory is a taxonomy category with the terms seeded under it.
type SeedCategory struct {
	Category models.TaxonomyCategory
	Terms    []models.TaxonomyTerm
}

func term(name, hint string) models.TaxonomyTerm {
	return models.TaxonomyTerm{Name: name, Slug: services.Slug(name), PromptHint: hint}
}

// DefaultTaxonomy returns the categories referenced by the persona form.
func DefaultTaxonomy() []SeedCategory {
	return []SeedCategory{
		{
			Category: models.TaxonomyCategory{Name: "Political Leaning", Slug: "political-leaning", SortOrder: 1},
			Terms: []models.TaxonomyTerm{
				term("Progressive", "favours reform and collective solutions"),
				term("Liberal", "values individual rights and pluralism"),
				term("Centrist", "seeks pragmatic compromise"),
				term("Conservative", "values tradition and gradual change"),
				term("Libertarian", "distrusts state power and favours markets"),
			},
		},
		{
			Category: models.TaxonomyCategory{Name: "Debate Style", Slug: "debate-style", AllowMultiple: true, SortOrder: 2},
			Terms: []models.TaxonomyTerm{
				term("Analytical", "argues from evidence and data"),
				term("Passionate", "argues from conviction and values"),
				term("Witty", "uses humour and sharp retorts"),
				term("Socratic", "argues by asking probing questions"),
				term("Diplomatic", "looks for common ground"),
			},
		},
		{
			Category: models.TaxonomyCategory{Name: "Expertise", Slug: "expertise", AllowMultiple: true, SortOrder: 3},
			Terms: []models.TaxonomyTerm{
				term("Economics", "cites markets, incentives and trade-offs"),
				term("Technology", "draws on engineering and software"),
				term("Philosophy", "reasons from first principles"),
				term("Climate Science", "grounds claims in environmental research"),
				term("History", "draws parallels with past events"),
				term("Medicine", "relies on clinical evidence"),
			},
		},
	}
}

// SeedDefaults upserts the preset templates, the built-in modes and the
// default taxonomy. Edited mode prompts are kept.
func SeedDefaults(ctx context.Context, templates services.TemplateStore, modes services.ModeStore, taxonomy services.TaxonomyStore, log logrus.FieldLogger) error {
	for _, t := range PresetTemplates() {
		if err := templates.UpsertBySlug(ctx, &t); err != nil {
			return fmt.Errorf("failed to seed template %s: %w", t.Slug, err)
		}
	}
	for _, m := range DefaultModes() {
		if err := modes.UpsertBySlug(ctx, &m); err != nil {
			return fmt.Errorf("failed to seed mode %s: %w", m.Slug, err)
		}
	}
	for _, sc := range DefaultTaxonomy() {
		cat := sc.Category
		id, err := taxonomy.UpsertCategory(ctx, &cat)
		if err != nil {
			return fmt.Errorf("failed to seed category %s: %w", cat.Slug, err)
		}
		for i, t := range sc.Terms {
			t.CategoryID = id
			t.SortOrder = i + 1
			if err := taxonomy.UpsertTerm(ctx, &t); err != nil {
				return fmt.Errorf("failed to seed term %s: %w", t.Slug, err)
			}
		}
	}
	log.WithFields(logrus.Fields{
		"templates":  len(PresetTemplates()),
		"modes":      len(DefaultModes()),
		"categories": len(DefaultTaxonomy()),
	}).Info("Seeded default content")
	return nil
}
