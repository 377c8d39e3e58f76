package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"voxarena/models"
)

// TraitLine is one resolved taxonomy trait of a persona.
type TraitLine struct {
	Category string
	Terms    []string
	Hints    []string
}

// ResolveTraits maps a persona's trait slugs to category and term names.
// Unknown slugs are skipped. Lines follow category sort order.
func ResolveTraits(traits map[string][]string, categories []models.TaxonomyCategory, terms []models.TaxonomyTerm) []TraitLine {
	termsByCategory := make(map[string]map[string]models.TaxonomyTerm)
	for _, t := range terms {
		key := t.CategoryID.Hex()
		if termsByCategory[key] == nil {
			termsByCategory[key] = make(map[string]models.TaxonomyTerm)
		}
		termsByCategory[key][t.Slug] = t
	}

	sorted := make([]models.TaxonomyCategory, len(categories))
	copy(sorted, categories)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].SortOrder < sorted[j].SortOrder })

	var lines []TraitLine
	for _, c := range sorted {
		slugs := traits[c.Slug]
		if len(slugs) == 0 {
			continue
		}
		line := TraitLine{Category: c.Name}
		for _, slug := range slugs {
			t, ok := termsByCategory[c.ID.Hex()][slug]
			if !ok {
				continue
			}
			line.Terms = append(line.Terms, t.Name)
			if t.PromptHint != "" {
				line.Hints = append(line.Hints, t.PromptHint)
			}
		}
		if len(line.Terms) > 0 {
			lines = append(lines, line)
		}
	}
	return lines
}

func writeTraits(b *strings.Builder, traits []TraitLine) {
	for _, t := range traits {
		fmt.Fprintf(b, "- %s: %s\n", t.Category, strings.Join(t.Terms, ", "))
		for _, h := range t.Hints {
			fmt.Fprintf(b, "  (%s)\n", h)
		}
	}
}

// BuildPersonaDescriptionPrompt asks for a short description of a persona.
func BuildPersonaDescriptionPrompt(p *models.Persona, traits []TraitLine, instructions string, maxWords int) string {
	if instructions == "" {
		instructions = "Write a vivid third-person description of this debate persona."
	}
	if maxWords <= 0 {
		maxWords = 120
	}
	var b strings.Builder
	b.WriteString(instructions)
	fmt.Fprintf(&b, " Keep it under %d words. Return only the description text.\n\n", maxWords)
	fmt.Fprintf(&b, "NAME: %s\n", p.Name)
	if len(traits) > 0 {
		b.WriteString("TRAITS:\n")
		writeTraits(&b, traits)
	}
	return b.String()
}

// BuildPersonaSystemPrompt is the voice instruction used when the persona
// speaks in a transcript.
func BuildPersonaSystemPrompt(p *models.Persona, traits []TraitLine) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are %s.", p.Name)
	if p.Description != "" {
		fmt.Fprintf(&b, " %s", strings.TrimSpace(p.Description))
	}
	if len(traits) > 0 {
		b.WriteString("\nYour characteristics:\n")
		writeTraits(&b, traits)
	}
	return b.String()
}

// BuildAvatarPrompt describes a portrait for the image model.
func BuildAvatarPrompt(p *models.Persona, traits []TraitLine) string {
	var parts []string
	for _, t := range traits {
		parts = append(parts, strings.Join(t.Terms, " "))
	}
	prompt := fmt.Sprintf("Stylized head-and-shoulders portrait of a podcast guest named %s", p.Name)
	if len(parts) > 0 {
		prompt += ", conveying: " + strings.Join(parts, "; ")
	}
	return prompt + ". Neutral studio background, no text."
}

// CastMember is a participant together with its persona.
type CastMember struct {
	Participant models.Participant
	Persona     models.Persona
	Traits      []TraitLine
}

// Cast orders participants by speaking order and attaches personas. Missing
// personas are reported as an error.
func Cast(participants []models.Participant, personas []models.Persona) ([]CastMember, error) {
	byID := make(map[string]models.Persona, len(personas))
	for _, p := range personas {
		byID[p.ID.Hex()] = p
	}
	ordered := make([]models.Participant, len(participants))
	copy(ordered, participants)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].SpeakingOrder < ordered[j].SpeakingOrder })

	cast := make([]CastMember, 0, len(ordered))
	var missing []string
	for _, p := range ordered {
		persona, ok := byID[p.PersonaID.Hex()]
		if !ok {
			missing = append(missing, p.PersonaID.Hex())
			continue
		}
		cast = append(cast, CastMember{Participant: p, Persona: persona})
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("personas not found: %s", strings.Join(missing, ", "))
	}
	return cast, nil
}

const transcriptFormat = `OUTPUT FORMAT:
Return ONLY valid JSON matching this structure (no markdown fences, no extra text):
{
  "entries": [
    {"segmentKey": "opening", "speaker": "Exact persona name", "text": "What they say"}
  ]
}
Every entry's segmentKey must be one of the segment keys listed above, in segment order.
Every speaker must be one of the participant names listed above.`

// BuildTranscriptPrompt returns the system and user prompts for a full
// transcript. reviewNotes are excerpts from uploaded reference documents.
func BuildTranscriptPrompt(d *models.Debate, mode *models.Mode, cast []CastMember, reviewNotes []string) (string, string) {
	var sys strings.Builder
	if mode != nil && strings.TrimSpace(mode.SystemPrompt) != "" {
		sys.WriteString(strings.TrimSpace(mode.SystemPrompt))
	} else if d.Mode == models.TemplateModePodcast {
		sys.WriteString("You are a podcast script writer producing natural multi-voice conversations.")
	} else {
		sys.WriteString("You are a debate script writer producing structured, rigorous debates.")
	}
	sys.WriteString("\n\n")
	sys.WriteString(transcriptFormat)

	var b strings.Builder
	fmt.Fprintf(&b, "TITLE: %s\n", d.Title)
	fmt.Fprintf(&b, "TOPIC: %s\n", d.Topic)
	if d.Description != "" {
		fmt.Fprintf(&b, "CONTEXT: %s\n", d.Description)
	}
	fmt.Fprintf(&b, "TOTAL LENGTH: about %d minutes\n\n", d.TotalDurationMinutes)

	b.WriteString("PARTICIPANTS (in speaking order):\n")
	for _, m := range cast {
		fmt.Fprintf(&b, "%d. %s (%s)\n", m.Participant.SpeakingOrder, m.Persona.Name, m.Participant.Role)
		if m.Persona.SystemPrompt != "" {
			fmt.Fprintf(&b, "   Voice: %s\n", oneLine(m.Persona.SystemPrompt))
		} else if m.Persona.Description != "" {
			fmt.Fprintf(&b, "   Voice: %s\n", oneLine(m.Persona.Description))
		}
		for _, t := range m.Traits {
			fmt.Fprintf(&b, "   %s: %s\n", t.Category, strings.Join(t.Terms, ", "))
		}
	}

	b.WriteString("\nSEGMENTS:\n")
	for _, s := range d.SegmentStructure {
		fmt.Fprintf(&b, "- [%s] %s (%d min)", s.Key, s.Title, s.DurationMinutes)
		if s.Description != "" {
			fmt.Fprintf(&b, ": %s", s.Description)
		}
		b.WriteString("\n")
	}

	if len(reviewNotes) > 0 {
		b.WriteString("\nREFERENCE MATERIAL (use for facts, do not quote at length):\n")
		for _, n := range reviewNotes {
			b.WriteString(n)
			b.WriteString("\n---\n")
		}
	}
	return sys.String(), b.String()
}

// BuildTeaserPrompt asks for a short promotional teaser of a debate.
func BuildTeaserPrompt(d *models.Debate, cast []CastMember) string {
	names := make([]string, 0, len(cast))
	for _, m := range cast {
		names = append(names, m.Persona.Name)
	}
	return fmt.Sprintf(
		"Write a two-sentence teaser for an episode titled %q on the topic %q featuring %s. Return only the teaser text.",
		d.Title, d.Topic, strings.Join(names, ", "),
	)
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// extractJSON returns the text between the first '{' and the last '}'.
func extractJSON(text string) (string, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", errors.New("no JSON object in response")
	}
	return text[start : end+1], nil
}

// ParseTranscript decodes a model response into transcript entries and
// attaches persona ids by speaker name. Entries naming unknown segments or
// speakers are rejected so a retry can be attempted.
func ParseTranscript(text string, d *models.Debate, cast []CastMember) ([]models.TranscriptEntry, error) {
	raw, err := extractJSON(text)
	if err != nil {
		return nil, err
	}
	var parsed struct {
		Entries []struct {
			SegmentKey string `json:"segmentKey"`
			Speaker    string `json:"speaker"`
			Text       string `json:"text"`
		} `json:"entries"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse transcript JSON: %w", err)
	}
	if len(parsed.Entries) == 0 {
		return nil, errors.New("transcript has no entries")
	}

	segments := make(map[string]bool, len(d.SegmentStructure))
	for _, s := range d.SegmentStructure {
		segments[s.Key] = true
	}
	speakers := make(map[string]CastMember, len(cast))
	for _, m := range cast {
		speakers[strings.ToLower(strings.TrimSpace(m.Persona.Name))] = m
	}

	entries := make([]models.TranscriptEntry, 0, len(parsed.Entries))
	for i, e := range parsed.Entries {
		if !segments[e.SegmentKey] {
			return nil, fmt.Errorf("entry %d: unknown segment %q", i+1, e.SegmentKey)
		}
		m, ok := speakers[strings.ToLower(strings.TrimSpace(e.Speaker))]
		if !ok {
			return nil, fmt.Errorf("entry %d: unknown speaker %q", i+1, e.Speaker)
		}
		if strings.TrimSpace(e.Text) == "" {
			continue
		}
		entries = append(entries, models.TranscriptEntry{
			SegmentKey: e.SegmentKey,
			PersonaID:  m.Persona.ID,
			Speaker:    m.Persona.Name,
			Role:       m.Participant.Role,
			Text:       strings.TrimSpace(e.Text),
		})
	}
	return entries, nil
}

// PlaceholderTranscript is the static fallback used when every generation
// attempt failed: one line per participant per segment.
func PlaceholderTranscript(d *models.Debate, cast []CastMember) []models.TranscriptEntry {
	var entries []models.TranscriptEntry
	for _, s := range d.SegmentStructure {
		for _, m := range cast {
			entries = append(entries, models.TranscriptEntry{
				SegmentKey: s.Key,
				PersonaID:  m.Persona.ID,
				Speaker:    m.Persona.Name,
				Role:       m.Participant.Role,
				Text:       fmt.Sprintf("[Placeholder] %s shares their view on %q during %s.", m.Persona.Name, d.Topic, s.Title),
			})
		}
	}
	return entries
}
