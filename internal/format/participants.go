package format

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"voxarena/models"
)

// Constraints are the participant rules a debate must satisfy.
type Constraints struct {
	MinParticipants   int  `json:"minParticipants"`
	MaxParticipants   int  `json:"maxParticipants"`
	RequiresModerator bool `json:"requiresModerator"`
}

// FromTemplate extracts the constraints a template declares.
func FromTemplate(t *models.FormatTemplate) *Constraints {
	if t == nil {
		return nil
	}
	return &Constraints{
		MinParticipants:   t.MinParticipants,
		MaxParticipants:   t.MaxParticipants,
		RequiresModerator: t.RequiresModerator,
	}
}

// ResolveConstraints merges template and custom values. A selected template
// wins field by field; a zero template value falls back to the custom one.
// Either argument may be nil.
func ResolveConstraints(template, custom *Constraints) Constraints {
	var t, c Constraints
	if template != nil {
		t = *template
	}
	if custom != nil {
		c = *custom
	}
	return Constraints{
		MinParticipants:   firstNonZero(t.MinParticipants, c.MinParticipants),
		MaxParticipants:   firstNonZero(t.MaxParticipants, c.MaxParticipants),
		RequiresModerator: t.RequiresModerator || c.RequiresModerator,
	}
}

func firstNonZero(a, b int) int {
	if a != 0 {
		return a
	}
	return b
}

// Check is the outcome of a participant validation.
type Check struct {
	Valid    bool     `json:"valid"`
	Problems []string `json:"problems,omitempty"`
}

// ValidateParticipants applies the per-participant, cardinality and moderator
// rules. Every failed clause contributes one problem. The wizard and the debate
// service both call it, so persona existence is the only check left to callers.
func ValidateParticipants(participants []models.Participant, c Constraints) Check {
	var problems []string
	n := len(participants)

	seen := make(map[primitive.ObjectID]bool, n)
	for i, p := range participants {
		if p.PersonaID.IsZero() {
			problems = append(problems, fmt.Sprintf("participant %d: personaId is required", i+1))
			continue
		}
		if !p.Role.Valid() {
			problems = append(problems, fmt.Sprintf("participant %d: unknown role %q", i+1, p.Role))
		}
		if seen[p.PersonaID] {
			problems = append(problems, fmt.Sprintf("participant %d: persona appears more than once", i+1))
		}
		seen[p.PersonaID] = true
	}

	if c.MinParticipants < 1 {
		problems = append(problems, "minParticipants must be at least 1")
	}
	if c.MaxParticipants < c.MinParticipants {
		problems = append(problems, fmt.Sprintf("maxParticipants (%d) is below minParticipants (%d)", c.MaxParticipants, c.MinParticipants))
	}
	if n < c.MinParticipants {
		problems = append(problems, fmt.Sprintf("at least %d participants required, got %d", c.MinParticipants, n))
	}
	if n > c.MaxParticipants {
		problems = append(problems, fmt.Sprintf("at most %d participants allowed, got %d", c.MaxParticipants, n))
	}
	if c.RequiresModerator && !HasModerator(participants) {
		problems = append(problems, "a moderator is required")
	}

	return Check{Valid: len(problems) == 0, Problems: problems}
}

// HasModerator reports whether any participant has the MODERATOR role.
func HasModerator(participants []models.Participant) bool {
	for _, p := range participants {
		if p.Role == models.RoleModerator {
			return true
		}
	}
	return false
}

// Renumber returns a copy with speakingOrder reset to 1..N in slice order.
func Renumber(participants []models.Participant) []models.Participant {
	out := make([]models.Participant, len(participants))
	for i, p := range participants {
		p.SpeakingOrder = i + 1
		out[i] = p
	}
	return out
}

// RemoveParticipant drops the participant at index i and renumbers the rest.
// An out of range index returns an unchanged, renumbered copy.
func RemoveParticipant(participants []models.Participant, i int) []models.Participant {
	if i < 0 || i >= len(participants) {
		return Renumber(participants)
	}
	rest := make([]models.Participant, 0, len(participants)-1)
	rest = append(rest, participants[:i]...)
	rest = append(rest, participants[i+1:]...)
	return Renumber(rest)
}

// AddParticipant appends p with the next speaking order.
func AddParticipant(participants []models.Participant, p models.Participant) []models.Participant {
	out := Renumber(participants)
	p.SpeakingOrder = len(out) + 1
	return append(out, p)
}
