// Package format holds the structural rules for debate formats: segment
// structures, participant constraints and drift against a template.
// Everything here is pure and safe for concurrent use.
package format

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"voxarena/models"
)

// Issue is a single problem found in a segment structure.
type Issue struct {
	Index   int    `json:"index"`
	Key     string `json:"key,omitempty"`
	Message string `json:"message"`
}

func (i Issue) String() string {
	if i.Index < 0 {
		return i.Message
	}
	return fmt.Sprintf("segment %d: %s", i.Index+1, i.Message)
}

// CanAdvanceSegments is the gate for leaving the segment step.
func CanAdvanceSegments(segments []models.Segment) bool {
	return len(segments) > 0
}

// ValidateStructure checks a segment list before it is accepted into a debate
// or template. An empty result means the structure is well formed.
func ValidateStructure(segments []models.Segment) []Issue {
	var issues []Issue
	if len(segments) == 0 {
		return append(issues, Issue{Index: -1, Message: "at least one segment is required"})
	}

	seen := make(map[string]int, len(segments))
	for i, s := range segments {
		key := strings.TrimSpace(s.Key)
		if key == "" {
			issues = append(issues, Issue{Index: i, Message: "key is required"})
		} else if first, dup := seen[key]; dup {
			issues = append(issues, Issue{Index: i, Key: key, Message: fmt.Sprintf("key %q duplicates segment %d", key, first+1)})
		} else {
			seen[key] = i
		}
		if strings.TrimSpace(s.Title) == "" {
			issues = append(issues, Issue{Index: i, Key: key, Message: "title is required"})
		}
		if s.DurationMinutes < 0 {
			issues = append(issues, Issue{Index: i, Key: key, Message: "durationMinutes must not be negative"})
		}
	}
	return issues
}

// TotalDuration sums every segment, required or optional.
func TotalDuration(segments []models.Segment) int {
	total := 0
	for _, s := range segments {
		total += s.DurationMinutes
	}
	return total
}

// RequiredDuration sums the required segments only; it is the floor of the
// total debate duration.
func RequiredDuration(segments []models.Segment) int {
	total := 0
	for _, s := range segments {
		if s.Required {
			total += s.DurationMinutes
		}
	}
	return total
}

// TimingReport describes how a structure's length relates to a nominal
// template duration. It is informational and never blocks anything.
type TimingReport struct {
	TotalMinutes    int  `json:"totalMinutes"`
	RequiredMinutes int  `json:"requiredMinutes"`
	NominalMinutes  int  `json:"nominalMinutes"`
	DeltaMinutes    int  `json:"deltaMinutes"`
	FlexibleTiming  bool `json:"flexibleTiming"`
	// OffNominal is set when the total differs from a non-zero nominal duration
	// and the format does not allow flexible timing.
	OffNominal bool `json:"offNominal"`
}

// CheckTiming compares the structure's total against nominal minutes.
func CheckTiming(segments []models.Segment, nominal int, flexible bool) TimingReport {
	r := TimingReport{
		TotalMinutes:    TotalDuration(segments),
		RequiredMinutes: RequiredDuration(segments),
		NominalMinutes:  nominal,
		FlexibleTiming:  flexible,
	}
	if nominal > 0 {
		r.DeltaMinutes = r.TotalMinutes - nominal
		r.OffNominal = r.DeltaMinutes != 0 && !flexible
	}
	return r
}

var (
	ErrIndexOutOfRange = errors.New("segment index out of range")
	ErrNotReorderable  = errors.New("segment does not allow reordering")
	ErrCrossesLocked   = errors.New("move would cross a segment that does not allow reordering")
)

// MoveSegment returns a copy of segments with the element at from moved to
// position to. The moved segment must allow reordering, and it may not pass
// over a segment that does not, so fixed segments keep their relative order.
// The input slice is never modified.
func MoveSegment(segments []models.Segment, from, to int) ([]models.Segment, error) {
	n := len(segments)
	if from < 0 || from >= n || to < 0 || to >= n {
		return nil, ErrIndexOutOfRange
	}
	if !segments[from].AllowsReordering {
		return nil, ErrNotReorderable
	}
	out := models.CloneSegments(segments)
	if from == to {
		return out, nil
	}

	lo, hi := from+1, to
	if to < from {
		lo, hi = to, from-1
	}
	for i := lo; i <= hi; i++ {
		if !segments[i].AllowsReordering {
			return nil, ErrCrossesLocked
		}
	}

	moved := out[from]
	if from < to {
		copy(out[from:to], out[from+1:to+1])
	} else {
		copy(out[to+1:from+1], out[to:from])
	}
	out[to] = moved
	return out, nil
}

// EnsureKeys fills missing keys from the segment title and de-duplicates keys
// with a numeric suffix. It returns a new slice.
func EnsureKeys(segments []models.Segment) []models.Segment {
	out := models.CloneSegments(segments)
	used := make(map[string]bool, len(out))
	for _, s := range out {
		if k := strings.TrimSpace(s.Key); k != "" {
			used[k] = false
		}
	}
	for i := range out {
		key := strings.TrimSpace(out[i].Key)
		if key == "" {
			key = Slugify(out[i].Title)
			if key == "" {
				key = "segment"
			}
		}
		if taken, exists := used[key]; exists && (taken || strings.TrimSpace(out[i].Key) == "") {
			base := key
			for n := 2; ; n++ {
				candidate := base + "_" + strconv.Itoa(n)
				if _, exists := used[candidate]; !exists {
					key = candidate
					break
				}
			}
		}
		used[key] = true
		out[i].Key = key
	}
	return out
}

// Slugify turns a title into a lower snake_case key, e.g. "Audience Q&A" -> "audience_q_a".
func Slugify(s string) string {
	var b strings.Builder
	lastUnderscore := true
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastUnderscore = false
			continue
		}
		if !lastUnderscore {
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}
