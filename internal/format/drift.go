package format

import (
	"fmt"
	"math"

	"voxarena/models"
)

type DifferenceKind string

const (
	DiffAdded    DifferenceKind = "added"
	DiffRemoved  DifferenceKind = "removed"
	DiffModified DifferenceKind = "modified"
)

// Difference is one human-readable change between a debate and its template.
type Difference struct {
	Kind    DifferenceKind `json:"kind"`
	Key     string         `json:"key"`
	Title   string         `json:"title"`
	Message string         `json:"message"`
	Before  string         `json:"before,omitempty"`
	After   string         `json:"after,omitempty"`
}

// DriftReport summarises how far a debate's segments have moved from its
// template's.
type DriftReport struct {
	TemplateName     string       `json:"templateName"`
	IsDrifted        bool         `json:"isDrifted"`
	DriftPercentage  int          `json:"driftPercentage"`
	MatchedSegments  int          `json:"matchedSegments"`
	TemplateSegments int          `json:"templateSegments"`
	Differences      []Difference `json:"differences"`
}

// DetectDrift matches segments by key. Position is ignored, so a pure reorder
// is not drift. DriftPercentage is the share of template segments that are
// present and unchanged.
//
// Removed and modified entries follow template order; added entries follow
// current order and come last.
func DetectDrift(current, template []models.Segment, templateName string) DriftReport {
	currentByKey := make(map[string]models.Segment, len(current))
	for _, s := range current {
		if _, ok := currentByKey[s.Key]; !ok {
			currentByKey[s.Key] = s
		}
	}
	templateKeys := make(map[string]struct{}, len(template))

	report := DriftReport{
		TemplateName:     templateName,
		TemplateSegments: len(template),
		Differences:      []Difference{},
	}

	for _, t := range template {
		templateKeys[t.Key] = struct{}{}
		c, ok := currentByKey[t.Key]
		if !ok {
			report.Differences = append(report.Differences, Difference{
				Kind:    DiffRemoved,
				Key:     t.Key,
				Title:   t.Title,
				Message: fmt.Sprintf("Segment %q was removed", t.Title),
			})
			continue
		}
		if diff, changed := compareSegment(t, c); changed {
			report.Differences = append(report.Differences, diff)
			continue
		}
		report.MatchedSegments++
	}

	added := make(map[string]struct{})
	for _, c := range current {
		if _, ok := templateKeys[c.Key]; ok {
			continue
		}
		if _, dup := added[c.Key]; dup {
			continue
		}
		added[c.Key] = struct{}{}
		report.Differences = append(report.Differences, Difference{
			Kind:    DiffAdded,
			Key:     c.Key,
			Title:   c.Title,
			Message: fmt.Sprintf("Segment %q was added", c.Title),
		})
	}

	report.DriftPercentage = matchPercentage(report.MatchedSegments, len(template), len(current))
	report.IsDrifted = report.DriftPercentage < 100
	return report
}

func matchPercentage(matched, total, currentLen int) int {
	if total == 0 {
		if currentLen == 0 {
			return 100
		}
		return 0
	}
	return int(math.Round(float64(matched) / float64(total) * 100))
}

func compareSegment(t, c models.Segment) (Difference, bool) {
	d := Difference{Kind: DiffModified, Key: t.Key, Title: t.Title}
	switch {
	case t.DurationMinutes != c.DurationMinutes:
		d.Message = fmt.Sprintf("Segment %q duration changed from %d to %d minutes", t.Title, t.DurationMinutes, c.DurationMinutes)
		d.Before = fmt.Sprintf("%d min", t.DurationMinutes)
		d.After = fmt.Sprintf("%d min", c.DurationMinutes)
	case t.Title != c.Title:
		d.Message = fmt.Sprintf("Segment title changed from %q to %q", t.Title, c.Title)
		d.Before = t.Title
		d.After = c.Title
	case t.Description != c.Description:
		d.Message = fmt.Sprintf("Segment %q description changed", t.Title)
		d.Before = t.Description
		d.After = c.Description
	default:
		return Difference{}, false
	}
	if n := changedFields(t, c); n > 1 {
		d.Message = fmt.Sprintf("%s (%d fields changed)", d.Message, n)
	}
	return d, true
}

func changedFields(t, c models.Segment) int {
	n := 0
	if t.DurationMinutes != c.DurationMinutes {
		n++
	}
	if t.Title != c.Title {
		n++
	}
	if t.Description != c.Description {
		n++
	}
	return n
}
