package models

// Segment is one named, timed subdivision of a debate or podcast. Order within
// a structure is the speaking order.
type Segment struct {
	Key              string `bson:"key" json:"key"`
	Title            string `bson:"title" json:"title"`
	Description      string `bson:"description" json:"description"`
	DurationMinutes  int    `bson:"durationMinutes" json:"durationMinutes"`
	Required         bool   `bson:"required" json:"required"`
	AllowsReordering bool   `bson:"allowsReordering" json:"allowsReordering"`
}

// CloneSegments returns a detached copy of a segment structure. Debates keep
// copies of their template's structure, never references to it.
func CloneSegments(segments []Segment) []Segment {
	if segments == nil {
		return nil
	}
	out := make([]Segment, len(segments))
	copy(out, segments)
	return out
}
