package interval

import "time"

// Span represents a half-open time interval [Start, End).
type Span struct {
	Start time.Time
	End   time.Time
}

// IsValid reports whether the span has a positive duration.
func (s Span) IsValid() bool {
	return s.End.After(s.Start)
}

// Overlaps reports whether two half-open spans intersect. Spans that merely
// touch at a boundary do not overlap: [10:00, 11:00) and [11:00, 12:00) are
// compatible. Every overlap decision in the system goes through this single
// predicate so the booking path and the recommendation path cannot diverge.
func (s Span) Overlaps(other Span) bool {
	return s.Start.Before(other.End) && s.End.After(other.Start)
}

// OverlapsAny reports whether the span intersects any of the provided spans.
func (s Span) OverlapsAny(others []Span) bool {
	for _, other := range others {
		if s.Overlaps(other) {
			return true
		}
	}
	return false
}
