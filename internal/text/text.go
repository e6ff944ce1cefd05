// Package text models the host editor's document and selection as seen by the
// highlighting engines. Offsets are byte offsets into UTF-8 text.
package text

import "fmt"

// Range is a half-open [From, To) span in document offset space.
type Range struct {
	From int
	To   int
}

// Empty reports whether the range covers no text.
func (r Range) Empty() bool { return r.From == r.To }

// Len returns To - From.
func (r Range) Len() int { return r.To - r.From }

// Contains reports whether r fully covers o.
func (r Range) Contains(o Range) bool { return r.From <= o.From && o.To <= r.To }

func (r Range) String() string { return fmt.Sprintf("[%d,%d)", r.From, r.To) }

// Line describes one physical line. To excludes the line break.
type Line struct {
	Number int // 1-based
	From   int
	To     int
}

// Document is the read-only document accessor supplied by the host.
type Document interface {
	// Len returns the total document length.
	Len() int
	// Slice returns the text in [from, to). Callers pass valid offsets.
	Slice(from, to int) string
	// LineAt returns the line containing pos.
	LineAt(pos int) Line
}

// Selection is the host's current selection state. Main indexes Ranges.
type Selection struct {
	Ranges []Range
	Main   int
}

// Cursor returns a single-caret selection at pos.
func Cursor(pos int) Selection {
	return Selection{Ranges: []Range{{From: pos, To: pos}}}
}

// Select returns a single-range selection.
func Select(from, to int) Selection {
	if from > to {
		from, to = to, from
	}
	return Selection{Ranges: []Range{{From: from, To: to}}}
}

// MainRange returns the primary range, or an empty range at 0 when there is none.
func (s Selection) MainRange() Range {
	if s.Main < 0 || s.Main >= len(s.Ranges) {
		return Range{}
	}
	return s.Ranges[s.Main]
}

// Equal reports whether two selections cover the same ranges.
func (s Selection) Equal(o Selection) bool {
	if s.Main != o.Main || len(s.Ranges) != len(o.Ranges) {
		return false
	}
	for i := range s.Ranges {
		if s.Ranges[i] != o.Ranges[i] {
			return false
		}
	}
	return true
}
