// Package highlight computes decoration sets for the visible part of a
// document: selection matches and static query matches.
package highlight

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/dl/gohighlight/internal/syntax"
	"github.com/dl/gohighlight/internal/text"
)

// ErrBadViewport is returned when the host reports visible ranges that are
// out of bounds, inverted or not ascending and disjoint.
var ErrBadViewport = errors.New("bad viewport")

// Decoration is a styled half-open range. Line decorations are zero-length
// at the start of their line.
type Decoration struct {
	From     int    `json:"from"`
	To       int    `json:"to"`
	Class    string `json:"class,omitempty"`
	Style    string `json:"style,omitempty"`
	Contents string `json:"data-contents,omitempty"`
	Primary  bool   `json:"primary,omitempty"`
}

// Attributes returns the rendering attributes as the host applies them.
func (d Decoration) Attributes() map[string]string {
	attrs := make(map[string]string, 3)
	if d.Class != "" {
		attrs["class"] = d.Class
	}
	if d.Style != "" {
		attrs["style"] = d.Style
	}
	if d.Contents != "" {
		attrs["data-contents"] = d.Contents
	}
	return attrs
}

// Range returns the decorated span.
func (d Decoration) Range() text.Range { return text.Range{From: d.From, To: d.To} }

// Set is a decoration collection sorted ascending by From.
type Set []Decoration

// Sorted reports whether s is ordered by From.
func (s Set) Sorted() bool {
	return slices.IsSortedFunc(s, func(a, b Decoration) int { return a.From - b.From })
}

func (s Set) sort() {
	slices.SortStableFunc(s, func(a, b Decoration) int { return a.From - b.From })
}

// Layers are the three decoration collections, painted bottom to top.
type Layers struct {
	Line   Set `json:"line"`
	Token  Set `json:"token"`
	Widget Set `json:"widget"`
}

// Empty reports whether no layer has decorations.
func (l Layers) Empty() bool {
	return len(l.Line) == 0 && len(l.Token) == 0 && len(l.Widget) == 0
}

// View is what the engines read from the host editor.
type View interface {
	Doc() text.Document
	// VisibleRanges returns the rendered spans, disjoint and ascending.
	VisibleRanges() []text.Range
	Selection() text.Selection
	WordAt(pos int) (text.Range, bool)
	Categorizer(pos int) text.Categorizer
	Syntax() syntax.Classifier
}

// State is a plain View over a document.
type State struct {
	Text     text.Document
	Visible  []text.Range // nil means the whole document
	Sel      text.Selection
	Chars    text.Categorizer // nil means text.DefaultCategorizer
	Classify syntax.Classifier
}

func (s *State) Doc() text.Document { return s.Text }

func (s *State) VisibleRanges() []text.Range {
	if s.Visible == nil {
		return []text.Range{{From: 0, To: s.Text.Len()}}
	}
	return s.Visible
}

func (s *State) Selection() text.Selection { return s.Sel }

func (s *State) WordAt(pos int) (text.Range, bool) {
	return text.WordAt(s.Text, pos, s.Categorizer(pos))
}

func (s *State) Categorizer(int) text.Categorizer {
	if s.Chars == nil {
		return text.DefaultCategorizer
	}
	return s.Chars
}

func (s *State) Syntax() syntax.Classifier {
	if s.Classify == nil {
		return syntax.Plain{}
	}
	return s.Classify
}

// checkViewport validates host-supplied spans against the document.
func checkViewport(doc text.Document, spans []text.Range) error {
	n := doc.Len()
	prev := 0
	for i, r := range spans {
		if r.From < prev || r.From > r.To || r.To > n {
			return fmt.Errorf("%w: span %d %v (document length %d)", ErrBadViewport, i, r, n)
		}
		prev = r.To
	}
	return nil
}

func trimmed(doc text.Document, r text.Range) string {
	return strings.TrimSpace(doc.Slice(r.From, r.To))
}
