// Package query holds the immutable configuration snapshot consumed by the
// highlighting engines: named static queries, their paint order, the
// selection-highlight settings and the global switch.
package query

import (
	"slices"
	"time"
)

// Style is a decoration style choice. Unknown values are passed through to the
// style compiler verbatim.
type Style string

const (
	StyleDefault         Style = "default"
	StyleBackground      Style = "background"
	StyleUnderline       Style = "underline"
	StyleUnderlineDotted Style = "underline dotted"
	StyleUnderlineDashed Style = "underline dashed"
	StyleUnderlineWavy   Style = "underline wavy"
	StyleBorder          Style = "border"
	StyleBorderDotted    Style = "border dotted"
	StyleBorderDashed    Style = "border dashed"
	StyleBold            Style = "bold"
	StyleStrikethrough   Style = "line-through"
	StyleColor           Style = "color"
)

// MarkTarget names a structural unit a query decorates.
type MarkTarget string

const (
	MarkMatch MarkTarget = "match"
	MarkLine  MarkTarget = "line"
)

// DefaultColor resolves to the theme accent instead of a literal color.
const DefaultColor = "default"

// DefaultTag is the group for queries created without one.
const DefaultTag = "#unsorted"

const (
	// MinHighlightDelay is the floor applied to SelectionConfig.HighlightDelay.
	MinHighlightDelay = 200 * time.Millisecond
	// MaxSelectionLength caps range-mode selections.
	MaxSelectionLength = 200
)

// Query is one named static highlighter. All fields are required; defaulting
// happens once at load time.
type Query struct {
	Name       string       `json:"name" yaml:"name"`
	Pattern    string       `json:"pattern" yaml:"pattern"`
	Regex      bool         `json:"regex" yaml:"regex"`
	Style      Style        `json:"decoration" yaml:"decoration"`
	Color      string       `json:"color" yaml:"color"`
	Marks      []MarkTarget `json:"mark" yaml:"mark"`
	Enabled    bool         `json:"enabled" yaml:"enabled"`
	Tag        string       `json:"tag" yaml:"tag"`
	TagEnabled bool         `json:"tag_enabled" yaml:"tag_enabled"`
}

// MarksLine reports whether the query decorates whole lines.
func (q Query) MarksLine() bool { return slices.Contains(q.Marks, MarkLine) }

// MarksMatch reports whether the query decorates matched text. An empty mark
// set means match.
func (q Query) MarksMatch() bool { return len(q.Marks) == 0 || slices.Contains(q.Marks, MarkMatch) }

// Active reports whether the query is enabled both individually and by tag.
func (q Query) Active() bool { return q.Enabled && q.TagEnabled }

func (q Query) clone() Query {
	q.Marks = slices.Clone(q.Marks)
	return q
}

// SelectionConfig configures the selection-match highlighter.
type SelectionConfig struct {
	HighlightWordAroundCursor bool          `json:"highlight_word_around_cursor" yaml:"highlight_word_around_cursor"`
	HighlightSelectedText     bool          `json:"highlight_selected_text" yaml:"highlight_selected_text"`
	MinSelectionLength        int           `json:"min_selection_length" yaml:"min_selection_length"`
	MaxMatches                int           `json:"max_matches" yaml:"max_matches"`
	HighlightDelay            time.Duration `json:"highlight_delay" yaml:"highlight_delay"`
	IgnoredWords              []string      `json:"ignored_words" yaml:"ignored_words"`
	Color                     string        `json:"color" yaml:"color"`
	Decoration                Style         `json:"decoration" yaml:"decoration"`
	// CSS is the inline style applied to every selection match.
	CSS string `json:"css" yaml:"css"`
}

// Delay returns HighlightDelay floored at MinHighlightDelay.
func (s SelectionConfig) Delay() time.Duration {
	return max(s.HighlightDelay, MinHighlightDelay)
}

// Config is the full configuration snapshot. Treat it as immutable once handed
// to an engine; every edit goes through a method returning a new *Config.
type Config struct {
	// Switch gates all static highlighting.
	Switch    bool             `json:"on_off_switch" yaml:"on_off_switch"`
	Queries   map[string]Query `json:"queries" yaml:"queries"`
	Order     []string         `json:"query_order" yaml:"query_order"`
	Selection SelectionConfig  `json:"selection" yaml:"selection"`
}

// Clone returns a deep copy of c.
func (c *Config) Clone() *Config {
	n := &Config{
		Switch:    c.Switch,
		Queries:   make(map[string]Query, len(c.Queries)),
		Order:     slices.Clone(c.Order),
		Selection: c.Selection,
	}
	n.Selection.IgnoredWords = slices.Clone(c.Selection.IgnoredWords)
	for k, q := range c.Queries {
		n.Queries[k] = q.clone()
	}
	return n
}

// Ordered returns every query in paint order.
func (c *Config) Ordered() []Query {
	out := make([]Query, 0, len(c.Order))
	for _, name := range c.Order {
		if q, ok := c.Queries[name]; ok {
			out = append(out, q)
		}
	}
	return out
}

// Active returns the queries that should run, in paint order. It is empty when
// the global switch is off.
func (c *Config) Active() []Query {
	if !c.Switch {
		return nil
	}
	var out []Query
	for _, q := range c.Ordered() {
		if q.Active() {
			out = append(out, q)
		}
	}
	return out
}

// Tags returns the distinct tags in query order.
func (c *Config) Tags() []string {
	var tags []string
	for _, q := range c.Ordered() {
		if !slices.Contains(tags, q.Tag) {
			tags = append(tags, q.Tag)
		}
	}
	return tags
}
