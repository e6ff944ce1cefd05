package settings

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dl/gohighlight/internal/query"
	"github.com/dl/gohighlight/internal/style"
)

// document is the on-disk layout. Legacy keys are read through their
// mapstructure tags and never written back.
type document struct {
	Switch    bool             `mapstructure:"on_off_switch" yaml:"on_off_switch" json:"on_off_switch" toml:"on_off_switch"`
	Order     []string         `mapstructure:"query_order" yaml:"query_order" json:"query_order" toml:"query_order"`
	Queries   map[string]entry `mapstructure:"queries" yaml:"queries" json:"queries" toml:"queries"`
	Selection selectionDoc     `mapstructure:"selection" yaml:"selection" json:"selection" toml:"selection"`
}

type entry struct {
	Name       string   `mapstructure:"name" yaml:"name" json:"name" toml:"name"`
	Pattern    string   `mapstructure:"pattern" yaml:"pattern" json:"pattern" toml:"pattern"`
	Regex      bool     `mapstructure:"regex" yaml:"regex" json:"regex" toml:"regex"`
	Decoration string   `mapstructure:"decoration" yaml:"decoration" json:"decoration" toml:"decoration"`
	Color      string   `mapstructure:"color" yaml:"color" json:"color" toml:"color"`
	Mark       []string `mapstructure:"mark" yaml:"mark" json:"mark" toml:"mark"`
	Enabled    *bool    `mapstructure:"enabled" yaml:"enabled" json:"enabled" toml:"enabled"`
	Tag        string   `mapstructure:"tag" yaml:"tag" json:"tag" toml:"tag"`
	TagEnabled *bool    `mapstructure:"tag_enabled" yaml:"tag_enabled" json:"tag_enabled" toml:"tag_enabled"`

	Class              string `mapstructure:"class" yaml:"-" json:"-" toml:"-"`
	Query              string `mapstructure:"query" yaml:"-" json:"-" toml:"-"`
	StaticColor        string `mapstructure:"staticColor" yaml:"-" json:"-" toml:"-"`
	StaticDecoration   string `mapstructure:"staticDecoration" yaml:"-" json:"-" toml:"-"`
	HighlighterEnabled *bool  `mapstructure:"highlighterEnabled" yaml:"-" json:"-" toml:"-"`
	LegacyTagEnabled   *bool  `mapstructure:"tagEnabled" yaml:"-" json:"-" toml:"-"`
}

type selectionDoc struct {
	HighlightWordAroundCursor bool   `mapstructure:"highlight_word_around_cursor" yaml:"highlight_word_around_cursor" json:"highlight_word_around_cursor" toml:"highlight_word_around_cursor"`
	HighlightSelectedText     bool   `mapstructure:"highlight_selected_text" yaml:"highlight_selected_text" json:"highlight_selected_text" toml:"highlight_selected_text"`
	MinSelectionLength        int    `mapstructure:"min_selection_length" yaml:"min_selection_length" json:"min_selection_length" toml:"min_selection_length"`
	MaxMatches                int    `mapstructure:"max_matches" yaml:"max_matches" json:"max_matches" toml:"max_matches"`
	HighlightDelay            any    `mapstructure:"highlight_delay" yaml:"highlight_delay" json:"highlight_delay" toml:"highlight_delay"`
	IgnoredWords              any    `mapstructure:"ignored_words" yaml:"ignored_words" json:"ignored_words" toml:"ignored_words"`
	Color                     string `mapstructure:"color" yaml:"color" json:"color" toml:"color"`
	Decoration                string `mapstructure:"decoration" yaml:"decoration" json:"decoration" toml:"decoration"`
	CSS                       string `mapstructure:"css" yaml:"css" json:"css" toml:"css"`
}

// legacyKeys maps the flat plugin layout onto the current one.
var legacyKeys = [][2]string{
	{"onOffSwitch", "on_off_switch"},
	{"staticHighlighter.queries", "queries"},
	{"staticHighlighter.queryOrder", "query_order"},
	{"selectionHighlighter.highlightWordAroundCursor", "selection.highlight_word_around_cursor"},
	{"selectionHighlighter.highlightSelectedText", "selection.highlight_selected_text"},
	{"selectionHighlighter.minSelectionLength", "selection.min_selection_length"},
	{"selectionHighlighter.maxMatches", "selection.max_matches"},
	{"selectionHighlighter.highlightDelay", "selection.highlight_delay"},
	{"selectionHighlighter.ignoredWords", "selection.ignored_words"},
	{"selectionHighlighter.selectionColor", "selection.color"},
	{"selectionHighlighter.selectionDecoration", "selection.decoration"},
	{"selectionHighlighter.css", "selection.css"},
}

func first(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstBool(def bool, vals ...*bool) bool {
	for _, v := range vals {
		if v != nil {
			return *v
		}
	}
	return def
}

// migrate turns a stored entry into a fully populated query.
func (e entry) migrate(key string) query.Query {
	q := query.Query{
		Name:       first(e.Name, e.Class, key),
		Pattern:    first(e.Pattern, e.Query),
		Regex:      e.Regex,
		Style:      query.Style(first(e.Decoration, e.StaticDecoration)),
		Color:      first(e.Color, e.StaticColor),
		Enabled:    firstBool(true, e.Enabled, e.HighlighterEnabled),
		Tag:        e.Tag,
		TagEnabled: firstBool(true, e.TagEnabled, e.LegacyTagEnabled),
	}
	for _, m := range e.Mark {
		q.Marks = append(q.Marks, query.MarkTarget(strings.ToLower(strings.TrimSpace(m))))
	}
	return q
}

func entryOf(q query.Query) entry {
	e := entry{
		Name:       q.Name,
		Pattern:    q.Pattern,
		Regex:      q.Regex,
		Decoration: string(q.Style),
		Color:      q.Color,
		Enabled:    &q.Enabled,
		Tag:        q.Tag,
		TagEnabled: &q.TagEnabled,
	}
	for _, m := range q.Marks {
		e.Mark = append(e.Mark, string(m))
	}
	return e
}

// parseDelay accepts a duration string or a number of milliseconds.
func parseDelay(v any) (time.Duration, error) {
	switch d := v.(type) {
	case nil:
		return 0, nil
	case time.Duration:
		return d, nil
	case int:
		return time.Duration(d) * time.Millisecond, nil
	case int64:
		return time.Duration(d) * time.Millisecond, nil
	case float64:
		return time.Duration(d * float64(time.Millisecond)), nil
	case string:
		d = strings.TrimSpace(d)
		if ms, err := strconv.Atoi(d); err == nil {
			return time.Duration(ms) * time.Millisecond, nil
		}
		return time.ParseDuration(d)
	}
	return 0, fmt.Errorf("invalid highlight delay %v", v)
}

// parseWords accepts a list or a comma-separated string.
func parseWords(v any) ([]string, error) {
	switch w := v.(type) {
	case nil:
		return nil, nil
	case string:
		return query.SplitWords(w), nil
	case []string:
		return w, nil
	case []any:
		out := make([]string, 0, len(w))
		for _, s := range w {
			str, ok := s.(string)
			if !ok {
				return nil, fmt.Errorf("invalid ignored word %v", s)
			}
			out = append(out, str)
		}
		return out, nil
	}
	return nil, fmt.Errorf("invalid ignored words %v", v)
}

func (s selectionDoc) migrate() (query.SelectionConfig, error) {
	delay, err := parseDelay(s.HighlightDelay)
	if err != nil {
		return query.SelectionConfig{}, err
	}
	words, err := parseWords(s.IgnoredWords)
	if err != nil {
		return query.SelectionConfig{}, err
	}
	out := query.SelectionConfig{
		HighlightWordAroundCursor: s.HighlightWordAroundCursor,
		HighlightSelectedText:     s.HighlightSelectedText,
		MinSelectionLength:        s.MinSelectionLength,
		MaxMatches:                s.MaxMatches,
		HighlightDelay:            delay,
		IgnoredWords:              words,
		Color:                     first(s.Color, query.DefaultColor),
		Decoration:                query.Style(first(s.Decoration, string(query.StyleDefault))),
	}
	// A stored style sheet is kept only when no decoration was chosen.
	if s.Decoration == "" && s.CSS != "" {
		out.CSS = s.CSS
	} else {
		out.CSS = style.SelectionCSS(out.Decoration, out.Color)
	}
	return out, nil
}

func documentOf(cfg *query.Config) document {
	s := cfg.Selection
	doc := document{
		Switch:  cfg.Switch,
		Order:   cfg.Order,
		Queries: make(map[string]entry, len(cfg.Queries)),
		Selection: selectionDoc{
			HighlightWordAroundCursor: s.HighlightWordAroundCursor,
			HighlightSelectedText:     s.HighlightSelectedText,
			MinSelectionLength:        s.MinSelectionLength,
			MaxMatches:                s.MaxMatches,
			HighlightDelay:            s.HighlightDelay.String(),
			IgnoredWords:              s.IgnoredWords,
			Color:                     s.Color,
			Decoration:                string(s.Decoration),
			CSS:                       s.CSS,
		},
	}
	if doc.Order == nil {
		doc.Order = []string{}
	}
	if s.IgnoredWords == nil {
		doc.Selection.IgnoredWords = []string{}
	}
	for name, q := range cfg.Queries {
		doc.Queries[name] = entryOf(q)
	}
	return doc
}
