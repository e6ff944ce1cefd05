package query

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"sort"
	"strings"
)

// DefaultSelectionCSS is the inline style used when no decoration was chosen.
const DefaultSelectionCSS = "text-decoration: underline dotted var(--text-accent)"

// DefaultIgnoredWords are common words skipped by word-around-cursor mode.
var DefaultIgnoredWords = []string{
	"about", "after", "also", "and", "are", "been", "but", "can", "could", "did",
	"for", "from", "had", "has", "have", "her", "him", "his", "how", "into",
	"its", "just", "like", "more", "not", "now", "only", "our", "out", "over",
	"she", "should", "some", "than", "that", "the", "their", "them", "then",
	"there", "these", "they", "this", "through", "was", "were", "what", "when",
	"which", "who", "will", "with", "would", "you", "your",
}

// DefaultSelection returns the stock selection-highlight settings.
func DefaultSelection() SelectionConfig {
	return SelectionConfig{
		HighlightWordAroundCursor: true,
		HighlightSelectedText:     true,
		MinSelectionLength:        3,
		MaxMatches:                100,
		HighlightDelay:            MinHighlightDelay,
		IgnoredWords:              slices.Clone(DefaultIgnoredWords),
		Color:                     DefaultColor,
		Decoration:                StyleDefault,
		CSS:                       DefaultSelectionCSS,
	}
}

// Default returns an empty configuration with the switch on.
func Default() *Config {
	return &Config{
		Switch:    true,
		Queries:   map[string]Query{},
		Selection: DefaultSelection(),
	}
}

var (
	ErrDuplicateName = errors.New("highlighter name already exists")
	ErrInvalidName   = errors.New("invalid highlighter name")
	ErrUnknownQuery  = errors.New("unknown highlighter")
	ErrUnknownTag    = errors.New("unknown tag")
)

// namePattern keeps names usable as CSS class names.
var namePattern = regexp.MustCompile(`^-?[_a-zA-Z]+[_a-zA-Z0-9-]*$`)

// ValidName reports whether name can be used as a query name.
func ValidName(name string) bool { return namePattern.MatchString(name) }

// Validate checks the snapshot invariants.
func (c *Config) Validate() error {
	seen := make(map[string]bool, len(c.Order))
	for _, name := range c.Order {
		if seen[name] {
			return fmt.Errorf("query order: %w: %q", ErrDuplicateName, name)
		}
		seen[name] = true
		if _, ok := c.Queries[name]; !ok {
			return fmt.Errorf("query order: %w: %q", ErrUnknownQuery, name)
		}
	}
	for key, q := range c.Queries {
		if key != q.Name {
			return fmt.Errorf("query %q: name field %q does not match key", key, q.Name)
		}
		if !ValidName(q.Name) {
			return fmt.Errorf("%w: %q", ErrInvalidName, q.Name)
		}
		if !seen[key] {
			return fmt.Errorf("query %q: missing from query order", key)
		}
		if q.Pattern == "" {
			return fmt.Errorf("query %q: empty pattern", key)
		}
	}
	s := c.Selection
	if s.MinSelectionLength < 0 {
		return fmt.Errorf("invalid min selection length: %d", s.MinSelectionLength)
	}
	if s.MaxMatches < 0 {
		return fmt.Errorf("invalid max matches: %d", s.MaxMatches)
	}
	return nil
}

// Normalize applies load-time defaulting so the engines never see a partially
// populated record. It returns a new snapshot.
func (c *Config) Normalize() *Config {
	n := c.Clone()
	if n.Queries == nil {
		n.Queries = map[string]Query{}
	}
	for key, q := range n.Queries {
		if q.Name == "" {
			q.Name = key
		}
		if q.Tag == "" {
			q.Tag = DefaultTag
		}
		if q.Style == "" {
			q.Style = StyleBackground
		}
		if q.Color == "" {
			q.Color = DefaultColor
		}
		if len(q.Marks) == 0 {
			q.Marks = []MarkTarget{MarkMatch}
		}
		n.Queries[key] = q
	}

	// Keep only ordered names that exist; append strays in name order.
	order := n.Order[:0]
	seen := make(map[string]bool, len(n.Order))
	for _, name := range n.Order {
		if _, ok := n.Queries[name]; ok && !seen[name] {
			order = append(order, name)
			seen[name] = true
		}
	}
	var strays []string
	for name := range n.Queries {
		if !seen[name] {
			strays = append(strays, name)
		}
	}
	sort.Strings(strays)
	n.Order = append(order, strays...)

	s := &n.Selection
	s.HighlightDelay = s.Delay()
	if s.Color == "" {
		s.Color = DefaultColor
	}
	if s.Decoration == "" {
		s.Decoration = StyleDefault
	}
	if s.CSS == "" {
		s.CSS = DefaultSelectionCSS
	}
	words := s.IgnoredWords[:0]
	for _, w := range s.IgnoredWords {
		if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
			words = append(words, w)
		}
	}
	s.IgnoredWords = words
	return n
}

// SplitWords parses a comma-separated word list.
func SplitWords(s string) []string {
	var out []string
	for _, w := range strings.Split(s, ",") {
		if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
			out = append(out, w)
		}
	}
	return out
}
