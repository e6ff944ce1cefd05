// Package style compiles query decoration choices into CSS declaration blocks
// and a single stylesheet keyed by query name.
package style

import (
	"fmt"
	"strings"

	"github.com/dl/gohighlight/internal/query"
)

// Accent is the theme token substituted for query.DefaultColor so compiled
// styles follow live theme changes.
const Accent = "var(--text-accent)"

// ResolveColor maps query.DefaultColor to the theme accent.
func ResolveColor(color string) string {
	if color == query.DefaultColor {
		return Accent
	}
	return color
}

// Compile returns the declaration block for a decoration style and color.
// Unknown styles are emitted as a raw text-decoration value.
func Compile(s query.Style, color string) string {
	c := ResolveColor(color)
	switch s {
	case query.StyleBackground:
		return "background-color: " + c
	case query.StyleBold:
		return "font-weight: bold; color: " + c
	case query.StyleColor:
		return "color: " + c
	case query.StyleUnderlineWavy:
		return "text-decoration: underline wavy; text-decoration-thickness: 1px; text-decoration-color: " + c
	case query.StyleBorder:
		return "border: 1px solid " + c + "; border-radius: 3px"
	case query.StyleBorderDotted, query.StyleBorderDashed:
		kind := strings.TrimPrefix(string(s), "border ")
		return fmt.Sprintf("border: 1px %s %s; border-radius: 3px", kind, c)
	}
	return fmt.Sprintf("text-decoration: %s; text-decoration-color: %s", s, c)
}

// Stylesheet concatenates one `.name { ... }` rule per active query in paint
// order. Queries without a color are skipped. The global switch is not
// consulted: with it off no decorations carry the classes.
func Stylesheet(cfg *query.Config) string {
	var b strings.Builder
	for _, q := range cfg.Ordered() {
		if !q.Active() || q.Color == "" {
			continue
		}
		fmt.Fprintf(&b, ".%s { %s }\n", q.Name, Compile(q.Style, q.Color))
	}
	return b.String()
}

// SelectionCSS returns the inline style for selection matches.
func SelectionCSS(decoration query.Style, color string) string {
	if decoration == "" || decoration == query.StyleDefault {
		return query.DefaultSelectionCSS
	}
	c := ResolveColor(color)
	if decoration == query.StyleUnderlineWavy {
		return fmt.Sprintf("background-image: linear-gradient(to right, %[1]s 0%%, %[1]s 25%%, transparent 25%%, transparent 50%%); "+
			"background-size: 4px 1px; background-repeat: repeat-x; background-position: bottom; "+
			"text-decoration: underline wavy; text-decoration-thickness: 1px; text-decoration-color: %[1]s;", c)
	}
	return Compile(decoration, color)
}
