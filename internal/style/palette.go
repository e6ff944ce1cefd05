package style

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dl/gohighlight/internal/query"
)

// AccentColor stands in for the theme accent on a terminal.
var AccentColor = lipgloss.Color("5") // magenta

// Palette maps CSS classes to terminal styles for previews.
type Palette struct {
	classes   map[string]lipgloss.Style
	Selection lipgloss.Style
	Line      lipgloss.Style
}

// NewPalette builds terminal styles for every query in cfg.
func NewPalette(cfg *query.Config) *Palette {
	p := &Palette{
		classes:   make(map[string]lipgloss.Style, len(cfg.Queries)),
		Selection: Terminal(cfg.Selection.Decoration, cfg.Selection.Color),
		Line:      lipgloss.NewStyle().Faint(true),
	}
	if cfg.Selection.Decoration == query.StyleDefault {
		p.Selection = lipgloss.NewStyle().Underline(true).Foreground(AccentColor)
	}
	for _, q := range cfg.Ordered() {
		p.classes[q.Name] = Terminal(q.Style, q.Color)
	}
	return p
}

// Class returns the style for a query name, or an unstyled style.
func (p *Palette) Class(name string) lipgloss.Style {
	if s, ok := p.classes[name]; ok {
		return s
	}
	return lipgloss.NewStyle()
}

// Terminal approximates a decoration style with ANSI attributes.
func Terminal(s query.Style, color string) lipgloss.Style {
	c := terminalColor(color)
	st := lipgloss.NewStyle()
	switch {
	case s == query.StyleBackground:
		return st.Background(c)
	case s == query.StyleBold:
		return st.Bold(true).Foreground(c)
	case s == query.StyleStrikethrough:
		return st.Strikethrough(true).Foreground(c)
	case strings.HasPrefix(string(s), "underline"):
		return st.Underline(true).Foreground(c)
	case strings.HasPrefix(string(s), "border"):
		return st.Reverse(true).Foreground(c)
	}
	return st.Foreground(c)
}

// terminalColor drops a trailing alpha channel, which terminals cannot show.
func terminalColor(color string) lipgloss.TerminalColor {
	if color == "" || color == query.DefaultColor || strings.HasPrefix(color, "var(") {
		return AccentColor
	}
	if strings.HasPrefix(color, "#") && len(color) == 9 {
		color = color[:7]
	}
	return lipgloss.Color(color)
}
