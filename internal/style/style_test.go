package style

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/dl/gohighlight/internal/query"
)

func TestCompile(t *testing.T) {
	tests := []struct {
		style query.Style
		color string
		want  string
	}{
		{query.StyleBackground, "default", "background-color: var(--text-accent)"},
		{query.StyleBackground, "#ff0000", "background-color: #ff0000"},
		{query.StyleBold, "#00ff00", "font-weight: bold; color: #00ff00"},
		{query.StyleColor, "red", "color: red"},
		{query.StyleUnderlineWavy, "default", "text-decoration: underline wavy; text-decoration-thickness: 1px; text-decoration-color: var(--text-accent)"},
		{query.StyleUnderlineDotted, "#123456", "text-decoration: underline dotted; text-decoration-color: #123456"},
		{query.StyleStrikethrough, "default", "text-decoration: line-through; text-decoration-color: var(--text-accent)"},
		{query.StyleBorderDashed, "#abc", "border: 1px dashed #abc; border-radius: 3px"},
		{"overline", "#abc", "text-decoration: overline; text-decoration-color: #abc"},
	}
	for _, tt := range tests {
		t.Run(string(tt.style)+"/"+tt.color, func(t *testing.T) {
			if got := Compile(tt.style, tt.color); got != tt.want {
				t.Errorf("Compile() = %q, want %q", got, tt.want)
			}
		})
	}
}

// Switching the color never changes which property is set.
func TestCompile_ColorOnlyDiffers(t *testing.T) {
	styles := []query.Style{
		query.StyleBackground, query.StyleUnderline, query.StyleUnderlineWavy,
		query.StyleBorder, query.StyleBorderDotted, query.StyleBold, query.StyleStrikethrough, query.StyleColor,
	}
	for _, s := range styles {
		a := Compile(s, "default")
		b := Compile(s, "#ff0000")
		if strings.ReplaceAll(a, Accent, "#ff0000") != b {
			t.Errorf("%s: %q vs %q", s, a, b)
		}
	}
}

func TestStylesheet(t *testing.T) {
	cfg := query.Default()
	cfg.Queries["todo"] = query.Query{Name: "todo", Pattern: "TODO", Style: query.StyleBackground, Color: "#ff0000", Enabled: true, TagEnabled: true}
	cfg.Queries["note"] = query.Query{Name: "note", Pattern: "NOTE", Style: query.StyleBold, Color: "default", Enabled: true, TagEnabled: true}
	cfg.Order = []string{"todo", "note"}

	want := ".todo { background-color: #ff0000 }\n.note { font-weight: bold; color: var(--text-accent) }\n"
	if got := Stylesheet(cfg); got != want {
		t.Errorf("Stylesheet() = %q, want %q", got, want)
	}
	if Stylesheet(cfg) != Stylesheet(cfg.Clone()) {
		t.Error("Stylesheet() not idempotent")
	}

	q := cfg.Queries["note"]
	q.Color = ""
	cfg.Queries["note"] = q
	if got := Stylesheet(cfg); strings.Contains(got, ".note") {
		t.Errorf("query without color emitted: %q", got)
	}
}

func TestSelectionCSS(t *testing.T) {
	if got := SelectionCSS(query.StyleDefault, "#ff0000"); got != query.DefaultSelectionCSS {
		t.Errorf("default decoration = %q", got)
	}
	if got := SelectionCSS(query.StyleBackground, "default"); got != "background-color: var(--text-accent)" {
		t.Errorf("background = %q", got)
	}
	wavy := SelectionCSS(query.StyleUnderlineWavy, "#00ff00")
	if !strings.Contains(wavy, "linear-gradient(to right, #00ff00 0%") || !strings.HasSuffix(wavy, "text-decoration-color: #00ff00;") {
		t.Errorf("wavy = %q", wavy)
	}
}

func TestTerminalColor(t *testing.T) {
	if got := terminalColor("#42188038"); got != lipgloss.TerminalColor(lipgloss.Color("#421880")) {
		t.Errorf("alpha not stripped: %v", got)
	}
	if got := terminalColor("default"); got != lipgloss.TerminalColor(AccentColor) {
		t.Errorf("default = %v", got)
	}
}

func TestStylesheet_InactiveQueries(t *testing.T) {
	cfg := query.Default()
	cfg.Queries["a"] = query.Query{Name: "a", Pattern: "a", Style: query.StyleBackground, Color: "#f00", Enabled: false, TagEnabled: true}
	cfg.Queries["b"] = query.Query{Name: "b", Pattern: "b", Style: query.StyleBackground, Color: "#0f0", Enabled: true, TagEnabled: false}
	cfg.Queries["c"] = query.Query{Name: "c", Pattern: "c", Style: query.StyleBackground, Color: "#00f", Enabled: true, TagEnabled: true}
	cfg.Order = []string{"a", "b", "c"}

	want := ".c { background-color: #00f }\n"
	if got := Stylesheet(cfg); got != want {
		t.Errorf("Stylesheet() = %q, want %q", got, want)
	}

	cfg.Switch = false
	if got := Stylesheet(cfg); got != want {
		t.Errorf("Stylesheet() with switch off = %q, want %q", got, want)
	}
}
