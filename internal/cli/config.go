package cli

import (
	"fmt"
	"strings"

	"github.com/dl/gohighlight/internal/text"
)

// ColorMode controls when colored output is used.
type ColorMode int

const (
	ColorAuto   ColorMode = iota // color when stdout is a terminal
	ColorAlways                  // always use color
	ColorNever                   // never use color
)

// ParseColorMode parses the --color flag value.
func ParseColorMode(s string) (ColorMode, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return ColorAuto, nil
	case "always":
		return ColorAlways, nil
	case "never":
		return ColorNever, nil
	}
	return ColorAuto, fmt.Errorf("invalid color mode %q (want auto, always or never)", s)
}

// Config holds all configuration for rendering or previewing documents.
type Config struct {
	SettingsPath  string
	Color         ColorMode
	LineNumbers   bool
	OnlyDecorated bool
	CountOnly     bool
	JSONOutput    bool
	Workers       int
	NoIgnore      bool
	Hidden        bool
	Extensions    []string
	// Cursor is the caret offset used for selection highlighting; negative
	// disables it. SelectLen > 0 selects that many bytes from Cursor.
	Cursor        int
	SelectLen     int
	MmapThreshold int64
	Paths         []string
}

// Validate checks that the config is valid and returns an error if not.
func (c *Config) Validate() error {
	if c.CountOnly && c.JSONOutput {
		return fmt.Errorf("cannot use -c (count) and --json together")
	}
	if c.CountOnly && c.OnlyDecorated {
		return fmt.Errorf("cannot use -c (count) and -o (only-decorated) together")
	}
	if c.Workers < 0 {
		return fmt.Errorf("invalid worker count: %d", c.Workers)
	}
	if c.SelectLen < 0 {
		return fmt.Errorf("invalid selection length: %d", c.SelectLen)
	}
	if c.SelectLen > 0 && c.Cursor < 0 {
		return fmt.Errorf("--select needs --cursor")
	}
	for _, ext := range c.Extensions {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			return fmt.Errorf("invalid extension %q (want e.g. .md)", ext)
		}
	}
	return nil
}

// Selection returns the preview selection clamped to a document of length
// n, and false when selection highlighting is off.
func (c *Config) Selection(n int) (text.Selection, bool) {
	if c.Cursor < 0 {
		return text.Selection{}, false
	}
	from := min(c.Cursor, n)
	to := min(c.Cursor+c.SelectLen, n)
	if from == to {
		return text.Cursor(from), true
	}
	return text.Select(from, to), true
}

func (c *Config) extensions() []string {
	out := make([]string, len(c.Extensions))
	for i, ext := range c.Extensions {
		out[i] = strings.ToLower(ext)
	}
	return out
}
