package output

import (
	"github.com/dl/gohighlight/internal/highlight"
	"github.com/dl/gohighlight/internal/text"
)

// Result is one highlighted document ready for rendering.
type Result struct {
	Path   string
	Doc    text.Document
	Layers highlight.Layers
	Err    error
}

// Count returns the number of token decorations.
func (r *Result) Count() int { return len(r.Layers.Token) }

// HasMatch returns true if any layer carries a decoration.
func (r *Result) HasMatch() bool { return !r.Layers.Empty() }
