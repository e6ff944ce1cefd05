// Package matcher produces lazy, left-to-right match cursors over a bounded
// span of a host document, for literal (case-insensitive) and regex patterns.
package matcher

import (
	"errors"
	"fmt"

	"github.com/dl/gohighlight/internal/text"
)

// ErrEmptyPattern is returned for a zero-length pattern.
var ErrEmptyPattern = errors.New("empty pattern")

// PatternError reports a pattern that failed to compile. Callers skip the
// owning query for the current cycle.
type PatternError struct {
	Pattern string
	Err     error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("compile %q: %v", e.Pattern, e.Err)
}

func (e *PatternError) Unwrap() error { return e.Err }

// Cursor yields successive matches in strictly increasing, non-overlapping
// order. It has no match bound; callers stop consuming when they have enough.
type Cursor interface {
	// Next returns the next match, or false when the span is exhausted.
	Next() (text.Range, bool)
}

// NewCursor creates a cursor over doc[from:to). Literal patterns match
// case-insensitively; regex patterns accept an optional /body/flags form.
func NewCursor(doc text.Document, pattern string, isRegex bool, from, to int) (Cursor, error) {
	if isRegex {
		p, err := compileRegex(pattern)
		if err != nil {
			return nil, err
		}
		return newRegexCursor(doc, p, from, to), nil
	}
	if pattern == "" {
		return nil, &PatternError{Pattern: pattern, Err: ErrEmptyPattern}
	}
	return newLiteralCursor(doc, pattern, from, to), nil
}

// Collect drains c. Intended for tests and small spans.
func Collect(c Cursor) []text.Range {
	var out []text.Range
	for {
		r, ok := c.Next()
		if !ok {
			return out
		}
		out = append(out, r)
	}
}

func clampSpan(doc text.Document, from, to int) (int, int) {
	n := doc.Len()
	from = max(0, min(from, n))
	to = max(from, min(to, n))
	return from, to
}
