package highlight

import (
	"io"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/log"

	"github.com/dl/gohighlight/internal/matcher"
	"github.com/dl/gohighlight/internal/query"
	"github.com/dl/gohighlight/internal/text"
)

func orDiscard(logger *log.Logger) *log.Logger {
	if logger == nil {
		return log.New(io.Discard)
	}
	return logger
}

// SelectionEngine highlights other occurrences of the word under the caret or
// of the selected text.
type SelectionEngine struct {
	log   *log.Logger
	cache *matcher.Cache
}

// NewSelectionEngine creates an engine. Both arguments may be nil.
func NewSelectionEngine(logger *log.Logger, cache *matcher.Cache) *SelectionEngine {
	return &SelectionEngine{log: orDiscard(logger), cache: cache}
}

// selectionQuery is what a selection state resolves to.
type selectionQuery struct {
	text   string
	target text.Range // the word or selection being matched
	check  text.Categorizer
	min    int // fewer matches than this yields nothing
}

// Compute returns the selection-match decorations for v, or nil when nothing
// should be highlighted. The result is all-or-nothing: too many or too few
// matches both yield nil.
func (e *SelectionEngine) Compute(v View, cfg query.SelectionConfig) (Set, error) {
	doc := v.Doc()
	spans := v.VisibleRanges()
	if err := checkViewport(doc, spans); err != nil {
		return nil, err
	}
	q, ok := resolveSelection(v, cfg)
	if !ok {
		return nil, nil
	}

	css := cfg.CSS
	if css == "" {
		css = query.DefaultSelectionCSS
	}
	var out Set
	for _, span := range spans {
		c, err := e.cache.NewCursor(doc, q.text, false, span.From, span.To)
		if err != nil {
			e.log.Debug("selection cursor", "pattern", q.text, "err", err)
			return nil, nil
		}
		for {
			m, ok := c.Next()
			if !ok {
				break
			}
			if q.check != nil && !atWordBoundary(doc, m, q.check) {
				continue
			}
			primary := m.From <= q.target.From && m.To >= q.target.To
			if !primary && m.From < q.target.To && m.To > q.target.From {
				continue
			}
			out = append(out, Decoration{
				From:     m.From,
				To:       m.To,
				Style:    css,
				Contents: trimmed(doc, m),
				Primary:  primary,
			})
			if cfg.MaxMatches > 0 && len(out) > cfg.MaxMatches {
				e.log.Debug("selection matches over limit", "pattern", q.text, "max", cfg.MaxMatches)
				return nil, nil
			}
		}
	}
	if len(out) < q.min {
		return nil, nil
	}
	return out, nil
}

func resolveSelection(v View, cfg query.SelectionConfig) (selectionQuery, bool) {
	sel := v.Selection()
	if len(sel.Ranges) != 1 {
		return selectionQuery{}, false
	}
	doc := v.Doc()
	r := sel.MainRange()

	if r.Empty() {
		if !cfg.HighlightWordAroundCursor {
			return selectionQuery{}, false
		}
		word, ok := v.WordAt(r.From)
		if !ok {
			return selectionQuery{}, false
		}
		s := doc.Slice(word.From, word.To)
		if slices.Contains(cfg.IgnoredWords, strings.ToLower(s)) || utf8.RuneCountInString(s) < cfg.MinSelectionLength {
			return selectionQuery{}, false
		}
		return selectionQuery{text: s, target: r, check: v.Categorizer(r.From), min: 2}, true
	}

	if !cfg.HighlightSelectedText {
		return selectionQuery{}, false
	}
	s := doc.Slice(r.From, r.To)
	n := utf8.RuneCountInString(s)
	if n < cfg.MinSelectionLength || n > query.MaxSelectionLength {
		return selectionQuery{}, false
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return selectionQuery{}, false
	}
	return selectionQuery{text: s, target: r, min: 1}, true
}

// atWordBoundary reports whether m is not glued to word characters on
// either side. Document edges count as boundaries.
func atWordBoundary(doc text.Document, m text.Range, check text.Categorizer) bool {
	if b := text.RuneBefore(doc, m.From); b != "" && check(b) == text.CategoryWord {
		return false
	}
	if a := text.RuneAfter(doc, m.To); a != "" && check(a) == text.CategoryWord {
		return false
	}
	return true
}
