package highlight

import (
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/dl/gohighlight/internal/matcher"
	"github.com/dl/gohighlight/internal/query"
)

// StaticEngine runs every active query over the visible spans.
type StaticEngine struct {
	log   *log.Logger
	cache *matcher.Cache
}

// NewStaticEngine creates an engine. Both arguments may be nil.
func NewStaticEngine(logger *log.Logger, cache *matcher.Cache) *StaticEngine {
	return &StaticEngine{log: orDiscard(logger), cache: cache}
}

// Compute builds the line and token layers for cfg over v. Spans are
// processed in order and queries in paint order, so later queries paint over
// earlier ones where tokens overlap. A query whose pattern fails to compile is
// skipped for this cycle.
func (e *StaticEngine) Compute(v View, cfg *query.Config) (Layers, error) {
	doc := v.Doc()
	spans := v.VisibleRanges()
	if err := checkViewport(doc, spans); err != nil {
		return Layers{}, err
	}
	active := cfg.Active()
	if len(active) == 0 {
		return Layers{}, nil
	}
	tree := v.Syntax()

	var tokens Set
	lineClasses := map[int][]string{}
	for _, span := range spans {
		for _, q := range active {
			c, err := e.cache.NewCursor(doc, q.Pattern, q.Regex, span.From, span.To)
			if err != nil {
				e.log.Debug("skipping query", "query", q.Name, "pattern", q.Pattern, "err", err)
				continue
			}
			markLine, markMatch := q.MarksLine(), q.MarksMatch()
			for {
				m, ok := c.Next()
				if !ok {
					break
				}
				linePos := doc.LineAt(m.From).From
				if tree.KindAt(linePos).Excluded() {
					continue
				}
				if markLine && !slices.Contains(lineClasses[linePos], q.Name) {
					lineClasses[linePos] = append(lineClasses[linePos], q.Name)
				}
				if markMatch {
					tokens = append(tokens, Decoration{
						From:     m.From,
						To:       m.To,
						Class:    q.Name,
						Contents: trimmed(doc, m),
					})
				}
			}
		}
	}
	tokens.sort()

	lines := make(Set, 0, len(lineClasses))
	for pos, classes := range lineClasses {
		lines = append(lines, Decoration{From: pos, To: pos, Class: strings.Join(classes, " ")})
	}
	lines.sort()
	return Layers{Line: lines, Token: tokens}, nil
}
