package matcher

import (
	"fmt"
	"regexp"
	"strings"

	"go.elara.ws/pcre"

	"github.com/dl/gohighlight/internal/text"
)

// finder is the subset shared by RE2 and PCRE compiled patterns.
type finder interface {
	FindAllIndex(b []byte, n int) [][]int
}

// Pattern is a compiled regex query.
type Pattern struct {
	Source    string
	finder    finder
	multiline bool   // may match across line breaks; scan the span whole
	literal   string // lowered literal every match contains, or ""
	pcre      *pcre.Regexp
}

// Close releases PCRE resources. RE2 patterns need no cleanup.
func (p *Pattern) Close() {
	if p.pcre != nil {
		p.pcre.Close()
	}
}

// ParseRegexLiteral splits a "/body/flags" pattern. Patterns without the
// delimiters are returned unchanged with no flags.
func ParseRegexLiteral(s string) (body, flags string) {
	if len(s) < 2 || s[0] != '/' {
		return s, ""
	}
	end := strings.LastIndexByte(s, '/')
	if end <= 0 {
		return s, ""
	}
	flags = s[end+1:]
	if strings.Trim(flags, "gimsuy") != "" {
		return s, ""
	}
	return s[1:end], flags
}

// compileRegex compiles with RE2 and falls back to PCRE for constructs RE2
// rejects (lookaround, backreferences). The RE2 error is reported when both fail.
func compileRegex(source string) (*Pattern, error) {
	if source == "" {
		return nil, &PatternError{Pattern: source, Err: ErrEmptyPattern}
	}
	body, flags := ParseRegexLiteral(source)
	ignoreCase := strings.ContainsRune(flags, 'i')
	dotAll := strings.ContainsRune(flags, 's')
	multiline := dotAll || mayCrossLines(body)

	var prefix string
	if ignoreCase {
		prefix += "i"
	}
	if strings.ContainsRune(flags, 'm') || multiline {
		prefix += "m"
	}
	if dotAll {
		prefix += "s"
	}
	re2src := body
	if prefix != "" {
		re2src = "(?" + prefix + ")" + body
	}

	p := &Pattern{Source: source, multiline: multiline}
	re, reErr := regexp.Compile(re2src)
	if reErr == nil {
		p.finder = re
	} else {
		var opts pcre.CompileOption
		if ignoreCase {
			opts |= pcre.Caseless
		}
		if multiline {
			opts |= pcre.Multiline
		}
		if dotAll {
			opts |= pcre.DotAll
		}
		pre, err := pcre.CompileOpts(body, opts)
		if err != nil {
			return nil, &PatternError{Pattern: source, Err: reErr}
		}
		p.finder = pre
		p.pcre = pre
	}
	if !multiline {
		if lit, ok := requiredLiteral(body, ignoreCase); ok {
			p.literal = lit
		}
	}
	return p, nil
}

// mayCrossLines mirrors the usual editor heuristic: escapes that can match a
// line break, a literal newline, or a negated class force whole-span scanning.
func mayCrossLines(body string) bool {
	for _, tok := range []string{`\s`, `\W`, `\D`, `\n`, `\r`, "\n", "[^"} {
		if strings.Contains(body, tok) {
			return true
		}
	}
	return false
}

// regexCursor walks the span line by line for single-line patterns and
// incrementally over the whole span otherwise.
// Segments always extend to whole lines so anchors, word boundaries and
// lookbehind see the real context; matches reaching outside [start, end) are
// dropped.
type regexCursor struct {
	doc     text.Document
	p       *Pattern
	start   int
	pos     int // next unscanned document offset
	end     int
	pending [][]int // matches in the current segment, relative to segBase
	segBase int
}

func newRegexCursor(doc text.Document, p *Pattern, from, to int) *regexCursor {
	from, to = clampSpan(doc, from, to)
	return &regexCursor{doc: doc, p: p, start: from, pos: from, end: to}
}

// NewPatternCursor runs an already compiled pattern over doc[from:to).
func NewPatternCursor(doc text.Document, p *Pattern, from, to int) Cursor {
	return newRegexCursor(doc, p, from, to)
}

func (c *regexCursor) Next() (text.Range, bool) {
	for {
		for len(c.pending) > 0 {
			loc := c.pending[0]
			c.pending = c.pending[1:]
			from, to := c.segBase+loc[0], c.segBase+loc[1]
			if from == to || from < c.start || to > c.end {
				continue
			}
			return text.Range{From: from, To: to}, true
		}
		if c.pos >= c.end {
			return text.Range{}, false
		}
		c.scanSegment()
	}
}

func (c *regexCursor) scanSegment() {
	line := c.doc.LineAt(c.pos)
	segEnd := c.doc.LineAt(c.end).To
	next := c.end
	if !c.p.multiline {
		segEnd = line.To
		next = min(line.To, c.end) + 1
	}
	c.segBase = line.From
	seg := c.doc.Slice(line.From, segEnd)
	c.pos = next
	if c.p.literal != "" && !strings.Contains(strings.ToLower(seg), c.p.literal) {
		c.pending = nil
		return
	}
	c.pending = c.p.finder.FindAllIndex([]byte(seg), -1)
}

func (p *Pattern) String() string { return fmt.Sprintf("/%s/", p.Source) }
