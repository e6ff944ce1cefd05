package matcher

import (
	"unicode"
	"unicode/utf8"

	"github.com/dl/gohighlight/internal/text"
)

// chunkSize bounds how much of the span is read from the document at once.
const chunkSize = 32 << 10

// literalCursor finds case-insensitive occurrences of a fixed string, reading
// the span in overlapping chunks so large spans are never materialized whole.
type literalCursor struct {
	doc     text.Document
	pattern string
	overlap int // extra bytes read past a chunk so matches straddling it are seen
	end     int // span end

	base   int    // document offset of buf[0]
	buf    string // current chunk plus overlap
	limit  int    // matches must start before buf[limit]
	pos    int    // next search position within buf
	loaded bool
}

func newLiteralCursor(doc text.Document, pattern string, from, to int) *literalCursor {
	from, to = clampSpan(doc, from, to)
	return &literalCursor{
		doc:     doc,
		pattern: pattern,
		// Simple folding can grow a rune up to 3x (k -> U+212A).
		overlap: 3*len(pattern) + utf8.UTFMax,
		end:     to,
		base:    from,
	}
}

func (c *literalCursor) Next() (text.Range, bool) {
	for {
		if !c.loaded {
			if c.base >= c.end {
				return text.Range{}, false
			}
			c.load()
		}
		for c.pos < c.limit {
			i, n := indexFold(c.buf[c.pos:], c.pattern, c.limit-c.pos)
			if i < 0 {
				c.pos = c.limit
				break
			}
			start := c.pos + i
			c.pos = start + n
			return text.Range{From: c.base + start, To: c.base + start + n}, true
		}
		// Resume where the scan stopped; a match may have run past limit.
		c.base += c.pos
		c.loaded = false
	}
}

func (c *literalCursor) load() {
	stop := min(c.end, c.base+chunkSize+c.overlap)
	c.buf = c.doc.Slice(c.base, stop)
	c.limit = min(chunkSize, len(c.buf))
	if stop == c.end {
		c.limit = len(c.buf)
	}
	c.pos = 0
	c.loaded = true
}

// indexFold returns the byte index and matched length of the first
// case-insensitive occurrence of pattern in s starting before limit.
func indexFold(s, pattern string, limit int) (int, int) {
	first, _ := utf8.DecodeRuneInString(pattern)
	for i := 0; i < limit && i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if equalFold(r, first) {
			if n, ok := foldPrefix(s[i:], pattern); ok {
				return i, n
			}
		}
		i += size
	}
	return -1, 0
}

// foldPrefix reports whether s starts with pattern under simple case folding
// and returns the number of bytes of s consumed.
func foldPrefix(s, pattern string) (int, bool) {
	n := 0
	for _, pr := range pattern {
		if n >= len(s) {
			return 0, false
		}
		sr, size := utf8.DecodeRuneInString(s[n:])
		if !equalFold(sr, pr) {
			return 0, false
		}
		n += size
	}
	return n, true
}

func equalFold(a, b rune) bool {
	if a == b {
		return true
	}
	if a < utf8.RuneSelf && b < utf8.RuneSelf {
		if 'A' <= a && a <= 'Z' {
			a += 'a' - 'A'
		}
		if 'A' <= b && b <= 'Z' {
			b += 'a' - 'A'
		}
		return a == b
	}
	for f := unicode.SimpleFold(a); f != a; f = unicode.SimpleFold(f) {
		if f == b {
			return true
		}
	}
	return false
}
