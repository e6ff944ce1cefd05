package text

import (
	"sort"
	"strings"
	"sync"
)

// Doc is a string-backed Document with a lazily built line index.
type Doc struct {
	text       string
	once       sync.Once
	lineStarts []int // byte offset of each line start; built on first LineAt
}

// NewDoc wraps s as a Document.
func NewDoc(s string) *Doc {
	return &Doc{text: s}
}

func (d *Doc) Len() int { return len(d.text) }

// String returns the full document text.
func (d *Doc) String() string { return d.text }

// Slice clamps out-of-range offsets instead of panicking.
func (d *Doc) Slice(from, to int) string {
	from = clamp(from, 0, len(d.text))
	to = clamp(to, from, len(d.text))
	return d.text[from:to]
}

func (d *Doc) LineAt(pos int) Line {
	d.once.Do(d.index)
	pos = clamp(pos, 0, len(d.text))
	// Index of the last line start <= pos.
	i := sort.Search(len(d.lineStarts), func(i int) bool { return d.lineStarts[i] > pos }) - 1
	from := d.lineStarts[i]
	to := len(d.text)
	if i+1 < len(d.lineStarts) {
		to = d.lineStarts[i+1] - 1
	}
	return Line{Number: i + 1, From: from, To: to}
}

// Lines returns the number of lines in the document.
func (d *Doc) Lines() int {
	d.once.Do(d.index)
	return len(d.lineStarts)
}

func (d *Doc) index() {
	starts := make([]int, 1, strings.Count(d.text, "\n")+1)
	for off := 0; ; {
		i := strings.IndexByte(d.text[off:], '\n')
		if i < 0 {
			break
		}
		off += i + 1
		starts = append(starts, off)
	}
	d.lineStarts = starts
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
