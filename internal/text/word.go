package text

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// CharCategory classifies a character for word-boundary purposes.
type CharCategory int

const (
	CategoryWord CharCategory = iota
	CategorySpace
	CategoryOther
)

// Categorizer classifies the first rune of s.
type Categorizer func(s string) CharCategory

// NewCategorizer returns a Categorizer treating letters, digits, '_' and any rune
// in extra as word characters.
func NewCategorizer(extra string) Categorizer {
	return func(s string) CharCategory {
		r, _ := utf8.DecodeRuneInString(s)
		switch {
		case r == utf8.RuneError && len(s) == 0:
			return CategorySpace
		case unicode.IsSpace(r):
			return CategorySpace
		case r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r):
			return CategoryWord
		case extra != "" && strings.ContainsRune(extra, r):
			return CategoryWord
		}
		return CategoryOther
	}
}

// DefaultCategorizer has no extra word characters.
var DefaultCategorizer = NewCategorizer("")

// WordAt returns the word surrounding pos, or false when pos touches no word
// character on either side.
func WordAt(doc Document, pos int, cat Categorizer) (Range, bool) {
	line := doc.LineAt(pos)
	s := doc.Slice(line.From, line.To)
	rel := pos - line.From
	if rel < 0 || rel > len(s) {
		return Range{}, false
	}

	start := rel
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(s[:start])
		if cat(string(r)) != CategoryWord {
			break
		}
		start -= size
	}
	end := rel
	for end < len(s) {
		r, size := utf8.DecodeRuneInString(s[end:])
		if cat(string(r)) != CategoryWord {
			break
		}
		end += size
	}
	if start == end {
		return Range{}, false
	}
	return Range{From: line.From + start, To: line.From + end}, true
}

// RuneBefore returns the character ending at pos, or "" at the start of doc.
func RuneBefore(doc Document, pos int) string {
	if pos <= 0 {
		return ""
	}
	from := pos - utf8.UTFMax
	if from < 0 {
		from = 0
	}
	s := doc.Slice(from, pos)
	r, size := utf8.DecodeLastRuneInString(s)
	if r == utf8.RuneError && size <= 1 {
		return s[len(s)-1:]
	}
	return s[len(s)-size:]
}

// RuneAfter returns the character starting at pos, or "" at the end of doc.
func RuneAfter(doc Document, pos int) string {
	if pos >= doc.Len() {
		return ""
	}
	to := pos + utf8.UTFMax
	if to > doc.Len() {
		to = doc.Len()
	}
	s := doc.Slice(pos, to)
	_, size := utf8.DecodeRuneInString(s)
	return s[:size]
}
