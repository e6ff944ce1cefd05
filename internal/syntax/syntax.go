// Package syntax classifies document regions that static highlighting must leave
// alone: fenced code blocks and frontmatter.
package syntax

import (
	"bytes"
	"sort"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gmtext "github.com/yuin/goldmark/text"
)

// Kind is the classification of the innermost excluded region covering an offset.
type Kind int

const (
	None Kind = iota
	CodeBlock
	Frontmatter
)

func (k Kind) String() string {
	switch k {
	case CodeBlock:
		return "codeblock"
	case Frontmatter:
		return "frontmatter"
	default:
		return "none"
	}
}

// Excluded reports whether matches inside this kind of region are dropped.
func (k Kind) Excluded() bool { return k == CodeBlock || k == Frontmatter }

// Classifier resolves the classification at a document offset.
type Classifier interface {
	KindAt(pos int) Kind
}

// Plain classifies everything as None.
type Plain struct{}

func (Plain) KindAt(int) Kind { return None }

type region struct {
	from, to int // [from, to), whole lines
	kind     Kind
}

// Markdown is a Classifier over a parsed markdown source.
type Markdown struct {
	regions []region // sorted by from, non-overlapping
}

var parser = goldmark.New().Parser()

// ParseMarkdown builds a classifier for src.
func ParseMarkdown(src []byte) *Markdown {
	m := &Markdown{}
	body := 0
	if fm, ok := frontmatter(src); ok {
		m.regions = append(m.regions, region{from: 0, to: fm, kind: Frontmatter})
		body = fm
	}

	root := parser.Parse(gmtext.NewReader(src))
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		fcb, ok := n.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}
		if from, to, ok := fenceBounds(src, fcb); ok && from >= body {
			m.regions = append(m.regions, region{from: from, to: to, kind: CodeBlock})
		}
		return ast.WalkSkipChildren, nil
	})

	sort.Slice(m.regions, func(i, j int) bool { return m.regions[i].from < m.regions[j].from })
	return m
}

func (m *Markdown) KindAt(pos int) Kind {
	i := sort.Search(len(m.regions), func(i int) bool { return m.regions[i].to > pos })
	if i < len(m.regions) && m.regions[i].from <= pos {
		return m.regions[i].kind
	}
	return None
}

// fenceBounds returns the span from the start of the opening fence line to the
// end of the closing fence line (or EOF for an unclosed block).
func fenceBounds(src []byte, n *ast.FencedCodeBlock) (int, int, bool) {
	lines := n.Lines()
	var open int
	switch {
	case n.Info != nil:
		open = lineStart(src, n.Info.Segment.Start)
	case lines.Len() > 0:
		first := lineStart(src, lines.At(0).Start)
		if first == 0 {
			return 0, 0, false
		}
		open = lineStart(src, first-1)
	default:
		// Empty block without an info string carries no position.
		return 0, 0, false
	}

	afterBody := lineEnd(src, open)
	if lines.Len() > 0 {
		afterBody = lines.At(lines.Len() - 1).Stop
		if afterBody > 0 && src[afterBody-1] == '\n' {
			afterBody--
		}
	}
	closeFrom := afterBody + 1
	if closeFrom >= len(src) {
		return open, len(src), true
	}
	closing := bytes.TrimLeft(src[closeFrom:lineEnd(src, closeFrom)], " ")
	if bytes.HasPrefix(closing, []byte("```")) || bytes.HasPrefix(closing, []byte("~~~")) {
		return open, lineEnd(src, closeFrom), true
	}
	return open, afterBody, true
}

// frontmatter returns the end of a leading "---" block, including its closing line.
func frontmatter(src []byte) (int, bool) {
	if !bytes.HasPrefix(src, []byte("---\n")) && !bytes.HasPrefix(src, []byte("---\r\n")) {
		return 0, false
	}
	off := lineEnd(src, 0) + 1
	for off < len(src) {
		end := lineEnd(src, off)
		line := bytes.TrimRight(src[off:end], " \r")
		if bytes.Equal(line, []byte("---")) || bytes.Equal(line, []byte("...")) {
			return end, true
		}
		off = end + 1
	}
	return 0, false
}

func lineStart(src []byte, pos int) int {
	if pos > len(src) {
		pos = len(src)
	}
	return bytes.LastIndexByte(src[:pos], '\n') + 1
}

func lineEnd(src []byte, pos int) int {
	if i := bytes.IndexByte(src[pos:], '\n'); i >= 0 {
		return pos + i
	}
	return len(src)
}
