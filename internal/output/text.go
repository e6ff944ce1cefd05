package output

import (
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dl/gohighlight/internal/highlight"
	"github.com/dl/gohighlight/internal/style"
	"github.com/dl/gohighlight/internal/text"
)

// TextOptions controls TextFormatter output.
type TextOptions struct {
	LineNumbers bool
	// OnlyDecorated drops lines that carry no decoration, like grep.
	OnlyDecorated bool
	CountOnly     bool
	Color         bool
}

// TextFormatter renders a document with its decorations painted as ANSI
// styles. Decorated lines use ':' after the prefix, others '-'.
type TextFormatter struct {
	opts    TextOptions
	styles  Styles
	palette *style.Palette
}

// NewTextFormatter creates a TextFormatter. palette may be nil when
// opts.Color is false.
func NewTextFormatter(opts TextOptions, palette *style.Palette) *TextFormatter {
	f := &TextFormatter{opts: opts, styles: NoStyles(), palette: palette}
	if opts.Color && palette != nil {
		f.styles = NewStyles()
	} else {
		f.opts.Color = false
	}
	return f
}

func (f *TextFormatter) Format(buf []byte, result Result, multiFile bool) []byte {
	if f.opts.CountOnly {
		if multiFile {
			buf = append(buf, result.Path...)
			buf = append(buf, ':')
		}
		buf = strconv.AppendInt(buf, int64(result.Count()), 10)
		buf = append(buf, '\n')
		return buf
	}

	doc := result.Doc
	tokens := result.Layers.Token
	lines := result.Layers.Line
	gutter := f.opts.Color && len(lines) > 0

	var open highlight.Set // tokens that may overlap the current line
	next, nextLine := 0, 0
	for pos := 0; ; {
		line := doc.LineAt(pos)
		if line.From == doc.Len() && line.From > 0 {
			break // no line after a trailing newline
		}

		open = slices.DeleteFunc(open, func(d highlight.Decoration) bool { return d.To <= line.From })
		for next < len(tokens) && tokens[next].From < line.To {
			if d := tokens[next]; d.To > line.From && d.To > d.From {
				open = append(open, d)
			}
			next++
		}

		var lineClass string
		for nextLine < len(lines) && lines[nextLine].From <= line.From {
			if lines[nextLine].From == line.From {
				lineClass = lines[nextLine].Class
			}
			nextLine++
		}

		decorated := lineClass != "" || len(open) > 0
		if decorated || !f.opts.OnlyDecorated {
			buf = f.formatLine(buf, result.Path, doc, line, open, lineClass, decorated, gutter, multiFile)
		}

		if line.To >= doc.Len() {
			break
		}
		pos = line.To + 1
	}
	return buf
}

func (f *TextFormatter) formatLine(buf []byte, path string, doc text.Document, line text.Line, open highlight.Set, lineClass string, decorated, gutter, multiFile bool) []byte {
	sep := "-"
	if decorated {
		sep = ":"
	}

	if multiFile {
		buf = append(buf, f.styles.Filename.Render(path)...)
		buf = append(buf, f.styles.Separator.Render(sep)...)
	}
	if f.opts.LineNumbers {
		buf = append(buf, f.styles.LineNum.Render(strconv.Itoa(line.Number))...)
		buf = append(buf, f.styles.Separator.Render(sep)...)
	}
	if gutter {
		if lineClass != "" {
			buf = append(buf, f.palette.Class(topClass(lineClass)).Render("▌")...)
		} else {
			buf = append(buf, ' ')
		}
	}

	if !f.opts.Color || len(open) == 0 {
		buf = append(buf, doc.Slice(line.From, line.To)...)
		return append(buf, '\n')
	}
	return append(f.paint(buf, doc, line, open), '\n')
}

// paint splits the line at every decoration boundary and renders each
// segment with the topmost covering decoration.
func (f *TextFormatter) paint(buf []byte, doc text.Document, line text.Line, open highlight.Set) []byte {
	cuts := []int{line.From, line.To}
	for _, d := range open {
		cuts = append(cuts, max(d.From, line.From), min(d.To, line.To))
	}
	slices.Sort(cuts)
	cuts = slices.Compact(cuts)

	for i := 0; i+1 < len(cuts); i++ {
		a, b := cuts[i], cuts[i+1]
		seg := doc.Slice(a, b)
		if top, ok := topmost(open, a, b); ok {
			buf = append(buf, f.styleOf(top).Render(seg)...)
		} else {
			buf = append(buf, seg...)
		}
	}
	return buf
}

func (f *TextFormatter) styleOf(d highlight.Decoration) lipgloss.Style {
	if d.Class == "" {
		return f.palette.Selection
	}
	return f.palette.Class(topClass(d.Class))
}

// topmost returns the last decoration in paint order covering [a, b).
func topmost(open highlight.Set, a, b int) (highlight.Decoration, bool) {
	for i := len(open) - 1; i >= 0; i-- {
		if open[i].From <= a && open[i].To >= b {
			return open[i], true
		}
	}
	return highlight.Decoration{}, false
}

// topClass picks the last of a space separated class list.
func topClass(classes string) string {
	if i := strings.LastIndexByte(classes, ' '); i >= 0 {
		return classes[i+1:]
	}
	return classes
}
