package output

import (
	"encoding/json"

	"github.com/dl/gohighlight/internal/highlight"
)

// JSONFormatter formats results as JSON Lines, one object per decoration,
// line layer first.
type JSONFormatter struct{}

// NewJSONFormatter creates a JSONFormatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

type jsonDecoration struct {
	Type    string `json:"type"`
	File    string `json:"file,omitempty"`
	LineNum int    `json:"line_number"`
	From    int    `json:"from"`
	To      int    `json:"to"`
	Class   string `json:"class,omitempty"`
	Style   string `json:"style,omitempty"`
	Text    string `json:"text,omitempty"`
	Primary bool   `json:"primary,omitempty"`
}

func (f *JSONFormatter) Format(buf []byte, result Result, multiFile bool) []byte {
	layers := []struct {
		name string
		set  highlight.Set
	}{
		{"line", result.Layers.Line},
		{"token", result.Layers.Token},
		{"widget", result.Layers.Widget},
	}
	for _, l := range layers {
		for _, d := range l.set {
			jd := jsonDecoration{
				Type:    l.name,
				File:    result.Path,
				LineNum: result.Doc.LineAt(d.From).Number,
				From:    d.From,
				To:      d.To,
				Class:   d.Class,
				Style:   d.Style,
				Text:    result.Doc.Slice(d.From, d.To),
				Primary: d.Primary,
			}
			data, _ := json.Marshal(jd)
			buf = append(buf, data...)
			buf = append(buf, '\n')
		}
	}
	return buf
}

// Ensure JSONFormatter implements Formatter.
var _ Formatter = (*JSONFormatter)(nil)
