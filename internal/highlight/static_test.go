package highlight

import (
	"errors"
	"reflect"
	"testing"

	"github.com/dl/gohighlight/internal/query"
	"github.com/dl/gohighlight/internal/syntax"
	"github.com/dl/gohighlight/internal/text"
)

func newConfig(queries ...query.Query) *query.Config {
	c := query.Default()
	for _, q := range queries {
		if q.Tag == "" {
			q.Tag = query.DefaultTag
		}
		q.Enabled, q.TagEnabled = true, true
		c.Queries[q.Name] = q
		c.Order = append(c.Order, q.Name)
	}
	return c.Normalize()
}

func ranges(s Set) []text.Range {
	out := make([]text.Range, len(s))
	for i, d := range s {
		out[i] = d.Range()
	}
	return out
}

func TestStaticEngine_Scenario(t *testing.T) {
	cfg := newConfig(query.Query{Name: "todo", Pattern: "TODO", Marks: []query.MarkTarget{query.MarkMatch}})
	v := &State{Text: text.NewDoc("TODO: fix\nsome todo later")}

	got, err := NewStaticEngine(nil, nil).Compute(v, cfg)
	if err != nil {
		t.Fatalf("Compute() error: %v", err)
	}
	want := []text.Range{{From: 0, To: 4}, {From: 15, To: 19}}
	if !reflect.DeepEqual(ranges(got.Token), want) {
		t.Errorf("tokens = %v, want %v", ranges(got.Token), want)
	}
	if len(got.Line) != 0 || len(got.Widget) != 0 {
		t.Errorf("line = %v, widget = %v; want none", got.Line, got.Widget)
	}
	d := got.Token[1]
	if d.Class != "todo" || d.Contents != "todo" {
		t.Errorf("token attrs = %v", d.Attributes())
	}
}

func TestStaticEngine(t *testing.T) {
	lineAndMatch := []query.MarkTarget{query.MarkLine, query.MarkMatch}
	tests := []struct {
		name      string
		doc       string
		markdown  bool
		visible   []text.Range
		queries   []query.Query
		mutate    func(c *query.Config) *query.Config
		wantToken []text.Range
		wantLines map[int]string
	}{
		{
			name:      "fenced code excluded from both layers",
			doc:       "TODO\n```\nTODO\n```\nTODO",
			markdown:  true,
			queries:   []query.Query{{Name: "todo", Pattern: "todo", Marks: lineAndMatch}},
			wantToken: []text.Range{{From: 0, To: 4}, {From: 18, To: 22}},
			wantLines: map[int]string{0: "todo", 18: "todo"},
		},
		{
			name:     "frontmatter excluded",
			doc:      "---\ntags: TODO\n---\nTODO",
			markdown: true,
			queries:  []query.Query{{Name: "todo", Pattern: "TODO"}},
			wantToken: []text.Range{{From: 19, To: 23}},
		},
		{
			name: "invalid regex skipped",
			doc:  "TODO FIXME",
			queries: []query.Query{
				{Name: "broken", Pattern: "(", Regex: true},
				{Name: "fixme", Pattern: `FIX\w+`, Regex: true},
			},
			wantToken: []text.Range{{From: 5, To: 10}},
		},
		{
			name: "line classes accumulate in paint order",
			doc:  "a TODO FIXME\nb",
			queries: []query.Query{
				{Name: "todo", Pattern: "TODO", Marks: []query.MarkTarget{query.MarkLine}},
				{Name: "fixme", Pattern: "FIXME", Marks: []query.MarkTarget{query.MarkLine}},
			},
			wantLines: map[int]string{0: "todo fixme"},
		},
		{
			// One class per query per line, however many matches it holds.
			name:      "repeated matches mark a line once",
			doc:       "TODO TODO\nx",
			queries:   []query.Query{{Name: "todo", Pattern: "TODO", Marks: lineAndMatch}},
			wantToken: []text.Range{{From: 0, To: 4}, {From: 5, To: 9}},
			wantLines: map[int]string{0: "todo"},
		},
		{
			name:      "anchor does not match at mid-line span start",
			doc:       "xx TODO\nTODO",
			visible:   []text.Range{{From: 3, To: 12}},
			queries:   []query.Query{{Name: "todo", Pattern: "^TODO", Regex: true}},
			wantToken: []text.Range{{From: 8, To: 12}},
		},
		{
			name:      "viewport bounds matches",
			doc:       "TODO TODO TODO",
			visible:   []text.Range{{From: 3, To: 10}},
			queries:   []query.Query{{Name: "todo", Pattern: "TODO"}},
			wantToken: []text.Range{{From: 5, To: 9}},
		},
		{
			name:      "multiple spans",
			doc:       "TODO\nx\nTODO\nTODO",
			visible:   []text.Range{{From: 0, To: 4}, {From: 12, To: 16}},
			queries:   []query.Query{{Name: "todo", Pattern: "TODO"}},
			wantToken: []text.Range{{From: 0, To: 4}, {From: 12, To: 16}},
		},
		{
			name:    "tag disabled leaves siblings",
			doc:     "TODO FIXME",
			queries: []query.Query{{Name: "todo", Pattern: "TODO", Tag: "#a"}, {Name: "fixme", Pattern: "FIXME", Tag: "#b"}},
			mutate: func(c *query.Config) *query.Config {
				return c.SetTagEnabled("#a", false)
			},
			wantToken: []text.Range{{From: 5, To: 10}},
		},
		{
			name:    "switch off",
			doc:     "TODO",
			queries: []query.Query{{Name: "todo", Pattern: "TODO"}},
			mutate:  func(c *query.Config) *query.Config { return c.SetSwitch(false) },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := newConfig(tt.queries...)
			if tt.mutate != nil {
				cfg = tt.mutate(cfg)
			}
			v := &State{Text: text.NewDoc(tt.doc), Visible: tt.visible}
			if tt.markdown {
				v.Classify = syntax.ParseMarkdown([]byte(tt.doc))
			}
			got, err := NewStaticEngine(nil, nil).Compute(v, cfg)
			if err != nil {
				t.Fatalf("Compute() error: %v", err)
			}
			if gotTok := ranges(got.Token); len(gotTok) != len(tt.wantToken) || (len(gotTok) > 0 && !reflect.DeepEqual(gotTok, tt.wantToken)) {
				t.Errorf("tokens = %v, want %v", gotTok, tt.wantToken)
			}
			if len(got.Line) != len(tt.wantLines) {
				t.Fatalf("lines = %v, want %v", got.Line, tt.wantLines)
			}
			for _, d := range got.Line {
				if d.From != d.To || tt.wantLines[d.From] != d.Class {
					t.Errorf("line decoration %+v, want class %q", d, tt.wantLines[d.From])
				}
			}
			if !got.Token.Sorted() || !got.Line.Sorted() {
				t.Error("layers not sorted")
			}
		})
	}
}

func TestStaticEngine_OverlapKeepsPaintOrder(t *testing.T) {
	cfg := newConfig(
		query.Query{Name: "first", Pattern: "abc"},
		query.Query{Name: "second", Pattern: "ab"},
	)
	got, err := NewStaticEngine(nil, nil).Compute(&State{Text: text.NewDoc("x abc")}, cfg)
	if err != nil {
		t.Fatalf("Compute() error: %v", err)
	}
	if len(got.Token) != 2 || got.Token[0].Class != "first" || got.Token[1].Class != "second" {
		t.Errorf("tokens = %+v", got.Token)
	}
}

func TestStaticEngine_Idempotent(t *testing.T) {
	cfg := newConfig(
		query.Query{Name: "todo", Pattern: "TODO", Marks: []query.MarkTarget{query.MarkLine, query.MarkMatch}},
		query.Query{Name: "num", Pattern: `\d+`, Regex: true},
	)
	v := &State{Text: text.NewDoc("TODO 12\nx 3 TODO\n")}
	e := NewStaticEngine(nil, nil)
	a, err := e.Compute(v, cfg)
	if err != nil {
		t.Fatalf("Compute() error: %v", err)
	}
	b, _ := e.Compute(v, cfg)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("second run differs:\n%+v\n%+v", a, b)
	}
}

func TestStaticEngine_BadViewport(t *testing.T) {
	cfg := newConfig(query.Query{Name: "todo", Pattern: "TODO"})
	tests := []struct {
		name    string
		visible []text.Range
	}{
		{"past end", []text.Range{{From: 0, To: 99}}},
		{"inverted", []text.Range{{From: 3, To: 1}}},
		{"overlapping", []text.Range{{From: 0, To: 3}, {From: 2, To: 4}}},
		{"negative", []text.Range{{From: -1, To: 2}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewStaticEngine(nil, nil).Compute(&State{Text: text.NewDoc("TODO"), Visible: tt.visible}, cfg)
			if !errors.Is(err, ErrBadViewport) {
				t.Errorf("err = %v, want ErrBadViewport", err)
			}
		})
	}
}
