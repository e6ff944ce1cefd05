package query

import (
	"errors"
	"slices"
	"testing"
	"time"
)

func sample() *Config {
	c := Default()
	c.Queries["todo"] = Query{Name: "todo", Pattern: "TODO", Marks: []MarkTarget{MarkMatch}, Enabled: true, Tag: DefaultTag, TagEnabled: true}
	c.Queries["fixme"] = Query{Name: "fixme", Pattern: "FIXME", Enabled: true, Tag: "#work", TagEnabled: true}
	c.Queries["note"] = Query{Name: "note", Pattern: `note:\s`, Regex: true, Marks: []MarkTarget{MarkLine}, Enabled: false, Tag: "#work", TagEnabled: true}
	c.Order = []string{"todo", "fixme", "note"}
	return c.Normalize()
}

func TestConfig_Active(t *testing.T) {
	c := sample()
	var names []string
	for _, q := range c.Active() {
		names = append(names, q.Name)
	}
	if !slices.Equal(names, []string{"todo", "fixme"}) {
		t.Errorf("Active() = %v", names)
	}

	if got := c.SetSwitch(false).Active(); len(got) != 0 {
		t.Errorf("switch off: Active() = %v, want none", got)
	}
}

func TestConfig_ToggleTagLeavesSiblings(t *testing.T) {
	c := sample()
	n, err := c.ToggleTag("#work")
	if err != nil {
		t.Fatalf("ToggleTag() error: %v", err)
	}
	if n.Queries["fixme"].TagEnabled || n.Queries["note"].TagEnabled {
		t.Error("#work queries should be tag-disabled")
	}
	if !n.Queries["todo"].TagEnabled {
		t.Error("#unsorted query must be unaffected")
	}
	if !c.Queries["fixme"].TagEnabled {
		t.Error("original snapshot was mutated")
	}
	if _, err := c.ToggleTag("#nope"); !errors.Is(err, ErrUnknownTag) {
		t.Errorf("ToggleTag(unknown) err = %v", err)
	}
}

func TestConfig_AddDelete(t *testing.T) {
	c := sample()
	if _, err := c.AddQuery(Query{Name: "todo", Pattern: "x"}); !errors.Is(err, ErrDuplicateName) {
		t.Errorf("duplicate add err = %v", err)
	}
	if _, err := c.AddQuery(Query{Name: "1bad", Pattern: "x"}); !errors.Is(err, ErrInvalidName) {
		t.Errorf("invalid add err = %v", err)
	}

	n, err := c.AddQuery(Query{Name: "hack", Pattern: "HACK", Enabled: true, TagEnabled: true})
	if err != nil {
		t.Fatalf("AddQuery() error: %v", err)
	}
	if n.Order[len(n.Order)-1] != "hack" {
		t.Errorf("Order = %v, want hack last", n.Order)
	}
	if q := n.Queries["hack"]; q.Tag != DefaultTag || q.Color != DefaultColor || !q.MarksMatch() {
		t.Errorf("defaults not applied: %+v", q)
	}

	n, err = n.DeleteQuery("fixme")
	if err != nil {
		t.Fatalf("DeleteQuery() error: %v", err)
	}
	if slices.Contains(n.Order, "fixme") {
		t.Errorf("Order still has fixme: %v", n.Order)
	}
	if err := n.Validate(); err != nil {
		t.Errorf("Validate() after delete: %v", err)
	}
}

func TestConfig_TagEdits(t *testing.T) {
	c := sample()
	n, err := c.RenameTag("#work", "#job")
	if err != nil {
		t.Fatalf("RenameTag() error: %v", err)
	}
	if !slices.Equal(n.Tags(), []string{DefaultTag, "#job"}) {
		t.Errorf("Tags() = %v", n.Tags())
	}

	n, err = n.DeleteTag("#job")
	if err != nil {
		t.Fatalf("DeleteTag() error: %v", err)
	}
	if !slices.Equal(n.Order, []string{"todo"}) || len(n.Queries) != 1 {
		t.Errorf("after DeleteTag: order=%v queries=%d", n.Order, len(n.Queries))
	}
}

func TestConfig_Normalize(t *testing.T) {
	c := &Config{
		Queries: map[string]Query{
			"b": {Pattern: "b"},
			"a": {Pattern: "a"},
		},
		Order: []string{"gone", "b"},
		Selection: SelectionConfig{
			HighlightDelay: 50 * time.Millisecond,
			IgnoredWords:   []string{" The ", ""},
		},
	}
	n := c.Normalize()
	if !slices.Equal(n.Order, []string{"b", "a"}) {
		t.Errorf("Order = %v, want [b a]", n.Order)
	}
	if n.Queries["a"].Name != "a" || n.Queries["a"].Tag != DefaultTag {
		t.Errorf("query a = %+v", n.Queries["a"])
	}
	if n.Selection.HighlightDelay != MinHighlightDelay {
		t.Errorf("HighlightDelay = %v, want floor", n.Selection.HighlightDelay)
	}
	if !slices.Equal(n.Selection.IgnoredWords, []string{"the"}) {
		t.Errorf("IgnoredWords = %q", n.Selection.IgnoredWords)
	}
	if err := n.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestConfig_ValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"order references missing query", func(c *Config) { c.Order = append(c.Order, "ghost") }},
		{"duplicate order entry", func(c *Config) { c.Order = append(c.Order, "todo") }},
		{"query missing from order", func(c *Config) { c.Order = c.Order[1:] }},
		{"empty pattern", func(c *Config) {
			q := c.Queries["todo"]
			q.Pattern = ""
			c.Queries["todo"] = q
		}},
		{"negative max matches", func(c *Config) { c.Selection.MaxMatches = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := sample().Clone()
			tt.mutate(c)
			if err := c.Validate(); err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}

func TestSplitWords(t *testing.T) {
	got := SplitWords("The, and ,, WITH")
	if !slices.Equal(got, []string{"the", "and", "with"}) {
		t.Errorf("SplitWords() = %q", got)
	}
}
