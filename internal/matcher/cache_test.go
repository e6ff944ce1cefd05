package matcher

import (
	"testing"

	"github.com/dl/gohighlight/internal/text"
)

func TestCache_ReusesCompiled(t *testing.T) {
	c := NewCache()
	p1, err := c.Pattern(`TODO\d`)
	if err != nil {
		t.Fatalf("Pattern() error: %v", err)
	}
	p2, _ := c.Pattern(`TODO\d`)
	if p1 != p2 {
		t.Error("second lookup recompiled the pattern")
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestCache_FailuresNotCached(t *testing.T) {
	c := NewCache()
	if _, err := c.Pattern("a("); err == nil {
		t.Fatal("Pattern() error = nil")
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0", c.Len())
	}
}

func TestCache_Flush(t *testing.T) {
	skipIfRace(t)
	c := NewCache()
	c.Pattern(`(?<=a)b`)
	c.Pattern("b+")
	c.Flush()
	if c.Len() != 0 {
		t.Errorf("Len() = %d after Flush", c.Len())
	}
}

func TestCache_NewCursor(t *testing.T) {
	doc := text.NewDoc("a TODO b todo")
	var nilCache *Cache
	for _, c := range []*Cache{NewCache(), nilCache} {
		cur, err := c.NewCursor(doc, "todo", false, 0, doc.Len())
		if err != nil {
			t.Fatalf("NewCursor() error: %v", err)
		}
		if n := len(Collect(cur)); n != 2 {
			t.Errorf("literal matches = %d, want 2", n)
		}
		cur, err = c.NewCursor(doc, "todo", true, 0, doc.Len())
		if err != nil {
			t.Fatalf("NewCursor() error: %v", err)
		}
		if n := len(Collect(cur)); n != 1 {
			t.Errorf("regex matches = %d, want 1", n)
		}
	}
}
