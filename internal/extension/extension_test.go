package extension

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dl/gohighlight/internal/highlight"
	"github.com/dl/gohighlight/internal/query"
	"github.com/dl/gohighlight/internal/scheduler"
	"github.com/dl/gohighlight/internal/text"
)

func testConfig() *query.Config {
	c := query.Default()
	c.Queries["todo"] = query.Query{Name: "todo", Pattern: "TODO", Enabled: true, Tag: "#work", TagEnabled: true}
	c.Queries["foo"] = query.Query{Name: "foo", Pattern: "foo", Enabled: true, Tag: query.DefaultTag, TagEnabled: true}
	c.Order = []string{"todo", "foo"}
	c.Selection.IgnoredWords = nil
	return c.Normalize()
}

type memStore struct {
	saved []*query.Config
	err   error
}

func (s *memStore) Load() (*query.Config, error) {
	if len(s.saved) == 0 {
		return nil, errors.New("empty")
	}
	return s.saved[len(s.saved)-1], nil
}

func (s *memStore) Save(cfg *query.Config) error {
	if s.err != nil {
		return s.err
	}
	s.saved = append(s.saved, cfg)
	return nil
}

type notices []string

func (n *notices) Notify(msg string) { *n = append(*n, msg) }

type registry map[string]func() error

func (r registry) Register(id, _ string, run func() error) { r[id] = run }

func newPlugin(t *testing.T, cfg *query.Config) (*Plugin, *scheduler.FakeClock, *memStore, *notices) {
	t.Helper()
	clock := scheduler.NewFakeClock()
	store := &memStore{}
	var n notices
	p := New(cfg, Options{Clock: clock, Store: store, Notify: &n})
	t.Cleanup(p.Close)
	return p, clock, store, &n
}

func view(doc string, sel text.Selection) *highlight.State {
	return &highlight.State{Text: text.NewDoc(doc), Sel: sel}
}

func TestPlugin_StaticRecomputePolicy(t *testing.T) {
	p, _, _, _ := newPlugin(t, testConfig())
	v := view("TODO foo", text.Cursor(0))
	p.Open(v)
	require.Equal(t, 1, p.Static.Runs())
	require.Len(t, p.Snapshot().Static.Token, 2)

	p.Update(Update{View: v, SelectionSet: true})
	assert.Equal(t, 1, p.Static.Runs(), "selection-only update must not rebuild static layers")

	p.Update(Update{View: v, DocChanged: true})
	assert.Equal(t, 2, p.Static.Runs())

	p.Update(Update{View: v, ViewportChanged: true})
	assert.Equal(t, 3, p.Static.Runs())

	next, err := p.Config().ToggleQuery("foo")
	require.NoError(t, err)
	p.Reconfigure(next)
	assert.Equal(t, 4, p.Static.Runs())
	assert.Len(t, p.Snapshot().Static.Token, 1)

	p.Update(Update{View: v, SelectionSet: true})
	p.Reconfigure(next)
	assert.Equal(t, 4, p.Static.Runs(), "same snapshot must not force another rebuild")
}

func TestPlugin_SwitchOffPublishesEmpty(t *testing.T) {
	p, _, _, _ := newPlugin(t, testConfig().SetSwitch(false))
	p.Open(view("TODO foo", text.Cursor(0)))
	assert.True(t, p.Snapshot().Static.Empty())
}

type panicView struct {
	*highlight.State
	boom bool
}

func (v *panicView) Doc() text.Document {
	if v.boom {
		panic("host document gone")
	}
	return v.State.Doc()
}

func TestPlugin_HostFailureKeepsPreviousSnapshot(t *testing.T) {
	p, _, _, _ := newPlugin(t, testConfig())
	v := &panicView{State: view("TODO foo", text.Cursor(0))}
	p.Open(v)
	before := p.Snapshot().Static
	require.Len(t, before.Token, 2)

	v.boom = true
	require.NotPanics(t, func() { p.Update(Update{View: v, DocChanged: true}) })
	assert.Equal(t, before, p.Snapshot().Static)

	bad := &highlight.State{Text: text.NewDoc("TODO"), Visible: []text.Range{{From: 0, To: 40}}}
	p.Update(Update{View: bad, ViewportChanged: true})
	assert.Equal(t, before, p.Snapshot().Static)
}

func TestSelection_ClearThenRecompute(t *testing.T) {
	p, clock, _, _ := newPlugin(t, testConfig())
	v := view("foo bar foo", text.Cursor(1))
	p.Open(v)
	require.Len(t, p.Snapshot().Selection, 2, "initial compute is synchronous")

	v2 := view("foo bar foo", text.Cursor(9))
	p.Update(Update{View: v2, SelectionSet: true})
	clock.Advance(ClearDelay)
	assert.Empty(t, p.Snapshot().Selection, "cleared after grace delay")

	clock.Advance(query.MinHighlightDelay - ClearDelay)
	sel := p.Snapshot().Selection
	require.Len(t, sel, 2)
	assert.True(t, sel[1].Primary, "caret now in second occurrence")
}

func TestSelection_NeverEndsOnStaleEmpty(t *testing.T) {
	p, clock, _, _ := newPlugin(t, testConfig())
	v := view("foo bar foo", text.Cursor(1))
	p.Open(v)

	p.Update(Update{View: v, SelectionSet: true})
	clock.Advance(100 * time.Millisecond)
	p.Update(Update{View: v, SelectionSet: true}) // clear moves to 250ms
	clock.Advance(100 * time.Millisecond)         // 200ms: recompute
	require.Len(t, p.Snapshot().Selection, 2)

	clock.Advance(60 * time.Millisecond) // 260ms: cleared, recompute rescheduled
	assert.Empty(t, p.Snapshot().Selection)
	clock.Advance(200 * time.Millisecond)
	assert.Len(t, p.Snapshot().Selection, 2)
}

func TestSelection_DelayChangeRebuildsDebouncer(t *testing.T) {
	p, clock, _, _ := newPlugin(t, testConfig())
	v := view("foo bar foo", text.Cursor(1))
	p.Open(v)
	p.Update(Update{View: v, SelectionSet: true})
	clock.Advance(query.MinHighlightDelay)
	require.Len(t, p.Snapshot().Selection, 2)

	s := p.Config().Selection
	s.HighlightDelay = 500 * time.Millisecond
	p.Reconfigure(p.Config().WithSelection(s))

	p.Update(Update{View: v, SelectionSet: true})
	clock.Advance(400 * time.Millisecond)
	assert.Empty(t, p.Snapshot().Selection)
	clock.Advance(100 * time.Millisecond)
	assert.Len(t, p.Snapshot().Selection, 2)
}

func TestCommands(t *testing.T) {
	p, _, store, n := newPlugin(t, testConfig())
	p.Open(view("TODO foo", text.Cursor(0)))
	reg := registry{}
	p.RegisterCommands(reg)
	for _, id := range []string{"toggle-adhl", "toggle-cursor", "toggle-selected", "toggle-todo", "toggle-foo", "toggle-#work", "toggle-#unsorted"} {
		require.Contains(t, reg, id)
	}

	require.NoError(t, reg["toggle-adhl"]())
	assert.False(t, p.Config().Switch)
	assert.True(t, p.Snapshot().Static.Empty())
	require.NoError(t, reg["toggle-adhl"]())
	assert.Len(t, p.Snapshot().Static.Token, 2)

	require.NoError(t, reg["toggle-#work"]())
	assert.Len(t, p.Snapshot().Static.Token, 1, "only the #unsorted query remains")

	require.NoError(t, reg["toggle-foo"]())
	require.NoError(t, reg["toggle-cursor"]())
	assert.False(t, p.Config().Selection.HighlightWordAroundCursor)

	assert.Equal(t, []string{
		"Static highlighting is now OFF.",
		"Static highlighting is now ON.",
		`Toggled "#work" OFF. All highlighters carrying this tag are now OFF, too.`,
		`Toggled "foo" OFF; its tag "#unsorted" is ON.`,
		"Highlighting the word around the cursor is now OFF.",
	}, []string(*n))
	assert.Len(t, store.saved, 5)
	assert.Same(t, store.saved[4], p.Config())
}

func TestCommands_SaveFailureKeepsConfig(t *testing.T) {
	p, _, store, n := newPlugin(t, testConfig())
	store.err = errors.New("disk full")
	before := p.Config()
	require.Error(t, p.ToggleSwitch())
	assert.Same(t, before, p.Config())
	assert.Empty(t, *n)
}

func TestSnapshot_LayersMerge(t *testing.T) {
	s := &Snapshot{
		Static: highlight.Layers{Token: highlight.Set{{From: 0, To: 2, Class: "a"}, {From: 5, To: 7, Class: "b"}}},
		Selection: highlight.Set{{From: 0, To: 3}, {From: 4, To: 6}},
	}
	l := s.Layers()
	require.True(t, l.Token.Sorted())
	require.Len(t, l.Token, 4)
	assert.Equal(t, "a", l.Token[0].Class)
	assert.Equal(t, 4, l.Token[2].From)
}
