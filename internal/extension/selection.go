package extension

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/dl/gohighlight/internal/highlight"
	"github.com/dl/gohighlight/internal/query"
	"github.com/dl/gohighlight/internal/scheduler"
)

// ClearDelay is the grace period before stale selection matches are removed
// after an update, so clicks on highlighted text still land.
const ClearDelay = 150 * time.Millisecond

// SelectionHighlighter owns the selection decorations and their timers.
type SelectionHighlighter struct {
	engine  *highlight.SelectionEngine
	config  func() *query.Config
	clock   scheduler.Clock
	log     *log.Logger
	publish func(highlight.Set)

	clear *scheduler.Scheduler

	mu       sync.Mutex
	debounce *scheduler.Debouncer[highlight.View]
	last     highlight.View
	current  highlight.Set
}

func newSelectionHighlighter(engine *highlight.SelectionEngine, config func() *query.Config, clock scheduler.Clock, logger *log.Logger, publish func(highlight.Set)) *SelectionHighlighter {
	return &SelectionHighlighter{
		engine:  engine,
		config:  config,
		clock:   clock,
		log:     logger,
		publish: publish,
		clear:   scheduler.New(clock),
	}
}

// Open computes the initial decorations synchronously.
func (h *SelectionHighlighter) Open(v highlight.View) {
	h.mu.Lock()
	h.last = v
	h.mu.Unlock()
	h.recompute(v)
}

// Update schedules the clear step and a debounced recompute when the
// selection, document or viewport changed.
func (h *SelectionHighlighter) Update(u Update) {
	if !u.SelectionSet && !u.DocChanged && !u.ViewportChanged {
		return
	}
	h.mu.Lock()
	h.last = u.View
	d := h.debouncer()
	h.mu.Unlock()

	h.clear.Schedule(ClearDelay, h.clearStale)
	d.Call(u.View)
}

// debouncer returns the debouncer for the configured delay, rebuilding it
// when the delay changed. Callers hold h.mu.
func (h *SelectionHighlighter) debouncer() *scheduler.Debouncer[highlight.View] {
	delay := h.config().Selection.Delay()
	if h.debounce != nil && h.debounce.Delay() == delay {
		return h.debounce
	}
	if h.debounce != nil {
		h.debounce.Cancel()
		h.log.Debug("selection delay changed", "delay", delay)
	}
	h.debounce = scheduler.NewDebouncer(h.clock, delay, h.recompute)
	return h.debounce
}

func (h *SelectionHighlighter) clearStale() {
	h.mu.Lock()
	h.current = nil
	last := h.last
	d := h.debouncer()
	h.mu.Unlock()
	h.publish(nil)
	// Never leave the empty set as the final state.
	if !d.Pending() && last != nil {
		d.Call(last)
	}
}

func (h *SelectionHighlighter) recompute(v highlight.View) {
	if v == nil {
		return
	}
	var set highlight.Set
	err := guard(func() error {
		var err error
		set, err = h.engine.Compute(v, h.config().Selection)
		return err
	})
	if err != nil {
		h.log.Warn("selection highlight failed; keeping previous decorations", "err", err)
		return
	}
	h.mu.Lock()
	h.current = set
	h.mu.Unlock()
	h.publish(set)
}

// Decorations returns the current selection decorations.
func (h *SelectionHighlighter) Decorations() highlight.Set {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current
}

// Close cancels pending timers.
func (h *SelectionHighlighter) Close() {
	h.clear.CancelPending()
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.debounce != nil {
		h.debounce.Cancel()
	}
}
