package extension

import (
	"sync"

	"github.com/charmbracelet/log"

	"github.com/dl/gohighlight/internal/highlight"
	"github.com/dl/gohighlight/internal/query"
)

// StaticHighlighter owns the static query layers. It recomputes only when the
// document or viewport changed or a different configuration snapshot is in use.
type StaticHighlighter struct {
	engine  *highlight.StaticEngine
	log     *log.Logger
	publish func(highlight.Layers)

	mu      sync.Mutex
	cfg     *query.Config // snapshot the current layers were built from
	current highlight.Layers
	runs    int
}

func newStaticHighlighter(engine *highlight.StaticEngine, logger *log.Logger, publish func(highlight.Layers)) *StaticHighlighter {
	return &StaticHighlighter{engine: engine, log: logger, publish: publish}
}

// Open computes the initial layers.
func (h *StaticHighlighter) Open(v highlight.View, cfg *query.Config) {
	h.recompute(v, cfg)
}

// Update recomputes when needed and reports whether it did.
func (h *StaticHighlighter) Update(u Update, cfg *query.Config) bool {
	h.mu.Lock()
	reconfigured := h.cfg != cfg
	h.mu.Unlock()
	if !u.DocChanged && !u.ViewportChanged && !reconfigured {
		return false
	}
	h.recompute(u.View, cfg)
	return true
}

func (h *StaticHighlighter) recompute(v highlight.View, cfg *query.Config) {
	var layers highlight.Layers
	if cfg.Switch && v != nil {
		err := guard(func() error {
			var err error
			layers, err = h.engine.Compute(v, cfg)
			return err
		})
		if err != nil {
			h.log.Warn("static highlight failed; keeping previous decorations", "err", err)
			h.mu.Lock()
			h.cfg = cfg
			h.mu.Unlock()
			return
		}
	}
	h.mu.Lock()
	h.cfg = cfg
	h.current = layers
	h.runs++
	h.mu.Unlock()
	h.publish(layers)
}

// Layers returns the current static layers.
func (h *StaticHighlighter) Layers() highlight.Layers {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current
}

// Runs returns how many times the layers were rebuilt.
func (h *StaticHighlighter) Runs() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.runs
}
