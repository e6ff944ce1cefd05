package extension

import (
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"

	"github.com/dl/gohighlight/internal/highlight"
	"github.com/dl/gohighlight/internal/matcher"
	"github.com/dl/gohighlight/internal/query"
	"github.com/dl/gohighlight/internal/scheduler"
	"github.com/dl/gohighlight/internal/style"
)

// Options are the host capabilities a Plugin uses. Every field is optional.
type Options struct {
	Clock    scheduler.Clock
	Logger   *log.Logger
	Cache    *matcher.Cache
	Store    SettingsStore
	Notify   NotificationSink
	Renderer Renderer
}

// Plugin wires both highlighters to one configuration and publishes a
// combined snapshot.
type Plugin struct {
	cfg      atomic.Pointer[query.Config]
	snapshot atomic.Pointer[Snapshot]
	gen      atomic.Uint64

	log      *log.Logger
	store    SettingsStore
	notify   NotificationSink
	renderer Renderer

	Selection *SelectionHighlighter
	Static    *StaticHighlighter

	mu         sync.Mutex // serializes publishes
	view       highlight.View
	stylesheet string
}

// New creates a Plugin for cfg. Call Open once the host has a view.
func New(cfg *query.Config, opts Options) *Plugin {
	if opts.Cache == nil {
		opts.Cache = matcher.NewCache()
	}
	if opts.Clock == nil {
		opts.Clock = scheduler.RealClock
	}
	if opts.Renderer == nil {
		opts.Renderer = nopRenderer{}
	}
	logger := orDiscard(opts.Logger)
	p := &Plugin{
		log:      logger,
		store:    opts.Store,
		notify:   opts.Notify,
		renderer: opts.Renderer,
	}
	p.cfg.Store(cfg)
	p.stylesheet = style.Stylesheet(cfg)
	p.snapshot.Store(&Snapshot{Stylesheet: p.stylesheet})

	p.Static = newStaticHighlighter(highlight.NewStaticEngine(logger, opts.Cache), logger, p.publishStatic)
	p.Selection = newSelectionHighlighter(highlight.NewSelectionEngine(logger, opts.Cache), p.Config, opts.Clock, logger, p.publishSelection)
	return p
}

// Config returns the configuration snapshot in use.
func (p *Plugin) Config() *query.Config { return p.cfg.Load() }

// Snapshot returns the latest published decorations.
func (p *Plugin) Snapshot() *Snapshot { return p.snapshot.Load() }

// Open computes the initial snapshot for v.
func (p *Plugin) Open(v highlight.View) {
	p.mu.Lock()
	p.view = v
	p.mu.Unlock()
	p.Static.Open(v, p.Config())
	p.Selection.Open(v)
}

// Update forwards a host notification to both highlighters.
func (p *Plugin) Update(u Update) {
	p.mu.Lock()
	p.view = u.View
	p.mu.Unlock()
	p.Static.Update(u, p.Config())
	p.Selection.Update(u)
}

// Reconfigure swaps in a new configuration snapshot and rebuilds the static
// layers once against the last known view.
func (p *Plugin) Reconfigure(cfg *query.Config) {
	if cfg == p.cfg.Swap(cfg) {
		return
	}
	p.mu.Lock()
	p.stylesheet = style.Stylesheet(cfg)
	v := p.view
	p.mu.Unlock()
	p.log.Info("configuration reloaded", "queries", len(cfg.Queries), "switch", cfg.Switch)
	if v != nil {
		p.Static.Update(Update{View: v}, cfg)
	} else {
		p.publishStatic(highlight.Layers{})
	}
}

// Close stops pending timers.
func (p *Plugin) Close() { p.Selection.Close() }

func (p *Plugin) publishStatic(l highlight.Layers) {
	p.publish(func(s *Snapshot) { s.Static = l })
}

func (p *Plugin) publishSelection(set highlight.Set) {
	p.publish(func(s *Snapshot) { s.Selection = set })
	p.renderer.RequestRender()
}

func (p *Plugin) publish(edit func(s *Snapshot)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	next := *p.snapshot.Load()
	edit(&next)
	next.Stylesheet = p.stylesheet
	next.Generation = p.gen.Add(1)
	p.snapshot.Store(&next)
}
