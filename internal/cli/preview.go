package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/x/ansi"
	"golang.org/x/sys/unix"

	"github.com/dl/gohighlight/internal/extension"
	"github.com/dl/gohighlight/internal/highlight"
	"github.com/dl/gohighlight/internal/input"
	"github.com/dl/gohighlight/internal/output"
	"github.com/dl/gohighlight/internal/query"
	"github.com/dl/gohighlight/internal/settings"
	"github.com/dl/gohighlight/internal/text"
	"github.com/dl/gohighlight/internal/watch"
)

const clearScreen = "\x1b[H\x1b[2J"

// Preview renders one document and repaints it whenever the document or the
// settings file changes, until ctx is done. Selection highlighting goes
// through the same debounced path an editor host would use.
func Preview(ctx context.Context, cfg Config, store *settings.Store, out io.Writer, logger *log.Logger) error {
	if len(cfg.Paths) != 1 || cfg.Paths[0] == input.Stdin {
		return errors.New("watch needs exactly one document path")
	}
	path := cfg.Paths[0]

	initial, err := store.LoadOrDefault()
	if err != nil {
		return err
	}
	reader := input.NewReader(cfg.MmapThreshold)
	doc, err := input.ReadDocument(reader, path)
	if err != nil {
		return err
	}

	w, err := watch.New()
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Add(path); err != nil {
		return err
	}

	pv := &preview{cfg: cfg, path: path, out: out, color: cfg.useColor(), log: logger}
	plugin := extension.New(initial, extension.Options{
		Logger:   logger,
		Store:    store,
		Renderer: extension.RenderFunc(pv.paint),
	})
	defer plugin.Close()
	pv.plugin = plugin
	plugin.Open(pv.load(doc))
	pv.paint()

	reloadErr := make(chan error, 1)
	go func() {
		reloadErr <- store.Watch(ctx, func(c *query.Config) {
			plugin.Reconfigure(c)
			pv.paint()
		})
	}()

	events := w.Events()
	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-reloadErr:
			if err != nil {
				logger.Warn("settings are not watched", "path", store.Path(), "err", err)
			}
			reloadErr = nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if ev.Err != nil {
				return fmt.Errorf("watch %s: %w", path, ev.Err)
			}
			if ev.Type == watch.EventDeleted {
				logger.Warn("document removed", "path", path)
				continue
			}
			doc, err := input.ReadDocument(reader, path)
			if err != nil {
				logger.Warn("document reload failed", "path", path, "err", err)
				continue
			}
			plugin.Update(extension.Update{View: pv.load(doc), DocChanged: true, SelectionSet: true})
			pv.paint()
		}
	}
}

// preview repaints the latest snapshot. paint runs on the event loop and on
// selection timers.
type preview struct {
	cfg    Config
	path   string
	out    io.Writer
	color  bool
	log    *log.Logger
	plugin *extension.Plugin

	mu      sync.Mutex
	doc     *text.Doc
	lastGen uint64
	lastDoc *text.Doc
	buf     []byte
}

func (pv *preview) load(doc *text.Doc) highlight.View {
	pv.mu.Lock()
	pv.doc = doc
	pv.mu.Unlock()
	return newView(&pv.cfg, pv.path, doc)
}

func (pv *preview) paint() {
	pv.mu.Lock()
	defer pv.mu.Unlock()
	snap := pv.plugin.Snapshot()
	if snap.Generation == pv.lastGen && pv.doc == pv.lastDoc {
		return
	}
	pv.lastGen, pv.lastDoc = snap.Generation, pv.doc

	layers := snap.Layers()
	n := pv.doc.Len()
	// A selection snapshot may still describe the previous text.
	layers.Token = within(layers.Token, n)
	result := output.Result{Path: pv.path, Doc: pv.doc, Layers: layers}

	pv.buf = pv.buf[:0]
	if pv.color {
		pv.buf = append(pv.buf, clearScreen...)
	}
	header := fmt.Sprintf("── %s · %d decorations · #%d ──", pv.path, result.Count()+len(layers.Line), snap.Generation)
	pv.buf = append(pv.buf, ansi.Truncate(header, termWidth(), "…")...)
	pv.buf = append(pv.buf, '\n')
	pv.buf = newFormatter(pv.cfg, pv.plugin.Config(), pv.color).Format(pv.buf, result, false)
	if _, err := pv.out.Write(pv.buf); err != nil {
		pv.log.Warn("preview write failed", "err", err)
	}
}

func within(set highlight.Set, n int) highlight.Set {
	out := set[:0:0]
	for _, d := range set {
		if d.To <= n {
			out = append(out, d)
		}
	}
	return out
}

func termWidth() int {
	ws, err := unix.IoctlGetWinsize(int(os.Stdout.Fd()), unix.TIOCGWINSZ)
	if err != nil || ws.Col == 0 {
		return 80
	}
	return int(ws.Col)
}
