package cli

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/dl/gohighlight/internal/extension"
	"github.com/dl/gohighlight/internal/highlight"
	"github.com/dl/gohighlight/internal/input"
	"github.com/dl/gohighlight/internal/matcher"
	"github.com/dl/gohighlight/internal/output"
	"github.com/dl/gohighlight/internal/query"
	"github.com/dl/gohighlight/internal/scheduler"
	"github.com/dl/gohighlight/internal/style"
	"github.com/dl/gohighlight/internal/syntax"
	"github.com/dl/gohighlight/internal/text"
	"github.com/dl/gohighlight/internal/walker"
)

// NewLogger returns the stderr logger used by every command.
func NewLogger(debug bool) *log.Logger {
	level := log.WarnLevel
	if debug {
		level = log.DebugLevel
	}
	return log.NewWithOptions(os.Stderr, log.Options{
		Level:  level,
		Prefix: "gohl",
	})
}

// Run renders every document named by cfg.Paths with the queries in
// settings. Returns exit code: 0 = something decorated, 1 = nothing,
// 2 = error.
func Run(cfg Config, settings *query.Config, logger *log.Logger) int {
	paths, walkErrs := collectPaths(cfg, logger)

	useColor := cfg.useColor()

	r := newRenderer(cfg, settings, input.NewReader(cfg.MmapThreshold), logger)
	results := scheduler.Run(cfg.Workers, scheduler.Slice(paths), r.render)

	ow := output.NewOrderedWriter(output.NewWriter(os.Stdout), newFormatter(cfg, settings, useColor), len(paths) > 1)
	hasMatch, failed := false, walkErrs > 0
	err := ow.WriteOrdered(results, func(res output.Result) {
		if res.Err != nil {
			logger.Warn("skipping document", "path", res.Path, "err", res.Err)
			failed = true
			return
		}
		if res.HasMatch() {
			hasMatch = true
		}
	})
	if err != nil {
		logger.Error("write failed", "err", err)
		return 2
	}

	switch {
	case failed:
		return 2
	case hasMatch:
		return 0
	}
	return 1
}

func (c *Config) useColor() bool {
	switch c.Color {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	return output.StdoutIsTerminal()
}

func newFormatter(cfg Config, settings *query.Config, useColor bool) output.Formatter {
	if cfg.JSONOutput {
		return output.NewJSONFormatter()
	}
	var palette *style.Palette
	if useColor {
		palette = style.NewPalette(settings)
	}
	return output.NewTextFormatter(output.TextOptions{
		LineNumbers:   cfg.LineNumbers,
		OnlyDecorated: cfg.OnlyDecorated,
		CountOnly:     cfg.CountOnly,
		Color:         useColor,
	}, palette)
}

// collectPaths expands directories into their documents, sorted so output
// order does not depend on the walk. No paths means stdin.
func collectPaths(cfg Config, logger *log.Logger) ([]string, int) {
	if len(cfg.Paths) == 0 {
		return []string{input.Stdin}, 0
	}

	var out, roots []string
	for _, p := range cfg.Paths {
		if p == input.Stdin {
			out = append(out, p)
		} else {
			roots = append(roots, p)
		}
	}
	if len(roots) == 0 {
		return out, 0
	}

	fileCh, errCh := walker.Walk(roots, walker.Options{
		NoIgnore:   cfg.NoIgnore,
		Hidden:     cfg.Hidden,
		Extensions: cfg.extensions(),
	})

	var wg sync.WaitGroup
	errs := 0
	wg.Add(1)
	go func() {
		defer wg.Done()
		for err := range errCh {
			logger.Warn("walk error", "err", err)
			errs++
		}
	}()

	var found []string
	for path := range fileCh {
		found = append(found, path)
	}
	wg.Wait()
	slices.Sort(found)
	return append(out, found...), errs
}

// renderer highlights one document at a time. It is safe for concurrent use.
type renderer struct {
	cfg       Config
	settings  *query.Config
	reader    input.Reader
	static    *highlight.StaticEngine
	selection *highlight.SelectionEngine
	log       *log.Logger
}

func newRenderer(cfg Config, settings *query.Config, reader input.Reader, logger *log.Logger) *renderer {
	cache := matcher.NewCache()
	return &renderer{
		cfg:       cfg,
		settings:  settings,
		reader:    reader,
		static:    highlight.NewStaticEngine(logger, cache),
		selection: highlight.NewSelectionEngine(logger, cache),
		log:       logger,
	}
}

func (r *renderer) render(path string) output.Result {
	res := output.Result{Path: path}
	if path == input.Stdin {
		res.Path = "(standard input)"
	}
	doc, err := input.ReadDocument(r.reader, path)
	if err != nil {
		res.Err = err
		return res
	}
	res.Doc = doc

	view := newView(&r.cfg, path, doc)
	snap := &extension.Snapshot{}
	if snap.Static, err = r.static.Compute(view, r.settings); err != nil {
		res.Err = err
		return res
	}
	if _, ok := r.cfg.Selection(doc.Len()); ok {
		if snap.Selection, err = r.selection.Compute(view, r.settings.Selection); err != nil {
			r.log.Debug("selection skipped", "path", path, "err", err)
		}
	}
	res.Layers = snap.Layers()
	return res
}

// newView builds the host view for a whole document. Markdown files and
// stdin get a syntax tree so fenced code and frontmatter stay undecorated.
func newView(cfg *Config, path string, doc *text.Doc) *highlight.State {
	v := &highlight.State{Text: doc}
	if sel, ok := cfg.Selection(doc.Len()); ok {
		v.Sel = sel
	}
	if isMarkdown(path) {
		v.Classify = syntax.ParseMarkdown([]byte(doc.String()))
	}
	return v
}

func isMarkdown(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return true
	}
	return path == input.Stdin
}
