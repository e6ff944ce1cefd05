package cli

import (
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/dl/gohighlight/internal/extension"
	"github.com/dl/gohighlight/internal/settings"
	"github.com/dl/gohighlight/internal/style"
)

// Stylesheet writes the CSS for the stored queries.
func Stylesheet(store *settings.Store, out io.Writer) error {
	cfg, err := store.LoadOrDefault()
	if err != nil {
		return err
	}
	_, err = io.WriteString(out, style.Stylesheet(cfg))
	return err
}

// Export writes the stored query dictionary as JSON.
func Export(store *settings.Store, out io.Writer) error {
	cfg, err := store.LoadOrDefault()
	if err != nil {
		return err
	}
	data, err := settings.ExportQueries(cfg)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = out.Write(data)
	return err
}

// Import merges a JSON query dictionary into the stored settings and saves
// them. It returns the imported query names.
func Import(store *settings.Store, data []byte, logger *log.Logger) ([]string, error) {
	cfg, err := store.LoadOrDefault()
	if err != nil {
		return nil, err
	}
	next, names, err := settings.ImportQueries(cfg, data, logger)
	if err != nil {
		return nil, err
	}
	if err := store.Save(next); err != nil {
		return nil, err
	}
	return names, nil
}

// commandTable collects the plugin's toggle commands.
type commandTable struct {
	names map[string]string
	run   map[string]func() error
}

func (t *commandTable) Register(id, name string, run func() error) {
	t.names[id] = name
	t.run[id] = run
}

// notifier prints plugin notices.
type notifier struct{ out io.Writer }

func (n notifier) Notify(msg string) { fmt.Fprintln(n.out, msg) }

func loadCommands(store *settings.Store, out io.Writer, logger *log.Logger) (*commandTable, error) {
	cfg, err := store.LoadOrDefault()
	if err != nil {
		return nil, err
	}
	p := extension.New(cfg, extension.Options{Logger: logger, Store: store, Notify: notifier{out}})
	t := &commandTable{names: map[string]string{}, run: map[string]func() error{}}
	p.RegisterCommands(t)
	return t, nil
}

// Toggle runs the toggle command id, saving the result and printing its
// notice.
func Toggle(store *settings.Store, id string, out io.Writer, logger *log.Logger) error {
	t, err := loadCommands(store, out, logger)
	if err != nil {
		return err
	}
	run, ok := t.run[id]
	if !ok {
		return fmt.Errorf("unknown command %q", id)
	}
	return run()
}

// ListCommands prints every toggle command id with its description.
func ListCommands(store *settings.Store, out io.Writer, logger *log.Logger) error {
	t, err := loadCommands(store, io.Discard, logger)
	if err != nil {
		return err
	}
	for _, id := range slices.Sorted(maps.Keys(t.names)) {
		fmt.Fprintf(out, "%-24s %s\n", id, t.names[id])
	}
	return nil
}
