package settings

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"

	"github.com/dl/gohighlight/internal/query"
)

// ExportQueries renders the query dictionary as indented JSON.
func ExportQueries(cfg *query.Config) ([]byte, error) {
	out := make(map[string]entry, len(cfg.Queries))
	for name, q := range cfg.Queries {
		out[name] = entryOf(q)
	}
	return json.MarshalIndent(out, "", "  ")
}

// ImportQueries merges a JSON query dictionary, current or legacy layout,
// into cfg. Imported queries replace same-named ones in place; new ones are
// appended to the paint order by name. It returns the imported names.
func ImportQueries(cfg *query.Config, data []byte, logger *log.Logger) (*query.Config, []string, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	v := viper.New()
	v.SetConfigType("json")
	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, nil, fmt.Errorf("import: %w", err)
	}
	var entries map[string]entry
	if err := v.Unmarshal(&entries); err != nil {
		return nil, nil, fmt.Errorf("import: %w", err)
	}

	imported := migrateQueries(entries, logger)
	names := make([]string, 0, len(imported))
	for name := range imported {
		names = append(names, name)
	}
	slices.Sort(names)

	next := cfg
	for _, name := range names {
		var err error
		if _, ok := next.Queries[name]; ok {
			next, err = next.UpdateQuery(imported[name])
		} else {
			next, err = next.AddQuery(imported[name])
		}
		if err != nil {
			return nil, nil, fmt.Errorf("import %q: %w", name, err)
		}
	}
	return next, names, nil
}
