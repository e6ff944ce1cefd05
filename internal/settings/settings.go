// Package settings is the configuration collaborator of the highlighter: it
// loads and migrates stored settings into an immutable *query.Config, saves
// snapshots atomically, and imports or exports the query dictionary.
package settings

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"

	"github.com/dl/gohighlight/internal/query"
)

// ErrNoSettings is returned by Load when the settings file does not exist.
var ErrNoSettings = errors.New("no settings file")

// EnvPrefix prefixes environment overrides, e.g. GOHL_ON_OFF_SWITCH=false.
const EnvPrefix = "GOHL"

// DefaultPath returns $XDG_CONFIG_HOME/gohl/settings.yaml, or the platform
// equivalent.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "gohl", "settings.yaml")
}

// Store persists configuration snapshots in a single file. The format follows
// the file extension.
type Store struct {
	path   string
	logger *log.Logger
	mu     sync.Mutex
}

// NewStore returns a Store for path. An empty path means DefaultPath.
func NewStore(path string, logger *log.Logger) *Store {
	if path == "" {
		path = DefaultPath()
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Store{path: path, logger: logger}
}

// Path returns the settings file location.
func (s *Store) Path() string { return s.path }

// Load reads, migrates and validates the settings file.
func (s *Store) Load() (*query.Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNoSettings, s.path)
		}
		return nil, err
	}
	v := newViper()
	v.SetConfigFile(s.path)
	v.SetConfigType(formatOf(s.path))
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read settings %s: %w", s.path, err)
	}
	cfg, err := decode(v, s.logger)
	if err != nil {
		return nil, fmt.Errorf("settings %s: %w", s.path, err)
	}
	s.logger.Debug("settings loaded", "path", s.path, "queries", len(cfg.Queries))
	return cfg, nil
}

// LoadOrDefault is Load with a missing file mapped to query.Default.
func (s *Store) LoadOrDefault() (*query.Config, error) {
	cfg, err := s.Load()
	if errors.Is(err, ErrNoSettings) {
		return query.Default(), nil
	}
	return cfg, err
}

// Save writes cfg atomically: a temp file in the same directory is renamed
// over the settings file.
func (s *Store) Save(cfg *query.Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	data, err := marshal(formatOf(s.path), documentOf(cfg))
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".tmp.*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename settings: %w", err)
	}
	s.logger.Debug("settings saved", "path", s.path)
	return nil
}

// newViper returns a viper instance with the stock defaults and GOHL_ env
// overrides registered.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	sel := query.DefaultSelection()
	v.SetDefault("on_off_switch", true)
	v.SetDefault("selection.highlight_word_around_cursor", sel.HighlightWordAroundCursor)
	v.SetDefault("selection.highlight_selected_text", sel.HighlightSelectedText)
	v.SetDefault("selection.min_selection_length", sel.MinSelectionLength)
	v.SetDefault("selection.max_matches", sel.MaxMatches)
	v.SetDefault("selection.highlight_delay", sel.HighlightDelay.String())
	v.SetDefault("selection.ignored_words", sel.IgnoredWords)
	return v
}

// decode migrates whatever v holds into a normalized, validated snapshot.
func decode(v *viper.Viper, logger *log.Logger) (*query.Config, error) {
	// Legacy values sit below env overrides and the current keys.
	for _, k := range legacyKeys {
		if v.InConfig(k[0]) && !v.InConfig(k[1]) {
			v.SetDefault(k[1], v.Get(k[0]))
		}
	}

	var doc document
	if err := v.Unmarshal(&doc); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	sel, err := doc.Selection.migrate()
	if err != nil {
		return nil, err
	}
	cfg := &query.Config{
		Switch:    doc.Switch,
		Queries:   migrateQueries(doc.Queries, logger),
		Order:     doc.Order,
		Selection: sel,
	}
	cfg = cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// migrateQueries rekeys entries by their name field, since map keys may
// have been case folded by the loader. Entries without a pattern or with
// a name unusable as a class are dropped.
func migrateQueries(entries map[string]entry, logger *log.Logger) map[string]query.Query {
	out := make(map[string]query.Query, len(entries))
	for key, e := range entries {
		q := e.migrate(key)
		switch {
		case q.Pattern == "":
			logger.Warn("dropping highlighter without pattern", "query", q.Name)
			continue
		case !query.ValidName(q.Name):
			logger.Warn("dropping highlighter with invalid name", "query", q.Name)
			continue
		}
		if _, dup := out[q.Name]; dup {
			logger.Warn("duplicate highlighter name", "query", q.Name)
		}
		out[q.Name] = q
	}
	return out
}
