// Package extension adapts the highlight engines to an editor host: it
// recomputes on document, selection and viewport updates, debounces the
// selection highlighter and publishes immutable decoration snapshots.
package extension

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/dl/gohighlight/internal/highlight"
	"github.com/dl/gohighlight/internal/query"
)

// ErrHostPanic wraps a panic raised while reading host state.
var ErrHostPanic = errors.New("host accessor panicked")

// Update is one host notification.
type Update struct {
	View            highlight.View
	DocChanged      bool
	SelectionSet    bool
	ViewportChanged bool
}

// SettingsStore persists configuration snapshots.
type SettingsStore interface {
	Load() (*query.Config, error)
	Save(cfg *query.Config) error
}

// NotificationSink shows short user-facing notices.
type NotificationSink interface {
	Notify(msg string)
}

// CommandRegistry registers host commands.
type CommandRegistry interface {
	Register(id, name string, run func() error)
}

// Renderer is asked to repaint after a snapshot changes outside a host update,
// i.e. from a timer.
type Renderer interface {
	RequestRender()
}

// RenderFunc adapts a function to Renderer.
type RenderFunc func()

func (f RenderFunc) RequestRender() { f() }

type nopRenderer struct{}

func (nopRenderer) RequestRender() {}

// Snapshot is what the host renders. It is never mutated once published.
type Snapshot struct {
	Generation uint64
	Static     highlight.Layers
	Selection  highlight.Set
	Stylesheet string
}

// Layers merges selection matches into the token layer. Selection matches
// paint after static tokens that start at the same offset.
func (s *Snapshot) Layers() highlight.Layers {
	if len(s.Selection) == 0 {
		return s.Static
	}
	tokens := make(highlight.Set, 0, len(s.Static.Token)+len(s.Selection))
	i, j := 0, 0
	for i < len(s.Static.Token) || j < len(s.Selection) {
		if j >= len(s.Selection) || (i < len(s.Static.Token) && s.Static.Token[i].From <= s.Selection[j].From) {
			tokens = append(tokens, s.Static.Token[i])
			i++
		} else {
			tokens = append(tokens, s.Selection[j])
			j++
		}
	}
	return highlight.Layers{Line: s.Static.Line, Token: tokens, Widget: s.Static.Widget}
}

func orDiscard(logger *log.Logger) *log.Logger {
	if logger == nil {
		return log.New(io.Discard)
	}
	return logger
}

// guard runs fn, converting a panic into an ErrHostPanic error.
func guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrHostPanic, r)
		}
	}()
	return fn()
}
