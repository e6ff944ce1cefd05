package extension

import (
	"fmt"
	"maps"
	"slices"

	"github.com/dl/gohighlight/internal/query"
)

func onOff(b bool) string {
	if b {
		return "ON"
	}
	return "OFF"
}

// RegisterCommands registers the toggle commands for the current snapshot:
// the global switch, both selection modes, one per query and one per tag.
// Hosts re-register after queries or tags change.
func (p *Plugin) RegisterCommands(reg CommandRegistry) {
	reg.Register("toggle-adhl", "The switch - start/stop all static highlighting", p.ToggleSwitch)
	reg.Register("toggle-cursor", "Start/stop highlighting the word around the cursor", p.ToggleWordAroundCursor)
	reg.Register("toggle-selected", "Start/stop highlighting actively selected text.", p.ToggleSelectedText)

	cfg := p.Config()
	for _, name := range slices.Sorted(maps.Keys(cfg.Queries)) {
		q := cfg.Queries[name]
		reg.Register("toggle-"+name, fmt.Sprintf("Toggle highlighter %q (tag: %s)", name, q.Tag), func() error {
			return p.ToggleQuery(name)
		})
	}
	for _, tag := range cfg.Tags() {
		reg.Register("toggle-"+tag, fmt.Sprintf("Toggle tag %q", tag), func() error {
			return p.ToggleTag(tag)
		})
	}
}

// ToggleSwitch flips the global static-highlighting switch.
func (p *Plugin) ToggleSwitch() error {
	cfg := p.Config()
	next := cfg.SetSwitch(!cfg.Switch)
	return p.commit(next, fmt.Sprintf("Static highlighting is now %s.", onOff(next.Switch)))
}

// ToggleWordAroundCursor flips word-around-cursor selection highlighting.
func (p *Plugin) ToggleWordAroundCursor() error {
	cfg := p.Config()
	s := cfg.Selection
	s.HighlightWordAroundCursor = !s.HighlightWordAroundCursor
	return p.commit(cfg.WithSelection(s),
		fmt.Sprintf("Highlighting the word around the cursor is now %s.", onOff(s.HighlightWordAroundCursor)))
}

// ToggleSelectedText flips selected-text highlighting.
func (p *Plugin) ToggleSelectedText() error {
	cfg := p.Config()
	s := cfg.Selection
	s.HighlightSelectedText = !s.HighlightSelectedText
	return p.commit(cfg.WithSelection(s),
		fmt.Sprintf("Highlighting selected text is now %s.", onOff(s.HighlightSelectedText)))
}

// ToggleQuery flips one query's enabled flag.
func (p *Plugin) ToggleQuery(name string) error {
	next, err := p.Config().ToggleQuery(name)
	if err != nil {
		return err
	}
	q := next.Queries[name]
	return p.commit(next, fmt.Sprintf("Toggled %q %s; its tag %q is %s.", name, onOff(q.Enabled), q.Tag, onOff(q.TagEnabled)))
}

// ToggleTag flips every query carrying tag.
func (p *Plugin) ToggleTag(tag string) error {
	next, err := p.Config().ToggleTag(tag)
	if err != nil {
		return err
	}
	msg := fmt.Sprintf("Toggled %q ON.", tag)
	if !tagEnabled(next, tag) {
		msg = fmt.Sprintf("Toggled %q OFF. All highlighters carrying this tag are now OFF, too.", tag)
	}
	return p.commit(next, msg)
}

func tagEnabled(cfg *query.Config, tag string) bool {
	for _, q := range cfg.Ordered() {
		if q.Tag == tag {
			return q.TagEnabled
		}
	}
	return false
}

// commit persists next, swaps it in and posts msg.
func (p *Plugin) commit(next *query.Config, msg string) error {
	if p.store != nil {
		if err := p.store.Save(next); err != nil {
			return fmt.Errorf("save settings: %w", err)
		}
	}
	p.Reconfigure(next)
	if p.notify != nil {
		p.notify.Notify(msg)
	}
	return nil
}
