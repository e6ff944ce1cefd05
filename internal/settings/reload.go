package settings

import (
	"context"
	"time"

	"github.com/dl/gohighlight/internal/query"
	"github.com/dl/gohighlight/internal/scheduler"
	"github.com/dl/gohighlight/internal/watch"
)

// ReloadDelay coalesces the several events a single save produces.
const ReloadDelay = 50 * time.Millisecond

// Watch reloads the settings file whenever it changes on disk and passes each
// snapshot that loads cleanly to onChange. Invalid edits are logged and
// skipped. Watch blocks until ctx is done or the watcher fails.
func (s *Store) Watch(ctx context.Context, onChange func(*query.Config)) error {
	w, err := watch.New()
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Add(s.path); err != nil {
		return err
	}

	reload := scheduler.NewDebouncer(scheduler.RealClock, ReloadDelay, func(struct{}) {
		cfg, err := s.Load()
		if err != nil {
			s.logger.Warn("settings reload failed", "path", s.path, "err", err)
			return
		}
		s.logger.Info("settings reloaded", "path", s.path)
		onChange(cfg)
	})
	defer reload.Cancel()

	events := w.Events()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if ev.Err != nil {
				return ev.Err
			}
			if ev.Type == watch.EventDeleted {
				continue
			}
			reload.Call(struct{}{})
		}
	}
}
