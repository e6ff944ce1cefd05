package watch

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/sys/unix"
)

// waitFor drains events until one for path with the wanted type arrives.
func waitFor(t *testing.T, events <-chan Event, path string, want EventType) {
	t.Helper()
	timer := time.NewTimer(2 * time.Second)
	defer timer.Stop()
	for {
		select {
		case evt, ok := <-events:
			if !ok {
				t.Fatal("events closed")
			}
			if evt.Err != nil {
				t.Fatalf("event error: %v", evt.Err)
			}
			if evt.Path != path {
				t.Fatalf("event for %q, want only %q", evt.Path, path)
			}
			if evt.Type == want {
				return
			}
		case <-timer.C:
			t.Fatalf("timeout waiting for %s event", want)
		}
	}
}

func TestWatcher_CreateAndClose(t *testing.T) {
	w, err := New()
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	// A second Close is a no-op.
	if err := w.Close(); err != nil {
		t.Fatalf("second Close() error: %v", err)
	}
}

func TestWatcher_AddMissingDir(t *testing.T) {
	w, err := New()
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := w.Add(filepath.Join(t.TempDir(), "nope", "settings.yaml")); err == nil {
		t.Fatal("Add() succeeded for a missing directory")
	}
}

func TestWatcher_DetectModify(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "note.md")
	if err := os.WriteFile(path, []byte("initial\n"), 0644); err != nil {
		t.Fatal(err)
	}

	w, err := New()
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()
	if err := w.Add(path); err != nil {
		t.Fatal(err)
	}
	events := w.Events()

	go func() {
		time.Sleep(50 * time.Millisecond)
		f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return
		}
		f.WriteString("new line\n")
		f.Close()
	}()

	waitFor(t, events, path, EventModified)
}

func TestWatcher_SeesReplaceByRename(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")
	if err := os.WriteFile(path, []byte("a: 1\n"), 0644); err != nil {
		t.Fatal(err)
	}

	w, err := New()
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()
	if err := w.Add(path); err != nil {
		t.Fatal(err)
	}
	events := w.Events()

	// Writes to the temp file are not reported; the rename is.
	go func() {
		time.Sleep(50 * time.Millisecond)
		tmp := filepath.Join(dir, ".settings.yaml.tmp")
		os.WriteFile(tmp, []byte("a: 2\n"), 0644)
		os.Rename(tmp, path)
	}()

	waitFor(t, events, path, EventCreated)
}

func TestWatcher_DetectCreate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "later.md")

	w, err := New()
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()
	if err := w.Add(path); err != nil {
		t.Fatal(err)
	}
	events := w.Events()

	go func() {
		time.Sleep(50 * time.Millisecond)
		os.WriteFile(filepath.Join(dir, "unrelated.md"), []byte("x\n"), 0644)
		os.WriteFile(path, []byte("hello\n"), 0644)
	}()

	waitFor(t, events, path, EventCreated)
}

func inotifyRecord(wd int32, mask uint32, name string) []byte {
	nameLen := 0
	if name != "" {
		nameLen = (len(name) + 1 + 3) &^ 3 // NUL padded to 4 bytes
	}
	buf := make([]byte, inotifyEventSize+nameLen)
	binary.LittleEndian.PutUint32(buf[0:], uint32(wd))
	binary.LittleEndian.PutUint32(buf[4:], mask)
	binary.LittleEndian.PutUint32(buf[12:], uint32(nameLen))
	copy(buf[inotifyEventSize:], name)
	return buf
}

func TestParseEvents(t *testing.T) {
	w := &Watcher{
		dirs:  map[int]string{1: "/tmp/test"},
		files: map[string]bool{"/tmp/test/a.md": true},
	}

	var buf []byte
	buf = append(buf, inotifyRecord(1, unix.IN_MODIFY, "a.md")...)
	buf = append(buf, inotifyRecord(1, unix.IN_MODIFY, "b.md")...)
	buf = append(buf, inotifyRecord(2, unix.IN_MODIFY, "a.md")...)
	buf = append(buf, inotifyRecord(1, unix.IN_MOVED_TO, "a.md")...)
	buf = append(buf, inotifyRecord(1, unix.IN_DELETE, "a.md")...)

	got := w.parseEvents(buf)
	want := []EventType{EventModified, EventCreated, EventDeleted}
	if len(got) != len(want) {
		t.Fatalf("got %d events, want %d: %+v", len(got), len(want), got)
	}
	for i, evt := range got {
		if evt.Path != "/tmp/test/a.md" {
			t.Errorf("event %d path = %q", i, evt.Path)
		}
		if evt.Type != want[i] {
			t.Errorf("event %d type = %s, want %s", i, evt.Type, want[i])
		}
	}
}

func TestParseEvents_Truncated(t *testing.T) {
	w := &Watcher{
		dirs:  map[int]string{1: "/tmp/test"},
		files: map[string]bool{"/tmp/test/a.md": true},
	}
	buf := inotifyRecord(1, unix.IN_MODIFY, "a.md")
	if got := w.parseEvents(buf[:len(buf)-2]); len(got) != 0 {
		t.Errorf("truncated record produced %+v", got)
	}
}
