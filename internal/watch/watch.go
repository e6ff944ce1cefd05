// Package watch reports changes to individual files using raw inotify + epoll.
//
// Files are watched through their parent directory so that saves which replace
// the file by rename (editors, settings.Save) keep being observed.
package watch

import (
	"encoding/binary"
	"fmt"
	"path/filepath"
	"sync"

	"golang.org/x/sys/unix"
)

// Event represents a file change event.
type Event struct {
	Path string
	Type EventType
	Err  error
}

// EventType identifies the kind of file change.
type EventType int

const (
	EventModified EventType = iota
	EventCreated
	EventDeleted
)

func (t EventType) String() string {
	switch t {
	case EventModified:
		return "modified"
	case EventCreated:
		return "created"
	case EventDeleted:
		return "deleted"
	}
	return "unknown"
}

const dirMask = unix.IN_CLOSE_WRITE | unix.IN_MODIFY | unix.IN_CREATE |
	unix.IN_MOVED_TO | unix.IN_MOVED_FROM | unix.IN_DELETE

// Watcher watches a set of files.
type Watcher struct {
	inotifyFd int
	epollFd   int

	mu    sync.Mutex
	dirs  map[int]string  // wd -> directory
	files map[string]bool // absolute paths of interest

	done      chan struct{}
	closeOnce sync.Once
}

// New creates a new inotify-based file watcher.
func New() (*Watcher, error) {
	ifd, err := unix.InotifyInit1(unix.IN_CLOEXEC | unix.IN_NONBLOCK)
	if err != nil {
		return nil, fmt.Errorf("inotify_init1: %w", err)
	}

	efd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		unix.Close(ifd)
		return nil, fmt.Errorf("epoll_create1: %w", err)
	}

	event := unix.EpollEvent{
		Events: unix.EPOLLIN,
		Fd:     int32(ifd),
	}
	if err := unix.EpollCtl(efd, unix.EPOLL_CTL_ADD, ifd, &event); err != nil {
		unix.Close(efd)
		unix.Close(ifd)
		return nil, fmt.Errorf("epoll_ctl: %w", err)
	}

	return &Watcher{
		inotifyFd: ifd,
		epollFd:   efd,
		dirs:      make(map[int]string),
		files:     make(map[string]bool),
		done:      make(chan struct{}),
	}, nil
}

// Add starts reporting changes to path. The file need not exist yet, but its
// directory must.
func (w *Watcher) Add(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(absPath)

	w.mu.Lock()
	defer w.mu.Unlock()
	// inotify returns the existing descriptor for a directory already watched.
	wd, err := unix.InotifyAddWatch(w.inotifyFd, dir, dirMask)
	if err != nil {
		return fmt.Errorf("inotify_add_watch %s: %w", dir, err)
	}
	w.dirs[wd] = dir
	w.files[absPath] = true
	return nil
}

// Events returns a channel of file events. It is closed after Close.
func (w *Watcher) Events() <-chan Event {
	ch := make(chan Event, 64)
	go func() {
		defer close(ch)
		buf := make([]byte, 4096)
		events := make([]unix.EpollEvent, 1)

		for {
			select {
			case <-w.done:
				return
			default:
			}

			// 100ms timeout so Close is noticed.
			n, err := unix.EpollWait(w.epollFd, events, 100)
			if err != nil {
				if err == unix.EINTR {
					continue
				}
				w.send(ch, Event{Err: fmt.Errorf("epoll_wait: %w", err)})
				return
			}
			if n == 0 {
				continue
			}

			nbytes, err := unix.Read(w.inotifyFd, buf)
			if err != nil {
				if err == unix.EAGAIN {
					continue
				}
				w.send(ch, Event{Err: fmt.Errorf("read inotify: %w", err)})
				return
			}

			for _, ev := range w.parseEvents(buf[:nbytes]) {
				if !w.send(ch, ev) {
					return
				}
			}
		}
	}()
	return ch
}

func (w *Watcher) send(ch chan<- Event, ev Event) bool {
	select {
	case ch <- ev:
		return true
	case <-w.done:
		return false
	}
}

// inotify event header layout:
//
//	int32  wd       (offset 0)
//	uint32 mask     (offset 4)
//	uint32 cookie   (offset 8)
//	uint32 len      (offset 12)
//	char   name[]   (offset 16)
const inotifyEventSize = 16

func (w *Watcher) parseEvents(buf []byte) []Event {
	w.mu.Lock()
	defer w.mu.Unlock()

	var out []Event
	offset := 0
	for offset+inotifyEventSize <= len(buf) {
		wd := int32(binary.LittleEndian.Uint32(buf[offset:]))
		mask := binary.LittleEndian.Uint32(buf[offset+4:])
		nameLen := int(binary.LittleEndian.Uint32(buf[offset+12:]))

		nameStart := offset + inotifyEventSize
		nameEnd := nameStart + nameLen
		if nameEnd > len(buf) {
			break
		}
		name := trimNUL(buf[nameStart:nameEnd])
		offset = nameEnd

		dir, ok := w.dirs[int(wd)]
		if !ok || name == "" {
			continue
		}
		path := filepath.Join(dir, name)
		if !w.files[path] {
			continue
		}

		switch {
		case mask&(unix.IN_CREATE|unix.IN_MOVED_TO) != 0:
			out = append(out, Event{Path: path, Type: EventCreated})
		case mask&(unix.IN_CLOSE_WRITE|unix.IN_MODIFY) != 0:
			out = append(out, Event{Path: path, Type: EventModified})
		case mask&(unix.IN_DELETE|unix.IN_MOVED_FROM) != 0:
			out = append(out, Event{Path: path, Type: EventDeleted})
		}
	}
	return out
}

func trimNUL(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}

// Close stops the watcher and releases resources.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		unix.Close(w.epollFd)
		err = unix.Close(w.inotifyFd)
	})
	return err
}
