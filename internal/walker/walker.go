// Package walker discovers documents under a set of roots using raw
// getdents64, honoring .gitignore files and skipping hidden entries.
package walker

import (
	"path/filepath"
	"runtime"
	"sync"

	"golang.org/x/sys/unix"
)

// Options configures document discovery.
type Options struct {
	NoIgnore bool // skip .gitignore processing
	Hidden   bool // include hidden files and directories
	// Extensions lists accepted extensions with the leading dot, lowercase.
	// Empty means DefaultExtensions.
	Extensions []string
}

// Walk sends the path of every document under roots. A root that is a
// regular file is sent as is, whatever its extension. Paths arrive in no
// particular order.
func Walk(roots []string, opts Options) (<-chan string, <-chan error) {
	fileCh := make(chan string, 256)
	errCh := make(chan error, 16)
	if len(opts.Extensions) == 0 {
		opts.Extensions = DefaultExtensions
	}

	go func() {
		defer close(fileCh)
		defer close(errCh)

		pw := &parallelWalker{fileCh: fileCh, errCh: errCh, opts: opts}
		pw.cond = sync.NewCond(&pw.mu)

		for _, root := range roots {
			var stat unix.Stat_t
			if err := unix.Stat(root, &stat); err != nil {
				errCh <- &WalkError{Path: root, Err: err}
				continue
			}
			switch stat.Mode & unix.S_IFMT {
			case unix.S_IFREG:
				fileCh <- root
			case unix.S_IFDIR:
				var layers []ignoreLayer
				if !opts.NoIgnore {
					layers = []ignoreLayer{loadIgnoreLayer(root)}
				}
				pw.enqueue(walkItem{path: root, ignores: layers})
			}
		}
		if pw.pending == 0 {
			return
		}

		var wg sync.WaitGroup
		for range runtime.NumCPU() {
			wg.Add(1)
			go func() {
				defer wg.Done()
				pw.worker()
			}()
		}
		wg.Wait()
	}()

	return fileCh, errCh
}

// walkItem is a directory waiting to be read.
type walkItem struct {
	path    string
	ignores []ignoreLayer // nil when .gitignore processing is off
}

// parallelWalker coordinates concurrent BFS directory traversal.
type parallelWalker struct {
	fileCh chan<- string
	errCh  chan<- error
	opts   Options

	mu      sync.Mutex
	queue   []walkItem
	pending int        // dirs enqueued but not yet fully processed
	cond    *sync.Cond // signaled when items are enqueued or work is done
	done    bool
}

func (pw *parallelWalker) enqueue(item walkItem) {
	pw.mu.Lock()
	pw.queue = append(pw.queue, item)
	pw.pending++
	pw.mu.Unlock()
	pw.cond.Signal()
}

// dequeue blocks until an item is available. It returns false when all
// work is complete.
func (pw *parallelWalker) dequeue() (walkItem, bool) {
	pw.mu.Lock()
	defer pw.mu.Unlock()
	for len(pw.queue) == 0 && !pw.done {
		pw.cond.Wait()
	}
	if len(pw.queue) == 0 {
		return walkItem{}, false
	}
	item := pw.queue[0]
	pw.queue = pw.queue[1:]
	return item, true
}

func (pw *parallelWalker) finish() {
	pw.mu.Lock()
	pw.pending--
	if pw.pending == 0 && len(pw.queue) == 0 {
		pw.done = true
		pw.cond.Broadcast()
	}
	pw.mu.Unlock()
}

func (pw *parallelWalker) worker() {
	buf := make([]byte, 32*1024) // per-worker getdents buffer
	var dirents []dirent
	for {
		item, ok := pw.dequeue()
		if !ok {
			return
		}
		dirents = pw.processDir(item, buf, dirents)
		pw.finish()
	}
}

// processDir reads one directory, sends its documents and enqueues its
// subdirectories once the directory fd is closed.
func (pw *parallelWalker) processDir(item walkItem, buf []byte, dirents []dirent) []dirent {
	fd, err := unix.Open(item.path, unix.O_RDONLY|unix.O_DIRECTORY|unix.O_NOATIME, 0)
	if err != nil {
		fd, err = unix.Open(item.path, unix.O_RDONLY|unix.O_DIRECTORY, 0)
		if err != nil {
			pw.errCh <- &WalkError{Path: item.path, Err: err}
			return dirents
		}
	}

	var subdirs []walkItem
	for {
		n, err := unix.Getdents(fd, buf)
		if err != nil {
			pw.errCh <- &WalkError{Path: item.path, Err: err}
			break
		}
		if n == 0 {
			break
		}
		dirents = parseDirents(buf, n, dirents)
		for _, entry := range dirents {
			fullPath := filepath.Join(item.path, entry.name)
			isDir, isFile := pw.kind(entry, fullPath)
			switch {
			case isDir:
				if skipDir(entry.name, pw.opts.Hidden) || ignored(item.ignores, fullPath, true) {
					continue
				}
				sub := walkItem{path: fullPath}
				if !pw.opts.NoIgnore {
					sub.ignores = childLayers(item.ignores, fullPath)
				}
				subdirs = append(subdirs, sub)
			case isFile:
				if skipFile(entry.name, pw.opts.Hidden, pw.opts.Extensions) || ignored(item.ignores, fullPath, false) {
					continue
				}
				pw.fileCh <- fullPath
			}
		}
	}
	unix.Close(fd)

	for _, sub := range subdirs {
		pw.enqueue(sub)
	}
	return dirents
}

// kind resolves an entry to directory or regular file, stat-ing when the
// filesystem does not report d_type. Symlinks count only when they point at
// a regular file, so link cycles cannot trap the walk.
func (pw *parallelWalker) kind(entry dirent, fullPath string) (isDir, isFile bool) {
	switch entry.dtype {
	case dtDir:
		return true, false
	case dtReg:
		return false, true
	case dtLnk, dtUnknown:
		var stat unix.Stat_t
		if err := unix.Stat(fullPath, &stat); err != nil {
			if entry.dtype == dtUnknown {
				pw.errCh <- &WalkError{Path: fullPath, Err: err}
			}
			return false, false
		}
		mode := stat.Mode & unix.S_IFMT
		return entry.dtype == dtUnknown && mode == unix.S_IFDIR, mode == unix.S_IFREG
	}
	return false, false
}

// WalkError represents an error during directory traversal.
type WalkError struct {
	Path string
	Err  error
}

func (e *WalkError) Error() string {
	return "walk " + e.Path + ": " + e.Err.Error()
}

func (e *WalkError) Unwrap() error {
	return e.Err
}
