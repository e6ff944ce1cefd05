package input

import (
	"fmt"
	"sync"

	"golang.org/x/sys/unix"
)

// bufPool reuses read buffers across documents. Buffers are stored as *[]byte
// so a grown backing array goes back to the pool.
var bufPool = sync.Pool{
	New: func() any {
		b := make([]byte, 0, 64*1024)
		return &b
	},
}

// BufferedReader reads files with pread into pooled buffers.
type BufferedReader struct{}

func NewBufferedReader() *BufferedReader { return &BufferedReader{} }

func (r *BufferedReader) Read(path string) (ReadResult, error) {
	fd, size, err := openStat(path)
	if err != nil || size == 0 {
		return ReadResult{Closer: noopCloser}, err
	}
	return readBuffered(fd, size)
}

// readBuffered takes ownership of fd.
func readBuffered(fd int, size int64) (ReadResult, error) {
	defer unix.Close(fd)

	bp := bufPool.Get().(*[]byte)
	buf := *bp
	if cap(buf) < int(size) {
		buf = make([]byte, size)
	}
	buf = buf[:size]
	release := func() error {
		*bp = buf[:0]
		bufPool.Put(bp)
		return nil
	}

	total := 0
	for total < len(buf) {
		n, err := unix.Pread(fd, buf[total:], int64(total))
		if err != nil {
			release()
			return ReadResult{}, err
		}
		if n == 0 {
			break // file shrank under us
		}
		total += n
	}
	return ReadResult{Data: buf[:total], Closer: release}, nil
}

// openStat opens path with O_NOATIME where permitted and returns its size.
// The fd is closed when size is 0 or on error.
func openStat(path string) (int, int64, error) {
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_NOATIME, 0)
	if err != nil {
		fd, err = unix.Open(path, unix.O_RDONLY, 0)
	}
	if err != nil {
		return -1, 0, fmt.Errorf("open %s: %w", path, err)
	}
	var stat unix.Stat_t
	if err := unix.Fstat(fd, &stat); err != nil {
		unix.Close(fd)
		return -1, 0, fmt.Errorf("stat %s: %w", path, err)
	}
	if stat.Size == 0 {
		unix.Close(fd)
	}
	return fd, stat.Size, nil
}
