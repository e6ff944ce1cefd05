package input

import (
	"golang.org/x/sys/unix"
)

// readMmap maps fd read-only and takes ownership of it. It falls back to a
// buffered read when mapping fails.
func readMmap(fd int, size int64) (ReadResult, error) {
	unix.Fadvise(fd, 0, size, unix.FADV_SEQUENTIAL)

	data, err := unix.Mmap(fd, 0, int(size), unix.PROT_READ, unix.MAP_PRIVATE|unix.MAP_POPULATE)
	if err != nil {
		return readBuffered(fd, size)
	}
	unix.Madvise(data, unix.MADV_SEQUENTIAL)

	return ReadResult{
		Data: data,
		Closer: func() error {
			err := unix.Munmap(data)
			unix.Close(fd)
			return err
		},
	}, nil
}

// NewReader returns a Reader that maps files of at least mmapThreshold bytes
// and reads smaller ones into pooled buffers.
func NewReader(mmapThreshold int64) Reader {
	if mmapThreshold <= 0 {
		mmapThreshold = DefaultMmapThreshold
	}
	return &adaptiveReader{threshold: mmapThreshold}
}

type adaptiveReader struct {
	threshold int64
}

func (r *adaptiveReader) Read(path string) (ReadResult, error) {
	fd, size, err := openStat(path)
	if err != nil || size == 0 {
		return ReadResult{Closer: noopCloser}, err
	}
	if size >= r.threshold {
		return readMmap(fd, size)
	}
	return readBuffered(fd, size)
}
