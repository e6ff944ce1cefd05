package output

import (
	"os"

	"golang.org/x/sys/unix"

	"github.com/dl/gohighlight/internal/scheduler"
)

// Writer writes formatted output to a file descriptor using writev.
type Writer struct {
	fd int
}

// NewWriter creates a Writer for f, usually os.Stdout.
func NewWriter(f *os.File) *Writer {
	return &Writer{fd: int(f.Fd())}
}

// Write writes the given bytes, retrying short writes.
func (w *Writer) Write(data []byte) error {
	for len(data) > 0 {
		n, err := unix.Writev(w.fd, [][]byte{data})
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return err
		}
		data = data[n:]
	}
	return nil
}

// OrderedWriter writes worker results in input order so output is
// deterministic with parallel rendering.
type OrderedWriter struct {
	writer    *Writer
	formatter Formatter
	multiFile bool
	buf       []byte
}

// NewOrderedWriter creates an OrderedWriter.
func NewOrderedWriter(w *Writer, f Formatter, multiFile bool) *OrderedWriter {
	return &OrderedWriter{
		writer:    w,
		formatter: f,
		multiFile: multiFile,
	}
}

// WriteOrdered consumes results and writes them in sequence order. onResult,
// if set, sees every result, failed ones included, in that same order. The
// first write error is returned after the channel is drained.
func (ow *OrderedWriter) WriteOrdered(results <-chan scheduler.Result[Result], onResult func(Result)) error {
	var werr error
	scheduler.InOrder(results, func(r Result) {
		if onResult != nil {
			onResult(r)
		}
		if r.Err != nil || werr != nil {
			return
		}
		ow.buf = ow.formatter.Format(ow.buf[:0], r, ow.multiFile)
		werr = ow.writer.Write(ow.buf)
	})
	return werr
}
