// Package input loads documents from files or stdin for highlighting.
package input

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dl/gohighlight/internal/text"
)

// Stdin is the path that selects standard input.
const Stdin = "-"

// DefaultMmapThreshold is the file size from which documents are mapped
// instead of read.
const DefaultMmapThreshold = 1 << 20

// ErrBinary is returned for files that look binary.
var ErrBinary = errors.New("binary file")

// ReadResult holds the data read from a file and a cleanup function.
type ReadResult struct {
	Data   []byte
	Closer func() error
}

func noopCloser() error { return nil }

// Reader reads file content into a byte slice. Data is only valid until
// Closer is called.
type Reader interface {
	Read(path string) (ReadResult, error)
}

// IsBinary checks if data appears to be binary by scanning for NUL bytes
// in the first 8KB, matching GNU grep behavior.
func IsBinary(data []byte) bool {
	limit := min(len(data), 8192)
	return bytes.IndexByte(data[:limit], 0) >= 0
}

// ReadDocument loads path, or stdin for Stdin, into a document. Binary
// content is rejected with ErrBinary.
func ReadDocument(r Reader, path string) (*text.Doc, error) {
	if path == Stdin {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return newDoc(path, data)
	}
	res, err := r.Read(path)
	if err != nil {
		return nil, err
	}
	defer res.Closer()
	return newDoc(path, res.Data)
}

func newDoc(path string, data []byte) (*text.Doc, error) {
	if IsBinary(data) {
		return nil, fmt.Errorf("%s: %w", path, ErrBinary)
	}
	// The copy detaches the document from pooled or mapped memory.
	return text.NewDoc(string(data)), nil
}
