package ndjson

import (
	"bufio"
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"

	"github.com/agentstation/bodsmap/pkg/constants"
	"github.com/agentstation/bodsmap/pkg/errors"
)

// Writer writes one compact JSON value per line.
type Writer struct {
	path  string
	buf   *bufio.Writer
	gz    *gzip.Writer
	file  *os.File
	enc   *json.Encoder
	count int
}

// NewWriter writes NDJSON to w without compression. Close flushes but does
// not close w.
func NewWriter(w io.Writer) *Writer {
	buf := bufio.NewWriterSize(w, constants.WriteBufferSize)
	return newWriter(buf)
}

func newWriter(buf *bufio.Writer) *Writer {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	return &Writer{buf: buf, enc: enc}
}

// Create creates or truncates path, compressing the output when it is a gzip
// file.
func Create(path string) (*Writer, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, constants.DirPermissions); err != nil {
			return nil, errors.WrapIO("create", dir, err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, constants.FilePermissions)
	if err != nil {
		return nil, errors.WrapIO("create", path, err)
	}

	var w *Writer
	if IsGzip(path) {
		gz := gzip.NewWriter(f)
		w = newWriter(bufio.NewWriterSize(gz, constants.WriteBufferSize))
		w.gz = gz
	} else {
		w = newWriter(bufio.NewWriterSize(f, constants.WriteBufferSize))
	}
	w.path = path
	w.file = f
	return w, nil
}

// Write encodes v as one line.
func (w *Writer) Write(v any) error {
	if err := w.enc.Encode(v); err != nil {
		return errors.WrapIO("write", w.path, err)
	}
	w.count++
	return nil
}

// Count returns the number of values written.
func (w *Writer) Count() int { return w.count }

// Path returns the file the writer was created on, if any.
func (w *Writer) Path() string { return w.path }

// Close flushes buffered output, finishes the gzip stream and closes the file.
func (w *Writer) Close() error {
	err := w.buf.Flush()
	if w.gz != nil {
		if gzErr := w.gz.Close(); err == nil {
			err = gzErr
		}
	}
	if w.file != nil {
		if fErr := w.file.Close(); err == nil {
			err = fErr
		}
		w.file = nil
	}
	if err != nil {
		return errors.WrapIO("close", w.path, err)
	}
	return nil
}
