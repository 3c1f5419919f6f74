// Package ndjson reads and writes newline-delimited JSON files, transparently
// gzip-compressed when the file name ends in ".gz".
package ndjson

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/klauspost/compress/gzip"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"

	"github.com/agentstation/bodsmap/pkg/constants"
	"github.com/agentstation/bodsmap/pkg/errors"
)

// IsGzip reports whether path names a gzip file.
func IsGzip(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".gz")
}

// dropInvalid removes bytes that are not valid UTF-8. Ill-formed sequences
// become U+FFFD first, which is then removed.
func dropInvalid() transform.Transformer {
	return transform.Chain(
		runes.ReplaceIllFormed(),
		runes.Remove(runes.Predicate(func(r rune) bool { return r == utf8.RuneError })),
	)
}

// Reader yields the non-blank lines of an NDJSON stream with their 1-based
// line numbers.
type Reader struct {
	path    string
	closers []io.Closer
	r       *bufio.Reader

	line int
	text []byte
	err  error
}

// NewReader reads NDJSON from r. The stream is not decompressed.
func NewReader(r io.Reader) *Reader {
	return &Reader{
		r: bufio.NewReaderSize(transform.NewReader(r, dropInvalid()), constants.ReadBufferSize),
	}
}

// Open opens path for reading, decompressing it when it is a gzip file.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}

	var src io.Reader = f
	closers := []io.Closer{f}
	if IsGzip(path) {
		gz, err := gzip.NewReader(bufio.NewReaderSize(f, constants.ReadBufferSize))
		if err != nil {
			_ = f.Close()
			return nil, errors.WrapIO("open gzip", path, err)
		}
		src = gz
		closers = append([]io.Closer{gz}, closers...)
	}

	r := NewReader(src)
	r.path = path
	r.closers = closers
	return r, nil
}

// Next advances to the next non-blank line. It returns false at end of input
// or on a read error, which Err reports.
func (r *Reader) Next() bool {
	if r.err != nil {
		return false
	}
	for {
		b, err := r.r.ReadBytes('\n')
		if len(b) > 0 {
			r.line++
			if t := bytes.TrimSpace(b); len(t) > 0 {
				r.text = t
				return true
			}
		}
		if err == io.EOF {
			r.text = nil
			return false
		}
		if err != nil {
			r.err = errors.WrapIO("read", r.path, err)
			r.text = nil
			return false
		}
	}
}

// Bytes returns the current line without surrounding whitespace. The slice
// is only valid until the next call to Next.
func (r *Reader) Bytes() []byte { return r.text }

// Line returns the 1-based number of the current line.
func (r *Reader) Line() int { return r.line }

// Path returns the file the reader was opened on, if any.
func (r *Reader) Path() string { return r.path }

// Err returns the first read error.
func (r *Reader) Err() error { return r.err }

// Close closes the decompressor and the file.
func (r *Reader) Close() error {
	var first error
	for _, c := range r.closers {
		if err := c.Close(); err != nil && first == nil {
			first = errors.WrapIO("close", r.path, err)
		}
	}
	r.closers = nil
	return first
}
