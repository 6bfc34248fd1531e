// Package fileio opens plain or gzip-compressed input files.
package fileio

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// gzip magic number (0x1f, 0x8b)
var gzipMagic = []byte{0x1f, 0x8b}

// Open opens path for reading, transparently decompressing gzip (and
// therefore BGZF) content. Compression is detected from a ".gz" suffix or
// from the gzip magic bytes. A path of "-" reads from stdin.
func Open(path string) (io.ReadCloser, error) {
	if path == "-" {
		return MaybeDecompress(os.Stdin, false)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	rc, err := MaybeDecompress(f, strings.HasSuffix(path, ".gz"))
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return rc, nil
}

// MaybeDecompress wraps rc in a gzip reader when gz is set or the stream
// starts with the gzip magic bytes. Closing the result closes rc.
func MaybeDecompress(rc io.ReadCloser, gz bool) (io.ReadCloser, error) {
	br := bufio.NewReaderSize(rc, 64*1024)
	if !gz {
		head, err := br.Peek(len(gzipMagic))
		if err != nil && err != io.EOF {
			return nil, fmt.Errorf("read magic bytes: %w", err)
		}
		gz = len(head) == len(gzipMagic) && head[0] == gzipMagic[0] && head[1] == gzipMagic[1]
	}
	if !gz {
		return &readCloser{Reader: br, closers: []io.Closer{rc}}, nil
	}

	zr, err := gzip.NewReader(br)
	if err != nil {
		return nil, fmt.Errorf("create gzip reader: %w", err)
	}
	// BGZF files are a series of gzip members.
	zr.Multistream(true)
	return &readCloser{Reader: zr, closers: []io.Closer{zr, rc}}, nil
}

type readCloser struct {
	io.Reader
	closers []io.Closer
}

func (r *readCloser) Close() error {
	var first error
	for _, c := range r.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
