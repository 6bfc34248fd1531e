// Package vcf provides line-level access to VCF files: classification of
// meta, header and data lines and INFO column manipulation. Records are
// never re-serialized from parsed values, so untouched lines pass through
// byte-identical.
package vcf

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/inodb/vibe-kb/internal/fileio"
)

// Kind classifies a VCF line.
type Kind uint8

const (
	KindRecord Kind = iota // tab-separated data line
	KindMeta               // "##" meta-information line
	KindHeader             // "#CHROM" column-header line
	KindBlank              // empty line
)

func (k Kind) String() string {
	switch k {
	case KindRecord:
		return "record"
	case KindMeta:
		return "meta"
	case KindHeader:
		return "header"
	case KindBlank:
		return "blank"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Classify returns the kind of a line without its terminator.
func Classify(text string) Kind {
	switch {
	case text == "":
		return KindBlank
	case strings.HasPrefix(text, "##"):
		return KindMeta
	case text[0] == '#':
		return KindHeader
	}
	return KindRecord
}

// Line is one line of a VCF stream, without its line terminator.
type Line struct {
	Kind   Kind
	Text   string
	Number int // 1-based line number
}

// Reader reads a VCF file line by line.
type Reader struct {
	reader     *bufio.Reader
	closer     io.Closer
	lineNumber int
}

// Open opens a VCF file for reading. Gzip and BGZF input is detected from
// a ".gz" suffix or the gzip magic bytes. Use "-" for stdin.
func Open(path string) (*Reader, error) {
	rc, err := fileio.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open vcf file: %w", err)
	}
	r := NewReader(rc)
	r.closer = rc
	return r, nil
}

// NewReader creates a Reader from an io.Reader.
func NewReader(r io.Reader) *Reader {
	return &Reader{reader: bufio.NewReaderSize(r, 256*1024)}
}

// Next returns the next line. It returns io.EOF when there are no more lines.
// A final line without a trailing newline is returned normally.
func (r *Reader) Next() (Line, error) {
	text, err := r.reader.ReadString('\n')
	if err != nil {
		if err != io.EOF {
			return Line{}, fmt.Errorf("read line %d: %w", r.lineNumber+1, err)
		}
		if text == "" {
			return Line{}, io.EOF
		}
	}
	r.lineNumber++

	text = strings.TrimRight(text, "\r\n")
	return Line{Kind: Classify(text), Text: text, Number: r.lineNumber}, nil
}

// LineNumber returns the number of lines read so far.
func (r *Reader) LineNumber() int {
	return r.lineNumber
}

// Close closes the underlying file, if any.
func (r *Reader) Close() error {
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}
