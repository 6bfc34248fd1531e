package table

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/csimplestring/go-csv/detector"

	"github.com/inodb/vibe-kb/internal/fileio"
)

// Raw is a table as read from disk: normalized header plus string cells.
type Raw struct {
	Columns []string
	Rows    [][]string
}

// columnReplacer maps characters that are not allowed in VCF INFO keys.
var columnReplacer = strings.NewReplacer(
	"-", "_",
	"/", "_",
	"\\", "_",
	" ", "_",
	"\t", "_",
	"(", "",
	")", "",
	"#", "nb",
)

// NormalizeColumn rewrites a column name into a VCF INFO-safe key,
// e.g. "Entrez GeneId" -> "Entrez_GeneId".
func NormalizeColumn(name string) string {
	return columnReplacer.Replace(name)
}

// ParseDelimiter parses a user-supplied delimiter. "auto" and "" return 0
// (detect from the header line).
func ParseDelimiter(s string) (rune, error) {
	switch s {
	case "", "auto":
		return 0, nil
	case "tab", "\\t", "\t", "tsv":
		return '\t', nil
	case "comma", ",", "csv":
		return ',', nil
	case "semicolon", ";":
		return ';', nil
	case "pipe", "|":
		return '|', nil
	}
	return 0, fmt.Errorf("unsupported delimiter %q", s)
}

// ReadRaw reads the whole table at path (optionally gzipped).
func ReadRaw(path string, delim rune) (*Raw, error) {
	rc, err := fileio.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open annotation table: %w", err)
	}
	defer rc.Close()

	raw, err := ReadRawFrom(rc, delim)
	if err != nil {
		return nil, fmt.Errorf("read annotation table %s: %w", path, err)
	}
	return raw, nil
}

// ReadRawFrom reads a delimited table whose first row is the header.
func ReadRawFrom(r io.Reader, delim rune) (*Raw, error) {
	br := bufio.NewReaderSize(r, 64*1024)
	if delim == 0 {
		head, err := br.Peek(br.Size())
		if err != nil && err != io.EOF && !errors.Is(err, bufio.ErrBufferFull) {
			return nil, fmt.Errorf("peek header: %w", err)
		}
		delim = DetectDelimiter(head)
	}

	cr := csv.NewReader(br)
	cr.Comma = delim
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty table")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	raw := &Raw{Columns: make([]string, len(header))}
	for i, col := range header {
		if i == 0 {
			col = strings.TrimPrefix(col, "\ufeff")
		}
		raw.Columns[i] = NormalizeColumn(col)
	}

	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		raw.Rows = append(raw.Rows, rec)
	}
	return raw, nil
}

// preferredDelimiters are the delimiters accepted from detection, in
// tie-breaking order.
var preferredDelimiters = []rune{'\t', ',', ';', '|'}

// DetectDelimiter returns the most likely cell delimiter for a sample of a
// delimited file. When the detector has no usable candidate, the preferred
// delimiter occurring most often on the first line wins, else a comma.
func DetectDelimiter(sample []byte) rune {
	d := detector.New()
	candidates := d.DetectDelimiter(bytes.NewReader(sample), '"')

	for _, p := range preferredDelimiters {
		for _, c := range candidates {
			if c == string(p) {
				return p
			}
		}
	}

	first := sample
	if i := bytes.IndexByte(sample, '\n'); i >= 0 {
		first = sample[:i]
	}
	best, bestCount := ',', 0
	for _, p := range preferredDelimiters {
		if n := bytes.Count(first, []byte(string(p))); n > bestCount {
			best, bestCount = p, n
		}
	}
	return best
}
