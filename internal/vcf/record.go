package vcf

import (
	"errors"
	"fmt"
	"strings"
)

// InfoColumn is the 0-based index of the INFO column in a data line.
const InfoColumn = 7

// Errors returned by AnnField.
var (
	ErrNoANN    = errors.New("no ANN entry in INFO")
	ErrShortANN = errors.New("ANN entry has too few fields")
)

// Record is a data line split into its tab-separated columns.
type Record struct {
	Fields []string
}

// ParseRecord splits a data line. Lines with fewer than eight columns have
// no INFO column and are rejected.
func ParseRecord(text string) (*Record, error) {
	fields := strings.Split(text, "\t")
	if len(fields) <= InfoColumn {
		return nil, fmt.Errorf("expected at least %d columns, found %d", InfoColumn+1, len(fields))
	}
	return &Record{Fields: fields}, nil
}

// Info returns the raw INFO column.
func (r *Record) Info() string {
	return r.Fields[InfoColumn]
}

// AppendInfo appends a ";"-joined fragment to INFO. An empty or missing
// (".") INFO column is replaced outright.
func (r *Record) AppendInfo(fragment string) {
	if fragment == "" {
		return
	}
	info := r.Fields[InfoColumn]
	if info == "" || info == "." {
		r.Fields[InfoColumn] = fragment
		return
	}
	r.Fields[InfoColumn] = info + ";" + fragment
}

// String joins the columns back into a line without terminator.
func (r *Record) String() string {
	return strings.Join(r.Fields, "\t")
}

// InfoValue returns the value of the first INFO entry whose key is exactly
// key. Flag entries return "" and true.
func InfoValue(info, key string) (string, bool) {
	for rest := info; rest != ""; {
		entry := rest
		if i := strings.IndexByte(rest, ';'); i >= 0 {
			entry, rest = rest[:i], rest[i+1:]
		} else {
			rest = ""
		}
		k, v, _ := strings.Cut(entry, "=")
		if k == key {
			return v, true
		}
	}
	return "", false
}

// AnnField returns the index-th "|"-separated sub-field of the first effect
// of the SnpEff ANN entry in info.
func AnnField(info string, index int) (string, error) {
	ann, ok := InfoValue(info, "ANN")
	if !ok {
		return "", ErrNoANN
	}
	if i := strings.IndexByte(ann, ','); i >= 0 {
		ann = ann[:i]
	}
	for n := 0; ; n++ {
		i := strings.IndexByte(ann, '|')
		if n == index {
			if i >= 0 {
				return ann[:i], nil
			}
			return ann, nil
		}
		if i < 0 {
			return "", ErrShortANN
		}
		ann = ann[i+1:]
	}
}

// ParseError represents an error during VCF processing with line context.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("vcf parse error at line %d: %s", e.Line, e.Message)
}
