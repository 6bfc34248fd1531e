// Package table loads curated knowledge-base tables (Cancer Gene Census,
// OncoKB) into an immutable in-memory index keyed by a gene symbol or
// transcript identifier.
package table

import (
	"fmt"
)

// Kind classifies a table cell after token interpretation.
type Kind uint8

const (
	KindString Kind = iota
	KindTrue
	KindFalse
	KindMissing
)

// Value is a single table cell.
type Value struct {
	Kind Kind
	Text string // raw cell text as read from the file
}

// Row holds the values of one table row, aligned with Table.Columns.
type Row []Value

// DuplicatePolicy decides what happens when a key appears more than once.
type DuplicatePolicy uint8

const (
	DuplicateLastWins DuplicatePolicy = iota
	DuplicateError
)

// ParseDuplicatePolicy parses "last" or "error". The empty string means "last".
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch s {
	case "", "last":
		return DuplicateLastWins, nil
	case "error":
		return DuplicateError, nil
	}
	return 0, fmt.Errorf("unknown duplicate key policy %q (want last or error)", s)
}

// DefaultNullValues are the cell tokens read as missing in addition to the
// empty string.
var DefaultNullValues = []string{"NA", "NaN", "nan", "N/A", "NULL", "null", "<NA>"}

// Options controls how a raw table becomes a Table.
type Options struct {
	// Delimiter separates cells. Zero means detect it from the header line.
	Delimiter rune
	// KeyColumn is the normalized name of the column used as index.
	KeyColumn   string
	TrueValues  []string
	FalseValues []string
	// NullValues defaults to DefaultNullValues when nil.
	NullValues []string
	Duplicates DuplicatePolicy
}

// Table is an immutable knowledge-base index.
type Table struct {
	key     string
	columns []string
	rows    map[string]Row
	skipped int
}

// Load reads and indexes the table at path.
func Load(path string, opts Options) (*Table, error) {
	raw, err := ReadRaw(path, opts.Delimiter)
	if err != nil {
		return nil, err
	}
	return Build(raw, opts)
}

// Build indexes a raw table by opts.KeyColumn. Rows with an empty key are
// skipped.
func Build(raw *Raw, opts Options) (*Table, error) {
	keyIdx := -1
	seen := make(map[string]bool, len(raw.Columns))
	for i, col := range raw.Columns {
		if seen[col] {
			return nil, fmt.Errorf("duplicate column %q after normalization", col)
		}
		seen[col] = true
		if col == opts.KeyColumn {
			keyIdx = i
		}
	}
	if keyIdx < 0 {
		return nil, &MissingKeyColumnError{Column: opts.KeyColumn, Columns: raw.Columns}
	}

	t := &Table{
		key:     opts.KeyColumn,
		columns: make([]string, 0, len(raw.Columns)-1),
		rows:    make(map[string]Row, len(raw.Rows)),
	}
	for i, col := range raw.Columns {
		if i != keyIdx {
			t.columns = append(t.columns, col)
		}
	}

	interp := newInterpreter(opts)
	for n, cells := range raw.Rows {
		if len(cells) != len(raw.Columns) {
			return nil, fmt.Errorf("row %d: expected %d cells, found %d", n+1, len(raw.Columns), len(cells))
		}
		key := cells[keyIdx]
		if key == "" {
			t.skipped++
			continue
		}
		if _, dup := t.rows[key]; dup && opts.Duplicates == DuplicateError {
			return nil, &DuplicateKeyError{Column: opts.KeyColumn, Key: key}
		}

		row := make(Row, 0, len(t.columns))
		for i, cell := range cells {
			if i != keyIdx {
				row = append(row, interp.value(cell))
			}
		}
		t.rows[key] = row
	}
	return t, nil
}

// KeyColumn returns the normalized name of the index column.
func (t *Table) KeyColumn() string { return t.key }

// Columns returns the normalized non-key column names in file order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// Len returns the number of indexed keys.
func (t *Table) Len() int { return len(t.rows) }

// Skipped returns the number of rows dropped for having an empty key.
func (t *Table) Skipped() int { return t.skipped }

// Lookup returns the row indexed by key.
func (t *Table) Lookup(key string) (Row, bool) {
	r, ok := t.rows[key]
	return r, ok
}

// Has reports whether key is indexed.
func (t *Table) Has(key string) bool {
	_, ok := t.rows[key]
	return ok
}

type interpreter struct {
	tokens map[string]Kind
}

func newInterpreter(opts Options) interpreter {
	nulls := opts.NullValues
	if nulls == nil {
		nulls = DefaultNullValues
	}
	tokens := make(map[string]Kind, len(nulls)+len(opts.TrueValues)+len(opts.FalseValues))
	for _, s := range nulls {
		tokens[s] = KindMissing
	}
	for _, s := range opts.FalseValues {
		tokens[s] = KindFalse
	}
	for _, s := range opts.TrueValues {
		tokens[s] = KindTrue
	}
	return interpreter{tokens: tokens}
}

func (in interpreter) value(cell string) Value {
	if cell == "" {
		return Value{Kind: KindMissing}
	}
	if k, ok := in.tokens[cell]; ok {
		return Value{Kind: k, Text: cell}
	}
	return Value{Kind: KindString, Text: cell}
}
