package table

import (
	"fmt"
	"strings"
)

// MissingKeyColumnError is returned when the key column is absent after
// column-name normalization.
type MissingKeyColumnError struct {
	Column  string
	Columns []string // normalized columns that were found
}

func (e *MissingKeyColumnError) Error() string {
	return fmt.Sprintf("key column %q not found (columns: %s)", e.Column, strings.Join(e.Columns, ", "))
}

// DuplicateKeyError is returned under DuplicateError when a key repeats.
type DuplicateKeyError struct {
	Column string
	Key    string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate %s %q", e.Column, e.Key)
}
