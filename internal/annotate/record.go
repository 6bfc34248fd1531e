package annotate

import (
	"errors"
	"strings"

	"github.com/inodb/vibe-kb/internal/table"
	"github.com/inodb/vibe-kb/internal/vcf"
)

// Outcome reports what happened to a single data line.
type Outcome uint8

const (
	OutcomeAnnotated Outcome = iota
	OutcomeNoANN             // INFO has no ANN entry
	OutcomeShortANN          // ANN has too few sub-fields
	OutcomeEmptyKey          // the key sub-field is empty
	OutcomeKeyMiss           // key not in the table
	OutcomeNoValues          // matching row has nothing to write
	OutcomeMalformed         // fewer than eight columns
)

var outcomeNames = [...]string{
	OutcomeAnnotated: "annotated",
	OutcomeNoANN:     "no ANN",
	OutcomeShortANN:  "short ANN",
	OutcomeEmptyKey:  "empty key",
	OutcomeKeyMiss:   "key not found",
	OutcomeNoValues:  "no values",
	OutcomeMalformed: "malformed record",
}

func (o Outcome) String() string {
	if int(o) < len(outcomeNames) {
		return outcomeNames[o]
	}
	return "unknown"
}

// RecordAnnotator merges table rows into single VCF data lines.
type RecordAnnotator struct {
	key   KeySpec
	table *table.Table
	names []string // "<Prefix>_<Column>", aligned with table columns
}

// NewRecordAnnotator creates a record annotator for src backed by tbl.
func NewRecordAnnotator(src Source, tbl *table.Table) *RecordAnnotator {
	cols := tbl.Columns()
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = src.Prefix() + "_" + c
	}
	return &RecordAnnotator{key: src.Key(), table: tbl, names: names}
}

// Key extracts the lookup key from an INFO column.
func (ra *RecordAnnotator) Key(info string) (string, Outcome) {
	key, err := vcf.AnnField(info, ra.key.AnnIndex)
	switch {
	case errors.Is(err, vcf.ErrNoANN):
		return "", OutcomeNoANN
	case err != nil:
		return "", OutcomeShortANN
	}
	if ra.key.TrimVersion {
		if i := strings.IndexByte(key, '.'); i >= 0 {
			key = key[:i]
		}
	}
	if key == "" {
		return "", OutcomeEmptyKey
	}
	return key, OutcomeAnnotated
}

// Fragment formats row as ";"-joined INFO entries. True values become bare
// flags; false and missing values are omitted.
func (ra *RecordAnnotator) Fragment(row table.Row) string {
	var sb strings.Builder
	for i, v := range row {
		switch v.Kind {
		case table.KindFalse, table.KindMissing:
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte(';')
		}
		sb.WriteString(ra.names[i])
		if v.Kind == table.KindString {
			sb.WriteByte('=')
			sb.WriteString(SanitizeValue(v.Text))
		}
	}
	return sb.String()
}

// Annotate returns the data line with the matching row appended to INFO,
// the key it looked up, and the outcome. Lines that are not annotated are
// returned unchanged.
func (ra *RecordAnnotator) Annotate(line string) (string, string, Outcome) {
	rec, err := vcf.ParseRecord(line)
	if err != nil {
		return line, "", OutcomeMalformed
	}
	key, outcome := ra.Key(rec.Info())
	if outcome != OutcomeAnnotated {
		return line, key, outcome
	}
	row, ok := ra.table.Lookup(key)
	if !ok {
		return line, key, OutcomeKeyMiss
	}
	fragment := ra.Fragment(row)
	if fragment == "" {
		return line, key, OutcomeNoValues
	}
	rec.AppendInfo(fragment)
	return rec.String(), key, OutcomeAnnotated
}
