package annotate

import (
	"fmt"
	"strings"
	"time"
)

// Provenance identifies the run in the injected header block.
type Provenance struct {
	Tool        string // e.g. "vibe-kb"
	Version     string
	CommandLine string
	Date        time.Time
}

// HeaderLines builds the meta-information block injected before the
// column-header line: a provenance line, one ##INFO line per descriptor,
// then one String ##INFO line per table column that has no descriptor.
func HeaderLines(src Source, columns []string, p Provenance) []string {
	fields := src.Fields()
	lines := make([]string, 0, len(fields)+len(columns)+1)

	lines = append(lines, fmt.Sprintf(
		"##%sCommandLine=<ID=%s_annotate,CommandLine=\"%s\",Version=%s,Date=%s>",
		p.Tool, src.Name(), escapeQuoted(p.CommandLine), p.Version, p.Date.Format("2006-01-02"),
	))

	described := make(map[string]bool, len(fields))
	for _, f := range fields {
		described[f.Name] = true
		lines = append(lines, infoLine(src.Prefix(), f))
	}
	for _, col := range columns {
		if described[col] {
			continue
		}
		lines = append(lines, infoLine(src.Prefix(), StringField(col, fmt.Sprintf("%s column %s", src.Prefix(), col))))
	}
	return lines
}

func infoLine(prefix string, f FieldDescriptor) string {
	return fmt.Sprintf("##INFO=<ID=%s_%s,Number=%s,Type=%s,Description=\"%s\">",
		prefix, f.Name, f.Number, f.Type, escapeQuoted(f.Description))
}

func escapeQuoted(s string) string {
	if !strings.ContainsAny(s, "\"\\") {
		return s
	}
	return strings.NewReplacer("\\", "\\\\", "\"", "\\\"").Replace(s)
}
