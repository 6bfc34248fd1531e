// Package annotate merges knowledge-base table rows into the INFO column of
// SnpEff-annotated VCF streams.
package annotate

import (
	"bufio"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/inodb/vibe-kb/internal/table"
	"github.com/inodb/vibe-kb/internal/vcf"
)

// LineReader yields classified VCF lines until io.EOF.
type LineReader interface {
	Next() (vcf.Line, error)
}

// Stats summarizes one annotation run.
type Stats struct {
	Lines          int
	Records        int
	Annotated      int
	MissingANN     int // no ANN, short ANN or empty key
	KeyMisses      int
	Malformed      int
	HeaderInjected bool
}

// Annotator streams a VCF, injecting the header block and annotating every
// data line.
type Annotator struct {
	src     Source
	table   *table.Table
	records *RecordAnnotator
	prov    Provenance
	logger  *zap.Logger
}

// NewAnnotator creates an annotator for src backed by tbl.
func NewAnnotator(src Source, tbl *table.Table, prov Provenance) *Annotator {
	return &Annotator{
		src:     src,
		table:   tbl,
		records: NewRecordAnnotator(src, tbl),
		prov:    prov,
		logger:  zap.NewNop(),
	}
}

// SetLogger sets the logger for per-record and summary messages.
func (a *Annotator) SetLogger(l *zap.Logger) {
	a.logger = l
}

// Run copies r to w line by line. Meta lines and blank lines pass through;
// the header block is injected once, before the first column-header line;
// data lines are annotated or passed through unchanged. Every output line
// ends with "\n".
func (a *Annotator) Run(r LineReader, w io.Writer) (Stats, error) {
	var stats Stats
	bw := bufio.NewWriterSize(w, 256*1024)

	for {
		line, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return stats, err
		}
		stats.Lines++

		switch line.Kind {
		case vcf.KindHeader:
			if !stats.HeaderInjected {
				for _, h := range HeaderLines(a.src, a.table.Columns(), a.prov) {
					if err := writeLine(bw, h); err != nil {
						return stats, err
					}
				}
				stats.HeaderInjected = true
			} else {
				a.logger.Warn("extra column-header line", zap.Int("line", line.Number))
			}
			err = writeLine(bw, line.Text)
		case vcf.KindRecord:
			err = writeLine(bw, a.annotate(line, &stats))
		default:
			err = writeLine(bw, line.Text)
		}
		if err != nil {
			return stats, err
		}
	}

	if err := bw.Flush(); err != nil {
		return stats, fmt.Errorf("flush output: %w", err)
	}
	if !stats.HeaderInjected {
		a.logger.Warn("no column-header line found, INFO fields are undeclared",
			zap.String("source", a.src.Name()))
	}
	a.logger.Info("annotation complete",
		zap.String("source", a.src.Name()),
		zap.Int("records", stats.Records),
		zap.Int("annotated", stats.Annotated),
		zap.Int("missing_ann", stats.MissingANN),
		zap.Int("key_misses", stats.KeyMisses),
		zap.Int("malformed", stats.Malformed))
	return stats, nil
}

func (a *Annotator) annotate(line vcf.Line, stats *Stats) string {
	stats.Records++
	out, key, outcome := a.records.Annotate(line.Text)
	switch outcome {
	case OutcomeAnnotated:
		stats.Annotated++
		return out
	case OutcomeNoANN, OutcomeShortANN, OutcomeEmptyKey:
		stats.MissingANN++
	case OutcomeKeyMiss:
		stats.KeyMisses++
	case OutcomeMalformed:
		stats.Malformed++
		a.logger.Warn("malformed record passed through", zap.Error(&vcf.ParseError{
			Line:    line.Number,
			Message: "data line has no INFO column",
		}))
		return out
	}
	a.logger.Debug("record not annotated",
		zap.Int("line", line.Number),
		zap.String("reason", outcome.String()),
		zap.String(a.src.Key().Label, key))
	return out
}

func writeLine(w *bufio.Writer, s string) error {
	if _, err := w.WriteString(s); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	if err := w.WriteByte('\n'); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
