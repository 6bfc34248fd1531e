package annotate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-kb/internal/table"
)

type testSource struct {
	key KeySpec
}

func (s testSource) Name() string    { return "cgc" }
func (s testSource) Prefix() string  { return "CancerGeneCensus" }
func (s testSource) Key() KeySpec    { return s.key }

func (s testSource) Fields() []FieldDescriptor {
	return []FieldDescriptor{
		IntegerField("Tier", "Tier of the gene"),
		FlagField("Hallmark", "Gene is a hallmark of cancer"),
	}
}

func (s testSource) TableOptions() table.Options {
	return table.Options{KeyColumn: "Gene_Symbol", TrueValues: []string{"yes", "Yes"}}
}

func geneSource() testSource {
	return testSource{key: KeySpec{AnnIndex: 3, Label: "gene"}}
}

func transcriptSource() testSource {
	return testSource{key: KeySpec{AnnIndex: 6, TrimVersion: true, Label: "transcript"}}
}

// newTable builds a table from rows whose first cell is the key.
func newTable(t *testing.T, src Source, columns []string, rows ...[]string) *table.Table {
	t.Helper()
	tbl, err := table.Build(&table.Raw{Columns: columns, Rows: rows}, src.TableOptions())
	require.NoError(t, err)
	return tbl
}

func tp53Table(t *testing.T) *table.Table {
	return newTable(t, geneSource(), []string{"Gene_Symbol", "Tier", "Hallmark"},
		[]string{"TP53", "1", "Yes"},
		[]string{"KRAS", "1", ""},
	)
}

var testProvenance = Provenance{
	Tool:        "vibe-kb",
	Version:     "0.0.1",
	CommandLine: "vibe-kb annotate cgc cgc.csv in.vcf out.vcf",
	Date:        time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC),
}

const tp53Line = "17\t7675088\t.\tC\tT\t50\tPASS\tDP=20;ANN=T|missense_variant|MODERATE|TP53|ENSG00000141510|transcript|ENST00000269305.9|protein_coding"
