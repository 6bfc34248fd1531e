package oncokb

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-kb/internal/annotate"
	"github.com/inodb/vibe-kb/internal/table"
)

func TestLoad(t *testing.T) {
	tbl, err := Load("testdata/cancerGeneList.tsv")
	require.NoError(t, err)

	assert.Equal(t, 4, tbl.Len())
	assert.Equal(t, KeyColumn, tbl.KeyColumn())
	assert.NotContains(t, tbl.Columns(), KeyColumn)

	tests := []struct {
		transcript string
		hugo       string
	}{
		{"ENST00000269305", "TP53"},
		{"ENST00000311936", "KRAS"},
		{"ENST00000371953", "PTEN"},
	}
	for _, tt := range tests {
		t.Run(tt.hugo, func(t *testing.T) {
			row, ok := tbl.Lookup(tt.transcript)
			require.True(t, ok)
			assert.Equal(t, tt.hugo, row[0].Text)
		})
	}

	// KRAS is keyed by its GRCh38 isoform, not the GRCh37 one.
	assert.False(t, tbl.Has("ENST00000256078"))
}

func TestLoad_NotFound(t *testing.T) {
	_, err := Load("/nonexistent/cancerGeneList.tsv")
	assert.Error(t, err)
}

func TestSource_DescriptorsMatchHeader(t *testing.T) {
	tbl, err := Load("testdata/cancerGeneList.tsv")
	require.NoError(t, err)

	cols := map[string]bool{KeyColumn: true}
	for _, c := range tbl.Columns() {
		cols[c] = true
	}
	fields := New().Fields()
	require.Len(t, fields, 16)

	seen := make(map[string]bool)
	for _, f := range fields {
		assert.True(t, cols[f.Name], "descriptor %s has no column in the cancer gene list", f.Name)
		assert.False(t, seen[f.Name], "duplicate descriptor %s", f.Name)
		seen[f.Name] = true
		if f.Type == annotate.TypeFlag {
			assert.Equal(t, "0", f.Number, f.Name)
		}
	}
}

func TestSource_Annotate(t *testing.T) {
	tbl, err := Load("testdata/cancerGeneList.tsv")
	require.NoError(t, err)

	ra := annotate.NewRecordAnnotator(New(), tbl)
	line := "17\t7675088\t.\tC\tT\t50\tPASS\tANN=T|missense_variant|MODERATE|TP53|ENSG00000141510|transcript|ENST00000269305.9|protein_coding"

	out, key, outcome := ra.Annotate(line)
	require.Equal(t, annotate.OutcomeAnnotated, outcome)
	assert.Equal(t, "ENST00000269305", key)

	fragment := strings.TrimPrefix(out, line+";")
	assert.Equal(t, strings.Join([]string{
		"OncoKB_Hugo_Symbol=TP53",
		"OncoKB_Entrez_Gene_ID=7157",
		"OncoKB_GRCh37_Isoform=ENST00000269305",
		"OncoKB_GRCh37_RefSeq=NM_000546.5",
		"OncoKB_GRCh38_RefSeq=NM_000546.5",
		"OncoKB_nb_of_occurrence_within_resources_Column_D_J=7",
		"OncoKB_OncoKB_Annotated",
		"OncoKB_Is_Tumor_Suppressor_Gene",
		"OncoKB_MSK_IMPACT",
		"OncoKB_MSK_HEME",
		"OncoKB_FOUNDATION_ONE",
		"OncoKB_FOUNDATION_ONE_HEME",
		"OncoKB_Vogelstein",
		"OncoKB_SANGER_CGC05_30_2017",
		"OncoKB_Gene_Aliases=BCC7._LFS1._P53",
	}, ";"), fragment)
}

func TestSource_TableOptions(t *testing.T) {
	opts := New().TableOptions()
	assert.Equal(t, '\t', opts.Delimiter)
	assert.Equal(t, []string{"No"}, opts.FalseValues)
	assert.Equal(t, table.DuplicateLastWins, opts.Duplicates)
}
