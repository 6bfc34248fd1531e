// Package oncokb describes the OncoKB cancer gene list as an annotation
// source keyed by GRCh38 Ensembl transcript.
package oncokb

import (
	"github.com/inodb/vibe-kb/internal/annotate"
	"github.com/inodb/vibe-kb/internal/table"
)

// DownloadURL serves the public cancer gene list.
const DownloadURL = "https://www.oncokb.org/api/v1/utils/cancerGeneList.txt"

// KeyColumn is the normalized index column.
const KeyColumn = "GRCh38_Isoform"

var fields = []annotate.FieldDescriptor{
	annotate.StringField("Hugo_Symbol", "Onco KB Hugo Symbol"),
	annotate.StringField("Entrez_Gene_ID", "Onco KB Entrez Gene ID"),
	annotate.StringField("GRCh37_Isoform", "Onco KB Ensembl GRCh37 transcript ID"),
	annotate.StringField("GRCh37_RefSeq", "Onco KB Refseq ID in GRCh37"),
	annotate.StringField("GRCh38_RefSeq", "Onco KB Refseq ID in GRCh38"),
	annotate.StringField("GRCh38_Isoform", "Onco KB Ensembl GRCh38 transcript ID"),
	annotate.IntegerField("nb_of_occurrence_within_resources_Column_D_J", "Onco KB number of occurrence within resources Column DJ"),
	annotate.FlagField("OncoKB_Annotated", "The gene is annotated by OncoKB"),
	annotate.FlagField("Is_Oncogene", "The gene is annotated as an oncogene by OncoKB"),
	annotate.FlagField("Is_Tumor_Suppressor_Gene", "The gene is annotated as tumor suppressor by OncoKB"),
	annotate.FlagField("MSK_IMPACT", "Gene has OncoKB integrated mutation profiling of actionable cancer targets"),
	annotate.FlagField("MSK_HEME", "Gene has OncoKB integrated mutation profiling of actionable cancer targets within blood"),
	annotate.FlagField("FOUNDATION_ONE", "The gene is annotated by OncoKB as belonging to FoundationOne CDx"),
	annotate.FlagField("FOUNDATION_ONE_HEME", "The gene is annotated by OncoKB as belonging to FoundationOne CDx, blood samples"),
	annotate.FlagField("Vogelstein", "The gene is annotated by OncoKB as belonging Vogelstein 2013 publication"),
	annotate.FlagField("SANGER_CGC05_30_2017", "The gene is annotated by OncoKB as belonging to Cancer Gene Census"),
}

// Source is the OncoKB annotation source.
type Source struct{}

// New returns the OncoKB source.
func New() Source { return Source{} }

func (Source) Name() string   { return "oncokb" }
func (Source) Prefix() string { return "OncoKB" }

// Fields returns the INFO field descriptors in header order.
func (Source) Fields() []annotate.FieldDescriptor {
	out := make([]annotate.FieldDescriptor, len(fields))
	copy(out, fields)
	return out
}

// Key reads the Ensembl transcript from the seventh ANN sub-field and
// drops its version suffix.
func (Source) Key() annotate.KeySpec {
	return annotate.KeySpec{AnnIndex: 6, TrimVersion: true, Label: "transcript"}
}

func (Source) TableOptions() table.Options {
	return table.Options{
		Delimiter:   '\t',
		KeyColumn:   KeyColumn,
		TrueValues:  []string{"Yes"},
		FalseValues: []string{"No"},
	}
}

// Load reads a cancer gene list with the default OncoKB options.
func Load(path string) (*table.Table, error) {
	return table.Load(path, Source{}.TableOptions())
}
