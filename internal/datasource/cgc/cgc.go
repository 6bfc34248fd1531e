// Package cgc describes the COSMIC Cancer Gene Census as an annotation
// source keyed by gene symbol.
package cgc

import (
	"github.com/inodb/vibe-kb/internal/annotate"
	"github.com/inodb/vibe-kb/internal/table"
)

// KeyColumn is the normalized index column.
const KeyColumn = "Gene_Symbol"

// Census columns holding "yes" are declared as flags.
var fields = []annotate.FieldDescriptor{
	annotate.StringField("Gene_Symbol", "Gene symbol from Cancer Gene Census"),
	annotate.StringField("Name", "Gene name from Cancer Gene Census"),
	annotate.StringField("Entrez_GeneId", "Entrez GeneId from Cancer Gene Census"),
	annotate.StringField("Genome_Location", "Gene location in genome from Cancer Gene Census"),
	annotate.IntegerField("Tier", "Cancer Gene Census Tier"),
	annotate.FlagField("Hallmark", "Cancer Gene Census indicates Gene belongs to Hallmark"),
	annotate.StringField("Chr_Band", "Chromosome Band from Cancer Gene Census"),
	annotate.FlagField("Somatic", "Cancer Gene Census got this variant in somatic samples"),
	annotate.FlagField("Germline", "Cancer Gene Census got this variant in germline samples"),
	annotate.StringField("Tumour_TypesSomatic", "Cancer Gene Census Tumor type"),
	annotate.StringField("Tumour_TypesGermline", "Cancer Gene Census Tumor type"),
	annotate.StringField("Cancer_Syndrome", "Cancer Gene Census Syndrome annotation"),
	annotate.StringField("Tissue_Type", "Cancer Gene Census tissue origin"),
	annotate.StringField("Molecular_Genetics", "Cancer Gene Census molecular annotation"),
	annotate.StringField("Role_in_Cancer", "Cancer Gene Census Role annotation"),
	annotate.StringField("Mutation_Types", "Cancer Gene Census type of mutation"),
	annotate.StringField("Translocation_Partner", "Cancer Gene Census possible translocation partner"),
	annotate.FlagField("Other_Germline_Mut", "Cancer Gene Census, Non cancer mutations"),
	annotate.StringField("Other_Syndrome", "Cancer Gene Census, Non cancer Syndrome annotation"),
	annotate.StringField("Synonyms", "Cancer Gene Census Synonymous mutations"),
}

// Source is the Cancer Gene Census annotation source.
type Source struct{}

// New returns the Cancer Gene Census source.
func New() Source { return Source{} }

func (Source) Name() string   { return "cgc" }
func (Source) Prefix() string { return "CancerGeneCensus" }

// Fields returns the INFO field descriptors in header order.
func (Source) Fields() []annotate.FieldDescriptor {
	out := make([]annotate.FieldDescriptor, len(fields))
	copy(out, fields)
	return out
}

// Key reads the gene symbol from the fourth ANN sub-field.
func (Source) Key() annotate.KeySpec {
	return annotate.KeySpec{AnnIndex: 3, Label: "gene"}
}

func (Source) TableOptions() table.Options {
	return table.Options{
		Delimiter:  ',',
		KeyColumn:  KeyColumn,
		TrueValues: []string{"yes", "Yes"},
	}
}

// Load reads a Cancer Gene Census export with the default options.
func Load(path string) (*table.Table, error) {
	return table.Load(path, Source{}.TableOptions())
}
