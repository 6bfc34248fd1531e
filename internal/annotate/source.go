package annotate

import "github.com/inodb/vibe-kb/internal/table"

// VCF INFO Type values.
const (
	TypeString  = "String"
	TypeInteger = "Integer"
	TypeFloat   = "Float"
	TypeFlag    = "Flag"
)

// FieldDescriptor describes one INFO field contributed by a source.
type FieldDescriptor struct {
	Name        string // normalized table column, e.g. "Entrez_GeneId"
	Number      string // VCF Number: "0" for flags, "1" otherwise
	Type        string // TypeString, TypeInteger, TypeFloat or TypeFlag
	Description string
}

// KeySpec locates the lookup key inside the SnpEff ANN entry.
type KeySpec struct {
	AnnIndex    int    // "|"-separated position in the first ANN effect
	TrimVersion bool   // drop a ".N" version suffix (ENST00000269305.9 -> ENST00000269305)
	Label       string // what the key is, for log messages
}

// Source is a curated knowledge base merged into VCF INFO columns.
type Source interface {
	Name() string    // short name, e.g. "oncokb"
	Prefix() string  // INFO key namespace, e.g. "OncoKB"
	Fields() []FieldDescriptor
	Key() KeySpec
	TableOptions() table.Options
}

// FlagField describes a Flag INFO field.
func FlagField(name, desc string) FieldDescriptor {
	return FieldDescriptor{Name: name, Number: "0", Type: TypeFlag, Description: desc}
}

// StringField describes a single-valued String INFO field.
func StringField(name, desc string) FieldDescriptor {
	return FieldDescriptor{Name: name, Number: "1", Type: TypeString, Description: desc}
}

// IntegerField describes a single-valued Integer INFO field.
func IntegerField(name, desc string) FieldDescriptor {
	return FieldDescriptor{Name: name, Number: "1", Type: TypeInteger, Description: desc}
}
