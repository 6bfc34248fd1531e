// Package datasource resolves annotation sources by name.
package datasource

import (
	"fmt"
	"sort"
	"strings"

	"github.com/inodb/vibe-kb/internal/annotate"
	"github.com/inodb/vibe-kb/internal/datasource/cgc"
	"github.com/inodb/vibe-kb/internal/datasource/oncokb"
)

var sources = map[string]annotate.Source{
	"cgc":    cgc.New(),
	"oncokb": oncokb.New(),
}

var aliases = map[string]string{
	"cancer_gene_census": "cgc",
	"cancergenecensus":   "cgc",
}

// Get returns the source registered under name (case-insensitive).
func Get(name string) (annotate.Source, error) {
	n := strings.ToLower(name)
	if a, ok := aliases[n]; ok {
		n = a
	}
	if s, ok := sources[n]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("unknown annotation source %q (available: %s)", name, strings.Join(Names(), ", "))
}

// Names returns the registered source names in sorted order.
func Names() []string {
	names := make([]string, 0, len(sources))
	for n := range sources {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
