package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/vibe-kb/internal/bgzip"
	"github.com/inodb/vibe-kb/internal/datasource"
	"github.com/inodb/vibe-kb/internal/pipeline"
	"github.com/inodb/vibe-kb/internal/table"
)

func newAnnotateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "annotate <source> <table> <input.vcf[.gz]> <output.vcf[.gz]>",
		Short: "Annotate a SnpEff VCF with a knowledge-base table",
		Long: `Annotate a SnpEff-annotated VCF with Cancer Gene Census (cgc) or OncoKB
(oncokb) entries. The table is a CSV/TSV export (optionally gzipped) or a
DuckDB table store created with "vibe-kb import". An output ending in
.vcf.gz is BGZF-compressed and tabix-indexed.`,
		Example: `  vibe-kb annotate cgc cancer_gene_census.csv calls.snpeff.vcf.gz calls.cgc.vcf.gz
  vibe-kb annotate oncokb cancerGeneList.tsv calls.snpeff.vcf calls.oncokb.vcf --log oncokb.log
  vibe-kb annotate oncokb kb.duckdb - - < calls.vcf > out.vcf`,
		Args: cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnnotate(cmd, args)
		},
	}

	f := cmd.Flags()
	f.String("delimiter", "", "table delimiter: auto, tab, comma, semicolon, pipe (default per source)")
	f.String("duplicates", "last", "duplicate key policy: last or error")
	f.String("compress-command", "bgzip", "BGZF compressor run as '<cmd> -c <file>' (e.g. pbgzip)")
	f.String("index-command", "tabix", "indexer run as '<cmd> -f -p vcf <file>'")
	f.Bool("native-bgzf", false, "compress in-process instead of running the compressor")
	f.Bool("skip-index", false, "do not build a tabix index")
	f.Int("threads", 0, "compression threads (0: tool default)")

	viper.BindPFlag("table.delimiter", f.Lookup("delimiter"))
	viper.BindPFlag("table.duplicates", f.Lookup("duplicates"))
	viper.BindPFlag("output.compress-command", f.Lookup("compress-command"))
	viper.BindPFlag("output.index-command", f.Lookup("index-command"))
	viper.BindPFlag("output.native-bgzf", f.Lookup("native-bgzf"))
	viper.BindPFlag("output.skip-index", f.Lookup("skip-index"))
	viper.BindPFlag("output.threads", f.Lookup("threads"))

	return cmd
}

func runAnnotate(cmd *cobra.Command, args []string) error {
	logger, err := loggerFromConfig()
	if err != nil {
		return err
	}
	defer logger.Sync()

	src, err := datasource.Get(args[0])
	if err != nil {
		return err
	}
	dup, err := table.ParseDuplicatePolicy(viper.GetString("table.duplicates"))
	if err != nil {
		return err
	}

	cfg := pipeline.Config{
		Source:     src,
		TablePath:  args[1],
		InputPath:  args[2],
		OutputPath: args[3],
		Delimiter:  viper.GetString("table.delimiter"),
		Duplicates: dup,
		Finalizer: bgzip.Options{
			CompressCommand: viper.GetString("output.compress-command"),
			IndexCommand:    viper.GetString("output.index-command"),
			Native:          viper.GetBool("output.native-bgzf"),
			SkipIndex:       viper.GetBool("output.skip-index"),
			Threads:         viper.GetInt("output.threads"),
		},
		Tool:       "vibe-kb",
		Version:    version,
		Invocation: invocation(),
	}

	stats, err := pipeline.Run(cmd.Context(), cfg, logger)
	if err != nil {
		logger.Error("annotation failed", zap.Error(err))
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Annotated %d of %d records with %s\n", stats.Annotated, stats.Records, src.Name())
	return nil
}

// invocation returns the command line as typed, for the provenance header.
func invocation() string {
	return strings.Join(os.Args, " ")
}
