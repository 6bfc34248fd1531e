package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/vibe-kb/internal/datasource"
	"github.com/inodb/vibe-kb/internal/duckdb"
	"github.com/inodb/vibe-kb/internal/pipeline"
	"github.com/inodb/vibe-kb/internal/table"
)

func newImportCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "import <source> <table> <store.duckdb>",
		Short: "Import a knowledge-base table into a DuckDB table store",
		Long: `Read and normalize a Cancer Gene Census or OncoKB export and store it in a
DuckDB database. The import is skipped when the store already holds the same
file (size and modification time) unless --force is given.`,
		Example: `  vibe-kb import cgc cancer_gene_census.csv kb.duckdb
  vibe-kb import oncokb cancerGeneList.tsv kb.duckdb
  vibe-kb annotate oncokb kb.duckdb in.vcf out.vcf`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, args[0], args[1], args[2], force)
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "re-import even if the table is unchanged")
	return cmd
}

func runImport(cmd *cobra.Command, sourceName, tablePath, dbPath string, force bool) error {
	logger, err := loggerFromConfig()
	if err != nil {
		return err
	}
	defer logger.Sync()

	src, err := datasource.Get(sourceName)
	if err != nil {
		return err
	}
	cfg := pipeline.Config{Source: src, Delimiter: viper.GetString("table.delimiter")}
	opts, err := cfg.TableOptions()
	if err != nil {
		return err
	}

	fp, err := duckdb.StatFile(tablePath)
	if err != nil {
		return fmt.Errorf("stat table: %w", err)
	}

	store, err := duckdb.Open(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	out := cmd.OutOrStdout()
	if !force && store.Fresh(src.Name(), fp) {
		fmt.Fprintf(out, "%s is up to date in %s, skipping (use --force to re-import)\n", src.Name(), dbPath)
		return nil
	}

	raw, err := table.ReadRaw(tablePath, opts.Delimiter)
	if err != nil {
		return err
	}
	// Validate the key column before storing.
	tbl, err := table.Build(raw, opts)
	if err != nil {
		return fmt.Errorf("import %s: %w", tablePath, err)
	}

	if err := store.ImportRaw(src.Name(), raw, fp); err != nil {
		return fmt.Errorf("import %s: %w", tablePath, err)
	}
	logger.Info("table imported",
		zap.String("source", src.Name()),
		zap.String("path", tablePath),
		zap.String("store", dbPath),
		zap.Int("rows", len(raw.Rows)),
		zap.Int("keys", tbl.Len()))
	fmt.Fprintf(out, "Imported %d rows (%d keys) into %s:%s\n", len(raw.Rows), tbl.Len(), dbPath, src.Name())
	return nil
}
