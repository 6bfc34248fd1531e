// Package pipeline runs one annotation step: load a knowledge-base table,
// stream a VCF through the annotator and finalize the output.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/inodb/vibe-kb/internal/annotate"
	"github.com/inodb/vibe-kb/internal/bgzip"
	"github.com/inodb/vibe-kb/internal/duckdb"
	"github.com/inodb/vibe-kb/internal/table"
	"github.com/inodb/vibe-kb/internal/vcf"
)

// Config holds everything one run needs.
type Config struct {
	Source     annotate.Source
	TablePath  string // CSV/TSV (optionally gzipped) or a .duckdb table store
	InputPath  string // VCF, plain or gzipped; "-" for stdin
	OutputPath string // VCF; ".vcf.gz" is compressed and indexed; "-" for stdout

	// Delimiter overrides the source delimiter when set ("auto", "tab", ...).
	Delimiter  string
	Duplicates table.DuplicatePolicy

	Finalizer bgzip.Options

	Tool       string
	Version    string
	Invocation string
	Now        func() time.Time
}

// TableOptions returns the source's table options with overrides applied.
func (c Config) TableOptions() (table.Options, error) {
	opts := c.Source.TableOptions()
	if c.Delimiter != "" {
		d, err := table.ParseDelimiter(c.Delimiter)
		if err != nil {
			return opts, err
		}
		opts.Delimiter = d
	}
	opts.Duplicates = c.Duplicates
	return opts, nil
}

// LoadTable loads the knowledge-base table named by cfg.
func LoadTable(cfg Config) (*table.Table, error) {
	opts, err := cfg.TableOptions()
	if err != nil {
		return nil, err
	}
	if !duckdb.IsStorePath(cfg.TablePath) {
		return table.Load(cfg.TablePath, opts)
	}

	if _, err := os.Stat(cfg.TablePath); err != nil {
		return nil, fmt.Errorf("open table store: %w", err)
	}
	store, err := duckdb.Open(cfg.TablePath)
	if err != nil {
		return nil, err
	}
	defer store.Close()
	return store.Table(cfg.Source.Name(), opts)
}

// Run executes the step. The table and input are opened before the output
// is created, so configuration errors leave no output behind.
func Run(ctx context.Context, cfg Config, logger *zap.Logger) (annotate.Stats, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Source == nil {
		return annotate.Stats{}, errors.New("no annotation source configured")
	}
	logger = logger.With(zap.String("source", cfg.Source.Name()))

	logger.Info("loading annotation table", zap.String("path", cfg.TablePath))
	tbl, err := LoadTable(cfg)
	if err != nil {
		return annotate.Stats{}, fmt.Errorf("load table: %w", err)
	}
	logger.Info("annotation table loaded",
		zap.Int("keys", tbl.Len()),
		zap.Int("skipped", tbl.Skipped()),
		zap.Strings("columns", tbl.Columns()))

	in, err := vcf.Open(cfg.InputPath)
	if err != nil {
		return annotate.Stats{}, fmt.Errorf("open input: %w", err)
	}
	defer in.Close()

	compressed := bgzip.IsCompressedTarget(cfg.OutputPath)
	outPath := cfg.OutputPath
	if compressed {
		outPath = bgzip.PlainPath(cfg.OutputPath)
	}

	out, closeOut, err := createOutput(outPath)
	if err != nil {
		return annotate.Stats{}, err
	}

	a := annotate.NewAnnotator(cfg.Source, tbl, cfg.provenance())
	a.SetLogger(logger)
	stats, err := a.Run(in, out)
	if cerr := closeOut(); err == nil && cerr != nil {
		err = fmt.Errorf("close output: %w", cerr)
	}
	if err != nil {
		if outPath != "-" {
			os.Remove(outPath)
		}
		return stats, fmt.Errorf("annotate: %w", err)
	}

	if compressed {
		f := bgzip.New(cfg.Finalizer)
		f.SetLogger(logger)
		if err := f.Finalize(ctx, outPath, cfg.OutputPath); err != nil {
			return stats, fmt.Errorf("finalize output: %w", err)
		}
	}
	return stats, nil
}

func (c Config) provenance() annotate.Provenance {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	tool := c.Tool
	if tool == "" {
		tool = "vibe-kb"
	}
	return annotate.Provenance{
		Tool:        tool,
		Version:     c.Version,
		CommandLine: c.Invocation,
		Date:        now(),
	}
}

func createOutput(path string) (io.Writer, func() error, error) {
	if path == "-" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create output: %w", err)
	}
	return f, f.Close, nil
}
