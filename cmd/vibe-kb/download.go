package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/inodb/vibe-kb/internal/datasource/oncokb"
)

func newDownloadCmd() *cobra.Command {
	var (
		output string
		url    string
		force  bool
	)

	cmd := &cobra.Command{
		Use:   "download oncokb",
		Short: "Download the public OncoKB cancer gene list",
		Long: `Download the OncoKB cancer gene list. The Cancer Gene Census requires a
COSMIC login and must be exported manually.

An existing file is kept unless --force is given. With --force the old
file is only replaced once the new list has downloaded and parsed.`,
		Example: `  vibe-kb download oncokb
  vibe-kb download oncokb --output /data/kb/cancerGeneList.tsv --force`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"oncokb"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if args[0] != "oncokb" {
				return fmt.Errorf("cannot download %q: only oncokb is publicly available", args[0])
			}
			logger, err := loggerFromConfig()
			if err != nil {
				return err
			}
			defer logger.Sync()

			g := geneListDownload{
				source: args[0],
				url:    url,
				dest:   output,
				force:  force,
				out:    cmd.OutOrStdout(),
				client: &http.Client{Timeout: 5 * time.Minute},
			}
			if err := g.run(cmd.Context(), logger); err != nil {
				logger.Error("download failed", zap.String("source", g.source), zap.Error(err))
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "cancerGeneList.tsv", "destination file")
	cmd.Flags().StringVar(&url, "url", oncokb.DownloadURL, "download URL")
	cmd.Flags().BoolVar(&force, "force", false, "replace an existing file")
	return cmd
}

// geneListDownload fetches one cancer gene list into dest.
type geneListDownload struct {
	source string
	url    string
	dest   string
	force  bool
	out    io.Writer
	client *http.Client
}

func (g geneListDownload) run(ctx context.Context, logger *zap.Logger) error {
	if info, err := os.Stat(g.dest); err == nil && !g.force {
		fmt.Fprintf(g.out, "%s: keeping %s (%s), use --force to replace\n",
			g.source, g.dest, formatSize(info.Size()))
		return nil
	}

	dir := filepath.Dir(g.dest)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	part, err := os.CreateTemp(dir, "."+filepath.Base(g.dest)+".*.part")
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	partPath := part.Name()
	defer os.Remove(partPath)

	n, err := g.fetch(ctx, part)
	if cerr := part.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}

	// dest is untouched until the new list parses.
	tbl, err := oncokb.Load(partPath)
	if err != nil {
		return fmt.Errorf("%s: downloaded file is not a usable cancer gene list: %w", g.source, err)
	}
	if err := os.Rename(partPath, g.dest); err != nil {
		return fmt.Errorf("replace %s: %w", g.dest, err)
	}

	logger.Info("gene list downloaded",
		zap.String("source", g.source),
		zap.String("url", g.url),
		zap.String("path", g.dest),
		zap.Int64("bytes", n),
		zap.Int("transcripts", tbl.Len()))
	fmt.Fprintf(g.out, "%s: %d transcripts written to %s (%s)\n", g.source, tbl.Len(), g.dest, formatSize(n))
	return nil
}

// fetch streams the response body into w, reporting progress on g.out.
func (g geneListDownload) fetch(ctx context.Context, w io.Writer) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.url, nil)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", g.source, err)
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%s: HTTP request failed: %w", g.source, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("%s: HTTP error: %s", g.source, resp.Status)
	}

	p := &progressLine{out: g.out, label: g.source, total: resp.ContentLength}
	n, err := io.Copy(io.MultiWriter(w, p), resp.Body)
	p.finish()
	if err != nil {
		return n, fmt.Errorf("%s: download interrupted after %s: %w", g.source, formatSize(n), err)
	}
	return n, nil
}

// progressLine redraws "<label>: <done> of <total>" at most once a second.
type progressLine struct {
	out   io.Writer
	label string
	total int64
	done  int64
	drawn time.Time
}

func (p *progressLine) Write(b []byte) (int, error) {
	p.done += int64(len(b))
	if time.Since(p.drawn) >= time.Second {
		p.draw()
	}
	return len(b), nil
}

func (p *progressLine) draw() {
	if p.total > 0 {
		fmt.Fprintf(p.out, "\r%s: %s of %s", p.label, formatSize(p.done), formatSize(p.total))
	} else {
		fmt.Fprintf(p.out, "\r%s: %s", p.label, formatSize(p.done))
	}
	p.drawn = time.Now()
}

// finish ends the progress line if one was drawn.
func (p *progressLine) finish() {
	if !p.drawn.IsZero() {
		fmt.Fprintln(p.out)
	}
}

// formatSize renders a byte count with binary units.
func formatSize(n int64) string {
	units := []string{"B", "KB", "MB", "GB", "TB"}
	v, i := float64(n), 0
	for v >= 1024 && i < len(units)-1 {
		v /= 1024
		i++
	}
	if i == 0 {
		return fmt.Sprintf("%d B", n)
	}
	return fmt.Sprintf("%.1f %s", v, units[i])
}
