// Package bgzip finalizes a plain VCF into a BGZF-compressed, tabix-indexed
// ".vcf.gz" target.
package bgzip

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/biogo/hts/bgzf"
	"go.uber.org/zap"
)

// Options configures the finalizer.
type Options struct {
	// CompressCommand writes BGZF of its file argument to stdout when run
	// with "-c", e.g. "bgzip" or "pbgzip". Extra words are passed through.
	CompressCommand string
	// IndexCommand builds a tabix index when run with "-p vcf".
	IndexCommand string
	// Native compresses in-process instead of running CompressCommand.
	Native    bool
	SkipIndex bool
	// Threads is passed to the compressor; zero leaves its default.
	Threads int
}

// DefaultOptions returns the bgzip/tabix defaults.
func DefaultOptions() Options {
	return Options{CompressCommand: "bgzip", IndexCommand: "tabix"}
}

// IsCompressedTarget reports whether path names a compressed VCF target.
func IsCompressedTarget(path string) bool {
	return strings.HasSuffix(path, ".vcf.gz")
}

// PlainPath returns the uncompressed path written before finalizing target.
func PlainPath(target string) string {
	return strings.TrimSuffix(target, ".gz")
}

// Finalizer compresses and indexes annotated output.
type Finalizer struct {
	opts   Options
	logger *zap.Logger
}

// New creates a Finalizer.
func New(opts Options) *Finalizer {
	return &Finalizer{opts: opts, logger: zap.NewNop()}
}

// SetLogger sets the logger for progress and tool output.
func (f *Finalizer) SetLogger(l *zap.Logger) {
	f.logger = l
}

// Finalize compresses plain into target, indexes target and removes plain.
// On failure target and its index are removed, along with plain.
func (f *Finalizer) Finalize(ctx context.Context, plain, target string) error {
	if err := f.finalize(ctx, plain, target); err != nil {
		f.cleanup(target, target+".tbi", plain)
		return err
	}
	f.logger.Info("removing temporary file", zap.String("path", plain))
	if err := os.Remove(plain); err != nil {
		return fmt.Errorf("remove temporary file: %w", err)
	}
	return nil
}

func (f *Finalizer) finalize(ctx context.Context, plain, target string) error {
	f.logger.Info("compressing", zap.String("path", plain), zap.String("target", target), zap.Bool("native", f.opts.Native))
	var err error
	if f.opts.Native {
		err = f.compressNative(plain, target)
	} else {
		err = f.compressExternal(ctx, plain, target)
	}
	if err != nil {
		return err
	}
	if f.opts.SkipIndex {
		return nil
	}
	f.logger.Info("indexing", zap.String("path", target))
	return f.index(ctx, target)
}

func (f *Finalizer) compressNative(plain, target string) error {
	in, err := os.Open(plain)
	if err != nil {
		return fmt.Errorf("open %s: %w", plain, err)
	}
	defer in.Close()

	out, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("create %s: %w", target, err)
	}

	threads := f.opts.Threads
	if threads < 1 {
		threads = 1
	}
	bw := bgzf.NewWriter(out, threads)
	if _, err := io.Copy(bw, in); err != nil {
		bw.Close()
		out.Close()
		return fmt.Errorf("compress %s: %w", plain, err)
	}
	// Close writes the BGZF end-of-file marker.
	if err := bw.Close(); err != nil {
		out.Close()
		return fmt.Errorf("compress %s: %w", plain, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close %s: %w", target, err)
	}
	return nil
}

func (f *Finalizer) compressExternal(ctx context.Context, plain, target string) error {
	argv := strings.Fields(f.opts.CompressCommand)
	if len(argv) == 0 {
		return errors.New("no compress command configured")
	}
	argv = append(argv, threadArgs(argv[0], f.opts.Threads)...)
	argv = append(argv, "-c", plain)

	out, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("create %s: %w", target, err)
	}
	runErr := f.run(ctx, argv, out)
	closeErr := out.Close()
	if runErr != nil {
		return runErr
	}
	if closeErr != nil {
		return fmt.Errorf("close %s: %w", target, closeErr)
	}
	return nil
}

// threadArgs returns the thread flag understood by known compressors.
func threadArgs(command string, threads int) []string {
	if threads < 1 {
		return nil
	}
	n := strconv.Itoa(threads)
	switch filepath.Base(command) {
	case "bgzip":
		return []string{"-@", n}
	case "pbgzip":
		return []string{"-n", n}
	}
	return nil
}

func (f *Finalizer) index(ctx context.Context, target string) error {
	argv := strings.Fields(f.opts.IndexCommand)
	if len(argv) == 0 {
		return errors.New("no index command configured")
	}
	argv = append(argv, "-f", "-p", "vcf", target)
	return f.run(ctx, argv, nil)
}

// run executes argv. Standard error, and standard output when stdout is
// nil, are forwarded to the logger line by line.
func (f *Finalizer) run(ctx context.Context, argv []string, stdout io.Writer) error {
	bin, err := exec.LookPath(argv[0])
	if err != nil {
		return fmt.Errorf("%s not found: %w", argv[0], err)
	}

	logw := newLogWriter(f.logger.With(zap.String("command", argv[0])))
	defer logw.Flush()

	cmd := exec.CommandContext(ctx, bin, argv[1:]...)
	cmd.Stderr = logw
	cmd.Stdout = logw
	if stdout != nil {
		cmd.Stdout = stdout
	}
	f.logger.Debug("running", zap.Strings("argv", argv))
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w", strings.Join(argv, " "), err)
	}
	return nil
}

func (f *Finalizer) cleanup(paths ...string) {
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			f.logger.Warn("cleanup failed", zap.String("path", p), zap.Error(err))
		}
	}
}
