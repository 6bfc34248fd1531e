package fileio

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gzipBytes(t *testing.T, members ...string) []byte {
	t.Helper()
	var buf bytes.Buffer
	for _, m := range members {
		zw := gzip.NewWriter(&buf)
		_, err := zw.Write([]byte(m))
		require.NoError(t, err)
		require.NoError(t, zw.Close())
	}
	return buf.Bytes()
}

func readPath(t *testing.T, path string) string {
	t.Helper()
	rc, err := Open(path)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	return string(data)
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	plain := filepath.Join(dir, "plain.tsv")
	require.NoError(t, os.WriteFile(plain, []byte("a\tb\n"), 0644))
	assert.Equal(t, "a\tb\n", readPath(t, plain))

	// Concatenated members, as in BGZF.
	gz := filepath.Join(dir, "multi.tsv.gz")
	require.NoError(t, os.WriteFile(gz, gzipBytes(t, "a\tb\n", "c\td\n"), 0644))
	assert.Equal(t, "a\tb\nc\td\n", readPath(t, gz))

	noSuffix := filepath.Join(dir, "compressed.tsv")
	require.NoError(t, os.WriteFile(noSuffix, gzipBytes(t, "x\n"), 0644))
	assert.Equal(t, "x\n", readPath(t, noSuffix), "detected from magic bytes")
}

func TestOpen_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.vcf")
	require.NoError(t, os.WriteFile(path, nil, 0644))
	assert.Equal(t, "", readPath(t, path))
}

func TestOpen_BadGzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.vcf.gz")
	require.NoError(t, os.WriteFile(path, []byte("not gzip"), 0644))
	_, err := Open(path)
	assert.Error(t, err)
}

func TestOpen_NotFound(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
