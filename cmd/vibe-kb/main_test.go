package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	cgcTable    = "../../internal/datasource/cgc/testdata/cancer_gene_census.csv"
	oncokbTable = "../../internal/datasource/oncokb/testdata/cancerGeneList.tsv"
)

const testVCF = "##fileformat=VCFv4.2\n" +
	"#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\n" +
	"17\t7675088\t.\tC\tT\t50\tPASS\tANN=T|missense_variant|MODERATE|TP53|ENSG00000141510|transcript|ENST00000269305.9|protein_coding\n" +
	"1\t100\t.\tA\tG\t50\tPASS\tDP=3\n"

// execute runs the root command with an isolated config file.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)

	cfg := filepath.Join(t.TempDir(), "vibe-kb.yaml")
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--config", cfg}, args...))
	err := root.Execute()
	return out.String(), err
}

func writeVCF(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "in.vcf")
	require.NoError(t, os.WriteFile(path, []byte(testVCF), 0644))
	return path
}

func TestAnnotateCmd(t *testing.T) {
	dir := t.TempDir()
	outPath := filepath.Join(dir, "out.vcf")
	logPath := filepath.Join(dir, "annotate.log")

	stdout, err := execute(t, "annotate", "cgc", cgcTable, writeVCF(t), outPath, "--log", logPath, "-v")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Annotated 1 of 2 records with cgc")

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), ";CancerGeneCensus_Tier=1;")
	assert.Contains(t, string(data), "##vibe-kbCommandLine=<ID=cgc_annotate,")

	logs, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(logs), `"msg":"annotation complete"`)
	assert.Contains(t, string(logs), `"msg":"record not annotated"`, "debug level enabled by -v")
}

func TestAnnotateCmd_CompressedNative(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "out.vcf.gz")

	_, err := execute(t, "annotate", "oncokb", oncokbTable, writeVCF(t), outPath, "--native-bgzf", "--skip-index")
	require.NoError(t, err)

	_, err = os.Stat(outPath)
	assert.NoError(t, err)
	_, err = os.Stat(strings.TrimSuffix(outPath, ".gz"))
	assert.True(t, os.IsNotExist(err))
}

func TestAnnotateCmd_Errors(t *testing.T) {
	vcfPath := writeVCF(t)
	outPath := filepath.Join(t.TempDir(), "out.vcf")

	_, err := execute(t, "annotate", "clinvar", cgcTable, vcfPath, outPath)
	assert.Error(t, err)

	_, err = execute(t, "annotate", "cgc", cgcTable, vcfPath)
	assert.Error(t, err, "four positional arguments required")

	_, err = execute(t, "annotate", "cgc", cgcTable, vcfPath, outPath, "--duplicates", "first")
	assert.Error(t, err)

	_, err = execute(t, "annotate", "cgc", cgcTable, vcfPath, outPath, "--log-level", "loud")
	assert.Error(t, err)
}

func TestImportCmd(t *testing.T) {
	db := filepath.Join(t.TempDir(), "kb.duckdb")

	stdout, err := execute(t, "import", "cgc", cgcTable, db)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Imported 3 rows (3 keys)")

	stdout, err = execute(t, "import", "cgc", cgcTable, db)
	require.NoError(t, err)
	assert.Contains(t, stdout, "up to date")

	stdout, err = execute(t, "import", "cgc", cgcTable, db, "--force")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Imported 3 rows")

	outPath := filepath.Join(t.TempDir(), "out.vcf")
	_, err = execute(t, "annotate", "cgc", db, writeVCF(t), outPath)
	require.NoError(t, err)
	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), ";CancerGeneCensus_Tier=1;")
}

func TestImportCmd_WrongSourceForTable(t *testing.T) {
	db := filepath.Join(t.TempDir(), "kb.duckdb")
	_, err := execute(t, "import", "oncokb", cgcTable, db)
	assert.Error(t, err)
}

func serveFile(t *testing.T, path string) *httptest.Server {
	t.Helper()
	body, err := os.ReadFile(path)
	require.NoError(t, err)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestDownloadCmd(t *testing.T) {
	srv := serveFile(t, oncokbTable)
	want, err := os.ReadFile(oncokbTable)
	require.NoError(t, err)

	dest := filepath.Join(t.TempDir(), "kb", "cancerGeneList.tsv")
	stdout, err := execute(t, "download", "oncokb", "--url", srv.URL, "--output", dest)
	require.NoError(t, err)
	assert.Contains(t, stdout, "oncokb: 4 transcripts written to "+dest)

	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	stdout, err = execute(t, "download", "oncokb", "--url", srv.URL, "--output", dest)
	require.NoError(t, err)
	assert.Contains(t, stdout, "oncokb: keeping "+dest)
}

func TestDownloadCmd_ForceReplaces(t *testing.T) {
	srv := serveFile(t, oncokbTable)
	want, err := os.ReadFile(oncokbTable)
	require.NoError(t, err)

	dest := filepath.Join(t.TempDir(), "cancerGeneList.tsv")
	require.NoError(t, os.WriteFile(dest, []byte("old list"), 0644))

	_, err = execute(t, "download", "oncokb", "--url", srv.URL, "--output", dest, "--force")
	require.NoError(t, err)
	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestDownloadCmd_ForceKeepsFileOnHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	dir := t.TempDir()
	dest := filepath.Join(dir, "cancerGeneList.tsv")
	require.NoError(t, os.WriteFile(dest, []byte("good data"), 0644))

	_, err := execute(t, "download", "oncokb", "--url", srv.URL, "--output", dest, "--force")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")

	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "good data", string(got))
	assertOnlyFile(t, dir, "cancerGeneList.tsv")
}

func TestDownloadCmd_ForceKeepsFileOnUnusableList(t *testing.T) {
	srv := serveFile(t, cgcTable)

	dir := t.TempDir()
	dest := filepath.Join(dir, "cancerGeneList.tsv")
	require.NoError(t, os.WriteFile(dest, []byte("good data"), 0644))

	_, err := execute(t, "download", "oncokb", "--url", srv.URL, "--output", dest, "--force")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a usable cancer gene list")

	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "good data", string(got))
	assertOnlyFile(t, dir, "cancerGeneList.tsv")
}

func TestDownloadCmd_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	dir := t.TempDir()
	_, err := execute(t, "download", "oncokb", "--url", srv.URL, "--output", filepath.Join(dir, "cancerGeneList.tsv"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
	assertOnlyFile(t, dir)
}

// assertOnlyFile checks that dir holds exactly the named files.
func assertOnlyFile(t *testing.T, dir string, names ...string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	got := make([]string, 0, len(entries))
	for _, e := range entries {
		got = append(got, e.Name())
	}
	assert.ElementsMatch(t, names, got)
}

func TestDownloadCmd_CGCUnavailable(t *testing.T) {
	_, err := execute(t, "download", "cgc")
	assert.Error(t, err)
}

func TestConfigCmd(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	cfg := filepath.Join(t.TempDir(), "vibe-kb.yaml")

	run := func(args ...string) string {
		var out bytes.Buffer
		root := newRootCmd()
		root.SetOut(&out)
		root.SetErr(&out)
		root.SetArgs(append([]string{"--config", cfg}, args...))
		require.NoError(t, root.Execute())
		return out.String()
	}

	assert.Contains(t, run("config", "set", "output.compress-command", "pbgzip"), "Set output.compress-command = pbgzip")

	viper.Reset()
	assert.Equal(t, "pbgzip\n", run("config", "get", "output.compress-command"))
	assert.Equal(t, "last\n", run("config", "get", "table.duplicates"))

	shown := run("config")
	assert.Contains(t, shown, "compress-command: pbgzip")
	assert.Contains(t, shown, "duplicates: last")
	assert.Contains(t, shown, "# last or error")

	assert.Contains(t, run("config", "set", "output.threads", "4"), "Set output.threads = 4")
	viper.Reset()
	assert.Equal(t, "4\n", run("config", "get", "output.threads"))
}

func TestConfigCmd_RejectsInvalidValues(t *testing.T) {
	for _, args := range [][]string{
		{"config", "set", "table.duplicates", "first"},
		{"config", "set", "table.delimiter", "colon"},
		{"config", "set", "output.threads", "-2"},
		{"config", "set", "output.native-bgzf", "maybe"},
		{"config", "set", "log-level", "loud"},
		{"config", "set", "table.separator", "tab"},
		{"config", "get", "table.separator"},
	} {
		_, err := execute(t, args...)
		assert.Error(t, err, "%v", args)
	}
}

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "512 B", formatSize(512))
	assert.Equal(t, "1.5 KB", formatSize(1536))
	assert.Equal(t, "2.0 MB", formatSize(2*1024*1024))
}

func TestNewLogger(t *testing.T) {
	_, err := newLogger("", "verbose")
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "x.log")
	l, err := newLogger(path, "debug")
	require.NoError(t, err)
	l.Debug("hello")
	require.NoError(t, l.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)
}
