package exttool

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/asdbload/internal/logging"
	"github.com/vvka-141/asdbload/pkg/asdb"
)

func readRecorded(t *testing.T, path string) []string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimSuffix(string(b), "\n"), "\n")
}

func TestImportArgs(t *testing.T) {
	tests := []struct {
		name string
		req  asdb.ImportRequest
		want []string
	}{
		{
			name: "quiet",
			req: asdb.ImportRequest{
				ItemPath:        "results/GCF_1.json",
				TaxonomyCache:   "asdb_taxa_cache.json",
				AllowedPrefixes: []string{"GCA", "GCF"},
			},
			want: []string{"--taxonomy", "asdb_taxa_cache.json", "--prefixes", "GCA,GCF", "results/GCF_1.json"},
		},
		{
			name: "verbose",
			req: asdb.ImportRequest{
				ItemPath:        "results/GCF_1.json",
				TaxonomyCache:   "cache.json",
				AllowedPrefixes: []string{"GCF"},
				Verbose:         true,
			},
			want: []string{"--taxonomy", "cache.json", "--prefixes", "GCF", "--verbose", "results/GCF_1.json"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ImportArgs(tt.req))
		})
	}
}

func TestCommandImporter_PassesArgumentsAndDatabase(t *testing.T) {
	record := filepath.Join(t.TempDir(), "argv.txt")
	importer := NewCommandImporter(NewRunnerTo(&bytes.Buffer{}, logging.NewNullLogger()), helperCommand(t, "record", record))

	err := importer.Import(context.Background(), asdb.ImportRequest{
		ItemPath:        "results/GCF_1.json",
		TaxonomyCache:   "asdb_taxa_cache.json",
		AllowedPrefixes: []string{"GCA", "GCF"},
		DatabasePath:    "antismash_db.duckdb",
		Timeout:         time.Minute,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"--taxonomy", "asdb_taxa_cache.json",
		"--prefixes", "GCA,GCF",
		"results/GCF_1.json",
		"ENV=antismash_db.duckdb",
	}, readRecorded(t, record))
}

func TestCommandImporter_FailureWrapsSentinelAndProcessError(t *testing.T) {
	importer := NewCommandImporter(NewRunnerTo(&bytes.Buffer{}, logging.NewNullLogger()), helperCommand(t, "exit", "1"))

	err := importer.Import(context.Background(), asdb.ImportRequest{ItemPath: "results/GCF_1.json"})
	require.Error(t, err)
	assert.ErrorIs(t, err, asdb.ErrImporterFailed)
	assert.Contains(t, err.Error(), "results/GCF_1.json")

	var procErr *asdb.ProcessError
	require.True(t, errors.As(err, &procErr))
	assert.Equal(t, 1, procErr.ExitCode)
}

func TestCommandTaxonomyBuilder_PassesSources(t *testing.T) {
	t.Setenv(asdb.DatabaseEnvVar, "")
	record := filepath.Join(t.TempDir(), "argv.txt")
	builder := NewCommandTaxonomyBuilder(NewRunnerTo(&bytes.Buffer{}, logging.NewNullLogger()), helperCommand(t, "record", record))

	err := builder.Build(context.Background(), asdb.RefreshRequest{
		Sources: asdb.TaxonomySources{
			CachePath:      "asdb_taxa_cache.json",
			DataDir:        "taxdata",
			MergedDumpPath: "taxdata/merged.dmp",
			RankedDumpPath: "taxdata/rankedlineage.dmp",
		},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"--cache", "asdb_taxa_cache.json",
		"--datadir", "taxdata",
		"--mergeddump", "taxdata/merged.dmp",
		"--rankedlineage", "taxdata/rankedlineage.dmp",
		"ENV=",
	}, readRecorded(t, record))
}

func TestCommandTaxonomyBuilder_FailureIsProcessError(t *testing.T) {
	builder := NewCommandTaxonomyBuilder(NewRunnerTo(&bytes.Buffer{}, logging.NewNullLogger()), helperCommand(t, "exit", "75"))

	err := builder.Build(context.Background(), asdb.RefreshRequest{})
	var procErr *asdb.ProcessError
	require.True(t, errors.As(err, &procErr))
	assert.Equal(t, 75, procErr.ExitCode)
}

func TestConstructors_NilRunner(t *testing.T) {
	assert.Panics(t, func() { NewCommandImporter(nil, Command{Path: "x"}) })
	assert.Panics(t, func() { NewCommandTaxonomyBuilder(nil, Command{Path: "x"}) })
}
