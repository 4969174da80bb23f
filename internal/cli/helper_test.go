package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

// TestHelperProcess isn't a real test. It stands in for the importer and the
// taxonomy builder when the commands are run end to end.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	defer os.Exit(0)

	args := os.Args
	for len(args) > 0 && args[0] != "--" {
		args = args[1:]
	}
	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "no mode")
		os.Exit(2)
	}

	switch mode, rest := args[1], args[2:]; mode {
	case "taxonomy":
		fmt.Fprintln(os.Stderr, "taxonomy cache written")
	case "import":
		item := rest[len(rest)-1]
		if strings.Contains(filepath.Base(item), "bad") {
			fmt.Fprintln(os.Stderr, "malformed record")
			os.Exit(1)
		}
	default:
		fmt.Fprintf(os.Stderr, "unknown mode %q\n", mode)
		os.Exit(2)
	}
}

// cliEnv is a working directory with everything a batch needs: a schema
// template, taxonomy dumps, an input directory and an asdbload.yaml pointing
// at all of them, with the test binary standing in for both tools.
type cliEnv struct {
	dir         string
	input       string
	database    string
	importedLog string
	failedLog   string
	journal     string
}

func newCLIEnv(t *testing.T, items ...string) *cliEnv {
	t.Helper()
	dir := t.TempDir()
	env := &cliEnv{
		dir:         dir,
		input:       filepath.Join(dir, "results"),
		database:    filepath.Join(dir, "antismash_db.duckdb"),
		importedLog: filepath.Join(dir, "imported_files.txt"),
		failedLog:   filepath.Join(dir, "failed_files.txt"),
		journal:     filepath.Join(dir, "history.db"),
	}

	mustWrite(t, filepath.Join(dir, "schema", "antismash_db.duckdb"), "template")
	mustWrite(t, filepath.Join(dir, "taxdata", "merged.dmp"), "")
	mustWrite(t, filepath.Join(dir, "taxdata", "rankedlineage.dmp"), "")
	require.NoError(t, os.MkdirAll(env.input, 0755))
	for _, item := range items {
		mustWrite(t, filepath.Join(env.input, item), "{}")
	}

	self := os.Args[0]
	cfg := fmt.Sprintf(`database:
  path: %[1]s/antismash_db.duckdb
  template: %[1]s/schema/antismash_db.duckdb
taxonomy:
  command: %[2]s
  args: ["-test.run=TestHelperProcess", "--", "taxonomy"]
  cache: %[1]s/asdb_taxa_cache.json
  data_dir: %[1]s/taxdata
  merged_dump: %[1]s/taxdata/merged.dmp
  ranked_dump: %[1]s/taxdata/rankedlineage.dmp
importer:
  command: %[2]s
  args: ["-test.run=TestHelperProcess", "--", "import"]
  timeout: 1m
progress:
  imported_log: %[1]s/imported_files.txt
  failed_log: %[1]s/failed_files.txt
  deferred_log: %[1]s/deferred_files.txt
journal:
  path: %[1]s/history.db
  enabled: true
`, filepath.ToSlash(dir), filepath.ToSlash(self))
	configPath := filepath.Join(dir, "asdbload.yaml")
	mustWrite(t, configPath, cfg)

	t.Setenv("GO_WANT_HELPER_PROCESS", "1")
	for _, v := range []string{envDatabase, envTemplate, envPrefixes} {
		t.Setenv(v, "")
	}

	resetAllFlags(t)
	rootFlags.configPath = configPath
	return env
}

func (e *cliEnv) item(name string) string {
	return filepath.Join(e.input, name)
}

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

// resetAllFlags puts every flag of the command tree back to its default and
// clears Changed, so tests do not leak flag state into each other.
func resetAllFlags(t *testing.T) {
	t.Helper()
	var reset func(cmd *cobra.Command)
	reset = func(cmd *cobra.Command) {
		for _, fs := range []*pflag.FlagSet{cmd.Flags(), cmd.PersistentFlags()} {
			fs.VisitAll(func(f *pflag.Flag) {
				require.NoError(t, f.Value.Set(f.DefValue))
				f.Changed = false
			})
		}
		for _, sub := range cmd.Commands() {
			reset(sub)
		}
	}
	reset(rootCmd)
	rootFlags = rootFlagValues{}
}

func setFlag(t *testing.T, cmd *cobra.Command, name, value string) {
	t.Helper()
	require.NoError(t, cmd.Flags().Set(name, value))
}
