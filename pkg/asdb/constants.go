package asdb

import "time"

// Exit codes for semantic error classification.
// These follow Unix/GNU conventions:
//   - 0: Success
//   - 1: General error
//   - 2: CLI usage error (misuse of command line)
//   - 3+: Application-specific errors
const (
	ExitSuccess         = 0  // Batch completed with zero failed items
	ExitGeneralError    = 1  // Unknown or unclassified error (including interruption)
	ExitUsageError      = 2  // CLI usage error (missing args, invalid flags)
	ExitPanic           = 3  // Internal panic (unexpected crash)
	ExitConfigError     = 10 // Invalid configuration or flags
	ExitInputDirMissing = 11 // Input directory missing or not a directory
	ExitProvisionFailed = 12 // Database file could not be provisioned
	ExitTaxonomyFailed  = 13 // Taxonomy cache refresh failed
	ExitItemsFailed     = 14 // At least one item failed to import
)

const (
	// DefaultDatabasePath is the working database file, relative to the working directory.
	DefaultDatabasePath = "antismash_db.duckdb"

	// DefaultTemplatePath is the empty database produced by the schema initialization step.
	DefaultTemplatePath = "schema/antismash_db.duckdb"

	// DefaultImportedLog is the success log. It is never truncated.
	DefaultImportedLog = "imported_files.txt"

	// DefaultFailedLog is the failure log. It is truncated at the start of every batch.
	DefaultFailedLog = "failed_files.txt"

	// DefaultDeferredLog is reserved for a deferred outcome class and is only ever
	// created empty.
	DefaultDeferredLog = "deferred_files.txt"

	// DefaultJournalPath is the SQLite run history.
	DefaultJournalPath = "asdbload_history.db"

	// DefaultTaxonomyCache is the cache file produced by the taxonomy-cache builder.
	DefaultTaxonomyCache = "asdb_taxa_cache.json"

	// DefaultTaxonomyDataDir holds the NCBI taxonomy dumps.
	DefaultTaxonomyDataDir = "taxdata"

	// DefaultMergedDump and DefaultRankedDump are the NCBI new_taxdump files the
	// taxonomy-cache builder reads.
	DefaultMergedDump = "taxdata/merged.dmp"
	DefaultRankedDump = "taxdata/rankedlineage.dmp"

	// DefaultTaxonomyCommand and DefaultImporterCommand name the external tools.
	DefaultTaxonomyCommand = "asdb-taxa"
	DefaultImporterCommand = "asdb-import"

	// DefaultImportTimeout bounds a single importer invocation. Zero disables the bound.
	DefaultImportTimeout = 2 * time.Hour

	// DefaultTaxonomyTimeout bounds a single taxonomy refresh attempt.
	DefaultTaxonomyTimeout = 1 * time.Hour

	// DefaultRetryInitialDelay is the default initial delay before the first retry attempt.
	DefaultRetryInitialDelay = 5 * time.Second

	// DefaultRetryMaxDelay is the default maximum delay between retry attempts.
	DefaultRetryMaxDelay = 2 * time.Minute

	// MaxStderrTailLines is the number of trailing stderr lines kept from a failed
	// child process and reported with the failure.
	MaxStderrTailLines = 20

	// DatabaseEnvVar carries the database path into the importer's environment.
	DatabaseEnvVar = "ASDB_DATABASE"
)

// DefaultPrefixes is the default allowed-prefix set: GenBank and RefSeq assembly accessions.
var DefaultPrefixes = []string{"GCA", "GCF"}

// DefaultExtensions is the default set of result file extensions considered during discovery.
var DefaultExtensions = []string{".json"}
