package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vvka-141/asdbload/internal/filter"
	"github.com/vvka-141/asdbload/pkg/asdb"
	"gopkg.in/yaml.v3"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

// ConfigFileName is looked up in the working directory when no --config is given.
const ConfigFileName = "asdbload.yaml"

type DatabaseConfig struct {
	Path     string `yaml:"path"`
	Template string `yaml:"template"`
}

type FilterConfig struct {
	Prefixes []string `yaml:"prefixes"`
}

type DiscoveryConfig struct {
	Extensions []string `yaml:"extensions"`
}

type TaxonomyConfig struct {
	Command    string   `yaml:"command"`
	Args       []string `yaml:"args,omitempty"`
	Cache      string   `yaml:"cache"`
	DataDir    string   `yaml:"data_dir"`
	MergedDump string   `yaml:"merged_dump"`
	RankedDump string   `yaml:"ranked_dump"`
	Timeout    string   `yaml:"timeout"`
	Retries    int      `yaml:"retries"`
}

type ImporterConfig struct {
	Command string   `yaml:"command"`
	Args    []string `yaml:"args,omitempty"`
	Timeout string   `yaml:"timeout"`
}

type ProgressConfig struct {
	ImportedLog string `yaml:"imported_log"`
	FailedLog   string `yaml:"failed_log"`
	DeferredLog string `yaml:"deferred_log"`
}

type JournalConfig struct {
	Path    string `yaml:"path"`
	Enabled bool   `yaml:"enabled"`
}

// ProjectConfig mirrors asdbload.yaml.
type ProjectConfig struct {
	Database  DatabaseConfig  `yaml:"database"`
	Filter    FilterConfig    `yaml:"filter"`
	Discovery DiscoveryConfig `yaml:"discovery"`
	Taxonomy  TaxonomyConfig  `yaml:"taxonomy"`
	Importer  ImporterConfig  `yaml:"importer"`
	Progress  ProgressConfig  `yaml:"progress"`
	Journal   JournalConfig   `yaml:"journal"`
}

// Default returns the built-in configuration. Every key of asdbload.yaml
// falls back to these values.
func Default() *ProjectConfig {
	return &ProjectConfig{
		Database: DatabaseConfig{
			Path:     asdb.DefaultDatabasePath,
			Template: asdb.DefaultTemplatePath,
		},
		Filter: FilterConfig{
			Prefixes: append([]string(nil), asdb.DefaultPrefixes...),
		},
		Discovery: DiscoveryConfig{
			Extensions: append([]string(nil), asdb.DefaultExtensions...),
		},
		Taxonomy: TaxonomyConfig{
			Command:    asdb.DefaultTaxonomyCommand,
			Args:       []string{"init"},
			Cache:      asdb.DefaultTaxonomyCache,
			DataDir:    asdb.DefaultTaxonomyDataDir,
			MergedDump: asdb.DefaultMergedDump,
			RankedDump: asdb.DefaultRankedDump,
			Timeout:    asdb.DefaultTaxonomyTimeout.String(),
		},
		Importer: ImporterConfig{
			Command: asdb.DefaultImporterCommand,
			Timeout: asdb.DefaultImportTimeout.String(),
		},
		Progress: ProgressConfig{
			ImportedLog: asdb.DefaultImportedLog,
			FailedLog:   asdb.DefaultFailedLog,
			DeferredLog: asdb.DefaultDeferredLog,
		},
		Journal: JournalConfig{
			Path:    asdb.DefaultJournalPath,
			Enabled: true,
		},
	}
}

// Load reads asdbload.yaml from dir.
func Load(dir string) (*ProjectConfig, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads the config file at path on top of Default(). Keys missing
// from the file keep their defaults; unknown keys are rejected.
func LoadFile(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%s: %w: %w", path, asdb.ErrInvalidConfig, err)
	}

	cfg.expandPaths()
	return cfg, nil
}

func (c *ProjectConfig) expandPaths() {
	for _, p := range []*string{
		&c.Database.Path,
		&c.Database.Template,
		&c.Taxonomy.Cache,
		&c.Taxonomy.DataDir,
		&c.Taxonomy.MergedDump,
		&c.Taxonomy.RankedDump,
		&c.Progress.ImportedLog,
		&c.Progress.FailedLog,
		&c.Progress.DeferredLog,
		&c.Journal.Path,
	} {
		*p = ExpandPath(*p)
	}
}

// ExpandPath expands a leading ~/ to the user's home directory.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}

// ImporterTimeout parses importer.timeout. Zero disables the bound.
func (c *ProjectConfig) ImporterTimeout() (time.Duration, error) {
	return parseTimeout("importer.timeout", c.Importer.Timeout)
}

// TaxonomyTimeout parses taxonomy.timeout. Zero disables the bound.
func (c *ProjectConfig) TaxonomyTimeout() (time.Duration, error) {
	return parseTimeout("taxonomy.timeout", c.Taxonomy.Timeout)
}

func parseTimeout(key, value string) (time.Duration, error) {
	if strings.TrimSpace(value) == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w: %w", key, asdb.ErrInvalidConfig, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s cannot be negative: %w", key, asdb.ErrInvalidConfig)
	}
	return d, nil
}

// Validate reports every problem at once.
func (c *ProjectConfig) Validate() error {
	var errs []error

	if _, err := filter.NormalizePrefixes(c.Filter.Prefixes); err != nil {
		errs = append(errs, fmt.Errorf("filter.prefixes: %w", err))
	}
	if c.Importer.Command == "" {
		errs = append(errs, fmt.Errorf("importer.command is required: %w", asdb.ErrInvalidConfig))
	}
	if c.Taxonomy.Command == "" {
		errs = append(errs, fmt.Errorf("taxonomy.command is required: %w", asdb.ErrInvalidConfig))
	}
	if c.Taxonomy.Retries < 0 {
		errs = append(errs, fmt.Errorf("taxonomy.retries cannot be negative: %w", asdb.ErrInvalidConfig))
	}
	if _, err := c.ImporterTimeout(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.TaxonomyTimeout(); err != nil {
		errs = append(errs, err)
	}
	if c.Journal.Enabled && c.Journal.Path == "" {
		errs = append(errs, fmt.Errorf("journal.path is required when the journal is enabled: %w", asdb.ErrInvalidConfig))
	}

	return errors.Join(errs...)
}

// BatchConfig builds the batch settings for inputDir from c.
func (c *ProjectConfig) BatchConfig(inputDir string, verbose bool) (asdb.BatchConfig, error) {
	if err := c.Validate(); err != nil {
		return asdb.BatchConfig{}, err
	}
	prefixes, _ := filter.NormalizePrefixes(c.Filter.Prefixes)
	timeout, _ := c.ImporterTimeout()

	return asdb.BatchConfig{
		InputDir:        inputDir,
		AllowedPrefixes: prefixes,
		Verbose:         verbose,
		DatabasePath:    c.Database.Path,
		TemplatePath:    c.Database.Template,
		Taxonomy:        c.TaxonomySources(),
		Progress: asdb.ProgressPaths{
			ImportedLog: c.Progress.ImportedLog,
			FailedLog:   c.Progress.FailedLog,
			DeferredLog: c.Progress.DeferredLog,
		},
		ItemTimeout: timeout,
	}, nil
}

func (c *ProjectConfig) TaxonomySources() asdb.TaxonomySources {
	return asdb.TaxonomySources{
		CachePath:      c.Taxonomy.Cache,
		DataDir:        c.Taxonomy.DataDir,
		MergedDumpPath: c.Taxonomy.MergedDump,
		RankedDumpPath: c.Taxonomy.RankedDump,
	}
}
