package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/vvka-141/asdbload/internal/config"
	"github.com/vvka-141/asdbload/internal/filter"
	"github.com/vvka-141/asdbload/pkg/asdb"
)

// Environment overrides, also read from .env in the working directory.
const (
	envDatabase = "ASDBLOAD_DATABASE"
	envTemplate = "ASDBLOAD_TEMPLATE"
	envPrefixes = "ASDBLOAD_PREFIXES"
)

// settingsFlags holds the flag values that can override configuration.
// A field only applies when its flag was set on the command line.
type settingsFlags struct {
	prefixes string
	database string
	template string
	timeout  *time.Duration // importer timeout; nil when the command has none
}

// resolveSettings returns the effective configuration.
// Priority (highest to lowest): flags > environment (.env included) > asdbload.yaml > defaults
func resolveSettings(cmd *cobra.Command, flags settingsFlags, verbose bool) (*config.ProjectConfig, error) {
	_ = godotenv.Load()

	cfg, err := loadProjectConfig(rootFlags.configPath, verbose)
	if err != nil {
		return nil, err
	}
	if err := applyEnvironment(cfg); err != nil {
		return nil, err
	}
	if err := applyFlags(cmd, cfg, flags); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadProjectConfig loads the configuration file.
// A missing ./asdbload.yaml is not an error; a missing --config file is.
func loadProjectConfig(path string, verbose bool) (*config.ProjectConfig, error) {
	explicit := path != ""
	if !explicit {
		path = config.ConfigFileName
	}

	cfg, err := config.LoadFile(path)
	if err != nil {
		if errors.Is(err, config.ErrConfigNotFound) {
			if explicit {
				return nil, fmt.Errorf("config file %s not found: %w", path, asdb.ErrInvalidConfig)
			}
			if verbose {
				fmt.Fprintf(os.Stderr, "[VERBOSE] No %s found, using built-in defaults\n", config.ConfigFileName)
			}
			return config.Default(), nil
		}
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "[VERBOSE] Loaded configuration from %s\n", path)
	}
	return cfg, nil
}

func applyEnvironment(cfg *config.ProjectConfig) error {
	if v := os.Getenv(envDatabase); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv(envTemplate); v != "" {
		cfg.Database.Template = v
	}
	if v := os.Getenv(envPrefixes); v != "" {
		prefixes, err := filter.ParsePrefixes(v)
		if err != nil {
			return fmt.Errorf("%s: %w", envPrefixes, err)
		}
		cfg.Filter.Prefixes = prefixes
	}
	return nil
}

func applyFlags(cmd *cobra.Command, cfg *config.ProjectConfig, flags settingsFlags) error {
	changed := cmd.Flags().Changed

	if changed("prefixes") {
		prefixes, err := filter.ParsePrefixes(flags.prefixes)
		if err != nil {
			return fmt.Errorf("--prefixes: %w", err)
		}
		cfg.Filter.Prefixes = prefixes
	}
	if changed("database") {
		cfg.Database.Path = flags.database
	}
	if changed("template") {
		cfg.Database.Template = flags.template
	}
	if flags.timeout != nil && changed("timeout") {
		if *flags.timeout < 0 {
			return fmt.Errorf("--timeout cannot be negative: %w", asdb.ErrInvalidConfig)
		}
		cfg.Importer.Timeout = flags.timeout.String()
	}
	return nil
}

// interruptContext returns a context that is cancelled on SIGINT or SIGTERM.
func interruptContext(cmd *cobra.Command, what string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(commandContext(cmd))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case <-sigChan:
			fmt.Fprintf(os.Stderr, "\n[INTERRUPT] Received interrupt signal, stopping %s...\n", what)
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigChan)
		cancel()
	}
}

// commandContext returns cmd's context, or context.Background when the command
// was not started through Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
