package asdb

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common failure scenarios.
// These enable callers to distinguish error types using errors.Is().
//
// Example usage:
//
//	result, err := importer.Run(ctx, config)
//	if errors.Is(err, asdb.ErrItemsFailed) {
//	    // some items failed, result.Failed lists them
//	}
var (
	// ErrInvalidConfig indicates the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInputDirMissing indicates the input directory does not exist or is not a directory.
	ErrInputDirMissing = errors.New("input directory missing")

	// ErrProvisionFailed indicates the working database file could not be provisioned.
	ErrProvisionFailed = errors.New("database provisioning failed")

	// ErrTaxonomyRefresh indicates the taxonomy cache could not be refreshed.
	ErrTaxonomyRefresh = errors.New("taxonomy cache refresh failed")

	// ErrImporterFailed indicates a single importer invocation did not succeed.
	ErrImporterFailed = errors.New("importer failed")

	// ErrItemsFailed indicates at least one item of a batch failed to import.
	ErrItemsFailed = errors.New("one or more items failed")

	// ErrProgressStore indicates the progress logs could not be read or written.
	ErrProgressStore = errors.New("progress store error")

	// ErrJournal indicates the run journal could not be opened or written.
	ErrJournal = errors.New("run journal error")
)

// ProvisionError describes a failed database provisioning step.
type ProvisionError struct {
	Op       string // "stat", "open template", "copy", "sync", "rename", ...
	Target   string
	Template string
	Err      error
}

func (e *ProvisionError) Error() string {
	return fmt.Sprintf("provision %s from %s: %s: %v", e.Target, e.Template, e.Op, e.Err)
}

// Unwrap exposes both the sentinel and the underlying cause to errors.Is/As.
func (e *ProvisionError) Unwrap() []error {
	return []error{ErrProvisionFailed, e.Err}
}

// ProcessError describes an external tool invocation that did not exit cleanly.
// ExitCode is -1 when the process never started or was killed by a signal.
type ProcessError struct {
	Command    string
	ExitCode   int
	TimedOut   bool
	StderrTail []string
	Err        error
}

func (e *ProcessError) Error() string {
	var b strings.Builder
	switch {
	case e.TimedOut:
		fmt.Fprintf(&b, "%s timed out", e.Command)
	case e.ExitCode >= 0:
		fmt.Fprintf(&b, "%s exited with status %d", e.Command, e.ExitCode)
	default:
		fmt.Fprintf(&b, "%s: %v", e.Command, e.Err)
	}
	return b.String()
}

func (e *ProcessError) Unwrap() error {
	return e.Err
}

// ExitCodeForError returns the appropriate exit code for an error.
// Returns ExitSuccess (0) for nil errors, semantic codes for known errors,
// and ExitGeneralError (1) for unclassified errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, ErrInvalidConfig):
		return ExitConfigError
	case errors.Is(err, ErrInputDirMissing):
		return ExitInputDirMissing
	case errors.Is(err, ErrProvisionFailed):
		return ExitProvisionFailed
	case errors.Is(err, ErrTaxonomyRefresh):
		return ExitTaxonomyFailed
	case errors.Is(err, ErrItemsFailed):
		return ExitItemsFailed
	}

	if isUsageError(err.Error()) {
		return ExitUsageError
	}

	return ExitGeneralError
}

// isUsageError recognizes the argument and flag errors produced by cobra and pflag.
func isUsageError(msg string) bool {
	usagePatterns := []string{
		"unknown flag",
		"unknown shorthand flag",
		"unknown command",
		"accepts ",
		"requires at least",
		"required flag",
		"invalid argument",
		"flag needs an argument",
		"missing required argument",
	}
	for _, pattern := range usagePatterns {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}
