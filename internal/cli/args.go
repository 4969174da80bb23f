package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// RequireInputDir validates that exactly one input_dir argument is provided.
// Returns a helpful error message with usage and examples if missing or too many.
func RequireInputDir(cmd *cobra.Command, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf(`missing required argument: <input_dir>

Usage: %s

Example:
  %s ./antismash_results -v`, cmd.UseLine(), cmd.CommandPath())
	}
	if len(args) > 1 {
		return fmt.Errorf("accepts 1 arg(s), received %d", len(args))
	}
	return nil
}
