package tui

import (
	"os"

	"golang.org/x/term"
)

// Mode represents how asdbload renders human-facing output.
type Mode int

const (
	// ModePlain is used for CI logs, redirected output and NO_COLOR users.
	ModePlain Mode = iota
	// ModeStyled is used when a human is watching a terminal.
	ModeStyled
)

// PlainEnvVar forces plain output when set to "1".
const PlainEnvVar = "ASDBLOAD_PLAIN"

// DetectMode determines whether output written to f should be styled.
//
// Returns ModePlain if:
//   - ASDBLOAD_PLAIN=1 is set
//   - CI is set (common CI/CD convention)
//   - NO_COLOR is set (https://no-color.org)
//   - f is not a terminal
//
// Returns ModeStyled otherwise.
func DetectMode(f *os.File) Mode {
	if os.Getenv(PlainEnvVar) == "1" {
		return ModePlain
	}
	if os.Getenv("CI") != "" {
		return ModePlain
	}
	if os.Getenv("NO_COLOR") != "" {
		return ModePlain
	}
	if f == nil || !term.IsTerminal(int(f.Fd())) {
		return ModePlain
	}
	return ModeStyled
}

// IsStyled is a convenience function that returns true if f gets styled output.
func IsStyled(f *os.File) bool {
	return DetectMode(f) == ModeStyled
}
