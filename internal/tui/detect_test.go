package tui

import (
	"os"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func clearModeEnv(t *testing.T) {
	t.Helper()
	t.Setenv(PlainEnvVar, "")
	t.Setenv("CI", "")
	t.Setenv("NO_COLOR", "")
}

func TestDetectMode_PlainEnvVar(t *testing.T) {
	clearModeEnv(t)
	t.Setenv(PlainEnvVar, "1")

	if got := DetectMode(os.Stdout); got != ModePlain {
		t.Errorf("DetectMode() = %d, want ModePlain", got)
	}
}

func TestDetectMode_CI(t *testing.T) {
	clearModeEnv(t)
	t.Setenv("CI", "true")

	if got := DetectMode(os.Stdout); got != ModePlain {
		t.Errorf("DetectMode() = %d, want ModePlain", got)
	}
}

func TestDetectMode_NO_COLOR(t *testing.T) {
	clearModeEnv(t)
	t.Setenv("NO_COLOR", "1")

	if got := DetectMode(os.Stdout); got != ModePlain {
		t.Errorf("DetectMode() = %d, want ModePlain", got)
	}
}

func TestDetectMode_NotATerminal(t *testing.T) {
	clearModeEnv(t)
	f, err := os.CreateTemp(t.TempDir(), "out")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if got := DetectMode(f); got != ModePlain {
		t.Errorf("DetectMode() = %d, want ModePlain for a regular file", got)
	}
}

func TestDetectMode_NilFile(t *testing.T) {
	clearModeEnv(t)

	if IsStyled(nil) {
		t.Error("IsStyled(nil) = true, want false")
	}
}

func TestRender_PlainLeavesTextAlone(t *testing.T) {
	style := lipgloss.NewStyle().Bold(true)
	if got := Render(style, "done", false); got != "done" {
		t.Errorf("Render(plain) = %q, want %q", got, "done")
	}
}
