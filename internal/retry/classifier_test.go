package retry

import (
	"context"
	"errors"
	"fmt"
	"syscall"
	"testing"

	"github.com/vvka-141/asdbload/pkg/asdb"
)

func TestProcessErrorClassifier_IsTransient(t *testing.T) {
	classifier := NewProcessErrorClassifier()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain error", errors.New("boom"), false},
		{"timed out", &asdb.ProcessError{Command: "asdb-taxa", ExitCode: -1, TimedOut: true}, true},
		{"EX_TEMPFAIL", &asdb.ProcessError{Command: "asdb-taxa", ExitCode: 75}, true},
		{"ordinary failure", &asdb.ProcessError{Command: "asdb-taxa", ExitCode: 1}, false},
		{"text file busy at start", &asdb.ProcessError{Command: "asdb-taxa", ExitCode: -1, Err: fmt.Errorf("fork/exec: %w", syscall.ETXTBSY)}, true},
		{"EAGAIN at start", &asdb.ProcessError{Command: "asdb-taxa", ExitCode: -1, Err: syscall.EAGAIN}, true},
		{"executable missing", &asdb.ProcessError{Command: "asdb-taxa", ExitCode: -1, Err: syscall.ENOENT}, false},
		{"wrapped timeout", fmt.Errorf("%w: %w", asdb.ErrTaxonomyRefresh, &asdb.ProcessError{Command: "asdb-taxa", ExitCode: -1, TimedOut: true}), true},
		{"cancelled", fmt.Errorf("%w: %w", context.Canceled, &asdb.ProcessError{Command: "asdb-taxa", ExitCode: -1, TimedOut: true}), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifier.IsTransient(tt.err); got != tt.want {
				t.Errorf("IsTransient(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
