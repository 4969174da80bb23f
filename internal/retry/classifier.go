package retry

import (
	"context"
	"errors"
	"syscall"

	"github.com/vvka-141/asdbload/pkg/asdb"
)

// exitTempFail is EX_TEMPFAIL from sysexits.h: "temporary failure; user is
// invited to retry".
const exitTempFail = 75

// ProcessErrorClassifier implements ErrorClassifier for external tool failures.
//
// Transient:
//   - the tool ran past its timeout
//   - the tool exited with status 75 (EX_TEMPFAIL)
//   - the tool could not be started because its executable was busy or the
//     system was temporarily out of process slots (ETXTBSY, EAGAIN)
//
// Everything else, including cancellation by the caller, is fatal.
type ProcessErrorClassifier struct{}

// NewProcessErrorClassifier creates a new process error classifier.
func NewProcessErrorClassifier() *ProcessErrorClassifier {
	return &ProcessErrorClassifier{}
}

// IsTransient determines if an error is temporary and retryable.
func (c *ProcessErrorClassifier) IsTransient(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) {
		return false
	}

	var procErr *asdb.ProcessError
	if !errors.As(err, &procErr) {
		return false
	}

	if procErr.TimedOut {
		return true
	}

	if procErr.ExitCode == exitTempFail {
		return true
	}

	if procErr.ExitCode < 0 {
		return errors.Is(procErr.Err, syscall.ETXTBSY) || errors.Is(procErr.Err, syscall.EAGAIN)
	}

	return false
}

var _ asdb.ErrorClassifier = (*ProcessErrorClassifier)(nil)
