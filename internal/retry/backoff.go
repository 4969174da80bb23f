package retry

import (
	"math"
	"math/rand"
	"time"

	"github.com/vvka-141/asdbload/pkg/asdb"
)

// ExponentialBackoff implements exponential backoff with jitter.
type ExponentialBackoff struct {
	initialDelay time.Duration
	maxDelay     time.Duration

	// multiplier is the factor by which delay increases (typically 2.0)
	multiplier float64

	// maxAttempts is the number of retries after the first attempt (0 = no retries)
	maxAttempts int

	// jitter of 0.1 means +/- 10% randomness
	jitter float64

	// jitterFunc provides random values [0, 1); nil means math/rand
	jitterFunc func() float64
}

// BackoffOption is a functional option for configuring ExponentialBackoff.
type BackoffOption func(*ExponentialBackoff)

// WithInitialDelay sets the delay before the first retry.
func WithInitialDelay(d time.Duration) BackoffOption {
	return func(b *ExponentialBackoff) {
		b.initialDelay = d
	}
}

// WithMaxDelay caps the delay between retries.
func WithMaxDelay(d time.Duration) BackoffOption {
	return func(b *ExponentialBackoff) {
		b.maxDelay = d
	}
}

// WithMultiplier sets the factor by which delay increases between attempts.
func WithMultiplier(m float64) BackoffOption {
	return func(b *ExponentialBackoff) {
		b.multiplier = m
	}
}

// WithJitter sets the jitter factor (0.0-1.0).
func WithJitter(j float64) BackoffOption {
	return func(b *ExponentialBackoff) {
		b.jitter = j
	}
}

// WithJitterFunc sets a custom source of random values for jitter.
func WithJitterFunc(f func() float64) BackoffOption {
	return func(b *ExponentialBackoff) {
		b.jitterFunc = f
	}
}

// NewExponentialBackoff creates a backoff allowing maxRetries retries.
// A negative maxRetries is treated as zero. Delays start at
// asdb.DefaultRetryInitialDelay and are capped at asdb.DefaultRetryMaxDelay
// unless overridden.
//
// Example:
//
//	backoff := retry.NewExponentialBackoff(3,
//	    retry.WithInitialDelay(time.Second),
//	    retry.WithMaxDelay(time.Minute),
//	)
func NewExponentialBackoff(maxRetries int, opts ...BackoffOption) *ExponentialBackoff {
	if maxRetries < 0 {
		maxRetries = 0
	}
	b := &ExponentialBackoff{
		initialDelay: asdb.DefaultRetryInitialDelay,
		maxDelay:     asdb.DefaultRetryMaxDelay,
		multiplier:   2.0,
		maxAttempts:  maxRetries,
		jitter:       0.1,
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// NextDelay returns initialDelay * multiplier^attempt, capped at maxDelay,
// with jitter applied after the cap.
func (b *ExponentialBackoff) NextDelay(attempt int) time.Duration {
	delay := float64(b.initialDelay) * math.Pow(b.multiplier, float64(attempt))
	if delay > float64(b.maxDelay) {
		delay = float64(b.maxDelay)
	}

	if b.jitter > 0 {
		jitterFunc := b.jitterFunc
		if jitterFunc == nil {
			jitterFunc = rand.Float64
		}
		// Map [0,1) to [-1,1)
		randomOffset := (jitterFunc() - 0.5) * 2.0
		delay *= 1.0 + b.jitter*randomOffset
	}

	return time.Duration(delay)
}

// MaxAttempts returns the maximum number of retries.
func (b *ExponentialBackoff) MaxAttempts() int {
	return b.maxAttempts
}

// InitialDelay returns the initial delay for tests and debugging.
func (b *ExponentialBackoff) InitialDelay() time.Duration {
	return b.initialDelay
}

// MaxDelay returns the maximum delay for tests and debugging.
func (b *ExponentialBackoff) MaxDelay() time.Duration {
	return b.maxDelay
}

var _ asdb.BackoffStrategy = (*ExponentialBackoff)(nil)
