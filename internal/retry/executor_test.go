package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vvka-141/asdbload/pkg/asdb"
)

// mockOperation tracks invocation count and simulates transient failures
type mockOperation struct {
	invocations int
	failUntil   int // Fail for invocations < failUntil
	fatalErr    error
}

func (m *mockOperation) execute(ctx context.Context) error {
	m.invocations++

	if m.invocations < m.failUntil {
		return &asdb.ProcessError{Command: "asdb-taxa", ExitCode: 75}
	}

	if m.invocations == m.failUntil && m.fatalErr != nil {
		return m.fatalErr
	}

	return nil
}

func fastBackoff(retries int) *ExponentialBackoff {
	return NewExponentialBackoff(retries, WithInitialDelay(time.Millisecond), WithJitter(0))
}

func TestNewExecutor_NilArgs(t *testing.T) {
	tests := []struct {
		name string
		fn   func()
	}{
		{"nil classifier", func() { NewExecutor(nil, fastBackoff(1)) }},
		{"nil strategy", func() { NewExecutor(NewProcessErrorClassifier(), nil) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if r := recover(); r == nil {
					t.Error("Expected panic")
				}
			}()
			tt.fn()
		})
	}
}

func TestExecutor_Execute_SuccessOnFirstAttempt(t *testing.T) {
	executor := NewExecutor(NewProcessErrorClassifier(), fastBackoff(3))
	op := &mockOperation{failUntil: 1}

	if err := executor.Execute(context.Background(), op.execute); err != nil {
		t.Errorf("Expected success, got error: %v", err)
	}
	if op.invocations != 1 {
		t.Errorf("Expected 1 invocation, got %d", op.invocations)
	}
}

func TestExecutor_Execute_SuccessAfterRetries(t *testing.T) {
	executor := NewExecutor(NewProcessErrorClassifier(), fastBackoff(5))
	op := &mockOperation{failUntil: 4}

	if err := executor.Execute(context.Background(), op.execute); err != nil {
		t.Errorf("Expected success after retries, got error: %v", err)
	}
	if op.invocations != 4 {
		t.Errorf("Expected 4 invocations, got %d", op.invocations)
	}
}

func TestExecutor_Execute_ExhaustedRetries(t *testing.T) {
	executor := NewExecutor(NewProcessErrorClassifier(), fastBackoff(2))
	op := &mockOperation{failUntil: 100}

	err := executor.Execute(context.Background(), op.execute)

	var procErr *asdb.ProcessError
	if !errors.As(err, &procErr) || procErr.ExitCode != 75 {
		t.Errorf("Expected last transient error, got %v", err)
	}
	if op.invocations != 3 {
		t.Errorf("Expected 3 invocations (1 + 2 retries), got %d", op.invocations)
	}
}

func TestExecutor_Execute_NoRetriesStrategy(t *testing.T) {
	executor := NewExecutor(NewProcessErrorClassifier(), fastBackoff(0))
	op := &mockOperation{failUntil: 100}

	if err := executor.Execute(context.Background(), op.execute); err == nil {
		t.Error("Expected error")
	}
	if op.invocations != 1 {
		t.Errorf("Expected 1 invocation, got %d", op.invocations)
	}
}

func TestExecutor_Execute_FatalErrorNoRetry(t *testing.T) {
	executor := NewExecutor(NewProcessErrorClassifier(), fastBackoff(5))
	fatal := &asdb.ProcessError{Command: "asdb-taxa", ExitCode: 2}
	op := &mockOperation{failUntil: 1, fatalErr: fatal}

	err := executor.Execute(context.Background(), op.execute)
	if !errors.Is(err, fatal) {
		t.Errorf("Expected fatal error, got %v", err)
	}
	if op.invocations != 1 {
		t.Errorf("Expected 1 invocation, got %d", op.invocations)
	}
}

func TestExecutor_Execute_TransientThenFatal(t *testing.T) {
	executor := NewExecutor(NewProcessErrorClassifier(), fastBackoff(5))
	fatal := errors.New("cache corrupt")
	op := &mockOperation{failUntil: 3, fatalErr: fatal}

	err := executor.Execute(context.Background(), op.execute)
	if !errors.Is(err, fatal) {
		t.Errorf("Expected fatal error, got %v", err)
	}
	if op.invocations != 3 {
		t.Errorf("Expected 3 invocations, got %d", op.invocations)
	}
}

func TestExecutor_Execute_ContextCancellation(t *testing.T) {
	strategy := NewExponentialBackoff(5, WithInitialDelay(time.Hour), WithJitter(0))
	executor := NewExecutor(NewProcessErrorClassifier(), strategy)

	ctx, cancel := context.WithCancel(context.Background())
	executor = executor.WithOnRetry(func(int, error, time.Duration) { cancel() })

	op := &mockOperation{failUntil: 100}
	err := executor.Execute(ctx, op.execute)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if op.invocations != 1 {
		t.Errorf("Expected 1 invocation, got %d", op.invocations)
	}
}

func TestExecutor_Execute_OnRetryCallback(t *testing.T) {
	base := NewExecutor(NewProcessErrorClassifier(), fastBackoff(3))

	var attempts []int
	executor := base.WithOnRetry(func(attempt int, err error, delay time.Duration) {
		attempts = append(attempts, attempt)
	})

	op := &mockOperation{failUntil: 3}
	if err := executor.Execute(context.Background(), op.execute); err != nil {
		t.Fatalf("Expected success, got %v", err)
	}

	if len(attempts) != 2 || attempts[0] != 0 || attempts[1] != 1 {
		t.Errorf("Expected callbacks for attempts [0 1], got %v", attempts)
	}
	if base.onRetry != nil {
		t.Error("WithOnRetry must not modify the original executor")
	}
}
