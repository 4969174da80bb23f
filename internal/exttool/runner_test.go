package exttool

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/asdbload/internal/logging"
	"github.com/vvka-141/asdbload/pkg/asdb"
)

func newTestRunner(out *bytes.Buffer) *Runner {
	return NewRunnerTo(out, logging.NewNullLogger())
}

func TestRunner_Success(t *testing.T) {
	var out bytes.Buffer
	err := newTestRunner(&out).Run(context.Background(), helperCommand(t, "ok"), Invocation{})
	require.NoError(t, err)
	assert.Empty(t, out.String(), "stdout is discarded unless forwarded")
}

func TestRunner_NonZeroExit(t *testing.T) {
	var out bytes.Buffer
	err := newTestRunner(&out).Run(context.Background(), helperCommand(t, "exit", "3"), Invocation{})

	var procErr *asdb.ProcessError
	require.True(t, errors.As(err, &procErr), "got %v", err)
	assert.Equal(t, 3, procErr.ExitCode)
	assert.False(t, procErr.TimedOut)
	assert.Equal(t, []string{"failing on purpose"}, procErr.StderrTail)
	assert.Contains(t, procErr.Error(), "exited with status 3")
}

func TestRunner_StderrTailKeepsLastLines(t *testing.T) {
	var out bytes.Buffer
	err := newTestRunner(&out).Run(context.Background(), helperCommand(t, "stderr", "30"), Invocation{})

	var procErr *asdb.ProcessError
	require.True(t, errors.As(err, &procErr))
	require.Len(t, procErr.StderrTail, asdb.MaxStderrTailLines)
	assert.Equal(t, "line 11", procErr.StderrTail[0])
	assert.Equal(t, "line 30", procErr.StderrTail[len(procErr.StderrTail)-1])
}

func TestRunner_ForwardsOutput(t *testing.T) {
	var out bytes.Buffer
	err := newTestRunner(&out).Run(context.Background(), helperCommand(t, "chatty"), Invocation{Forward: true})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "to stdout")
	assert.Contains(t, out.String(), "to stderr")
}

func TestRunner_Timeout(t *testing.T) {
	var out bytes.Buffer
	start := time.Now()
	err := newTestRunner(&out).Run(context.Background(), helperCommand(t, "sleep"), Invocation{Timeout: 200 * time.Millisecond})

	var procErr *asdb.ProcessError
	require.True(t, errors.As(err, &procErr), "got %v", err)
	assert.True(t, procErr.TimedOut)
	assert.Equal(t, -1, procErr.ExitCode)
	assert.Less(t, time.Since(start), 30*time.Second)
	assert.False(t, errors.Is(err, context.Canceled))
}

func TestRunner_ParentCancellation(t *testing.T) {
	var out bytes.Buffer
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(200 * time.Millisecond)
		cancel()
	}()

	err := newTestRunner(&out).Run(ctx, helperCommand(t, "sleep"), Invocation{Timeout: time.Hour})

	var procErr *asdb.ProcessError
	require.True(t, errors.As(err, &procErr), "got %v", err)
	assert.False(t, procErr.TimedOut)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunner_MissingExecutable(t *testing.T) {
	var out bytes.Buffer
	cmd := Command{Path: filepath.Join(t.TempDir(), "no-such-tool")}
	err := newTestRunner(&out).Run(context.Background(), cmd, Invocation{})

	var procErr *asdb.ProcessError
	require.True(t, errors.As(err, &procErr))
	assert.Equal(t, -1, procErr.ExitCode)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRunner_UnsetCommand(t *testing.T) {
	var out bytes.Buffer
	err := newTestRunner(&out).Run(context.Background(), Command{}, Invocation{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no command configured")
}

func TestNewRunnerTo_NilArgs(t *testing.T) {
	assert.Panics(t, func() { NewRunnerTo(nil, logging.NewNullLogger()) })
	assert.Panics(t, func() { NewRunnerTo(&bytes.Buffer{}, nil) })
}

func TestLineTail(t *testing.T) {
	tests := []struct {
		name   string
		max    int
		writes []string
		want   []string
	}{
		{"split writes", 5, []string{"ab", "c\nde", "f\n"}, []string{"abc", "def"}},
		{"keeps last", 2, []string{"1\n2\n3\n"}, []string{"2", "3"}},
		{"partial last line", 2, []string{"1\n2\n3"}, []string{"2", "3"}},
		{"crlf", 5, []string{"a\r\nb\r\n"}, []string{"a", "b"}},
		{"empty", 5, nil, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tail := newLineTail(tt.max)
			for _, w := range tt.writes {
				fmt.Fprint(tail, w)
			}
			assert.Equal(t, tt.want, tail.Lines())
		})
	}
}

func TestLineTail_BoundsLongLines(t *testing.T) {
	tail := newLineTail(3)
	for i := 0; i < 100; i++ {
		fmt.Fprint(tail, strings.Repeat("x", 1000))
	}
	fmt.Fprint(tail, "end")

	lines := tail.Lines()
	require.Len(t, lines, 1)
	assert.Len(t, lines[0], maxLineBytes)
	assert.True(t, strings.HasSuffix(lines[0], "xend"))
	assert.LessOrEqual(t, cap(tail.partial), 2*maxLineBytes+1000)

	fmt.Fprint(tail, "\nshort\n")
	lines = tail.Lines()
	require.Len(t, lines, 2)
	assert.Len(t, lines[0], maxLineBytes)
	assert.Equal(t, "short", lines[1])
}

func TestCommand_String(t *testing.T) {
	cmd := Command{Path: "asdb-taxa", Args: []string{"init"}}
	assert.Equal(t, "asdb-taxa init", cmd.String())
	assert.True(t, strings.HasPrefix(Command{Path: "x"}.String(), "x"))
}
