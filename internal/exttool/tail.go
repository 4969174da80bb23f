package exttool

import (
	"bytes"
	"io"
	"sync"
)

// maxLineBytes bounds a remembered line. Longer lines keep their last bytes.
const maxLineBytes = 4 << 10

// lineTail is an io.Writer that remembers the last max lines written to it.
type lineTail struct {
	max     int
	lines   []string
	partial []byte
}

func newLineTail(max int) *lineTail {
	return &lineTail{max: max}
}

func (t *lineTail) Write(p []byte) (int, error) {
	n := len(p)
	for len(p) > 0 {
		i := bytes.IndexByte(p, '\n')
		if i < 0 {
			t.partial = appendTail(t.partial, p)
			break
		}
		t.partial = appendTail(t.partial, p[:i])
		t.push(string(bytes.TrimSuffix(t.partial, []byte("\r"))))
		t.partial = t.partial[:0]
		p = p[i+1:]
	}
	return n, nil
}

// appendTail appends src to dst, keeping at most the last maxLineBytes bytes.
func appendTail(dst, src []byte) []byte {
	if len(src) >= maxLineBytes {
		return append(dst[:0], src[len(src)-maxLineBytes:]...)
	}
	dst = append(dst, src...)
	if over := len(dst) - maxLineBytes; over > 0 {
		dst = append(dst[:0], dst[over:]...)
	}
	return dst
}

func (t *lineTail) push(line string) {
	if t.max <= 0 {
		return
	}
	if len(t.lines) == t.max {
		copy(t.lines, t.lines[1:])
		t.lines = t.lines[:t.max-1]
	}
	t.lines = append(t.lines, line)
}

// Lines returns the remembered lines, including an unterminated last line.
func (t *lineTail) Lines() []string {
	out := make([]string, 0, len(t.lines)+1)
	out = append(out, t.lines...)
	if len(t.partial) > 0 {
		out = append(out, string(t.partial))
		if t.max > 0 && len(out) > t.max {
			out = out[len(out)-t.max:]
		}
	}
	return out
}

// lockedWriter serializes writes from the stdout and stderr copy goroutines.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
