// Package process configures child processes so that a timeout or
// cancellation takes down the whole process group, not only the direct child.
package process

import (
	"bytes"
	"os/exec"
	"time"
)

// DefaultWaitDelay bounds how long Wait keeps draining pipes after the child was killed.
const DefaultWaitDelay = 2 * time.Second

// Isolate places cmd in its own process group and makes context cancellation
// kill that group. It must be called before cmd.Start.
func Isolate(cmd *exec.Cmd) {
	if cmd == nil {
		return
	}
	setProcessGroup(cmd)
	cmd.Cancel = func() error {
		return forceKill(cmd)
	}
	cmd.WaitDelay = DefaultWaitDelay
}

// LimitedBuffer keeps at most Max bytes and records whether anything was dropped.
type LimitedBuffer struct {
	Max       int64
	buf       bytes.Buffer
	Truncated bool
}

// Write implements io.Writer. It never reports a short write so the child is not
// interrupted by a full buffer.
func (b *LimitedBuffer) Write(p []byte) (int, error) {
	if b.Max <= 0 {
		return b.buf.Write(p)
	}
	remaining := b.Max - int64(b.buf.Len())
	if remaining <= 0 {
		b.Truncated = len(p) > 0 || b.Truncated
		return len(p), nil
	}
	if int64(len(p)) > remaining {
		b.buf.Write(p[:remaining])
		b.Truncated = true
		return len(p), nil
	}
	return b.buf.Write(p)
}

func (b *LimitedBuffer) String() string {
	return b.buf.String()
}

// TailBuffer keeps the last Max bytes written. A Python traceback is printed
// last, so stderr is captured from the end.
type TailBuffer struct {
	Max       int64
	buf       []byte
	Truncated bool
}

// Write implements io.Writer and, like LimitedBuffer, never reports a short write.
func (b *TailBuffer) Write(p []byte) (int, error) {
	n := len(p)
	if b.Max > 0 && int64(n) > b.Max {
		p = p[int64(n)-b.Max:]
		b.buf = b.buf[:0]
		b.Truncated = true
	}
	b.buf = append(b.buf, p...)
	if b.Max > 0 && int64(len(b.buf)) > b.Max {
		over := int64(len(b.buf)) - b.Max
		b.buf = append(b.buf[:0], b.buf[over:]...)
		b.Truncated = true
	}
	return n, nil
}

func (b *TailBuffer) String() string {
	return string(b.buf)
}
