// Package executil runs shell commands for notification hooks.
package executil

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

const maxStderrLen = 500

// cappedBuffer keeps the first max bytes written and discards the rest.
type cappedBuffer struct {
	buf bytes.Buffer
	max int
}

func (w *cappedBuffer) Write(p []byte) (int, error) {
	if room := w.max - w.buf.Len(); room > 0 {
		if len(p) > room {
			w.buf.Write(p[:room])
		} else {
			w.buf.Write(p)
		}
	}
	return len(p), nil
}

// Runner executes a shell command line with extra environment variables.
type Runner interface {
	Run(ctx context.Context, cmd string, env []string) error
}

// Shell runs commands with "sh -c". Stdout is discarded. On failure the
// first 500 bytes of stderr become the error message and the underlying
// *exec.ExitError stays reachable through errors.As.
type Shell struct {
	Dir string
}

// Run implements Runner.
func (s Shell) Run(ctx context.Context, cmd string, env []string) error {
	c := exec.CommandContext(ctx, "sh", "-c", cmd)
	c.Dir = s.Dir
	if len(env) > 0 {
		c.Env = append(os.Environ(), env...)
	}

	stderr := &cappedBuffer{max: maxStderrLen}
	c.Stdout = io.Discard
	c.Stderr = stderr

	if err := c.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.buf.String()); msg != "" {
			return fmt.Errorf("%s: %w", msg, err)
		}
		return err
	}
	return nil
}
