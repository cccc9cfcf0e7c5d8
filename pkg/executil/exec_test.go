package executil

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShell_Run_success_with_env(t *testing.T) {
	dir := t.TempDir()
	s := Shell{Dir: dir}

	err := s.Run(context.Background(), `printf '%s' "$BEACON_TITLE" > out.txt`, []string{"BEACON_TITLE=Big Win!"})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "out.txt"))
	require.NoError(t, err)
	assert.Equal(t, "Big Win!", string(data))
}

func TestShell_Run_stderr_is_capped(t *testing.T) {
	long := strings.Repeat("A", maxStderrLen*2)
	cmd := fmt.Sprintf("printf '%%s' '%s' >&2; exit 1", long)

	err := Shell{}.Run(context.Background(), cmd, nil)
	require.Error(t, err)

	msg := err.Error()
	assert.Equal(t, strings.Repeat("A", maxStderrLen), msg[:maxStderrLen])
	assert.LessOrEqual(t, len(msg), maxStderrLen+20)
}

func TestShell_Run_preserves_exit_error(t *testing.T) {
	err := Shell{}.Run(context.Background(), "exit 3", nil)

	var exitErr *exec.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 3, exitErr.ExitCode())
}

func TestShell_Run_context_cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Error(t, Shell{}.Run(ctx, "sleep 5", nil))
}

func TestRecorder(t *testing.T) {
	r := &Recorder{}
	require.NoError(t, r.Run(context.Background(), "echo hi", []string{"A=1"}))

	r.Err = errors.New("boom")
	assert.EqualError(t, r.Run(context.Background(), "false", nil), "boom")

	cmds := r.Commands()
	require.Len(t, cmds, 2)
	assert.Equal(t, "echo hi", cmds[0].Cmd)
	assert.Equal(t, []string{"A=1"}, cmds[0].Env)
}
