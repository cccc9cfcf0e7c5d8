package logutils

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_json_to_file(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "beacon.log")

	l, closer, err := New("info", path, "")
	require.NoError(t, err)

	l.Debug().Msg("hidden")
	l.Info().Str("cmp", "test").Msg("shown")
	closer()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "shown", entry["message"])
	assert.Contains(t, entry, "time")
}

func TestNew_console(t *testing.T) {
	path := filepath.Join(t.TempDir(), "beacon.log")

	l, closer, err := New("debug", path, FormatConsole)
	require.NoError(t, err)
	l.Info().Msg("hello")
	closer()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
	assert.NotContains(t, string(data), `"message"`)
}

func TestNew_errors(t *testing.T) {
	_, _, err := New("loud", "", "")
	assert.Error(t, err)

	_, _, err = New("info", "", "xml")
	assert.Error(t, err)
}
