package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/beacon/internal/beacon"
)

func TestNewRoot_registers_commands(t *testing.T) {
	root := NewRoot(&Flags{}, &beacon.App{})

	names := make([]string, 0, len(root.Commands))
	for _, c := range root.Commands {
		names = append(names, c.Name)
	}

	assert.ElementsMatch(t, []string{
		"tui", "tail", "serve", "simulate", "push", "status", "rules", "config", "doctor",
	}, names)
	require.NotNil(t, root.Action, "dashboard is the default action")
}

func TestGlobalFlags_bind_to_flags(t *testing.T) {
	flags := &Flags{}
	names := make(map[string]bool)
	for _, f := range GlobalFlags(flags) {
		for _, n := range f.Names() {
			names[n] = true
		}
	}

	for _, want := range []string{"log-level", "log-file", "log-format", "config", "c", "diag-port"} {
		assert.True(t, names[want], want)
	}
}
