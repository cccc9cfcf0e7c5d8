package doctor

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/colonyops/beacon/internal/core/hooks"
)

// lookPathFunc is the function used to find executables on PATH.
// Package-level variable to allow test overrides.
var lookPathFunc = exec.LookPath

// HooksCheck verifies that the shell and the program each hook starts can be
// found on $PATH.
type HooksCheck struct {
	hooks []hooks.Hook
}

// NewHooksCheck creates a new hooks check.
func NewHooksCheck(hs []hooks.Hook) *HooksCheck {
	return &HooksCheck{hooks: hs}
}

func (c *HooksCheck) Name() string {
	return "Hooks"
}

func (c *HooksCheck) Run(_ context.Context) Result {
	result := Result{Name: c.Name()}
	if len(c.hooks) == 0 {
		result.Items = append(result.Items, pass("hooks", "none configured"))
		return result
	}

	shell, err := lookPathFunc("sh")
	if err != nil {
		result.Items = append(result.Items, fail("sh", "not found on PATH (required to run hooks)"))
		return result
	}
	result.Items = append(result.Items, pass("sh", shell))

	for _, h := range c.hooks {
		label := h.Name
		if label == "" {
			label = "hook"
		}

		prog := program(h.Sh)
		if prog == "" {
			result.Items = append(result.Items, warn(label, "command is templated, skipped"))
			continue
		}
		if path, err := lookPathFunc(prog); err != nil {
			result.Items = append(result.Items, fail(label, fmt.Sprintf("%s not found on PATH", prog)))
		} else {
			result.Items = append(result.Items, pass(label, path))
		}
	}

	return result
}

// program returns the first word of a shell command, or "" when it cannot
// be known before the command template is rendered.
func program(sh string) string {
	fields := strings.Fields(sh)
	if len(fields) == 0 || strings.Contains(fields[0], "{{") {
		return ""
	}
	return fields[0]
}
