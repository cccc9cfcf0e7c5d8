package executil

import (
	"context"
	"sync"
)

// Recorded is one captured invocation.
type Recorded struct {
	Cmd string
	Env []string
}

// Recorder captures commands instead of running them. Err, when set, is
// returned from every Run.
type Recorder struct {
	mu       sync.Mutex
	commands []Recorded
	Err      error
}

// Run implements Runner.
func (r *Recorder) Run(_ context.Context, cmd string, env []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands = append(r.commands, Recorded{Cmd: cmd, Env: append([]string(nil), env...)})
	return r.Err
}

// Commands returns a copy of the captured invocations.
func (r *Recorder) Commands() []Recorded {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Recorded(nil), r.commands...)
}
