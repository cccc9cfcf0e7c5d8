package doctor

import (
	"context"
	"fmt"
)

// Probe contacts a running server and returns its unread count.
type Probe func(ctx context.Context) (int, error)

// ServerCheck reports whether a beacon server answers at url. A missing
// server is a warning, not a failure.
type ServerCheck struct {
	url   string
	probe Probe
}

// NewServerCheck creates a new server check.
func NewServerCheck(url string, probe Probe) *ServerCheck {
	return &ServerCheck{url: url, probe: probe}
}

func (c *ServerCheck) Name() string {
	return "Server"
}

func (c *ServerCheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}

	unread, err := c.probe(ctx)
	if err != nil {
		result.Items = append(result.Items, warn(c.url, "not reachable ("+err.Error()+")"))
		return result
	}

	result.Items = append(result.Items, pass(c.url, fmt.Sprintf("reachable, %d unread", unread)))
	return result
}
