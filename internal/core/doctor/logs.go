package doctor

import (
	"context"
	"os"
	"path/filepath"
)

// LogCheck verifies that the log file directory exists or can be created
// and is writable.
type LogCheck struct {
	file string
}

// NewLogCheck creates a check for the log file path.
func NewLogCheck(file string) *LogCheck {
	return &LogCheck{file: file}
}

func (c *LogCheck) Name() string {
	return "Logs"
}

func (c *LogCheck) Run(_ context.Context) Result {
	result := Result{Name: c.Name()}
	dir := filepath.Dir(c.file)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		result.Items = append(result.Items, fail("log directory", err.Error()))
		return result
	}

	f, err := os.CreateTemp(dir, ".beacon-doctor-*")
	if err != nil {
		result.Items = append(result.Items, fail("log directory", "not writable: "+err.Error()))
		return result
	}
	_ = f.Close()
	_ = os.Remove(f.Name())

	result.Items = append(result.Items, pass("log directory", dir))
	return result
}
