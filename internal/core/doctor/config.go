package doctor

import (
	"context"
	"errors"
	"os"

	"github.com/hay-kot/criterio"

	"github.com/colonyops/beacon/internal/core/config"
)

// ConfigCheck reports on the config file, its validation errors and its
// warnings.
type ConfigCheck struct {
	cfg  *config.Config
	path string
}

// NewConfigCheck creates a check for cfg, loaded from path.
func NewConfigCheck(cfg *config.Config, path string) *ConfigCheck {
	return &ConfigCheck{cfg: cfg, path: path}
}

func (c *ConfigCheck) Name() string {
	return "Configuration"
}

func (c *ConfigCheck) Run(_ context.Context) Result {
	result := Result{Name: c.Name()}

	switch _, err := os.Stat(c.path); {
	case c.path == "":
		result.Items = append(result.Items, warn("config file", "none given, using defaults"))
	case errors.Is(err, os.ErrNotExist):
		result.Items = append(result.Items, warn("config file", c.path+" not found, using defaults"))
	case err != nil:
		result.Items = append(result.Items, fail("config file", err.Error()))
	default:
		result.Items = append(result.Items, pass("config file", c.path))
	}

	if err := c.cfg.ValidateDeep(c.path); err != nil {
		var fieldErrs criterio.FieldErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				result.Items = append(result.Items, fail(fe.Field, fe.Err.Error()))
			}
		} else {
			result.Items = append(result.Items, fail("validation", err.Error()))
		}
	} else {
		result.Items = append(result.Items, pass("validation", "no errors"))
	}

	for _, w := range c.cfg.Warnings() {
		label := w.Category
		if w.Item != "" {
			label += " " + w.Item
		}
		result.Items = append(result.Items, warn(label, w.Message))
	}

	return result
}
