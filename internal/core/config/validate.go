package config

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/hay-kot/criterio"

	"github.com/colonyops/beacon/internal/core/alerts"
	"github.com/colonyops/beacon/internal/core/hooks"
)

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Category string `json:"category"`
	Item     string `json:"item,omitempty"`
	Message  string `json:"message"`
}

// ValidateDeep performs comprehensive validation of the configuration including
// alert rules, the listen address, and file accessibility. The configPath
// argument specifies the config file location to validate (empty string skips
// the config file check). This calls Validate() first for basic structural
// validation.
func (c *Config) ValidateDeep(configPath string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	return criterio.ValidateStruct(
		validateConfigFile(configPath),
		criterio.Run("server.addr", c.Server.Addr, validListenAddr),
		c.validateDurations(),
		alerts.ValidateAll(c.AlertRules),
		hooks.Validate(c.Hooks),
	)
}

// Warnings returns non-fatal configuration issues.
func (c *Config) Warnings() []ValidationWarning {
	var warnings []ValidationWarning

	g := c.Generator
	if g.LotteryProbability == 0 {
		warnings = append(warnings, ValidationWarning{
			Category: "Generator",
			Item:     "lottery_probability",
			Message:  "lottery events are disabled",
		})
	}
	if g.MinInterval == g.MaxInterval {
		warnings = append(warnings, ValidationWarning{
			Category: "Generator",
			Item:     "interval",
			Message:  "min_interval equals max_interval; events fire on a fixed period",
		})
	}

	host, _, err := net.SplitHostPort(c.Server.Addr)
	if err == nil && (host == "" || host == "0.0.0.0" || host == "::") {
		warnings = append(warnings, ValidationWarning{
			Category: "Server",
			Item:     "addr",
			Message:  "server listens on all interfaces without authentication",
		})
	}

	if len(c.AlertRules) == 0 {
		warnings = append(warnings, ValidationWarning{
			Category: "Alert Rules",
			Message:  "no alert rules configured; built-in samples are shown",
		})
	}
	for _, r := range c.AlertRules {
		if !r.IsEnabled() {
			warnings = append(warnings, ValidationWarning{
				Category: "Alert Rules",
				Item:     r.ID,
				Message:  "rule is disabled",
			})
		}
	}

	for cat, d := range c.Toasts.Durations {
		if d <= 0 {
			warnings = append(warnings, ValidationWarning{
				Category: "Toasts",
				Item:     string(cat),
				Message:  "toasts of this category never expire",
			})
		}
	}

	return warnings
}

func (c *Config) validateDurations() error {
	var errs criterio.FieldErrorsBuilder
	for cat, d := range c.Toasts.Durations {
		if d > 0 && d < 500*time.Millisecond {
			errs = errs.Append("toasts.durations."+string(cat), fmt.Errorf("%s is too short to read", d))
		}
	}
	return errs.ToError()
}

func validateConfigFile(configPath string) error {
	if configPath == "" {
		return nil
	}

	info, err := os.Stat(configPath)
	if os.IsNotExist(err) {
		return nil // not found is fine, using defaults
	}
	if err != nil {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("cannot access: %w", err))
	}
	if info.IsDir() {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("%s is a directory, not a file", configPath))
	}
	return nil
}

func validListenAddr(addr string) error {
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return fmt.Errorf("invalid listen address: %w", err)
	}
	return nil
}
