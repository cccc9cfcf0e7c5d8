// Package config provides configuration loading and management for beacon.
package config

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/colonyops/beacon/internal/core/alerts"
	"github.com/colonyops/beacon/internal/core/hooks"
	"github.com/colonyops/beacon/internal/core/live"
	"github.com/colonyops/beacon/internal/core/notify"
	"github.com/colonyops/beacon/internal/core/styles"
	"github.com/colonyops/beacon/internal/core/toast"
)

// Actions a keybinding may invoke.
const (
	ActionNotifications = "notifications"
	ActionUp            = "up"
	ActionDown          = "down"
	ActionMarkRead      = "mark_read"
	ActionMarkAllRead   = "mark_all_read"
	ActionClearLog      = "clear_log"
	ActionDismiss       = "dismiss"
	ActionDismissAll    = "dismiss_all"
	ActionEmit          = "emit"
	ActionTrigger       = "trigger"
	ActionRules         = "rules"
	ActionGenerator     = "generator"
	ActionClose         = "close"
	ActionQuit          = "quit"
)

var validActions = []string{
	ActionNotifications, ActionUp, ActionDown, ActionMarkRead, ActionMarkAllRead,
	ActionClearLog, ActionDismiss, ActionDismissAll, ActionEmit, ActionTrigger,
	ActionRules, ActionGenerator, ActionClose, ActionQuit,
}

var defaultKeybindings = map[string]Keybinding{
	"n":     {Action: ActionNotifications, Help: "notifications"},
	"j":     {Action: ActionDown, Help: "down"},
	"k":     {Action: ActionUp, Help: "up"},
	"enter": {Action: ActionMarkRead, Help: "mark read"},
	"m":     {Action: ActionMarkAllRead, Help: "mark all read"},
	"D":     {Action: ActionClearLog, Help: "clear log"},
	"x":     {Action: ActionDismiss, Help: "dismiss toast"},
	"X":     {Action: ActionDismissAll, Help: "dismiss all"},
	"e":     {Action: ActionEmit, Help: "emit event"},
	"a":     {Action: ActionTrigger, Help: "toast action"},
	"r":     {Action: ActionRules, Help: "alert rules"},
	"g":     {Action: ActionGenerator, Help: "start/stop"},
	"esc":   {Action: ActionClose, Help: "close"},
	"q":     {Action: ActionQuit, Help: "quit"},
}

// Config holds the application configuration.
type Config struct {
	Toasts        ToastsConfig          `yaml:"toasts"`
	Notifications NotificationsConfig   `yaml:"notifications"`
	Generator     GeneratorConfig       `yaml:"generator"`
	Server        ServerConfig          `yaml:"server"`
	TUI           TUIConfig             `yaml:"tui"`
	Keybindings   map[string]Keybinding `yaml:"keybindings"`
	AlertRules    []alerts.Rule         `yaml:"alert_rules"`
	// AlertRuleFiles are doublestar globs, relative to the config file, of
	// YAML files each holding a list of alert rules.
	AlertRuleFiles []string     `yaml:"alert_rule_files"`
	Hooks          []hooks.Hook `yaml:"hooks"`
}

// ToastsConfig controls the toast stack.
type ToastsConfig struct {
	MaxVisible int                               `yaml:"max_visible"`
	Durations  map[notify.Category]time.Duration `yaml:"durations"`
}

// NotificationsConfig controls the notification log.
type NotificationsConfig struct {
	MaxRetained int `yaml:"max_retained"`
}

// GeneratorConfig controls the live event generator.
type GeneratorConfig struct {
	AutoStart          *bool           `yaml:"auto_start"` // nil = true
	InitialDelay       time.Duration   `yaml:"initial_delay"`
	MinInterval        time.Duration   `yaml:"min_interval"`
	MaxInterval        time.Duration   `yaml:"max_interval"`
	LotteryProbability float64         `yaml:"lottery_probability"`
	MinPrize           float64         `yaml:"min_prize"`
	MaxPrize           float64         `yaml:"max_prize"`
	Thresholds         live.Thresholds `yaml:"thresholds"`
}

// ServerConfig controls the HTTP API and websocket feed.
type ServerConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	FeedBuffer     int      `yaml:"feed_buffer"`
}

// TUIConfig controls the terminal dashboard.
type TUIConfig struct {
	Theme       string `yaml:"theme"`
	ToastWidth  int    `yaml:"toast_width"`
	ShowHelp    bool   `yaml:"show_help"`
	MaxOnScreen int    `yaml:"max_on_screen"`
}

// Keybinding maps a key to a dashboard action.
type Keybinding struct {
	Action string `yaml:"action"`
	Help   string `yaml:"help"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	gen := live.DefaultConfig()
	return Config{
		Toasts: ToastsConfig{
			MaxVisible: toast.DefaultMaxVisible,
			Durations:  maps.Clone(toast.DefaultDurations),
		},
		Notifications: NotificationsConfig{
			MaxRetained: notify.DefaultCapacity,
		},
		Generator: GeneratorConfig{
			InitialDelay:       gen.InitialDelay,
			MinInterval:        gen.MinInterval,
			MaxInterval:        gen.MaxInterval,
			LotteryProbability: gen.LotteryProbability,
			MinPrize:           gen.MinPrize,
			MaxPrize:           gen.MaxPrize,
			Thresholds:         gen.Thresholds,
		},
		Server: ServerConfig{
			Addr:       "127.0.0.1:8089",
			FeedBuffer: 64,
		},
		TUI: TUIConfig{
			Theme:       styles.DefaultTheme,
			ToastWidth:  44,
			ShowHelp:    true,
			MaxOnScreen: 5,
		},
		Keybindings: maps.Clone(defaultKeybindings),
	}
}

// Load reads configuration from configPath. A missing file yields defaults.
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()
	// Keybindings are merged below rather than replaced by Unmarshal.
	cfg.Keybindings = nil

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	if len(cfg.AlertRuleFiles) > 0 {
		rules, err := loadRuleFiles(filepath.Dir(configPath), cfg.AlertRuleFiles)
		if err != nil {
			return nil, err
		}
		cfg.AlertRules = append(cfg.AlertRules, rules...)
	}

	cfg.Keybindings = mergeKeybindings(defaultKeybindings, cfg.Keybindings)
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()

	if c.Toasts.MaxVisible == 0 {
		c.Toasts.MaxVisible = defaults.Toasts.MaxVisible
	}
	if c.Toasts.Durations == nil {
		c.Toasts.Durations = make(map[notify.Category]time.Duration)
	}
	for cat, d := range defaults.Toasts.Durations {
		if _, ok := c.Toasts.Durations[cat]; !ok {
			c.Toasts.Durations[cat] = d
		}
	}
	if c.Notifications.MaxRetained == 0 {
		c.Notifications.MaxRetained = defaults.Notifications.MaxRetained
	}

	g, dg := &c.Generator, defaults.Generator
	if g.MinInterval == 0 && g.MaxInterval == 0 {
		g.MinInterval, g.MaxInterval = dg.MinInterval, dg.MaxInterval
	}
	if g.MinPrize == 0 && g.MaxPrize == 0 {
		g.MinPrize, g.MaxPrize = dg.MinPrize, dg.MaxPrize
	}
	if g.Thresholds == (live.Thresholds{}) {
		g.Thresholds = dg.Thresholds
	}

	if c.Server.Addr == "" {
		c.Server.Addr = defaults.Server.Addr
	}
	if c.Server.FeedBuffer == 0 {
		c.Server.FeedBuffer = defaults.Server.FeedBuffer
	}
	if c.TUI.Theme == "" {
		c.TUI.Theme = defaults.TUI.Theme
	}
	if c.TUI.ToastWidth == 0 {
		c.TUI.ToastWidth = defaults.TUI.ToastWidth
	}
	if c.TUI.MaxOnScreen == 0 {
		c.TUI.MaxOnScreen = defaults.TUI.MaxOnScreen
	}
}

// mergeKeybindings merges user keybindings into defaults.
// User keybindings override defaults for the same key.
func mergeKeybindings(defaults, user map[string]Keybinding) map[string]Keybinding {
	result := make(map[string]Keybinding, len(defaults)+len(user))
	for k, v := range defaults {
		result[k] = v
	}
	for k, v := range user {
		result[k] = v
	}
	return result
}

// Validate checks that the configuration is structurally valid.
func (c *Config) Validate() error {
	if c.Toasts.MaxVisible < 1 {
		return fmt.Errorf("toasts.max_visible must be at least 1")
	}
	for cat := range c.Toasts.Durations {
		if !cat.Valid() {
			return fmt.Errorf("toasts.durations has unknown category %q", cat)
		}
	}
	if c.Notifications.MaxRetained < 1 {
		return fmt.Errorf("notifications.max_retained must be at least 1")
	}

	g := c.Generator
	if g.InitialDelay < 0 {
		return fmt.Errorf("generator.initial_delay cannot be negative")
	}
	if g.MinInterval <= 0 {
		return fmt.Errorf("generator.min_interval must be positive")
	}
	if g.MaxInterval < g.MinInterval {
		return fmt.Errorf("generator.max_interval must be >= min_interval")
	}
	if g.LotteryProbability < 0 || g.LotteryProbability > 1 {
		return fmt.Errorf("generator.lottery_probability must be within [0, 1]")
	}
	if g.MinPrize < 0 || g.MaxPrize < g.MinPrize {
		return fmt.Errorf("generator prize range [%v, %v] is invalid", g.MinPrize, g.MaxPrize)
	}
	th := g.Thresholds
	if th.Lucky > th.Big || th.Big > th.Jackpot {
		return fmt.Errorf("generator.thresholds must satisfy lucky <= big <= jackpot")
	}

	if c.Server.FeedBuffer < 1 {
		return fmt.Errorf("server.feed_buffer must be at least 1")
	}

	if _, ok := styles.GetPalette(c.TUI.Theme); !ok {
		return fmt.Errorf("tui.theme %q is unknown (available: %s)", c.TUI.Theme, strings.Join(styles.ThemeNames(), ", "))
	}

	for key, kb := range c.Keybindings {
		if kb.Action == "" {
			return fmt.Errorf("keybinding %q must have an action", key)
		}
		if !isValidAction(kb.Action) {
			return fmt.Errorf("keybinding %q has invalid action %q", key, kb.Action)
		}
	}

	return nil
}

// AutoStartEnabled reports whether the generator starts with the app.
func (g GeneratorConfig) AutoStartEnabled() bool {
	return g.AutoStart == nil || *g.AutoStart
}

// Live converts the section to generator settings.
func (g GeneratorConfig) Live() live.Config {
	return live.Config{
		InitialDelay:       g.InitialDelay,
		MinInterval:        g.MinInterval,
		MaxInterval:        g.MaxInterval,
		LotteryProbability: g.LotteryProbability,
		MinPrize:           g.MinPrize,
		MaxPrize:           g.MaxPrize,
		Thresholds:         g.Thresholds,
	}
}

// Rules returns the configured alert rules, or the built-in samples when none
// are configured.
func (c *Config) Rules() []alerts.Rule {
	if len(c.AlertRules) == 0 {
		return alerts.Samples()
	}
	return c.AlertRules
}

func isValidAction(action string) bool {
	return slices.Contains(validActions, action)
}

// loadRuleFiles expands patterns relative to baseDir and decodes each match
// as a list of rules. Matches are read in lexical order.
func loadRuleFiles(baseDir string, patterns []string) ([]alerts.Rule, error) {
	var rules []alerts.Rule
	for _, pattern := range patterns {
		if !filepath.IsAbs(pattern) {
			pattern = filepath.Join(baseDir, pattern)
		}

		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("alert_rule_files %q: %w", pattern, err)
		}
		slices.Sort(matches)

		for _, path := range matches {
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("read rule file: %w", err)
			}
			var fileRules []alerts.Rule
			if err := yaml.Unmarshal(data, &fileRules); err != nil {
				return nil, fmt.Errorf("parse rule file %s: %w", path, err)
			}
			rules = append(rules, fileRules...)
		}
	}
	return rules, nil
}
