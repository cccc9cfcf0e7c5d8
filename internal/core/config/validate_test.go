package config

import (
	"testing"
	"time"

	"github.com/hay-kot/criterio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/beacon/internal/core/alerts"
	"github.com/colonyops/beacon/internal/core/notify"
)

func TestValidateDeep_ValidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AlertRules = alerts.Samples()

	assert.NoError(t, cfg.ValidateDeep(""))
}

func TestValidateDeep_ConfigPathIsDirectory(t *testing.T) {
	cfg := DefaultConfig()

	err := cfg.ValidateDeep(t.TempDir())

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Equal(t, "config_file", fieldErrs[0].Field)
}

func TestValidateDeep_InvalidAddr(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Server.Addr = "localhost"

	err := cfg.ValidateDeep("")

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Equal(t, "server.addr", fieldErrs[0].Field)
}

func TestValidateDeep_ShortDuration(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Toasts.Durations[notify.CategoryInfo] = 100 * time.Millisecond

	err := cfg.ValidateDeep("")

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Equal(t, "toasts.durations.info", fieldErrs[0].Field)
}

func TestValidateDeep_InvalidRule(t *testing.T) {
	cfg := DefaultConfig()
	rule := alerts.Samples()[0]
	rule.Actions[0].Type = "pager"
	cfg.AlertRules = []alerts.Rule{rule}

	err := cfg.ValidateDeep("")

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Equal(t, "alert_rules[0].actions[0].type", fieldErrs[0].Field)
	assert.Contains(t, fieldErrs[0].Err.Error(), "unknown action type")
}

func TestValidateDeep_StructuralErrorFirst(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Toasts.MaxVisible = 0

	err := cfg.ValidateDeep("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_visible")
}

func TestWarnings(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AlertRules = alerts.Samples()
	cfg.Generator.LotteryProbability = 0
	cfg.Server.Addr = "0.0.0.0:8089"
	cfg.Toasts.Durations[notify.CategoryError] = 0

	items := map[string]bool{}
	for _, w := range cfg.Warnings() {
		items[w.Category+"/"+w.Item] = true
	}

	assert.True(t, items["Generator/lottery_probability"])
	assert.True(t, items["Server/addr"])
	assert.True(t, items["Toasts/error"])
	assert.True(t, items["Alert Rules/bonus-abuse"], "disabled sample rule")
}

func TestWarnings_defaults(t *testing.T) {
	cfg := DefaultConfig()

	warnings := cfg.Warnings()
	require.Len(t, warnings, 1)
	assert.Equal(t, "Alert Rules", warnings[0].Category)
}
