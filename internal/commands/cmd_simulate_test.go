package commands

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/beacon/internal/core/live"
	"github.com/colonyops/beacon/pkg/tuitest"
)

func TestSimulate_lottery_share_converges(t *testing.T) {
	report := Simulate(live.DefaultConfig(), 1000, 42)

	assert.Equal(t, 1000, report.Events)
	assert.InDelta(t, 0.30, report.LotteryFraction, 0.05)
	assert.GreaterOrEqual(t, report.SimulatedTime, live.DefaultConfig().InitialDelay)
	assert.Equal(t, 100, report.Unread, "log capped at default retention")
}

func TestSimulate_is_deterministic_per_seed(t *testing.T) {
	a := Simulate(live.DefaultConfig(), 200, 7)
	b := Simulate(live.DefaultConfig(), 200, 7)

	assert.Equal(t, a.Stats, b.Stats)
	assert.Equal(t, a.SimulatedTime, b.SimulatedTime)
}

func TestWriteReport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeReport(&buf, Simulate(live.DefaultConfig(), 50, 3)))

	out := tuitest.StripANSI(buf.String())
	assert.Contains(t, out, "events          50")
	assert.Contains(t, out, "Lottery tiers")
	assert.Contains(t, out, "jackpot")
}
