package beacon

import (
	"context"
	"io"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/beacon/internal/core/config"
	"github.com/colonyops/beacon/internal/core/hooks"
	"github.com/colonyops/beacon/internal/server/feed"
	"github.com/colonyops/beacon/pkg/clock"
	"github.com/colonyops/beacon/pkg/executil"
)

func newTestApp(t *testing.T, mutate func(*config.Config)) (*App, *clock.Fake, *executil.Recorder) {
	t.Helper()

	cfg := config.DefaultConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	c := clock.NewFake(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))
	rec := &executil.Recorder{}

	app := New(&cfg, WithClock(c), WithRand(rand.New(rand.NewPCG(1, 2))), WithRunner(rec))
	app.Start(context.Background())
	t.Cleanup(app.Close)
	return app, c, rec
}

func TestApp_autostart_generator_delivers_after_initial_delay(t *testing.T) {
	app, c, _ := newTestApp(t, nil)

	require.True(t, app.Generator.Running())
	c.Advance(app.Config.Generator.InitialDelay)

	assert.Equal(t, 1, app.Notes.Len())
	assert.Equal(t, 1, app.Toasts.Len())
}

func TestApp_autostart_disabled(t *testing.T) {
	off := false
	app, c, _ := newTestApp(t, func(cfg *config.Config) { cfg.Generator.AutoStart = &off })

	c.Advance(time.Hour)

	assert.False(t, app.Generator.Running())
	assert.Zero(t, app.Notes.Len())
}

func TestApp_store_limits_come_from_config(t *testing.T) {
	app, _, _ := newTestApp(t, func(cfg *config.Config) {
		cfg.Toasts.MaxVisible = 2
		cfg.Notifications.MaxRetained = 3
	})

	for range 5 {
		app.Generator.Emit()
	}

	assert.Equal(t, 2, app.Toasts.Len())
	assert.Equal(t, 3, app.Notes.Len())
}

func TestApp_hooks_run_for_generated_events(t *testing.T) {
	app, _, rec := newTestApp(t, func(cfg *config.Config) {
		cfg.Hooks = []hooks.Hook{{Name: "log", Sh: "echo {{ .Title | shq }}"}}
	})

	ev := app.Generator.Emit()

	require.Eventually(t, func() bool { return len(rec.Commands()) == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Contains(t, rec.Commands()[0].Cmd, ev.Title)
}

func TestApp_Snapshot(t *testing.T) {
	app, _, _ := newTestApp(t, nil)
	app.Generator.Emit()
	app.Generator.Emit()

	snap, ok := app.Snapshot().(feed.Snapshot)
	require.True(t, ok)
	assert.Len(t, snap.Notifications, 2)
	assert.Equal(t, 2, snap.Unread)
	assert.Len(t, snap.Toasts, 2)
}

func TestApp_metrics_follow_bus(t *testing.T) {
	app, _, _ := newTestApp(t, nil)
	app.Generator.Emit()

	srv := httptest.NewServer(app.Server().Handler())
	t.Cleanup(srv.Close)

	require.Eventually(t, func() bool {
		resp, err := http.Get(srv.URL + "/metrics")
		if err != nil {
			return false
		}
		defer func() { _ = resp.Body.Close() }()
		body, err := io.ReadAll(resp.Body)
		return err == nil && strings.Contains(string(body), "beacon_events_generated_total")
	}, 2*time.Second, 20*time.Millisecond)
}

func TestApp_Close_without_Start(t *testing.T) {
	cfg := config.DefaultConfig()
	app := New(&cfg)
	assert.NotPanics(t, app.Close)
}
