package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/colonyops/beacon/internal/beacon"
	"github.com/colonyops/beacon/internal/core/logging"
	"github.com/colonyops/beacon/internal/diag"
)

// startDiag starts the diagnostics server when --diag-port is set. The
// returned function shuts it down.
func startDiag(ctx context.Context, flags *Flags, app *beacon.App) (func(), error) {
	if flags.DiagPort <= 0 {
		return func() {}, nil
	}

	srv := diag.New(flags.DiagPort, app.Metrics.Handler(), logging.Component("diag"))
	if err := srv.Start(ctx); err != nil {
		return nil, fmt.Errorf("start diagnostics server: %w", err)
	}
	log.Info().
		Str("url", fmt.Sprintf("http://%s/debug/pprof/", srv.Addr())).
		Msg("diagnostics endpoint available")

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("failed to shutdown diagnostics server")
		}
	}, nil
}
