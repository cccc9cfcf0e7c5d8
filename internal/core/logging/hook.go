package logging

import (
	"context"

	"github.com/rs/zerolog"
)

// ContextHook copies client_id and request_id from the event context.
type ContextHook struct{}

// Run adds contextual fields to the zerolog event.
func (h ContextHook) Run(e *zerolog.Event, level zerolog.Level, msg string) {
	ctx := e.GetCtx()
	if ctx == nil || ctx == context.Background() {
		return
	}

	if id := ClientID(ctx); id != "" {
		e.Str("client_id", id)
	}
	if id := RequestID(ctx); id != "" {
		e.Str("request_id", id)
	}
}
