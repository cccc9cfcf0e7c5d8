// Package logging holds the shared zerolog conventions: component loggers
// keyed by "cmp" and request-scoped ids carried in context.
package logging

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Component creates a new logger with a component identifier.
func Component(name string) zerolog.Logger {
	return log.With().Str("cmp", name).Logger()
}

// Scoped returns a component logger bound to ctx so that ContextHook can
// pick up its ids.
func Scoped(ctx context.Context, name string) zerolog.Logger {
	return log.With().Str("cmp", name).Ctx(ctx).Logger().Hook(ContextHook{})
}
