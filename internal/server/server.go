// Package server exposes the notification log, toast stack, generator and
// alert rules over a JSON HTTP API with a websocket live feed.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/colonyops/beacon/internal/core/alerts"
	"github.com/colonyops/beacon/internal/core/config"
	"github.com/colonyops/beacon/internal/core/live"
	"github.com/colonyops/beacon/internal/core/notify"
	"github.com/colonyops/beacon/internal/core/toast"
	"github.com/colonyops/beacon/internal/metrics"
	"github.com/colonyops/beacon/internal/server/feed"
)

// Deps are the components served by the API. Metrics and Feed are optional.
type Deps struct {
	Notes     *notify.Store
	Toasts    *toast.Store
	Generator *live.Generator
	Rules     []alerts.Rule
	Metrics   *metrics.Metrics
	Feed      *feed.Hub
}

// Server is the HTTP API server.
type Server struct {
	cfg    config.ServerConfig
	deps   Deps
	logger zerolog.Logger

	engine     *gin.Engine
	httpServer *http.Server
	listener   net.Listener
}

// New builds the server and its routes.
func New(cfg config.ServerConfig, deps Deps, logger zerolog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		cfg:    cfg,
		deps:   deps,
		logger: logger,
		engine: gin.New(),
	}
	s.routes()
	s.httpServer = &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *Server) routes() {
	r := s.engine
	r.Use(gin.Recovery(), requestID(), accessLog())
	if s.deps.Metrics != nil {
		r.Use(s.deps.Metrics.Middleware())
		r.GET("/metrics", gin.WrapH(s.deps.Metrics.Handler()))
	}
	r.GET("/health", s.health)
	if s.deps.Feed != nil {
		r.GET("/ws", s.deps.Feed.Handler(s.cfg.AllowedOrigins))
	}

	api := r.Group("/api")

	notifications := api.Group("/notifications")
	notifications.GET("", s.listNotifications)
	notifications.GET("/unread-count", s.unreadCount)
	notifications.PUT("/read-all", s.markAllRead)
	notifications.PUT("/:id/read", s.markRead)
	notifications.DELETE("", s.clearNotifications)

	toasts := api.Group("/toasts")
	toasts.GET("", s.listToasts)
	toasts.POST("", s.createToast)
	toasts.DELETE("", s.clearToasts)
	toasts.DELETE("/:id", s.dismissToast)

	generator := api.Group("/generator")
	generator.POST("/emit", s.emitEvent)
	generator.POST("/start", s.startGenerator)
	generator.POST("/stop", s.stopGenerator)
	generator.GET("/stats", s.generatorStats)

	api.GET("/rules", s.listRules)
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Addr returns the bound address, or "" before Serve.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Listen binds the configured address.
func (s *Server) Listen(ctx context.Context) error {
	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
	}
	s.listener = listener
	return nil
}

// Serve serves until ctx is cancelled, then shuts down gracefully. Listen
// is called first when it has not been.
func (s *Server) Serve(ctx context.Context) error {
	if s.listener == nil {
		if err := s.Listen(ctx); err != nil {
			return err
		}
	}
	s.logger.Info().Str("addr", s.Addr()).Msg("api server listening")

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.Serve(s.listener)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.logger.Info().Msg("shutting down api server")
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
