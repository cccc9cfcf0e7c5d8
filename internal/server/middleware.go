package server

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/colonyops/beacon/internal/core/logging"
	"github.com/colonyops/beacon/pkg/randid"
)

const requestIDHeader = "X-Request-ID"

// requestID tags each request with an id taken from X-Request-ID or freshly
// generated, and echoes it back.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" || len(id) > 64 {
			id = randid.Generate(12)
		}
		c.Header(requestIDHeader, id)
		c.Request = c.Request.WithContext(logging.WithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

// accessLog writes one debug line per request.
func accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger := logging.Scoped(c.Request.Context(), "http")
		evt := logger.Debug()
		if c.Writer.Status() >= 500 {
			evt = logger.Error()
		}
		evt.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	}
}
