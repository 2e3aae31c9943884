// Package middleware contains the Gin middleware used by the admin HTTP
// listener: a correlation-id injector, structured access logging, and a
// panic-to-JSON recovery handler. The listener is loopback-only ops surface,
// so the stack is deliberately small.
package middleware

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	requestIDKey    = "requestID"
	requestIDHeader = "X-Request-ID"
)

// RequestID attaches (or propagates) a correlation identifier per request.
// Incoming X-Request-ID is reused; otherwise a fresh UUIDv4 is generated. The
// id is echoed on the response and stored in the Gin context.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(requestIDHeader)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set(requestIDKey, rid)
		c.Writer.Header().Set(requestIDHeader, rid)
		c.Next()
	}
}

// Logger writes one structured access log line per request. 5xx log as
// error, 4xx as warn, everything else as info.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		rid, _ := c.Get(requestIDKey)
		evt := log.Info()
		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			evt = log.Error()
		case c.Writer.Status() >= http.StatusBadRequest:
			evt = log.Warn()
		}
		evt.
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Interface("request_id", rid).
			Msg("admin http")
	}
}

// Recovery converts panics into JSON 500 responses with the correlation id,
// logging the stack trace.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				rid, _ := c.Get(requestIDKey)
				log.Error().
					Interface("panic", rec).
					Interface("request_id", rid).
					Bytes("stack", debug.Stack()).
					Msg("panic recovered")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"code":    "internal_error",
					"message": "internal server error",
				})
			}
		}()
		c.Next()
	}
}
