package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ddhiman-alt/nearpaws/internal/logging"
)

const (
	HeaderRequestID = "X-Request-ID"

	ContextKeyRequestID = "requestID"
	ContextKeyLogger    = "logger"

	maxRequestIDLength = 128
)

// RequestID reuses a sane incoming X-Request-ID or mints a UUID, echoes it
// back and stores a request-scoped logger carrying it.
func RequestID(base *slog.Logger) gin.HandlerFunc {
	if base == nil {
		base = slog.Default()
	}
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" || len(id) > maxRequestIDLength {
			id = uuid.NewString()
		}
		c.Set(ContextKeyRequestID, id)
		c.Set(ContextKeyLogger, base.With("request_id", id))
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

// LoggerFrom returns the request logger, or the default one outside RequestID.
func LoggerFrom(c *gin.Context) *slog.Logger {
	if v, ok := c.Get(ContextKeyLogger); ok {
		if l, ok := v.(*slog.Logger); ok {
			return l
		}
	}
	return slog.Default()
}

// RequestLogger logs one line per request, at WARN for 4xx and ERROR for 5xx.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		level := slog.LevelInfo
		switch {
		case status >= 500:
			level = slog.LevelError
		case status >= 400:
			level = slog.LevelWarn
		}

		attrs := []slog.Attr{
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", status),
			slog.Duration("latency", time.Since(start)),
			slog.String("ip", c.ClientIP()),
		}
		if id, ok := UserID(c); ok {
			attrs = append(attrs, slog.String("user_id", id.Hex()))
		}
		if err := c.Errors.Last(); err != nil {
			attrs = append(attrs, logging.Err(err.Err))
		}
		LoggerFrom(c).LogAttrs(c.Request.Context(), level, "http request", attrs...)
	}
}

// Recovery turns a handler panic into the generic 500 body.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		LoggerFrom(c).ErrorContext(c.Request.Context(), "handler panicked", "panic", recovered)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server Error"})
	})
}
