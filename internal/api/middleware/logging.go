package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// SlowRequestThreshold requests slower than this are also warned on the app log.
const SlowRequestThreshold = time.Second

// LoggingConfig holds configuration for logging middleware
type LoggingConfig struct {
	AccessLogger *zerolog.Logger // defaults to the global logger
	SkipPaths    []string
}

// Logging writes one access log line per request: warn for 4xx, error for 5xx.
func Logging(cfg LoggingConfig) gin.HandlerFunc {
	logger := log.Logger
	if cfg.AccessLogger != nil {
		logger = *cfg.AccessLogger
	}

	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path += "?" + raw
		}

		c.Next()

		duration := time.Since(start)
		status := c.Writer.Status()

		var event *zerolog.Event
		switch {
		case status >= http.StatusInternalServerError:
			event = logger.Error()
		case status >= http.StatusBadRequest:
			event = logger.Warn()
		default:
			event = logger.Info()
		}

		event.
			Str("request_id", GetRequestID(c)).
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", status).
			Int64("duration_ms", duration.Milliseconds()).
			Int("response_size", c.Writer.Size()).
			Str("ip", c.ClientIP())
		if len(c.Errors) > 0 {
			event.Str("error", c.Errors.String())
		}
		event.Msg("Request completed")

		if duration > SlowRequestThreshold {
			log.Warn().
				Str("request_id", GetRequestID(c)).
				Str("method", c.Request.Method).
				Str("path", path).
				Int64("duration_ms", duration.Milliseconds()).
				Msg("Slow request")
		}
	}
}

// Recovery turns a handler panic into a 500 with the request ID.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				requestID := GetRequestID(c)
				log.Error().
					Str("request_id", requestID).
					Str("method", c.Request.Method).
					Str("path", c.Request.URL.Path).
					Interface("panic", rec).
					Msg("Panic recovered")

				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error": gin.H{
						"code":       "INTERNAL_SERVER_ERROR",
						"message":    "Internal server error",
						"request_id": requestID,
					},
				})
			}
		}()

		c.Next()
	}
}
