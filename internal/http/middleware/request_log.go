package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/studyhub-backend/internal/platform/ctxutil"
	"github.com/yungbote/studyhub-backend/internal/platform/logger"
)

// RequestLogger writes one line per request; the level follows the status class.
// SSE streams are logged when they end.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	if log == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched:" + c.Request.URL.Path
		}
		status := c.Writer.Status()
		fields := append([]any{
			"method", c.Request.Method,
			"route", route,
			"status", status,
			"bytes", c.Writer.Size(),
			"duration_ms", time.Since(start).Milliseconds(),
		}, ctxutil.LogFields(c.Request.Context())...)
		if len(c.Errors) > 0 {
			fields = append(fields, "errors", c.Errors.String())
		}

		logAt := log.Info
		if status >= 500 {
			logAt = log.Error
		} else if status >= 400 {
			logAt = log.Warn
		}
		logAt("HTTP request", fields...)
	}
}
