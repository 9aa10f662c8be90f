// Package middleware holds the gin middleware shared by all routes
package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RequestLogger logs every request once it has been served
func RequestLogger(lgr zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		event := lgr.Info()
		switch {
		case status >= 500:
			event = lgr.Error()
		case status >= 400:
			event = lgr.Warn()
		}
		if userID, ok := CurrentUserID(c); ok {
			event = event.Int64("userID", userID)
		}
		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Str("clientIP", c.ClientIP()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Msg("Request served")
	}
}
