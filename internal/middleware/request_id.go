package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/blueDog-Consulting/gh-issues-view/internal/logger"
)

const requestIDHeader = "X-Request-ID"

// RequestID tags every request with an ID for log correlation. An
// inbound X-Request-ID is honored so upstream proxies can thread their
// own IDs through.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}

		c.Writer.Header().Set(requestIDHeader, id)
		c.Next()

		if c.Writer.Status() >= 500 {
			logger.Error("request failed", map[string]any{
				"request_id": id,
				"method":     c.Request.Method,
				"path":       c.Request.URL.Path,
				"status":     c.Writer.Status(),
			})
		}
	}
}
