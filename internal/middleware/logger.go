package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"carrental/internal/pkg/logger"
	"carrental/internal/pkg/response"
)

const requestIDHeader = "X-Request-ID"

// RequestID reuses the caller's X-Request-ID or generates one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Writer.Header().Set(requestIDHeader, id)
		c.Next()
	}
}

// RequestLogger writes one structured line per request and recovers from
// panics. Errors attached with c.Error are logged with the request.
func RequestLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		defer func() {
			if recovered := recover(); recovered != nil {
				log.Error("panic recovered", map[string]interface{}{
					"request_id": c.GetString("request_id"),
					"method":     c.Request.Method,
					"path":       c.Request.URL.Path,
					"panic":      fmt.Sprintf("%v", recovered),
					"stack":      string(debug.Stack()),
				})
				response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
				c.Abort()
				return
			}

			fields := map[string]interface{}{
				"request_id": c.GetString("request_id"),
				"method":     c.Request.Method,
				"path":       c.Request.URL.Path,
				"status":     c.Writer.Status(),
				"latency_ms": time.Since(start).Milliseconds(),
				"client_ip":  c.ClientIP(),
			}
			if uid := c.GetInt64("user_id"); uid != 0 {
				fields["user_id"] = uid
			}
			if len(c.Errors) > 0 {
				fields["errors"] = c.Errors.String()
			}

			switch status := c.Writer.Status(); {
			case status >= http.StatusInternalServerError:
				log.Error("request failed", fields)
			case status >= http.StatusBadRequest:
				log.Warn("request rejected", fields)
			default:
				log.Info("request", fields)
			}
		}()

		c.Next()
	}
}
