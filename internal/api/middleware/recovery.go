package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"qr-attendance/backend/pkg/response"
)

// Recovery turns a panic into a 500 envelope. The panic value is only
// returned to the client in debug mode.
func Recovery(logger *zap.Logger, debug bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered",
					zap.Any("panic", r),
					zap.String("path", c.Request.URL.Path),
					zap.String("request_id", c.GetString(requestIDKey)),
					zap.Stack("stack"),
				)
				if c.Writer.Written() {
					c.Abort()
					return
				}
				details := ""
				if debug {
					details = fmt.Sprint(r)
				}
				response.ErrorWithDetails(c, http.StatusInternalServerError, 50000, "Internal server error", details)
				c.Abort()
			}
		}()
		c.Next()
	}
}
