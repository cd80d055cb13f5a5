package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"qr-attendance/backend/pkg/response"
)

// BodyLimit caps request bodies at maxBytes. perRoute raises or lowers the
// cap for specific route templates (e.g. the roster upload).
func BodyLimit(maxBytes int64, perRoute map[string]int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := maxBytes
		if n, ok := perRoute[c.FullPath()]; ok {
			limit = n
		}

		if c.Request.ContentLength > limit {
			response.Error(c, http.StatusRequestEntityTooLarge, 10005, "Request body too large")
			c.Abort()
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}

		c.Next()

		if c.Writer.Written() {
			return
		}
		for _, err := range c.Errors {
			if IsBodyTooLarge(err.Err) {
				response.Error(c, http.StatusRequestEntityTooLarge, 10005, "Request body too large")
				return
			}
		}
	}
}

// IsBodyTooLarge reports whether err came from a body over the BodyLimit cap.
func IsBodyTooLarge(err error) bool {
	var tooLarge *http.MaxBytesError
	return errors.As(err, &tooLarge)
}
