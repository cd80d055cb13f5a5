package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"qr-attendance/backend/internal/api/middleware"
	"qr-attendance/backend/pkg/response"
)

// MustGetUserID reads the user_id set by JWTAuth. On failure it writes a 401
// and returns false; the caller should return immediately.
func MustGetUserID(c *gin.Context) (string, bool) {
	v, exists := c.Get(middleware.CtxUserID)
	if !exists {
		response.Unauthorized(c, 10002, "Not authenticated")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "Not authenticated")
		return "", false
	}
	return s, true
}

// tokenSession returns the current token's ID and expiry, zero values when
// absent.
func tokenSession(c *gin.Context) (string, time.Time) {
	jti := c.GetString(middleware.CtxTokenJTI)
	exp, _ := c.Get(middleware.CtxTokenExp)
	t, _ := exp.(time.Time)
	return jti, t
}
