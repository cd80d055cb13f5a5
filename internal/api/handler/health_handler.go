package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"qr-attendance/backend/pkg/response"
)

// HealthCheck probes one dependency.
type HealthCheck func(ctx context.Context) error

// HealthHandler liveness and dependency status.
type HealthHandler struct {
	required map[string]HealthCheck
	optional map[string]HealthCheck
	now      func() time.Time
}

// NewHealthHandler creates a HealthHandler. A failing required check makes
// the endpoint return 503; optional checks only report their state.
func NewHealthHandler(required, optional map[string]HealthCheck) *HealthHandler {
	return &HealthHandler{required: required, optional: optional, now: time.Now}
}

// Health GET /api/health
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := make(map[string]string, len(h.required)+len(h.optional))
	healthy := true
	for name, check := range h.required {
		if err := check(ctx); err != nil {
			checks[name] = "down"
			healthy = false
			continue
		}
		checks[name] = "up"
	}
	for name, check := range h.optional {
		if check == nil {
			checks[name] = "disabled"
			continue
		}
		if err := check(ctx); err != nil {
			checks[name] = "down"
			continue
		}
		checks[name] = "up"
	}

	data := gin.H{
		"status":    "ok",
		"timestamp": h.now().Format(time.RFC3339),
		"checks":    checks,
	}
	if !healthy {
		data["status"] = "degraded"
		c.JSON(http.StatusServiceUnavailable, response.Response{
			Code:    50003,
			Message: "Service unavailable",
			Data:    data,
		})
		return
	}
	response.OK(c, data)
}
