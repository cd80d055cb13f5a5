package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"qr-attendance/backend/internal/dto"
	"qr-attendance/backend/internal/service"
	"qr-attendance/backend/pkg/response"
)

// SettingHandler settings and scan schedule endpoints.
type SettingHandler struct {
	settingSvc service.SettingService
}

// NewSettingHandler creates a SettingHandler.
func NewSettingHandler(settingSvc service.SettingService) *SettingHandler {
	return &SettingHandler{settingSvc: settingSvc}
}

// List GET /api/settings
func (h *SettingHandler) List(c *gin.Context) {
	settings, err := h.settingSvc.List(c.Request.Context())
	if err != nil {
		h.handleSettingError(c, err)
		return
	}
	response.OK(c, settings)
}

// Get GET /api/settings/:key
func (h *SettingHandler) Get(c *gin.Context) {
	setting, err := h.settingSvc.Get(c.Request.Context(), c.Param("key"))
	if err != nil {
		h.handleSettingError(c, err)
		return
	}
	response.OK(c, setting)
}

// Update PUT /api/settings/:key
func (h *SettingHandler) Update(c *gin.Context) {
	var req dto.UpdateSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, service.ErrSettingValueEmpty.Error())
		return
	}

	result, err := h.settingSvc.Update(c.Request.Context(), c.Param("key"), string(req.Value))
	if err != nil {
		h.handleSettingError(c, err)
		return
	}
	response.OKWithMessage(c, "Setting updated", result)
}

// BatchUpdate PUT /api/settings
func (h *SettingHandler) BatchUpdate(c *gin.Context) {
	var req dto.BatchUpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, service.ErrNoSettingsProvided.Error())
		return
	}

	values := make(map[string]string, len(req.Settings))
	for k, v := range req.Settings {
		values[k] = string(v)
	}

	result, err := h.settingSvc.BatchUpdate(c.Request.Context(), values)
	if err != nil {
		h.handleSettingError(c, err)
		return
	}
	response.OKWithMessage(c, "Settings updated", result)
}

// Schedule GET /api/settings/time/schedule
func (h *SettingHandler) Schedule(c *gin.Context) {
	view, err := h.settingSvc.ScheduleView(c.Request.Context())
	if err != nil {
		h.handleSettingError(c, err)
		return
	}
	response.OK(c, view)
}

func (h *SettingHandler) handleSettingError(c *gin.Context, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		response.ErrorWithErrors(c, http.StatusBadRequest, 10001, verr.Message, verr.Errors)
	case errors.Is(err, service.ErrSettingNotFound):
		response.NotFound(c, 14001, err.Error())
	case errors.Is(err, service.ErrSettingValueEmpty),
		errors.Is(err, service.ErrInvalidTimeFormat),
		errors.Is(err, service.ErrInvalidTolerance),
		errors.Is(err, service.ErrNoSettingsProvided):
		response.BadRequest(c, 14002, err.Error())
	default:
		response.InternalError(c)
	}
}
