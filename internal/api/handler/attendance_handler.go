package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"qr-attendance/backend/internal/dto"
	"qr-attendance/backend/internal/service"
	"qr-attendance/backend/pkg/response"
)

// AttendanceHandler scan and ledger endpoints.
type AttendanceHandler struct {
	attendanceSvc service.AttendanceService
}

// NewAttendanceHandler creates an AttendanceHandler.
func NewAttendanceHandler(attendanceSvc service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendanceSvc: attendanceSvc}
}

// Scan POST /api/attendance
func (h *AttendanceHandler) Scan(c *gin.Context) {
	var req dto.ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "QR code is required")
		return
	}

	out, err := h.attendanceSvc.Scan(c.Request.Context(), &req)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}
	response.OKWithMessage(c, out.Message, out.Data)
}

// List GET /api/attendance
func (h *AttendanceHandler) List(c *gin.Context) {
	var req dto.AttendanceListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "Invalid query parameters")
		return
	}

	rows, err := h.attendanceSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}
	response.OKList(c, rows, len(rows))
}

// UpdateStatus PUT /api/attendance/:id
func (h *AttendanceHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdateAttendanceStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 13005, service.ErrInvalidStatus.Error())
		return
	}

	if err := h.attendanceSvc.UpdateStatus(c.Request.Context(), c.Param("id"), &req); err != nil {
		h.handleAttendanceError(c, err)
		return
	}
	response.OKWithMessage(c, "Attendance status updated", nil)
}

// Stats GET /api/attendance/stats
func (h *AttendanceHandler) Stats(c *gin.Context) {
	var req dto.AttendanceDayRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, service.ErrInvalidDate.Error())
		return
	}

	stats, err := h.attendanceSvc.Stats(c.Request.Context(), &req)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}
	response.OK(c, stats)
}

func (h *AttendanceHandler) handleAttendanceError(c *gin.Context, err error) {
	var rejected *service.ScanRejectedError
	switch {
	case errors.As(err, &rejected):
		response.BadRequest(c, 13003, rejected.Message)
	case errors.Is(err, service.ErrQRCodeRequired):
		response.BadRequest(c, 13001, err.Error())
	case errors.Is(err, service.ErrQRCodeUnknown):
		response.NotFound(c, 13002, err.Error())
	case errors.Is(err, service.ErrAttendanceNotFound):
		response.NotFound(c, 13004, err.Error())
	case errors.Is(err, service.ErrInvalidStatus):
		response.BadRequest(c, 13005, err.Error())
	case errors.Is(err, service.ErrInvalidDate):
		response.BadRequest(c, 10001, err.Error())
	default:
		response.InternalError(c)
	}
}
