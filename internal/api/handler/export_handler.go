package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"qr-attendance/backend/internal/dto"
	"qr-attendance/backend/internal/service"
	"qr-attendance/backend/pkg/response"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	icsContentType  = "text/calendar; charset=utf-8"
)

// ExportHandler file downloads: the ledger spreadsheet and the schedule
// calendar feed.
type ExportHandler struct {
	exportSvc   service.ExportService
	calendarSvc service.CalendarService
}

// NewExportHandler creates an ExportHandler.
func NewExportHandler(exportSvc service.ExportService, calendarSvc service.CalendarService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc, calendarSvc: calendarSvc}
}

// ExportAttendance GET /api/attendance/export?date=&class=
func (h *ExportHandler) ExportAttendance(c *gin.Context) {
	var req dto.AttendanceDayRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, service.ErrInvalidDate.Error())
		return
	}

	buf, filename, err := h.exportSvc.ExportAttendance(c.Request.Context(), &req)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	sendAttachment(c, filename, xlsxContentType, buf.Bytes())
}

// ScheduleICS GET /api/settings/time/schedule.ics
func (h *ExportHandler) ScheduleICS(c *gin.Context) {
	body, err := h.calendarSvc.ScheduleICS(c.Request.Context())
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	c.Header("Content-Disposition", `inline; filename="schedule.ics"`)
	c.Data(http.StatusOK, icsContentType, []byte(body))
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidDate):
		response.BadRequest(c, 10001, err.Error())
	case errors.Is(err, service.ErrExportGenerateFail):
		response.Error(c, http.StatusInternalServerError, 15001, err.Error())
	default:
		response.InternalError(c)
	}
}

// sendAttachment writes a download with an RFC 5987 encoded file name.
func sendAttachment(c *gin.Context, filename, contentType string, data []byte) {
	encodedFilename := url.PathEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"; filename*=UTF-8''`+encodedFilename)
	c.Data(http.StatusOK, contentType, data)
}
