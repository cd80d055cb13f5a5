package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"qr-attendance/backend/internal/api/middleware"
	"qr-attendance/backend/internal/dto"
	"qr-attendance/backend/internal/service"
	"qr-attendance/backend/pkg/response"
)

// StudentHandler roster endpoints.
type StudentHandler struct {
	studentSvc service.StudentService
}

// NewStudentHandler creates a StudentHandler.
func NewStudentHandler(studentSvc service.StudentService) *StudentHandler {
	return &StudentHandler{studentSvc: studentSvc}
}

// List GET /api/students?class=&search=
func (h *StudentHandler) List(c *gin.Context) {
	var req dto.StudentListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "Invalid query parameters")
		return
	}

	students, err := h.studentSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleStudentError(c, err)
		return
	}
	response.OKList(c, students, len(students))
}

// Get GET /api/students/:id
func (h *StudentHandler) Get(c *gin.Context) {
	student, err := h.studentSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleStudentError(c, err)
		return
	}
	response.OK(c, student)
}

// Classes GET /api/students/classes/list
func (h *StudentHandler) Classes(c *gin.Context) {
	classes, err := h.studentSvc.Classes(c.Request.Context())
	if err != nil {
		h.handleStudentError(c, err)
		return
	}
	response.OK(c, classes)
}

// History GET /api/students/:id/attendance
func (h *StudentHandler) History(c *gin.Context) {
	var req dto.StudentHistoryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "Invalid query parameters")
		return
	}

	history, err := h.studentSvc.History(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.handleStudentError(c, err)
		return
	}
	response.OK(c, history)
}

// QRCode GET /api/students/:id/qrcode
func (h *StudentHandler) QRCode(c *gin.Context) {
	png, filename, err := h.studentSvc.QRCode(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleStudentError(c, err)
		return
	}
	c.Header("Content-Disposition", `inline; filename="`+filename+`"`)
	c.Data(http.StatusOK, "image/png", png)
}

// Template GET /api/students/template
func (h *StudentHandler) Template(c *gin.Context) {
	buf, filename, err := h.studentSvc.Template()
	if err != nil {
		h.handleStudentError(c, err)
		return
	}
	sendAttachment(c, filename, xlsxContentType, buf.Bytes())
}

// Create POST /api/students
func (h *StudentHandler) Create(c *gin.Context) {
	var req dto.StudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "NIS, name and class are required; gender must be L or P; birth_date must be YYYY-MM-DD")
		return
	}

	student, err := h.studentSvc.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleStudentError(c, err)
		return
	}
	response.Created(c, "Student created", student)
}

// Update PUT /api/students/:id
func (h *StudentHandler) Update(c *gin.Context) {
	var req dto.StudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "NIS, name and class are required; gender must be L or P; birth_date must be YYYY-MM-DD")
		return
	}

	student, err := h.studentSvc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.handleStudentError(c, err)
		return
	}
	response.OKWithMessage(c, "Student updated", student)
}

// Delete DELETE /api/students/:id
func (h *StudentHandler) Delete(c *gin.Context) {
	if err := h.studentSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.handleStudentError(c, err)
		return
	}
	response.OKWithMessage(c, "Student deleted", nil)
}

// Import POST /api/students/import (multipart field "file")
func (h *StudentHandler) Import(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		if middleware.IsBodyTooLarge(err) {
			response.Error(c, http.StatusRequestEntityTooLarge, 10005, service.ErrImportFileTooLarge.Error())
			return
		}
		h.handleStudentError(c, service.ErrImportFileMissing)
		return
	}

	f, err := fh.Open()
	if err != nil {
		h.handleStudentError(c, service.ErrImportUnreadable)
		return
	}
	defer f.Close()

	result, err := h.studentSvc.Import(c.Request.Context(), &service.ImportUpload{
		Filename: fh.Filename,
		Size:     fh.Size,
		Body:     f,
	})
	if err != nil {
		h.handleStudentError(c, err)
		return
	}
	response.OKWithMessage(c, fmt.Sprintf("Successfully imported %d students", result.ImportedCount), result)
}

func (h *StudentHandler) handleStudentError(c *gin.Context, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		response.ErrorWithErrors(c, http.StatusBadRequest, 10001, verr.Message, verr.Errors)
	case errors.Is(err, service.ErrStudentNotFound):
		response.NotFound(c, 12001, err.Error())
	case errors.Is(err, service.ErrNISTaken):
		response.BadRequest(c, 12002, err.Error())
	case errors.Is(err, service.ErrImportFileTooLarge):
		response.Error(c, http.StatusRequestEntityTooLarge, 10005, err.Error())
	case errors.Is(err, service.ErrImportFileMissing),
		errors.Is(err, service.ErrImportFileType),
		errors.Is(err, service.ErrImportUnreadable),
		errors.Is(err, service.ErrImportEmpty),
		errors.Is(err, service.ErrImportHeader),
		errors.Is(err, service.ErrImportNoRows):
		response.BadRequest(c, 12005, err.Error())
	case errors.Is(err, service.ErrQRGenerateFail):
		response.Error(c, http.StatusInternalServerError, 12003, err.Error())
	case errors.Is(err, service.ErrTemplateBuildFail):
		response.Error(c, http.StatusInternalServerError, 12004, err.Error())
	default:
		response.InternalError(c)
	}
}
