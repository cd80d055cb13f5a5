package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"qr-attendance/backend/internal/api/middleware"
	"qr-attendance/backend/internal/dto"
	"qr-attendance/backend/internal/service"
	"qr-attendance/backend/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock AuthService ──

type mockAuthService struct {
	loginResult   *dto.TokenResponse
	loginErr      error
	logoutJTI     string
	logoutErr     error
	profileResult *dto.UserResponse
	profileErr    error
	changePassErr error
}

func (m *mockAuthService) Login(_ context.Context, _ *dto.LoginRequest) (*dto.TokenResponse, error) {
	return m.loginResult, m.loginErr
}
func (m *mockAuthService) Logout(_ context.Context, jti string, _ time.Time) error {
	m.logoutJTI = jti
	return m.logoutErr
}
func (m *mockAuthService) Profile(_ context.Context, _ string) (*dto.UserResponse, error) {
	return m.profileResult, m.profileErr
}
func (m *mockAuthService) ChangePassword(_ context.Context, _ string, _ *dto.ChangePasswordRequest) error {
	return m.changePassErr
}
func (m *mockAuthService) HashPassword(_ string) (*dto.HashPasswordResponse, error) {
	return &dto.HashPasswordResponse{HashedPassword: "$2a$10$hash"}, nil
}
func (m *mockAuthService) EnsureBootstrapAdmin(_ context.Context) error { return nil }

// ── Mock AttendanceService ──

type mockAttendanceService struct {
	scanResult  *service.ScanOutcome
	scanErr     error
	listResult  []dto.AttendanceResponse
	updateErr   error
	statsResult *dto.StatsResponse
	statsErr    error
}

func (m *mockAttendanceService) Scan(_ context.Context, _ *dto.ScanRequest) (*service.ScanOutcome, error) {
	return m.scanResult, m.scanErr
}
func (m *mockAttendanceService) List(_ context.Context, _ *dto.AttendanceListRequest) ([]dto.AttendanceResponse, error) {
	return m.listResult, nil
}
func (m *mockAttendanceService) UpdateStatus(_ context.Context, _ string, _ *dto.UpdateAttendanceStatusRequest) error {
	return m.updateErr
}
func (m *mockAttendanceService) Stats(_ context.Context, _ *dto.AttendanceDayRequest) (*dto.StatsResponse, error) {
	return m.statsResult, m.statsErr
}
func (m *mockAttendanceService) MarkAbsent(_ context.Context, _ string) (int64, error) {
	return 0, nil
}

// ── Mock StudentService ──

type mockStudentService struct {
	getErr       error
	createResult *dto.StudentResponse
	createErr    error
	qrPNG        []byte
	qrName       string
	importResult *dto.ImportResponse
	importErr    error
	importedName string
}

func (m *mockStudentService) List(_ context.Context, _ *dto.StudentListRequest) ([]dto.StudentResponse, error) {
	return []dto.StudentResponse{}, nil
}
func (m *mockStudentService) GetByID(_ context.Context, _ string) (*dto.StudentResponse, error) {
	return m.createResult, m.getErr
}
func (m *mockStudentService) Create(_ context.Context, _ *dto.StudentRequest) (*dto.StudentResponse, error) {
	return m.createResult, m.createErr
}
func (m *mockStudentService) Update(_ context.Context, _ string, _ *dto.StudentRequest) (*dto.StudentResponse, error) {
	return m.createResult, m.createErr
}
func (m *mockStudentService) Delete(_ context.Context, _ string) error { return m.getErr }
func (m *mockStudentService) Classes(_ context.Context) ([]string, error) {
	return []string{"10A"}, nil
}
func (m *mockStudentService) History(_ context.Context, _ string, _ *dto.StudentHistoryRequest) (*dto.StudentHistoryResponse, error) {
	return nil, m.getErr
}
func (m *mockStudentService) QRCode(_ context.Context, _ string) ([]byte, string, error) {
	return m.qrPNG, m.qrName, m.getErr
}
func (m *mockStudentService) Template() (*bytes.Buffer, string, error) {
	return bytes.NewBufferString("xlsx"), "template_data_siswa.xlsx", nil
}
func (m *mockStudentService) Import(_ context.Context, upload *service.ImportUpload) (*dto.ImportResponse, error) {
	m.importedName = upload.Filename
	return m.importResult, m.importErr
}

// ── Mock SettingService ──

type mockSettingService struct {
	updateResult *dto.SettingUpdatedResponse
	updateErr    error
	batchResult  *dto.BatchUpdateResponse
	batchErr     error
	batchValues  map[string]string
}

func (m *mockSettingService) List(_ context.Context) ([]dto.SettingResponse, error) {
	return []dto.SettingResponse{}, nil
}
func (m *mockSettingService) Get(_ context.Context, _ string) (*dto.SettingResponse, error) {
	return nil, service.ErrSettingNotFound
}
func (m *mockSettingService) Update(_ context.Context, _, _ string) (*dto.SettingUpdatedResponse, error) {
	return m.updateResult, m.updateErr
}
func (m *mockSettingService) BatchUpdate(_ context.Context, values map[string]string) (*dto.BatchUpdateResponse, error) {
	m.batchValues = values
	return m.batchResult, m.batchErr
}
func (m *mockSettingService) Schedule(_ context.Context) (service.Schedule, error) {
	return service.DefaultSchedule(), nil
}
func (m *mockSettingService) ScheduleView(_ context.Context) (*dto.ScheduleResponse, error) {
	return &dto.ScheduleResponse{LateTolerance: 15}, nil
}
func (m *mockSettingService) SchoolName(_ context.Context) string { return "SMA Negeri 1" }

// ── Mock ExportService / CalendarService ──

type mockExportService struct {
	buf      *bytes.Buffer
	filename string
	err      error
}

func (m *mockExportService) ExportAttendance(_ context.Context, _ *dto.AttendanceDayRequest) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}

type mockCalendarService struct{}

func (m *mockCalendarService) ScheduleICS(_ context.Context) (string, error) {
	return "BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n", nil
}

// ═══════════════════════════════════════════════════════════
// Test Helpers
// ═══════════════════════════════════════════════════════════

func setAuth(c *gin.Context) {
	c.Set(middleware.CtxUserID, "test-user-id")
	c.Set(middleware.CtxRole, "admin")
	c.Set(middleware.CtxTokenJTI, "test-jti")
	c.Set(middleware.CtxTokenExp, time.Now().Add(time.Hour))
}

func jsonBody(v interface{}) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func parseResponse(w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

func serve(method, path, route string, h gin.HandlerFunc, body io.Reader, auth bool) *httptest.ResponseRecorder {
	r := gin.New()
	handlers := []gin.HandlerFunc{}
	if auth {
		handlers = append(handlers, setAuth)
	}
	handlers = append(handlers, h)
	r.Handle(method, route, handlers...)

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ═══════════════════════════════════════════════════════════
// AuthHandler Tests
// ═══════════════════════════════════════════════════════════

func TestAuthHandler_Login_Success(t *testing.T) {
	mock := &mockAuthService{
		loginResult: &dto.TokenResponse{Token: "jwt", ExpiresIn: 86400, User: dto.UserResponse{Username: "admin"}},
	}
	h := NewAuthHandler(mock, false)

	w := serve("POST", "/auth/login", "/auth/login", h.Login, jsonBody(dto.LoginRequest{Username: "admin", Password: "admin123"}), false)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	resp := parseResponse(w)
	if !resp.Success || resp.Message != "Login successful" {
		t.Errorf("unexpected envelope: %+v", resp)
	}
}

func TestAuthHandler_Login_BadJSON(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, false)
	w := serve("POST", "/auth/login", "/auth/login", h.Login, strings.NewReader("invalid json"), false)
	if w.Code != http.StatusBadRequest || parseResponse(w).Code != 10001 {
		t.Errorf("expected 400/10001, got %d %s", w.Code, w.Body.String())
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{loginErr: service.ErrInvalidCredentials}, false)
	w := serve("POST", "/auth/login", "/auth/login", h.Login, jsonBody(dto.LoginRequest{Username: "a", Password: "b"}), false)
	if w.Code != http.StatusUnauthorized || parseResponse(w).Code != 11001 {
		t.Errorf("expected 401/11001, got %d %s", w.Code, w.Body.String())
	}
}

func TestAuthHandler_Logout_PassesJTI(t *testing.T) {
	mock := &mockAuthService{}
	h := NewAuthHandler(mock, false)
	w := serve("POST", "/auth/logout", "/auth/logout", h.Logout, nil, true)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if mock.logoutJTI != "test-jti" {
		t.Errorf("jti = %q", mock.logoutJTI)
	}
}

func TestAuthHandler_Profile_Unauthenticated(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, false)
	w := serve("GET", "/auth/profile", "/auth/profile", h.Profile, nil, false)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestAuthHandler_ChangePassword(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{changePassErr: service.ErrWrongPassword}, false)

	w := serve("POST", "/auth/change-password", "/auth/change-password", h.ChangePassword,
		jsonBody(dto.ChangePasswordRequest{CurrentPassword: "x", NewPassword: "123"}), true)
	if w.Code != http.StatusBadRequest || parseResponse(w).Code != 10001 {
		t.Errorf("short password should fail binding, got %d %s", w.Code, w.Body.String())
	}

	w = serve("POST", "/auth/change-password", "/auth/change-password", h.ChangePassword,
		jsonBody(dto.ChangePasswordRequest{CurrentPassword: "x", NewPassword: "123456"}), true)
	if w.Code != http.StatusBadRequest || parseResponse(w).Code != 11003 {
		t.Errorf("expected 400/11003, got %d %s", w.Code, w.Body.String())
	}
}

func TestAuthHandler_HashPassword_Toggle(t *testing.T) {
	body := func() io.Reader { return jsonBody(dto.HashPasswordRequest{Password: "secret"}) }

	w := serve("POST", "/auth/hash-password", "/auth/hash-password", NewAuthHandler(&mockAuthService{}, false).HashPassword, body(), false)
	if w.Code != http.StatusNotFound {
		t.Errorf("disabled endpoint should 404, got %d", w.Code)
	}

	w = serve("POST", "/auth/hash-password", "/auth/hash-password", NewAuthHandler(&mockAuthService{}, true).HashPassword, body(), false)
	if w.Code != http.StatusOK {
		t.Errorf("enabled endpoint should 200, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// AttendanceHandler Tests
// ═══════════════════════════════════════════════════════════

func TestAttendanceHandler_Scan_Success(t *testing.T) {
	mock := &mockAttendanceService{scanResult: &service.ScanOutcome{
		Message: "Arrival recorded",
		Data:    dto.ScanResponse{Attendance: dto.ScanAttendance{Status: "present", Type: "arrival"}},
	}}
	h := NewAttendanceHandler(mock)

	w := serve("POST", "/attendance", "/attendance", h.Scan, jsonBody(dto.ScanRequest{QRCode: "QR_1_abc"}), false)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Message != "Arrival recorded" {
		t.Errorf("Message = %q", resp.Message)
	}
}

func TestAttendanceHandler_Scan_Errors(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   int
	}{
		{service.ErrQRCodeRequired, http.StatusBadRequest, 13001},
		{service.ErrQRCodeUnknown, http.StatusNotFound, 13002},
		{&service.ScanRejectedError{Reason: service.RejectAlreadyCheckedIn, Message: "Ani already checked in today at 07:05:00"}, http.StatusBadRequest, 13003},
		{errors.New("db down"), http.StatusInternalServerError, 50000},
	}

	for _, tt := range tests {
		h := NewAttendanceHandler(&mockAttendanceService{scanErr: tt.err})
		w := serve("POST", "/attendance", "/attendance", h.Scan, jsonBody(dto.ScanRequest{QRCode: "x"}), false)
		if w.Code != tt.status {
			t.Errorf("%v: status = %d, want %d", tt.err, w.Code, tt.status)
			continue
		}
		resp := parseResponse(w)
		if resp.Code != tt.code || resp.Success {
			t.Errorf("%v: code = %d, want %d", tt.err, resp.Code, tt.code)
		}
		if tt.code == 13003 && resp.Message != tt.err.Error() {
			t.Errorf("rejection message = %q", resp.Message)
		}
	}
}

func TestAttendanceHandler_UpdateStatus_InvalidStatus(t *testing.T) {
	h := NewAttendanceHandler(&mockAttendanceService{})
	w := serve("PUT", "/attendance/a-1", "/attendance/:id", h.UpdateStatus, jsonBody(map[string]string{"status": "late"}), true)
	if w.Code != http.StatusBadRequest || parseResponse(w).Code != 13005 {
		t.Errorf("expected 400/13005, got %d %s", w.Code, w.Body.String())
	}
}

func TestAttendanceHandler_UpdateStatus_NotFound(t *testing.T) {
	h := NewAttendanceHandler(&mockAttendanceService{updateErr: service.ErrAttendanceNotFound})
	w := serve("PUT", "/attendance/a-1", "/attendance/:id", h.UpdateStatus, jsonBody(map[string]string{"status": "sick"}), true)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestAttendanceHandler_Stats_BadDate(t *testing.T) {
	h := NewAttendanceHandler(&mockAttendanceService{})
	w := serve("GET", "/attendance/stats?date=03-04-2024", "/attendance/stats", h.Stats, nil, true)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// StudentHandler Tests
// ═══════════════════════════════════════════════════════════

func TestStudentHandler_Create_Validation(t *testing.T) {
	h := NewStudentHandler(&mockStudentService{})
	w := serve("POST", "/students", "/students", h.Create, jsonBody(map[string]string{"nis": "1", "name": "A", "class": "10A", "gender": "X"}), true)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestStudentHandler_Create_Success(t *testing.T) {
	h := NewStudentHandler(&mockStudentService{createResult: &dto.StudentResponse{NIS: "1"}})
	w := serve("POST", "/students", "/students", h.Create, jsonBody(map[string]string{"nis": "1", "name": "A", "class": "10A"}), true)
	if w.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", w.Code)
	}
}

func TestStudentHandler_Create_DuplicateNIS(t *testing.T) {
	h := NewStudentHandler(&mockStudentService{createErr: service.ErrNISTaken})
	w := serve("POST", "/students", "/students", h.Create, jsonBody(map[string]string{"nis": "1", "name": "A", "class": "10A"}), true)
	if w.Code != http.StatusBadRequest || parseResponse(w).Code != 12002 {
		t.Errorf("expected 400/12002, got %d %s", w.Code, w.Body.String())
	}
}

func TestStudentHandler_Get_NotFound(t *testing.T) {
	h := NewStudentHandler(&mockStudentService{getErr: service.ErrStudentNotFound})
	w := serve("GET", "/students/x", "/students/:id", h.Get, nil, true)
	if w.Code != http.StatusNotFound || parseResponse(w).Code != 12001 {
		t.Errorf("expected 404/12001, got %d", w.Code)
	}
}

func TestStudentHandler_QRCode(t *testing.T) {
	h := NewStudentHandler(&mockStudentService{qrPNG: []byte("\x89PNG"), qrName: "1001_Ani.png"})
	w := serve("GET", "/students/x/qrcode", "/students/:id/qrcode", h.QRCode, nil, true)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %s", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "1001_Ani.png") {
		t.Errorf("Content-Disposition = %s", cd)
	}
}

func TestStudentHandler_Template(t *testing.T) {
	h := NewStudentHandler(&mockStudentService{})
	w := serve("GET", "/students/template", "/students/template", h.Template, nil, true)
	if w.Code != http.StatusOK || w.Header().Get("Content-Type") != xlsxContentType {
		t.Errorf("status %d content-type %s", w.Code, w.Header().Get("Content-Type"))
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.HasPrefix(cd, "attachment;") {
		t.Errorf("Content-Disposition = %s", cd)
	}
}

func multipartUpload(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := new(bytes.Buffer)
	mw := multipart.NewWriter(body)
	part, err := mw.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	part.Write(content)
	mw.Close()
	return body, mw.FormDataContentType()
}

func TestStudentHandler_Import(t *testing.T) {
	mock := &mockStudentService{importResult: &dto.ImportResponse{ImportedCount: 3}}
	h := NewStudentHandler(mock)
	r := gin.New()
	r.POST("/students/import", h.Import)

	body, ct := multipartUpload(t, "file", "roster.xlsx", []byte("data"))
	req := httptest.NewRequest("POST", "/students/import", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d %s", w.Code, w.Body.String())
	}
	if resp := parseResponse(w); resp.Message != "Successfully imported 3 students" {
		t.Errorf("Message = %q", resp.Message)
	}
	if mock.importedName != "roster.xlsx" {
		t.Errorf("file name = %q", mock.importedName)
	}
}

func TestStudentHandler_Import_MissingFile(t *testing.T) {
	h := NewStudentHandler(&mockStudentService{})
	r := gin.New()
	r.POST("/students/import", h.Import)

	body, ct := multipartUpload(t, "other", "roster.xlsx", []byte("data"))
	req := httptest.NewRequest("POST", "/students/import", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest || parseResponse(w).Code != 12005 {
		t.Errorf("expected 400/12005, got %d %s", w.Code, w.Body.String())
	}
}

func TestStudentHandler_Import_RowErrors(t *testing.T) {
	rowErrs := []dto.ImportRowError{{Row: 3, NIS: "3002", Errors: []string{"Name must not be empty"}}}
	h := NewStudentHandler(&mockStudentService{importErr: &service.ValidationError{Message: "the spreadsheet contains invalid rows", Errors: rowErrs}})
	r := gin.New()
	r.POST("/students/import", h.Import)

	body, ct := multipartUpload(t, "file", "roster.xlsx", []byte("data"))
	req := httptest.NewRequest("POST", "/students/import", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	var resp struct {
		Errors []dto.ImportRowError `json:"errors"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Errors) != 1 || resp.Errors[0].Row != 3 {
		t.Errorf("unexpected errors: %+v", resp.Errors)
	}
}

// ═══════════════════════════════════════════════════════════
// SettingHandler Tests
// ═══════════════════════════════════════════════════════════

func TestSettingHandler_Update_NumberValue(t *testing.T) {
	mock := &mockSettingService{updateResult: &dto.SettingUpdatedResponse{Key: "late_tolerance", Value: "20"}}
	h := NewSettingHandler(mock)
	w := serve("PUT", "/settings/late_tolerance", "/settings/:key", h.Update, strings.NewReader(`{"value": 20}`), true)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d %s", w.Code, w.Body.String())
	}
}

func TestSettingHandler_Update_Errors(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{service.ErrSettingNotFound, http.StatusNotFound},
		{service.ErrInvalidTimeFormat, http.StatusBadRequest},
		{service.ErrSettingValueEmpty, http.StatusBadRequest},
	}
	for _, tt := range tests {
		h := NewSettingHandler(&mockSettingService{updateErr: tt.err})
		w := serve("PUT", "/settings/k", "/settings/:key", h.Update, strings.NewReader(`{"value": "x"}`), true)
		if w.Code != tt.status {
			t.Errorf("%v: status = %d, want %d", tt.err, w.Code, tt.status)
		}
	}
}

func TestSettingHandler_BatchUpdate(t *testing.T) {
	mock := &mockSettingService{batchErr: &service.ValidationError{Message: "validation failed", Errors: []string{"Invalid time format for arrival_time_end"}}}
	h := NewSettingHandler(mock)

	w := serve("PUT", "/settings", "/settings", h.BatchUpdate,
		strings.NewReader(`{"settings": {"arrival_time_end": "late", "late_tolerance": 10}}`), true)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if mock.batchValues["late_tolerance"] != "10" || mock.batchValues["arrival_time_end"] != "late" {
		t.Errorf("unexpected values passed: %v", mock.batchValues)
	}
	resp := parseResponse(w)
	if errs, ok := resp.Errors.([]interface{}); !ok || len(errs) != 1 {
		t.Errorf("unexpected errors: %#v", resp.Errors)
	}

	w = serve("PUT", "/settings", "/settings", h.BatchUpdate, strings.NewReader(`{}`), true)
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing settings object should 400, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// ExportHandler Tests
// ═══════════════════════════════════════════════════════════

func TestExportHandler_ExportAttendance(t *testing.T) {
	mock := &mockExportService{buf: bytes.NewBufferString("xlsx"), filename: "attendance_2024-03-04.xlsx"}
	h := NewExportHandler(mock, &mockCalendarService{})

	w := serve("GET", "/attendance/export?date=2024-03-04", "/attendance/export", h.ExportAttendance, nil, true)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "attendance_2024-03-04.xlsx") {
		t.Errorf("Content-Disposition = %s", cd)
	}
}

func TestExportHandler_ExportAttendance_Fail(t *testing.T) {
	h := NewExportHandler(&mockExportService{err: service.ErrExportGenerateFail}, &mockCalendarService{})
	w := serve("GET", "/attendance/export", "/attendance/export", h.ExportAttendance, nil, true)
	if w.Code != http.StatusInternalServerError || parseResponse(w).Code != 15001 {
		t.Errorf("expected 500/15001, got %d %s", w.Code, w.Body.String())
	}
}

func TestExportHandler_ScheduleICS(t *testing.T) {
	h := NewExportHandler(&mockExportService{}, &mockCalendarService{})
	w := serve("GET", "/settings/time/schedule.ics", "/settings/time/schedule.ics", h.ScheduleICS, nil, false)
	if w.Code != http.StatusOK || !strings.HasPrefix(w.Header().Get("Content-Type"), "text/calendar") {
		t.Errorf("status %d content-type %s", w.Code, w.Header().Get("Content-Type"))
	}
}

// ═══════════════════════════════════════════════════════════
// HealthHandler Tests
// ═══════════════════════════════════════════════════════════

func TestHealthHandler(t *testing.T) {
	ok := func(context.Context) error { return nil }
	fail := func(context.Context) error { return errors.New("down") }

	h := NewHealthHandler(map[string]HealthCheck{"database": ok}, map[string]HealthCheck{"redis": nil})
	w := serve("GET", "/health", "/health", h.Health, nil, false)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}

	h = NewHealthHandler(map[string]HealthCheck{"database": fail}, map[string]HealthCheck{"redis": ok})
	w = serve("GET", "/health", "/health", h.Health, nil, false)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", w.Code)
	}
}
