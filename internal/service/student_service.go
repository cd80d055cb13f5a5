package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"qr-attendance/backend/internal/dto"
	"qr-attendance/backend/internal/model"
	"qr-attendance/backend/internal/repository"
	pkgerrors "qr-attendance/backend/pkg/errors"
)

// ── student errors ──

var (
	ErrStudentNotFound   = errors.New("student not found")
	ErrNISTaken          = errors.New("NIS is already registered")
	ErrQRGenerateFail    = errors.New("failed to generate QR code")
	ErrTemplateBuildFail = errors.New("failed to build template")
)

const (
	minHistoryLimit = 1
	maxHistoryLimit = 1000
)

// NewQRToken returns a fresh scan token for a student.
func NewQRToken(nis string) string {
	return fmt.Sprintf("QR_%s_%s", nis, strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
}

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// QRFileName is the PNG file name for a student: <nis>_<name>.png.
func QRFileName(s *model.Student) string {
	name := unsafeFileChars.ReplaceAllString(strings.ReplaceAll(strings.TrimSpace(s.Name), " ", "_"), "")
	nis := unsafeFileChars.ReplaceAllString(s.NIS, "")
	return fmt.Sprintf("%s_%s.png", nis, name)
}

// EncodeQR renders a scan token as a PNG.
func EncodeQR(token string, size int) ([]byte, error) {
	if size <= 0 {
		size = 300
	}
	return qrcode.Encode(token, qrcode.Medium, size)
}

// StudentService student directory business interface.
type StudentService interface {
	List(ctx context.Context, req *dto.StudentListRequest) ([]dto.StudentResponse, error)
	GetByID(ctx context.Context, id string) (*dto.StudentResponse, error)
	Create(ctx context.Context, req *dto.StudentRequest) (*dto.StudentResponse, error)
	Update(ctx context.Context, id string, req *dto.StudentRequest) (*dto.StudentResponse, error)
	Delete(ctx context.Context, id string) error
	Classes(ctx context.Context) ([]string, error)
	History(ctx context.Context, id string, req *dto.StudentHistoryRequest) (*dto.StudentHistoryResponse, error)
	QRCode(ctx context.Context, id string) ([]byte, string, error)
	Template() (*bytes.Buffer, string, error)
	Import(ctx context.Context, upload *ImportUpload) (*dto.ImportResponse, error)
}

type studentService struct {
	repo         *repository.Repository
	qrSize       int
	historyLimit int
	maxUpload    int64
	logger       *zap.Logger
}

// StudentOptions tunes the student service.
type StudentOptions struct {
	QRCodeSize     int
	HistoryLimit   int
	MaxUploadBytes int64
}

// NewStudentService creates a StudentService.
func NewStudentService(repo *repository.Repository, opts StudentOptions, logger *zap.Logger) StudentService {
	if opts.HistoryLimit < minHistoryLimit || opts.HistoryLimit > maxHistoryLimit {
		opts.HistoryLimit = 50
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 5 << 20
	}
	return &studentService{
		repo:         repo,
		qrSize:       opts.QRCodeSize,
		historyLimit: opts.HistoryLimit,
		maxUpload:    opts.MaxUploadBytes,
		logger:       logger,
	}
}

// ────────────────────── List / GetByID / Classes ──────────────────────

func (s *studentService) List(ctx context.Context, req *dto.StudentListRequest) ([]dto.StudentResponse, error) {
	students, err := s.repo.Student.List(ctx, repository.StudentFilter{Class: req.Class, Search: req.Search})
	if err != nil {
		s.logger.Error("list students failed", zap.Error(err))
		return nil, err
	}
	result := make([]dto.StudentResponse, 0, len(students))
	for i := range students {
		result = append(result, toStudentResponse(&students[i]))
	}
	return result, nil
}

func (s *studentService) GetByID(ctx context.Context, id string) (*dto.StudentResponse, error) {
	student, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toStudentResponse(student)
	return &resp, nil
}

func (s *studentService) Classes(ctx context.Context) ([]string, error) {
	classes, err := s.repo.Student.Classes(ctx)
	if err != nil {
		s.logger.Error("list classes failed", zap.Error(err))
		return nil, err
	}
	if classes == nil {
		classes = []string{}
	}
	return classes, nil
}

// ────────────────────── Create ──────────────────────

func (s *studentService) Create(ctx context.Context, req *dto.StudentRequest) (*dto.StudentResponse, error) {
	nis := strings.TrimSpace(req.NIS)

	// 1. NIS must be free
	if _, err := s.repo.Student.GetByNIS(ctx, nis); err == nil {
		return nil, ErrNISTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("lookup NIS failed", zap.Error(err))
		return nil, err
	}

	// 2. insert with a fresh QR token
	student := &model.Student{
		NIS:    nis,
		Name:   strings.TrimSpace(req.Name),
		Class:  strings.TrimSpace(req.Class),
		QRCode: NewQRToken(nis),
	}
	applyOptionalFields(student, req)

	if err := s.repo.Student.Create(ctx, student); err != nil {
		if pkgerrors.IsUniqueViolation(err, "uq_students_nis") {
			return nil, ErrNISTaken
		}
		s.logger.Error("create student failed", zap.Error(err))
		return nil, err
	}

	s.logger.Info("student created", zap.String("id", student.ID), zap.String("nis", student.NIS))
	resp := toStudentResponse(student)
	return &resp, nil
}

// ────────────────────── Update ──────────────────────

func (s *studentService) Update(ctx context.Context, id string, req *dto.StudentRequest) (*dto.StudentResponse, error) {
	student, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	nis := strings.TrimSpace(req.NIS)
	if nis != student.NIS {
		other, err := s.repo.Student.GetByNIS(ctx, nis)
		if err == nil && other.ID != student.ID {
			return nil, ErrNISTaken
		}
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("lookup NIS failed", zap.Error(err))
			return nil, err
		}
	}

	student.NIS = nis
	student.Name = strings.TrimSpace(req.Name)
	student.Class = strings.TrimSpace(req.Class)
	applyOptionalFields(student, req)

	if err := s.repo.Student.Update(ctx, student); err != nil {
		if pkgerrors.IsUniqueViolation(err, "uq_students_nis") {
			return nil, ErrNISTaken
		}
		s.logger.Error("update student failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	resp := toStudentResponse(student)
	return &resp, nil
}

// ────────────────────── Delete ──────────────────────

func (s *studentService) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrStudentNotFound
	}
	if err := s.repo.Student.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrStudentNotFound
		}
		s.logger.Error("delete student failed", zap.String("id", id), zap.Error(err))
		return err
	}
	s.logger.Info("student deleted", zap.String("id", id))
	return nil
}

// ────────────────────── History ──────────────────────

// History returns the student's rows. startDate/endDate take precedence over
// month+year, which take precedence over year alone.
func (s *studentService) History(ctx context.Context, id string, req *dto.StudentHistoryRequest) (*dto.StudentHistoryResponse, error) {
	student, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	filter := repository.HistoryFilter{
		Limit:     s.historyLimit,
		SortBy:    req.SortBy,
		SortOrder: req.SortOrder,
	}
	if req.Limit >= minHistoryLimit && req.Limit <= maxHistoryLimit {
		filter.Limit = req.Limit
	}

	switch {
	case req.StartDate != "" || req.EndDate != "":
		filter.StartDate = model.Date(req.StartDate)
		filter.EndDate = model.Date(req.EndDate)
	case req.Month > 0 && req.Year > 0:
		first := time.Date(req.Year, time.Month(req.Month), 1, 0, 0, 0, 0, time.UTC)
		filter.StartDate = model.NewDate(first)
		filter.EndDate = model.NewDate(first.AddDate(0, 1, -1))
	case req.Year > 0:
		filter.StartDate = model.NewDate(time.Date(req.Year, time.January, 1, 0, 0, 0, 0, time.UTC))
		filter.EndDate = model.NewDate(time.Date(req.Year, time.December, 31, 0, 0, 0, 0, time.UTC))
	}

	rows, err := s.repo.Attendance.History(ctx, student.ID, filter)
	if err != nil {
		s.logger.Error("load history failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	items := make([]dto.HistoryItem, 0, len(rows))
	for _, r := range rows {
		items = append(items, dto.HistoryItem{
			Date:      string(r.Date),
			TimeIn:    shortClock(r.TimeIn),
			TimeOut:   shortClock(r.TimeOut),
			Status:    r.Status,
			CreatedAt: r.CreatedAt.Format(time.RFC3339),
			UpdatedAt: r.UpdatedAt.Format(time.RFC3339),
		})
	}

	return &dto.StudentHistoryResponse{
		Student:    toStudentResponse(student),
		Attendance: items,
		Count:      len(items),
	}, nil
}

// ────────────────────── QRCode ──────────────────────

func (s *studentService) QRCode(ctx context.Context, id string) ([]byte, string, error) {
	student, err := s.get(ctx, id)
	if err != nil {
		return nil, "", err
	}
	png, err := EncodeQR(student.QRCode, s.qrSize)
	if err != nil {
		s.logger.Error("encode QR failed", zap.String("id", id), zap.Error(err))
		return nil, "", ErrQRGenerateFail
	}
	return png, QRFileName(student), nil
}

// ────────────────────── Template ──────────────────────

// Template builds the import spreadsheet: the seven roster headers and one
// example row.
func (s *studentService) Template() (*bytes.Buffer, string, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Template Data Siswa"
	idx, _ := f.NewSheet(sheet)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	example := []string{"12345678", "Contoh Nama Siswa", "10A", "L", "2005-01-15", "Jl. Contoh No. 123", "081234567890"}
	widths := []float64{12, 25, 8, 15, 15, 30, 15}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	textStyle, _ := f.NewStyle(&excelize.Style{NumFmt: 49}) // "@" keeps NIS and dates as text

	for i, h := range RosterHeaders {
		col := colName(i)
		f.SetCellValue(sheet, cell(col, 1), h)
		f.SetCellStyle(sheet, cell(col, 1), cell(col, 1), headerStyle)
		f.SetCellStr(sheet, cell(col, 2), example[i])
		f.SetColWidth(sheet, col, col, widths[i])
	}
	f.SetColStyle(sheet, "A", textStyle)
	f.SetColStyle(sheet, "E", textStyle)
	f.SetColStyle(sheet, "G", textStyle)

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("write template failed", zap.Error(err))
		return nil, "", ErrTemplateBuildFail
	}
	return buf, "template_data_siswa.xlsx", nil
}

// ── helpers ──

func (s *studentService) get(ctx context.Context, id string) (*model.Student, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrStudentNotFound
	}
	student, err := s.repo.Student.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		s.logger.Error("get student failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return student, nil
}

func applyOptionalFields(st *model.Student, req *dto.StudentRequest) {
	st.Gender = trimmedOrNil(req.Gender)
	st.Address = trimmedOrNil(req.Address)
	st.Phone = trimmedOrNil(req.Phone)
	st.BirthDate = nil
	if bd := trimmedOrNil(req.BirthDate); bd != nil {
		d := model.Date(*bd)
		st.BirthDate = &d
	}
}

func trimmedOrNil(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}

func shortClock(c *model.Clock) *string {
	if c == nil || *c == "" {
		return nil
	}
	v := c.Short()
	return &v
}

func toStudentResponse(st *model.Student) dto.StudentResponse {
	resp := dto.StudentResponse{
		ID:        st.ID,
		NIS:       st.NIS,
		Name:      st.Name,
		Class:     st.Class,
		QRCode:    st.QRCode,
		Gender:    st.Gender,
		Address:   st.Address,
		Phone:     st.Phone,
		CreatedAt: st.CreatedAt.Format(time.RFC3339),
		UpdatedAt: st.UpdatedAt.Format(time.RFC3339),
	}
	if st.BirthDate != nil && *st.BirthDate != "" {
		bd := string(*st.BirthDate)
		resp.BirthDate = &bd
	}
	return resp
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
