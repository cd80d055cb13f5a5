package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"qr-attendance/backend/internal/dto"
	"qr-attendance/backend/internal/model"
	"qr-attendance/backend/internal/repository"
	pkgerrors "qr-attendance/backend/pkg/errors"
	"qr-attendance/backend/pkg/metrics"
)

// ── attendance errors ──

var (
	ErrQRCodeRequired     = errors.New("QR code is required")
	ErrQRCodeUnknown      = errors.New("invalid QR code or student not found")
	ErrAttendanceNotFound = errors.New("attendance record not found")
	ErrInvalidStatus      = errors.New("invalid status, use present, excused-leave, sick or absent")
	ErrInvalidDate        = errors.New("invalid date, use YYYY-MM-DD")
)

const uniqueStudentDate = "uq_attendances_student_date"

// overridableStatuses are the statuses staff may set by hand.
var overridableStatuses = map[string]bool{
	model.StatusPresent:      true,
	model.StatusExcusedLeave: true,
	model.StatusSick:         true,
	model.StatusAbsent:       true,
}

// ScanOutcome is an accepted scan with its confirmation message.
type ScanOutcome struct {
	Message string
	Data    dto.ScanResponse
}

// AttendanceService attendance ledger business interface.
type AttendanceService interface {
	Scan(ctx context.Context, req *dto.ScanRequest) (*ScanOutcome, error)
	List(ctx context.Context, req *dto.AttendanceListRequest) ([]dto.AttendanceResponse, error)
	UpdateStatus(ctx context.Context, id string, req *dto.UpdateAttendanceStatusRequest) error
	Stats(ctx context.Context, req *dto.AttendanceDayRequest) (*dto.StatsResponse, error)
	MarkAbsent(ctx context.Context, date string) (int64, error)
}

type attendanceService struct {
	repo     *repository.Repository
	settings SettingService
	loc      *time.Location
	now      func() time.Time
	logger   *zap.Logger
}

// NewAttendanceService creates an AttendanceService. loc decides what
// "today" and the scan clock mean.
func NewAttendanceService(repo *repository.Repository, settings SettingService, loc *time.Location, logger *zap.Logger) AttendanceService {
	if loc == nil {
		loc = time.Local
	}
	return &attendanceService{
		repo:     repo,
		settings: settings,
		loc:      loc,
		now:      time.Now,
		logger:   logger,
	}
}

// ────────────────────── Scan ──────────────────────

func (s *attendanceService) Scan(ctx context.Context, req *dto.ScanRequest) (*ScanOutcome, error) {
	qr := strings.TrimSpace(req.QRCode)
	if qr == "" {
		return nil, ErrQRCodeRequired
	}

	// 1. resolve the student
	student, err := s.repo.Student.GetByQRCode(ctx, qr)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			metrics.ObserveScan(metrics.ScanUnknown)
			return nil, ErrQRCodeUnknown
		}
		s.logger.Error("lookup QR code failed", zap.Error(err))
		metrics.ObserveScan(metrics.ScanError)
		return nil, err
	}

	// 2. snapshot the windows
	sched, err := s.settings.Schedule(ctx)
	if err != nil {
		metrics.ObserveScan(metrics.ScanError)
		return nil, err
	}

	now := s.now().In(s.loc)
	date := model.NewDate(now)
	clock := model.NewClock(now)

	// 3. classify and write under the student row lock
	var (
		decision ScanDecision
		row      *model.Attendance
	)
	err = s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		if _, err := txRepo.Student.LockByID(ctx, student.ID); err != nil {
			return err
		}

		today, err := txRepo.Attendance.GetByStudentAndDate(ctx, student.ID, date)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			today = nil
		}

		decision, err = Classify(today, now, sched, student.Name)
		if err != nil {
			return err
		}

		switch {
		case decision.Kind == ScanDeparture:
			if err := txRepo.Attendance.SetTimeOut(ctx, today.ID, clock); err != nil {
				return err
			}
			today.TimeOut = &clock
			row = today

		case today != nil:
			if err := txRepo.Attendance.RecordArrival(ctx, today.ID, clock, decision.Status); err != nil {
				return err
			}
			today.TimeIn = &clock
			today.Status = decision.Status
			row = today

		default:
			row = &model.Attendance{
				StudentID: student.ID,
				Date:      date,
				TimeIn:    &clock,
				Status:    decision.Status,
			}
			if err := txRepo.Attendance.Create(ctx, row); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		var rejected *ScanRejectedError
		if errors.As(err, &rejected) {
			metrics.ObserveScan(metrics.ScanRejected)
			return nil, rejected
		}
		if pkgerrors.IsUniqueViolation(err, uniqueStudentDate) {
			// a concurrent scan inserted today's row first
			metrics.ObserveScan(metrics.ScanRejected)
			return nil, &ScanRejectedError{
				Reason:  RejectAlreadyCheckedIn,
				Message: student.Name + " already checked in today",
			}
		}
		s.logger.Error("record scan failed", zap.String("student_id", student.ID), zap.Error(err))
		metrics.ObserveScan(metrics.ScanError)
		return nil, err
	}

	metrics.ObserveScan(string(decision.Kind))
	s.logger.Info("scan recorded",
		zap.String("student_id", student.ID),
		zap.String("type", string(decision.Kind)),
		zap.String("status", row.Status),
	)

	return &ScanOutcome{
		Message: scanMessage(decision),
		Data: dto.ScanResponse{
			Student: dto.ScanStudent{
				ID:    student.ID,
				Name:  student.Name,
				NIS:   student.NIS,
				Class: student.Class,
			},
			Attendance: dto.ScanAttendance{
				ID:      row.ID,
				Date:    string(row.Date),
				TimeIn:  clockPtr(row.TimeIn),
				TimeOut: clockPtr(row.TimeOut),
				Status:  row.Status,
				Type:    string(decision.Kind),
			},
		},
	}, nil
}

func scanMessage(d ScanDecision) string {
	switch {
	case d.Kind == ScanDeparture:
		return "Departure recorded"
	case d.Status == model.StatusLate:
		return "Arrival recorded (late)"
	}
	return "Arrival recorded"
}

// ────────────────────── List ──────────────────────

func (s *attendanceService) List(ctx context.Context, req *dto.AttendanceListRequest) ([]dto.AttendanceResponse, error) {
	rows, err := s.repo.Attendance.List(ctx, repository.AttendanceFilter{
		Date:      model.Date(req.Date),
		Class:     req.Class,
		StudentID: req.StudentID,
		SortBy:    req.SortBy,
		SortOrder: req.SortOrder,
	})
	if err != nil {
		s.logger.Error("list attendance failed", zap.Error(err))
		return nil, err
	}

	result := make([]dto.AttendanceResponse, 0, len(rows))
	for i := range rows {
		result = append(result, toAttendanceResponse(&rows[i]))
	}
	return result, nil
}

// ────────────────────── UpdateStatus ──────────────────────

func (s *attendanceService) UpdateStatus(ctx context.Context, id string, req *dto.UpdateAttendanceStatusRequest) error {
	if !overridableStatuses[req.Status] {
		return ErrInvalidStatus
	}
	if _, err := uuid.Parse(id); err != nil {
		return ErrAttendanceNotFound
	}

	if err := s.repo.Attendance.UpdateStatus(ctx, id, req.Status); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAttendanceNotFound
		}
		s.logger.Error("update attendance status failed", zap.String("id", id), zap.Error(err))
		return err
	}

	s.logger.Info("attendance status updated", zap.String("id", id), zap.String("status", req.Status))
	return nil
}

// ────────────────────── Stats ──────────────────────

func (s *attendanceService) Stats(ctx context.Context, req *dto.AttendanceDayRequest) (*dto.StatsResponse, error) {
	date, err := s.dayOrToday(req.Date)
	if err != nil {
		return nil, err
	}

	counts, err := s.repo.Attendance.CountByStatus(ctx, date, req.Class)
	if err != nil {
		s.logger.Error("count attendance failed", zap.Error(err))
		return nil, err
	}

	stats := make(map[string]int64, len(model.AllStatuses))
	var total int64
	for _, st := range model.AllStatuses {
		stats[st] = counts[st]
		total += counts[st]
	}

	class := req.Class
	if class == "" {
		class = "all"
	}
	return &dto.StatsResponse{Date: string(date), Class: class, Stats: stats, Total: total}, nil
}

// ────────────────────── MarkAbsent ──────────────────────

// MarkAbsent writes an absent row for every student with no row on date.
// An empty date means today. Existing rows are never touched.
func (s *attendanceService) MarkAbsent(ctx context.Context, date string) (int64, error) {
	day, err := s.dayOrToday(date)
	if err != nil {
		return 0, err
	}

	students, err := s.repo.Student.ListWithoutAttendance(ctx, day)
	if err != nil {
		s.logger.Error("list students without attendance failed", zap.Error(err))
		return 0, err
	}
	if len(students) == 0 {
		return 0, nil
	}

	rows := make([]model.Attendance, 0, len(students))
	for _, st := range students {
		rows = append(rows, model.Attendance{
			StudentID: st.ID,
			Date:      day,
			Status:    model.StatusAbsent,
		})
	}

	n, err := s.repo.Attendance.CreateSkipExisting(ctx, rows)
	if err != nil {
		s.logger.Error("mark absent failed", zap.String("date", string(day)), zap.Error(err))
		return 0, err
	}

	metrics.AbsencesMarked.Add(float64(n))
	s.logger.Info("students marked absent", zap.String("date", string(day)), zap.Int64("count", n))
	return n, nil
}

// ── helpers ──

// dayOrToday parses a YYYY-MM-DD date; empty means today in the school
// timezone.
func (s *attendanceService) dayOrToday(v string) (model.Date, error) {
	if v == "" {
		return model.NewDate(s.now().In(s.loc)), nil
	}
	t, err := time.Parse(model.DateLayout, v)
	if err != nil {
		return "", ErrInvalidDate
	}
	return model.NewDate(t), nil
}

func clockPtr(c *model.Clock) *string {
	if c == nil || *c == "" {
		return nil
	}
	v := string(*c)
	return &v
}

func toAttendanceResponse(a *model.Attendance) dto.AttendanceResponse {
	resp := dto.AttendanceResponse{
		ID:        a.ID,
		Date:      string(a.Date),
		TimeIn:    clockPtr(a.TimeIn),
		TimeOut:   clockPtr(a.TimeOut),
		Status:    a.Status,
		StudentID: a.StudentID,
		CreatedAt: a.CreatedAt.Format(time.RFC3339),
		UpdatedAt: a.UpdatedAt.Format(time.RFC3339),
	}
	if a.Student != nil {
		resp.NIS = a.Student.NIS
		resp.StudentName = a.Student.Name
		resp.Class = a.Student.Class
	}
	return resp
}
