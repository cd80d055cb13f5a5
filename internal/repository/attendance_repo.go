package repository

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"qr-attendance/backend/internal/model"
)

// ── sorting ──

var attendanceSortColumns = map[string]bool{
	"updated_at": true,
	"created_at": true,
	"date":       true,
	"time_in":    true,
	"time_out":   true,
}

// orderClause whitelists the sort column and direction, falling back to
// updated_at DESC.
func orderClause(sortBy, sortOrder string) string {
	col := sortBy
	if !attendanceSortColumns[col] {
		col = "updated_at"
	}
	dir := strings.ToUpper(sortOrder)
	if dir != "ASC" && dir != "DESC" {
		dir = "DESC"
	}
	return fmt.Sprintf("attendances.%s %s", col, dir)
}

// AttendanceFilter narrows List.
type AttendanceFilter struct {
	Date      model.Date
	Class     string
	StudentID string
	SortBy    string
	SortOrder string
}

// HistoryFilter narrows one student's history. Empty dates are unbounded.
type HistoryFilter struct {
	StartDate model.Date
	EndDate   model.Date
	Limit     int
	SortBy    string
	SortOrder string
}

// AttendanceRepository attendance ledger access.
type AttendanceRepository interface {
	Create(ctx context.Context, attendance *model.Attendance) error
	CreateSkipExisting(ctx context.Context, rows []model.Attendance) (int64, error)
	GetByID(ctx context.Context, id string) (*model.Attendance, error)
	GetByStudentAndDate(ctx context.Context, studentID string, date model.Date) (*model.Attendance, error)
	List(ctx context.Context, filter AttendanceFilter) ([]model.Attendance, error)
	History(ctx context.Context, studentID string, filter HistoryFilter) ([]model.Attendance, error)
	CountByStatus(ctx context.Context, date model.Date, class string) (map[string]int64, error)
	RecordArrival(ctx context.Context, id string, timeIn model.Clock, status string) error
	SetTimeOut(ctx context.Context, id string, timeOut model.Clock) error
	UpdateStatus(ctx context.Context, id, status string) error
}

type attendanceRepo struct {
	db *gorm.DB
}

// NewAttendanceRepo creates an AttendanceRepository.
func NewAttendanceRepo(db *gorm.DB) AttendanceRepository {
	return &attendanceRepo{db: db}
}

func (r *attendanceRepo) Create(ctx context.Context, attendance *model.Attendance) error {
	return r.db.WithContext(ctx).Omit("Student").Create(attendance).Error
}

// CreateSkipExisting inserts rows, ignoring those whose (student_id, date)
// already exists, and reports how many were written.
func (r *attendanceRepo) CreateSkipExisting(ctx context.Context, rows []model.Attendance) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "student_id"}, {Name: "date"}},
			DoNothing: true,
		}).
		Omit("Student").
		CreateInBatches(rows, 200)
	return result.RowsAffected, result.Error
}

func (r *attendanceRepo) GetByID(ctx context.Context, id string) (*model.Attendance, error) {
	var attendance model.Attendance
	err := r.db.WithContext(ctx).
		Preload("Student").
		Where("id = ?", id).
		First(&attendance).Error
	if err != nil {
		return nil, err
	}
	return &attendance, nil
}

func (r *attendanceRepo) GetByStudentAndDate(ctx context.Context, studentID string, date model.Date) (*model.Attendance, error) {
	var attendance model.Attendance
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND date = ?", studentID, date).
		First(&attendance).Error
	if err != nil {
		return nil, err
	}
	return &attendance, nil
}

func (r *attendanceRepo) List(ctx context.Context, filter AttendanceFilter) ([]model.Attendance, error) {
	var rows []model.Attendance

	db := r.db.WithContext(ctx).Joins("Student")
	if filter.Date != "" {
		db = db.Where("attendances.date = ?", filter.Date)
	}
	if filter.Class != "" {
		db = db.Where(`"Student".class = ?`, filter.Class)
	}
	if filter.StudentID != "" {
		db = db.Where("attendances.student_id = ?", filter.StudentID)
	}

	err := db.Order(orderClause(filter.SortBy, filter.SortOrder)).Find(&rows).Error
	return rows, err
}

func (r *attendanceRepo) History(ctx context.Context, studentID string, filter HistoryFilter) ([]model.Attendance, error) {
	var rows []model.Attendance

	db := r.db.WithContext(ctx).Where("attendances.student_id = ?", studentID)
	if filter.StartDate != "" {
		db = db.Where("attendances.date >= ?", filter.StartDate)
	}
	if filter.EndDate != "" {
		db = db.Where("attendances.date <= ?", filter.EndDate)
	}
	if filter.Limit > 0 {
		db = db.Limit(filter.Limit)
	}

	err := db.Order(orderClause(filter.SortBy, filter.SortOrder)).Find(&rows).Error
	return rows, err
}

func (r *attendanceRepo) CountByStatus(ctx context.Context, date model.Date, class string) (map[string]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}

	db := r.db.WithContext(ctx).
		Model(&model.Attendance{}).
		Select("attendances.status AS status, COUNT(*) AS count").
		Joins("JOIN students ON students.id = attendances.student_id").
		Where("attendances.date = ?", date)
	if class != "" {
		db = db.Where("students.class = ?", class)
	}

	if err := db.Group("attendances.status").Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// RecordArrival fills the arrival of a row that exists without one, such as
// a row pre-marked absent.
func (r *attendanceRepo) RecordArrival(ctx context.Context, id string, timeIn model.Clock, status string) error {
	result := r.db.WithContext(ctx).
		Model(&model.Attendance{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"time_in": timeIn,
			"status":  status,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *attendanceRepo) SetTimeOut(ctx context.Context, id string, timeOut model.Clock) error {
	return r.updateColumn(ctx, id, "time_out", timeOut)
}

func (r *attendanceRepo) UpdateStatus(ctx context.Context, id, status string) error {
	return r.updateColumn(ctx, id, "status", status)
}

func (r *attendanceRepo) updateColumn(ctx context.Context, id, column string, value interface{}) error {
	result := r.db.WithContext(ctx).
		Model(&model.Attendance{}).
		Where("id = ?", id).
		Update(column, value)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
