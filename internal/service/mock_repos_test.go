package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"qr-attendance/backend/internal/model"
	"qr-attendance/backend/internal/repository"
)

// pgUUIDCheck mirrors PostgreSQL rejecting a non-UUID literal for a uuid column.
func pgUUIDCheck(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return &pgconn.PgError{Code: "22P02", Message: fmt.Sprintf("invalid input syntax for type uuid: %q", id)}
	}
	return nil
}

func uniqueViolation(constraint string) error {
	return &pgconn.PgError{Code: "23505", ConstraintName: constraint}
}

// ── Mock StudentRepository ──

type mockStudentRepo struct {
	students  map[string]*model.Student // key: id
	seq       int
	locked    []string
	createErr error // returned by Create when set
}

func newMockStudentRepo() *mockStudentRepo {
	return &mockStudentRepo{students: make(map[string]*model.Student)}
}

func (m *mockStudentRepo) nextID() string {
	m.seq++
	return fmt.Sprintf("00000000-0000-0000-0000-%012d", m.seq)
}

func (m *mockStudentRepo) Create(_ context.Context, student *model.Student) error {
	if m.createErr != nil {
		return m.createErr
	}
	for _, s := range m.students {
		if s.NIS == student.NIS {
			return uniqueViolation("uq_students_nis")
		}
		if s.QRCode == student.QRCode {
			return uniqueViolation("uq_students_qr_code")
		}
	}
	if student.ID == "" {
		student.ID = m.nextID()
	}
	m.students[student.ID] = student
	return nil
}

func (m *mockStudentRepo) BatchCreate(ctx context.Context, students []model.Student) error {
	for i := range students {
		if err := m.Create(ctx, &students[i]); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockStudentRepo) GetByID(_ context.Context, id string) (*model.Student, error) {
	if err := pgUUIDCheck(id); err != nil {
		return nil, err
	}
	if s, ok := m.students[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStudentRepo) GetByNIS(_ context.Context, nis string) (*model.Student, error) {
	for _, s := range m.students {
		if s.NIS == nis {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStudentRepo) GetByQRCode(_ context.Context, qrCode string) (*model.Student, error) {
	for _, s := range m.students {
		if s.QRCode == qrCode {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStudentRepo) LockByID(ctx context.Context, id string) (*model.Student, error) {
	m.locked = append(m.locked, id)
	return m.GetByID(ctx, id)
}

func (m *mockStudentRepo) ListByNIS(_ context.Context, nis []string) ([]model.Student, error) {
	want := make(map[string]bool, len(nis))
	for _, n := range nis {
		want[n] = true
	}
	var result []model.Student
	for _, s := range m.students {
		if want[s.NIS] {
			result = append(result, *s)
		}
	}
	return result, nil
}

func (m *mockStudentRepo) List(_ context.Context, filter repository.StudentFilter) ([]model.Student, error) {
	var result []model.Student
	search := strings.ToLower(filter.Search)
	for _, s := range m.students {
		if filter.Class != "" && s.Class != filter.Class {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(s.Name), search) && !strings.Contains(strings.ToLower(s.NIS), search) {
			continue
		}
		result = append(result, *s)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Class != result[j].Class {
			return result[i].Class < result[j].Class
		}
		return result[i].Name < result[j].Name
	})
	return result, nil
}

// attendance is consulted by ListWithoutAttendance when set.
var mockAttendanceForStudents *mockAttendanceRepo

func (m *mockStudentRepo) ListWithoutAttendance(ctx context.Context, date model.Date) ([]model.Student, error) {
	all, _ := m.List(ctx, repository.StudentFilter{})
	if mockAttendanceForStudents == nil {
		return all, nil
	}
	var result []model.Student
	for _, s := range all {
		if _, err := mockAttendanceForStudents.GetByStudentAndDate(ctx, s.ID, date); err != nil {
			result = append(result, s)
		}
	}
	return result, nil
}

func (m *mockStudentRepo) Classes(_ context.Context) ([]string, error) {
	seen := make(map[string]bool)
	var result []string
	for _, s := range m.students {
		if !seen[s.Class] {
			seen[s.Class] = true
			result = append(result, s.Class)
		}
	}
	sort.Strings(result)
	return result, nil
}

func (m *mockStudentRepo) Update(_ context.Context, student *model.Student) error {
	if _, ok := m.students[student.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.students[student.ID] = student
	return nil
}

func (m *mockStudentRepo) Delete(_ context.Context, id string) error {
	if err := pgUUIDCheck(id); err != nil {
		return err
	}
	if _, ok := m.students[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.students, id)
	return nil
}

// ── Mock AttendanceRepository ──

type mockAttendanceRepo struct {
	rows      map[string]*model.Attendance // key: id
	seq       int
	writes    int
	createErr error // returned by Create when set
}

func newMockAttendanceRepo() *mockAttendanceRepo {
	return &mockAttendanceRepo{rows: make(map[string]*model.Attendance)}
}

func (m *mockAttendanceRepo) Create(_ context.Context, a *model.Attendance) error {
	if m.createErr != nil {
		return m.createErr
	}
	for _, r := range m.rows {
		if r.StudentID == a.StudentID && r.Date == a.Date {
			return uniqueViolation("uq_attendances_student_date")
		}
	}
	m.seq++
	a.ID = fmt.Sprintf("00000000-0000-0000-0001-%012d", m.seq)
	cp := *a
	m.rows[a.ID] = &cp
	m.writes++
	return nil
}

func (m *mockAttendanceRepo) CreateSkipExisting(ctx context.Context, rows []model.Attendance) (int64, error) {
	var n int64
	for i := range rows {
		if err := m.Create(ctx, &rows[i]); err == nil {
			n++
		}
	}
	return n, nil
}

func (m *mockAttendanceRepo) GetByID(_ context.Context, id string) (*model.Attendance, error) {
	if r, ok := m.rows[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAttendanceRepo) GetByStudentAndDate(_ context.Context, studentID string, date model.Date) (*model.Attendance, error) {
	for _, r := range m.rows {
		if r.StudentID == studentID && r.Date == date {
			cp := *r
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAttendanceRepo) List(_ context.Context, filter repository.AttendanceFilter) ([]model.Attendance, error) {
	var result []model.Attendance
	for _, r := range m.rows {
		if filter.Date != "" && r.Date != filter.Date {
			continue
		}
		if filter.StudentID != "" && r.StudentID != filter.StudentID {
			continue
		}
		if filter.Class != "" && (r.Student == nil || r.Student.Class != filter.Class) {
			continue
		}
		result = append(result, *r)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *mockAttendanceRepo) History(_ context.Context, studentID string, filter repository.HistoryFilter) ([]model.Attendance, error) {
	var result []model.Attendance
	for _, r := range m.rows {
		if r.StudentID != studentID {
			continue
		}
		if filter.StartDate != "" && r.Date < filter.StartDate {
			continue
		}
		if filter.EndDate != "" && r.Date > filter.EndDate {
			continue
		}
		result = append(result, *r)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date > result[j].Date })
	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, nil
}

func (m *mockAttendanceRepo) CountByStatus(_ context.Context, date model.Date, class string) (map[string]int64, error) {
	counts := make(map[string]int64)
	for _, r := range m.rows {
		if r.Date != date {
			continue
		}
		if class != "" && (r.Student == nil || r.Student.Class != class) {
			continue
		}
		counts[r.Status]++
	}
	return counts, nil
}

func (m *mockAttendanceRepo) RecordArrival(_ context.Context, id string, timeIn model.Clock, status string) error {
	r, ok := m.rows[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	r.TimeIn = &timeIn
	r.Status = status
	m.writes++
	return nil
}

func (m *mockAttendanceRepo) SetTimeOut(_ context.Context, id string, timeOut model.Clock) error {
	r, ok := m.rows[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	r.TimeOut = &timeOut
	m.writes++
	return nil
}

func (m *mockAttendanceRepo) UpdateStatus(_ context.Context, id, status string) error {
	if err := pgUUIDCheck(id); err != nil {
		return err
	}
	r, ok := m.rows[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	r.Status = status
	m.writes++
	return nil
}

// ── Mock SettingRepository ──

type mockSettingRepo struct {
	settings map[string]*model.Setting
	updates  int
}

func newMockSettingRepo() *mockSettingRepo {
	m := &mockSettingRepo{settings: make(map[string]*model.Setting)}
	seed := map[string]string{
		model.SettingArrivalStart:   "06:30:00",
		model.SettingArrivalEnd:     "07:30:00",
		model.SettingDepartureStart: "15:00:00",
		model.SettingDepartureEnd:   "17:00:00",
		model.SettingLateTolerance:  "15",
		model.SettingSchoolName:     "SMA Negeri 1",
	}
	for k, v := range seed {
		m.settings[k] = &model.Setting{SettingKey: k, SettingValue: v}
	}
	return m
}

func (m *mockSettingRepo) List(_ context.Context) ([]model.Setting, error) {
	var result []model.Setting
	for _, s := range m.settings {
		result = append(result, *s)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].SettingKey < result[j].SettingKey })
	return result, nil
}

func (m *mockSettingRepo) GetByKey(_ context.Context, key string) (*model.Setting, error) {
	if s, ok := m.settings[key]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSettingRepo) GetByKeys(_ context.Context, keys []string) ([]model.Setting, error) {
	var result []model.Setting
	for _, k := range keys {
		if s, ok := m.settings[k]; ok {
			result = append(result, *s)
		}
	}
	return result, nil
}

func (m *mockSettingRepo) UpdateValue(_ context.Context, key, value string) error {
	s, ok := m.settings[key]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	s.SettingValue = value
	m.updates++
	return nil
}

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User // key: id
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.ID == "" {
		user.ID = "user-" + user.Username
	}
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Count(_ context.Context) (int64, error) {
	return int64(len(m.users)), nil
}

func (m *mockUserRepo) UpdatePassword(_ context.Context, id, passwordHash string) error {
	u, ok := m.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

// ── aggregate ──

type mockRepos struct {
	student    *mockStudentRepo
	attendance *mockAttendanceRepo
	setting    *mockSettingRepo
	user       *mockUserRepo
}

// newMockRepository builds a Repository without a database; its
// Transaction runs the callback directly.
func newMockRepository() (*repository.Repository, *mockRepos) {
	m := &mockRepos{
		student:    newMockStudentRepo(),
		attendance: newMockAttendanceRepo(),
		setting:    newMockSettingRepo(),
		user:       newMockUserRepo(),
	}
	repo := &repository.Repository{
		Student:    m.student,
		Attendance: m.attendance,
		Setting:    m.setting,
		User:       m.user,
	}
	return repo, m
}
