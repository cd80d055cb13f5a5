package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"qr-attendance/backend/internal/model"
)

// StudentFilter narrows List.
type StudentFilter struct {
	Class  string
	Search string // case-insensitive match on name or NIS
}

// StudentRepository student directory access.
type StudentRepository interface {
	Create(ctx context.Context, student *model.Student) error
	BatchCreate(ctx context.Context, students []model.Student) error
	GetByID(ctx context.Context, id string) (*model.Student, error)
	GetByNIS(ctx context.Context, nis string) (*model.Student, error)
	GetByQRCode(ctx context.Context, qrCode string) (*model.Student, error)
	LockByID(ctx context.Context, id string) (*model.Student, error)
	ListByNIS(ctx context.Context, nis []string) ([]model.Student, error)
	List(ctx context.Context, filter StudentFilter) ([]model.Student, error)
	ListWithoutAttendance(ctx context.Context, date model.Date) ([]model.Student, error)
	Classes(ctx context.Context) ([]string, error)
	Update(ctx context.Context, student *model.Student) error
	Delete(ctx context.Context, id string) error
}

type studentRepo struct {
	db *gorm.DB
}

// NewStudentRepo creates a StudentRepository.
func NewStudentRepo(db *gorm.DB) StudentRepository {
	return &studentRepo{db: db}
}

func (r *studentRepo) Create(ctx context.Context, student *model.Student) error {
	return r.db.WithContext(ctx).Create(student).Error
}

func (r *studentRepo) BatchCreate(ctx context.Context, students []model.Student) error {
	if len(students) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(students, 100).Error
}

func (r *studentRepo) GetByID(ctx context.Context, id string) (*model.Student, error) {
	var student model.Student
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&student).Error; err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *studentRepo) GetByNIS(ctx context.Context, nis string) (*model.Student, error) {
	var student model.Student
	if err := r.db.WithContext(ctx).Where("nis = ?", nis).First(&student).Error; err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *studentRepo) GetByQRCode(ctx context.Context, qrCode string) (*model.Student, error) {
	var student model.Student
	if err := r.db.WithContext(ctx).Where("qr_code = ?", qrCode).First(&student).Error; err != nil {
		return nil, err
	}
	return &student, nil
}

// LockByID reads the student with SELECT ... FOR UPDATE. Only meaningful
// inside a transaction.
func (r *studentRepo) LockByID(ctx context.Context, id string) (*model.Student, error) {
	var student model.Student
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&student).Error
	if err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *studentRepo) ListByNIS(ctx context.Context, nis []string) ([]model.Student, error) {
	var students []model.Student
	if len(nis) == 0 {
		return students, nil
	}
	err := r.db.WithContext(ctx).Where("nis IN ?", nis).Find(&students).Error
	return students, err
}

func (r *studentRepo) List(ctx context.Context, filter StudentFilter) ([]model.Student, error) {
	var students []model.Student

	db := r.db.WithContext(ctx).Model(&model.Student{})
	if filter.Class != "" {
		db = db.Where("class = ?", filter.Class)
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		like := "%" + s + "%"
		db = db.Where("name ILIKE ? OR nis ILIKE ?", like, like)
	}

	err := db.Order("class ASC").Order("name ASC").Find(&students).Error
	return students, err
}

func (r *studentRepo) ListWithoutAttendance(ctx context.Context, date model.Date) ([]model.Student, error) {
	var students []model.Student
	err := r.db.WithContext(ctx).
		Where("NOT EXISTS (SELECT 1 FROM attendances a WHERE a.student_id = students.id AND a.date = ?)", date).
		Order("class ASC").Order("name ASC").
		Find(&students).Error
	return students, err
}

func (r *studentRepo) Classes(ctx context.Context) ([]string, error) {
	var classes []string
	err := r.db.WithContext(ctx).
		Model(&model.Student{}).
		Distinct("class").
		Order("class ASC").
		Pluck("class", &classes).Error
	return classes, err
}

func (r *studentRepo) Update(ctx context.Context, student *model.Student) error {
	return r.db.WithContext(ctx).
		Model(student).
		Where("id = ?", student.ID).
		Updates(map[string]interface{}{
			"nis":        student.NIS,
			"name":       student.Name,
			"class":      student.Class,
			"gender":     student.Gender,
			"birth_date": student.BirthDate,
			"address":    student.Address,
			"phone":      student.Phone,
		}).Error
}

// Delete removes the student; attendance rows go with it through the FK cascade.
func (r *studentRepo) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Student{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
