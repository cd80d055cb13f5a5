package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository aggregates every repository.
type Repository struct {
	db *gorm.DB

	Student    StudentRepository
	Attendance AttendanceRepository
	Setting    SettingRepository
	User       UserRepository
}

// NewRepository creates the aggregate bound to db.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:         db,
		Student:    NewStudentRepo(db),
		Attendance: NewAttendanceRepo(db),
		Setting:    NewSettingRepo(db),
		User:       NewUserRepo(db),
	}
}

// BeginTx opens a transaction. It returns a nil tx when the aggregate has
// no database, which is the case for repositories assembled from mocks.
func (r *Repository) BeginTx(ctx context.Context) (*gorm.DB, error) {
	if r.db == nil {
		return nil, nil
	}
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	return tx, nil
}

// WithTx returns an aggregate whose repositories run on tx.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return NewRepository(tx)
}

// Transaction runs fn inside one transaction and commits when fn returns nil.
func (r *Repository) Transaction(ctx context.Context, fn func(txRepo *Repository) error) (err error) {
	tx, err := r.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			if tx != nil {
				tx.Rollback()
			}
			panic(p)
		}
	}()

	if err := fn(r.WithTx(tx)); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		return err
	}

	if tx != nil {
		return tx.Commit().Error
	}
	return nil
}
