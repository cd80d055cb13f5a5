package repository

import (
	"context"

	"gorm.io/gorm"

	"qr-attendance/backend/internal/model"
)

// SettingRepository settings table access. Rows are seeded by migration and
// only ever updated.
type SettingRepository interface {
	List(ctx context.Context) ([]model.Setting, error)
	GetByKey(ctx context.Context, key string) (*model.Setting, error)
	GetByKeys(ctx context.Context, keys []string) ([]model.Setting, error)
	UpdateValue(ctx context.Context, key, value string) error
}

type settingRepo struct {
	db *gorm.DB
}

// NewSettingRepo creates a SettingRepository.
func NewSettingRepo(db *gorm.DB) SettingRepository {
	return &settingRepo{db: db}
}

func (r *settingRepo) List(ctx context.Context) ([]model.Setting, error) {
	var settings []model.Setting
	err := r.db.WithContext(ctx).Order("setting_key ASC").Find(&settings).Error
	return settings, err
}

func (r *settingRepo) GetByKey(ctx context.Context, key string) (*model.Setting, error) {
	var setting model.Setting
	if err := r.db.WithContext(ctx).Where("setting_key = ?", key).First(&setting).Error; err != nil {
		return nil, err
	}
	return &setting, nil
}

func (r *settingRepo) GetByKeys(ctx context.Context, keys []string) ([]model.Setting, error) {
	var settings []model.Setting
	err := r.db.WithContext(ctx).Where("setting_key IN ?", keys).Find(&settings).Error
	return settings, err
}

func (r *settingRepo) UpdateValue(ctx context.Context, key, value string) error {
	result := r.db.WithContext(ctx).
		Model(&model.Setting{}).
		Where("setting_key = ?", key).
		Update("setting_value", value)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
