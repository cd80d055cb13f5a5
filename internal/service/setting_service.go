package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"qr-attendance/backend/internal/dto"
	"qr-attendance/backend/internal/model"
	"qr-attendance/backend/internal/repository"
)

// ── setting errors ──

var (
	ErrSettingNotFound    = errors.New("setting not found")
	ErrSettingValueEmpty  = errors.New("setting value must not be empty")
	ErrInvalidTimeFormat  = errors.New("invalid time format, use HH:MM or HH:MM:SS")
	ErrInvalidTolerance   = errors.New("tolerance must be a non-negative integer")
	ErrNoSettingsProvided = errors.New("no settings provided")
)

const defaultSchoolName = "School"

var clockPattern = regexp.MustCompile(`^([01]?[0-9]|2[0-3]):([0-5][0-9])(?::([0-5][0-9]))?$`)

// NormalizeSettingValue validates value for key and returns its stored form.
// Time keys accept '.' as separator and are stored as HH:MM:SS.
func NormalizeSettingValue(key, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", ErrSettingValueEmpty
	}

	if strings.Contains(key, "time") {
		m := clockPattern.FindStringSubmatch(strings.ReplaceAll(value, ".", ":"))
		if m == nil {
			return "", ErrInvalidTimeFormat
		}
		h, _ := strconv.Atoi(m[1])
		sec := m[3]
		if sec == "" {
			sec = "00"
		}
		return fmt.Sprintf("%02d:%s:%s", h, m[2], sec), nil
	}

	if key == model.SettingLateTolerance {
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return "", ErrInvalidTolerance
		}
		return strconv.Itoa(n), nil
	}

	return value, nil
}

// batchMessage phrases a validation failure for one key of a batch.
func batchMessage(key string, err error) string {
	switch {
	case errors.Is(err, ErrSettingValueEmpty):
		return fmt.Sprintf("Value for %s must not be empty", key)
	case errors.Is(err, ErrInvalidTimeFormat):
		return fmt.Sprintf("Invalid time format for %s", key)
	case errors.Is(err, ErrInvalidTolerance):
		return "Tolerance must be a non-negative integer"
	case errors.Is(err, ErrSettingNotFound):
		return fmt.Sprintf("Unknown setting %s", key)
	}
	return fmt.Sprintf("Invalid value for %s", key)
}

// SettingService settings business interface.
type SettingService interface {
	List(ctx context.Context) ([]dto.SettingResponse, error)
	Get(ctx context.Context, key string) (*dto.SettingResponse, error)
	Update(ctx context.Context, key, value string) (*dto.SettingUpdatedResponse, error)
	BatchUpdate(ctx context.Context, values map[string]string) (*dto.BatchUpdateResponse, error)
	Schedule(ctx context.Context) (Schedule, error)
	ScheduleView(ctx context.Context) (*dto.ScheduleResponse, error)
	SchoolName(ctx context.Context) string
}

type settingService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewSettingService creates a SettingService.
func NewSettingService(repo *repository.Repository, logger *zap.Logger) SettingService {
	return &settingService{repo: repo, logger: logger}
}

// ────────────────────── List / Get ──────────────────────

func (s *settingService) List(ctx context.Context) ([]dto.SettingResponse, error) {
	settings, err := s.repo.Setting.List(ctx)
	if err != nil {
		s.logger.Error("list settings failed", zap.Error(err))
		return nil, err
	}
	result := make([]dto.SettingResponse, 0, len(settings))
	for i := range settings {
		result = append(result, toSettingResponse(&settings[i]))
	}
	return result, nil
}

func (s *settingService) Get(ctx context.Context, key string) (*dto.SettingResponse, error) {
	setting, err := s.repo.Setting.GetByKey(ctx, key)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSettingNotFound
		}
		s.logger.Error("get setting failed", zap.String("key", key), zap.Error(err))
		return nil, err
	}
	resp := toSettingResponse(setting)
	return &resp, nil
}

// ────────────────────── Update ──────────────────────

func (s *settingService) Update(ctx context.Context, key, value string) (*dto.SettingUpdatedResponse, error) {
	// 1. empty check first, matching the batch ordering
	if strings.TrimSpace(value) == "" {
		return nil, ErrSettingValueEmpty
	}

	// 2. key must exist
	if _, err := s.repo.Setting.GetByKey(ctx, key); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSettingNotFound
		}
		s.logger.Error("get setting failed", zap.String("key", key), zap.Error(err))
		return nil, err
	}

	// 3. validate and normalize
	normalized, err := NormalizeSettingValue(key, value)
	if err != nil {
		return nil, err
	}

	// 4. write
	if err := s.repo.Setting.UpdateValue(ctx, key, normalized); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSettingNotFound
		}
		s.logger.Error("update setting failed", zap.String("key", key), zap.Error(err))
		return nil, err
	}

	s.logger.Info("setting updated", zap.String("key", key), zap.String("value", normalized))
	return &dto.SettingUpdatedResponse{Key: key, Value: normalized}, nil
}

// ────────────────────── BatchUpdate ──────────────────────

// BatchUpdate validates every entry before writing any and then writes them
// all in one transaction.
func (s *settingService) BatchUpdate(ctx context.Context, values map[string]string) (*dto.BatchUpdateResponse, error) {
	if len(values) == 0 {
		return nil, ErrNoSettingsProvided
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	// 1. which keys exist
	existing, err := s.repo.Setting.GetByKeys(ctx, keys)
	if err != nil {
		s.logger.Error("load settings failed", zap.Error(err))
		return nil, err
	}
	known := make(map[string]bool, len(existing))
	for _, st := range existing {
		known[st.SettingKey] = true
	}

	// 2. validate everything
	normalized := make(map[string]string, len(values))
	var problems []string
	for _, k := range keys {
		if strings.TrimSpace(values[k]) != "" && !known[k] {
			problems = append(problems, batchMessage(k, ErrSettingNotFound))
			continue
		}
		v, err := NormalizeSettingValue(k, values[k])
		if err != nil {
			problems = append(problems, batchMessage(k, err))
			continue
		}
		normalized[k] = v
	}
	if len(problems) > 0 {
		return nil, &ValidationError{Message: "validation failed", Errors: problems}
	}

	// 3. write all or nothing
	err = s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		for _, k := range keys {
			if err := txRepo.Setting.UpdateValue(ctx, k, normalized[k]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error("batch update settings failed", zap.Error(err))
		return nil, err
	}

	s.logger.Info("settings updated", zap.Strings("keys", keys))
	return &dto.BatchUpdateResponse{Updated: len(keys)}, nil
}

// ────────────────────── Schedule ──────────────────────

// Schedule reads the scan windows, falling back per key to the defaults.
func (s *settingService) Schedule(ctx context.Context) (Schedule, error) {
	settings, err := s.repo.Setting.GetByKeys(ctx, scheduleKeys)
	if err != nil {
		s.logger.Error("load schedule settings failed", zap.Error(err))
		return Schedule{}, err
	}
	return ScheduleFromSettings(settings), nil
}

func (s *settingService) ScheduleView(ctx context.Context) (*dto.ScheduleResponse, error) {
	sched, err := s.Schedule(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.ScheduleResponse{
		Arrival:       dto.TimeWindow{Start: sched.ArrivalStart, End: sched.ArrivalEnd},
		Departure:     dto.TimeWindow{Start: sched.DepartureStart, End: sched.DepartureEnd},
		LateTolerance: sched.LateTolerance,
	}, nil
}

// SchoolName is used as a report title; lookup failures fall back silently.
func (s *settingService) SchoolName(ctx context.Context) string {
	setting, err := s.repo.Setting.GetByKey(ctx, model.SettingSchoolName)
	if err != nil || strings.TrimSpace(setting.SettingValue) == "" {
		return defaultSchoolName
	}
	return setting.SettingValue
}

// ── helpers ──

func toSettingResponse(st *model.Setting) dto.SettingResponse {
	return dto.SettingResponse{
		Key:         st.SettingKey,
		Value:       st.SettingValue,
		Description: st.Description,
		UpdatedAt:   st.UpdatedAt.Format(time.RFC3339),
	}
}
