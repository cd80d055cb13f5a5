package service

import (
	"go.uber.org/zap"

	"qr-attendance/backend/config"
	"qr-attendance/backend/internal/repository"
	"qr-attendance/backend/pkg/jwt"
)

// Service aggregates every service.
type Service struct {
	Auth       AuthService
	Student    StudentService
	Attendance AttendanceService
	Setting    SettingService
	Export     ExportService
	Calendar   CalendarService
}

// NewService wires the services. blacklist may be nil.
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	logger *zap.Logger,
) *Service {
	loc := cfg.App.Location()

	settings := NewSettingService(repo, logger)
	attendance := NewAttendanceService(repo, settings, loc, logger)

	return &Service{
		Auth: NewAuthService(cfg, repo, jwtMgr, blacklist, logger),
		Student: NewStudentService(repo, StudentOptions{
			QRCodeSize:     cfg.App.QRCodeSize,
			HistoryLimit:   cfg.App.DefaultHistoryMax,
			MaxUploadBytes: cfg.Import.MaxUploadBytes,
		}, logger),
		Attendance: attendance,
		Setting:    settings,
		Export:     NewExportService(attendance, settings, logger),
		Calendar:   NewCalendarService(settings, loc, logger),
	}
}
