package handler

import "qr-attendance/backend/internal/service"

// Handler aggregates every HTTP handler.
type Handler struct {
	Auth       *AuthHandler
	Student    *StudentHandler
	Attendance *AttendanceHandler
	Setting    *SettingHandler
	Export     *ExportHandler
	Health     *HealthHandler
}

// Options toggles optional handler behavior.
type Options struct {
	HashPasswordEndpoint bool
}

// NewHandler creates the handler aggregate.
func NewHandler(svc *service.Service, health *HealthHandler, opts Options) *Handler {
	return &Handler{
		Auth:       NewAuthHandler(svc.Auth, opts.HashPasswordEndpoint),
		Student:    NewStudentHandler(svc.Student),
		Attendance: NewAttendanceHandler(svc.Attendance),
		Setting:    NewSettingHandler(svc.Setting),
		Export:     NewExportHandler(svc.Export, svc.Calendar),
		Health:     health,
	}
}
