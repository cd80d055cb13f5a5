package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"qr-attendance/backend/config"
	"qr-attendance/backend/internal/api/handler"
	"qr-attendance/backend/internal/api/middleware"
	"qr-attendance/backend/internal/model"
	"qr-attendance/backend/pkg/jwt"
	"qr-attendance/backend/pkg/redis"
	"qr-attendance/backend/pkg/response"
)

const importRoute = "/api/students/import"

// Setup builds the Gin engine with every route.
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	switch cfg.Server.Mode {
	case gin.DebugMode, gin.TestMode:
		gin.SetMode(cfg.Server.Mode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// ── global middleware ──
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(logger, cfg.Server.IsDebug()))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes, map[string]int64{
		// multipart framing on top of the file itself
		importRoute: cfg.Import.MaxUploadBytes + 64<<10,
	}))

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authRequired := middleware.JWTAuth(jwtMgr, rdb)
	staff := middleware.RoleAuth(model.RoleAdmin, model.RoleTeacher)
	admin := middleware.RoleAuth(model.RoleAdmin)

	api := r.Group("/api")
	{
		api.GET("/health", h.Health.Health)

		// ── auth ──
		auth := api.Group("/auth")
		{
			auth.POST("/login", middleware.RateLimit(rdb, cfg.App.LoginRateLimit, time.Minute, logger), h.Auth.Login)
			auth.POST("/hash-password", h.Auth.HashPassword)
			auth.POST("/logout", authRequired, staff, h.Auth.Logout)
			auth.GET("/profile", authRequired, staff, h.Auth.Profile)
			auth.POST("/change-password", authRequired, staff, h.Auth.ChangePassword)
		}

		// ── attendance ──
		attendance := api.Group("/attendance")
		{
			attendance.POST("", middleware.RateLimit(rdb, cfg.App.ScanRateLimit, time.Minute, logger), h.Attendance.Scan)
			attendance.GET("", authRequired, staff, h.Attendance.List)
			attendance.GET("/stats", authRequired, staff, h.Attendance.Stats)
			attendance.GET("/export", authRequired, staff, h.Export.ExportAttendance)
			attendance.PUT("/:id", authRequired, staff, h.Attendance.UpdateStatus)
		}

		// ── students ──
		students := api.Group("/students", authRequired, staff)
		{
			students.GET("", h.Student.List)
			students.GET("/template", h.Student.Template)
			students.GET("/classes/list", h.Student.Classes)
			students.GET("/:id", h.Student.Get)
			students.GET("/:id/attendance", h.Student.History)
			students.GET("/:id/qrcode", h.Student.QRCode)
			students.POST("", admin, h.Student.Create)
			students.POST("/import", admin, h.Student.Import)
			students.PUT("/:id", admin, h.Student.Update)
			students.DELETE("/:id", admin, h.Student.Delete)
		}

		// ── settings ──
		settings := api.Group("/settings")
		{
			settings.GET("/time/schedule", h.Setting.Schedule)
			settings.GET("/time/schedule.ics", h.Export.ScheduleICS)
			settings.GET("", authRequired, staff, h.Setting.List)
			settings.GET("/:key", authRequired, staff, h.Setting.Get)
			settings.PUT("", authRequired, admin, h.Setting.BatchUpdate)
			settings.PUT("/:key", authRequired, admin, h.Setting.Update)
		}
	}

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c, 10006, "Route not found")
	})

	return r
}
