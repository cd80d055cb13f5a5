package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"qr-attendance/backend/config"
	"qr-attendance/backend/internal/api/handler"
	"qr-attendance/backend/internal/api/router"
	"qr-attendance/backend/internal/job"
	"qr-attendance/backend/internal/repository"
	"qr-attendance/backend/internal/service"
	"qr-attendance/backend/pkg/database"
	"qr-attendance/backend/pkg/jwt"
	applogger "qr-attendance/backend/pkg/logger"
	"qr-attendance/backend/pkg/redis"
)

func main() {
	// 1. configuration (.env is optional)
	_ = godotenv.Load()
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	// 2. logger
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting attendance server",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
		zap.String("timezone", cfg.App.Timezone),
	)

	// 3. database
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("get sql.DB failed", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("database migration failed", zap.Error(err))
	}

	// 4. redis is optional; without it logout and rate limiting degrade to local state
	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb, err = redis.NewClient(&cfg.Redis, logger)
		if err != nil {
			logger.Warn("redis unavailable, token blacklist disabled", zap.Error(err))
			rdb = nil
		}
	}

	// 5. repository → service → handler
	jwtMgr := jwt.NewManager(&cfg.Auth)
	repo := repository.NewRepository(db)

	var blacklist service.TokenBlacklist
	if rdb != nil {
		blacklist = rdb
	}
	svc := service.NewService(cfg, repo, jwtMgr, blacklist, logger)

	bootCtx, bootCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := svc.Auth.EnsureBootstrapAdmin(bootCtx); err != nil {
		logger.Error("bootstrap admin failed", zap.Error(err))
	}
	bootCancel()

	optional := map[string]handler.HealthCheck{"redis": nil}
	if rdb != nil {
		optional["redis"] = func(ctx context.Context) error {
			if !rdb.Healthy(ctx) {
				return fmt.Errorf("redis ping failed")
			}
			return nil
		}
	}
	health := handler.NewHealthHandler(
		map[string]handler.HealthCheck{"database": sqlDB.PingContext},
		optional,
	)

	h := handler.NewHandler(svc, health, handler.Options{
		HashPasswordEndpoint: cfg.Feature.HashPasswordEndpoint,
	})
	engine := router.Setup(cfg, h, jwtMgr, rdb, logger)

	// 6. end-of-day absence job
	var absenceJob *job.AbsenceJob
	if cfg.Feature.AbsenceJobEnabled {
		absenceJob, err = job.NewAbsenceJob(cfg.Feature.AbsenceJobCron, cfg.App.Location(), svc.Attendance, logger)
		if err != nil {
			logger.Fatal("invalid absence job schedule", zap.Error(err))
		}
		absenceJob.Start()
	}

	// 7. HTTP server with graceful shutdown
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("shutting down", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}
	if absenceJob != nil {
		absenceJob.Stop(ctx)
	}

	if err := sqlDB.Close(); err != nil {
		logger.Warn("close database failed", zap.Error(err))
	}
	if rdb != nil {
		_ = rdb.Close()
	}

	logger.Info("server stopped")
}
