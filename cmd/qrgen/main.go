// Command qrgen writes every student's QR code as <nis>_<name>.png.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"qr-attendance/backend/config"
	"qr-attendance/backend/internal/repository"
	"qr-attendance/backend/internal/service"
	"qr-attendance/backend/pkg/database"
	applogger "qr-attendance/backend/pkg/logger"
)

func main() {
	outDir := flag.String("out", "qrcodes", "output directory")
	class := flag.String("class", "", "only students of this class")
	configPath := flag.String("config", "", "config file path")
	flag.Parse()

	_ = godotenv.Load()
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}
	repo := repository.NewRepository(db)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	students, err := repo.Student.List(ctx, repository.StudentFilter{Class: *class})
	if err != nil {
		logger.Fatal("list students failed", zap.Error(err))
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		logger.Fatal("create output directory failed", zap.Error(err))
	}

	written := 0
	for i := range students {
		s := &students[i]
		png, err := service.EncodeQR(s.QRCode, cfg.App.QRCodeSize)
		if err != nil {
			logger.Error("encode qr failed", zap.String("nis", s.NIS), zap.Error(err))
			continue
		}
		path := filepath.Join(*outDir, service.QRFileName(s))
		if err := os.WriteFile(path, png, 0o644); err != nil {
			logger.Error("write qr failed", zap.String("path", path), zap.Error(err))
			continue
		}
		written++
	}

	logger.Info("qr codes generated",
		zap.Int("written", written),
		zap.Int("students", len(students)),
		zap.String("dir", *outDir),
	)
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
