package main

import (
	"FileVault/internal/config"
	"FileVault/internal/handlers"
	"FileVault/internal/middleware"
	"FileVault/internal/repo"
	"FileVault/internal/service"
	"FileVault/internal/storage"
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// создаём регистратор zap: dev по умолчанию, JSON в проде
	var logger *zap.Logger
	if cfg.LogProduction {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		panic(err)
	}

	sugar := logger.Sugar()
	middleware.SetLogger(sugar) // передаём логгер в middleware
	//сброс буфера логгера
	defer func() {
		_ = logger.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gormDB, err := repo.InitDB(ctx, cfg.DatabaseDSN)
	if err != nil {
		sugar.Fatalw("failed to initialize database", "error", err)
	}
	if sqlDB, err := gormDB.DB(); err == nil {
		defer sqlDB.Close()
	}

	blobs, err := newBlobStore(ctx, cfg)
	if err != nil {
		sugar.Fatalw("failed to initialize blob store", "backend", cfg.BlobBackend, "error", err)
	}

	logService := service.NewLogService(repo.NewLogRepository(gormDB))
	userService := service.NewUserService(repo.NewUserRepository(gormDB), logService)
	fileService := service.NewFileService(repo.NewFileRepository(gormDB), blobs, logService, sugar)
	dashboardService := service.NewDashboardService(fileService, logService, cfg.QuotaMB)

	h := handlers.NewHandler(userService, fileService, dashboardService, sugar, cfg)

	sugar.Infow("Config",
		"BaseURL", cfg.BaseURL,
		"EnableHTTPS", cfg.EnableHTTPS,
		"Postgres", cfg.IsPostgres(),
		"BlobBackend", cfg.BlobBackend,
		"UploadMaxMB", cfg.UploadMaxSizeMB,
	)

	srv := &http.Server{
		Addr:              cfg.BaseURL,
		Handler:           h.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		sugar.Infow("Starting server", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		sugar.Infow("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			sugar.Errorw("Graceful shutdown failed", "error", err)
		}
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			sugar.Fatalw("Server failed", "error", err)
		}
	}
}

func newBlobStore(ctx context.Context, cfg *config.Config) (storage.BlobStore, error) {
	switch cfg.BlobBackend {
	case config.BlobBackendFS:
		return storage.NewFSStore(cfg.UploadDir)
	case config.BlobBackendS3:
		return storage.NewS3Store(ctx, storage.S3Options{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Prefix:    cfg.S3Prefix,
			PathStyle: cfg.S3PathStyle,
		})
	}
	return nil, fmt.Errorf("unknown blob backend %q", cfg.BlobBackend)
}
