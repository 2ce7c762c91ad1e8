package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sherajsharif/crop-disease-Api/internal/config"
	"github.com/sherajsharif/crop-disease-Api/internal/handlers"
	"github.com/sherajsharif/crop-disease-Api/internal/logging"
	"github.com/sherajsharif/crop-disease-Api/internal/model"
)

func main() {
	cfg, err := config.New()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Log.Level)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sessionOpts := model.SessionOptions{
		LibraryPath:    cfg.Model.LibraryPath,
		IntraOpThreads: cfg.Model.IntraOpThreads,
	}
	open := func(path string) (model.Classifier, error) {
		return model.Open(path, sessionOpts)
	}

	registry := model.NewRegistry(open, cfg.Model.Path, logger, model.WithAttempts(cfg.Model.LoadAttempts))

	logger.Info("loading model", zap.String("path", cfg.Model.Path), zap.Int("attempts", cfg.Model.LoadAttempts))
	if err := registry.Load(ctx); err != nil {
		logger.Warn("starting in degraded mode, /predict will return 503", zap.Error(err))
	}
	defer func() {
		if err := registry.Close(); err != nil {
			logger.Warn("failed to close model", zap.Error(err))
		}
		if err := model.ShutdownEnvironment(); err != nil {
			logger.Warn("failed to destroy ONNX environment", zap.Error(err))
		}
	}()

	gin.SetMode(cfg.Server.GinMode)
	handler := handlers.NewHandler(registry, logger, cfg.Server.MaxUploadBytes)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: handlers.NewRouter(handler, logger),
	}

	logger.Info("server starting",
		zap.String("addr", srv.Addr),
		zap.Stringer("model_state", registry.State()),
		zap.Strings("endpoints", []string{"GET /", "GET /health", "POST /predict", "POST /reload", "GET /metrics"}),
	)
	if err := serve(ctx, srv, cfg.Server.ShutdownTimeout); err != nil {
		logger.Error("server failed", zap.Error(err))
		return
	}

	logger.Info("server exited")
}
