package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"analyze-skin/api/internal/bootstrap"
	"analyze-skin/api/internal/config"
	"analyze-skin/api/internal/handle"
	"analyze-skin/api/internal/httpserver"
	"analyze-skin/api/internal/logging"
)

func main() {
	cfg := config.Load()

	logger, err := logging.NewLogger(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer logger.Sync() //nolint:errcheck

	svc, err := bootstrap.Service(cfg, logger)
	if err != nil {
		logger.Fatal("engine setup failed", zap.Error(err))
	}
	if err := svc.Ready(); err != nil {
		// Not fatal: every analysis request reports it until the key is set.
		logger.Warn("GEMINI_API_KEY is not set; analysis requests will fail", zap.Error(err))
	}

	gin.SetMode(gin.ReleaseMode)
	router := handle.NewRouter(handle.New(svc, logger))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := ":" + cfg.Port
	logger.Info("analyze-skin listening",
		zap.String("addr", addr),
		zap.String("engine", svc.Engine().Name()),
		zap.String("model", svc.Engine().GetModel()),
	)
	if err := httpserver.Serve(ctx, httpserver.New(addr, router), nil, cfg.ShutdownTimeout, logger); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}
