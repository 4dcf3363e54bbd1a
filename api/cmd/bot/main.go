package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"analyze-skin/api/internal/bootstrap"
	"analyze-skin/api/internal/config"
	"analyze-skin/api/internal/httpserver"
	"analyze-skin/api/internal/logging"
	"analyze-skin/api/internal/telegram"
)

func main() {
	cfg := config.Load()

	logger, err := logging.NewLogger(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer logger.Sync() //nolint:errcheck

	if strings.TrimSpace(cfg.TelegramBotToken) == "" {
		logger.Fatal("TELEGRAM_BOT_TOKEN is not set")
	}

	svc, err := bootstrap.Service(cfg, logger)
	if err != nil {
		logger.Fatal("engine setup failed", zap.Error(err))
	}
	if err := svc.Ready(); err != nil {
		logger.Warn("GEMINI_API_KEY is not set; photos will be rejected", zap.Error(err))
	}

	bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		logger.Fatal("telegram login failed", zap.Error(err))
	}
	bot.Debug = false
	logger.Info("authorized", zap.String("bot", bot.Self.UserName))

	r := &telegram.Router{
		Bot:     bot,
		Token:   cfg.TelegramBotToken,
		Service: svc,
		Logger:  logger.Named("telegram"),
	}

	// ListenForWebhook registers on DefaultServeMux, so health lives there too.
	http.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if err := svc.Ready(); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("not configured"))
			return
		}
		_, _ = w.Write([]byte("ok"))
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := "0.0.0.0:" + cfg.Port
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("health server listening", zap.String("addr", addr))
		return httpserver.Serve(ctx, httpserver.New(addr, nil), nil, cfg.ShutdownTimeout, logger)
	})

	if webhookURL := strings.TrimSpace(cfg.WebhookURL); webhookURL != "" {
		path := telegram.WebhookPath(cfg.TelegramBotToken)
		wh, err := tgbotapi.NewWebhook(strings.TrimRight(webhookURL, "/") + path)
		if err != nil {
			logger.Fatal("webhook config", zap.Error(err))
		}
		wh.DropPendingUpdates = true
		if _, err := bot.Request(wh); err != nil {
			logger.Fatal("set webhook", zap.Error(err))
		}
		updates := bot.ListenForWebhook(path)
		logger.Info("webhook mode", zap.String("addr", addr), zap.Int("workers", cfg.TelegramWorkers))

		g.Go(func() error {
			telegram.Dispatch(ctx, updates, cfg.TelegramWorkers, r.HandleUpdate)
			return nil
		})
	} else {
		if _, err := bot.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
			logger.Warn("delete webhook", zap.Error(err))
		}
		logger.Info("polling mode")
		g.Go(func() error {
			telegram.RunPolling(ctx, bot, telegram.PollOptions{}, logger.Named("polling"), func(upd tgbotapi.Update) {
				r.HandleUpdate(ctx, upd)
			})
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logger.Fatal("bot stopped", zap.Error(err))
	}
	logger.Info("bot stopped")
}
