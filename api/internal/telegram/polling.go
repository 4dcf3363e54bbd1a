package telegram

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"net"
	"regexp"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Updater is the long-polling subset of *tgbotapi.BotAPI.
type Updater interface {
	GetUpdates(config tgbotapi.UpdateConfig) ([]tgbotapi.Update, error)
}

var reRetryAfter = regexp.MustCompile(`(?i)retry after\s+(\d+)`)

func retryDelayFromError(err error) time.Duration {
	if err == nil {
		return 0
	}
	s := strings.ToLower(err.Error())
	if strings.Contains(s, "too many requests") {
		if m := reRetryAfter.FindStringSubmatch(s); len(m) == 2 {
			if n, _ := strconv.Atoi(m[1]); n > 0 {
				return time.Duration(n) * time.Second
			}
		}
		return 3 * time.Second
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return 2 * time.Second
	}
	return time.Second
}

// PollOptions tunes RunPolling; zero values use the defaults.
type PollOptions struct {
	Timeout   int // long-poll seconds
	BaseDelay time.Duration
	MaxDelay  time.Duration
	IdleDelay time.Duration
}

// RunPolling fetches updates until ctx is done, backing off on errors.
func RunPolling(ctx context.Context, bot Updater, opt PollOptions, logger *zap.Logger, handle func(tgbotapi.Update)) {
	if opt.Timeout <= 0 {
		opt.Timeout = 30
	}
	if opt.BaseDelay <= 0 {
		opt.BaseDelay = time.Second
	}
	if opt.MaxDelay <= 0 {
		opt.MaxDelay = 15 * time.Second
	}
	if opt.IdleDelay <= 0 {
		opt.IdleDelay = 200 * time.Millisecond
	}

	offset := 0
	for {
		if ctx.Err() != nil {
			logger.Info("polling stopped", zap.Error(ctx.Err()))
			return
		}

		u := tgbotapi.NewUpdate(offset)
		u.Timeout = opt.Timeout

		updates, err := bot.GetUpdates(u)
		if err != nil {
			d := retryDelayFromError(err)
			if d < opt.BaseDelay {
				d = opt.BaseDelay
			}
			if d > opt.MaxDelay {
				d = opt.MaxDelay
			}
			logger.Warn("polling error", zap.Error(err), zap.Duration("retry_in", d))
			if !sleep(ctx, d) {
				return
			}
			continue
		}

		for _, upd := range updates {
			if upd.UpdateID >= offset {
				offset = upd.UpdateID + 1
			}
			handle(upd)
		}

		if len(updates) == 0 && !sleep(ctx, opt.IdleDelay) {
			return
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// WebhookPath derives a stable, non-guessable path from the bot token.
func WebhookPath(token string) string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(token))
	return fmt.Sprintf("/webhook/%016x", h.Sum64())
}
