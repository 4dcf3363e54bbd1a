package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/sync/errgroup"
)

const DefaultWorkers = 4

// Dispatch feeds updates to handle with at most workers calls in flight. It
// returns once ctx is done or updates is closed and every started call has
// finished.
func Dispatch(ctx context.Context, updates <-chan tgbotapi.Update, workers int, handle func(context.Context, tgbotapi.Update)) {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	var g errgroup.Group
	g.SetLimit(workers)
	defer g.Wait() //nolint:errcheck

	for {
		select {
		case <-ctx.Done():
			return
		case upd, ok := <-updates:
			if !ok {
				return
			}
			// Blocks while all workers are busy.
			g.Go(func() error {
				handle(ctx, upd)
				return nil
			})
		}
	}
}
