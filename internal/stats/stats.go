package stats

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/crucial707/trade-account/internal/metrics"
	"github.com/crucial707/trade-account/internal/repo"
)

// Run starts a background refresher that snapshots account counts and the
// aggregate balance into Prometheus gauges on the given cron spec
// (e.g. "@every 1m"). It refreshes once immediately so the gauges are
// populated before the first tick, then blocks until ctx is canceled.
func Run(ctx context.Context, users *repo.UserRepo, cronSpec string) error {
	refresh := func() {
		rctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		count, total, err := users.Stats(rctx)
		if err != nil {
			slog.Error("stats: refresh failed", "error", err)
			return
		}
		metrics.SetAccountStats(count, total)
	}

	c := cron.New()
	if _, err := c.AddFunc(cronSpec, refresh); err != nil {
		return err
	}

	refresh()
	c.Start()

	<-ctx.Done()
	stopCtx := c.Stop()
	<-stopCtx.Done()
	return nil
}
