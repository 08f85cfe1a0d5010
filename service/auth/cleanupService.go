package authsvc

import (
	"context"
	"log/slog"
	"time"
)

type TokenPurger interface {
	DeleteExpiredTokens(ctx context.Context, now time.Time) (int64, error)
}

type Cleaner interface {
	PurgeExpired(ctx context.Context) (int64, error)
	Run(ctx context.Context, every time.Duration)
}

type cleaner struct {
	r   TokenPurger
	log *slog.Logger
}

func NewCleaner(r TokenPurger, log *slog.Logger) Cleaner { return &cleaner{r: r, log: log} }

func (c *cleaner) PurgeExpired(ctx context.Context) (int64, error) {
	return c.r.DeleteExpiredTokens(ctx, time.Now().UTC())
}

// Run purges on a ticker until ctx is cancelled.
func (c *cleaner) Run(ctx context.Context, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := c.PurgeExpired(ctx)
			if err != nil {
				c.log.Error("token cleanup failed", "err", err)
				continue
			}
			if n > 0 {
				c.log.Info("purged expired activation tokens", "count", n)
			}
		}
	}
}
