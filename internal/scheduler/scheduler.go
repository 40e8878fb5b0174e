package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"papersum/internal/history"
)

const (
	DailyPruneSpec        = "0 3 * * *"
	Timezone              = "UTC"
	TimezoneOffsetSeconds = 0

	pruneTimeout = time.Minute
)

// Scheduler runs the daily history maintenance job.
type Scheduler struct {
	ctx       context.Context
	cron      *cron.Cron
	store     *history.Store
	retention time.Duration
	log       *slog.Logger
}

func New(
	ctx context.Context,
	store *history.Store,
	retention time.Duration,
	log *slog.Logger,
) *Scheduler {
	c := cron.New(cron.WithLocation(time.FixedZone(Timezone, TimezoneOffsetSeconds)))

	return &Scheduler{
		ctx:       ctx,
		cron:      c,
		store:     store,
		retention: retention,
		log:       log,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(DailyPruneSpec, s.pruneHistory); err != nil {
		return err
	}

	s.cron.Start()

	return nil
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
}

func (s *Scheduler) pruneHistory() {
	ctx, cancel := context.WithTimeout(s.ctx, pruneTimeout)
	defer cancel()

	select {
	case <-ctx.Done():
		s.log.InfoContext(ctx, "Scheduler context is done",
			"error", ctx.Err())
		return
	default:
	}

	cutoff := time.Now().UTC().Add(-s.retention)

	pruned, err := s.store.PruneOlderThan(ctx, cutoff)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to prune summary history",
			"error", err,
			"cutoff", cutoff)

		return
	}

	if pruned > 0 {
		s.log.InfoContext(ctx, "Summary history is pruned",
			"prunedCount", pruned,
			"cutoff", cutoff)
	}
}
