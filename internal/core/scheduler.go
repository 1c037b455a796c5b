package core

// scheduler.go runs background maintenance for the in-memory campaign store.
//
// Campaigns live only in process memory, so abandoned uploads would grow the
// store forever. The prune job drops campaigns nobody has touched for the
// configured idle TTL. It runs on a cron schedule and stops with the context.

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// StartPruneScheduler runs the idle campaign sweep on the given cron spec
// (standard five-field syntax or descriptors such as "@every 15m").
// It blocks until ctx is cancelled.
func (s *Service) StartPruneScheduler(ctx context.Context, spec string) error {
	c := cron.New()
	if _, err := c.AddFunc(spec, s.runPruneJob); err != nil {
		return fmt.Errorf("schedule prune job: %w", err)
	}

	c.Start()
	slog.Info("campaign prune scheduler started", "schedule", spec, "idle_ttl", s.opts.IdleTTL)

	<-ctx.Done()

	<-c.Stop().Done()
	slog.Info("campaign prune scheduler stopped")
	return nil
}

// runPruneJob performs one sweep.
func (s *Service) runPruneJob() {
	start := time.Now()
	removed := s.PruneIdle(s.now())

	slog.Info("campaign prune completed",
		"removed", removed,
		"remaining", s.CampaignCount(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
}
