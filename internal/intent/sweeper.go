package intent

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Sweeper garbage-collects stale deposit intents on a fixed schedule. The
// sweep is best effort: a failed run is logged and retried on the next tick,
// and the swept user is not notified.
type Sweeper struct {
	cron    *cron.Cron
	tracker Tracker
	maxAge  time.Duration
	logger  *slog.Logger
}

// NewSweeper schedules ExpireOlderThan(maxAge) against the tracker using a
// cron spec such as "@every 10m".
func NewSweeper(tracker Tracker, schedule string, maxAge time.Duration, logger *slog.Logger) (*Sweeper, error) {
	cronLogger := cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelInfo))
	c := cron.New(cron.WithChain(cron.Recover(cronLogger)))

	s := &Sweeper{cron: c, tracker: tracker, maxAge: maxAge, logger: logger}
	if _, err := c.AddFunc(schedule, s.sweep); err != nil {
		return nil, err
	}
	return s, nil
}

// Start begins the background schedule.
func (s *Sweeper) Start() {
	s.logger.Info("intent sweeper started", "max_age", s.maxAge.String())
	s.cron.Start()
}

// Stop halts the schedule and returns a context that completes once any
// in-flight sweep finishes.
func (s *Sweeper) Stop() context.Context {
	return s.cron.Stop()
}

func (s *Sweeper) sweep() {
	removed, err := s.tracker.ExpireOlderThan(context.Background(), s.maxAge)
	if err != nil {
		s.logger.Error("intent sweep failed", "error", err)
		return
	}
	if removed > 0 {
		s.logger.Info("expired stale deposit intents", "count", removed)
	}
}
