package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/sblmetalroofing-oss/Rprime-sub003/internal/logger"
)

// Sweepable is anything holding expiring entries.
type Sweepable interface {
	Sweep(now time.Time) int
}

// Sweeper periodically evicts expired entries on a cron schedule.
type Sweeper struct {
	cron    *cron.Cron
	targets []Sweepable
	log     *logger.Logger
	now     func() time.Time
}

// NewSweeper registers a sweep of targets on schedule, e.g. "@every 1m".
func NewSweeper(schedule string, log *logger.Logger, targets ...Sweepable) (*Sweeper, error) {
	s := &Sweeper{
		cron:    cron.New(cron.WithLogger(log.Cron())),
		targets: targets,
		log:     log,
		now:     time.Now,
	}

	if _, err := s.cron.AddFunc(schedule, s.RunOnce); err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", schedule, err)
	}
	return s, nil
}

// RunOnce sweeps every target immediately.
func (s *Sweeper) RunOnce() {
	now := s.now()
	removed := 0
	for _, t := range s.targets {
		removed += t.Sweep(now)
	}
	if removed > 0 {
		s.log.Debug("Swept expired rate limit windows", map[string]interface{}{
			"removed": removed,
		})
	}
}

// Start runs the schedule in the background.
func (s *Sweeper) Start() {
	s.cron.Start()
}

// Stop halts the schedule and returns a context that is done once any
// running sweep has finished.
func (s *Sweeper) Stop() context.Context {
	return s.cron.Stop()
}
