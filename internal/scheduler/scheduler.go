package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

const (
	HourlySweepSpec       = "0 * * * *"
	Timezone              = "UTC"
	TimezoneOffsetSeconds = 0
)

// Sweeper deletes generated files older than a cutoff.
type Sweeper interface {
	Sweep(olderThan time.Duration, now time.Time) (int, error)
}

// Scheduler runs the output retention job.
type Scheduler struct {
	ctx       context.Context
	cron      *cron.Cron
	sweeper   Sweeper
	retention time.Duration
	spec      string
	now       func() time.Time
	log       *slog.Logger
}

func New(ctx context.Context, sweeper Sweeper, retention time.Duration, log *slog.Logger) *Scheduler {
	c := cron.New(cron.WithLocation(time.FixedZone(Timezone, TimezoneOffsetSeconds)))

	return &Scheduler{
		ctx:       ctx,
		cron:      c,
		sweeper:   sweeper,
		retention: retention,
		spec:      HourlySweepSpec,
		now:       time.Now,
		log:       log,
	}
}

// Start registers the sweep job. A non-positive retention keeps every file
// and starts nothing.
func (s *Scheduler) Start() error {
	if s.retention <= 0 {
		s.log.InfoContext(s.ctx, "Output retention is disabled")
		return nil
	}

	if _, err := s.cron.AddFunc(s.spec, s.sweepOutputs); err != nil {
		return err
	}

	s.cron.Start()

	s.log.InfoContext(s.ctx, "Output retention is enabled",
		"retention", s.retention,
		"spec", s.spec)

	return nil
}

func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) sweepOutputs() {
	select {
	case <-s.ctx.Done():
		s.log.InfoContext(s.ctx, "Scheduler context is done",
			"error", s.ctx.Err())
		return
	default:
	}

	removed, err := s.sweeper.Sweep(s.retention, s.now())
	if err != nil {
		s.log.ErrorContext(s.ctx, "Failed to sweep outputs",
			"error", err,
			"removed", removed,
			"retention", s.retention)
		return
	}

	if removed > 0 {
		s.log.InfoContext(s.ctx, "Old podcasts are removed",
			"removed", removed,
			"retention", s.retention)
	}
}
