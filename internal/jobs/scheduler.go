package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler runs periodic jobs on cron schedules evaluated in a fixed
// location. Overlapping runs of the same job are skipped.
type Scheduler struct {
	cron    *cron.Cron
	log     *slog.Logger
	timeout time.Duration
}

func NewScheduler(loc *time.Location, timeout time.Duration, log *slog.Logger) *Scheduler {
	if log == nil {
		log = slog.Default()
	}
	if loc == nil {
		loc = time.UTC
	}
	log = log.With(slog.String("component", "jobs.scheduler"))
	logger := cronLogger{log: log}
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		log:     log,
		timeout: timeout,
	}
}

// Add registers fn under name. Each run gets its own context bounded by the
// scheduler timeout.
func (s *Scheduler) Add(schedule, name string, fn func(ctx context.Context) error) error {
	_, err := s.cron.AddFunc(schedule, func() {
		ctx := context.Background()
		if s.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, s.timeout)
			defer cancel()
		}
		start := time.Now()
		if err := fn(ctx); err != nil {
			s.log.Error("job failed", slog.String("job", name), slog.Any("err", err))
			return
		}
		s.log.Debug("job finished", slog.String("job", name), slog.Duration("duration", time.Since(start)))
	})
	return err
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type cronLogger struct {
	log *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error(msg, append([]any{slog.Any("err", err)}, keysAndValues...)...)
}
