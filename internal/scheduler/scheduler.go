// Package scheduler runs periodic jobs such as price refreshes on a cron
// schedule.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	apperrors "portfolio-dashboard/internal/errors"
	"portfolio-dashboard/pkg/utils"
)

// Job is a unit of scheduled work.
type Job interface {
	Run(ctx context.Context) error
	Name() string
}

// JobFunc adapts a function to Job.
type JobFunc struct {
	JobName string
	Fn      func(ctx context.Context) error
}

func (j JobFunc) Run(ctx context.Context) error { return j.Fn(ctx) }
func (j JobFunc) Name() string                  { return j.JobName }

// Options control when scheduled jobs actually run.
type Options struct {
	// MarketHoursOnly skips runs while both the Indian and US markets are
	// closed.
	MarketHoursOnly bool
}

// Scheduler wraps a cron runner. Runs of the same job never overlap; a
// tick that arrives while the previous run is still going is skipped.
type Scheduler struct {
	cron *cron.Cron
	opts Options
	log  zerolog.Logger
	now  func() time.Time

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a scheduler that accepts standard five field specs and
// descriptors such as "@every 5m".
func New(log zerolog.Logger, opts Options) *Scheduler {
	log = log.With().Str("component", "scheduler").Logger()
	cl := cronLogger{log: log}
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		opts: opts,
		log:  log,
		now:  time.Now,
		ctx:  context.Background(),
	}
}

// ValidateSchedule reports whether spec parses as a schedule.
func ValidateSchedule(spec string) error {
	if _, err := cron.ParseStandard(spec); err != nil {
		return apperrors.Wrapf(apperrors.ErrConfigInvalid, "schedule %q: %v", spec, err)
	}
	return nil
}

// AddJob registers job under spec.
func (s *Scheduler) AddJob(spec string, job Job) (cron.EntryID, error) {
	id, err := s.cron.AddFunc(spec, func() {
		s.run(job)
	})
	if err != nil {
		return 0, apperrors.Wrapf(apperrors.ErrConfigInvalid, "schedule %q: %v", spec, err)
	}
	s.log.Info().Str("schedule", spec).Str("job", job.Name()).Msg("Job registered")
	return id, nil
}

func (s *Scheduler) run(job Job) {
	if s.opts.MarketHoursOnly && !utils.AnyMarketOpen(s.now()) {
		s.log.Debug().Str("job", job.Name()).Msg("Markets closed, skipping run")
		return
	}
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()

	s.log.Debug().Str("job", job.Name()).Msg("Running job")
	if err := job.Run(ctx); err != nil {
		s.log.Error().Err(err).Str("job", job.Name()).Msg("Job failed")
		return
	}
	s.log.Debug().Str("job", job.Name()).Msg("Job completed")
}

// RunNow runs job immediately, outside its schedule and regardless of
// market hours.
func (s *Scheduler) RunNow(ctx context.Context, job Job) error {
	s.log.Info().Str("job", job.Name()).Msg("Running job immediately")
	return job.Run(ctx)
}

// Start begins firing jobs. Jobs receive a context derived from ctx that
// is cancelled by Stop.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()
	s.cron.Start()
	s.log.Info().Msg("Scheduler started")
}

// Stop cancels running jobs and waits for them to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()
	<-s.cron.Stop().Done()
	s.log.Info().Msg("Scheduler stopped")
}

// Next returns the next fire time of entry id, zero when unknown.
func (s *Scheduler) Next(id cron.EntryID) time.Time {
	return s.cron.Entry(id).Next
}

// cronLogger routes cron's internal messages to zerolog.
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
