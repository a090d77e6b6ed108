package scheduler

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"hostelbooking/internal/metrics"
	"hostelbooking/internal/pkg/apperror"
)

var (
	ErrUnknownJob = apperror.New(apperror.KindNotFound, "UNKNOWN_JOB", "unknown job")
	ErrJobBusy    = apperror.New(apperror.KindConcurrency, "JOB_RUNNING", "job is already running, retry later")
)

// JobFunc performs one pass of a job. The returned report is logged and
// handed back to manual callers.
type JobFunc func(ctx context.Context, now time.Time) (any, error)

type Job struct {
	Name     string
	Interval time.Duration
	Run      JobFunc
}

// Lease coordinates jobs across instances. Acquire reports false when
// another instance already claimed the job for this interval.
type Lease interface {
	Acquire(ctx context.Context, name string, ttl time.Duration) (bool, error)
}

type Config struct {
	// Tick is how often the loop checks for due jobs.
	Tick time.Duration
	// Jitter delays each job's first and later runs by up to this much.
	Jitter time.Duration
}

type entry struct {
	job     Job
	next    time.Time
	running bool
}

// Scheduler drives a fixed set of (interval, job) pairs from one loop.
type Scheduler struct {
	mu      sync.Mutex
	entries []*entry
	byName  map[string]*entry
	lease   Lease
	log     logrus.FieldLogger
	cfg     Config
	clock   func() time.Time
	jitter  func(limit time.Duration) time.Duration
}

type Option func(*Scheduler)

func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.clock = now }
}

// WithJitterFunc replaces the random jitter source, mostly for tests.
func WithJitterFunc(fn func(limit time.Duration) time.Duration) Option {
	return func(s *Scheduler) { s.jitter = fn }
}

func New(jobs []Job, lease Lease, log logrus.FieldLogger, cfg Config, opts ...Option) *Scheduler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if cfg.Tick <= 0 {
		cfg.Tick = time.Minute
	}
	s := &Scheduler{
		byName: make(map[string]*entry, len(jobs)),
		lease:  lease,
		log:    log.WithField("component", "scheduler"),
		cfg:    cfg,
		clock:  time.Now,
		jitter: randomJitter,
	}
	for _, opt := range opts {
		opt(s)
	}

	start := s.clock()
	for _, j := range jobs {
		e := &entry{job: j, next: start.Add(s.jitter(cfg.Jitter))}
		s.entries = append(s.entries, e)
		s.byName[j.Name] = e
	}
	return s
}

// Run ticks until ctx is cancelled. Jobs run one after another on this
// goroutine, so a slow job delays the others but never overlaps itself.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.Tick)
	defer ticker.Stop()

	s.log.WithFields(logrus.Fields{"jobs": len(s.entries), "tick": s.cfg.Tick}).Info("scheduler started")
	s.Tick(ctx, s.clock())
	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler stopped")
			return nil
		case <-ticker.C:
			s.Tick(ctx, s.clock())
		}
	}
}

// Tick runs every job that is due at now and returns their names.
func (s *Scheduler) Tick(ctx context.Context, now time.Time) []string {
	var ran []string
	for _, e := range s.due(now) {
		if ctx.Err() != nil {
			break
		}
		if s.runScheduled(ctx, e, now) {
			ran = append(ran, e.job.Name)
		}
	}
	return ran
}

// RunNow runs the named job immediately, outside its schedule. It does not
// take the fleet lease but never overlaps a run of the same job here.
func (s *Scheduler) RunNow(ctx context.Context, name string) (any, error) {
	s.mu.Lock()
	e, ok := s.byName[name]
	if !ok {
		s.mu.Unlock()
		return nil, apperror.Wrapf(ErrUnknownJob, "job %q", name)
	}
	if e.running {
		s.mu.Unlock()
		return nil, apperror.Wrapf(ErrJobBusy, "job %q", name)
	}
	e.running = true
	s.mu.Unlock()

	defer s.finish(e, time.Time{})
	return s.execute(ctx, e.job, s.clock())
}

// Jobs lists the registered job names in registration order.
func (s *Scheduler) Jobs() []string {
	names := make([]string, 0, len(s.entries))
	for _, e := range s.entries {
		names = append(names, e.job.Name)
	}
	return names
}

func (s *Scheduler) due(now time.Time) []*entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*entry
	for _, e := range s.entries {
		if !e.running && !now.Before(e.next) {
			e.running = true
			out = append(out, e)
		}
	}
	return out
}

func (s *Scheduler) runScheduled(ctx context.Context, e *entry, now time.Time) bool {
	next := now.Add(e.job.Interval + s.jitter(s.cfg.Jitter))
	defer s.finish(e, next)

	log := s.log.WithField("job", e.job.Name)
	if s.lease != nil {
		ok, err := s.lease.Acquire(ctx, e.job.Name, e.job.Interval)
		if err != nil {
			// Without a lease backend the sweep still runs; sweeps are idempotent.
			log.WithError(err).Warn("lease unavailable, running anyway")
		} else if !ok {
			log.Debug("job claimed by another instance")
			return false
		}
	}

	if _, err := s.execute(ctx, e.job, now); err != nil {
		log.WithError(err).Error("job failed")
	}
	return true
}

func (s *Scheduler) execute(ctx context.Context, j Job, now time.Time) (any, error) {
	start := time.Now()
	report, err := j.Run(ctx, now)
	elapsed := time.Since(start)
	metrics.SweepDuration.WithLabelValues(j.Name).Observe(elapsed.Seconds())

	if err != nil && !errors.Is(err, context.Canceled) {
		return report, err
	}
	s.log.WithFields(logrus.Fields{"job": j.Name, "duration": elapsed, "report": report}).Info("job finished")
	return report, err
}

func (s *Scheduler) finish(e *entry, next time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.running = false
	if !next.IsZero() {
		e.next = next
	}
}

func randomJitter(limit time.Duration) time.Duration {
	if limit <= 0 {
		return 0
	}
	return rand.N(limit)
}
