package refresh

import (
	"context"
	"sync"
	"time"

	"assetfin-backend/internal/infrastructure/logging"
)

type Runner interface {
	RefreshAllValuations(ctx context.Context) Report
}

// Scheduler fires the job once per calendar month, on the first tick at or
// after Day/Hour UTC. The last run month is kept in memory only.
type Scheduler struct {
	job      Runner
	day      int
	hour     int
	interval time.Duration
	now      func() time.Time
	log      logging.Logger

	mu      sync.Mutex
	lastRun time.Time
}

type SchedulerOption func(*Scheduler)

func WithInterval(d time.Duration) SchedulerOption            { return func(s *Scheduler) { s.interval = d } }
func WithSchedulerClock(now func() time.Time) SchedulerOption { return func(s *Scheduler) { s.now = now } }
func WithSchedulerLogger(l logging.Logger) SchedulerOption    { return func(s *Scheduler) { s.log = l } }

func NewScheduler(job Runner, day, hour int, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{job: job, day: day, hour: hour, interval: time.Minute, now: time.Now, log: logging.NewNop()}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Start ticks until ctx is done. The returned channel closes when the loop
// has exited.
func (s *Scheduler) Start(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	ticker := time.NewTicker(s.interval)
	go func() {
		defer close(done)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Tick(ctx)
			}
		}
	}()
	return done
}

// Tick runs the job when this month's slot has been reached and not yet
// served. It reports whether the job ran.
func (s *Scheduler) Tick(ctx context.Context) bool {
	now := s.now().UTC()
	slot := time.Date(now.Year(), now.Month(), s.day, s.hour, 0, 0, 0, time.UTC)

	s.mu.Lock()
	if now.Before(slot) || (!s.lastRun.IsZero() && s.lastRun.Year() == now.Year() && s.lastRun.Month() == now.Month()) {
		s.mu.Unlock()
		return false
	}
	s.lastRun = now
	s.mu.Unlock()

	rep := s.job.RefreshAllValuations(ctx)
	s.log.Info("scheduled valuation refresh done",
		logging.String("run_id", rep.RunID),
		logging.Int("failed", rep.Failed))
	return true
}
