// Package scheduler drives the recurring jobs of spec.md §4.1 off a single
// clock: bridge-scrape ticks (day/night cadence), the daily statistics
// recompute, vessel cleanup, the AIS HTTP poll, and the boat-change
// broadcast probe. Every schedule is evaluated against one injected Clock
// so tests can move time deterministically instead of sleeping.
package scheduler

import (
	"context"
	"sync"
	"time"

	"seawaywatch/internal/domain/repository"
	"seawaywatch/pkg/logger"
)

// Schedule decides the next run time for a job given "now". Every is below;
// DayNightSchedule (the bridge scrape cadence) and DailyAt are in
// schedules.go.
type Schedule interface {
	Next(now time.Time) time.Time
}

// Every is a fixed-interval Schedule.
type Every time.Duration

// Next returns now+d. The Scheduler calls it when a job is first armed and
// again each time the job fires or is skipped for overlap, so the period
// is measured from that tick.
func (e Every) Next(now time.Time) time.Time { return now.Add(time.Duration(e)) }

// Job is one recurring unit of work with an overlap policy of "at most one
// in-flight; coalesce missed ticks" (spec.md §4.1 table).
type Job struct {
	Name     string
	Schedule Schedule
	Run      func(ctx context.Context) error

	mu      sync.Mutex
	running bool
	next    time.Time
	armed   bool
}

// Scheduler polls a single Clock at a fixed resolution and fires Jobs whose
// schedule has elapsed, skipping a tick rather than stacking work when a
// job is still in flight.
type Scheduler struct {
	clock      repository.Clock
	resolution time.Duration
	log        *logger.Logger

	mu   sync.Mutex
	jobs []*Job

	stopCh   chan struct{}
	doneCh   chan struct{}
	wg       sync.WaitGroup
	started  bool
}

// New creates a Scheduler polling at the given resolution (spec.md §4.1
// recommends 1s so day/night cadence and minute-scale jobs line up without
// drift).
func New(clock repository.Clock, resolution time.Duration, log *logger.Logger) *Scheduler {
	return &Scheduler{
		clock:      clock,
		resolution: resolution,
		log:        log,
		stopCh:     make(chan struct{}),
		doneCh:     make(chan struct{}),
	}
}

// Register adds a job. Must be called before Start.
func (s *Scheduler) Register(j *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append(s.jobs, j)
}

// Start begins the polling loop in a background goroutine.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()

	ticker := time.NewTicker(s.resolution)
	go func() {
		defer ticker.Stop()
		defer close(s.doneCh)
		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopCh:
				return
			case <-ticker.C:
				s.tick(ctx)
			}
		}
	}()
}

func (s *Scheduler) tick(ctx context.Context) {
	now := s.clock.Now()
	s.mu.Lock()
	jobs := append([]*Job(nil), s.jobs...)
	s.mu.Unlock()

	for _, j := range jobs {
		j.mu.Lock()
		if !j.armed {
			j.next = j.Schedule.Next(now)
			j.armed = true
		}
		due := !now.Before(j.next)
		if due && j.running {
			// Overlap: skip this tick, coalesce into the next due time.
			j.next = j.Schedule.Next(now)
			j.mu.Unlock()
			continue
		}
		if !due {
			j.mu.Unlock()
			continue
		}
		j.running = true
		j.next = j.Schedule.Next(now)
		j.mu.Unlock()

		s.wg.Add(1)
		go func(job *Job) {
			defer s.wg.Done()
			defer func() {
				job.mu.Lock()
				job.running = false
				job.mu.Unlock()
			}()
			if err := job.Run(ctx); err != nil && s.log != nil {
				s.log.Warn("scheduled job failed", logger.String("job", job.Name), logger.Error(err))
			}
		}(j)
	}
}

// Stop signals the polling loop to stop accepting new ticks and waits (up
// to deadline) for in-flight jobs to finish.
func (s *Scheduler) Stop(deadline time.Duration) {
	close(s.stopCh)
	<-s.doneCh

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(deadline):
		if s.log != nil {
			s.log.Warn("scheduler stop deadline exceeded, abandoning in-flight jobs")
		}
	}
}
