// Package jobs provides the scheduled-job timer: deferred callbacks advanced
// against absolute time by the frame loop.
package jobs

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Infinite is the repeat count of a job that repeats until cancelled.
const Infinite = -1

type job struct {
	id        string
	seq       uint64
	fn        func()
	interval  time.Duration
	remaining time.Duration
	// executions left, or Infinite.
	executions int
}

// Scheduler holds pending jobs. Callbacks run on the goroutine calling Advance.
//
// Invariant: every pending job has at least one execution left.
type Scheduler struct {
	mu     sync.Mutex
	jobs   map[string]*job
	seq    uint64
	last   time.Time
	logger *zap.Logger
}

// NewScheduler creates an empty scheduler whose clock starts at start.
//
// Precondition: logger must be non-nil.
func NewScheduler(start time.Time, logger *zap.Logger) *Scheduler {
	return &Scheduler{jobs: make(map[string]*job), last: start, logger: logger}
}

// Schedule runs fn once after delay and returns the job ID.
//
// Precondition: fn must be non-nil.
func (s *Scheduler) Schedule(delay time.Duration, fn func()) string {
	return s.Repeat(delay, 1, fn)
}

// Repeat runs fn every interval, executions times in total. Infinite repeats
// until the job is cancelled or the scheduler cleared.
//
// Precondition: fn must be non-nil; executions > 0 or Infinite.
func (s *Scheduler) Repeat(interval time.Duration, executions int, fn func()) string {
	if fn == nil {
		panic("jobs.Scheduler.Repeat: fn must not be nil")
	}
	if executions == 0 || executions < Infinite {
		panic("jobs.Scheduler.Repeat: executions must be > 0 or Infinite")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	j := &job{
		id:         uuid.NewString(),
		seq:        s.seq,
		fn:         fn,
		interval:   interval,
		remaining:  interval,
		executions: executions,
	}
	s.jobs[j.id] = j
	s.logger.Debug("job scheduled",
		zap.String("job", j.id),
		zap.Duration("interval", interval),
		zap.Int("executions", executions),
	)
	return j.id
}

// Advance moves the clock to now. Each pending job's remaining time drops by
// the elapsed delta; jobs reaching zero fire in scheduling order and are
// removed, or rescheduled with their original interval if executions remain.
// Jobs scheduled by a callback are not advanced until the next call.
func (s *Scheduler) Advance(now time.Time) {
	s.mu.Lock()
	delta := now.Sub(s.last)
	s.last = now
	var due []*job
	for _, j := range s.jobs {
		j.remaining -= delta
		if j.remaining <= 0 {
			due = append(due, j)
		}
	}
	sort.Slice(due, func(a, b int) bool { return due[a].seq < due[b].seq })
	s.mu.Unlock()

	for _, j := range due {
		s.mu.Lock()
		_, live := s.jobs[j.id]
		if live {
			if j.executions != Infinite {
				j.executions--
			}
			if j.executions == 0 {
				delete(s.jobs, j.id)
			} else {
				j.remaining = j.interval
			}
		}
		s.mu.Unlock()
		if live {
			j.fn()
		}
	}
}

// Now returns the time of the last Advance, or the start time.
func (s *Scheduler) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Cancel removes the job with id without firing it.
func (s *Scheduler) Cancel(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.jobs[id]
	delete(s.jobs, id)
	return ok
}

// Clear removes every pending job without firing any.
func (s *Scheduler) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = make(map[string]*job)
}

// Len returns the number of pending jobs.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}
