package jobs

import (
	"sync"
	"time"
)

// FrameLoop advances a Scheduler on a fixed real-time interval and runs the
// registered frame callbacks after each advance. All callbacks run on the
// loop goroutine.
type FrameLoop struct {
	interval  time.Duration
	scheduler *Scheduler
	now       func() time.Time

	mu     sync.Mutex
	frames []func(now time.Time)
	quit   chan struct{}
	once   sync.Once
}

// NewFrameLoop returns a loop that ticks every interval.
//
// Precondition: interval must be > 0; scheduler must be non-nil.
func NewFrameLoop(interval time.Duration, scheduler *Scheduler) *FrameLoop {
	if interval <= 0 {
		panic("jobs.NewFrameLoop: interval must be > 0")
	}
	return &FrameLoop{
		interval:  interval,
		scheduler: scheduler,
		now:       time.Now,
		quit:      make(chan struct{}),
	}
}

// OnFrame registers fn to run once per frame after the scheduler advances.
func (f *FrameLoop) OnFrame(fn func(now time.Time)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.frames = append(f.frames, fn)
}

// Frame performs a single frame at now. Start calls it on every tick.
func (f *FrameLoop) Frame(now time.Time) {
	f.scheduler.Advance(now)
	f.mu.Lock()
	frames := make([]func(time.Time), len(f.frames))
	copy(frames, f.frames)
	f.mu.Unlock()
	for _, fn := range frames {
		fn(now)
	}
}

// Start runs frames until Stop is called.
func (f *FrameLoop) Start() error {
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()
	for {
		select {
		case <-f.quit:
			return nil
		case <-ticker.C:
			f.Frame(f.now())
		}
	}
}

// Stop ends Start. Safe to call multiple times.
func (f *FrameLoop) Stop() {
	f.once.Do(func() { close(f.quit) })
}
