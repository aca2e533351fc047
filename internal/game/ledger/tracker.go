package ledger

import (
	"math"

	"go.uber.org/zap"
)

// Tracker is a bounded integer game statistic such as public opinion.
//
// Invariant: Min() <= Value() <= Max().
type Tracker struct {
	name     string
	value    int
	min, max int
	logger   *zap.Logger
}

// NewTracker creates a tracker clamped to [min, max].
//
// Precondition: min <= max.
func NewTracker(name string, initial, min, max int, logger *zap.Logger) *Tracker {
	t := &Tracker{name: name, min: min, max: max, logger: logger}
	t.Set(initial)
	return t
}

// NewOpinionTracker creates the 0..100 public opinion tracker.
func NewOpinionTracker(initial int, logger *zap.Logger) *Tracker {
	return NewTracker("public_opinion", initial, 0, 100, logger)
}

// NewCounter creates an unbounded non-negative tracker, used for evil and fear.
func NewCounter(name string, logger *zap.Logger) *Tracker {
	return NewTracker(name, 0, 0, math.MaxInt, logger)
}

// Name returns the tracker name.
func (t *Tracker) Name() string { return t.name }

// Value returns the current value.
func (t *Tracker) Value() int { return t.value }

// Set replaces the value, clamped to the tracker bounds.
func (t *Tracker) Set(v int) {
	t.value = max(t.min, min(t.max, v))
}

// Change adds delta and returns the change actually applied after clamping.
func (t *Tracker) Change(delta int) int {
	before := t.value
	t.Set(t.value + delta)
	applied := t.value - before
	t.logger.Debug("tracker changed",
		zap.String("tracker", t.name),
		zap.Int("delta", delta),
		zap.Int("applied", applied),
		zap.Int("value", t.value),
	)
	return applied
}
