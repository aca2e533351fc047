// Package achievement records one-time milestones.
package achievement

import (
	"sort"

	"go.uber.org/zap"
)

// Set holds the achievements earned so far.
type Set struct {
	earned map[string]bool
	logger *zap.Logger
	// OnAchieve is called the first time each achievement is earned.
	OnAchieve func(name string)
}

// NewSet creates an empty achievement set.
func NewSet(logger *zap.Logger) *Set {
	return &Set{earned: make(map[string]bool), logger: logger}
}

// Achieve records name. Repeats are ignored.
func (s *Set) Achieve(name string) {
	if s.earned[name] {
		return
	}
	s.earned[name] = true
	s.logger.Info("achievement earned", zap.String("achievement", name))
	if s.OnAchieve != nil {
		s.OnAchieve(name)
	}
}

// Has reports whether name has been earned.
func (s *Set) Has(name string) bool { return s.earned[name] }

// Earned returns the earned achievement names, sorted.
func (s *Set) Earned() []string {
	out := make([]string, 0, len(s.earned))
	for n := range s.earned {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
