package dice

// Band is the four-tier classification of a resolved roll.
type Band int

const (
	CriticalFailure Band = iota
	Failure
	Success
	CriticalSuccess
)

// String returns a human-readable band label.
func (b Band) String() string {
	switch b {
	case CriticalFailure:
		return "critical failure"
	case Failure:
		return "failure"
	case Success:
		return "success"
	case CriticalSuccess:
		return "critical success"
	default:
		return "unknown"
	}
}

// Succeeded reports whether b is Success or CriticalSuccess.
func (b Band) Succeeded() bool { return b == Success || b == CriticalSuccess }

// Fixed boundaries of the roll-difference axis used by opposed actions.
const (
	OpposedMaxCritFail = -2
	OpposedMinSuccess  = 2
)

// Crit-success thresholds on the best own die.
const (
	BattalionMinCritSuccess = 6
	DefaultMinCritSuccess   = 7
)

// Thresholds partitions the integer result axis into bands.
//
// Invariant: MaxCritFail < MinSuccess.
type Thresholds struct {
	MinSuccess             int
	MaxCritFail            int
	MinCritSuccess         int
	AllowCriticalFailures  bool
	AllowCriticalSuccesses bool
}

// CritSuccessThreshold returns the crit-success threshold for an acting unit.
//
// Postcondition: Returns 6 for battalions and 7 otherwise.
func CritSuccessThreshold(battalion bool) int {
	if battalion {
		return BattalionMinCritSuccess
	}
	return DefaultMinCritSuccess
}

// OpposedThresholds returns the difference-axis thresholds for a combat roll.
func OpposedThresholds(battalion bool) Thresholds {
	return Thresholds{
		MinSuccess:             OpposedMinSuccess,
		MaxCritFail:            OpposedMaxCritFail,
		MinCritSuccess:         CritSuccessThreshold(battalion),
		AllowCriticalFailures:  true,
		AllowCriticalSuccesses: true,
	}
}

// Classify places result into a band.
//
// result is the roll difference for opposed actions or the modified roll for
// threshold actions. critRoll is the value compared with MinCritSuccess: the
// best own die for opposed actions, the modified roll otherwise. A veteran
// can never critically succeed.
//
// Postcondition: With critical failures allowed, result <= MaxCritFail iff
// the band is CriticalFailure; result >= MinSuccess iff the band succeeded.
func Classify(result, critRoll int, t Thresholds, veteran bool) Band {
	switch {
	case result <= t.MaxCritFail && t.AllowCriticalFailures:
		return CriticalFailure
	case result < t.MinSuccess:
		return Failure
	case t.AllowCriticalSuccesses && !veteran && critRoll >= t.MinCritSuccess:
		return CriticalSuccess
	default:
		return Success
	}
}
