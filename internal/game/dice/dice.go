// Package dice provides the randomness abstraction, dice expressions and the
// outcome-band classification used by the action resolution engine.
package dice

import "fmt"

// D6 is the die every action in the engine rolls unless stated otherwise.
const D6 = 6

// RollResult holds the full audit trail for a single dice roll evaluation.
//
// Postcondition: Total() == sum(Dice) + Modifier.
type RollResult struct {
	Expression string // original expression string, e.g. "1d6+1"
	Dice       []int  // individual die results before modifier
	Modifier   int    // flat modifier (may be negative)
}

// Total returns the sum of all die results plus the modifier.
func (r RollResult) Total() int {
	total := r.Modifier
	for _, d := range r.Dice {
		total += d
	}
	return total
}

// Best returns the highest individual die, or 0 when no dice were rolled.
func (r RollResult) Best() int {
	return Best(r.Dice)
}

// String returns a human-readable audit string such as "2d6 → [4 5] +0 = 9".
//
// Precondition: r.Expression is non-empty.
func (r RollResult) String() string {
	if r.Expression == "" {
		panic("dice: RollResult.String() precondition violated: Expression must be non-empty")
	}
	return fmt.Sprintf("%s → %v %+d = %d", r.Expression, r.Dice, r.Modifier, r.Total())
}

// Best returns the highest value in rolls, or 0 for an empty slice.
func Best(rolls []int) int {
	best := 0
	for _, r := range rolls {
		if r > best {
			best = r
		}
	}
	return best
}

// Clamp bounds a die face to [1, sides].
func Clamp(face, sides int) int {
	if face < 1 {
		return 1
	}
	if face > sides {
		return sides
	}
	return face
}

// Source is the randomness provider for dice rolls.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}
