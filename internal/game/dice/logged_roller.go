package dice

import (
	"fmt"

	"go.uber.org/zap"
)

// Roller wraps a Source and logger to provide logged dice rolling.
// All rolls are logged at debug level with expression, dice values, modifier, and total.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewLoggedRoller creates a Roller that rolls with src and logs each roll to logger.
//
// Precondition: src and logger must be non-nil.
func NewLoggedRoller(src Source, logger *zap.Logger) *Roller {
	return &Roller{src: src, logger: logger}
}

// Source exposes the underlying randomness provider.
func (r *Roller) Source() Source { return r.src }

// Roll evaluates expr and logs the result at debug level.
func (r *Roller) Roll(expr Expression) RollResult {
	result := Roll(expr, r.src)
	r.logger.Debug("dice roll",
		zap.String("expression", result.Expression),
		zap.Ints("dice", result.Dice),
		zap.Int("modifier", result.Modifier),
		zap.Int("total", result.Total()),
	)
	return result
}

// RollExpr parses expr and rolls it, logging the result.
func (r *Roller) RollExpr(expr string) (RollResult, error) {
	e, err := Parse(expr)
	if err != nil {
		return RollResult{}, err
	}
	return r.Roll(e), nil
}

// Die rolls a single die with the given number of sides and returns its face.
//
// Precondition: sides >= 2.
func (r *Roller) Die(sides int) int {
	if sides < 2 {
		panic(fmt.Sprintf("dice: Die called with %d sides", sides))
	}
	face := r.src.Intn(sides) + 1
	r.logger.Debug("die roll", zap.Int("sides", sides), zap.Int("face", face))
	return face
}

// Dice rolls n dice with the given number of sides.
func (r *Roller) Dice(n, sides int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = r.Die(sides)
	}
	return out
}
