package dice_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/colony/internal/game/dice"
)

func TestCritSuccessThreshold(t *testing.T) {
	assert.Equal(t, 6, dice.CritSuccessThreshold(true))
	assert.Equal(t, 7, dice.CritSuccessThreshold(false))
}

func TestClassifyOpposed_Examples(t *testing.T) {
	// non-battalion: 5 - 1 - (5 + 0) = -1 → failure
	assert.Equal(t, dice.Failure, dice.Classify(-1, 5, dice.OpposedThresholds(false), false))
	// veteran-dice battalion officer not yet promoted: 6 - 1 = 5, best 6 → critical success
	assert.Equal(t, dice.CriticalSuccess, dice.Classify(5, 6, dice.OpposedThresholds(true), false))
	// already veteran cannot be promoted again
	assert.Equal(t, dice.Success, dice.Classify(5, 6, dice.OpposedThresholds(true), true))
	assert.Equal(t, dice.CriticalFailure, dice.Classify(-2, 1, dice.OpposedThresholds(true), false))
	assert.Equal(t, dice.Success, dice.Classify(2, 5, dice.OpposedThresholds(false), false))
}

func TestClassify_OpposedBands_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		total := rapid.IntRange(-12, 12).Draw(rt, "total")
		best := rapid.IntRange(1, 6).Draw(rt, "best")
		battalion := rapid.Bool().Draw(rt, "battalion")
		veteran := rapid.Bool().Draw(rt, "veteran")
		band := dice.Classify(total, best, dice.OpposedThresholds(battalion), veteran)

		assert.Equal(rt, total <= -2, band == dice.CriticalFailure)
		assert.Equal(rt, total >= -1 && total <= 1, band == dice.Failure)
		assert.Equal(rt, total >= 2, band.Succeeded())
		crit := total >= 2 && best >= dice.CritSuccessThreshold(battalion) && !veteran
		assert.Equal(rt, crit, band == dice.CriticalSuccess)
	})
}

func TestClassify_CriticalFailuresDisabled_Property(t *testing.T) {
	th := dice.Thresholds{MinSuccess: 4, MaxCritFail: 1, MinCritSuccess: 7, AllowCriticalSuccesses: true}
	rapid.Check(t, func(rt *rapid.T) {
		result := rapid.IntRange(-6, 12).Draw(rt, "result")
		band := dice.Classify(result, result, th, false)
		assert.NotEqual(rt, dice.CriticalFailure, band)
		assert.Equal(rt, result >= 4, band.Succeeded())
	})
}

func TestClassify_ExactMinSuccessSucceeds(t *testing.T) {
	th := dice.Thresholds{MinSuccess: 4, MaxCritFail: 1, MinCritSuccess: 7}
	assert.Equal(t, dice.Success, dice.Classify(4, 4, th, false))
	assert.Equal(t, dice.Failure, dice.Classify(3, 3, th, false))
}

func TestBand_String(t *testing.T) {
	assert.Equal(t, "critical failure", dice.CriticalFailure.String())
	assert.Equal(t, "failure", dice.Failure.String())
	assert.Equal(t, "success", dice.Success.String())
	assert.Equal(t, "critical success", dice.CriticalSuccess.String())
	assert.Equal(t, "unknown", dice.Band(42).String())
}
