package action

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/colony/internal/game/dice"
	"github.com/cory-johannsen/colony/internal/game/ledger"
)

const (
	// evidenceTarget is the minimum evidence roll that holds up in court.
	evidenceTarget = 5
	// bribedSides caps a bribed prosecutor's evidence dice below evidenceTarget.
	bribedSides = 4
	// retainTarget is the minimum d6 that keeps a piece of evidence after an acquittal.
	retainTarget = 4
	// guiltyAchievement is earned by the first conviction.
	guiltyAchievement = "Guilty"
)

// trialAction puts a minister on trial. The prosecutor rolls one die per
// piece of evidence and the defendant is convicted if any of them holds up.
type trialAction struct {
	*base

	// Set by prepare.
	confiscated int
	retained    int
}

func newTrial(e *Engine, def Definition) *trialAction {
	a := &trialAction{base: newBase(e, def, string(def.Kind), def.Name)}
	a.impl = a
	return a
}

func (a *trialAction) validate(t Target) error {
	d := t.Defendant
	if d == nil || d.Imprisoned || d == a.engine.Cabinet.Prosecutor() {
		return ErrNoDefendant
	}
	if d.Evidence == 0 {
		return ErrNoEvidence
	}
	return nil
}

func (a *trialAction) price(t Target) int { return a.flatPrice(t) }

func (a *trialAction) describe() string {
	return fmt.Sprintf("%s is prosecuting %s for theft.", a.minister.Name, a.target.Defendant.Name)
}

// roll pays off a corrupt prosecutor from the defendant's stolen money, then
// rolls the evidence. A bribed prosecutor rolls a d4, which can never
// convict.
func (a *trialAction) roll() {
	defendant := a.target.Defendant
	prosecutor := a.minister
	a.res.Evidence = defendant.Evidence

	effects := a.engine.Effects
	a.res.Forced = effects.AlwaysSucceed || effects.AlwaysFail
	sides := dice.D6
	if !a.res.Forced && defendant.Stolen > 0 && prosecutor.DecidesToSteal() {
		bribe := (defendant.Stolen + 1) / 2
		defendant.Stolen -= bribe
		prosecutor.Stolen += bribe
		a.res.Bribed = true
		sides = bribedSides
		a.logger.Info("prosecutor bribed",
			zap.String("prosecutor", prosecutor.Name),
			zap.String("defendant", defendant.Name),
			zap.Int("amount", bribe),
			zap.String("category", string(ledger.CategoryBribery)),
		)
	}

	rolls := make([]int, a.res.Evidence)
	successes := 0
	for i := range rolls {
		switch {
		case effects.AlwaysSucceed:
			rolls[i] = dice.D6
		case effects.AlwaysFail:
			rolls[i] = 1
		default:
			rolls[i] = prosecutor.NoCorruptionRoll(sides)
		}
		if rolls[i] >= evidenceTarget {
			successes++
		}
	}
	a.res.Rolls = rolls
	if len(rolls) > 0 {
		a.res.RollResult = dice.Best(rolls)
	}
	a.res.Total = successes
	a.res.Band = dice.Classify(successes, a.res.RollResult, a.res.Thresholds, false)
}

// prepare settles the confiscation on a conviction, or re-rolls every piece
// of evidence on an acquittal to see what survives.
func (a *trialAction) prepare() {
	defendant := a.target.Defendant
	a.confiscated = 0
	a.retained = 0
	if a.res.Band.Succeeded() {
		a.confiscated = defendant.Stolen / 2
		return
	}
	for i := 0; i < defendant.Evidence; i++ {
		if a.engine.Roller.Die(dice.D6) >= retainTarget {
			a.retained++
		}
	}
}

func (a *trialAction) details() string {
	if a.res.Band.Succeeded() {
		if a.confiscated > 0 {
			return fmt.Sprintf("%d was recovered from the stolen money.", a.confiscated)
		}
		return ""
	}
	return fmt.Sprintf("%d of %d pieces of evidence remain usable.", a.retained, a.res.Evidence)
}

func (a *trialAction) apply() {
	defendant := a.target.Defendant
	if !a.res.Band.Succeeded() {
		defendant.Evidence = a.retained
		a.logger.Info("defendant acquitted",
			zap.String("defendant", defendant.Name),
			zap.Int("evidence", defendant.Evidence),
			zap.Bool("bribed", a.res.Bribed),
		)
		return
	}
	a.engine.Cabinet.Remove(defendant)
	defendant.Imprisoned = true
	if a.confiscated > 0 {
		a.engine.Ledger.Change(a.confiscated, ledger.CategoryTrialCompensation)
	}
	defendant.Stolen = 0
	defendant.Evidence = 0
	a.engine.Fear.Change(1)
	a.engine.Achievements.Achieve(guiltyAchievement)
	a.logger.Info("defendant convicted",
		zap.String("defendant", defendant.Name),
		zap.Int("confiscated", a.confiscated),
	)
}
