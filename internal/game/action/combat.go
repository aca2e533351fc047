package action

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/colony/internal/game/dice"
	"github.com/cory-johannsen/colony/internal/game/unit"
	"github.com/cory-johannsen/colony/internal/game/world"
)

const (
	// evilPerKill is added to the evil tracker for every enemy killed in an attack.
	evilPerKill = 4
	// massacreOpinion is the public opinion swing after a settlement falls.
	massacreOpinion = "1d7-4"
)

// combatAction is an opposed roll against an enemy unit in an adjacent
// location. Hunting is the same action restricted to beasts. The combat
// instance also resolves enemy attacks through Defend.
type combatAction struct {
	*base
	hunting bool

	// Set by prepare for a lost defence.
	massacre     bool
	opinionShift int
}

func newCombat(e *Engine, def Definition) *combatAction {
	a := &combatAction{base: newBase(e, def, string(def.Kind), def.Name), hunting: def.Kind == KindHunting}
	a.impl = a
	return a
}

func adjacent(dx, dy int) bool {
	return dx >= -1 && dx <= 1 && dy >= -1 && dy <= 1 && (dx != 0 || dy != 0)
}

func (a *combatAction) targetCell(t Target) *world.Cell {
	if !adjacent(t.DX, t.DY) {
		return nil
	}
	return a.engine.World.FindLocation(t.Unit.X+t.DX, t.Unit.Y+t.DY)
}

// findOpponent returns the enemy in cell that fights best against actor.
// Hunting only targets beasts and combat never does.
func (a *combatAction) findOpponent(actor *unit.Unit, cell *world.Cell) *unit.Unit {
	var best *unit.Unit
	bestMod := 0
	for _, u := range cell.UnitsOf(unit.SideEnemy) {
		if u.HasPermission(unit.PermBeast) != a.hunting {
			continue
		}
		mod := a.engine.World.CombatModifier(u, actor, true)
		if best == nil || mod > bestMod {
			best, bestMod = u, mod
		}
	}
	return best
}

func (a *combatAction) validate(t Target) error {
	cell := a.targetCell(t)
	if cell == nil {
		return ErrInvalidTarget
	}
	if a.findOpponent(t.Unit, cell) == nil {
		return ErrNoOpponent
	}
	return nil
}

func (a *combatAction) bind(t Target) {
	if a.defending {
		return
	}
	if cell := a.targetCell(t); cell != nil {
		a.opponent = a.findOpponent(t.Unit, cell)
	}
}

func (a *combatAction) price(t Target) int {
	if a.defending {
		return 0
	}
	return a.flatPrice(t)
}

// Defend resolves an enemy attack on defender without asking for
// confirmation. The attacker must already stand in the defender's location.
//
// Precondition: the action is in StateReady.
func (a *combatAction) Defend(defender, attacker *unit.Unit) {
	a.defending = true
	a.opponent = attacker
	a.PreStart(Target{Unit: defender})
	a.Middle()
}

func (a *combatAction) describe() string {
	if a.defending {
		return fmt.Sprintf("%s is attacking %s!", a.opponent.Name, a.actor.Name)
	}
	if a.hunting {
		return fmt.Sprintf("%s is hunting %s.", a.actor.Name, a.opponent.Name)
	}
	return fmt.Sprintf("%s is attacking %s.", a.actor.Name, a.opponent.Name)
}

func (a *combatAction) roll() { a.rollStandard() }

func (a *combatAction) prepare() {
	a.massacre = false
	a.opinionShift = 0
	if !a.defending || a.res.Band != dice.CriticalFailure {
		return
	}
	cell := a.engine.World.FindLocation(a.actor.X, a.actor.Y)
	for _, u := range cell.UnitsOf(unit.SidePlayer) {
		if u != a.actor && u.IsCombatant() {
			return
		}
	}
	a.massacre = true
	a.opinionShift = a.engine.Roller.Roll(dice.MustParse(massacreOpinion)).Total()
}

func (a *combatAction) details() string {
	if a.massacre {
		return fmt.Sprintf("The settlement was sacked. Public opinion changed by %+d.", a.opinionShift)
	}
	return ""
}

func (a *combatAction) apply() {
	if a.defending {
		a.applyDefence()
		return
	}
	switch a.res.Band {
	case dice.Success, dice.CriticalSuccess:
		dx, dy := a.opponent.X-a.actor.X, a.opponent.Y-a.actor.Y
		a.kill(a.opponent, "killed in battle")
		if !a.hunting {
			a.engine.Evil.Change(evilPerKill)
		}
		a.promote()
		cell := a.engine.World.FindLocation(a.actor.X+dx, a.actor.Y+dy)
		if !cell.HasHostile(a.actor.Side) {
			if err := a.engine.World.Move(a.actor, dx, dy); err != nil {
				a.logger.Debug("attacker stays", zap.Error(err))
			}
		}
	case dice.CriticalFailure:
		a.actor.SetPermission(unit.PermDisorganized, true)
	}
	a.engine.Presenter.RefreshTile(a.actor.X, a.actor.Y)
}

// applyDefence resolves a defence. actor is the defender and opponent the
// attacker. The attacker retreats unless it sacked the settlement.
func (a *combatAction) applyDefence() {
	attacker := a.opponent
	switch a.res.Band {
	case dice.Success, dice.CriticalSuccess:
		attacker.SetPermission(unit.PermDisorganized, true)
	case dice.CriticalFailure:
		cell := a.engine.World.FindLocation(a.actor.X, a.actor.Y)
		a.kill(a.actor, "killed defending")
		if a.massacre {
			for _, u := range cell.UnitsOf(unit.SidePlayer) {
				a.kill(u, "killed in the sack")
			}
			for _, b := range cell.Buildings {
				b.Damaged = true
			}
			a.engine.Opinion.Change(a.opinionShift)
			a.logger.Info("settlement sacked",
				zap.Int("x", cell.X),
				zap.Int("y", cell.Y),
				zap.Int("opinion_shift", a.opinionShift),
			)
		}
	}
	if a.massacre {
		// The attacker holds the sacked location.
		attacker.SetMovementPoints(0)
	} else {
		a.engine.World.Retreat(attacker)
	}
	a.engine.Presenter.RefreshTile(a.actor.X, a.actor.Y)
}
