package action

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/colony/internal/game/dice"
	"github.com/cory-johannsen/colony/internal/game/unit"
	"github.com/cory-johannsen/colony/internal/game/world"
)

const (
	// resourceOpinion is the public opinion gain for discovering a resource.
	resourceOpinion = 3
	// discoveryOpinion is the public opinion gain for an ordinary discovery.
	discoveryOpinion = "1d3-1"
)

// explorationAction explores an adjacent unexplored location and moves the
// expedition into it when it can.
type explorationAction struct {
	*base

	// Set by prepare on success.
	opinionGain int
	moves       bool
}

func newExploration(e *Engine, def Definition) *explorationAction {
	a := &explorationAction{base: newBase(e, def, string(def.Kind), def.Name)}
	a.impl = a
	return a
}

func (a *explorationAction) targetCell(t Target) *world.Cell {
	if !adjacent(t.DX, t.DY) {
		return nil
	}
	return a.engine.World.FindLocation(t.Unit.X+t.DX, t.Unit.Y+t.DY)
}

func (a *explorationAction) validate(t Target) error {
	cell := a.targetCell(t)
	if cell == nil {
		return ErrInvalidTarget
	}
	if cell.Explored {
		return ErrAlreadyExplored
	}
	return nil
}

func (a *explorationAction) price(t Target) int { return a.flatPrice(t) }

func (a *explorationAction) describe() string {
	return fmt.Sprintf("%s sets out to explore the area at (%d, %d).",
		a.actor.Name, a.actor.X+a.target.DX, a.actor.Y+a.target.DY)
}

func (a *explorationAction) roll() { a.rollStandard() }

// prepare decides the discovery and whether the expedition can move in:
// it needs enough movement for the terrain, a passable location and no
// hostile occupant.
func (a *explorationAction) prepare() {
	a.opinionGain = 0
	a.moves = false
	if !a.res.Band.Succeeded() {
		return
	}
	cell := a.targetCell(a.target)
	if cell.Resource {
		a.opinionGain = resourceOpinion
	} else {
		a.opinionGain = a.engine.Roller.Roll(dice.MustParse(discoveryOpinion)).Total()
	}
	passable := cell.Terrain != world.TerrainWater || a.actor.HasPermission(unit.PermSwim)
	a.moves = passable && !cell.HasHostile(a.actor.Side) && a.actor.MovementPoints() >= cell.MovementCost()
}

func (a *explorationAction) details() string {
	if !a.res.Band.Succeeded() {
		return ""
	}
	var parts []string
	if a.targetCell(a.target).Resource {
		parts = append(parts, "A valuable resource was found.")
	}
	if a.opinionGain != 0 {
		parts = append(parts, fmt.Sprintf("Public opinion rose by %d.", a.opinionGain))
	}
	if !a.moves {
		parts = append(parts, "The expedition could not move into the area.")
	}
	return strings.Join(parts, " ")
}

func (a *explorationAction) apply() {
	switch a.res.Band {
	case dice.Success, dice.CriticalSuccess:
		cell := a.targetCell(a.target)
		cell.Explored = true
		if a.moves {
			if err := a.engine.World.Move(a.actor, a.target.DX, a.target.DY); err != nil {
				a.logger.Warn("expedition could not move", zap.Error(err))
			}
		}
		a.engine.Opinion.Change(a.opinionGain)
		a.promote()
		a.engine.Presenter.RefreshTile(cell.X, cell.Y)
	case dice.CriticalFailure:
		a.kill(a.actor, "lost in the wilderness")
	}
}
