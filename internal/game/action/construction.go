package action

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/colony/internal/game/dice"
	"github.com/cory-johannsen/colony/internal/game/world"
)

// constructionAction builds, repairs or upgrades a building in the acting
// unit's location. One construction instance exists per building type;
// repair and upgrade take the building type from the target.
type constructionAction struct {
	*base
	building world.BuildingType
}

func newConstruction(e *Engine, def Definition, t world.BuildingType) *constructionAction {
	key, name := string(def.Kind), def.Name
	if t != "" {
		key = fmt.Sprintf("%s:%s", def.Kind, t)
		if spec, ok := e.World.Catalog().Spec(t); ok {
			name = fmt.Sprintf("%s %s", def.Name, spec.Name)
		}
	}
	a := &constructionAction{base: newBase(e, def, key, name), building: t}
	a.impl = a
	return a
}

func (a *constructionAction) buildingType(t Target) world.BuildingType {
	if a.building != "" {
		return a.building
	}
	return t.Building
}

func (a *constructionAction) validate(t Target) error {
	cell := a.engine.World.FindLocation(t.Unit.X, t.Unit.Y)
	bt := a.buildingType(t)
	spec, ok := a.engine.World.Catalog().Spec(bt)
	if cell == nil || !ok {
		return ErrInvalidTarget
	}
	existing := cell.Building(bt)
	switch a.def.Kind {
	case KindConstruction:
		if existing != nil {
			return ErrBuildingPresent
		}
		if bt == world.BuildingResource && !cell.Resource {
			return ErrNoResource
		}
	case KindRepair:
		if existing == nil {
			return ErrNoBuilding
		}
		if !existing.Damaged {
			return ErrNotDamaged
		}
	case KindUpgrade:
		if existing == nil {
			return ErrNoBuilding
		}
		if existing.Damaged || !spec.CanUpgrade(t.Upgrade) {
			return ErrCannotUpgrade
		}
	}
	return nil
}

func (a *constructionAction) price(t Target) int {
	catalog := a.engine.World.Catalog()
	bt := a.buildingType(t)
	switch a.def.Kind {
	case KindRepair:
		return catalog.RepairCost(bt)
	case KindUpgrade:
		if t.Unit == nil {
			return 0
		}
		cell := a.engine.World.FindLocation(t.Unit.X, t.Unit.Y)
		if cell == nil || cell.Building(bt) == nil {
			return 0
		}
		return catalog.UpgradeCost(cell.Building(bt), t.Upgrade)
	default:
		return catalog.BuildCost(bt)
	}
}

func (a *constructionAction) describe() string {
	bt := a.buildingType(a.target)
	label := string(bt)
	if spec, ok := a.engine.World.Catalog().Spec(bt); ok {
		label = spec.Name
	}
	switch a.def.Kind {
	case KindRepair:
		return fmt.Sprintf("%s is repairing the %s.", a.actor.Name, label)
	case KindUpgrade:
		return fmt.Sprintf("%s is improving the %s with %s.", a.actor.Name, label, a.target.Upgrade)
	default:
		return fmt.Sprintf("%s is building a %s.", a.actor.Name, label)
	}
}

func (a *constructionAction) roll()           { a.rollStandard() }
func (a *constructionAction) prepare()        {}
func (a *constructionAction) details() string { return "" }

func (a *constructionAction) apply() {
	if !a.res.Band.Succeeded() {
		return
	}
	cell := a.engine.World.FindLocation(a.actor.X, a.actor.Y)
	bt := a.buildingType(a.target)
	switch a.def.Kind {
	case KindConstruction:
		a.engine.World.AddBuilding(cell, bt)
	case KindRepair:
		cell.Building(bt).Damaged = false
	case KindUpgrade:
		cell.Building(bt).Upgrades[a.target.Upgrade]++
	}
	a.logger.Info("building changed",
		zap.String("building", string(bt)),
		zap.String("kind", string(a.def.Kind)),
		zap.Int("x", cell.X),
		zap.Int("y", cell.Y),
	)
	if a.res.Band == dice.CriticalSuccess {
		a.promote()
	}
	a.engine.Presenter.RefreshTile(cell.X, cell.Y)
}
