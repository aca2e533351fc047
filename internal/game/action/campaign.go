package action

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/colony/internal/game/dice"
	"github.com/cory-johannsen/colony/internal/game/unit"
)

// campaignOpinion is the public opinion gain of a successful public
// relations campaign.
const campaignOpinion = "1d6"

// campaignAction is a public relations or religious campaign led by an
// evangelist. Its price doubles with every use in the same turn.
type campaignAction struct {
	*base
	religious bool

	// Set by prepare on success.
	opinionGain int
}

func newCampaign(e *Engine, def Definition) *campaignAction {
	a := &campaignAction{base: newBase(e, def, string(def.Kind), def.Name), religious: def.Kind == KindReligiousCampaign}
	a.impl = a
	return a
}

func (a *campaignAction) validate(t Target) error {
	if a.religious && t.Unit.HasPermission(unit.PermChurchVolunteers) {
		return ErrAlreadyJoined
	}
	return nil
}

func (a *campaignAction) price(t Target) int { return a.flatPrice(t) }

func (a *campaignAction) describe() string {
	if a.religious {
		return fmt.Sprintf("%s is preaching to recruit church volunteers.", a.actor.Name)
	}
	return fmt.Sprintf("%s is campaigning to win over the public.", a.actor.Name)
}

func (a *campaignAction) roll() { a.rollStandard() }

func (a *campaignAction) prepare() {
	a.opinionGain = 0
	if !a.religious && a.res.Band.Succeeded() {
		a.opinionGain = a.engine.Roller.Roll(dice.MustParse(campaignOpinion)).Total()
	}
}

func (a *campaignAction) details() string {
	if a.opinionGain > 0 {
		return fmt.Sprintf("Public opinion rose by %d.", a.opinionGain)
	}
	return ""
}

func (a *campaignAction) apply() {
	switch a.res.Band {
	case dice.Success, dice.CriticalSuccess:
		a.promote()
		if a.religious {
			a.recruitVolunteers()
			return
		}
		a.engine.Opinion.Change(a.opinionGain)
	case dice.CriticalFailure:
		a.kill(a.actor, "quit")
	}
}

// recruitVolunteers spawns church volunteers and merges them with the
// evangelist into a new group at the evangelist's location.
func (a *campaignAction) recruitVolunteers() {
	evangelist := a.actor
	volunteers := unit.New("Church volunteers", evangelist.Side, evangelist.MaxMovementPoints(), unit.PermChurchVolunteers)
	group := unit.Merge(evangelist.Name+" and church volunteers", evangelist, volunteers,
		unit.PermEvangelist, unit.PermChurchVolunteers)
	x, y := evangelist.X, evangelist.Y
	a.engine.World.Remove(evangelist)
	if err := a.engine.World.Place(group, x, y); err != nil {
		a.logger.Error("placing church volunteers", zap.Error(err))
		return
	}
	a.logger.Info("church volunteers joined", zap.String("group", group.Name))
	a.engine.Presenter.RefreshTile(x, y)
}
