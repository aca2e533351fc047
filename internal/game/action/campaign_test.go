package action

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/colony/internal/game/dice"
	"github.com/cory-johannsen/colony/internal/game/unit"
)

func evangelist(name string) *unit.Unit {
	return unit.New(name, unit.SidePlayer, 1, unit.PermEvangelist, unit.PermOfficer)
}

func TestPublicRelations_RaisesOpinion(t *testing.T) {
	f := newFixture(t, 4, 6)
	u := f.place(t, evangelist("Brother Anselm"), 1, 1)

	res := f.resolve(t, string(KindPublicRelationsCampaign), Target{Unit: u})

	assert.Equal(t, dice.Success, res.Band)
	assert.Equal(t, 56, f.e.Opinion.Value())
	assert.Contains(t, f.shown, "The campaign was a success. Public opinion rose by 6.")
}

func TestPublicRelations_CriticalFailureQuits(t *testing.T) {
	f := newFixture(t, 1)
	u := f.place(t, evangelist("Brother Anselm"), 1, 1)

	res := f.resolve(t, string(KindPublicRelationsCampaign), Target{Unit: u})

	assert.Equal(t, dice.CriticalFailure, res.Band)
	assert.True(t, u.IsDead())
	assert.Equal(t, "quit", u.DeathReason())
	assert.Equal(t, 50, f.e.Opinion.Value())
}

func TestCampaign_PriceDoublesWithinTurn(t *testing.T) {
	f := newFixture(t, 2)
	key := string(KindPublicRelationsCampaign)
	var paid []int
	for i := 0; i < 3; i++ {
		u := f.place(t, evangelist("Evangelist"), 1, 1)
		before := f.ledger.Money()
		assert.Equal(t, 5<<i, f.action(t, key).Price(Target{Unit: u}))
		f.resolve(t, key, Target{Unit: u})
		paid = append(paid, before-f.ledger.Money())
	}
	assert.Equal(t, []int{5, 10, 20}, paid)
	assert.Equal(t, 5, f.e.Prices.Price(string(KindReligiousCampaign)), "campaign kinds double separately")
}

func TestCampaign_DoublingProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		uses := rapid.IntRange(1, 5).Draw(rt, "uses")
		f := newFixture(rt, 2)
		key := string(KindReligiousCampaign)
		for i := 0; i < uses; i++ {
			u := f.place(rt, evangelist("Evangelist"), 1, 1)
			prev := f.e.Prices.Price(key)
			f.resolve(rt, key, Target{Unit: u})
			if got := f.e.Prices.Price(key); got != 2*prev {
				rt.Fatalf("use %d: price %d, want %d", i, got, 2*prev)
			}
		}
	})
}

func TestReligiousCampaign_VolunteersJoin(t *testing.T) {
	f := newFixture(t, 4)
	u := f.place(t, evangelist("Brother Anselm"), 1, 1)

	res := f.resolve(t, string(KindReligiousCampaign), Target{Unit: u})
	require.Equal(t, dice.Success, res.Band)

	units := f.grid.FindLocation(1, 1).Units()
	require.Len(t, units, 1)
	group := units[0]
	assert.NotSame(t, u, group)
	assert.True(t, group.HasPermission(unit.PermChurchVolunteers))
	assert.True(t, group.HasPermission(unit.PermEvangelist))
	assert.True(t, group.HasPermission(unit.PermGroup))
	assert.Same(t, u, group.Officer())
	assert.Zero(t, group.MovementPoints())

	group.ResetMovement()
	assert.False(t, f.e.Click(string(KindReligiousCampaign), Target{Unit: group}))
	assert.Equal(t, "The evangelist already leads church volunteers.", f.presenter.messages[0])
}
