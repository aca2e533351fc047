package unit_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/colony/internal/game/dice"
	"github.com/cory-johannsen/colony/internal/game/unit"
)

func TestUnit_Permissions(t *testing.T) {
	u := unit.New("Fusiliers", unit.SidePlayer, 2, unit.PermBattalion)
	assert.True(t, u.HasPermission(unit.PermBattalion))
	assert.False(t, u.HasPermission(unit.PermVeteran))
	u.SetPermission(unit.PermDisorganized, true)
	assert.Equal(t, []unit.Permission{unit.PermBattalion, unit.PermDisorganized}, u.Permissions())
	u.SetPermission(unit.PermDisorganized, false)
	assert.False(t, u.HasPermission(unit.PermDisorganized))
	assert.NotEmpty(t, u.ID)
}

func TestUnit_NumDice(t *testing.T) {
	u := unit.New("Explorer", unit.SidePlayer, 1)
	assert.Equal(t, 1, u.NumDice())
	u.PromoteVeteran()
	assert.Equal(t, 2, u.NumDice())
}

func TestUnit_MovementBounds_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		max := rapid.IntRange(0, 5).Draw(rt, "max")
		u := unit.New("u", unit.SidePlayer, max)
		n := rapid.IntRange(-10, 10).Draw(rt, "n")
		u.SetMovementPoints(n)
		assert.GreaterOrEqual(rt, u.MovementPoints(), 0)
		assert.LessOrEqual(rt, u.MovementPoints(), max)
	})
}

func TestUnit_IsCombatant(t *testing.T) {
	assert.True(t, unit.New("Fusiliers", unit.SidePlayer, 1, unit.PermBattalion).IsCombatant())
	assert.True(t, unit.New("Safari", unit.SidePlayer, 1, unit.PermSafari).IsCombatant())
	assert.False(t, unit.New("Workers", unit.SidePlayer, 1).IsCombatant())
	assert.True(t, unit.New("Warriors", unit.SideEnemy, 1).IsCombatant())
}

func TestUnit_RollAdjustment(t *testing.T) {
	u := unit.New("u", unit.SidePlayer, 1)
	assert.Equal(t, 0, u.RollAdjustment(dice.NewSequence(6)))
	require.NoError(t, u.SetRollAdjustment("1d3-2"))
	assert.Equal(t, 1, u.RollAdjustment(dice.NewSequence(3)))
	assert.Equal(t, -1, u.RollAdjustment(dice.NewSequence(1)))
	assert.Error(t, u.SetRollAdjustment("bogus"))
}

func TestUnit_DieAndMove(t *testing.T) {
	u := unit.New("u", unit.SidePlayer, 2)
	u.MoveTo(3, 4)
	assert.Equal(t, 0, u.PrevX)
	x, y := u.Location()
	assert.Equal(t, [2]int{3, 4}, [2]int{x, y})
	u.Die("quit")
	assert.True(t, u.IsDead())
	assert.Equal(t, "quit", u.DeathReason())
	assert.Equal(t, 0, u.MovementPoints())
}

func TestMerge_InheritsOfficerVeteranAndLocation(t *testing.T) {
	officer := unit.New("Evangelist", unit.SidePlayer, 1, unit.PermOfficer, unit.PermEvangelist, unit.PermInEurope)
	officer.PromoteVeteran()
	worker := unit.New("Church volunteers", unit.SidePlayer, 1, unit.PermChurchVolunteers)
	g := unit.Merge("Missionaries", officer, worker, unit.PermMissionaries)

	assert.True(t, g.HasPermission(unit.PermGroup))
	assert.True(t, g.HasPermission(unit.PermMissionaries))
	assert.True(t, g.IsVeteran())
	assert.True(t, g.HasPermission(unit.PermInEurope))
	assert.Same(t, officer, g.Officer())
	assert.Equal(t, 0, g.MovementPoints())
}
