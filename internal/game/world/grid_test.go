package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/colony/internal/game/unit"
)

func testGrid() *Grid {
	return NewGrid(5, 5, DefaultCatalog())
}

func TestGrid_FindLocation(t *testing.T) {
	g := testGrid()
	cell := g.FindLocation(2, 3)
	require.NotNil(t, cell)
	assert.Equal(t, 2, cell.X)
	assert.Equal(t, 3, cell.Y)
	assert.Nil(t, g.FindLocation(-1, 0))
	assert.Nil(t, g.FindLocation(5, 0))
	assert.Nil(t, g.FindLocation(0, 5))
}

func TestGrid_MoveSpendsTerrainCost(t *testing.T) {
	g := testGrid()
	g.FindLocation(1, 0).Terrain = TerrainHills
	u := unit.New("Explorers", unit.SidePlayer, 4, unit.PermExpedition)
	require.NoError(t, g.Place(u, 0, 0))

	require.NoError(t, g.Move(u, 1, 0))
	assert.Equal(t, 1, u.X)
	assert.Equal(t, 2, u.MovementPoints())
	assert.Len(t, g.FindLocation(1, 0).Units(), 1)
	assert.Empty(t, g.FindLocation(0, 0).Units())
}

func TestGrid_MoveRejectsWaterWithoutSwim(t *testing.T) {
	g := testGrid()
	g.FindLocation(1, 0).Terrain = TerrainWater
	u := unit.New("Workers", unit.SidePlayer, 4)
	require.NoError(t, g.Place(u, 0, 0))

	assert.ErrorIs(t, g.Move(u, 1, 0), ErrImpassable)
	assert.ErrorIs(t, g.Move(u, -1, 0), ErrOutOfBounds)

	u.SetPermission(unit.PermSwim, true)
	assert.NoError(t, g.Move(u, 1, 0))
}

func TestGrid_Retreat(t *testing.T) {
	g := testGrid()
	u := unit.New("Battalion", unit.SidePlayer, 3, unit.PermBattalion)
	require.NoError(t, g.Place(u, 2, 2))
	require.NoError(t, g.Move(u, 0, 1))

	g.Retreat(u)
	assert.Equal(t, 2, u.X)
	assert.Equal(t, 2, u.Y)
	assert.Equal(t, 0, u.MovementPoints())
	assert.Len(t, g.FindLocation(2, 2).Units(), 1)
}

func TestCell_UnitsExcludesDead(t *testing.T) {
	g := testGrid()
	a := unit.New("A", unit.SideEnemy, 1)
	b := unit.New("B", unit.SideEnemy, 1)
	require.NoError(t, g.Place(a, 0, 0))
	require.NoError(t, g.Place(b, 0, 0))
	a.Die("combat")
	assert.Equal(t, []*unit.Unit{b}, g.FindLocation(0, 0).Units())
	assert.True(t, g.FindLocation(0, 0).HasHostile(unit.SidePlayer))
	assert.False(t, g.FindLocation(0, 0).HasHostile(unit.SideEnemy))
}

func TestCombatModifier(t *testing.T) {
	g := testGrid()
	enemy := unit.New("Natives", unit.SideEnemy, 1)
	enemy.Strength = 1
	require.NoError(t, g.Place(enemy, 1, 1))

	battalion := unit.New("Battalion", unit.SidePlayer, 1, unit.PermBattalion)
	require.NoError(t, g.Place(battalion, 0, 0))
	workers := unit.New("Workers", unit.SidePlayer, 1)
	require.NoError(t, g.Place(workers, 0, 0))

	assert.Equal(t, 0, g.CombatModifier(battalion, enemy, false))
	assert.Equal(t, -1, g.CombatModifier(workers, enemy, false))
	assert.Equal(t, 1, g.CombatModifier(enemy, battalion, false))

	battalion.SetPermission(unit.PermDisorganized, true)
	assert.Equal(t, -1, g.CombatModifier(battalion, enemy, false))
	battalion.SetPermission(unit.PermDisorganized, false)

	battalion.SetPermission(unit.PermVeteran, true)
	assert.Equal(t, 0, g.CombatModifier(battalion, enemy, false), "veterans roll an extra die instead")
}

func TestCombatModifier_Location(t *testing.T) {
	g := testGrid()
	cell := g.FindLocation(0, 0)
	cell.Terrain = TerrainHills
	fort := g.AddBuilding(cell, BuildingFort)
	u := unit.New("Battalion", unit.SidePlayer, 1, unit.PermBattalion)
	require.NoError(t, g.Place(u, 0, 0))

	assert.Equal(t, 0, g.CombatModifier(u, nil, false))
	assert.Equal(t, 2, g.CombatModifier(u, nil, true))

	fort.Damaged = true
	assert.Equal(t, 1, g.CombatModifier(u, nil, true))
}

func TestCombatModifier_SafariHuntingBeast(t *testing.T) {
	g := testGrid()
	safari := unit.New("Safari", unit.SidePlayer, 1, unit.PermSafari)
	beast := unit.New("Lion", unit.SideEnemy, 1, unit.PermBeast)
	natives := unit.New("Natives", unit.SideEnemy, 1)
	assert.Equal(t, 0, g.CombatModifier(safari, beast, false))
	assert.Equal(t, -1, g.CombatModifier(safari, natives, false))
}

func TestGetBestCombatant(t *testing.T) {
	g := testGrid()
	cell := g.FindLocation(0, 0)
	workers := unit.New("Workers", unit.SidePlayer, 1)
	weak := unit.New("Disorganized", unit.SidePlayer, 1, unit.PermBattalion, unit.PermDisorganized)
	strong := unit.New("Battalion", unit.SidePlayer, 1, unit.PermBattalion)
	for _, u := range []*unit.Unit{workers, weak, strong} {
		require.NoError(t, g.Place(u, 0, 0))
	}
	assert.Same(t, strong, g.GetBestCombatant(cell, unit.SidePlayer, nil))
	assert.Nil(t, g.GetBestCombatant(cell, unit.SideEnemy, nil))

	strong.Die("combat")
	weak.Die("combat")
	assert.Nil(t, g.GetBestCombatant(cell, unit.SidePlayer, nil), "noncombatants never defend")
}

func TestHasIntactBuilding(t *testing.T) {
	g := testGrid()
	cell := g.FindLocation(0, 0)
	assert.False(t, cell.HasIntactBuilding(BuildingPort))
	b := g.AddBuilding(cell, BuildingPort)
	assert.True(t, cell.HasIntactBuilding(BuildingPort))
	b.Damaged = true
	assert.False(t, cell.HasIntactBuilding(BuildingPort))
	assert.Same(t, b, cell.Building(BuildingPort))
}

func TestProperty_PlaceKeepsUnitInExactlyOneCell(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		g := testGrid()
		u := unit.New("Wanderer", unit.SidePlayer, 1)
		moves := rapid.IntRange(1, 20).Draw(rt, "moves")
		for i := 0; i < moves; i++ {
			x := rapid.IntRange(0, 4).Draw(rt, "x")
			y := rapid.IntRange(0, 4).Draw(rt, "y")
			if err := g.Place(u, x, y); err != nil {
				rt.Fatalf("place: %v", err)
			}
		}
		count := 0
		for x := 0; x < 5; x++ {
			for y := 0; y < 5; y++ {
				count += len(g.FindLocation(x, y).Units())
			}
		}
		if count != 1 {
			rt.Fatalf("unit found in %d cells", count)
		}
	})
}

func TestGrid_UnitsAndFindUnit(t *testing.T) {
	g := testGrid()
	a := unit.New("A", unit.SidePlayer, 1)
	b := unit.New("B", unit.SideEnemy, 1)
	require.NoError(t, g.Place(a, 0, 0))
	require.NoError(t, g.Place(b, 4, 4))
	assert.Equal(t, []*unit.Unit{a, b}, g.Units())
	assert.Same(t, b, g.FindUnit(b.ID))
	b.Die("combat")
	assert.Nil(t, g.FindUnit(b.ID))
	w, h := g.Size()
	assert.Equal(t, 5, w)
	assert.Equal(t, 5, h)
}
