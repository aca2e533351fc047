package simulation

import (
	"fmt"

	"github.com/cory-johannsen/colony/internal/game/minister"
	"github.com/cory-johannsen/colony/internal/game/unit"
	"github.com/cory-johannsen/colony/internal/game/world"
)

const (
	mapWidth  = 8
	mapHeight = 6
)

// placement is a unit and where it starts.
type placement struct {
	unit *unit.Unit
	x, y int
}

// newScenario lays out the starting colony: a settlement at (2, 2) with its
// workers, raiders and a beast nearby, and a mixed terrain to the east.
func newScenario(catalog *world.Catalog) (*world.Grid, error) {
	grid := world.NewGrid(mapWidth, mapHeight, catalog)
	for x := 0; x <= 3; x++ {
		for y := 1; y <= 3; y++ {
			grid.FindLocation(x, y).Explored = true
		}
	}
	grid.FindLocation(4, 1).Terrain = world.TerrainHills
	grid.FindLocation(4, 2).Resource = true
	grid.FindLocation(5, 1).Terrain = world.TerrainMountains
	grid.FindLocation(2, 4).Terrain = world.TerrainWater
	grid.FindLocation(3, 2).Resource = true
	grid.AddBuilding(grid.FindLocation(2, 2), world.BuildingMission).Damaged = true

	raiders := unit.New("Raiders", unit.SideEnemy, 1)
	raiders.Strength = 1
	lion := unit.New("Lion", unit.SideEnemy, 1, unit.PermBeast)
	lion.Strength = 2

	placements := []placement{
		{unit.New("1st Battalion", unit.SidePlayer, 2, unit.PermBattalion), 2, 2},
		{unit.New("Builders", unit.SidePlayer, 1, unit.PermConstruction), 2, 2},
		{unit.New("Brother Anselm", unit.SidePlayer, 1, unit.PermEvangelist, unit.PermOfficer), 2, 2},
		{unit.New("Expedition", unit.SidePlayer, 3, unit.PermExpedition), 3, 2},
		{unit.New("Safari", unit.SidePlayer, 2, unit.PermSafari), 3, 3},
		{raiders, 3, 1},
		{lion, 4, 3},
	}
	for _, p := range placements {
		if err := grid.Place(p.unit, p.x, p.y); err != nil {
			return nil, fmt.Errorf("placing %s: %w", p.unit.Name, err)
		}
	}
	return grid, nil
}

// appointCabinet fills every office. The construction minister is corrupt.
func appointCabinet(c *minister.Cabinet) {
	c.Appoint(minister.New("General Howe", 4, 2), minister.OfficeMilitary)
	c.Appoint(minister.New("Mr. Pickering", 3, 6), minister.OfficeConstruction)
	c.Appoint(minister.New("Captain Drake", 2, 3), minister.OfficeExploration)
	c.Appoint(minister.New("Bishop Laud", 3, 1), minister.OfficeReligion)
	c.Appoint(minister.New("Judge Hale", 4, 1), minister.OfficeProsecution)
}
