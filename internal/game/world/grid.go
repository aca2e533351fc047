// Package world holds the map: cells, terrain, buildings and unit placement.
package world

import (
	"errors"
	"fmt"
	"sort"

	"github.com/cory-johannsen/colony/internal/game/unit"
)

// Terrain is the ground type of a cell.
type Terrain string

const (
	TerrainPlains    Terrain = "plains"
	TerrainHills     Terrain = "hills"
	TerrainMountains Terrain = "mountains"
	TerrainWater     Terrain = "water"
)

// ErrOutOfBounds is returned when a coordinate lies outside the grid.
var ErrOutOfBounds = errors.New("location is outside the map")

// ErrImpassable is returned when a unit cannot enter a cell.
var ErrImpassable = errors.New("location is impassable")

// Building is a constructed building on a cell.
type Building struct {
	Type     BuildingType
	Damaged  bool
	Upgrades map[string]int
}

// Cell is one map location.
type Cell struct {
	X, Y      int
	Terrain   Terrain
	Explored  bool
	// Resource marks a cell holding an exploitable resource.
	Resource  bool
	Buildings map[BuildingType]*Building
	units     []*unit.Unit
}

// Units returns a snapshot of the living units in the cell.
func (c *Cell) Units() []*unit.Unit {
	out := make([]*unit.Unit, 0, len(c.units))
	for _, u := range c.units {
		if !u.IsDead() {
			out = append(out, u)
		}
	}
	return out
}

// UnitsOf returns the living units of side in the cell.
func (c *Cell) UnitsOf(side unit.Side) []*unit.Unit {
	var out []*unit.Unit
	for _, u := range c.Units() {
		if u.Side == side {
			out = append(out, u)
		}
	}
	return out
}

// HasHostile reports whether a living unit not on side occupies the cell.
func (c *Cell) HasHostile(side unit.Side) bool {
	for _, u := range c.Units() {
		if u.Side != side {
			return true
		}
	}
	return false
}

// Building returns the building of type t, or nil.
func (c *Cell) Building(t BuildingType) *Building { return c.Buildings[t] }

// HasIntactBuilding reports whether an undamaged building of type t exists.
func (c *Cell) HasIntactBuilding(t BuildingType) bool {
	b := c.Buildings[t]
	return b != nil && !b.Damaged
}

// MovementCost returns the movement points needed to enter the cell.
func (c *Cell) MovementCost() int {
	switch c.Terrain {
	case TerrainHills:
		return 2
	case TerrainMountains:
		return 3
	default:
		return 1
	}
}

// Grid is the rectangular game map.
type Grid struct {
	width, height int
	cells         [][]*Cell
	catalog       *Catalog
}

// NewGrid creates a width×height grid of unexplored plains.
//
// Precondition: width, height > 0; catalog non-nil.
func NewGrid(width, height int, catalog *Catalog) *Grid {
	g := &Grid{width: width, height: height, catalog: catalog}
	g.cells = make([][]*Cell, width)
	for x := range g.cells {
		g.cells[x] = make([]*Cell, height)
		for y := range g.cells[x] {
			g.cells[x][y] = &Cell{X: x, Y: y, Terrain: TerrainPlains, Buildings: make(map[BuildingType]*Building)}
		}
	}
	return g
}

// Catalog returns the building catalog.
func (g *Grid) Catalog() *Catalog { return g.catalog }

// FindLocation returns the cell at (x, y), or nil if out of bounds.
func (g *Grid) FindLocation(x, y int) *Cell {
	if x < 0 || y < 0 || x >= g.width || y >= g.height {
		return nil
	}
	return g.cells[x][y]
}

// Place puts u at (x, y) without spending movement.
func (g *Grid) Place(u *unit.Unit, x, y int) error {
	cell := g.FindLocation(x, y)
	if cell == nil {
		return fmt.Errorf("placing %s at (%d,%d): %w", u.Name, x, y, ErrOutOfBounds)
	}
	if prev := g.FindLocation(u.X, u.Y); prev != nil {
		prev.remove(u)
	}
	u.MoveTo(x, y)
	cell.units = append(cell.units, u)
	return nil
}

// Move moves u by (dx, dy), spending the destination's movement cost.
func (g *Grid) Move(u *unit.Unit, dx, dy int) error {
	dest := g.FindLocation(u.X+dx, u.Y+dy)
	if dest == nil {
		return ErrOutOfBounds
	}
	if dest.Terrain == TerrainWater && !u.HasPermission(unit.PermSwim) {
		return ErrImpassable
	}
	if err := g.Place(u, dest.X, dest.Y); err != nil {
		return err
	}
	u.SetMovementPoints(u.MovementPoints() - dest.MovementCost())
	return nil
}

// Retreat returns u to the location it last moved from and ends its movement.
func (g *Grid) Retreat(u *unit.Unit) {
	if u.PrevX != u.X || u.PrevY != u.Y {
		_ = g.Place(u, u.PrevX, u.PrevY)
	}
	u.SetMovementPoints(0)
}

// Remove takes u off the map, for dead or merged units.
func (g *Grid) Remove(u *unit.Unit) {
	if cell := g.FindLocation(u.X, u.Y); cell != nil {
		cell.remove(u)
	}
}

func (c *Cell) remove(u *unit.Unit) {
	for i, v := range c.units {
		if v == u {
			c.units = append(c.units[:i], c.units[i+1:]...)
			return
		}
	}
}

// Units returns every living unit on the map, column by column.
func (g *Grid) Units() []*unit.Unit {
	var out []*unit.Unit
	for x := range g.cells {
		for _, cell := range g.cells[x] {
			out = append(out, cell.Units()...)
		}
	}
	return out
}

// FindUnit returns the living unit with id, or nil.
func (g *Grid) FindUnit(id string) *unit.Unit {
	for _, u := range g.Units() {
		if u.ID == id {
			return u
		}
	}
	return nil
}

// Size returns the grid dimensions.
func (g *Grid) Size() (width, height int) { return g.width, g.height }

// AddBuilding constructs an intact building of type t on cell.
func (g *Grid) AddBuilding(cell *Cell, t BuildingType) *Building {
	b := &Building{Type: t, Upgrades: make(map[string]int)}
	cell.Buildings[t] = b
	return b
}

// GetBestCombatant returns the unit of side in cell that fights best against
// opponent, or nil when side has no combatant there. Ties keep placement order.
func (g *Grid) GetBestCombatant(cell *Cell, side unit.Side, opponent *unit.Unit) *unit.Unit {
	var candidates []*unit.Unit
	for _, u := range cell.UnitsOf(side) {
		if u.IsCombatant() {
			candidates = append(candidates, u)
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return g.CombatModifier(candidates[i], opponent, true) > g.CombatModifier(candidates[j], opponent, true)
	})
	return candidates[0]
}

// CombatModifier returns u's combat modifier against opponent. The location
// term covers intact defensive buildings and rough terrain and applies to
// defenders only.
//
// Veterans receive no flat modifier; they roll an extra die instead.
func (g *Grid) CombatModifier(u, opponent *unit.Unit, includeLocation bool) int {
	mod := u.Strength
	if u.HasPermission(unit.PermDisorganized) {
		mod--
	}
	if u.Side == unit.SidePlayer && !u.HasPermission(unit.PermBattalion) {
		hunting := u.HasPermission(unit.PermSafari) && opponent != nil && opponent.HasPermission(unit.PermBeast)
		if !hunting {
			mod--
		}
	}
	if includeLocation {
		if cell := g.FindLocation(u.X, u.Y); cell != nil {
			for t := range cell.Buildings {
				if cell.HasIntactBuilding(t) {
					mod += g.catalog.specs[t].DefenseBonus
				}
			}
			if cell.Terrain == TerrainHills || cell.Terrain == TerrainMountains {
				mod++
			}
		}
	}
	return mod
}
