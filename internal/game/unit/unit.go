// Package unit models the mobile actors that carry out actions: single units,
// officer-led groups and enemy units.
package unit

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/cory-johannsen/colony/internal/game/dice"
)

// Permission is a boolean capability tag carried by a unit.
type Permission string

const (
	PermVeteran          Permission = "veteran"
	PermDisorganized     Permission = "disorganized"
	PermBattalion        Permission = "battalion"
	PermSafari           Permission = "safari"
	PermSwim             Permission = "swim"
	PermGroup            Permission = "group"
	PermOfficer          Permission = "officer"
	PermEvangelist       Permission = "evangelist"
	PermExpedition       Permission = "expedition"
	PermConstruction     Permission = "construction"
	PermMissionaries     Permission = "missionaries"
	PermChurchVolunteers Permission = "church_volunteers"
	PermInEurope         Permission = "in_europe"
	PermBeast            Permission = "beast"
)

// Side identifies who controls a unit.
type Side int

const (
	SidePlayer Side = iota
	SideEnemy
)

// String returns "player" or "enemy".
func (s Side) String() string {
	if s == SideEnemy {
		return "enemy"
	}
	return "player"
}

// Unit is a single actor on the map.
//
// Invariant: 0 <= MovementPoints() <= MaxMovementPoints().
type Unit struct {
	ID   string
	Name string
	Side Side
	// X, Y is the current location; PrevX, PrevY is where the last move came from.
	X, Y         int
	PrevX, PrevY int
	// Strength is the inherent combat modifier of enemy units and beasts.
	Strength int
	// Members holds the units merged into a group, officer first.
	Members []*Unit

	perms       map[Permission]bool
	movement    int
	maxMovement int
	adjust      dice.Expression
	dead        bool
	deathReason string
}

// New creates a unit with full movement points.
//
// Precondition: maxMovement >= 0.
func New(name string, side Side, maxMovement int, perms ...Permission) *Unit {
	u := &Unit{
		ID:          uuid.NewString(),
		Name:        name,
		Side:        side,
		perms:       make(map[Permission]bool),
		movement:    maxMovement,
		maxMovement: maxMovement,
		adjust:      dice.Expression{Raw: "0"},
	}
	for _, p := range perms {
		u.perms[p] = true
	}
	return u
}

// HasPermission reports whether p is set.
func (u *Unit) HasPermission(p Permission) bool { return u.perms[p] }

// SetPermission sets or clears p.
func (u *Unit) SetPermission(p Permission, on bool) {
	if on {
		u.perms[p] = true
		return
	}
	delete(u.perms, p)
}

// Permissions returns the set permissions in sorted order.
func (u *Unit) Permissions() []Permission {
	out := make([]Permission, 0, len(u.perms))
	for p := range u.perms {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Location returns the current coordinates.
func (u *Unit) Location() (int, int) { return u.X, u.Y }

// MovementPoints returns the remaining movement points this turn.
func (u *Unit) MovementPoints() int { return u.movement }

// MaxMovementPoints returns the per-turn movement allowance.
func (u *Unit) MaxMovementPoints() int { return u.maxMovement }

// SetMovementPoints sets the remaining movement points, bounded to
// [0, MaxMovementPoints()].
func (u *Unit) SetMovementPoints(n int) {
	switch {
	case n < 0:
		n = 0
	case n > u.maxMovement:
		n = u.maxMovement
	}
	u.movement = n
}

// ResetMovement restores the full movement allowance.
func (u *Unit) ResetMovement() { u.movement = u.maxMovement }

// IsVeteran reports whether the unit (or its officer) is a veteran.
func (u *Unit) IsVeteran() bool { return u.HasPermission(PermVeteran) }

// IsCombatant reports whether the unit fights when its location is attacked.
// Every enemy unit is a combatant; player units need battalion or safari.
func (u *Unit) IsCombatant() bool {
	if u.Side == SideEnemy {
		return true
	}
	return u.HasPermission(PermBattalion) || u.HasPermission(PermSafari)
}

// NumDice returns how many dice the unit rolls: two for veterans, else one.
func (u *Unit) NumDice() int {
	if u.IsVeteran() {
		return 2
	}
	return 1
}

// PromoteVeteran marks the unit and its officer as veterans.
func (u *Unit) PromoteVeteran() {
	u.SetPermission(PermVeteran, true)
	if officer := u.Officer(); officer != nil {
		officer.SetPermission(PermVeteran, true)
	}
}

// Officer returns the officer of a group, or nil for single units.
func (u *Unit) Officer() *Unit {
	for _, m := range u.Members {
		if m.HasPermission(PermOfficer) {
			return m
		}
	}
	return nil
}

// SetRollAdjustment configures the per-die adjustment expression, e.g. "1d3-2".
func (u *Unit) SetRollAdjustment(expr string) error {
	e, err := dice.Parse(expr)
	if err != nil {
		return fmt.Errorf("unit %q: %w", u.Name, err)
	}
	u.adjust = e
	return nil
}

// RollAdjustment draws the small per-die adjustment for this unit.
func (u *Unit) RollAdjustment(src dice.Source) int {
	return dice.Roll(u.adjust, src).Total()
}

// Die removes the unit from play; reason is kept for notification text.
func (u *Unit) Die(reason string) {
	u.dead = true
	u.deathReason = reason
	u.movement = 0
}

// IsDead reports whether Die has been called.
func (u *Unit) IsDead() bool { return u.dead }

// DeathReason returns the reason given to Die.
func (u *Unit) DeathReason() string { return u.deathReason }

// MoveTo records the previous location and places the unit at (x, y).
func (u *Unit) MoveTo(x, y int) {
	u.PrevX, u.PrevY = u.X, u.Y
	u.X, u.Y = x, y
}

// Merge forms a group from an officer and a worker unit. The group inherits
// the officer's veteran status; both members are removed from independent play.
//
// Precondition: officer has PermOfficer.
func Merge(name string, officer, worker *Unit, perms ...Permission) *Unit {
	g := New(name, officer.Side, min(officer.maxMovement, worker.maxMovement), append(perms, PermGroup)...)
	g.X, g.Y = officer.X, officer.Y
	g.PrevX, g.PrevY = officer.X, officer.Y
	g.Members = []*Unit{officer, worker}
	if officer.IsVeteran() {
		g.SetPermission(PermVeteran, true)
	}
	if officer.HasPermission(PermInEurope) {
		g.SetPermission(PermInEurope, true)
	}
	g.adjust = officer.adjust
	g.movement = 0
	return g
}
