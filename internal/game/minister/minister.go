// Package minister models the cabinet: ministers, the offices they hold and
// the corruption-aware roll paths actions go through.
package minister

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/colony/internal/game/dice"
)

// Office is a cabinet position overseeing a family of actions.
type Office string

const (
	OfficeMilitary     Office = "military"
	OfficeConstruction Office = "construction"
	OfficeExploration  Office = "exploration"
	OfficeReligion     Office = "religion"
	OfficeProsecution  Office = "prosecution"
)

// Offices lists every office in display order.
var Offices = []Office{OfficeMilitary, OfficeConstruction, OfficeExploration, OfficeReligion, OfficeProsecution}

// Valid reports whether o is one of Offices.
func (o Office) Valid() bool {
	for _, known := range Offices {
		if o == known {
			return true
		}
	}
	return false
}

// honestCorruption is the highest corruption rating that never steals.
const honestCorruption = 3

// Minister is a cabinet member. Skill and Corruption range over 1..6.
type Minister struct {
	ID         string
	Name       string
	Office     Office
	Skill      int
	Corruption int
	// Stolen is the money the minister has embezzled and not yet lost.
	Stolen int
	// Evidence is the number of detected thefts available to a prosecutor.
	Evidence   int
	Imprisoned bool

	cabinet *Cabinet
}

// New creates an unappointed minister.
//
// Precondition: skill and corruption are in 1..6.
func New(name string, skill, corruption int) *Minister {
	return &Minister{ID: uuid.NewString(), Name: name, Skill: skill, Corruption: corruption}
}

// SkillModifier returns +1 for skilled ministers, -1 for incompetent ones.
func (m *Minister) SkillModifier() int {
	switch {
	case m.Skill >= 5:
		return 1
	case m.Skill <= 2:
		return -1
	default:
		return 0
	}
}

// DecidesToSteal rolls whether the minister pockets a payment this time.
// Ministers at or below the honest rating never steal.
func (m *Minister) DecidesToSteal() bool {
	if m.cabinet == nil || m.Corruption <= honestCorruption {
		return false
	}
	return m.cabinet.roller.Die(dice.D6)+m.Corruption >= 10
}

// StealMoney records amount as embezzled from category and gives the
// prosecutor a chance to detect it.
func (m *Minister) StealMoney(amount int, category string) {
	m.Stolen += amount
	if m.cabinet == nil {
		return
	}
	m.cabinet.logger.Info("minister stole money",
		zap.String("minister", m.Name),
		zap.String("office", string(m.Office)),
		zap.Int("amount", amount),
		zap.String("category", category),
	)
	m.cabinet.detect(m)
}

// NoCorruptionRoll returns a uniform roll in 1..max that no minister can
// influence.
//
// Precondition: max >= 2.
func (m *Minister) NoCorruptionRoll(max int) int {
	return m.cabinet.roller.Die(max)
}

// RollRequest describes the dice an action needs from its minister.
type RollRequest struct {
	// Category is the ledger category of the payment, reported on theft.
	Category string
	Price    int
	NumDice  int
	// Opposed requests a trailing opponent die.
	Opposed          bool
	OwnModifier      int
	OpponentModifier int
	// Thresholds used to place a masked result in the failure band.
	Thresholds dice.Thresholds
}

// RollToList rolls the dice for req. When the minister steals the payment the
// returned rolls are chosen to land in the failure band so the theft looks
// like bad luck. For opposed requests the final element is the opponent die.
//
// Postcondition: len(rolls) == req.NumDice (+1 when Opposed); every roll in 1..6.
func (m *Minister) RollToList(req RollRequest) (stealing bool, rolls []int) {
	if req.Price > 0 && m.DecidesToSteal() {
		if masked, ok := m.maskedRolls(req); ok {
			m.StealMoney(req.Price, req.Category)
			return true, masked
		}
	}
	n := req.NumDice
	if req.Opposed {
		n++
	}
	return false, m.cabinet.roller.Dice(n, dice.D6)
}

// maskedRolls picks dice whose result lands in the failure band. It reports
// false when the modifiers make that impossible with six-sided dice.
func (m *Minister) maskedRolls(req RollRequest) ([]int, bool) {
	for _, target := range []int{0, -1, 1} {
		if req.Opposed {
			for opp := 1; opp <= dice.D6; opp++ {
				own := opp + req.OpponentModifier - req.OwnModifier + target
				if own >= 1 && own <= dice.D6 {
					return append(m.ownDice(own, req.NumDice), opp), true
				}
			}
			continue
		}
		own := req.Thresholds.MinSuccess - 1 - req.OwnModifier + target
		if own+req.OwnModifier >= req.Thresholds.MinSuccess || own+req.OwnModifier <= req.Thresholds.MaxCritFail {
			continue
		}
		if own >= 1 && own <= dice.D6 {
			return m.ownDice(own, req.NumDice), true
		}
	}
	return nil, false
}

// ownDice returns n dice whose best is exactly best.
func (m *Minister) ownDice(best, n int) []int {
	out := []int{best}
	for i := 1; i < n; i++ {
		if best < 2 {
			out = append(out, 1)
			continue
		}
		out = append(out, m.cabinet.roller.Die(best))
	}
	return out
}

// String returns "Name (office)".
func (m *Minister) String() string {
	return fmt.Sprintf("%s (%s)", m.Name, m.Office)
}
