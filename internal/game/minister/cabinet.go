package minister

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/colony/internal/game/dice"
)

// ErrOfficeVacant is returned when an action needs a minister nobody holds.
var ErrOfficeVacant = errors.New("office is vacant")

// detectionTarget is the minimum modified d6 a prosecutor needs to notice a theft.
const detectionTarget = 5

// Cabinet holds the appointed ministers and the roller they share.
type Cabinet struct {
	offices map[Office]*Minister
	roller  *dice.Roller
	logger  *zap.Logger
	// OnDetected is called after the prosecutor gathers evidence against thief.
	OnDetected func(thief, prosecutor *Minister)
}

// NewCabinet creates an empty cabinet.
//
// Precondition: roller and logger must be non-nil.
func NewCabinet(roller *dice.Roller, logger *zap.Logger) *Cabinet {
	return &Cabinet{offices: make(map[Office]*Minister), roller: roller, logger: logger}
}

// Appoint places m in office, replacing whoever held it.
func (c *Cabinet) Appoint(m *Minister, office Office) {
	if prev := c.offices[office]; prev != nil && prev != m {
		prev.Office = ""
	}
	if m.Office != "" && c.offices[m.Office] == m {
		delete(c.offices, m.Office)
	}
	m.Office = office
	m.cabinet = c
	c.offices[office] = m
	c.logger.Debug("minister appointed", zap.String("minister", m.Name), zap.String("office", string(office)))
}

// Get returns the minister holding office.
func (c *Cabinet) Get(office Office) (*Minister, error) {
	m := c.offices[office]
	if m == nil {
		return nil, fmt.Errorf("%s: %w", office, ErrOfficeVacant)
	}
	return m, nil
}

// Prosecutor returns the minister of prosecution, or nil.
func (c *Cabinet) Prosecutor() *Minister { return c.offices[OfficeProsecution] }

// Remove vacates m's office.
func (c *Cabinet) Remove(m *Minister) {
	if m.Office != "" && c.offices[m.Office] == m {
		delete(c.offices, m.Office)
	}
	m.Office = ""
}

// Ministers returns the appointed ministers in office order.
func (c *Cabinet) Ministers() []*Minister {
	var out []*Minister
	for _, o := range Offices {
		if m := c.offices[o]; m != nil {
			out = append(out, m)
		}
	}
	return out
}

func (c *Cabinet) detect(thief *Minister) {
	prosecutor := c.Prosecutor()
	if prosecutor == nil || prosecutor == thief {
		return
	}
	roll := c.roller.Die(dice.D6)
	if roll+prosecutor.SkillModifier() < detectionTarget {
		return
	}
	thief.Evidence++
	c.logger.Info("theft detected",
		zap.String("thief", thief.Name),
		zap.String("prosecutor", prosecutor.Name),
		zap.Int("evidence", thief.Evidence),
	)
	if c.OnDetected != nil {
		c.OnDetected(thief, prosecutor)
	}
}
