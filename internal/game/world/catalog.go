package world

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// BuildingType identifies a kind of building.
type BuildingType string

const (
	BuildingFort         BuildingType = "fort"
	BuildingPort         BuildingType = "port"
	BuildingTrainStation BuildingType = "train_station"
	BuildingMission      BuildingType = "mission"
	BuildingResource     BuildingType = "resource"
)

// BuildingSpec is the static definition of a building type.
type BuildingSpec struct {
	Type         BuildingType `yaml:"type"`
	Name         string       `yaml:"name"`
	Cost         int          `yaml:"cost"`
	DefenseBonus int          `yaml:"defense_bonus"`
	Upgrades     []string     `yaml:"upgrades"`
	UpgradeCost  int          `yaml:"upgrade_cost"`
}

// Validate checks the spec's invariants.
func (s BuildingSpec) Validate() error {
	if s.Type == "" {
		return fmt.Errorf("building spec: type must not be empty")
	}
	if s.Cost < 0 {
		return fmt.Errorf("building spec %q: cost must be >= 0", s.Type)
	}
	if len(s.Upgrades) > 0 && s.UpgradeCost <= 0 {
		return fmt.Errorf("building spec %q: upgrade_cost must be > 0 when upgrades are listed", s.Type)
	}
	return nil
}

// CanUpgrade reports whether kind is a valid upgrade for this building type.
func (s BuildingSpec) CanUpgrade(kind string) bool {
	for _, u := range s.Upgrades {
		if u == kind {
			return true
		}
	}
	return false
}

// Catalog indexes building specs by type.
type Catalog struct {
	specs map[BuildingType]BuildingSpec
}

//go:embed content/buildings.yaml
var defaultCatalog []byte

// DefaultCatalog returns the built-in building catalog.
func DefaultCatalog() *Catalog {
	c, err := ParseCatalog(defaultCatalog)
	if err != nil {
		panic("world: embedded building catalog is invalid: " + err.Error())
	}
	return c
}

// LoadCatalog reads a building catalog YAML file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading building catalog %q: %w", path, err)
	}
	c, err := ParseCatalog(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %q: %w", path, err)
	}
	return c, nil
}

// ParseCatalog parses a YAML list of building specs.
func ParseCatalog(data []byte) (*Catalog, error) {
	var specs []BuildingSpec
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&specs); err != nil {
		return nil, err
	}
	c := &Catalog{specs: make(map[BuildingType]BuildingSpec, len(specs))}
	for _, s := range specs {
		if err := s.Validate(); err != nil {
			return nil, err
		}
		if _, dup := c.specs[s.Type]; dup {
			return nil, fmt.Errorf("building spec %q defined twice", s.Type)
		}
		c.specs[s.Type] = s
	}
	return c, nil
}

// Spec returns the spec for t.
func (c *Catalog) Spec(t BuildingType) (BuildingSpec, bool) {
	s, ok := c.specs[t]
	return s, ok
}

// Types returns every building type in the catalog, sorted.
func (c *Catalog) Types() []BuildingType {
	out := make([]BuildingType, 0, len(c.specs))
	for t := range c.specs {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// BuildCost returns the construction price of t, or 0 for unknown types.
func (c *Catalog) BuildCost(t BuildingType) int { return c.specs[t].Cost }

// RepairCost returns half the construction price, rounded up.
func (c *Catalog) RepairCost(t BuildingType) int { return (c.specs[t].Cost + 1) / 2 }

// UpgradeCost returns the price of the next upgrade of kind on b: the base
// upgrade cost doubled once for every prior upgrade of that kind.
func (c *Catalog) UpgradeCost(b *Building, kind string) int {
	cost := c.specs[b.Type].UpgradeCost
	for i := 0; i < b.Upgrades[kind]; i++ {
		cost *= 2
	}
	return cost
}
