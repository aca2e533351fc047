package action

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/colony/internal/game/dice"
	"github.com/cory-johannsen/colony/internal/game/ledger"
	"github.com/cory-johannsen/colony/internal/game/minister"
	"github.com/cory-johannsen/colony/internal/game/unit"
)

// Kind identifies an action kind.
type Kind string

const (
	KindCombat                  Kind = "combat"
	KindHunting                 Kind = "hunting"
	KindConstruction            Kind = "construction"
	KindRepair                  Kind = "repair"
	KindUpgrade                 Kind = "upgrade"
	KindExploration             Kind = "exploration"
	KindPublicRelationsCampaign Kind = "public_relations_campaign"
	KindReligiousCampaign       Kind = "religious_campaign"
	KindTrial                   Kind = "trial"
)

// Kinds lists every action kind.
var Kinds = []Kind{
	KindCombat,
	KindHunting,
	KindConstruction,
	KindRepair,
	KindUpgrade,
	KindExploration,
	KindPublicRelationsCampaign,
	KindReligiousCampaign,
	KindTrial,
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// Mode selects how an action's dice are turned into a band.
type Mode string

const (
	// ModeOpposed classifies the own total minus the opponent total.
	ModeOpposed Mode = "opposed"
	// ModeThreshold classifies the best own die plus the modifier.
	ModeThreshold Mode = "threshold"
	// ModeEvidence counts evidence dice meeting a fixed target.
	ModeEvidence Mode = "evidence"
)

// Definition is the content-driven configuration of an action kind. A nil
// AllowCritical* flag means the band is allowed.
type Definition struct {
	Kind                   Kind              `yaml:"kind"`
	Name                   string            `yaml:"name"`
	Office                 minister.Office   `yaml:"office"`
	Price                  int               `yaml:"price"`
	Category               ledger.Category   `yaml:"category"`
	Requirements           []unit.Permission `yaml:"requirements"`
	Modifier               int               `yaml:"modifier"`
	Mode                   Mode              `yaml:"mode"`
	Campaign               bool              `yaml:"campaign"`
	MinSuccess             int               `yaml:"min_success"`
	MaxCritFail            int               `yaml:"max_crit_fail"`
	AllowCriticalFailures  *bool             `yaml:"allow_critical_failures"`
	AllowCriticalSuccesses *bool             `yaml:"allow_critical_successes"`
	Prompt                 string            `yaml:"prompt"`
	Confirm                string            `yaml:"confirm"`
	Cancel                 string            `yaml:"cancel"`
	Outcomes               map[string]string `yaml:"outcomes"`
	DefenseOutcomes        map[string]string `yaml:"defense_outcomes"`
}

// CriticalFailures reports whether the critical-failure band is reachable.
func (d Definition) CriticalFailures() bool {
	return d.AllowCriticalFailures == nil || *d.AllowCriticalFailures
}

// CriticalSuccesses reports whether the critical-success band is reachable.
func (d Definition) CriticalSuccesses() bool {
	return d.AllowCriticalSuccesses == nil || *d.AllowCriticalSuccesses
}

// Validate checks the definition's invariants.
func (d Definition) Validate() error {
	var errs []error
	if !d.Kind.Valid() {
		errs = append(errs, fmt.Errorf("kind %q is not a known action kind", d.Kind))
	}
	if d.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	if !d.Office.Valid() {
		errs = append(errs, fmt.Errorf("office %q is not a cabinet office", d.Office))
	}
	if !d.Category.Valid() {
		errs = append(errs, fmt.Errorf("category %q is not a ledger category", d.Category))
	}
	if d.Price < 0 {
		errs = append(errs, errors.New("price must be >= 0"))
	}
	switch d.Mode {
	case ModeOpposed, ModeEvidence:
	case ModeThreshold:
		if d.MaxCritFail >= d.MinSuccess {
			errs = append(errs, fmt.Errorf("max_crit_fail %d must be below min_success %d", d.MaxCritFail, d.MinSuccess))
		}
	default:
		errs = append(errs, fmt.Errorf("mode %q must be opposed, threshold or evidence", d.Mode))
	}
	if d.Confirm == "" || d.Cancel == "" {
		errs = append(errs, errors.New("confirm and cancel labels must not be empty"))
	}
	for _, set := range []map[string]string{d.Outcomes, d.DefenseOutcomes} {
		for key := range set {
			if _, ok := bandByKey[key]; !ok {
				errs = append(errs, fmt.Errorf("outcome %q is not a band", key))
			}
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("action %q: %w", d.Kind, errors.Join(errs...))
	}
	return nil
}

// thresholds returns the band thresholds for a threshold-mode invocation.
func (d Definition) thresholds(battalion bool) dice.Thresholds {
	return dice.Thresholds{
		MinSuccess:             d.MinSuccess,
		MaxCritFail:            d.MaxCritFail,
		MinCritSuccess:         dice.CritSuccessThreshold(battalion),
		AllowCriticalFailures:  d.CriticalFailures(),
		AllowCriticalSuccesses: d.CriticalSuccesses(),
	}
}

// outcome returns the narrative for band, preferring the defence set when defending.
func (d Definition) outcome(band dice.Band, defending bool) string {
	if defending {
		if text, ok := d.DefenseOutcomes[bandKey(band)]; ok {
			return text
		}
	}
	return d.Outcomes[bandKey(band)]
}

var bandByKey = map[string]dice.Band{
	"critical_failure": dice.CriticalFailure,
	"failure":          dice.Failure,
	"success":          dice.Success,
	"critical_success": dice.CriticalSuccess,
}

// bandKey returns the snake_case content key of b.
func bandKey(b dice.Band) string {
	return strings.ReplaceAll(b.String(), " ", "_")
}

//go:embed content/actions.yaml
var defaultDefinitions []byte

// DefaultDefinitions returns the built-in action definitions.
func DefaultDefinitions() []Definition {
	defs, err := ParseDefinitions(defaultDefinitions)
	if err != nil {
		panic("action: embedded definitions are invalid: " + err.Error())
	}
	return defs
}

// ParseDefinitions parses and validates a YAML list of definitions.
func ParseDefinitions(data []byte) ([]Definition, error) {
	var defs []Definition
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&defs); err != nil {
		return nil, err
	}
	for _, d := range defs {
		if err := d.Validate(); err != nil {
			return nil, err
		}
	}
	return defs, nil
}

// LoadDefinitions returns the built-in definitions with any definitions found
// in *.yaml files under dir replacing those of the same kind. An empty dir
// returns the built-in set.
func LoadDefinitions(dir string) ([]Definition, error) {
	defs := DefaultDefinitions()
	if dir == "" {
		return defs, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading action definitions %q: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		ext := filepath.Ext(e.Name())
		if !e.IsDir() && (ext == ".yaml" || ext == ".yml") {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)

	byKind := make(map[Kind]int, len(defs))
	for i, d := range defs {
		byKind[d.Kind] = i
	}
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		overrides, err := ParseDefinitions(data)
		if err != nil {
			return nil, fmt.Errorf("parsing %q: %w", path, err)
		}
		for _, d := range overrides {
			if i, ok := byKind[d.Kind]; ok {
				defs[i] = d
				continue
			}
			byKind[d.Kind] = len(defs)
			defs = append(defs, d)
		}
	}
	return defs, nil
}
