package world

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c := DefaultCatalog()
	fort, ok := c.Spec(BuildingFort)
	require.True(t, ok)
	assert.Equal(t, 1, fort.DefenseBonus)
	_, ok = c.Spec("castle")
	assert.False(t, ok)
}

func TestCatalog_Costs(t *testing.T) {
	c := DefaultCatalog()
	assert.Equal(t, 12, c.BuildCost(BuildingFort))
	assert.Equal(t, 6, c.RepairCost(BuildingFort))
	assert.Equal(t, 8, c.RepairCost(BuildingPort), "repair rounds up")

	b := &Building{Type: BuildingResource, Upgrades: map[string]int{}}
	assert.Equal(t, 20, c.UpgradeCost(b, "scale"))
	b.Upgrades["scale"] = 1
	assert.Equal(t, 40, c.UpgradeCost(b, "scale"))
	b.Upgrades["scale"] = 3
	assert.Equal(t, 160, c.UpgradeCost(b, "scale"))
	assert.Equal(t, 20, c.UpgradeCost(b, "efficiency"))
}

func TestParseCatalog_Rejects(t *testing.T) {
	cases := map[string]string{
		"unknown field":   "- type: fort\n  colour: red\n",
		"missing type":    "- name: Nameless\n",
		"duplicate":       "- type: fort\n- type: fort\n",
		"no upgrade cost": "- type: port\n  upgrades: [warehouses]\n",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(data))
			assert.Error(t, err)
		})
	}
}

func TestLoadCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "buildings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- type: fort\n  cost: 3\n  defense_bonus: 2\n"), 0o644))
	c, err := LoadCatalog(path)
	require.NoError(t, err)
	assert.Equal(t, 3, c.BuildCost(BuildingFort))

	_, err = LoadCatalog(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestCatalog_Types(t *testing.T) {
	assert.Equal(t, []BuildingType{BuildingFort, BuildingMission, BuildingPort, BuildingResource, BuildingTrainStation}, DefaultCatalog().Types())
}
