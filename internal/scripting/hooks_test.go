package scripting_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/colony/internal/scripting"
)

const colonyHooks = `
	function roll_modifier(kind, unit)
		if kind == "exploration" and unit.permissions.veteran then
			return 1
		end
		if kind == "combat" and unit.side == "player" then
			return -1
		end
		return 0
	end

	function outcome_text(kind, band)
		if kind == "trial" and band == "success" then
			return "Justice has been served."
		end
		return nil
	end
`

func TestRollModifier(t *testing.T) {
	mgr, _ := newTestManager(t)
	require.NoError(t, mgr.LoadGlobal(writeTempLua(t, "colony.lua", colonyHooks), 0))

	vet := scripting.UnitInfo{Name: "Explorers", Side: "player", Permissions: []string{"expedition", "veteran"}}
	assert.Equal(t, 1, mgr.RollModifier("exploration", vet))
	assert.Equal(t, 0, mgr.RollModifier("exploration", scripting.UnitInfo{Side: "player"}))
	assert.Equal(t, -1, mgr.RollModifier("combat", scripting.UnitInfo{Side: "player"}))
}

func TestRollModifier_NoScripts(t *testing.T) {
	mgr, _ := newTestManager(t)
	assert.Equal(t, 0, mgr.RollModifier("combat", scripting.UnitInfo{}))
}

func TestRollModifier_ScopeOverridesGlobal(t *testing.T) {
	mgr, _ := newTestManager(t)
	require.NoError(t, mgr.LoadGlobal(writeTempLua(t, "colony.lua", colonyHooks), 0))
	require.NoError(t, mgr.LoadScope("hard", writeTempLua(t, "hard.lua", `
		function roll_modifier(kind, unit) return -2 end
	`), 0))

	mgr.Scope = "hard"
	assert.Equal(t, -2, mgr.RollModifier("exploration", scripting.UnitInfo{}))
	mgr.Scope = "missing"
	assert.Equal(t, -1, mgr.RollModifier("combat", scripting.UnitInfo{Side: "player"}))
}

func TestOutcomeText(t *testing.T) {
	mgr, _ := newTestManager(t)
	require.NoError(t, mgr.LoadGlobal(writeTempLua(t, "colony.lua", colonyHooks), 0))

	text, ok := mgr.OutcomeText("trial", "success")
	assert.True(t, ok)
	assert.Equal(t, "Justice has been served.", text)

	_, ok = mgr.OutcomeText("trial", "failure")
	assert.False(t, ok)
}
