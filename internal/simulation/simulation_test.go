package simulation

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/colony/internal/config"
	"github.com/cory-johannsen/colony/internal/game/ledger"
	"github.com/cory-johannsen/colony/internal/game/unit"
	"github.com/cory-johannsen/colony/internal/game/world"
)

func gameConfig() config.GameConfig {
	return config.GameConfig{
		StartingMoney:          100,
		StartingOpinion:        50,
		FrameInterval:          time.Millisecond,
		Seed:                   7,
		ScriptInstructionLimit: 100000,
	}
}

func run(t *testing.T, opts Options) (*Simulation, []ledger.Report, string) {
	t.Helper()
	var out bytes.Buffer
	opts.Out = &out
	opts.Logger = zap.NewNop()
	sim, err := New(opts)
	require.NoError(t, err)
	t.Cleanup(sim.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	reports, err := sim.Run(ctx)
	require.NoError(t, err, out.String())
	return sim, reports, out.String()
}

func TestNew_Validates(t *testing.T) {
	_, err := New(Options{Turns: 1, Game: gameConfig()})
	assert.Error(t, err, "logger required")

	_, err = New(Options{Logger: zap.NewNop(), Game: gameConfig()})
	assert.Error(t, err, "turns required")

	cfg := gameConfig()
	cfg.ActionsDir = filepath.Join(t.TempDir(), "missing")
	_, err = New(Options{Logger: zap.NewNop(), Turns: 1, Game: cfg})
	assert.ErrorContains(t, err, "loading actions")
}

func TestRun_ClosesEveryTurn(t *testing.T) {
	store := ledger.NewMemoryStore()
	_, reports, out := run(t, Options{Game: gameConfig(), Turns: 3, Reports: store})

	require.Len(t, reports, 3)
	for i, r := range reports {
		assert.Equal(t, i+1, r.Turn)
		assert.Equal(t, r.Opening+r.Net(), r.Closing)
		if i > 0 {
			assert.Equal(t, reports[i-1].Closing, r.Opening)
		}
	}
	stored, err := store.List(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, stored, 3)
	assert.Contains(t, out, "Turn 1. Treasury: 100. Public opinion: 50.")
	assert.Contains(t, out, "Financial report for turn 3")
}

func TestRun_IsReproducibleForASeed(t *testing.T) {
	_, first, _ := run(t, Options{Game: gameConfig(), Turns: 2})
	_, second, _ := run(t, Options{Game: gameConfig(), Turns: 2})
	assert.Equal(t, first, second)
}

func TestRun_AlwaysSucceedClearsTheEnemy(t *testing.T) {
	cfg := gameConfig()
	cfg.AlwaysSucceed = true
	sim, reports, out := run(t, Options{Game: cfg, Turns: 1})

	e := sim.Engine()
	for _, u := range e.World.Units() {
		assert.NotEqual(t, unit.SideEnemy, u.Side, "%s survived", u.Name)
	}
	assert.Equal(t, 4, e.Evil.Value(), "killing the raiders adds evil, the hunt does not")
	assert.False(t, e.World.FindLocation(2, 2).Building(world.BuildingMission).Damaged)
	assert.Contains(t, out, "The attack was a decisive victory")
	assert.Negative(t, reports[0].Expenses())
}

func TestRun_ScriptsAdjustOutcomeText(t *testing.T) {
	dir := t.TempDir()
	script := `function outcome_text(kind, band)
  if kind == "hunting" then
    return "The beast was no match for the safari."
  end
  return nil
end
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hooks.lua"), []byte(script), 0o644))

	cfg := gameConfig()
	cfg.AlwaysSucceed = true
	cfg.ScriptsDir = dir
	_, _, out := run(t, Options{Game: cfg, Turns: 1})
	assert.Contains(t, out, "The beast was no match for the safari.")
}

func TestRun_StopsWithContext(t *testing.T) {
	cfg := gameConfig()
	cfg.NotificationDelay = time.Hour
	sim, err := New(Options{Game: cfg, Turns: 1, Logger: zap.NewNop()})
	require.NoError(t, err)
	defer sim.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	reports, err := sim.Run(ctx)
	assert.ErrorContains(t, err, "stopped after 0 of 1 turns")
	assert.Empty(t, reports)
}
