package action

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/cory-johannsen/colony/internal/game/achievement"
	"github.com/cory-johannsen/colony/internal/game/dice"
	"github.com/cory-johannsen/colony/internal/game/ledger"
	"github.com/cory-johannsen/colony/internal/game/minister"
	"github.com/cory-johannsen/colony/internal/game/notification"
	"github.com/cory-johannsen/colony/internal/game/unit"
	"github.com/cory-johannsen/colony/internal/game/world"
	"github.com/cory-johannsen/colony/internal/scripting"
)

// Presenter receives the engine's screen-level side effects.
type Presenter interface {
	// ScreenMessage shows a one-line message, e.g. a rejected click.
	ScreenMessage(msg string)
	PlaySound(name string)
	// RefreshTile recalibrates the display of the tile at (x, y).
	RefreshTile(x, y int)
}

// NopPresenter discards every presentation call.
type NopPresenter struct{}

func (NopPresenter) ScreenMessage(string) {}
func (NopPresenter) PlaySound(string)     {}
func (NopPresenter) RefreshTile(int, int) {}

// Scripts are the optional content hooks consulted while resolving.
// *scripting.Manager implements it.
type Scripts interface {
	RollModifier(kind string, u scripting.UnitInfo) int
	OutcomeText(kind, band string) (string, bool)
}

// Effects are debug overrides that force every roll to an extreme.
type Effects struct {
	AlwaysSucceed bool
	AlwaysFail    bool
}

// Hooks are called when control returns to the player after an enemy phase.
type Hooks struct {
	ResumePlayerTurn func()
	ResetAutomation  func()
}

// Deps is the shared context every action reads and mutates.
type Deps struct {
	Logger  *zap.Logger
	Roller  *dice.Roller
	World   *world.Grid
	Cabinet *minister.Cabinet
	Ledger  *ledger.Ledger

	Prices        *ledger.PriceTable
	Opinion       *ledger.Tracker
	Evil          *ledger.Tracker
	Fear          *ledger.Tracker
	Notifications *notification.Queue
	Achievements  *achievement.Set
	Presenter     Presenter
	Scripts       Scripts
	// Reports persists closed turns when set.
	Reports ledger.ReportStore
	Effects Effects
	Hooks   Hooks
}

// Attack is an enemy unit attacking the player at (X, Y).
type Attack struct {
	Attacker *unit.Unit
	X, Y     int
}

// Engine owns the action registry and the enemy combat phase.
type Engine struct {
	Deps

	actions    map[string]Action
	keys       []string
	combat     *combatAction
	enemyPhase bool
	attackers  []Attack
}

// New builds the engine and registers one action per definition, plus one
// construction action per building type in the catalog.
//
// Precondition: Logger, Roller, World, Cabinet and Ledger must be non-nil.
// Postcondition: Every registered action is in StateReady.
func New(deps Deps, defs []Definition) (*Engine, error) {
	switch {
	case deps.Logger == nil:
		return nil, errors.New("action: logger must not be nil")
	case deps.Roller == nil:
		return nil, errors.New("action: roller must not be nil")
	case deps.World == nil:
		return nil, errors.New("action: world must not be nil")
	case deps.Cabinet == nil:
		return nil, errors.New("action: cabinet must not be nil")
	case deps.Ledger == nil:
		return nil, errors.New("action: ledger must not be nil")
	}
	if deps.Prices == nil {
		deps.Prices = ledger.NewPriceTable()
	}
	if deps.Opinion == nil {
		deps.Opinion = ledger.NewOpinionTracker(50, deps.Logger)
	}
	if deps.Evil == nil {
		deps.Evil = ledger.NewCounter("evil", deps.Logger)
	}
	if deps.Fear == nil {
		deps.Fear = ledger.NewCounter("fear", deps.Logger)
	}
	if deps.Notifications == nil {
		deps.Notifications = notification.NewQueue(nil, deps.Logger)
	}
	if deps.Achievements == nil {
		deps.Achievements = achievement.NewSet(deps.Logger)
	}
	if deps.Presenter == nil {
		deps.Presenter = NopPresenter{}
	}

	e := &Engine{Deps: deps, actions: make(map[string]Action)}
	e.Cabinet.OnDetected = e.theftDetected

	seen := make(map[Kind]bool, len(defs))
	for _, def := range defs {
		if err := def.Validate(); err != nil {
			return nil, err
		}
		if seen[def.Kind] {
			return nil, fmt.Errorf("action: duplicate definition for %q", def.Kind)
		}
		seen[def.Kind] = true
		for _, a := range e.build(def) {
			e.register(a)
		}
	}
	for _, k := range Kinds {
		if !seen[k] {
			return nil, fmt.Errorf("action: no definition for %q", k)
		}
	}
	return e, nil
}

func (e *Engine) build(def Definition) []Action {
	switch def.Kind {
	case KindCombat, KindHunting:
		a := newCombat(e, def)
		if def.Kind == KindCombat {
			e.combat = a
		}
		return []Action{a}
	case KindConstruction:
		var out []Action
		for _, t := range e.World.Catalog().Types() {
			out = append(out, newConstruction(e, def, t))
		}
		return out
	case KindRepair, KindUpgrade:
		return []Action{newConstruction(e, def, "")}
	case KindExploration:
		return []Action{newExploration(e, def)}
	case KindPublicRelationsCampaign, KindReligiousCampaign:
		return []Action{newCampaign(e, def)}
	default:
		return []Action{newTrial(e, def)}
	}
}

func (e *Engine) register(a Action) {
	e.actions[a.Key()] = a
	e.keys = append(e.keys, a.Key())
	if s, ok := a.(interface{ initialSetup() }); ok {
		s.initialSetup()
	}
}

// Action returns the registered action for key.
func (e *Engine) Action(key string) (Action, bool) {
	a, ok := e.actions[key]
	return a, ok
}

// Keys returns every registered action key in registration order.
func (e *Engine) Keys() []string {
	out := make([]string, len(e.keys))
	copy(out, e.keys)
	return out
}

// Available returns the keys of the actions that can be shown for t, sorted.
func (e *Engine) Available(t Target) []string {
	var out []string
	for _, key := range e.keys {
		if e.actions[key].CanShow(t) {
			out = append(out, key)
		}
	}
	sort.Strings(out)
	return out
}

// Click forwards a trigger click to the action registered under key.
func (e *Engine) Click(key string, t Target) bool {
	a, ok := e.actions[key]
	if !ok {
		e.Presenter.ScreenMessage(fmt.Sprintf("Unknown action %q.", key))
		return false
	}
	return a.OnClick(t)
}

// Busy reports whether any action is between confirmation and completion.
func (e *Engine) Busy() bool {
	for _, a := range e.actions {
		if s := a.State(); s == StateConfirming || s == StateRolling {
			return true
		}
	}
	return false
}

// EnemyPhase reports whether enemy attacks are still being resolved.
func (e *Engine) EnemyPhase() bool { return e.enemyPhase }

// BeginEnemyPhase queues attacks and resolves them one after another. Each
// defence resolves without confirmation; the next starts when the previous
// completes. When the queue drains the player's turn resumes.
func (e *Engine) BeginEnemyPhase(attacks []Attack) error {
	if e.enemyPhase || e.Busy() {
		return ErrBusy
	}
	e.enemyPhase = true
	e.attackers = append(e.attackers[:0], attacks...)
	e.Logger.Info("enemy phase started", zap.Int("attacks", len(attacks)))
	e.continueEnemyPhase()
	return nil
}

// continueEnemyPhase starts the next defence, or ends the phase.
func (e *Engine) continueEnemyPhase() {
	for len(e.attackers) > 0 {
		next := e.attackers[0]
		e.attackers = e.attackers[1:]
		if next.Attacker == nil || next.Attacker.IsDead() {
			continue
		}
		cell := e.World.FindLocation(next.X, next.Y)
		if cell == nil {
			e.Logger.Warn("attack outside the map", zap.Int("x", next.X), zap.Int("y", next.Y))
			continue
		}
		defender := e.World.GetBestCombatant(cell, unit.SidePlayer, next.Attacker)
		if defender == nil {
			units := cell.UnitsOf(unit.SidePlayer)
			if len(units) == 0 {
				continue
			}
			defender = units[0]
		}
		if err := e.World.Place(next.Attacker, next.X, next.Y); err != nil {
			e.Logger.Warn("placing attacker", zap.Error(err))
			continue
		}
		e.combat.Defend(defender, next.Attacker)
		return
	}
	e.enemyPhase = false
	e.Logger.Info("enemy phase finished")
	if e.Hooks.ResumePlayerTurn != nil {
		e.Hooks.ResumePlayerTurn()
	}
	if e.Hooks.ResetAutomation != nil {
		e.Hooks.ResetAutomation()
	}
}

// EndTurn closes the ledger turn, restores campaign prices and movement
// points, and persists the turn report when a store is configured.
func (e *Engine) EndTurn(ctx context.Context) (ledger.Report, error) {
	if e.enemyPhase || e.Busy() {
		return ledger.Report{}, ErrBusy
	}
	report := e.Ledger.EndTurn()
	e.Prices.ResetTurn()
	for _, u := range e.World.Units() {
		if u.Side == unit.SidePlayer {
			u.ResetMovement()
		}
	}
	if e.Reports != nil {
		if err := e.Reports.Save(ctx, report); err != nil {
			return report, fmt.Errorf("saving turn %d report: %w", report.Turn, err)
		}
	}
	return report, nil
}

func (e *Engine) theftDetected(thief, prosecutor *minister.Minister) {
	e.Notifications.Display(notification.Spec{
		Message: fmt.Sprintf("%s has found evidence that %s has been stealing money.", prosecutor.Name, thief.Name),
	})
}

func (e *Engine) unitInfo(u *unit.Unit) scripting.UnitInfo {
	perms := make([]string, 0)
	for _, p := range u.Permissions() {
		perms = append(perms, string(p))
	}
	return scripting.UnitInfo{
		ID:          u.ID,
		Name:        u.Name,
		Side:        u.Side.String(),
		X:           u.X,
		Y:           u.Y,
		Movement:    u.MovementPoints(),
		Permissions: perms,
	}
}
