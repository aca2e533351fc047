// Package simulation plays a seeded colony scenario headlessly: the player's
// units take one action each per turn, the enemy attacks, and the turn closes
// into a report. Notifications are answered automatically by scheduled jobs
// driven from the real-time frame loop.
package simulation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/colony/internal/config"
	"github.com/cory-johannsen/colony/internal/game/action"
	"github.com/cory-johannsen/colony/internal/game/dice"
	"github.com/cory-johannsen/colony/internal/game/jobs"
	"github.com/cory-johannsen/colony/internal/game/ledger"
	"github.com/cory-johannsen/colony/internal/game/minister"
	"github.com/cory-johannsen/colony/internal/game/notification"
	"github.com/cory-johannsen/colony/internal/game/unit"
	"github.com/cory-johannsen/colony/internal/game/world"
	"github.com/cory-johannsen/colony/internal/scripting"
	"github.com/cory-johannsen/colony/internal/server"
)

// Options configures a run.
type Options struct {
	Game config.GameConfig
	// Turns is the number of turns to play.
	Turns int
	// Out receives the narrative. Nil discards it.
	Out io.Writer
	// Reports persists each closed turn when set.
	Reports ledger.ReportStore
	Logger  *zap.Logger
	// Source overrides the dice source selected by Game.Seed.
	Source dice.Source
	// HandleSignals stops the run on SIGINT and SIGTERM.
	HandleSignals bool
}

// step is one scripted move, run when the engine and the queue are idle.
type step func(ctx context.Context) error

// Simulation is a single headless run.
type Simulation struct {
	opts      Options
	logger    *zap.Logger
	out       io.Writer
	engine    *action.Engine
	grid      *world.Grid
	cabinet   *minister.Cabinet
	ledger    *ledger.Ledger
	queue     *notification.Queue
	scheduler *jobs.Scheduler
	loop      *jobs.FrameLoop
	scripts   *scripting.Manager

	ctx     context.Context
	plan    []step
	turn    int
	reports []ledger.Report
	err     error
}

// New builds the scenario, the engine and the frame loop.
//
// Precondition: opts.Logger must be non-nil; opts.Turns > 0.
// Postcondition: Returns a Simulation ready to Run, or a non-nil error.
func New(opts Options) (*Simulation, error) {
	if opts.Logger == nil {
		return nil, errors.New("simulation: logger must not be nil")
	}
	if opts.Turns <= 0 {
		return nil, fmt.Errorf("simulation: turns must be > 0, got %d", opts.Turns)
	}
	if opts.Game.FrameInterval <= 0 {
		return nil, errors.New("simulation: frame interval must be > 0")
	}
	s := &Simulation{opts: opts, logger: opts.Logger, out: opts.Out}
	if s.out == nil {
		s.out = io.Discard
	}

	src := opts.Source
	switch {
	case src != nil:
	case opts.Game.Seed != 0:
		src = dice.NewSeededSource(opts.Game.Seed)
	default:
		src = dice.NewCryptoSource()
	}
	roller := dice.NewLoggedRoller(src, s.logger)

	catalog := world.DefaultCatalog()
	if opts.Game.BuildingsFile != "" {
		var err error
		if catalog, err = world.LoadCatalog(opts.Game.BuildingsFile); err != nil {
			return nil, fmt.Errorf("loading buildings: %w", err)
		}
	}
	defs, err := action.LoadDefinitions(opts.Game.ActionsDir)
	if err != nil {
		return nil, fmt.Errorf("loading actions: %w", err)
	}
	grid, err := newScenario(catalog)
	if err != nil {
		return nil, err
	}
	s.grid = grid
	s.cabinet = minister.NewCabinet(roller, s.logger)
	appointCabinet(s.cabinet)
	s.ledger = ledger.New(opts.Game.StartingMoney, s.logger)
	s.queue = notification.NewQueue(notification.SinkFunc(s.show), s.logger)
	s.scheduler = jobs.NewScheduler(time.Now(), s.logger)
	s.loop = jobs.NewFrameLoop(opts.Game.FrameInterval, s.scheduler)
	s.loop.OnFrame(s.frame)

	deps := action.Deps{
		Logger:        s.logger,
		Roller:        roller,
		World:         grid,
		Cabinet:       s.cabinet,
		Ledger:        s.ledger,
		Opinion:       ledger.NewOpinionTracker(opts.Game.StartingOpinion, s.logger),
		Notifications: s.queue,
		Presenter:     presenter{s},
		Reports:       opts.Reports,
		Effects: action.Effects{
			AlwaysSucceed: opts.Game.AlwaysSucceed,
			AlwaysFail:    opts.Game.AlwaysFail,
		},
		Hooks: action.Hooks{
			ResumePlayerTurn: func() { s.say("The enemy has withdrawn.") },
		},
	}
	if opts.Game.ScriptsDir != "" {
		s.scripts = scripting.NewManager(roller, s.logger)
		s.scripts.Money = s.ledger.Money
		if err := s.scripts.LoadGlobal(opts.Game.ScriptsDir, opts.Game.ScriptInstructionLimit); err != nil {
			s.scripts.Close()
			return nil, fmt.Errorf("loading scripts: %w", err)
		}
		deps.Scripts = s.scripts
	}
	if s.engine, err = action.New(deps, defs); err != nil {
		s.Close()
		return nil, err
	}
	if s.scripts != nil {
		s.scripts.Opinion = s.engine.Opinion.Value
		s.scripts.QueryUnit = s.queryUnit
	}
	return s, nil
}

// Close releases the script VMs.
func (s *Simulation) Close() {
	if s.scripts != nil {
		s.scripts.Close()
	}
}

// Engine returns the action engine driven by the run.
func (s *Simulation) Engine() *action.Engine { return s.engine }

// Run plays every turn and returns the closed reports in turn order.
//
// Postcondition: On success len(reports) == Turns.
func (s *Simulation) Run(ctx context.Context) ([]ledger.Report, error) {
	s.ctx = ctx
	lc := server.NewLifecycle(s.logger)
	if !s.opts.HandleSignals {
		lc.IgnoreSignals()
	}
	lc.Add("frames", s.loop)
	if err := lc.Run(ctx); err != nil {
		return s.reports, err
	}
	if s.err != nil {
		return s.reports, s.err
	}
	if len(s.reports) < s.opts.Turns {
		return s.reports, fmt.Errorf("simulation stopped after %d of %d turns", len(s.reports), s.opts.Turns)
	}
	return s.reports, nil
}

// idle reports whether nothing is waiting on the player.
func (s *Simulation) idle() bool {
	return s.queue.Current() == nil && s.queue.Len() == 0 && !s.engine.Busy() && !s.engine.EnemyPhase()
}

// frame runs on the loop goroutine after the scheduler has advanced.
func (s *Simulation) frame(time.Time) {
	if !s.idle() {
		return
	}
	if len(s.plan) == 0 {
		if s.turn == s.opts.Turns {
			s.loop.Stop()
			return
		}
		s.turn++
		s.plan = s.planTurn()
	}
	next := s.plan[0]
	s.plan = s.plan[1:]
	if err := next(s.ctx); err != nil {
		s.err = err
		s.logger.Error("simulation step failed", zap.Int("turn", s.turn), zap.Error(err))
		s.loop.Stop()
	}
}

// show prints n and schedules the answer a player would give.
func (s *Simulation) show(n *notification.Notification) {
	s.say(n.Message)
	s.scheduler.Schedule(s.opts.Game.NotificationDelay, func() {
		if s.queue.Current() != n {
			return
		}
		var err error
		switch {
		case n.Kind == notification.KindDiceRolling:
			s.queue.FinishRolling()
		case len(n.Choices) > 0:
			err = s.queue.Choose(n.Choices[0].Label)
		default:
			err = s.queue.Dismiss()
		}
		if err != nil {
			s.logger.Warn("answering notification", zap.String("id", n.ID), zap.Error(err))
		}
	})
}

func (s *Simulation) say(msg string) {
	if msg = strings.TrimSpace(msg); msg != "" {
		fmt.Fprintln(s.out, msg)
	}
}

// planTurn scripts the coming turn: one action per player unit, a trial when
// there is evidence, the enemy attacks, and the end of the turn.
func (s *Simulation) planTurn() []step {
	plan := []step{s.announce}
	for _, u := range s.grid.Units() {
		if u.Side == unit.SidePlayer {
			plan = append(plan, s.act(u))
		}
	}
	plan = append(plan, s.prosecute, s.enemyAttacks, s.endTurn)
	return plan
}

func (s *Simulation) announce(context.Context) error {
	s.say(fmt.Sprintf("Turn %d. Treasury: %d. Public opinion: %d.", s.turn, s.ledger.Money(), s.engine.Opinion.Value()))
	for _, office := range minister.Offices {
		if _, err := s.cabinet.Get(office); err == nil {
			continue
		}
		m := minister.New(fmt.Sprintf("Acting %s minister", office), 3, 2)
		s.cabinet.Appoint(m, office)
		s.say(fmt.Sprintf("%s has been appointed.", m.Name))
	}
	return nil
}

// act clicks the first suitable action for u, if any, and confirms it through
// the scheduled answer.
func (s *Simulation) act(u *unit.Unit) step {
	return func(context.Context) error {
		if u.IsDead() || u.MovementPoints() == 0 {
			return nil
		}
		key, target, ok := s.choose(u)
		if !ok {
			s.logger.Debug("no action for unit", zap.String("unit", u.Name))
			return nil
		}
		if !s.engine.Click(key, target) {
			s.logger.Debug("action rejected", zap.String("unit", u.Name), zap.String("action", key))
		}
		return nil
	}
}

var neighbours = [][2]int{{1, 0}, {0, 1}, {-1, 0}, {0, -1}, {1, 1}, {-1, 1}, {1, -1}, {-1, -1}}

// choose picks an action for u in priority order: fight, hunt, repair,
// build, upgrade, explore, campaign.
func (s *Simulation) choose(u *unit.Unit) (string, action.Target, bool) {
	for _, kind := range []action.Kind{action.KindCombat, action.KindHunting} {
		for _, d := range neighbours {
			t := action.Target{Unit: u, DX: d[0], DY: d[1]}
			if s.available(string(kind), t) {
				return string(kind), t, true
			}
		}
	}
	cell := s.grid.FindLocation(u.X, u.Y)
	catalog := s.grid.Catalog()
	for _, bt := range catalog.Types() {
		if b := cell.Building(bt); b != nil && b.Damaged {
			t := action.Target{Unit: u, Building: bt}
			if s.available(string(action.KindRepair), t) {
				return string(action.KindRepair), t, true
			}
		}
	}
	for _, bt := range catalog.Types() {
		key := "construction:" + string(bt)
		if t := (action.Target{Unit: u}); s.available(key, t) {
			return key, t, true
		}
	}
	for _, bt := range catalog.Types() {
		spec, _ := catalog.Spec(bt)
		for _, kind := range spec.Upgrades {
			t := action.Target{Unit: u, Building: bt, Upgrade: kind}
			if s.available(string(action.KindUpgrade), t) {
				return string(action.KindUpgrade), t, true
			}
		}
	}
	for _, d := range neighbours {
		t := action.Target{Unit: u, DX: d[0], DY: d[1]}
		if s.available(string(action.KindExploration), t) {
			return string(action.KindExploration), t, true
		}
	}
	for _, kind := range []action.Kind{action.KindReligiousCampaign, action.KindPublicRelationsCampaign} {
		t := action.Target{Unit: u}
		if s.available(string(kind), t) {
			return string(kind), t, true
		}
	}
	return "", action.Target{}, false
}

// available reports whether key can be shown for t and is affordable.
func (s *Simulation) available(key string, t action.Target) bool {
	a, ok := s.engine.Action(key)
	if !ok || !a.CanShow(t) {
		return false
	}
	return a.Price(t) <= s.ledger.Money()
}

// prosecute puts the minister with the most evidence on trial.
func (s *Simulation) prosecute(context.Context) error {
	var defendant *minister.Minister
	for _, m := range s.cabinet.Ministers() {
		if m == s.cabinet.Prosecutor() || m.Evidence == 0 {
			continue
		}
		if defendant == nil || m.Evidence > defendant.Evidence {
			defendant = m
		}
	}
	if defendant == nil {
		return nil
	}
	key := string(action.KindTrial)
	t := action.Target{Defendant: defendant}
	if !s.available(key, t) {
		return nil
	}
	s.engine.Click(key, t)
	return nil
}

// enemyAttacks sends every living raider against an adjacent player unit.
func (s *Simulation) enemyAttacks(context.Context) error {
	var attacks []action.Attack
	for _, e := range s.grid.Units() {
		if e.Side != unit.SideEnemy || e.HasPermission(unit.PermBeast) {
			continue
		}
		for _, d := range neighbours {
			cell := s.grid.FindLocation(e.X+d[0], e.Y+d[1])
			if cell != nil && len(cell.UnitsOf(unit.SidePlayer)) > 0 {
				attacks = append(attacks, action.Attack{Attacker: e, X: cell.X, Y: cell.Y})
				break
			}
		}
	}
	if len(attacks) == 0 {
		return nil
	}
	return s.engine.BeginEnemyPhase(attacks)
}

func (s *Simulation) endTurn(ctx context.Context) error {
	report, err := s.engine.EndTurn(ctx)
	if err != nil {
		return fmt.Errorf("ending turn %d: %w", s.turn, err)
	}
	s.reports = append(s.reports, report)
	s.say(report.String())
	return nil
}

func (s *Simulation) queryUnit(id string) *scripting.UnitInfo {
	u := s.grid.FindUnit(id)
	if u == nil {
		return nil
	}
	perms := make([]string, 0)
	for _, p := range u.Permissions() {
		perms = append(perms, string(p))
	}
	return &scripting.UnitInfo{
		ID:          u.ID,
		Name:        u.Name,
		Side:        u.Side.String(),
		X:           u.X,
		Y:           u.Y,
		Movement:    u.MovementPoints(),
		Permissions: perms,
	}
}

// presenter logs the engine's screen effects.
type presenter struct{ s *Simulation }

func (p presenter) ScreenMessage(msg string) { p.s.say(msg) }

func (p presenter) PlaySound(name string) {
	p.s.logger.Debug("sound", zap.String("name", name))
}

func (p presenter) RefreshTile(x, y int) {
	p.s.logger.Debug("tile refreshed", zap.Int("x", x), zap.Int("y", y))
}
