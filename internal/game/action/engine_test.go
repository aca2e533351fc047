package action

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/colony/internal/game/dice"
	"github.com/cory-johannsen/colony/internal/game/ledger"
	"github.com/cory-johannsen/colony/internal/game/minister"
	"github.com/cory-johannsen/colony/internal/game/notification"
	"github.com/cory-johannsen/colony/internal/game/unit"
	"github.com/cory-johannsen/colony/internal/game/world"
	"github.com/cory-johannsen/colony/internal/scripting"
)

const startingMoney = 100

type recordingPresenter struct {
	messages []string
	sounds   []string
	tiles    [][2]int
}

func (p *recordingPresenter) ScreenMessage(msg string) { p.messages = append(p.messages, msg) }
func (p *recordingPresenter) PlaySound(name string)    { p.sounds = append(p.sounds, name) }
func (p *recordingPresenter) RefreshTile(x, y int)     { p.tiles = append(p.tiles, [2]int{x, y}) }

type fakeScripts struct {
	modifier int
	text     string
}

func (s fakeScripts) RollModifier(string, scripting.UnitInfo) int { return s.modifier }

func (s fakeScripts) OutcomeText(string, string) (string, bool) { return s.text, s.text != "" }

type fixture struct {
	e         *Engine
	src       *dice.Sequence
	grid      *world.Grid
	cabinet   *minister.Cabinet
	ledger    *ledger.Ledger
	queue     *notification.Queue
	presenter *recordingPresenter
	reports   *ledger.MemoryStore
	shown     []string
}

// newFixture builds an engine on a 5x5 plains map with an honest, average
// minister in every office. faces scripts every die the engine rolls.
func newFixture(tb require.TestingT, faces ...int) *fixture {
	if len(faces) == 0 {
		faces = []int{1}
	}
	f := &fixture{src: dice.NewSequence(faces...), presenter: &recordingPresenter{}, reports: ledger.NewMemoryStore()}
	logger := zap.NewNop()
	roller := dice.NewLoggedRoller(f.src, logger)
	f.grid = world.NewGrid(5, 5, world.DefaultCatalog())
	f.cabinet = minister.NewCabinet(roller, logger)
	for _, o := range minister.Offices {
		f.cabinet.Appoint(minister.New(string(o)+" minister", 3, 1), o)
	}
	f.ledger = ledger.New(startingMoney, logger)
	f.queue = notification.NewQueue(notification.SinkFunc(func(n *notification.Notification) {
		f.shown = append(f.shown, n.Message)
	}), logger)
	e, err := New(Deps{
		Logger:        logger,
		Roller:        roller,
		World:         f.grid,
		Cabinet:       f.cabinet,
		Ledger:        f.ledger,
		Notifications: f.queue,
		Presenter:     f.presenter,
		Reports:       f.reports,
	}, DefaultDefinitions())
	require.NoError(tb, err)
	f.e = e
	return f
}

func (f *fixture) place(tb require.TestingT, u *unit.Unit, x, y int) *unit.Unit {
	require.NoError(tb, f.grid.Place(u, x, y))
	return u
}

func (f *fixture) action(tb require.TestingT, key string) Action {
	a, ok := f.e.Action(key)
	require.True(tb, ok, "no action %q", key)
	return a
}

// drain dismisses notifications until the queue is empty, finishing dice
// animations as they come up.
func (f *fixture) drain(tb require.TestingT) {
	for n := f.queue.Current(); n != nil; n = f.queue.Current() {
		if n.Kind == notification.KindDiceRolling {
			f.queue.FinishRolling()
			continue
		}
		require.NoError(tb, f.queue.Dismiss())
	}
}

// resolve clicks key, confirms and plays the whole reveal.
func (f *fixture) resolve(tb require.TestingT, key string, t Target) Resolution {
	a := f.action(tb, key)
	require.True(tb, f.e.Click(key, t), "click rejected: %v", f.presenter.messages)
	require.Equal(tb, StateConfirming, a.State())
	require.NoError(tb, f.queue.Choose(a.Definition().Confirm))
	f.drain(tb)
	require.Equal(tb, StateReady, a.State())
	return a.Resolution()
}

func battalion(name string) *unit.Unit {
	return unit.New(name, unit.SidePlayer, 2, unit.PermBattalion)
}

func enemy(name string, strength int) *unit.Unit {
	u := unit.New(name, unit.SideEnemy, 1)
	u.Strength = strength
	return u
}

func TestNew_RequiresCoreDependencies(t *testing.T) {
	_, err := New(Deps{}, DefaultDefinitions())
	assert.Error(t, err)
}

func TestNew_RejectsDuplicateAndMissingKinds(t *testing.T) {
	f := newFixture(t)
	defs := DefaultDefinitions()

	_, err := New(f.e.Deps, append(defs, defs[0]))
	assert.ErrorContains(t, err, "duplicate")

	_, err = New(f.e.Deps, defs[1:])
	assert.ErrorContains(t, err, "no definition")
}

func TestNew_RegistersEveryActionReady(t *testing.T) {
	f := newFixture(t)
	keys := f.e.Keys()
	assert.Contains(t, keys, "combat")
	assert.Contains(t, keys, "trial")
	for _, bt := range f.grid.Catalog().Types() {
		assert.Contains(t, keys, "construction:"+string(bt))
	}
	assert.NotContains(t, keys, "construction")
	for _, k := range keys {
		assert.Equal(t, StateReady, f.action(t, k).State(), k)
	}
	assert.Equal(t, 5, f.e.Prices.Price("combat"))
	assert.Equal(t, 5, f.e.Prices.Price(string(KindPublicRelationsCampaign)))
}

func TestEngine_Available(t *testing.T) {
	f := newFixture(t)
	u := f.place(t, battalion("1st"), 1, 1)
	f.place(t, enemy("Raiders", 0), 2, 1)

	assert.Contains(t, f.e.Available(Target{Unit: u, DX: 1}), "combat")
	assert.NotContains(t, f.e.Available(Target{Unit: u, DX: -1}), "combat")
	assert.NotContains(t, f.e.Available(Target{Unit: u, DX: 1}), "hunting")
}

func TestClick_UnknownActionShowsMessage(t *testing.T) {
	f := newFixture(t)
	assert.False(t, f.e.Click("nope", Target{}))
	assert.Len(t, f.presenter.messages, 1)
}

func TestOnClick_RejectionIsAScreenMessage(t *testing.T) {
	f := newFixture(t)
	u := f.place(t, battalion("1st"), 1, 1)

	assert.False(t, f.e.Click("combat", Target{Unit: u, DX: 1}))
	assert.Equal(t, []string{"There is nothing to fight there."}, f.presenter.messages)
	assert.Equal(t, StateReady, f.action(t, "combat").State())
	assert.Nil(t, f.queue.Current())
}

func TestOnClick_RejectsExhaustedUnit(t *testing.T) {
	f := newFixture(t)
	u := f.place(t, battalion("1st"), 1, 1)
	f.place(t, enemy("Raiders", 0), 2, 1)
	u.SetMovementPoints(0)

	assert.False(t, f.e.Click("combat", Target{Unit: u, DX: 1}))
	assert.Equal(t, []string{"Not enough movement points."}, f.presenter.messages)
}

func TestOnClick_RejectsVacantOffice(t *testing.T) {
	f := newFixture(t)
	u := f.place(t, battalion("1st"), 1, 1)
	f.place(t, enemy("Raiders", 0), 2, 1)
	general, err := f.cabinet.Get(minister.OfficeMilitary)
	require.NoError(t, err)
	f.cabinet.Remove(general)

	assert.False(t, f.e.Click("combat", Target{Unit: u, DX: 1}))
	require.Len(t, f.presenter.messages, 1)
	assert.Contains(t, f.presenter.messages[0], "No minister holds the responsible office")
}

func TestOnClick_OneActionAtATime(t *testing.T) {
	f := newFixture(t)
	u := f.place(t, battalion("1st"), 1, 1)
	f.place(t, enemy("Raiders", 0), 2, 1)
	builder := f.place(t, unit.New("Builders", unit.SidePlayer, 1, unit.PermConstruction), 3, 3)

	require.True(t, f.e.Click("combat", Target{Unit: u, DX: 1}))
	assert.True(t, f.e.Busy())
	assert.False(t, f.e.Click("construction:fort", Target{Unit: builder}))
	assert.Equal(t, "An action is already in progress.", f.presenter.messages[0])
}

func TestCancel_PerformsNoMutation(t *testing.T) {
	f := newFixture(t, 6, 1)
	u := f.place(t, battalion("1st"), 1, 1)
	foe := f.place(t, enemy("Raiders", 0), 2, 1)
	a := f.action(t, "combat")

	require.True(t, f.e.Click("combat", Target{Unit: u, DX: 1}))
	require.NoError(t, f.queue.Choose(a.Definition().Cancel))

	assert.Equal(t, StateReady, a.State())
	assert.Equal(t, startingMoney, f.ledger.Money())
	assert.Empty(t, f.ledger.History())
	assert.Equal(t, 5, f.e.Prices.Price("combat"))
	assert.Equal(t, 2, u.MovementPoints())
	assert.False(t, foe.IsDead())
	assert.Zero(t, f.src.Used())
	assert.Nil(t, f.queue.Current())
	assert.Zero(t, f.queue.Len())
}

func TestMiddle_RevealOrderAheadOfQueuedRemarks(t *testing.T) {
	f := newFixture(t, 6, 1)
	u := f.place(t, battalion("1st"), 1, 1)
	f.place(t, enemy("Raiders", 0), 2, 1)
	a := f.action(t, "combat")

	require.True(t, f.e.Click("combat", Target{Unit: u, DX: 1}))
	f.queue.Display(notification.Spec{Message: "remark"})
	require.NoError(t, f.queue.Choose(a.Definition().Confirm))

	pending := f.queue.Pending()
	require.Len(t, pending, 5)
	assert.Equal(t, a.NotificationText(StepInitial), f.queue.Current().Message)
	assert.Equal(t, notification.KindDiceRolling, pending[1].Kind)
	assert.Equal(t, a.NotificationText(StepResult), pending[2].Message)
	outcome := a.NotificationText(StepOutcome)
	assert.Equal(t, outcome, pending[3].Message)
	assert.Equal(t, "remark", pending[4].Message)

	require.NoError(t, f.queue.Dismiss())
	require.NoError(t, f.queue.Dismiss())
	assert.ErrorIs(t, f.queue.Dismiss(), notification.ErrRolling)
	f.queue.FinishRolling()
	assert.Equal(t, StateRolling, a.State())

	// Removing the result completes the action.
	require.NoError(t, f.queue.Dismiss())
	assert.Equal(t, StateReady, a.State())
	assert.Equal(t, outcome, f.queue.Current().Message)
	assert.Contains(t, f.presenter.sounds, "dice")
}

func TestMiddle_DiceTransferToNextNotification(t *testing.T) {
	f := newFixture(t, 6, 1)
	u := f.place(t, battalion("1st"), 1, 1)
	f.place(t, enemy("Raiders", 0), 2, 1)
	a := f.action(t, "combat")

	require.True(t, f.e.Click("combat", Target{Unit: u, DX: 1}))
	require.NoError(t, f.queue.Choose(a.Definition().Confirm))
	require.NoError(t, f.queue.Dismiss())

	var ids []string
	for _, el := range f.queue.Current().Elements {
		ids = append(ids, el.ID)
	}
	assert.Contains(t, ids, "die-0")
	assert.Contains(t, ids, "die-opponent")
}

func TestMiddle_TheftNoticeFollowsReveal(t *testing.T) {
	// The corrupt general decides to steal on 4 (+6), the prosecutor detects on 6.
	f := newFixture(t, 4, 6)
	general := minister.New("Crooked general", 3, 6)
	f.cabinet.Appoint(general, minister.OfficeMilitary)
	u := f.place(t, battalion("1st"), 1, 1)
	f.place(t, enemy("Raiders", 0), 2, 1)

	res := f.resolve(t, "combat", Target{Unit: u, DX: 1})

	assert.True(t, res.Stealing)
	assert.Equal(t, dice.Failure, res.Band)
	assert.Equal(t, 5, general.Stolen)
	assert.Equal(t, 1, general.Evidence)
	require.NotEmpty(t, f.shown)
	assert.Contains(t, f.shown[len(f.shown)-1], "Crooked general has been stealing money")
	assert.Equal(t, startingMoney-5, f.ledger.Money())
}

func TestScripts_ModifierAndOutcomeText(t *testing.T) {
	f := newFixture(t, 2)
	f.e.Scripts = fakeScripts{modifier: 2, text: "The engineers outdid themselves."}
	builder := f.place(t, unit.New("Builders", unit.SidePlayer, 1, unit.PermConstruction), 1, 1)

	res := f.resolve(t, "construction:fort", Target{Unit: builder})

	assert.Equal(t, 2, res.OwnModifier)
	assert.Equal(t, 4, res.Total)
	assert.Equal(t, dice.Success, res.Band)
	assert.Contains(t, f.shown, "The engineers outdid themselves.")
}

func TestEffects_ForceOutcome(t *testing.T) {
	f := newFixture(t, 1)
	f.e.Effects.AlwaysSucceed = true
	u := f.place(t, battalion("1st"), 1, 1)
	foe := f.place(t, enemy("Raiders", 0), 2, 1)

	res := f.resolve(t, "combat", Target{Unit: u, DX: 1})

	assert.True(t, res.Forced)
	assert.Equal(t, []int{6}, res.Rolls)
	assert.Equal(t, 1, res.OpponentRoll)
	assert.True(t, res.Band.Succeeded())
	assert.True(t, foe.IsDead())
	assert.Zero(t, f.src.Used())
}

func TestEndTurn_ClosesTurn(t *testing.T) {
	f := newFixture(t, 2)
	first := f.place(t, unit.New("Brother Anselm", unit.SidePlayer, 1, unit.PermEvangelist), 1, 1)
	f.resolve(t, string(KindPublicRelationsCampaign), Target{Unit: first})
	require.Equal(t, 10, f.e.Prices.Price(string(KindPublicRelationsCampaign)))
	require.Zero(t, first.MovementPoints())

	report, err := f.e.EndTurn(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.Turn)
	assert.Equal(t, startingMoney, report.Opening)
	assert.Equal(t, startingMoney-5, report.Closing)
	require.Len(t, report.Entries, 1)
	assert.Equal(t, ledger.CategoryPublicRelationsCampaign, report.Entries[0].Category)
	assert.Equal(t, 5, f.e.Prices.Price(string(KindPublicRelationsCampaign)))
	assert.Equal(t, 1, first.MovementPoints())
	assert.Equal(t, 2, f.ledger.Turn())

	saved, err := f.reports.List(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, []ledger.Report{report}, saved)
}

func TestEndTurn_RejectedWhileBusy(t *testing.T) {
	f := newFixture(t)
	u := f.place(t, battalion("1st"), 1, 1)
	f.place(t, enemy("Raiders", 0), 2, 1)
	require.True(t, f.e.Click("combat", Target{Unit: u, DX: 1}))

	_, err := f.e.EndTurn(context.Background())
	assert.ErrorIs(t, err, ErrBusy)
	assert.Equal(t, 1, f.ledger.Turn())
}

func TestQueueClear_CompletesRollingAction(t *testing.T) {
	f := newFixture(t, 6, 1)
	u := f.place(t, battalion("1st"), 1, 1)
	raiders := f.place(t, enemy("Raiders", 0), 2, 1)
	a := f.action(t, "combat")

	require.True(t, f.e.Click("combat", Target{Unit: u, DX: 1}))
	require.NoError(t, f.queue.Choose(a.Definition().Confirm))
	require.Equal(t, StateRolling, a.State())

	f.queue.Clear()
	assert.Equal(t, StateReady, a.State())
	assert.False(t, f.e.Busy())
	assert.True(t, raiders.IsDead())
	assert.Zero(t, u.MovementPoints())
}

func TestQueueClear_AbandonsConfirmation(t *testing.T) {
	f := newFixture(t)
	u := f.place(t, battalion("1st"), 1, 1)
	f.place(t, enemy("Raiders", 0), 2, 1)
	a := f.action(t, "combat")

	require.True(t, f.e.Click("combat", Target{Unit: u, DX: 1}))
	require.Equal(t, StateConfirming, a.State())

	f.queue.Clear()
	assert.Equal(t, StateReady, a.State())
	assert.False(t, f.e.Busy())
	assert.Equal(t, startingMoney, f.ledger.Money())
	assert.Equal(t, 2, u.MovementPoints())
}

func TestEnemyPhase_ChainsDefencesAndResumes(t *testing.T) {
	// First defence: 6 against 1 repels the attack. Second: 1 against 6 loses
	// the settlement; 7 on the d7 swings opinion by +3.
	f := newFixture(t, 6, 1, 1, 6, 7)
	resumed, reset := 0, 0
	f.e.Hooks = Hooks{ResumePlayerTurn: func() { resumed++ }, ResetAutomation: func() { reset++ }}

	guard := f.place(t, battalion("Guard"), 1, 1)
	militia := f.place(t, battalion("Militia"), 3, 3)
	settlers := f.place(t, unit.New("Settlers", unit.SidePlayer, 1), 3, 3)
	f.grid.AddBuilding(f.grid.FindLocation(3, 3), world.BuildingFort)
	first := f.place(t, enemy("Raiders", 0), 2, 1)
	second := f.place(t, enemy("Warband", 0), 4, 4)
	// The fort gives the militia +1; make the second attacker strong enough to win.
	second.Strength = 1

	require.NoError(t, f.e.BeginEnemyPhase([]Attack{
		{Attacker: first, X: 1, Y: 1},
		{Attacker: second, X: 3, Y: 3},
	}))
	assert.True(t, f.e.EnemyPhase())
	assert.Equal(t, StateRolling, f.action(t, "combat").State())
	f.drain(t)

	assert.False(t, f.e.EnemyPhase())
	assert.Equal(t, 1, resumed)
	assert.Equal(t, 1, reset)

	// Repelled attacker is back where it came from, disorganized.
	assert.Equal(t, [2]int{2, 1}, [2]int{first.X, first.Y})
	assert.True(t, first.HasPermission(unit.PermDisorganized))
	assert.False(t, guard.IsDead())
	assert.False(t, guard.IsVeteran(), "a defence never promotes")

	// The lost defence killed everyone in the settlement.
	assert.True(t, militia.IsDead())
	assert.True(t, settlers.IsDead())
	assert.True(t, f.grid.FindLocation(3, 3).Building(world.BuildingFort).Damaged)
	assert.Equal(t, 53, f.e.Opinion.Value())
	assert.Equal(t, [2]int{3, 3}, [2]int{second.X, second.Y}, "the sacking attacker holds the settlement")
	assert.Zero(t, second.MovementPoints())

	// Defences are free and leave the defenders' movement alone.
	assert.Equal(t, startingMoney, f.ledger.Money())
	assert.Equal(t, 2, guard.MovementPoints())
}

func TestEnemyPhase_LostDefenceWithSurvivorsRepelsAttacker(t *testing.T) {
	// 1 against 6 loses the defence, but a second battalion holds the location.
	f := newFixture(t, 1, 6)
	a := f.place(t, battalion("A Company"), 2, 2)
	b := f.place(t, battalion("B Company"), 2, 2)
	raiders := f.place(t, enemy("Raiders", 0), 3, 2)

	require.NoError(t, f.e.BeginEnemyPhase([]Attack{{Attacker: raiders, X: 2, Y: 2}}))
	f.drain(t)

	assert.Equal(t, dice.CriticalFailure, f.action(t, "combat").Resolution().Band)
	assert.True(t, a.IsDead() != b.IsDead(), "exactly one defender falls")
	assert.Equal(t, [2]int{3, 2}, [2]int{raiders.X, raiders.Y})
	assert.Equal(t, 50, f.e.Opinion.Value())
}

func TestEnemyPhase_SkipsUndefendedAndRejectsWhileBusy(t *testing.T) {
	f := newFixture(t)
	raiders := f.place(t, enemy("Raiders", 0), 2, 1)
	resumed := 0
	f.e.Hooks.ResumePlayerTurn = func() { resumed++ }

	require.NoError(t, f.e.BeginEnemyPhase([]Attack{{Attacker: raiders, X: 0, Y: 0}}))
	assert.False(t, f.e.EnemyPhase())
	assert.Equal(t, 1, resumed)

	u := f.place(t, battalion("1st"), 1, 1)
	require.True(t, f.e.Click("combat", Target{Unit: u, DX: 1}))
	assert.ErrorIs(t, f.e.BeginEnemyPhase(nil), ErrBusy)
}
