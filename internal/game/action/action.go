// Package action implements the action resolution engine: the shared
// lifecycle every player action goes through (show, click, confirm, roll,
// complete) and the per-kind outcomes for combat, hunting, construction,
// repair, upgrades, exploration, campaigns and trials.
package action

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/colony/internal/game/dice"
	"github.com/cory-johannsen/colony/internal/game/minister"
	"github.com/cory-johannsen/colony/internal/game/notification"
	"github.com/cory-johannsen/colony/internal/game/unit"
	"github.com/cory-johannsen/colony/internal/game/world"
)

// State is the lifecycle position of an action instance.
type State int

const (
	StateUninitialized State = iota
	StateReady
	StateConfirming
	StateRolling
	StateResolved
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateReady:
		return "ready"
	case StateConfirming:
		return "confirming"
	case StateRolling:
		return "rolling"
	case StateResolved:
		return "resolved"
	default:
		return "unknown"
	}
}

// Target is what an invocation acts on. Unit is the acting unit; DX, DY is
// the offset of the target location for combat, hunting and exploration.
type Target struct {
	Unit      *unit.Unit
	DX, DY    int
	Building  world.BuildingType
	Upgrade   string
	Defendant *minister.Minister
}

// Precondition rejections returned by OnClick checks.
var (
	ErrBusy                 = errors.New("an action is already in progress")
	ErrEnemyPhase           = errors.New("the enemy is attacking")
	ErrNoUnit               = errors.New("no unit is selected")
	ErrMissingPermission    = errors.New("this unit cannot perform this action")
	ErrInsufficientMovement = errors.New("not enough movement points")
	ErrNoMinister           = errors.New("no minister holds the responsible office")
	ErrInvalidTarget        = errors.New("invalid target location")
	ErrNoOpponent           = errors.New("there is nothing to fight there")
	ErrBuildingPresent      = errors.New("there is already a building of this type here")
	ErrNoBuilding           = errors.New("there is no such building here")
	ErrNotDamaged           = errors.New("the building is not damaged")
	ErrCannotUpgrade        = errors.New("the building cannot receive this upgrade")
	ErrNoResource           = errors.New("there is no resource here")
	ErrAlreadyExplored      = errors.New("this area has already been explored")
	ErrAlreadyJoined        = errors.New("the evangelist already leads church volunteers")
	ErrNoDefendant          = errors.New("no minister can be put on trial")
	ErrNoEvidence           = errors.New("there is no evidence against the defendant")
)

// Step identifies a notification in an invocation's sequence.
type Step int

const (
	StepConfirm Step = iota
	StepInitial
	StepModifiers
	StepRolling
	StepResult
	StepOutcome
)

// Action is the lifecycle every action kind implements.
type Action interface {
	Kind() Kind
	// Key is the registry key: the kind, or "construction:<building>".
	Key() string
	Name() string
	Definition() Definition
	State() State
	// CanShow reports whether a trigger for this action should be offered for t.
	CanShow(t Target) bool
	// OnClick validates t and starts the action. It reports whether the click
	// was consumed; rejections are shown as a screen message.
	OnClick(t Target) bool
	Price(t Target) int
	Start(t Target)
	PreStart(t Target)
	Middle()
	Complete()
	NotificationText(step Step) string
	// Resolution returns the rolls and band of the latest invocation.
	Resolution() Resolution
}

// Resolution records how an invocation was resolved.
type Resolution struct {
	Invocation       string
	Price            int
	Defending        bool
	Thresholds       dice.Thresholds
	OwnModifier      int
	OpponentModifier int
	// Rolls are the own dice after adjustment. For trials they are the evidence dice.
	Rolls        []int
	RollResult   int
	OpponentRoll int
	// Total is the classified result: roll difference, modified roll or evidence successes.
	Total    int
	Band     dice.Band
	Stealing bool
	Forced   bool
	// Evidence is the evidence the trial was argued on; Bribed reports a corrupt prosecutor.
	Evidence int
	Bribed   bool
}

// behaviour is the per-kind part of an action.
type behaviour interface {
	// validate checks kind preconditions for t. It must not mutate state.
	validate(t Target) error
	price(t Target) int
	describe() string
	roll()
	// prepare draws any outcome details once the band is known.
	prepare()
	apply()
	details() string
}

// binder is implemented by kinds that resolve more of the target at PreStart.
type binder interface {
	bind(t Target)
}

// base is the state machine shared by every action kind.
type base struct {
	engine *Engine
	def    Definition
	key    string
	name   string
	state  State
	impl   behaviour
	logger *zap.Logger

	target    Target
	actor     *unit.Unit
	opponent  *unit.Unit
	defending bool
	minister  *minister.Minister
	res       Resolution
}

func newBase(e *Engine, def Definition, key, name string) *base {
	return &base{
		engine: e,
		def:    def,
		key:    key,
		name:   name,
		logger: e.Logger.With(zap.String("action", key)),
	}
}

func (b *base) Kind() Kind             { return b.def.Kind }
func (b *base) Key() string            { return b.key }
func (b *base) Name() string           { return b.name }
func (b *base) Definition() Definition { return b.def }
func (b *base) State() State           { return b.state }
func (b *base) Resolution() Resolution { return b.res }
func (b *base) Price(t Target) int     { return b.impl.price(t) }

// needsUnit reports whether the action is carried out by a unit on the map.
func (b *base) needsUnit() bool { return b.def.Kind != KindTrial }

func (b *base) flatPrice(_ Target) int { return b.engine.Prices.Price(b.key) }

func (b *base) battalion() bool {
	return b.actor != nil && b.actor.HasPermission(unit.PermBattalion)
}

func (b *base) outcomeElement() notification.Element {
	return notification.Element{ID: "outcome", Image: fmt.Sprintf("outcomes/%s_%s.png", b.def.Kind, bandKey(b.res.Band))}
}

// initialSetup registers the action's flat price and makes it usable.
func (b *base) initialSetup() {
	if b.def.Price > 0 {
		b.engine.Prices.Set(b.key, b.def.Price)
	}
	b.state = StateReady
}

// visible checks everything CanShow depends on.
func (b *base) visible(t Target) error {
	if b.needsUnit() {
		if t.Unit == nil || t.Unit.IsDead() {
			return ErrNoUnit
		}
		for _, p := range b.def.Requirements {
			if !t.Unit.HasPermission(p) {
				return ErrMissingPermission
			}
		}
	}
	return b.impl.validate(t)
}

// check runs every OnClick precondition.
func (b *base) check(t Target) error {
	if b.state != StateReady || b.engine.Busy() {
		return ErrBusy
	}
	if b.engine.enemyPhase {
		return ErrEnemyPhase
	}
	if err := b.visible(t); err != nil {
		return err
	}
	if b.needsUnit() && t.Unit.MovementPoints() == 0 {
		return ErrInsufficientMovement
	}
	if b.def.Office != "" {
		if _, err := b.engine.Cabinet.Get(b.def.Office); err != nil {
			return fmt.Errorf("%w: %v", ErrNoMinister, err)
		}
	}
	return nil
}

// CanShow reports whether the unit and target qualify for this action.
func (b *base) CanShow(t Target) bool {
	return b.state != StateUninitialized && b.visible(t) == nil
}

// OnClick validates t and starts the action.
//
// Postcondition: Returns true iff the action moved to StateConfirming.
func (b *base) OnClick(t Target) bool {
	if err := b.check(t); err != nil {
		b.logger.Debug("action rejected", zap.Error(err))
		b.engine.Presenter.ScreenMessage(sentence(err.Error()))
		return false
	}
	b.Start(t)
	return true
}

// Start computes the invocation thresholds and asks the player to confirm.
// The affirmative choice continues with Middle; the negative one returns the
// action to StateReady without mutating anything.
func (b *base) Start(t Target) {
	b.PreStart(t)
	b.state = StateConfirming
	b.engine.Notifications.Display(notification.Spec{
		Message: b.NotificationText(StepConfirm),
		Kind:    notification.KindChoice,
		Choices: []notification.Choice{
			{Label: b.def.Confirm, OnChoose: b.Middle},
			{Label: b.def.Cancel, OnChoose: b.cancel},
		},
		OnRemove: []func(){b.abandon},
	})
}

// PreStart binds t to the action and recomputes the band thresholds from the
// acting unit's current permissions.
func (b *base) PreStart(t Target) {
	b.target = t
	b.actor = t.Unit
	b.res = Resolution{Invocation: uuid.NewString(), Defending: b.defending}
	if b.def.Office != "" {
		b.minister, _ = b.engine.Cabinet.Get(b.def.Office)
	}
	if bd, ok := b.impl.(binder); ok {
		bd.bind(t)
	}
	switch b.def.Mode {
	case ModeOpposed:
		th := dice.OpposedThresholds(b.battalion())
		th.AllowCriticalFailures = b.def.CriticalFailures()
		th.AllowCriticalSuccesses = b.def.CriticalSuccesses() && !b.defending
		b.res.Thresholds = th
	case ModeThreshold:
		b.res.Thresholds = b.def.thresholds(b.battalion())
	case ModeEvidence:
		b.res.Thresholds = dice.Thresholds{MinSuccess: 1, MaxCritFail: 0, MinCritSuccess: dice.DefaultMinCritSuccess}
	}
	b.res.Price = b.impl.price(t)
	b.logger.Debug("action prepared",
		zap.String("invocation", b.res.Invocation),
		zap.Int("price", b.res.Price),
		zap.Int("min_success", b.res.Thresholds.MinSuccess),
		zap.Int("min_crit_success", b.res.Thresholds.MinCritSuccess),
	)
}

// abandon returns an action to StateReady when its confirmation is removed
// without either choice being made.
func (b *base) abandon() {
	if b.state != StateConfirming {
		return
	}
	b.logger.Debug("confirmation dropped", zap.String("invocation", b.res.Invocation))
	b.reset()
}

func (b *base) cancel() {
	b.logger.Debug("action cancelled", zap.String("invocation", b.res.Invocation))
	b.reset()
}

// Middle pays for and resolves the invocation, then queues the reveal:
// initial, modifier breakdown, rolling, result (completing on removal) and
// outcome. The first three are queued under the notification lock so that
// anything raised while rolling is shown after the reveal.
//
// Postcondition: Complete runs when the result notification is removed.
func (b *base) Middle() {
	b.state = StateRolling
	q := b.engine.Notifications
	q.SetLock(true)
	block := q.Reserve()
	defer block.Close()

	b.pay()
	b.cacheModifiers()
	b.impl.roll()
	b.impl.prepare()
	b.logger.Debug("action rolled",
		zap.String("invocation", b.res.Invocation),
		zap.String("kind", string(b.def.Kind)),
		zap.Ints("rolls", b.res.Rolls),
		zap.Int("opponent_roll", b.res.OpponentRoll),
		zap.Int("total", b.res.Total),
		zap.String("band", b.res.Band.String()),
		zap.Bool("stealing", b.res.Stealing),
	)

	block.Add(notification.Spec{
		Message:  b.NotificationText(StepInitial),
		Elements: b.initialElements(),
	})
	block.Add(notification.Spec{Message: b.NotificationText(StepModifiers)})
	block.Add(notification.Spec{Message: b.NotificationText(StepRolling), Kind: notification.KindDiceRolling})
	b.engine.Presenter.PlaySound("dice")
	q.SetLock(false)
	block.Add(notification.Spec{
		Message:  b.NotificationText(StepResult),
		OnRemove: []func(){b.Complete},
	})
	block.Add(notification.Spec{
		Message:  b.NotificationText(StepOutcome),
		Elements: []notification.Element{b.outcomeElement()},
	})
}

func (b *base) initialElements() []notification.Element {
	var out []notification.Element
	if b.minister != nil && !b.defending {
		out = append(out, notification.Element{ID: "minister", Image: "ministers/" + b.minister.Name + ".png"})
	}
	for i, r := range b.res.Rolls {
		out = append(out, notification.Element{
			ID:       fmt.Sprintf("die-%d", i),
			Image:    fmt.Sprintf("dice/%d.png", r),
			OffsetX:  i * 40,
			Transfer: true,
		})
	}
	if b.def.Mode == ModeOpposed {
		out = append(out, notification.Element{
			ID:       "die-opponent",
			Image:    fmt.Sprintf("dice/%d.png", b.res.OpponentRoll),
			OffsetX:  len(b.res.Rolls) * 40,
			OffsetY:  40,
			Transfer: true,
		})
	}
	return out
}

// pay charges the price and doubles campaign prices for the rest of the turn.
func (b *base) pay() {
	if b.res.Price > 0 {
		b.engine.Ledger.Change(-b.res.Price, b.def.Category)
	}
	if b.def.Campaign && !b.defending {
		b.engine.Prices.Double(b.key)
	}
}

// cacheModifiers computes both sides' modifiers once per invocation.
func (b *base) cacheModifiers() {
	own := b.def.Modifier
	if !b.defending && b.def.Mode != ModeEvidence {
		if b.minister != nil {
			own += b.minister.SkillModifier()
		}
		if b.actor != nil && b.engine.Scripts != nil {
			own += b.engine.Scripts.RollModifier(string(b.def.Kind), b.engine.unitInfo(b.actor))
		}
	}
	if b.def.Mode == ModeOpposed {
		own += b.engine.World.CombatModifier(b.actor, b.opponent, b.defending)
		b.res.OpponentModifier = b.engine.World.CombatModifier(b.opponent, b.actor, !b.defending)
	}
	b.res.OwnModifier = own
}

// rollStandard rolls and classifies an opposed or threshold invocation.
func (b *base) rollStandard() {
	n := b.actor.NumDice()
	opposed := b.def.Mode == ModeOpposed
	var own []int
	opp := 0
	switch {
	case b.engine.Effects.AlwaysSucceed || b.engine.Effects.AlwaysFail:
		b.res.Forced = true
		ownFace, oppFace := dice.D6, 1
		if !b.engine.Effects.AlwaysSucceed {
			ownFace, oppFace = 1, dice.D6
		}
		for i := 0; i < n; i++ {
			own = append(own, ownFace)
		}
		opp = oppFace
	case b.defending:
		own = b.defenceDice(n)
		opp = b.engine.Roller.Die(dice.D6)
	default:
		stealing, rolls := b.minister.RollToList(minister.RollRequest{
			Category:         string(b.def.Category),
			Price:            b.res.Price,
			NumDice:          n,
			Opposed:          opposed,
			OwnModifier:      b.res.OwnModifier,
			OpponentModifier: b.res.OpponentModifier,
			Thresholds:       b.res.Thresholds,
		})
		b.res.Stealing = stealing
		own = rolls[:n]
		if opposed {
			opp = rolls[n]
		}
	}
	if !b.res.Stealing && !b.res.Forced {
		for i := range own {
			own[i] = dice.Clamp(own[i]+b.actor.RollAdjustment(b.engine.Roller.Source()), dice.D6)
		}
	}

	b.res.Rolls = own
	b.res.RollResult = dice.Best(own)
	veteran := b.alreadyVeteran()
	if opposed {
		b.res.OpponentRoll = opp
		b.res.Total = b.res.RollResult + b.res.OwnModifier - (opp + b.res.OpponentModifier)
		b.res.Band = dice.Classify(b.res.Total, b.res.RollResult, b.res.Thresholds, veteran)
		return
	}
	b.res.Total = b.res.RollResult + b.res.OwnModifier
	b.res.Band = dice.Classify(b.res.Total, b.res.Total, b.res.Thresholds, veteran)
}

// defenceDice rolls a defender's dice: military defenders roll through the
// military minister's uncorruptible path, civilians roll plain dice.
func (b *base) defenceDice(n int) []int {
	military, err := b.engine.Cabinet.Get(minister.OfficeMilitary)
	if err != nil || !b.actor.IsCombatant() {
		return b.engine.Roller.Dice(n, dice.D6)
	}
	out := make([]int, n)
	for i := range out {
		out[i] = military.NoCorruptionRoll(dice.D6)
	}
	return out
}

// Complete applies the outcome, ends the acting unit's movement for the turn
// and returns the action to StateReady. A finished defence continues the
// enemy combat phase.
func (b *base) Complete() {
	if b.state != StateRolling {
		return
	}
	b.impl.apply()
	if b.actor != nil && !b.defending && !b.actor.IsDead() {
		b.actor.SetMovementPoints(0)
	}
	b.state = StateResolved
	b.logger.Debug("action resolved",
		zap.String("invocation", b.res.Invocation),
		zap.String("band", b.res.Band.String()),
	)
	defending := b.defending
	b.reset()
	if defending {
		b.engine.continueEnemyPhase()
	}
}

func (b *base) reset() {
	b.state = StateReady
	b.target = Target{}
	b.actor = nil
	b.opponent = nil
	b.defending = false
	b.minister = nil
}

// promote makes the acting unit and its officer veterans on a critical success.
func (b *base) promote() {
	if b.res.Band == dice.CriticalSuccess && b.actor != nil {
		b.actor.PromoteVeteran()
	}
}

// alreadyVeteran reports whether a critical success has no one left to
// promote: the group's officer, or the unit itself when it has none.
func (b *base) alreadyVeteran() bool {
	if officer := b.actor.Officer(); officer != nil {
		return officer.IsVeteran()
	}
	return b.actor.IsVeteran()
}

// kill removes u from play.
func (b *base) kill(u *unit.Unit, reason string) {
	u.Die(reason)
	b.engine.World.Remove(u)
	b.engine.Presenter.RefreshTile(u.X, u.Y)
}

// sentence capitalises s and ends it with a full stop.
func sentence(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	out := string(r)
	if !strings.HasSuffix(out, ".") {
		out += "."
	}
	return out
}
