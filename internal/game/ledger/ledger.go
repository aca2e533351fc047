// Package ledger tracks the colony treasury, per-turn transaction history,
// campaign prices and the public opinion, evil and fear trackers.
package ledger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Category is a transaction category key.
type Category string

const (
	CategoryLoan                    Category = "loan"
	CategoryProduction              Category = "production"
	CategoryBribery                 Category = "bribery"
	CategoryTrialCompensation       Category = "trial_compensation"
	CategoryCombat                  Category = "combat"
	CategoryHunting                 Category = "hunting"
	CategoryConstruction            Category = "construction"
	CategoryRepair                  Category = "repair"
	CategoryUpgrade                 Category = "upgrade"
	CategoryExploration             Category = "exploration"
	CategoryPublicRelationsCampaign Category = "public_relations_campaign"
	CategoryReligiousCampaign       Category = "religious_campaign"
	CategoryTrial                   Category = "trial"
)

// Categories lists every category in report order.
var Categories = []Category{
	CategoryLoan,
	CategoryProduction,
	CategoryBribery,
	CategoryTrialCompensation,
	CategoryCombat,
	CategoryHunting,
	CategoryConstruction,
	CategoryRepair,
	CategoryUpgrade,
	CategoryExploration,
	CategoryPublicRelationsCampaign,
	CategoryReligiousCampaign,
	CategoryTrial,
}

var labels = map[Category]string{
	CategoryLoan:                    "Loan interest",
	CategoryProduction:              "Production",
	CategoryBribery:                 "Bribery",
	CategoryTrialCompensation:       "Trial compensation",
	CategoryCombat:                  "Combat",
	CategoryHunting:                 "Hunting",
	CategoryConstruction:            "Construction",
	CategoryRepair:                  "Repairs",
	CategoryUpgrade:                 "Improvements",
	CategoryExploration:             "Exploration",
	CategoryPublicRelationsCampaign: "Public relations campaigns",
	CategoryReligiousCampaign:       "Religious campaigns",
	CategoryTrial:                   "Trial fees",
}

// Label returns the fixed report label of c.
func (c Category) Label() string {
	if l, ok := labels[c]; ok {
		return l
	}
	return string(c)
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	_, ok := labels[c]
	return ok
}

// Transaction is one signed money change.
type Transaction struct {
	Category Category
	Amount   int
}

// Ledger is the colony treasury and its transaction history for the turn.
//
// Invariant: Money() == opening balance + sum of History() amounts.
type Ledger struct {
	money   int
	turn    int
	opening int
	history []Transaction
	logger  *zap.Logger
}

// New creates a ledger for turn 1 holding money.
//
// Precondition: logger must be non-nil.
func New(money int, logger *zap.Logger) *Ledger {
	return &Ledger{money: money, opening: money, turn: 1, logger: logger}
}

// Change adds amount (negative for expenses) under category.
//
// Precondition: category.Valid().
func (l *Ledger) Change(amount int, category Category) {
	if !category.Valid() {
		panic(fmt.Sprintf("ledger: unknown category %q", category))
	}
	if amount == 0 {
		return
	}
	wasSolvent := l.money >= 0
	l.money += amount
	l.history = append(l.history, Transaction{Category: category, Amount: amount})
	l.logger.Info("money changed",
		zap.String("category", string(category)),
		zap.Int("amount", amount),
		zap.Int("balance", l.money),
	)
	if wasSolvent && l.money < 0 {
		l.logger.Warn("treasury overdrawn", zap.Int("balance", l.money))
	}
}

// Money returns the current balance. It may be negative.
func (l *Ledger) Money() int { return l.money }

// Bankrupt reports whether the balance is below zero.
func (l *Ledger) Bankrupt() bool { return l.money < 0 }

// Turn returns the current turn number.
func (l *Ledger) Turn() int { return l.turn }

// History returns this turn's transactions in order.
func (l *Ledger) History() []Transaction {
	out := make([]Transaction, len(l.history))
	copy(out, l.history)
	return out
}

// Total returns the accumulated amount of category this turn.
func (l *Ledger) Total(category Category) int {
	total := 0
	for _, t := range l.history {
		if t.Category == category {
			total += t.Amount
		}
	}
	return total
}

// EndTurn closes the current turn into a Report and starts the next turn
// with an empty history.
func (l *Ledger) EndTurn() Report {
	r := Report{Turn: l.turn, Opening: l.opening, Closing: l.money}
	for _, c := range Categories {
		total := l.Total(c)
		if total == 0 {
			continue
		}
		r.Entries = append(r.Entries, Entry{Category: c, Label: c.Label(), Amount: total})
	}
	l.history = nil
	l.turn++
	l.opening = l.money
	l.logger.Info("turn closed", zap.Int("turn", r.Turn), zap.Int("net", r.Net()), zap.Int("balance", r.Closing))
	return r
}

// Entry is one category line of a report.
type Entry struct {
	Category Category
	Label    string
	Amount   int
}

// Report is the financial summary of one turn.
type Report struct {
	Turn    int
	Opening int
	Closing int
	Entries []Entry
}

// Net returns the sum of all entries.
func (r Report) Net() int {
	net := 0
	for _, e := range r.Entries {
		net += e.Amount
	}
	return net
}

// Revenue returns the sum of positive entries.
func (r Report) Revenue() int {
	total := 0
	for _, e := range r.Entries {
		if e.Amount > 0 {
			total += e.Amount
		}
	}
	return total
}

// Expenses returns the sum of negative entries as a negative number.
func (r Report) Expenses() int {
	return r.Net() - r.Revenue()
}

// String renders the report as the multi-line financial summary.
func (r Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Financial report for turn %d\n", r.Turn)
	for _, e := range r.Entries {
		fmt.Fprintf(&b, "%s: %+d\n", e.Label, e.Amount)
	}
	fmt.Fprintf(&b, "Total revenue: %d\n", r.Revenue())
	fmt.Fprintf(&b, "Total expenses: %d\n", r.Expenses())
	fmt.Fprintf(&b, "Balance: %d -> %d", r.Opening, r.Closing)
	return b.String()
}
