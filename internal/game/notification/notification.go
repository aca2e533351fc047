// Package notification sequences player-facing notifications. At most one
// notification is displayed at a time; the rest wait in a lockable FIFO queue.
package notification

import "github.com/google/uuid"

// Kind selects how a notification is dismissed.
type Kind int

const (
	// KindPlain is dismissed by a player click.
	KindPlain Kind = iota
	// KindChoice is dismissed by picking one of its choices.
	KindChoice
	// KindAction is dismissed by a click that also triggers the displayed action.
	KindAction
	// KindDiceRolling is dismissed automatically when the roll animation ends.
	KindDiceRolling
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindPlain:
		return "plain"
	case KindChoice:
		return "choice"
	case KindAction:
		return "action"
	case KindDiceRolling:
		return "dice_rolling"
	default:
		return "unknown"
	}
}

// Choice is one branch offered by a choice notification.
type Choice struct {
	Label    string
	OnChoose func()
}

// Element is an interface element attached to a notification, such as a
// die face or a portrait. Elements marked Transfer move to the next
// notification when this one is removed.
type Element struct {
	ID       string
	Image    string
	OffsetX  int
	OffsetY  int
	Transfer bool
}

// Spec configures a notification.
type Spec struct {
	Message  string
	Kind     Kind
	Choices  []Choice
	Elements []Element
	// OnRemove callbacks run in order after the notification is removed.
	OnRemove []func()
}

// Notification is a queued or displayed Spec.
type Notification struct {
	ID string
	Spec
}

// ChoiceLabels returns the labels of n's choices in order.
func (n *Notification) ChoiceLabels() []string {
	out := make([]string, len(n.Choices))
	for i, c := range n.Choices {
		out[i] = c.Label
	}
	return out
}

// Sink renders notifications. The queue calls Show each time a notification
// becomes the displayed one.
type Sink interface {
	Show(n *Notification)
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(n *Notification)

// Show calls f(n).
func (f SinkFunc) Show(n *Notification) { f(n) }

func newID() string { return uuid.NewString() }
