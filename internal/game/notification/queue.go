package notification

import (
	"errors"

	"go.uber.org/zap"
)

var (
	// ErrNothingDisplayed is returned when no notification is displayed.
	ErrNothingDisplayed = errors.New("no notification is displayed")
	// ErrChoiceRequired is returned when a choice notification is dismissed by click.
	ErrChoiceRequired = errors.New("notification requires a choice")
	// ErrRolling is returned when a dice-rolling notification is dismissed by click.
	ErrRolling = errors.New("dice are still rolling")
	// ErrUnknownChoice is returned when Choose names a choice that is not offered.
	ErrUnknownChoice = errors.New("unknown choice")
)

// Queue is the notification queue plus the displayed slot.
//
// Invariant: at most one notification is displayed; while locked nothing is
// promoted from the queue.
type Queue struct {
	pending []*Notification
	current *Notification
	locked  bool
	blocks  []*Block
	// carry holds transferable elements of a removed notification until the
	// next one is displayed.
	carry  []Element
	sink   Sink
	logger *zap.Logger
}

// NewQueue creates an empty, unlocked queue. A nil sink discards output.
func NewQueue(sink Sink, logger *zap.Logger) *Queue {
	if sink == nil {
		sink = SinkFunc(func(*Notification) {})
	}
	return &Queue{sink: sink, logger: logger}
}

// Display shows spec immediately when the queue is empty, unlocked and idle;
// otherwise it is appended to the queue.
func (q *Queue) Display(spec Spec) *Notification {
	n := &Notification{ID: newID(), Spec: spec}
	if q.idle() {
		q.show(n)
		return n
	}
	q.insert(n, len(q.pending), nil, true)
	return n
}

// DisplayAt is Display with an explicit queue insertion index. Items already
// queued at or after index keep their relative order behind the new one.
// Reserved blocks at or after index move back with them.
func (q *Queue) DisplayAt(spec Spec, index int) *Notification {
	n := &Notification{ID: newID(), Spec: spec}
	if q.idle() {
		q.show(n)
		return n
	}
	index = max(0, min(index, len(q.pending)))
	q.insert(n, index, nil, false)
	return n
}

func (q *Queue) idle() bool {
	return len(q.pending) == 0 && !q.locked && q.current == nil
}

// insert places n at index. Appends never move a reserved block, so a block
// stays ahead of everything displayed after it was reserved.
func (q *Queue) insert(n *Notification, index int, owner *Block, appending bool) {
	q.pending = append(q.pending, nil)
	copy(q.pending[index+1:], q.pending[index:])
	q.pending[index] = n
	for _, b := range q.blocks {
		switch {
		case b == owner:
			b.count++
		case b.start > index, b.start == index && !appending:
			b.start++
		case index < b.start+b.count:
			b.count++
		}
	}
	q.logger.Debug("notification queued",
		zap.String("id", n.ID),
		zap.String("kind", n.Kind.String()),
		zap.Int("index", index),
		zap.Int("pending", len(q.pending)),
	)
}

// SetLock sets the lock flag. Unlocking with nothing displayed promotes the
// queue head.
func (q *Queue) SetLock(locked bool) {
	q.locked = locked
	if !locked && q.current == nil {
		q.promote()
	}
}

// Locked reports the lock flag.
func (q *Queue) Locked() bool { return q.locked }

// Current returns the displayed notification, or nil.
func (q *Queue) Current() *Notification { return q.current }

// Pending returns a snapshot of the queued notifications in display order.
func (q *Queue) Pending() []*Notification {
	out := make([]*Notification, len(q.pending))
	copy(out, q.pending)
	return out
}

// Len returns the number of queued notifications, excluding the displayed one.
func (q *Queue) Len() int { return len(q.pending) }

// Dismiss removes the displayed plain or action notification, as a player
// click does.
func (q *Queue) Dismiss() error {
	if q.current == nil {
		return ErrNothingDisplayed
	}
	switch q.current.Kind {
	case KindChoice:
		return ErrChoiceRequired
	case KindDiceRolling:
		return ErrRolling
	}
	q.remove()
	return nil
}

// Choose runs the continuation of the named choice on the displayed choice
// notification, then removes it.
func (q *Queue) Choose(label string) error {
	if q.current == nil {
		return ErrNothingDisplayed
	}
	for _, c := range q.current.Choices {
		if c.Label != label {
			continue
		}
		n := q.current
		if c.OnChoose != nil {
			c.OnChoose()
		}
		if q.current == n {
			q.remove()
		}
		return nil
	}
	return ErrUnknownChoice
}

// FinishRolling removes the displayed dice-rolling notification once its
// animation has completed. It is a no-op for other kinds.
func (q *Queue) FinishRolling() {
	if q.current != nil && q.current.Kind == KindDiceRolling {
		q.remove()
	}
}

// remove drops the displayed notification, promotes the next one and then
// runs the removed notification's callbacks.
func (q *Queue) remove() {
	old := q.current
	q.current = nil
	for _, e := range old.Elements {
		if e.Transfer {
			q.carry = append(q.carry, e)
		}
	}
	q.logger.Debug("notification removed", zap.String("id", old.ID))
	if !q.locked {
		q.promote()
	}
	for _, f := range old.OnRemove {
		f()
	}
}

func (q *Queue) promote() {
	if len(q.pending) == 0 {
		return
	}
	n := q.pending[0]
	q.pending = q.pending[1:]
	for _, b := range q.blocks {
		if b.start > 0 {
			b.start--
		} else if b.count > 0 {
			b.count--
		}
	}
	q.show(n)
}

func (q *Queue) show(n *Notification) {
	if len(q.carry) > 0 {
		n.Elements = append(n.Elements, q.carry...)
		q.carry = nil
	}
	q.current = n
	q.logger.Debug("notification displayed", zap.String("id", n.ID), zap.String("kind", n.Kind.String()))
	q.sink.Show(n)
}

// Clear drops every queued and displayed notification unseen. The dropped
// notifications' OnRemove callbacks still run, displayed one first, once the
// queue is empty and unlocked, so work waiting on a removal completes.
func (q *Queue) Clear() {
	dropped := q.pending
	if q.current != nil {
		dropped = append([]*Notification{q.current}, dropped...)
	}
	q.pending = nil
	q.current = nil
	q.carry = nil
	q.blocks = nil
	q.locked = false
	q.logger.Debug("notifications cleared", zap.Int("dropped", len(dropped)))
	for _, n := range dropped {
		for _, f := range n.OnRemove {
			f()
		}
	}
}
