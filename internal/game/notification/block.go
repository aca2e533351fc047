package notification

// Block is a reserved run of queue positions. Notifications added through a
// block display contiguously, ahead of everything that was queued when the
// block was reserved, and in the order they were added.
type Block struct {
	q     *Queue
	start int
	count int
}

// Reserve opens a block at the head of the queue.
func (q *Queue) Reserve() *Block {
	b := &Block{q: q}
	q.blocks = append(q.blocks, b)
	return b
}

// Add queues spec at the end of the block. It is displayed immediately when
// the queue is idle.
func (b *Block) Add(spec Spec) *Notification {
	n := &Notification{ID: newID(), Spec: spec}
	if b.q.idle() {
		b.q.show(n)
		return n
	}
	b.q.insert(n, min(b.start+b.count, len(b.q.pending)), b, false)
	return n
}

// Len returns the number of block members still queued.
func (b *Block) Len() int { return b.count }

// Close releases the reservation. Queued members keep their positions.
func (b *Block) Close() {
	for i, other := range b.q.blocks {
		if other == b {
			b.q.blocks = append(b.q.blocks[:i], b.q.blocks[i+1:]...)
			return
		}
	}
}
