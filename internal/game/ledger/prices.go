package ledger

// PriceTable holds the current price of every priced action key. Campaign
// style actions double their price on each use within a turn.
type PriceTable struct {
	base    map[string]int
	current map[string]int
}

// NewPriceTable creates an empty price table.
func NewPriceTable() *PriceTable {
	return &PriceTable{base: make(map[string]int), current: make(map[string]int)}
}

// Set registers the base price of key and resets its current price.
func (p *PriceTable) Set(key string, base int) {
	p.base[key] = base
	p.current[key] = base
}

// Price returns the current price of key, or 0 if unregistered.
func (p *PriceTable) Price(key string) int { return p.current[key] }

// Double doubles the current price of key for the rest of the turn.
//
// Postcondition: Price(key) == 2 * previous Price(key).
func (p *PriceTable) Double(key string) {
	p.current[key] *= 2
}

// ResetTurn restores every price to its base.
func (p *PriceTable) ResetTurn() {
	for k, v := range p.base {
		p.current[k] = v
	}
}
