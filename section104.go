package cgt

// section104Pool is the average-cost pool an instrument's shares fall into
// once the same-day and bed-and-breakfast rules have had their chance.
type section104Pool struct {
	quantity Quantity
	cost     Money // total allowable cost of the pooled shares
}

// add merges newly promoted shares into the pool.
func (p *section104Pool) add(quantity Quantity, cost Money) {
	p.quantity = p.quantity.Add(quantity)
	p.cost = p.cost.Add(cost)
}

// consume removes a quantity from the pool at average cost and returns its
// allowable cost. The caller must have checked the pool quantity.
func (p *section104Pool) consume(quantity Quantity) Money {
	cost := p.cost.Mul(quantity).Div(p.quantity)
	p.quantity = p.quantity.Sub(quantity)
	p.cost = p.cost.Sub(cost)
	return cost
}

// adjustCost applies a capital event share to the pooled cost. The pool cost
// never goes below zero.
func (p *section104Pool) adjustCost(amount Money) {
	p.cost = p.cost.Add(amount)
	if p.cost.IsNegative() {
		p.cost = Money{}
	}
}

// applyRatio rescales the pool for a share split or consolidation. The total
// cost is unchanged.
func (p *section104Pool) applyRatio(r Quantity) {
	p.quantity = p.quantity.Mul(r)
}

// averageCost returns the pool's cost per share.
func (p *section104Pool) averageCost() Money {
	if p.quantity.IsZero() {
		return Money{}
	}
	return p.cost.Div(p.quantity)
}
