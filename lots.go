package cgt

// acquisitionLot represents a single purchase of an instrument, and tracks
// how its shares have been used since.
//
// Shares leave a lot in three ways: consumed (disposed against a sell, same
// day or bed-and-breakfast), reserved (claimed by an earlier sell's
// bed-and-breakfast match, settled into consumed at the end of the lot's
// day), or pooled (promoted into the section 104 pool). Drained lots stay in
// the ledger because later capital events may still adjust their cost.
type acquisitionLot struct {
	date       Date
	original   Quantity // quantity acquired, scaled by later splits
	price      Money    // unit price at acquisition
	expenses   Money    // trade fees at acquisition
	consumed   Quantity
	reserved   Quantity
	pooled     Quantity
	costOffset Money // cumulative cost adjustment from capital events
}

// baseCost is the acquisition cost of the whole lot, fees included.
func (l *acquisitionLot) baseCost() Money {
	return l.price.Mul(l.original).Add(l.expenses)
}

// adjustedCost is the base cost corrected by capital events.
func (l *acquisitionLot) adjustedCost() Money {
	return l.baseCost().Add(l.costOffset)
}

// adjustedUnitCost spreads the adjusted cost over the original quantity.
func (l *acquisitionLot) adjustedUnitCost() Money {
	return l.adjustedCost().Div(l.original)
}

// available is the quantity still free for matching.
func (l *acquisitionLot) available() Quantity {
	return l.original.Sub(l.consumed).Sub(l.reserved).Sub(l.pooled)
}

// heldForAdjustment is the quantity still held for capital event
// apportionment. Pooled shares count, disposed shares do not.
func (l *acquisitionLot) heldForAdjustment() Quantity {
	return l.original.Sub(l.consumed)
}

// consume disposes a quantity out of the lot and returns its allowable cost.
func (l *acquisitionLot) consume(q Quantity) Money {
	l.consumed = l.consumed.Add(q)
	return l.adjustedUnitCost().Mul(q)
}

// settleReserved converts bed-and-breakfast reservations into consumption.
func (l *acquisitionLot) settleReserved() {
	l.consumed = l.consumed.Add(l.reserved)
	l.reserved = Quantity{}
}

// promote moves the remaining available quantity into the section 104 pool
// and returns the quantity and cost transferred.
func (l *acquisitionLot) promote() (Quantity, Money) {
	q := l.available()
	if !q.IsPositive() {
		return Quantity{}, Money{}
	}
	cost := l.adjustedUnitCost().Mul(q)
	l.pooled = l.pooled.Add(q)
	return q, cost
}

// applyRatio rescales the lot quantities for a share split or consolidation.
// The total cost of the lot is unchanged.
func (l *acquisitionLot) applyRatio(r Quantity) {
	l.original = l.original.Mul(r)
	l.consumed = l.consumed.Mul(r)
	l.reserved = l.reserved.Mul(r)
	l.pooled = l.pooled.Mul(r)
	l.price = l.price.Div(r)
}

// acquisitionLedger holds the acquisition lots of a single instrument in
// chronological order.
type acquisitionLedger struct {
	lots []*acquisitionLot
}

// add appends a new lot. reserved is the quantity already claimed by earlier
// bed-and-breakfast matches.
func (a *acquisitionLedger) add(day Date, quantity Quantity, price, expenses Money, reserved Quantity) *acquisitionLot {
	lot := &acquisitionLot{
		date:     day,
		original: quantity,
		price:    price,
		expenses: expenses,
		reserved: reserved,
	}
	a.lots = append(a.lots, lot)
	return lot
}

// availableOn sums the available quantity of lots acquired up to the given
// date. After each day's pool promotion only same-day lots can have any.
func (a *acquisitionLedger) availableOn(day Date) Quantity {
	var total Quantity
	for _, lot := range a.lots {
		if !lot.date.After(day) {
			total = total.Add(lot.available())
		}
	}
	return total
}

// consumeOn disposes a quantity out of the lots acquired on the given date
// and returns the allowable cost. The caller must have checked availability.
func (a *acquisitionLedger) consumeOn(day Date, quantity Quantity) Money {
	var cost Money
	remaining := quantity
	for _, lot := range a.lots {
		if remaining.IsZero() {
			break
		}
		if lot.date != day {
			continue
		}
		take := remaining.Min(lot.available())
		if !take.IsPositive() {
			continue
		}
		cost = cost.Add(lot.consume(take))
		remaining = remaining.Sub(take)
	}
	return cost
}

// lotsOn returns the lots acquired on the given date.
func (a *acquisitionLedger) lotsOn(day Date) []*acquisitionLot {
	var on []*acquisitionLot
	for _, lot := range a.lots {
		if lot.date == day {
			on = append(on, lot)
		}
	}
	return on
}

// consumePooled marks a pool disposal against the lots whose shares were
// promoted, oldest first, so heldForAdjustment stays the current holding.
func (a *acquisitionLedger) consumePooled(quantity Quantity) {
	remaining := quantity
	for _, lot := range a.lots {
		if !remaining.IsPositive() {
			break
		}
		take := remaining.Min(lot.pooled)
		if !take.IsPositive() {
			continue
		}
		lot.pooled = lot.pooled.Sub(take)
		lot.consumed = lot.consumed.Add(take)
		remaining = remaining.Sub(take)
	}
}

// applyRatio rescales every lot for a share split or consolidation.
func (a *acquisitionLedger) applyRatio(r Quantity) {
	for _, lot := range a.lots {
		lot.applyRatio(r)
	}
}

// applyCostAdjustment distributes a capital event over the lots acquired
// strictly before the event date, pro rata by the quantity still held.
//
// A positive amount (notional dividend) raises costs and is applied in full,
// the rounding remainder going to the last eligible lot. A negative amount
// (capital return) never takes a lot's adjusted cost below zero, the excess
// is redistributed over lots that still have headroom. The returned value is
// the total actually applied, so the caller can keep the section 104 pool
// cost in step for shares already promoted.
func (a *acquisitionLedger) applyCostAdjustment(on Date, amount Money) Money {
	var eligible []*acquisitionLot
	var total Quantity
	for _, lot := range a.lots {
		if lot.date.Before(on) && lot.heldForAdjustment().IsPositive() {
			eligible = append(eligible, lot)
			total = total.Add(lot.heldForAdjustment())
		}
	}
	if len(eligible) == 0 || total.IsZero() {
		// nothing held before the event, the event is a no-op
		return Money{}
	}

	if !amount.IsNegative() {
		var distributed Money
		for i, lot := range eligible {
			share := amount.Mul(lot.heldForAdjustment()).Div(total)
			if i == len(eligible)-1 {
				share = amount.Sub(distributed)
			}
			lot.costOffset = lot.costOffset.Add(share)
			distributed = distributed.Add(share)
		}
		return amount
	}

	// residual is the positive magnitude still to absorb.
	residual := amount.Neg()
	var absorbedTotal Money
	for residual.IsPositive() {
		var open []*acquisitionLot
		var openQty Quantity
		for _, lot := range eligible {
			if lot.adjustedCost().IsPositive() {
				open = append(open, lot)
				openQty = openQty.Add(lot.heldForAdjustment())
			}
		}
		if len(open) == 0 || openQty.IsZero() {
			break
		}
		var absorbed, distributed Money
		for i, lot := range open {
			share := residual.Mul(lot.heldForAdjustment()).Div(openQty)
			if i == len(open)-1 {
				share = residual.Sub(distributed)
			}
			distributed = distributed.Add(share)
			if headroom := lot.adjustedCost(); headroom.LessThan(share) {
				share = headroom
			}
			lot.costOffset = lot.costOffset.Sub(share)
			absorbed = absorbed.Add(share)
		}
		if !absorbed.IsPositive() {
			break
		}
		residual = residual.Sub(absorbed)
		absorbedTotal = absorbedTotal.Add(absorbed)
	}
	return absorbedTotal.Neg()
}
