package cgt

import (
	"fmt"
	"slices"
	"sort"
)

// bedAndBreakfastWindow is the number of days after a disposal during which a
// repurchase of the same instrument is matched against it.
const bedAndBreakfastWindow = 30

// SortTransactions returns a copy of the transactions sorted by date then
// ticker. The sort is stable, same-day entries keep their relative order.
func SortTransactions(transactions []Transaction) []Transaction {
	sorted := slices.Clone(transactions)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].When() != sorted[j].When() {
			return sorted[i].When().Before(sorted[j].When())
		}
		return sorted[i].Ticker() < sorted[j].Ticker()
	})
	return sorted
}

// mergeSameDay folds multiple same-day buys of one instrument into a single
// buy at the blended price with summed fees, and likewise for sells. The
// input must already be sorted by date and ticker.
func mergeSameDay(transactions []Transaction) []Transaction {
	merged := make([]Transaction, 0, len(transactions))
	for start := 0; start < len(transactions); {
		day, ticker := transactions[start].When(), transactions[start].Ticker()
		end := start
		for end < len(transactions) && transactions[end].When() == day && transactions[end].Ticker() == ticker {
			end++
		}

		var buys []Buy
		var sells []Sell
		var others []Transaction
		for _, tx := range transactions[start:end] {
			switch t := tx.(type) {
			case Buy:
				buys = append(buys, t)
			case Sell:
				sells = append(sells, t)
			default:
				others = append(others, t)
			}
		}
		if buy, ok := mergeBuys(buys); ok {
			merged = append(merged, buy)
		}
		if sell, ok := mergeSells(sells); ok {
			merged = append(merged, sell)
		}
		merged = append(merged, others...)
		start = end
	}
	return merged
}

func mergeBuys(buys []Buy) (Buy, bool) {
	if len(buys) == 0 {
		return Buy{}, false
	}
	if len(buys) == 1 {
		return buys[0], true
	}
	var quantity Quantity
	var amount, fees Money
	for _, b := range buys {
		quantity = quantity.Add(b.Quantity)
		amount = amount.Add(b.Price.Mul(b.Quantity))
		fees = fees.Add(b.Fees)
	}
	out := buys[0]
	out.Quantity = quantity
	out.Price = amount.Div(quantity)
	out.Fees = fees
	return out, true
}

func mergeSells(sells []Sell) (Sell, bool) {
	if len(sells) == 0 {
		return Sell{}, false
	}
	if len(sells) == 1 {
		return sells[0], true
	}
	var quantity Quantity
	var amount, fees Money
	for _, s := range sells {
		quantity = quantity.Add(s.Quantity)
		amount = amount.Add(s.Price.Mul(s.Quantity))
		fees = fees.Add(s.Fees)
	}
	out := sells[0]
	out.Quantity = quantity
	out.Price = amount.Div(quantity)
	out.Fees = fees
	return out, true
}

// matcher applies the HMRC share matching rules in a single forward pass over
// sorted, merged transactions. It keeps live state per instrument: the
// acquisition lots and the section 104 pool. Bed-and-breakfast claims against
// future buys are recorded in reservations, keyed by the future transaction's
// index, and settled when that buy is reached.
type matcher struct {
	ledgers      map[string]*acquisitionLedger
	pools        map[string]*section104Pool
	reservations map[int]Quantity
	disposals    []Disposal
}

func newMatcher() *matcher {
	return &matcher{
		ledgers:      make(map[string]*acquisitionLedger),
		pools:        make(map[string]*section104Pool),
		reservations: make(map[int]Quantity),
	}
}

func (m *matcher) ledger(ticker string) *acquisitionLedger {
	l, ok := m.ledgers[ticker]
	if !ok {
		l = &acquisitionLedger{}
		m.ledgers[ticker] = l
	}
	return l
}

func (m *matcher) pool(ticker string) *section104Pool {
	p, ok := m.pools[ticker]
	if !ok {
		p = &section104Pool{}
		m.pools[ticker] = p
	}
	return p
}

// run processes the transactions day by day.
func (m *matcher) run(transactions []Transaction) error {
	for start := 0; start < len(transactions); {
		day := transactions[start].When()
		end := start
		for end < len(transactions) && transactions[end].When() == day {
			end++
		}
		if err := m.processDay(transactions, start, end); err != nil {
			return err
		}
		start = end
	}
	return nil
}

// processDay handles one day's batch: acquisitions enter the ledger first,
// then disposals are matched, then capital events adjust costs, then leftover
// acquisition quantity is promoted into the pool, and splits close the day.
func (m *matcher) processDay(transactions []Transaction, start, end int) error {
	day := transactions[start].When()

	for i := start; i < end; i++ {
		if buy, ok := transactions[i].(Buy); ok {
			reserved := m.reservations[i]
			if reserved.GreaterThan(buy.Quantity) {
				return fmt.Errorf("repurchase reservation %s exceeds buy quantity %s of %s on %s",
					reserved, buy.Quantity, buy.Ticker(), day)
			}
			m.ledger(buy.Ticker()).add(day, buy.Quantity, buy.Price, buy.Fees, reserved)
		}
	}

	for i := start; i < end; i++ {
		if sell, ok := transactions[i].(Sell); ok {
			if err := m.processSell(transactions, i, sell); err != nil {
				return err
			}
		}
	}

	for i := start; i < end; i++ {
		switch tx := transactions[i].(type) {
		case Dividend:
			m.adjustCost(tx.Ticker(), day, tx.Total)
		case CapitalReturn:
			m.adjustCost(tx.Ticker(), day, tx.Total.Sub(tx.Fees).Neg())
		}
	}

	for i := start; i < end; i++ {
		if buy, ok := transactions[i].(Buy); ok {
			for _, lot := range m.ledger(buy.Ticker()).lotsOn(day) {
				lot.settleReserved()
				if q, cost := lot.promote(); q.IsPositive() {
					m.pool(buy.Ticker()).add(q, cost)
				}
			}
		}
	}

	for i := start; i < end; i++ {
		switch tx := transactions[i].(type) {
		case Split:
			m.applyRatio(tx.Ticker(), Q(tx.Ratio))
		case Unsplit:
			m.applyRatio(tx.Ticker(), Q(1).Div(Q(tx.Ratio)))
		}
	}
	return nil
}

// adjustCost distributes a capital event over the instrument's lots and
// mirrors the applied total into the pool, where the cost of already promoted
// shares lives.
func (m *matcher) adjustCost(ticker string, day Date, amount Money) {
	applied := m.ledger(ticker).applyCostAdjustment(day, amount)
	if applied.IsZero() {
		return
	}
	m.pool(ticker).adjustCost(applied)
}

func (m *matcher) applyRatio(ticker string, r Quantity) {
	m.ledger(ticker).applyRatio(r)
	m.pool(ticker).applyRatio(r)
}

// processSell matches a disposal under the same day rule, then against
// repurchases in the following 30 days, then against the section 104 pool.
func (m *matcher) processSell(transactions []Transaction, idx int, sell Sell) error {
	ticker := sell.Ticker()
	day := sell.When()
	ledger, pool := m.ledger(ticker), m.pool(ticker)

	// Future repurchases never back a disposal: the holding on the day must
	// cover it before any matching happens.
	available := ledger.availableOn(day).Add(pool.quantity)
	if available.LessThan(sell.Quantity) {
		return InsufficientHoldingError{Ticker: ticker, Date: day, Requested: sell.Quantity, Available: available}
	}

	var matches []Match
	remaining := sell.Quantity

	addMatch := func(rule MatchRule, quantity Quantity, cost Money, acquired Date) {
		gross := sell.Price.Mul(quantity)
		fees := sell.Fees.Mul(quantity).Div(sell.Quantity)
		matches = append(matches, Match{
			Rule:            rule,
			Quantity:        quantity,
			AllowableCost:   cost,
			GainOrLoss:      gross.Sub(fees).Sub(cost),
			AcquisitionDate: acquired,
		})
		remaining = remaining.Sub(quantity)
	}

	// Same day first.
	if take := remaining.Min(ledger.availableOn(day)); take.IsPositive() {
		cost := ledger.consumeOn(day, take)
		addMatch(SameDay, take, cost, day)
	}

	// Then repurchases inside the window, earliest first. Splits between the
	// disposal and the repurchase change the share denomination, the
	// cumulative ratio translates between the two.
	ratio := Q(1)
	for j := idx + 1; j < len(transactions) && remaining.IsPositive(); j++ {
		future := transactions[j]
		if future.When().Sub(day) > bedAndBreakfastWindow {
			break
		}
		if future.Ticker() != ticker {
			continue
		}
		switch tx := future.(type) {
		case Split:
			ratio = ratio.Mul(Q(tx.Ratio))
		case Unsplit:
			ratio = ratio.Div(Q(tx.Ratio))
		case Buy:
			if future.When().Sub(day) < 1 {
				continue
			}
			// A buy already claimed, or needed by a same-day sell on its own
			// date, is not available to this disposal.
			free := tx.Quantity.Sub(m.reservations[j]).Sub(sameDayDemand(transactions, j))
			if !free.IsPositive() {
				continue
			}
			take := remaining.Min(free.Div(ratio))
			if !take.IsPositive() {
				continue
			}
			takeAtBuy := take.Mul(ratio)
			m.reservations[j] = m.reservations[j].Add(takeAtBuy)
			cost := tx.Price.Mul(takeAtBuy).Add(tx.Fees.Mul(takeAtBuy).Div(tx.Quantity))
			addMatch(BedAndBreakfast, take, cost, tx.When())
		}
	}

	// The pool takes the rest. The originating lots are marked consumed in
	// step, so later capital events apportion over the current holding only.
	if take := remaining.Min(pool.quantity); take.IsPositive() {
		cost := pool.consume(take)
		ledger.consumePooled(take)
		addMatch(Section104, take, cost, Date{})
	}

	if remaining.IsPositive() {
		// Unreachable given the precheck, but a short match must abort the
		// calculation rather than produce a partial disposal.
		return fmt.Errorf("disposal of %s %s on %s left %s unmatched",
			sell.Quantity, ticker, day, remaining)
	}

	gross := sell.Proceeds()
	m.disposals = append(m.disposals, Disposal{
		Date:          day,
		Ticker:        ticker,
		Quantity:      sell.Quantity,
		GrossProceeds: gross,
		Proceeds:      gross.Sub(sell.Fees).Round(10),
		Matches:       matches,
	})
	return nil
}

// sameDayDemand sums the sell quantity of the instrument on the day of
// transactions[j].
func sameDayDemand(transactions []Transaction, j int) Quantity {
	day, ticker := transactions[j].When(), transactions[j].Ticker()
	var demand Quantity
	for k := j - 1; k >= 0 && transactions[k].When() == day; k-- {
		if s, ok := transactions[k].(Sell); ok && s.Ticker() == ticker {
			demand = demand.Add(s.Quantity)
		}
	}
	for k := j + 1; k < len(transactions) && transactions[k].When() == day; k++ {
		if s, ok := transactions[k].(Sell); ok && s.Ticker() == ticker {
			demand = demand.Add(s.Quantity)
		}
	}
	return demand
}

// holdings returns the end state of the non-empty section 104 pools, sorted
// by ticker.
func (m *matcher) holdings() []Holding {
	var holdings []Holding
	for ticker, pool := range m.pools {
		if pool.quantity.IsPositive() {
			holdings = append(holdings, Holding{Ticker: ticker, Quantity: pool.quantity, TotalCost: pool.cost})
		}
	}
	sort.Slice(holdings, func(i, j int) bool { return holdings[i].Ticker < holdings[j].Ticker })
	return holdings
}
