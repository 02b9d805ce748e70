package cgt

import (
	"errors"
	"testing"
	"time"
)

// calculate is a test helper running the full calculation with the built-in
// exemptions.
func calculate(t *testing.T, transactions ...Transaction) *TaxReport {
	t.Helper()
	report, err := Calculate(transactions, nil, nil)
	if err != nil {
		t.Fatalf("Calculate() error = %v", err)
	}
	return report
}

// disposal returns the only disposal on the given date, failing otherwise.
func disposal(t *testing.T, report *TaxReport, day Date) Disposal {
	t.Helper()
	var found []Disposal
	for _, year := range report.Years {
		for _, d := range year.Disposals {
			if d.Date == day {
				found = append(found, d)
			}
		}
	}
	if len(found) != 1 {
		t.Fatalf("want exactly one disposal on %s, got %d", day, len(found))
	}
	return found[0]
}

func TestMatcher_Section104Gain(t *testing.T) {
	buy := NewDate(2024, time.January, 10)
	sell := buy.Add(40)

	report := calculate(t,
		NewBuy(buy, "VOD", Q(100), Gbp(10), Gbp(0)),
		NewSell(sell, "VOD", Q(100), Gbp(15), Gbp(0)),
	)

	d := disposal(t, report, sell)
	if len(d.Matches) != 1 {
		t.Fatalf("want 1 match, got %d: %v", len(d.Matches), d.Matches)
	}
	m := d.Matches[0]
	if m.Rule != Section104 {
		t.Errorf("rule = %s, want %s", m.Rule, Section104)
	}
	if !m.AcquisitionDate.IsZero() {
		t.Errorf("pool match has acquisition date %s", m.AcquisitionDate)
	}
	if want := Gbp(500); !d.Gain().Equal(want) {
		t.Errorf("gain = %s, want %s", d.Gain(), want)
	}
	if len(report.Holdings) != 0 {
		t.Errorf("want empty holdings, got %v", report.Holdings)
	}
}

func TestMatcher_SameDay(t *testing.T) {
	day := NewDate(2024, time.June, 3)

	report := calculate(t,
		NewBuy(day, "VOD", Q(10), Gbp(10), Gbp(0)),
		NewSell(day, "VOD", Q(10), Gbp(12), Gbp(0)),
	)

	d := disposal(t, report, day)
	if len(d.Matches) != 1 || d.Matches[0].Rule != SameDay {
		t.Fatalf("want a single same-day match, got %v", d.Matches)
	}
	if want := Gbp(20); !d.Gain().Equal(want) {
		t.Errorf("gain = %s, want %s", d.Gain(), want)
	}
	if d.Matches[0].AcquisitionDate != day {
		t.Errorf("acquisition date = %s, want %s", d.Matches[0].AcquisitionDate, day)
	}
}

func TestMatcher_BedAndBreakfastLeavesPoolUntouched(t *testing.T) {
	seed := NewDate(2024, time.January, 2)
	sell := NewDate(2024, time.February, 1)
	rebuy := sell.Add(10)

	report := calculate(t,
		NewBuy(seed, "VOD", Q(100), Gbp(10), Gbp(0)),
		NewSell(sell, "VOD", Q(10), Gbp(12), Gbp(0)),
		NewBuy(rebuy, "VOD", Q(10), Gbp(11), Gbp(0)),
	)

	d := disposal(t, report, sell)
	if len(d.Matches) != 1 {
		t.Fatalf("want 1 match, got %v", d.Matches)
	}
	m := d.Matches[0]
	if m.Rule != BedAndBreakfast {
		t.Errorf("rule = %s, want %s", m.Rule, BedAndBreakfast)
	}
	if m.AcquisitionDate != rebuy {
		t.Errorf("acquisition date = %s, want %s", m.AcquisitionDate, rebuy)
	}
	// cost comes from the repurchase, 10 shares at 11
	if want := Gbp(110); !m.AllowableCost.Equal(want) {
		t.Errorf("allowable cost = %s, want %s", m.AllowableCost, want)
	}
	if want := Gbp(10); !d.Gain().Equal(want) {
		t.Errorf("gain = %s, want %s", d.Gain(), want)
	}

	// The pool still holds the original 100 shares at their full cost.
	if len(report.Holdings) != 1 {
		t.Fatalf("want 1 holding, got %v", report.Holdings)
	}
	h := report.Holdings[0]
	if !h.Quantity.Equal(Q(100)) {
		t.Errorf("pool quantity = %s, want 100", h.Quantity)
	}
	if want := Gbp(1000); !h.TotalCost.Equal(want) {
		t.Errorf("pool cost = %s, want %s", h.TotalCost, want)
	}
}

func TestMatcher_SameDayClaimBeatsEarlierBedAndBreakfast(t *testing.T) {
	seed := NewDate(2024, time.March, 1)
	d1 := NewDate(2024, time.April, 10)
	d2 := d1.Add(5)

	report := calculate(t,
		NewBuy(seed, "VOD", Q(20), Gbp(10), Gbp(0)),
		NewSell(d1, "VOD", Q(5), Gbp(12), Gbp(0)),
		NewBuy(d2, "VOD", Q(10), Gbp(11), Gbp(0)),
		NewSell(d2, "VOD", Q(8), Gbp(12), Gbp(0)),
	)

	// The D2 disposal claims 8 of the 10 bought that day.
	later := disposal(t, report, d2)
	if len(later.Matches) != 1 || later.Matches[0].Rule != SameDay {
		t.Fatalf("want a single same-day match on %s, got %v", d2, later.Matches)
	}
	if !later.Matches[0].Quantity.Equal(Q(8)) {
		t.Errorf("same-day quantity = %s, want 8", later.Matches[0].Quantity)
	}

	// The D1 disposal gets the remaining 2 as bed-and-breakfast, the rest
	// falls through to the pool.
	earlier := disposal(t, report, d1)
	if len(earlier.Matches) != 2 {
		t.Fatalf("want 2 matches on %s, got %v", d1, earlier.Matches)
	}
	if earlier.Matches[0].Rule != BedAndBreakfast || !earlier.Matches[0].Quantity.Equal(Q(2)) {
		t.Errorf("first match = %+v, want bed-and-breakfast of 2", earlier.Matches[0])
	}
	if earlier.Matches[1].Rule != Section104 || !earlier.Matches[1].Quantity.Equal(Q(3)) {
		t.Errorf("second match = %+v, want section 104 of 3", earlier.Matches[1])
	}
}

func TestMatcher_InsufficientHolding(t *testing.T) {
	sell := NewDate(2024, time.May, 1)

	// A repurchase inside the window must not back a disposal with no holding.
	_, err := Calculate([]Transaction{
		NewSell(sell, "VOD", Q(10), Gbp(12), Gbp(0)),
		NewBuy(sell.Add(5), "VOD", Q(10), Gbp(11), Gbp(0)),
	}, nil, nil)

	var insufficient InsufficientHoldingError
	if !errors.As(err, &insufficient) {
		t.Fatalf("Calculate() error = %v, want InsufficientHoldingError", err)
	}
	if insufficient.Ticker != "VOD" || insufficient.Date != sell {
		t.Errorf("error context = %+v", insufficient)
	}
	if !insufficient.Requested.Equal(Q(10)) || !insufficient.Available.IsZero() {
		t.Errorf("error quantities = %+v", insufficient)
	}
}

func TestMatcher_MatchQuantitiesSumToDisposal(t *testing.T) {
	seed := NewDate(2024, time.January, 8)
	day := NewDate(2024, time.February, 5)

	report := calculate(t,
		NewBuy(seed, "VOD", Q(30), Gbp(10), Gbp(0)),
		NewBuy(day, "VOD", Q(5), Gbp(11), Gbp(0)),
		NewSell(day, "VOD", Q(25), Gbp(12), Gbp(0)),
		NewBuy(day.Add(7), "VOD", Q(4), Gbp(11), Gbp(0)),
	)

	d := disposal(t, report, day)
	var total Quantity
	for _, m := range d.Matches {
		total = total.Add(m.Quantity)
	}
	if !total.Equal(d.Quantity) {
		t.Errorf("match quantities sum to %s, want %s", total, d.Quantity)
	}
	if len(d.Matches) != 3 {
		t.Fatalf("want same-day, bed-and-breakfast and pool matches, got %v", d.Matches)
	}
	rules := []MatchRule{d.Matches[0].Rule, d.Matches[1].Rule, d.Matches[2].Rule}
	want := []MatchRule{SameDay, BedAndBreakfast, Section104}
	for i := range want {
		if rules[i] != want[i] {
			t.Errorf("match %d rule = %s, want %s", i, rules[i], want[i])
		}
	}
}

func TestMatcher_WindowExcludesDayThirtyOne(t *testing.T) {
	seed := NewDate(2023, time.June, 1)
	sell := NewDate(2024, time.January, 15)

	report := calculate(t,
		NewBuy(seed, "VOD", Q(10), Gbp(10), Gbp(0)),
		NewSell(sell, "VOD", Q(10), Gbp(12), Gbp(0)),
		NewBuy(sell.Add(31), "VOD", Q(10), Gbp(11), Gbp(0)),
	)

	d := disposal(t, report, sell)
	if len(d.Matches) != 1 || d.Matches[0].Rule != Section104 {
		t.Fatalf("a repurchase on day 31 must not match, got %v", d.Matches)
	}
}

func TestMatcher_WindowIncludesDayThirty(t *testing.T) {
	seed := NewDate(2023, time.June, 1)
	sell := NewDate(2024, time.January, 15)

	report := calculate(t,
		NewBuy(seed, "VOD", Q(10), Gbp(10), Gbp(0)),
		NewSell(sell, "VOD", Q(10), Gbp(12), Gbp(0)),
		NewBuy(sell.Add(30), "VOD", Q(10), Gbp(11), Gbp(0)),
	)

	d := disposal(t, report, sell)
	if len(d.Matches) != 1 || d.Matches[0].Rule != BedAndBreakfast {
		t.Fatalf("a repurchase on day 30 must match, got %v", d.Matches)
	}
}

func TestMatcher_SplitBetweenSellAndRepurchase(t *testing.T) {
	seed := NewDate(2024, time.January, 2)
	sell := NewDate(2024, time.February, 1)
	split := sell.Add(5)
	rebuy := sell.Add(10)

	report := calculate(t,
		NewBuy(seed, "VOD", Q(100), Gbp(10), Gbp(0)),
		NewSell(sell, "VOD", Q(10), Gbp(12), Gbp(0)),
		NewSplit(split, "VOD", 2),
		// After the 2-for-1 split, 20 post-split shares correspond to the
		// 10 sold.
		NewBuy(rebuy, "VOD", Q(20), Gbp(5.5), Gbp(0)),
	)

	d := disposal(t, report, sell)
	if len(d.Matches) != 1 || d.Matches[0].Rule != BedAndBreakfast {
		t.Fatalf("want one bed-and-breakfast match, got %v", d.Matches)
	}
	m := d.Matches[0]
	if !m.Quantity.Equal(Q(10)) {
		t.Errorf("matched quantity = %s, want 10 sell-date shares", m.Quantity)
	}
	// 20 post-split shares at 5.50
	if want := Gbp(110); !m.AllowableCost.Equal(want) {
		t.Errorf("allowable cost = %s, want %s", m.AllowableCost, want)
	}
}

func TestMatcher_SellFeesReduceProceeds(t *testing.T) {
	buy := NewDate(2024, time.January, 10)
	sell := buy.Add(40)

	report := calculate(t,
		NewBuy(buy, "VOD", Q(100), Gbp(10), Gbp(0)),
		NewSell(sell, "VOD", Q(100), Gbp(15), Gbp(25)),
	)

	d := disposal(t, report, sell)
	if want := Gbp(1500); !d.GrossProceeds.Equal(want) {
		t.Errorf("gross proceeds = %s, want %s", d.GrossProceeds, want)
	}
	if want := Gbp(1475); !d.Proceeds.Equal(want) {
		t.Errorf("net proceeds = %s, want %s", d.Proceeds, want)
	}
	if want := Gbp(475); !d.Gain().Equal(want) {
		t.Errorf("gain = %s, want %s", d.Gain(), want)
	}
}

func TestMatcher_BuyFeesEnterCost(t *testing.T) {
	buy := NewDate(2024, time.January, 10)
	sell := buy.Add(40)

	report := calculate(t,
		NewBuy(buy, "VOD", Q(100), Gbp(10), Gbp(50)),
		NewSell(sell, "VOD", Q(100), Gbp(15), Gbp(0)),
	)

	d := disposal(t, report, sell)
	if want := Gbp(1050); !d.AllowableCost().Equal(want) {
		t.Errorf("allowable cost = %s, want %s", d.AllowableCost(), want)
	}
}

func TestMatcher_SameDayMergeOfMultipleSells(t *testing.T) {
	seed := NewDate(2024, time.January, 2)
	day := NewDate(2024, time.March, 4)

	report := calculate(t,
		NewBuy(seed, "VOD", Q(100), Gbp(10), Gbp(0)),
		NewSell(day, "VOD", Q(10), Gbp(12), Gbp(0)),
		NewSell(day, "VOD", Q(30), Gbp(16), Gbp(0)),
	)

	// Both sells merge into one disposal at the blended price.
	d := disposal(t, report, day)
	if !d.Quantity.Equal(Q(40)) {
		t.Errorf("quantity = %s, want 40", d.Quantity)
	}
	// 10*12 + 30*16 = 600
	if want := Gbp(600); !d.GrossProceeds.Equal(want) {
		t.Errorf("gross proceeds = %s, want %s", d.GrossProceeds, want)
	}
}

func TestMatcher_CapitalReturnReducesPoolCost(t *testing.T) {
	first := NewDate(2024, time.January, 8)
	second := NewDate(2024, time.February, 5)
	event := NewDate(2024, time.March, 1)
	sell := NewDate(2024, time.June, 2)

	report := calculate(t,
		NewBuy(first, "VOD", Q(50), Gbp(10), Gbp(0)),
		NewBuy(second, "VOD", Q(50), Gbp(20), Gbp(0)),
		NewCapitalReturn(event, "VOD", Q(100), Gbp(100), Gbp(0)),
		NewSell(sell, "VOD", Q(100), Gbp(18), Gbp(0)),
	)

	// Pool cost 500 + 1000 - 100 = 1400, all consumed by the sale.
	d := disposal(t, report, sell)
	if want := Gbp(1400); !d.AllowableCost().Equal(want) {
		t.Errorf("allowable cost = %s, want %s", d.AllowableCost(), want)
	}
	if want := Gbp(400); !d.Gain().Equal(want) {
		t.Errorf("gain = %s, want %s", d.Gain(), want)
	}
}

func TestMatcher_DividendRaisesPoolCost(t *testing.T) {
	buy := NewDate(2024, time.January, 8)
	event := NewDate(2024, time.March, 1)
	sell := NewDate(2024, time.June, 2)

	report := calculate(t,
		NewBuy(buy, "VOD", Q(100), Gbp(10), Gbp(0)),
		NewDividend(event, "VOD", Q(100), Gbp(40), Gbp(0)),
		NewSell(sell, "VOD", Q(100), Gbp(12), Gbp(0)),
	)

	d := disposal(t, report, sell)
	if want := Gbp(1040); !d.AllowableCost().Equal(want) {
		t.Errorf("allowable cost = %s, want %s", d.AllowableCost(), want)
	}
}

func TestMatcher_CapitalEventWithNothingHeldIsNoOp(t *testing.T) {
	event := NewDate(2024, time.March, 1)
	buy := NewDate(2024, time.April, 8)
	sell := NewDate(2024, time.June, 2)

	report := calculate(t,
		NewCapitalReturn(event, "VOD", Q(100), Gbp(100), Gbp(0)),
		NewBuy(buy, "VOD", Q(100), Gbp(10), Gbp(0)),
		NewSell(sell, "VOD", Q(100), Gbp(12), Gbp(0)),
	)

	// Nothing was held before the event, cost basis is unchanged.
	d := disposal(t, report, sell)
	if want := Gbp(1000); !d.AllowableCost().Equal(want) {
		t.Errorf("allowable cost = %s, want %s", d.AllowableCost(), want)
	}
}

func TestMatcher_DividendAfterFullPoolDisposalIsNoOp(t *testing.T) {
	buy := NewDate(2024, time.January, 10)
	sell := NewDate(2024, time.February, 10)
	event := NewDate(2024, time.February, 20)
	rebuy := NewDate(2024, time.March, 25)
	finalSell := NewDate(2024, time.May, 10)

	report := calculate(t,
		NewBuy(buy, "VOD", Q(100), Gbp(1), Gbp(0)),
		NewSell(sell, "VOD", Q(100), Gbp(1.5), Gbp(0)),
		NewDividend(event, "VOD", Q(100), Gbp(50), Gbp(0)),
		NewBuy(rebuy, "VOD", Q(10), Gbp(10), Gbp(0)),
		NewSell(finalSell, "VOD", Q(10), Gbp(12), Gbp(0)),
	)

	// The whole holding was disposed before the dividend, so the event has
	// nothing to adjust and the repurchased shares keep their own cost.
	d := disposal(t, report, finalSell)
	if want := Gbp(100); !d.AllowableCost().Equal(want) {
		t.Errorf("allowable cost = %s, want %s", d.AllowableCost(), want)
	}
	if want := Gbp(20); !d.Gain().Equal(want) {
		t.Errorf("gain = %s, want %s", d.Gain(), want)
	}
	if len(report.Holdings) != 0 {
		t.Errorf("want empty holdings, got %v", report.Holdings)
	}
}

func TestMatcher_SplitRescalesPool(t *testing.T) {
	buy := NewDate(2024, time.January, 8)
	split := NewDate(2024, time.February, 1)
	sell := NewDate(2024, time.June, 2)

	report := calculate(t,
		NewBuy(buy, "VOD", Q(100), Gbp(10), Gbp(0)),
		NewSplit(split, "VOD", 2),
		NewSell(sell, "VOD", Q(200), Gbp(6), Gbp(0)),
	)

	d := disposal(t, report, sell)
	if want := Gbp(1000); !d.AllowableCost().Equal(want) {
		t.Errorf("allowable cost = %s, want %s", d.AllowableCost(), want)
	}
	if want := Gbp(200); !d.Gain().Equal(want) {
		t.Errorf("gain = %s, want %s", d.Gain(), want)
	}
}

func TestMatcher_UnsplitRescalesPool(t *testing.T) {
	buy := NewDate(2024, time.January, 8)
	unsplit := NewDate(2024, time.February, 1)
	sell := NewDate(2024, time.June, 2)

	report := calculate(t,
		NewBuy(buy, "VOD", Q(100), Gbp(10), Gbp(0)),
		NewUnsplit(unsplit, "VOD", 10),
		NewSell(sell, "VOD", Q(10), Gbp(110), Gbp(0)),
	)

	d := disposal(t, report, sell)
	if want := Gbp(1000); !d.AllowableCost().Equal(want) {
		t.Errorf("allowable cost = %s, want %s", d.AllowableCost(), want)
	}
	if want := Gbp(100); !d.Gain().Equal(want) {
		t.Errorf("gain = %s, want %s", d.Gain(), want)
	}
}

func TestCalculate_IsDeterministic(t *testing.T) {
	transactions := []Transaction{
		NewBuy(NewDate(2024, time.January, 8), "VOD", Q(30), Gbp(10), Gbp(5)),
		NewBuy(NewDate(2024, time.February, 5), "GSK", Q(5), Gbp(11), Gbp(0)),
		NewSell(NewDate(2024, time.February, 5), "VOD", Q(25), Gbp(12), Gbp(3)),
		NewDividend(NewDate(2024, time.March, 1), "VOD", Q(5), Gbp(7), Gbp(0)),
		NewBuy(NewDate(2024, time.February, 12), "VOD", Q(4), Gbp(11), Gbp(0)),
	}

	first, err := Calculate(transactions, nil, nil)
	if err != nil {
		t.Fatalf("Calculate() error = %v", err)
	}
	second, err := Calculate(transactions, nil, nil)
	if err != nil {
		t.Fatalf("Calculate() error = %v", err)
	}

	a, err := first.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON() error = %v", err)
	}
	b, err := second.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON() error = %v", err)
	}
	if string(a) != string(b) {
		t.Errorf("two runs differ:\n%s\n%s", a, b)
	}
}
