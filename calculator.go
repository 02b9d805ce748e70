package cgt

import (
	"fmt"
	"sort"
)

// Calculate runs the share matching rules over the transactions and
// aggregates the matches into a tax report.
//
// Transactions must already be expressed in GBP (see ToGBP). A nil exemptions
// table uses the built-in one. A non-nil year restricts the report to that
// tax year's summary; matching still covers the whole stream, so pools and
// carried state stay correct.
func Calculate(transactions []Transaction, year *TaxYear, exemptions Exemptions) (*TaxReport, error) {
	if exemptions == nil {
		exemptions = DefaultExemptions()
	}
	for _, tx := range transactions {
		if err := tx.Validate(); err != nil {
			return nil, fmt.Errorf("invalid %s of %s on %s: %w", tx.What(), tx.Ticker(), tx.When(), err)
		}
		if _, err := TaxYearOf(tx.When()); err != nil {
			return nil, err
		}
		if cur := transactionCurrency(tx); cur != "" && cur != GBP {
			return nil, fmt.Errorf("transaction of %s on %s is in %s, convert to GBP first", tx.Ticker(), tx.When(), cur)
		}
	}

	merged := mergeSameDay(SortTransactions(transactions))
	m := newMatcher()
	if err := m.run(merged); err != nil {
		return nil, err
	}

	byYear := make(map[TaxYear][]Disposal)
	for _, d := range m.disposals {
		if year != nil && !year.Contains(d.Date) {
			continue
		}
		ty, err := TaxYearOf(d.Date)
		if err != nil {
			return nil, err
		}
		byYear[ty] = append(byYear[ty], d)
	}

	years := make([]TaxYear, 0, len(byYear))
	for ty := range byYear {
		years = append(years, ty)
	}
	sort.Slice(years, func(i, j int) bool { return years[i] < years[j] })

	report := &TaxReport{Holdings: m.holdings()}
	for _, ty := range years {
		summary, err := summarize(ty, byYear[ty], exemptions)
		if err != nil {
			return nil, err
		}
		report.Years = append(report.Years, summary)
	}
	return report, nil
}

// summarize nets each disposal into exactly one of the year's gain or loss
// totals and applies the annual exempt amount.
func summarize(ty TaxYear, disposals []Disposal, exemptions Exemptions) (TaxYearSummary, error) {
	var gain, loss Money
	for _, d := range disposals {
		net := d.Gain()
		if net.IsNegative() {
			loss = loss.Add(net.Neg())
		} else {
			gain = gain.Add(net)
		}
	}
	exemption, err := exemptions.For(ty)
	if err != nil {
		return TaxYearSummary{}, err
	}
	net := gain.Sub(loss)
	taxable := net.Sub(exemption)
	if taxable.IsNegative() {
		taxable = Gbp(0)
	}
	return TaxYearSummary{
		Period:      ty,
		Disposals:   disposals,
		TotalGain:   gain,
		TotalLoss:   loss,
		NetGain:     net,
		Exemption:   exemption,
		TaxableGain: taxable,
	}, nil
}

// transactionCurrency returns the currency a transaction's money fields are
// expressed in, or "" for transactions without money fields.
func transactionCurrency(tx Transaction) string {
	switch t := tx.(type) {
	case Buy:
		return t.Price.Currency()
	case Sell:
		return t.Price.Currency()
	case Dividend:
		return t.Total.Currency()
	case CapitalReturn:
		return t.Total.Currency()
	}
	return ""
}
