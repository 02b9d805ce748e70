package cgt

import "fmt"

// Issue is one validation finding, tied to the transaction that raised it.
type Issue struct {
	Date    Date
	Ticker  string
	Message string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s %s: %s", i.Date, i.Ticker, i.Message)
}

// ValidationResult separates findings that make a calculation impossible from
// findings that are merely suspicious.
type ValidationResult struct {
	Errors   []Issue
	Warnings []Issue
}

// IsValid reports whether the transactions can be calculated.
func (r ValidationResult) IsValid() bool { return len(r.Errors) == 0 }

// Validate lints a transaction stream before calculation. Field-level
// problems (non-positive quantities or prices, negative fees, unknown
// currencies, degenerate ratios) are errors; a sell dated before the
// instrument's first buy is a warning, the calculation itself rejects it
// precisely.
func Validate(transactions []Transaction) ValidationResult {
	var result ValidationResult

	firstBuy := make(map[string]Date)
	for _, tx := range SortTransactions(transactions) {
		if buy, ok := tx.(Buy); ok {
			if _, seen := firstBuy[buy.Ticker()]; !seen {
				firstBuy[buy.Ticker()] = buy.When()
			}
		}
	}

	for _, tx := range transactions {
		if err := tx.Validate(); err != nil {
			result.Errors = append(result.Errors, Issue{Date: tx.When(), Ticker: tx.Ticker(), Message: err.Error()})
			continue
		}
		if sell, ok := tx.(Sell); ok {
			first, seen := firstBuy[sell.Ticker()]
			if !seen || sell.When().Before(first) {
				result.Warnings = append(result.Warnings, Issue{
					Date:    sell.When(),
					Ticker:  sell.Ticker(),
					Message: "sell predates the first buy of this instrument",
				})
			}
		}
	}
	return result
}
