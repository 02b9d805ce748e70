package renderer

import (
	"fmt"
	"strings"

	cgt "github.com/velikodniy/cgt-tool-sub001"
)

// Transaction renders a transaction to a one-line string.
func Transaction(tx cgt.Transaction) string {
	switch v := tx.(type) {
	case cgt.Buy:
		return fmt.Sprintf("%s Bought %s %s at %s", v.When(), v.Quantity, v.Ticker(), v.Price)
	case cgt.Sell:
		return fmt.Sprintf("%s Sold %s %s at %s", v.When(), v.Quantity, v.Ticker(), v.Price)
	case cgt.Dividend:
		return fmt.Sprintf("%s Dividend of %s on %s %s", v.When(), v.Total, v.Quantity, v.Ticker())
	case cgt.CapitalReturn:
		return fmt.Sprintf("%s Capital return of %s on %s %s", v.When(), v.Total, v.Quantity, v.Ticker())
	case cgt.Split:
		return fmt.Sprintf("%s Split %s %d-for-1", v.When(), v.Ticker(), v.Ratio)
	case cgt.Unsplit:
		return fmt.Sprintf("%s Consolidated %s 1-for-%d", v.When(), v.Ticker(), v.Ratio)
	default:
		return fmt.Sprintf("%s %s %s", tx.When(), tx.What(), tx.Ticker())
	}
}

// TransactionsMarkdown renders the transactions as a markdown list.
func TransactionsMarkdown(transactions []cgt.Transaction) string {
	var b strings.Builder
	fmt.Fprint(&b, "## Transactions\n\n")
	if len(transactions) == 0 {
		fmt.Fprint(&b, "None.\n")
		return b.String()
	}
	for _, tx := range transactions {
		fmt.Fprintf(&b, "- %s\n", Transaction(tx))
	}
	return b.String()
}

// AssetEventsMarkdown renders the corporate actions, the transactions that
// changed a holding's cost or share count without a trade, as a markdown list.
func AssetEventsMarkdown(transactions []cgt.Transaction) string {
	var b strings.Builder
	fmt.Fprint(&b, "## Asset Events\n\n")
	events := 0
	for _, tx := range transactions {
		switch tx.(type) {
		case cgt.Dividend, cgt.CapitalReturn, cgt.Split, cgt.Unsplit:
			fmt.Fprintf(&b, "- %s\n", Transaction(tx))
			events++
		}
	}
	if events == 0 {
		fmt.Fprint(&b, "None.\n")
	}
	return b.String()
}
