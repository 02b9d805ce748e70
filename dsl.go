package cgt

import (
	"fmt"
	"io"
	"strings"
)

// The ledger text format is one transaction per line, date first:
//
//	2024-01-15 BUY VOD 100 @ 1.5 FEES 10
//	2024-02-20 SELL VOD 50 @ 1.8 USD FEES 5 USD
//	2024-03-01 DIVIDEND VOD 100 TOTAL 25 TAX 2.5
//	2024-03-10 CAPRETURN VOD 100 TOTAL 50 FEES 1
//	2024-04-01 SPLIT VOD RATIO 2
//	2024-05-01 UNSPLIT VOD RATIO 10
//
// Blank lines and '#' comments are ignored. A missing currency means GBP.

// EncodeDSL writes the transactions in the ledger text format, one per line,
// in chronological order. Zero fees and tax are omitted, and so is the GBP
// currency.
func EncodeDSL(w io.Writer, transactions []Transaction) error {
	for _, tx := range SortTransactions(transactions) {
		if _, err := fmt.Fprintln(w, FormatDSL(tx)); err != nil {
			return err
		}
	}
	return nil
}

// FormatDSL returns the single-line text form of a transaction.
func FormatDSL(tx Transaction) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s %s", tx.When(), strings.ToUpper(string(tx.What())), tx.Ticker())
	switch t := tx.(type) {
	case Buy:
		fmt.Fprintf(&b, " %s @ %s", t.Quantity, dslMoney(t.Price))
		dslOptional(&b, "FEES", t.Fees)
	case Sell:
		fmt.Fprintf(&b, " %s @ %s", t.Quantity, dslMoney(t.Price))
		dslOptional(&b, "FEES", t.Fees)
	case Dividend:
		fmt.Fprintf(&b, " %s TOTAL %s", t.Quantity, dslMoney(t.Total))
		dslOptional(&b, "TAX", t.Tax)
	case CapitalReturn:
		fmt.Fprintf(&b, " %s TOTAL %s", t.Quantity, dslMoney(t.Total))
		dslOptional(&b, "FEES", t.Fees)
	case Split:
		fmt.Fprintf(&b, " RATIO %d", t.Ratio)
	case Unsplit:
		fmt.Fprintf(&b, " RATIO %d", t.Ratio)
	}
	return b.String()
}

func dslMoney(m Money) string {
	if m.cur == "" || m.cur == GBP {
		return m.value.String()
	}
	return m.value.String() + " " + m.cur
}

func dslOptional(b *strings.Builder, keyword string, m Money) {
	if m.IsZero() {
		return
	}
	fmt.Fprintf(b, " %s %s", keyword, dslMoney(m))
}
