// Package converter imports broker activity exports and turns them into
// ledger transactions.
package converter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	cgt "github.com/velikodniy/cgt-tool-sub001"
)

// Schwab CSV exports use "MM/DD/YYYY" dates and dollar amounts prefixed
// with "$". Actions not tied to a security position are skipped.
const schwabDateFormat = "01/02/2006"

// Schwab parses a Charles Schwab transaction history export. Rows whose
// action has no ledger equivalent (cash movements, interest) are skipped.
// Every parsed amount keeps its USD currency, conversion to pounds is a
// separate step.
func Schwab(r io.Reader) ([]cgt.Transaction, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	col, err := schwabColumns(header)
	if err != nil {
		return nil, err
	}

	var transactions []cgt.Transaction
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		tx, err := schwabTransaction(record, col)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if tx != nil {
			transactions = append(transactions, tx)
		}
	}
	return transactions, nil
}

type schwabLayout struct {
	date, action, symbol, quantity, price, fees, amount int
}

func schwabColumns(header []string) (schwabLayout, error) {
	layout := schwabLayout{date: -1, action: -1, symbol: -1, quantity: -1, price: -1, fees: -1, amount: -1}
	for i, name := range header {
		switch strings.TrimSpace(name) {
		case "Date":
			layout.date = i
		case "Action":
			layout.action = i
		case "Symbol":
			layout.symbol = i
		case "Quantity":
			layout.quantity = i
		case "Price":
			layout.price = i
		case "Fees & Comm":
			layout.fees = i
		case "Amount":
			layout.amount = i
		}
	}
	if layout.date < 0 || layout.action < 0 || layout.symbol < 0 {
		return layout, fmt.Errorf("unrecognised header: %v", header)
	}
	return layout, nil
}

func schwabTransaction(record []string, col schwabLayout) (cgt.Transaction, error) {
	field := func(i int) string {
		if i < 0 || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	day, err := schwabDate(field(col.date))
	if err != nil {
		return nil, err
	}
	ticker := field(col.symbol)
	action := field(col.action)

	switch action {
	case "Buy", "Reinvest Shares":
		qty, err := schwabQuantity(field(col.quantity))
		if err != nil {
			return nil, err
		}
		price, err := schwabMoney(field(col.price))
		if err != nil {
			return nil, err
		}
		fees, err := schwabMoney(field(col.fees))
		if err != nil {
			return nil, err
		}
		return cgt.NewBuy(day, ticker, qty, price, fees), nil
	case "Sell":
		qty, err := schwabQuantity(field(col.quantity))
		if err != nil {
			return nil, err
		}
		price, err := schwabMoney(field(col.price))
		if err != nil {
			return nil, err
		}
		fees, err := schwabMoney(field(col.fees))
		if err != nil {
			return nil, err
		}
		return cgt.NewSell(day, ticker, qty, price, fees), nil
	case "Cash Dividend", "Qualified Dividend", "Non-Qualified Div":
		qty, err := schwabQuantity(field(col.quantity))
		if err != nil {
			return nil, err
		}
		total, err := schwabMoney(field(col.amount))
		if err != nil {
			return nil, err
		}
		return cgt.NewDividend(day, ticker, qty, total, cgt.M(0, "USD")), nil
	case "Return of Capital":
		qty, err := schwabQuantity(field(col.quantity))
		if err != nil {
			return nil, err
		}
		total, err := schwabMoney(field(col.amount))
		if err != nil {
			return nil, err
		}
		return cgt.NewCapitalReturn(day, ticker, qty, total, cgt.M(0, "USD")), nil
	default:
		// cash movements, interest, journal entries
		return nil, nil
	}
}

func schwabDate(s string) (cgt.Date, error) {
	// "as of" rows carry two dates, the first is the effective one
	if i := strings.Index(s, " as of "); i >= 0 {
		s = s[:i]
	}
	t, err := time.Parse(schwabDateFormat, s)
	if err != nil {
		return cgt.Date{}, fmt.Errorf("invalid date %q", s)
	}
	return cgt.NewDate(t.Year(), t.Month(), t.Day()), nil
}

func schwabQuantity(s string) (cgt.Quantity, error) {
	if s == "" {
		return cgt.Quantity{}, fmt.Errorf("missing quantity")
	}
	s = strings.ReplaceAll(s, ",", "")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return cgt.Quantity{}, fmt.Errorf("invalid quantity %q", s)
	}
	return cgt.Q(d.Abs()), nil
}

func schwabMoney(s string) (cgt.Money, error) {
	if s == "" {
		return cgt.M(0, "USD"), nil
	}
	// negative amounts come as "-$1,234.56"
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return cgt.Money{}, fmt.Errorf("invalid amount %q", s)
	}
	return cgt.M(d.Abs(), "USD"), nil
}
