package cgt

import (
	"github.com/velikodniy/cgt-tool-sub001/fx"
)

// ToGBP returns a copy of the transactions with every money field converted
// to GBP at the monthly reference rate of the transaction's date. The input
// is never mutated. A missing rate aborts the conversion with the fx
// package's typed error.
func ToGBP(transactions []Transaction, cache *fx.Cache) ([]Transaction, error) {
	out := make([]Transaction, 0, len(transactions))
	for _, tx := range transactions {
		converted, err := convertTransaction(tx, cache)
		if err != nil {
			return nil, err
		}
		out = append(out, converted)
	}
	return out, nil
}

func convertTransaction(tx Transaction, cache *fx.Cache) (Transaction, error) {
	switch t := tx.(type) {
	case Buy:
		price, err := convertMoney(t.Price, t.When(), cache)
		if err != nil {
			return nil, err
		}
		fees, err := convertMoney(t.Fees, t.When(), cache)
		if err != nil {
			return nil, err
		}
		t.Price, t.Fees = price, fees
		return t, nil
	case Sell:
		price, err := convertMoney(t.Price, t.When(), cache)
		if err != nil {
			return nil, err
		}
		fees, err := convertMoney(t.Fees, t.When(), cache)
		if err != nil {
			return nil, err
		}
		t.Price, t.Fees = price, fees
		return t, nil
	case Dividend:
		total, err := convertMoney(t.Total, t.When(), cache)
		if err != nil {
			return nil, err
		}
		tax, err := convertMoney(t.Tax, t.When(), cache)
		if err != nil {
			return nil, err
		}
		t.Total, t.Tax = total, tax
		return t, nil
	case CapitalReturn:
		total, err := convertMoney(t.Total, t.When(), cache)
		if err != nil {
			return nil, err
		}
		fees, err := convertMoney(t.Fees, t.When(), cache)
		if err != nil {
			return nil, err
		}
		t.Total, t.Fees = total, fees
		return t, nil
	default:
		return tx, nil
	}
}

func convertMoney(m Money, on Date, cache *fx.Cache) (Money, error) {
	if m.Currency() == "" || m.Currency() == GBP {
		return M(m.value, GBP), nil
	}
	converted, err := cache.ToGBP(m.value, m.Currency(), on.Year(), on.Month())
	if err != nil {
		return Money{}, err
	}
	return M(converted, GBP), nil
}
