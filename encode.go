package cgt

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// tradeCmd is a specialized struct to decode buy and sell lines.
type tradeCmd struct {
	secCmd
	Quantity Quantity        `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Fees     decimal.Decimal `json:"fees"`
	Currency string          `json:"currency"`
}

func (c tradeCmd) money(v decimal.Decimal) Money {
	if c.Currency == "" {
		return M(v, GBP)
	}
	return M(v, c.Currency)
}

// eventCmd is a specialized struct to decode dividend and capital return lines.
type eventCmd struct {
	secCmd
	Quantity Quantity        `json:"quantity"`
	Total    decimal.Decimal `json:"total"`
	Tax      decimal.Decimal `json:"tax"`
	Fees     decimal.Decimal `json:"fees"`
	Currency string          `json:"currency"`
}

func (c eventCmd) money(v decimal.Decimal) Money {
	if c.Currency == "" {
		return M(v, GBP)
	}
	return M(v, c.Currency)
}

// ratioCmd is a specialized struct to decode split and unsplit lines.
type ratioCmd struct {
	secCmd
	Ratio int64 `json:"ratio"`
}

// DecodeTransactions reads a stream of JSONL data from an io.Reader, decodes
// each line into the appropriate transaction struct, and returns the
// transactions in input order.
func DecodeTransactions(r io.Reader) ([]Transaction, error) {
	var transactions []Transaction
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		lineBytes := scanner.Bytes()
		if len(lineBytes) == 0 {
			continue // Skip empty lines
		}

		var identifier struct {
			Command CommandType `json:"command"`
		}
		if err := json.Unmarshal(lineBytes, &identifier); err != nil {
			return nil, fmt.Errorf("could not identify command in line %q: %w", string(lineBytes), err)
		}

		var decodedTx Transaction

		switch identifier.Command {
		case CmdBuy, CmdSell:
			var temp tradeCmd
			if err := json.Unmarshal(lineBytes, &temp); err != nil {
				return nil, err
			}
			if identifier.Command == CmdBuy {
				decodedTx = Buy{secCmd: temp.secCmd, Quantity: temp.Quantity, Price: temp.money(temp.Price), Fees: temp.money(temp.Fees)}
			} else {
				decodedTx = Sell{secCmd: temp.secCmd, Quantity: temp.Quantity, Price: temp.money(temp.Price), Fees: temp.money(temp.Fees)}
			}
		case CmdDividend:
			var temp eventCmd
			if err := json.Unmarshal(lineBytes, &temp); err != nil {
				return nil, err
			}
			decodedTx = Dividend{secCmd: temp.secCmd, Quantity: temp.Quantity, Total: temp.money(temp.Total), Tax: temp.money(temp.Tax)}
		case CmdCapitalReturn:
			var temp eventCmd
			if err := json.Unmarshal(lineBytes, &temp); err != nil {
				return nil, err
			}
			decodedTx = CapitalReturn{secCmd: temp.secCmd, Quantity: temp.Quantity, Total: temp.money(temp.Total), Fees: temp.money(temp.Fees)}
		case CmdSplit:
			var temp ratioCmd
			if err := json.Unmarshal(lineBytes, &temp); err != nil {
				return nil, err
			}
			decodedTx = Split{secCmd: temp.secCmd, Ratio: temp.Ratio}
		case CmdUnsplit:
			var temp ratioCmd
			if err := json.Unmarshal(lineBytes, &temp); err != nil {
				return nil, err
			}
			decodedTx = Unsplit{secCmd: temp.secCmd, Ratio: temp.Ratio}
		default:
			return nil, fmt.Errorf("unknown transaction command: %q", identifier.Command)
		}

		transactions = append(transactions, decodedTx)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading from input: %w", err)
	}

	return transactions, nil
}

// EncodeTransaction marshals a single transaction to JSON and writes it to the
// writer, followed by a newline, in JSONL format.
func EncodeTransaction(w io.Writer, tx Transaction) error {
	data, err := json.Marshal(tx)
	if err != nil {
		return fmt.Errorf("failed to marshal transaction: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write transaction: %w", err)
	}
	return nil
}

// EncodeTransactions reorders transactions chronologically and persists them
// to an io.Writer in JSONL format. The sort is stable, transactions on the
// same day keep their relative order.
func EncodeTransactions(w io.Writer, transactions []Transaction) error {
	sorted := SortTransactions(transactions)
	for _, tx := range sorted {
		if err := EncodeTransaction(w, tx); err != nil {
			return err
		}
	}
	return nil
}
