package cgt

import (
	"errors"
	"fmt"
	"strings"
)

// CommandType is a typed string for identifying transaction commands.
type CommandType string

// Command types used for identifying transactions.
const (
	CmdBuy           CommandType = "buy"
	CmdSell          CommandType = "sell"
	CmdDividend      CommandType = "dividend"
	CmdCapitalReturn CommandType = "capreturn"
	CmdSplit         CommandType = "split"
	CmdUnsplit       CommandType = "unsplit"
)

// Transaction defines the common interface for all recorded events on a holding,
// trades as well as capital events.
type Transaction interface {
	What() CommandType // What returns the command type of the transaction (e.g., "buy", "sell").
	When() Date        // When returns the date on which the transaction occurred.
	Ticker() string    // Ticker returns the instrument the transaction applies to.
	Equal(Transaction) bool
	Validate() error
}

// secCmd is the component shared by all transactions: a command type, a date
// and the instrument ticker.
type secCmd struct {
	Command  CommandType `json:"command"`
	Date     Date        `json:"date"`
	Security string      `json:"ticker"`
}

func (t secCmd) What() CommandType { return t.Command }
func (t secCmd) When() Date        { return t.Date }
func (t secCmd) Ticker() string    { return t.Security }

// MarshalJSON implements the json.Marshaler interface for secCmd.
func (t secCmd) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("command", t.Command)
	w.Append("date", t.Date)
	w.Append("ticker", t.Security)
	return w.MarshalJSON()
}

func (t secCmd) validate() error {
	if t.Security == "" {
		return errors.New("ticker is missing")
	}
	if t.Date.IsZero() {
		return errors.New("date is missing")
	}
	return nil
}

func newSecCmd(cmd CommandType, day Date, ticker string) secCmd {
	return secCmd{Command: cmd, Date: day, Security: strings.ToUpper(ticker)}
}

// Buy represents a purchase of a quantity of an instrument at a unit price,
// with optional transaction fees.
type Buy struct {
	secCmd
	Quantity Quantity // number of shares or units bought.
	Price    Money    // price paid per share.
	Fees     Money    // total fees for the trade.
}

// NewBuy creates a new Buy transaction.
func NewBuy(day Date, ticker string, quantity Quantity, price, fees Money) Buy {
	return Buy{secCmd: newSecCmd(CmdBuy, day, ticker), Quantity: quantity, Price: price, Fees: fees}
}

// Cost returns the total acquisition cost of the trade, fees included.
func (t Buy) Cost() Money { return t.Price.Mul(t.Quantity).Add(t.Fees) }

func (t Buy) Equal(other Transaction) bool {
	o, ok := other.(Buy)
	return ok && t.secCmd == o.secCmd && t.Quantity.Equal(o.Quantity) &&
		t.Price.Equal(o.Price) && t.Fees.Equal(o.Fees)
}

// Validate checks the Buy transaction's fields.
func (t Buy) Validate() error {
	if err := t.secCmd.validate(); err != nil {
		return err
	}
	return validateTrade(t.Quantity, t.Price, t.Fees)
}

// MarshalJSON implements the json.Marshaler interface for Buy.
func (t Buy) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.EmbedFrom(t.secCmd)
	w.Append("quantity", t.Quantity)
	w.Append("price", t.Price.exact())
	appendOptionalMoney(&w, "fees", t.Fees)
	appendCurrency(&w, t.Price.Currency())
	return w.MarshalJSON()
}

// Sell represents a disposal of a quantity of an instrument at a unit price,
// with optional transaction fees.
type Sell struct {
	secCmd
	Quantity Quantity // number of shares or units sold.
	Price    Money    // price received per share.
	Fees     Money    // total fees for the trade.
}

// NewSell creates a new Sell transaction.
func NewSell(day Date, ticker string, quantity Quantity, price, fees Money) Sell {
	return Sell{secCmd: newSecCmd(CmdSell, day, ticker), Quantity: quantity, Price: price, Fees: fees}
}

// Proceeds returns the gross proceeds of the trade, before fees.
func (t Sell) Proceeds() Money { return t.Price.Mul(t.Quantity) }

func (t Sell) Equal(other Transaction) bool {
	o, ok := other.(Sell)
	return ok && t.secCmd == o.secCmd && t.Quantity.Equal(o.Quantity) &&
		t.Price.Equal(o.Price) && t.Fees.Equal(o.Fees)
}

// Validate checks the Sell transaction's fields.
func (t Sell) Validate() error {
	if err := t.secCmd.validate(); err != nil {
		return err
	}
	return validateTrade(t.Quantity, t.Price, t.Fees)
}

// MarshalJSON implements the json.Marshaler interface for Sell.
func (t Sell) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.EmbedFrom(t.secCmd)
	w.Append("quantity", t.Quantity)
	w.Append("price", t.Price.exact())
	appendOptionalMoney(&w, "fees", t.Fees)
	appendCurrency(&w, t.Price.Currency())
	return w.MarshalJSON()
}

// Dividend represents a notional distribution (an accumulation dividend) that
// raises the cost of the shares held on the ex-date by its total value. The
// tax field records withholding already paid and does not change the amount
// added.
type Dividend struct {
	secCmd
	Quantity Quantity // number of shares the distribution applies to.
	Total    Money    // total value of the distribution.
	Tax      Money    // tax already paid on the distribution.
}

// NewDividend creates a new Dividend transaction.
func NewDividend(day Date, ticker string, quantity Quantity, total, tax Money) Dividend {
	return Dividend{secCmd: newSecCmd(CmdDividend, day, ticker), Quantity: quantity, Total: total, Tax: tax}
}

func (t Dividend) Equal(other Transaction) bool {
	o, ok := other.(Dividend)
	return ok && t.secCmd == o.secCmd && t.Quantity.Equal(o.Quantity) &&
		t.Total.Equal(o.Total) && t.Tax.Equal(o.Tax)
}

// Validate checks the Dividend transaction's fields.
func (t Dividend) Validate() error {
	if err := t.secCmd.validate(); err != nil {
		return err
	}
	if !t.Quantity.IsPositive() {
		return fmt.Errorf("dividend quantity must be positive, got %s", t.Quantity)
	}
	if !t.Total.IsPositive() {
		return fmt.Errorf("dividend total must be positive, got %s", t.Total)
	}
	if t.Tax.IsNegative() {
		return fmt.Errorf("dividend tax cannot be negative, got %s", t.Tax)
	}
	return validateTxCurrencies(t.Total, t.Tax)
}

// MarshalJSON implements the json.Marshaler interface for Dividend.
func (t Dividend) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.EmbedFrom(t.secCmd)
	w.Append("quantity", t.Quantity)
	w.Append("total", t.Total.exact())
	appendOptionalMoney(&w, "tax", t.Tax)
	appendCurrency(&w, t.Total.Currency())
	return w.MarshalJSON()
}

// CapitalReturn represents a return of capital that lowers the cost of the
// shares held on the ex-date.
type CapitalReturn struct {
	secCmd
	Quantity Quantity // number of shares the return applies to.
	Total    Money    // total value returned.
	Fees     Money    // fees charged on the event.
}

// NewCapitalReturn creates a new CapitalReturn transaction.
func NewCapitalReturn(day Date, ticker string, quantity Quantity, total, fees Money) CapitalReturn {
	return CapitalReturn{secCmd: newSecCmd(CmdCapitalReturn, day, ticker), Quantity: quantity, Total: total, Fees: fees}
}

func (t CapitalReturn) Equal(other Transaction) bool {
	o, ok := other.(CapitalReturn)
	return ok && t.secCmd == o.secCmd && t.Quantity.Equal(o.Quantity) &&
		t.Total.Equal(o.Total) && t.Fees.Equal(o.Fees)
}

// Validate checks the CapitalReturn transaction's fields.
func (t CapitalReturn) Validate() error {
	if err := t.secCmd.validate(); err != nil {
		return err
	}
	if !t.Quantity.IsPositive() {
		return fmt.Errorf("capital return quantity must be positive, got %s", t.Quantity)
	}
	if !t.Total.IsPositive() {
		return fmt.Errorf("capital return total must be positive, got %s", t.Total)
	}
	if t.Fees.IsNegative() {
		return fmt.Errorf("capital return fees cannot be negative, got %s", t.Fees)
	}
	return validateTxCurrencies(t.Total, t.Fees)
}

// MarshalJSON implements the json.Marshaler interface for CapitalReturn.
func (t CapitalReturn) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.EmbedFrom(t.secCmd)
	w.Append("quantity", t.Quantity)
	w.Append("total", t.Total.exact())
	appendOptionalMoney(&w, "fees", t.Fees)
	appendCurrency(&w, t.Total.Currency())
	return w.MarshalJSON()
}

// Split represents a forward share split: each share becomes Ratio shares.
type Split struct {
	secCmd
	Ratio int64 `json:"ratio"`
}

// NewSplit creates a new Split transaction.
func NewSplit(day Date, ticker string, ratio int64) Split {
	return Split{secCmd: newSecCmd(CmdSplit, day, ticker), Ratio: ratio}
}

func (t Split) Equal(other Transaction) bool {
	o, ok := other.(Split)
	return ok && t.secCmd == o.secCmd && t.Ratio == o.Ratio
}

// Validate checks the Split transaction's fields.
func (t Split) Validate() error {
	if err := t.secCmd.validate(); err != nil {
		return err
	}
	return validateRatio(t.Ratio)
}

// MarshalJSON implements the json.Marshaler interface for Split.
func (t Split) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.EmbedFrom(t.secCmd)
	w.Append("ratio", t.Ratio)
	return w.MarshalJSON()
}

// Unsplit represents a reverse share split: Ratio shares become one share.
type Unsplit struct {
	secCmd
	Ratio int64 `json:"ratio"`
}

// NewUnsplit creates a new Unsplit transaction.
func NewUnsplit(day Date, ticker string, ratio int64) Unsplit {
	return Unsplit{secCmd: newSecCmd(CmdUnsplit, day, ticker), Ratio: ratio}
}

func (t Unsplit) Equal(other Transaction) bool {
	o, ok := other.(Unsplit)
	return ok && t.secCmd == o.secCmd && t.Ratio == o.Ratio
}

// Validate checks the Unsplit transaction's fields.
func (t Unsplit) Validate() error {
	if err := t.secCmd.validate(); err != nil {
		return err
	}
	return validateRatio(t.Ratio)
}

// MarshalJSON implements the json.Marshaler interface for Unsplit.
func (t Unsplit) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.EmbedFrom(t.secCmd)
	w.Append("ratio", t.Ratio)
	return w.MarshalJSON()
}

func validateTrade(quantity Quantity, price, fees Money) error {
	if !quantity.IsPositive() {
		return fmt.Errorf("quantity must be positive, got %s", quantity)
	}
	if !price.IsPositive() {
		return fmt.Errorf("price must be positive, got %s", price)
	}
	if fees.IsNegative() {
		return fmt.Errorf("fees cannot be negative, got %s", fees)
	}
	return validateTxCurrencies(price, fees)
}

// validateTxCurrencies checks that a transaction's two money fields carry the
// same, known currency. An empty currency means GBP.
func validateTxCurrencies(amount, extra Money) error {
	cur := amount.Currency()
	if cur == "" {
		cur = GBP
	}
	if err := ValidateCurrency(cur); err != nil {
		return err
	}
	if c := extra.Currency(); c != "" && c != cur && !extra.IsZero() {
		return fmt.Errorf("mixed currencies %s and %s in one transaction", cur, c)
	}
	return nil
}

func validateRatio(ratio int64) error {
	if ratio < 2 {
		return fmt.Errorf("ratio must be at least 2, got %d", ratio)
	}
	return nil
}

// appendOptionalMoney writes a money field in full precision, omitted when zero.
func appendOptionalMoney(w *jsonObjectWriter, key string, m Money) {
	if !m.IsZero() {
		w.Append(key, m.exact())
	}
}

// appendCurrency writes the currency field, omitted for the base currency.
func appendCurrency(w *jsonObjectWriter, cur string) {
	if cur != "" && cur != GBP {
		w.Append("currency", cur)
	}
}
