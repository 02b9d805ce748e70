package cgt

import (
	"fmt"
	"io"
	"strconv"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/shopspring/decimal"
)

// Lexer for the ledger text format. Keywords are a dedicated token type so
// that a trailing currency code ("FEES 10 USD") is never mistaken for one.
var dslLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `#[^\n]*`},
	{Name: "Date", Pattern: `\d{4}-\d{2}-\d{2}`},
	{Name: "Keyword", Pattern: `(?i)\b(BUY|SELL|DIVIDEND|CAPRETURN|SPLIT|UNSPLIT|TOTAL|FEES|TAX|RATIO)\b`},
	{Name: "Number", Pattern: `\d+(\.\d+)?`},
	{Name: "Ident", Pattern: `[A-Za-z][A-Za-z0-9.\-]*`},
	{Name: "At", Pattern: `@`},
	{Name: "EOL", Pattern: `\n`},
	{Name: "Whitespace", Pattern: `[ \t\r]+`},
})

var dslParser = participle.MustBuild[dslFile](
	participle.Lexer(dslLexer),
	participle.Elide("Whitespace", "Comment", "EOL"),
	participle.CaseInsensitive("Keyword"),
)

type dslFile struct {
	Lines []dslLine `parser:"@@*"`
}

type dslLine struct {
	Date      string    `parser:"@Date"`
	Buy       *dslTrade `parser:"( 'BUY' @@"`
	Sell      *dslTrade `parser:"| 'SELL' @@"`
	Dividend  *dslEvent `parser:"| 'DIVIDEND' @@"`
	CapReturn *dslEvent `parser:"| 'CAPRETURN' @@"`
	Split     *dslRatio `parser:"| 'SPLIT' @@"`
	Unsplit   *dslRatio `parser:"| 'UNSPLIT' @@ )"`
}

type dslTrade struct {
	Ticker   string     `parser:"@Ident"`
	Quantity string     `parser:"@Number"`
	Price    string     `parser:"'@' @Number"`
	Currency string     `parser:"@Ident?"`
	Fees     *dslAmount `parser:"('FEES' @@)?"`
}

type dslEvent struct {
	Ticker   string     `parser:"@Ident"`
	Quantity string     `parser:"@Number"`
	Total    dslAmount  `parser:"'TOTAL' @@"`
	Tax      *dslAmount `parser:"('TAX' @@)?"`
	Fees     *dslAmount `parser:"('FEES' @@)?"`
}

type dslAmount struct {
	Value    string `parser:"@Number"`
	Currency string `parser:"@Ident?"`
}

type dslRatio struct {
	Ticker string `parser:"@Ident"`
	Ratio  string `parser:"'RATIO' @Number"`
}

// DecodeDSL reads a ledger in the text format and returns its transactions
// in file order. Syntax errors carry the line position reported by the
// parser, semantic errors (bad date, bad number) carry the line's date.
func DecodeDSL(r io.Reader) ([]Transaction, error) {
	file, err := dslParser.Parse("", r)
	if err != nil {
		return nil, fmt.Errorf("parsing ledger: %w", err)
	}
	transactions := make([]Transaction, 0, len(file.Lines))
	for _, line := range file.Lines {
		tx, err := line.transaction()
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, tx)
	}
	return transactions, nil
}

func (l dslLine) transaction() (Transaction, error) {
	day, err := ParseDate(l.Date)
	if err != nil {
		return nil, err
	}
	switch {
	case l.Buy != nil:
		qty, price, fees, err := l.Buy.parts()
		if err != nil {
			return nil, fmt.Errorf("on %s: %w", day, err)
		}
		return NewBuy(day, l.Buy.Ticker, qty, price, fees), nil
	case l.Sell != nil:
		qty, price, fees, err := l.Sell.parts()
		if err != nil {
			return nil, fmt.Errorf("on %s: %w", day, err)
		}
		return NewSell(day, l.Sell.Ticker, qty, price, fees), nil
	case l.Dividend != nil:
		qty, total, tax, err := l.Dividend.parts(l.Dividend.Tax)
		if err != nil {
			return nil, fmt.Errorf("on %s: %w", day, err)
		}
		return NewDividend(day, l.Dividend.Ticker, qty, total, tax), nil
	case l.CapReturn != nil:
		qty, total, fees, err := l.CapReturn.parts(l.CapReturn.Fees)
		if err != nil {
			return nil, fmt.Errorf("on %s: %w", day, err)
		}
		return NewCapitalReturn(day, l.CapReturn.Ticker, qty, total, fees), nil
	case l.Split != nil:
		ratio, err := strconv.ParseInt(l.Split.Ratio, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("on %s: invalid ratio %q", day, l.Split.Ratio)
		}
		return NewSplit(day, l.Split.Ticker, ratio), nil
	case l.Unsplit != nil:
		ratio, err := strconv.ParseInt(l.Unsplit.Ratio, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("on %s: invalid ratio %q", day, l.Unsplit.Ratio)
		}
		return NewUnsplit(day, l.Unsplit.Ticker, ratio), nil
	}
	return nil, fmt.Errorf("on %s: empty transaction line", day)
}

func (t *dslTrade) parts() (qty Quantity, price, fees Money, err error) {
	qty, err = parseQuantity(t.Quantity)
	if err != nil {
		return
	}
	price, err = parseMoney(t.Price, t.Currency)
	if err != nil {
		return
	}
	fees, err = parseAmount(t.Fees)
	return
}

func (t *dslEvent) parts(extra *dslAmount) (qty Quantity, total, other Money, err error) {
	qty, err = parseQuantity(t.Quantity)
	if err != nil {
		return
	}
	total, err = parseMoney(t.Total.Value, t.Total.Currency)
	if err != nil {
		return
	}
	other, err = parseAmount(extra)
	return
}

func parseQuantity(s string) (Quantity, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Quantity{}, fmt.Errorf("invalid quantity %q", s)
	}
	return Q(d), nil
}

func parseMoney(value, currency string) (Money, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount %q", value)
	}
	if currency == "" {
		currency = GBP
	}
	if err := ValidateCurrency(currency); err != nil {
		return Money{}, err
	}
	return M(d, currency), nil
}

func parseAmount(a *dslAmount) (Money, error) {
	if a == nil {
		return Gbp(0), nil
	}
	return parseMoney(a.Value, a.Currency)
}
