package converter

import (
	"strings"
	"testing"
	"time"

	cgt "github.com/velikodniy/cgt-tool-sub001"
)

const schwabSample = `"Date","Action","Symbol","Description","Quantity","Price","Fees & Comm","Amount"
"06/20/2024","Sell","AAPL","APPLE INC","25","$210.50","$0.25","$5,262.25"
"06/15/2024","Cash Dividend","AAPL","APPLE INC","100","","","$24.00"
"06/10/2024","Wire Funds","","WIRED FUNDS RECEIVED","","","","$10,000.00"
"06/03/2024 as of 05/31/2024","Return of Capital","MSFT","MICROSOFT CORP","40","","","$18.40"
"01/15/2024","Buy","AAPL","APPLE INC","1,000","$185.00","$4.95","-$185,004.95"
`

func TestSchwab(t *testing.T) {
	transactions, err := Schwab(strings.NewReader(schwabSample))
	if err != nil {
		t.Fatalf("Schwab() error = %v", err)
	}
	if len(transactions) != 4 {
		t.Fatalf("got %d transactions, want 4 (cash movements skipped)", len(transactions))
	}

	sell, ok := transactions[0].(cgt.Sell)
	if !ok {
		t.Fatalf("transactions[0] = %T, want Sell", transactions[0])
	}
	if sell.Ticker() != "AAPL" || !sell.Quantity.Equal(cgt.Q(25)) {
		t.Errorf("sell = %+v", sell)
	}
	if want := cgt.M(210.50, "USD"); !sell.Price.Equal(want) {
		t.Errorf("sell price = %s, want %s", sell.Price, want)
	}
	if want := cgt.M(0.25, "USD"); !sell.Fees.Equal(want) {
		t.Errorf("sell fees = %s, want %s", sell.Fees, want)
	}

	dividend, ok := transactions[1].(cgt.Dividend)
	if !ok {
		t.Fatalf("transactions[1] = %T, want Dividend", transactions[1])
	}
	if want := cgt.M(24, "USD"); !dividend.Total.Equal(want) {
		t.Errorf("dividend total = %s, want %s", dividend.Total, want)
	}

	capReturn, ok := transactions[2].(cgt.CapitalReturn)
	if !ok {
		t.Fatalf("transactions[2] = %T, want CapitalReturn", transactions[2])
	}
	if want := cgt.NewDate(2024, time.June, 3); capReturn.When() != want {
		t.Errorf("capital return date = %s, want %s (the effective date of an as-of row)", capReturn.When(), want)
	}

	buy, ok := transactions[3].(cgt.Buy)
	if !ok {
		t.Fatalf("transactions[3] = %T, want Buy", transactions[3])
	}
	if !buy.Quantity.Equal(cgt.Q(1000)) {
		t.Errorf("buy quantity = %s, want 1000", buy.Quantity)
	}
	if want := cgt.NewDate(2024, time.January, 15); buy.When() != want {
		t.Errorf("buy date = %s, want %s", buy.When(), want)
	}
}

func TestSchwab_ReinvestedDividend(t *testing.T) {
	input := `"Date","Action","Symbol","Description","Quantity","Price","Fees & Comm","Amount"
"03/05/2024","Reinvest Shares","VT","VANGUARD TOTAL WORLD","0.4321","$104.14","","-$45.00"
`
	transactions, err := Schwab(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Schwab() error = %v", err)
	}
	if len(transactions) != 1 {
		t.Fatalf("got %d transactions, want 1", len(transactions))
	}
	buy, ok := transactions[0].(cgt.Buy)
	if !ok {
		t.Fatalf("transactions[0] = %T, want Buy", transactions[0])
	}
	if !buy.Quantity.Equal(cgt.Q(0.4321)) {
		t.Errorf("quantity = %s, want 0.4321", buy.Quantity)
	}
	if buy.Fees.Currency() != "USD" || !buy.Fees.IsZero() {
		t.Errorf("fees = %s %s, want zero USD", buy.Fees, buy.Fees.Currency())
	}
}

func TestSchwab_BadHeader(t *testing.T) {
	input := `"When","What","Instrument"
"06/20/2024","Sell","AAPL"
`
	if _, err := Schwab(strings.NewReader(input)); err == nil {
		t.Fatal("Schwab() accepted an unrecognised header")
	}
}

func TestSchwab_BadRow(t *testing.T) {
	input := `"Date","Action","Symbol","Description","Quantity","Price","Fees & Comm","Amount"
"not a date","Sell","AAPL","APPLE INC","25","$210.50","",""
`
	_, err := Schwab(strings.NewReader(input))
	if err == nil {
		t.Fatal("Schwab() accepted an invalid date")
	}
	if !strings.Contains(err.Error(), "line 2") {
		t.Errorf("error %q does not name the line", err)
	}
}
