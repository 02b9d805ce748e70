// Package fx converts foreign currency amounts to pound sterling using
// monthly reference exchange rates.
//
// Rates are keyed by (currency, year, month): every amount dated inside a
// month converts at that month's rate. A bundled set of monthly rate files
// ships with the binary and can be extended or overridden from a local
// folder of the same XML files.
package fx

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// MissingRateError reports a (currency, month) pair with no reference rate.
type MissingRateError struct {
	Currency string
	Year     int
	Month    time.Month
}

func (e MissingRateError) Error() string {
	return fmt.Sprintf("missing FX rate for %s in %d-%02d", e.Currency, e.Year, int(e.Month))
}

type rateKey struct {
	currency string
	year     int
	month    time.Month
}

// Cache holds monthly reference rates, expressed as units of foreign
// currency per pound.
type Cache struct {
	rates map[rateKey]decimal.Decimal
}

// NewCache returns an empty rate cache.
func NewCache() *Cache {
	return &Cache{rates: make(map[rateKey]decimal.Decimal)}
}

// Set records the rate for a currency and month, replacing any previous one.
func (c *Cache) Set(currency string, year int, month time.Month, rate decimal.Decimal) {
	c.rates[rateKey{currency: currency, year: year, month: month}] = rate
}

// Rate returns the units of the given currency per pound for the month.
func (c *Cache) Rate(currency string, year int, month time.Month) (decimal.Decimal, error) {
	rate, ok := c.rates[rateKey{currency: currency, year: year, month: month}]
	if !ok {
		return decimal.Decimal{}, MissingRateError{Currency: currency, Year: year, Month: month}
	}
	return rate, nil
}

// ToGBP converts an amount of the given currency to pounds at the month's
// reference rate.
func (c *Cache) ToGBP(amount decimal.Decimal, currency string, year int, month time.Month) (decimal.Decimal, error) {
	rate, err := c.Rate(currency, year, month)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if rate.IsZero() {
		return decimal.Decimal{}, fmt.Errorf("zero FX rate for %s in %d-%02d", currency, year, int(month))
	}
	return amount.Div(rate), nil
}

// Len returns the number of (currency, month) rates held.
func (c *Cache) Len() int { return len(c.rates) }
