package cgt

import "fmt"

// InsufficientHoldingError reports a disposal that exceeds the quantity held
// on its date. Future acquisitions inside the bed-and-breakfast window do not
// count as backing.
type InsufficientHoldingError struct {
	Ticker    string
	Date      Date
	Requested Quantity
	Available Quantity
}

func (e InsufficientHoldingError) Error() string {
	return fmt.Sprintf("on %s, cannot sell %s of %s, holding is only %s",
		e.Date, e.Requested, e.Ticker, e.Available)
}

// InvalidTaxYearError reports a date that falls outside the supported tax year range.
type InvalidTaxYearError struct {
	Year int
}

func (e InvalidTaxYearError) Error() string {
	return fmt.Sprintf("tax year %d is outside the supported range %d-%d", e.Year, minTaxYear, maxTaxYear)
}

// UnsupportedTaxYearError reports a tax year with no annual exempt amount configured.
type UnsupportedTaxYearError struct {
	Year TaxYear
}

func (e UnsupportedTaxYearError) Error() string {
	return fmt.Sprintf("no annual exempt amount configured for tax year %s", e.Year)
}
