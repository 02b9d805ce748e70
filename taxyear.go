package cgt

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TaxYear identifies a UK tax year by its starting calendar year.
// The year labelled "2023/24" runs from 6 April 2023 to 5 April 2024.
type TaxYear int

// Tax years outside this range are rejected as data errors.
const (
	minTaxYear = 1900
	maxTaxYear = 2100
)

// TaxYearOf returns the tax year containing the given date.
func TaxYearOf(d Date) (TaxYear, error) {
	y := d.Year()
	if d.Month() < time.April || (d.Month() == time.April && d.Day() < 6) {
		y--
	}
	ty := TaxYear(y)
	if !ty.Valid() {
		return 0, InvalidTaxYearError{Year: y}
	}
	return ty, nil
}

// Valid reports whether the tax year is in the supported range.
func (y TaxYear) Valid() bool { return y >= minTaxYear && y <= maxTaxYear }

// Start returns the first day of the tax year, the 6th of April.
func (y TaxYear) Start() Date { return NewDate(int(y), time.April, 6) }

// End returns the last day of the tax year, the 5th of April of the next calendar year.
func (y TaxYear) End() Date { return NewDate(int(y)+1, time.April, 5) }

// Contains reports whether the date falls inside the tax year.
func (y TaxYear) Contains(d Date) bool {
	return !d.Before(y.Start()) && !d.After(y.End())
}

// String formats the tax year in the usual "2023/24" notation.
func (y TaxYear) String() string {
	return fmt.Sprintf("%d/%02d", int(y), (int(y)+1)%100)
}

// ParseTaxYear parses a tax year from either "2023/24" or "2023".
func ParseTaxYear(s string) (TaxYear, error) {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '/'); i >= 0 {
		s = s[:i]
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid tax year %q: %w", s, err)
	}
	ty := TaxYear(n)
	if !ty.Valid() {
		return 0, InvalidTaxYearError{Year: n}
	}
	return ty, nil
}

func (y TaxYear) MarshalJSON() ([]byte, error) {
	return json.Marshal(y.String())
}

func (y *TaxYear) UnmarshalJSON(bytes []byte) error {
	var str string
	if err := json.Unmarshal(bytes, &str); err != nil {
		return err
	}
	ty, err := ParseTaxYear(str)
	if err != nil {
		return err
	}
	*y = ty
	return nil
}
