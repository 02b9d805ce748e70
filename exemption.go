package cgt

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/shopspring/decimal"
)

// The annual exempt amount table ships with the binary and can be overridden
// or extended from a user configuration file.
//
//go:embed exemptions.json
var embeddedExemptions []byte

// Exemptions maps a tax year to its annual exempt amount in GBP.
type Exemptions map[TaxYear]Money

// DefaultExemptions returns the built-in annual exempt amount table.
func DefaultExemptions() Exemptions {
	e, err := parseExemptions(embeddedExemptions)
	if err != nil {
		panic("invalid embedded exemption table: " + err.Error())
	}
	return e
}

func parseExemptions(data []byte) (Exemptions, error) {
	var raw map[string]decimal.Decimal
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse exemption table: %w", err)
	}
	e := make(Exemptions, len(raw))
	for key, amount := range raw {
		year, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("invalid tax year %q in exemption table: %w", key, err)
		}
		ty := TaxYear(year)
		if !ty.Valid() {
			return nil, InvalidTaxYearError{Year: year}
		}
		e[ty] = M(amount, GBP)
	}
	return e, nil
}

// ReadExemptions parses an exemption table from a reader. The format is a
// JSON object keyed by the tax year's starting calendar year.
func ReadExemptions(r io.Reader) (Exemptions, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read exemption table: %w", err)
	}
	return parseExemptions(data)
}

// LoadExemptions returns the default table merged with the entries of the
// given configuration file. An empty path returns the default table alone.
func LoadExemptions(path string) (Exemptions, error) {
	e := DefaultExemptions()
	if path == "" {
		return e, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open exemption configuration %q: %w", path, err)
	}
	defer f.Close()
	overrides, err := ReadExemptions(f)
	if err != nil {
		return nil, err
	}
	return e.Merge(overrides), nil
}

// Merge returns a copy of the table with the other table's entries taking
// precedence.
func (e Exemptions) Merge(other Exemptions) Exemptions {
	out := make(Exemptions, len(e)+len(other))
	for y, m := range e {
		out[y] = m
	}
	for y, m := range other {
		out[y] = m
	}
	return out
}

// For returns the annual exempt amount for the given tax year.
func (e Exemptions) For(y TaxYear) (Money, error) {
	amount, ok := e[y]
	if !ok {
		return Money{}, UnsupportedTaxYearError{Year: y}
	}
	return amount, nil
}
