package fx

import (
	"embed"
	"encoding/xml"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

//go:embed rates/*.xml
var embeddedRates embed.FS

// Monthly rate files are named like "monthly_xml_2024-12.xml", the suffix
// carries the month the rates apply to.
var rateFileRE = regexp.MustCompile(`(\d{4})-(\d{2})`)

// monthlyList mirrors the XML layout of HMRC's monthly exchange rate files.
type monthlyList struct {
	XMLName xml.Name       `xml:"exchangeRateMonthlyList"`
	Period  string         `xml:"Period,attr"`
	Rates   []exchangeRate `xml:"exchangeRate"`
}

type exchangeRate struct {
	CountryName  string          `xml:"countryName"`
	CountryCode  string          `xml:"countryCode"`
	CurrencyName string          `xml:"currencyName"`
	CurrencyCode string          `xml:"currencyCode"`
	Rate         decimal.Decimal `xml:"rateNew"`
}

// Default returns a cache holding the bundled monthly rates.
func Default() (*Cache, error) {
	c := NewCache()
	if err := c.loadFS(embeddedRates, "rates"); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadDir merges every monthly rate file of a folder into the cache. Later
// files win over bundled rates for the same month.
func (c *Cache) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read rates folder %q: %w", dir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".xml" {
			continue
		}
		f, err := os.Open(filepath.Join(dir, entry.Name()))
		if err != nil {
			return err
		}
		err = c.LoadFile(entry.Name(), f)
		f.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

// LoadFile parses one monthly rate file. The month is taken from the file
// name, "monthly_xml_2024-12.xml" style.
func (c *Cache) LoadFile(name string, r io.Reader) error {
	match := rateFileRE.FindStringSubmatch(name)
	if match == nil {
		return fmt.Errorf("rate file name %q does not carry a YYYY-MM month", name)
	}
	year, _ := strconv.Atoi(match[1])
	monthNum, _ := strconv.Atoi(match[2])
	if monthNum < 1 || monthNum > 12 {
		return fmt.Errorf("rate file name %q carries invalid month %02d", name, monthNum)
	}
	month := time.Month(monthNum)

	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read rate file %q: %w", name, err)
	}
	var list monthlyList
	if err := xml.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("failed to parse rate file %q: %w", name, err)
	}
	for _, rate := range list.Rates {
		if rate.CurrencyCode == "" {
			continue
		}
		c.Set(rate.CurrencyCode, year, month, rate.Rate)
	}
	return nil
}

func (c *Cache) loadFS(fsys fs.FS, dir string) error {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		f, err := fsys.Open(dir + "/" + entry.Name())
		if err != nil {
			return err
		}
		err = c.LoadFile(entry.Name(), f)
		f.Close()
		if err != nil {
			return err
		}
	}
	return nil
}
