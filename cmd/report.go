package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	cgt "github.com/velikodniy/cgt-tool-sub001"
	"github.com/velikodniy/cgt-tool-sub001/renderer"
)

// reportCmd holds the flags for the 'report' subcommand.
type reportCmd struct {
	ledgerFile string
	year       string
	format     string
	outputFile string
}

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "capital gains tax report per tax year" }
func (*reportCmd) Usage() string {
	return `cgt-tool report [-l <ledger_file>] [-year <tax_year>] [-format md|json|xlsx|pdf] [-o <file>]

  Computes disposals under the share matching rules and reports gains,
  losses and the taxable amount per tax year.

Usage Examples:
# Full report on the default ledger, rendered in the terminal.
$ cgt-tool report

# One tax year as a spreadsheet.
$ cgt-tool report -year 2024/25 -format xlsx -o gains.xlsx

`
}

func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ledgerFile, "l", "", "Ledger file to report on. Defaults to the configured ledger.")
	f.StringVar(&c.year, "year", "", "Restrict the report to one tax year, e.g. 2024/25.")
	f.StringVar(&c.format, "format", "md", "Output format: md, json, xlsx or pdf.")
	f.StringVar(&c.outputFile, "o", "", "Write the report to a file instead of stdout.")
}

func (c *reportCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	report, transactions, status := c.calculate()
	if status != subcommands.ExitSuccess {
		return status
	}

	switch c.format {
	case "md":
		if c.outputFile == "" {
			printMarkdown(renderer.ReportMarkdown(report, transactions))
			return subcommands.ExitSuccess
		}
	case "json", "xlsx", "pdf":
	default:
		fmt.Fprintf(os.Stderr, "Unknown format %q, expected md, json, xlsx or pdf\n", c.format)
		return subcommands.ExitUsageError
	}

	w, closer, err := openOutput(c.outputFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening output: %v\n", err)
		return subcommands.ExitFailure
	}
	defer closer()

	switch c.format {
	case "md":
		_, err = fmt.Fprint(w, renderer.ReportMarkdown(report, transactions))
	case "json":
		err = renderer.ReportJSON(w, report)
	case "xlsx":
		err = renderer.ReportXLSX(w, report)
	case "pdf":
		err = renderer.ReportPDF(w, report, transactions)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error writing report: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func (c *reportCmd) calculate() (*cgt.TaxReport, []cgt.Transaction, subcommands.ExitStatus) {
	transactions, err := decodeLedger(c.ledgerFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading ledger: %v\n", err)
		return nil, nil, subcommands.ExitFailure
	}

	transactions, status := toGbp(transactions)
	if status != subcommands.ExitSuccess {
		return nil, nil, status
	}
	transactions = cgt.SortTransactions(transactions)

	var year *cgt.TaxYear
	if c.year != "" {
		y, err := cgt.ParseTaxYear(c.year)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing tax year: %v\n", err)
			return nil, nil, subcommands.ExitUsageError
		}
		year = &y
	}

	exemptions, err := loadExemptions()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading exemptions: %v\n", err)
		return nil, nil, subcommands.ExitFailure
	}

	report, err := cgt.Calculate(transactions, year, exemptions)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error computing gains: %v\n", err)
		return nil, nil, subcommands.ExitFailure
	}
	return report, transactions, subcommands.ExitSuccess
}

// toGbp converts any foreign currency amounts at the monthly reference rates.
func toGbp(transactions []cgt.Transaction) ([]cgt.Transaction, subcommands.ExitStatus) {
	cache, err := loadRates()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading FX rates: %v\n", err)
		return nil, subcommands.ExitFailure
	}
	converted, err := cgt.ToGBP(transactions, cache)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error converting to GBP: %v\n", err)
		return nil, subcommands.ExitFailure
	}
	return converted, subcommands.ExitSuccess
}
