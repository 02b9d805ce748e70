package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	cgt "github.com/velikodniy/cgt-tool-sub001"
)

// validateCmd holds the flags for the 'validate' subcommand.
type validateCmd struct {
	ledgerFile string
}

func (*validateCmd) Name() string     { return "validate" }
func (*validateCmd) Synopsis() string { return "checks the ledger for errors and suspect entries" }
func (*validateCmd) Usage() string {
	return `cgt-tool validate [-l <ledger_file>]

  Checks every transaction for structural errors (non-positive
  quantities, negative fees, bad ratios, mixed currencies) and warns
  about disposals recorded before any acquisition.
`
}

func (c *validateCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ledgerFile, "l", "", "Ledger file to validate. Defaults to the configured ledger.")
}

func (c *validateCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	transactions, err := decodeLedger(c.ledgerFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading ledger: %v\n", err)
		return subcommands.ExitFailure
	}

	result := cgt.Validate(transactions)
	for _, issue := range result.Warnings {
		fmt.Printf("warning: %s\n", issue)
	}
	for _, issue := range result.Errors {
		fmt.Printf("error: %s\n", issue)
	}
	if !result.IsValid() {
		return subcommands.ExitFailure
	}
	fmt.Printf("%d transactions, %d warnings\n", len(transactions), len(result.Warnings))
	return subcommands.ExitSuccess
}
