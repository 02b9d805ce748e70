package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	cgt "github.com/velikodniy/cgt-tool-sub001"
)

// fmtCmd holds the flags for the 'fmt' subcommand.
type fmtCmd struct {
	ledgerFile string
	outputFile string
	write      bool
}

func (*fmtCmd) Name() string { return "fmt" }
func (*fmtCmd) Synopsis() string {
	return "validates and formats the ledger file into a canonical form"
}
func (*fmtCmd) Usage() string {
	return `cgt-tool fmt [-l <ledger_file>] [-o <file>] [-w]

  Reads the ledger, validates it, sorts transactions by date and writes
  them back in the canonical text form. With -w the ledger file is
  rewritten in place.

Usage Examples:
# Print the canonical ledger to stdout.
$ cgt-tool fmt

# Rewrite the ledger file in place.
$ cgt-tool fmt -w

`
}

func (c *fmtCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ledgerFile, "l", "", "Ledger file to format. Defaults to the configured ledger.")
	f.StringVar(&c.outputFile, "o", "", "Write the formatted ledger to a file instead of stdout.")
	f.BoolVar(&c.write, "w", false, "Rewrite the ledger file in place.")
}

func (c *fmtCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	path := c.ledgerFile
	if path == "" {
		path = cfg.LedgerFile
	}
	transactions, err := decodeLedger(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading ledger: %v\n", err)
		return subcommands.ExitFailure
	}

	result := cgt.Validate(transactions)
	for _, issue := range result.Warnings {
		logger.Warn().Msg(issue.String())
	}
	if !result.IsValid() {
		for _, issue := range result.Errors {
			fmt.Fprintln(os.Stderr, issue)
		}
		return subcommands.ExitFailure
	}

	out := c.outputFile
	if c.write {
		out = path
	}
	w, closer, err := openOutput(out)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening output: %v\n", err)
		return subcommands.ExitFailure
	}
	defer closer()

	if err := cgt.EncodeDSL(w, transactions); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing ledger: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
