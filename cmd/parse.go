package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	cgt "github.com/velikodniy/cgt-tool-sub001"
)

// parseCmd holds the flags for the 'parse' subcommand.
type parseCmd struct {
	ledgerFile string
	outputFile string
}

func (*parseCmd) Name() string     { return "parse" }
func (*parseCmd) Synopsis() string { return "parses a ledger and writes it as JSONL" }
func (*parseCmd) Usage() string {
	return `cgt-tool parse [-l <ledger_file>] [-o <file>]

  Reads a ledger in either the text or JSONL format and writes the
  transactions back as sorted JSONL, one object per line.
`
}

func (c *parseCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ledgerFile, "l", "", "Ledger file to parse. Defaults to the configured ledger.")
	f.StringVar(&c.outputFile, "o", "", "Write the JSONL to a file instead of stdout.")
}

func (c *parseCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	transactions, err := decodeLedger(c.ledgerFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading ledger: %v\n", err)
		return subcommands.ExitFailure
	}

	w, closer, err := openOutput(c.outputFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening output: %v\n", err)
		return subcommands.ExitFailure
	}
	defer closer()

	if err := cgt.EncodeTransactions(w, transactions); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing transactions: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
