package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	cgt "github.com/velikodniy/cgt-tool-sub001"
	"github.com/velikodniy/cgt-tool-sub001/converter"
)

// convertCmd holds the flags for the 'convert' subcommand.
type convertCmd struct {
	broker     string
	outputFile string
}

func (*convertCmd) Name() string     { return "convert" }
func (*convertCmd) Synopsis() string { return "converts a broker CSV export into ledger form" }
func (*convertCmd) Usage() string {
	return `cgt-tool convert -broker schwab <export.csv> [-o <file>]

  Reads a broker activity export and writes the recognised rows as
  ledger text, ready to merge into the ledger file. Amounts keep their
  original currency, the report command converts them to pounds.
`
}

func (c *convertCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.broker, "broker", "schwab", "Broker export format. Only schwab is supported.")
	f.StringVar(&c.outputFile, "o", "", "Write the ledger to a file instead of stdout.")
}

func (c *convertCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Expected exactly one CSV file argument")
		return subcommands.ExitUsageError
	}
	if c.broker != "schwab" {
		fmt.Fprintf(os.Stderr, "Unknown broker %q\n", c.broker)
		return subcommands.ExitUsageError
	}

	in, err := os.Open(f.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening export: %v\n", err)
		return subcommands.ExitFailure
	}
	defer in.Close()

	transactions, err := converter.Schwab(in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading export: %v\n", err)
		return subcommands.ExitFailure
	}
	logger.Info().Int("transactions", len(transactions)).Msg("converted export")

	w, closer, err := openOutput(c.outputFile)
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
