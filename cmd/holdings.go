package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"

	cgt "github.com/velikodniy/cgt-tool-sub001"
)

// holdingsCmd holds the flags for the 'holdings' subcommand.
type holdingsCmd struct {
	ledgerFile string
}

func (*holdingsCmd) Name() string     { return "holdings" }
func (*holdingsCmd) Synopsis() string { return "section 104 pool left after all transactions" }
func (*holdingsCmd) Usage() string {
	return `cgt-tool holdings [-l <ledger_file>]

  Prints the pooled quantity and average cost of each instrument still
  held after the last transaction.
`
}

func (c *holdingsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ledgerFile, "l", "", "Ledger file to report on. Defaults to the configured ledger.")
}

func (c *holdingsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	transactions, err := decodeLedger(c.ledgerFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading ledger: %v\n", err)
		return subcommands.ExitFailure
	}

	transactions, status := toGbp(transactions)
	if status != subcommands.ExitSuccess {
		return status
	}

	report, err := cgt.Calculate(transactions, nil, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error computing holdings: %v\n", err)
		return subcommands.ExitFailure
	}

	var b strings.Builder
	fmt.Fprint(&b, "# Holdings\n\n")
	if len(report.Holdings) == 0 {
		fmt.Fprint(&b, "None.\n")
	}
	for _, h := range report.Holdings {
		fmt.Fprintf(&b, "- **%s**: %s units, total cost %s, average cost %s\n",
			h.Ticker, h.Quantity, h.TotalCost, h.AverageCost())
	}
	printMarkdown(b.String())
	return subcommands.ExitSuccess
}
