// Package renderer turns tax reports into their presentation formats:
// markdown for the terminal, JSON for machines, xlsx and pdf for filing
// paperwork.
package renderer

import (
	"fmt"
	"strings"

	cgt "github.com/velikodniy/cgt-tool-sub001"
)

// ReportMarkdown renders the full report as a markdown document: a summary
// table, one section per tax year with every disposal and its matches, the
// remaining holdings, the transactions and the corporate actions.
func ReportMarkdown(report *cgt.TaxReport, transactions []cgt.Transaction) string {
	var b strings.Builder

	fmt.Fprint(&b, "# Capital Gains Report\n\n")

	fmt.Fprint(&b, "## Summary\n\n")
	fmt.Fprintln(&b, "| Tax Year | Disposals | Proceeds | Gain | Loss | Net Gain | Exemption | Taxable Gain |")
	fmt.Fprintln(&b, "|:---|---:|---:|---:|---:|---:|---:|---:|")
	for _, year := range report.Years {
		fmt.Fprintf(&b, "| %s | %d | %s | %s | %s | %s | %s | %s |\n",
			year.Period,
			len(year.Disposals),
			year.Proceeds(),
			year.TotalGain,
			year.TotalLoss,
			year.NetGain.SignedString(),
			year.Exemption,
			year.TaxableGain,
		)
	}
	fmt.Fprintln(&b)

	for _, year := range report.Years {
		yearMarkdown(&b, year)
	}

	holdingsMarkdown(&b, report.Holdings)

	fmt.Fprintln(&b)
	b.WriteString(TransactionsMarkdown(transactions))
	fmt.Fprintln(&b)
	b.WriteString(AssetEventsMarkdown(transactions))

	return b.String()
}

func yearMarkdown(b *strings.Builder, year cgt.TaxYearSummary) {
	fmt.Fprintf(b, "## Tax Year %s\n\n", year.Period)
	for i, d := range year.Disposals {
		fmt.Fprintf(b, "%d. **%s** sold %s %s for %s on %s, %s %s\n",
			i+1, d.Ticker, d.Quantity, unitOrUnits(d.Quantity), d.Proceeds, d.Date,
			gainOrLossLabel(d.Gain()), d.Gain().Abs())
		for _, m := range d.Matches {
			fmt.Fprintf(b, "   - %s: %s %s, cost %s, %s %s%s\n",
				ruleLabel(m.Rule), m.Quantity, unitOrUnits(m.Quantity), m.AllowableCost,
				gainOrLossLabel(m.GainOrLoss), m.GainOrLoss.Abs(), acquiredOn(m))
		}
	}
	fmt.Fprintln(b)
}

func holdingsMarkdown(b *strings.Builder, holdings []cgt.Holding) {
	fmt.Fprint(b, "## Holdings\n\n")
	if len(holdings) == 0 {
		fmt.Fprint(b, "None.\n")
		return
	}
	fmt.Fprintln(b, "| Ticker | Quantity | Total Cost | Average Cost |")
	fmt.Fprintln(b, "|:---|---:|---:|---:|")
	for _, h := range holdings {
		fmt.Fprintf(b, "| %s | %s | %s | %s |\n",
			h.Ticker, h.Quantity, h.TotalCost, h.AverageCost())
	}
}

func ruleLabel(rule cgt.MatchRule) string {
	switch rule {
	case cgt.SameDay:
		return "same day"
	case cgt.BedAndBreakfast:
		return "bed & breakfast"
	case cgt.Section104:
		return "section 104 pool"
	}
	return string(rule)
}

func gainOrLossLabel(m cgt.Money) string {
	if m.IsNegative() {
		return "loss"
	}
	return "gain"
}

func unitOrUnits(q cgt.Quantity) string {
	if q.Equal(cgt.Q(1)) {
		return "unit"
	}
	return "units"
}

func acquiredOn(m cgt.Match) string {
	if m.AcquisitionDate.IsZero() {
		return ""
	}
	return fmt.Sprintf(" (acquired %s)", m.AcquisitionDate)
}
