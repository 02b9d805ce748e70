package renderer

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"

	cgt "github.com/velikodniy/cgt-tool-sub001"
)

// ReportPDF writes the report as an A4 document with a summary table, the
// per-year disposal details, the remaining holdings, the transactions and the
// corporate actions.
func ReportPDF(w io.Writer, report *cgt.TaxReport, transactions []cgt.Transaction) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Capital Gains Report", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, "Capital Gains Report", "", 1, "L", false, 0, "")
	pdf.Ln(4)

	summaryTable(pdf, tr, report)
	for _, year := range report.Years {
		yearSection(pdf, tr, year)
	}
	holdingsSection(pdf, tr, report.Holdings)
	listSection(pdf, tr, "Transactions", transactions, func(cgt.Transaction) bool { return true })
	listSection(pdf, tr, "Asset Events", transactions, isAssetEvent)

	return pdf.Output(w)
}

func isAssetEvent(tx cgt.Transaction) bool {
	switch tx.(type) {
	case cgt.Dividend, cgt.CapitalReturn, cgt.Split, cgt.Unsplit:
		return true
	}
	return false
}

func listSection(pdf *gofpdf.Fpdf, tr func(string) string, title string, transactions []cgt.Transaction, keep func(cgt.Transaction) bool) {
	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, title, "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	lines := 0
	for _, tx := range transactions {
		if !keep(tx) {
			continue
		}
		pdf.CellFormat(0, 5, tr(Transaction(tx)), "", 1, "L", false, 0, "")
		lines++
	}
	if lines == 0 {
		pdf.CellFormat(0, 5, "None.", "", 1, "L", false, 0, "")
	}
}

func summaryTable(pdf *gofpdf.Fpdf, tr func(string) string, report *cgt.TaxReport) {
	widths := []float64{22, 30, 26, 26, 26, 26, 26}
	headers := []string{"Tax Year", "Proceeds", "Gain", "Loss", "Net Gain", "Exemption", "Taxable"}

	pdf.SetFont("Helvetica", "B", 9)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, year := range report.Years {
		cells := []string{
			year.Period.String(),
			year.Proceeds().String(),
			year.TotalGain.String(),
			year.TotalLoss.String(),
			year.NetGain.SignedString(),
			year.Exemption.String(),
			year.TaxableGain.String(),
		}
		for i, c := range cells {
			align := "R"
			if i == 0 {
				align = "L"
			}
			pdf.CellFormat(widths[i], 6, tr(c), "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(4)
}

func yearSection(pdf *gofpdf.Fpdf, tr func(string) string, year cgt.TaxYearSummary) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, fmt.Sprintf("Tax Year %s", year.Period), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	for i, d := range year.Disposals {
		line := fmt.Sprintf("%d. %s sold %s on %s for %s, %s %s",
			i+1, d.Ticker, d.Quantity, d.Date, d.Proceeds,
			gainOrLossLabel(d.Gain()), d.Gain().Abs())
		pdf.CellFormat(0, 5, tr(line), "", 1, "L", false, 0, "")
		for _, m := range d.Matches {
			match := fmt.Sprintf("    %s: %s units, cost %s, %s %s%s",
				ruleLabel(m.Rule), m.Quantity, m.AllowableCost,
				gainOrLossLabel(m.GainOrLoss), m.GainOrLoss.Abs(), acquiredOn(m))
			pdf.CellFormat(0, 5, tr(match), "", 1, "L", false, 0, "")
		}
	}
	pdf.Ln(4)
}

func holdingsSection(pdf *gofpdf.Fpdf, tr func(string) string, holdings []cgt.Holding) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, "Holdings", "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	if len(holdings) == 0 {
		pdf.CellFormat(0, 5, "None.", "", 1, "L", false, 0, "")
		return
	}
	for _, h := range holdings {
		line := fmt.Sprintf("%s: %s units, total cost %s, average cost %s",
			h.Ticker, h.Quantity, h.TotalCost, h.AverageCost())
		pdf.CellFormat(0, 5, tr(line), "", 1, "L", false, 0, "")
	}
}
