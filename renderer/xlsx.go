package renderer

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	cgt "github.com/velikodniy/cgt-tool-sub001"
)

// ReportXLSX writes the report as a spreadsheet: a Summary sheet, one sheet
// per tax year with its disposals and matches, and a Holdings sheet.
func ReportXLSX(w io.Writer, report *cgt.TaxReport) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if err := summarySheet(f, report); err != nil {
		return err
	}
	for _, year := range report.Years {
		if err := yearSheet(f, year); err != nil {
			return err
		}
	}
	if err := holdingsSheet(f, report.Holdings); err != nil {
		return err
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return err
	}
	return f.Write(w)
}

func summarySheet(f *excelize.File, report *cgt.TaxReport) error {
	const sheet = "Summary"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	header := []any{"Tax Year", "Disposals", "Proceeds", "Total Gain", "Total Loss", "Net Gain", "Exemption", "Taxable Gain"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i, year := range report.Years {
		row := []any{
			year.Period.String(),
			len(year.Disposals),
			year.Proceeds().AsFloat(),
			year.TotalGain.AsFloat(),
			year.TotalLoss.AsFloat(),
			year.NetGain.AsFloat(),
			year.Exemption.AsFloat(),
			year.TaxableGain.AsFloat(),
		}
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return err
		}
	}
	return nil
}

func yearSheet(f *excelize.File, year cgt.TaxYearSummary) error {
	// sheet names cannot contain a slash
	sheet := fmt.Sprintf("Year %d-%d", int(year.Period), int(year.Period)+1)
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	header := []any{"Date", "Ticker", "Quantity", "Proceeds", "Rule", "Matched Quantity", "Allowable Cost", "Gain or Loss", "Acquired"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	rowNum := 2
	for _, d := range year.Disposals {
		for _, m := range d.Matches {
			acquired := ""
			if !m.AcquisitionDate.IsZero() {
				acquired = m.AcquisitionDate.String()
			}
			row := []any{
				d.Date.String(),
				d.Ticker,
				d.Quantity.AsFloat(),
				d.Proceeds.AsFloat(),
				string(m.Rule),
				m.Quantity.AsFloat(),
				m.AllowableCost.AsFloat(),
				m.GainOrLoss.AsFloat(),
				acquired,
			}
			if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", rowNum), &row); err != nil {
				return err
			}
			rowNum++
		}
	}
	return nil
}

func holdingsSheet(f *excelize.File, holdings []cgt.Holding) error {
	const sheet = "Holdings"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	header := []any{"Ticker", "Quantity", "Total Cost", "Average Cost"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i, h := range holdings {
		row := []any{h.Ticker, h.Quantity.AsFloat(), h.TotalCost.AsFloat(), h.AverageCost().AsFloat()}
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return err
		}
	}
	return nil
}
