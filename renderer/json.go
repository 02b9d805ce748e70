package renderer

import (
	"encoding/json"
	"io"

	cgt "github.com/velikodniy/cgt-tool-sub001"
)

// ReportJSON writes the report as indented JSON.
func ReportJSON(w io.Writer, report *cgt.TaxReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
