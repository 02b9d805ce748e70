package cgt

// MatchRule identifies which share matching rule produced a match.
type MatchRule string

const (
	SameDay         MatchRule = "same-day"
	BedAndBreakfast MatchRule = "bed-and-breakfast"
	Section104      MatchRule = "section-104"
)

// Match is one slice of a disposal matched against an acquisition under a
// single rule.
type Match struct {
	Rule            MatchRule
	Quantity        Quantity // quantity matched, in sell-date shares
	AllowableCost   Money
	GainOrLoss      Money
	AcquisitionDate Date // zero for section 104 pool matches
}

// MarshalJSON implements the json.Marshaler interface for Match.
func (m Match) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("rule", m.Rule)
	w.Append("quantity", m.Quantity)
	w.Append("allowableCost", m.AllowableCost)
	w.Append("gainOrLoss", m.GainOrLoss)
	w.Optional("acquisitionDate", m.AcquisitionDate)
	return w.MarshalJSON()
}

// Disposal groups the matches of one day's sale of one instrument.
type Disposal struct {
	Date          Date
	Ticker        string
	Quantity      Quantity
	GrossProceeds Money // before fees
	Proceeds      Money // net of fees
	Matches       []Match
}

// Gain returns the disposal's net gain or loss over all its matches.
func (d Disposal) Gain() Money {
	var total Money
	for _, m := range d.Matches {
		total = total.Add(m.GainOrLoss)
	}
	return total
}

// AllowableCost returns the disposal's total allowable cost.
func (d Disposal) AllowableCost() Money {
	var total Money
	for _, m := range d.Matches {
		total = total.Add(m.AllowableCost)
	}
	return total
}

// MarshalJSON implements the json.Marshaler interface for Disposal.
func (d Disposal) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("date", d.Date)
	w.Append("ticker", d.Ticker)
	w.Append("quantity", d.Quantity)
	w.Append("grossProceeds", d.GrossProceeds)
	w.Append("proceeds", d.Proceeds)
	w.Append("gainOrLoss", d.Gain())
	w.Append("matches", d.Matches)
	return w.MarshalJSON()
}

// TaxYearSummary aggregates the disposals of a single tax year.
//
// Each disposal nets into exactly one of TotalGain or TotalLoss: a disposal
// with mixed gaining and losing matches contributes only its net figure.
type TaxYearSummary struct {
	Period      TaxYear
	Disposals   []Disposal
	TotalGain   Money // sum of net gains of gaining disposals
	TotalLoss   Money // sum of net losses of losing disposals, as a positive figure
	NetGain     Money
	Exemption   Money // annual exempt amount for the year
	TaxableGain Money // net gain above the exemption, never negative
}

// MarshalJSON implements the json.Marshaler interface for TaxYearSummary.
func (s TaxYearSummary) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("taxYear", s.Period)
	w.Append("totalGain", s.TotalGain)
	w.Append("totalLoss", s.TotalLoss)
	w.Append("netGain", s.NetGain)
	w.Append("exemption", s.Exemption)
	w.Append("taxableGain", s.TaxableGain)
	w.Append("disposals", s.Disposals)
	return w.MarshalJSON()
}

// Proceeds returns the year's total net disposal proceeds.
func (s TaxYearSummary) Proceeds() Money {
	var total Money
	for _, d := range s.Disposals {
		total = total.Add(d.Proceeds)
	}
	return total
}

// Holding is the end state of an instrument's section 104 pool.
type Holding struct {
	Ticker    string
	Quantity  Quantity
	TotalCost Money
}

// AverageCost returns the holding's cost per share.
func (h Holding) AverageCost() Money {
	if h.Quantity.IsZero() {
		return Money{}
	}
	return h.TotalCost.Div(h.Quantity)
}

// MarshalJSON implements the json.Marshaler interface for Holding.
func (h Holding) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("ticker", h.Ticker)
	w.Append("quantity", h.Quantity)
	w.Append("totalCost", h.TotalCost)
	return w.MarshalJSON()
}

// TaxReport is the complete outcome of a calculation: one summary per tax
// year with disposals, plus the section 104 holdings left at the end.
type TaxReport struct {
	Years    []TaxYearSummary
	Holdings []Holding
}

// Year returns the summary for the given tax year, or nil.
func (r *TaxReport) Year(y TaxYear) *TaxYearSummary {
	for i := range r.Years {
		if r.Years[i].Period == y {
			return &r.Years[i]
		}
	}
	return nil
}

// MarshalJSON implements the json.Marshaler interface for TaxReport.
func (r TaxReport) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("taxYears", r.Years)
	w.Append("holdings", r.Holdings)
	return w.MarshalJSON()
}
