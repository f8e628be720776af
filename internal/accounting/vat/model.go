package vat

// Rate represents a VAT rate configuration.
type Rate struct {
	ID      int64   `json:"id"`
	Code    string  `json:"code"`
	Name    string  `json:"name"`
	Percent float64 `json:"percent"`
}

// BreakdownRow is one (taxable base, rate) pair of a document decomposition.
// TaxAmount is derived, rounded per row.
type BreakdownRow struct {
	TaxableBase float64 `json:"taxable_base"`
	RateID      int64   `json:"rate_id"`
	RatePercent float64 `json:"rate_percent"`
	TaxAmount   float64 `json:"tax_amount"`
}

// Breakdown aggregates the decomposed rows with their control totals.
type Breakdown struct {
	Rows         []BreakdownRow `json:"rows"`
	TotalTaxable float64        `json:"total_taxable"`
	TotalTax     float64        `json:"total_tax"`
}

// ControlTotal is the recomposed gross amount checked against the document total.
func (b Breakdown) ControlTotal() float64 {
	return b.TotalTaxable + b.TotalTax
}
