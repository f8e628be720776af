package vat

import (
	"fmt"
	"math"

	"github.com/primanota-erp/primanota/internal/accounting/shared"
)

// BalanceTolerance is the maximum accepted cent drift between the recomposed
// control total and the user-entered document total.
const BalanceTolerance = 0.01

// Round2 rounds to two decimal places, half away from zero.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Decompose computes the tax amount for each row and the control totals.
// Each row is rounded independently and the totals sum the rounded values,
// matching the per-row amounts displayed while the breakdown is entered.
func Decompose(rows []BreakdownRow) Breakdown {
	out := Breakdown{Rows: make([]BreakdownRow, len(rows))}
	for i, row := range rows {
		row.TaxAmount = Round2(row.TaxableBase * row.RatePercent / 100)
		out.Rows[i] = row
		out.TotalTaxable = Round2(out.TotalTaxable + row.TaxableBase)
		out.TotalTax = Round2(out.TotalTax + row.TaxAmount)
	}
	return out
}

// Discrepancy is the signed difference between the document total and the
// recomposed control total.
type Discrepancy float64

// WithinTolerance reports whether generation may proceed.
func (d Discrepancy) WithinTolerance() bool {
	return math.Abs(float64(d)) < BalanceTolerance
}

// Check computes the discrepancy for a breakdown against a document total.
func Check(b Breakdown, documentTotal float64) Discrepancy {
	return Discrepancy(Round2(documentTotal - b.ControlTotal()))
}

// Validate permits generation only for a positive document total matching the
// breakdown within tolerance. The returned error carries the exact
// discrepancy so the caller can render an actionable message.
func Validate(b Breakdown, documentTotal float64) (Discrepancy, error) {
	d := Check(b, documentTotal)
	if documentTotal <= 0 {
		return d, fmt.Errorf("%w: document total must be positive, got %.2f", shared.ErrCannotGenerate, documentTotal)
	}
	if !d.WithinTolerance() {
		return d, fmt.Errorf("%w: document total %.2f differs from breakdown total %.2f by %.2f",
			shared.ErrCannotGenerate, documentTotal, b.ControlTotal(), float64(d))
	}
	return d, nil
}
