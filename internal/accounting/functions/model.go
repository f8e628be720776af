package functions

import "time"

// Direction marks which side of the ledger a template line moves.
type Direction string

const (
	Debit  Direction = "DEBIT"
	Credit Direction = "CREDIT"
)

// Opposite returns the other ledger side.
func (d Direction) Opposite() Direction {
	if d == Debit {
		return Credit
	}
	return Debit
}

// Management enumerates the combined managements a function may carry.
type Management string

const (
	ManagementVAT       Management = "VAT"
	ManagementOpenItems Management = "OPEN_ITEMS"
)

// Category groups functions by the generation behaviour of their class.
type Category string

const (
	// CategoryInvoice covers generic sales and purchase documents.
	CategoryInvoice Category = "INVOICE"
	// CategoryReceipts covers daily point-of-sale takings (corrispettivi).
	CategoryReceipts Category = "RECEIPTS"
	// CategoryGeneric covers fixed allocations with no counterparty.
	CategoryGeneric Category = "GENERIC"
)

// LineTemplate describes one pre-configured journal line. A search line has
// no fixed account: its account comes from the resolved counterparty.
type LineTemplate struct {
	IsSearchLine       bool      `json:"is_search_line"`
	AccountID          *int64    `json:"account_id,omitempty"`
	Direction          Direction `json:"direction"`
	DefaultDescription string    `json:"default_description"`
}

// Template is a read-only accounting function definition. It is immutable at
// generation time; maintenance happens through the masterdata surface.
type Template struct {
	ID          int64               `json:"id"`
	Code        string              `json:"code"`
	Name        string              `json:"name"`
	Category    Category            `json:"category"`
	Lines       []LineTemplate      `json:"lines"`
	Managements map[Management]bool `json:"managements"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// HasManagement reports whether the function combines the given management.
func (t Template) HasManagement(m Management) bool {
	return t.Managements[m]
}

// SearchLine returns the counterparty search line, if any.
func (t Template) SearchLine() (LineTemplate, bool) {
	for _, line := range t.Lines {
		if line.IsSearchLine {
			return line, true
		}
	}
	return LineTemplate{}, false
}

// FixedLines returns the non-search lines in template order.
func (t Template) FixedLines() []LineTemplate {
	out := make([]LineTemplate, 0, len(t.Lines))
	for _, line := range t.Lines {
		if !line.IsSearchLine {
			out = append(out, line)
		}
	}
	return out
}
