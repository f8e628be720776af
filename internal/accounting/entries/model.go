package entries

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/primanota-erp/primanota/internal/accounting/shared"
	"github.com/primanota-erp/primanota/internal/accounting/vat"
)

// BalanceTolerance is the accepted rounding drift between total debits and
// total credits of a journal entry.
const BalanceTolerance = 0.01

// DocumentHeader carries the document data of a new registration. Immutable
// once the entry is committed.
type DocumentHeader struct {
	Date           time.Time `json:"date"`
	CounterpartyID int64     `json:"counterparty_id,omitempty"`
	DocumentNumber string    `json:"document_number,omitempty"`
	DocumentDate   time.Time `json:"document_date,omitempty"`
	DueDate        time.Time `json:"due_date,omitempty"`
	DocumentTotal  float64   `json:"document_total"`
	Description    string    `json:"description"`
}

// JournalLine stores a debit or credit amount for a sub-account. Exactly one
// side is non-zero.
type JournalLine struct {
	ID          int64   `json:"id,omitempty"`
	EntryID     int64   `json:"entry_id,omitempty"`
	AccountID   int64   `json:"account_id"`
	Description string  `json:"description"`
	Debit       float64 `json:"debit"`
	Credit      float64 `json:"credit"`
}

// JournalEntry is the atomic unit of bookkeeping: header, balanced lines and
// the VAT breakdown that produced them. The entry owns its lines and VAT rows;
// open items are referenced by id only.
type JournalEntry struct {
	ID        int64              `json:"id"`
	SourceRef uuid.UUID          `json:"source_ref"`
	Header    DocumentHeader     `json:"header"`
	Lines     []JournalLine      `json:"lines"`
	VatRows   []vat.BreakdownRow `json:"vat_rows,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
}

// State tracks one in-progress entry through the generation protocol.
type State string

const (
	StateEmpty                State = "EMPTY"
	StateFunctionSelected     State = "FUNCTION_SELECTED"
	StateAwaitingCounterparty State = "AWAITING_COUNTERPARTY"
	StateVatMode              State = "VAT_MODE"
	StateReconciliationMode   State = "RECONCILIATION_MODE"
	StateLinesGenerated       State = "LINES_GENERATED"
	StateBalanced             State = "BALANCED"
	StateCommitted            State = "COMMITTED"
)

// Totals sums both sides of a line set.
func Totals(lines []JournalLine) (debit, credit float64) {
	for _, line := range lines {
		debit += line.Debit
		credit += line.Credit
	}
	return debit, credit
}

// ValidateLines enforces the committable-entry invariants: at least two
// lines, one side per line, balanced totals and a positive movement.
func ValidateLines(lines []JournalLine) error {
	if len(lines) < 2 {
		return shared.ErrTooFewLines
	}
	for idx, line := range lines {
		if line.AccountID == 0 {
			return fmt.Errorf("accounting: line %d missing account", idx)
		}
		if line.Debit < 0 || line.Credit < 0 {
			return fmt.Errorf("accounting: line %d negative amount", idx)
		}
		if (line.Debit > 0) == (line.Credit > 0) {
			return fmt.Errorf("accounting: line %d must move exactly one side", idx)
		}
	}
	debit, credit := Totals(lines)
	if math.Abs(debit-credit) >= BalanceTolerance {
		return fmt.Errorf("%w: debit %.2f credit %.2f", shared.ErrUnbalanced, debit, credit)
	}
	if debit <= 0 {
		return shared.ErrEmptyEntry
	}
	return nil
}
