package openitems

import (
	"fmt"

	"github.com/primanota-erp/primanota/internal/accounting/functions"
	"github.com/primanota-erp/primanota/internal/accounting/shared"
)

// ReconcilingLine is one movement produced by closing open items. The entry
// generator maps these onto journal lines.
type ReconcilingLine struct {
	AccountID   int64
	Description string
	Debit       float64
	Credit      float64
}

// BuildReconcilingLines emits one line per selected item on the item's own
// sub-account, moving opposite to the contra template, then exactly one
// contra line for the exact sum of the selection. The contra amount is a
// direct sum of item amounts: no rounding is involved, so conservation holds
// exactly.
func BuildReconcilingLines(selected []OpenItem, contra functions.LineTemplate) ([]ReconcilingLine, error) {
	if len(selected) == 0 {
		return nil, shared.ErrNoItemsSelected
	}
	if contra.AccountID == nil {
		return nil, fmt.Errorf("%w: contra line has no account", shared.ErrTemplateMisconfigured)
	}

	itemDirection := contra.Direction.Opposite()
	lines := make([]ReconcilingLine, 0, len(selected)+1)
	var total float64
	for _, item := range selected {
		if item.SubAccountID == 0 {
			// A partial reconciliation is not a valid state: abort everything.
			return nil, fmt.Errorf("%w: open item %d", shared.ErrMissingSubAccount, item.ID)
		}
		line := ReconcilingLine{
			AccountID:   item.SubAccountID,
			Description: fmt.Sprintf("Closing open item %d", item.ID),
		}
		if itemDirection == functions.Debit {
			line.Debit = item.Amount
		} else {
			line.Credit = item.Amount
		}
		lines = append(lines, line)
		total += item.Amount
	}

	contraLine := ReconcilingLine{
		AccountID:   *contra.AccountID,
		Description: contra.DefaultDescription,
	}
	if contra.Direction == functions.Debit {
		contraLine.Debit = total
	} else {
		contraLine.Credit = total
	}
	return append(lines, contraLine), nil
}
