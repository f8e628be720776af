package functions

import (
	"fmt"

	"github.com/primanota-erp/primanota/internal/accounting/shared"
)

// Policy is the closed set of generation behaviours. It is selected once from
// category and combined managements when a function is chosen, never
// re-derived while an entry is in progress.
type Policy int

const (
	// PolicyGeneric generates lines straight from the fixed template, with no
	// counterparty involved.
	PolicyGeneric Policy = iota
	// PolicyInvoice decomposes a counterparty document into counterparty,
	// cost/revenue and VAT lines.
	PolicyInvoice
	// PolicyPointOfSale books daily takings: cash against revenue plus VAT.
	PolicyPointOfSale
	// PolicyReconciliation closes selected open items against a contra line.
	PolicyReconciliation
)

func (p Policy) String() string {
	switch p {
	case PolicyGeneric:
		return "generic"
	case PolicyInvoice:
		return "invoice"
	case PolicyPointOfSale:
		return "point-of-sale"
	case PolicyReconciliation:
		return "reconciliation"
	default:
		return "unknown"
	}
}

// RequiresCounterparty reports whether the policy needs a resolved counterparty.
func (p Policy) RequiresCounterparty() bool {
	return p != PolicyGeneric
}

// SelectPolicy validates the template and picks its generation policy.
// Violations are configuration errors: the template must be fixed before any
// entry can be generated from it.
func SelectPolicy(t Template) (Policy, error) {
	if len(t.Lines) == 0 {
		return 0, fmt.Errorf("%w: function %q has no lines", shared.ErrTemplateMisconfigured, t.Code)
	}
	searchCount := 0
	for i, line := range t.Lines {
		if line.IsSearchLine {
			searchCount++
			continue
		}
		if line.AccountID == nil {
			return 0, fmt.Errorf("%w: function %q line %d has no account", shared.ErrTemplateMisconfigured, t.Code, i)
		}
	}
	if searchCount > 1 {
		return 0, fmt.Errorf("%w: function %q has %d search lines", shared.ErrTemplateMisconfigured, t.Code, searchCount)
	}

	needsCounterparty := t.HasManagement(ManagementVAT) || t.HasManagement(ManagementOpenItems)
	if needsCounterparty && searchCount == 0 {
		return 0, fmt.Errorf("%w: function %q requires a search line", shared.ErrTemplateMisconfigured, t.Code)
	}
	if !needsCounterparty && searchCount == 0 {
		return PolicyGeneric, nil
	}

	if t.HasManagement(ManagementOpenItems) {
		if len(t.FixedLines()) < 1 {
			return 0, fmt.Errorf("%w: function %q has no contra line", shared.ErrTemplateMisconfigured, t.Code)
		}
		return PolicyReconciliation, nil
	}

	// VAT functions carry their fixed accounts positionally: receipts need
	// cash, revenue and VAT lines; invoices need cost/revenue and VAT lines.
	if t.Category == CategoryReceipts {
		if len(t.FixedLines()) < 3 {
			return 0, fmt.Errorf("%w: function %q needs cash, revenue and VAT lines", shared.ErrTemplateMisconfigured, t.Code)
		}
		return PolicyPointOfSale, nil
	}
	if len(t.FixedLines()) < 2 {
		return 0, fmt.Errorf("%w: function %q needs base and VAT lines", shared.ErrTemplateMisconfigured, t.Code)
	}
	return PolicyInvoice, nil
}

// CashLine returns the cash/bank line of a receipts function, its first fixed line.
func (t Template) CashLine() (LineTemplate, error) {
	fixed := t.FixedLines()
	if len(fixed) < 1 {
		return LineTemplate{}, fmt.Errorf("%w: function %q missing cash line", shared.ErrTemplateMisconfigured, t.Code)
	}
	return fixed[0], nil
}

// BaseLine returns the cost/revenue line of a VAT function.
func (t Template) BaseLine() (LineTemplate, error) {
	fixed := t.FixedLines()
	idx := 0
	if t.Category == CategoryReceipts {
		idx = 1
	}
	if len(fixed) <= idx {
		return LineTemplate{}, fmt.Errorf("%w: function %q missing base line", shared.ErrTemplateMisconfigured, t.Code)
	}
	return fixed[idx], nil
}

// VatLine returns the VAT account line of a VAT function.
func (t Template) VatLine() (LineTemplate, error) {
	fixed := t.FixedLines()
	idx := 1
	if t.Category == CategoryReceipts {
		idx = 2
	}
	if len(fixed) <= idx {
		return LineTemplate{}, fmt.Errorf("%w: function %q missing VAT line", shared.ErrTemplateMisconfigured, t.Code)
	}
	return fixed[idx], nil
}

// ContraLine returns the cash/bank line of a reconciliation function, its
// first fixed line.
func (t Template) ContraLine() (LineTemplate, error) {
	fixed := t.FixedLines()
	if len(fixed) < 1 {
		return LineTemplate{}, fmt.Errorf("%w: function %q missing contra line", shared.ErrTemplateMisconfigured, t.Code)
	}
	return fixed[0], nil
}
