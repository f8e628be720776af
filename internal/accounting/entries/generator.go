package entries

import (
	"fmt"

	"github.com/primanota-erp/primanota/internal/accounting/chart"
	"github.com/primanota-erp/primanota/internal/accounting/functions"
	"github.com/primanota-erp/primanota/internal/accounting/openitems"
	"github.com/primanota-erp/primanota/internal/accounting/shared"
	"github.com/primanota-erp/primanota/internal/accounting/vat"
	"github.com/primanota-erp/primanota/internal/masterdata/counterparties"
)

// Generator drives one in-progress registration through the generation
// protocol. It is a pure computation over inputs the caller already fetched:
// it performs no I/O and holds no shared mutable state, so distinct entries
// may be generated concurrently.
type Generator struct {
	template     functions.Template
	policy       functions.Policy
	tree         *chart.Tree
	state        State
	role         chart.Role
	counterparty *counterparties.Counterparty
	header       DocumentHeader
	vatRows      []vat.BreakdownRow
	discrepancy  vat.Discrepancy
	lines        []JournalLine
	closing      []int64
}

// NewGenerator selects the template's policy and, when counterpart resolution
// is required, classifies the counterparty role from the search account's
// nature. Both happen exactly once, at function-selection time.
func NewGenerator(tpl functions.Template, tree *chart.Tree) (*Generator, error) {
	policy, err := functions.SelectPolicy(tpl)
	if err != nil {
		return nil, err
	}
	g := &Generator{template: tpl, policy: policy, tree: tree, state: StateFunctionSelected}
	if !policy.RequiresCounterparty() {
		return g, nil
	}

	search, ok := tpl.SearchLine()
	if !ok || search.AccountID == nil {
		return nil, fmt.Errorf("%w: function %q search line has no search account", shared.ErrTemplateMisconfigured, tpl.Code)
	}
	nature, err := tree.ResolveNature(*search.AccountID)
	if err != nil {
		return nil, err
	}
	role := chart.ClassifyCounterpartyRole(nature)
	if role == chart.RoleUnsupported {
		return nil, fmt.Errorf("%w: search account nature %s", shared.ErrUnsupportedRole, nature)
	}
	g.role = role
	g.state = StateAwaitingCounterparty
	return g, nil
}

// State returns the current protocol state.
func (g *Generator) State() State { return g.state }

// Policy returns the generation policy selected for the template.
func (g *Generator) Policy() functions.Policy { return g.policy }

// Role returns the counterparty role derived from the search account.
func (g *Generator) Role() chart.Role { return g.role }

// Discrepancy reports the last VAT validation result.
func (g *Generator) Discrepancy() vat.Discrepancy { return g.discrepancy }

// SetCounterparty resolves the search line against a directory record and
// enters VAT or reconciliation mode depending on the policy.
func (g *Generator) SetCounterparty(cp counterparties.Counterparty) error {
	if g.state != StateAwaitingCounterparty {
		return fmt.Errorf("%w: counterparty set in state %s", shared.ErrInvalidState, g.state)
	}
	if cp.EffectiveSubAccount() == 0 {
		return fmt.Errorf("%w: counterparty %d", shared.ErrMissingSubAccount, cp.ID)
	}
	g.counterparty = &cp
	if g.policy == functions.PolicyReconciliation {
		g.state = StateReconciliationMode
	} else {
		g.state = StateVatMode
	}
	return nil
}

// GenerateGeneric books the fixed template lines for the document total.
// This is the terminal simple path for non-counterparty entries.
func (g *Generator) GenerateGeneric(header DocumentHeader) error {
	if g.policy != functions.PolicyGeneric || g.state != StateFunctionSelected {
		return fmt.Errorf("%w: generic generation in state %s", shared.ErrInvalidState, g.state)
	}
	if header.DocumentTotal <= 0 {
		return fmt.Errorf("%w: document total must be positive", shared.ErrCannotGenerate)
	}
	lines := make([]JournalLine, 0, len(g.template.Lines))
	for _, tplLine := range g.template.FixedLines() {
		lines = append(lines, directedLine(*tplLine.AccountID, describe(tplLine.DefaultDescription, header.Description), tplLine.Direction, header.DocumentTotal))
	}
	return g.finalize(header, lines, nil, nil)
}

// GenerateFromVat decomposes the document into counterparty, cost/revenue and
// VAT lines. The breakdown must reconcile with the document total first; on a
// discrepancy the generator stays re-editable in VAT mode.
func (g *Generator) GenerateFromVat(header DocumentHeader, breakdown vat.Breakdown) error {
	if g.state != StateVatMode {
		return fmt.Errorf("%w: VAT generation in state %s", shared.ErrInvalidState, g.state)
	}
	discrepancy, err := vat.Validate(breakdown, header.DocumentTotal)
	g.discrepancy = discrepancy
	if err != nil {
		return err
	}

	var lines []JournalLine
	switch g.policy {
	case functions.PolicyInvoice:
		lines, err = g.invoiceLines(header, breakdown)
	case functions.PolicyPointOfSale:
		lines, err = g.pointOfSaleLines(header, breakdown)
	default:
		err = fmt.Errorf("%w: policy %s cannot generate from VAT", shared.ErrInvalidState, g.policy)
	}
	if err != nil {
		return err
	}
	return g.finalize(header, lines, breakdown.Rows, nil)
}

// invoiceLines books the counterparty for the document total in the search
// direction, the cost/revenue base opposite, and the VAT amount alongside the
// base when present.
func (g *Generator) invoiceLines(header DocumentHeader, breakdown vat.Breakdown) ([]JournalLine, error) {
	search, _ := g.template.SearchLine()
	base, err := g.template.BaseLine()
	if err != nil {
		return nil, err
	}
	baseDir := search.Direction.Opposite()

	lines := []JournalLine{
		directedLine(g.counterparty.EffectiveSubAccount(), describe(search.DefaultDescription, header.Description), search.Direction, header.DocumentTotal),
		directedLine(*base.AccountID, describe(base.DefaultDescription, header.Description), baseDir, breakdown.TotalTaxable),
	}
	if breakdown.TotalTax > 0 {
		vatLine, err := g.template.VatLine()
		if err != nil {
			return nil, err
		}
		lines = append(lines, directedLine(*vatLine.AccountID, describe(vatLine.DefaultDescription, header.Description), baseDir, breakdown.TotalTax))
	}
	return lines, nil
}

// pointOfSaleLines books daily takings: cash in for the gross total, revenue
// and VAT out. The revenue account prefers a counterparty-specific override.
func (g *Generator) pointOfSaleLines(header DocumentHeader, breakdown vat.Breakdown) ([]JournalLine, error) {
	cash, err := g.template.CashLine()
	if err != nil {
		return nil, err
	}
	base, err := g.template.BaseLine()
	if err != nil {
		return nil, err
	}
	revenueAccount := *base.AccountID
	if g.counterparty != nil && g.counterparty.SubAccountOverrideID != nil && *g.counterparty.SubAccountOverrideID != 0 {
		revenueAccount = *g.counterparty.SubAccountOverrideID
	}

	lines := []JournalLine{
		directedLine(*cash.AccountID, describe(cash.DefaultDescription, header.Description), functions.Debit, header.DocumentTotal),
		directedLine(revenueAccount, describe(base.DefaultDescription, header.Description), functions.Credit, breakdown.TotalTaxable),
	}
	if breakdown.TotalTax > 0 {
		vatLine, err := g.template.VatLine()
		if err != nil {
			return nil, err
		}
		lines = append(lines, directedLine(*vatLine.AccountID, describe(vatLine.DefaultDescription, header.Description), functions.Credit, breakdown.TotalTax))
	}
	return lines, nil
}

// GenerateFromOpenItems closes the selected items against the template's
// contra line and records their ids for the atomic commit.
func (g *Generator) GenerateFromOpenItems(header DocumentHeader, selected []openitems.OpenItem) error {
	if g.state != StateReconciliationMode {
		return fmt.Errorf("%w: reconciliation in state %s", shared.ErrInvalidState, g.state)
	}
	contra, err := g.template.ContraLine()
	if err != nil {
		return err
	}
	reconciling, err := openitems.BuildReconcilingLines(selected, contra)
	if err != nil {
		return err
	}
	lines := make([]JournalLine, 0, len(reconciling))
	for _, rl := range reconciling {
		lines = append(lines, JournalLine{
			AccountID:   rl.AccountID,
			Description: describe(rl.Description, header.Description),
			Debit:       rl.Debit,
			Credit:      rl.Credit,
		})
	}
	closing := make([]int64, 0, len(selected))
	for _, item := range selected {
		closing = append(closing, item.ID)
	}
	return g.finalize(header, lines, nil, closing)
}

// finalize enters LinesGenerated, re-checks every invariant and, only when
// all hold, moves to Balanced. On failure the staged lines are discarded and
// the generator returns to its pre-generation state, re-editable.
func (g *Generator) finalize(header DocumentHeader, lines []JournalLine, vatRows []vat.BreakdownRow, closing []int64) error {
	prior := g.state
	g.header = header
	g.lines = lines
	g.vatRows = vatRows
	g.closing = closing
	g.state = StateLinesGenerated

	if err := g.checkFinal(lines); err != nil {
		g.lines = nil
		g.vatRows = nil
		g.closing = nil
		g.state = prior
		return err
	}
	g.state = StateBalanced
	return nil
}

func (g *Generator) checkFinal(lines []JournalLine) error {
	for _, line := range lines {
		acc, err := g.tree.Get(line.AccountID)
		if err != nil {
			return err
		}
		if !acc.IsLeaf() {
			return fmt.Errorf("%w: account %s (%s)", shared.ErrNotLeafAccount, acc.Code, acc.Kind)
		}
	}
	return ValidateLines(lines)
}

// Entry returns the balanced entry and the open item ids to close. Only
// available once Balanced; committing is the persistence boundary's job.
func (g *Generator) Entry() (JournalEntry, []int64, error) {
	if g.state != StateBalanced {
		return JournalEntry{}, nil, fmt.Errorf("%w: entry requested in state %s", shared.ErrInvalidState, g.state)
	}
	return JournalEntry{Header: g.header, Lines: g.lines, VatRows: g.vatRows}, g.closing, nil
}

// MarkCommitted records the terminal transition after a successful commit.
func (g *Generator) MarkCommitted() {
	g.state = StateCommitted
}

func directedLine(accountID int64, description string, dir functions.Direction, amount float64) JournalLine {
	line := JournalLine{AccountID: accountID, Description: description}
	if dir == functions.Debit {
		line.Debit = amount
	} else {
		line.Credit = amount
	}
	return line
}

func describe(templateDescription, headerDescription string) string {
	if templateDescription != "" {
		return templateDescription
	}
	return headerDescription
}
