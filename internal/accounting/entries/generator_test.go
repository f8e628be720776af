package entries

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/primanota-erp/primanota/internal/accounting/chart"
	"github.com/primanota-erp/primanota/internal/accounting/functions"
	"github.com/primanota-erp/primanota/internal/accounting/openitems"
	"github.com/primanota-erp/primanota/internal/accounting/shared"
	"github.com/primanota-erp/primanota/internal/accounting/vat"
	"github.com/primanota-erp/primanota/internal/masterdata/counterparties"
)

func ptr(v int64) *int64 { return &v }

func testTree(t *testing.T) *chart.Tree {
	t.Helper()
	tree, err := chart.NewTree([]chart.Account{
		{ID: 1, Code: "01", Kind: chart.KindLedger, Nature: chart.NatureAsset},
		{ID: 35, ParentID: ptr(1), Code: "01.05", Name: "Crediti clienti", Kind: chart.KindAccount},
		{ID: 351, ParentID: ptr(35), Code: "01.05.001", Name: "Cliente Rossi", Kind: chart.KindSubAccount},
		{ID: 40, ParentID: ptr(1), Code: "01.10.001", Name: "Cassa", Kind: chart.KindSubAccount},
		{ID: 60, ParentID: ptr(1), Code: "01.11.001", Name: "Banca c/c", Kind: chart.KindSubAccount},

		{ID: 2, Code: "02", Kind: chart.KindLedger, Nature: chart.NatureLiability},
		{ID: 30, ParentID: ptr(2), Code: "02.01", Name: "Debiti fornitori", Kind: chart.KindAccount},
		{ID: 301, ParentID: ptr(30), Code: "02.01.001", Name: "Fornitore Verdi", Kind: chart.KindSubAccount},
		{ID: 20, ParentID: ptr(2), Code: "02.05.001", Name: "IVA", Kind: chart.KindSubAccount},

		{ID: 3, Code: "03", Kind: chart.KindLedger, Nature: chart.NatureCost},
		{ID: 10, ParentID: ptr(3), Code: "03.01.001", Name: "Merci c/acquisti", Kind: chart.KindSubAccount},
		{ID: 90, ParentID: ptr(3), Code: "03.09.001", Name: "Spese varie", Kind: chart.KindSubAccount},

		{ID: 4, Code: "04", Kind: chart.KindLedger, Nature: chart.NatureRevenue},
		{ID: 50, ParentID: ptr(4), Code: "04.01.001", Name: "Vendite banco", Kind: chart.KindSubAccount},
		{ID: 51, ParentID: ptr(4), Code: "04.01.002", Name: "Vendite reparto", Kind: chart.KindSubAccount},

		{ID: 5, Code: "05", Kind: chart.KindLedger, Nature: chart.NatureEquity},
		{ID: 70, ParentID: ptr(5), Code: "05.01.001", Name: "Riserva", Kind: chart.KindSubAccount},
		{ID: 80, ParentID: ptr(5), Code: "05.02.001", Name: "Utile esercizio", Kind: chart.KindSubAccount},
	})
	require.NoError(t, err)
	return tree
}

func purchaseInvoiceTemplate() functions.Template {
	return functions.Template{
		ID:       1,
		Code:     "FA",
		Category: functions.CategoryInvoice,
		Lines: []functions.LineTemplate{
			{AccountID: ptr(10), Direction: functions.Debit, DefaultDescription: "Merci c/acquisti"},
			{AccountID: ptr(20), Direction: functions.Debit, DefaultDescription: "IVA acquisti"},
			{IsSearchLine: true, AccountID: ptr(30), Direction: functions.Credit},
		},
		Managements: map[functions.Management]bool{functions.ManagementVAT: true},
	}
}

func takingsTemplate() functions.Template {
	return functions.Template{
		ID:       2,
		Code:     "CORR",
		Category: functions.CategoryReceipts,
		Lines: []functions.LineTemplate{
			{AccountID: ptr(40), Direction: functions.Debit, DefaultDescription: "Cassa"},
			{AccountID: ptr(50), Direction: functions.Credit, DefaultDescription: "Vendite"},
			{AccountID: ptr(20), Direction: functions.Credit, DefaultDescription: "IVA vendite"},
			{IsSearchLine: true, AccountID: ptr(50), Direction: functions.Credit},
		},
		Managements: map[functions.Management]bool{functions.ManagementVAT: true},
	}
}

func collectionTemplate() functions.Template {
	return functions.Template{
		ID:       3,
		Code:     "INC",
		Category: functions.CategoryGeneric,
		Lines: []functions.LineTemplate{
			{AccountID: ptr(60), Direction: functions.Debit, DefaultDescription: "Banca c/c"},
			{IsSearchLine: true, AccountID: ptr(35), Direction: functions.Credit},
		},
		Managements: map[functions.Management]bool{functions.ManagementOpenItems: true},
	}
}

func transferTemplate() functions.Template {
	return functions.Template{
		ID:       4,
		Code:     "GIRO",
		Category: functions.CategoryGeneric,
		Lines: []functions.LineTemplate{
			{AccountID: ptr(70), Direction: functions.Debit, DefaultDescription: "Storno riserva"},
			{AccountID: ptr(80), Direction: functions.Credit, DefaultDescription: "Utile esercizio"},
		},
	}
}

func supplier() counterparties.Counterparty {
	return counterparties.Counterparty{ID: 7, Code: "F001", Name: "Verdi SRL", Role: chart.RoleSupplier, SubAccountID: 301}
}

func customer() counterparties.Counterparty {
	return counterparties.Counterparty{ID: 8, Code: "C001", Name: "Rossi SPA", Role: chart.RoleCustomer, SubAccountID: 351}
}

func TestGeneratorClassifiesRoleAtSelection(t *testing.T) {
	gen, err := NewGenerator(purchaseInvoiceTemplate(), testTree(t))
	require.NoError(t, err)
	assert.Equal(t, functions.PolicyInvoice, gen.Policy())
	assert.Equal(t, chart.RoleSupplier, gen.Role())
	assert.Equal(t, StateAwaitingCounterparty, gen.State())
}

func TestGeneratorRejectsUnsupportedSearchNature(t *testing.T) {
	tpl := purchaseInvoiceTemplate()
	tpl.Lines[2].AccountID = ptr(90) // cost nature has no counterparty role
	_, err := NewGenerator(tpl, testTree(t))
	require.ErrorIs(t, err, shared.ErrUnsupportedRole)
}

func TestGenerateInvoiceWithoutVat(t *testing.T) {
	gen, err := NewGenerator(purchaseInvoiceTemplate(), testTree(t))
	require.NoError(t, err)
	require.NoError(t, gen.SetCounterparty(supplier()))
	assert.Equal(t, StateVatMode, gen.State())

	breakdown := vat.Decompose([]vat.BreakdownRow{{TaxableBase: 100.00, RatePercent: 0}})
	header := DocumentHeader{DocumentTotal: 100.00, Description: "Fattura 42"}
	require.NoError(t, gen.GenerateFromVat(header, breakdown))
	assert.Equal(t, StateBalanced, gen.State())

	entry, closing, err := gen.Entry()
	require.NoError(t, err)
	assert.Empty(t, closing)
	// A zero tax amount suppresses the VAT line entirely.
	require.Len(t, entry.Lines, 2)
	assert.Equal(t, int64(301), entry.Lines[0].AccountID)
	assert.InDelta(t, 100.00, entry.Lines[0].Credit, 0.001)
	assert.Equal(t, int64(10), entry.Lines[1].AccountID)
	assert.InDelta(t, 100.00, entry.Lines[1].Debit, 0.001)
}

func TestGenerateInvoiceWithVat(t *testing.T) {
	gen, err := NewGenerator(purchaseInvoiceTemplate(), testTree(t))
	require.NoError(t, err)
	require.NoError(t, gen.SetCounterparty(supplier()))

	breakdown := vat.Decompose([]vat.BreakdownRow{{TaxableBase: 100.00, RatePercent: 22}})
	header := DocumentHeader{DocumentTotal: 122.00, Description: "Fattura 43"}
	require.NoError(t, gen.GenerateFromVat(header, breakdown))

	entry, _, err := gen.Entry()
	require.NoError(t, err)
	require.Len(t, entry.Lines, 3)
	assert.InDelta(t, 122.00, entry.Lines[0].Credit, 0.001)
	assert.InDelta(t, 100.00, entry.Lines[1].Debit, 0.001)
	assert.Equal(t, int64(20), entry.Lines[2].AccountID)
	assert.InDelta(t, 22.00, entry.Lines[2].Debit, 0.001)

	debit, credit := Totals(entry.Lines)
	assert.InDelta(t, debit, credit, BalanceTolerance)
}

func TestGenerateInvoiceDiscrepancyStaysEditable(t *testing.T) {
	gen, err := NewGenerator(purchaseInvoiceTemplate(), testTree(t))
	require.NoError(t, err)
	require.NoError(t, gen.SetCounterparty(supplier()))

	breakdown := vat.Decompose([]vat.BreakdownRow{{TaxableBase: 100.00, RatePercent: 10}})
	header := DocumentHeader{DocumentTotal: 120.00}
	err = gen.GenerateFromVat(header, breakdown)
	require.ErrorIs(t, err, shared.ErrCannotGenerate)
	assert.InDelta(t, 10.00, float64(gen.Discrepancy()), 0.001)
	assert.Equal(t, StateVatMode, gen.State())

	// The corrected breakdown goes through on the same generator.
	breakdown = vat.Decompose([]vat.BreakdownRow{{TaxableBase: 100.00, RatePercent: 20}})
	require.NoError(t, gen.GenerateFromVat(header, breakdown))
	assert.Equal(t, StateBalanced, gen.State())
}

func TestGeneratePointOfSaleTakings(t *testing.T) {
	gen, err := NewGenerator(takingsTemplate(), testTree(t))
	require.NoError(t, err)
	assert.Equal(t, functions.PolicyPointOfSale, gen.Policy())
	assert.Equal(t, chart.RolePointOfSale, gen.Role())

	pos := counterparties.Counterparty{ID: 9, Code: "P001", Name: "Cassa 1", Role: chart.RolePointOfSale, SubAccountID: 50}
	require.NoError(t, gen.SetCounterparty(pos))

	breakdown := vat.Decompose([]vat.BreakdownRow{{TaxableBase: 100.00, RatePercent: 22}})
	header := DocumentHeader{DocumentTotal: 122.00, Description: "Corrispettivi 01/09"}
	require.NoError(t, gen.GenerateFromVat(header, breakdown))

	entry, _, err := gen.Entry()
	require.NoError(t, err)
	require.Len(t, entry.Lines, 3)
	assert.Equal(t, int64(40), entry.Lines[0].AccountID)
	assert.InDelta(t, 122.00, entry.Lines[0].Debit, 0.001)
	assert.Equal(t, int64(50), entry.Lines[1].AccountID)
	assert.InDelta(t, 100.00, entry.Lines[1].Credit, 0.001)
	assert.InDelta(t, 22.00, entry.Lines[2].Credit, 0.001)
}

func TestGeneratePointOfSaleRevenueOverride(t *testing.T) {
	gen, err := NewGenerator(takingsTemplate(), testTree(t))
	require.NoError(t, err)

	pos := counterparties.Counterparty{ID: 9, Role: chart.RolePointOfSale, SubAccountID: 50, SubAccountOverrideID: ptr(51)}
	require.NoError(t, gen.SetCounterparty(pos))

	breakdown := vat.Decompose([]vat.BreakdownRow{{TaxableBase: 50.00, RatePercent: 0}})
	require.NoError(t, gen.GenerateFromVat(DocumentHeader{DocumentTotal: 50.00}, breakdown))

	entry, _, err := gen.Entry()
	require.NoError(t, err)
	require.Len(t, entry.Lines, 2)
	assert.Equal(t, int64(51), entry.Lines[1].AccountID, "override sub-account books the revenue")
}

func TestGenerateReconciliation(t *testing.T) {
	gen, err := NewGenerator(collectionTemplate(), testTree(t))
	require.NoError(t, err)
	assert.Equal(t, functions.PolicyReconciliation, gen.Policy())
	assert.Equal(t, chart.RoleCustomer, gen.Role())

	require.NoError(t, gen.SetCounterparty(customer()))
	assert.Equal(t, StateReconciliationMode, gen.State())

	selected := []openitems.OpenItem{
		{ID: 1, SubAccountID: 351, CounterpartyID: 8, Amount: 50.00, Origin: openitems.CreditOpening, Status: openitems.StatusOpen},
		{ID: 2, SubAccountID: 351, CounterpartyID: 8, Amount: 30.00, Origin: openitems.CreditOpening, Status: openitems.StatusOpen},
	}
	require.NoError(t, gen.GenerateFromOpenItems(DocumentHeader{Description: "Incasso"}, selected))

	entry, closing, err := gen.Entry()
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, closing)
	require.Len(t, entry.Lines, 3)
	assert.InDelta(t, 50.00, entry.Lines[0].Credit, 0.001)
	assert.InDelta(t, 30.00, entry.Lines[1].Credit, 0.001)
	assert.Equal(t, int64(60), entry.Lines[2].AccountID)
	assert.InDelta(t, 80.00, entry.Lines[2].Debit, 0.001)
}

func TestGenerateReconciliationEmptySelection(t *testing.T) {
	gen, err := NewGenerator(collectionTemplate(), testTree(t))
	require.NoError(t, err)
	require.NoError(t, gen.SetCounterparty(customer()))

	err = gen.GenerateFromOpenItems(DocumentHeader{}, nil)
	require.ErrorIs(t, err, shared.ErrNoItemsSelected)
}

func TestGenerateGeneric(t *testing.T) {
	gen, err := NewGenerator(transferTemplate(), testTree(t))
	require.NoError(t, err)
	assert.Equal(t, functions.PolicyGeneric, gen.Policy())
	assert.Equal(t, StateFunctionSelected, gen.State())

	require.NoError(t, gen.GenerateGeneric(DocumentHeader{DocumentTotal: 250.00, Description: "Giroconto"}))

	entry, closing, err := gen.Entry()
	require.NoError(t, err)
	assert.Empty(t, closing)
	require.Len(t, entry.Lines, 2)
	assert.InDelta(t, 250.00, entry.Lines[0].Debit, 0.001)
	assert.InDelta(t, 250.00, entry.Lines[1].Credit, 0.001)
}

func TestGenerateGenericRejectsNonPositiveTotal(t *testing.T) {
	gen, err := NewGenerator(transferTemplate(), testTree(t))
	require.NoError(t, err)
	require.ErrorIs(t, gen.GenerateGeneric(DocumentHeader{DocumentTotal: 0}), shared.ErrCannotGenerate)
}

func TestGenerateGenericSingleLineUnbalanced(t *testing.T) {
	tpl := transferTemplate()
	tpl.Lines = tpl.Lines[:1]
	gen, err := NewGenerator(tpl, testTree(t))
	require.NoError(t, err)

	err = gen.GenerateGeneric(DocumentHeader{DocumentTotal: 100.00})
	require.ErrorIs(t, err, shared.ErrTooFewLines)
	assert.Equal(t, StateFunctionSelected, gen.State(), "failed generation returns to the editable state")

	_, _, err = gen.Entry()
	require.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestGenerateFailureStaysReEditable(t *testing.T) {
	gen, err := NewGenerator(collectionTemplate(), testTree(t))
	require.NoError(t, err)
	require.NoError(t, gen.SetCounterparty(customer()))

	// A selection pointing at an account-level node fails validation.
	badSelection := []openitems.OpenItem{
		{ID: 1, SubAccountID: 35, CounterpartyID: 8, Amount: 50.00, Origin: openitems.CreditOpening, Status: openitems.StatusOpen},
	}
	err = gen.GenerateFromOpenItems(DocumentHeader{Description: "Incasso"}, badSelection)
	require.ErrorIs(t, err, shared.ErrNotLeafAccount)
	assert.Equal(t, StateReconciliationMode, gen.State())

	// The same generator accepts a corrected selection.
	goodSelection := []openitems.OpenItem{
		{ID: 1, SubAccountID: 351, CounterpartyID: 8, Amount: 50.00, Origin: openitems.CreditOpening, Status: openitems.StatusOpen},
	}
	require.NoError(t, gen.GenerateFromOpenItems(DocumentHeader{Description: "Incasso"}, goodSelection))

	entry, closing, err := gen.Entry()
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, closing)
	require.Len(t, entry.Lines, 2)
}

func TestGenerateRejectsNonLeafAccount(t *testing.T) {
	tpl := transferTemplate()
	tpl.Lines[0].AccountID = ptr(35) // an account-level node, not a sub-account
	gen, err := NewGenerator(tpl, testTree(t))
	require.NoError(t, err)

	err = gen.GenerateGeneric(DocumentHeader{DocumentTotal: 100.00})
	require.ErrorIs(t, err, shared.ErrNotLeafAccount)
}

func TestSetCounterpartyGuards(t *testing.T) {
	gen, err := NewGenerator(transferTemplate(), testTree(t))
	require.NoError(t, err)
	// Generic entries never take a counterparty.
	require.ErrorIs(t, gen.SetCounterparty(customer()), shared.ErrInvalidState)

	gen, err = NewGenerator(purchaseInvoiceTemplate(), testTree(t))
	require.NoError(t, err)
	cp := supplier()
	cp.SubAccountID = 0
	require.ErrorIs(t, gen.SetCounterparty(cp), shared.ErrMissingSubAccount)
}

func TestValidateLinesInvariants(t *testing.T) {
	balanced := []JournalLine{
		{AccountID: 10, Debit: 100},
		{AccountID: 20, Credit: 100},
	}
	require.NoError(t, ValidateLines(balanced))

	require.ErrorIs(t, ValidateLines(balanced[:1]), shared.ErrTooFewLines)

	unbalanced := []JournalLine{
		{AccountID: 10, Debit: 100},
		{AccountID: 20, Credit: 90},
	}
	require.ErrorIs(t, ValidateLines(unbalanced), shared.ErrUnbalanced)

	bothSides := []JournalLine{
		{AccountID: 10, Debit: 100, Credit: 100},
		{AccountID: 20, Credit: 100},
	}
	require.Error(t, ValidateLines(bothSides))

	zeroMovement := []JournalLine{
		{AccountID: 10, Debit: 0},
		{AccountID: 20, Credit: 0},
	}
	require.Error(t, ValidateLines(zeroMovement))
}
