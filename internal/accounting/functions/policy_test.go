package functions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/primanota-erp/primanota/internal/accounting/shared"
)

func ptr(v int64) *int64 { return &v }

func invoiceTemplate() Template {
	return Template{
		ID:       1,
		Code:     "FA",
		Name:     "Fattura acquisto",
		Category: CategoryInvoice,
		Lines: []LineTemplate{
			{AccountID: ptr(10), Direction: Debit, DefaultDescription: "Costo merci"},
			{AccountID: ptr(20), Direction: Debit, DefaultDescription: "IVA acquisti"},
			{IsSearchLine: true, AccountID: ptr(30), Direction: Credit},
		},
		Managements: map[Management]bool{ManagementVAT: true},
	}
}

func receiptsTemplate() Template {
	return Template{
		ID:       2,
		Code:     "CORR",
		Name:     "Corrispettivi",
		Category: CategoryReceipts,
		Lines: []LineTemplate{
			{AccountID: ptr(40), Direction: Debit, DefaultDescription: "Cassa"},
			{AccountID: ptr(50), Direction: Credit, DefaultDescription: "Vendite"},
			{AccountID: ptr(20), Direction: Credit, DefaultDescription: "IVA vendite"},
			{IsSearchLine: true, AccountID: ptr(50), Direction: Credit},
		},
		Managements: map[Management]bool{ManagementVAT: true},
	}
}

func reconciliationTemplate() Template {
	return Template{
		ID:       3,
		Code:     "INC",
		Name:     "Incasso cliente",
		Category: CategoryGeneric,
		Lines: []LineTemplate{
			{AccountID: ptr(60), Direction: Debit, DefaultDescription: "Banca c/c"},
			{IsSearchLine: true, AccountID: ptr(30), Direction: Credit},
		},
		Managements: map[Management]bool{ManagementOpenItems: true},
	}
}

func genericTemplate() Template {
	return Template{
		ID:       4,
		Code:     "GIRO",
		Name:     "Giroconto",
		Category: CategoryGeneric,
		Lines: []LineTemplate{
			{AccountID: ptr(70), Direction: Debit},
			{AccountID: ptr(80), Direction: Credit},
		},
	}
}

func TestSelectPolicyMatrix(t *testing.T) {
	cases := []struct {
		name string
		tpl  Template
		want Policy
	}{
		{"generic fixed allocation", genericTemplate(), PolicyGeneric},
		{"invoice with VAT", invoiceTemplate(), PolicyInvoice},
		{"daily takings", receiptsTemplate(), PolicyPointOfSale},
		{"open item settlement", reconciliationTemplate(), PolicyReconciliation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := SelectPolicy(tc.tpl)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestSelectPolicyMisconfigurations(t *testing.T) {
	t.Run("no lines", func(t *testing.T) {
		_, err := SelectPolicy(Template{Code: "X"})
		require.ErrorIs(t, err, shared.ErrTemplateMisconfigured)
	})

	t.Run("fixed line without account", func(t *testing.T) {
		tpl := genericTemplate()
		tpl.Lines[0].AccountID = nil
		_, err := SelectPolicy(tpl)
		require.ErrorIs(t, err, shared.ErrTemplateMisconfigured)
	})

	t.Run("two search lines", func(t *testing.T) {
		tpl := invoiceTemplate()
		tpl.Lines = append(tpl.Lines, LineTemplate{IsSearchLine: true, AccountID: ptr(30), Direction: Credit})
		_, err := SelectPolicy(tpl)
		require.ErrorIs(t, err, shared.ErrTemplateMisconfigured)
	})

	t.Run("management without search line", func(t *testing.T) {
		tpl := genericTemplate()
		tpl.Managements = map[Management]bool{ManagementVAT: true}
		_, err := SelectPolicy(tpl)
		require.ErrorIs(t, err, shared.ErrTemplateMisconfigured)
	})

	t.Run("receipts missing VAT line", func(t *testing.T) {
		tpl := receiptsTemplate()
		tpl.Lines = tpl.Lines[:2]
		tpl.Lines = append(tpl.Lines, LineTemplate{IsSearchLine: true, AccountID: ptr(50), Direction: Credit})
		_, err := SelectPolicy(tpl)
		require.ErrorIs(t, err, shared.ErrTemplateMisconfigured)
	})

	t.Run("invoice missing VAT line", func(t *testing.T) {
		tpl := invoiceTemplate()
		tpl.Lines = []LineTemplate{
			tpl.Lines[0],
			{IsSearchLine: true, AccountID: ptr(30), Direction: Credit},
		}
		_, err := SelectPolicy(tpl)
		require.ErrorIs(t, err, shared.ErrTemplateMisconfigured)
	})
}

func TestRequiresCounterparty(t *testing.T) {
	assert.False(t, PolicyGeneric.RequiresCounterparty())
	assert.True(t, PolicyInvoice.RequiresCounterparty())
	assert.True(t, PolicyPointOfSale.RequiresCounterparty())
	assert.True(t, PolicyReconciliation.RequiresCounterparty())
}

func TestPositionalAccessors(t *testing.T) {
	inv := invoiceTemplate()
	base, err := inv.BaseLine()
	require.NoError(t, err)
	assert.Equal(t, int64(10), *base.AccountID)
	vat, err := inv.VatLine()
	require.NoError(t, err)
	assert.Equal(t, int64(20), *vat.AccountID)

	rec := receiptsTemplate()
	cash, err := rec.CashLine()
	require.NoError(t, err)
	assert.Equal(t, int64(40), *cash.AccountID)
	base, err = rec.BaseLine()
	require.NoError(t, err)
	assert.Equal(t, int64(50), *base.AccountID)
	vat, err = rec.VatLine()
	require.NoError(t, err)
	assert.Equal(t, int64(20), *vat.AccountID)

	contra, err := reconciliationTemplate().ContraLine()
	require.NoError(t, err)
	assert.Equal(t, int64(60), *contra.AccountID)
}
