package chart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/primanota-erp/primanota/internal/accounting/shared"
)

func ptr(v int64) *int64 { return &v }

func testAccounts() []Account {
	return []Account{
		{ID: 1, Code: "01", Name: "Crediti", Kind: KindLedger, Nature: NatureAsset},
		{ID: 2, ParentID: ptr(1), Code: "01.01", Name: "Crediti clienti", Kind: KindAccount},
		{ID: 3, ParentID: ptr(2), Code: "01.01.001", Name: "Cliente Rossi", Kind: KindSubAccount},
		{ID: 4, ParentID: ptr(2), Code: "01.01.002", Name: "Cliente Bianchi", Kind: KindSubAccount},
		{ID: 5, Code: "02", Name: "Debiti", Kind: KindLedger, Nature: NatureLiability},
		{ID: 6, ParentID: ptr(5), Code: "02.01", Name: "Fornitori", Kind: KindAccount},
		{ID: 7, ParentID: ptr(6), Code: "02.01.001", Name: "Fornitore Verdi", Kind: KindSubAccount},
		{ID: 8, Code: "03", Name: "Orfano", Kind: KindLedger},
		{ID: 9, ParentID: ptr(8), Code: "03.01.001", Name: "Senza natura", Kind: KindSubAccount},
		{ID: 10, Code: "04", Name: "Ricavi", Kind: KindLedger, Nature: NatureRevenue},
		{ID: 11, ParentID: ptr(10), Code: "04.01.001", Name: "Vendite banco", Kind: KindSubAccount, Nature: NatureRevenue},
	}
}

func TestNewTreeRejectsDuplicateIDs(t *testing.T) {
	_, err := NewTree([]Account{
		{ID: 1, Code: "01", Kind: KindLedger},
		{ID: 1, Code: "02", Kind: KindLedger},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestNewTreeRejectsMissingParent(t *testing.T) {
	_, err := NewTree([]Account{
		{ID: 1, ParentID: ptr(99), Code: "01.01", Kind: KindAccount},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing parent")
}

func TestNewTreeRejectsCyclicParents(t *testing.T) {
	_, err := NewTree([]Account{
		{ID: 1, ParentID: ptr(2), Code: "01", Kind: KindAccount},
		{ID: 2, ParentID: ptr(1), Code: "02", Kind: KindAccount},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cyclic parent chain")

	// A longer cycle reachable from an acyclic branch fails too.
	_, err = NewTree([]Account{
		{ID: 1, ParentID: ptr(3), Code: "01", Kind: KindAccount},
		{ID: 2, ParentID: ptr(1), Code: "01.01", Kind: KindAccount},
		{ID: 3, ParentID: ptr(2), Code: "01.02", Kind: KindAccount},
		{ID: 4, ParentID: ptr(1), Code: "01.01.001", Kind: KindSubAccount},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cyclic parent chain")
}

func TestResolveNatureInherits(t *testing.T) {
	tree, err := NewTree(testAccounts())
	require.NoError(t, err)

	// Nature declared two levels up.
	nature, err := tree.ResolveNature(3)
	require.NoError(t, err)
	assert.Equal(t, NatureAsset, nature)

	nature, err = tree.ResolveNature(7)
	require.NoError(t, err)
	assert.Equal(t, NatureLiability, nature)

	// Explicit nature wins without walking up.
	nature, err = tree.ResolveNature(11)
	require.NoError(t, err)
	assert.Equal(t, NatureRevenue, nature)
}

func TestResolveNatureOrphan(t *testing.T) {
	tree, err := NewTree(testAccounts())
	require.NoError(t, err)

	_, err = tree.ResolveNature(9)
	require.ErrorIs(t, err, shared.ErrOrphanedNature)
}

func TestResolveNatureUnknownAccount(t *testing.T) {
	tree, err := NewTree(testAccounts())
	require.NoError(t, err)

	_, err = tree.ResolveNature(999)
	require.ErrorIs(t, err, shared.ErrAccountNotFound)
}

func TestLeafDescendants(t *testing.T) {
	tree, err := NewTree(testAccounts())
	require.NoError(t, err)

	leaves, err := tree.LeafDescendants(1)
	require.NoError(t, err)
	require.Len(t, leaves, 2)
	assert.Equal(t, "01.01.001", leaves[0].Code)
	assert.Equal(t, "01.01.002", leaves[1].Code)

	// A sub-account is its own only leaf.
	leaves, err = tree.LeafDescendants(3)
	require.NoError(t, err)
	require.Len(t, leaves, 1)
	assert.Equal(t, int64(3), leaves[0].ID)

	_, err = tree.LeafDescendants(999)
	require.ErrorIs(t, err, shared.ErrAccountNotFound)
}

func TestFlattenDepthAndOrder(t *testing.T) {
	tree, err := NewTree(testAccounts())
	require.NoError(t, err)

	flat := tree.Flatten()
	require.Len(t, flat, tree.Len())

	assert.Equal(t, "01", flat[0].Code)
	assert.Equal(t, 0, flat[0].Depth)
	assert.Equal(t, "01.01", flat[1].Code)
	assert.Equal(t, 1, flat[1].Depth)
	assert.Equal(t, "01.01.001", flat[2].Code)
	assert.Equal(t, 2, flat[2].Depth)

	// Resolved nature is carried onto inherited nodes.
	assert.Equal(t, NatureAsset, flat[2].Nature)
}

func TestClassifyCounterpartyRole(t *testing.T) {
	assert.Equal(t, RoleCustomer, ClassifyCounterpartyRole(NatureAsset))
	assert.Equal(t, RoleSupplier, ClassifyCounterpartyRole(NatureLiability))
	assert.Equal(t, RolePointOfSale, ClassifyCounterpartyRole(NatureRevenue))
	assert.Equal(t, RoleUnsupported, ClassifyCounterpartyRole(NatureCost))
	assert.Equal(t, RoleUnsupported, ClassifyCounterpartyRole(NatureEquity))
	assert.Equal(t, RoleUnsupported, ClassifyCounterpartyRole(""))

	// Classification is a pure function: repeated calls cannot drift.
	for i := 0; i < 3; i++ {
		assert.Equal(t, RoleCustomer, ClassifyCounterpartyRole(NatureAsset))
	}
}
