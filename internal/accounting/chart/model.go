package chart

import "time"

// AccountKind enumerates the three chart levels (mastro/conto/sottoconto).
type AccountKind string

const (
	KindLedger     AccountKind = "LEDGER"
	KindAccount    AccountKind = "ACCOUNT"
	KindSubAccount AccountKind = "SUBACCOUNT"
)

// Nature classifies how an account behaves in entry generation.
// Empty means inherited from the nearest ancestor carrying one.
type Nature string

const (
	NatureAsset     Nature = "ASSET"
	NatureLiability Nature = "LIABILITY"
	NatureCost      Nature = "COST"
	NatureRevenue   Nature = "REVENUE"
	NatureEquity    Nature = "EQUITY"
	NatureFinancial Nature = "FINANCIAL"
)

// Role is the counterparty relationship implied by a search account's nature.
type Role string

const (
	RoleCustomer    Role = "CUSTOMER"
	RoleSupplier    Role = "SUPPLIER"
	RolePointOfSale Role = "POINT_OF_SALE"
	RoleUnsupported Role = "UNSUPPORTED"
)

// Account models a chart of accounts node.
type Account struct {
	ID        int64
	ParentID  *int64
	Code      string
	Name      string
	Kind      AccountKind
	Nature    Nature
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsLeaf reports whether the node may appear as a journal line target.
func (a Account) IsLeaf() bool {
	return a.Kind == KindSubAccount
}

// ClassifyCounterpartyRole maps a search account nature to the relationship
// filter sent to the counterparty directory. Pure function of the nature.
func ClassifyCounterpartyRole(n Nature) Role {
	switch n {
	case NatureAsset:
		return RoleCustomer
	case NatureLiability:
		return RoleSupplier
	case NatureRevenue:
		return RolePointOfSale
	default:
		return RoleUnsupported
	}
}
