package counterparties

import (
	"time"

	"github.com/primanota-erp/primanota/internal/accounting/chart"
)

// Counterparty is a directory record: a customer, supplier or sales point.
// SubAccountID is the ledger sub-account its movements book to;
// SubAccountOverrideID, when set, takes precedence during entry generation.
type Counterparty struct {
	ID                   int64      `json:"id" db:"id"`
	Code                 string     `json:"code" db:"code"`
	Name                 string     `json:"name" db:"name"`
	Role                 chart.Role `json:"role" db:"role"`
	SubAccountID         int64      `json:"sub_account_id" db:"sub_account_id"`
	SubAccountOverrideID *int64     `json:"sub_account_override_id,omitempty" db:"sub_account_override_id"`
	TaxID                *string    `json:"tax_id,omitempty" db:"tax_id"`
	Email                *string    `json:"email,omitempty" db:"email"`
	PaymentTermsDays     int        `json:"payment_terms_days" db:"payment_terms_days"`
	IsActive             bool       `json:"is_active" db:"is_active"`
	CreatedAt            time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at" db:"updated_at"`
}

// EffectiveSubAccount returns the sub-account entry generation should target.
func (c Counterparty) EffectiveSubAccount() int64 {
	if c.SubAccountOverrideID != nil && *c.SubAccountOverrideID != 0 {
		return *c.SubAccountOverrideID
	}
	return c.SubAccountID
}
