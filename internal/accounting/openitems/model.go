package openitems

import (
	"fmt"
	"time"

	"github.com/primanota-erp/primanota/internal/accounting/chart"
	"github.com/primanota-erp/primanota/internal/accounting/shared"
)

// Origin marks which side the originating movement opened.
type Origin string

const (
	// CreditOpening is a receivable awaiting collection.
	CreditOpening Origin = "CREDIT_OPENING"
	// DebitOpening is a payable awaiting settlement.
	DebitOpening Origin = "DEBIT_OPENING"
)

// Status is the open-item lifecycle. Items are never deleted, only closed.
type Status string

const (
	StatusOpen   Status = "OPEN"
	StatusClosed Status = "CLOSED"
)

// OpenItem is an outstanding receivable or payable.
type OpenItem struct {
	ID             int64
	SubAccountID   int64
	CounterpartyID int64
	Amount         float64
	DueDate        time.Time
	Origin         Origin
	Status         Status
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ExpectedOrigin derives the origin filter from the counterparty role:
// customers settle receivables, suppliers settle payables.
func ExpectedOrigin(role chart.Role) (Origin, error) {
	switch role {
	case chart.RoleCustomer:
		return CreditOpening, nil
	case chart.RoleSupplier:
		return DebitOpening, nil
	default:
		return "", fmt.Errorf("%w: role %s has no open-item origin", shared.ErrUnsupportedRole, role)
	}
}

// AgingBucket summarises open amounts by days overdue.
type AgingBucket struct {
	Current   float64 `json:"current"`
	Bucket30  float64 `json:"bucket_30"`
	Bucket60  float64 `json:"bucket_60"`
	Bucket90  float64 `json:"bucket_90"`
	Bucket120 float64 `json:"bucket_120"`
}
