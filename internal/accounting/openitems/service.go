package openitems

import (
	"context"
	"errors"
	"time"

	"github.com/primanota-erp/primanota/internal/accounting/chart"
)

// Service exposes open-item selection for reconciliation screens.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// FetchOpenItems lists settleable items for a counterparty, filtered by the
// origin its role implies.
func (s *Service) FetchOpenItems(ctx context.Context, counterpartyID int64, role chart.Role) ([]OpenItem, error) {
	if counterpartyID <= 0 {
		return nil, errors.New("openitems: counterparty ID required")
	}
	origin, err := ExpectedOrigin(role)
	if err != nil {
		return nil, err
	}
	return s.repo.ListOpen(ctx, counterpartyID, origin)
}

// CalculateAging groups outstanding items by days overdue.
func (s *Service) CalculateAging(ctx context.Context, asOf time.Time) (AgingBucket, error) {
	items, err := s.repo.ListOutstanding(ctx)
	if err != nil {
		return AgingBucket{}, err
	}
	if asOf.IsZero() {
		asOf = time.Now()
	}
	var bucket AgingBucket
	for _, item := range items {
		days := int(asOf.Sub(item.DueDate).Hours() / 24)
		switch {
		case days <= 0:
			bucket.Current += item.Amount
		case days <= 30:
			bucket.Bucket30 += item.Amount
		case days <= 60:
			bucket.Bucket60 += item.Amount
		case days <= 90:
			bucket.Bucket90 += item.Amount
		default:
			bucket.Bucket120 += item.Amount
		}
	}
	return bucket, nil
}
