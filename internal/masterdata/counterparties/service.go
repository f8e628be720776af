package counterparties

import (
	"context"

	"github.com/primanota-erp/primanota/internal/accounting/chart"
	"github.com/primanota-erp/primanota/internal/masterdata/shared"
)

// Service is the counterparty directory consumed by entry generation.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Query lists active counterparties matching the role derived from a search
// account's nature.
func (s *Service) Query(ctx context.Context, role chart.Role, filters shared.ListFilters) ([]Counterparty, error) {
	if role == chart.RoleUnsupported || role == "" {
		return nil, shared.ErrValidation
	}
	return s.repo.ListByRole(ctx, role, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Counterparty, error) {
	if id <= 0 {
		return Counterparty{}, shared.ErrInvalidID
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, cp Counterparty) (Counterparty, error) {
	if err := s.validate(cp); err != nil {
		return Counterparty{}, err
	}
	return s.repo.Create(ctx, cp)
}

func (s *Service) Update(ctx context.Context, id int64, cp Counterparty) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	if err := s.validate(cp); err != nil {
		return err
	}
	return s.repo.Update(ctx, id, cp)
}
