package vat

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Service handles rate maintenance and resolves rate ids for breakdown rows.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) validate(rate Rate) error {
	if strings.TrimSpace(rate.Code) == "" {
		return errors.New("vat: rate code is required")
	}
	if rate.Percent < 0 || rate.Percent > 100 {
		return errors.New("vat: rate percent must be between 0 and 100")
	}
	return nil
}

func (s *Service) List(ctx context.Context) ([]Rate, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (Rate, error) {
	if id <= 0 {
		return Rate{}, errors.New("vat: invalid rate ID")
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, rate Rate) (Rate, error) {
	if err := s.validate(rate); err != nil {
		return Rate{}, err
	}
	return s.repo.Create(ctx, rate)
}

func (s *Service) Update(ctx context.Context, id int64, rate Rate) error {
	if id <= 0 {
		return errors.New("vat: invalid rate ID")
	}
	if err := s.validate(rate); err != nil {
		return err
	}
	return s.repo.Update(ctx, id, rate)
}

// ResolveRows looks up the percentage for each breakdown row by rate id and
// returns the decomposed breakdown.
func (s *Service) ResolveRows(ctx context.Context, rows []BreakdownRow) (Breakdown, error) {
	rates, err := s.repo.List(ctx)
	if err != nil {
		return Breakdown{}, err
	}
	byID := make(map[int64]Rate, len(rates))
	for _, rate := range rates {
		byID[rate.ID] = rate
	}
	resolved := make([]BreakdownRow, len(rows))
	for i, row := range rows {
		rate, ok := byID[row.RateID]
		if !ok {
			return Breakdown{}, fmt.Errorf("vat: unknown rate id %d", row.RateID)
		}
		row.RatePercent = rate.Percent
		resolved[i] = row
	}
	return Decompose(resolved), nil
}
