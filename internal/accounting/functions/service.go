package functions

import (
	"context"
	"errors"
	"strings"
)

// Service exposes function template lookups and maintenance.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]Template, error) {
	return s.repo.List(ctx)
}

// Create persists a template after checking it maps to a generation policy.
// Misconfigured templates are rejected here rather than at generation time.
func (s *Service) Create(ctx context.Context, tpl Template) (Template, error) {
	if err := validateTemplate(tpl); err != nil {
		return Template{}, err
	}
	return s.repo.Create(ctx, tpl)
}

func (s *Service) Update(ctx context.Context, id int64, tpl Template) error {
	if id <= 0 {
		return errors.New("functions: invalid template ID")
	}
	if err := validateTemplate(tpl); err != nil {
		return err
	}
	return s.repo.Update(ctx, id, tpl)
}

func validateTemplate(tpl Template) error {
	if strings.TrimSpace(tpl.Code) == "" {
		return errors.New("functions: template code is required")
	}
	if strings.TrimSpace(tpl.Name) == "" {
		return errors.New("functions: template name is required")
	}
	_, err := SelectPolicy(tpl)
	return err
}

// Get loads a template and verifies it is usable for generation.
func (s *Service) Get(ctx context.Context, id int64) (Template, Policy, error) {
	if id <= 0 {
		return Template{}, 0, errors.New("functions: invalid template ID")
	}
	tpl, err := s.repo.Get(ctx, id)
	if err != nil {
		return Template{}, 0, err
	}
	policy, err := SelectPolicy(tpl)
	if err != nil {
		return Template{}, 0, err
	}
	return tpl, policy, nil
}
