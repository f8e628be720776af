package counterparties

import (
	"fmt"
	"strings"

	"github.com/primanota-erp/primanota/internal/accounting/chart"
	"github.com/primanota-erp/primanota/internal/masterdata/shared"
)

func (s *Service) validate(cp Counterparty) error {
	if strings.TrimSpace(cp.Code) == "" {
		return fmt.Errorf("%w: code", shared.ErrRequiredField)
	}
	if strings.TrimSpace(cp.Name) == "" {
		return fmt.Errorf("%w: name", shared.ErrRequiredField)
	}
	switch cp.Role {
	case chart.RoleCustomer, chart.RoleSupplier, chart.RolePointOfSale:
	default:
		return fmt.Errorf("%w: unknown role %q", shared.ErrValidation, cp.Role)
	}
	if cp.SubAccountID == 0 {
		return fmt.Errorf("%w: sub_account_id", shared.ErrRequiredField)
	}
	if cp.PaymentTermsDays < 0 {
		return fmt.Errorf("%w: payment terms must not be negative", shared.ErrValidation)
	}
	return nil
}
