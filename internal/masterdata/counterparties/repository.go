package counterparties

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/primanota-erp/primanota/internal/accounting/chart"
	"github.com/primanota-erp/primanota/internal/masterdata/shared"
)

// Repository persists the counterparty directory.
type Repository interface {
	ListByRole(ctx context.Context, role chart.Role, filters shared.ListFilters) ([]Counterparty, error)
	Get(ctx context.Context, id int64) (Counterparty, error)
	Create(ctx context.Context, cp Counterparty) (Counterparty, error)
	Update(ctx context.Context, id int64, cp Counterparty) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const counterpartyColumns = `id, code, name, role, sub_account_id, sub_account_override_id, tax_id, email, payment_terms_days, is_active, created_at, updated_at`

func (r *repository) ListByRole(ctx context.Context, role chart.Role, filters shared.ListFilters) ([]Counterparty, error) {
	filters.Normalize()
	rows, err := r.db.Query(ctx, `SELECT `+counterpartyColumns+`
FROM counterparties
WHERE role=$1 AND is_active AND ($2 = '' OR name ILIKE '%' || $2 || '%' OR code ILIKE '%' || $2 || '%')
ORDER BY code ASC LIMIT $3 OFFSET $4`, role, filters.Search, filters.Limit, filters.Offset())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Counterparty
	for rows.Next() {
		cp, err := scanCounterparty(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, cp)
	}
	return out, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Counterparty, error) {
	row := r.db.QueryRow(ctx, `SELECT `+counterpartyColumns+` FROM counterparties WHERE id=$1`, id)
	cp, err := scanCounterparty(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Counterparty{}, shared.ErrNotFound
		}
		return Counterparty{}, err
	}
	return cp, nil
}

func (r *repository) Create(ctx context.Context, cp Counterparty) (Counterparty, error) {
	err := r.db.QueryRow(ctx, `INSERT INTO counterparties (code, name, role, sub_account_id, sub_account_override_id, tax_id, email, payment_terms_days, is_active)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9) RETURNING id, created_at, updated_at`,
		cp.Code, cp.Name, cp.Role, cp.SubAccountID, cp.SubAccountOverrideID, cp.TaxID, cp.Email, cp.PaymentTermsDays, cp.IsActive).
		Scan(&cp.ID, &cp.CreatedAt, &cp.UpdatedAt)
	if err != nil {
		return Counterparty{}, err
	}
	return cp, nil
}

func (r *repository) Update(ctx context.Context, id int64, cp Counterparty) error {
	cmd, err := r.db.Exec(ctx, `UPDATE counterparties
SET code=$2, name=$3, role=$4, sub_account_id=$5, sub_account_override_id=$6, tax_id=$7, email=$8, payment_terms_days=$9, is_active=$10, updated_at=NOW()
WHERE id=$1`,
		id, cp.Code, cp.Name, cp.Role, cp.SubAccountID, cp.SubAccountOverrideID, cp.TaxID, cp.Email, cp.PaymentTermsDays, cp.IsActive)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCounterparty(row rowScanner) (Counterparty, error) {
	var cp Counterparty
	err := row.Scan(&cp.ID, &cp.Code, &cp.Name, &cp.Role, &cp.SubAccountID, &cp.SubAccountOverrideID,
		&cp.TaxID, &cp.Email, &cp.PaymentTermsDays, &cp.IsActive, &cp.CreatedAt, &cp.UpdatedAt)
	return cp, err
}
