package chart

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository loads the chart of accounts. The chart is maintained elsewhere;
// this module only reads it.
type Repository interface {
	ListAccounts(ctx context.Context) ([]Account, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) ListAccounts(ctx context.Context) ([]Account, error) {
	rows, err := r.db.Query(ctx, `SELECT id, parent_id, code, name, kind, COALESCE(nature,''), is_active, created_at, updated_at
FROM accounts ORDER BY code ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var accounts []Account
	for rows.Next() {
		var acc Account
		if err := rows.Scan(&acc.ID, &acc.ParentID, &acc.Code, &acc.Name, &acc.Kind, &acc.Nature, &acc.IsActive, &acc.CreatedAt, &acc.UpdatedAt); err != nil {
			return nil, err
		}
		accounts = append(accounts, acc)
	}
	return accounts, rows.Err()
}
