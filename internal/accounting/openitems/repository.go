package openitems

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository reads open items. Closing happens inside the journal commit
// transaction and is owned by the entries repository.
type Repository interface {
	ListOpen(ctx context.Context, counterpartyID int64, origin Origin) ([]OpenItem, error)
	ListOutstanding(ctx context.Context) ([]OpenItem, error)
	GetMany(ctx context.Context, ids []int64) ([]OpenItem, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const openItemColumns = `id, sub_account_id, counterparty_id, amount, due_date, origin, status, created_at, updated_at`

func (r *repository) ListOpen(ctx context.Context, counterpartyID int64, origin Origin) ([]OpenItem, error) {
	rows, err := r.db.Query(ctx, `SELECT `+openItemColumns+`
FROM open_items WHERE counterparty_id=$1 AND origin=$2 AND status='OPEN' ORDER BY due_date ASC`, counterpartyID, origin)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

func (r *repository) ListOutstanding(ctx context.Context) ([]OpenItem, error) {
	rows, err := r.db.Query(ctx, `SELECT `+openItemColumns+`
FROM open_items WHERE status='OPEN' ORDER BY due_date ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

func (r *repository) GetMany(ctx context.Context, ids []int64) ([]OpenItem, error) {
	rows, err := r.db.Query(ctx, `SELECT `+openItemColumns+`
FROM open_items WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

type pgxRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func collect(rows pgxRows) ([]OpenItem, error) {
	var items []OpenItem
	for rows.Next() {
		var item OpenItem
		if err := rows.Scan(&item.ID, &item.SubAccountID, &item.CounterpartyID, &item.Amount, &item.DueDate, &item.Origin, &item.Status, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
