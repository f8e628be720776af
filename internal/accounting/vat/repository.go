package vat

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/primanota-erp/primanota/internal/platform/httpx"
)

// Repository persists the VAT rate table.
type Repository interface {
	List(ctx context.Context) ([]Rate, error)
	Get(ctx context.Context, id int64) (Rate, error)
	Create(ctx context.Context, rate Rate) (Rate, error)
	Update(ctx context.Context, id int64, rate Rate) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) List(ctx context.Context) ([]Rate, error) {
	rows, err := r.db.Query(ctx, `SELECT id, code, name, percent FROM vat_rates ORDER BY percent ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var rates []Rate
	for rows.Next() {
		var rate Rate
		if err := rows.Scan(&rate.ID, &rate.Code, &rate.Name, &rate.Percent); err != nil {
			return nil, err
		}
		rates = append(rates, rate)
	}
	return rates, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Rate, error) {
	var rate Rate
	err := r.db.QueryRow(ctx, `SELECT id, code, name, percent FROM vat_rates WHERE id=$1`, id).
		Scan(&rate.ID, &rate.Code, &rate.Name, &rate.Percent)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Rate{}, httpx.ErrNotFound
		}
		return Rate{}, err
	}
	return rate, nil
}

func (r *repository) Create(ctx context.Context, rate Rate) (Rate, error) {
	err := r.db.QueryRow(ctx, `INSERT INTO vat_rates (code, name, percent) VALUES ($1,$2,$3) RETURNING id`,
		rate.Code, rate.Name, rate.Percent).Scan(&rate.ID)
	if err != nil {
		return Rate{}, err
	}
	return rate, nil
}

func (r *repository) Update(ctx context.Context, id int64, rate Rate) error {
	cmd, err := r.db.Exec(ctx, `UPDATE vat_rates SET code=$2, name=$3, percent=$4 WHERE id=$1`,
		id, rate.Code, rate.Name, rate.Percent)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}
