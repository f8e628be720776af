package functions

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/primanota-erp/primanota/internal/platform/httpx"
)

// Repository loads and maintains accounting function templates.
type Repository interface {
	List(ctx context.Context) ([]Template, error)
	Get(ctx context.Context, id int64) (Template, error)
	Create(ctx context.Context, tpl Template) (Template, error)
	Update(ctx context.Context, id int64, tpl Template) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) List(ctx context.Context) ([]Template, error) {
	rows, err := r.db.Query(ctx, `SELECT id, code, name, category, managements, created_at, updated_at
FROM accounting_functions ORDER BY code ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var templates []Template
	for rows.Next() {
		tpl, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, tpl)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range templates {
		lines, err := r.loadLines(ctx, templates[i].ID)
		if err != nil {
			return nil, err
		}
		templates[i].Lines = lines
	}
	return templates, nil
}

func (r *repository) Get(ctx context.Context, id int64) (Template, error) {
	row := r.db.QueryRow(ctx, `SELECT id, code, name, category, managements, created_at, updated_at
FROM accounting_functions WHERE id=$1`, id)
	tpl, err := scanTemplate(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Template{}, httpx.ErrNotFound
		}
		return Template{}, err
	}
	tpl.Lines, err = r.loadLines(ctx, tpl.ID)
	if err != nil {
		return Template{}, err
	}
	return tpl, nil
}

func (r *repository) loadLines(ctx context.Context, templateID int64) ([]LineTemplate, error) {
	rows, err := r.db.Query(ctx, `SELECT is_search_line, account_id, direction, default_description
FROM accounting_function_lines WHERE function_id=$1 ORDER BY position ASC`, templateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var lines []LineTemplate
	for rows.Next() {
		var line LineTemplate
		if err := rows.Scan(&line.IsSearchLine, &line.AccountID, &line.Direction, &line.DefaultDescription); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

// Create stores the function header and its lines in one transaction.
func (r *repository) Create(ctx context.Context, tpl Template) (Template, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return Template{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	err = tx.QueryRow(ctx, `INSERT INTO accounting_functions (code, name, category, managements)
VALUES ($1,$2,$3,$4) RETURNING id, created_at, updated_at`,
		tpl.Code, tpl.Name, tpl.Category, managementList(tpl)).
		Scan(&tpl.ID, &tpl.CreatedAt, &tpl.UpdatedAt)
	if err != nil {
		return Template{}, err
	}
	if err := insertLines(ctx, tx, tpl.ID, tpl.Lines); err != nil {
		return Template{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Template{}, err
	}
	return tpl, nil
}

// Update rewrites the function header and replaces its line set.
func (r *repository) Update(ctx context.Context, id int64, tpl Template) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	cmd, err := tx.Exec(ctx, `UPDATE accounting_functions
SET code=$2, name=$3, category=$4, managements=$5, updated_at=NOW() WHERE id=$1`,
		id, tpl.Code, tpl.Name, tpl.Category, managementList(tpl))
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	if _, err := tx.Exec(ctx, `DELETE FROM accounting_function_lines WHERE function_id=$1`, id); err != nil {
		return err
	}
	if err := insertLines(ctx, tx, id, tpl.Lines); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func insertLines(ctx context.Context, tx pgx.Tx, functionID int64, lines []LineTemplate) error {
	for pos, line := range lines {
		_, err := tx.Exec(ctx, `INSERT INTO accounting_function_lines (function_id, position, is_search_line, account_id, direction, default_description)
VALUES ($1,$2,$3,$4,$5,$6)`, functionID, pos, line.IsSearchLine, line.AccountID, line.Direction, line.DefaultDescription)
		if err != nil {
			return err
		}
	}
	return nil
}

func managementList(tpl Template) []string {
	out := make([]string, 0, len(tpl.Managements))
	for m, on := range tpl.Managements {
		if on {
			out = append(out, string(m))
		}
	}
	return out
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTemplate(row rowScanner) (Template, error) {
	var tpl Template
	var managements []string
	if err := row.Scan(&tpl.ID, &tpl.Code, &tpl.Name, &tpl.Category, &managements, &tpl.CreatedAt, &tpl.UpdatedAt); err != nil {
		return Template{}, err
	}
	tpl.Managements = make(map[Management]bool, len(managements))
	for _, m := range managements {
		tpl.Managements[Management(m)] = true
	}
	return tpl, nil
}
