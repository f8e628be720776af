package entries

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/primanota-erp/primanota/internal/accounting/shared"
	"github.com/primanota-erp/primanota/internal/accounting/vat"
)

// Repository encapsulates DB operations for journal entries.
type Repository interface {
	List(ctx context.Context) ([]JournalEntry, error)
	GetWithLines(ctx context.Context, id int64) (JournalEntry, error)
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// TxRepository exposes the operations of the atomic commit. Header, lines,
// VAT rows and open-item closures all land in one transaction or not at all.
type TxRepository interface {
	InsertEntry(ctx context.Context, entry JournalEntry) (int64, error)
	InsertLines(ctx context.Context, entryID int64, lines []JournalLine) error
	InsertVatRows(ctx context.Context, entryID int64, rows []vat.BreakdownRow) error
	CloseOpenItems(ctx context.Context, entryID int64, ids []int64) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) List(ctx context.Context) ([]JournalEntry, error) {
	rows, err := r.db.Query(ctx, `SELECT id, source_ref, date, counterparty_id, document_number, document_date, due_date, document_total, description, created_at
FROM journal_entries ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []JournalEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (r *repository) GetWithLines(ctx context.Context, id int64) (JournalEntry, error) {
	row := r.db.QueryRow(ctx, `SELECT id, source_ref, date, counterparty_id, document_number, document_date, due_date, document_total, description, created_at
FROM journal_entries WHERE id=$1`, id)
	entry, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return JournalEntry{}, shared.ErrEntryNotFound
		}
		return JournalEntry{}, err
	}
	lines, err := r.db.Query(ctx, `SELECT id, entry_id, account_id, description, debit, credit
FROM journal_lines WHERE entry_id=$1 ORDER BY id ASC`, id)
	if err != nil {
		return JournalEntry{}, err
	}
	defer lines.Close()
	for lines.Next() {
		var line JournalLine
		if err := lines.Scan(&line.ID, &line.EntryID, &line.AccountID, &line.Description, &line.Debit, &line.Credit); err != nil {
			return JournalEntry{}, err
		}
		entry.Lines = append(entry.Lines, line)
	}
	return entry, lines.Err()
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return err
	}
	wrapper := &txRepository{tx: tx}
	if err := fn(ctx, wrapper); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

type txRepository struct {
	tx pgx.Tx
}

func (r *txRepository) InsertEntry(ctx context.Context, entry JournalEntry) (int64, error) {
	var id int64
	err := r.tx.QueryRow(ctx, `INSERT INTO journal_entries (source_ref, date, counterparty_id, document_number, document_date, due_date, document_total, description)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8) RETURNING id`,
		entry.SourceRef, entry.Header.Date, nullInt(entry.Header.CounterpartyID), entry.Header.DocumentNumber,
		nullTime(entry.Header.DocumentDate), nullTime(entry.Header.DueDate), entry.Header.DocumentTotal, entry.Header.Description).
		Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.ConstraintName == "uq_journal_entries_source_ref" {
			return 0, shared.ErrSourceConflict
		}
		return 0, err
	}
	return id, nil
}

func (r *txRepository) InsertLines(ctx context.Context, entryID int64, lines []JournalLine) error {
	for _, line := range lines {
		if _, err := r.tx.Exec(ctx, `INSERT INTO journal_lines (entry_id, account_id, description, debit, credit)
VALUES ($1,$2,$3,$4,$5)`, entryID, line.AccountID, line.Description, line.Debit, line.Credit); err != nil {
			return err
		}
	}
	return nil
}

func (r *txRepository) InsertVatRows(ctx context.Context, entryID int64, rows []vat.BreakdownRow) error {
	for _, row := range rows {
		if _, err := r.tx.Exec(ctx, `INSERT INTO journal_vat_rows (entry_id, rate_id, taxable_base, tax_amount)
VALUES ($1,$2,$3,$4)`, entryID, row.RateID, row.TaxableBase, row.TaxAmount); err != nil {
			return err
		}
	}
	return nil
}

// CloseOpenItems transitions the selected items, but only those still open:
// a concurrent closure fails the whole commit rather than half-settling the
// selection.
func (r *txRepository) CloseOpenItems(ctx context.Context, entryID int64, ids []int64) error {
	cmd, err := r.tx.Exec(ctx, `UPDATE open_items SET status='CLOSED', closing_entry_id=$2, updated_at=NOW()
WHERE id = ANY($1) AND status='OPEN'`, ids, entryID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() != int64(len(ids)) {
		return shared.ErrItemAlreadyClosed
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (JournalEntry, error) {
	var entry JournalEntry
	var counterpartyID *int64
	var documentDate, dueDate *time.Time
	err := row.Scan(&entry.ID, &entry.SourceRef, &entry.Header.Date, &counterpartyID, &entry.Header.DocumentNumber,
		&documentDate, &dueDate, &entry.Header.DocumentTotal, &entry.Header.Description, &entry.CreatedAt)
	if err != nil {
		return JournalEntry{}, err
	}
	if counterpartyID != nil {
		entry.Header.CounterpartyID = *counterpartyID
	}
	if documentDate != nil {
		entry.Header.DocumentDate = *documentDate
	}
	if dueDate != nil {
		entry.Header.DueDate = *dueDate
	}
	return entry, nil
}

func nullInt(val int64) any {
	if val == 0 {
		return nil
	}
	return val
}

func nullTime(val time.Time) any {
	if val.IsZero() {
		return nil
	}
	return val
}
