package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

// balanceTolerance matches the posting tolerance used when entries are
// generated. Anything beyond it indicates corruption, not rounding.
const balanceTolerance = 0.01

// LedgerIntegrityChecker scans the ledger for structural faults: journal
// entries whose lines no longer balance and open items marked CLOSED without
// a closing entry reference.
type LedgerIntegrityChecker struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewLedgerIntegrityChecker constructs the checker.
func NewLedgerIntegrityChecker(pool *pgxpool.Pool, logger *slog.Logger) *LedgerIntegrityChecker {
	return &LedgerIntegrityChecker{pool: pool, logger: logger}
}

// Handle processes TaskLedgerIntegrity tasks.
func (c *LedgerIntegrityChecker) Handle(ctx context.Context, t *asynq.Task) error {
	var payload LedgerIntegrityPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	return c.Run(ctx, payload.Since)
}

// Run executes the scan. It logs every fault it finds and returns an error
// only when the scan itself cannot complete, so the job is not retried for
// data problems that need human attention.
func (c *LedgerIntegrityChecker) Run(ctx context.Context, since time.Time) error {
	unbalanced, err := c.findUnbalancedEntries(ctx, since)
	if err != nil {
		return fmt.Errorf("jobs: scan journal entries: %w", err)
	}
	for _, fault := range unbalanced {
		c.logger.Error("unbalanced journal entry",
			slog.Int64("entry_id", fault.EntryID),
			slog.Float64("total_debit", fault.TotalDebit),
			slog.Float64("total_credit", fault.TotalCredit),
		)
	}

	orphaned, err := c.findOrphanedClosures(ctx)
	if err != nil {
		return fmt.Errorf("jobs: scan open items: %w", err)
	}
	for _, id := range orphaned {
		c.logger.Error("closed item without closing entry", slog.Int64("item_id", id))
	}

	c.logger.Info("ledger integrity scan completed",
		slog.Int("unbalanced_entries", len(unbalanced)),
		slog.Int("orphaned_closures", len(orphaned)),
	)
	return nil
}

type balanceFault struct {
	EntryID     int64
	TotalDebit  float64
	TotalCredit float64
}

func (c *LedgerIntegrityChecker) findUnbalancedEntries(ctx context.Context, since time.Time) ([]balanceFault, error) {
	const query = `
		SELECT e.id, COALESCE(SUM(l.debit), 0), COALESCE(SUM(l.credit), 0)
		FROM journal_entries e
		JOIN journal_lines l ON l.entry_id = e.id
		WHERE ($1::timestamptz IS NULL OR e.created_at >= $1)
		GROUP BY e.id
		HAVING ABS(COALESCE(SUM(l.debit), 0) - COALESCE(SUM(l.credit), 0)) >= $2
		ORDER BY e.id`

	var sinceArg any
	if !since.IsZero() {
		sinceArg = since
	}
	rows, err := c.pool.Query(ctx, query, sinceArg, balanceTolerance)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var faults []balanceFault
	for rows.Next() {
		var f balanceFault
		if err := rows.Scan(&f.EntryID, &f.TotalDebit, &f.TotalCredit); err != nil {
			return nil, err
		}
		faults = append(faults, f)
	}
	return faults, rows.Err()
}

func (c *LedgerIntegrityChecker) findOrphanedClosures(ctx context.Context) ([]int64, error) {
	const query = `
		SELECT id FROM open_items
		WHERE status = 'CLOSED' AND closing_entry_id IS NULL
		ORDER BY id`

	rows, err := c.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
