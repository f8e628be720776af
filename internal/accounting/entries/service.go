package entries

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/primanota-erp/primanota/internal/accounting/chart"
	"github.com/primanota-erp/primanota/internal/accounting/functions"
	"github.com/primanota-erp/primanota/internal/accounting/openitems"
	"github.com/primanota-erp/primanota/internal/accounting/shared"
	"github.com/primanota-erp/primanota/internal/accounting/vat"
	"github.com/primanota-erp/primanota/internal/masterdata/counterparties"
)

// GenerateInput carries everything one registration needs. The service
// fetches reference data, runs the generator and, on Commit, hands the
// balanced entry to the persistence boundary.
type GenerateInput struct {
	FunctionID     int64
	Header         DocumentHeader
	VatRows        []vat.BreakdownRow
	OpenItemIDs    []int64
	CounterpartyID int64
	// SourceRef makes retried commits idempotent. Zero value gets a fresh ref.
	SourceRef uuid.UUID
}

// CounterpartyDirectory is the slice of the masterdata service the generator needs.
type CounterpartyDirectory interface {
	Get(ctx context.Context, id int64) (counterparties.Counterparty, error)
}

// VatResolver resolves rate ids into a decomposed breakdown.
type VatResolver interface {
	ResolveRows(ctx context.Context, rows []vat.BreakdownRow) (vat.Breakdown, error)
}

// ChartLoader loads the account tree.
type ChartLoader interface {
	Load(ctx context.Context) (*chart.Tree, error)
}

// FunctionSource loads a validated template with its policy.
type FunctionSource interface {
	Get(ctx context.Context, id int64) (functions.Template, functions.Policy, error)
}

// OpenItemSource fetches open items by id for selection checks.
type OpenItemSource interface {
	GetMany(ctx context.Context, ids []int64) ([]openitems.OpenItem, error)
}

// EntryCounter records committed entries per generation policy.
type EntryCounter interface {
	CountEntry(policy string)
}

type Service struct {
	repo           Repository
	functions      FunctionSource
	chart          ChartLoader
	vat            VatResolver
	counterparties CounterpartyDirectory
	openItems      OpenItemSource
	logger         *slog.Logger
	metrics        EntryCounter
	now            func() time.Time
}

func NewService(repo Repository, fns FunctionSource, chartLoader ChartLoader, vatResolver VatResolver,
	directory CounterpartyDirectory, openItemSource OpenItemSource, logger *slog.Logger) *Service {
	return &Service{
		repo:           repo,
		functions:      fns,
		chart:          chartLoader,
		vat:            vatResolver,
		counterparties: directory,
		openItems:      openItemSource,
		logger:         logger,
		now:            time.Now,
	}
}

func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// WithMetrics attaches a commit counter.
func (s *Service) WithMetrics(metrics EntryCounter) {
	s.metrics = metrics
}

func (s *Service) List(ctx context.Context) ([]JournalEntry, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (JournalEntry, error) {
	return s.repo.GetWithLines(ctx, id)
}

// Preview runs generation without touching storage, returning the balanced
// entry and the open item ids a commit would close.
func (s *Service) Preview(ctx context.Context, input GenerateInput) (JournalEntry, []int64, error) {
	gen, err := s.generate(ctx, input)
	if err != nil {
		return JournalEntry{}, nil, err
	}
	return gen.Entry()
}

// Commit generates the entry and persists it atomically: header, lines, VAT
// rows and open-item closures land together or not at all.
func (s *Service) Commit(ctx context.Context, input GenerateInput) (JournalEntry, error) {
	gen, err := s.generate(ctx, input)
	if err != nil {
		return JournalEntry{}, err
	}
	entry, closing, err := gen.Entry()
	if err != nil {
		return JournalEntry{}, err
	}
	entry.SourceRef = input.SourceRef
	if entry.SourceRef == uuid.Nil {
		entry.SourceRef = uuid.New()
	}
	entry.CreatedAt = s.now()

	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		id, err := tx.InsertEntry(ctx, entry)
		if err != nil {
			return err
		}
		entry.ID = id
		if err := tx.InsertLines(ctx, id, entry.Lines); err != nil {
			return err
		}
		if len(entry.VatRows) > 0 {
			if err := tx.InsertVatRows(ctx, id, entry.VatRows); err != nil {
				return err
			}
		}
		if len(closing) > 0 {
			if err := tx.CloseOpenItems(ctx, id, closing); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, shared.ErrSourceConflict) || errors.Is(err, shared.ErrItemAlreadyClosed) {
			return JournalEntry{}, err
		}
		return JournalEntry{}, fmt.Errorf("%w: %v", shared.ErrPersistenceFailed, err)
	}
	gen.MarkCommitted()
	if s.metrics != nil {
		s.metrics.CountEntry(gen.Policy().String())
	}
	s.logger.Info("journal entry committed",
		slog.Int64("entry_id", entry.ID),
		slog.String("source_ref", entry.SourceRef.String()),
		slog.Int("lines", len(entry.Lines)),
		slog.Int("closed_items", len(closing)))
	return entry, nil
}

// generate walks the protocol for the given input.
func (s *Service) generate(ctx context.Context, input GenerateInput) (*Generator, error) {
	tpl, _, err := s.functions.Get(ctx, input.FunctionID)
	if err != nil {
		return nil, err
	}
	tree, err := s.chart.Load(ctx)
	if err != nil {
		return nil, err
	}
	gen, err := NewGenerator(tpl, tree)
	if err != nil {
		return nil, err
	}

	if gen.State() == StateFunctionSelected {
		if err := gen.GenerateGeneric(input.Header); err != nil {
			return nil, err
		}
		return gen, nil
	}

	if input.CounterpartyID == 0 {
		return nil, shared.ErrMissingCounterparty
	}
	cp, err := s.counterparties.Get(ctx, input.CounterpartyID)
	if err != nil {
		return nil, err
	}
	if cp.Role != gen.Role() {
		return nil, fmt.Errorf("%w: counterparty %d is %s, function expects %s",
			shared.ErrUnsupportedRole, cp.ID, cp.Role, gen.Role())
	}
	if err := gen.SetCounterparty(cp); err != nil {
		return nil, err
	}

	switch gen.State() {
	case StateReconciliationMode:
		selected, err := s.loadSelection(ctx, cp, gen.Role(), input.OpenItemIDs)
		if err != nil {
			return nil, err
		}
		if err := gen.GenerateFromOpenItems(input.Header, selected); err != nil {
			return nil, err
		}
	case StateVatMode:
		breakdown, err := s.vat.ResolveRows(ctx, input.VatRows)
		if err != nil {
			return nil, err
		}
		if err := gen.GenerateFromVat(input.Header, breakdown); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: unexpected state %s", shared.ErrInvalidState, gen.State())
	}
	return gen, nil
}

// loadSelection re-reads the selected items and rejects duplicates and any
// item that is not an open, matching settlement for this counterparty.
func (s *Service) loadSelection(ctx context.Context, cp counterparties.Counterparty, role chart.Role, ids []int64) ([]openitems.OpenItem, error) {
	if len(ids) == 0 {
		return nil, shared.ErrNoItemsSelected
	}
	expected, err := openitems.ExpectedOrigin(role)
	if err != nil {
		return nil, err
	}
	items, err := s.openItems.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]openitems.OpenItem, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}
	selected := make([]openitems.OpenItem, 0, len(ids))
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return nil, fmt.Errorf("openitems: item %d selected more than once", id)
		}
		seen[id] = true
		item, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("openitems: item %d not found", id)
		}
		if item.Status != openitems.StatusOpen {
			return nil, fmt.Errorf("%w: item %d", shared.ErrItemAlreadyClosed, id)
		}
		if item.CounterpartyID != cp.ID {
			return nil, fmt.Errorf("openitems: item %d belongs to counterparty %d", id, item.CounterpartyID)
		}
		if item.Origin != expected {
			return nil, fmt.Errorf("openitems: item %d has origin %s, expected %s", id, item.Origin, expected)
		}
		selected = append(selected, item)
	}
	return selected, nil
}
