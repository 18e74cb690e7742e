package services

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/shopspring/decimal"

	"expenses/internal/chart"
	"expenses/internal/core"
	"expenses/internal/ledger"
	"expenses/internal/log"
	"expenses/internal/storage"
)

// ErrNoExpenses is returned when an operation needs at least one recorded item.
var ErrNoExpenses = errors.New("no expenses recorded")

// Store loads and saves the whole ledger.
type Store interface {
	Load(ctx context.Context) (*ledger.Ledger, storage.LoadStatus, error)
	Save(ctx context.Context, l *ledger.Ledger) error
}

// ExpenseService owns the in-memory ledger and orchestrates the store and
// the chart renderer. It is not safe for concurrent use.
type ExpenseService struct {
	store    Store
	renderer chart.Renderer
	ledger   *ledger.Ledger
	dirty    bool
}

func NewExpenseService(store Store, renderer chart.Renderer) *ExpenseService {
	return &ExpenseService{
		store:    store,
		renderer: renderer,
		ledger:   ledger.New(),
	}
}

// Load replaces the in-memory ledger with the store content. On error the
// current ledger is kept.
func (s *ExpenseService) Load(ctx context.Context) (storage.LoadStatus, error) {
	l, status, err := s.store.Load(ctx)
	if err != nil {
		return status, fmt.Errorf("load ledger: %w", err)
	}
	s.ledger = l
	s.dirty = false
	return status, nil
}

// RecordEntries appends entries under date in one step.
func (s *ExpenseService) RecordEntries(ctx context.Context, date core.Date, entries []core.Entry) error {
	logger := log.ComponentFromContext(ctx, log.ComponentExpense)

	if err := s.ledger.RecordEntries(date, entries); err != nil {
		logger.WarnContext(ctx, "Rejected expense entries", log.NewFields().
			WithOperation(log.OpValidate).
			WithErrorType(log.ErrorTypeValidation).
			WithError(err).
			ToSlice()...)
		return fmt.Errorf("record entries for %s: %w", date, err)
	}
	s.dirty = true

	for _, e := range entries {
		logger.DebugContext(ctx, "Expense recorded", log.NewFields().
			WithOperation(log.OpRecord).
			WithExpense(date.String(), e.Category.String(), e.Description, e.Amount.String()).
			ToSlice()...)
	}
	logger.InfoContext(ctx, "Entries recorded",
		log.FieldDate, date.String(),
		log.FieldEntries, len(entries))
	return nil
}

func (s *ExpenseService) CategoryTotalsPerDate() iter.Seq2[core.Date, []core.CategoryAmount] {
	return s.ledger.CategoryTotalsPerDate()
}

func (s *ExpenseService) TotalForDate(date core.Date) (decimal.Decimal, bool) {
	return s.ledger.TotalForDate(date)
}

func (s *ExpenseService) AllEntries() iter.Seq[core.Expense] {
	return s.ledger.AllEntries()
}

// IsEmpty reports whether no date has been recorded.
func (s *ExpenseService) IsEmpty() bool {
	return s.ledger.IsEmpty()
}

// PlotByCategory renders the per-category totals across all dates, sorted by
// category label. It returns ErrNoExpenses when nothing has been recorded.
func (s *ExpenseService) PlotByCategory(ctx context.Context) error {
	logger := log.ComponentFromContext(ctx, log.ComponentChart)

	totals := s.ledger.CategoryTotalsAcrossAllDates()
	if len(totals) == 0 {
		return ErrNoExpenses
	}
	bars := core.SortedByCategory(totals)

	start := time.Now()
	if err := s.renderer.Render(ctx, bars); err != nil {
		logger.ErrorContext(ctx, "Failed to render chart", log.NewFields().
			WithOperation(log.OpRender).
			WithErrorType(log.ErrorTypeInternal).
			WithError(err).
			ToSlice()...)
		return fmt.Errorf("render chart: %w", err)
	}
	logger.InfoContext(ctx, "Chart rendered",
		log.FieldBars, len(bars),
		log.FieldDuration, time.Since(start).Milliseconds())
	return nil
}

// Save writes the ledger through the store. Unsaved changes are cleared only
// on success.
func (s *ExpenseService) Save(ctx context.Context) error {
	if err := s.store.Save(ctx, s.ledger); err != nil {
		return fmt.Errorf("save ledger: %w", err)
	}
	s.dirty = false
	return nil
}

// HasUnsavedChanges reports whether entries were recorded since the last
// load or save.
func (s *ExpenseService) HasUnsavedChanges() bool {
	return s.dirty
}

// Discard ends the session without saving. It logs a warning and returns
// true when recorded entries are being dropped.
func (s *ExpenseService) Discard(ctx context.Context) bool {
	if !s.dirty {
		return false
	}
	log.ComponentFromContext(ctx, log.ComponentExpense).WarnContext(ctx,
		"Discarding unsaved expenses",
		log.FieldOperation, log.OpShutdown,
		log.FieldDates, s.ledger.Len())
	return true
}
