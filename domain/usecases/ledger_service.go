package usecases

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/marcosvidal/carniceria-go/domain/models"
	"github.com/marcosvidal/carniceria-go/interfaces"
	"github.com/marcosvidal/carniceria-go/internal"
)

// LedgerService owns the income and expense rows. It is deliberately
// stateless between calls: a second session editing the same backend is
// visible on the next read.
type LedgerService struct {
	stores     interfaces.StoreProvider
	categories *CategoryService
	location   *time.Location
	logger     *internal.Logger

	// Clock is overridable for tests; it reports wall time, which is then
	// resolved against the shop timezone.
	Clock func() time.Time
}

// NewLedgerService creates a new LedgerService.
func NewLedgerService(stores interfaces.StoreProvider, categories *CategoryService, location *time.Location, logger *internal.Logger) *LedgerService {
	if logger == nil {
		logger = internal.GetLogger()
	}
	if location == nil {
		location = time.UTC
	}
	return &LedgerService{
		stores:     stores,
		categories: categories,
		location:   location,
		logger:     logger,
		Clock:      time.Now,
	}
}

// AddEntryInput is the caller-supplied data of a new entry. Amount accepts
// a decimal, a float or a string; string amounts may use a comma decimal
// separator.
type AddEntryInput struct {
	Date          string
	Amount        any
	Category      string
	Description   string
	PaymentMethod models.PaymentMethod
	Supplier      string // expense only
	ActorID       string
}

// AddIncome validates and stores an income entry.
func (s *LedgerService) AddIncome(ctx context.Context, input AddEntryInput) (*models.Entry, error) {
	return s.add(ctx, models.EntryKindIncome, input)
}

// AddExpense validates and stores an expense entry.
func (s *LedgerService) AddExpense(ctx context.Context, input AddEntryInput) (*models.Entry, error) {
	return s.add(ctx, models.EntryKindExpense, input)
}

func (s *LedgerService) add(ctx context.Context, kind models.EntryKind, input AddEntryInput) (*models.Entry, error) {
	amount, err := models.ParseAmount(input.Amount)
	if err != nil {
		return nil, err
	}

	entry := &models.Entry{
		Kind:          kind,
		Date:          input.Date,
		Amount:        amount,
		Category:      input.Category,
		Description:   input.Description,
		PaymentMethod: input.PaymentMethod,
		ActorID:       input.ActorID,
	}
	if kind == models.EntryKindExpense {
		entry.Supplier = input.Supplier
	}

	if err := s.validate(ctx, entry); err != nil {
		return nil, err
	}

	row, err := s.stores.Store().Insert(ctx, entryTable(kind), entryToRow(entry))
	if err != nil {
		return nil, fmt.Errorf("failed to store %s entry: %w", kind, err)
	}

	stored, err := entryFromRow(kind, row)
	if err != nil {
		return nil, err
	}

	s.logger.Info(internal.ComponentLedger, "Added %s entry %s: %s on %s (%s)",
		kind, stored.ID, models.FormatAmount(stored.Amount), stored.Date, stored.Category)
	return stored, nil
}

// UpdateEntry applies a patch to an existing entry. Id and kind are
// immutable; the patched entry is re-validated in full before any write.
func (s *LedgerService) UpdateEntry(ctx context.Context, id string, kind models.EntryKind, patch models.EntryPatch) (*models.Entry, error) {
	if kind != models.EntryKindIncome && kind != models.EntryKindExpense {
		return nil, models.ErrInvalidEntryKind
	}

	existing, err := s.findByID(ctx, id, kind)
	if err != nil {
		return nil, err
	}

	row := interfaces.Row{}

	if patch.Date != nil {
		existing.Date = *patch.Date
		row["date"] = *patch.Date
	}
	if patch.Amount != nil {
		amount, err := models.ParseAmount(patch.Amount)
		if err != nil {
			return nil, err
		}
		existing.Amount = amount
		row["amount"] = models.FormatAmount(amount)
	}
	if patch.Category != nil {
		existing.Category = *patch.Category
		row["category"] = *patch.Category
	}
	if patch.Description != nil {
		existing.Description = *patch.Description
		row["description"] = *patch.Description
	}
	if patch.PaymentMethod != nil {
		existing.PaymentMethod = *patch.PaymentMethod
		row["payment_method"] = string(*patch.PaymentMethod)
	}
	if patch.Supplier != nil {
		if kind != models.EntryKindExpense {
			return nil, models.ErrInvalidEntryKind
		}
		existing.Supplier = *patch.Supplier
		row["supplier"] = *patch.Supplier
	}

	if len(row) == 0 {
		return existing, nil
	}

	if err := s.validate(ctx, existing); err != nil {
		return nil, err
	}

	updated, err := s.stores.Store().Update(ctx, entryTable(kind), id, row)
	if err != nil {
		return nil, fmt.Errorf("failed to update %s entry: %w", kind, err)
	}
	if !updated {
		return nil, models.ErrEntryNotFound
	}

	s.logger.Info(internal.ComponentLedger, "Updated %s entry %s", kind, id)
	return existing, nil
}

// DeleteEntry removes an entry. Delete is terminal; there is no soft-delete
// and no audit trail.
func (s *LedgerService) DeleteEntry(ctx context.Context, id string, kind models.EntryKind) error {
	if kind != models.EntryKindIncome && kind != models.EntryKindExpense {
		return models.ErrInvalidEntryKind
	}

	deleted, err := s.stores.Store().Delete(ctx, entryTable(kind), id)
	if err != nil {
		return fmt.Errorf("failed to delete %s entry: %w", kind, err)
	}
	if !deleted {
		return models.ErrEntryNotFound
	}

	s.logger.Info(internal.ComponentLedger, "Deleted %s entry %s", kind, id)
	return nil
}

// ListEntries returns the entries with dates in [from, to], ordered by date
// ascending then created-at ascending. With kind nil both ledgers are
// merged.
func (s *LedgerService) ListEntries(ctx context.Context, kind *models.EntryKind, from, to string) ([]models.Entry, error) {
	if _, err := models.ParseDate(from); err != nil {
		return nil, err
	}
	if _, err := models.ParseDate(to); err != nil {
		return nil, err
	}

	kinds := []models.EntryKind{models.EntryKindIncome, models.EntryKindExpense}
	if kind != nil {
		if *kind != models.EntryKindIncome && *kind != models.EntryKindExpense {
			return nil, models.ErrInvalidEntryKind
		}
		kinds = []models.EntryKind{*kind}
	}

	entries := make([]models.Entry, 0)
	for _, k := range kinds {
		rows, err := s.stores.Store().Select(ctx, entryTable(k), interfaces.Query{
			Filters: []interfaces.Filter{
				{Column: "date", Op: interfaces.OpGte, Value: from},
				{Column: "date", Op: interfaces.OpLte, Value: to},
			},
			OrderBy: []interfaces.Order{{Column: "date"}, {Column: "created_at"}},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list %s entries: %w", k, err)
		}
		for _, row := range rows {
			entry, err := entryFromRow(k, row)
			if err != nil {
				return nil, err
			}
			entries = append(entries, *entry)
		}
	}

	// Income and expense rows come from two tables; restore the global
	// (date, created_at) order after the merge.
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Date != entries[j].Date {
			return entries[i].Date < entries[j].Date
		}
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})

	return entries, nil
}

// Today resolves the current calendar day in the shop timezone, never
// against server UTC.
func (s *LedgerService) Today() time.Time {
	now := s.Clock().In(s.location)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// validate runs the write rules in fail-fast order: amount, date, category
// resolution, payment method. No write is attempted on any failure.
func (s *LedgerService) validate(ctx context.Context, entry *models.Entry) error {
	if err := entry.Validate(s.Today()); err != nil {
		return err
	}

	categoryKind := models.CategoryKindIncome
	if entry.Kind == models.EntryKindExpense {
		categoryKind = models.CategoryKindExpense
	}
	if _, err := s.categories.ResolveActive(ctx, entry.Category, categoryKind); err != nil {
		return err
	}

	if !models.ValidPaymentMethod(entry.PaymentMethod) {
		return models.ErrInvalidPaymentMethod
	}

	return nil
}

func (s *LedgerService) findByID(ctx context.Context, id string, kind models.EntryKind) (*models.Entry, error) {
	rows, err := s.stores.Store().Select(ctx, entryTable(kind), interfaces.Query{
		Filters: []interfaces.Filter{{Column: "id", Op: interfaces.OpEq, Value: id}},
		Limit:   1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to find %s entry: %w", kind, err)
	}
	if len(rows) == 0 {
		return nil, models.ErrEntryNotFound
	}
	return entryFromRow(kind, rows[0])
}

func entryTable(kind models.EntryKind) string {
	if kind == models.EntryKindExpense {
		return internal.TableDailyExpenses
	}
	return internal.TableDailyIncome
}

func entryToRow(e *models.Entry) interfaces.Row {
	row := interfaces.Row{
		"date":           e.Date,
		"amount":         models.FormatAmount(e.Amount),
		"category":       e.Category,
		"description":    e.Description,
		"payment_method": string(e.PaymentMethod),
	}
	if e.Kind == models.EntryKindExpense {
		row["supplier"] = e.Supplier
	}
	if e.ActorID != "" {
		row["actor_id"] = e.ActorID
	}
	return row
}

func entryFromRow(kind models.EntryKind, row interfaces.Row) (*models.Entry, error) {
	amount, err := models.ParseAmount(row["amount"])
	if err != nil {
		return nil, fmt.Errorf("stored amount is unreadable: %w", err)
	}

	createdAt, _ := time.Parse(time.RFC3339, row.GetString("created_at"))

	entry := &models.Entry{
		ID:            row.GetString("id"),
		Kind:          kind,
		Date:          row.GetString("date"),
		Amount:        amount,
		Category:      row.GetString("category"),
		Description:   row.GetString("description"),
		PaymentMethod: models.PaymentMethod(row.GetString("payment_method")),
		CreatedAt:     createdAt,
		ActorID:       row.GetString("actor_id"),
	}
	if kind == models.EntryKindExpense {
		entry.Supplier = row.GetString("supplier")
	}
	return entry, nil
}
