package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/marcosvidal/carniceria-go/domain/models"
	"github.com/marcosvidal/carniceria-go/domain/usecases"
	"github.com/marcosvidal/carniceria-go/interfaces"
	"github.com/marcosvidal/carniceria-go/internal"
)

// AccountingService is the single entry point the UI calls. It hides the
// Store, the ledger, the report engine and the category registry behind a
// narrow operation set: a consumer that only knows this façade cannot
// produce an inconsistent report.
type AccountingService struct {
	ledger     *usecases.LedgerService
	reports    *usecases.ReportService
	categories *usecases.CategoryService
	location   *time.Location
	timeout    time.Duration
	publisher  interfaces.EventPublisher
	logger     *internal.Logger

	// One write in flight per calling actor; reads are not gated.
	gatesMu sync.Mutex
	gates   map[string]*sync.Mutex
}

// NewAccountingService wires the accounting core on top of a bound store.
func NewAccountingService(cfg *internal.Config, stores interfaces.StoreProvider, publisher interfaces.EventPublisher, logger *internal.Logger) (*AccountingService, error) {
	if logger == nil {
		logger = internal.GetLogger()
	}

	location, err := time.LoadLocation(cfg.Accounting.Timezone)
	if err != nil {
		return nil, err
	}

	categories := usecases.NewCategoryService(stores, cfg.CategoryCacheTTL(), logger)
	ledger := usecases.NewLedgerService(stores, categories, location, logger)
	reports := usecases.NewReportService(ledger, logger)

	if publisher == nil {
		publisher = noopPublisher{}
	}

	return &AccountingService{
		ledger:     ledger,
		reports:    reports,
		categories: categories,
		location:   location,
		timeout:    cfg.StoreTimeout(),
		publisher:  publisher,
		logger:     logger,
		gates:      make(map[string]*sync.Mutex),
	}, nil
}

// Today resolves the current calendar day in the shop timezone, never
// against server UTC.
func (s *AccountingService) Today() string {
	return time.Now().In(s.location).Format(models.DateLayout)
}

// AddIncome validates and records an income entry.
func (s *AccountingService) AddIncome(ctx context.Context, input usecases.AddEntryInput) (*models.Entry, error) {
	unlock := s.writeGate(input.ActorID)
	defer unlock()

	ctx, cancel := s.deadline(ctx)
	defer cancel()

	entry, err := s.ledger.AddIncome(ctx, input)
	if err != nil {
		return nil, translate(err)
	}

	s.publish(interfaces.EventTypeEntryCreated, entry)
	return entry, nil
}

// AddExpense validates and records an expense entry.
func (s *AccountingService) AddExpense(ctx context.Context, input usecases.AddEntryInput) (*models.Entry, error) {
	unlock := s.writeGate(input.ActorID)
	defer unlock()

	ctx, cancel := s.deadline(ctx)
	defer cancel()

	entry, err := s.ledger.AddExpense(ctx, input)
	if err != nil {
		return nil, translate(err)
	}

	s.publish(interfaces.EventTypeEntryCreated, entry)
	return entry, nil
}

// UpdateEntry applies a patch to an existing entry. Id and kind are
// immutable.
func (s *AccountingService) UpdateEntry(ctx context.Context, actorID, id string, kind models.EntryKind, patch models.EntryPatch) (*models.Entry, error) {
	unlock := s.writeGate(actorID)
	defer unlock()

	ctx, cancel := s.deadline(ctx)
	defer cancel()

	entry, err := s.ledger.UpdateEntry(ctx, id, kind, patch)
	if err != nil {
		return nil, translate(err)
	}

	s.publish(interfaces.EventTypeEntryUpdated, entry)
	return entry, nil
}

// DeleteEntry removes an entry. Delete is terminal.
func (s *AccountingService) DeleteEntry(ctx context.Context, actorID, id string, kind models.EntryKind) error {
	unlock := s.writeGate(actorID)
	defer unlock()

	ctx, cancel := s.deadline(ctx)
	defer cancel()

	if err := s.ledger.DeleteEntry(ctx, id, kind); err != nil {
		return translate(err)
	}

	s.publishEvent(interfaces.Event{
		ID:        uuid.New().String(),
		Type:      interfaces.EventTypeEntryDeleted,
		ActorID:   actorID,
		EntryID:   id,
		Timestamp: time.Now(),
		Data:      map[string]any{"kind": string(kind)},
	})
	return nil
}

// ListEntries returns entries in [from, to], both ledgers merged when kind
// is nil.
func (s *AccountingService) ListEntries(ctx context.Context, kind *models.EntryKind, from, to string) ([]models.Entry, error) {
	ctx, cancel := s.deadline(ctx)
	defer cancel()

	entries, err := s.ledger.ListEntries(ctx, kind, from, to)
	if err != nil {
		return nil, translate(err)
	}
	return entries, nil
}

// DailyReport derives the aggregate for one calendar day.
func (s *AccountingService) DailyReport(ctx context.Context, date string) (models.DailyReport, error) {
	ctx, cancel := s.deadline(ctx)
	defer cancel()

	report, err := s.reports.Daily(ctx, date)
	if err != nil {
		return models.DailyReport{}, translate(err)
	}
	return report, nil
}

// WeeklyReport derives the seven daily aggregates starting at start.
func (s *AccountingService) WeeklyReport(ctx context.Context, start string) (models.WeeklyReport, error) {
	ctx, cancel := s.deadline(ctx)
	defer cancel()

	report, err := s.reports.Weekly(ctx, start)
	if err != nil {
		return models.WeeklyReport{}, translate(err)
	}
	return report, nil
}

// MonthlyReport derives the aggregate for one calendar month.
func (s *AccountingService) MonthlyReport(ctx context.Context, year, month int) (models.MonthlyReport, error) {
	ctx, cancel := s.deadline(ctx)
	defer cancel()

	report, err := s.reports.Monthly(ctx, year, month)
	if err != nil {
		return models.MonthlyReport{}, translate(err)
	}
	return report, nil
}

// RangeReport derives one daily aggregate per day in [from, to].
func (s *AccountingService) RangeReport(ctx context.Context, from, to string) ([]models.DailyReport, error) {
	ctx, cancel := s.deadline(ctx)
	defer cancel()

	reports, err := s.reports.Range(ctx, from, to)
	if err != nil {
		return nil, translate(err)
	}
	return reports, nil
}

// ListCategories returns the active categories, optionally by kind.
func (s *AccountingService) ListCategories(ctx context.Context, kind *models.CategoryKind) ([]models.Category, error) {
	ctx, cancel := s.deadline(ctx)
	defer cancel()

	categories, err := s.categories.List(ctx, kind)
	if err != nil {
		return nil, translate(err)
	}
	return categories, nil
}

// CreateCategory adds a new active category to the vocabulary.
func (s *AccountingService) CreateCategory(ctx context.Context, actorID, name string, kind models.CategoryKind, color, icon string) (*models.Category, error) {
	unlock := s.writeGate(actorID)
	defer unlock()

	ctx, cancel := s.deadline(ctx)
	defer cancel()

	category, err := s.categories.Create(ctx, name, kind, color, icon)
	if err != nil {
		return nil, translate(err)
	}

	s.publishEvent(interfaces.Event{
		ID:        uuid.New().String(),
		Type:      interfaces.EventTypeCategoryCreated,
		ActorID:   actorID,
		Timestamp: time.Now(),
		Data:      map[string]any{"name": category.Name, "kind": string(category.Kind)},
	})
	return category, nil
}

// DeactivateCategory soft-deactivates a category. Historical entries keep
// aggregating under its name.
func (s *AccountingService) DeactivateCategory(ctx context.Context, actorID, id string) error {
	unlock := s.writeGate(actorID)
	defer unlock()

	ctx, cancel := s.deadline(ctx)
	defer cancel()

	if err := s.categories.Deactivate(ctx, id); err != nil {
		return translate(err)
	}

	s.publishEvent(interfaces.Event{
		ID:        uuid.New().String(),
		Type:      interfaces.EventTypeCategoryDeactivated,
		ActorID:   actorID,
		Timestamp: time.Now(),
		Data:      map[string]any{"category_id": id},
	})
	return nil
}

// EnsureDefaultCategories seeds the minimum vocabulary. Idempotent.
func (s *AccountingService) EnsureDefaultCategories(ctx context.Context) error {
	ctx, cancel := s.deadline(ctx)
	defer cancel()

	if err := s.categories.EnsureDefaults(ctx); err != nil {
		return translate(err)
	}
	return nil
}

func (s *AccountingService) deadline(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

// writeGate serializes writes per calling actor. An unidentified actor
// shares one gate.
func (s *AccountingService) writeGate(actorID string) func() {
	if actorID == "" {
		actorID = "anonymous"
	}

	s.gatesMu.Lock()
	gate, ok := s.gates[actorID]
	if !ok {
		gate = &sync.Mutex{}
		s.gates[actorID] = gate
	}
	s.gatesMu.Unlock()

	gate.Lock()
	return gate.Unlock
}

func (s *AccountingService) publish(eventType interfaces.EventType, entry *models.Entry) {
	s.publishEvent(interfaces.Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		ActorID:   entry.ActorID,
		EntryID:   entry.ID,
		Date:      entry.Date,
		Timestamp: time.Now(),
		Data: map[string]any{
			"kind":     string(entry.Kind),
			"amount":   models.FormatAmount(entry.Amount),
			"category": entry.Category,
		},
	})
}

func (s *AccountingService) publishEvent(event interfaces.Event) {
	if err := s.publisher.Publish(event); err != nil {
		// Best effort only; the write already succeeded.
		s.logger.Warn(internal.ComponentFacade, "Failed to publish %s event: %v", event.Type, err)
	}
}

// noopPublisher is the default when eventing is disabled.
type noopPublisher struct{}

func (noopPublisher) Publish(interfaces.Event) error { return nil }
func (noopPublisher) Close() error                   { return nil }
