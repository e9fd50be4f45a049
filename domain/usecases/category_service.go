package usecases

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/marcosvidal/carniceria-go/domain/models"
	"github.com/marcosvidal/carniceria-go/interfaces"
	"github.com/marcosvidal/carniceria-go/internal"
)

// CategoryService is the registry of the controlled category vocabulary.
// Every ledger write validates its category name against this registry.
// The active list may be cached for a short TTL per session; every write
// through this service invalidates the cache.
type CategoryService struct {
	stores   interfaces.StoreProvider
	cacheTTL time.Duration
	logger   *internal.Logger

	mu       sync.Mutex
	cached   []models.Category
	cachedAt time.Time
}

// NewCategoryService creates a new CategoryService.
func NewCategoryService(stores interfaces.StoreProvider, cacheTTL time.Duration, logger *internal.Logger) *CategoryService {
	if logger == nil {
		logger = internal.GetLogger()
	}
	return &CategoryService{
		stores:   stores,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// List returns all active categories ordered by name, optionally filtered
// by kind.
func (s *CategoryService) List(ctx context.Context, kind *models.CategoryKind) ([]models.Category, error) {
	active, err := s.activeCategories(ctx)
	if err != nil {
		return nil, err
	}

	if kind == nil {
		return active, nil
	}

	filtered := make([]models.Category, 0, len(active))
	for _, c := range active {
		if c.Kind == *kind {
			filtered = append(filtered, c)
		}
	}
	return filtered, nil
}

// Create inserts a new active category. A duplicate among the active
// (name, kind) pairs is rejected; the same name may exist once per kind.
func (s *CategoryService) Create(ctx context.Context, name string, kind models.CategoryKind, color, icon string) (*models.Category, error) {
	category := models.NewCategory(name, kind, color, icon)
	if err := category.Validate(); err != nil {
		return nil, err
	}

	active, err := s.activeCategories(ctx)
	if err != nil {
		return nil, err
	}
	for _, existing := range active {
		if existing.Name == name && existing.Kind == kind {
			return nil, models.ErrDuplicateCategory
		}
	}

	row, err := s.stores.Store().Insert(ctx, internal.TableCategories, categoryToRow(category))
	if err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	created := categoryFromRow(row)
	s.invalidate()
	s.logger.Info(internal.ComponentCategory, "Created %s category %q (%s)", kind, name, created.ID)
	return &created, nil
}

// Deactivate flips the active flag. Ledger entries written against the
// category are untouched and keep aggregating under its name.
func (s *CategoryService) Deactivate(ctx context.Context, id string) error {
	updated, err := s.stores.Store().Update(ctx, internal.TableCategories, id, interfaces.Row{"active": false})
	if err != nil {
		return fmt.Errorf("failed to deactivate category: %w", err)
	}
	if !updated {
		return models.ErrCategoryNotFound
	}

	s.invalidate()
	s.logger.Info(internal.ComponentCategory, "Deactivated category %s", id)
	return nil
}

// EnsureDefaults seeds the minimum vocabulary on first use. Running it again
// leaves the set unchanged.
func (s *CategoryService) EnsureDefaults(ctx context.Context) error {
	active, err := s.activeCategories(ctx)
	if err != nil {
		return err
	}

	have := make(map[string]bool, len(active))
	for _, c := range active {
		have[string(c.Kind)+"/"+c.Name] = true
	}

	seeded := 0
	for _, def := range models.DefaultCategories {
		if have[string(def.Kind)+"/"+def.Name] {
			continue
		}
		category := models.NewCategory(def.Name, def.Kind, def.Color, def.Icon)
		if _, err := s.stores.Store().Insert(ctx, internal.TableCategories, categoryToRow(category)); err != nil {
			return fmt.Errorf("failed to seed category %q: %w", def.Name, err)
		}
		seeded++
	}

	if seeded > 0 {
		s.invalidate()
		s.logger.Info(internal.ComponentCategory, "Seeded %d default categories", seeded)
	}
	return nil
}

// ResolveActive checks that name maps to an active category of the given
// kind. A name that only exists under the opposite kind is reported as a
// kind mismatch; anything else is unknown.
func (s *CategoryService) ResolveActive(ctx context.Context, name string, kind models.CategoryKind) (*models.Category, error) {
	active, err := s.activeCategories(ctx)
	if err != nil {
		return nil, err
	}

	otherKind := false
	for i := range active {
		if active[i].Name != name {
			continue
		}
		if active[i].Kind == kind {
			return &active[i], nil
		}
		otherKind = true
	}

	if otherKind {
		return nil, models.ErrCategoryKindMismatch
	}
	return nil, models.ErrUnknownCategory
}

// Invalidate drops the cached active list. Exposed so the façade can force
// a re-read after diagnostics rebind the store.
func (s *CategoryService) Invalidate() {
	s.invalidate()
}

func (s *CategoryService) invalidate() {
	s.mu.Lock()
	s.cached = nil
	s.mu.Unlock()
}

func (s *CategoryService) activeCategories(ctx context.Context) ([]models.Category, error) {
	s.mu.Lock()
	if s.cached != nil && s.cacheTTL > 0 && time.Since(s.cachedAt) < s.cacheTTL {
		cached := s.cached
		s.mu.Unlock()
		return cached, nil
	}
	s.mu.Unlock()

	rows, err := s.stores.Store().Select(ctx, internal.TableCategories, interfaces.Query{
		Filters: []interfaces.Filter{{Column: "active", Op: interfaces.OpEq, Value: true}},
		OrderBy: []interfaces.Order{{Column: "name"}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	categories := make([]models.Category, 0, len(rows))
	for _, row := range rows {
		categories = append(categories, categoryFromRow(row))
	}
	// Backends agree on name ordering, but the SQLite fallback collates
	// accented names differently; normalize here.
	sort.Slice(categories, func(i, j int) bool {
		return categories[i].Name < categories[j].Name
	})

	s.mu.Lock()
	s.cached = categories
	s.cachedAt = time.Now()
	s.mu.Unlock()

	return categories, nil
}

func categoryToRow(c *models.Category) interfaces.Row {
	return interfaces.Row{
		"name":   c.Name,
		"kind":   string(c.Kind),
		"color":  c.Color,
		"icon":   c.Icon,
		"active": c.Active,
	}
}

func categoryFromRow(row interfaces.Row) models.Category {
	createdAt, _ := time.Parse(time.RFC3339, row.GetString("created_at"))
	return models.Category{
		ID:        row.GetString("id"),
		Name:      row.GetString("name"),
		Kind:      models.CategoryKind(row.GetString("kind")),
		Color:     row.GetString("color"),
		Icon:      row.GetString("icon"),
		Active:    row.GetBool("active"),
		CreatedAt: createdAt,
	}
}
