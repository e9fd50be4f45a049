package models

import (
	"time"
)

// CategoryKind defines the kind of category
type CategoryKind string

const (
	// CategoryKindIncome represents an income category
	CategoryKindIncome CategoryKind = "income"

	// CategoryKindExpense represents an expense category
	CategoryKindExpense CategoryKind = "expense"
)

// Category represents a labeled bucket for classifying ledger entries.
// Categories are never hard-deleted while referenced by entries; operators
// deactivate them instead, and historical entries keep aggregating under the
// deactivated name.
type Category struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Kind      CategoryKind `json:"kind"`
	Color     string       `json:"color,omitempty"`
	Icon      string       `json:"icon,omitempty"`
	Active    bool         `json:"active"`
	CreatedAt time.Time    `json:"createdAt"`
}

// NewCategory creates a new active category
func NewCategory(name string, kind CategoryKind, color, icon string) *Category {
	return &Category{
		Name:      name,
		Kind:      kind,
		Color:     color,
		Icon:      icon,
		Active:    true,
		CreatedAt: time.Now(),
	}
}

// Validate checks if the category is valid
func (c *Category) Validate() error {
	if c.Name == "" {
		return ErrMissingCategoryName
	}

	if c.Kind != CategoryKindIncome && c.Kind != CategoryKindExpense {
		return ErrInvalidCategoryKind
	}

	return nil
}

// MatchesEntryKind checks if the category kind matches the entry kind
func (c *Category) MatchesEntryKind(kind EntryKind) bool {
	switch kind {
	case EntryKindIncome:
		return c.Kind == CategoryKindIncome
	case EntryKindExpense:
		return c.Kind == CategoryKindExpense
	default:
		return false
	}
}

// DefaultCategories is the minimum vocabulary seeded on first use.
var DefaultCategories = []Category{
	{Name: "Ventas", Kind: CategoryKindIncome, Color: "#4CAF50"},
	{Name: "Servicios", Kind: CategoryKindIncome, Color: "#8BC34A"},
	{Name: "Subvenciones", Kind: CategoryKindIncome, Color: "#CDDC39"},
	{Name: "Otros Ingresos", Kind: CategoryKindIncome, Color: "#009688"},
	{Name: "Compras", Kind: CategoryKindExpense, Color: "#F44336"},
	{Name: "Salarios", Kind: CategoryKindExpense, Color: "#E91E63"},
	{Name: "Alquiler", Kind: CategoryKindExpense, Color: "#9C27B0"},
	{Name: "Servicios Públicos", Kind: CategoryKindExpense, Color: "#673AB7"},
	{Name: "Mantenimiento", Kind: CategoryKindExpense, Color: "#3F51B5"},
	{Name: "Marketing", Kind: CategoryKindExpense, Color: "#FF9800"},
	{Name: "Otros Gastos", Kind: CategoryKindExpense, Color: "#795548"},
}
