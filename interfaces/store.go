package interfaces

import (
	"context"
	"errors"
	"fmt"
)

// Row is a single record in a backing table, keyed by column name.
type Row map[string]any

// FilterOp is a comparison operator supported by Select.
type FilterOp string

const (
	OpEq   FilterOp = "eq"
	OpGte  FilterOp = "gte"
	OpLte  FilterOp = "lte"
	OpLike FilterOp = "like"
)

// Filter restricts a Select to rows matching a single column comparison.
type Filter struct {
	Column string
	Op     FilterOp
	Value  any
}

// Order describes a sort column for Select.
type Order struct {
	Column string
	Desc   bool
}

// Query bundles the filter, ordering and limit of a Select call.
type Query struct {
	Filters []Filter
	OrderBy []Order
	Limit   int
}

// Store is the table-oriented persistence capability the accounting core
// depends on. Concrete backends are the hosted REST service (primary) and
// the embedded SQLite file (fallback); callers never see which one is bound.
type Store interface {
	// Select returns the rows matching the query. The result is empty,
	// never nil, when nothing matches.
	Select(ctx context.Context, table string, query Query) ([]Row, error)

	// Insert stores a new row and returns it with the backend-assigned id
	// and created_at filled in.
	Insert(ctx context.Context, table string, row Row) (Row, error)

	// Update applies a column patch to the row with the given id. It
	// returns false, without error, when no row has that id.
	Update(ctx context.Context, table string, id string, patch Row) (bool, error)

	// Delete removes the row with the given id. It returns false, without
	// error, when no row has that id.
	Delete(ctx context.Context, table string, id string) (bool, error)

	// Probe verifies connectivity and that the accounting tables carry the
	// expected columns and amount precision.
	Probe(ctx context.Context) error

	// Name identifies the backend for logging.
	Name() string

	// Close releases the backend resources.
	Close() error
}

// StoreProvider hands out the currently bound Store. The binding may be
// forced between backends for diagnostics, so holders resolve it per call
// instead of capturing a Store once.
type StoreProvider interface {
	Store() Store
}

// StoreErrorKind classifies a Store failure.
type StoreErrorKind string

const (
	StoreErrConnectivity        StoreErrorKind = "connectivity"
	StoreErrNotFound            StoreErrorKind = "not_found"
	StoreErrConstraintViolation StoreErrorKind = "constraint_violation"
	StoreErrSchemaMismatch      StoreErrorKind = "schema_mismatch"
	StoreErrUnknown             StoreErrorKind = "unknown"
)

// StoreError is the single error shape every Store operation fails with.
type StoreError struct {
	Kind  StoreErrorKind
	Op    string
	Table string
	Err   error
}

func (e *StoreError) Error() string {
	if e.Table != "" {
		return fmt.Sprintf("store %s %s: %s: %v", e.Op, e.Table, e.Kind, e.Err)
	}
	return fmt.Sprintf("store %s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError builds a StoreError for the given operation.
func NewStoreError(kind StoreErrorKind, op, table string, err error) *StoreError {
	return &StoreError{Kind: kind, Op: op, Table: table, Err: err}
}

// StoreErrorKindOf extracts the kind from an error chain, or StoreErrUnknown
// when the error did not originate in a Store.
func StoreErrorKindOf(err error) StoreErrorKind {
	var se *StoreError
	if errors.As(err, &se) {
		return se.Kind
	}
	return StoreErrUnknown
}

// GetString reads a column as a string, tolerating missing or non-string
// values as the empty string.
func (r Row) GetString(column string) string {
	if v, ok := r[column]; ok {
		if s, ok := v.(string); ok {
			return s
		}
		if v != nil {
			return fmt.Sprintf("%v", v)
		}
	}
	return ""
}

// GetBool reads a column as a bool. SQLite reports booleans as integers.
func (r Row) GetBool(column string) bool {
	switch v := r[column].(type) {
	case bool:
		return v
	case int64:
		return v != 0
	case float64:
		return v != 0
	case string:
		return v == "true" || v == "1"
	default:
		return false
	}
}
