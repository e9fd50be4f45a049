package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/marcosvidal/carniceria-go/interfaces"
	"github.com/marcosvidal/carniceria-go/internal"
)

// SQLiteStore is the embedded-file fallback implementation of the Store
// capability, used when the hosted backend is unreachable.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

var identifierPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// NewSQLiteStore opens (or creates) the fallback database file.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create fallback directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open fallback database: %w", err)
	}

	// The fallback shares the host process; one connection is enough and
	// avoids SQLITE_BUSY on concurrent sessions.
	db.SetMaxOpenConns(1)

	if err := initializeSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteStore{db: db, path: path}, nil
}

// Initialize database tables
func initializeSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS daily_income (
			id TEXT PRIMARY KEY,
			date TEXT NOT NULL,
			amount DECIMAL(10,2) NOT NULL,
			category TEXT NOT NULL,
			description TEXT,
			payment_method TEXT NOT NULL,
			actor_id TEXT,
			created_at TEXT NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to create daily_income table: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS daily_expenses (
			id TEXT PRIMARY KEY,
			date TEXT NOT NULL,
			amount DECIMAL(10,2) NOT NULL,
			category TEXT NOT NULL,
			description TEXT,
			supplier TEXT,
			payment_method TEXT NOT NULL,
			actor_id TEXT,
			created_at TEXT NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to create daily_expenses table: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS accounting_categories (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			kind TEXT NOT NULL,
			color TEXT,
			icon TEXT,
			active INTEGER NOT NULL DEFAULT 1,
			created_at TEXT NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to create accounting_categories table: %w", err)
	}

	// Duplicate active categories are rejected at the registry layer too;
	// the partial index keeps a second writer honest.
	_, err = db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_active_category
		ON accounting_categories(name, kind) WHERE active = 1;
	`)
	if err != nil {
		return fmt.Errorf("failed to create category index: %w", err)
	}

	for _, ddl := range []string{
		`CREATE INDEX IF NOT EXISTS idx_income_date ON daily_income(date);`,
		`CREATE INDEX IF NOT EXISTS idx_expenses_date ON daily_expenses(date);`,
	} {
		if _, err := db.Exec(ddl); err != nil {
			return fmt.Errorf("failed to create date index: %w", err)
		}
	}

	return nil
}

// Name identifies the backend for logging.
func (s *SQLiteStore) Name() string {
	return "sqlite:" + s.path
}

// Close closes the database file.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Select returns the rows matching the query.
func (s *SQLiteStore) Select(ctx context.Context, table string, query interfaces.Query) ([]interfaces.Row, error) {
	if err := checkIdentifier(table); err != nil {
		return nil, interfaces.NewStoreError(interfaces.StoreErrUnknown, "select", table, err)
	}

	sqlText, args, err := buildSelect(table, query)
	if err != nil {
		return nil, interfaces.NewStoreError(interfaces.StoreErrUnknown, "select", table, err)
	}

	rows, err := s.db.QueryContext(ctx, sqlText, args...)
	if err != nil {
		return nil, mapSQLiteError("select", table, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, mapSQLiteError("select", table, err)
	}

	result := make([]interfaces.Row, 0)
	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, mapSQLiteError("select", table, err)
		}

		row := make(interfaces.Row, len(columns))
		for i, column := range columns {
			if b, ok := values[i].([]byte); ok {
				row[column] = string(b)
			} else {
				row[column] = values[i]
			}
		}
		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, mapSQLiteError("select", table, err)
	}

	return result, nil
}

// Insert stores a new row, assigning id and created_at.
func (s *SQLiteStore) Insert(ctx context.Context, table string, row interfaces.Row) (interfaces.Row, error) {
	if err := checkIdentifier(table); err != nil {
		return nil, interfaces.NewStoreError(interfaces.StoreErrUnknown, "insert", table, err)
	}

	stored := make(interfaces.Row, len(row)+2)
	for k, v := range row {
		stored[k] = v
	}
	stored["id"] = uuid.New().String()
	stored["created_at"] = time.Now().UTC().Format(time.RFC3339)

	columns := make([]string, 0, len(stored))
	placeholders := make([]string, 0, len(stored))
	args := make([]any, 0, len(stored))
	for column, value := range stored {
		if err := checkIdentifier(column); err != nil {
			return nil, interfaces.NewStoreError(interfaces.StoreErrUnknown, "insert", table, err)
		}
		columns = append(columns, column)
		placeholders = append(placeholders, "?")
		args = append(args, value)
	}

	sqlText := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(columns, ", "), strings.Join(placeholders, ", "))

	if _, err := s.db.ExecContext(ctx, sqlText, args...); err != nil {
		return nil, mapSQLiteError("insert", table, err)
	}

	return stored, nil
}

// Update applies a column patch to the row with the given id.
func (s *SQLiteStore) Update(ctx context.Context, table string, id string, patch interfaces.Row) (bool, error) {
	if err := checkIdentifier(table); err != nil {
		return false, interfaces.NewStoreError(interfaces.StoreErrUnknown, "update", table, err)
	}
	if len(patch) == 0 {
		return true, nil
	}

	assignments := make([]string, 0, len(patch))
	args := make([]any, 0, len(patch)+1)
	for column, value := range patch {
		if err := checkIdentifier(column); err != nil {
			return false, interfaces.NewStoreError(interfaces.StoreErrUnknown, "update", table, err)
		}
		assignments = append(assignments, column+" = ?")
		args = append(args, value)
	}
	args = append(args, id)

	sqlText := fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", table, strings.Join(assignments, ", "))

	result, err := s.db.ExecContext(ctx, sqlText, args...)
	if err != nil {
		return false, mapSQLiteError("update", table, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, mapSQLiteError("update", table, err)
	}
	return affected > 0, nil
}

// Delete removes the row with the given id.
func (s *SQLiteStore) Delete(ctx context.Context, table string, id string) (bool, error) {
	if err := checkIdentifier(table); err != nil {
		return false, interfaces.NewStoreError(interfaces.StoreErrUnknown, "delete", table, err)
	}

	result, err := s.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = ?", table), id)
	if err != nil {
		return false, mapSQLiteError("delete", table, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, mapSQLiteError("delete", table, err)
	}
	return affected > 0, nil
}

// Probe verifies the accounting tables exist and that the amount columns are
// provisioned at DECIMAL(10,2) or wider. A narrower column is the historical
// overflow defect and fails loudly.
func (s *SQLiteStore) Probe(ctx context.Context) error {
	for _, table := range internal.AccountingTables {
		declared, err := s.columnTypes(ctx, table)
		if err != nil {
			return err
		}
		if len(declared) == 0 {
			return interfaces.NewStoreError(interfaces.StoreErrSchemaMismatch, "probe", table,
				fmt.Errorf("table does not exist"))
		}

		for _, column := range expectedColumns(table) {
			declType, ok := declared[column]
			if !ok {
				return interfaces.NewStoreError(interfaces.StoreErrSchemaMismatch, "probe", table,
					fmt.Errorf("missing column %q", column))
			}
			if column == "amount" {
				if err := checkAmountPrecision(table, declType); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (s *SQLiteStore) columnTypes(ctx context.Context, table string) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return nil, mapSQLiteError("probe", table, err)
	}
	defer rows.Close()

	declared := make(map[string]string)
	for rows.Next() {
		var cid int
		var name, declType string
		var notNull int
		var dflt sql.NullString
		var pk int
		if err := rows.Scan(&cid, &name, &declType, &notNull, &dflt, &pk); err != nil {
			return nil, mapSQLiteError("probe", table, err)
		}
		declared[name] = declType
	}
	return declared, rows.Err()
}

var precisionPattern = regexp.MustCompile(`(?i)^(?:DECIMAL|NUMERIC)\s*\(\s*(\d+)\s*,\s*(\d+)\s*\)$`)

func checkAmountPrecision(table, declType string) error {
	m := precisionPattern.FindStringSubmatch(strings.TrimSpace(declType))
	if m == nil {
		return interfaces.NewStoreError(interfaces.StoreErrSchemaMismatch, "probe", table,
			fmt.Errorf("amount column declared %q, want DECIMAL(10,2)", declType))
	}
	var precision, scale int
	fmt.Sscanf(m[1], "%d", &precision)
	fmt.Sscanf(m[2], "%d", &scale)
	if precision < 10 || scale != 2 {
		return interfaces.NewStoreError(interfaces.StoreErrSchemaMismatch, "probe", table,
			fmt.Errorf("amount column declared %q, too narrow for shop turnover", declType))
	}
	return nil
}

func expectedColumns(table string) []string {
	switch table {
	case internal.TableDailyIncome:
		return []string{"id", "date", "amount", "category", "description", "payment_method", "created_at"}
	case internal.TableDailyExpenses:
		return []string{"id", "date", "amount", "category", "description", "supplier", "payment_method", "created_at"}
	case internal.TableCategories:
		return []string{"id", "name", "kind", "color", "icon", "active", "created_at"}
	default:
		return nil
	}
}

func checkIdentifier(name string) error {
	if !identifierPattern.MatchString(name) {
		return fmt.Errorf("invalid identifier %q", name)
	}
	return nil
}

func buildSelect(table string, query interfaces.Query) (string, []any, error) {
	var sb strings.Builder
	sb.WriteString("SELECT * FROM ")
	sb.WriteString(table)

	args := make([]any, 0, len(query.Filters))
	for i, filter := range query.Filters {
		if err := checkIdentifier(filter.Column); err != nil {
			return "", nil, err
		}
		if i == 0 {
			sb.WriteString(" WHERE ")
		} else {
			sb.WriteString(" AND ")
		}
		switch filter.Op {
		case interfaces.OpEq:
			sb.WriteString(filter.Column + " = ?")
		case interfaces.OpGte:
			sb.WriteString(filter.Column + " >= ?")
		case interfaces.OpLte:
			sb.WriteString(filter.Column + " <= ?")
		case interfaces.OpLike:
			sb.WriteString(filter.Column + " LIKE ?")
		default:
			return "", nil, fmt.Errorf("unsupported filter op %q", filter.Op)
		}
		args = append(args, filter.Value)
	}

	for i, order := range query.OrderBy {
		if err := checkIdentifier(order.Column); err != nil {
			return "", nil, err
		}
		if i == 0 {
			sb.WriteString(" ORDER BY ")
		} else {
			sb.WriteString(", ")
		}
		sb.WriteString(order.Column)
		if order.Desc {
			sb.WriteString(" DESC")
		} else {
			sb.WriteString(" ASC")
		}
	}

	if query.Limit > 0 {
		sb.WriteString(fmt.Sprintf(" LIMIT %d", query.Limit))
	}

	return sb.String(), args, nil
}

func mapSQLiteError(op, table string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return interfaces.NewStoreError(interfaces.StoreErrConnectivity, op, table, err)
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"),
		strings.Contains(msg, "constraint failed"):
		return interfaces.NewStoreError(interfaces.StoreErrConstraintViolation, op, table, err)
	case strings.Contains(msg, "no such table"),
		strings.Contains(msg, "no such column"):
		return interfaces.NewStoreError(interfaces.StoreErrSchemaMismatch, op, table, err)
	case strings.Contains(msg, "database is locked"),
		strings.Contains(msg, "disk I/O error"):
		return interfaces.NewStoreError(interfaces.StoreErrConnectivity, op, table, err)
	default:
		return interfaces.NewStoreError(interfaces.StoreErrUnknown, op, table, err)
	}
}
