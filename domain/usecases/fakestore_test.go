package usecases

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/marcosvidal/carniceria-go/interfaces"
)

// fakeStore is an in-memory Store used to exercise the services without a
// backend. It honours the same contract: Select never returns nil, Update
// and Delete report false for a missing id.
type fakeStore struct {
	mu     sync.Mutex
	tables map[string][]interfaces.Row
	seq    int

	selectErr error
	insertErr error
	updateErr error
	deleteErr error

	selectCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{tables: make(map[string][]interfaces.Row)}
}

func (s *fakeStore) Select(ctx context.Context, table string, query interfaces.Query) ([]interfaces.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.selectCalls++
	if s.selectErr != nil {
		return nil, s.selectErr
	}

	matched := make([]interfaces.Row, 0)
	for _, row := range s.tables[table] {
		if rowMatches(row, query.Filters) {
			matched = append(matched, cloneRow(row))
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		for _, order := range query.OrderBy {
			a := matched[i].GetString(order.Column)
			b := matched[j].GetString(order.Column)
			if a == b {
				continue
			}
			if order.Desc {
				return a > b
			}
			return a < b
		}
		return false
	})

	if query.Limit > 0 && len(matched) > query.Limit {
		matched = matched[:query.Limit]
	}
	return matched, nil
}

func (s *fakeStore) Insert(ctx context.Context, table string, row interfaces.Row) (interfaces.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.insertErr != nil {
		return nil, s.insertErr
	}

	stored := cloneRow(row)
	stored["id"] = uuid.New().String()
	// Monotonic created_at so insertion order is observable through sorting.
	s.seq++
	stored["created_at"] = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC).
		Add(time.Duration(s.seq) * time.Second).Format(time.RFC3339)

	s.tables[table] = append(s.tables[table], stored)
	return cloneRow(stored), nil
}

func (s *fakeStore) Update(ctx context.Context, table string, id string, patch interfaces.Row) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.updateErr != nil {
		return false, s.updateErr
	}

	for _, row := range s.tables[table] {
		if row.GetString("id") == id {
			for col, val := range patch {
				row[col] = val
			}
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeStore) Delete(ctx context.Context, table string, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.deleteErr != nil {
		return false, s.deleteErr
	}

	rows := s.tables[table]
	for i, row := range rows {
		if row.GetString("id") == id {
			s.tables[table] = append(rows[:i], rows[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeStore) Probe(ctx context.Context) error { return nil }
func (s *fakeStore) Name() string                    { return "fake" }
func (s *fakeStore) Close() error                    { return nil }

// count reports how many rows a table holds.
func (s *fakeStore) count(table string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tables[table])
}

type fakeProvider struct {
	store interfaces.Store
}

func (p *fakeProvider) Store() interfaces.Store { return p.store }

func rowMatches(row interfaces.Row, filters []interfaces.Filter) bool {
	for _, f := range filters {
		have := row.GetString(f.Column)
		want := fmt.Sprintf("%v", f.Value)
		switch f.Op {
		case interfaces.OpEq:
			if have != want {
				return false
			}
		case interfaces.OpGte:
			if have < want {
				return false
			}
		case interfaces.OpLte:
			if have > want {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func cloneRow(row interfaces.Row) interfaces.Row {
	out := make(interfaces.Row, len(row))
	for k, v := range row {
		out[k] = v
	}
	return out
}
