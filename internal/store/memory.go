package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Memory is an in-process Tables implementation used for development and tests.
type Memory struct {
	mu     sync.RWMutex
	tables map[string][]Record
	now    func() time.Time
	newID  func() string
}

// MemoryOption configures a Memory store.
type MemoryOption func(*Memory)

// WithClock overrides the created_at clock.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *Memory) { m.now = now }
}

func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		tables: make(map[string][]Record),
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

func (m *Memory) Select(ctx context.Context, table string, q Query) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	out := make([]Record, 0, len(m.tables[table]))
	for _, r := range m.tables[table] {
		if q.Filter.Match(r) {
			out = append(out, r.Clone())
		}
	}
	m.mu.RUnlock()

	if q.Order != nil {
		field, desc := q.Order.Field, q.Order.Desc
		sort.SliceStable(out, func(i, j int) bool {
			c := compare(out[i][field], out[j][field])
			if desc {
				return c > 0
			}
			return c < 0
		})
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (m *Memory) Insert(ctx context.Context, table string, rec Record) (Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	row := rec.Clone()
	delete(row, FieldID)
	row[FieldID] = m.newID()
	row[FieldCreatedAt] = Timestamp(m.now())

	m.mu.Lock()
	m.tables[table] = append(m.tables[table], row)
	m.mu.Unlock()
	return row.Clone(), nil
}

func (m *Memory) Update(ctx context.Context, table string, f Filter, patch Record) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var matched int64
	for _, r := range m.tables[table] {
		if !f.Match(r) {
			continue
		}
		matched++
		for k, v := range patch {
			if k == FieldID || k == FieldCreatedAt {
				continue
			}
			r[k] = v
		}
	}
	return matched, nil
}

func (m *Memory) Delete(ctx context.Context, table string, f Filter) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	rows := m.tables[table]
	kept := rows[:0]
	for _, r := range rows {
		if !f.Match(r) {
			kept = append(kept, r)
		}
	}
	m.tables[table] = kept
	return nil
}

// Len returns the number of rows in a table.
func (m *Memory) Len(table string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.tables[table])
}
