// Package store is the remote table store: table-like collections with
// list/filter/insert/update/delete over flat wire records.
package store

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"time"
)

var ErrNoRows = errors.New("no matching rows")

const (
	FieldID        = "id"
	FieldCreatedAt = "created_at"
)

// TimestampLayout is the fixed-width UTC layout used for created_at so that
// string order equals time order.
const TimestampLayout = "2006-01-02T15:04:05.000000000Z"

// Timestamp formats t as a created_at value.
func Timestamp(t time.Time) string { return t.UTC().Format(TimestampLayout) }

// Record is one wire row. Lists and dates are carried as text.
type Record map[string]any

// Clone returns a shallow copy.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// ID returns the row identifier, empty when absent.
func (r Record) ID() string {
	s, _ := r[FieldID].(string)
	return s
}

// Cond is one equality condition.
type Cond struct {
	Field string
	Value any
}

// Filter is an AND of equality conditions. An empty filter matches every row.
type Filter []Cond

// Eq starts a filter.
func Eq(field string, value any) Filter { return Filter{{Field: field, Value: value}} }

// And appends a condition.
func (f Filter) And(field string, value any) Filter {
	out := make(Filter, len(f), len(f)+1)
	copy(out, f)
	return append(out, Cond{Field: field, Value: value})
}

// Match reports whether r satisfies every condition.
func (f Filter) Match(r Record) bool {
	for _, c := range f {
		v, ok := r[c.Field]
		if !ok || !equal(v, c.Value) {
			return false
		}
	}
	return true
}

// Order sorts by one field.
type Order struct {
	Field string
	Desc  bool
}

// Query selects rows.
type Query struct {
	Filter Filter
	Order  *Order
	Limit  int
}

// Tables is the store surface the core consumes.
type Tables interface {
	Select(ctx context.Context, table string, q Query) ([]Record, error)
	// Insert stores rec and returns it with id and created_at assigned.
	Insert(ctx context.Context, table string, rec Record) (Record, error)
	// Update applies patch to every matching row and reports how many matched.
	Update(ctx context.Context, table string, f Filter, patch Record) (int64, error)
	Delete(ctx context.Context, table string, f Filter) error
}

// SelectOne returns the first matching row or ErrNoRows.
func SelectOne(ctx context.Context, t Tables, table string, f Filter) (Record, error) {
	rows, err := t.Select(ctx, table, Query{Filter: f, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: %w", table, ErrNoRows)
	}
	return rows[0], nil
}

func equal(a, b any) bool {
	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			return fa == fb
		}
		return false
	}
	if sa, ok := toString(a); ok {
		if sb, ok := toString(b); ok {
			return sa == sb
		}
		return false
	}
	return reflect.DeepEqual(a, b)
}

// compare orders two wire values; values of mismatched kinds compare equal.
func compare(a, b any) int {
	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			switch {
			case fa < fb:
				return -1
			case fa > fb:
				return 1
			}
			return 0
		}
	}
	if sa, ok := toString(a); ok {
		if sb, ok := toString(b); ok {
			switch {
			case sa < sb:
				return -1
			case sa > sb:
				return 1
			}
			return 0
		}
	}
	if ba, ok := a.(bool); ok {
		if bb, ok := b.(bool); ok && ba != bb {
			if !ba {
				return -1
			}
			return 1
		}
	}
	return 0
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// toString accepts string and named string types (e.g. identity.Role).
func toString(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case fmt.Stringer:
		return s.String(), true
	}
	return "", false
}
