package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ourstory/scrapbook/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func steppingClock(start time.Time) func() time.Time {
	t := start
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func TestMemoryCRUD(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	row, err := m.Insert(ctx, "jokes", Record{"title": "penguin", "id": "client-supplied"})
	require.NoError(t, err)
	id := row.ID()
	require.NotEmpty(t, id)
	require.NotEqual(t, "client-supplied", id)
	require.NotEmpty(t, row[FieldCreatedAt])

	got, err := SelectOne(ctx, m, "jokes", Eq(FieldID, id))
	require.NoError(t, err)
	require.Equal(t, "penguin", got["title"])

	n, err := m.Update(ctx, "jokes", Eq(FieldID, id), Record{"title": "walrus", FieldCreatedAt: "tampered"})
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
	got, err = SelectOne(ctx, m, "jokes", Eq(FieldID, id))
	require.NoError(t, err)
	require.Equal(t, "walrus", got["title"])
	require.Equal(t, row[FieldCreatedAt], got[FieldCreatedAt])

	n, err = m.Update(ctx, "jokes", Eq(FieldID, "missing"), Record{"title": "x"})
	require.NoError(t, err)
	require.Zero(t, n)

	require.NoError(t, m.Delete(ctx, "jokes", Eq(FieldID, id)))
	_, err = SelectOne(ctx, m, "jokes", Eq(FieldID, id))
	require.True(t, errors.Is(err, ErrNoRows))
	require.Zero(t, m.Len("jokes"))
}

func TestMemorySelectReturnsCopies(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	row, err := m.Insert(ctx, "reasons", Record{"text": "smile"})
	require.NoError(t, err)
	row["text"] = "mutated"

	rows, err := m.Select(ctx, "reasons", Query{})
	require.NoError(t, err)
	rows[0]["text"] = "mutated again"

	rows, err = m.Select(ctx, "reasons", Query{})
	require.NoError(t, err)
	require.Equal(t, "smile", rows[0]["text"])
}

func TestMemoryFilterOrderLimit(t *testing.T) {
	m := NewMemory(WithClock(steppingClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))))
	ctx := context.Background()
	for _, r := range []Record{
		{"user_id": "user1", "read": false, "n": 1},
		{"user_id": "user2", "read": false, "n": 2},
		{"user_id": "user1", "read": true, "n": 3},
		{"user_id": "user1", "read": false, "n": 4},
	} {
		_, err := m.Insert(ctx, "notifications", r)
		require.NoError(t, err)
	}

	rows, err := m.Select(ctx, "notifications", Query{
		Filter: Eq("user_id", "user1").And("read", false),
		Order:  &Order{Field: FieldCreatedAt, Desc: true},
	})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, 4, rows[0]["n"])
	require.Equal(t, 1, rows[1]["n"])

	rows, err = m.Select(ctx, "notifications", Query{Order: &Order{Field: "n"}, Limit: 2})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, 1, rows[0]["n"])
	require.Equal(t, 2, rows[1]["n"])

	n, err := m.Update(ctx, "notifications", Eq("user_id", "user1").And("read", false), Record{"read": true})
	require.NoError(t, err)
	require.EqualValues(t, 2, n)
}

type roleLike string

func (r roleLike) String() string { return string(r) }

func TestFilterMatchesNamedStringsAndNumbers(t *testing.T) {
	r := Record{"user_id": "user1", "x": float64(3)}
	require.True(t, Eq("user_id", roleLike("user1")).Match(r))
	require.True(t, Eq("x", 3).Match(r))
	require.False(t, Eq("x", "3").Match(r))
	require.False(t, Eq("missing", nil).Match(r))
	require.True(t, Filter(nil).Match(r))
}

func TestTimestampSortsLexically(t *testing.T) {
	a := Timestamp(time.Date(2024, 5, 1, 10, 0, 5, 0, time.UTC))
	b := Timestamp(time.Date(2024, 5, 1, 10, 0, 5, 100, time.UTC))
	c := Timestamp(time.Date(2024, 5, 1, 10, 0, 6, 0, time.FixedZone("x", 3600)))
	require.Less(t, a, b)
	require.Less(t, c, a) // 09:00:06 UTC
	require.Len(t, a, len(b))
}

func TestInstrumentedCountsOps(t *testing.T) {
	tables := NewInstrumented(NewMemory())
	ctx := context.Background()
	before := testutil.ToFloat64(metrics.StoreOps.WithLabelValues("compliments", "insert", "ok"))
	_, err := tables.Insert(ctx, "compliments", Record{"text": "kind"})
	require.NoError(t, err)
	_, err = tables.Select(ctx, "compliments", Query{})
	require.NoError(t, err)
	require.Equal(t, before+1, testutil.ToFloat64(metrics.StoreOps.WithLabelValues("compliments", "insert", "ok")))

	cctx, cancel := context.WithCancel(ctx)
	cancel()
	_, err = tables.Select(cctx, "compliments", Query{})
	require.Error(t, err)
	require.GreaterOrEqual(t, testutil.ToFloat64(metrics.StoreOps.WithLabelValues("compliments", "select", "error")), 1.0)
}
