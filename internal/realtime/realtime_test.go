package realtime

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ourstory/scrapbook/internal/store"
)

// collector gathers delivered records.
type collector struct {
	mu   sync.Mutex
	recs []store.Record
}

func (c *collector) handle(r store.Record) {
	c.mu.Lock()
	c.recs = append(c.recs, r)
	c.mu.Unlock()
}

func (c *collector) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.recs)
}

func (c *collector) at(i int) store.Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.recs[i]
}

func TestBackoffNext(t *testing.T) {
	var d time.Duration
	var seen []time.Duration
	for i := 0; i < 7; i++ {
		d = DefaultBackoff.Next(d)
		seen = append(seen, d)
	}
	assert.Equal(t, []time.Duration{
		time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second,
		16 * time.Second, 30 * time.Second, 30 * time.Second,
	}, seen)
}

func TestMemoryBrokerFilterAndClose(t *testing.T) {
	b := NewMemoryBroker()
	ctx := context.Background()
	var got collector
	sub, err := b.Subscribe(ctx, "notifications", store.Eq("user_id", "user2"), got.handle)
	require.NoError(t, err)

	require.NoError(t, b.Publish(ctx, "notifications", store.Record{"id": "1", "user_id": "user2"}))
	require.NoError(t, b.Publish(ctx, "notifications", store.Record{"id": "2", "user_id": "user1"}))
	require.NoError(t, b.Publish(ctx, "memories", store.Record{"id": "3", "user_id": "user2"}))
	require.Equal(t, 1, got.len())
	assert.Equal(t, "1", got.at(0).ID())

	require.NoError(t, sub.Close())
	require.NoError(t, sub.Close())
	require.NoError(t, b.Publish(ctx, "notifications", store.Record{"id": "4", "user_id": "user2"}))
	assert.Equal(t, 1, got.len())
	assert.Equal(t, 0, b.Subscribers("notifications"))
}

func TestMemoryBrokerContextEndsSubscription(t *testing.T) {
	b := NewMemoryBroker()
	ctx, cancel := context.WithCancel(context.Background())
	_, err := b.Subscribe(ctx, "notifications", nil, func(store.Record) {})
	require.NoError(t, err)
	require.Equal(t, 1, b.Subscribers("notifications"))
	cancel()
	require.Eventually(t, func() bool { return b.Subscribers("notifications") == 0 }, time.Second, 5*time.Millisecond)
}

type failingBroker struct{ calls int }

func (f *failingBroker) Publish(context.Context, string, store.Record) error {
	f.calls++
	return errors.New("broker down")
}

func (f *failingBroker) Subscribe(context.Context, string, store.Filter, Handler) (Subscription, error) {
	return nil, errors.New("broker down")
}

func TestPublishingPublishesWatchedInserts(t *testing.T) {
	b := NewMemoryBroker()
	mem := store.NewMemory()
	tables := NewPublishing(mem, b, "notifications")
	ctx := context.Background()

	var got collector
	_, err := b.Subscribe(ctx, "notifications", nil, got.handle)
	require.NoError(t, err)

	rec, err := tables.Insert(ctx, "notifications", store.Record{"title": "hi"})
	require.NoError(t, err)
	_, err = tables.Insert(ctx, "jokes", store.Record{"title": "knock knock"})
	require.NoError(t, err)

	require.Equal(t, 1, got.len())
	assert.Equal(t, rec.ID(), got.at(0).ID())
	assert.NotEmpty(t, got.at(0)[store.FieldCreatedAt])
}

func TestPublishingIgnoresBrokerFailure(t *testing.T) {
	fb := &failingBroker{}
	mem := store.NewMemory()
	tables := NewPublishing(mem, fb, "notifications")

	_, err := tables.Insert(context.Background(), "notifications", store.Record{"title": "hi"})
	require.NoError(t, err)
	assert.Equal(t, 1, fb.calls)
	assert.Equal(t, 1, mem.Len("notifications"))
}

func newRedis(t *testing.T) (*mr.Miniredis, *redis.Client) {
	t.Helper()
	m, err := mr.Run()
	require.NoError(t, err)
	t.Cleanup(m.Close)
	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return m, client
}

func TestRedisBrokerDelivery(t *testing.T) {
	_, client := newRedis(t)
	b := NewRedisBroker(client)
	ctx := context.Background()

	var got collector
	sub, err := b.Subscribe(ctx, "notifications", store.Eq("user_id", "user1"), got.handle)
	require.NoError(t, err)
	defer sub.Close()

	require.NoError(t, b.Publish(ctx, "notifications", store.Record{"id": "skip", "user_id": "user2"}))
	require.NoError(t, b.Publish(ctx, "notifications", store.Record{"id": "n1", "user_id": "user1", "read": false}))

	require.Eventually(t, func() bool { return got.len() == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, "n1", got.at(0).ID())
	assert.Equal(t, false, got.at(0)["read"])
}

func TestRedisBrokerResubscribesAfterDrop(t *testing.T) {
	_, client := newRedis(t)
	b := NewRedisBroker(client, WithBackoff(Backoff{Initial: 10 * time.Millisecond, Max: 40 * time.Millisecond}))
	ctx := context.Background()

	var got collector
	s, err := b.Subscribe(ctx, "notifications", nil, got.handle)
	require.NoError(t, err)
	defer s.Close()

	sub := s.(*redisSub)
	dropped := sub.current()
	require.NoError(t, dropped.Close())

	require.Eventually(t, func() bool {
		if sub.current() == dropped {
			return false
		}
		_ = b.Publish(ctx, "notifications", store.Record{"id": "after"})
		return got.len() > 0
	}, 3*time.Second, 20*time.Millisecond)
	assert.Equal(t, "after", got.at(0).ID())
}

func TestRedisBrokerSubscribeFailsWhenDown(t *testing.T) {
	m, client := newRedis(t)
	m.Close()
	b := NewRedisBroker(client)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err := b.Subscribe(ctx, "notifications", nil, func(store.Record) {})
	require.Error(t, err)
}
