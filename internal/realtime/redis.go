package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ourstory/scrapbook/internal/store"
)

// Channel is the pub/sub channel carrying inserts into table.
func Channel(table string) string { return "realtime:" + table }

// RedisBroker fans inserts out over Redis pub/sub. Payloads are JSON records;
// filters are applied by each subscriber.
type RedisBroker struct {
	client  *redis.Client
	backoff Backoff
}

type RedisOption func(*RedisBroker)

func WithBackoff(b Backoff) RedisOption {
	return func(r *RedisBroker) { r.backoff = b }
}

func NewRedisBroker(client *redis.Client, opts ...RedisOption) *RedisBroker {
	b := &RedisBroker{client: client, backoff: DefaultBackoff}
	for _, o := range opts {
		o(b)
	}
	return b
}

func (b *RedisBroker) Publish(ctx context.Context, table string, rec store.Record) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", table, err)
	}
	if err := b.client.Publish(ctx, Channel(table), payload).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", table, err)
	}
	return nil
}

// Subscribe blocks until Redis confirms the subscription. If the channel
// drops later the subscription re-subscribes with backoff until closed.
func (b *RedisBroker) Subscribe(ctx context.Context, table string, f store.Filter, fn Handler) (Subscription, error) {
	ch := Channel(table)
	ps, err := b.open(ctx, ch)
	if err != nil {
		return nil, err
	}
	subCtx, cancel := context.WithCancel(ctx)
	s := &redisSub{cancel: cancel, done: make(chan struct{}), ps: ps}
	go b.run(subCtx, s, ch, f, fn)
	return s, nil
}

func (b *RedisBroker) open(ctx context.Context, ch string) (*redis.PubSub, error) {
	ps := b.client.Subscribe(ctx, ch)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("subscribe %s: %w", ch, err)
	}
	return ps, nil
}

func (b *RedisBroker) run(ctx context.Context, s *redisSub, ch string, f store.Filter, fn Handler) {
	defer close(s.done)
	ps := s.current()
	for {
		if !consume(ctx, ps, f, fn) {
			_ = ps.Close()
			return
		}
		log.Warnf("%s channel dropped, re-subscribing", ch)
		next, err := b.reconnect(ctx, ch)
		if err != nil {
			return
		}
		ps = next
		s.swap(ps)
	}
}

// consume delivers messages until the channel closes (true) or ctx ends (false).
func consume(ctx context.Context, ps *redis.PubSub, f store.Filter, fn Handler) bool {
	msgs := ps.Channel()
	for {
		select {
		case <-ctx.Done():
			return false
		case m, ok := <-msgs:
			if !ok {
				return ctx.Err() == nil
			}
			var rec store.Record
			if err := json.Unmarshal([]byte(m.Payload), &rec); err != nil {
				log.Warnf("bad payload on %s: %v", m.Channel, err)
				continue
			}
			if f.Match(rec) {
				fn(rec)
			}
		}
	}
}

func (b *RedisBroker) reconnect(ctx context.Context, ch string) (*redis.PubSub, error) {
	var delay time.Duration
	for {
		delay = b.backoff.Next(delay)
		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		case <-t.C:
		}
		ps, err := b.open(ctx, ch)
		if err == nil {
			log.Infof("re-subscribed to %s", ch)
			return ps, nil
		}
		log.Warnf("re-subscribe %s failed, next attempt in %s: %v", ch, b.backoff.Next(delay), err)
	}
}

type redisSub struct {
	cancel context.CancelFunc
	done   chan struct{}

	mu sync.Mutex
	ps *redis.PubSub
}

func (s *redisSub) current() *redis.PubSub {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ps
}

func (s *redisSub) swap(ps *redis.PubSub) {
	s.mu.Lock()
	s.ps = ps
	s.mu.Unlock()
}

// Close stops delivery and waits for the receive loop to exit. It must not
// be called from inside the handler.
func (s *redisSub) Close() error {
	s.cancel()
	<-s.done
	return nil
}
