package realtime

import (
	"context"
	"sync"

	"github.com/ourstory/scrapbook/internal/store"
)

// MemoryBroker delivers in-process, synchronously on the publishing goroutine.
type MemoryBroker struct {
	mu     sync.RWMutex
	nextID int
	subs   map[string]map[int]*memorySub
}

type memorySub struct {
	broker *MemoryBroker
	table  string
	id     int
	filter store.Filter
	fn     Handler
	once   sync.Once
	done   chan struct{}
}

func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{subs: make(map[string]map[int]*memorySub)}
}

func (b *MemoryBroker) Publish(ctx context.Context, table string, rec store.Record) error {
	b.mu.RLock()
	targets := make([]*memorySub, 0, len(b.subs[table]))
	for _, s := range b.subs[table] {
		targets = append(targets, s)
	}
	b.mu.RUnlock()
	for _, s := range targets {
		if s.filter.Match(rec) {
			s.fn(rec.Clone())
		}
	}
	return nil
}

func (b *MemoryBroker) Subscribe(ctx context.Context, table string, f store.Filter, fn Handler) (Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.Lock()
	b.nextID++
	s := &memorySub{broker: b, table: table, id: b.nextID, filter: f, fn: fn, done: make(chan struct{})}
	if b.subs[table] == nil {
		b.subs[table] = make(map[int]*memorySub)
	}
	b.subs[table][s.id] = s
	b.mu.Unlock()
	go func() {
		select {
		case <-ctx.Done():
			_ = s.Close()
		case <-s.done:
		}
	}()
	return s, nil
}

// Subscribers counts live subscriptions on table.
func (b *MemoryBroker) Subscribers(table string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[table])
}

func (s *memorySub) Close() error {
	s.once.Do(func() {
		close(s.done)
		s.broker.mu.Lock()
		delete(s.broker.subs[s.table], s.id)
		s.broker.mu.Unlock()
	})
	return nil
}
