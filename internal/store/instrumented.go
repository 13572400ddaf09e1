package store

import (
	"context"
	"time"

	"github.com/ourstory/scrapbook/pkg/metrics"
)

// Instrumented records per-call prometheus metrics around another Tables.
type Instrumented struct {
	next Tables
}

func NewInstrumented(next Tables) *Instrumented { return &Instrumented{next: next} }

func observe(table, op string, start time.Time, err error) {
	metrics.StoreOps.WithLabelValues(table, op, metrics.Result(err)).Inc()
	metrics.StoreLatency.WithLabelValues(table, op).Observe(time.Since(start).Seconds())
}

func (i *Instrumented) Select(ctx context.Context, table string, q Query) ([]Record, error) {
	start := time.Now()
	rows, err := i.next.Select(ctx, table, q)
	observe(table, "select", start, err)
	return rows, err
}

func (i *Instrumented) Insert(ctx context.Context, table string, rec Record) (Record, error) {
	start := time.Now()
	out, err := i.next.Insert(ctx, table, rec)
	observe(table, "insert", start, err)
	return out, err
}

func (i *Instrumented) Update(ctx context.Context, table string, f Filter, patch Record) (int64, error) {
	start := time.Now()
	n, err := i.next.Update(ctx, table, f, patch)
	observe(table, "update", start, err)
	return n, err
}

func (i *Instrumented) Delete(ctx context.Context, table string, f Filter) error {
	start := time.Now()
	err := i.next.Delete(ctx, table, f)
	observe(table, "delete", start, err)
	return err
}
