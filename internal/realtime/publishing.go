package realtime

import (
	"context"

	"github.com/ourstory/scrapbook/internal/store"
)

// Publishing wraps a table store so inserts into watched tables are pushed
// to the broker. A failed publish is logged; the insert still succeeds.
type Publishing struct {
	store.Tables
	broker  Broker
	watched map[string]bool
}

func NewPublishing(tables store.Tables, broker Broker, watched ...string) *Publishing {
	w := make(map[string]bool, len(watched))
	for _, t := range watched {
		w[t] = true
	}
	return &Publishing{Tables: tables, broker: broker, watched: w}
}

func (p *Publishing) Insert(ctx context.Context, table string, rec store.Record) (store.Record, error) {
	out, err := p.Tables.Insert(ctx, table, rec)
	if err != nil || !p.watched[table] {
		return out, err
	}
	if perr := p.broker.Publish(ctx, table, out); perr != nil {
		log.Warnf("publish %s insert %s failed (ignored): %v", table, out.ID(), perr)
	}
	return out, nil
}
