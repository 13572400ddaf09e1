// Package realtime is the push channel for row insertions. Subscribers
// register per table with an equality filter and receive matching rows as
// they are inserted.
package realtime

import (
	"context"
	"time"

	"github.com/ourstory/scrapbook/internal/store"
	"github.com/ourstory/scrapbook/pkg/logger"
)

var log = logger.Named("realtime")

// Handler receives one inserted row.
type Handler func(store.Record)

type Subscription interface {
	Close() error
}

type Broker interface {
	Publish(ctx context.Context, table string, rec store.Record) error
	// Subscribe returns once the subscription is live. It lasts until Close
	// is called or ctx is done.
	Subscribe(ctx context.Context, table string, f store.Filter, fn Handler) (Subscription, error)
}

// Backoff is the re-subscribe schedule for dropped channels.
type Backoff struct {
	Initial time.Duration
	Max     time.Duration
}

// DefaultBackoff starts at one second and doubles up to thirty.
var DefaultBackoff = Backoff{Initial: time.Second, Max: 30 * time.Second}

// Next returns the delay after d.
func (b Backoff) Next(d time.Duration) time.Duration {
	if d <= 0 {
		return b.Initial
	}
	d *= 2
	if d > b.Max {
		d = b.Max
	}
	return d
}
