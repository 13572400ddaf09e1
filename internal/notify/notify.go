// Package notify stores per-user notifications and writes the peer
// notification that follows the creation of a shareable entity.
package notify

import (
	"context"
	"fmt"

	"github.com/ourstory/scrapbook/internal/apperr"
	"github.com/ourstory/scrapbook/internal/codec"
	"github.com/ourstory/scrapbook/internal/entity"
	"github.com/ourstory/scrapbook/internal/identity"
	"github.com/ourstory/scrapbook/internal/realtime"
	"github.com/ourstory/scrapbook/internal/store"
	"github.com/ourstory/scrapbook/pkg/logger"
	"github.com/ourstory/scrapbook/pkg/metrics"
)

var log = logger.Named("notify")

const table = entity.TableNotifications

var newestFirst = &store.Order{Field: store.FieldCreatedAt, Desc: true}

// Service reads and mutates notifications, always in scope of one recipient.
type Service struct {
	tables store.Tables
	broker realtime.Broker
}

func NewService(tables store.Tables, broker realtime.Broker) *Service {
	return &Service{tables: tables, broker: broker}
}

func recipient(user identity.Role) error {
	if !user.Valid() {
		return apperr.Validation("unknown user %q", user)
	}
	return nil
}

func (s *Service) list(ctx context.Context, f store.Filter) ([]entity.Notification, error) {
	rows, err := s.tables.Select(ctx, table, store.Query{Filter: f, Order: newestFirst})
	if err != nil {
		return nil, apperr.Store("list notifications", err)
	}
	out := make([]entity.Notification, 0, len(rows))
	for _, r := range rows {
		n, err := Decode(r)
		if err != nil {
			return nil, apperr.Store("decode notification", err)
		}
		out = append(out, n)
	}
	return out, nil
}

// GetAll returns the user's notifications, newest first.
func (s *Service) GetAll(ctx context.Context, user identity.Role) ([]entity.Notification, error) {
	if err := recipient(user); err != nil {
		return nil, err
	}
	return s.list(ctx, store.Eq(entity.FieldUserID, user))
}

func (s *Service) GetUnread(ctx context.Context, user identity.Role) ([]entity.Notification, error) {
	if err := recipient(user); err != nil {
		return nil, err
	}
	return s.list(ctx, store.Eq(entity.FieldUserID, user).And(entity.FieldRead, false))
}

// Create writes one unread notification and returns its id.
func (s *Service) Create(ctx context.Context, n entity.Notification) (string, error) {
	if err := recipient(n.UserID); err != nil {
		return "", err
	}
	if n.Title == "" {
		return "", apperr.Validation("notification title is required")
	}
	n.Read = false
	rec, err := codec.Encode(n)
	if err != nil {
		return "", apperr.ValidationCause(err)
	}
	out, err := s.tables.Insert(ctx, table, rec)
	if err != nil {
		return "", apperr.Store("create notification", err)
	}
	return out.ID(), nil
}

// MarkRead marks one of the user's notifications read. Ids addressed to the
// other user match nothing.
func (s *Service) MarkRead(ctx context.Context, user identity.Role, id string) error {
	if err := recipient(user); err != nil {
		return err
	}
	if id == "" {
		return apperr.Validation("notification id is required")
	}
	n, err := s.tables.Update(ctx, table, store.Eq(store.FieldID, id).And(entity.FieldUserID, user), store.Record{entity.FieldRead: true})
	if err != nil {
		return apperr.Store("mark notification read", err)
	}
	if n == 0 {
		return apperr.Store("mark notification read", fmt.Errorf("%s: %w", id, store.ErrNoRows))
	}
	return nil
}

func (s *Service) MarkAllRead(ctx context.Context, user identity.Role) error {
	if err := recipient(user); err != nil {
		return err
	}
	f := store.Eq(entity.FieldUserID, user).And(entity.FieldRead, false)
	if _, err := s.tables.Update(ctx, table, f, store.Record{entity.FieldRead: true}); err != nil {
		return apperr.Store("mark all notifications read", err)
	}
	return nil
}

// Delete removes one of the user's notifications.
func (s *Service) Delete(ctx context.Context, user identity.Role, id string) error {
	if err := recipient(user); err != nil {
		return err
	}
	if id == "" {
		return apperr.Validation("notification id is required")
	}
	if err := s.tables.Delete(ctx, table, store.Eq(store.FieldID, id).And(entity.FieldUserID, user)); err != nil {
		return apperr.Store("delete notification", err)
	}
	return nil
}

// Subscribe delivers the user's new notifications until the subscription is
// closed. Undecodable rows are logged and skipped.
func (s *Service) Subscribe(ctx context.Context, user identity.Role, fn func(entity.Notification)) (realtime.Subscription, error) {
	if err := recipient(user); err != nil {
		return nil, err
	}
	sub, err := s.broker.Subscribe(ctx, table, store.Eq(entity.FieldUserID, user), func(r store.Record) {
		n, err := Decode(r)
		if err != nil {
			log.Warnf("skipping notification %s: %v", r.ID(), err)
			return
		}
		fn(n)
	})
	if err != nil {
		return nil, apperr.Store("subscribe notifications", err)
	}
	return sub, nil
}

func Decode(r store.Record) (entity.Notification, error) {
	var n entity.Notification
	err := codec.Decode(r, &n)
	return n, err
}

// Fanout writes the "your partner added something" notification.
type Fanout struct {
	notes *Service
	dir   *identity.Directory
}

func NewFanout(notes *Service, dir *identity.Directory) *Fanout {
	return &Fanout{notes: notes, dir: dir}
}

// NotifyPeer writes one unread notification addressed to the creator's peer.
// The outcome is informational: callers log it and carry on.
func (f *Fanout) NotifyPeer(ctx context.Context, creator identity.Role, kind entity.Kind, title, message string) apperr.BestEffort {
	op := "notify peer of " + kind.String()
	if !creator.Valid() {
		return apperr.Failed(op, apperr.Validation("unknown creator %q", creator))
	}
	_, err := f.notes.Create(ctx, entity.Notification{
		UserID:  creator.Peer(),
		Type:    kind,
		Title:   title,
		Message: message,
	})
	metrics.FanoutTotal.WithLabelValues(kind.String(), metrics.Result(err)).Inc()
	if err != nil {
		return apperr.Failed(op, err)
	}
	return apperr.Done(op)
}

// Announce builds the notification text for a newly created entity and
// sends it to the creator's peer.
func (f *Fanout) Announce(ctx context.Context, creator identity.Role, d entity.Descriptor, headline string) apperr.BestEffort {
	msg := fmt.Sprintf(`%s added a new %s: "%s"`, f.dir.DisplayName(creator), d.Noun, headline)
	return f.NotifyPeer(ctx, creator, d.Kind, d.NotificationTitle(), msg)
}
