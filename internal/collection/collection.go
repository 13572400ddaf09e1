// Package collection is the CRUD service shared by every entity kind. One
// Service is instantiated per kind over that kind's table.
package collection

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/ourstory/scrapbook/internal/apperr"
	"github.com/ourstory/scrapbook/internal/codec"
	"github.com/ourstory/scrapbook/internal/entity"
	"github.com/ourstory/scrapbook/internal/identity"
	"github.com/ourstory/scrapbook/internal/store"
	"github.com/ourstory/scrapbook/pkg/logger"
)

var log = logger.Named("collection")

// Notifier tells the creator's peer about a new entity.
type Notifier interface {
	Announce(ctx context.Context, creator identity.Role, d entity.Descriptor, headline string) apperr.BestEffort
}

// ImageRemover deletes an image asset by public URL.
type ImageRemover interface {
	Delete(ctx context.Context, publicURL string) apperr.BestEffort
}

// Deps are the optional collaborators of a Service.
type Deps struct {
	Images   ImageRemover
	Notifier Notifier
	Validate *validator.Validate
}

// Service is the CRUD facade over one table. T is the entity struct, P its
// patch struct of pointer fields.
type Service[T entity.Entity, P any] struct {
	desc     entity.Descriptor
	tables   store.Tables
	images   ImageRemover
	notifier Notifier
	validate *validator.Validate
}

func New[T entity.Entity, P any](d entity.Descriptor, tables store.Tables, deps Deps) *Service[T, P] {
	v := deps.Validate
	if v == nil {
		v = validator.New()
	}
	return &Service[T, P]{
		desc:     d,
		tables:   tables,
		images:   deps.Images,
		notifier: deps.Notifier,
		validate: v,
	}
}

func (s *Service[T, P]) Descriptor() entity.Descriptor { return s.desc }

func (s *Service[T, P]) op(name string) string { return s.desc.Table + " " + name }

// GetAll returns every row in the kind's default order. No retry.
func (s *Service[T, P]) GetAll(ctx context.Context) ([]T, error) {
	return s.Find(ctx, nil)
}

// Find returns the rows matching f in the kind's default order.
func (s *Service[T, P]) Find(ctx context.Context, f store.Filter) ([]T, error) {
	order := s.desc.Order
	rows, err := s.tables.Select(ctx, s.desc.Table, store.Query{Filter: f, Order: &order})
	if err != nil {
		return nil, apperr.Store(s.op("list"), err)
	}
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		v, err := decode[T](r)
		if err != nil {
			return nil, apperr.Store(s.op("decode"), err)
		}
		out = append(out, v)
	}
	return out, nil
}

func (s *Service[T, P]) Get(ctx context.Context, id string) (T, error) {
	var zero T
	if id == "" {
		return zero, apperr.Validation("%s id is required", s.desc.Noun)
	}
	r, err := store.SelectOne(ctx, s.tables, s.desc.Table, store.Eq(store.FieldID, id))
	if err != nil {
		return zero, apperr.Store(s.op("get"), err)
	}
	v, err := decode[T](r)
	if err != nil {
		return zero, apperr.Store(s.op("decode"), err)
	}
	return v, nil
}

// CreateAs tags v with creator (on kinds that carry an owner) and creates it.
func (s *Service[T, P]) CreateAs(ctx context.Context, creator identity.Role, v T) (string, error) {
	if o, ok := any(&v).(entity.Owned); ok {
		o.SetOwner(creator)
	}
	return s.Create(ctx, v)
}

// Create validates and inserts v and returns the new id. On shareable kinds
// with a valid owner the peer is notified; that outcome never fails the
// create.
func (s *Service[T, P]) Create(ctx context.Context, v T) (string, error) {
	if err := s.validate.Struct(v); err != nil {
		return "", apperr.ValidationCause(err)
	}
	rec, err := codec.Encode(v)
	if err != nil {
		return "", apperr.ValidationCause(err)
	}
	out, err := s.tables.Insert(ctx, s.desc.Table, rec)
	if err != nil {
		return "", apperr.Store(s.op("create"), err)
	}
	id := out.ID()

	if s.desc.Shareable && s.notifier != nil {
		if o, ok := any(v).(interface{ Owner() identity.Role }); ok && o.Owner().Valid() {
			s.notifier.Announce(ctx, o.Owner(), s.desc, v.Headline()).Log(log)
		}
	}
	return id, nil
}

// Update applies the set fields of p to row id. A patch that replaces the
// image removes the old asset after the row is written.
func (s *Service[T, P]) Update(ctx context.Context, id string, p P) error {
	if id == "" {
		return apperr.Validation("%s id is required", s.desc.Noun)
	}
	if err := s.validate.Struct(p); err != nil {
		return apperr.ValidationCause(err)
	}
	patch, err := codec.Encode(p)
	if err != nil {
		return apperr.ValidationCause(err)
	}

	var oldImage string
	newImage, replacing := patch[entity.FieldImage].(string)
	if replacing && s.desc.HasImage && s.images != nil {
		r, err := store.SelectOne(ctx, s.tables, s.desc.Table, store.Eq(store.FieldID, id))
		if err != nil {
			return apperr.Store(s.op("update"), err)
		}
		oldImage, _ = r[entity.FieldImage].(string)
	}

	if err := s.patch(ctx, id, patch); err != nil {
		return err
	}
	if oldImage != "" && oldImage != newImage {
		s.images.Delete(ctx, oldImage).Log(log)
	}
	return nil
}

// ToggleField sets the kind's boolean flag. It touches only that field.
func (s *Service[T, P]) ToggleField(ctx context.Context, id string, value bool) error {
	if s.desc.ToggleField == "" {
		return apperr.Validation("%s has no toggle field", s.desc.Noun)
	}
	if id == "" {
		return apperr.Validation("%s id is required", s.desc.Noun)
	}
	return s.patch(ctx, id, store.Record{s.desc.ToggleField: value})
}

func (s *Service[T, P]) patch(ctx context.Context, id string, patch store.Record) error {
	n, err := s.tables.Update(ctx, s.desc.Table, store.Eq(store.FieldID, id), patch)
	if err != nil {
		return apperr.Store(s.op("update"), err)
	}
	if n == 0 {
		return apperr.Store(s.op("update"), fmt.Errorf("%s: %w", id, store.ErrNoRows))
	}
	return nil
}

// Delete removes row id, attempting to remove its image first.
func (s *Service[T, P]) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperr.Validation("%s id is required", s.desc.Noun)
	}
	return s.DeleteWhere(ctx, store.Eq(store.FieldID, id))
}

// DeleteWhere removes every row matching f. Image cleanup is best-effort:
// the rows are deleted whatever its outcome.
func (s *Service[T, P]) DeleteWhere(ctx context.Context, f store.Filter) error {
	if len(f) == 0 {
		return apperr.Validation("refusing to delete every %s", s.desc.Noun)
	}
	if s.desc.HasImage && s.images != nil {
		s.removeImages(ctx, f)
	}
	if err := s.tables.Delete(ctx, s.desc.Table, f); err != nil {
		return apperr.Store(s.op("delete"), err)
	}
	return nil
}

func (s *Service[T, P]) removeImages(ctx context.Context, f store.Filter) {
	rows, err := s.tables.Select(ctx, s.desc.Table, store.Query{Filter: f})
	if err != nil {
		apperr.Failed(s.op("image lookup"), err).Log(log)
		return
	}
	for _, r := range rows {
		if u, _ := r[entity.FieldImage].(string); u != "" {
			s.images.Delete(ctx, u).Log(log)
		}
	}
}

func decode[T any](r store.Record) (T, error) {
	var v T
	if err := codec.Decode(r, &v); err != nil {
		return v, err
	}
	return v, nil
}

// IsNotFound reports whether err came from a lookup or update that matched nothing.
func IsNotFound(err error) bool { return errors.Is(err, store.ErrNoRows) }
