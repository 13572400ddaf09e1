// Package storage is the blob namespace used for uploaded images.
package storage

import (
	"context"
	"errors"
	"io"
	"net/url"
	"strings"
)

var (
	ErrObjectExists   = errors.New("object already exists")
	ErrObjectNotFound = errors.New("object not found")
)

// Blobs is the object storage surface the asset service needs.
type Blobs interface {
	// Upload stores a new object. It never overwrites: an existing key fails
	// with ErrObjectExists.
	Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	// PublicURL returns the durable public URL for key.
	PublicURL(key string) string
	// Remove deletes the given keys; missing keys are not an error.
	Remove(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// joinURL appends key to base, escaping each key segment.
func joinURL(base, key string) string {
	segs := strings.Split(strings.TrimLeft(key, "/"), "/")
	for i, seg := range segs {
		segs[i] = url.PathEscape(seg)
	}
	return strings.TrimRight(base, "/") + "/" + strings.Join(segs, "/")
}
