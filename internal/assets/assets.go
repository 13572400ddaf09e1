// Package assets uploads entity images to blob storage and removes them again
// by public URL.
package assets

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/ourstory/scrapbook/internal/apperr"
	"github.com/ourstory/scrapbook/internal/storage"
	"github.com/ourstory/scrapbook/pkg/logger"
	"github.com/ourstory/scrapbook/pkg/metrics"
)

const DefaultFolder = "images"

var log = logger.Named("assets")

// File is one upload.
type File struct {
	Name        string
	Size        int64
	ContentType string
	Body        io.Reader
}

type Service struct {
	blobs storage.Blobs
	now   func() time.Time
}

type Option func(*Service)

// WithClock overrides the clock used for key prefixes.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func New(blobs storage.Blobs, opts ...Option) *Service {
	s := &Service{blobs: blobs, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

var folderPattern = regexp.MustCompile(`^[a-z0-9_-]+$`)

// Key names a blob folder/{millis}_{name}. folder must be a single
// [a-z0-9_-] segment; anything else falls back to DefaultFolder.
func (s *Service) Key(folder, name string) string {
	folder = strings.ToLower(strings.Trim(folder, "/"))
	if !folderPattern.MatchString(folder) {
		folder = DefaultFolder
	}
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.Join(strings.Fields(name), "_")
	if name == "" || name == "." || name == "/" {
		name = "upload"
	}
	return fmt.Sprintf("%s/%d_%s", folder, s.now().UnixMilli(), name)
}

// Upload stores f and returns its public URL. A key collision fails instead
// of overwriting.
func (s *Service) Upload(ctx context.Context, f File, folder string) (string, error) {
	if f.Body == nil || f.Name == "" {
		return "", apperr.Validation("file is required")
	}
	key := s.Key(folder, f.Name)
	err := s.blobs.Upload(ctx, key, f.Body, f.Size, f.ContentType)
	metrics.AssetOps.WithLabelValues("upload", metrics.Result(err)).Inc()
	if err != nil {
		return "", apperr.Asset("upload "+key, err)
	}
	log.Debugf("uploaded %s", key)
	return s.blobs.PublicURL(key), nil
}

// KeyFromURL recovers the blob key from a public URL. It reports false for
// URLs this storage did not issue.
func (s *Service) KeyFromURL(raw string) (string, bool) {
	if raw == "" {
		return "", false
	}
	base := s.blobs.PublicURL("")
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", false
	}
	u.RawQuery, u.Fragment = "", ""
	rest, ok := strings.CutPrefix(u.String(), base)
	if !ok || rest == "" {
		return "", false
	}
	key, err := url.PathUnescape(rest)
	if err != nil {
		return "", false
	}
	return key, true
}

// Delete removes the blob behind publicURL. Foreign or unparsable URLs are a
// silent no-op. The outcome is for the caller to log.
func (s *Service) Delete(ctx context.Context, publicURL string) apperr.BestEffort {
	key, ok := s.KeyFromURL(publicURL)
	if !ok {
		return apperr.Done("delete asset")
	}
	op := "delete asset " + key
	err := s.blobs.Remove(ctx, key)
	metrics.AssetOps.WithLabelValues("delete", metrics.Result(err)).Inc()
	if err != nil {
		return apperr.Failed(op, apperr.Asset("remove", err))
	}
	return apperr.Done(op)
}
