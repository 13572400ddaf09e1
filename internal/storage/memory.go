package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
)

// MemoryBlobs keeps objects in memory. Used by tests and by the server when
// no MinIO endpoint is configured.
type MemoryBlobs struct {
	baseURL string

	mu      sync.RWMutex
	objects map[string][]byte
}

func NewMemoryBlobs(baseURL string) *MemoryBlobs {
	return &MemoryBlobs{baseURL: baseURL, objects: make(map[string][]byte)}
}

func (m *MemoryBlobs) Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[key]; ok {
		return fmt.Errorf("%s: %w", key, ErrObjectExists)
	}
	m.objects[key] = b
	return nil
}

func (m *MemoryBlobs) PublicURL(key string) string { return joinURL(m.baseURL, key) }

func (m *MemoryBlobs) Remove(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.objects, k)
	}
	return nil
}

func (m *MemoryBlobs) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.objects[key]
	return ok, nil
}

// DownloadFile returns the stored bytes.
func (m *MemoryBlobs) DownloadFile(ctx context.Context, key string) (io.ReadCloser, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.objects[key]
	if !ok {
		return nil, fmt.Errorf("%s: %w", key, ErrObjectNotFound)
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

// Keys lists stored keys.
func (m *MemoryBlobs) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.objects))
	for k := range m.objects {
		out = append(out, k)
	}
	return out
}
