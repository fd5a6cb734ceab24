package objstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
)

// MemoryStore is an in-memory Store implementation, seedable for tests.
// It is safe for concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string][]byte)}
}

// Put seeds an object. Existing content under the same key is replaced.
func (m *MemoryStore) Put(key string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = append([]byte(nil), data...)
}

// ListCommonPrefixes returns the distinct key prefixes directly under
// prefix, grouped by delimiter, in lexicographic order.
func (m *MemoryStore) ListCommonPrefixes(ctx context.Context, prefix, delimiter string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[string]struct{})
	for key := range m.objects {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		rest := key[len(prefix):]
		i := strings.Index(rest, delimiter)
		if i < 0 {
			continue
		}
		seen[prefix+rest[:i+len(delimiter)]] = struct{}{}
	}

	prefixes := make([]string, 0, len(seen))
	for p := range seen {
		prefixes = append(prefixes, p)
	}
	sort.Strings(prefixes)
	return prefixes, nil
}

// ListObjects returns all keys under prefix in lexicographic order.
func (m *MemoryStore) ListObjects(ctx context.Context, prefix string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var objects []string
	for key := range m.objects {
		if strings.HasPrefix(key, prefix) {
			objects = append(objects, key)
		}
	}
	sort.Strings(objects)
	return objects, nil
}

// Download returns the seeded content at key, or ErrNotFound.
func (m *MemoryStore) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.objects[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

var _ Store = (*MemoryStore)(nil)
