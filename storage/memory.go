package storage

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// MemStore is an in-memory Store used by tests. FailUpload, FailRemove and
// FailList inject errors for matching path prefixes to exercise rollback
// paths without a real backend.
type MemStore struct {
	mu         sync.Mutex
	objects    map[string][]byte
	FailUpload string
	FailRemove string
	FailList   bool
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{objects: map[string][]byte{}}
}

// Upload records the object unless its path matches FailUpload.
func (m *MemStore) Upload(objectPath string, data []byte, contentType string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailUpload != "" && strings.HasPrefix(objectPath, m.FailUpload) {
		return "", fmt.Errorf("injected upload failure: %s", objectPath)
	}
	m.objects[objectPath] = append([]byte(nil), data...)
	return m.PublicURL(objectPath), nil
}

// Remove deletes objects unless a path matches FailRemove.
func (m *MemStore) Remove(paths []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range paths {
		if m.FailRemove != "" && strings.HasPrefix(p, m.FailRemove) {
			return fmt.Errorf("injected remove failure: %s", p)
		}
		delete(m.objects, p)
	}
	return nil
}

// List returns stored paths under folder in lexical order.
func (m *MemStore) List(folder string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailList {
		return nil, fmt.Errorf("injected list failure: %s", folder)
	}
	var out []string
	for p := range m.objects {
		if strings.HasPrefix(p, folder) {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out, nil
}

// PublicURL mirrors the disk store's URL shape.
func (m *MemStore) PublicURL(objectPath string) string {
	return "/static/media/" + strings.TrimLeft(objectPath, "/")
}

// Has reports whether an object exists, for test assertions.
func (m *MemStore) Has(objectPath string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[objectPath]
	return ok
}

// Len returns the number of stored objects.
func (m *MemStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}
