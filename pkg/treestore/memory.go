package treestore

import (
	"context"
	"sync"
)

// MemoryStore keeps trees in process memory. Stored trees are shared, not
// copied; callers must not mutate a tree after Put or Get.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record)}
}

func (m *MemoryStore) Put(ctx context.Context, rec *Record) (string, error) {
	if err := prepare(rec); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[rec.Key] = *rec
	return rec.Key, nil
}

func (m *MemoryStore) Get(ctx context.Context, key string) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[key]
	if !ok {
		return nil, notFound(key)
	}
	return &rec, nil
}

func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, key)
	return nil
}

func (m *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
