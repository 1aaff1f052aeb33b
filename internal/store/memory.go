package store

import (
	"context"
	"strings"
	"sync"

	"github.com/park285/moin-chess/internal/domain"
)

// MemoryStore keeps game records in process memory. Used in tests and single-process setups.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*domain.GameRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*domain.GameRecord)}
}

func (m *MemoryStore) TryCreate(ctx context.Context, id string, rec *domain.GameRecord) (bool, error) {
	if rec == nil {
		return false, errNilRecord
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}
	key := strings.TrimSpace(id)

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.records[key]; exists {
		return false, nil
	}
	cp := *rec
	m.records[key] = &cp
	return true, nil
}

func (m *MemoryStore) Read(ctx context.Context, id string) (*domain.GameRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[strings.TrimSpace(id)]
	if !ok || rec == nil {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (m *MemoryStore) Overwrite(ctx context.Context, id string, rec *domain.GameRecord) error {
	if rec == nil {
		return errNilRecord
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	cp := *rec
	m.mu.Lock()
	m.records[strings.TrimSpace(id)] = &cp
	m.mu.Unlock()
	return nil
}

// Remove drops a record, standing in for cache eviction.
func (m *MemoryStore) Remove(id string) {
	m.mu.Lock()
	delete(m.records, strings.TrimSpace(id))
	m.mu.Unlock()
}

// Len reports how many records are stored.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}
