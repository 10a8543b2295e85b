package recipient

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps recipients in process memory. It backs tests and local
// runs without Postgres.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]Recipient
	now   func() time.Time
}

// NewMemoryStore returns an empty in-memory directory.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]Recipient), now: time.Now}
}

// Get implements Reader.
func (m *MemoryStore) Get(_ context.Context, merchantID string) (Recipient, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.items[normaliseMerchant(merchantID)]
	if !ok {
		return Recipient{}, ErrNotFound
	}
	return rec, nil
}

// Put implements Store.
func (m *MemoryStore) Put(_ context.Context, merchantID, name, email string) (Recipient, error) {
	key := normaliseMerchant(merchantID)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.items == nil {
		m.items = make(map[string]Recipient)
	}
	now := time.Now
	if m.now != nil {
		now = m.now
	}
	rec := Recipient{MerchantID: key, Name: name, Email: email, UpdatedAt: now().UTC()}
	m.items[key] = rec
	return rec, nil
}
