package store

import (
	"context"
	"sync"
	"time"

	"pos-checkout/internal/domain/order"
)

// MemoryOrderStore keeps pending orders keyed by settlement fingerprint.
// Every method is a single critical section, so operations are linearizable.
// Readers share the lock; only put/take/remove take it exclusively.
type MemoryOrderStore struct {
	mu     sync.RWMutex
	orders map[string]*order.PendingOrder
}

func NewMemoryOrderStore() *MemoryOrderStore {
	return &MemoryOrderStore{
		orders: make(map[string]*order.PendingOrder),
	}
}

// Put inserts the order under its fingerprint and reports whether an existing
// record was replaced. Fingerprints are unique per generated code, so a
// replacement indicates a collision upstream.
func (m *MemoryOrderStore) Put(_ context.Context, o *order.PendingOrder) (bool, error) {
	fp := o.Fingerprint()
	if fp == "" {
		return false, order.ErrFingerprintRequired
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	_, replaced := m.orders[fp]
	m.orders[fp] = o
	return replaced, nil
}

func (m *MemoryOrderStore) Get(_ context.Context, fingerprint string) (*order.PendingOrder, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.orders[fingerprint]
	return o, ok
}

// Remove is idempotent; removing an absent fingerprint is a no-op.
func (m *MemoryOrderStore) Remove(_ context.Context, fingerprint string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.orders, fingerprint)
}

// Take removes and returns the order in one step. Of any number of concurrent
// callers for the same fingerprint, exactly one receives ok == true.
func (m *MemoryOrderStore) Take(_ context.Context, fingerprint string) (*order.PendingOrder, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[fingerprint]
	if ok {
		delete(m.orders, fingerprint)
	}
	return o, ok
}

// RemoveExpired drops every record whose expiry is before now and returns them.
func (m *MemoryOrderStore) RemoveExpired(_ context.Context, now time.Time) []*order.PendingOrder {
	m.mu.Lock()
	defer m.mu.Unlock()
	var removed []*order.PendingOrder
	for fp, o := range m.orders {
		if o.HasExpired(now) {
			removed = append(removed, o)
			delete(m.orders, fp)
		}
	}
	return removed
}

func (m *MemoryOrderStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.orders)
}
