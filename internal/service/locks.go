package service

import "sync"

// productLocks hands out one mutex per product id, so the read-check-write
// sequence of reserve/release is serialized per product while operations on
// different products never contend. Entries live for the process lifetime,
// one per product, matching record cardinality.
type productLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newProductLocks() *productLocks {
	return &productLocks{locks: make(map[string]*sync.Mutex)}
}

// lock acquires the mutex for productID and returns its unlock function
func (l *productLocks) lock(productID string) func() {
	l.mu.Lock()
	m, exists := l.locks[productID]
	if !exists {
		m = &sync.Mutex{}
		l.locks[productID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
