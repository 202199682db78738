package service

import (
	"context"
	"sync"

	"github.com/erenulutas0/inventory-service/internal/cache"
	"github.com/erenulutas0/inventory-service/internal/domain"
	"github.com/erenulutas0/inventory-service/internal/notifier"
	"github.com/erenulutas0/inventory-service/internal/store"
)

// recordingCache implements cache.AvailabilityCache in memory and records
// every invalidation for assertions
type recordingCache struct {
	mu          sync.Mutex
	records     map[string]*domain.InventoryRecord
	lists       map[string][]domain.InventoryRecord
	quantities  map[string]int
	invalidated [][]string
}

func newRecordingCache() *recordingCache {
	return &recordingCache{
		records:    make(map[string]*domain.InventoryRecord),
		lists:      make(map[string][]domain.InventoryRecord),
		quantities: make(map[string]int),
	}
}

func (c *recordingCache) GetRecord(_ context.Context, key string) (*domain.InventoryRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	record, exists := c.records[key]
	if !exists {
		return nil, cache.ErrCacheMiss
	}
	clone := *record
	return &clone, nil
}

func (c *recordingCache) SetRecord(_ context.Context, key string, record *domain.InventoryRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	clone := *record
	c.records[key] = &clone
	return nil
}

func (c *recordingCache) GetRecordList(_ context.Context, key string) ([]domain.InventoryRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	list, exists := c.lists[key]
	if !exists {
		return nil, cache.ErrCacheMiss
	}
	return list, nil
}

func (c *recordingCache) SetRecordList(_ context.Context, key string, records []domain.InventoryRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lists[key] = records
	return nil
}

func (c *recordingCache) GetQuantity(_ context.Context, key string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	quantity, exists := c.quantities[key]
	if !exists {
		return 0, cache.ErrCacheMiss
	}
	return quantity, nil
}

func (c *recordingCache) SetQuantity(_ context.Context, key string, quantity int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.quantities[key] = quantity
	return nil
}

func (c *recordingCache) Invalidate(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		delete(c.records, key)
		delete(c.lists, key)
		delete(c.quantities, key)
	}
	c.invalidated = append(c.invalidated, keys)
	return nil
}

func (c *recordingCache) lastInvalidation() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.invalidated) == 0 {
		return nil
	}
	return c.invalidated[len(c.invalidated)-1]
}

func (c *recordingCache) invalidationCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.invalidated)
}

func (c *recordingCache) holds(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.records[key]; ok {
		return true
	}
	if _, ok := c.lists[key]; ok {
		return true
	}
	_, ok := c.quantities[key]
	return ok
}

// recordingNotifier captures published status-change events
type recordingNotifier struct {
	mu     sync.Mutex
	events []notifier.StatusChangeEvent
}

func (n *recordingNotifier) Publish(_ context.Context, event notifier.StatusChangeEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
	return nil
}

func (n *recordingNotifier) Close() error { return nil }

func (n *recordingNotifier) published() []notifier.StatusChangeEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notifier.StatusChangeEvent(nil), n.events...)
}

// failingStore wraps a real store and fails selected operations, for
// exercising the StoreUnavailable path
type failingStore struct {
	store.InventoryStore
	findErr error
	saveErr error
}

func (f *failingStore) Find(ctx context.Context, id string) (*domain.InventoryRecord, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.InventoryStore.Find(ctx, id)
}

func (f *failingStore) Save(ctx context.Context, record *domain.InventoryRecord) (*domain.InventoryRecord, error) {
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	return f.InventoryStore.Save(ctx, record)
}
