package store

import (
	"context"
	"sync"
	"time"

	"github.com/erenulutas0/inventory-service/internal/domain"
)

// MemoryStore implements InventoryStore with in-memory storage. Used by tests
// and as the default backend for local runs.
type MemoryStore struct {
	mu        sync.RWMutex
	records   map[string]*domain.InventoryRecord // id -> record
	byProduct map[string]string                  // productID -> id
}

// NewMemoryStore creates a new in-memory inventory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records:   make(map[string]*domain.InventoryRecord),
		byProduct: make(map[string]string),
	}
}

func (s *MemoryStore) Find(_ context.Context, id string) (*domain.InventoryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, exists := s.records[id]
	if !exists {
		return nil, ErrRecordNotFound
	}
	return copyRecord(record), nil
}

func (s *MemoryStore) FindByProductID(_ context.Context, productID string) (*domain.InventoryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, exists := s.byProduct[productID]
	if !exists {
		return nil, ErrRecordNotFound
	}
	return copyRecord(s.records[id]), nil
}

func (s *MemoryStore) FindAll(_ context.Context) ([]domain.InventoryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.InventoryRecord, 0, len(s.records))
	for _, record := range s.records {
		result = append(result, *record)
	}
	return result, nil
}

func (s *MemoryStore) FindByStatus(_ context.Context, status domain.InventoryStatus) ([]domain.InventoryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.InventoryRecord, 0)
	for _, record := range s.records {
		if record.Status == status {
			result = append(result, *record)
		}
	}
	return result, nil
}

func (s *MemoryStore) FindByLocation(_ context.Context, location domain.Location) ([]domain.InventoryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.InventoryRecord, 0)
	for _, record := range s.records {
		if record.Location == location {
			result = append(result, *record)
		}
	}
	return result, nil
}

func (s *MemoryStore) ExistsByID(_ context.Context, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, exists := s.records[id]
	return exists, nil
}

func (s *MemoryStore) ExistsByProductID(_ context.Context, productID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, exists := s.byProduct[productID]
	return exists, nil
}

func (s *MemoryStore) Save(_ context.Context, record *domain.InventoryRecord) (*domain.InventoryRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Reject a second record for the same product
	if existingID, taken := s.byProduct[record.ProductID]; taken && existingID != record.ID {
		return nil, ErrDuplicateProduct
	}

	now := time.Now()
	stored := copyRecord(record)
	if existing, exists := s.records[record.ID]; exists {
		stored.CreatedAt = existing.CreatedAt
	} else if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now

	s.records[stored.ID] = stored
	s.byProduct[stored.ProductID] = stored.ID
	return copyRecord(stored), nil
}

func (s *MemoryStore) DeleteByID(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, exists := s.records[id]
	if !exists {
		return ErrRecordNotFound
	}
	delete(s.byProduct, record.ProductID)
	delete(s.records, id)
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}

// copyRecord returns a deep copy so callers cannot mutate stored state
func copyRecord(record *domain.InventoryRecord) *domain.InventoryRecord {
	clone := *record
	if record.MinStockLevel != nil {
		v := *record.MinStockLevel
		clone.MinStockLevel = &v
	}
	if record.MaxStockLevel != nil {
		v := *record.MaxStockLevel
		clone.MaxStockLevel = &v
	}
	return &clone
}
