package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/erenulutas0/inventory-service/internal/domain"
)

// ErrCacheMiss is returned when the key is absent. Any other error means the
// cache backend misbehaved; callers degrade to direct store reads.
var ErrCacheMiss = errors.New("cache miss")

// AvailabilityCache is the read-through cache in front of the inventory
// store. Values are derived and disposable; on any disagreement with the
// store the entry is evicted, never corrected in place.
type AvailabilityCache interface {
	GetRecord(ctx context.Context, key string) (*domain.InventoryRecord, error)
	SetRecord(ctx context.Context, key string, record *domain.InventoryRecord) error

	GetRecordList(ctx context.Context, key string) ([]domain.InventoryRecord, error)
	SetRecordList(ctx context.Context, key string, records []domain.InventoryRecord) error

	GetQuantity(ctx context.Context, key string) (int, error)
	SetQuantity(ctx context.Context, key string, quantity int) error

	// Invalidate evicts every given key. Partial eviction of a record's key
	// set is a correctness bug, so implementations delete all keys in one
	// round trip where the backend allows it.
	Invalidate(ctx context.Context, keys ...string) error
}

// Disabled is an AvailabilityCache that never holds anything. Every read is
// a miss, so the engine always falls through to the store.
type Disabled struct{}

func (Disabled) GetRecord(context.Context, string) (*domain.InventoryRecord, error) {
	return nil, ErrCacheMiss
}

func (Disabled) SetRecord(context.Context, string, *domain.InventoryRecord) error { return nil }

func (Disabled) GetRecordList(context.Context, string) ([]domain.InventoryRecord, error) {
	return nil, ErrCacheMiss
}

func (Disabled) SetRecordList(context.Context, string, []domain.InventoryRecord) error { return nil }

func (Disabled) GetQuantity(context.Context, string) (int, error) { return 0, ErrCacheMiss }

func (Disabled) SetQuantity(context.Context, string, int) error { return nil }

func (Disabled) Invalidate(context.Context, ...string) error { return nil }

// Cache key shapes. A mutation on a record must invalidate all four shapes
// for its product plus the aggregate key.

func KeyByID(id string) string {
	return fmt.Sprintf("inventory:id:%s", id)
}

func KeyByProduct(productID string) string {
	return fmt.Sprintf("inventory:product:%s", productID)
}

func KeyAvailableByProduct(productID string) string {
	return fmt.Sprintf("inventory:available:%s", productID)
}

func KeyAll() string {
	return "inventory:all"
}

// KeysForRecord returns the full invalidation scope for one record
func KeysForRecord(id, productID string) []string {
	return []string{
		KeyByID(id),
		KeyByProduct(productID),
		KeyAvailableByProduct(productID),
		KeyAll(),
	}
}
