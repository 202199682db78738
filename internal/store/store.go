package store

import (
	"context"
	"errors"

	"github.com/erenulutas0/inventory-service/internal/domain"
)

// Common errors returned by the store
var (
	ErrRecordNotFound   = errors.New("inventory record not found")
	ErrDuplicateProduct = errors.New("inventory record already exists for product")
)

// InventoryStore defines the interface for durable inventory record storage.
// Implementations must provide read-your-writes consistency for a single
// record.
type InventoryStore interface {
	// Find returns the record with the given id, or ErrRecordNotFound
	Find(ctx context.Context, id string) (*domain.InventoryRecord, error)

	// FindByProductID returns the record for the given product, or ErrRecordNotFound
	FindByProductID(ctx context.Context, productID string) (*domain.InventoryRecord, error)

	// FindAll returns every record
	FindAll(ctx context.Context) ([]domain.InventoryRecord, error)

	// FindByStatus returns all records with the given derived status
	FindByStatus(ctx context.Context, status domain.InventoryStatus) ([]domain.InventoryRecord, error)

	// FindByLocation returns all records stored at the given location
	FindByLocation(ctx context.Context, location domain.Location) ([]domain.InventoryRecord, error)

	// ExistsByID reports whether a record with the given id exists
	ExistsByID(ctx context.Context, id string) (bool, error)

	// ExistsByProductID reports whether the product already has a record
	ExistsByProductID(ctx context.Context, productID string) (bool, error)

	// Save inserts or updates the record and returns the persisted copy.
	// Inserting a second record for an existing product fails with
	// ErrDuplicateProduct.
	Save(ctx context.Context, record *domain.InventoryRecord) (*domain.InventoryRecord, error)

	// DeleteByID removes the record, or returns ErrRecordNotFound
	DeleteByID(ctx context.Context, id string) error

	// Close releases any underlying resources
	Close() error
}
