package domain

import "time"

// InventoryStatus classifies a record's stock situation. It is derived from
// the stock fields and thresholds, never set directly.
type InventoryStatus string

const (
	StatusOutOfStock InventoryStatus = "OUT_OF_STOCK"
	StatusLowStock   InventoryStatus = "LOW_STOCK"
	StatusInStock    InventoryStatus = "IN_STOCK"
	StatusOverstock  InventoryStatus = "OVERSTOCK"
)

// IsValid reports whether s is one of the known statuses.
func (s InventoryStatus) IsValid() bool {
	switch s {
	case StatusOutOfStock, StatusLowStock, StatusInStock, StatusOverstock:
		return true
	}
	return false
}

// Location is the storage location tag of a record.
type Location string

const (
	LocationWarehouseA Location = "WAREHOUSE_A"
	LocationWarehouseB Location = "WAREHOUSE_B"
	LocationWarehouseC Location = "WAREHOUSE_C"
	LocationStoreFront Location = "STORE_FRONT"
)

// IsValid reports whether l is one of the known locations.
func (l Location) IsValid() bool {
	switch l {
	case LocationWarehouseA, LocationWarehouseB, LocationWarehouseC, LocationStoreFront:
		return true
	}
	return false
}

// InventoryRecord tracks stock for a single product. One record per product;
// productID uniqueness is enforced by the store.
type InventoryRecord struct {
	ID               string          `json:"id" bson:"_id"`
	ProductID        string          `json:"product_id" bson:"product_id"`
	Quantity         int             `json:"quantity" bson:"quantity"`
	ReservedQuantity int             `json:"reserved_quantity" bson:"reserved_quantity"`
	MinStockLevel    *int            `json:"min_stock_level,omitempty" bson:"min_stock_level,omitempty"`
	MaxStockLevel    *int            `json:"max_stock_level,omitempty" bson:"max_stock_level,omitempty"`
	Location         Location        `json:"location" bson:"location"`
	Status           InventoryStatus `json:"status" bson:"status"`
	CreatedAt        time.Time       `json:"created_at" bson:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at" bson:"updated_at"`
}

// AvailableQuantity returns the quantity not promised to orders.
func (r *InventoryRecord) AvailableQuantity() int {
	return r.Quantity - r.ReservedQuantity
}

// HasEnoughStock reports whether required units can still be reserved.
func (r *InventoryRecord) HasEnoughStock(required int) bool {
	return r.AvailableQuantity() >= required
}

// RecomputeStatus rederives Status from the current stock fields. Called at
// the end of every mutation, before the record is persisted.
func (r *InventoryRecord) RecomputeStatus() {
	r.Status = DeriveStatus(r.Quantity, r.ReservedQuantity, r.MinStockLevel, r.MaxStockLevel)
}

// DeriveStatus computes the status classification. Thresholds are inclusive;
// at a boundary the lower status wins (LOW_STOCK over IN_STOCK).
func DeriveStatus(quantity, reserved int, minLevel, maxLevel *int) InventoryStatus {
	available := quantity - reserved
	switch {
	case available == 0:
		return StatusOutOfStock
	case minLevel != nil && available <= *minLevel:
		return StatusLowStock
	case maxLevel != nil && available >= *maxLevel:
		return StatusOverstock
	default:
		return StatusInStock
	}
}

// UpdateFields carries a partial update. Nil fields are left untouched.
// ProductID is immutable and intentionally absent.
type UpdateFields struct {
	Quantity         *int      `json:"quantity,omitempty"`
	ReservedQuantity *int      `json:"reserved_quantity,omitempty"`
	MinStockLevel    *int      `json:"min_stock_level,omitempty"`
	MaxStockLevel    *int      `json:"max_stock_level,omitempty"`
	Location         *Location `json:"location,omitempty"`
}
