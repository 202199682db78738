package service

import (
	"errors"
	"fmt"
)

// Engine error taxonomy. Validation errors are returned synchronously and
// never retried internally; ErrStoreUnavailable marks transient collaborator
// failures the caller may retry.
var (
	ErrNotFound          = errors.New("inventory record not found")
	ErrDuplicateProduct  = errors.New("inventory record already exists for product")
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrStoreUnavailable  = errors.New("inventory store unavailable")
)

// InsufficientStockError carries the quantities a caller needs to diagnose a
// failed reservation. errors.Is(err, ErrInsufficientStock) matches it.
type InsufficientStockError struct {
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock: available %d, requested %d", e.Available, e.Requested)
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// ReleaseExceedsReservedError is returned when a release asks for more than
// is currently reserved. errors.Is(err, ErrInvalidArgument) matches it.
type ReleaseExceedsReservedError struct {
	Reserved  int
	Requested int
}

func (e *ReleaseExceedsReservedError) Error() string {
	return fmt.Sprintf("cannot release more than reserved: reserved %d, requested %d", e.Reserved, e.Requested)
}

func (e *ReleaseExceedsReservedError) Is(target error) bool {
	return target == ErrInvalidArgument
}
