package service

import (
	"context"
	"errors"
)

// CheckAvailability evaluates a batch of product/required-quantity pairs.
// Each entry is judged independently; a product without a record cannot
// fulfill anything and maps to false rather than an error. This is a
// read-only feasibility check, not a multi-item reservation.
func (s *InventoryService) CheckAvailability(ctx context.Context, required map[string]int) (map[string]bool, error) {
	result := make(map[string]bool, len(required))

	for productID, quantity := range required {
		record, err := s.GetByProductID(ctx, productID)
		if errors.Is(err, ErrNotFound) {
			result[productID] = false
			continue
		}
		if err != nil {
			return nil, err
		}
		result[productID] = record.HasEnoughStock(quantity)
	}
	return result, nil
}
