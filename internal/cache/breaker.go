package cache

import (
	"context"
	"errors"
	"time"

	"github.com/erenulutas0/inventory-service/internal/domain"
	"github.com/sony/gobreaker/v2"
)

// BreakerCache wraps an AvailabilityCache in a circuit breaker. A flapping or
// dead cache backend trips the breaker open and every call fails fast, so
// reads degrade to the store instead of stalling on timeouts. Cache misses
// are expected traffic and never count as failures.
type BreakerCache struct {
	inner   AvailabilityCache
	breaker *gobreaker.CircuitBreaker[any]
}

func NewBreakerCache(inner AvailabilityCache) *BreakerCache {
	settings := gobreaker.Settings{
		Name:        "availability-cache",
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     15 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrCacheMiss)
		},
	}
	return &BreakerCache{
		inner:   inner,
		breaker: gobreaker.NewCircuitBreaker[any](settings),
	}
}

func (b *BreakerCache) GetRecord(ctx context.Context, key string) (*domain.InventoryRecord, error) {
	v, err := b.breaker.Execute(func() (any, error) {
		return b.inner.GetRecord(ctx, key)
	})
	if err != nil {
		return nil, openAsMiss(err)
	}
	return v.(*domain.InventoryRecord), nil
}

func (b *BreakerCache) SetRecord(ctx context.Context, key string, record *domain.InventoryRecord) error {
	_, err := b.breaker.Execute(func() (any, error) {
		return nil, b.inner.SetRecord(ctx, key, record)
	})
	return err
}

func (b *BreakerCache) GetRecordList(ctx context.Context, key string) ([]domain.InventoryRecord, error) {
	v, err := b.breaker.Execute(func() (any, error) {
		return b.inner.GetRecordList(ctx, key)
	})
	if err != nil {
		return nil, openAsMiss(err)
	}
	return v.([]domain.InventoryRecord), nil
}

func (b *BreakerCache) SetRecordList(ctx context.Context, key string, records []domain.InventoryRecord) error {
	_, err := b.breaker.Execute(func() (any, error) {
		return nil, b.inner.SetRecordList(ctx, key, records)
	})
	return err
}

func (b *BreakerCache) GetQuantity(ctx context.Context, key string) (int, error) {
	v, err := b.breaker.Execute(func() (any, error) {
		return b.inner.GetQuantity(ctx, key)
	})
	if err != nil {
		return 0, openAsMiss(err)
	}
	return v.(int), nil
}

func (b *BreakerCache) SetQuantity(ctx context.Context, key string, quantity int) error {
	_, err := b.breaker.Execute(func() (any, error) {
		return nil, b.inner.SetQuantity(ctx, key, quantity)
	})
	return err
}

func (b *BreakerCache) Invalidate(ctx context.Context, keys ...string) error {
	_, err := b.breaker.Execute(func() (any, error) {
		return nil, b.inner.Invalidate(ctx, keys...)
	})
	return err
}

// openAsMiss keeps an open breaker indistinguishable from a miss for readers
func openAsMiss(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return ErrCacheMiss
	}
	return err
}
