package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"github.com/erenulutas0/inventory-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	// DefaultRecordTTL bounds staleness of cached records when an
	// invalidation is missed
	DefaultRecordTTL = 5 * time.Minute

	// DefaultQuantityTTL is deliberately short: availability changes with
	// every reservation
	DefaultQuantityTTL = 30 * time.Second
)

// RedisCache implements AvailabilityCache on go-redis. Records are stored as
// JSON, quantities as plain integers.
type RedisCache struct {
	client      *redis.Client
	recordTTL   time.Duration
	quantityTTL time.Duration
}

func NewRedisCache(client *redis.Client, recordTTL, quantityTTL time.Duration) *RedisCache {
	if recordTTL <= 0 {
		recordTTL = DefaultRecordTTL
	}
	if quantityTTL <= 0 {
		quantityTTL = DefaultQuantityTTL
	}
	return &RedisCache{
		client:      client,
		recordTTL:   recordTTL,
		quantityTTL: quantityTTL,
	}
}

func (r *RedisCache) GetRecord(ctx context.Context, key string) (*domain.InventoryRecord, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var record domain.InventoryRecord
	if e2 := json.Unmarshal(data, &record); e2 != nil {
		return nil, fmt.Errorf("unmarshal inventory record failed: %w", e2)
	}
	return &record, nil
}

func (r *RedisCache) SetRecord(ctx context.Context, key string, record *domain.InventoryRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal inventory record failed: %w", err)
	}
	if e2 := r.client.Set(ctx, key, data, r.jitteredTTL(r.recordTTL)).Err(); e2 != nil {
		return fmt.Errorf("redis set failed: %w", e2)
	}
	return nil
}

func (r *RedisCache) GetRecordList(ctx context.Context, key string) ([]domain.InventoryRecord, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var records []domain.InventoryRecord
	if e2 := json.Unmarshal(data, &records); e2 != nil {
		return nil, fmt.Errorf("unmarshal inventory records failed: %w", e2)
	}
	return records, nil
}

func (r *RedisCache) SetRecordList(ctx context.Context, key string, records []domain.InventoryRecord) error {
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("marshal inventory records failed: %w", err)
	}
	if e2 := r.client.Set(ctx, key, data, r.jitteredTTL(r.recordTTL)).Err(); e2 != nil {
		return fmt.Errorf("redis set failed: %w", e2)
	}
	return nil
}

func (r *RedisCache) GetQuantity(ctx context.Context, key string) (int, error) {
	val, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrCacheMiss
	}
	if err != nil {
		return 0, fmt.Errorf("redis get failed: %w", err)
	}

	quantity, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("parse cached quantity failed: %w", err)
	}
	return quantity, nil
}

func (r *RedisCache) SetQuantity(ctx context.Context, key string, quantity int) error {
	if err := r.client.Set(ctx, key, quantity, r.quantityTTL).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisCache) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	// Single DEL keeps the key set's eviction atomic
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

// jitteredTTL spreads expirations so a burst of fills does not expire at once
func (r *RedisCache) jitteredTTL(base time.Duration) time.Duration {
	jitter := time.Duration(rand.Int63n(int64(base / 5)))
	return base + jitter
}
