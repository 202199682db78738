package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erenulutas0/inventory-service/internal/cache"
	"github.com/erenulutas0/inventory-service/internal/domain"
	"github.com/erenulutas0/inventory-service/internal/notifier"
	"github.com/erenulutas0/inventory-service/internal/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	invalidateTimeout = time.Second
	publishTimeout    = 5 * time.Second
	fillTimeout       = 2 * time.Second
)

// InventoryService is the reservation engine. It validates and applies every
// mutation under per-product mutual exclusion, recomputes the derived status
// before persisting, invalidates the cache key set for the record, and
// publishes a status-change event when the status moved.
type InventoryService struct {
	store    store.InventoryStore
	cache    cache.AvailabilityCache
	notifier notifier.StatusNotifier
	logger   *zap.Logger
	locks    *productLocks
	sfg      singleflight.Group // Prevents cache stampede on read-through misses
}

func NewInventoryService(
	st store.InventoryStore,
	av cache.AvailabilityCache,
	nt notifier.StatusNotifier,
	logger *zap.Logger,
) *InventoryService {
	if av == nil {
		av = cache.Disabled{}
	}
	if nt == nil {
		nt = notifier.NoopNotifier{}
	}
	return &InventoryService{
		store:    st,
		cache:    av,
		notifier: nt,
		logger:   logger,
		locks:    newProductLocks(),
	}
}

// GetAll returns every inventory record, served from the aggregate cache key
// when fresh.
func (s *InventoryService) GetAll(ctx context.Context) ([]domain.InventoryRecord, error) {
	key := cache.KeyAll()
	v, err, _ := s.sfg.Do(key, func() (interface{}, error) {
		records, cacheErr := s.cache.GetRecordList(ctx, key)
		if cacheErr == nil {
			return records, nil
		}
		if !errors.Is(cacheErr, cache.ErrCacheMiss) {
			s.logger.Warn("cache get failed, falling back to store", zap.String("key", key), zap.Error(cacheErr))
		}

		records, storeErr := s.store.FindAll(ctx)
		if storeErr != nil {
			return nil, s.wrapStoreErr(storeErr)
		}
		s.fillRecordList(key, records)
		return records, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.InventoryRecord), nil
}

// GetByID returns the record with the given id
func (s *InventoryService) GetByID(ctx context.Context, id string) (*domain.InventoryRecord, error) {
	return s.readThrough(ctx, cache.KeyByID(id), func() (*domain.InventoryRecord, error) {
		return s.store.Find(ctx, id)
	})
}

// GetByProductID returns the record tracking the given product
func (s *InventoryService) GetByProductID(ctx context.Context, productID string) (*domain.InventoryRecord, error) {
	return s.readThrough(ctx, cache.KeyByProduct(productID), func() (*domain.InventoryRecord, error) {
		return s.store.FindByProductID(ctx, productID)
	})
}

// GetAvailableQuantity returns quantity minus reserved for the product. The
// cached value lives under a short TTL because availability changes with
// every reservation.
func (s *InventoryService) GetAvailableQuantity(ctx context.Context, productID string) (int, error) {
	key := cache.KeyAvailableByProduct(productID)
	v, err, _ := s.sfg.Do(key, func() (interface{}, error) {
		quantity, cacheErr := s.cache.GetQuantity(ctx, key)
		if cacheErr == nil {
			return quantity, nil
		}
		if !errors.Is(cacheErr, cache.ErrCacheMiss) {
			s.logger.Warn("cache get failed, falling back to store", zap.String("key", key), zap.Error(cacheErr))
		}

		record, getErr := s.GetByProductID(ctx, productID)
		if getErr != nil {
			return 0, getErr
		}
		available := record.AvailableQuantity()
		s.fillQuantity(key, available)
		return available, nil
	})
	if err != nil {
		return 0, err
	}
	return v.(int), nil
}

// ListByStatus returns records with the given derived status. Served from
// the store directly; the filter result set is too volatile to cache.
func (s *InventoryService) ListByStatus(ctx context.Context, status domain.InventoryStatus) ([]domain.InventoryRecord, error) {
	records, err := s.store.FindByStatus(ctx, status)
	if err != nil {
		return nil, s.wrapStoreErr(err)
	}
	return records, nil
}

// ListByLocation returns records stored at the given location
func (s *InventoryService) ListByLocation(ctx context.Context, location domain.Location) ([]domain.InventoryRecord, error) {
	records, err := s.store.FindByLocation(ctx, location)
	if err != nil {
		return nil, s.wrapStoreErr(err)
	}
	return records, nil
}

// Create persists a new record for a product. Fails with ErrDuplicateProduct
// if the product already has one.
func (s *InventoryService) Create(ctx context.Context, record *domain.InventoryRecord) (*domain.InventoryRecord, error) {
	if err := validateNewRecord(record); err != nil {
		return nil, err
	}

	unlock := s.locks.lock(record.ProductID)
	defer unlock()

	exists, err := s.store.ExistsByProductID(ctx, record.ProductID)
	if err != nil {
		return nil, s.wrapStoreErr(err)
	}
	if exists {
		return nil, ErrDuplicateProduct
	}

	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	record.RecomputeStatus()

	saved, err := s.store.Save(ctx, record)
	if err != nil {
		return nil, s.wrapStoreErr(err)
	}

	s.invalidateRecord(saved)
	return saved, nil
}

// UpdateFields applies the non-nil fields of the partial update. The product
// id is immutable; the partial carries no way to change it.
func (s *InventoryService) UpdateFields(ctx context.Context, id string, fields domain.UpdateFields) (*domain.InventoryRecord, error) {
	if err := validateUpdateFields(fields); err != nil {
		return nil, err
	}

	return s.mutate(ctx, id, func(record *domain.InventoryRecord) error {
		if fields.Quantity != nil {
			record.Quantity = *fields.Quantity
		}
		if fields.ReservedQuantity != nil {
			record.ReservedQuantity = *fields.ReservedQuantity
		}
		if fields.MinStockLevel != nil {
			record.MinStockLevel = fields.MinStockLevel
		}
		if fields.MaxStockLevel != nil {
			record.MaxStockLevel = fields.MaxStockLevel
		}
		if fields.Location != nil {
			record.Location = *fields.Location
		}
		if record.ReservedQuantity > record.Quantity {
			return fmt.Errorf("%w: reserved quantity %d exceeds quantity %d",
				ErrInvalidArgument, record.ReservedQuantity, record.Quantity)
		}
		return nil
	})
}

// SetQuantity replaces the physical quantity of the record
func (s *InventoryService) SetQuantity(ctx context.Context, id string, quantity int) (*domain.InventoryRecord, error) {
	if quantity < 0 {
		return nil, fmt.Errorf("%w: quantity cannot be negative", ErrInvalidArgument)
	}

	return s.mutate(ctx, id, func(record *domain.InventoryRecord) error {
		if quantity < record.ReservedQuantity {
			return fmt.Errorf("%w: quantity %d below reserved quantity %d",
				ErrInvalidArgument, quantity, record.ReservedQuantity)
		}
		record.Quantity = quantity
		return nil
	})
}

// Reserve promises quantity units to an order. The availability check and
// the increment run under the product's lock, so two concurrent reservations
// can never jointly exceed availability.
func (s *InventoryService) Reserve(ctx context.Context, id string, quantity int) (*domain.InventoryRecord, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: reserve quantity must be positive", ErrInvalidArgument)
	}

	return s.mutate(ctx, id, func(record *domain.InventoryRecord) error {
		if !record.HasEnoughStock(quantity) {
			return &InsufficientStockError{
				Available: record.AvailableQuantity(),
				Requested: quantity,
			}
		}
		record.ReservedQuantity += quantity
		return nil
	})
}

// Release returns reserved units to the available pool after an order is
// cancelled or fulfilled.
func (s *InventoryService) Release(ctx context.Context, id string, quantity int) (*domain.InventoryRecord, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: release quantity must be positive", ErrInvalidArgument)
	}

	return s.mutate(ctx, id, func(record *domain.InventoryRecord) error {
		if record.ReservedQuantity < quantity {
			return &ReleaseExceedsReservedError{
				Reserved:  record.ReservedQuantity,
				Requested: quantity,
			}
		}
		record.ReservedQuantity -= quantity
		return nil
	})
}

// Delete removes the record and evicts every derived cache entry for it
func (s *InventoryService) Delete(ctx context.Context, id string) error {
	record, err := s.findByID(ctx, id)
	if err != nil {
		return err
	}

	unlock := s.locks.lock(record.ProductID)
	defer unlock()

	if err := s.store.DeleteByID(ctx, id); err != nil {
		return s.wrapStoreErr(err)
	}

	s.invalidateRecord(record)
	return nil
}

// mutate runs the shared mutation sequence: resolve the record's product,
// take its lock, re-read under the lock, apply, recompute status, persist,
// invalidate, notify. apply receives a copy; a failed save leaves no state
// behind anywhere.
func (s *InventoryService) mutate(ctx context.Context, id string, apply func(*domain.InventoryRecord) error) (*domain.InventoryRecord, error) {
	// First read only resolves the product id for the lock
	record, err := s.findByID(ctx, id)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.lock(record.ProductID)
	defer unlock()

	// Re-read under the lock; the first read may be one mutation stale
	record, err = s.findByID(ctx, id)
	if err != nil {
		return nil, err
	}

	oldStatus := record.Status
	if e2 := apply(record); e2 != nil {
		return nil, e2
	}
	record.RecomputeStatus()

	saved, err := s.store.Save(ctx, record)
	if err != nil {
		return nil, s.wrapStoreErr(err)
	}

	s.invalidateRecord(saved)
	if saved.Status != oldStatus {
		s.publishStatusChange(saved, oldStatus)
	}
	return saved, nil
}

// findByID reads directly from the store with engine error mapping
func (s *InventoryService) findByID(ctx context.Context, id string) (*domain.InventoryRecord, error) {
	record, err := s.store.Find(ctx, id)
	if err != nil {
		return nil, s.wrapStoreErr(err)
	}
	return record, nil
}

func (s *InventoryService) readThrough(ctx context.Context, key string, load func() (*domain.InventoryRecord, error)) (*domain.InventoryRecord, error) {
	v, err, _ := s.sfg.Do(key, func() (interface{}, error) {
		record, cacheErr := s.cache.GetRecord(ctx, key)
		if cacheErr == nil {
			return record, nil
		}
		if !errors.Is(cacheErr, cache.ErrCacheMiss) {
			s.logger.Warn("cache get failed, falling back to store", zap.String("key", key), zap.Error(cacheErr))
		}

		record, loadErr := load()
		if loadErr != nil {
			return nil, s.wrapStoreErr(loadErr)
		}
		s.fillRecord(key, record)
		return record, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.InventoryRecord), nil
}

// invalidateRecord evicts the record's full key set before the mutation
// returns, so a subsequent read of any shape hits the store. Failures are
// logged and tolerated; the TTL bounds the resulting staleness.
func (s *InventoryService) invalidateRecord(record *domain.InventoryRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), invalidateTimeout)
	defer cancel()

	keys := cache.KeysForRecord(record.ID, record.ProductID)
	if err := s.cache.Invalidate(ctx, keys...); err != nil {
		s.logger.Warn("cache invalidation failed, staleness bounded by TTL",
			zap.String("product_id", record.ProductID), zap.Error(err))
	}
}

// publishStatusChange emits the event fire-and-forget; delivery is
// best-effort and out of the engine's failure budget
func (s *InventoryService) publishStatusChange(record *domain.InventoryRecord, oldStatus domain.InventoryStatus) {
	event := notifier.StatusChangeEvent{
		RecordID:   record.ID,
		ProductID:  record.ProductID,
		OldStatus:  oldStatus,
		NewStatus:  record.Status,
		OccurredAt: time.Now(),
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := s.notifier.Publish(ctx, event); err != nil {
			s.logger.Warn("status change publish failed",
				zap.String("product_id", event.ProductID),
				zap.String("new_status", string(event.NewStatus)),
				zap.Error(err))
		}
	}()
}

// Cache fills run synchronously inside the singleflight window. Filling from
// a goroutine would let a slow fill land after a later mutation's
// invalidation, resurrecting the pre-mutation value.

func (s *InventoryService) fillRecord(key string, record *domain.InventoryRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), fillTimeout)
	defer cancel()
	if err := s.cache.SetRecord(ctx, key, record); err != nil {
		s.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *InventoryService) fillRecordList(key string, records []domain.InventoryRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), fillTimeout)
	defer cancel()
	if err := s.cache.SetRecordList(ctx, key, records); err != nil {
		s.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *InventoryService) fillQuantity(key string, quantity int) {
	ctx, cancel := context.WithTimeout(context.Background(), fillTimeout)
	defer cancel()
	if err := s.cache.SetQuantity(ctx, key, quantity); err != nil {
		s.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
}

// wrapStoreErr maps store sentinels onto the engine taxonomy and marks
// anything else as a retryable store failure
func (s *InventoryService) wrapStoreErr(err error) error {
	switch {
	case errors.Is(err, store.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, store.ErrDuplicateProduct):
		return ErrDuplicateProduct
	default:
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
}

func validateNewRecord(record *domain.InventoryRecord) error {
	if record.ProductID == "" {
		return fmt.Errorf("%w: product id is required", ErrInvalidArgument)
	}
	if record.Quantity < 0 {
		return fmt.Errorf("%w: quantity cannot be negative", ErrInvalidArgument)
	}
	if record.ReservedQuantity < 0 || record.ReservedQuantity > record.Quantity {
		return fmt.Errorf("%w: reserved quantity must be between 0 and quantity", ErrInvalidArgument)
	}
	if record.MinStockLevel != nil && *record.MinStockLevel < 0 {
		return fmt.Errorf("%w: min stock level cannot be negative", ErrInvalidArgument)
	}
	if record.MaxStockLevel != nil && *record.MaxStockLevel < 0 {
		return fmt.Errorf("%w: max stock level cannot be negative", ErrInvalidArgument)
	}
	if record.Location != "" && !record.Location.IsValid() {
		return fmt.Errorf("%w: unknown location %q", ErrInvalidArgument, record.Location)
	}
	return nil
}

func validateUpdateFields(fields domain.UpdateFields) error {
	if fields.Quantity != nil && *fields.Quantity < 0 {
		return fmt.Errorf("%w: quantity cannot be negative", ErrInvalidArgument)
	}
	if fields.ReservedQuantity != nil && *fields.ReservedQuantity < 0 {
		return fmt.Errorf("%w: reserved quantity cannot be negative", ErrInvalidArgument)
	}
	if fields.MinStockLevel != nil && *fields.MinStockLevel < 0 {
		return fmt.Errorf("%w: min stock level cannot be negative", ErrInvalidArgument)
	}
	if fields.MaxStockLevel != nil && *fields.MaxStockLevel < 0 {
		return fmt.Errorf("%w: max stock level cannot be negative", ErrInvalidArgument)
	}
	if fields.Location != nil && !fields.Location.IsValid() {
		return fmt.Errorf("%w: unknown location %q", ErrInvalidArgument, *fields.Location)
	}
	return nil
}
