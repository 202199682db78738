package notifier

import (
	"context"
	"time"

	"github.com/erenulutas0/inventory-service/internal/domain"
)

// StatusChangeEvent is published when a mutation moved a record's derived
// status. Delivery is best-effort; consumers must tolerate gaps.
type StatusChangeEvent struct {
	RecordID   string                 `json:"record_id"`
	ProductID  string                 `json:"product_id"`
	OldStatus  domain.InventoryStatus `json:"old_status"`
	NewStatus  domain.InventoryStatus `json:"new_status"`
	OccurredAt time.Time              `json:"occurred_at"`
}

// StatusNotifier fans out status changes to interested services
type StatusNotifier interface {
	Publish(ctx context.Context, event StatusChangeEvent) error
	Close() error
}

// NoopNotifier drops every event. Used when notifications are disabled and
// in tests.
type NoopNotifier struct{}

func (NoopNotifier) Publish(context.Context, StatusChangeEvent) error { return nil }

func (NoopNotifier) Close() error { return nil }
