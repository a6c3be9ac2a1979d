package ports

import (
	"context"
	"time"

	"commerce-sync-service/internal/core/domain"
)

// DedupStore is the sole source of truth for "already handled" events.
// It implements the claim state machine: unseen -> pending -> processed,
// with pending -> unseen on lease expiry.
//
// Access must be atomic at the granularity of a single TryClaim/Commit pair
// (check-and-set semantics), so two concurrent deliveries of the same event
// cannot both pass the claim check.
type DedupStore interface {
	// TryClaim atomically claims eventID for processing. Returns true if
	// the claim succeeded (caller must process, then Commit). Returns
	// false if the event is already pending within its lease or already
	// processed.
	TryClaim(ctx context.Context, eventID string, lease time.Duration) (bool, error)
	// Commit transitions a pending claim to processed. The processed
	// marker is durable and never expires back to unseen.
	Commit(ctx context.Context, eventID string) error
	// Release drops a pending claim so the event becomes claimable again
	// on redelivery, without waiting for lease expiry.
	Release(ctx context.Context, eventID string) error
}

// LocalInventoryRepository lists the integrator's own inventory records
// for reconciliation against the upstream platform.
type LocalInventoryRepository interface {
	ListItems(ctx context.Context) ([]domain.LocalItem, error)
}

// HealthChecker checks external dependency health.
type HealthChecker interface {
	// Ping verifies connectivity. Returns nil if healthy.
	Ping(ctx context.Context) error
	// Name returns the dependency name (e.g., "postgresql", "redis").
	Name() string
}
