package ports

import (
	"context"
	"time"

	"commerce-sync-service/internal/core/domain"
)

// SignatureVerifier authenticates inbound webhook payloads with a shared
// secret. Verify operates over the exact raw bytes received; re-serializing
// the body can change byte layout and invalidate the check.
type SignatureVerifier interface {
	Sign(secret string, rawBody []byte) string
	Verify(secret string, rawBody []byte, signature string) bool
}

// EventDispatcher routes a verified, de-duplicated event to the handler
// registered for its event type.
type EventDispatcher interface {
	Dispatch(ctx context.Context, event *domain.Event) error
}

// EventHandler processes a single event. Handlers must tolerate
// out-of-order delivery of events for the same resource.
type EventHandler interface {
	Handle(ctx context.Context, event *domain.Event) error
}

// HandlerFunc adapts a function to EventHandler.
type HandlerFunc func(ctx context.Context, event *domain.Event) error

func (f HandlerFunc) Handle(ctx context.Context, event *domain.Event) error {
	return f(ctx, event)
}

// EventQueue hands a claimed event off to asynchronous processing. The
// webhook request path enqueues and returns; it never blocks on handler
// completion.
type EventQueue interface {
	Enqueue(event *domain.Event) error
}

// DeadLetterSink receives events whose handler failed. Optional: a nil sink
// disables dead-lettering.
type DeadLetterSink interface {
	Publish(ctx context.Context, event *domain.Event, cause error) error
}

// Page is one page of a remote paginated collection.
type Page[T any] struct {
	Items   []T
	HasMore bool
}

// PurchaseListParams filters a paginated purchase listing. A fixed date
// range gives a point-in-time view; the walk itself takes no snapshot.
type PurchaseListParams struct {
	From  time.Time
	To    time.Time
	Page  int
	Limit int
}

// InventoryListParams filters a paginated inventory listing.
type InventoryListParams struct {
	Page  int
	Limit int
}

// UpstreamClient is the remote commerce API consumed by sync jobs.
// Implementations classify failures: rate-limit signals, transient
// failures, and permanent rejections are distinguishable by error type so
// the retry executor can act accordingly.
type UpstreamClient interface {
	ListPurchases(ctx context.Context, params PurchaseListParams) (Page[domain.Purchase], error)
	ListInventory(ctx context.Context, params InventoryListParams) (Page[domain.RemoteItem], error)
	UpdateItem(ctx context.Context, op domain.UpdateOp) error
}
