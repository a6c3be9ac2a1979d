package domain

import (
	"encoding/json"
	"time"
)

// Known event types. The set is open: the upstream platform may introduce
// new types at any time, and unknown types must be acknowledged, not rejected.
const (
	EventOrderCreated      = "order.created"
	EventPurchaseConfirmed = "purchase.confirmed"
	EventPurchaseRefunded  = "purchase.refunded"
	EventInventoryUpdated  = "inventory.updated"
)

// Event is an immutable webhook event as delivered by the upstream platform.
// Delivery is at-least-once: the same ID may arrive more than once and
// consumers must treat redelivery as a no-op after the first successful
// processing.
type Event struct {
	ID           string          `json:"id"`
	EventType    string          `json:"event_type"`
	ResourceType string          `json:"resource_type"`
	ResourceID   string          `json:"resource_id"`
	OccurredAt   time.Time       `json:"occurred_at"`
	APIVersion   string          `json:"api_version"`
	Payload      json.RawMessage `json:"payload"`
}

// DecodePayload unmarshals the event payload into v. The payload shape
// depends on EventType.
func (e *Event) DecodePayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// ProcessedStatus is the state of an event in the dedup store.
type ProcessedStatus string

const (
	// StatusPending marks an event claimed by a worker but not yet
	// committed. A pending claim older than the lease timeout is
	// reclaimable: a crashed worker must not block reprocessing forever.
	StatusPending ProcessedStatus = "PENDING"
	// StatusProcessed marks an event handled to completion.
	StatusProcessed ProcessedStatus = "PROCESSED"
)

// ProcessedEventRecord is the persisted dedup marker, created exactly once
// per successfully processed event ID.
type ProcessedEventRecord struct {
	EventID     string          `json:"event_id"`
	Status      ProcessedStatus `json:"status"`
	ClaimedAt   time.Time       `json:"claimed_at"`
	ProcessedAt *time.Time      `json:"processed_at"`
}
