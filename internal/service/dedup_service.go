package service

import (
	"context"
	"time"

	"commerce-sync-service/internal/core/ports"

	"github.com/rs/zerolog"
)

// DefaultPendingLease is the fallback reclaim window for pending claims.
const DefaultPendingLease = 10 * time.Minute

// Deduplicator guarantees idempotent handling under at-least-once delivery.
// Claim before execution, commit after success: a crash between the two
// leaves the claim pending until the lease expires, after which the event
// becomes claimable again. This trades rare duplicate processing after a
// crash for never losing an event — at-least-once, not exactly-once.
type Deduplicator struct {
	store ports.DedupStore
	lease time.Duration
	log   zerolog.Logger
}

// NewDeduplicator creates a Deduplicator. A non-positive lease falls back
// to DefaultPendingLease.
func NewDeduplicator(store ports.DedupStore, lease time.Duration, log zerolog.Logger) *Deduplicator {
	if lease <= 0 {
		lease = DefaultPendingLease
	}
	return &Deduplicator{store: store, lease: lease, log: log}
}

// TryClaim claims eventID for processing. False means the event was already
// claimed or processed; the caller skips processing but still acknowledges
// receipt to the sender.
func (d *Deduplicator) TryClaim(ctx context.Context, eventID string) (bool, error) {
	claimed, err := d.store.TryClaim(ctx, eventID, d.lease)
	if err != nil {
		return false, err
	}
	if !claimed {
		d.log.Debug().Str("event_id", eventID).Msg("dedup: duplicate delivery, skipping")
	}
	return claimed, nil
}

// Commit marks eventID as processed. Must only be called after the handler
// completed successfully.
func (d *Deduplicator) Commit(ctx context.Context, eventID string) error {
	return d.store.Commit(ctx, eventID)
}

// Release drops the pending claim so a redelivery can be claimed without
// waiting for the lease to expire.
func (d *Deduplicator) Release(ctx context.Context, eventID string) error {
	return d.store.Release(ctx, eventID)
}
