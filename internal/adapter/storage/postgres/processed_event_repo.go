package postgres

import (
	"context"
	"fmt"
	"time"

	"commerce-sync-service/internal/core/domain"
)

// ProcessedEventRepo implements ports.DedupStore on a processed_events
// table. Pending claims carry a claimed_at timestamp; a claim whose
// lease has lapsed is reclaimable by the next caller.
type ProcessedEventRepo struct {
	pool Pool
}

// NewProcessedEventRepo creates a new ProcessedEventRepo.
func NewProcessedEventRepo(pool Pool) *ProcessedEventRepo {
	return &ProcessedEventRepo{pool: pool}
}

// TryClaim atomically claims an event ID for processing. The single
// statement inserts a fresh pending row, or reclaims an existing row
// whose pending lease has expired. Returns true when this caller won
// the claim.
func (r *ProcessedEventRepo) TryClaim(ctx context.Context, eventID string, lease time.Duration) (bool, error) {
	query := `INSERT INTO processed_events (event_id, status, claimed_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (event_id) DO UPDATE
			SET status = $2, claimed_at = NOW()
			WHERE processed_events.status = $2
			  AND processed_events.claimed_at < NOW() - make_interval(secs => $3)`

	tag, err := r.pool.Exec(ctx, query, eventID, domain.StatusPending, lease.Seconds())
	if err != nil {
		return false, fmt.Errorf("claim processed event: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// Commit marks a claimed event as durably processed.
func (r *ProcessedEventRepo) Commit(ctx context.Context, eventID string) error {
	query := `UPDATE processed_events SET status = $2, processed_at = NOW() WHERE event_id = $1`

	tag, err := r.pool.Exec(ctx, query, eventID, domain.StatusProcessed)
	if err != nil {
		return fmt.Errorf("commit processed event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("commit processed event: no claim for event %s", eventID)
	}
	return nil
}

// Release drops a pending claim so the event can be retried. A row that
// has already been committed is left untouched.
func (r *ProcessedEventRepo) Release(ctx context.Context, eventID string) error {
	query := `DELETE FROM processed_events WHERE event_id = $1 AND status = $2`

	if _, err := r.pool.Exec(ctx, query, eventID, domain.StatusPending); err != nil {
		return fmt.Errorf("release processed event: %w", err)
	}
	return nil
}
