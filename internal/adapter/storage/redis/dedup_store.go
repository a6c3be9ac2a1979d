package redis

import (
	"context"
	"fmt"
	"time"

	"commerce-sync-service/internal/core/domain"

	goredis "github.com/redis/go-redis/v9"
)

// releaseScript deletes the claim only if it is still in the pending
// state, so a slow worker cannot discard another worker's commit.
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// DedupStore implements ports.DedupStore using Redis SET NX.
//
// A pending claim is a key with a TTL equal to the lease: if the worker
// dies the key expires and the event becomes claimable again. A committed
// event is the same key rewritten without a TTL.
type DedupStore struct {
	client *goredis.Client
	prefix string
}

// NewDedupStore creates a new Redis-backed dedup store.
func NewDedupStore(client *goredis.Client) *DedupStore {
	return &DedupStore{
		client: client,
		prefix: "dedup:",
	}
}

// TryClaim atomically claims an event ID for processing.
// Returns true if this caller won the claim, false if the event is
// already pending or processed.
func (s *DedupStore) TryClaim(ctx context.Context, eventID string, lease time.Duration) (bool, error) {
	key := s.prefix + eventID
	result, err := s.client.SetArgs(ctx, key, string(domain.StatusPending), goredis.SetArgs{
		Mode: "NX",
		TTL:  lease,
	}).Result()
	if err != nil {
		if err == goredis.Nil {
			// Key already exists — event is pending or processed
			return false, nil
		}
		return false, fmt.Errorf("redis dedup claim: %w", err)
	}
	return result == "OK", nil
}

// Commit marks a claimed event as durably processed by rewriting the
// key without an expiry.
func (s *DedupStore) Commit(ctx context.Context, eventID string) error {
	key := s.prefix + eventID
	if err := s.client.Set(ctx, key, string(domain.StatusProcessed), 0).Err(); err != nil {
		return fmt.Errorf("redis dedup commit: %w", err)
	}
	return nil
}

// Release drops a pending claim so the event can be retried. A key that
// has already been committed is left untouched.
func (s *DedupStore) Release(ctx context.Context, eventID string) error {
	key := s.prefix + eventID
	if err := releaseScript.Run(ctx, s.client, []string{key}, string(domain.StatusPending)).Err(); err != nil {
		return fmt.Errorf("redis dedup release: %w", err)
	}
	return nil
}
