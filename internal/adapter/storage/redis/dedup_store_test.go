package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*miniredis.Miniredis, *DedupStore) {
	t.Helper()
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	return s, NewDedupStore(client)
}

func TestDedupStore_TryClaim_FirstClaim(t *testing.T) {
	_, store := newTestStore(t)
	ctx := context.Background()

	ok, err := store.TryClaim(ctx, "evt-1", 10*time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "first claim should succeed")
}

func TestDedupStore_TryClaim_Duplicate(t *testing.T) {
	_, store := newTestStore(t)
	ctx := context.Background()

	ok, err := store.TryClaim(ctx, "evt-1", 10*time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	// Second claim while the first is still pending
	ok, err = store.TryClaim(ctx, "evt-1", 10*time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "duplicate claim should return false")
}

func TestDedupStore_TryClaim_AfterLeaseExpiry(t *testing.T) {
	s, store := newTestStore(t)
	ctx := context.Background()

	ok, err := store.TryClaim(ctx, "evt-1", 1*time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	// Fast-forward past the lease
	s.FastForward(2 * time.Minute)

	ok, err = store.TryClaim(ctx, "evt-1", 1*time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "expired pending claim should be reclaimable")
}

func TestDedupStore_Commit_SurvivesLease(t *testing.T) {
	s, store := newTestStore(t)
	ctx := context.Background()

	ok, err := store.TryClaim(ctx, "evt-1", 1*time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, store.Commit(ctx, "evt-1"))

	// Well past the original lease — a committed event stays claimed
	s.FastForward(time.Hour)

	ok, err = store.TryClaim(ctx, "evt-1", 1*time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "committed event must never be reclaimed")
}

func TestDedupStore_Release_ReopensClaim(t *testing.T) {
	_, store := newTestStore(t)
	ctx := context.Background()

	ok, err := store.TryClaim(ctx, "evt-1", 10*time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, store.Release(ctx, "evt-1"))

	ok, err = store.TryClaim(ctx, "evt-1", 10*time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "released event should be claimable again")
}

func TestDedupStore_Release_DoesNotDropCommit(t *testing.T) {
	_, store := newTestStore(t)
	ctx := context.Background()

	ok, err := store.TryClaim(ctx, "evt-1", 10*time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, store.Commit(ctx, "evt-1"))

	// A stale release after commit must be a no-op
	require.NoError(t, store.Release(ctx, "evt-1"))

	ok, err = store.TryClaim(ctx, "evt-1", 10*time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "release after commit must not reopen the event")
}

func TestDedupStore_IndependentEvents(t *testing.T) {
	_, store := newTestStore(t)
	ctx := context.Background()

	ok1, err := store.TryClaim(ctx, "evt-A", 10*time.Minute)
	require.NoError(t, err)
	ok2, err2 := store.TryClaim(ctx, "evt-B", 10*time.Minute)
	require.NoError(t, err2)

	assert.True(t, ok1)
	assert.True(t, ok2, "distinct event IDs are claimed independently")
}
