package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"commerce-sync-service/internal/core/domain"
	"commerce-sync-service/internal/core/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchAll_ConcatenatesPagesInOrder(t *testing.T) {
	pages := []ports.Page[string]{
		{Items: []string{"A", "B"}, HasMore: true},
		{Items: []string{"C"}, HasMore: false},
	}

	var requested []int
	items, err := FetchAll(context.Background(), func(_ context.Context, page int) (ports.Page[string], error) {
		requested = append(requested, page)
		return pages[page-1], nil
	}, 0)

	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, items)
	assert.Equal(t, []int{1, 2}, requested)
}

func TestFetchAll_EmptyFirstPage(t *testing.T) {
	items, err := FetchAll(context.Background(), func(context.Context, int) (ports.Page[domain.Purchase], error) {
		return ports.Page[domain.Purchase]{HasMore: false}, nil
	}, 0)

	require.NoError(t, err)
	assert.Empty(t, items, "empty first page yields an empty sequence, not an error")
}

func TestFetchAll_StopsOnError(t *testing.T) {
	calls := 0
	items, err := FetchAll(context.Background(), func(_ context.Context, page int) (ports.Page[int], error) {
		calls++
		if page == 2 {
			return ports.Page[int]{}, fmt.Errorf("page 2 unavailable")
		}
		return ports.Page[int]{Items: []int{1, 2}, HasMore: true}, nil
	}, 0)

	require.Error(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, []int{1, 2}, items, "items fetched before the failure are returned")
}

func TestFetchAll_ManyPagesTerminates(t *testing.T) {
	const totalPages = 50

	items, err := FetchAll(context.Background(), func(_ context.Context, page int) (ports.Page[int], error) {
		return ports.Page[int]{
			Items:   []int{page},
			HasMore: page < totalPages,
		}, nil
	}, 0)

	require.NoError(t, err)
	require.Len(t, items, totalPages)
	assert.Equal(t, 1, items[0])
	assert.Equal(t, totalPages, items[totalPages-1])
}

func TestFetchAll_ContextCancelledBetweenPages(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	_, err := FetchAll(ctx, func(_ context.Context, page int) (ports.Page[int], error) {
		cancel() // cancel after the first page is served
		return ports.Page[int]{Items: []int{page}, HasMore: true}, nil
	}, time.Hour)

	assert.ErrorIs(t, err, context.Canceled)
}
