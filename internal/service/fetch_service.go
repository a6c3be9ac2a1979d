package service

import (
	"context"
	"time"

	"commerce-sync-service/internal/core/ports"
)

// PageFetchFunc fetches one page of a remote collection. Page numbering
// starts at 1.
type PageFetchFunc[T any] func(ctx context.Context, page int) (ports.Page[T], error)

// FetchAll walks a paginated remote collection to completion and returns
// the concatenation of all pages in page order.
//
// pageDelay is inserted between consecutive page requests so a full walk
// does not hammer the remote rate limiter. The walk is restartable from the
// beginning only; there is no snapshot, so a remote mutation mid-walk may
// or may not be observed. Callers needing consistency should use a fixed
// date-range filter instead.
func FetchAll[T any](ctx context.Context, fetch PageFetchFunc[T], pageDelay time.Duration) ([]T, error) {
	var items []T

	for page := 1; ; page++ {
		if page > 1 {
			if err := sleepContext(ctx, pageDelay); err != nil {
				return items, err
			}
		}

		result, err := fetch(ctx, page)
		if err != nil {
			return items, err
		}
		items = append(items, result.Items...)

		if !result.HasMore {
			return items, nil
		}
	}
}
