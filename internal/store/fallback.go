package store

import (
	"context"
	"errors"

	"github.com/jackzampolin/lectern/internal/resource"
)

// Fallback tries each fetcher in order, moving on only when the
// previous one reports ErrNotFound. Any other error is returned as-is:
// a transient local failure should not mask itself behind a slower
// origin round trip.
type Fallback struct {
	fetchers []resource.Fetcher
}

// NewFallback chains fetchers in priority order.
func NewFallback(fetchers ...resource.Fetcher) *Fallback {
	return &Fallback{fetchers: fetchers}
}

// Fetch implements resource.Fetcher.
func (f *Fallback) Fetch(ctx context.Context, page int, kind resource.Kind) (resource.Value, error) {
	var lastErr error = ErrNotFound
	for _, fetcher := range f.fetchers {
		v, err := fetcher.Fetch(ctx, page, kind)
		if err == nil {
			return v, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return resource.Value{}, err
		}
		lastErr = err
	}
	return resource.Value{}, lastErr
}
