package schedule

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/jackzampolin/lectern/internal/resource"
)

// DefaultConcurrency bounds how many resource fetches a prefetch run
// keeps in flight at once.
const DefaultConcurrency = 16

// PrefetcherConfig configures a new Prefetcher.
type PrefetcherConfig struct {
	// Kinds are the resource kinds requested for every page. Defaults
	// to resource.Kinds.
	Kinds []resource.Kind

	// Concurrency bounds in-flight fetches (default DefaultConcurrency).
	Concurrency int

	// Logger for per-resource failures. Defaults to slog.Default().
	Logger *slog.Logger
}

// Prefetcher walks a nearest-first page order and warms the resource
// cache. Requests are issued in order but resolve in whatever order the
// fetcher completes them; a failed resource is logged and never cancels
// its siblings.
type Prefetcher struct {
	store       *resource.Store
	kinds       []resource.Kind
	concurrency int
	logger      *slog.Logger
}

// NewPrefetcher creates a prefetcher over the given store.
func NewPrefetcher(store *resource.Store, cfg PrefetcherConfig) *Prefetcher {
	kinds := cfg.Kinds
	if len(kinds) == 0 {
		kinds = resource.Kinds
	}
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Prefetcher{
		store:       store,
		kinds:       kinds,
		concurrency: concurrency,
		logger:      logger,
	}
}

// Run requests every configured resource kind for every page, nearest
// to focus first, and blocks until all requests settle or ctx is
// cancelled. Cancellation stops the issuing of new requests; fetches
// already in flight run to completion and populate the cache (see
// resource.Cache.Get).
func (p *Prefetcher) Run(ctx context.Context, focus, total int) {
	var g errgroup.Group
	g.SetLimit(p.concurrency)

	for _, page := range Order(focus, total) {
		for _, kind := range p.kinds {
			if ctx.Err() != nil {
				g.Wait()
				return
			}
			key := resource.Key{Page: page, Kind: kind}
			g.Go(func() error {
				if _, err := p.store.Get(ctx, key); err != nil {
					p.logger.Debug("prefetch failed", "key", key.String(), "error", err)
				}
				return nil
			})
		}
	}
	g.Wait()
}
