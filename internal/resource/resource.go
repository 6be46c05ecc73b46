// Package resource provides a single-flight, fetch-through cache for
// per-page document resources.
//
// Each resource is identified by a Key (page number plus resource kind).
// The cache guarantees that concurrent requests for the same key result
// in exactly one call to the underlying fetcher, and that successful
// results are retained for the life of the cache. Failed fetches are
// discarded by default so a later request retries from scratch.
package resource

import (
	"context"
	"fmt"
)

// Kind identifies one of the derivable resources for a page.
type Kind string

const (
	// KindImage is the scanned page image.
	KindImage Kind = "image"

	// KindLayout is the structural layout description for a page.
	KindLayout Kind = "layout"

	// KindMarkdown is the extracted markdown text for a page.
	KindMarkdown Kind = "markdown"

	// KindRaster is a rasterized view of the underlying page-oriented
	// document, produced by a rendering backend.
	KindRaster Kind = "raster"
)

// Kinds lists all known resource kinds.
var Kinds = []Kind{KindImage, KindLayout, KindMarkdown, KindRaster}

// Valid reports whether k is a known resource kind.
func (k Kind) Valid() bool {
	switch k {
	case KindImage, KindLayout, KindMarkdown, KindRaster:
		return true
	}
	return false
}

// Key uniquely identifies one cacheable resource unit.
type Key struct {
	Page int
	Kind Kind
}

// String returns a stable textual form of the key, used for
// single-flight grouping and logging.
func (k Key) String() string {
	return fmt.Sprintf("%d/%s", k.Page, k.Kind)
}

// Value is a resolved resource: either raw content or a location the
// caller can dereference itself.
type Value struct {
	// Data is the resource content. May be nil when URL is set.
	Data []byte

	// ContentType is the MIME type of Data, when known.
	ContentType string

	// URL is an optional location the value was resolved from or can be
	// re-fetched from by the presentation layer.
	URL string
}

// Fetcher loads a single resource. Implementations are supplied by the
// surrounding application and may hit a network endpoint or local
// storage. A Fetcher must not retry internally: retry policy belongs to
// the cache's callers, and the cache itself guarantees only that a
// failed attempt is not memoized.
type Fetcher interface {
	Fetch(ctx context.Context, page int, kind Kind) (Value, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, page int, kind Kind) (Value, error)

// Fetch implements Fetcher.
func (f FetcherFunc) Fetch(ctx context.Context, page int, kind Kind) (Value, error) {
	return f(ctx, page, kind)
}
