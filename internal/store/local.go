// Package store supplies resource.Fetcher implementations: a local
// fetcher over the home directory layout, an origin proxy, and a
// fallback chain combining them. Fetchers perform a single attempt per
// call; retry policy belongs to their callers.
package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/jackzampolin/lectern/internal/docsession"
	"github.com/jackzampolin/lectern/internal/home"
	"github.com/jackzampolin/lectern/internal/resource"
)

// ErrNotFound marks a resource that does not exist in a store.
var ErrNotFound = errors.New("resource not found")

// DefaultRasterWidth is the width hint used when rendering raster
// resources from the underlying document.
const DefaultRasterWidth = 1200

// LocalConfig configures a Local fetcher.
type LocalConfig struct {
	// Session renders raster resources from the underlying document.
	// Nil disables the raster kind.
	Session *docsession.Session

	// RasterWidth is the render width hint (default DefaultRasterWidth).
	RasterWidth int
}

// Local reads page resources for one document from the home layout.
type Local struct {
	dir         *home.Dir
	docID       string
	session     *docsession.Session
	rasterWidth int
}

// NewLocal creates a fetcher over the given document directory.
func NewLocal(dir *home.Dir, docID string, cfg LocalConfig) *Local {
	rasterWidth := cfg.RasterWidth
	if rasterWidth <= 0 {
		rasterWidth = DefaultRasterWidth
	}
	return &Local{
		dir:         dir,
		docID:       docID,
		session:     cfg.Session,
		rasterWidth: rasterWidth,
	}
}

// Fetch implements resource.Fetcher.
func (l *Local) Fetch(ctx context.Context, page int, kind resource.Kind) (resource.Value, error) {
	switch kind {
	case resource.KindImage:
		return l.readFile(l.dir.PageImagePath(l.docID, page), "image/png")
	case resource.KindMarkdown:
		return l.readFile(l.dir.PageMarkdownPath(l.docID, page), "text/markdown")
	case resource.KindLayout:
		return l.readFile(l.dir.PageLayoutPath(l.docID, page), "application/json")
	case resource.KindRaster:
		return l.render(ctx, page)
	default:
		return resource.Value{}, fmt.Errorf("unknown resource kind %q", kind)
	}
}

func (l *Local) readFile(path, contentType string) (resource.Value, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return resource.Value{}, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return resource.Value{}, fmt.Errorf("failed to read resource: %w", err)
	}
	return resource.Value{Data: data, ContentType: contentType, URL: "file://" + path}, nil
}

func (l *Local) render(ctx context.Context, page int) (resource.Value, error) {
	if l.session == nil {
		return resource.Value{}, fmt.Errorf("%w: document %s has no underlying document", ErrNotFound, l.docID)
	}
	r, err := l.session.RenderPage(ctx, page, l.rasterWidth)
	if err != nil {
		return resource.Value{}, fmt.Errorf("failed to render page %d: %w", page, err)
	}
	return resource.Value{Data: r.Data, ContentType: r.ContentType}, nil
}
