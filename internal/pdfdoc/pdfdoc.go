// Package pdfdoc provides a docsession.Handle backed by pdfcpu for
// document inspection and pdftoppm (poppler-utils) for rasterization.
package pdfdoc

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/jackzampolin/lectern/internal/docsession"
)

// renderDPI is the resolution pages are rasterized at before being
// fitted to the caller's width hint.
const renderDPI = 150

// Document is one parsed PDF. It satisfies docsession.Handle.
type Document struct {
	path      string
	pageCount int
	dims      []types.Dim
}

// Open parses the PDF at path once, reading the page count and the
// per-page dimensions.
func Open(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	pageCount, err := api.PageCount(f, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get page count for %s: %w", path, err)
	}
	if _, err := f.Seek(0, 0); err != nil {
		return nil, fmt.Errorf("failed to rewind PDF: %w", err)
	}
	dims, err := api.PageDims(f, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get page dimensions for %s: %w", path, err)
	}

	return &Document{path: path, pageCount: pageCount, dims: dims}, nil
}

// Opener adapts Open to the docsession.Opener signature. The url may
// be a plain path or a file:// URL.
func Opener(ctx context.Context, url string) (docsession.Handle, error) {
	return Open(PathFromURL(url))
}

// PathFromURL strips an optional file:// scheme.
func PathFromURL(url string) string {
	return strings.TrimPrefix(url, "file://")
}

// PageCount returns the number of pages.
func (d *Document) PageCount() int {
	return d.pageCount
}

// PageSize returns a page's media box dimensions at unit scale.
// Page numbers are 1-indexed.
func (d *Document) PageSize(ctx context.Context, page int) (float64, float64, error) {
	if page < 1 || page > len(d.dims) {
		return 0, 0, fmt.Errorf("page %d out of range [1, %d]", page, len(d.dims))
	}
	dim := d.dims[page-1]
	return dim.Width, dim.Height, nil
}

// RenderPage rasterizes one page with pdftoppm and fits the result to
// widthHint. A widthHint of 0 keeps the native render size.
func (d *Document) RenderPage(ctx context.Context, page, widthHint int) (docsession.PageRender, error) {
	if page < 1 || page > d.pageCount {
		return docsession.PageRender{}, fmt.Errorf("page %d out of range [1, %d]", page, d.pageCount)
	}

	tmpDir, err := os.MkdirTemp("", "lectern-page-*")
	if err != nil {
		return docsession.PageRender{}, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	outputPrefix := filepath.Join(tmpDir, "page")
	pageStr := fmt.Sprintf("%d", page)
	cmd := exec.CommandContext(ctx, "pdftoppm",
		"-png",
		"-f", pageStr,
		"-l", pageStr,
		"-r", fmt.Sprintf("%d", renderDPI),
		"-singlefile",
		d.path,
		outputPrefix,
	)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return docsession.PageRender{}, fmt.Errorf("pdftoppm failed: %w (output: %s)", err, string(output))
	}

	srcPath := outputPrefix + ".png"
	f, err := os.Open(srcPath)
	if err != nil {
		return docsession.PageRender{}, fmt.Errorf("pdftoppm did not create expected output: %w", err)
	}
	img, err := png.Decode(f)
	f.Close()
	if err != nil {
		return docsession.PageRender{}, fmt.Errorf("failed to decode rendered page: %w", err)
	}

	img = FitWidth(img, widthHint)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return docsession.PageRender{}, fmt.Errorf("failed to encode rendered page: %w", err)
	}

	bounds := img.Bounds()
	return docsession.PageRender{
		Data:        buf.Bytes(),
		ContentType: "image/png",
		Width:       bounds.Dx(),
		Height:      bounds.Dy(),
	}, nil
}

// Close releases the document. The file is not held open between
// operations, so there is nothing to free.
func (d *Document) Close() error {
	return nil
}
