// Package viewport computes which pages of a virtualized list should
// be materialized for a given scroll position, and keeps that window
// current as the reader scrolls.
package viewport

import "math"

// Window is the half-open range [Start, End) of 0-based item indices
// currently materialized. Items outside the window are represented by
// aggregate spacers so total scrollable height stays correct.
type Window struct {
	Start int
	End   int
}

// Contains reports whether item index i falls inside the window.
func (w Window) Contains(i int) bool {
	return i >= w.Start && i < w.End
}

// Len returns the number of materialized items.
func (w Window) Len() int {
	return w.End - w.Start
}

// Compute returns the window for a scroll position. Start is the first
// visible item minus buffer, End is one past the last visible item plus
// buffer, both clamped to [0, total].
//
// A non-positive itemHeight disables virtualization and the full range
// is materialized: the window is a performance optimization, not a
// correctness requirement.
func Compute(scrollTop, viewportHeight, itemHeight float64, buffer, total int) Window {
	if total <= 0 {
		return Window{}
	}
	if itemHeight <= 0 {
		return Window{Start: 0, End: total}
	}
	if scrollTop < 0 {
		scrollTop = 0
	}

	start := int(math.Floor(scrollTop/itemHeight)) - buffer
	if start < 0 {
		start = 0
	}
	end := int(math.Ceil((scrollTop+viewportHeight)/itemHeight)) + buffer
	if end > total {
		end = total
	}
	if end < start {
		end = start
	}
	return Window{Start: start, End: end}
}

// PageAtCenter returns the 1-based page whose rendered extent contains
// the vertical center of the viewport. With uniform item heights this
// is the page whose center is closest to the viewport center.
func PageAtCenter(scrollTop, viewportHeight, itemHeight float64, total int) int {
	if total <= 0 {
		return 0
	}
	if itemHeight <= 0 {
		return 1
	}
	center := scrollTop + viewportHeight/2
	page := int(math.Floor(center/itemHeight)) + 1
	if page < 1 {
		page = 1
	}
	if page > total {
		page = total
	}
	return page
}

// ItemHeight derives the per-item height estimate from the rendered
// item width and a page aspect ratio (height over width).
func ItemHeight(width, aspectRatio float64) float64 {
	if width <= 0 || aspectRatio <= 0 {
		return 0
	}
	return width * aspectRatio
}
