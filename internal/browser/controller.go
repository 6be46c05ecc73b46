// Package browser owns the focus state of a page-browsing session: it
// keeps the current page and the scroll position synchronized in both
// directions, and re-prioritizes resource loading around the focus.
//
// The central correctness property is the programmatic-scroll guard:
// when the controller itself moves the scroll position, the scroll
// event the view echoes back must not be reinterpreted as a user
// scroll, or an external jump could oscillate or snap back.
package browser

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jackzampolin/lectern/internal/schedule"
	"github.com/jackzampolin/lectern/internal/viewport"
)

// DefaultFrameInterval approximates one frame of a 60Hz presentation
// loop; the guard set by a programmatic scroll is cleared after it.
const DefaultFrameInterval = 16 * time.Millisecond

// View is the presentation collaborator the controller drives.
type View interface {
	// ScrollToPage brings the given page into view. The view is
	// expected to echo a scroll event back into OnScroll.
	ScrollToPage(page int)
}

// FrameScheduler runs fn at the next frame boundary. Tests substitute
// a manual pump.
type FrameScheduler func(fn func())

// Config configures a new Controller.
type Config struct {
	// Total is the page count. Correctable later via SetTotal.
	Total int

	// StartPage is the initial focus (default 1).
	StartPage int

	// View receives programmatic scrolls. May be nil in headless use.
	View View

	// Prefetcher, when set, is re-run around every new focus page.
	Prefetcher *schedule.Prefetcher

	// OnPageChange is invoked, outside the controller's lock, whenever
	// the current page changes for any reason.
	OnPageChange func(page int)

	// Frame defaults to a one-shot timer of DefaultFrameInterval.
	Frame FrameScheduler

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Controller is a state machine over {currentPage, programmaticScroll}.
type Controller struct {
	view         View
	prefetcher   *schedule.Prefetcher
	onPageChange func(int)
	frame        FrameScheduler
	logger       *slog.Logger

	mu       sync.Mutex
	current  int
	total    int
	guard    bool
	closed   bool
	prefetch context.CancelFunc
}

// New creates a controller and kicks the initial nearest-first
// prefetch around the start page. No programmatic scroll is issued for
// the initial focus; the view is assumed to start there.
func New(cfg Config) *Controller {
	frame := cfg.Frame
	if frame == nil {
		frame = func(fn func()) { time.AfterFunc(DefaultFrameInterval, fn) }
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	start := cfg.StartPage
	if start < 1 {
		start = 1
	}
	if cfg.Total > 0 && start > cfg.Total {
		start = cfg.Total
	}

	c := &Controller{
		view:         cfg.View,
		prefetcher:   cfg.Prefetcher,
		onPageChange: cfg.OnPageChange,
		frame:        frame,
		logger:       logger,
		current:      start,
		total:        cfg.Total,
	}

	c.mu.Lock()
	c.restartPrefetch(start)
	c.mu.Unlock()
	return c
}

// CurrentPage returns the page the session considers current.
func (c *Controller) CurrentPage() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// ScrollGuardActive reports whether a programmatic scroll is awaiting
// its frame boundary.
func (c *Controller) ScrollGuardActive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.guard
}

// SetPage handles an external focus change ("go to page k", next/prev
// buttons): it moves the current page, scrolls the view there, and
// arms the guard so the echoed scroll event is ignored. The guard
// clears on the next frame.
func (c *Controller) SetPage(page int) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	page = c.clamp(page)
	changed := page != c.current
	c.current = page
	c.guard = true
	view := c.view
	c.restartPrefetch(page)
	c.mu.Unlock()

	if view != nil {
		view.ScrollToPage(page)
	}
	c.frame(func() {
		c.mu.Lock()
		c.guard = false
		c.mu.Unlock()
	})

	if changed && c.onPageChange != nil {
		c.onPageChange(page)
	}
}

// OnScroll handles a (debounced) scroll event from the view. Events
// arriving while the guard is armed are echoes of the controller's own
// scroll and are ignored. A genuine user scroll moves the current page
// to the one at the viewport's vertical center, without re-triggering
// a programmatic scroll.
func (c *Controller) OnScroll(scrollTop, viewportHeight, itemHeight float64) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if c.guard {
		c.mu.Unlock()
		c.logger.Debug("ignoring programmatic scroll echo")
		return
	}

	page := viewport.PageAtCenter(scrollTop, viewportHeight, itemHeight, c.total)
	if page == 0 || page == c.current {
		c.mu.Unlock()
		return
	}
	c.current = page
	c.restartPrefetch(page)
	c.mu.Unlock()

	if c.onPageChange != nil {
		c.onPageChange(page)
	}
}

// SetTotal applies the one-time page-count correction discovered from
// the underlying document.
func (c *Controller) SetTotal(total int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.total = total
	c.current = c.clamp(c.current)
}

// Close cancels any in-progress prefetch issuing. Fetches already in
// flight complete and populate the cache.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.prefetch != nil {
		c.prefetch()
		c.prefetch = nil
	}
}

// restartPrefetch cancels the previous run and starts a new one from
// focus. Caller holds c.mu.
func (c *Controller) restartPrefetch(focus int) {
	if c.prefetcher == nil || c.total <= 0 {
		return
	}
	if c.prefetch != nil {
		c.prefetch()
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.prefetch = cancel
	total := c.total
	go c.prefetcher.Run(ctx, focus, total)
}

// clamp bounds a page to [1, total]. Caller holds c.mu.
func (c *Controller) clamp(page int) int {
	if page < 1 {
		return 1
	}
	if c.total > 0 && page > c.total {
		return c.total
	}
	return page
}
