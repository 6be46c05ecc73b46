package viewport

import (
	"log/slog"
	"sync"
	"time"
)

// DefaultDebounce is the delay between the last scroll event and the
// window recomputation it triggers.
const DefaultDebounce = 100 * time.Millisecond

// TrackerConfig configures a new Tracker.
type TrackerConfig struct {
	// ItemHeight is the initial per-item height estimate. Derived from
	// the best available aspect ratio; corrected via SetItemHeight once
	// the true ratio is discovered.
	ItemHeight float64

	// Buffer is the number of extra items materialized on each side of
	// the visible range.
	Buffer int

	// Total is the item count.
	Total int

	// ViewportHeight is the initial viewport height, used for the
	// computation that runs on construction before any scroll event.
	ViewportHeight float64

	// Debounce delays recomputation after a scroll event (default
	// DefaultDebounce). Height and total corrections bypass it.
	Debounce time.Duration

	// OnChange is invoked, outside the tracker's lock, whenever the
	// window changes.
	OnChange func(Window)

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Tracker maintains the materialization window across scroll events.
// Scroll recomputations are debounced to avoid thrashing during fast
// scrolling; the debounce timer is the tracker's one cancellable
// resource and is released by Close.
type Tracker struct {
	buffer   int
	debounce time.Duration
	onChange func(Window)
	logger   *slog.Logger

	mu             sync.Mutex
	itemHeight     float64
	total          int
	scrollTop      float64
	viewportHeight float64
	win            Window
	timer          *time.Timer
	closed         bool
}

// NewTracker creates a tracker and runs the initial window computation
// immediately, without waiting for a scroll event.
func NewTracker(cfg TrackerConfig) *Tracker {
	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	t := &Tracker{
		buffer:         cfg.Buffer,
		debounce:       debounce,
		onChange:       cfg.OnChange,
		logger:         logger,
		itemHeight:     cfg.ItemHeight,
		total:          cfg.Total,
		viewportHeight: cfg.ViewportHeight,
	}
	t.win = Compute(0, t.viewportHeight, t.itemHeight, t.buffer, t.total)
	return t
}

// Window returns the current window.
func (t *Tracker) Window() Window {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.win
}

// Scroll records a scroll event and schedules a debounced
// recomputation. Only the most recent position is used when the timer
// fires.
func (t *Tracker) Scroll(scrollTop, viewportHeight float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	t.scrollTop = scrollTop
	t.viewportHeight = viewportHeight

	if t.timer != nil {
		t.timer.Stop()
	}
	t.timer = time.AfterFunc(t.debounce, t.recompute)
}

// SetItemHeight corrects the per-item height estimate, typically when
// the document's true aspect ratio is discovered. The window is
// recomputed immediately and may shift; that shift happens at most
// once per session and is expected.
func (t *Tracker) SetItemHeight(h float64) {
	t.mu.Lock()
	t.itemHeight = h
	t.mu.Unlock()
	t.recompute()
}

// SetTotal corrects the item count, for the one-time page-count
// correction after the underlying document is opened.
func (t *Tracker) SetTotal(total int) {
	t.mu.Lock()
	t.total = total
	t.mu.Unlock()
	t.recompute()
}

// SpacerHeights returns the summed estimated heights of the items
// above and below the window, preserving total scrollable height.
func (t *Tracker) SpacerHeights() (above, below float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	above = float64(t.win.Start) * t.itemHeight
	below = float64(t.total-t.win.End) * t.itemHeight
	return above, below
}

// Close stops any pending recomputation. The tracker must not be used
// afterwards.
func (t *Tracker) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

func (t *Tracker) recompute() {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	win := Compute(t.scrollTop, t.viewportHeight, t.itemHeight, t.buffer, t.total)
	changed := win != t.win
	t.win = win
	onChange := t.onChange
	t.mu.Unlock()

	if changed && onChange != nil {
		onChange(win)
	}
}
