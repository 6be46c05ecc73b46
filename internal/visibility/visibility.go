// Package visibility tracks which pages have ever entered the
// viewport. The gate is sticky: once a page has been visible, its
// expensive rendered content is kept resident even after it scrolls
// away, trading memory for re-render cost.
package visibility

import (
	"log/slog"
	"sync"
)

// RenderState is the per-page materialization state.
type RenderState int

const (
	// NotYetVisible means the page has never intersected the viewport
	// and renders as an inexpensive placeholder.
	NotYetVisible RenderState = iota

	// Rendered means the page has been visible at least once and keeps
	// its real content mounted from then on.
	Rendered
)

// Source is the visibility-observation primitive. Observe registers a
// callback fired with true/false as the item enters/leaves the
// configured margin around the viewport, and returns a cancel function
// that disconnects the observer. Any runtime can substitute a
// poll-based or layout-engine-native implementation.
type Source interface {
	Observe(page int, fn func(visible bool)) (cancel func(), err error)
}

// GateConfig configures a new Gate.
type GateConfig struct {
	// Source provides visibility observations. A nil source, or one
	// whose Observe fails, degrades to treating every watched page as
	// visible: virtualization is an optimization, never a correctness
	// requirement.
	Source Source

	// OnVisible is invoked, outside the gate's lock, the first time a
	// page becomes visible. Later observations never re-fire it.
	OnVisible func(page int)

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Gate owns a per-page arena of RenderState values and one observer
// per watched page. The NotYetVisible -> Rendered transition is
// one-way; no sequence of scroll positions reverts it.
type Gate struct {
	source    Source
	onVisible func(page int)
	logger    *slog.Logger

	mu      sync.Mutex
	states  map[int]RenderState
	cancels map[int]func()
	closed  bool
}

// NewGate creates a gate over the given visibility source.
func NewGate(cfg GateConfig) *Gate {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{
		source:    cfg.Source,
		onVisible: cfg.OnVisible,
		logger:    logger,
		states:    make(map[int]RenderState),
		cancels:   make(map[int]func()),
	}
}

// Watch starts observing a page. Pages already Rendered are not
// re-observed. If observer setup fails the page is marked visible
// immediately rather than erroring.
func (g *Gate) Watch(page int) {
	g.mu.Lock()
	if g.closed || g.states[page] == Rendered {
		g.mu.Unlock()
		return
	}
	if _, watching := g.cancels[page]; watching {
		g.mu.Unlock()
		return
	}
	source := g.source
	g.mu.Unlock()

	if source == nil {
		g.markVisible(page)
		return
	}

	cancel, err := source.Observe(page, func(visible bool) {
		if visible {
			g.markVisible(page)
		}
		// Exit events are deliberately ignored: the state is sticky.
	})
	if err != nil {
		g.logger.Warn("visibility observer unavailable, treating page as visible", "page", page, "error", err)
		g.markVisible(page)
		return
	}

	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		cancel()
		return
	}
	// The observer may have fired synchronously and already rendered
	// the page; disconnect instead of tracking a dead observer.
	if g.states[page] == Rendered {
		g.mu.Unlock()
		cancel()
		return
	}
	g.cancels[page] = cancel
	g.mu.Unlock()
}

// Unwatch disconnects the observer for a page. The page's render state
// is retained: unwatching never reverts Rendered.
func (g *Gate) Unwatch(page int) {
	g.mu.Lock()
	cancel := g.cancels[page]
	delete(g.cancels, page)
	g.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// HasBeenVisible reports whether the page has ever been visible.
func (g *Gate) HasBeenVisible(page int) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.states[page] == Rendered
}

// State returns the render state for a page.
func (g *Gate) State(page int) RenderState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.states[page]
}

// RenderedCount returns how many pages hold real content.
func (g *Gate) RenderedCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := 0
	for _, s := range g.states {
		if s == Rendered {
			n++
		}
	}
	return n
}

// Close disconnects every observer. Render states are kept so callers
// can still consult them during teardown.
func (g *Gate) Close() {
	g.mu.Lock()
	g.closed = true
	cancels := make([]func(), 0, len(g.cancels))
	for _, c := range g.cancels {
		cancels = append(cancels, c)
	}
	g.cancels = make(map[int]func())
	g.mu.Unlock()

	for _, c := range cancels {
		c()
	}
}

func (g *Gate) markVisible(page int) {
	g.mu.Lock()
	if g.states[page] == Rendered {
		g.mu.Unlock()
		return
	}
	g.states[page] = Rendered
	cancel := g.cancels[page]
	delete(g.cancels, page)
	onVisible := g.onVisible
	g.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if onVisible != nil {
		onVisible(page)
	}
}
