package browser

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jackzampolin/lectern/internal/resource"
	"github.com/jackzampolin/lectern/internal/schedule"
)

// fakeView records programmatic scrolls.
type fakeView struct {
	mu      sync.Mutex
	scrolls []int
}

func (v *fakeView) ScrollToPage(page int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.scrolls = append(v.scrolls, page)
}

func (v *fakeView) count() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.scrolls)
}

// framePump collects frame callbacks for manual release.
type framePump struct {
	mu  sync.Mutex
	fns []func()
}

func (p *framePump) schedule(fn func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fns = append(p.fns, fn)
}

// tick runs all pending frame callbacks.
func (p *framePump) tick() {
	p.mu.Lock()
	fns := p.fns
	p.fns = nil
	p.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

func TestController_ScrollGuardIdempotence(t *testing.T) {
	view := &fakeView{}
	pump := &framePump{}
	c := New(Config{Total: 20, View: view, Frame: pump.schedule})
	defer c.Close()

	c.SetPage(12)
	if got := c.CurrentPage(); got != 12 {
		t.Fatalf("CurrentPage = %d, want 12", got)
	}
	if view.count() != 1 {
		t.Fatalf("expected 1 programmatic scroll, got %d", view.count())
	}

	// The view echoes the programmatic scroll. itemHeight 100, so page
	// 12 centers near scrollTop 1100. The guard must swallow it.
	c.OnScroll(1100, 100, 100)
	if got := c.CurrentPage(); got != 12 {
		t.Errorf("echo moved CurrentPage to %d", got)
	}

	pump.tick()
	if c.ScrollGuardActive() {
		t.Fatal("guard must clear at the frame boundary")
	}

	// A genuine user scroll after the frame does move the page...
	c.OnScroll(400, 100, 100)
	if got := c.CurrentPage(); got != 5 {
		t.Errorf("CurrentPage = %d, want 5", got)
	}
	// ...without re-triggering a programmatic scroll.
	if view.count() != 1 {
		t.Errorf("user scroll issued a programmatic scroll (total %d)", view.count())
	}
}

func TestController_UserScrollSuppressedOnlyDuringGuard(t *testing.T) {
	pump := &framePump{}
	c := New(Config{Total: 10, View: &fakeView{}, Frame: pump.schedule})
	defer c.Close()

	c.SetPage(3)
	c.OnScroll(900, 100, 100) // swallowed echo
	c.OnScroll(900, 100, 100) // still within the same frame
	if got := c.CurrentPage(); got != 3 {
		t.Fatalf("CurrentPage = %d, want 3", got)
	}

	pump.tick()
	c.OnScroll(900, 100, 100)
	if got := c.CurrentPage(); got != 10 {
		t.Errorf("CurrentPage = %d, want 10", got)
	}
}

func TestController_SetPageClamps(t *testing.T) {
	pump := &framePump{}
	c := New(Config{Total: 5, View: &fakeView{}, Frame: pump.schedule})
	defer c.Close()

	c.SetPage(99)
	if got := c.CurrentPage(); got != 5 {
		t.Errorf("CurrentPage = %d, want 5", got)
	}
	pump.tick()
	c.SetPage(-1)
	if got := c.CurrentPage(); got != 1 {
		t.Errorf("CurrentPage = %d, want 1", got)
	}
}

func TestController_OnPageChange(t *testing.T) {
	pump := &framePump{}
	var mu sync.Mutex
	var changes []int
	c := New(Config{
		Total: 10,
		View:  &fakeView{},
		Frame: pump.schedule,
		OnPageChange: func(p int) {
			mu.Lock()
			changes = append(changes, p)
			mu.Unlock()
		},
	})
	defer c.Close()

	c.SetPage(4)
	pump.tick()
	c.OnScroll(700, 100, 100) // centers page 8
	c.OnScroll(700, 100, 100) // no change, no notification

	mu.Lock()
	defer mu.Unlock()
	if len(changes) != 2 || changes[0] != 4 || changes[1] != 8 {
		t.Errorf("changes = %v, want [4 8]", changes)
	}
}

func TestController_SetTotalCorrection(t *testing.T) {
	pump := &framePump{}
	c := New(Config{Total: 20, View: &fakeView{}, Frame: pump.schedule})
	defer c.Close()

	c.SetPage(18)
	pump.tick()
	c.SetTotal(10)
	if got := c.CurrentPage(); got != 10 {
		t.Errorf("CurrentPage after count correction = %d, want 10", got)
	}
}

// TestController_EndToEnd exercises the full load path: a 10-page
// document with focus on page 1 fetches every page nearest-first, then
// a user scroll that centers page 7 updates the current page without
// any programmatic scroll.
func TestController_EndToEnd(t *testing.T) {
	var mu sync.Mutex
	var fetched []int
	store := resource.NewStore(resource.FetcherFunc(
		func(ctx context.Context, page int, kind resource.Kind) (resource.Value, error) {
			mu.Lock()
			fetched = append(fetched, page)
			mu.Unlock()
			return resource.Value{Data: []byte("page")}, nil
		}), resource.CacheConfig[resource.Key]{})

	prefetcher := schedule.NewPrefetcher(store, schedule.PrefetcherConfig{
		Kinds:       []resource.Kind{resource.KindImage},
		Concurrency: 1, // serialize so arrival order equals issue order
	})

	view := &fakeView{}
	pump := &framePump{}
	c := New(Config{
		Total:      10,
		StartPage:  1,
		View:       view,
		Prefetcher: prefetcher,
		Frame:      pump.schedule,
	})
	defer c.Close()

	waitForLen(t, store, 10)

	mu.Lock()
	for i, page := range []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10} {
		if fetched[i] != page {
			t.Errorf("fetch %d: got page %d, want %d", i, fetched[i], page)
		}
	}
	mu.Unlock()

	// Scroll so page 7 is at the viewport center.
	c.OnScroll(600, 100, 100)
	if got := c.CurrentPage(); got != 7 {
		t.Errorf("CurrentPage = %d, want 7", got)
	}
	if view.count() != 0 {
		t.Errorf("user scroll issued %d programmatic scrolls, want 0", view.count())
	}
}

func waitForLen(t *testing.T, store *resource.Store, n int) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for store.Len() < n {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %d cached entries (have %d)", n, store.Len())
		}
		time.Sleep(time.Millisecond)
	}
}
