package visibility

import (
	"errors"
	"sync"
	"testing"
)

// fakeSource lets tests fire visibility transitions by hand.
type fakeSource struct {
	mu        sync.Mutex
	callbacks map[int]func(bool)
	cancelled map[int]int
	failSetup bool
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		callbacks: make(map[int]func(bool)),
		cancelled: make(map[int]int),
	}
}

func (s *fakeSource) Observe(page int, fn func(visible bool)) (func(), error) {
	if s.failSetup {
		return nil, errors.New("observer unavailable")
	}
	s.mu.Lock()
	s.callbacks[page] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.callbacks, page)
		s.cancelled[page]++
	}, nil
}

func (s *fakeSource) fire(page int, visible bool) {
	s.mu.Lock()
	fn := s.callbacks[page]
	s.mu.Unlock()
	if fn != nil {
		fn(visible)
	}
}

func (s *fakeSource) cancelCount(page int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancelled[page]
}

func TestGate_StickyVisibility(t *testing.T) {
	source := newFakeSource()
	gate := NewGate(GateConfig{Source: source})
	defer gate.Close()

	gate.Watch(3)
	if gate.HasBeenVisible(3) {
		t.Fatal("page must start NotYetVisible")
	}

	source.fire(3, true)
	if !gate.HasBeenVisible(3) {
		t.Fatal("page must be Rendered after entering the viewport")
	}

	// No sequence of later observations may revert the flag.
	source.fire(3, false)
	source.fire(3, false)
	source.fire(3, true)
	source.fire(3, false)
	if !gate.HasBeenVisible(3) {
		t.Error("sticky visibility reverted")
	}
	if gate.State(3) != Rendered {
		t.Errorf("State = %v, want Rendered", gate.State(3))
	}
}

func TestGate_ExitBeforeEnterIsIgnored(t *testing.T) {
	source := newFakeSource()
	gate := NewGate(GateConfig{Source: source})
	defer gate.Close()

	gate.Watch(1)
	source.fire(1, false)
	if gate.HasBeenVisible(1) {
		t.Error("exit event must not mark a page visible")
	}
}

func TestGate_OnVisibleFiresOnce(t *testing.T) {
	source := newFakeSource()
	var mu sync.Mutex
	var fired []int
	gate := NewGate(GateConfig{
		Source: source,
		OnVisible: func(page int) {
			mu.Lock()
			fired = append(fired, page)
			mu.Unlock()
		},
	})
	defer gate.Close()

	gate.Watch(5)
	source.fire(5, true)
	source.fire(5, true)
	gate.Watch(5) // re-watching a Rendered page is a no-op

	mu.Lock()
	defer mu.Unlock()
	if len(fired) != 1 || fired[0] != 5 {
		t.Errorf("OnVisible fired = %v, want [5]", fired)
	}
}

func TestGate_ObserverDisconnectedOnceRendered(t *testing.T) {
	source := newFakeSource()
	gate := NewGate(GateConfig{Source: source})
	defer gate.Close()

	gate.Watch(2)
	source.fire(2, true)
	if got := source.cancelCount(2); got != 1 {
		t.Errorf("expected observer disconnect after render, got %d cancels", got)
	}
}

func TestGate_SetupFailureFallsBackToVisible(t *testing.T) {
	source := newFakeSource()
	source.failSetup = true
	gate := NewGate(GateConfig{Source: source})
	defer gate.Close()

	gate.Watch(4)
	if !gate.HasBeenVisible(4) {
		t.Error("setup failure must degrade to always-visible")
	}
}

func TestGate_NilSourceFallsBackToVisible(t *testing.T) {
	gate := NewGate(GateConfig{})
	defer gate.Close()

	gate.Watch(1)
	if !gate.HasBeenVisible(1) {
		t.Error("nil source must degrade to always-visible")
	}
}

func TestGate_UnwatchKeepsState(t *testing.T) {
	source := newFakeSource()
	gate := NewGate(GateConfig{Source: source})
	defer gate.Close()

	gate.Watch(6)
	source.fire(6, true)
	gate.Unwatch(6)
	if !gate.HasBeenVisible(6) {
		t.Error("Unwatch must not revert Rendered")
	}

	gate.Watch(7)
	gate.Unwatch(7)
	if gate.HasBeenVisible(7) {
		t.Error("Unwatch must not invent visibility")
	}
	if got := source.cancelCount(7); got != 1 {
		t.Errorf("expected observer disconnect on Unwatch, got %d", got)
	}
}

func TestGate_CloseDisconnectsAllObservers(t *testing.T) {
	source := newFakeSource()
	gate := NewGate(GateConfig{Source: source})

	for page := 1; page <= 4; page++ {
		gate.Watch(page)
	}
	source.fire(1, true)
	gate.Close()

	for page := 2; page <= 4; page++ {
		if got := source.cancelCount(page); got != 1 {
			t.Errorf("page %d: expected 1 cancel on Close, got %d", page, got)
		}
	}
	if !gate.HasBeenVisible(1) {
		t.Error("render state must survive Close")
	}
	if gate.RenderedCount() != 1 {
		t.Errorf("RenderedCount = %d, want 1", gate.RenderedCount())
	}

	// Watch after Close is a no-op and must not leak observers.
	gate.Watch(9)
	if len(source.callbacks) != 0 {
		t.Error("Watch after Close leaked an observer")
	}
}
