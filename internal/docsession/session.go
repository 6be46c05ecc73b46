// Package docsession shares a single parse of an underlying
// page-oriented document across every consumer that renders from it.
// The document is opened lazily, exactly once per session; the first
// page's native aspect ratio is discovered asynchronously after the
// open and announced to subscribers so placeholder sizing can correct
// itself once per session.
package docsession

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/google/uuid"
)

// DefaultAspectRatio (height over width) is the conventional fallback
// used for placeholder sizing before the true ratio is known. A-series
// paper proportion.
const DefaultAspectRatio = math.Sqrt2

// ErrClosed is returned by all operations after Close.
var ErrClosed = errors.New("document session closed")

// PageRender is the result of rendering one page.
type PageRender struct {
	Data        []byte
	ContentType string
	Width       int
	Height      int
}

// Handle is the document-rendering backend collaborator: one parsed
// document that can report its page count, render pages, and report
// page dimensions at unit scale.
type Handle interface {
	PageCount() int
	RenderPage(ctx context.Context, page, widthHint int) (PageRender, error)
	PageSize(ctx context.Context, page int) (width, height float64, err error)
	Close() error
}

// Opener parses the document at url and returns a handle. Called at
// most once per session.
type Opener func(ctx context.Context, url string) (Handle, error)

// Config configures a new Session.
type Config struct {
	URL    string
	Opener Opener

	// FallbackAspectRatio is used until the true first-page ratio is
	// discovered. Defaults to DefaultAspectRatio.
	FallbackAspectRatio float64

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Session wraps one lazy parse of a document. A failed parse is
// terminal: every dependent call fails with the same error and only a
// fresh session recovers. This is the opposite policy from the
// resource cache, where failures are retryable per resource.
type Session struct {
	id       string
	url      string
	opener   Opener
	fallback float64
	logger   *slog.Logger

	mu        sync.Mutex
	opened    bool
	opening   chan struct{}
	handle    Handle
	pageCount int
	openErr   error
	closed    bool

	aspect      float64
	aspectKnown bool
	subs        map[int]func(float64)
	nextSub     int
}

// New creates a session for the document at url. Nothing is parsed
// until the first operation needs the handle.
func New(cfg Config) *Session {
	fallback := cfg.FallbackAspectRatio
	if fallback <= 0 {
		fallback = DefaultAspectRatio
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	id := uuid.New().String()
	return &Session{
		id:       id,
		url:      cfg.URL,
		opener:   cfg.Opener,
		fallback: fallback,
		logger:   logger.With("session", id, "url", cfg.URL),
		subs:     make(map[int]func(float64)),
	}
}

// ID returns the session's unique identifier.
func (s *Session) ID() string { return s.id }

// URL returns the document URL the session was created for.
func (s *Session) URL() string { return s.url }

// Open forces the lazy parse. Safe to call concurrently; exactly one
// parse is issued and all callers share its outcome.
func (s *Session) Open(ctx context.Context) error {
	return s.ensureOpen(ctx)
}

// PageCount returns the document's page count, opening it if needed.
func (s *Session) PageCount(ctx context.Context) (int, error) {
	if err := s.ensureOpen(ctx); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pageCount, nil
}

// RenderPage renders one page at the given width hint.
func (s *Session) RenderPage(ctx context.Context, page, widthHint int) (PageRender, error) {
	if err := s.ensureOpen(ctx); err != nil {
		return PageRender{}, err
	}

	s.mu.Lock()
	handle, count := s.handle, s.pageCount
	s.mu.Unlock()

	if page < 1 || page > count {
		return PageRender{}, fmt.Errorf("page %d out of range [1, %d]", page, count)
	}
	return handle.RenderPage(ctx, page, widthHint)
}

// AspectRatio returns the best current height-over-width estimate for
// a page and whether it is the discovered native ratio (true) or the
// fallback (false).
func (s *Session) AspectRatio() (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.aspectKnown {
		return s.aspect, true
	}
	return s.fallback, false
}

// OnAspectRatio subscribes to the one-time discovery of the native
// aspect ratio. If the ratio is already known, fn is invoked
// synchronously. The returned function cancels the subscription.
func (s *Session) OnAspectRatio(fn func(ratio float64)) (cancel func()) {
	s.mu.Lock()
	if s.aspectKnown {
		ratio := s.aspect
		s.mu.Unlock()
		fn(ratio)
		return func() {}
	}
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// Close releases the handle. Idempotent.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	handle := s.handle
	s.handle = nil
	s.subs = make(map[int]func(float64))
	s.mu.Unlock()

	if handle != nil {
		return handle.Close()
	}
	return nil
}

// ensureOpen performs the single-flight lazy parse. The parse runs
// detached from the caller's cancellation so a departed first caller
// cannot poison the session with a spurious terminal error.
func (s *Session) ensureOpen(ctx context.Context) error {
	for {
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return ErrClosed
		}
		if s.opened {
			err := s.openErr
			s.mu.Unlock()
			return err
		}
		if s.opening != nil {
			ch := s.opening
			s.mu.Unlock()
			select {
			case <-ch:
				continue
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		s.opening = make(chan struct{})
		s.mu.Unlock()
		break
	}

	handle, err := s.opener(context.WithoutCancel(ctx), s.url)

	s.mu.Lock()
	s.opened = true
	s.openErr = err
	if err == nil {
		if s.closed {
			// Closed while parsing; release the handle instead of
			// keeping it.
			s.mu.Unlock()
			handle.Close()
			return ErrClosed
		}
		s.handle = handle
		s.pageCount = handle.PageCount()
	} else {
		s.logger.Warn("document parse failed", "error", err)
	}
	close(s.opening)
	s.opening = nil
	s.mu.Unlock()

	if err == nil {
		go s.discoverAspectRatio()
	}
	return err
}

// discoverAspectRatio measures the first page once and notifies
// subscribers. Failure keeps the fallback ratio; already-rendered
// content is never retroactively resized, so the worst case is
// slightly mis-sized placeholders.
func (s *Session) discoverAspectRatio() {
	s.mu.Lock()
	handle := s.handle
	s.mu.Unlock()
	if handle == nil {
		return
	}

	w, h, err := handle.PageSize(context.Background(), 1)
	if err != nil || w <= 0 || h <= 0 {
		s.logger.Warn("aspect ratio discovery failed, keeping fallback", "error", err)
		return
	}
	ratio := h / w

	s.mu.Lock()
	if s.closed || s.aspectKnown {
		s.mu.Unlock()
		return
	}
	s.aspect = ratio
	s.aspectKnown = true
	subs := make([]func(float64), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.subs = make(map[int]func(float64))
	s.mu.Unlock()

	s.logger.Debug("aspect ratio discovered", "ratio", ratio)
	for _, fn := range subs {
		fn(ratio)
	}
}
