package server

import (
	"log/slog"
	"sync"
	"time"

	"github.com/jackzampolin/lectern/internal/browser"
	"github.com/jackzampolin/lectern/internal/config"
	"github.com/jackzampolin/lectern/internal/docsession"
	"github.com/jackzampolin/lectern/internal/home"
	"github.com/jackzampolin/lectern/internal/manifest"
	"github.com/jackzampolin/lectern/internal/pdfdoc"
	"github.com/jackzampolin/lectern/internal/resource"
	"github.com/jackzampolin/lectern/internal/schedule"
	"github.com/jackzampolin/lectern/internal/store"
)

// browseSession is the server-side browsing state for one document:
// a shared resource cache, an optional document session for raster
// rendering, and a controller that re-prioritizes prefetching around
// the focus page.
type browseSession struct {
	manifest   *manifest.Manifest
	store      *resource.Store
	docSession *docsession.Session
	controller *browser.Controller
}

func (b *browseSession) close() {
	b.controller.Close()
	if b.docSession != nil {
		b.docSession.Close()
	}
}

// sessionSet lazily creates one browseSession per document. Creation
// is serialized so concurrent requests share a single cache and a
// single document session per document.
type sessionSet struct {
	dir    *home.Dir
	cfg    config.BrowsingCfg
	origin config.OriginCfg
	logger *slog.Logger

	mu       sync.Mutex
	sessions map[string]*browseSession
}

func newSessionSet(dir *home.Dir, cfg config.BrowsingCfg, origin config.OriginCfg, logger *slog.Logger) *sessionSet {
	return &sessionSet{
		dir:      dir,
		cfg:      cfg,
		origin:   origin,
		logger:   logger,
		sessions: make(map[string]*browseSession),
	}
}

// get returns the browse session for a document, creating it on first
// use.
func (ss *sessionSet) get(m *manifest.Manifest) (*browseSession, error) {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	if b, ok := ss.sessions[m.ID]; ok {
		return b, nil
	}

	b, err := ss.build(m)
	if err != nil {
		return nil, err
	}
	ss.sessions[m.ID] = b
	ss.logger.Info("browse session created", "document", m.ID, "pages", m.PageCount)
	return b, nil
}

func (ss *sessionSet) build(m *manifest.Manifest) (*browseSession, error) {
	var docSession *docsession.Session
	if m.Source {
		docSession = docsession.New(docsession.Config{
			URL:                 "file://" + ss.dir.SourceDocumentPath(m.ID),
			Opener:              pdfdoc.Opener,
			FallbackAspectRatio: ss.cfg.FallbackAspectRatio,
			Logger:              ss.logger,
		})
	}

	var fetcher resource.Fetcher = store.NewLocal(ss.dir, m.ID, store.LocalConfig{
		Session: docSession,
	})
	if ss.origin.URL != "" {
		fetcher = store.NewFallback(
			fetcher,
			store.NewOrigin(ss.origin.URL, m.ID, time.Duration(ss.origin.TimeoutSeconds)*time.Second),
		)
	}

	cache := resource.NewStore(fetcher, resource.CacheConfig[resource.Key]{
		CacheFailures: ss.cfg.CacheFailures,
		Logger:        ss.logger,
	})

	prefetcher := schedule.NewPrefetcher(cache, schedule.PrefetcherConfig{
		Kinds:       m.ResourceKinds(),
		Concurrency: ss.cfg.PrefetchConcurrency,
		Logger:      ss.logger,
	})

	controller := browser.New(browser.Config{
		Total:      m.PageCount,
		Prefetcher: prefetcher,
		Logger:     ss.logger,
	})

	return &browseSession{
		manifest:   m,
		store:      cache,
		docSession: docSession,
		controller: controller,
	}, nil
}

// closeAll tears down every session. Called on server shutdown.
func (ss *sessionSet) closeAll() {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	for id, b := range ss.sessions {
		b.close()
		delete(ss.sessions, id)
	}
}

// len returns the number of live sessions.
func (ss *sessionSet) len() int {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return len(ss.sessions)
}
