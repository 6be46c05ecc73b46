package manifest

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"

	"github.com/jackzampolin/lectern/internal/home"
)

// Library is the set of documents discovered under the home documents
// directory. Documents with invalid manifests are skipped with a
// warning rather than failing the whole library.
type Library struct {
	mu   sync.RWMutex
	docs map[string]*Manifest
}

// LoadLibrary scans the documents directory for manifests.
func LoadLibrary(dir *home.Dir, logger *slog.Logger) (*Library, error) {
	if logger == nil {
		logger = slog.Default()
	}

	entries, err := os.ReadDir(dir.DocumentsPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read documents directory: %w", err)
	}

	lib := &Library{docs: make(map[string]*Manifest)}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		m, err := Load(dir.ManifestPath(entry.Name()))
		if err != nil {
			logger.Warn("skipping document with bad manifest", "dir", entry.Name(), "error", err)
			continue
		}
		if m.ID != entry.Name() {
			logger.Warn("skipping document: manifest id does not match directory", "dir", entry.Name(), "id", m.ID)
			continue
		}
		lib.docs[m.ID] = m
	}

	logger.Info("document library loaded", "documents", len(lib.docs))
	return lib, nil
}

// Get returns the manifest for a document ID.
func (l *Library) Get(id string) (*Manifest, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	m, ok := l.docs[id]
	return m, ok
}

// List returns all manifests sorted by ID.
func (l *Library) List() []*Manifest {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]*Manifest, 0, len(l.docs))
	for _, m := range l.docs {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the number of documents.
func (l *Library) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.docs)
}
