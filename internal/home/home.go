package home

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// DefaultDirName is the default name for the lectern home directory.
	DefaultDirName = ".lectern"

	// DocumentsDirName is the subdirectory holding document libraries.
	DocumentsDirName = "documents"

	// ConfigFileName is the default config file name.
	ConfigFileName = "config.yaml"

	// ManifestFileName is the per-document manifest file.
	ManifestFileName = "manifest.json"
)

// Dir represents the lectern home directory structure.
//
//	~/.lectern/
//	  config.yaml
//	  documents/
//	    <docID>/
//	      manifest.json
//	      source.pdf              (optional underlying document)
//	      pages/
//	        page_0001.png         (page image)
//	        page_0001.md          (markdown text)
//	        page_0001.layout.json (layout description)
type Dir struct {
	path string
}

// New creates a new Dir with the given path.
// If path is empty, uses the default (~/.lectern).
func New(path string) (*Dir, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		path = filepath.Join(home, DefaultDirName)
	}

	return &Dir{path: path}, nil
}

// Path returns the root path of the home directory.
func (d *Dir) Path() string {
	return d.path
}

// DocumentsPath returns the path to the documents directory.
func (d *Dir) DocumentsPath() string {
	return filepath.Join(d.path, DocumentsDirName)
}

// ConfigPath returns the path to the default config file.
func (d *Dir) ConfigPath() string {
	return filepath.Join(d.path, ConfigFileName)
}

// EnsureExists creates the home directory and subdirectories if they don't exist.
func (d *Dir) EnsureExists() error {
	if err := os.MkdirAll(d.DocumentsPath(), 0o755); err != nil {
		return fmt.Errorf("failed to create documents directory: %w", err)
	}
	return nil
}

// Exists returns true if the home directory exists.
func (d *Dir) Exists() bool {
	_, err := os.Stat(d.path)
	return err == nil
}

// ConfigExists returns true if the config file exists in the home directory.
func (d *Dir) ConfigExists() bool {
	_, err := os.Stat(d.ConfigPath())
	return err == nil
}

// DocumentDir returns the directory for one document.
func (d *Dir) DocumentDir(docID string) string {
	return filepath.Join(d.DocumentsPath(), docID)
}

// ManifestPath returns the path to a document's manifest.
func (d *Dir) ManifestPath(docID string) string {
	return filepath.Join(d.DocumentDir(docID), ManifestFileName)
}

// SourceDocumentPath returns the path to the underlying page-oriented
// document, when the library carries one.
func (d *Dir) SourceDocumentPath(docID string) string {
	return filepath.Join(d.DocumentDir(docID), "source.pdf")
}

// PagesDir returns the directory holding per-page resources.
func (d *Dir) PagesDir(docID string) string {
	return filepath.Join(d.DocumentDir(docID), "pages")
}

// PageImagePath returns the path to a page image.
// Page numbers are 1-indexed.
func (d *Dir) PageImagePath(docID string, pageNum int) string {
	return filepath.Join(d.PagesDir(docID), fmt.Sprintf("page_%04d.png", pageNum))
}

// PageMarkdownPath returns the path to a page's markdown text.
func (d *Dir) PageMarkdownPath(docID string, pageNum int) string {
	return filepath.Join(d.PagesDir(docID), fmt.Sprintf("page_%04d.md", pageNum))
}

// PageLayoutPath returns the path to a page's layout description.
func (d *Dir) PageLayoutPath(docID string, pageNum int) string {
	return filepath.Join(d.PagesDir(docID), fmt.Sprintf("page_%04d.layout.json", pageNum))
}

// EnsurePagesDir creates the pages directory for a document.
func (d *Dir) EnsurePagesDir(docID string) error {
	return os.MkdirAll(d.PagesDir(docID), 0o755)
}
