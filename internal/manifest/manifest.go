// Package manifest describes the documents available to a lectern
// server. Each document directory carries a manifest.json validated
// against an embedded JSON schema before it is trusted.
package manifest

import (
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-json"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/jackzampolin/lectern/internal/resource"
)

// Manifest describes one browsable document.
type Manifest struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Author    string   `json:"author,omitempty"`
	PageCount int      `json:"page_count"`
	Kinds     []string `json:"kinds"`

	// Source indicates the document directory carries an underlying
	// page-oriented document (source.pdf) that raster requests render
	// from.
	Source bool `json:"source,omitempty"`
}

// schemaJSON is the manifest schema. Page counts must be positive and
// every listed kind must be one the browser understands.
const schemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["id", "title", "page_count", "kinds"],
  "properties": {
    "id": {"type": "string", "minLength": 1},
    "title": {"type": "string", "minLength": 1},
    "author": {"type": "string"},
    "page_count": {"type": "integer", "minimum": 1},
    "kinds": {
      "type": "array",
      "minItems": 1,
      "items": {"type": "string", "enum": ["image", "layout", "markdown", "raster"]}
    },
    "source": {"type": "boolean"}
  },
  "additionalProperties": false
}`

var schema = jsonschema.MustCompileString("manifest.json", schemaJSON)

// Parse validates and decodes manifest JSON.
func Parse(data []byte) (*Manifest, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("manifest is not valid JSON: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("manifest failed validation: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to decode manifest: %w", err)
	}
	return &m, nil
}

// Load reads and parses a manifest file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	return Parse(data)
}

// ResourceKinds returns the manifest's kinds as resource.Kind values.
func (m *Manifest) ResourceKinds() []resource.Kind {
	kinds := make([]resource.Kind, 0, len(m.Kinds))
	for _, k := range m.Kinds {
		kinds = append(kinds, resource.Kind(k))
	}
	return kinds
}

// HasKind reports whether the document offers the given resource kind.
func (m *Manifest) HasKind(kind resource.Kind) bool {
	for _, k := range m.Kinds {
		if strings.EqualFold(k, string(kind)) {
			return true
		}
	}
	return false
}
