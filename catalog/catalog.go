// Package catalog manages the baseline ontology catalog: a directory of
// Turtle files plus a catalog.json manifest addressable by baseline id.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/c360studio/ontorag/ttl"
)

// ManifestName is the manifest file inside a catalog directory.
const ManifestName = "catalog.json"

// Entry describes one registered baseline ontology.
type Entry struct {
	Description string   `json:"description,omitempty"`
	Label       string   `json:"label"`
	Namespace   string   `json:"namespace,omitempty"`
	Path        string   `json:"path"`
	Tags        []string `json:"tags,omitempty"`
}

// Catalog is a baseline directory bound to its manifest.
type Catalog struct {
	dir     string
	entries map[string]Entry
}

// Open loads the catalog at dir. A missing manifest yields an empty
// catalog; the directory is created on first save.
func Open(dir string) (*Catalog, error) {
	c := &Catalog{dir: dir, entries: map[string]Entry{}}

	data, err := os.ReadFile(filepath.Join(dir, ManifestName))
	if os.IsNotExist(err) {
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read catalog manifest: %w", err)
	}
	if err := json.Unmarshal(data, &c.entries); err != nil {
		return nil, fmt.Errorf("decode catalog manifest: %w", err)
	}
	return c, nil
}

// Dir returns the catalog directory.
func (c *Catalog) Dir() string { return c.dir }

// Entry looks up a baseline by id.
func (c *Catalog) Entry(id string) (Entry, bool) {
	e, ok := c.entries[id]
	return e, ok
}

// IDs returns the registered baseline ids, sorted.
func (c *Catalog) IDs() []string {
	ids := make([]string, 0, len(c.entries))
	for id := range c.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Register copies a Turtle file into the catalog under {id}.ttl and records
// it in the manifest. The namespace argument is a fallback: when the TTL
// declares classes or properties, the most common IRI prefix among them
// wins. Re-registering an id replaces its entry and file.
func (c *Catalog) Register(id, ttlPath, label, description string, tags []string, namespace string) (Entry, error) {
	if id == "" {
		return Entry{}, fmt.Errorf("register baseline: empty id")
	}

	data, err := os.ReadFile(ttlPath)
	if err != nil {
		return Entry{}, fmt.Errorf("read baseline turtle: %w", err)
	}

	// Parse up front: a baseline that does not parse never enters the
	// catalog, and parsing yields the namespace.
	frag, err := ttl.Import(data, id)
	if err != nil {
		return Entry{}, fmt.Errorf("register baseline %s: %w", id, err)
	}
	if frag.Namespace != "" {
		namespace = frag.Namespace
	}

	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return Entry{}, fmt.Errorf("create catalog directory: %w", err)
	}
	filename := id + ".ttl"
	if err := os.WriteFile(filepath.Join(c.dir, filename), data, 0o644); err != nil {
		return Entry{}, fmt.Errorf("copy baseline turtle: %w", err)
	}

	if label == "" {
		label = id
	}
	entry := Entry{
		Description: description,
		Label:       label,
		Namespace:   namespace,
		Path:        filename,
		Tags:        tags,
	}
	c.entries[id] = entry

	if err := c.save(); err != nil {
		return Entry{}, err
	}
	return entry, nil
}

// Import parses a registered baseline into a card fragment with the
// baseline id as origin.
func (c *Catalog) Import(id string) (*ttl.Fragment, error) {
	entry, ok := c.entries[id]
	if !ok {
		return nil, fmt.Errorf("baseline %s not registered", id)
	}

	data, err := os.ReadFile(filepath.Join(c.dir, entry.Path))
	if err != nil {
		return nil, fmt.Errorf("read baseline %s: %w", id, err)
	}
	frag, err := ttl.Import(data, id)
	if err != nil {
		return nil, fmt.Errorf("import baseline %s: %w", id, err)
	}
	return frag, nil
}

// save writes the manifest with sorted keys and stable formatting.
func (c *Catalog) save() error {
	data, err := json.MarshalIndent(c.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal catalog manifest: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(filepath.Join(c.dir, ManifestName), data, 0o644); err != nil {
		return fmt.Errorf("write catalog manifest: %w", err)
	}
	return nil
}
