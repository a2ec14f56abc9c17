package intlbuilder

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"
)

// MemoryRegistry is an in-process Registry that remembers creation order.
// It is safe for concurrent use.
type MemoryRegistry struct {
	mu    sync.Mutex
	order []string
	pages map[string]*Page
}

// NewMemoryRegistry returns a registry pre-populated with pages.
func NewMemoryRegistry(pages ...*Page) *MemoryRegistry {
	r := &MemoryRegistry{pages: make(map[string]*Page)}
	for _, p := range pages {
		r.put(p)
	}
	return r
}

func (r *MemoryRegistry) put(p *Page) {
	if _, ok := r.pages[p.Path]; !ok {
		r.order = append(r.order, p.Path)
	}
	r.pages[p.Path] = p
}

// CreatePage stores p, replacing any page already at the same path.
func (r *MemoryRegistry) CreatePage(p *Page) error {
	if p == nil || p.Path == "" {
		return fmt.Errorf("CreatePage: page has no path")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.put(p)
	return nil
}

// DeletePage removes the page at p.Path. Deleting an unknown page is not an
// error.
func (r *MemoryRegistry) DeletePage(p *Page) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.pages[p.Path]; !ok {
		return nil
	}
	delete(r.pages, p.Path)
	for i, path := range r.order {
		if path == p.Path {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// Page returns the page stored at path.
func (r *MemoryRegistry) Page(path string) (*Page, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.pages[path]
	return p, ok
}

// Pages returns the stored pages in the order they were first created.
func (r *MemoryRegistry) Pages() []*Page {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Page, 0, len(r.order))
	for _, path := range r.order {
		out = append(out, r.pages[path])
	}
	return out
}

// Manifest is the on-disk record of a build's routes, read back by the
// preview server.
type Manifest struct {
	BuildID         string   `json:"buildId"`
	DefaultLanguage string   `json:"defaultLanguage"`
	Languages       []string `json:"languages"`
	Pages           []*Page  `json:"pages"`
}

// WriteManifest writes the registry contents to path as indented JSON under
// a fresh build id.
func (r *MemoryRegistry) WriteManifest(path string, opts Options) error {
	m := Manifest{
		BuildID:         uuid.NewString(),
		DefaultLanguage: opts.DefaultLanguage,
		Languages:       opts.Languages,
		Pages:           r.Pages(),
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("WriteManifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("WriteManifest: %w", err)
	}
	return nil
}

// ReadManifest loads a manifest written by WriteManifest. Page contexts come
// back as plain maps.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ReadManifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("ReadManifest: %s: %w", path, err)
	}
	return &m, nil
}
