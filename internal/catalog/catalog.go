// Package catalog holds the ordered set of themed categories that bias
// provider searches.
package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/timmy/asciime/internal/domain"
)

//go:embed categories.yaml
var embeddedCatalog []byte

var (
	ErrEmptyCatalog = errors.New("catalog has no categories")
	ErrDuplicateID  = errors.New("duplicate category id")
)

type document struct {
	Categories []domain.Category `yaml:"categories"`
}

// Catalog is an immutable, ordered category list. Safe for concurrent use.
type Catalog struct {
	order []string
	byID  map[string]domain.Category
}

// New builds a catalog from entries, keeping their order.
// Parameters:
//   - entries: categories with unique, non-empty ids.
// Returns:
//   - *Catalog: the catalog.
//   - error: ErrEmptyCatalog, ErrDuplicateID, or an id validation error.
func New(entries []domain.Category) (*Catalog, error) {
	if len(entries) == 0 {
		return nil, ErrEmptyCatalog
	}

	c := &Catalog{
		order: make([]string, 0, len(entries)),
		byID:  make(map[string]domain.Category, len(entries)),
	}
	for i, entry := range entries {
		id := strings.TrimSpace(entry.ID)
		if id == "" {
			return nil, fmt.Errorf("category %d: empty id", i)
		}
		if id == domain.CategoryAll {
			return nil, fmt.Errorf("category %d: %q is reserved", i, domain.CategoryAll)
		}
		if _, dup := c.byID[id]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateID, id)
		}
		entry.ID = id
		entry.Terms = compact(entry.Terms)
		entry.Subreddits = compact(entry.Subreddits)
		c.order = append(c.order, id)
		c.byID[id] = entry
	}
	return c, nil
}

// Parse decodes a YAML catalog document.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	return New(doc.Categories)
}

// Default returns the catalog compiled into the binary.
func Default() *Catalog {
	c, err := Parse(embeddedCatalog)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog is invalid: %v", err))
	}
	return c
}

// EmbeddedYAML returns the raw compiled-in catalog document.
func EmbeddedYAML() []byte {
	out := make([]byte, len(embeddedCatalog))
	copy(out, embeddedCatalog)
	return out
}

// Lookup returns the category for id. Unknown ids yield the default category
// and false. Known entries missing terms or subreddits get the default for
// that field only.
func (c *Catalog) Lookup(id string) (domain.Category, bool) {
	entry, ok := c.byID[id]
	if !ok {
		return domain.DefaultCategory(id), false
	}

	out := domain.Category{ID: entry.ID}
	if len(entry.Terms) == 0 {
		out.Terms = []string{domain.DefaultTerm}
	} else {
		out.Terms = append([]string(nil), entry.Terms...)
	}
	if len(entry.Subreddits) == 0 {
		out.Subreddits = []string{domain.DefaultSubreddit}
	} else {
		out.Subreddits = append([]string(nil), entry.Subreddits...)
	}
	return out, true
}

// IDs returns category ids in catalog order.
func (c *Catalog) IDs() []string {
	return append([]string(nil), c.order...)
}

// All returns every category in catalog order, with per-field defaults applied.
func (c *Catalog) All() []domain.Category {
	out := make([]domain.Category, 0, len(c.order))
	for _, id := range c.order {
		entry, _ := c.Lookup(id)
		out = append(out, entry)
	}
	return out
}

// Resolve expands a requested category list into concrete ids. An empty list
// or one containing "all" selects every catalog id; otherwise the list is
// returned as given, duplicates and unknown ids included.
func (c *Catalog) Resolve(requested []string) []string {
	if len(requested) == 0 {
		return c.IDs()
	}
	for _, id := range requested {
		if id == domain.CategoryAll {
			return c.IDs()
		}
	}
	return append([]string(nil), requested...)
}

func compact(values []string) []string {
	out := values[:0:0]
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
