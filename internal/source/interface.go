package source

import (
	"context"
	"errors"

	"github.com/timmy/asciime/internal/domain"
)

// ErrMissingCredentials is returned when a provider is called without the
// credentials its upstream requires.
var ErrMissingCredentials = errors.New("missing provider credentials")

// Provider defines the interface for upstream gif providers.
type Provider interface {
	// GetSourceID returns the provider this adapter fetches from.
	// Parameters: none.
	// Returns:
	//   - domain.Source: stable source identifier.
	GetSourceID() domain.Source

	// Fetch returns up to limit gifs for category, starting at offset.
	// Parameters:
	//   - ctx: context for cancellation and deadlines.
	//   - limit: maximum number of items to return.
	//   - category: catalog id or "all".
	//   - offset: pagination offset into the upstream result set.
	// Returns:
	//   - []domain.Item: validated items; empty when the upstream has nothing.
	//   - error: non-nil once retries are exhausted.
	Fetch(ctx context.Context, limit int, category string, offset int) ([]domain.Item, error)
}

// Categories resolves catalog ids into search inputs.
type Categories interface {
	Lookup(id string) (domain.Category, bool)
}

// SearchInputs returns the category used to build an upstream query. "all"
// maps to the default category.
func SearchInputs(cats Categories, category string) domain.Category {
	if category == domain.CategoryAll || cats == nil {
		return domain.DefaultCategory(category)
	}
	entry, _ := cats.Lookup(category)
	return entry
}

// Keep drops items that fail validation and caps the result at limit.
func Keep(items []domain.Item, limit int) []domain.Item {
	out := make([]domain.Item, 0, len(items))
	for _, item := range items {
		if item.Validate() != nil {
			continue
		}
		out = append(out, item)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}
