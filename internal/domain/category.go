package domain

// Default search inputs used when a category is unknown or incomplete.
const (
	DefaultTerm      = "anime"
	DefaultSubreddit = "animegifs"
)

// CategoryAll is the sentinel that selects every catalog category.
const CategoryAll = "all"

// Category is a themed catalog entry used to bias provider searches.
type Category struct {
	ID         string   `json:"id" yaml:"id"`
	Terms      []string `json:"terms" yaml:"terms"`
	Subreddits []string `json:"subreddits" yaml:"subreddits"`
}

// DefaultCategory returns the fallback category for id.
// Parameters:
//   - id: requested category id, kept on the returned value.
// Returns:
//   - Category: category with the default term and subreddit.
func DefaultCategory(id string) Category {
	return Category{
		ID:         id,
		Terms:      []string{DefaultTerm},
		Subreddits: []string{DefaultSubreddit},
	}
}
