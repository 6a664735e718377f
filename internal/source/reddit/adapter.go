// Package reddit collects gif posts from the hot listings of a category's
// subreddits, through the OAuth API when credentials are configured and
// through the public feeds otherwise.
package reddit

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/timmy/asciime/internal/config"
	"github.com/timmy/asciime/internal/domain"
	"github.com/timmy/asciime/internal/logger"
	"github.com/timmy/asciime/internal/random"
	"github.com/timmy/asciime/internal/source"
)

const (
	// maxListingLimit caps how many posts are requested per subreddit.
	maxListingLimit = 50

	defaultRequestTimeout   = 30 * time.Second
	defaultSubredditTimeout = 15 * time.Second
)

// lister returns the post urls of a subreddit's hot listing.
type lister interface {
	hot(ctx context.Context, subreddit string, limit int) ([]string, error)
	mode() string
}

// Adapter implements source.Provider for Reddit.
type Adapter struct {
	lister           lister
	cats             source.Categories
	requestTimeout   time.Duration
	subredditTimeout time.Duration
}

// NewAdapter creates a Reddit adapter, choosing the OAuth API when cfg has
// client credentials and the public feeds otherwise.
func NewAdapter(cfg *config.RedditProviderConfig, retry config.RetryConfig, cats source.Categories) *Adapter {
	var l lister
	if cfg.HasCredentials() {
		l = newAPILister(cfg, retry)
	} else {
		l = newFeedLister(cfg, retry)
	}
	return newAdapter(l, cfg, cats)
}

func newAdapter(l lister, cfg *config.RedditProviderConfig, cats source.Categories) *Adapter {
	a := &Adapter{
		lister:           l,
		cats:             cats,
		requestTimeout:   cfg.RequestTimeout,
		subredditTimeout: cfg.SubredditTimeout,
	}
	if a.requestTimeout <= 0 {
		a.requestTimeout = defaultRequestTimeout
	}
	if a.subredditTimeout <= 0 {
		a.subredditTimeout = defaultSubredditTimeout
	}
	return a
}

// GetSourceID returns domain.SourceReddit.
func (a *Adapter) GetSourceID() domain.Source {
	return domain.SourceReddit
}

// Mode reports which upstream the adapter reads: "api" or "feed".
func (a *Adapter) Mode() string {
	return a.lister.mode()
}

// Fetch reads every subreddit of category concurrently, keeps gif posts,
// shuffles them and returns the window [offset, offset+limit). An offset past
// the end wraps to zero. Subreddit failures are logged and skipped.
func (a *Adapter) Fetch(ctx context.Context, limit int, category string, offset int) ([]domain.Item, error) {
	subreddits := source.SearchInputs(a.cats, category).Subreddits

	ctx, cancel := context.WithTimeout(ctx, a.requestTimeout)
	defer cancel()

	perSubreddit := limit * 2
	if perSubreddit > maxListingLimit {
		perSubreddit = maxListingLimit
	}

	results := make([][]domain.Item, len(subreddits))
	var wg sync.WaitGroup
	for i, name := range subreddits {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			results[i] = a.fetchSubreddit(ctx, name, perSubreddit)
		}(i, name)
	}
	wg.Wait()

	var all []domain.Item
	for _, r := range results {
		all = append(all, r...)
	}
	if len(all) == 0 {
		return []domain.Item{}, nil
	}

	random.Shuffle(all)
	if offset >= len(all) || offset < 0 {
		offset = 0
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return source.Keep(all[offset:end], 0), nil
}

func (a *Adapter) fetchSubreddit(ctx context.Context, name string, limit int) []domain.Item {
	ctx, cancel := context.WithTimeout(ctx, a.subredditTimeout)
	defer cancel()

	log := logger.FromContext(ctx).WithField("subreddit", name)

	urls, err := a.lister.hot(ctx, name, limit)
	if err != nil {
		if ctx.Err() != nil {
			log.Warnf("Timeout fetching from r/%s", name)
		} else {
			log.WithError(err).Errorf("Error fetching from r/%s", name)
		}
		return nil
	}

	items := make([]domain.Item, 0, len(urls))
	for _, raw := range urls {
		u, ok := GifURL(raw)
		if !ok {
			continue
		}
		items = append(items, domain.Item{
			URL:     u,
			Preview: domain.StringPtr(u),
			Source:  domain.SourceReddit,
		})
	}
	return items
}

// GifURL reports whether raw points at a gif, matching the extension without
// regard to case, and rewrites a .gifv extension to .gif.
func GifURL(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	lower := strings.ToLower(raw)
	switch {
	case strings.HasSuffix(lower, ".gif"):
		return raw, true
	case strings.HasSuffix(lower, ".gifv"):
		return raw[:len(raw)-len(".gifv")] + ".gif", true
	default:
		return "", false
	}
}
