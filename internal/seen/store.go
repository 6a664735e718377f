// Package seen keeps the rolling per-provider record of gif urls already
// served, partitioned by calendar day and stored in a shared cache.
package seen

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/timmy/asciime/internal/cache"
	"github.com/timmy/asciime/internal/domain"
	"github.com/timmy/asciime/internal/logger"
)

const (
	// DefaultTTL is the fixed horizon after the last write.
	DefaultTTL = 24 * time.Hour

	// DefaultCeiling is the set size above which an exhausted set is reset.
	DefaultCeiling = 1000

	keyPrefix = "session"
	dayLayout = "2006-01-02"
)

// Set is a set of gif urls.
type Set map[string]struct{}

// Has reports membership of url.
func (s Set) Has(url string) bool {
	_, ok := s[url]
	return ok
}

// Store reads and writes seen-sets through a cache.Cache. Writes are
// read-merge-write without locking; concurrent writers to the same key may
// lose an update.
type Store struct {
	cache    cache.Cache
	ttl      time.Duration
	ceiling  int
	location *time.Location
	now      func() time.Time
}

// Option customizes a Store.
type Option func(*Store)

// WithTTL overrides the set expiry.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithCeiling overrides the overflow ceiling.
func WithCeiling(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.ceiling = n
		}
	}
}

// WithLocation sets the time zone that defines day boundaries.
func WithLocation(loc *time.Location) Option {
	return func(s *Store) {
		if loc != nil {
			s.location = loc
		}
	}
}

// WithClock replaces the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// NewStore creates a Store over c.
func NewStore(c cache.Cache, opts ...Option) *Store {
	s := &Store{
		cache:    c,
		ttl:      DefaultTTL,
		ceiling:  DefaultCeiling,
		location: time.Local,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ceiling returns the overflow threshold.
func (s *Store) Ceiling() int {
	return s.ceiling
}

// SessionKey builds the cache key for source on the day containing t.
// The day is taken in loc, so every process sharing a cache must agree on loc.
func SessionKey(source domain.Source, t time.Time, loc *time.Location) string {
	return fmt.Sprintf("%s_%s_%s", keyPrefix, source, t.In(loc).Format(dayLayout))
}

func (s *Store) key(source domain.Source) string {
	return SessionKey(source, s.now(), s.location)
}

// Get returns today's seen-set for source. Absent, expired, unreadable or
// undecodable sets are all reported as empty.
func (s *Store) Get(ctx context.Context, source domain.Source) Set {
	key := s.key(source)

	raw, found, err := s.cache.Get(ctx, key)
	if err != nil {
		logger.FromContext(ctx).WithError(err).WithField("key", key).Warn("Failed to read seen-set")
		return Set{}
	}
	if !found || raw == "" {
		return Set{}
	}

	var urls []string
	if err := json.Unmarshal([]byte(raw), &urls); err != nil {
		logger.FromContext(ctx).WithError(err).WithField("key", key).Warn("Discarding undecodable seen-set")
		return Set{}
	}

	set := make(Set, len(urls))
	for _, u := range urls {
		set[u] = struct{}{}
	}
	return set
}

// Update merges urls into today's seen-set and rewrites it with a fresh TTL.
// Failures are logged and leave the stored set unchanged.
func (s *Store) Update(ctx context.Context, source domain.Source, urls []string) {
	set := s.Get(ctx, source)
	for _, u := range urls {
		set[u] = struct{}{}
	}
	s.write(ctx, source, set)
}

// Reset replaces today's seen-set with an empty one, keeping the TTL policy.
func (s *Store) Reset(ctx context.Context, source domain.Source) {
	s.write(ctx, source, Set{})
}

// Clear deletes today's seen-set outright.
// Returns:
//   - int64: number of keys removed.
//   - error: non-nil if the cache rejects the delete.
func (s *Store) Clear(ctx context.Context, source domain.Source) (int64, error) {
	return s.cache.Delete(ctx, s.key(source))
}

func (s *Store) write(ctx context.Context, source domain.Source, set Set) {
	key := s.key(source)

	urls := make([]string, 0, len(set))
	for u := range set {
		urls = append(urls, u)
	}
	sort.Strings(urls)

	payload, err := json.Marshal(urls)
	if err != nil {
		logger.FromContext(ctx).WithError(err).WithField("key", key).Warn("Failed to encode seen-set")
		return
	}

	ok, err := s.cache.Set(ctx, key, string(payload), s.ttl)
	if err != nil {
		logger.FromContext(ctx).WithError(err).WithField("key", key).Warn("Failed to write seen-set")
		return
	}
	if !ok {
		logger.FromContext(ctx).WithField("key", key).Warn("Seen-set write not acknowledged")
	}
}
