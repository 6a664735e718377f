package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/timmy/asciime/internal/domain"
	"github.com/timmy/asciime/internal/logger"
	"github.com/timmy/asciime/internal/repository"
)

// SQL implements Cache over the cache_entries table. Expired rows are
// invisible to reads and removed by a background sweeper.
type SQL struct {
	repo *repository.CacheEntryRepository
	now  func() time.Time
	done chan struct{}
}

// NewSQL wraps repo as a Cache. A positive sweepInterval starts a sweeper
// goroutine that Close stops.
func NewSQL(repo *repository.CacheEntryRepository, sweepInterval time.Duration) *SQL {
	s := &SQL{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
		done: make(chan struct{}),
	}
	if sweepInterval > 0 {
		go s.sweep(sweepInterval)
	}
	return s
}

func (s *SQL) Get(ctx context.Context, key string) (string, bool, error) {
	entry, err := s.repo.GetLive(ctx, key, s.now())
	if err != nil {
		return "", false, fmt.Errorf("failed to get key %s: %w", key, err)
	}
	if entry == nil {
		return "", false, nil
	}
	return entry.Value, true, nil
}

func (s *SQL) Set(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	now := s.now()
	err := s.repo.Upsert(ctx, &domain.CacheEntry{
		Key:       key,
		Value:     value,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return false, fmt.Errorf("failed to set key %s: %w", key, err)
	}
	return true, nil
}

func (s *SQL) Delete(ctx context.Context, key string) (int64, error) {
	n, err := s.repo.DeleteLive(ctx, key, s.now())
	if err != nil {
		return 0, fmt.Errorf("failed to delete key %s: %w", key, err)
	}
	return n, nil
}

// Sweep removes expired rows once.
func (s *SQL) Sweep(ctx context.Context) (int64, error) {
	return s.repo.DeleteExpired(ctx, s.now())
}

func (s *SQL) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			n, err := s.Sweep(context.Background())
			if err != nil {
				logger.GetDefault().WithError(err).Warn("Failed to sweep expired cache entries")
				continue
			}
			if n > 0 {
				logger.With(logger.Fields{logger.FieldCount: n}).Debug(context.Background(), "Swept expired cache entries")
			}
		case <-s.done:
			return
		}
	}
}

func (s *SQL) Close() error {
	select {
	case <-s.done:
	default:
		close(s.done)
	}
	return nil
}
