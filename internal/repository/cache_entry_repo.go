package repository

import (
	"context"
	"errors"
	"time"

	"github.com/timmy/asciime/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CacheEntryRepository stores expiring string values in the cache_entries table.
type CacheEntryRepository struct {
	db *gorm.DB
}

// NewCacheEntryRepository creates a new CacheEntryRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *CacheEntryRepository: repository instance bound to db.
func NewCacheEntryRepository(db *gorm.DB) *CacheEntryRepository {
	return &CacheEntryRepository{db: db}
}

// GetLive returns the entry at key if it has not expired at now.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - key: cache key.
//   - now: reference time for expiry.
// Returns:
//   - *domain.CacheEntry: the entry, or nil when absent or expired.
//   - error: non-nil if the lookup fails.
func (r *CacheEntryRepository) GetLive(ctx context.Context, key string, now time.Time) (*domain.CacheEntry, error) {
	var entry domain.CacheEntry
	err := r.db.WithContext(ctx).
		Where("cache_key = ? AND expires_at > ?", key, now).
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// Upsert writes the entry, replacing value and expiry of an existing key.
func (r *CacheEntryRepository) Upsert(ctx context.Context, entry *domain.CacheEntry) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "cache_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "expires_at", "updated_at"}),
	}).Create(entry).Error
}

// DeleteLive removes key and reports how many unexpired rows were removed.
func (r *CacheEntryRepository) DeleteLive(ctx context.Context, key string, now time.Time) (int64, error) {
	var live int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&domain.CacheEntry{}).
			Where("cache_key = ? AND expires_at > ?", key, now).
			Count(&live).Error; err != nil {
			return err
		}
		return tx.Where("cache_key = ?", key).Delete(&domain.CacheEntry{}).Error
	})
	if err != nil {
		return 0, err
	}
	return live, nil
}

// DeleteExpired removes every entry expired at now.
// Returns:
//   - int64: number of rows removed.
//   - error: non-nil if the delete fails.
func (r *CacheEntryRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&domain.CacheEntry{})
	return result.RowsAffected, result.Error
}

// Count returns the number of stored entries, expired or not.
func (r *CacheEntryRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.CacheEntry{}).Count(&count).Error
	return count, err
}
