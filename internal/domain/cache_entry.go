package domain

import "time"

// CacheEntry is a single key of the SQL-backed string cache.
// Rows past ExpiresAt are treated as absent and swept periodically.
type CacheEntry struct {
	Key       string    `gorm:"column:cache_key;type:text;primaryKey" json:"key"`
	Value     string    `gorm:"type:text;not null" json:"value"`
	ExpiresAt time.Time `gorm:"index:idx_cache_entries_expires_at;not null" json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for CacheEntry.
// Parameters: none.
// Returns:
//   - string: table name for GORM mapping.
func (CacheEntry) TableName() string {
	return "cache_entries"
}

// Expired reports whether the entry is past its expiry at now.
func (e *CacheEntry) Expired(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}
