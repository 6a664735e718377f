package cache

import (
	"context"
	"fmt"

	"github.com/timmy/asciime/internal/config"
	"github.com/timmy/asciime/internal/logger"
	"github.com/timmy/asciime/internal/repository"
)

// New creates the Cache selected by cfg.Cache.Backend.
// Parameters:
//   - ctx: context used for startup connectivity checks.
//   - cfg: full service configuration.
// Returns:
//   - Cache: initialized backend.
//   - error: non-nil if the backend cannot be created.
func New(ctx context.Context, cfg *config.Config) (Cache, error) {
	log := logger.FromContext(ctx).WithField(logger.FieldBackend, cfg.Cache.Backend)

	switch cfg.Cache.Backend {
	case "memory":
		log.Warn("Using in-process cache; seen-sets are not shared between instances")
		return NewMemory(), nil

	case "redis":
		rc := cfg.Cache.Redis
		r := NewRedis(RedisOptions{
			Addr:         rc.Addr,
			Password:     rc.Password,
			DB:           rc.DB,
			DialTimeout:  rc.DialTimeout,
			ReadTimeout:  rc.ReadTimeout,
			WriteTimeout: rc.WriteTimeout,
			PoolSize:     rc.PoolSize,
		})
		if err := r.Ping(ctx); err != nil {
			// Reads degrade to empty seen-sets, so keep serving.
			log.WithError(err).Warn("Redis not reachable at startup")
		} else {
			log.WithField("addr", rc.Addr).Info("Connected to Redis")
		}
		return r, nil

	case "upstash":
		return NewUpstash(UpstashOptions{
			URL:     cfg.Cache.Upstash.URL,
			Token:   cfg.Cache.Upstash.Token,
			Timeout: cfg.Cache.Upstash.Timeout,
		}), nil

	case "sql":
		db, err := repository.InitDB(&cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize sql cache: %w", err)
		}
		return NewSQL(repository.NewCacheEntryRepository(db), cfg.Database.SweepInterval), nil

	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}
}
