// Package app assembles the service graph shared by the binaries.
package app

import (
	"context"
	"fmt"

	"github.com/timmy/asciime/internal/cache"
	"github.com/timmy/asciime/internal/catalog"
	"github.com/timmy/asciime/internal/config"
	"github.com/timmy/asciime/internal/domain"
	"github.com/timmy/asciime/internal/logger"
	"github.com/timmy/asciime/internal/seen"
	"github.com/timmy/asciime/internal/service"
	"github.com/timmy/asciime/internal/source"
	"github.com/timmy/asciime/internal/source/giphy"
	"github.com/timmy/asciime/internal/source/reddit"
	"github.com/timmy/asciime/internal/source/tenor"
	"github.com/timmy/asciime/internal/storage"
)

// App holds the long-lived dependencies built from one Config.
type App struct {
	Config  *config.Config
	Cache   cache.Cache
	Catalog *catalog.Catalog
	Storage storage.ObjectStorage // nil unless a bucket is configured
	Gifs    *service.GifService
}

// Build wires cache, catalog, providers and the gif service from cfg.
// Parameters:
//   - ctx: context for startup I/O (cache ping, catalog download).
//   - cfg: loaded configuration.
//   - log: base logger.
// Returns:
//   - *App: assembled dependencies; call Close when done.
//   - error: non-nil if any mandatory dependency cannot be built.
func Build(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	ctx = log.WithContext(ctx)

	var objectStorage storage.ObjectStorage
	if cfg.Storage.Endpoint != "" {
		s, err := storage.NewStorage(&cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize storage: %w", err)
		}
		objectStorage = s
	}

	cat, err := catalog.Load(ctx, &cfg.Catalog, objectStorage)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	loc, err := cfg.Seen.Location()
	if err != nil {
		return nil, fmt.Errorf("invalid seen.timezone: %w", err)
	}

	c, err := cache.New(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store := seen.NewStore(c,
		seen.WithTTL(cfg.Seen.TTL),
		seen.WithCeiling(cfg.Seen.Ceiling),
		seen.WithLocation(loc),
	)

	providers := NewProviders(cfg, cat)
	if len(providers) == 0 {
		log.Warn("No gif providers enabled")
	}

	gifs := service.NewGifService(providers, store, cat, log, &service.GifServiceConfig{
		TaskTimeout: cfg.Aggregator.TaskTimeout,
		Sources:     SourceSettings(cfg),
	})

	log.WithFields(logger.Fields{
		"sources":    gifs.Sources(),
		"categories": len(cat.IDs()),
		"cache":      cfg.Cache.Backend,
	}).Info("Gif service ready")

	return &App{
		Config:  cfg,
		Cache:   c,
		Catalog: cat,
		Storage: objectStorage,
		Gifs:    gifs,
	}, nil
}

// Close releases the cache backend.
func (a *App) Close() error {
	return a.Cache.Close()
}

// NewProviders builds an adapter for every enabled provider.
func NewProviders(cfg *config.Config, cats source.Categories) []source.Provider {
	var providers []source.Provider
	p := cfg.Providers
	if p.Tenor.Enabled {
		providers = append(providers, tenor.NewAdapter(&p.Tenor, cfg.Retry, cats))
	}
	if p.Reddit.Enabled {
		providers = append(providers, reddit.NewAdapter(&p.Reddit, cfg.Retry, cats))
	}
	if p.Giphy.Enabled {
		providers = append(providers, giphy.NewAdapter(&p.Giphy, cfg.Retry, cats))
	}
	return providers
}

// SourceSettings maps the provider tunables onto the aggregator's settings.
func SourceSettings(cfg *config.Config) map[domain.Source]service.SourceSettings {
	p := cfg.Providers
	return map[domain.Source]service.SourceSettings{
		domain.SourceTenor:  {MaxOffset: p.Tenor.MaxOffset, FetchCount: p.Tenor.FetchCount},
		domain.SourceGiphy:  {MaxOffset: p.Giphy.MaxOffset, FetchCount: p.Giphy.FetchCount},
		domain.SourceReddit: {MaxOffset: p.Reddit.MaxOffset, FetchCount: p.Reddit.FetchCount},
	}
}
