package service

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/timmy/asciime/internal/catalog"
	"github.com/timmy/asciime/internal/domain"
	"github.com/timmy/asciime/internal/logger"
	"github.com/timmy/asciime/internal/random"
	"github.com/timmy/asciime/internal/seen"
	"github.com/timmy/asciime/internal/source"
)

// defaultMaxOffset applies to sources without explicit settings.
const defaultMaxOffset = 1000

// SourceSettings are the per-provider tunables of a fetch task.
type SourceSettings struct {
	MaxOffset  int // offsets are drawn from [0, MaxOffset)
	FetchCount int // items requested per task
}

// DefaultSourceSettings returns the stock tunables. Reddit filters its
// listings down to gifs client-side, so it asks for more per task over a
// shallower window.
func DefaultSourceSettings() map[domain.Source]SourceSettings {
	return map[domain.Source]SourceSettings{
		domain.SourceReddit: {MaxOffset: 50, FetchCount: 20},
		domain.SourceTenor:  {MaxOffset: 1000, FetchCount: 5},
		domain.SourceGiphy:  {MaxOffset: 1000, FetchCount: 5},
	}
}

// GifServiceConfig holds configuration for the gif service.
type GifServiceConfig struct {
	TaskTimeout time.Duration
	Sources     map[domain.Source]SourceSettings
}

// GifService fans requests out across providers and categories, filters
// results against each provider's seen-set and merges them into one batch.
type GifService struct {
	providers map[domain.Source]source.Provider
	order     []domain.Source
	seen      *seen.Store
	catalog   *catalog.Catalog
	logger    *logger.Logger
	cfg       GifServiceConfig
}

// NewGifService creates a new gif service.
// Parameters:
//   - providers: enabled provider adapters, at most one per source.
//   - seenStore: seen-set store shared by all tasks.
//   - cat: category catalog used to expand "all".
//   - log: fallback logger when the request context carries none.
//   - cfg: task timeout and per-source tunables.
//
// Returns:
//   - *GifService: initialized service.
func NewGifService(
	providers []source.Provider,
	seenStore *seen.Store,
	cat *catalog.Catalog,
	log *logger.Logger,
	cfg *GifServiceConfig,
) *GifService {
	s := &GifService{
		providers: make(map[domain.Source]source.Provider, len(providers)),
		seen:      seenStore,
		catalog:   cat,
		logger:    log,
		cfg:       *cfg,
	}
	if s.cfg.Sources == nil {
		s.cfg.Sources = DefaultSourceSettings()
	}
	for _, p := range providers {
		id := p.GetSourceID()
		if _, dup := s.providers[id]; dup {
			continue
		}
		s.providers[id] = p
		s.order = append(s.order, id)
	}
	return s
}

// log returns a logger from context if available, otherwise returns the default logger
func (s *GifService) log(ctx context.Context) *logger.Logger {
	if l := logger.FromContext(ctx); l != nil {
		return l
	}
	return s.logger
}

// Sources lists the enabled providers in registration order.
func (s *GifService) Sources() []domain.Source {
	return append([]domain.Source(nil), s.order...)
}

// Catalog returns the category catalog.
func (s *GifService) Catalog() *catalog.Catalog {
	return s.catalog
}

func (s *GifService) settings(src domain.Source) SourceSettings {
	st, ok := s.cfg.Sources[src]
	if !ok {
		st = SourceSettings{MaxOffset: defaultMaxOffset, FetchCount: 5}
	}
	if st.MaxOffset < 1 {
		st.MaxOffset = defaultMaxOffset
	}
	if st.FetchCount < 1 {
		st.FetchCount = 1
	}
	return st
}

type task struct {
	source   domain.Source
	category string
}

// GetGifs returns up to count gifs drawn from every enabled provider for each
// requested category. Provider failures only shrink the result; the batch is
// empty only when no task produced anything.
func (s *GifService) GetGifs(ctx context.Context, count int, categories []string) []domain.Gif {
	if count <= 0 {
		return []domain.Gif{}
	}
	ctx = logger.SetComponent(ctx, "aggregator")
	start := time.Now()

	resolved := s.catalog.Resolve(categories)
	sources := random.Shuffled(s.order)

	tasks := make([]task, 0, len(sources)*len(resolved))
	for _, src := range sources {
		for _, category := range resolved {
			tasks = append(tasks, task{source: src, category: category})
		}
	}

	results := make([][]domain.Item, len(tasks))
	var wg sync.WaitGroup
	for i, t := range tasks {
		wg.Add(1)
		go func(i int, t task) {
			defer wg.Done()
			results[i] = s.fetchFromSource(ctx, s.providers[t.source], t.category)
		}(i, t)
	}
	wg.Wait()

	var merged []domain.Item
	for _, r := range results {
		merged = append(merged, r...)
	}
	if len(merged) == 0 {
		logger.With(logger.Fields{"tasks": len(tasks)}).WithDuration(start).WithCount(0).
			Warn(ctx, "No gifs from any provider")
		return []domain.Gif{}
	}

	random.Shuffle(merged)
	if len(merged) > count {
		merged = merged[:count]
	}

	gifs := make([]domain.Gif, len(merged))
	for i, item := range merged {
		gifs[i] = domain.NewGif(item)
	}

	logger.With(logger.Fields{"tasks": len(tasks)}).WithDuration(start).WithCount(len(gifs)).
		Info(ctx, "Assembled gif batch")
	return gifs
}

// GetGifsFromSource runs a single fetch task against one provider. Unknown or
// disabled sources yield an empty result.
func (s *GifService) GetGifsFromSource(ctx context.Context, src domain.Source, category string) []domain.Item {
	provider, ok := s.providers[src]
	if !ok {
		s.log(ctx).WithField(logger.FieldSource, string(src)).Warn("Unknown or disabled gif source")
		return []domain.Item{}
	}
	if category == "" {
		category = domain.CategoryAll
	}
	return s.fetchFromSource(logger.SetComponent(ctx, "aggregator"), provider, category)
}

// ClearSeen drops today's seen-set for src.
func (s *GifService) ClearSeen(ctx context.Context, src domain.Source) (int64, error) {
	if _, ok := s.providers[src]; !ok {
		return 0, fmt.Errorf("unknown or disabled source: %s", src)
	}
	return s.seen.Clear(ctx, src)
}

// fetchFromSource runs one (source, category) task. It never fails: adapter
// errors, timeouts and panics are logged and produce an empty result.
func (s *GifService) fetchFromSource(ctx context.Context, provider source.Provider, category string) (items []domain.Item) {
	src := provider.GetSourceID()
	ctx = logger.SetTask(ctx, string(src), category)
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			s.log(ctx).WithField("panic", fmt.Sprint(r)).WithField("stack", string(debug.Stack())).
				Error("Recovered panic in fetch task")
			items = []domain.Item{}
		}
	}()

	if s.cfg.TaskTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.TaskTimeout)
		defer cancel()
	}

	st := s.settings(src)
	seenSet := s.seen.Get(ctx, src)
	offset := random.Intn(st.MaxOffset)

	batch, err := provider.Fetch(ctx, st.FetchCount, category, offset)
	if err != nil {
		s.log(ctx).WithError(err).WithField(logger.FieldOffset, offset).
			Errorf("Error fetching from %s: category=%s", src, category)
		return []domain.Item{}
	}
	if len(batch) == 0 {
		// An empty batch is not exhaustion; leave the seen-set alone.
		return []domain.Item{}
	}

	fresh := make([]domain.Item, 0, len(batch))
	for _, item := range batch {
		if !seenSet.Has(item.URL) {
			fresh = append(fresh, item.WithCategory(category))
		}
	}

	if len(fresh) > 0 {
		urls := make([]string, len(fresh))
		for i, item := range fresh {
			urls[i] = item.URL
		}
		s.seen.Update(ctx, src, urls)
		fresh = capItems(fresh, st.FetchCount)

		logger.With(logger.Fields{logger.FieldOffset: offset}).WithDuration(start).WithCount(len(fresh)).
			Debug(ctx, "Fetch task returned new gifs")
		return fresh
	}

	if len(seenSet) > s.seen.Ceiling() {
		s.log(ctx).WithField(logger.FieldCount, len(seenSet)).Info("Seen-set over ceiling, resetting")
		s.seen.Reset(ctx, src)
	}

	raw := capItems(batch, st.FetchCount)
	out := make([]domain.Item, len(raw))
	for i, item := range raw {
		item = item.WithCategory(category)
		item.PreviouslySeen = true
		out[i] = item
	}

	logger.With(logger.Fields{logger.FieldOffset: offset}).WithDuration(start).WithCount(len(out)).
		WithStatus("exhausted").Debug(ctx, "Fetch task found nothing new")
	return out
}

func capItems(items []domain.Item, limit int) []domain.Item {
	if len(items) > limit {
		return items[:limit]
	}
	return items
}
