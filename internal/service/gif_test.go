package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timmy/asciime/internal/cache"
	"github.com/timmy/asciime/internal/catalog"
	"github.com/timmy/asciime/internal/domain"
	"github.com/timmy/asciime/internal/logger"
	"github.com/timmy/asciime/internal/seen"
	"github.com/timmy/asciime/internal/source"
)

type fetchCall struct {
	limit    int
	category string
	offset   int
}

// stubProvider serves fixed items per category and records its calls.
type stubProvider struct {
	id    domain.Source
	items map[string][]domain.Item
	err   error
	panic bool
	block bool

	mu    sync.Mutex
	calls []fetchCall
}

func (p *stubProvider) GetSourceID() domain.Source { return p.id }

func (p *stubProvider) Fetch(ctx context.Context, limit int, category string, offset int) ([]domain.Item, error) {
	p.mu.Lock()
	p.calls = append(p.calls, fetchCall{limit, category, offset})
	p.mu.Unlock()

	switch {
	case p.panic:
		panic("provider blew up")
	case p.block:
		<-ctx.Done()
		return nil, ctx.Err()
	case p.err != nil:
		return nil, p.err
	}
	return p.items[category], nil
}

func makeItems(src domain.Source, prefix string, n int) []domain.Item {
	out := make([]domain.Item, n)
	for i := range out {
		out[i] = domain.Item{URL: fmt.Sprintf("https://%s.example/%s-%d.gif", src, prefix, i), Source: src}
	}
	return out
}

func newTestService(t *testing.T, providers ...*stubProvider) (*GifService, *seen.Store) {
	t.Helper()
	store := seen.NewStore(cache.NewMemory())
	ps := make([]source.Provider, len(providers))
	for i, p := range providers {
		ps[i] = p
	}
	svc := NewGifService(ps, store, catalog.Default(), logger.GetDefault(), &GifServiceConfig{
		TaskTimeout: 200 * time.Millisecond,
	})
	return svc, store
}

func TestGetGifs_AllCategoriesScenario(t *testing.T) {
	tenor := &stubProvider{id: domain.SourceTenor, items: map[string][]domain.Item{"cute": makeItems(domain.SourceTenor, "cute", 2)}}
	giphy := &stubProvider{id: domain.SourceGiphy, items: map[string][]domain.Item{"cute": makeItems(domain.SourceGiphy, "cute", 2)}}
	reddit := &stubProvider{id: domain.SourceReddit, items: map[string][]domain.Item{"cute": makeItems(domain.SourceReddit, "cute", 2)}}
	svc, _ := newTestService(t, tenor, giphy, reddit)

	gifs := svc.GetGifs(context.Background(), 5, []string{"all"})
	require.Len(t, gifs, 5)
	for _, g := range gifs {
		assert.NotEmpty(t, g.ID)
		assert.Equal(t, domain.GifID(g.URL), g.ID)
		assert.Equal(t, "cute", g.Category)
		assert.False(t, g.PreviouslySeen)
	}

	// one task per catalog category for every provider
	for _, p := range []*stubProvider{tenor, giphy, reddit} {
		assert.Len(t, p.calls, len(catalog.Default().IDs()))
	}
}

func TestGetGifs_TunablesAndOffsets(t *testing.T) {
	tenor := &stubProvider{id: domain.SourceTenor}
	reddit := &stubProvider{id: domain.SourceReddit}
	svc, _ := newTestService(t, tenor, reddit)

	for i := 0; i < 20; i++ {
		svc.GetGifs(context.Background(), 5, []string{"cute"})
	}

	for _, c := range tenor.calls {
		assert.Equal(t, 5, c.limit)
		assert.GreaterOrEqual(t, c.offset, 0)
		assert.Less(t, c.offset, 1000)
	}
	for _, c := range reddit.calls {
		assert.Equal(t, 20, c.limit)
		assert.Less(t, c.offset, 50)
	}
}

func TestGetGifs_LiteralCategoriesKeepDuplicates(t *testing.T) {
	tenor := &stubProvider{id: domain.SourceTenor}
	svc, _ := newTestService(t, tenor)

	svc.GetGifs(context.Background(), 5, []string{"cute", "cute", "action"})
	assert.Len(t, tenor.calls, 3)
}

func TestGetGifs_EachItemKeepsItsTaskCategory(t *testing.T) {
	tenor := &stubProvider{id: domain.SourceTenor, items: map[string][]domain.Item{
		"cute":   makeItems(domain.SourceTenor, "cute", 2),
		"action": makeItems(domain.SourceTenor, "action", 2),
	}}
	svc, _ := newTestService(t, tenor)

	gifs := svc.GetGifs(context.Background(), 10, []string{"cute", "action"})
	require.Len(t, gifs, 4)
	for _, g := range gifs {
		assert.Contains(t, g.URL, g.Category)
	}
}

func TestGetGifs_PartialFailureIsolation(t *testing.T) {
	good := &stubProvider{id: domain.SourceTenor, items: map[string][]domain.Item{"cute": makeItems(domain.SourceTenor, "cute", 3)}}
	failing := &stubProvider{id: domain.SourceGiphy, err: errors.New("giphy down")}
	panicking := &stubProvider{id: domain.SourceReddit, panic: true}
	svc, _ := newTestService(t, good, failing, panicking)

	gifs := svc.GetGifs(context.Background(), 5, []string{"cute"})
	require.Len(t, gifs, 3)
	for _, g := range gifs {
		assert.Equal(t, domain.SourceTenor, g.Source)
	}
}

func TestGetGifs_TimeoutIsolation(t *testing.T) {
	good := &stubProvider{id: domain.SourceTenor, items: map[string][]domain.Item{"cute": makeItems(domain.SourceTenor, "cute", 2)}}
	slow := &stubProvider{id: domain.SourceGiphy, block: true}
	svc, _ := newTestService(t, good, slow)

	start := time.Now()
	gifs := svc.GetGifs(context.Background(), 5, []string{"cute"})
	assert.Len(t, gifs, 2)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestGetGifs_TotalExhaustionIsEmpty(t *testing.T) {
	svc, _ := newTestService(t,
		&stubProvider{id: domain.SourceTenor, err: errors.New("down")},
		&stubProvider{id: domain.SourceGiphy},
	)

	gifs := svc.GetGifs(context.Background(), 5, []string{"all"})
	assert.NotNil(t, gifs)
	assert.Empty(t, gifs)

	assert.Empty(t, svc.GetGifs(context.Background(), 0, []string{"all"}))
}

func TestGetGifs_NeverExceedsCount(t *testing.T) {
	tenor := &stubProvider{id: domain.SourceTenor, items: map[string][]domain.Item{}}
	for _, id := range catalog.Default().IDs() {
		tenor.items[id] = makeItems(domain.SourceTenor, id, 5)
	}
	svc, _ := newTestService(t, tenor)

	for _, count := range []int{1, 3, 7, 50} {
		gifs := svc.GetGifs(context.Background(), count, []string{"all"})
		assert.LessOrEqual(t, len(gifs), count)
		assert.NotEmpty(t, gifs)
	}
}

func TestFetchFromSource_NewItemsUpdateSeenSet(t *testing.T) {
	tenor := &stubProvider{id: domain.SourceTenor, items: map[string][]domain.Item{"cute": makeItems(domain.SourceTenor, "cute", 8)}}
	svc, store := newTestService(t, tenor)
	ctx := context.Background()

	items := svc.GetGifsFromSource(ctx, domain.SourceTenor, "cute")
	require.Len(t, items, 5, "capped at fetch count")

	set := store.Get(ctx, domain.SourceTenor)
	assert.Len(t, set, 8, "every new url is recorded, not only the returned ones")
	for _, item := range items {
		assert.True(t, set.Has(item.URL))
		assert.Equal(t, "cute", item.Category)
	}
}

func TestFetchFromSource_FiltersSeen(t *testing.T) {
	batch := makeItems(domain.SourceTenor, "cute", 4)
	tenor := &stubProvider{id: domain.SourceTenor, items: map[string][]domain.Item{"cute": batch}}
	svc, store := newTestService(t, tenor)
	ctx := context.Background()

	store.Update(ctx, domain.SourceTenor, []string{batch[0].URL, batch[1].URL})

	items := svc.GetGifsFromSource(ctx, domain.SourceTenor, "cute")
	require.Len(t, items, 2)
	assert.Equal(t, batch[2].URL, items[0].URL)
	assert.Equal(t, batch[3].URL, items[1].URL)
	assert.Len(t, store.Get(ctx, domain.SourceTenor), 4)
}

func TestFetchFromSource_ExhaustedNoveltyReturnsRawBatch(t *testing.T) {
	batch := makeItems(domain.SourceGiphy, "cute", 7)
	giphy := &stubProvider{id: domain.SourceGiphy, items: map[string][]domain.Item{"cute": batch}}
	svc, store := newTestService(t, giphy)
	ctx := context.Background()

	urls := make([]string, len(batch))
	for i, item := range batch {
		urls[i] = item.URL
	}
	store.Update(ctx, domain.SourceGiphy, urls)

	items := svc.GetGifsFromSource(ctx, domain.SourceGiphy, "cute")
	require.Len(t, items, 5, "raw batch capped at fetch count")
	for _, item := range items {
		assert.True(t, item.PreviouslySeen)
		assert.Equal(t, "cute", item.Category)
	}
	assert.Len(t, store.Get(ctx, domain.SourceGiphy), 7, "below the ceiling the set is kept")
}

func TestFetchFromSource_OverflowReset(t *testing.T) {
	batch := makeItems(domain.SourceReddit, "cute", 3)
	reddit := &stubProvider{id: domain.SourceReddit, items: map[string][]domain.Item{"cute": batch}}
	svc, store := newTestService(t, reddit)
	ctx := context.Background()

	urls := make([]string, 0, seen.DefaultCeiling+1)
	for _, item := range batch {
		urls = append(urls, item.URL)
	}
	for len(urls) <= seen.DefaultCeiling {
		urls = append(urls, fmt.Sprintf("https://old.example/%d.gif", len(urls)))
	}
	store.Update(ctx, domain.SourceReddit, urls)
	require.Greater(t, len(store.Get(ctx, domain.SourceReddit)), seen.DefaultCeiling)

	items := svc.GetGifsFromSource(ctx, domain.SourceReddit, "cute")
	assert.Len(t, items, 3)
	assert.Empty(t, store.Get(ctx, domain.SourceReddit))
}

func TestFetchFromSource_EmptyBatchKeepsOverCeilingSet(t *testing.T) {
	giphy := &stubProvider{id: domain.SourceGiphy}
	svc, store := newTestService(t, giphy)
	ctx := context.Background()

	urls := make([]string, 0, seen.DefaultCeiling+1)
	for len(urls) <= seen.DefaultCeiling {
		urls = append(urls, fmt.Sprintf("https://old.example/%d.gif", len(urls)))
	}
	store.Update(ctx, domain.SourceGiphy, urls)

	items := svc.GetGifsFromSource(ctx, domain.SourceGiphy, "cute")
	assert.NotNil(t, items)
	assert.Empty(t, items)
	require.Len(t, giphy.calls, 1)
	assert.Len(t, store.Get(ctx, domain.SourceGiphy), seen.DefaultCeiling+1)
}

func TestGetGifsFromSource_Unknown(t *testing.T) {
	svc, _ := newTestService(t, &stubProvider{id: domain.SourceTenor})

	items := svc.GetGifsFromSource(context.Background(), domain.SourceReddit, "cute")
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestGetGifsFromSource_DefaultsToAll(t *testing.T) {
	tenor := &stubProvider{id: domain.SourceTenor}
	svc, _ := newTestService(t, tenor)

	svc.GetGifsFromSource(context.Background(), domain.SourceTenor, "")
	require.Len(t, tenor.calls, 1)
	assert.Equal(t, domain.CategoryAll, tenor.calls[0].category)
}

func TestClearSeen(t *testing.T) {
	tenor := &stubProvider{id: domain.SourceTenor}
	svc, store := newTestService(t, tenor)
	ctx := context.Background()

	store.Update(ctx, domain.SourceTenor, []string{"a"})
	n, err := svc.ClearSeen(ctx, domain.SourceTenor)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	assert.Empty(t, store.Get(ctx, domain.SourceTenor))

	_, err = svc.ClearSeen(ctx, domain.SourceGiphy)
	assert.Error(t, err)
}

func TestNewGifService_SkipsDuplicateSources(t *testing.T) {
	svc, _ := newTestService(t,
		&stubProvider{id: domain.SourceTenor},
		&stubProvider{id: domain.SourceTenor},
		&stubProvider{id: domain.SourceGiphy},
	)
	assert.Equal(t, []domain.Source{domain.SourceTenor, domain.SourceGiphy}, svc.Sources())
	assert.NotNil(t, svc.Catalog())
}
