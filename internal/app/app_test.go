package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timmy/asciime/internal/catalog"
	"github.com/timmy/asciime/internal/config"
	"github.com/timmy/asciime/internal/domain"
	"github.com/timmy/asciime/internal/logger"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	t.Setenv("TENOR_API_KEY", "")
	t.Setenv("GIPHY_API_KEY", "")
	cfg, err := config.Load("")
	require.NoError(t, err)
	return cfg
}

func TestBuild_Defaults(t *testing.T) {
	cfg := testConfig(t)

	a, err := Build(context.Background(), cfg, logger.GetDefault())
	require.NoError(t, err)
	defer a.Close()

	assert.Nil(t, a.Storage)
	assert.Len(t, a.Catalog.IDs(), 12)
	assert.ElementsMatch(t,
		[]domain.Source{domain.SourceTenor, domain.SourceGiphy, domain.SourceReddit},
		a.Gifs.Sources())
}

func TestBuild_UnknownCacheBackend(t *testing.T) {
	cfg := testConfig(t)
	cfg.Cache.Backend = "memcached"

	_, err := Build(context.Background(), cfg, logger.GetDefault())
	assert.Error(t, err)
}

func TestBuild_BadTimezone(t *testing.T) {
	cfg := testConfig(t)
	cfg.Seen.Timezone = "Mars/Olympus_Mons"

	_, err := Build(context.Background(), cfg, logger.GetDefault())
	assert.Error(t, err)
}

func TestNewProviders_RespectsEnabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.Providers.Giphy.Enabled = false

	providers := NewProviders(cfg, catalog.Default())
	require.Len(t, providers, 2)
	assert.Equal(t, domain.SourceTenor, providers[0].GetSourceID())
	assert.Equal(t, domain.SourceReddit, providers[1].GetSourceID())
}

func TestSourceSettings(t *testing.T) {
	cfg := testConfig(t)

	settings := SourceSettings(cfg)
	assert.Equal(t, 50, settings[domain.SourceReddit].MaxOffset)
	assert.Equal(t, 20, settings[domain.SourceReddit].FetchCount)
	assert.Equal(t, 1000, settings[domain.SourceTenor].MaxOffset)
	assert.Equal(t, 5, settings[domain.SourceGiphy].FetchCount)
}
