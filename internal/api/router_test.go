package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timmy/asciime/internal/api/handler"
	"github.com/timmy/asciime/internal/cache"
	"github.com/timmy/asciime/internal/catalog"
	"github.com/timmy/asciime/internal/config"
	"github.com/timmy/asciime/internal/domain"
	"github.com/timmy/asciime/internal/logger"
	"github.com/timmy/asciime/internal/seen"
	"github.com/timmy/asciime/internal/service"
	"github.com/timmy/asciime/internal/source"
)

type fixedProvider struct {
	id    domain.Source
	items map[string]int
}

func (p *fixedProvider) GetSourceID() domain.Source { return p.id }

func (p *fixedProvider) Fetch(_ context.Context, limit int, category string, _ int) ([]domain.Item, error) {
	n := p.items[category]
	if n > limit {
		n = limit
	}
	out := make([]domain.Item, n)
	for i := range out {
		out[i] = domain.Item{
			URL:    fmt.Sprintf("https://%s.example/%s/%d.gif", p.id, category, i),
			Size:   domain.Int64Ptr(int64(100 + i)),
			Dims:   domain.NewDims(320, 0),
			Source: p.id,
		}
	}
	return out, nil
}

func testConfig(adminToken string) *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Mode:       "test",
			AdminToken: adminToken,
			CORS:       config.CORSConfig{AllowAllOrigins: true},
		},
		Cache:      config.CacheConfig{Backend: "memory"},
		Aggregator: config.AggregatorConfig{MaxCount: 50, DefaultCount: 5},
	}
}

func newTestRouter(t *testing.T, adminToken string, providers ...source.Provider) http.Handler {
	t.Helper()
	svc := service.NewGifService(providers, seen.NewStore(cache.NewMemory()), catalog.Default(),
		logger.GetDefault(), &service.GifServiceConfig{})
	return SetupRouter(svc, testConfig(adminToken), logger.GetDefault())
}

func do(t *testing.T, h http.Handler, method, target string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func cuteProviders() []source.Provider {
	return []source.Provider{
		&fixedProvider{id: domain.SourceTenor, items: map[string]int{"cute": 2}},
		&fixedProvider{id: domain.SourceGiphy, items: map[string]int{"cute": 2}},
		&fixedProvider{id: domain.SourceReddit, items: map[string]int{"cute": 2}},
	}
}

func TestHealth(t *testing.T) {
	r := newTestRouter(t, "", cuteProviders()...)

	w := do(t, r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestBatch(t *testing.T) {
	r := newTestRouter(t, "", cuteProviders()...)

	w := do(t, r, http.MethodGet, "/api/batch?count=5&category=all", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp handler.BatchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.Len(t, resp.Data, 5)
	for _, g := range resp.Data {
		assert.Equal(t, domain.GifID(g.URL), g.ID)
		assert.Equal(t, "cute", g.Category)
		require.Len(t, g.Dims, 2)
		assert.Equal(t, 320, *g.Dims[0])
		assert.Nil(t, g.Dims[1])
	}
}

func TestBatch_DefaultCount(t *testing.T) {
	r := newTestRouter(t, "", cuteProviders()...)

	w := do(t, r, http.MethodGet, "/api/batch", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp handler.BatchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, 5)
}

func TestBatch_CountValidation(t *testing.T) {
	r := newTestRouter(t, "", cuteProviders()...)

	tests := []struct {
		query string
		want  string
	}{
		{"count=0", "count must be between 1 and 50"},
		{"count=51", "count must be between 1 and 50"},
		{"count=-3", "count must be between 1 and 50"},
		{"count=abc", "count must be an integer"},
	}
	for _, tt := range tests {
		w := do(t, r, http.MethodGet, "/api/batch?"+tt.query, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, tt.query)
		assert.Contains(t, w.Body.String(), `"success":false`, tt.query)
		assert.Contains(t, w.Body.String(), tt.want, tt.query)
	}
}

func TestBatch_NotFound(t *testing.T) {
	r := newTestRouter(t, "", &fixedProvider{id: domain.SourceTenor})

	w := do(t, r, http.MethodGet, "/api/batch?category=cute", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "No gifs found")
}

func TestBatch_MultipleCategories(t *testing.T) {
	r := newTestRouter(t, "", &fixedProvider{id: domain.SourceTenor, items: map[string]int{"cute": 1, "action": 1}})

	w := do(t, r, http.MethodGet, "/api/batch?count=10&category=cute,action", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp handler.BatchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 2)
	cats := []string{resp.Data[0].Category, resp.Data[1].Category}
	assert.ElementsMatch(t, []string{"cute", "action"}, cats)
}

func TestRandom(t *testing.T) {
	r := newTestRouter(t, "", cuteProviders()...)

	w := do(t, r, http.MethodGet, "/api/random", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp handler.RandomResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Data)
	assert.Equal(t, "cute", resp.Data.Category)

	empty := newTestRouter(t, "")
	w = do(t, empty, http.MethodGet, "/api/random", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCategories(t *testing.T) {
	r := newTestRouter(t, "", cuteProviders()...)

	w := do(t, r, http.MethodGet, "/api/categories", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp handler.CategoriesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 12)
	assert.Equal(t, "cute", resp.Data[0].ID)
	assert.NotEmpty(t, resp.Data[0].Terms)
}

func TestBySource(t *testing.T) {
	r := newTestRouter(t, "", cuteProviders()...)

	w := do(t, r, http.MethodGet, "/api/sources/giphy?category=cute", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp handler.BatchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 2)
	for _, g := range resp.Data {
		assert.Equal(t, "giphy", g.Source)
	}

	w = do(t, r, http.MethodGet, "/api/sources/imgur", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCORS(t *testing.T) {
	r := newTestRouter(t, "", cuteProviders()...)

	w := do(t, r, http.MethodOptions, "/api/batch", map[string]string{
		"Origin":                        "https://example.com",
		"Access-Control-Request-Method": "GET",
	})
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestAdminClearSeen(t *testing.T) {
	r := newTestRouter(t, "s3cret", cuteProviders()...)

	w := do(t, r, http.MethodGet, "/api/batch?category=cute", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodDelete, "/api/admin/seen/tenor", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, r, http.MethodDelete, "/api/admin/seen/tenor", map[string]string{"Authorization": "Bearer wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, r, http.MethodDelete, "/api/admin/seen/tenor", map[string]string{"Authorization": "Bearer s3cret"})
	require.Equal(t, http.StatusOK, w.Code)
	var resp handler.ClearSeenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "tenor", resp.Source)
	assert.EqualValues(t, 1, resp.Deleted)

	w = do(t, r, http.MethodDelete, "/api/admin/seen/nope", map[string]string{"Authorization": "Bearer s3cret"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminRoutesDisabledWithoutToken(t *testing.T) {
	r := newTestRouter(t, "", cuteProviders()...)

	w := do(t, r, http.MethodDelete, "/api/admin/seen/tenor", map[string]string{"Authorization": "Bearer anything"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}
