package catalog

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timmy/asciime/internal/config"
	"github.com/timmy/asciime/internal/domain"
	"github.com/timmy/asciime/internal/storage"
)

type memStore struct {
	objects map[string][]byte
}

func (m *memStore) Upload(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.objects[key] = data
	return nil
}

func (m *memStore) Download(_ context.Context, key string) (io.ReadCloser, error) {
	data, ok := m.objects[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memStore) Exists(_ context.Context, key string) (bool, error) {
	_, ok := m.objects[key]
	return ok, nil
}

func TestDefaultCatalog(t *testing.T) {
	c := Default()

	ids := c.IDs()
	assert.Equal(t, []string{
		"cute", "action", "reaction", "emotional", "comedy", "dance",
		"food", "slice_of_life", "dramatic", "magic", "friendship", "romance",
	}, ids)

	for _, entry := range c.All() {
		assert.NotEmpty(t, entry.Terms, entry.ID)
		assert.NotEmpty(t, entry.Subreddits, entry.ID)
	}
}

func TestLookup(t *testing.T) {
	c := Default()

	cute, ok := c.Lookup("cute")
	require.True(t, ok)
	assert.Contains(t, cute.Terms, "kawaii anime")
	assert.Contains(t, cute.Subreddits, "awwnime")

	unknown, ok := c.Lookup("nonexistent")
	assert.False(t, ok)
	assert.Equal(t, domain.DefaultCategory("nonexistent"), unknown)
}

func TestLookup_PerFieldFallback(t *testing.T) {
	c, err := New([]domain.Category{
		{ID: "quiet", Terms: []string{"anime nap"}},
		{ID: "loud", Subreddits: []string{"animefights"}},
	})
	require.NoError(t, err)

	quiet, ok := c.Lookup("quiet")
	require.True(t, ok)
	assert.Equal(t, []string{"anime nap"}, quiet.Terms)
	assert.Equal(t, []string{domain.DefaultSubreddit}, quiet.Subreddits)

	loud, _ := c.Lookup("loud")
	assert.Equal(t, []string{domain.DefaultTerm}, loud.Terms)
	assert.Equal(t, []string{"animefights"}, loud.Subreddits)
}

func TestLookup_ReturnsCopies(t *testing.T) {
	c := Default()
	first, _ := c.Lookup("cute")
	first.Terms[0] = "mutated"

	second, _ := c.Lookup("cute")
	assert.NotEqual(t, "mutated", second.Terms[0])
}

func TestNew_Rejects(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, ErrEmptyCatalog)

	_, err = New([]domain.Category{{ID: "a"}, {ID: "a"}})
	assert.ErrorIs(t, err, ErrDuplicateID)

	_, err = New([]domain.Category{{ID: "  "}})
	assert.Error(t, err)

	_, err = New([]domain.Category{{ID: domain.CategoryAll}})
	assert.Error(t, err)
}

func TestResolve(t *testing.T) {
	c := Default()

	assert.Equal(t, c.IDs(), c.Resolve([]string{"all"}))
	assert.Equal(t, c.IDs(), c.Resolve(nil))
	assert.Equal(t, c.IDs(), c.Resolve([]string{"cute", "all"}))
	assert.Equal(t, []string{"cute", "cute", "bogus"}, c.Resolve([]string{"cute", "cute", "bogus"}))
}

func TestParse_UnknownField(t *testing.T) {
	_, err := Parse([]byte("categories:\n  - id: x\n    tags: [a]\n"))
	assert.Error(t, err)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("categories:\n  - id: only\n    terms: [anime only]\n"), 0o644))

	c, err := Load(context.Background(), &config.CatalogConfig{Source: SourceFile, Path: path}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"only"}, c.IDs())
}

func TestLoad_Object(t *testing.T) {
	ctx := context.Background()
	store := &memStore{objects: map[string][]byte{}}
	doc := EmbeddedYAML()
	require.NoError(t, store.Upload(ctx, "catalog/categories.yaml", bytes.NewReader(doc), int64(len(doc)), "application/yaml"))

	c, err := Load(ctx, &config.CatalogConfig{Source: SourceObject, Path: "catalog/categories.yaml"}, store)
	require.NoError(t, err)
	assert.Len(t, c.IDs(), 12)

	_, err = Load(ctx, &config.CatalogConfig{Source: SourceObject, Path: "missing.yaml"}, store)
	assert.True(t, errors.Is(err, storage.ErrNotFound))

	_, err = Load(ctx, &config.CatalogConfig{Source: SourceObject, Path: "x"}, nil)
	assert.Error(t, err)
}

func TestLoad_Embedded(t *testing.T) {
	c, err := Load(context.Background(), &config.CatalogConfig{}, nil)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(EmbeddedYAML()), "categories:"))
	assert.Len(t, c.All(), 12)

	_, err = Load(context.Background(), &config.CatalogConfig{Source: "ftp"}, nil)
	assert.Error(t, err)
}
