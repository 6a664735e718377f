package catalog

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/timmy/asciime/internal/config"
	"github.com/timmy/asciime/internal/logger"
	"github.com/timmy/asciime/internal/storage"
)

const (
	SourceEmbedded = "embedded"
	SourceFile     = "file"
	SourceObject   = "object"
)

// maxDocumentSize bounds catalog documents read from storage.
const maxDocumentSize = 1 << 20

// Load builds the catalog named by cfg. store is only consulted for the
// object source and may be nil otherwise.
func Load(ctx context.Context, cfg *config.CatalogConfig, store storage.ObjectStorage) (*Catalog, error) {
	switch cfg.Source {
	case "", SourceEmbedded:
		return Default(), nil

	case SourceFile:
		data, err := os.ReadFile(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog file: %w", err)
		}
		c, err := Parse(data)
		if err != nil {
			return nil, err
		}
		logger.CtxInfo(ctx, "Loaded catalog from file: path=%s, categories=%d", cfg.Path, len(c.order))
		return c, nil

	case SourceObject:
		if store == nil {
			return nil, fmt.Errorf("catalog source %q requires object storage", SourceObject)
		}
		return loadObject(ctx, store, cfg.Path)

	default:
		return nil, fmt.Errorf("unknown catalog source: %s", cfg.Source)
	}
}

func loadObject(ctx context.Context, store storage.ObjectStorage, key string) (*Catalog, error) {
	body, err := store.Download(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch catalog object: %w", err)
	}
	defer body.Close()

	data, err := io.ReadAll(io.LimitReader(body, maxDocumentSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog object: %w", err)
	}

	c, err := Parse(data)
	if err != nil {
		return nil, err
	}
	logger.CtxInfo(ctx, "Loaded catalog from object storage: key=%s, categories=%d", key, len(c.order))
	return c, nil
}
