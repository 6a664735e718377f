package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/timmy/asciime/internal/catalog"
	"github.com/timmy/asciime/internal/domain"
	"github.com/timmy/asciime/internal/storage"
)

type batchCommand struct {
	Count    int      `short:"n" long:"count" default:"5" description:"Number of gifs"`
	Category []string `short:"k" long:"category" description:"Category id, repeatable (default: all)"`
	JSON     bool     `long:"json" description:"Print JSON instead of a table"`
}

func (c *batchCommand) Execute(_ []string) error {
	ctx, cancel, a, err := buildApp()
	if err != nil {
		return err
	}
	defer cancel()
	defer a.Close()

	if c.Count < 1 || c.Count > a.Config.Aggregator.MaxCount {
		return fmt.Errorf("count must be between 1 and %d", a.Config.Aggregator.MaxCount)
	}
	categories := c.Category
	if len(categories) == 0 {
		categories = []string{domain.CategoryAll}
	}

	gifs := a.Gifs.GetGifs(ctx, c.Count, categories)
	if c.JSON {
		return printJSON(stdout, gifs)
	}
	printGifs(stdout, gifs)
	return nil
}

type sourceCommand struct {
	Category string `short:"k" long:"category" default:"all" description:"Category id"`
	JSON     bool   `long:"json" description:"Print JSON instead of a table"`
	Args     struct {
		Source string `positional-arg-name:"source" description:"tenor, giphy or reddit"`
	} `positional-args:"yes" required:"yes"`
}

func (c *sourceCommand) Execute(_ []string) error {
	src, ok := domain.ParseSource(c.Args.Source)
	if !ok {
		return fmt.Errorf("unknown source %q", c.Args.Source)
	}

	ctx, cancel, a, err := buildApp()
	if err != nil {
		return err
	}
	defer cancel()
	defer a.Close()

	items := a.Gifs.GetGifsFromSource(ctx, src, c.Category)
	gifs := make([]domain.Gif, len(items))
	for i, item := range items {
		gifs[i] = domain.NewGif(item)
	}
	if c.JSON {
		return printJSON(stdout, gifs)
	}
	printGifs(stdout, gifs)
	return nil
}

type categoriesCommand struct{}

func (c *categoriesCommand) Execute(_ []string) error {
	_, cancel, a, err := buildApp()
	if err != nil {
		return err
	}
	defer cancel()
	defer a.Close()

	printCategories(stdout, a.Catalog.All())
	return nil
}

type seenClearCommand struct {
	Args struct {
		Source string `positional-arg-name:"source" description:"tenor, giphy or reddit"`
	} `positional-args:"yes" required:"yes"`
}

func (c *seenClearCommand) Execute(_ []string) error {
	src, ok := domain.ParseSource(c.Args.Source)
	if !ok {
		return fmt.Errorf("unknown source %q", c.Args.Source)
	}

	ctx, cancel, a, err := buildApp()
	if err != nil {
		return err
	}
	defer cancel()
	defer a.Close()

	n, err := a.Gifs.ClearSeen(ctx, src)
	if err != nil {
		return err
	}
	printCleared(stdout, src, n)
	return nil
}

type catalogPushCommand struct {
	File      string `short:"f" long:"file" description:"Catalog YAML to upload (default: the built-in catalog)"`
	Key       string `long:"key" description:"Object key (default: catalog.path)"`
	Overwrite bool   `long:"overwrite" description:"Replace an existing object"`
}

// Execute talks to storage directly: building the full app would try to load
// the very catalog object this command is about to create.
func (c *catalogPushCommand) Execute(_ []string) error {
	ctx, cancel, cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	defer cancel()

	if cfg.Storage.Endpoint == "" {
		return errors.New("storage.endpoint is not configured")
	}
	store, err := storage.NewStorage(&cfg.Storage)
	if err != nil {
		return err
	}
	key := c.Key
	if key == "" {
		key = cfg.Catalog.Path
	}
	if key == "" {
		return errors.New("no object key: pass --key or set catalog.path")
	}

	data := catalog.EmbeddedYAML()
	if c.File != "" {
		if data, err = os.ReadFile(c.File); err != nil {
			return err
		}
	}
	parsed, err := catalog.Parse(data)
	if err != nil {
		return err
	}

	if !c.Overwrite {
		exists, err := store.Exists(ctx, key)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("object %s already exists; pass --overwrite to replace it", key)
		}
	}

	if err := store.Upload(ctx, key, bytes.NewReader(data), int64(len(data)), "application/yaml"); err != nil {
		return err
	}
	printPushed(stdout, key, len(parsed.IDs()))
	return nil
}
