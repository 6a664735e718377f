// Package giphy fetches gifs from the Giphy search API.
package giphy

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-resty/resty/v2"

	"github.com/timmy/asciime/internal/config"
	"github.com/timmy/asciime/internal/domain"
	"github.com/timmy/asciime/internal/logger"
	"github.com/timmy/asciime/internal/source"
)

const (
	searchPath = "/v1/gifs/search"
	bundle     = "messaging_non_clips"

	// MaxQueryLength bounds the search query; longer queries are rejected
	// upstream with 414.
	MaxQueryLength = 50
)

// renditions in order of preference.
var renditions = []string{"original", "downsized", "fixed_height"}

// Adapter implements source.Provider for Giphy.
type Adapter struct {
	client *resty.Client
	apiKey string
	cats   source.Categories
}

// NewAdapter creates a Giphy adapter.
func NewAdapter(cfg *config.ProviderConfig, retry config.RetryConfig, cats source.Categories) *Adapter {
	return &Adapter{
		client: source.NewClient(source.ClientOptions{
			BaseURL: cfg.BaseURL,
			Timeout: cfg.Timeout,
			Retry:   retry,
		}),
		apiKey: cfg.APIKey,
		cats:   cats,
	}
}

// GetSourceID returns domain.SourceGiphy.
func (a *Adapter) GetSourceID() domain.Source {
	return domain.SourceGiphy
}

type rendition struct {
	URL    string `json:"url"`
	Size   string `json:"size"`
	Width  string `json:"width"`
	Height string `json:"height"`
}

type searchResponse struct {
	Data []struct {
		ID     string                `json:"id"`
		Images map[string]*rendition `json:"images"`
	} `json:"data"`
}

// BuildQuery returns "anime" followed by the first term that keeps the
// query within MaxQueryLength.
func BuildQuery(terms []string) string {
	query := domain.DefaultTerm
	for _, term := range terms {
		if term == domain.DefaultTerm {
			continue
		}
		candidate := query + " " + term
		if len(candidate) <= MaxQueryLength {
			return candidate
		}
	}
	return query
}

// Fetch searches Giphy. A 414 is retried once with the bare default term;
// a 429 yields no items.
func (a *Adapter) Fetch(ctx context.Context, limit int, category string, offset int) ([]domain.Item, error) {
	log := logger.FromContext(ctx)
	if a.apiKey == "" {
		log.WithError(source.ErrMissingCredentials).Error("GIPHY_API_KEY not configured")
		return []domain.Item{}, nil
	}

	query := BuildQuery(source.SearchInputs(a.cats, category).Terms)

	resp, status, err := a.search(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}

	switch status {
	case http.StatusOK:
	case http.StatusRequestURITooLong:
		log.Infof("Giphy rejected query length, falling back to %q", domain.DefaultTerm)
		resp, status, err = a.search(ctx, domain.DefaultTerm, limit, offset)
		if err != nil {
			return nil, err
		}
		if status != http.StatusOK {
			return nil, &source.StatusError{Provider: "Giphy", Status: status}
		}
	case http.StatusTooManyRequests:
		log.Warn("Giphy rate limit reached")
		return []domain.Item{}, nil
	default:
		return nil, &source.StatusError{Provider: "Giphy", Status: status}
	}

	items := make([]domain.Item, 0, len(resp.Data))
	for _, gif := range resp.Data {
		item, err := toItem(gif.Images)
		if err != nil {
			log.WithError(err).WithField("gif_id", gif.ID).Warn("Skipping malformed Giphy result")
			continue
		}
		if item != nil {
			items = append(items, *item)
		}
	}

	return source.Keep(items, limit), nil
}

func (a *Adapter) search(ctx context.Context, query string, limit, offset int) (*searchResponse, int, error) {
	var resp searchResponse
	httpResp, err := a.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"api_key": a.apiKey,
			"q":       query,
			"limit":   strconv.Itoa(limit),
			"offset":  strconv.Itoa(offset),
			"bundle":  bundle,
		}).
		SetResult(&resp).
		ForceContentType("application/json").
		Get(searchPath)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to call Giphy API: %w", err)
	}
	return &resp, httpResp.StatusCode(), nil
}

func toItem(images map[string]*rendition) (*domain.Item, error) {
	var picked *rendition
	for _, name := range renditions {
		if r := images[name]; r != nil && r.URL != "" {
			picked = r
			break
		}
	}
	if picked == nil {
		return nil, nil
	}

	size, err := parseInt(picked.Size)
	if err != nil {
		return nil, fmt.Errorf("size: %w", err)
	}
	width, err := parseInt(picked.Width)
	if err != nil {
		return nil, fmt.Errorf("width: %w", err)
	}
	height, err := parseInt(picked.Height)
	if err != nil {
		return nil, fmt.Errorf("height: %w", err)
	}

	return &domain.Item{
		URL:    picked.URL,
		Size:   domain.Int64Ptr(int64(size)),
		Dims:   domain.NewDims(width, height),
		Source: domain.SourceGiphy,
	}, nil
}

// parseInt treats an empty string as zero.
func parseInt(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
