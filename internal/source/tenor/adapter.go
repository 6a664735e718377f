// Package tenor fetches gifs from the Tenor v2 search API.
package tenor

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/timmy/asciime/internal/config"
	"github.com/timmy/asciime/internal/domain"
	"github.com/timmy/asciime/internal/logger"
	"github.com/timmy/asciime/internal/source"
)

const (
	searchPath    = "/v2/search"
	mediaFilter   = "gif,tinygif"
	contentFilter = "medium"
)

// Adapter implements source.Provider for Tenor.
type Adapter struct {
	client *resty.Client
	apiKey string
	cats   source.Categories
}

// NewAdapter creates a Tenor adapter.
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

// GetSourceID returns domain.SourceTenor.
func (a *Adapter) GetSourceID() domain.Source {
	return domain.SourceTenor
}

type mediaFormat struct {
	URL  string `json:"url"`
	Size int64  `json:"size"`
	Dims []int  `json:"dims"`
}

type searchResponse struct {
	Results []struct {
		ID           string                  `json:"id"`
		MediaFormats map[string]*mediaFormat `json:"media_formats"`
	} `json:"results"`
	Next string `json:"next"`
}

// Fetch searches Tenor with the category's terms joined into one query.
// A missing API key is logged and yields no items.
func (a *Adapter) Fetch(ctx context.Context, limit int, category string, offset int) ([]domain.Item, error) {
	if a.apiKey == "" {
		logger.FromContext(ctx).WithError(source.ErrMissingCredentials).Error("TENOR_API_KEY not configured")
		return []domain.Item{}, nil
	}

	inputs := source.SearchInputs(a.cats, category)

	var resp searchResponse
	httpResp, err := a.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"key":           a.apiKey,
			"q":             strings.Join(inputs.Terms, " "),
			"limit":         strconv.Itoa(limit),
			"pos":           strconv.Itoa(offset),
			"media_filter":  mediaFilter,
			"contentfilter": contentFilter,
		}).
		SetResult(&resp).
		ForceContentType("application/json").
		Get(searchPath)
	if err != nil {
		return nil, fmt.Errorf("failed to call Tenor API: %w", err)
	}
	if httpResp.StatusCode() != http.StatusOK {
		return nil, source.NewStatusError("Tenor", httpResp)
	}

	items := make([]domain.Item, 0, len(resp.Results))
	for _, result := range resp.Results {
		format := result.MediaFormats["gif"]
		if format == nil || format.URL == "" {
			format = result.MediaFormats["tinygif"]
		}
		if format == nil {
			continue
		}
		items = append(items, toItem(format))
	}

	return source.Keep(items, limit), nil
}

func toItem(format *mediaFormat) domain.Item {
	item := domain.Item{
		URL:     format.URL,
		Preview: domain.StringPtr(format.URL),
		Size:    domain.Int64Ptr(format.Size),
		Source:  domain.SourceTenor,
	}
	if len(format.Dims) == 2 {
		item.Dims = domain.NewDims(format.Dims[0], format.Dims[1])
	}
	return item
}
