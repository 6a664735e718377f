package reddit

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/timmy/asciime/internal/config"
	"github.com/timmy/asciime/internal/source"
)

// tokenSkew renews the token this long before it expires.
const tokenSkew = time.Minute

// apiLister reads listings through the OAuth API with an app-only
// (client_credentials) token.
type apiLister struct {
	auth         *resty.Client
	api          *resty.Client
	clientID     string
	clientSecret string

	mu      sync.Mutex
	token   string
	expires time.Time
	now     func() time.Time
}

func newAPILister(cfg *config.RedditProviderConfig, retry config.RetryConfig) *apiLister {
	return &apiLister{
		auth: source.NewClient(source.ClientOptions{
			BaseURL:   cfg.AuthURL,
			Timeout:   cfg.SubredditTimeout,
			Retry:     retry,
			UserAgent: cfg.UserAgent,
		}),
		api: source.NewClient(source.ClientOptions{
			BaseURL:   cfg.APIURL,
			Timeout:   cfg.SubredditTimeout,
			Retry:     retry,
			UserAgent: cfg.UserAgent,
		}),
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		now:          time.Now,
	}
}

func (l *apiLister) mode() string { return "api" }

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	Error       string `json:"error"`
}

type listingResponse struct {
	Data struct {
		Children []struct {
			Data struct {
				URL   string `json:"url"`
				Title string `json:"title"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

func (l *apiLister) accessToken(ctx context.Context) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.token != "" && l.now().Before(l.expires) {
		return l.token, nil
	}
	if l.clientID == "" || l.clientSecret == "" {
		return "", source.ErrMissingCredentials
	}

	var resp tokenResponse
	httpResp, err := l.auth.R().
		SetContext(ctx).
		SetBasicAuth(l.clientID, l.clientSecret).
		SetFormData(map[string]string{"grant_type": "client_credentials"}).
		SetResult(&resp).
		ForceContentType("application/json").
		Post("/api/v1/access_token")
	if err != nil {
		return "", fmt.Errorf("failed to request reddit token: %w", err)
	}
	if httpResp.StatusCode() != http.StatusOK || resp.AccessToken == "" {
		if resp.Error != "" {
			return "", fmt.Errorf("reddit token error: %s", resp.Error)
		}
		return "", source.NewStatusError("Reddit", httpResp)
	}

	l.token = resp.AccessToken
	l.expires = l.now().Add(time.Duration(resp.ExpiresIn)*time.Second - tokenSkew)
	return l.token, nil
}

func (l *apiLister) hot(ctx context.Context, subreddit string, limit int) ([]string, error) {
	token, err := l.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	var resp listingResponse
	httpResp, err := l.api.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetPathParam("subreddit", subreddit).
		SetQueryParams(map[string]string{
			"limit":    strconv.Itoa(limit),
			"raw_json": "1",
		}).
		SetResult(&resp).
		ForceContentType("application/json").
		Get("/r/{subreddit}/hot")
	if err != nil {
		return nil, fmt.Errorf("failed to list r/%s: %w", subreddit, err)
	}
	if httpResp.StatusCode() == http.StatusUnauthorized {
		l.mu.Lock()
		l.token = ""
		l.mu.Unlock()
	}
	if httpResp.StatusCode() != http.StatusOK {
		return nil, source.NewStatusError("Reddit", httpResp)
	}

	urls := make([]string, 0, len(resp.Data.Children))
	for _, child := range resp.Data.Children {
		if child.Data.URL != "" {
			urls = append(urls, child.Data.URL)
		}
	}
	return urls, nil
}
