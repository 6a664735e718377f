package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
)

// Upstash implements Cache over the Upstash Redis REST API. Every call is
// one HTTPS round trip carrying a JSON-encoded Redis command.
type Upstash struct {
	client *resty.Client
	url    string
}

// UpstashOptions configures the REST endpoint.
type UpstashOptions struct {
	URL     string
	Token   string
	Timeout time.Duration
}

// upstashResponse is the REST envelope; Result is any Redis reply type.
type upstashResponse struct {
	Result json.RawMessage `json:"result"`
	Error  string          `json:"error,omitempty"`
}

// NewUpstash creates an Upstash REST cache client.
func NewUpstash(opts UpstashOptions) *Upstash {
	client := resty.New()
	client.SetAuthToken(opts.Token)
	client.SetHeader("Content-Type", "application/json")
	if opts.Timeout > 0 {
		client.SetTimeout(opts.Timeout)
	}
	return &Upstash{client: client, url: opts.URL}
}

func (u *Upstash) command(ctx context.Context, args ...string) (json.RawMessage, error) {
	var out upstashResponse
	resp, err := u.client.R().
		SetContext(ctx).
		SetBody(args).
		SetResult(&out).
		SetError(&out).
		ForceContentType("application/json").
		Post(u.url)
	if err != nil {
		return nil, fmt.Errorf("upstash %s request failed: %w", args[0], err)
	}
	if resp.StatusCode() != http.StatusOK {
		if out.Error != "" {
			return nil, fmt.Errorf("upstash %s error: %s", args[0], out.Error)
		}
		return nil, fmt.Errorf("upstash %s error: status %d", args[0], resp.StatusCode())
	}
	if out.Error != "" {
		return nil, fmt.Errorf("upstash %s error: %s", args[0], out.Error)
	}
	return out.Result, nil
}

func (u *Upstash) Get(ctx context.Context, key string) (string, bool, error) {
	raw, err := u.command(ctx, "GET", key)
	if err != nil {
		return "", false, err
	}
	if len(raw) == 0 || string(raw) == "null" {
		return "", false, nil
	}
	var val string
	if err := json.Unmarshal(raw, &val); err != nil {
		return "", false, fmt.Errorf("upstash GET returned non-string result: %w", err)
	}
	return val, true, nil
}

func (u *Upstash) Set(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	seconds := int64(ttl / time.Second)
	if seconds < 1 {
		seconds = 1
	}
	raw, err := u.command(ctx, "SET", key, value, "EX", strconv.FormatInt(seconds, 10))
	if err != nil {
		return false, err
	}
	var status string
	if err := json.Unmarshal(raw, &status); err != nil {
		return false, fmt.Errorf("upstash SET returned non-string result: %w", err)
	}
	return status == "OK", nil
}

func (u *Upstash) Delete(ctx context.Context, key string) (int64, error) {
	raw, err := u.command(ctx, "DEL", key)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, fmt.Errorf("upstash DEL returned non-integer result: %w", err)
	}
	return n, nil
}

func (u *Upstash) Close() error { return nil }
