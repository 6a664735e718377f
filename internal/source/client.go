package source

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/timmy/asciime/internal/config"
)

// ClientOptions configures the shared upstream HTTP client.
type ClientOptions struct {
	BaseURL   string
	Timeout   time.Duration // per attempt
	Retry     config.RetryConfig
	UserAgent string
}

// NewClient builds a resty client that retries transport errors and 5xx
// responses, up to Retry.MaxAttempts calls in total, with exponential backoff
// between Retry.WaitMin and Retry.WaitMax.
func NewClient(opts ClientOptions) *resty.Client {
	client := resty.New()
	if opts.BaseURL != "" {
		client.SetBaseURL(opts.BaseURL)
	}
	if opts.Timeout > 0 {
		client.SetTimeout(opts.Timeout)
	}
	if opts.UserAgent != "" {
		client.SetHeader("User-Agent", opts.UserAgent)
	}
	client.SetHeader("Accept", "application/json")

	attempts := opts.Retry.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	client.
		SetRetryCount(attempts - 1).
		SetRetryWaitTime(opts.Retry.WaitMin).
		SetRetryMaxWaitTime(opts.Retry.WaitMax).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return r.StatusCode() >= http.StatusInternalServerError || r.StatusCode() == http.StatusRequestTimeout
		})

	return client
}

// StatusError is a non-success upstream response that survived retries.
type StatusError struct {
	Provider string
	Status   int
	Body     string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s API error: status %d", e.Provider, e.Status)
	}
	return fmt.Sprintf("%s API error: status %d: %s", e.Provider, e.Status, e.Body)
}

// NewStatusError captures resp as a StatusError, truncating long bodies.
func NewStatusError(provider string, resp *resty.Response) *StatusError {
	body := string(resp.Body())
	if len(body) > 256 {
		body = body[:256]
	}
	return &StatusError{Provider: provider, Status: resp.StatusCode(), Body: body}
}
