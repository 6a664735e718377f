package config

import (
	"fmt"
	"os"
	"time"
)

// ProvidersConfig holds one block per upstream gif provider.
type ProvidersConfig struct {
	Tenor  ProviderConfig       `mapstructure:"tenor"`
	Giphy  ProviderConfig       `mapstructure:"giphy"`
	Reddit RedditProviderConfig `mapstructure:"reddit"`
}

// ProviderConfig defines a key-authenticated search provider.
type ProviderConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	APIKey     string        `mapstructure:"api_key"`     // API key (can be set directly or via env var)
	APIKeyEnv  string        `mapstructure:"api_key_env"` // Environment variable name for API key
	BaseURL    string        `mapstructure:"base_url"`
	Timeout    time.Duration `mapstructure:"timeout"`     // bound on a single upstream call
	MaxOffset  int           `mapstructure:"max_offset"`  // pagination ceiling for random offsets
	FetchCount int           `mapstructure:"fetch_count"` // items requested per task
}

// RedditProviderConfig defines the reddit provider. Without client
// credentials it reads the public subreddit feeds instead of the API.
type RedditProviderConfig struct {
	Enabled          bool          `mapstructure:"enabled"`
	ClientID         string        `mapstructure:"client_id"`
	ClientSecret     string        `mapstructure:"client_secret"`
	UserAgent        string        `mapstructure:"user_agent"`
	AuthURL          string        `mapstructure:"auth_url"`
	APIURL           string        `mapstructure:"api_url"`
	FeedURL          string        `mapstructure:"feed_url"`
	RequestTimeout   time.Duration `mapstructure:"request_timeout"`   // bound on the whole multi-subreddit fetch
	SubredditTimeout time.Duration `mapstructure:"subreddit_timeout"` // bound on one subreddit
	MaxOffset        int           `mapstructure:"max_offset"`
	FetchCount       int           `mapstructure:"fetch_count"`
}

// HasCredentials reports whether the OAuth API can be used.
func (c *RedditProviderConfig) HasCredentials() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// ResolveEnvVars loads APIKey from APIKeyEnv when no direct value is set.
func (c *ProviderConfig) ResolveEnvVars() {
	if c.APIKeyEnv != "" && c.APIKey == "" {
		if val := os.Getenv(c.APIKeyEnv); val != "" {
			c.APIKey = val
		}
	}
}

func (p *ProvidersConfig) resolveEnvVars() {
	p.Tenor.ResolveEnvVars()
	p.Giphy.ResolveEnvVars()
}

// Validate checks the tunables of every enabled provider.
func (p *ProvidersConfig) Validate() error {
	check := func(name string, enabled bool, fetchCount, maxOffset int) error {
		if !enabled {
			return nil
		}
		if fetchCount < 1 {
			return fmt.Errorf("providers.%s.fetch_count must be positive, got %d", name, fetchCount)
		}
		if maxOffset < 1 {
			return fmt.Errorf("providers.%s.max_offset must be positive, got %d", name, maxOffset)
		}
		return nil
	}

	if err := check("tenor", p.Tenor.Enabled, p.Tenor.FetchCount, p.Tenor.MaxOffset); err != nil {
		return err
	}
	if err := check("giphy", p.Giphy.Enabled, p.Giphy.FetchCount, p.Giphy.MaxOffset); err != nil {
		return err
	}
	return check("reddit", p.Reddit.Enabled, p.Reddit.FetchCount, p.Reddit.MaxOffset)
}
