package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Retry      RetryConfig      `mapstructure:"retry"`
	Providers  ProvidersConfig  `mapstructure:"providers"`
	Aggregator AggregatorConfig `mapstructure:"aggregator"`
	Seen       SeenConfig       `mapstructure:"seen"`
	Catalog    CatalogConfig    `mapstructure:"catalog"`
	Storage    StorageConfig    `mapstructure:"storage"`
}

type ServerConfig struct {
	Port       int        `mapstructure:"port"`
	Mode       string     `mapstructure:"mode"`
	AdminToken string     `mapstructure:"admin_token"`
	CORS       CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
	AllowAllOrigins bool     `mapstructure:"allow_all_origins"`
}

// CacheConfig selects the key-value store backing the seen-sets.
type CacheConfig struct {
	Backend string        `mapstructure:"backend"` // memory, redis, upstash, sql
	Redis   RedisConfig   `mapstructure:"redis"`
	Upstash UpstashConfig `mapstructure:"upstash"`
}

type RedisConfig struct {
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	PoolSize     int           `mapstructure:"pool_size"`
}

type UpstashConfig struct {
	URL     string        `mapstructure:"url"`
	Token   string        `mapstructure:"token"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// DatabaseConfig is used by the sql cache backend.
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"` // sqlite, postgres
	Path            string        `mapstructure:"path"`
	URL             string        `mapstructure:"url"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
	SweepInterval   time.Duration `mapstructure:"sweep_interval"`
}

// DSN builds the driver connection string.
func (c *DatabaseConfig) DSN() string {
	if c.Driver == "postgres" {
		if c.URL != "" {
			return c.URL
		}
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
	}
	return c.Path
}

// RetryConfig bounds upstream retries: MaxAttempts calls in total, waits
// growing exponentially from WaitMin and capped at WaitMax.
type RetryConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	WaitMin     time.Duration `mapstructure:"wait_min"`
	WaitMax     time.Duration `mapstructure:"wait_max"`
}

type AggregatorConfig struct {
	TaskTimeout  time.Duration `mapstructure:"task_timeout"`
	MaxCount     int           `mapstructure:"max_count"`
	DefaultCount int           `mapstructure:"default_count"`
}

// SeenConfig controls seen-set partitioning. All processes sharing one cache
// should use the same Timezone so they agree on day boundaries.
type SeenConfig struct {
	Timezone string        `mapstructure:"timezone"`
	TTL      time.Duration `mapstructure:"ttl"`
	Ceiling  int           `mapstructure:"ceiling"`
}

// Location resolves Timezone, defaulting to the process local zone.
func (c *SeenConfig) Location() (*time.Location, error) {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

// CatalogConfig says where the category catalog is loaded from.
type CatalogConfig struct {
	Source string `mapstructure:"source"` // embedded, file, object
	Path   string `mapstructure:"path"`   // file path or object key
}

// StorageConfig is an S3-compatible bucket, used for object-hosted catalogs.
type StorageConfig struct {
	Type      string `mapstructure:"type"` // r2, s3, s3compatible
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
}

func Load(configPath string) (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Secrets and the legacy flat variables
	v.BindEnv("providers.tenor.api_key", "TENOR_API_KEY")
	v.BindEnv("providers.giphy.api_key", "GIPHY_API_KEY")
	v.BindEnv("providers.reddit.client_id", "REDDIT_CLIENT_ID")
	v.BindEnv("providers.reddit.client_secret", "REDDIT_CLIENT_SECRET")
	v.BindEnv("providers.reddit.request_timeout", "REQUEST_TIMEOUT")
	v.BindEnv("retry.max_attempts", "MAX_RETRIES")
	v.BindEnv("cache.upstash.url", "UPSTASH_REDIS_REST_URL")
	v.BindEnv("cache.upstash.token", "UPSTASH_REDIS_REST_TOKEN")
	v.BindEnv("cache.redis.addr", "REDIS_ADDR")
	v.BindEnv("cache.redis.password", "REDIS_PASSWORD")
	v.BindEnv("database.url", "DATABASE_URL")
	v.BindEnv("server.admin_token", "ADMIN_TOKEN")
	v.BindEnv("storage.access_key", "STORAGE_ACCESS_KEY")
	v.BindEnv("storage.secret_key", "STORAGE_SECRET_KEY")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Providers.resolveEnvVars()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.cors.allow_all_origins", true)
	v.SetDefault("server.cors.allowed_origins", []string{})

	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.redis.addr", "localhost:6379")
	v.SetDefault("cache.redis.dial_timeout", 5*time.Second)
	v.SetDefault("cache.redis.read_timeout", 3*time.Second)
	v.SetDefault("cache.redis.write_timeout", 3*time.Second)
	v.SetDefault("cache.redis.pool_size", 10)
	v.SetDefault("cache.upstash.timeout", 5*time.Second)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./data/cache.db")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("database.sweep_interval", 10*time.Minute)

	v.SetDefault("retry.max_attempts", 3)
	v.SetDefault("retry.wait_min", 4*time.Second)
	v.SetDefault("retry.wait_max", 10*time.Second)

	v.SetDefault("providers.tenor.enabled", true)
	v.SetDefault("providers.tenor.base_url", "https://tenor.googleapis.com")
	v.SetDefault("providers.tenor.timeout", 5*time.Second)
	v.SetDefault("providers.tenor.max_offset", 1000)
	v.SetDefault("providers.tenor.fetch_count", 5)

	v.SetDefault("providers.giphy.enabled", true)
	v.SetDefault("providers.giphy.base_url", "https://api.giphy.com")
	v.SetDefault("providers.giphy.timeout", 10*time.Second)
	v.SetDefault("providers.giphy.max_offset", 1000)
	v.SetDefault("providers.giphy.fetch_count", 5)

	v.SetDefault("providers.reddit.enabled", true)
	v.SetDefault("providers.reddit.auth_url", "https://www.reddit.com")
	v.SetDefault("providers.reddit.api_url", "https://oauth.reddit.com")
	v.SetDefault("providers.reddit.feed_url", "https://www.reddit.com")
	v.SetDefault("providers.reddit.user_agent", "AnimeGifAPI/1.0")
	v.SetDefault("providers.reddit.request_timeout", 30*time.Second)
	v.SetDefault("providers.reddit.subreddit_timeout", 15*time.Second)
	v.SetDefault("providers.reddit.max_offset", 50)
	v.SetDefault("providers.reddit.fetch_count", 20)

	v.SetDefault("aggregator.task_timeout", 45*time.Second)
	v.SetDefault("aggregator.max_count", 50)
	v.SetDefault("aggregator.default_count", 5)

	v.SetDefault("seen.timezone", "Local")
	v.SetDefault("seen.ttl", 24*time.Hour)
	v.SetDefault("seen.ceiling", 1000)

	v.SetDefault("catalog.source", "embedded")

	v.SetDefault("storage.use_ssl", true)
}

// Validate rejects settings the service cannot start with.
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case "memory", "redis", "sql":
	case "upstash":
		if c.Cache.Upstash.URL == "" || c.Cache.Upstash.Token == "" {
			return fmt.Errorf("cache backend upstash requires url and token")
		}
	default:
		return fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
	}

	switch c.Catalog.Source {
	case "embedded":
	case "file", "object":
		if c.Catalog.Path == "" {
			return fmt.Errorf("catalog source %s requires a path", c.Catalog.Source)
		}
	default:
		return fmt.Errorf("unknown catalog source %q", c.Catalog.Source)
	}

	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry.max_attempts must be at least 1, got %d", c.Retry.MaxAttempts)
	}
	if c.Aggregator.MaxCount < 1 {
		return fmt.Errorf("aggregator.max_count must be positive, got %d", c.Aggregator.MaxCount)
	}
	if c.Aggregator.DefaultCount < 1 || c.Aggregator.DefaultCount > c.Aggregator.MaxCount {
		return fmt.Errorf("aggregator.default_count must be within 1..%d", c.Aggregator.MaxCount)
	}
	if _, err := c.Seen.Location(); err != nil {
		return fmt.Errorf("invalid seen.timezone: %w", err)
	}
	return c.Providers.Validate()
}
