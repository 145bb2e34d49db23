// Package config provides configuration loading and management using koanf.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Default configuration values.
const (
	// DefaultServerPort is the default HTTP server port.
	DefaultServerPort = 8080

	// DefaultMaxRequestSize is the default maximum request body size (1MB).
	DefaultMaxRequestSize = 1 << 20

	DefaultClientRetryMaxAttempts       = 3
	DefaultClientRetryMultiplier        = 2.0
	DefaultClientRetryJitterFactor      = 0.25
	DefaultClientCircuitMaxFailures     = 5
	DefaultClientCircuitHalfOpenLimit   = 3
	DefaultTransportMaxIdleConns        = 100
	DefaultTransportMaxIdleConnsPerHost = 10

	DefaultLogFileMaxSizeMB  = 100
	DefaultLogFileMaxBackups = 3
	DefaultLogFileMaxAgeDays = 28

	// DefaultSwipeThreshold is the horizontal drag distance in pixels that
	// commits a swipe.
	DefaultSwipeThreshold = 100.0

	// DefaultGuestSwipeLimit is the swipe count at which guests must sign in.
	DefaultGuestSwipeLimit = 5

	// DefaultPromoInterval is how many authenticated swipes separate promo
	// opportunities.
	DefaultPromoInterval = 10

	DefaultHistoryDepth   = 50
	DefaultButtonOffset   = 300.0
	DefaultUndoOffset     = 200.0
	DefaultSyncWorkers    = 4
	DefaultSyncBuffer     = 256
	DefaultSyncAttempts   = 3
	DefaultStorageQuota   = 5 << 20
	DefaultSearchPageSize = 20
)

// Config is the root configuration structure.
type Config struct {
	App       AppConfig       `koanf:"app"       validate:"required"`
	Server    ServerConfig    `koanf:"server"    validate:"required"`
	Log       LogConfig       `koanf:"log"       validate:"required"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
	CORS      CORSConfig      `koanf:"cors"`
	Client    ClientConfig    `koanf:"client"    validate:"required"`
	Services  ServicesConfig  `koanf:"services"  validate:"required"`
	Feed      FeedConfig      `koanf:"feed"      validate:"required"`
	Cache     CacheConfig     `koanf:"cache"     validate:"required"`
	Session   SessionConfig   `koanf:"session"   validate:"required"`
	Sync      SyncConfig      `koanf:"sync"      validate:"required"`
}

// AppConfig contains application-level settings.
type AppConfig struct {
	Name        string `koanf:"name"        validate:"required"`
	Version     string `koanf:"version"     validate:"required"`
	Environment string `koanf:"environment" validate:"required,oneof=local dev qa prod test"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port            int           `koanf:"port"             validate:"required,min=1,max=65535"`
	Host            string        `koanf:"host"             validate:"required"`
	ReadTimeout     time.Duration `koanf:"read_timeout"     validate:"required,min=1s"`
	WriteTimeout    time.Duration `koanf:"write_timeout"    validate:"required,min=1s"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"     validate:"required,min=1s"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"required,min=1s"`
	RequestTimeout  time.Duration `koanf:"request_timeout"  validate:"required,min=100ms"`
	MaxRequestSize  int64         `koanf:"max_request_size" validate:"required,min=1"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string        `koanf:"level"  validate:"required,oneof=trace debug info warn error"`
	Format string        `koanf:"format" validate:"required,oneof=json text pretty"`
	File   LogFileConfig `koanf:"file"`
}

// LogFileConfig contains rolling log file settings.
type LogFileConfig struct {
	Enabled    bool   `koanf:"enabled"`
	Path       string `koanf:"path"        validate:"required_if=Enabled true"`
	MaxSizeMB  int    `koanf:"max_size"    validate:"omitempty,min=1,max=1024"`
	MaxBackups int    `koanf:"max_backups" validate:"omitempty,min=0,max=100"`
	MaxAgeDays int    `koanf:"max_age"     validate:"omitempty,min=0,max=365"`
	Compress   bool   `koanf:"compress"`
}

// TelemetryConfig contains OpenTelemetry settings.
type TelemetryConfig struct {
	Enabled      bool    `koanf:"enabled"`
	Endpoint     string  `koanf:"endpoint"      validate:"required_if=Enabled true"`
	ServiceName  string  `koanf:"service_name"  validate:"required_if=Enabled true"`
	SamplingRate float64 `koanf:"sampling_rate" validate:"min=0,max=1"`
	Insecure     bool    `koanf:"insecure"`
}

// CORSConfig controls which web origins may call the API.
type CORSConfig struct {
	AllowedOrigins   []string      `koanf:"allowed_origins"`
	AllowCredentials bool          `koanf:"allow_credentials"`
	MaxAge           time.Duration `koanf:"max_age"`
}

// ClientConfig contains HTTP client settings for the upstream API.
type ClientConfig struct {
	Timeout        time.Duration        `koanf:"timeout"         validate:"required,min=100ms"`
	Retry          RetryConfig          `koanf:"retry"           validate:"required"`
	CircuitBreaker CircuitBreakerConfig `koanf:"circuit_breaker" validate:"required"`
	Transport      TransportConfig      `koanf:"transport"       validate:"required"`
}

// RetryConfig contains retry settings for HTTP clients.
type RetryConfig struct {
	MaxAttempts     int           `koanf:"max_attempts"     validate:"required,min=1,max=10"`
	InitialInterval time.Duration `koanf:"initial_interval" validate:"required,min=10ms"`
	MaxInterval     time.Duration `koanf:"max_interval"     validate:"required,min=100ms"`
	Multiplier      float64       `koanf:"multiplier"       validate:"required,min=1.1,max=10"`
	JitterFactor    float64       `koanf:"jitter_factor"    validate:"min=0,max=1"`
}

// CircuitBreakerConfig contains circuit breaker settings for HTTP clients.
type CircuitBreakerConfig struct {
	MaxFailures   int           `koanf:"max_failures"    validate:"required,min=1"`
	Timeout       time.Duration `koanf:"timeout"         validate:"required,min=1s"`
	HalfOpenLimit int           `koanf:"half_open_limit" validate:"required,min=1"`
}

// TransportConfig contains HTTP transport pool settings.
type TransportConfig struct {
	MaxIdleConns        int           `koanf:"max_idle_conns"          validate:"required,min=1"`
	MaxIdleConnsPerHost int           `koanf:"max_idle_conns_per_host" validate:"required,min=1"`
	IdleConnTimeout     time.Duration `koanf:"idle_conn_timeout"       validate:"required,min=1s"`
}

// ServicesConfig contains configuration for downstream services.
type ServicesConfig struct {
	Upstream ServiceEndpointConfig `koanf:"upstream" validate:"required"`
}

// ServiceEndpointConfig contains configuration for a downstream service endpoint.
type ServiceEndpointConfig struct {
	BaseURL string `koanf:"base_url" validate:"required,url"`
	Name    string `koanf:"name"     validate:"required"`
}

// FeedConfig tunes the swipe feed.
type FeedConfig struct {
	SwipeThreshold  float64       `koanf:"swipe_threshold"   validate:"required,gt=0"`
	GuestSwipeLimit int           `koanf:"guest_swipe_limit" validate:"required,min=1"`
	PromoInterval   int           `koanf:"promo_interval"    validate:"required,min=1"`
	HistoryDepth    int           `koanf:"history_depth"     validate:"min=0"`
	ButtonOffset    float64       `koanf:"button_offset"     validate:"required,gt=0"`
	UndoOffset      float64       `koanf:"undo_offset"       validate:"required,gt=0"`
	CommitDelay     time.Duration `koanf:"commit_delay"      validate:"min=0"`
	ButtonDelay     time.Duration `koanf:"button_delay"      validate:"min=0"`
	UndoDelay       time.Duration `koanf:"undo_delay"        validate:"min=0"`
	SettleDelay     time.Duration `koanf:"settle_delay"      validate:"min=0"`
	NavigationLock  time.Duration `koanf:"navigation_lock"   validate:"min=0"`
	SearchPageSize  int           `koanf:"search_page_size"  validate:"required,min=1,max=100"`
}

// CacheConfig holds the request cache TTLs.
type CacheConfig struct {
	QuotesTTL       time.Duration `koanf:"quotes_ttl"       validate:"required,min=1s"`
	CategoriesTTL   time.Duration `koanf:"categories_ttl"   validate:"required,min=1s"`
	MarketingTTL    time.Duration `koanf:"marketing_ttl"    validate:"required,min=1s"`
	PreferencesTTL  time.Duration `koanf:"preferences_ttl"  validate:"required,min=1s"`
	SearchTTL       time.Duration `koanf:"search_ttl"       validate:"required,min=1s"`
	JanitorInterval time.Duration `koanf:"janitor_interval" validate:"required,min=1s"`
	MaxAge          time.Duration `koanf:"max_age"          validate:"required,min=1s"`
}

// SessionConfig controls viewer session lifetime and storage.
type SessionConfig struct {
	IdleTimeout   time.Duration `koanf:"idle_timeout"   validate:"required,min=1s"`
	SweepInterval time.Duration `koanf:"sweep_interval" validate:"required,min=1s"`
	StorageQuota  int           `koanf:"storage_quota"  validate:"min=0"`
	PromoCooldown time.Duration `koanf:"promo_cooldown" validate:"min=0"`
}

// SyncConfig sizes the like/dislike sync queue.
type SyncConfig struct {
	Workers        int           `koanf:"workers"         validate:"required,min=1,max=64"`
	BufferSize     int           `koanf:"buffer_size"     validate:"required,min=1"`
	MaxAttempts    int           `koanf:"max_attempts"    validate:"required,min=1,max=10"`
	InitialBackoff time.Duration `koanf:"initial_backoff" validate:"required,min=1ms"`
	MaxBackoff     time.Duration `koanf:"max_backoff"     validate:"required,min=1ms"`
}

// defaults returns the default configuration values.
func defaults() map[string]any {
	return map[string]any{
		"app.name":        "quoteswipe",
		"app.version":     "dev",
		"app.environment": "local",

		"server.port":             DefaultServerPort,
		"server.host":             "0.0.0.0",
		"server.read_timeout":     "30s",
		"server.write_timeout":    "30s",
		"server.idle_timeout":     "120s",
		"server.shutdown_timeout": "10s",
		"server.request_timeout":  "15s",
		"server.max_request_size": DefaultMaxRequestSize,

		"log.level":            "info",
		"log.format":           "json",
		"log.file.enabled":     false,
		"log.file.path":        "./logs/quoteswipe.log",
		"log.file.max_size":    DefaultLogFileMaxSizeMB,
		"log.file.max_backups": DefaultLogFileMaxBackups,
		"log.file.max_age":     DefaultLogFileMaxAgeDays,
		"log.file.compress":    true,

		"telemetry.enabled":       false,
		"telemetry.endpoint":      "",
		"telemetry.service_name":  "quoteswipe",
		"telemetry.sampling_rate": 1.0,
		"telemetry.insecure":      true,

		"cors.allowed_origins":   []string{"http://localhost:3000"},
		"cors.allow_credentials": true,
		"cors.max_age":           "12h",

		"client.timeout":                           "10s",
		"client.retry.max_attempts":                DefaultClientRetryMaxAttempts,
		"client.retry.initial_interval":            "100ms",
		"client.retry.max_interval":                "5s",
		"client.retry.multiplier":                  DefaultClientRetryMultiplier,
		"client.retry.jitter_factor":               DefaultClientRetryJitterFactor,
		"client.circuit_breaker.max_failures":      DefaultClientCircuitMaxFailures,
		"client.circuit_breaker.timeout":           "30s",
		"client.circuit_breaker.half_open_limit":   DefaultClientCircuitHalfOpenLimit,
		"client.transport.max_idle_conns":          DefaultTransportMaxIdleConns,
		"client.transport.max_idle_conns_per_host": DefaultTransportMaxIdleConnsPerHost,
		"client.transport.idle_conn_timeout":       "90s",

		"services.upstream.base_url": "http://localhost:3000",
		"services.upstream.name":     "quote-api",

		"feed.swipe_threshold":   DefaultSwipeThreshold,
		"feed.guest_swipe_limit": DefaultGuestSwipeLimit,
		"feed.promo_interval":    DefaultPromoInterval,
		"feed.history_depth":     DefaultHistoryDepth,
		"feed.button_offset":     DefaultButtonOffset,
		"feed.undo_offset":       DefaultUndoOffset,
		"feed.commit_delay":      "300ms",
		"feed.button_delay":      "300ms",
		"feed.undo_delay":        "300ms",
		"feed.settle_delay":      "50ms",
		"feed.navigation_lock":   "500ms",
		"feed.search_page_size":  DefaultSearchPageSize,

		"cache.quotes_ttl":       "5m",
		"cache.categories_ttl":   "1h",
		"cache.marketing_ttl":    "10m",
		"cache.preferences_ttl":  "30m",
		"cache.search_ttl":       "10m",
		"cache.janitor_interval": "1m",
		"cache.max_age":          "2h",

		"session.idle_timeout":   "30m",
		"session.sweep_interval": "1m",
		"session.storage_quota":  DefaultStorageQuota,
		"session.promo_cooldown": "24h",

		"sync.workers":         DefaultSyncWorkers,
		"sync.buffer_size":     DefaultSyncBuffer,
		"sync.max_attempts":    DefaultSyncAttempts,
		"sync.initial_backoff": "200ms",
		"sync.max_backoff":     "5s",
	}
}

// Load loads configuration with the following precedence (highest to lowest):
//  1. Environment variables (APP_ prefix), including those from a .env file
//  2. Profile config file (configs/{profile}.yaml)
//  3. Base config file (configs/base.yaml)
//  4. Default values
func Load(profile string) (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	k := koanf.New(".")

	d := defaults()

	err := k.Load(confmap.Provider(d, "."), nil)
	if err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	err = loadFileIfExists(k, "configs/base.yaml")
	if err != nil {
		return nil, fmt.Errorf("loading base config: %w", err)
	}

	if profile != "" {
		profilePath := fmt.Sprintf("configs/%s.yaml", profile)

		err := loadFileIfExists(k, profilePath)
		if err != nil {
			return nil, fmt.Errorf("loading profile config %q: %w", profile, err)
		}
	}

	err = k.Load(env.Provider("APP_", ".", envKeyMapper(d)), nil)
	if err != nil {
		return nil, fmt.Errorf("loading env vars: %w", err)
	}

	var cfg Config

	err = k.Unmarshal("", &cfg)
	if err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return &cfg, nil
}

// envKeyMapper maps APP_FEED_GUEST_SWIPE_LIMIT onto feed.guest_swipe_limit.
// Known keys are matched exactly so underscores inside a key survive; unknown
// variables fall back to treating every underscore as a level separator.
func envKeyMapper(known map[string]any) func(string) string {
	lookup := make(map[string]string, len(known))
	for key := range known {
		lookup[strings.ReplaceAll(key, ".", "_")] = key
	}

	return func(s string) string {
		name := strings.ToLower(strings.TrimPrefix(s, "APP_"))
		if key, ok := lookup[name]; ok {
			return key
		}

		return strings.ReplaceAll(name, "_", ".")
	}
}

// loadDotEnv exports variables from path into the process environment
// without overriding ones that are already set.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	return godotenv.Load(path)
}

// loadFileIfExists loads a YAML config file if it exists.
// Returns nil if the file doesn't exist, error only for parse/read failures.
func loadFileIfExists(k *koanf.Koanf, path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	return k.Load(file.Provider(path), yaml.Parser())
}
