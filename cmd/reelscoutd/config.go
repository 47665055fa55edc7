package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// Config file lookup.
const (
	ConfigPathEnvVar  = "REELSCOUT_CONFIG"
	DefaultConfigPath = "reelscout.yaml"
	envPrefix         = "REELSCOUT_"
)

// Config is the full daemon configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Cache     CacheConfig     `koanf:"cache"`
	Fetch     FetchConfig     `koanf:"fetch"`
	Scrape    ScrapeConfig    `koanf:"scrape"`
	Schedule  ScheduleConfig  `koanf:"schedule"`
	Recommend RecommendConfig `koanf:"recommend"`
	Logging   LoggingConfig   `koanf:"logging"`
	Sources   []SourceConfig  `koanf:"sources" validate:"dive"`
}

type ServerConfig struct {
	Addr      string `koanf:"addr" validate:"required"`
	APIKey    string `koanf:"api_key"`
	RateLimit int    `koanf:"rate_limit"`
}

type DatabaseConfig struct {
	Path string `koanf:"path" validate:"required"`
}

// CacheConfig points at the badger directory. An empty path keeps the
// cache in memory.
type CacheConfig struct {
	Path string `koanf:"path"`
}

type FetchConfig struct {
	Timeout   time.Duration  `koanf:"timeout" validate:"gt=0"`
	UserAgent string         `koanf:"user_agent"`
	Enhanced  EnhancedConfig `koanf:"enhanced"`
	Relay     RelayConfig    `koanf:"relay"`
	Breaker   BreakerConfig  `koanf:"breaker"`
}

// EnhancedConfig selects the JavaScript-capable backend tried before the
// relay: a local headless browser or a remote rendering API.
type EnhancedConfig struct {
	Mode     string        `koanf:"mode" validate:"oneof=none browser render"`
	APIURL   string        `koanf:"api_url" validate:"required_if=Mode render,omitempty,url"`
	APIKey   string        `koanf:"api_key" validate:"required_if=Mode render"`
	Proxy    string        `koanf:"proxy"`
	MaxPages int64         `koanf:"max_pages" validate:"gte=0"`
	Timeout  time.Duration `koanf:"timeout" validate:"gte=0"`
}

type RelayConfig struct {
	URL string `koanf:"url" validate:"omitempty,url"`
}

type BreakerConfig struct {
	Failures uint32        `koanf:"failures"`
	Timeout  time.Duration `koanf:"timeout"`
}

type ScrapeConfig struct {
	Concurrency int           `koanf:"concurrency" validate:"gte=1,lte=32"`
	MaxRetries  int           `koanf:"max_retries" validate:"gte=1,lte=10"`
	BaseDelay   time.Duration `koanf:"base_delay" validate:"gte=0"`
	Jitter      float64       `koanf:"jitter" validate:"gte=0,lte=1"`
	RateLimit   float64       `koanf:"rate_limit" validate:"gte=0"`
	Limit       int           `koanf:"limit" validate:"gte=1,lte=500"`
}

type ScheduleConfig struct {
	Enabled        bool          `koanf:"enabled"`
	ScrapeInterval time.Duration `koanf:"scrape_interval" validate:"gt=0"`
	TaskInterval   time.Duration `koanf:"task_interval" validate:"gt=0"`
	TaskBatch      int           `koanf:"task_batch" validate:"gte=1"`
	ActiveWindow   time.Duration `koanf:"active_window" validate:"gt=0"`
	RefreshWorkers int           `koanf:"refresh_workers" validate:"gte=1"`
}

type RecommendConfig struct {
	Strategy         string `koanf:"strategy" validate:"oneof=weighted recent"`
	TargetYearWindow int    `koanf:"target_year_window" validate:"gte=0"`
}

type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=debug info warn error"`
	Format string `koanf:"format" validate:"oneof=json console"`
}

// SourceConfig overrides a built-in source or declares a new one. Empty
// fields keep the built-in value.
type SourceConfig struct {
	ID          string              `koanf:"id" validate:"required"`
	Name        string              `koanf:"name"`
	BaseURL     string              `koanf:"base_url" validate:"omitempty,url"`
	ContentType string              `koanf:"content_type" validate:"omitempty,oneof=drama anime movie bollywood"`
	Active      *bool               `koanf:"active"`
	ListPaths   []string            `koanf:"list_paths"`
	SearchPath  string              `koanf:"search_path"`
	DetailsPath string              `koanf:"details_path"`
	Selectors   map[string][]string `koanf:"selectors"`
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Addr:      ":8080",
			RateLimit: 120,
		},
		Database: DatabaseConfig{
			Path: "reelscout.db",
		},
		Fetch: FetchConfig{
			Timeout: 30 * time.Second,
			Enhanced: EnhancedConfig{
				Mode:     "none",
				MaxPages: 75,
				Timeout:  45 * time.Second,
			},
			Breaker: BreakerConfig{
				Failures: 5,
				Timeout:  time.Minute,
			},
		},
		Scrape: ScrapeConfig{
			Concurrency: 2,
			MaxRetries:  3,
			BaseDelay:   time.Second,
			Jitter:      0.2,
			RateLimit:   1,
			Limit:       20,
		},
		Schedule: ScheduleConfig{
			Enabled:        true,
			ScrapeInterval: 6 * time.Hour,
			TaskInterval:   30 * time.Second,
			TaskBatch:      10,
			ActiveWindow:   30 * 24 * time.Hour,
			RefreshWorkers: 4,
		},
		Recommend: RecommendConfig{
			Strategy:         "weighted",
			TargetYearWindow: 3,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadConfig layers struct defaults, the YAML file at path and REELSCOUT_*
// environment variables, in increasing priority. An empty path falls back
// to $REELSCOUT_CONFIG, then ./reelscout.yaml when it exists.
func LoadConfig(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	explicit := path != ""
	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			if explicit {
				return nil, fmt.Errorf("config file %s: %w", path, err)
			}
		} else if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKeys(k)), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	return validator.New(validator.WithRequiredStructEnabled()).Struct(c)
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		return p
	}
	if _, err := os.Stat(DefaultConfigPath); err == nil {
		return DefaultConfigPath
	}
	return ""
}

// envKeys maps REELSCOUT_FETCH_ENHANCED_API_KEY to fetch.enhanced.api_key
// using the keys already loaded, since underscores are ambiguous between
// nesting and word breaks. Unknown variables are ignored.
func envKeys(k *koanf.Koanf) func(string) string {
	known := make(map[string]string)
	for _, key := range k.Keys() {
		known[strings.ToUpper(envPrefix+strings.ReplaceAll(key, ".", "_"))] = key
	}
	return func(name string) string {
		if name == ConfigPathEnvVar {
			return ""
		}
		return known[strings.ToUpper(name)]
	}
}
