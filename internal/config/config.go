// Package config loads taskdesk settings from defaults, an optional YAML
// file and TASKDESK_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g.
// TASKDESK_API_BASE_URL for api.base_url.
const EnvPrefix = "TASKDESK"

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	API   APIConfig   `mapstructure:"api"`
	UI    UIConfig    `mapstructure:"ui"`
	Store StoreConfig `mapstructure:"store"`
	Log   LogConfig   `mapstructure:"log"`
}

type APIConfig struct {
	BaseURL    string `mapstructure:"base_url" validate:"required,url"`
	TimeoutMs  int    `mapstructure:"timeout_ms" validate:"gte=100,lte=300000"`
	MaxRetries int    `mapstructure:"max_retries" validate:"gte=0,lte=5"`
}

type UIConfig struct {
	PageSize         int   `mapstructure:"page_size" validate:"gt=0,lte=500"`
	PageSizes        []int `mapstructure:"page_sizes" validate:"min=1,dive,gt=0,lte=500"`
	FilterDebounceMs int   `mapstructure:"filter_debounce_ms" validate:"gte=0,lte=5000"`
}

type StoreConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

type LogConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	File  string `mapstructure:"file"`
}

// Timeout is the per-request HTTP timeout.
func (c APIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

// FilterDebounce is how long filter typing must pause before a fetch.
func (c UIConfig) FilterDebounce() time.Duration {
	return time.Duration(c.FilterDebounceMs) * time.Millisecond
}

// NextPageSize returns the page size after current in PageSizes, wrapping
// around. step is +1 or -1.
func (c UIConfig) NextPageSize(current, step int) int {
	if len(c.PageSizes) == 0 {
		return current
	}
	i := slices.Index(c.PageSizes, current)
	if i < 0 {
		return c.PageSizes[0]
	}
	n := len(c.PageSizes)
	return c.PageSizes[((i+step)%n+n)%n]
}

// Dir returns the directory holding taskdesk's local files (~/.taskdesk).
func Dir() (string, error) {
	if d := os.Getenv(EnvPrefix + "_HOME"); d != "" {
		return d, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, ".taskdesk"), nil
}

func setDefaults(v *viper.Viper, dir string) {
	v.SetDefault("api.base_url", "http://localhost:8080/api")
	v.SetDefault("api.timeout_ms", 15000)
	v.SetDefault("api.max_retries", 2)
	v.SetDefault("ui.page_size", 10)
	v.SetDefault("ui.page_sizes", []int{5, 10, 25, 50})
	v.SetDefault("ui.filter_debounce_ms", 300)
	v.SetDefault("store.path", filepath.Join(dir, "taskdesk.db"))
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", filepath.Join(dir, "taskdesk.log"))
}

// Load reads the configuration. An empty path looks for config.yaml in
// Dir() and tolerates its absence; an explicit path must exist.
func Load(path string) (*Config, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v, dir)

	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(dir)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field ranges and that the default page size is offered.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if !slices.Contains(c.UI.PageSizes, c.UI.PageSize) {
		return fmt.Errorf("%w: ui.page_size %d is not one of ui.page_sizes %v",
			ErrInvalidConfig, c.UI.PageSize, c.UI.PageSizes)
	}
	return nil
}
