package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/mrapplexz/hack-digital-ambulance/core/window"
)

// Config is the full service configuration.
type Config struct {
	Window      WindowConfig      `json:"window"`
	Models      ModelsConfig      `json:"models"`
	Substations SubstationsConfig `json:"substations"`
	Cache       CacheConfig       `json:"cache"`
	Engine      EngineConfig      `json:"engine"`
	API         APIConfig         `json:"api"`
	Metrics     MetricsConfig     `json:"metrics"`
}

// WindowConfig bounds the inference window. Times are RFC3339.
type WindowConfig struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Window parses and validates the configured bounds.
func (c WindowConfig) Window() (window.Window, error) {
	from, err := time.Parse(time.RFC3339, c.From)
	if err != nil {
		return window.Window{}, fmt.Errorf("window.from: %w", err)
	}
	to, err := time.Parse(time.RFC3339, c.To)
	if err != nil {
		return window.Window{}, fmt.Errorf("window.to: %w", err)
	}
	return window.New(from, to)
}

// ModelsConfig locates the trained artifact root (one directory per substation).
type ModelsConfig struct {
	Dir string `json:"dir"`
}

// SubstationsConfig locates the substation coordinate lookup file.
type SubstationsConfig struct {
	Path string `json:"path"`
}

// CacheConfig controls snapshot persistence.
type CacheConfig struct {
	// Path is the SQLite database holding cached snapshots.
	Path string `json:"path"`
	// ReuseLatest loads the most recent snapshot regardless of its key,
	// reproducing the original fixed-window deployment behavior. Off by
	// default: a changed window or artifact set is then a cache miss.
	ReuseLatest bool `json:"reuse_latest"`
}

// EngineConfig tunes the scoring fan-out.
type EngineConfig struct {
	// Workers bounds the scoring worker pool. 0 selects NumCPU.
	Workers int `json:"workers"`
}

// APIConfig configures the HTTP surface the dashboard consumes.
type APIConfig struct {
	Addr string `json:"addr"`
}

// MetricsConfig configures observability sinks.
type MetricsConfig struct {
	PrometheusEnabled bool   `json:"prometheus_enabled"`
	PrometheusPort    string `json:"prometheus_port"`
	InfluxEnabled     bool   `json:"influx_enabled"`
	InfluxURL         string `json:"influx_url"`
	InfluxToken       string `json:"influx_token"`
	InfluxOrg         string `json:"influx_org"`
	InfluxBucket      string `json:"influx_bucket"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.Window.From == "" {
		c.Window.From = "2022-05-25T00:00:00Z"
	}
	if c.Window.To == "" {
		c.Window.To = "2023-05-25T00:00:00Z"
	}
	if c.Models.Dir == "" {
		c.Models.Dir = "models"
	}
	if c.Substations.Path == "" {
		c.Substations.Path = "substations.json"
	}
	if c.Cache.Path == "" {
		c.Cache.Path = "snapshots.db"
	}
	if c.API.Addr == "" {
		c.API.Addr = ":8050"
	}
	if c.Metrics.PrometheusPort == "" {
		c.Metrics.PrometheusPort = ":9100"
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if _, err := c.Window.Window(); err != nil {
		return err
	}
	if c.Engine.Workers < 0 {
		return fmt.Errorf("engine.workers must not be negative")
	}
	if c.Metrics.InfluxEnabled && c.Metrics.InfluxURL == "" {
		return fmt.Errorf("metrics.influx_url is required when influx is enabled")
	}
	return nil
}

// Load reads the configuration file and applies HDA_ environment overrides.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("HDA_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "hda_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
