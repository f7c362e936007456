package config

import (
	"fmt"
	"net/url"
	"os"

	"gopkg.in/yaml.v3"
)

// DebugParam is the page URL query parameter that enables verbose
// diagnostic logging. It is read once at startup.
const DebugParam = "debug_inactivity"

type Config struct {
	Page    PageConfig    `yaml:"page"`
	Monitor MonitorConfig `yaml:"monitor"`
	Harness HarnessConfig `yaml:"harness"`
	Logging LoggingConfig `yaml:"logging"`
}

// PageConfig describes the simulated embedding context the harness starts
// with.
type PageConfig struct {
	URL      string `yaml:"url"`
	Embedded bool   `yaml:"embedded"`
	Hidden   bool   `yaml:"hidden"`
	Focused  bool   `yaml:"focused"`
}

type MonitorConfig struct {
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

type HarnessConfig struct {
	ListenAddr string `yaml:"listen_addr"`
	Mode       string `yaml:"mode"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (cfg *Config) applyDefaults() {
	if cfg.Page.URL == "" {
		cfg.Page.URL = "https://localhost/?embedded=true"
		cfg.Page.Embedded = true
		cfg.Page.Focused = true
	}
	if cfg.Monitor.TimeoutSeconds == 0 {
		cfg.Monitor.TimeoutSeconds = 60
	}
	if cfg.Harness.ListenAddr == "" {
		cfg.Harness.ListenAddr = ":8091"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}

// DebugFromPageURL reports whether the page URL carries
// debug_inactivity=true. Unparseable URLs leave debugging off.
func DebugFromPageURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return u.Query().Get(DebugParam) == "true"
}
