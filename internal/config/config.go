// Package config loads the threatstage configuration: analysis backend
// endpoints, state directory, server address, playback cadence, and alert
// webhooks.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/threatstage/internal/alert"
)

// Backend describes one OpenAI-compatible analysis endpoint.
type Backend struct {
	APIURL  string        `yaml:"api_url"`
	APIKey  string        `yaml:"api_key"`
	Model   string        `yaml:"model"`
	Timeout time.Duration `yaml:"timeout"`
}

// Config holds all configurable parameters.
type Config struct {
	StateDir   string `yaml:"state_dir"`
	ListenAddr string `yaml:"listen_addr"`

	Gateway  Backend `yaml:"gateway"`
	Fallback Backend `yaml:"fallback"` // optional rate-limit fallback backend

	PlaybackInterval time.Duration         `yaml:"playback_interval"`
	Alerts           []alert.WebhookConfig `yaml:"alerts"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	stateDir := ""
	if home, err := os.UserHomeDir(); err == nil {
		stateDir = filepath.Join(home, ".threatstage")
	}
	return &Config{
		StateDir:   stateDir,
		ListenAddr: "127.0.0.1:8471",
		Gateway: Backend{
			APIURL:  "https://api.openai.com/v1/chat/completions",
			Model:   "gpt-4o-mini",
			Timeout: 90 * time.Second,
		},
		PlaybackInterval: 750 * time.Millisecond,
	}
}

// Load reads configuration from a YAML file and applies environment
// overrides. Empty path falls back to ~/.threatstage/config.yaml.
// Missing file returns defaults. Invalid YAML returns an error.
func Load(path string) (*Config, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			cfg := DefaultConfig()
			applyEnv(cfg)
			return cfg, nil
		}
		path = filepath.Join(home, ".threatstage", "config.yaml")
	}

	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else {
		// Start with defaults, YAML overwrites only specified fields
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

// applyEnv overlays environment variables onto the config. Environment
// wins over both defaults and file values.
func applyEnv(cfg *Config) {
	if v := os.Getenv("THREATSTAGE_API_URL"); v != "" {
		cfg.Gateway.APIURL = v
	}
	if v := os.Getenv("THREATSTAGE_API_KEY"); v != "" {
		cfg.Gateway.APIKey = v
	}
	if v := os.Getenv("THREATSTAGE_MODEL"); v != "" {
		cfg.Gateway.Model = v
	}
	if v := os.Getenv("THREATSTAGE_STATE_DIR"); v != "" {
		cfg.StateDir = v
	}
	if v := os.Getenv("THREATSTAGE_LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
}

// Validate reports configuration problems that would fail at first use.
func (c *Config) Validate() error {
	if c.Gateway.APIURL == "" {
		return fmt.Errorf("gateway.api_url is required")
	}
	if c.Gateway.Model == "" {
		return fmt.Errorf("gateway.model is required")
	}
	if c.Fallback.APIURL != "" && c.Fallback.Model == "" {
		return fmt.Errorf("fallback.model is required when fallback.api_url is set")
	}
	if c.PlaybackInterval < 0 {
		return fmt.Errorf("playback_interval must not be negative")
	}
	for i, a := range c.Alerts {
		if a.URL == "" {
			return fmt.Errorf("alerts[%d].url is required", i)
		}
		switch a.Format {
		case "", "generic", "slack", "pagerduty":
		default:
			return fmt.Errorf("alerts[%d].format %q is not one of generic, slack, pagerduty", i, a.Format)
		}
	}
	return nil
}

// HasFallback reports whether a rate-limit fallback backend is configured.
func (c *Config) HasFallback() bool {
	return c.Fallback.APIURL != ""
}

// DefaultConfigYAML returns a commented YAML string for init.
func DefaultConfigYAML() string {
	return `# threatstage configuration
# Generated by: threatstage init

# Directory for session history and other state.
# Override with THREATSTAGE_STATE_DIR.
#state_dir: ~/.threatstage

# Address the API server binds to (threatstage serve).
listen_addr: "127.0.0.1:8471"

# Primary analysis backend (OpenAI-compatible chat completions API).
# api_url and api_key can be overridden with THREATSTAGE_API_URL and
# THREATSTAGE_API_KEY; model with THREATSTAGE_MODEL.
gateway:
  api_url: "https://api.openai.com/v1/chat/completions"
  api_key: ""
  model: "gpt-4o-mini"
  timeout: 90s

# Optional fallback backend, used once per run when the primary returns
# HTTP 429 during countermeasure testing.
#fallback:
#  api_url: ""
#  api_key: ""
#  model: ""

# Pause between revealed interaction log steps.
playback_interval: 750ms

# Webhook alert destinations.
# events: scenario_complete | run_failed | countermeasure_tested
# format: generic | slack | pagerduty
#alerts:
#  - url: "https://hooks.slack.com/services/XXX"
#    format: slack
#    events: [scenario_complete, run_failed]
`
}
