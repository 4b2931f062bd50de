package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Bridge    BridgeConfig    `yaml:"bridge"`
	Inference InferenceConfig `yaml:"inference"`
	Retry     RetryConfig     `yaml:"retry"`
	Camera    CameraConfig    `yaml:"camera"`
	Voice     VoiceConfig     `yaml:"voice"`
	Pushover  PushoverConfig  `yaml:"pushover"`
	Log       LogConfig       `yaml:"log"`
}

type BridgeConfig struct {
	Addr      string `yaml:"addr"`
	AuthToken string `yaml:"auth_token"`
}

type InferenceConfig struct {
	BaseURL string `yaml:"base_url"`
	Timeout string `yaml:"timeout"`
}

type RetryConfig struct {
	MaxRetries int    `yaml:"max_retries"`
	Delay      string `yaml:"delay"`
}

type CameraConfig struct {
	Scale       float64 `yaml:"scale"`
	JPEGQuality int     `yaml:"jpeg_quality"`
}

type VoiceConfig struct {
	Feedback bool   `yaml:"feedback"`
	Language string `yaml:"language"`
}

type PushoverConfig struct {
	Token   string `yaml:"token"`
	UserKey string `yaml:"user_key"`
	Enabled bool   `yaml:"enabled"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	// Booleans that default to on are seeded before unmarshal so an absent
	// key keeps them enabled.
	cfg := Config{}
	cfg.Voice.Feedback = true

	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.setDefaults()

	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.Bridge.Addr == "" {
		c.Bridge.Addr = ":8090"
	}
	if c.Inference.BaseURL == "" {
		c.Inference.BaseURL = "http://localhost:3000"
	}
	if c.Inference.Timeout == "" {
		c.Inference.Timeout = "30s"
	}
	if c.Retry.MaxRetries == 0 {
		c.Retry.MaxRetries = 3
	}
	if c.Retry.Delay == "" {
		c.Retry.Delay = "1s"
	}
	if c.Camera.Scale == 0 {
		c.Camera.Scale = 0.7
	}
	if c.Camera.JPEGQuality == 0 {
		c.Camera.JPEGQuality = 70
	}
	if c.Voice.Language == "" {
		c.Voice.Language = "en-US"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// InferenceTimeout parses the configured timeout, falling back to 30s.
func (c *Config) InferenceTimeout() time.Duration {
	d, err := time.ParseDuration(c.Inference.Timeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// RetryDelay parses the configured retry delay, falling back to 1s.
func (c *Config) RetryDelay() time.Duration {
	d, err := time.ParseDuration(c.Retry.Delay)
	if err != nil || d <= 0 {
		return time.Second
	}
	return d
}
