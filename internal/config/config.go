// Package config loads runtime configuration for touchrelay.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultListenAddr     = "127.0.0.1:8790"
	defaultHubAddr        = "localhost:8765"
	defaultDataDir        = "./data"
	defaultPushURL        = "ws://localhost:8765/ws"
	defaultPullURL        = "http://localhost:8765/data"
	defaultWriteBackURL   = "http://localhost:8765/data"
	defaultPollIntervalMs = 100
	defaultHighlightMs    = 2000
	defaultCursorSize     = 10
	defaultStartURL       = "about:blank"
	defaultWriteBackRate  = 5
	defaultBridgeBuffer   = 64
	defaultLogLevel       = "info"
)

// Config holds runtime configuration values.
type Config struct {
	ListenAddr       string `yaml:"listen_addr"`
	HubAddr          string `yaml:"hub_addr"`
	DataDir          string `yaml:"-"`
	ConfigFile       string `yaml:"-"`
	PushURL          string `yaml:"push_url"`
	PullURL          string `yaml:"pull_url"`
	WriteBackURL     string `yaml:"writeback_url"`
	PollIntervalMs   int    `yaml:"poll_interval_ms"`
	HighlightMs      int    `yaml:"highlight_ms"`
	CursorSize       int    `yaml:"cursor_size"`
	StartURL         string `yaml:"start_url"`
	BrowserWSURL     string `yaml:"browser_ws_url"`
	Headless         bool   `yaml:"headless"`
	NormalizedCoords bool   `yaml:"normalized_coords"`
	WriteBackRate    int    `yaml:"writeback_rate"`
	BridgeBuffer     int    `yaml:"bridge_buffer"`
	LogLevel         string `yaml:"log_level"`
}

// PollInterval returns the pull transport interval.
func (c Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMs) * time.Millisecond
}

// HighlightFor returns how long a drag highlight stays on screen.
func (c Config) HighlightFor() time.Duration {
	return time.Duration(c.HighlightMs) * time.Millisecond
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		ListenAddr:     defaultListenAddr,
		HubAddr:        defaultHubAddr,
		DataDir:        defaultDataDir,
		ConfigFile:     filepath.Join(defaultDataDir, "touchrelay.yaml"),
		PushURL:        defaultPushURL,
		PullURL:        defaultPullURL,
		WriteBackURL:   defaultWriteBackURL,
		PollIntervalMs: defaultPollIntervalMs,
		HighlightMs:    defaultHighlightMs,
		CursorSize:     defaultCursorSize,
		StartURL:       defaultStartURL,
		WriteBackRate:  defaultWriteBackRate,
		BridgeBuffer:   defaultBridgeBuffer,
		LogLevel:       defaultLogLevel,
	}
}

// Load reads configuration from defaults, an optional YAML file, ./data/.env and
// environment variables, in increasing order of precedence.
func Load() (Config, error) {
	cfg := Default()
	cfg.DataDir = envString("DATA_DIR", cfg.DataDir)

	if err := loadEnvFile(filepath.Join(cfg.DataDir, ".env")); err != nil {
		return Config{}, err
	}

	cfg.ConfigFile = envString("CONFIG_FILE", filepath.Join(cfg.DataDir, "touchrelay.yaml"))
	if err := loadYAMLFile(cfg.ConfigFile, &cfg); err != nil {
		return Config{}, err
	}

	cfg.ListenAddr = envString("LISTEN_ADDR", cfg.ListenAddr)
	cfg.HubAddr = envString("HUB_ADDR", cfg.HubAddr)
	cfg.PushURL = envString("PUSH_URL", cfg.PushURL)
	cfg.PullURL = envString("PULL_URL", cfg.PullURL)
	cfg.WriteBackURL = envString("WRITEBACK_URL", cfg.WriteBackURL)
	cfg.StartURL = envString("START_URL", cfg.StartURL)
	cfg.BrowserWSURL = envString("BROWSER_WS_URL", cfg.BrowserWSURL)
	cfg.LogLevel = envString("LOG_LEVEL", cfg.LogLevel)
	cfg.Headless = envBool("HEADLESS", cfg.Headless)
	cfg.NormalizedCoords = envBool("NORMALIZED_COORDS", cfg.NormalizedCoords)

	ints := []struct {
		key string
		dst *int
	}{
		{"POLL_INTERVAL_MS", &cfg.PollIntervalMs},
		{"HIGHLIGHT_MS", &cfg.HighlightMs},
		{"CURSOR_SIZE", &cfg.CursorSize},
		{"WRITEBACK_RATE", &cfg.WriteBackRate},
		{"BRIDGE_BUFFER", &cfg.BridgeBuffer},
	}
	for _, it := range ints {
		v, err := envInt(it.key, *it.dst)
		if err != nil {
			return Config{}, err
		}
		*it.dst = v
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.PollIntervalMs <= 0 {
		return fmt.Errorf("POLL_INTERVAL_MS must be > 0")
	}
	if c.HighlightMs < 0 {
		return fmt.Errorf("HIGHLIGHT_MS must be >= 0")
	}
	if c.CursorSize < 0 {
		return fmt.Errorf("CURSOR_SIZE must be >= 0")
	}
	if c.WriteBackRate <= 0 {
		return fmt.Errorf("WRITEBACK_RATE must be > 0")
	}
	if c.BridgeBuffer <= 0 {
		return fmt.Errorf("BRIDGE_BUFFER must be > 0")
	}
	if strings.TrimSpace(c.PullURL) == "" {
		return errors.New("PULL_URL is required")
	}
	return nil
}

// loadYAMLFile overlays values from a YAML file onto cfg. Missing files are ignored.
func loadYAMLFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// envString returns an env override when present, otherwise a default.
func envString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// envInt returns an int env override when present, otherwise a default.
func envInt(key string, def int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return value, nil
}

// envBool returns a bool env override when present, otherwise a default.
func envBool(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	switch strings.ToLower(raw) {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

// loadEnvFile loads KEY=VALUE pairs from a .env file.
func loadEnvFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}

	for _, line := range strings.Split(string(data), "\n") {
		key, value, ok := parseEnvLine(line)
		if !ok {
			continue
		}
		if _, exists := os.LookupEnv(key); !exists {
			if err := os.Setenv(key, value); err != nil {
				return err
			}
		}
	}

	return nil
}

// parseEnvLine parses a single .env line into key/value.
func parseEnvLine(line string) (string, string, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return "", "", false
	}
	line = strings.TrimPrefix(line, "export ")
	key, value, ok := strings.Cut(line, "=")
	if !ok {
		return "", "", false
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return "", "", false
	}
	return key, strings.Trim(strings.TrimSpace(value), `"'`), true
}
