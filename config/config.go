// Package config loads composition-root configuration for bridge
// processes: which registry backend to use and how to reach it.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
)

// Backend names accepted in the config file.
const (
	BackendMemory    = "memory"
	BackendNATS      = "nats"
	BackendWebSocket = "websocket"
)

// Common errors.
var (
	ErrUnknownBackend = errors.New("unknown backend")
	ErrMissingTopic   = errors.New("topic must not be empty")
)

// Config is the full bridge process configuration.
type Config struct {
	// Topic is the channel name shared by both ends of the bridge.
	Topic string `toml:"topic"`

	// Backend selects the registry implementation.
	Backend string `toml:"backend"`

	// LogLevel is debug, info, warn or error.
	LogLevel string `toml:"log_level"`

	NATS      NATSConfig      `toml:"nats"`
	WebSocket WebSocketConfig `toml:"websocket"`
}

// NATSConfig holds settings for the NATS backend.
type NATSConfig struct {
	URL            string   `toml:"url"`
	Name           string   `toml:"name"`
	Token          string   `toml:"token"`
	User           string   `toml:"user"`
	Password       string   `toml:"password"`
	ConnectTimeout Duration `toml:"connect_timeout"`
}

// Duration wraps time.Duration so TOML values like "5s" decode.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// WebSocketConfig holds settings for the WebSocket backend.
type WebSocketConfig struct {
	// URL to dial when this process initiates the peer link.
	URL string `toml:"url"`

	// Listen address when this process accepts the peer link.
	Listen string `toml:"listen"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Topic:    "tasks/ui",
		Backend:  BackendMemory,
		LogLevel: "info",
		NATS: NATSConfig{
			URL:            "nats://localhost:4222",
			ConnectTimeout: Duration{5 * time.Second},
		},
	}
}

// Load reads a TOML config file, applying defaults for unset fields.
func Load(path string) (Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration for consistency.
func (c Config) Validate() error {
	if c.Topic == "" {
		return ErrMissingTopic
	}
	switch c.Backend {
	case BackendMemory, BackendNATS, BackendWebSocket:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, c.Backend)
	}
	if c.Backend == BackendWebSocket && c.WebSocket.URL == "" && c.WebSocket.Listen == "" {
		return errors.New("websocket backend needs url or listen")
	}
	return nil
}
