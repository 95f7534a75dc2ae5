// Package config loads server settings from a YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	Server      ServerConfig      `yaml:"server"`
	WebSocket   WebSocketConfig   `yaml:"websocket"`
	Matchmaking MatchmakingConfig `yaml:"matchmaking"`
	Log         LogConfig         `yaml:"log"`
}

type ServerConfig struct {
	Addr         string   `yaml:"addr"`
	AllowOrigins []string `yaml:"allow_origins"`
}

type WebSocketConfig struct {
	ReadBufferSize  int `yaml:"read_buffer_size"`
	WriteBufferSize int `yaml:"write_buffer_size"`
}

type MatchmakingConfig struct {
	Interval time.Duration `yaml:"interval"`
	Wait     time.Duration `yaml:"wait"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:         ":3000",
			AllowOrigins: []string{"http://localhost:5173"},
		},
		WebSocket: WebSocketConfig{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		Matchmaking: MatchmakingConfig{
			Interval: time.Second,
			Wait:     30 * time.Second,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var logLevels = map[string]bool{
	"trace": true, "debug": true, "info": true, "warn": true, "error": true,
}

func (c Config) Validate() error {
	switch {
	case c.Server.Addr == "":
		return fmt.Errorf("%w: server.addr is empty", ErrInvalidConfig)
	case c.WebSocket.ReadBufferSize <= 0 || c.WebSocket.WriteBufferSize <= 0:
		return fmt.Errorf("%w: websocket buffer sizes must be positive", ErrInvalidConfig)
	case c.Matchmaking.Interval <= 0:
		return fmt.Errorf("%w: matchmaking.interval must be positive", ErrInvalidConfig)
	case c.Matchmaking.Wait < 0:
		return fmt.Errorf("%w: matchmaking.wait must not be negative", ErrInvalidConfig)
	case !logLevels[c.Log.Level]:
		return fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, c.Log.Level)
	}
	return nil
}
