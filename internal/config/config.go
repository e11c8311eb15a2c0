// Package config provides server configuration loaded from environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const logPrefix = "config:LoadConfig"

// Config holds interaction-router configuration.
type Config struct {
	// DiscordPublicKey is the application's hex-encoded Ed25519 public key.
	DiscordPublicKey string `envconfig:"DISCORD_PUBLIC_KEY"`

	// HTTP listener (HTTP_ADDR preferred, e.g. "0.0.0.0:3000")
	HTTPAddr         string        `envconfig:"HTTP_ADDR"`
	HTTPPort         int           `envconfig:"HTTP_PORT" default:"3000"`
	InteractionsPath string        `envconfig:"INTERACTIONS_PATH" default:"/api/interactions"`
	MaxBodyBytes     int64         `envconfig:"MAX_BODY_BYTES" default:"1048576"`
	HandlerTimeout   time.Duration `envconfig:"HANDLER_TIMEOUT" default:"3s"`
	ShutdownTimeout  time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`

	// Static command files, comma-separated; later files override earlier ones
	// (empty = config/commands.json or commands.json when present)
	CommandsFiles []string `envconfig:"COMMANDS_FILE"`

	// COMMS: publish dispatch events to NATS at COMMSURL. Empty disables events.
	COMMSURL      string `envconfig:"COMMS_URL"`
	COMMSName     string `envconfig:"SERVICE_NAME" default:"interaction-router"`
	EventSubject  string `envconfig:"EVENT_SUBJECT"`
	EventCommands bool   `envconfig:"EVENT_COMMAND_SUBJECTS" default:"false"`

	// Tracing (empty endpoint disables export)
	OTELEndpoint string `envconfig:"OTEL_ENDPOINT"`

	// Logging
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// LoadConfig loads configuration from environment variables. Files listed in
// envFiles (".env" when none are given) are loaded first when they exist;
// variables already set in the environment win.
func LoadConfig(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s - failed to load %s: %w", logPrefix, f, err)
		}
	}

	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// ValidateForServe checks required config when running the interactions server.
func (c *Config) ValidateForServe() error {
	if strings.TrimSpace(c.DiscordPublicKey) == "" {
		return fmt.Errorf("%s - DISCORD_PUBLIC_KEY is required for serve", logPrefix)
	}
	if c.HTTPAddr == "" && (c.HTTPPort <= 0 || c.HTTPPort > 65535) {
		return fmt.Errorf("%s - HTTP_PORT must be between 1 and 65535", logPrefix)
	}
	if !strings.HasPrefix(c.InteractionsPath, "/") {
		return fmt.Errorf("%s - INTERACTIONS_PATH must start with /", logPrefix)
	}
	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("%s - MAX_BODY_BYTES must be positive", logPrefix)
	}
	if c.HandlerTimeout <= 0 {
		return fmt.Errorf("%s - HANDLER_TIMEOUT must be positive", logPrefix)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("%s - SHUTDOWN_TIMEOUT must be positive", logPrefix)
	}
	if _, ok := parseLevel(c.LogLevel); !ok {
		return fmt.Errorf("%s - LOG_LEVEL %q is not one of debug, info, warn, error", logPrefix, c.LogLevel)
	}
	return nil
}

// ListenAddr returns HTTPAddr when set, otherwise ":<HTTPPort>".
func (c *Config) ListenAddr() string {
	if c.HTTPAddr != "" {
		return c.HTTPAddr
	}
	return net.JoinHostPort("", strconv.Itoa(c.HTTPPort))
}

// SlogLevel maps LogLevel to a slog level, falling back to info.
func (c *Config) SlogLevel() slog.Level {
	level, _ := parseLevel(c.LogLevel)
	return level
}

func parseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, true
	case "info", "":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}
