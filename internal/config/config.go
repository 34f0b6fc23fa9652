package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	defaultListenAddr   = ":8080"
	defaultControlAddr  = ""
	defaultDBPath       = "timerd.db"
	defaultLogLevel     = "info"
	defaultTickInterval = 100 * time.Millisecond
	defaultTimezone     = "Local"

	envPrefix = "TIMERD"

	// envConfigFile names an optional YAML config file. Environment
	// variables override values read from it.
	envConfigFile = "TIMERD_CONFIG"
)

// Config holds application configuration loaded from an optional file and
// TIMERD_* environment variables.
type Config struct {
	ListenAddr string
	// ControlAddr is the framed socket listener address (unix:/path,
	// tcp:host:port or vsock:port). Empty disables the listener.
	ControlAddr  string
	DBPath       string
	LogLevel     slog.Level
	TickInterval time.Duration
	// PresetsPath is a YAML presets file. Empty uses the built-in presets.
	PresetsPath   string
	StatsLocation *time.Location
}

type rawConfig struct {
	ListenAddr    string        `mapstructure:"listen_addr"`
	ControlAddr   string        `mapstructure:"control_addr"`
	DBPath        string        `mapstructure:"db_path"`
	LogLevel      string        `mapstructure:"log_level"`
	TickInterval  time.Duration `mapstructure:"tick_interval"`
	PresetsPath   string        `mapstructure:"presets_path"`
	StatsTimezone string        `mapstructure:"stats_timezone"`
}

// Load reads configuration with sensible defaults. Env var overrides use
// prefix TIMERD_, e.g. TIMERD_LISTEN_ADDR.
func Load() (Config, error) {
	v := viper.New()

	v.SetDefault("listen_addr", defaultListenAddr)
	v.SetDefault("control_addr", defaultControlAddr)
	v.SetDefault("db_path", defaultDBPath)
	v.SetDefault("log_level", defaultLogLevel)
	v.SetDefault("tick_interval", defaultTickInterval)
	v.SetDefault("presets_path", "")
	v.SetDefault("stats_timezone", defaultTimezone)

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if path := os.Getenv(envConfigFile); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var raw rawConfig
	if err := v.Unmarshal(&raw); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if raw.TickInterval <= 0 {
		return Config{}, errors.New("tick_interval must be positive")
	}

	loc, err := time.LoadLocation(raw.StatsTimezone)
	if err != nil {
		return Config{}, fmt.Errorf("stats_timezone: %w", err)
	}

	return Config{
		ListenAddr:    raw.ListenAddr,
		ControlAddr:   raw.ControlAddr,
		DBPath:        raw.DBPath,
		LogLevel:      parseLogLevel(raw.LogLevel),
		TickInterval:  raw.TickInterval,
		PresetsPath:   raw.PresetsPath,
		StatsLocation: loc,
	}, nil
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger creates a structured JSON logger writing to w at the configured level.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
}
