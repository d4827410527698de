// Package config resolves runtime settings from defaults and COPILOT_*
// environment variables.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Decoder modes.
const (
	DecoderDocument = "document"
	DecoderRawScan  = "rawscan"
)

// defaultStorePath is where the Copilot Money desktop app keeps its local
// document cache.
const defaultStorePath = "Library/Containers/com.copilot.production/Data/Library/" +
	"Application Support/firestore/__FIRAPP_DEFAULT/copilot-production-22904/main"

type Config struct {
	// DBPath is the store directory to read.
	DBPath string `mapstructure:"db_path"`
	// ListenAddr is the HTTP listen address of the serve command.
	ListenAddr string `mapstructure:"listen_addr"`
	// Decoder selects the decode path: document or rawscan.
	Decoder string `mapstructure:"decoder"`
	// CopyTTL is the idle lifetime of temporary store copies.
	CopyTTL time.Duration `mapstructure:"copy_ttl"`
	// CacheTTL is the lifetime of memoized decode results.
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
	// TempRoot overrides the parent directory for temporary copies.
	TempRoot string `mapstructure:"temp_root"`
	LogLevel string `mapstructure:"log_level"`
}

// Load resolves the configuration from defaults overridden by COPILOT_*
// environment variables (COPILOT_DB_PATH, COPILOT_DECODER, ...).
func Load() (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("copilot")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	home, _ := os.UserHomeDir()
	v.SetDefault("db_path", filepath.Join(home, defaultStorePath))
	v.SetDefault("listen_addr", "127.0.0.1:8475")
	v.SetDefault("decoder", DecoderDocument)
	v.SetDefault("copy_ttl", 5*time.Minute)
	v.SetDefault("cache_ttl", time.Minute)
	v.SetDefault("temp_root", "")
	v.SetDefault("log_level", "info")

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("parsing configuration: %w", err)
	}
	if err := c.validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) validate() error {
	switch c.Decoder {
	case DecoderDocument, DecoderRawScan:
	default:
		return fmt.Errorf("unknown decoder %q (want %s or %s)", c.Decoder, DecoderDocument, DecoderRawScan)
	}
	if c.CopyTTL <= 0 {
		return fmt.Errorf("copy_ttl must be positive, got %v", c.CopyTTL)
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("cache_ttl must be positive, got %v", c.CacheTTL)
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// SlogLevel maps LogLevel onto a slog level.
func (c Config) SlogLevel() (slog.Level, error) {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", c.LogLevel)
	}
}
