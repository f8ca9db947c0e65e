// Package config loads CLI settings from a config file and BACKLASH_
// environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/roach88/backlash/internal/engine"
)

// EnvPrefix prefixes environment overrides: BACKLASH_LOG_LEVEL overrides
// log.level.
const EnvPrefix = "BACKLASH"

// Config holds CLI configuration.
type Config struct {
	Journal JournalConfig
	Log     LogConfig
	Output  OutputConfig
	Engine  EngineConfig
}

// JournalConfig holds the default SQLite journal location.
type JournalConfig struct {
	Path string
}

type LogConfig struct {
	Level string
}

type OutputConfig struct {
	Format string
}

// EngineConfig holds engine limits.
type EngineConfig struct {
	MaxEffectDepth int64 `mapstructure:"max_effect_depth"`
}

// Default returns what Load yields without a config file or environment
// overrides.
func Default() Config {
	return Config{
		Log:    LogConfig{Level: "info"},
		Output: OutputConfig{Format: "text"},
		Engine: EngineConfig{MaxEffectDepth: engine.DefaultMaxEffectDepth},
	}
}

// Load reads configuration. When path is empty the file is looked up as
// config.{toml,yaml} under $HOME/.config/backlash and may be absent; an
// explicit path must exist.
func Load(path string) (Config, error) {
	v := viper.New()

	v.SetDefault("journal.path", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("output.format", "text")
	v.SetDefault("engine.max_effect_depth", engine.DefaultMaxEffectDepth)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "backlash"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks enumerated values and limits.
func (c Config) Validate() error {
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	switch c.Output.Format {
	case "text", "json":
	default:
		return fmt.Errorf("config: output.format must be text or json, got %q", c.Output.Format)
	}
	if c.Engine.MaxEffectDepth <= 0 {
		return fmt.Errorf("config: engine.max_effect_depth must be positive, got %d", c.Engine.MaxEffectDepth)
	}
	return nil
}

// ParseLevel maps debug, info, warn and error to slog levels.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("config: log.level: %w", err)
	}
	return level, nil
}
