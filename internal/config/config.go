// Package config loads siteloom settings from siteloom.yaml, SITELOOM_*
// environment variables and command line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/joshharrison/siteloom/internal/calendar"
	"github.com/joshharrison/siteloom/internal/logger"
)

// Config is the complete application configuration.
type Config struct {
	Log      LogConfig       `mapstructure:"log"`
	StateDir string          `mapstructure:"state_dir"`
	Calendar calendar.Config `mapstructure:"calendar"`
	Claude   ClaudeConfig    `mapstructure:"claude"`
}

// LogConfig selects level and destination of diagnostic logs.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Output string `mapstructure:"output"` // stderr or file
	File   string `mapstructure:"file"`
}

// ClaudeConfig configures the draft-proposal client.
type ClaudeConfig struct {
	Model  string `mapstructure:"model"`
	APIKey string `mapstructure:"api_key"`
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.output", "stderr")
	v.SetDefault("log.file", filepath.Join(".siteloom", "siteloom.log"))
	v.SetDefault("state_dir", ".siteloom")
	v.SetDefault("calendar.schedule_type", string(calendar.MonFri))
	v.SetDefault("calendar.observe_national_holidays", true)
	v.SetDefault("calendar.observe_regional_holidays", false)
	v.SetDefault("claude.model", "")
	v.SetDefault("claude.api_key", "")
}

// Load reads configuration into a Config. An explicit file that cannot be
// read is an error; a missing default file is not.
func Load(v *viper.Viper, file string) (*Config, error) {
	SetDefaults(v)

	v.SetEnvPrefix("SITELOOM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("siteloom")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "siteloom"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Calendar.Validate(); err != nil {
		return nil, fmt.Errorf("calendar config: %w", err)
	}
	return &cfg, nil
}

// NewLogger builds the logger described by the log section.
func (c *Config) NewLogger() (*logger.Logger, error) {
	level := logger.ParseLevel(c.Log.Level)
	if c.Log.Output == "file" {
		if err := os.MkdirAll(filepath.Dir(c.Log.File), 0755); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
		return logger.NewWithRotation(level, logger.RotationConfig{Filename: c.Log.File, Compress: true}), nil
	}
	return logger.New(level)
}
