// Package config loads docq settings from docq.yaml, environment variables
// and command line flags, in increasing order of precedence.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/lmittmann/tint"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`
	Output   OutputConfig   `mapstructure:"output" yaml:"output"`
	Logging  LoggingConfig  `mapstructure:"logging" yaml:"logging"`
}

type DatabaseConfig struct {
	// Path is the store file. Relative paths resolve against the working
	// directory.
	Path  string `mapstructure:"path" yaml:"path"`
	Table string `mapstructure:"table" yaml:"table"`
}

type OutputConfig struct {
	Pretty bool `mapstructure:"pretty" yaml:"pretty"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`   // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format"` // "json", "text", "colored-text"
}

// Load reads docq.yaml (working directory first, then the user config
// directory), applies DOCQ_* environment variables and finally any bound
// command line flags. A missing config file is not an error; defaults apply.
func Load(flags *pflag.FlagSet) (*Config, error) {
	viper.Reset()

	viper.SetConfigName("docq")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	if dir, err := os.UserConfigDir(); err == nil {
		viper.AddConfigPath(filepath.Join(dir, "docq"))
	}

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("cannot read config file: %w", err)
		}
	}

	viper.SetEnvPrefix("DOCQ")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if flags != nil {
		if err := bindFlags(flags); err != nil {
			return nil, fmt.Errorf("cannot bind flags: %w", err)
		}
	}

	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("cannot unmarshal config: %w", err)
	}

	return cfg, nil
}

func setDefaults() {
	viper.SetDefault("database.path", "docq.json")
	viper.SetDefault("database.table", "_default")
	viper.SetDefault("output.pretty", true)
	viper.SetDefault("logging.level", "warn")
	viper.SetDefault("logging.format", "colored-text")
}

func bindFlags(flags *pflag.FlagSet) error {
	bindings := map[string]string{
		"database.path":  "db",
		"database.table": "table",
		"output.pretty":  "pretty",
		"logging.level":  "log-level",
		"logging.format": "log-format",
	}

	for key, name := range bindings {
		flag := flags.Lookup(name)
		if flag == nil {
			continue
		}
		if err := viper.BindPFlag(key, flag); err != nil {
			return err
		}
	}

	return nil
}

// Logger builds the application logger from the logging section.
func (cfg *Config) Logger(w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	switch cfg.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return nil, fmt.Errorf("invalid log level: %s", cfg.Logging.Level)
	}

	var handler slog.Handler
	switch cfg.Logging.Format {
	case "json":
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	case "text":
		handler = slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	case "colored-text":
		handler = tint.NewHandler(w, &tint.Options{Level: level})
	default:
		return nil, fmt.Errorf("invalid log format: %s", cfg.Logging.Format)
	}

	return slog.New(handler), nil
}
