package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Default returns the built-in configuration, matching the viper defaults.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:  "docq.json",
			Table: "_default",
		},
		Output: OutputConfig{
			Pretty: true,
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "colored-text",
		},
	}
}

// WriteDefault writes a starter config file with the default settings so
// users have something concrete to edit. Refuses to overwrite an existing
// file.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file %s already exists", path)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("cannot stat %s: %w", path, err)
	}

	data, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("cannot encode default config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("cannot write %s: %w", path, err)
	}

	return nil
}
