package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	return Config{
		Server: ServerCfg{
			Host: "127.0.0.1",
			Port: "8080",
		},
		Browsing: BrowsingCfg{
			Buffer:              2,
			DebounceMS:          100,
			PrefetchConcurrency: 16,
			CacheFailures:       false,
			FallbackAspectRatio: 0, // 0 = built-in A-series default
		},
		Origin: OriginCfg{
			URL:            "",
			TimeoutSeconds: 30,
			ProbeAttempts:  10,
		},
	}
}

// WriteDefault writes the default configuration as YAML to path.
// Fails if the file already exists.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}

	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return fmt.Errorf("failed to marshal default config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
