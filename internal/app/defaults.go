package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
)

// envDefaults are the process-level overrides read from the environment.
type envDefaults struct {
	ConfigPath string `env:"REG_CONFIG_PATH"`
	Home       string `env:"REG_HOME"`
}

// GetDefaults returns application default paths, checking environment variables first.
// Environment variables:
//   - REG_CONFIG_PATH: config file location (default: ~/.config/reg.toml)
//   - REG_HOME: base directory for reg data (default: ~/.local/share/reg)
func GetDefaults() (map[string]string, error) {
	d, err := env.ParseAs[envDefaults]()
	if err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}

	if d.ConfigPath == "" || d.Home == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("cannot determine home directory: %w", err)
		}
		if d.ConfigPath == "" {
			d.ConfigPath = filepath.Join(homeDir, ".config", "reg.toml")
		}
		if d.Home == "" {
			d.Home = filepath.Join(homeDir, ".local", "share", "reg")
		}
	}

	return map[string]string{
		"config_path": d.ConfigPath,
		"base_dir":    d.Home,
		"log_dir":     filepath.Join(d.Home, "log"),
	}, nil
}
