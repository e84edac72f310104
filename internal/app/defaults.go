package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Environment variables that override the default locations.
const (
	EnvConfigPath = "TABTIME_CONFIG_PATH"
	EnvHome       = "TABTIME_HOME"
)

// Defaults are the paths and identity used when no config says otherwise.
type Defaults struct {
	ConfigPath string
	BaseDir    string
	LogDir     string
	HostID     string
}

// GetDefaults returns application default paths, checking environment variables first.
// Environment variables:
//   - TABTIME_CONFIG_PATH: config file location (default: ~/.config/tabtime.toml)
//   - TABTIME_HOME: base directory for tabtime data (default: ~/.local/share/tabtime)
func GetDefaults() (Defaults, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return Defaults{}, err
	}

	baseDir, err := getBaseDir()
	if err != nil {
		return Defaults{}, err
	}

	return Defaults{
		ConfigPath: configPath,
		BaseDir:    baseDir,
		LogDir:     filepath.Join(baseDir, "log"),
		HostID:     defaultHostID(),
	}, nil
}

func getConfigPath() (string, error) {
	if path := os.Getenv(EnvConfigPath); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "tabtime.toml"), nil
}

// getBaseDir falls back to the XDG data directory.
func getBaseDir() (string, error) {
	if path := os.Getenv(EnvHome); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", "tabtime"), nil
}

// defaultHostID is the short hostname, used to name the SQLite file and tag log lines.
func defaultHostID() string {
	name, err := os.Hostname()
	if err != nil || name == "" {
		return "localhost"
	}
	if i := strings.IndexByte(name, '.'); i > 0 {
		name = name[:i]
	}
	return strings.ToLower(name)
}
