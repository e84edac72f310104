package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// DefaultNativeHostName is the native messaging host name registered with the browser.
const DefaultNativeHostName = "com.tabtime.host"

// Config represents the main configuration for tabtime.
type Config struct {
	HostID     string           `toml:"host_id"`
	BaseDir    string           `toml:"base_dir"`
	LogDir     string           `toml:"log_dir"`
	Log        LogConfig        `toml:"log"`
	Store      StoreConfig      `toml:"store"`
	Provider   ProviderConfig   `toml:"provider"`
	Encryption EncryptionConfig `toml:"encryption"`
	Tracking   TrackingConfig   `toml:"tracking"`
	NativeHost NativeHostConfig `toml:"native_host"`
}

// LogConfig controls the host log.
type LogConfig struct {
	Level string `toml:"level"` // "debug", "info" (default), "warn", "error"
}

// StoreConfig represents configuration for the persistent key-value store.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type StoreConfig struct {
	Type string `toml:"type"` // "memory", "filesystem", "sqlite", or "s3"

	// Directory for type=filesystem and type=sqlite
	DataDir string `toml:"data_dir,omitempty"`

	// S3-specific fields (only used when Type == "s3")
	S3Bucket          string `toml:"s3_bucket,omitempty"`
	S3Prefix          string `toml:"s3_prefix,omitempty"`
	S3Region          string `toml:"s3_region,omitempty"`
	S3Endpoint        string `toml:"s3_endpoint,omitempty"`
	S3AccessKeyID     string `toml:"s3_access_key_id,omitempty"`
	S3SecretAccessKey string `toml:"s3_secret_access_key,omitempty"`
}

// ProviderConfig configures the classification provider. Zero values fall
// back to the provider defaults, except Temperature, where only an absent
// value does. The API key itself lives in the settings store.
type ProviderConfig struct {
	Endpoint       string   `toml:"endpoint,omitempty"`
	Model          string   `toml:"model,omitempty"`
	Temperature    *float64 `toml:"temperature,omitempty"`
	MaxTokens      int      `toml:"max_tokens,omitempty"`
	TimeoutSeconds int      `toml:"timeout_seconds,omitempty"`
	Organization   string   `toml:"organization,omitempty"`
	Project        string   `toml:"project,omitempty"`
}

// EncryptionConfig selects how the API key is sealed at rest.
type EncryptionConfig struct {
	Type         string `toml:"type"` // "age" (default), "test", or "none"
	IdentityPath string `toml:"identity_path"`
}

// TrackingConfig holds URL rules applied before classification.
type TrackingConfig struct {
	Ignore []string `toml:"ignore"`
}

// NativeHostConfig describes the manifest installed for the browser.
type NativeHostConfig struct {
	Name         string   `toml:"name"`
	ExtensionIDs []string `toml:"extension_ids"`
}

// NewConfig creates a new Config with the provided values and default paths.
func NewConfig(hostID, baseDir string) *Config {
	return &Config{
		HostID:  hostID,
		BaseDir: baseDir,
		LogDir:  filepath.Join(baseDir, "log"),
		Log:     LogConfig{Level: "info"},
		Store: StoreConfig{
			Type:    "filesystem",
			DataDir: filepath.Join(baseDir, "data"),
		},
		Encryption: EncryptionConfig{
			Type:         "age",
			IdentityPath: filepath.Join(baseDir, "keys", "tabtime.key"),
		},
		NativeHost: NativeHostConfig{Name: DefaultNativeHostName},
	}
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

func writeToFile(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// The file may carry S3 credentials.
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path with the provided Config.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
