package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestManager_ReadWrite_RoundTrip(t *testing.T) {
	zero := 0.0
	original := &Config{
		HostID:  "test-host-abc",
		BaseDir: "/home/user/.local/share/tabtime",
		LogDir:  "/home/user/.local/share/tabtime/log",
		Log:     LogConfig{Level: "debug"},
		Store: StoreConfig{
			Type:     "s3",
			S3Bucket: "activity",
			S3Prefix: "laptop",
			S3Region: "eu-west-1",
		},
		Provider: ProviderConfig{Model: "gpt-4o-mini", Temperature: &zero, MaxTokens: 200},
		Encryption: EncryptionConfig{
			Type:         "age",
			IdentityPath: "/home/user/.local/share/tabtime/keys/tabtime.key",
		},
		Tracking:   TrackingConfig{Ignore: []string{"localhost", "mail.example.com/inbox"}},
		NativeHost: NativeHostConfig{Name: DefaultNativeHostName, ExtensionIDs: []string{"abcdefghijklmnop"}},
	}

	var buf bytes.Buffer
	m := &Manager{}

	if err := m.Write(&buf, original); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := m.Read(&buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if got.HostID != original.HostID {
		t.Errorf("HostID = %q, want %q", got.HostID, original.HostID)
	}
	if got.LogDir != original.LogDir {
		t.Errorf("LogDir = %q, want %q", got.LogDir, original.LogDir)
	}
	if got.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want %q", got.Log.Level, "debug")
	}
	if got.Store.Type != "s3" || got.Store.S3Bucket != "activity" || got.Store.S3Region != "eu-west-1" {
		t.Errorf("Store = %+v, want s3/activity/eu-west-1", got.Store)
	}
	if got.Provider.Model != "gpt-4o-mini" {
		t.Errorf("Provider.Model = %q, want %q", got.Provider.Model, "gpt-4o-mini")
	}
	if got.Provider.Temperature == nil || *got.Provider.Temperature != 0 {
		t.Errorf("Provider.Temperature = %v, want explicit 0", got.Provider.Temperature)
	}
	if got.Provider.MaxTokens != 200 {
		t.Errorf("Provider.MaxTokens = %d, want 200", got.Provider.MaxTokens)
	}
	if got.Encryption.IdentityPath != original.Encryption.IdentityPath {
		t.Errorf("Encryption.IdentityPath = %q, want %q", got.Encryption.IdentityPath, original.Encryption.IdentityPath)
	}
	if len(got.Tracking.Ignore) != 2 {
		t.Fatalf("len(Tracking.Ignore) = %d, want 2", len(got.Tracking.Ignore))
	}
	if len(got.NativeHost.ExtensionIDs) != 1 {
		t.Fatalf("len(NativeHost.ExtensionIDs) = %d, want 1", len(got.NativeHost.ExtensionIDs))
	}
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig("host-1", "/data/tabtime")

	if cfg.HostID != "host-1" {
		t.Errorf("HostID = %q, want %q", cfg.HostID, "host-1")
	}
	if cfg.LogDir != "/data/tabtime/log" {
		t.Errorf("LogDir = %q, want %q", cfg.LogDir, "/data/tabtime/log")
	}
	if cfg.Store.Type != "filesystem" {
		t.Errorf("Store.Type = %q, want %q", cfg.Store.Type, "filesystem")
	}
	if cfg.Store.DataDir != "/data/tabtime/data" {
		t.Errorf("Store.DataDir = %q, want %q", cfg.Store.DataDir, "/data/tabtime/data")
	}
	if cfg.Encryption.IdentityPath != "/data/tabtime/keys/tabtime.key" {
		t.Errorf("Encryption.IdentityPath = %q, want %q", cfg.Encryption.IdentityPath, "/data/tabtime/keys/tabtime.key")
	}
	if cfg.NativeHost.Name != DefaultNativeHostName {
		t.Errorf("NativeHost.Name = %q, want %q", cfg.NativeHost.Name, DefaultNativeHostName)
	}
}

func TestInit(t *testing.T) {
	t.Run("creates config file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "tabtime.toml")

		if err := Init(path, NewConfig("h1", dir)); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("config file not created: %v", err)
		}
		if perm := info.Mode().Perm(); perm != 0600 {
			t.Errorf("config file mode = %o, want 600", perm)
		}
	})

	t.Run("fails if file already exists", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "tabtime.toml")
		cfg := NewConfig("h1", dir)

		if err := Init(path, cfg); err != nil {
			t.Fatalf("first Init() error = %v", err)
		}
		if err := Init(path, cfg); err == nil {
			t.Fatal("second Init() expected error")
		}
	})
}

func TestReadFromFile(t *testing.T) {
	t.Run("reads valid config", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "tabtime.toml")
		cfg := NewConfig("read-test", dir)
		cfg.Store = StoreConfig{Type: "memory"}

		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		got, err := ReadFromFile(path)
		if err != nil {
			t.Fatalf("ReadFromFile() error = %v", err)
		}
		if got.HostID != "read-test" {
			t.Errorf("HostID = %q, want %q", got.HostID, "read-test")
		}
		if got.Store.Type != "memory" {
			t.Errorf("Store.Type = %q, want %q", got.Store.Type, "memory")
		}
	})

	t.Run("returns error for missing file", func(t *testing.T) {
		if _, err := ReadFromFile("/nonexistent/path/tabtime.toml"); err == nil {
			t.Fatal("ReadFromFile() expected error for missing file")
		}
	})
}
