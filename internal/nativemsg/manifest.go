package nativemsg

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
)

// Manifest is the native messaging host manifest the browser reads to
// locate and authorize the host binary.
type Manifest struct {
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	Path           string   `json:"path"`
	Type           string   `json:"type"`
	AllowedOrigins []string `json:"allowed_origins"`
}

// NewManifest builds a stdio manifest for the binary at path.
func NewManifest(name, path string, extensionIDs []string) (*Manifest, error) {
	if name == "" {
		return nil, fmt.Errorf("host name is required")
	}
	if !filepath.IsAbs(path) {
		return nil, fmt.Errorf("host path must be absolute: %s", path)
	}
	if len(extensionIDs) == 0 {
		return nil, fmt.Errorf("at least one extension id is required")
	}
	origins := make([]string, 0, len(extensionIDs))
	for _, id := range extensionIDs {
		origins = append(origins, "chrome-extension://"+id+"/")
	}
	return &Manifest{
		Name:           name,
		Description:    "tabtime activity tracker host",
		Path:           path,
		Type:           "stdio",
		AllowedOrigins: origins,
	}, nil
}

// Write encodes the manifest as indented JSON.
func (m *Manifest) Write(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(m)
}

// UserManifestPath returns where Chrome looks for per-user host manifests.
func UserManifestPath(name string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	var dir string
	switch runtime.GOOS {
	case "darwin":
		dir = filepath.Join(home, "Library", "Application Support", "Google", "Chrome", "NativeMessagingHosts")
	case "linux":
		dir = filepath.Join(home, ".config", "google-chrome", "NativeMessagingHosts")
	default:
		return "", fmt.Errorf("manifest location on %s is registry-based; write the file and register it manually", runtime.GOOS)
	}
	return filepath.Join(dir, name+".json"), nil
}
