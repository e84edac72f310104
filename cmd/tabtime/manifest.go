package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"tabtime/internal/config"
	"tabtime/internal/nativemsg"
)

var manifestCmd = &cobra.Command{
	Use:   "manifest",
	Short: "Print or install the native messaging host manifest",
	RunE: func(cmd *cobra.Command, args []string) error {
		install, _ := cmd.Flags().GetBool("install")

		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		name := cfg.NativeHost.Name
		if name == "" {
			name = config.DefaultNativeHostName
		}

		exe, err := os.Executable()
		if err != nil {
			return fmt.Errorf("locating executable: %w", err)
		}
		if resolved, err := filepath.EvalSymlinks(exe); err == nil {
			exe = resolved
		}

		m, err := nativemsg.NewManifest(name, exe, cfg.NativeHost.ExtensionIDs)
		if err != nil {
			return err
		}
		if !install {
			return m.Write(os.Stdout)
		}

		path, err := nativemsg.UserManifestPath(name)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return fmt.Errorf("creating manifest directory: %w", err)
		}
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating manifest: %w", err)
		}
		if err := m.Write(f); err != nil {
			f.Close()
			return fmt.Errorf("writing manifest: %w", err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("writing manifest: %w", err)
		}
		fmt.Printf("Installed manifest at %s\n", path)
		return nil
	},
}
