package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"tabtime/internal/app"
	"tabtime/internal/config"

	"github.com/spf13/cobra"
)

func main() {
	// The browser launches the host as `tabtime chrome-extension://<id>/`.
	if len(os.Args) > 1 && strings.HasPrefix(os.Args[1], "chrome-extension://") {
		os.Args = append([]string{os.Args[0], "host"}, os.Args[1:]...)
	}
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the config file from the default location.
func loadConfig() (*config.Config, string, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, "", fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults.ConfigPath)
	if err != nil {
		return nil, "", fmt.Errorf("reading config: %w", err)
	}
	return cfg, defaults.ConfigPath, nil
}

// newApp reads the config and creates an App. The caller must defer app.Close().
// operation identifies the CLI command being run (e.g. "host", "export").
func newApp(ctx context.Context, operation string) (*app.App, error) {
	cfg, _, err := loadConfig()
	if err != nil {
		return nil, err
	}

	a, err := app.New(ctx, cfg, operation)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}
	return a, nil
}

var rootCmd = &cobra.Command{
	Use:          "tabtime",
	Short:        "Browser productivity tracker",
	SilenceUsage: true,
}

// host command
var hostCmd = &cobra.Command{
	Use:   "host [ORIGIN]",
	Short: "Run the native messaging host (started by the browser)",
	// The browser passes its own arguments (origin, --parent-window on Windows).
	DisableFlagParsing: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx, "host")
		if err != nil {
			return err
		}
		defer a.Close()

		return a.RunHost(ctx, os.Stdin, os.Stdout)
	},
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		storeType, _ := cmd.Flags().GetString("store")
		extensionIDs, _ := cmd.Flags().GetStringSlice("extension-id")

		cfg := config.NewConfig(defaults.HostID, defaults.BaseDir)
		cfg.Store.Type = storeType
		cfg.NativeHost.ExtensionIDs = extensionIDs

		if err := config.Init(defaults.ConfigPath, cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults.ConfigPath)
		fmt.Printf("Host ID: %s\n", cfg.HostID)
		fmt.Printf("Base Dir: %s\n", cfg.BaseDir)
		fmt.Printf("Store: %s\n", cfg.Store.Type)
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, path, err := loadConfig()
		if err != nil {
			return err
		}

		fmt.Printf("Configuration from %s:\n\n", path)
		fmt.Printf("Host ID:    %s\n", cfg.HostID)
		fmt.Printf("Base Dir:   %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:    %s\n", cfg.LogDir)
		fmt.Printf("Log Level:  %s\n", cfg.Log.Level)
		fmt.Printf("Store:      %s\n", cfg.Store.Type)
		fmt.Printf("Encryption: %s\n", cfg.Encryption.Type)
		if cfg.Provider.Model != "" {
			fmt.Printf("Model:      %s\n", cfg.Provider.Model)
		}
		if len(cfg.Tracking.Ignore) > 0 {
			fmt.Printf("Ignore:     %s\n", strings.Join(cfg.Tracking.Ignore, ", "))
		}
		return nil
	},
}

func init() {
	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)
	configInitCmd.Flags().String("store", "filesystem", "Store backend: memory, filesystem, sqlite, or s3")
	configInitCmd.Flags().StringSlice("extension-id", nil, "Chrome extension ID allowed to start the host")

	// settings subcommands
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsSetKeyCmd)
	settingsSetCmd.Flags().Float64("threshold", 0, "Confidence threshold below which the user is asked (0-1)")
	settingsSetCmd.Flags().Int("interval", 0, "Periodic check interval in seconds (10-300)")
	settingsSetCmd.Flags().Bool("auto-prompt", true, "Ask the user about low-confidence judgments")
	settingsSetCmd.Flags().Bool("paused", false, "Pause tracking")

	// root commands
	rootCmd.AddCommand(hostCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringP("format", "f", "csv", "Export format: csv, json, or yaml")
	exportCmd.Flags().StringP("output", "o", "", "Output file (default productivity-data-<date>.<ext>, - for stdout)")
	rootCmd.AddCommand(clearCmd)
	clearCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
	rootCmd.AddCommand(manifestCmd)
	manifestCmd.Flags().Bool("install", false, "Write the manifest to the browser's per-user location")
}
