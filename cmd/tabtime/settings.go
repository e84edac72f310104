package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"tabtime/internal/model"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "View and change tracking settings",
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), "settings show")
		if err != nil {
			return err
		}
		defer a.Close()

		s, err := a.Settings(cmd.Context())
		if err != nil {
			return err
		}
		printSettings(s)
		return nil
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Change settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		var patch model.SettingsPatch
		flags := cmd.Flags()
		if flags.Changed("threshold") {
			v, _ := flags.GetFloat64("threshold")
			patch.ConfidenceThreshold = &v
		}
		if flags.Changed("interval") {
			v, _ := flags.GetInt("interval")
			patch.CheckIntervalSeconds = &v
		}
		if flags.Changed("auto-prompt") {
			v, _ := flags.GetBool("auto-prompt")
			patch.AutoPrompt = &v
		}
		if flags.Changed("paused") {
			v, _ := flags.GetBool("paused")
			patch.IsPaused = &v
		}
		if patch == (model.SettingsPatch{}) {
			return fmt.Errorf("nothing to change: pass --threshold, --interval, --auto-prompt or --paused")
		}

		a, err := newApp(cmd.Context(), "settings set")
		if err != nil {
			return err
		}
		defer a.Close()

		s, err := a.UpdateSettings(cmd.Context(), patch)
		if err != nil {
			a.Fail()
			return err
		}
		printSettings(s)
		return nil
	},
}

var settingsSetKeyCmd = &cobra.Command{
	Use:   "set-key",
	Short: "Set the classification API key (read from stdin)",
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := readSecret("API key: ")
		if err != nil {
			return err
		}
		if key == "" {
			return fmt.Errorf("empty API key")
		}

		a, err := newApp(cmd.Context(), "settings set-key")
		if err != nil {
			return err
		}
		defer a.Close()

		if _, err := a.UpdateSettings(cmd.Context(), model.SettingsPatch{APIKey: &key}); err != nil {
			a.Fail()
			return err
		}
		fmt.Println("API key saved.")
		return nil
	},
}

// readSecret reads a line from stdin without echo when stdin is a terminal.
func readSecret(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprint(os.Stderr, prompt)
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("reading API key: %w", err)
		}
		return strings.TrimSpace(string(b)), nil
	}
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("reading API key: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func printSettings(s model.Settings) {
	key := s.APIKey
	if key == "" {
		key = "(not set)"
	}
	fmt.Printf("API key:              %s\n", key)
	fmt.Printf("Confidence threshold: %.2f\n", s.ConfidenceThreshold)
	fmt.Printf("Check interval:       %ds\n", s.CheckIntervalSeconds)
	fmt.Printf("Auto prompt:          %t\n", s.AutoPrompt)
	fmt.Printf("Paused:               %t\n", s.IsPaused)
}
