package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"tabtime/internal/activity"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62"))

	productiveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	wastedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203")).
			Bold(true)

	domainStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show productivity statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), "stats")
		if err != nil {
			return err
		}
		defer a.Close()

		sum, err := a.Summary(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Println(renderSummary(sum))
		return nil
	},
}

// renderSummary formats the summary for a terminal.
func renderSummary(s activity.Summary) string {
	if s.Entries == 0 {
		return dimStyle.Render("No activity recorded yet.")
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render("Productivity") + "\n")
	fmt.Fprintf(&b, "  %s  %s (%d entries)\n",
		productiveStyle.Render(fmt.Sprintf("%3d%% productive", s.ProductivePercent())),
		activity.FormatDuration(s.Productive), s.ProductiveCount)
	fmt.Fprintf(&b, "  %s  %s (%d entries)\n",
		wastedStyle.Render(fmt.Sprintf("%3d%% wasted    ", 100-s.ProductivePercent())),
		activity.FormatDuration(s.Wasted), s.WastedCount)

	if len(s.TopDomains) > 0 {
		b.WriteString("\n" + headerStyle.Render("Top domains") + "\n")
		width := 0
		for _, d := range s.TopDomains {
			width = max(width, len(d.Domain))
		}
		for _, d := range s.TopDomains {
			fmt.Fprintf(&b, "  %s  %s  %s\n",
				domainStyle.Render(fmt.Sprintf("%-*s", width, d.Domain)),
				activity.FormatDuration(d.Total()),
				dimStyle.Render(fmt.Sprintf("(%s productive, %s wasted)",
					activity.FormatDuration(d.Productive), activity.FormatDuration(d.Wasted))))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the activity log",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		output, _ := cmd.Flags().GetString("output")

		a, err := newApp(cmd.Context(), "export")
		if err != nil {
			return err
		}
		defer a.Close()

		if output == "-" {
			_, err := a.Export(cmd.Context(), format, time.Local, os.Stdout)
			return err
		}

		// Render into a temp file first so a failed export leaves nothing behind.
		tmp, err := os.CreateTemp(".", ".tabtime-export-*")
		if err != nil {
			return fmt.Errorf("creating export file: %w", err)
		}
		defer os.Remove(tmp.Name())

		name, err := a.Export(cmd.Context(), format, time.Local, tmp)
		if cerr := tmp.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			a.Fail()
			return err
		}
		if output == "" {
			output = name
		}
		if err := os.Rename(tmp.Name(), output); err != nil {
			return fmt.Errorf("writing %s: %w", output, err)
		}
		fmt.Printf("Exported to %s\n", output)
		return nil
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all recorded activity (settings are kept)",
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes && !confirm(os.Stdin, "Delete all recorded activity? [y/N] ") {
			fmt.Println("Aborted.")
			return nil
		}

		a, err := newApp(cmd.Context(), "clear")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.ClearLog(cmd.Context()); err != nil {
			a.Fail()
			return err
		}
		fmt.Println("Activity log cleared.")
		return nil
	},
}

func confirm(r io.Reader, prompt string) bool {
	fmt.Fprint(os.Stderr, prompt)
	line, _ := bufio.NewReader(r).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}
