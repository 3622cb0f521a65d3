package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/coursetable/internal/config"
	"github.com/javiermolinar/coursetable/internal/tui/theme"
)

func (a *App) configCmd() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "config",
		Short: "View or edit configuration",
		Long: `Interactive configuration management.

If no config file exists, creates one with default values.
Otherwise, displays current config and allows editing.`,
		Example: `  coursetable config`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if path == "" {
				path = config.DefaultConfigPath()
			}
			return runConfigInteractive(cmd.InOrStdin(), cmd.OutOrStdout(), path)
		},
	}

	cmd.Flags().StringVar(&path, "path", "", "Config file to edit (default "+config.DefaultConfigPath()+")")

	return cmd
}

func runConfigInteractive(in io.Reader, out io.Writer, configPath string) error {
	fmt.Fprintf(out, "Config file: %s\n\n", configPath)

	// Load existing config or create defaults
	cfg, err := config.LoadFrom(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	_, fileErr := os.Stat(configPath)
	if os.IsNotExist(fileErr) {
		fmt.Fprintln(out, "No config file found. Creating with default values...")
		if err := cfg.SaveTo(configPath); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		fmt.Fprintf(out, "Created %s\n\n", configPath)
	}

	printConfig(out, cfg)

	reader := bufio.NewReader(in)
	if !promptYesNo(reader, out, "\nWould you like to edit the configuration?") {
		return nil
	}

	cfg.Term.Start = promptValue(reader, out, "Term start (Monday of week 1, YYYY-MM-DD)", cfg.Term.Start)
	cfg.Term.TotalWeeks = promptInt(reader, out, "Total weeks", cfg.Term.TotalWeeks)
	cfg.Reminder.AdvanceMinutes = promptInt(reader, out, "Remind minutes before class", cfg.Reminder.AdvanceMinutes)
	cfg.Reminder.Schedule = promptValue(reader, out, "Reminder check schedule", cfg.Reminder.Schedule)
	cfg.Server.Listen = promptValue(reader, out, "API listen address", cfg.Server.Listen)
	cfg.Storage.DBPath = promptValue(reader, out, "Database path", cfg.Storage.DBPath)
	cfg.UI.Theme = promptTheme(reader, out, cfg.UI.Theme)

	// Validate before saving
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if err := cfg.SaveTo(configPath); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Fprintln(out, "\nConfiguration saved!")
	return nil
}

func printConfig(w io.Writer, cfg *config.Config) {
	fmt.Fprintln(w, "Current configuration:")
	fmt.Fprintln(w, "──────────────────────")
	fmt.Fprintln(w, "[term]")
	fmt.Fprintf(w, "  start            = %s\n", cfg.Term.Start)
	fmt.Fprintf(w, "  total_weeks      = %d\n", cfg.Term.TotalWeeks)
	fmt.Fprintln(w, "\n[reminder]")
	fmt.Fprintf(w, "  advance_minutes  = %d\n", cfg.Reminder.AdvanceMinutes)
	fmt.Fprintf(w, "  schedule         = %s\n", cfg.Reminder.Schedule)
	fmt.Fprintln(w, "\n[server]")
	fmt.Fprintf(w, "  listen           = %s\n", cfg.Server.Listen)
	fmt.Fprintln(w, "\n[storage]")
	fmt.Fprintf(w, "  db_path          = %s\n", cfg.Storage.DBPath)
	fmt.Fprintln(w, "\n[ui]")
	fmt.Fprintf(w, "  theme            = %s\n", cfg.UI.Theme)
}

func promptYesNo(reader *bufio.Reader, w io.Writer, question string) bool {
	fmt.Fprintf(w, "%s [y/N]: ", question)
	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(strings.ToLower(input))
	return input == "y" || input == "yes"
}

func promptValue(reader *bufio.Reader, w io.Writer, label, current string) string {
	if current == "" {
		fmt.Fprintf(w, "  %s: ", label)
	} else {
		fmt.Fprintf(w, "  %s [%s]: ", label, current)
	}
	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(input)
	if input == "" {
		return current
	}
	return input
}

// promptInt asks until the answer is empty or a whole number. EOF keeps current.
func promptInt(reader *bufio.Reader, w io.Writer, label string, current int) int {
	for {
		value := promptValue(reader, w, label, strconv.Itoa(current))
		n, err := strconv.Atoi(value)
		if err == nil {
			return n
		}
		if _, peekErr := reader.Peek(1); peekErr != nil {
			return current
		}
		fmt.Fprintf(w, "  Invalid number %q\n", value)
	}
}

func promptTheme(reader *bufio.Reader, w io.Writer, current string) string {
	options := strings.Join(theme.Available(), ", ")
	label := fmt.Sprintf("UI theme (%s)", options)
	for {
		value := strings.ToLower(promptValue(reader, w, label, current))
		if theme.IsAvailable(value) {
			return value
		}
		if _, err := reader.Peek(1); err != nil {
			return current
		}
		fmt.Fprintf(w, "  Invalid theme %q. Available: %s\n", value, options)
	}
}
