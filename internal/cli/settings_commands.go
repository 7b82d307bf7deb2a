package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tatebench/tate/internal/config"
)

// newSettingsCmd creates the 'settings' command group.
func newSettingsCmd() *cobra.Command {
	settingsCmd := &cobra.Command{
		Use:   "settings",
		Short: "Manage tate settings",
		Long: `Settings management commands for tate.

Commands:
  init  - Interactive settings setup
  show  - Display current settings
  path  - Show settings file path`,
	}

	settingsCmd.AddCommand(newSettingsInitCmd())
	settingsCmd.AddCommand(newSettingsShowCmd())
	settingsCmd.AddCommand(newSettingsPathCmd())

	return settingsCmd
}

// newSettingsInitCmd creates the 'settings init' command.
func newSettingsInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize settings interactively",
		Long: `Interactive settings setup for tate.

The settings will be saved to ~/.config/tate/settings.csv (or --settings).

Use --force to overwrite existing settings.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			settingsPath := resolveSettingsPath()

			if !force {
				if _, err := os.Stat(settingsPath); err == nil {
					fmt.Fprintf(out, "Settings already exist at: %s\n", settingsPath)
					fmt.Fprintln(out, "Use --force to overwrite or run 'settings show' to view current settings.")
					return nil
				}
			}

			fmt.Fprintln(out, "Tate Settings Setup")
			fmt.Fprintln(out, "===================")
			fmt.Fprintln(out)

			p := newPrompter(cmd.InOrStdin(), out)
			defaults := config.DefaultSettings()
			s := &config.Settings{}

			var err error
			if s.ConfigFile, err = askDefault(p, "Configuration file", defaults.ConfigFile); err != nil {
				return err
			}
			if s.PropsDir, err = askDefault(p, "Props output directory", defaults.PropsDir); err != nil {
				return err
			}
			if s.TagMatch, err = askDefault(p, "Tag matching (exact/substring)", defaults.TagMatch); err != nil {
				return err
			}
			if s.LogLevel, err = askDefault(p, "Log level (debug/info/warn/error)", defaults.LogLevel); err != nil {
				return err
			}
			if s.StrictRuns, err = p.confirm("Reject undeclared run arguments?"); err != nil {
				return err
			}

			if err := s.Validate(); err != nil {
				return fmt.Errorf("invalid settings: %w", err)
			}
			if err := config.SaveSettingsCSV(s, settingsPath); err != nil {
				return fmt.Errorf("failed to save settings: %w", err)
			}

			GetLogger().Info().Str("path", settingsPath).Msg("Settings saved")
			fmt.Fprintf(out, "\n✓ Settings saved to: %s\n", settingsPath)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing settings")

	return cmd
}

// askDefault asks a question showing def, returning def on an empty answer.
func askDefault(p *prompter, question, def string) (string, error) {
	answer, err := p.ask(fmt.Sprintf("%s [%s]: ", question, def))
	if err != nil {
		return "", err
	}
	if answer == "" {
		return def, nil
	}
	return answer, nil
}

// newSettingsShowCmd creates the 'settings show' command.
func newSettingsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display current settings",
		Long: `Display the current settings.

The configuration file is chosen by:
  1. Command-line flag (--config)
  2. Environment variable (TATE_CONFIG)
  3. Settings file (config_file)
  4. tate_config.json in the working directory`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			s := currentSettings()

			fmt.Fprintln(out, "Current Settings")
			fmt.Fprintln(out, "================")
			fmt.Fprintln(out)
			fmt.Fprintf(out, "  Configuration file: %s\n", s.ResolveConfigFile(cfgFile))
			fmt.Fprintf(out, "  Props directory:    %s\n", s.PropsDir)
			fmt.Fprintf(out, "  Tag matching:       %s\n", s.TagMatch)
			fmt.Fprintf(out, "  Strict runs:        %t\n", s.StrictRuns)
			fmt.Fprintf(out, "  Log level:          %s\n", strings.ToLower(s.LogLevel))
			fmt.Fprintln(out)

			settingsPath := resolveSettingsPath()
			fmt.Fprintf(out, "Settings file: %s\n", settingsPath)
			if _, err := os.Stat(settingsPath); os.IsNotExist(err) {
				fmt.Fprintln(out, "  (file does not exist - using defaults)")
			}
			return nil
		},
	}
}

// newSettingsPathCmd creates the 'settings path' command.
func newSettingsPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show settings file path",
		Long:  `Display the path to the settings file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			settingsPath := resolveSettingsPath()
			fmt.Fprintf(out, "  %s\n", settingsPath)

			if info, err := os.Stat(settingsPath); err == nil {
				fmt.Fprintln(out, "Status: ✓ File exists")
				fmt.Fprintf(out, "Modified: %s\n", info.ModTime().Format("2006-01-02 15:04:05"))
			} else {
				fmt.Fprintln(out, "Status: File does not exist")
				fmt.Fprintln(out, "Create a settings file with: tate settings init")
			}
			return nil
		},
	}
}
