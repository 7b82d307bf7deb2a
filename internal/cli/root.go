// Package cli provides the command-line interface for tate.
package cli

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/tatebench/tate/internal/config"
	"github.com/tatebench/tate/internal/generator"
	"github.com/tatebench/tate/internal/logging"
	"github.com/tatebench/tate/internal/pathutil"
	"github.com/tatebench/tate/internal/runlist"
	"github.com/tatebench/tate/internal/validation"
	"github.com/tatebench/tate/internal/version"
)

var (
	// Global flags
	cfgFile      string
	settingsFile string
	tagMatch     string
	strictRuns   bool
	verbose      bool
	debug        bool

	// Global logger
	logger *logging.Logger

	// Settings loaded in PersistentPreRunE
	settings *config.Settings
)

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "tate",
		Short: "tate - benchmark run configuration manager",
		Long: `tate ` + version.Version + ` - Built: ` + version.BuildTime + `
Manage benchmark run templates and the run list built from them, and
resolve runs into the property sets consumed by the benchmark executor.

The configuration file is a JSON document with two keys:
  TemplateData  template name -> template (args, types, translations, ...)
  RunList       ordered list of runs (template_type, args, props_extra)`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			settings, err = config.LoadSettingsCSV(resolveSettingsPath())
			if err != nil {
				return fmt.Errorf("failed to load settings: %w", err)
			}
			if cmd.Flags().Changed("tag-match") {
				settings.TagMatch = tagMatch
			}
			if cmd.Flags().Changed("strict-runs") {
				settings.StrictRuns = strictRuns
			}
			if err := settings.Validate(); err != nil {
				return err
			}

			logger = logging.NewLogger(cmd.ErrOrStderr())
			logging.SetGlobalLevel(logging.ParseLevel(settings.LogLevel))
			if verbose || debug {
				logging.SetGlobalLevel(zerolog.DebugLevel)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Tate configuration file (default: $TATE_CONFIG, settings, or tate_config.json)")
	rootCmd.PersistentFlags().StringVar(&settingsFile, "settings", "", "Settings file path (default: ~/.config/tate/settings.csv)")
	rootCmd.PersistentFlags().StringVar(&tagMatch, "tag-match", "exact", "Tag matching for remove/show: exact or substring")
	rootCmd.PersistentFlags().BoolVar(&strictRuns, "strict-runs", false, "Reject unknown run keys and undeclared run arguments")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output (shows debug messages)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug output (same as --verbose)")

	rootCmd.Version = version.String()

	return rootCmd
}

// Execute runs the CLI.
func Execute() error {
	rootCmd := NewRootCmd()
	AddCommands(rootCmd)
	return rootCmd.Execute()
}

// AddCommands adds all subcommands to the root command.
func AddCommands(rootCmd *cobra.Command) {
	rootCmd.AddCommand(newRunsCmd())
	rootCmd.AddCommand(newTemplatesCmd())
	rootCmd.AddCommand(newGenerateCmd())
	rootCmd.AddCommand(newValidateCmd())
	rootCmd.AddCommand(newDialogueCmd())
	rootCmd.AddCommand(newSettingsCmd())
}

// GetLogger returns the global CLI logger.
func GetLogger() *logging.Logger {
	if logger == nil {
		logger = logging.NewDefaultCLILogger()
	}
	return logger
}

func currentSettings() *config.Settings {
	if settings == nil {
		settings = config.DefaultSettings()
	}
	return settings
}

func resolveSettingsPath() string {
	if settingsFile != "" {
		return settingsFile
	}
	return config.GetDefaultSettingsPath()
}

// workspace is one loaded configuration file and the manager that owns it.
type workspace struct {
	path      string
	existed   bool
	validator *validation.Validator
	manager   *runlist.Manager
}

// openWorkspace loads the configuration file selected by flags, environment
// and settings. A missing file yields an empty configuration when allowMissing
// is set.
func openWorkspace(allowMissing bool) (*workspace, error) {
	s := currentSettings()
	path, err := pathutil.ResolveAbsolutePath(s.ResolveConfigFile(cfgFile))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve configuration path: %w", err)
	}

	v, err := validation.New(validation.WithStrictRuns(s.StrictRuns))
	if err != nil {
		return nil, err
	}

	cfg, existed, err := config.LoadOrInit(path, v)
	if err != nil {
		return nil, err
	}
	if !existed && !allowMissing {
		return nil, fmt.Errorf("configuration file %s does not exist", path)
	}

	match, err := runlist.ParseTagMatch(s.TagMatch)
	if err != nil {
		return nil, err
	}

	GetLogger().Debug().Str("path", path).Bool("existed", existed).
		Int("templates", len(cfg.TemplateData)).Int("runs", len(cfg.RunList)).
		Msg("configuration loaded")

	return &workspace{
		path:      path,
		existed:   existed,
		validator: v,
		manager:   runlist.NewManager(cfg, v, runlist.WithTagMatch(match), runlist.WithLogger(GetLogger())),
	}, nil
}

// save writes the whole configuration back to its file.
func (w *workspace) save() error {
	if err := config.SaveTateConfig(w.path, w.manager.Config()); err != nil {
		return err
	}
	GetLogger().Debug().Str("path", w.path).Msg("configuration saved")
	return nil
}

func (w *workspace) generator() *generator.Generator {
	return generator.New(w.validator, generator.WithLogger(GetLogger()))
}
