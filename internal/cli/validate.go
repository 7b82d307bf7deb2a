package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

// newValidateCmd creates the 'validate' command.
func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration file",
		Long: `Check every template and run in the configuration file.

Templates are checked against the template schema. Runs are checked against
the run schema and the declared argument types of their template, and must
reference an existing template. Use --strict-runs to also reject run
arguments the template does not declare.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(false)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			cfg := ws.manager.Config()

			if err := ws.validator.CheckConfig(cfg); err != nil {
				var joined interface{ Unwrap() []error }
				if errors.As(err, &joined) {
					for _, e := range joined.Unwrap() {
						fmt.Fprintf(out, "✗ %v\n", e)
					}
				} else {
					fmt.Fprintf(out, "✗ %v\n", err)
				}
				return fmt.Errorf("%s is invalid", ws.path)
			}

			fmt.Fprintf(out, "✓ %s: %d templates, %d runs\n", ws.path, len(cfg.TemplateData), len(cfg.RunList))
			return nil
		},
	}
}
