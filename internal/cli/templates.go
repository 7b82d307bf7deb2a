package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// newTemplatesCmd creates the 'templates' command group.
func newTemplatesCmd() *cobra.Command {
	templatesCmd := &cobra.Command{
		Use:     "templates",
		Aliases: []string{"runtypes"},
		Short:   "Inspect and create run templates",
		Long: `Template commands.

Commands:
  list    - List template names
  show    - Show a template's arguments, types, annotations and translations
  create  - Create a template interactively`,
	}

	templatesCmd.AddCommand(newTemplatesListCmd())
	templatesCmd.AddCommand(newTemplatesShowCmd())
	templatesCmd.AddCommand(newTemplatesCreateCmd())

	return templatesCmd
}

func newTemplatesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List template names",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(false)
			if err != nil {
				return err
			}
			for _, name := range ws.manager.Templates().Types() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

func newTemplatesShowCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show NAME",
		Short: "Show a template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(false)
			if err != nil {
				return err
			}
			name := args[0]
			out := cmd.OutOrStdout()

			if asJSON {
				t, ok := ws.manager.Templates().Get(name)
				if !ok {
					return fmt.Errorf("template %q not found", name)
				}
				enc := json.NewEncoder(out)
				enc.SetIndent("", "    ")
				return enc.Encode(t)
			}

			infos, err := ws.manager.Templates().Args(name)
			if err != nil {
				return err
			}
			t, _ := ws.manager.Templates().Get(name)
			fmt.Fprintf(out, "Template: %s\n", name)
			fmt.Fprintf(out, "Run type: %s\nJava: %s\nJar: %s\nProps file: %s\n\n",
				t.RunType, t.Java, t.Jar, t.PropsFileOrDefault())
			for _, info := range infos {
				fmt.Fprintf(out, "%-20s %-8s %s\n", info.Name, info.Type, info.Annotation)
				if info.Translation != "" {
					fmt.Fprintf(out, "%-20s -> %s\n", "", info.Translation)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the template as JSON")
	return cmd
}

func newTemplatesCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create",
		Short: "Create a template interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(true)
			if err != nil {
				return err
			}
			d := newDialogue(ws, newPrompter(cmd.InOrStdin(), cmd.OutOrStdout()))
			added, err := d.createTemplate()
			if err != nil {
				return err
			}
			if !added {
				return nil
			}
			return ws.save()
		},
	}
}
