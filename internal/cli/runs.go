package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tatebench/tate/internal/models"
	"github.com/tatebench/tate/internal/registry"
)

// newRunsCmd creates the 'runs' command group.
func newRunsCmd() *cobra.Command {
	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "Manage the run list",
		Long: `Run list commands.

Commands:
  list       - List run tags in order
  show       - Show one run's arguments
  create     - Create a run from a template with placeholder values
  duplicate  - Copy a run, appending "-(copy)" to its tag
  set        - Set run arguments or extra props
  remove     - Remove a run
  reorder    - Swap a run with the run at an index`,
	}

	runsCmd.AddCommand(newRunsListCmd())
	runsCmd.AddCommand(newRunsShowCmd())
	runsCmd.AddCommand(newRunsCreateCmd())
	runsCmd.AddCommand(newRunsDuplicateCmd())
	runsCmd.AddCommand(newRunsSetCmd())
	runsCmd.AddCommand(newRunsRemoveCmd())
	runsCmd.AddCommand(newRunsReorderCmd())

	return runsCmd
}

func newRunsListCmd() *cobra.Command {
	var verboseList bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List run tags in order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(false)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !verboseList {
				for i, tag := range ws.manager.Tags() {
					fmt.Fprintf(out, "%3d  %s\n", i, tag)
				}
				return nil
			}
			printRuns(out, ws.manager.Runs(), ws.manager.Templates())
			return nil
		},
	}
	cmd.Flags().BoolVarP(&verboseList, "long", "l", false, "Print every run's arguments in template order")
	return cmd
}

func newRunsShowCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show TAG",
		Short: "Show one run's arguments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(false)
			if err != nil {
				return err
			}
			run, err := ws.manager.Get(args[0])
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "    ")
				return enc.Encode(run)
			}
			printRuns(cmd.OutOrStdout(), []models.Run{run}, ws.manager.Templates())
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the run as JSON")
	return cmd
}

func newRunsCreateCmd() *cobra.Command {
	var setArgs []string

	cmd := &cobra.Command{
		Use:   "create TEMPLATE",
		Short: "Create a run from a template",
		Long: `Create a run of the given template. Every argument starts at its type's
placeholder ("0" for string, 0 for integer) and the run gets a generated
tag "<template>-<8 hex chars>". Use --set ARG=VALUE to fill arguments.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(false)
			if err != nil {
				return err
			}
			tag, err := ws.manager.Create(args[0])
			if err != nil {
				return err
			}
			if len(setArgs) > 0 {
				if err := applyAssignments(ws, tag, setArgs, nil); err != nil {
					return err
				}
				tag = lastTag(tag, setArgs)
			}
			if err := ws.save(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tag)
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&setArgs, "set", nil, "Set an argument (ARG=VALUE, repeatable)")
	return cmd
}

func newRunsDuplicateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "duplicate TAG",
		Short: "Copy a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(false)
			if err != nil {
				return err
			}
			cp, err := ws.manager.Duplicate(args[0])
			if err != nil {
				return err
			}
			if err := ws.save(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cp.Tag())
			return nil
		},
	}
}

func newRunsSetCmd() *cobra.Command {
	var extra []string

	cmd := &cobra.Command{
		Use:   "set TAG [ARG=VALUE ...]",
		Short: "Set run arguments or extra props",
		Long: `Set arguments of a run. Values are parsed according to the template's
declared type. Use --prop KEY=VALUE to set props_extra entries, which
override translated and default properties when the run is generated.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(false)
			if err != nil {
				return err
			}
			if err := applyAssignments(ws, args[0], args[1:], extra); err != nil {
				return err
			}
			return ws.save()
		},
	}
	cmd.Flags().StringArrayVar(&extra, "prop", nil, "Set a props_extra entry (KEY=VALUE, repeatable)")
	return cmd
}

func newRunsRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove TAG",
		Short: "Remove a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(false)
			if err != nil {
				return err
			}
			removed, err := ws.manager.Remove(args[0])
			if err != nil {
				return err
			}
			if err := ws.save(); err != nil {
				return err
			}
			GetLogger().Info().Str("tag", removed.Tag()).Msg("run removed")
			return nil
		},
	}
}

func newRunsReorderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reorder TAG INDEX",
		Short: "Swap a run with the run at INDEX",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid index %q: %w", args[1], err)
			}
			ws, err := openWorkspace(false)
			if err != nil {
				return err
			}
			if err := ws.manager.Reorder(args[0], index); err != nil {
				return err
			}
			return ws.save()
		},
	}
}

// applyAssignments sets ARG=VALUE arguments and KEY=VALUE extra props on the
// run tagged tag.
func applyAssignments(ws *workspace, tag string, assignments, extra []string) error {
	run, err := ws.manager.Get(tag)
	if err != nil {
		return err
	}
	t, ok := ws.manager.Templates().Get(run.TemplateType)
	if !ok {
		return fmt.Errorf("%w: %q", models.ErrUnknownTemplate, run.TemplateType)
	}
	originalTag := run.Tag()

	for _, a := range assignments {
		key, raw, err := splitAssignment(a)
		if err != nil {
			return err
		}
		argType, declared := t.Types[key]
		if !declared {
			if key != models.TagArg {
				return fmt.Errorf("template %q has no argument %q", run.TemplateType, key)
			}
			argType = models.ArgString
		}
		v, err := argType.Parse(raw)
		if err != nil {
			return fmt.Errorf("argument %s: %w", key, err)
		}
		run.Args[key] = v
	}

	for _, e := range extra {
		key, raw, err := splitAssignment(e)
		if err != nil {
			return err
		}
		if run.PropsExtra == nil {
			run.PropsExtra = make(map[string]models.Value)
		}
		run.PropsExtra[key] = models.ParseScalar(raw)
	}

	return ws.manager.Update(originalTag, run)
}

// lastTag returns the tag a run ends up with after assignments that may set Tag.
func lastTag(tag string, assignments []string) string {
	for _, a := range assignments {
		if key, raw, err := splitAssignment(a); err == nil && key == models.TagArg {
			tag = raw
		}
	}
	return tag
}

func splitAssignment(s string) (string, string, error) {
	key, value, ok := strings.Cut(s, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return "", "", fmt.Errorf("expected KEY=VALUE, got %q", s)
	}
	return key, value, nil
}

// printRuns prints runs with their arguments in template order. Arguments
// the template does not declare follow, sorted.
func printRuns(out io.Writer, runs []models.Run, templates *registry.Registry) {
	for _, run := range runs {
		fmt.Fprintf(out, "\nTemplate Type: %s\n", run.TemplateType)
		seen := make(map[string]bool)
		if infos, err := templates.Args(run.TemplateType); err == nil {
			for _, info := range infos {
				seen[info.Name] = true
				if v, ok := run.Args[info.Name]; ok {
					fmt.Fprintf(out, "%s: %s\n", info.Name, v.Text())
				}
			}
		}
		var rest []string
		for name := range run.Args {
			if !seen[name] {
				rest = append(rest, name)
			}
		}
		sort.Strings(rest)
		for _, name := range rest {
			fmt.Fprintf(out, "%s: %s\n", name, run.Args[name].Text())
		}
		if len(run.PropsExtra) > 0 {
			keys := make([]string, 0, len(run.PropsExtra))
			for k := range run.PropsExtra {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintln(out, "props_extra:")
			for _, k := range keys {
				fmt.Fprintf(out, "  %s=%s\n", k, run.PropsExtra[k].Text())
			}
		}
		fmt.Fprintln(out)
	}
}
