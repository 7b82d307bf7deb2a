package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tatebench/tate/internal/generator"
	"github.com/tatebench/tate/internal/models"
	"github.com/tatebench/tate/internal/pathutil"
	"github.com/tatebench/tate/internal/progress"
	"github.com/tatebench/tate/internal/validation"
)

// newGenerateCmd creates the 'generate' command.
func newGenerateCmd() *cobra.Command {
	var (
		outDir     string
		outputFile string
		withProps  bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Resolve every run into a benchmark run specification",
		Long: `Resolve the run list against its templates.

For each run the property set is built from the template's default_props,
then translated run arguments, then the run's props_extra (later wins).
Backend and injector counts are read from default_props
(specjbb.group.count, specjbb.txi.pergroups.count; default 1).

Generation is all-or-nothing: one invalid run aborts the command.

By default the resolved specifications are printed as a JSON array.
With --out-dir, each run gets its own <NN>-<tag>.json file. --props also
writes <NN>-<tag>.props in Java properties format; without --out-dir the
files go to the props directory from settings.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(false)
			if err != nil {
				return err
			}
			if err := ws.validator.CheckConfig(ws.manager.Config()); err != nil {
				return fmt.Errorf("configuration is invalid: %w", err)
			}
			runs := ws.manager.Runs()
			specs, err := ws.generator().Generate(ws.manager.Templates(), runs)
			if err != nil {
				return fmt.Errorf("generation failed: %w", err)
			}
			GetLogger().Debug().Int("runs", len(specs)).Msg("runs resolved")

			if outDir != "" || withProps {
				if outDir == "" {
					outDir = currentSettings().PropsDir
				}
				dir, err := pathutil.ResolveAbsolutePath(outDir)
				if err != nil {
					return fmt.Errorf("failed to resolve output directory: %w", err)
				}
				return writeRunFiles(dir, runs, specs, withProps, progress.NewReporter())
			}

			var out io.Writer = cmd.OutOrStdout()
			if outputFile != "" {
				f, err := os.Create(outputFile)
				if err != nil {
					return fmt.Errorf("failed to create output file: %w", err)
				}
				defer f.Close()
				out = f
			}
			return generator.EncodeJSON(out, specs)
		},
	}

	cmd.Flags().StringVarP(&outDir, "out-dir", "d", "", "Write one .json file per run into this directory")
	cmd.Flags().BoolVar(&withProps, "props", false, "Also write a .props file per run")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Write the JSON array to a file instead of stdout")

	return cmd
}

// writeRunFiles writes <NN>-<tag>.json, and <NN>-<tag>.props when withProps
// is set, for each spec. runs and specs are index-aligned.
func writeRunFiles(dir string, runs []models.Run, specs []models.ResolvedRun, withProps bool, reporter progress.Reporter) error {
	if len(runs) != len(specs) {
		return errors.New("run and spec counts differ")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	reporter.Start(int64(len(specs)), "Writing run files")
	for i, spec := range specs {
		tag := runs[i].Tag()
		fail := func(err error) error {
			reporter.Error(err)
			GetLogger().Error().Err(err).Str("tag", tag).Msg("failed to write run files")
			return err
		}

		name, err := validation.RunFileBase(i, tag)
		if err != nil {
			return fail(err)
		}
		if err := validation.ValidatePathInDirectory(name, dir); err != nil {
			return fail(err)
		}
		base := filepath.Join(dir, name)
		reporter.SetDescription(tag)

		if err := writeFile(base+".json", func(w io.Writer) error {
			return generator.EncodeRunJSON(w, spec)
		}); err != nil {
			return fail(err)
		}
		if withProps {
			if err := writeFile(base+".props", func(w io.Writer) error {
				return generator.WriteProps(w, spec.Props)
			}); err != nil {
				return fail(err)
			}
		}
		reporter.Update(int64(i + 1))
		GetLogger().Debug().Str("tag", tag).Str("file", base).Msg("run files written")
	}
	reporter.Finish()

	GetLogger().Info().Int("runs", len(specs)).Str("dir", dir).Msg("run files written")
	return nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}
