package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tatebench/tate/internal/models"
	"github.com/tatebench/tate/internal/progress"
	"github.com/tatebench/tate/internal/registry"
	"github.com/tatebench/tate/internal/runlist"
)

// newDialogueCmd creates the 'dialogue' command.
func newDialogueCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "dialogue",
		Aliases: []string{"shell"},
		Short:   "Edit the configuration interactively",
		Long: `Interactive editor for templates and runs.

Menu entries:
  print all       - Print all runs
  create run      - Create a run, prompting for every argument
  create runtype  - Create a template
  duplicate run   - Copy a run
  delete run      - Delete a run
  save            - Write the configuration file

Type '?' at any argument prompt for help and 'q' to abort. Unsaved changes
are offered for saving on exit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(true)
			if err != nil {
				return err
			}
			in := cmd.InOrStdin()
			d := newDialogue(ws, newPrompter(in, cmd.OutOrStdout()))
			if f, ok := in.(*os.File); ok && !progress.IsTerminal(f) {
				d.repeatMenu = false
			}
			return d.run()
		},
	}
}

// dialogue is one interactive editing session over a workspace.
type dialogue struct {
	ws      *workspace
	p       *prompter
	session runlist.Session
	dirty   bool
	// repeatMenu reprints the menu before every prompt. Scripted input
	// only sees it at the start and after help.
	repeatMenu bool
}

type menuEntry struct {
	description string
	action      func() error
}

func newDialogue(ws *workspace, p *prompter) *dialogue {
	return &dialogue{ws: ws, p: p, repeatMenu: true}
}

func (d *dialogue) menu() map[string]menuEntry {
	return map[string]menuEntry{
		"print all":      {"Print all runs", d.printAll},
		"create run":     {"Create a run", d.createRun},
		"create runtype": {"Create a runtype", d.createRuntype},
		"duplicate run":  {"Duplicate a run", d.duplicateRun},
		"delete run":     {"Delete a run", d.deleteRun},
		"save":           {"Save the configuration", d.save},
	}
}

// run drives the menu loop until an exit word or end of input.
func (d *dialogue) run() error {
	if d.ws.existed {
		d.p.println("TateConfig successfully loaded.")
	} else {
		ok, err := d.p.confirm(fmt.Sprintf("Unable to open %s. Open a blank file?", d.ws.path))
		if err != nil || !ok {
			return ignoreEOF(err)
		}
		d.p.println("Blank TateConfig created.")
	}

	entries := d.menu()
	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)

	showMenu := true
	for {
		if showMenu || d.repeatMenu {
			d.p.println("\nWhat would you like to do?")
			d.p.println()
			for _, name := range names {
				d.p.printf("%s: %s\n", name, entries[name].description)
			}
		}
		showMenu = false
		choice, err := d.p.ask("-> ")
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		choice = strings.ToLower(choice)
		if isExit(choice) {
			break
		}
		if isHelp(choice) || choice == "" {
			showMenu = true
			continue
		}
		entry, ok := entries[choice]
		if !ok {
			d.p.println("Invalid input.")
			continue
		}
		GetLogger().Debugf("dialogue: %s", choice)
		if err := entry.action(); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			if errors.Is(err, errAborted) {
				d.p.println("Aborted.")
				continue
			}
			return err
		}
	}

	if d.dirty {
		save, err := d.p.confirm(fmt.Sprintf("Save changes to %s?", d.ws.path))
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		if save {
			if err := d.save(); err != nil {
				return err
			}
		} else {
			d.p.println("Changes discarded.")
		}
	}
	d.p.println("Exiting.")
	return nil
}

func (d *dialogue) printAll() error {
	printRuns(d.p.out, d.ws.manager.Runs(), d.ws.manager.Templates())
	return nil
}

func (d *dialogue) save() error {
	if err := d.ws.save(); err != nil {
		return err
	}
	d.dirty = false
	d.p.printf("Saved %s.\n", d.ws.path)
	return nil
}

// createRun prompts for a template and each of its arguments, then inserts
// the run. Typing an exit word abandons the run.
func (d *dialogue) createRun() error {
	templates := d.ws.manager.Templates()
	d.p.printf("Input the run type. Current options: %s\n", strings.Join(templates.Types(), " "))
	runType, err := d.p.ask("-> ")
	if err != nil {
		return err
	}
	t, ok := templates.Get(runType)
	if !ok {
		d.p.printf("%s is not currently an option. Use 'create runtype' to add it.\n", runType)
		return nil
	}

	infos, err := templates.Args(runType)
	if err != nil {
		return err
	}
	if !t.HasArg(models.TagArg) {
		infos = append(infos, tagArgInfo())
	}

	run := models.Run{TemplateType: runType, Args: make(map[string]models.Value, len(infos))}
	for _, info := range infos {
		v, err := d.askArg(info.Name, info.Type, info.Annotation, info.Options)
		if errors.Is(err, errAborted) {
			d.p.println("Aborting. New run not added.")
			return nil
		}
		if err != nil {
			return err
		}
		run.Args[info.Name] = v
	}

	for d.ws.manager.HasTag(run.Tag()) || run.Tag() == "" {
		tag, err := d.p.ask("Duplicate or empty tag! Input a new tag: ")
		if err != nil {
			return err
		}
		if isExit(tag) {
			d.p.println("Aborting. New run not added.")
			return nil
		}
		run.SetTag(tag)
	}

	if err := d.ws.manager.Insert(run); err != nil {
		d.p.printf("Run not added: %v\n", err)
		return nil
	}
	d.dirty = true
	d.p.printf("Run %s added to list.\n", d.session.SetCurrent(run.Tag()))
	return nil
}

func tagArgInfo() registry.ArgInfo {
	return registry.ArgInfo{Name: models.TagArg, Type: models.ArgString, Annotation: "Unique run tag"}
}

// askArg prompts for one argument until the answer parses as argType.
func (d *dialogue) askArg(name string, argType models.ArgType, annotation string, options []string) (models.Value, error) {
	for {
		answer, err := d.p.ask(name + ": ")
		if err != nil {
			return models.Value{}, err
		}
		switch {
		case isExit(answer):
			return models.Value{}, errAborted
		case isHelp(answer):
			d.p.printf("Annotation:\n%s\nType:\n%s\n", annotation, argType)
			if len(options) > 0 {
				d.p.printf("Options:\n%s\n", strings.Join(options, " "))
			}
			d.p.println()
			continue
		}
		v, err := argType.Parse(answer)
		if err != nil {
			d.p.printf("Invalid input: %v\n", err)
			continue
		}
		return v, nil
	}
}

func (d *dialogue) createRuntype() error {
	_, err := d.createTemplate()
	return err
}

// createTemplate walks through name, arguments, default props and executor
// fields of a new template and registers it on confirmation. It reports
// whether a template was added.
func (d *dialogue) createTemplate() (bool, error) {
	templates := d.ws.manager.Templates()

	var name string
	overwrite := false
	for {
		answer, err := d.p.ask("Input the name of the new template: ")
		if err != nil {
			return false, err
		}
		if answer == "" {
			continue
		}
		if isExit(answer) {
			return false, nil
		}
		if !templates.Has(answer) {
			name = answer
			break
		}
		replace, err := d.p.confirm("Template name already exists! Overwrite it?")
		if err != nil {
			return false, err
		}
		if replace {
			name, overwrite = answer, true
			break
		}
	}

	t := models.Template{
		Types:        make(map[string]models.ArgType),
		Annotations:  make(map[string]string),
		Translations: make(map[string]string),
		DefaultProps: make(map[string]models.Value),
	}
	if err := d.askTemplateArgs(&t); err != nil {
		return false, err
	}
	if !t.HasArg(models.TagArg) {
		info := tagArgInfo()
		t.Args = append([]string{info.Name}, t.Args...)
		t.Types[info.Name] = info.Type
		t.Annotations[info.Name] = info.Annotation
	}
	if err := d.askDefaultProps(&t); err != nil {
		return false, err
	}
	if err := d.askExecutor(&t); err != nil {
		return false, err
	}

	add, err := d.p.confirm(fmt.Sprintf("Add template %s to the TateConfig?", name))
	if err != nil {
		return false, err
	}
	if !add {
		d.p.printf("Template %s discarded.\n", name)
		return false, nil
	}
	if err := d.ws.manager.PutTemplate(name, t, overwrite); err != nil {
		d.p.printf("Template not added: %v\n", err)
		return false, nil
	}
	d.dirty = true
	d.p.printf("Template %s added.\n", name)
	return true, nil
}

func (d *dialogue) askTemplateArgs(t *models.Template) error {
	for {
		arg, err := d.p.ask("Input an arg ('exit' finishes): ")
		if err != nil {
			return err
		}
		if arg == "" {
			continue
		}
		if isExit(arg) {
			return nil
		}
		if t.HasArg(arg) {
			replace, err := d.p.confirm("Argument already exists! Overwrite?")
			if err != nil {
				return err
			}
			if !replace {
				continue
			}
		}

		var argType models.ArgType
		for {
			answer, err := d.p.ask("Input a type for the arg (string or integer, default string): ")
			if err != nil {
				return err
			}
			if isExit(answer) {
				return nil
			}
			if argType, err = models.ParseArgType(answer); err == nil {
				break
			}
			d.p.printf("Invalid type: %v\n", err)
		}

		annotation, err := d.p.ask("Input an annotation for the arg: ")
		if err != nil {
			return err
		}
		if isExit(annotation) {
			return nil
		}
		translation, err := d.p.ask("Input the property that will be modified (blank skips): ")
		if err != nil {
			return err
		}
		if isExit(translation) {
			return nil
		}

		d.p.printf("Current argument:\n Arg: %s\n Type: %s\n Annotation: %s\n Translation: %s\n",
			arg, argType, annotation, translation)
		add, err := d.p.confirm("Add the argument?")
		if err != nil {
			return err
		}
		if !add {
			continue
		}
		if !t.HasArg(arg) {
			t.Args = append(t.Args, arg)
		}
		t.Types[arg] = argType
		t.Annotations[arg] = annotation
		if translation != "" {
			t.Translations[arg] = translation
		} else {
			delete(t.Translations, arg)
		}
	}
}

func (d *dialogue) askDefaultProps(t *models.Template) error {
	for {
		prop, err := d.p.ask("Input a default property (blank or 'exit' finishes): ")
		if err != nil {
			return err
		}
		if prop == "" || isExit(prop) {
			return nil
		}
		if _, exists := t.DefaultProps[prop]; exists {
			replace, err := d.p.confirm("Property is already in template! Overwrite?")
			if err != nil {
				return err
			}
			if !replace {
				continue
			}
		}
		value, err := d.p.ask("Input a value for the property: ")
		if err != nil {
			return err
		}
		t.DefaultProps[prop] = models.ParseScalar(value)
	}
}

func (d *dialogue) askExecutor(t *models.Template) error {
	fields := []struct {
		question string
		dst      *string
	}{
		{"Controller run type (blank skips): ", &t.RunType},
		{"Java executable (blank skips): ", &t.Java},
		{"Benchmark jar (blank skips): ", &t.Jar},
		{fmt.Sprintf("Props file (blank uses %s): ", models.DefaultPropsFile), &t.PropsFile},
	}
	for _, f := range fields {
		answer, err := d.p.ask(f.question)
		if err != nil {
			return err
		}
		if isExit(answer) {
			return nil
		}
		*f.dst = answer
	}
	return nil
}

// deleteRun removes the run with exactly the entered tag after confirmation.
func (d *dialogue) deleteRun() error {
	d.p.println("Input the tag of the Run that you want to delete. Available tags")
	d.p.printf("are %s\n", strings.Join(d.ws.manager.Tags(), " "))
	tag, err := d.p.ask("-> ")
	if err != nil {
		return err
	}
	if !d.ws.manager.HasTag(tag) {
		d.p.printf("Tag %s does not exist.\n", tag)
		return nil
	}
	ok, err := d.p.confirm(fmt.Sprintf("Found tag %s. Do you want to delete?", tag))
	if err != nil {
		return err
	}
	if !ok {
		d.p.printf("Deletion of tag %s cancelled.\n", tag)
		return nil
	}
	if _, err := d.ws.manager.RemoveExact(tag); err != nil {
		return err
	}
	if d.session.Current() == tag {
		d.session.Clear()
	}
	d.dirty = true
	d.p.printf("Tag %s deleted.\n", tag)
	return nil
}

// duplicateRun copies a run; a blank answer picks the run edited last.
func (d *dialogue) duplicateRun() error {
	prompt := "Input the tag of the Run to duplicate: "
	if cur := d.session.Current(); cur != "" {
		prompt = fmt.Sprintf("Input the tag of the Run to duplicate [%s]: ", cur)
	}
	tag, err := d.p.ask(prompt)
	if err != nil {
		return err
	}
	if tag == "" {
		tag = d.session.Current()
	}
	if isExit(tag) || tag == "" {
		return nil
	}
	cp, err := d.ws.manager.Duplicate(tag)
	if err != nil {
		d.p.printf("Run not duplicated: %v\n", err)
		return nil
	}
	d.dirty = true
	d.p.printf("Run %s added to list.\n", d.session.SetCurrent(cp.Tag()))
	return nil
}

func ignoreEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
