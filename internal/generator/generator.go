// Package generator turns templates and runs into resolved run
// specifications for the benchmark executor.
//
// Per run the property set is built in a fixed order, later stages winning on
// key collisions:
//
//  1. the template's default_props (copied)
//  2. translated run arguments (props[translation] = run.args[arg])
//  3. the run's props_extra
//
// Backend and injector counts come from default_props only.
package generator

import (
	"fmt"
	"strings"

	"dario.cat/mergo"
	"github.com/mohae/deepcopy"

	"github.com/tatebench/tate/internal/logging"
	"github.com/tatebench/tate/internal/models"
	"github.com/tatebench/tate/internal/validation"
)

// Property keys the topology counts are read from.
const (
	InjectorCountProp = "specjbb.txi.pergroups.count"
	BackendCountProp  = "specjbb.group.count"
)

// TemplateSource looks templates up by name. *registry.Registry satisfies it.
type TemplateSource interface {
	Get(name string) (models.Template, bool)
}

// Generator resolves runs. It holds no state beyond its validator and logger.
type Generator struct {
	validator *validation.Validator
	logger    *logging.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithLogger sets the logger used to report incomplete templates.
func WithLogger(l *logging.Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.logger = l
		}
	}
}

// New returns a Generator validating with v.
func New(v *validation.Validator, opts ...Option) *Generator {
	g := &Generator{validator: v, logger: logging.Nop()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate resolves every run in order. It is all-or-nothing: the first run
// or template that fails validation aborts the call and no specs are returned.
func (g *Generator) Generate(templates TemplateSource, runs []models.Run) ([]models.ResolvedRun, error) {
	specs := make([]models.ResolvedRun, 0, len(runs))
	for i, run := range runs {
		spec, err := g.Resolve(templates, run)
		if err != nil {
			return nil, fmt.Errorf("run %d (%q): %w", i, run.Tag(), err)
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

// Resolve builds the specification for a single run.
func (g *Generator) Resolve(templates TemplateSource, run models.Run) (models.ResolvedRun, error) {
	if err := g.validator.CheckRun(run); err != nil {
		return models.ResolvedRun{}, err
	}
	t, ok := templates.Get(run.TemplateType)
	if !ok {
		return models.ResolvedRun{}, fmt.Errorf("%w: %q", models.ErrUnknownTemplate, run.TemplateType)
	}
	if err := g.validator.CheckTemplate(run.TemplateType, t); err != nil {
		return models.ResolvedRun{}, err
	}
	if err := g.validator.CheckRunAgainst(run, t); err != nil {
		return models.ResolvedRun{}, err
	}
	if missing := missingExecutorFields(t); len(missing) > 0 {
		g.logger.Warnf("template %q has no %s; run %q is emitted with them empty",
			run.TemplateType, strings.Join(missing, ", "), run.Tag())
	}

	props, err := mergeProps(t, run)
	if err != nil {
		return models.ResolvedRun{}, err
	}

	injectors, err := countProp(run.TemplateType, t, InjectorCountProp)
	if err != nil {
		return models.ResolvedRun{}, err
	}
	backends, err := countProp(run.TemplateType, t, BackendCountProp)
	if err != nil {
		return models.ResolvedRun{}, err
	}

	return models.ResolvedRun{
		Controller: models.Controller{Type: t.RunType},
		Backends:   backends,
		Injectors:  injectors,
		Java:       t.Java,
		Jar:        t.Jar,
		Props:      props,
		PropsFile:  t.PropsFileOrDefault(),
	}, nil
}

// missingExecutorFields lists the executor settings a template leaves unset.
// They are optional in a template and passed through as given.
func missingExecutorFields(t models.Template) []string {
	var missing []string
	if t.RunType == "" {
		missing = append(missing, "run_type")
	}
	if t.Java == "" {
		missing = append(missing, "java")
	}
	if t.Jar == "" {
		missing = append(missing, "jar")
	}
	return missing
}

func mergeProps(t models.Template, run models.Run) (map[string]models.Value, error) {
	props := make(map[string]models.Value, len(t.DefaultProps)+len(t.Translations)+len(run.PropsExtra))
	if t.DefaultProps != nil {
		props = deepcopy.Copy(t.DefaultProps).(map[string]models.Value)
	}

	// Walk args in declaration order so two args translating to the same
	// key resolve the same way every time.
	for _, arg := range t.Args {
		key, translated := t.Translations[arg]
		if !translated {
			continue
		}
		v, ok := run.Args[arg]
		if !ok {
			return nil, models.NewSchemaError("run", run.Tag(),
				fmt.Sprintf("arg %q is required by translation to %q", arg, key))
		}
		props[key] = v
	}

	if len(run.PropsExtra) > 0 {
		if err := mergo.Merge(&props, run.PropsExtra, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("failed to merge props_extra: %w", err)
		}
	}
	return props, nil
}

func countProp(name string, t models.Template, key string) (int, error) {
	v, ok := t.DefaultProps[key]
	if !ok {
		return 1, nil
	}
	n, err := v.AsInt()
	if err != nil {
		return 0, models.NewSchemaError("template", name, fmt.Sprintf("default_props[%s]: %v", key, err))
	}
	if n < 1 {
		return 0, models.NewSchemaError("template", name, fmt.Sprintf("default_props[%s] must be at least 1, got %d", key, n))
	}
	return int(n), nil
}
