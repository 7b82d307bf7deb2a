// Package validation checks templates, runs and whole configuration documents
// before they reach the registry, the run list or the generator.
//
// Raw documents go through three layers:
//   - a JSON Schema gate on the decoded JSON (shape, required keys, scalar types)
//   - struct rules on the typed models (go-playground/validator tags)
//   - cross-field checks (arg references, declared types of run arguments)
//
// Every failure is a *models.SchemaError. Validation never mutates its input.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"
	"github.com/kaptinlin/jsonschema"

	"github.com/tatebench/tate/internal/models"
)

// Validator holds the compiled schemas. It is safe to reuse.
type Validator struct {
	template   *jsonschema.Schema
	run        *jsonschema.Schema
	config     *jsonschema.Schema
	structs    *validator.Validate
	strictRuns bool
}

// Option configures a Validator.
type Option func(*Validator)

// WithStrictRuns rejects unknown keys on runs and run arguments the template
// does not declare. Templates are always strict.
func WithStrictRuns(strict bool) Option {
	return func(v *Validator) {
		v.strictRuns = strict
	}
}

// New compiles the schemas.
func New(opts ...Option) (*Validator, error) {
	v := &Validator{structs: validator.New()}
	for _, opt := range opts {
		opt(v)
	}

	var err error
	if v.template, err = compile(templateSchema(true)); err != nil {
		return nil, fmt.Errorf("failed to compile template schema: %w", err)
	}
	if v.run, err = compile(runSchema(v.strictRuns)); err != nil {
		return nil, fmt.Errorf("failed to compile run schema: %w", err)
	}
	if v.config, err = compile(configSchema); err != nil {
		return nil, fmt.Errorf("failed to compile config schema: %w", err)
	}
	return v, nil
}

// MustNew is New for callers with fixed options.
func MustNew(opts ...Option) *Validator {
	v, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return v
}

// StrictRuns reports whether run validation rejects unknown keys.
func (v *Validator) StrictRuns() bool {
	return v.strictRuns
}

func compile(schema map[string]any) (*jsonschema.Schema, error) {
	data, err := json.Marshal(schema)
	if err != nil {
		return nil, err
	}
	return jsonschema.NewCompiler().Compile(data)
}

// ValidateTemplate validates a decoded JSON template and returns the typed value.
func (v *Validator) ValidateTemplate(name string, raw any) (models.Template, error) {
	var t models.Template
	if err := checkSchema(v.template, raw, "template", name); err != nil {
		return t, err
	}
	if err := decode(raw, &t); err != nil {
		return t, models.NewSchemaError("template", name, err.Error())
	}
	if err := v.CheckTemplate(name, t); err != nil {
		return models.Template{}, err
	}
	return t, nil
}

// ValidateRun validates a decoded JSON run and returns the typed value.
func (v *Validator) ValidateRun(raw any) (models.Run, error) {
	var r models.Run
	if err := checkSchema(v.run, raw, "run", rawTag(raw)); err != nil {
		return r, err
	}
	if err := decode(raw, &r); err != nil {
		return r, models.NewSchemaError("run", rawTag(raw), err.Error())
	}
	if err := v.CheckRun(r); err != nil {
		return models.Run{}, err
	}
	return r, nil
}

// ValidateConfig validates a decoded configuration document. Dangling
// template references are not checked here; see CheckConfig.
func (v *Validator) ValidateConfig(raw any) (*models.TateConfig, error) {
	if err := checkSchema(v.config, raw, "config", ""); err != nil {
		return nil, err
	}
	doc := raw.(map[string]any)

	cfg := models.NewTateConfig()
	templates, _ := doc["TemplateData"].(map[string]any)
	for _, name := range sortedKeys(templates) {
		t, err := v.ValidateTemplate(name, templates[name])
		if err != nil {
			return nil, fmt.Errorf("TemplateData[%s]: %w", name, err)
		}
		cfg.TemplateData[name] = t
	}

	runs, _ := doc["RunList"].([]any)
	for i, rawRun := range runs {
		r, err := v.ValidateRun(rawRun)
		if err != nil {
			return nil, fmt.Errorf("RunList[%d]: %w", i, err)
		}
		cfg.RunList = append(cfg.RunList, r)
	}
	return cfg, nil
}

// CheckTemplate validates an already typed template.
func (v *Validator) CheckTemplate(name string, t models.Template) error {
	problems := v.structProblems(t)

	for _, arg := range sortedKeys(t.Types) {
		if !t.HasArg(arg) {
			problems = append(problems, fmt.Sprintf("types references unknown arg %q", arg))
		}
	}
	for _, arg := range sortedKeys(t.Annotations) {
		if !t.HasArg(arg) {
			problems = append(problems, fmt.Sprintf("annotations references unknown arg %q", arg))
		}
	}
	for _, arg := range sortedKeys(t.Translations) {
		if !t.HasArg(arg) {
			problems = append(problems, fmt.Sprintf("translations references unknown arg %q", arg))
		}
	}
	for _, arg := range sortedKeys(t.PropOptions) {
		if !t.HasArg(arg) {
			problems = append(problems, fmt.Sprintf("prop_options references unknown arg %q", arg))
		}
	}
	for _, arg := range t.Args {
		if _, ok := t.Types[arg]; !ok {
			problems = append(problems, fmt.Sprintf("arg %q has no declared type", arg))
		}
	}
	for _, key := range sortedKeys(t.DefaultProps) {
		if !t.DefaultProps[key].IsValid() {
			problems = append(problems, fmt.Sprintf("default_props[%s] has no value", key))
		}
	}

	if len(problems) > 0 {
		return models.NewSchemaError("template", name, problems...)
	}
	return nil
}

// CheckRun validates an already typed run on its own.
func (v *Validator) CheckRun(r models.Run) error {
	problems := v.structProblems(r)

	tag, ok := r.Args[models.TagArg]
	switch {
	case !ok:
		problems = append(problems, "args.Tag is required")
	case tag.Kind() != models.KindString:
		problems = append(problems, fmt.Sprintf("args.Tag must be a string, got %s", tag.Kind()))
	case r.Tag() == "":
		problems = append(problems, "args.Tag must not be empty")
	}
	for _, arg := range sortedKeys(r.Args) {
		if !r.Args[arg].IsValid() {
			problems = append(problems, fmt.Sprintf("args.%s has no value", arg))
		}
	}
	for _, key := range sortedKeys(r.PropsExtra) {
		if !r.PropsExtra[key].IsValid() {
			problems = append(problems, fmt.Sprintf("props_extra[%s] has no value", key))
		}
	}

	if len(problems) > 0 {
		return models.NewSchemaError("run", r.Tag(), problems...)
	}
	return nil
}

// CheckRunAgainst verifies that the run's arguments conform to the types the
// template declares.
func (v *Validator) CheckRunAgainst(r models.Run, t models.Template) error {
	var problems []string
	for _, arg := range sortedKeys(r.Args) {
		declared, ok := t.Types[arg]
		if !ok {
			if v.strictRuns && arg != models.TagArg {
				problems = append(problems, fmt.Sprintf("arg %q is not declared by template %q", arg, r.TemplateType))
			}
			continue
		}
		if !declared.Accepts(r.Args[arg]) {
			problems = append(problems, fmt.Sprintf("arg %q must be %s, got %s", arg, declared, r.Args[arg].Kind()))
		}
	}
	if len(problems) > 0 {
		return models.NewSchemaError("run", r.Tag(), problems...)
	}
	return nil
}

// CheckConfig validates every template and run of a loaded configuration,
// including run → template references. All failures are joined.
func (v *Validator) CheckConfig(cfg *models.TateConfig) error {
	var errs []error
	for _, name := range sortedKeys(cfg.TemplateData) {
		if err := v.CheckTemplate(name, cfg.TemplateData[name]); err != nil {
			errs = append(errs, err)
		}
	}
	for i, r := range cfg.RunList {
		if err := v.CheckRun(r); err != nil {
			errs = append(errs, fmt.Errorf("RunList[%d]: %w", i, err))
			continue
		}
		t, ok := cfg.TemplateData[r.TemplateType]
		if !ok {
			errs = append(errs, fmt.Errorf("RunList[%d] %q: %w %q", i, r.Tag(), models.ErrUnknownTemplate, r.TemplateType))
			continue
		}
		if err := v.CheckRunAgainst(r, t); err != nil {
			errs = append(errs, fmt.Errorf("RunList[%d]: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

func (v *Validator) structProblems(s any) []string {
	err := v.structs.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}
	problems := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		problems = append(problems, fmt.Sprintf("%s failed %q rule", fe.Namespace(), fe.Tag()))
	}
	return problems
}

func checkSchema(s *jsonschema.Schema, raw any, subject, name string) error {
	result := s.Validate(schemaView(raw))
	if result.Valid {
		return nil
	}
	var problems []string
	for _, key := range sortedKeys(result.Errors) {
		problems = append(problems, fmt.Sprintf("%s: %s", key, fmt.Sprint(result.Errors[key])))
	}
	if len(problems) == 0 {
		problems = append(problems, "does not match schema")
	}
	return models.NewSchemaError(subject, name, problems...)
}

// schemaView returns raw with json.Number leaves replaced by int64 or
// float64, which the schema engine types as integer or number. raw itself is
// left untouched so decode keeps the exact number literals.
func schemaView(raw any) any {
	switch x := raw.(type) {
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i
		}
		if f, err := x.Float64(); err == nil {
			return f
		}
		return x.String()
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, v := range x {
			out[k] = schemaView(v)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, v := range x {
			out[i] = schemaView(v)
		}
		return out
	default:
		return raw
	}
}

func decode(raw any, out any) error {
	data, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("failed to re-encode document: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode document: %w", err)
	}
	return nil
}

func rawTag(raw any) string {
	doc, ok := raw.(map[string]any)
	if !ok {
		return ""
	}
	args, ok := doc["args"].(map[string]any)
	if !ok {
		return ""
	}
	tag, _ := args[models.TagArg].(string)
	return tag
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
