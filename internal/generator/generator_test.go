package generator

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/tatebench/tate/internal/logging"
	"github.com/tatebench/tate/internal/models"
	"github.com/tatebench/tate/internal/registry"
	"github.com/tatebench/tate/internal/validation"
)

func presetTemplates() *registry.Registry {
	return registry.New(map[string]models.Template{
		"Preset": {
			Args:         []string{"Tag", "Rate"},
			Types:        map[string]models.ArgType{"Tag": models.ArgString, "Rate": models.ArgInteger},
			Translations: map[string]string{"Rate": "specjbb.rate"},
			DefaultProps: map[string]models.Value{BackendCountProp: models.Int(2)},
			RunType:      "HBIR_RT",
			Java:         "java",
			Jar:          "specjbb2015.jar",
		},
	})
}

func presetRun(tag string, rate int64) models.Run {
	return models.Run{
		TemplateType: "Preset",
		Args:         map[string]models.Value{"Tag": models.String(tag), "Rate": models.Int(rate)},
	}
}

func TestGeneratePreset(t *testing.T) {
	g := New(validation.MustNew())
	specs, err := g.Generate(presetTemplates(), []models.Run{presetRun("X", 500)})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(specs) != 1 {
		t.Fatalf("expected 1 spec, got %d", len(specs))
	}

	spec := specs[0]
	if spec.Controller.Type != "HBIR_RT" {
		t.Errorf("controller = %q, want HBIR_RT", spec.Controller.Type)
	}
	if spec.Backends != 2 || spec.Injectors != 1 {
		t.Errorf("backends/injectors = %d/%d, want 2/1", spec.Backends, spec.Injectors)
	}
	if spec.Java != "java" || spec.Jar != "specjbb2015.jar" || spec.PropsFile != models.DefaultPropsFile {
		t.Errorf("unexpected executor fields: %+v", spec)
	}
	if len(spec.Props) != 2 {
		t.Errorf("props = %v, want 2 entries", spec.Props)
	}
	if n, ok := spec.Props["specjbb.rate"].Integer(); !ok || n != 500 {
		t.Errorf("specjbb.rate = %v, want 500", spec.Props["specjbb.rate"])
	}
	if n, ok := spec.Props[BackendCountProp].Integer(); !ok || n != 2 {
		t.Errorf("%s = %v, want 2", BackendCountProp, spec.Props[BackendCountProp])
	}
}

func TestGeneratePropertyPrecedence(t *testing.T) {
	templates := registry.New(map[string]models.Template{
		"Preset": {
			Args:         []string{"Tag", "Rate"},
			Types:        map[string]models.ArgType{"Tag": models.ArgString, "Rate": models.ArgInteger},
			Translations: map[string]string{"Rate": "specjbb.rate"},
			DefaultProps: map[string]models.Value{
				"specjbb.rate":       models.Int(1),
				"specjbb.mapreducer": models.String("default"),
				"specjbb.keep":       models.String("kept"),
			},
			RunType: "HBIR_RT",
			Java:    "java",
			Jar:     "specjbb2015.jar",
		},
	})
	run := presetRun("X", 500)
	run.PropsExtra = map[string]models.Value{
		"specjbb.mapreducer": models.String("extra"),
		"specjbb.new":        models.Int(7),
	}

	spec, err := New(validation.MustNew()).Resolve(templates, run)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	want := map[string]string{
		"specjbb.rate":       "500",
		"specjbb.mapreducer": "extra",
		"specjbb.keep":       "kept",
		"specjbb.new":        "7",
	}
	if len(spec.Props) != len(want) {
		t.Errorf("props = %v, want %v", spec.Props, want)
	}
	for k, v := range want {
		if got := spec.Props[k].Text(); got != v {
			t.Errorf("props[%s] = %q, want %q", k, got, v)
		}
	}

	// the template's defaults are untouched
	tmpl, _ := templates.Get("Preset")
	if tmpl.DefaultProps["specjbb.rate"].Text() != "1" {
		t.Error("Resolve mutated template default_props")
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	g := New(validation.MustNew())
	runs := []models.Run{presetRun("a", 100), presetRun("b", 200), presetRun("c", 300)}

	var first bytes.Buffer
	for i := 0; i < 5; i++ {
		specs, err := g.Generate(presetTemplates(), runs)
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		var buf bytes.Buffer
		if err := EncodeJSON(&buf, specs); err != nil {
			t.Fatalf("EncodeJSON failed: %v", err)
		}
		if i == 0 {
			first = buf
			continue
		}
		if !bytes.Equal(first.Bytes(), buf.Bytes()) {
			t.Fatalf("run %d produced different output:\n%s\nvs\n%s", i, first.String(), buf.String())
		}
	}
}

func TestGenerateAllOrNothing(t *testing.T) {
	g := New(validation.MustNew())
	bad := presetRun("bad", 0)
	bad.Args["Rate"] = models.String("fast")

	specs, err := g.Generate(presetTemplates(), []models.Run{presetRun("ok", 1), bad, presetRun("ok2", 2)})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if specs != nil {
		t.Errorf("expected no specs on failure, got %d", len(specs))
	}
	if !errors.Is(err, models.ErrSchema) {
		t.Errorf("expected ErrSchema, got %v", err)
	}
	if !strings.Contains(err.Error(), `run 1 ("bad")`) {
		t.Errorf("error does not identify the run: %v", err)
	}
}

func TestGenerateEmpty(t *testing.T) {
	specs, err := New(validation.MustNew()).Generate(presetTemplates(), nil)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	var buf bytes.Buffer
	if err := EncodeJSON(&buf, specs); err != nil {
		t.Fatalf("EncodeJSON failed: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Errorf("empty output = %q, want []", buf.String())
	}
}

func TestResolveErrors(t *testing.T) {
	g := New(validation.MustNew())

	orphan := presetRun("x", 1)
	orphan.TemplateType = "Missing"
	if _, err := g.Resolve(presetTemplates(), orphan); !errors.Is(err, models.ErrUnknownTemplate) {
		t.Errorf("unknown template: expected ErrUnknownTemplate, got %v", err)
	}

	missing := presetRun("x", 1)
	delete(missing.Args, "Rate")
	_, err := g.Resolve(presetTemplates(), missing)
	if !errors.Is(err, models.ErrSchema) || !strings.Contains(err.Error(), `arg "Rate" is required by translation`) {
		t.Errorf("missing translated arg: got %v", err)
	}

	untagged := presetRun("", 1)
	if _, err := g.Resolve(presetTemplates(), untagged); !errors.Is(err, models.ErrSchema) {
		t.Errorf("untagged run: expected ErrSchema, got %v", err)
	}
}

func TestGenerateTemplateWithoutExecutor(t *testing.T) {
	v := validation.MustNew()
	tmpl, err := v.ValidateTemplate("Preset", map[string]any{
		"args":          []any{"Rate", "Tag"},
		"types":         map[string]any{"Rate": "integer", "Tag": "string"},
		"default_props": map[string]any{"specjbb.group.count": json.Number("2")},
		"translations":  map[string]any{"Rate": "specjbb.rate"},
	})
	if err != nil {
		t.Fatalf("ValidateTemplate failed: %v", err)
	}
	run, err := v.ValidateRun(map[string]any{
		"template_type": "Preset",
		"args":          map[string]any{"Rate": json.Number("500"), "Tag": "run-1"},
	})
	if err != nil {
		t.Fatalf("ValidateRun failed: %v", err)
	}

	var logs bytes.Buffer
	g := New(v, WithLogger(logging.NewLogger(&logs)))
	specs, err := g.Generate(registry.New(map[string]models.Template{"Preset": tmpl}), []models.Run{run})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	spec := specs[0]
	if spec.Backends != 2 || spec.Injectors != 1 {
		t.Errorf("backends/injectors = %d/%d, want 2/1", spec.Backends, spec.Injectors)
	}
	want := map[string]string{"specjbb.group.count": "2", "specjbb.rate": "500"}
	if len(spec.Props) != len(want) {
		t.Errorf("props = %v, want %v", spec.Props, want)
	}
	for k, text := range want {
		if _, ok := spec.Props[k].Integer(); !ok || spec.Props[k].Text() != text {
			t.Errorf("props[%s] = %v, want integer %s", k, spec.Props[k], text)
		}
	}
	if spec.Controller.Type != "" || spec.Java != "" || spec.Jar != "" {
		t.Errorf("executor fields should pass through empty: %+v", spec)
	}
	if spec.PropsFile != models.DefaultPropsFile {
		t.Errorf("props file = %q, want %q", spec.PropsFile, models.DefaultPropsFile)
	}
	if !strings.Contains(logs.String(), "run_type, java, jar") {
		t.Errorf("missing executor fields not logged: %q", logs.String())
	}
}

func TestCountProps(t *testing.T) {
	tests := []struct {
		name    string
		value   models.Value
		want    int
		wantErr bool
	}{
		{"integer", models.Int(3), 3, false},
		{"numeric string", models.String("4"), 4, false},
		{"integral float", models.Float(2), 2, false},
		{"zero", models.Int(0), 0, true},
		{"negative", models.Int(-1), 0, true},
		{"word", models.String("two"), 0, true},
		{"fraction", models.Float(1.5), 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			templates := presetTemplates()
			tmpl, _ := templates.Get("Preset")
			tmpl.DefaultProps[InjectorCountProp] = tt.value
			if err := templates.Put("Preset", tmpl, true); err != nil {
				t.Fatalf("Put failed: %v", err)
			}

			spec, err := New(validation.MustNew()).Resolve(templates, presetRun("x", 1))
			if tt.wantErr {
				if !errors.Is(err, models.ErrSchema) {
					t.Errorf("expected ErrSchema, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve failed: %v", err)
			}
			if spec.Injectors != tt.want {
				t.Errorf("injectors = %d, want %d", spec.Injectors, tt.want)
			}
		})
	}
}

func TestEncodeJSONFieldNames(t *testing.T) {
	specs, err := New(validation.MustNew()).Generate(presetTemplates(), []models.Run{presetRun("X", 500)})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	var buf bytes.Buffer
	if err := EncodeJSON(&buf, specs); err != nil {
		t.Fatalf("EncodeJSON failed: %v", err)
	}

	var decoded []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	for _, key := range []string{"controller", "backends", "injectors", "java", "jar", "props", "props_file"} {
		if _, ok := decoded[0][key]; !ok {
			t.Errorf("missing key %q in %s", key, buf.String())
		}
	}
	if !strings.Contains(buf.String(), `"specjbb.rate": 500`) {
		t.Errorf("rate not written as integer:\n%s", buf.String())
	}
}
