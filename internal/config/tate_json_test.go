package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tatebench/tate/internal/models"
	"github.com/tatebench/tate/internal/validation"
)

const presetConfig = `{
    "TemplateData": {
        "Preset": {
            "args": ["Tag", "Rate"],
            "types": {"Tag": "string", "Rate": "integer"},
            "annotations": {"Rate": "Injection rate"},
            "translations": {"Rate": "specjbb.rate"},
            "default_props": {"specjbb.group.count": 2},
            "run_type": "HBIR_RT",
            "java": "java",
            "jar": "specjbb2015.jar"
        }
    },
    "RunList": [
        {"template_type": "Preset", "args": {"Tag": "r1", "Rate": 500}}
    ]
}`

func TestSaveAndLoadTateConfig(t *testing.T) {
	v := validation.MustNew()
	cfg, err := ParseTateConfig([]byte(presetConfig), v)
	if err != nil {
		t.Fatalf("ParseTateConfig failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "nested", "tate_config.json")
	if err := SaveTateConfig(path, cfg); err != nil {
		t.Fatalf("SaveTateConfig failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("saved file missing: %v", err)
	}
	if perm := info.Mode().Perm(); perm&0044 == 0 {
		t.Errorf("saved file not readable by others: %v", perm)
	}

	loaded, err := LoadTateConfig(path, v)
	if err != nil {
		t.Fatalf("LoadTateConfig failed: %v", err)
	}
	if len(loaded.RunList) != 1 || loaded.RunList[0].Tag() != "r1" {
		t.Fatalf("unexpected run list: %+v", loaded.RunList)
	}
	if n, ok := loaded.RunList[0].Args["Rate"].Integer(); !ok || n != 500 {
		t.Errorf("Rate = %v, want integer 500", loaded.RunList[0].Args["Rate"])
	}
	tmpl := loaded.TemplateData["Preset"]
	if tmpl.Translations["Rate"] != "specjbb.rate" || tmpl.Jar != "specjbb2015.jar" {
		t.Errorf("template fields lost: %+v", tmpl)
	}

	// a second save of the loaded document is byte-identical
	first, _ := os.ReadFile(path)
	if err := SaveTateConfig(path, loaded); err != nil {
		t.Fatalf("second save failed: %v", err)
	}
	second, _ := os.ReadFile(path)
	if string(first) != string(second) {
		t.Errorf("round trip changed the file:\n%s\nvs\n%s", first, second)
	}
}

func TestMarshalTateConfigFormat(t *testing.T) {
	data, err := MarshalTateConfig(&models.TateConfig{})
	if err != nil {
		t.Fatalf("MarshalTateConfig failed: %v", err)
	}
	want := "{\n    \"TemplateData\": {},\n    \"RunList\": []\n}\n"
	if string(data) != want {
		t.Errorf("empty config = %q, want %q", data, want)
	}
}

func TestLoadOrInit(t *testing.T) {
	v := validation.MustNew()
	dir := t.TempDir()

	cfg, existed, err := LoadOrInit(filepath.Join(dir, "missing.json"), v)
	if err != nil {
		t.Fatalf("LoadOrInit(missing) failed: %v", err)
	}
	if existed || cfg == nil || len(cfg.RunList) != 0 {
		t.Errorf("missing file: existed=%v cfg=%+v", existed, cfg)
	}

	path := filepath.Join(dir, "tate_config.json")
	if err := os.WriteFile(path, []byte(presetConfig), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	cfg, existed, err = LoadOrInit(path, v)
	if err != nil || !existed || len(cfg.RunList) != 1 {
		t.Errorf("existing file: cfg=%+v existed=%v err=%v", cfg, existed, err)
	}
}

func TestParseTateConfigErrors(t *testing.T) {
	v := validation.MustNew()

	if _, err := ParseTateConfig([]byte(`{not json`), v); err == nil || !strings.Contains(err.Error(), "parse") {
		t.Errorf("malformed JSON: got %v", err)
	}

	_, err := ParseTateConfig([]byte(`{"TemplateData": {}}`), v)
	if !errors.Is(err, models.ErrSchema) {
		t.Errorf("missing RunList: expected ErrSchema, got %v", err)
	}

	mistyped := strings.Replace(presetConfig, `"Rate": 500`, `"Rate": [500]`, 1)
	if _, err := ParseTateConfig([]byte(mistyped), v); !errors.Is(err, models.ErrSchema) {
		t.Errorf("non-scalar arg: expected ErrSchema, got %v", err)
	}
}

func TestLoadTateConfigDoesNotCheckReferences(t *testing.T) {
	v := validation.MustNew()
	dangling := strings.Replace(presetConfig, `"template_type": "Preset"`, `"template_type": "Gone"`, 1)

	cfg, err := ParseTateConfig([]byte(dangling), v)
	if err != nil {
		t.Fatalf("ParseTateConfig failed: %v", err)
	}
	if err := v.CheckConfig(cfg); !errors.Is(err, models.ErrUnknownTemplate) {
		t.Errorf("CheckConfig: expected ErrUnknownTemplate, got %v", err)
	}
}

func TestTateConfigKeepsLargeIntegers(t *testing.T) {
	v := validation.MustNew()
	doc := `{
		"TemplateData": {
			"Big": {
				"args": ["Tag", "Seed"],
				"types": {"Tag": "string", "Seed": "integer"},
				"default_props": {"big": 9007199254740993}
			}
		},
		"RunList": [
			{"template_type": "Big", "args": {"Tag": "b1", "Seed": 9007199254740993}, "props_extra": {"extra": 9007199254740993}}
		]
	}`

	cfg, err := ParseTateConfig([]byte(doc), v)
	if err != nil {
		t.Fatalf("ParseTateConfig failed: %v", err)
	}
	const want = int64(9007199254740993)
	if n, ok := cfg.TemplateData["Big"].DefaultProps["big"].Integer(); !ok || n != want {
		t.Errorf("default_props big = %v, want %d", cfg.TemplateData["Big"].DefaultProps["big"], want)
	}
	run := cfg.RunList[0]
	if n, ok := run.Args["Seed"].Integer(); !ok || n != want {
		t.Errorf("args Seed = %v, want %d", run.Args["Seed"], want)
	}
	if n, ok := run.PropsExtra["extra"].Integer(); !ok || n != want {
		t.Errorf("props_extra extra = %v, want %d", run.PropsExtra["extra"], want)
	}

	data, err := MarshalTateConfig(cfg)
	if err != nil {
		t.Fatalf("MarshalTateConfig failed: %v", err)
	}
	if got := strings.Count(string(data), "9007199254740993"); got != 3 {
		t.Errorf("saved document holds %d exact copies of the integer, want 3:\n%s", got, data)
	}
}

func TestParseTateConfigRejectsTrailingData(t *testing.T) {
	v := validation.MustNew()
	if _, err := ParseTateConfig([]byte(`{"TemplateData": {}, "RunList": []} {}`), v); err == nil {
		t.Error("expected an error for trailing data")
	}
}
