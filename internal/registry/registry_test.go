package registry

import (
	"errors"
	"testing"

	"github.com/tatebench/tate/internal/models"
)

func presetTemplate() models.Template {
	return models.Template{
		Args:         []string{"Tag", "Rate"},
		Types:        map[string]models.ArgType{"Tag": models.ArgString, "Rate": models.ArgInteger},
		Annotations:  map[string]string{"Rate": "Injection rate"},
		Translations: map[string]string{"Rate": "specjbb.rate"},
		PropOptions:  map[string][]string{"Rate": {"500", "1000"}},
	}
}

func TestRegistryGetReturnsCopy(t *testing.T) {
	r := New(map[string]models.Template{"Preset": presetTemplate()})

	got, ok := r.Get("Preset")
	if !ok {
		t.Fatal("Preset not found")
	}
	got.Args[0] = "Mutated"
	got.Types["Rate"] = models.ArgString

	again, _ := r.Get("Preset")
	if again.Args[0] != "Tag" || again.Types["Rate"] != models.ArgInteger {
		t.Errorf("registry state changed through returned template: %+v", again)
	}

	if _, ok := r.Get("Missing"); ok {
		t.Error("Get(Missing) should report false")
	}
}

func TestRegistryPut(t *testing.T) {
	r := New(nil)
	if err := r.Put("Preset", presetTemplate(), false); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := r.Put("Preset", presetTemplate(), false); !errors.Is(err, models.ErrTemplateExists) {
		t.Errorf("second Put without overwrite: expected ErrTemplateExists, got %v", err)
	}

	replacement := presetTemplate()
	replacement.Args = append(replacement.Args, "Name")
	replacement.Types["Name"] = models.ArgString
	if err := r.Put("Preset", replacement, true); err != nil {
		t.Fatalf("Put with overwrite failed: %v", err)
	}
	got, _ := r.Get("Preset")
	if len(got.Args) != 3 {
		t.Errorf("overwrite not applied: %v", got.Args)
	}

	if err := r.Put("", presetTemplate(), true); !errors.Is(err, models.ErrSchema) {
		t.Errorf("Put with empty name: expected ErrSchema, got %v", err)
	}
}

func TestRegistryTypesSorted(t *testing.T) {
	r := New(map[string]models.Template{
		"Preset":    presetTemplate(),
		"HBIR":      presetTemplate(),
		"Composite": presetTemplate(),
	})
	want := []string{"Composite", "HBIR", "Preset"}
	got := r.Types()
	if len(got) != len(want) {
		t.Fatalf("Types() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Types()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if r.Len() != 3 || !r.Has("HBIR") || r.Has("hbir") {
		t.Error("Len/Has mismatch")
	}
}

func TestRegistryArgs(t *testing.T) {
	r := New(map[string]models.Template{"Preset": presetTemplate()})

	infos, err := r.Args("Preset")
	if err != nil {
		t.Fatalf("Args failed: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("expected 2 args, got %d", len(infos))
	}
	if infos[0].Name != "Tag" || infos[0].Type != models.ArgString || infos[0].Translation != "" {
		t.Errorf("unexpected Tag info: %+v", infos[0])
	}
	rate := infos[1]
	if rate.Name != "Rate" || rate.Type != models.ArgInteger || rate.Annotation != "Injection rate" ||
		rate.Translation != "specjbb.rate" || len(rate.Options) != 2 {
		t.Errorf("unexpected Rate info: %+v", rate)
	}

	if _, err := r.Args("Missing"); !errors.Is(err, models.ErrUnknownTemplate) {
		t.Errorf("Args(Missing): expected ErrUnknownTemplate, got %v", err)
	}
}
