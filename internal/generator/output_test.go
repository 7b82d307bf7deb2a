package generator

import (
	"bytes"
	"strings"
	"testing"

	"github.com/tatebench/tate/internal/models"
)

func TestWriteProps(t *testing.T) {
	props := map[string]models.Value{
		"specjbb.rate":        models.Int(500),
		"specjbb.group.count": models.Int(2),
		"specjbb.comment":     models.String(" leading space"),
		"path":                models.String(`C:\bench`),
		"key with=sep":        models.Bool(true),
	}

	var buf bytes.Buffer
	if err := WriteProps(&buf, props); err != nil {
		t.Fatalf("WriteProps failed: %v", err)
	}

	want := "key\\ with\\=sep=true\n" +
		"path=C:\\\\bench\n" +
		"specjbb.comment=\\ leading space\n" +
		"specjbb.group.count=2\n" +
		"specjbb.rate=500\n"
	if buf.String() != want {
		t.Errorf("WriteProps output:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestWritePropsEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteProps(&buf, nil); err != nil {
		t.Fatalf("WriteProps failed: %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("expected empty output, got %q", buf.String())
	}
}

func TestEncodeRunJSONWritesObject(t *testing.T) {
	spec := models.ResolvedRun{
		Controller: models.Controller{Type: "HBIR_RT"},
		Backends:   2,
		Injectors:  1,
		Props:      map[string]models.Value{"specjbb.rate": models.Int(500)},
		PropsFile:  models.DefaultPropsFile,
	}

	var buf bytes.Buffer
	if err := EncodeRunJSON(&buf, spec); err != nil {
		t.Fatalf("EncodeRunJSON failed: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "{") {
		t.Errorf("expected a JSON object, got:\n%s", out)
	}
	if !strings.Contains(out, `"specjbb.rate": 500`) || !strings.Contains(out, `"backends": 2`) {
		t.Errorf("unexpected output:\n%s", out)
	}
}
