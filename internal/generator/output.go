package generator

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/tatebench/tate/internal/models"
)

// EncodeJSON writes specs as an indented JSON array.
func EncodeJSON(w io.Writer, specs []models.ResolvedRun) error {
	if specs == nil {
		specs = []models.ResolvedRun{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	if err := enc.Encode(specs); err != nil {
		return fmt.Errorf("failed to encode resolved runs: %w", err)
	}
	return nil
}

// EncodeRunJSON writes a single resolved run as an indented JSON object.
func EncodeRunJSON(w io.Writer, spec models.ResolvedRun) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	if err := enc.Encode(spec); err != nil {
		return fmt.Errorf("failed to encode resolved run: %w", err)
	}
	return nil
}

// WriteProps renders props as a Java properties file, one key=value per
// line, sorted by key.
func WriteProps(w io.Writer, props map[string]models.Value) error {
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	bw := bufio.NewWriter(w)
	for _, k := range keys {
		if _, err := fmt.Fprintf(bw, "%s=%s\n", escapeKey(k), escapeValue(props[k].Text())); err != nil {
			return fmt.Errorf("failed to write property %s: %w", k, err)
		}
	}
	return bw.Flush()
}

var keyEscaper = strings.NewReplacer(`\`, `\\`, "=", `\=`, ":", `\:`, " ", `\ `, "\n", `\n`, "\t", `\t`)

var valueEscaper = strings.NewReplacer(`\`, `\\`, "\n", `\n`, "\r", `\r`, "\t", `\t`)

func escapeKey(k string) string {
	return keyEscaper.Replace(k)
}

func escapeValue(v string) string {
	v = valueEscaper.Replace(v)
	if strings.HasPrefix(v, " ") {
		v = `\` + v
	}
	return v
}
