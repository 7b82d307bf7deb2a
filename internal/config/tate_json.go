// Package config loads and saves tate configuration documents and CLI settings.
//
// A tate configuration is one JSON document with two top-level keys:
// TemplateData (template name -> template) and RunList (ordered runs).
// Saving always serializes the whole document and overwrites the file.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tatebench/tate/internal/models"
	"github.com/tatebench/tate/internal/validation"
)

// LoadTateConfig reads and validates a tate configuration file.
func LoadTateConfig(path string, v *validation.Validator) (*models.TateConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tate config: %w", err)
	}
	return ParseTateConfig(data, v)
}

// ParseTateConfig validates a tate configuration held in memory.
func ParseTateConfig(data []byte, v *validation.Validator) (*models.TateConfig, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to parse tate config JSON: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("failed to parse tate config JSON: trailing data after document")
	}
	cfg, err := v.ValidateConfig(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid tate config: %w", err)
	}
	return cfg, nil
}

// LoadOrInit loads the configuration at path, or returns an empty one when
// the file does not exist. The boolean reports whether the file existed.
func LoadOrInit(path string, v *validation.Validator) (*models.TateConfig, bool, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return models.NewTateConfig(), false, nil
	}
	cfg, err := LoadTateConfig(path, v)
	if err != nil {
		return nil, true, err
	}
	return cfg, true, nil
}

// MarshalTateConfig encodes cfg with four-space indentation.
func MarshalTateConfig(cfg *models.TateConfig) ([]byte, error) {
	if cfg == nil {
		cfg = models.NewTateConfig()
	}
	out := *cfg
	if out.TemplateData == nil {
		out.TemplateData = map[string]models.Template{}
	}
	if out.RunList == nil {
		out.RunList = []models.Run{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "    ")
	if err := enc.Encode(out); err != nil {
		return nil, fmt.Errorf("failed to marshal tate config: %w", err)
	}
	return buf.Bytes(), nil
}

// SaveTateConfig writes cfg to path, replacing the file.
func SaveTateConfig(path string, cfg *models.TateConfig) error {
	data, err := MarshalTateConfig(cfg)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write tate config: %w", err)
	}
	return nil
}
