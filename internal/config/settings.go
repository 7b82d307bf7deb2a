package config

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tatebench/tate/internal/runlist"
)

// ConfigEnvVar overrides the tate configuration file path.
const ConfigEnvVar = "TATE_CONFIG"

// DefaultConfigFile is used when no other source names a configuration file.
const DefaultConfigFile = "tate_config.json"

// ConfigDir is the settings directory name under the user config directory.
const ConfigDir = "tate"

// Settings holds CLI preferences persisted between sessions.
type Settings struct {
	// ConfigFile is the tate configuration (TemplateData + RunList) to operate on.
	ConfigFile string

	// PropsDir is where `generate --out-dir` writes when no directory is given.
	PropsDir string

	// StrictRuns rejects unknown keys on runs and undeclared run arguments.
	StrictRuns bool

	// TagMatch is "exact" (default) or "substring" for remove/show lookups.
	TagMatch string

	// LogLevel is debug, info, warn or error.
	LogLevel string
}

// DefaultSettings returns the settings used when no settings file exists.
func DefaultSettings() *Settings {
	return &Settings{
		ConfigFile: DefaultConfigFile,
		PropsDir:   "props",
		StrictRuns: false,
		TagMatch:   "exact",
		LogLevel:   "info",
	}
}

// LoadSettingsCSV loads settings from a CSV file.
// CSV format: key,value pairs
func LoadSettingsCSV(path string) (*Settings, error) {
	s := DefaultSettings()

	if path == "" {
		return s, nil
	}

	// Return defaults if the file doesn't exist
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return s, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open settings file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read settings CSV: %w", err)
	}

	for i, record := range records {
		if i == 0 {
			// Skip header row if it looks like a header
			if len(record) >= 2 && strings.ToLower(record[0]) == "key" {
				continue
			}
		}
		if len(record) < 2 {
			continue
		}

		key := strings.TrimSpace(strings.ToLower(record[0]))
		value := strings.TrimSpace(record[1])

		switch key {
		case "config_file":
			if value != "" {
				s.ConfigFile = value
			}
		case "props_dir":
			if value != "" {
				s.PropsDir = value
			}
		case "strict_runs":
			s.StrictRuns = strings.ToLower(value) == "true" || value == "1"
		case "tag_match":
			s.TagMatch = value
		case "log_level":
			s.LogLevel = value
		}
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// SaveSettingsCSV saves settings to a CSV file.
func SaveSettingsCSV(s *Settings, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create settings file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	records := [][]string{
		{"key", "value"},
		{"config_file", s.ConfigFile},
		{"props_dir", s.PropsDir},
		{"strict_runs", strconv.FormatBool(s.StrictRuns)},
		{"tag_match", s.TagMatch},
		{"log_level", s.LogLevel},
	}
	if err := writer.WriteAll(records); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	return nil
}

// Validate checks the settings values.
func (s *Settings) Validate() error {
	if _, err := runlist.ParseTagMatch(s.TagMatch); err != nil {
		return err
	}
	switch strings.ToLower(s.LogLevel) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be one of debug, info, warn, error (got %q)", s.LogLevel)
	}
	return nil
}

// ResolveConfigFile picks the configuration file path.
// Priority: flag > TATE_CONFIG environment variable > settings > default.
func (s *Settings) ResolveConfigFile(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv(ConfigEnvVar); env != "" {
		return env
	}
	if s != nil && s.ConfigFile != "" {
		return s.ConfigFile
	}
	return DefaultConfigFile
}
