package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// SettingsFileName is the settings file inside SettingsDirectory.
const SettingsFileName = "settings.csv"

// SettingsDirectory returns the per-user tate settings directory.
//
// Locations:
//   - Windows: %APPDATA%\tate
//   - Unix: $XDG_CONFIG_HOME/tate, falling back to ~/.config/tate
func SettingsDirectory() string {
	if runtime.GOOS == "windows" {
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, ConfigDir)
		}
	}

	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" && runtime.GOOS != "windows" {
		return filepath.Join(xdg, ConfigDir)
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".config", ConfigDir)
}

// GetDefaultSettingsPath returns the default settings file path. Without a
// home directory it falls back to the working directory.
func GetDefaultSettingsPath() string {
	dir := SettingsDirectory()
	if dir == "" {
		return SettingsFileName
	}
	return filepath.Join(dir, SettingsFileName)
}
