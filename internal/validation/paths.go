package validation

import (
	"fmt"
	"path/filepath"
	"strings"
)

var runFileReplacer = strings.NewReplacer("/", "_", `\`, "_", ":", "_", " ", "_", "(", "", ")", "")

// ValidateFilename validates a single filename derived from user data.
//
// Returns an error if the filename:
//   - Is empty
//   - Contains path separators (/ or \)
//   - Is "." or ".."
//   - Contains null bytes
func ValidateFilename(filename string) error {
	if filename == "" {
		return fmt.Errorf("filename cannot be empty")
	}

	if strings.ContainsRune(filename, 0) {
		return fmt.Errorf("filename contains null byte: %q", filename)
	}

	if strings.ContainsAny(filename, `/\`) {
		return fmt.Errorf("filename cannot contain path separators: %s", filename)
	}

	// "foo..bar" is fine, only the bare names are rejected
	if filename == "." || filename == ".." {
		return fmt.Errorf("filename cannot be %q", filename)
	}

	return nil
}

// RunFileBase returns the file name stem for the run at index, "<NN>-<tag>",
// with characters that are awkward in file names replaced.
func RunFileBase(index int, tag string) (string, error) {
	base := fmt.Sprintf("%02d-%s", index, runFileReplacer.Replace(tag))
	if err := ValidateFilename(base); err != nil {
		return "", fmt.Errorf("run %d (%q): %w", index, tag, err)
	}
	return base, nil
}

// ValidatePathInDirectory validates that path, when resolved, stays within baseDir.
//
//	ValidatePathInDirectory("../../etc/passwd", "props") // error
//	ValidatePathInDirectory("00-Preset.props", "props")  // ok
func ValidatePathInDirectory(path string, baseDir string) error {
	if path == "" {
		return fmt.Errorf("path cannot be empty")
	}
	if baseDir == "" {
		return fmt.Errorf("base directory cannot be empty")
	}

	cleanBase, err := filepath.Abs(filepath.Clean(baseDir))
	if err != nil {
		return fmt.Errorf("failed to resolve base directory: %w", err)
	}

	resolved := filepath.Clean(path)
	if !filepath.IsAbs(resolved) {
		resolved = filepath.Join(cleanBase, resolved)
	}

	rel, err := filepath.Rel(cleanBase, resolved)
	if err != nil {
		return fmt.Errorf("failed to compute relative path: %w", err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("path escapes base directory: %s (base: %s)", path, baseDir)
	}

	return nil
}
