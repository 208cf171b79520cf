package utils

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
)

var disallowedFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9_\-\.]`)

// SaveTextToFile saves the given text content to a file with the specified filename.
// If the file does not exist, it will be created. If it does exist, it will be overwritten.
func SaveTextToFile(dir, filename, extension, text string) (string, error) {
	target := FilePath(dir, filename, extension)
	if err := WriteArtifact(target, []byte(text)); err != nil {
		return "", err
	}
	return path.Base(target), nil
}

// FilePath builds dir/<sanitized filename>.<extension>.
func FilePath(dir, filename, extension string) string {
	return path.Join(dir, fmt.Sprintf("%s.%s", SanitizeFilename(filename), extension))
}

// WriteArtifact writes data to target, replacing any previous content.
// The parent directory is created when missing.
func WriteArtifact(target string, data []byte) error {
	if dir := filepath.Dir(target); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %q: %w", dir, err)
		}
	}
	if err := os.WriteFile(target, data, 0644); err != nil {
		return fmt.Errorf("failed to write to file %q: %w", target, err)
	}
	return nil
}

func SanitizeFilename(filename string) string {
	filename = strings.Replace(filename, "\"", "", -1)
	filename = strings.Replace(filename, ".", "_", -1)
	filename = strings.ReplaceAll(filename, " ", "_")
	filename = disallowedFilenameChars.ReplaceAllString(filename, "")

	if len(filename) > 150 {
		filename = filename[:150]
	}
	return filename
}
