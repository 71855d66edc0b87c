package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EnsureDir ensures the provided directory exists.
func EnsureDir(dir string) error {
	return os.MkdirAll(dir, 0o755)
}

// SafeWriteFile writes data to a temp file and atomically renames it into place.
func SafeWriteFile(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("atomic rename: %w", err)
	}
	return nil
}

// QuizFileName returns the output file name for a quiz base name.
func QuizFileName(name string) string {
	if strings.EqualFold(filepath.Ext(name), ".txt") {
		return name
	}
	return name + ".txt"
}

// WriteQuiz stores text, trimmed of surrounding whitespace, as dir/name.txt,
// creating dir and replacing any existing file. It returns the written path.
func WriteQuiz(dir, name, text string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("quiz name cannot be empty")
	}
	if err := EnsureDir(dir); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(dir, QuizFileName(name))
	if err := SafeWriteFile(path, []byte(strings.TrimSpace(text))); err != nil {
		return "", fmt.Errorf("save %s: %w", path, err)
	}
	return path, nil
}
