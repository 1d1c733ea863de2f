package browser

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnsureProfileDir returns the absolute path of the persistent Chrome profile,
// creating the directory when it does not exist yet.
//
// Chrome 136+ refuses remote debugging on the default profile, so a session
// can only be kept across runs in a dedicated user-data-dir.
func EnsureProfileDir(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve profile dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return "", fmt.Errorf("create profile dir: %w", err)
	}
	return abs, nil
}
