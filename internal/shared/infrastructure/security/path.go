// Package security validates file paths taken from configuration.
package security

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrForbiddenPath is returned for paths that cannot be used safely.
var ErrForbiddenPath = errors.New("forbidden path")

// forbidden are shell metacharacters and control characters never found in
// legitimate configuration paths.
const forbidden = ";&|$`(){}<>!\n\r\x00"

// CleanPath returns path cleaned, made absolute and with symlinks resolved.
// A path that does not exist yet is returned cleaned but unresolved.
func CleanPath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("%w: empty", ErrForbiddenPath)
	}
	if i := strings.IndexAny(path, forbidden); i >= 0 {
		return "", fmt.Errorf("%w: %q contains %q", ErrForbiddenPath, path, path[i])
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve %q: %w", path, err)
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return abs, nil
		}
		return "", fmt.Errorf("resolve %q: %w", path, err)
	}
	return resolved, nil
}

// CleanPathInDir is CleanPath restricted to paths inside baseDir.
func CleanPathInDir(path, baseDir string) (string, error) {
	clean, err := CleanPath(path)
	if err != nil {
		return "", err
	}
	base, err := CleanPath(baseDir)
	if err != nil {
		return "", err
	}
	if clean != base && !strings.HasPrefix(clean, base+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s is outside %s", ErrForbiddenPath, path, baseDir)
	}
	return clean, nil
}

// Open opens path for reading after CleanPath.
func Open(path string) (*os.File, error) {
	clean, err := CleanPath(path)
	if err != nil {
		return nil, err
	}
	return os.Open(clean) // #nosec G304 -- cleaned above
}
