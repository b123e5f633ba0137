// Package fsutil resolves user supplied paths for config files and action
// working directories.
package fsutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ExpandHome expands a leading '~' to the user's home directory.
func ExpandHome(path string) (string, error) {
	if path == "" || path[0] != '~' {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home dir: %w", err)
	}
	if path == "~" {
		return home, nil
	}
	rest := strings.TrimLeft(path[1:], `/\`)
	return filepath.Join(home, rest), nil
}

// WorkDir expands dir and checks that it names an existing directory. An
// empty dir is returned unchanged and means the process working directory.
func WorkDir(dir string) (string, error) {
	dir, err := ExpandHome(strings.TrimSpace(dir))
	if err != nil || dir == "" {
		return dir, err
	}
	fi, err := os.Stat(dir)
	if errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("working directory %s does not exist", dir)
	}
	if err != nil {
		return "", fmt.Errorf("working directory %s: %w", dir, err)
	}
	if !fi.IsDir() {
		return "", fmt.Errorf("working directory %s is not a directory", dir)
	}
	return dir, nil
}
