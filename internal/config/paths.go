package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"portalctl/internal/system"
)

// FileName is the project-local config file looked up in the working directory.
const FileName = "portalctl.yaml"

// Dir returns the portalctl config directory under the user config base.
// On Linux, this typically resolves to $XDG_CONFIG_HOME/portalctl; on macOS
// to ~/Library/Application Support/portalctl; and on Windows to %AppData%/portalctl.
// Falls back to HOME when UserConfigDir is unavailable.
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil || strings.TrimSpace(base) == "" {
		if home, herr := os.UserHomeDir(); herr == nil {
			base = home
		} else {
			return "", errors.New("cannot determine config directory")
		}
	}
	return filepath.Join(base, "portalctl"), nil
}

// StatePath is where the local key-value state (the stored session) lives.
func StatePath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "state.json"), nil
}

// Resolve picks the config file: an explicit path wins, then ./portalctl.yaml,
// then portalctl.yaml at the Git repository root, then <Dir>/config.yaml.
// The returned path may not exist.
func Resolve(ctx context.Context, explicit string) (string, error) {
	if strings.TrimSpace(explicit) != "" {
		return explicit, nil
	}
	if _, err := os.Stat(FileName); err == nil {
		return FileName, nil
	}
	if cwd, err := os.Getwd(); err == nil {
		if root, err := system.GitRoot(ctx, cwd); err == nil && root != "" {
			p := filepath.Join(root, FileName)
			if _, err := os.Stat(p); err == nil {
				return p, nil
			}
		}
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}
