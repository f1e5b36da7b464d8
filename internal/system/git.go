package system

import (
	"context"
	"os/exec"
	"strings"
	"time"
)

// GitRoot returns the repository top-level directory for dir, if in a Git repo.
func GitRoot(ctx context.Context, dir string) (string, error) {
	if _, err := exec.LookPath("git"); err != nil {
		return "", err
	}
	// Provide a short timeout to avoid hanging
	cctx, cancel := context.WithTimeout(ctx, 800*time.Millisecond)
	defer cancel()
	out, err := exec.CommandContext(cctx, "git", "-C", dir, "rev-parse", "--show-toplevel").CombinedOutput()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}
