package system

import (
	"context"
	"os/exec"
	"testing"
)

func TestGitRoot_OutsideRepo(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	if root, err := GitRoot(context.Background(), t.TempDir()); err == nil && root != "" {
		// TempDir may live inside a checkout on some CI hosts
		t.Logf("temp dir is inside repo %s", root)
	}
}
