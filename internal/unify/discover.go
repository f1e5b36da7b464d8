package unify

import (
	"fmt"
	"os"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// Discover lists every .html file under root as slash-separated paths
// relative to root, sorted, minus those matching an exclude pattern.
// An empty result is not an error.
func Discover(root string, exclude []string) ([]string, error) {
	st, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("output directory: %w", err)
	}
	if !st.IsDir() {
		return nil, fmt.Errorf("output directory %s is not a directory", root)
	}
	for _, p := range exclude {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("exclude pattern %q: %w", p, doublestar.ErrBadPattern)
		}
	}
	matches, err := doublestar.Glob(os.DirFS(root), "**/*.html", doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("discover html files: %w", err)
	}
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		skip, err := excluded(m, exclude)
		if err != nil {
			return nil, err
		}
		if !skip {
			out = append(out, m)
		}
	}
	sort.Strings(out)
	return out, nil
}

func excluded(route string, patterns []string) (bool, error) {
	for _, p := range patterns {
		ok, err := doublestar.Match(p, route)
		if err != nil {
			return false, fmt.Errorf("exclude pattern %q: %w", p, err)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}
