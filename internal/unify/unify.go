package unify

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	clog "github.com/charmbracelet/log"

	"portalctl/internal/system"
)

// ErrBaseMissing is returned when the base document is not on disk.
var ErrBaseMissing = errors.New("base document not found")

// Report describes the outcome of one run.
type Report struct {
	Root           string   `json:"root"`
	Base           string   `json:"base,omitempty"`
	Scripts        []string `json:"scripts"`
	Unified        []string `json:"unified"`
	Skipped        []string `json:"skipped"`
	Empty          bool     `json:"empty,omitempty"`
	AlreadyUnified bool     `json:"already_unified,omitempty"`
	DryRun         bool     `json:"dry_run,omitempty"`
}

// Unifier rewrites the export under Root in place.
type Unifier struct {
	Root    string
	Options Options
	// DryRun computes the report without writing anything.
	DryRun bool
	// Force unifies even when every document already carries the marker.
	Force bool
	// Logger defaults to system.Logger.
	Logger *clog.Logger
}

func (u *Unifier) logger() *clog.Logger {
	if u.Logger != nil {
		return u.Logger
	}
	return system.Logger
}

// Run performs discovery, builds the shell from a full read of the export,
// and only then writes each route's personalised shell back to disk.
// Cancelling ctx stops the run between files.
func (u *Unifier) Run(ctx context.Context) (*Report, error) {
	opts := u.Options.withDefaults()
	log := u.logger()
	rep := &Report{Root: u.Root, DryRun: u.DryRun, Scripts: []string{}, Unified: []string{}, Skipped: []string{}}

	routes, err := Discover(u.Root, opts.Exclude)
	if err != nil {
		return nil, err
	}
	if len(routes) == 0 {
		log.Warn("no HTML files found, nothing to unify", "root", u.Root)
		rep.Empty = true
		return rep, nil
	}
	if _, err := os.Stat(filepath.Join(u.Root, filepath.FromSlash(opts.Base))); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s in %s: %w", opts.Base, u.Root, ErrBaseMissing)
		}
		return nil, err
	}

	// Pass 1: read everything and build the shell before any write.
	docs := make([]string, len(routes))
	base := routes[0]
	marked, pending := 0, 0
	for i, r := range routes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		b, err := os.ReadFile(u.path(r))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", r, err)
		}
		docs[i] = string(b)
		if r == opts.Base {
			base = r
		}
		if IsUnified(docs[i]) {
			marked++
		} else if _, ok := ExtractPayload(docs[i], opts); ok {
			pending++
		}
	}
	rep.Base = base
	// payload-less routes are never rewritten, so they never carry the marker
	if marked > 0 && pending == 0 && !u.Force {
		log.Info("export already unified, skipping", "root", u.Root, "files", len(routes))
		rep.AlreadyUnified = true
		return rep, nil
	}

	var baseDoc string
	for i, r := range routes {
		if r == base {
			baseDoc = docs[i]
		}
	}
	shell, err := BuildShell(baseDoc, UnionScripts(docs...), opts)
	if err != nil {
		return nil, fmt.Errorf("build shell from %s: %w", base, err)
	}
	rep.Scripts = shell.Scripts
	log.Debug("shell built", "base", base, "scripts", len(shell.Scripts))

	// Pass 2: each route gets the shell with its own payload.
	for _, r := range routes {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		p := u.path(r)
		b, err := os.ReadFile(p)
		if err != nil {
			log.Warn("cannot re-read route, leaving it untouched", "route", r, "err", err)
			rep.Skipped = append(rep.Skipped, r)
			continue
		}
		payload, ok := ExtractPayload(string(b), opts)
		if !ok {
			log.Warn("no hydration payload, leaving route untouched", "route", r, "id", opts.PayloadID)
			rep.Skipped = append(rep.Skipped, r)
			continue
		}
		if !u.DryRun {
			if err := writePreservingMode(p, shell.Render(payload)); err != nil {
				log.Warn("write failed, route left as-is", "route", r, "err", err)
				rep.Skipped = append(rep.Skipped, r)
				continue
			}
		}
		rep.Unified = append(rep.Unified, r)
	}

	if u.DryRun {
		log.Info("dry run, no files written", "would_unify", len(rep.Unified), "skipped", len(rep.Skipped))
	} else {
		log.Info(fmt.Sprintf("unified %d HTML files to one shell", len(rep.Unified)), "scripts", len(rep.Scripts), "skipped", len(rep.Skipped))
	}
	return rep, nil
}

// Pending reports whether some route under root carries a hydration payload
// but not the unified marker. Routes without a payload are never rewritten,
// so they never count.
func Pending(root string, opts Options) (bool, error) {
	opts = opts.withDefaults()
	routes, err := Discover(root, opts.Exclude)
	if err != nil {
		return false, err
	}
	for _, r := range routes {
		b, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(r)))
		if err != nil {
			return false, fmt.Errorf("read %s: %w", r, err)
		}
		doc := string(b)
		if IsUnified(doc) {
			continue
		}
		if _, ok := ExtractPayload(doc, opts); ok {
			return true, nil
		}
	}
	return false, nil
}

func (u *Unifier) path(route string) string {
	return filepath.Join(u.Root, filepath.FromSlash(route))
}

func writePreservingMode(path, content string) error {
	mode := os.FileMode(0o644)
	if st, err := os.Stat(path); err == nil {
		mode = st.Mode().Perm()
	}
	return os.WriteFile(path, []byte(content), mode)
}
