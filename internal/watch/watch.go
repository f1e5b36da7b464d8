// Package watch re-runs the unifier whenever a fresh static export lands in
// the output directory.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	clog "github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"portalctl/internal/system"
	"portalctl/internal/unify"
)

// Watcher debounces filesystem events under Root and calls Run once the
// export has settled and some route still needs unifying.
type Watcher struct {
	Root string
	// Options selects the payload element and excluded routes, matching
	// the unifier being run.
	Options  unify.Options
	Debounce time.Duration
	Run      func(ctx context.Context) error
	Logger   *clog.Logger
}

func (w *Watcher) logger() *clog.Logger {
	if w.Logger != nil {
		return w.Logger
	}
	return system.Logger
}

func (w *Watcher) debounce() time.Duration {
	if w.Debounce <= 0 {
		return 500 * time.Millisecond
	}
	return w.Debounce
}

// Fresh reports whether some route under root carries a hydration payload
// but no unified marker. An unreadable tree is not fresh.
func Fresh(root string, opts unify.Options) bool {
	ok, err := unify.Pending(root, opts)
	return err == nil && ok
}

// Watch blocks until ctx is done. The output directory may be deleted and
// recreated by the exporter; its parent is watched so the tree is picked up
// again.
func (w *Watcher) Watch(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	root, err := filepath.Abs(w.Root)
	if err != nil {
		return err
	}
	parent := filepath.Dir(root)
	if err := fsw.Add(parent); err != nil {
		w.logger().Warn("cannot watch parent of output directory", "path", parent, "err", err)
	}
	w.addRecursive(fsw, root)

	log := w.logger()
	log.Info("watching export", "root", root, "debounce", w.debounce())

	w.check(ctx, root)

	timer := time.NewTimer(w.debounce())
	timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(fsw, root, ev) {
				continue
			}
			log.Debug("export change", "path", ev.Name, "op", ev.Op.String())
			timer.Reset(w.debounce())
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			log.Error("watcher error", "err", err)
		case <-timer.C:
			w.check(ctx, root)
		}
	}
}

func (w *Watcher) relevant(fsw *fsnotify.Watcher, root string, ev fsnotify.Event) bool {
	name := filepath.Clean(ev.Name)
	if name != root && !strings.HasPrefix(name, root+string(filepath.Separator)) {
		return false
	}
	if ev.Has(fsnotify.Create) {
		if st, err := os.Stat(name); err == nil && st.IsDir() {
			w.addRecursive(fsw, name)
			return true
		}
	}
	return strings.HasSuffix(strings.ToLower(name), ".html")
}

func (w *Watcher) addRecursive(fsw *fsnotify.Watcher, dir string) {
	_ = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if err := fsw.Add(path); err != nil {
			w.logger().Warn("failed to watch directory", "path", path, "err", err)
		}
		return nil
	})
}

func (w *Watcher) check(ctx context.Context, root string) {
	if !Fresh(root, w.Options) {
		return
	}
	w.logger().Info("fresh export detected, unifying", "root", root)
	if err := w.Run(ctx); err != nil {
		w.logger().Error("unify failed", "err", err)
	}
}
