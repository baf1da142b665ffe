// Package watch re-runs test files when the project changes.
package watch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/aqatest/aqa/internal/discovery"
	"github.com/aqatest/aqa/internal/errors"
	"github.com/aqatest/aqa/internal/output"
)

// DefaultDebounce is the window in which change notifications are coalesced.
const DefaultDebounce = 500 * time.Millisecond

// RunFunc runs a batch of root-relative test files.
type RunFunc func(ctx context.Context, files []string)

// Options configures a Watcher.
type Options struct {
	// Files fixes the watched test set. When empty, test files are
	// discovered and rediscovered as the tree changes.
	Files    []string
	Debounce time.Duration
	// OnScan is called after every scan with the current test and source files.
	OnScan func(tests, sources []string)
}

// Watcher maps file system events under the finder's root to test runs.
type Watcher struct {
	finder *discovery.Finder
	out    *output.Writer
	run    RunFunc
	opts   Options

	tests   []string
	sources []string
	pending batch
}

// New creates a Watcher.
func New(finder *discovery.Finder, out *output.Writer, run RunFunc, opts Options) *Watcher {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	return &Watcher{finder: finder, out: out, run: run, opts: opts}
}

// Run watches until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.WrapKind(errors.KindEnvironment, err, "failed to start file watcher")
	}
	defer fsw.Close()

	if err := w.scan(ctx, fsw); err != nil {
		return err
	}

	runTimer := stoppedTimer()
	scanTimer := stoppedTimer()
	defer runTimer.Stop()
	defer scanTimer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.out.Warning("watch: %v", err)

		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			switch w.handle(ev) {
			case actionRun:
				runTimer.Reset(w.opts.Debounce)
			case actionRescan:
				runTimer.Stop()
				w.pending.take()
				scanTimer.Reset(w.opts.Debounce)
			}

		case <-runTimer.C:
			files := w.pending.take()
			if len(files) == 0 {
				continue
			}
			w.out.Println(" ")
			w.out.Watch("Changes detected, running tests...")
			w.out.Info("%s", strings.Join(baseNames(files), ", "))
			w.out.Println(" ")
			w.run(ctx, files)

		case <-scanTimer.C:
			if err := w.scan(ctx, fsw); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				w.out.Warning("watch: %v", err)
			}
		}
	}
}

type action int

const (
	actionNone action = iota
	actionRun
	actionRescan
)

// handle classifies one event and queues the affected test files.
func (w *Watcher) handle(ev fsnotify.Event) action {
	if ev.Op == fsnotify.Chmod {
		return actionNone
	}
	rel, err := filepath.Rel(w.finder.Root, ev.Name)
	if err != nil || strings.HasPrefix(rel, "..") || w.finder.IsIgnored(rel) {
		return actionNone
	}
	w.out.Info("Watch triggered: %s %s", ev.Op, filepath.ToSlash(rel))

	if !w.finder.HasRunner(rel) {
		// A new directory may hold files that need watching.
		if ev.Has(fsnotify.Create) && isDir(ev.Name) && !discovery.ShouldSkipDir(filepath.Base(rel)) {
			return actionRescan
		}
		return actionNone
	}

	known := slices.Contains(w.tests, rel) || slices.Contains(w.sources, rel)
	switch {
	case known && (ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename)):
		w.out.Info("Removed file detected: %s - rescanning", filepath.ToSlash(rel))
		return actionRescan
	case known:
		w.pending.add(Affected(w.tests, rel)...)
		return actionRun
	case ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write):
		w.out.Info("New file detected: %s - rescanning", filepath.ToSlash(rel))
		return actionRescan
	}
	return actionNone
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// scan refreshes the file sets and subscribes to every non-ignored directory.
func (w *Watcher) scan(ctx context.Context, fsw *fsnotify.Watcher) error {
	tests := w.opts.Files
	if len(tests) == 0 {
		found, err := w.finder.Find(ctx)
		if err != nil {
			return err
		}
		tests = found
	}

	var sources []string
	err := filepath.WalkDir(w.finder.Root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil
		}
		if d.IsDir() {
			if path != w.finder.Root && discovery.ShouldSkipDir(d.Name()) {
				return filepath.SkipDir
			}
			if err := fsw.Add(path); err != nil {
				w.out.Warning("watch: cannot watch %s: %v", path, err)
			}
			return nil
		}
		rel, err := filepath.Rel(w.finder.Root, path)
		if err != nil || !w.finder.HasRunner(rel) || slices.Contains(tests, rel) {
			return nil
		}
		sources = append(sources, rel)
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "failed to scan project")
	}

	w.tests, w.sources = tests, sources
	w.out.Watch("aqa - watcher active, waiting for file changes...")
	if w.opts.OnScan != nil {
		w.opts.OnScan(slices.Clone(tests), slices.Clone(sources))
	}
	return nil
}

// Affected returns the test files to re-run after changed was modified: the
// file itself when it is a test, otherwise the tests whose base name starts
// with the changed file's base name without extension, otherwise all tests.
func Affected(tests []string, changed string) []string {
	if slices.Contains(tests, changed) {
		return []string{changed}
	}

	base := filepath.Base(changed)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	var related []string
	for _, t := range tests {
		if strings.HasPrefix(filepath.Base(t), base) {
			related = append(related, t)
		}
	}
	if len(related) > 0 {
		return related
	}
	return slices.Clone(tests)
}

// batch is an insertion-ordered set of pending test files.
type batch struct {
	files []string
}

func (b *batch) add(files ...string) {
	for _, f := range files {
		if !slices.Contains(b.files, f) {
			b.files = append(b.files, f)
		}
	}
}

func (b *batch) take() []string {
	files := b.files
	b.files = nil
	return files
}

func baseNames(files []string) []string {
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = filepath.Base(f)
	}
	return names
}

func stoppedTimer() *time.Timer {
	t := time.NewTimer(time.Hour)
	t.Stop()
	return t
}
