// Package discovery finds the test files of a project.
package discovery

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/aqatest/aqa/internal/errors"
)

// DefaultPatterns are the doublestar patterns, relative to the project root,
// that mark a file as a test file.
var DefaultPatterns = []string{
	"**/*test.*",
	"**/*tests.*",
	"**/test-*.*",
	"**/*.spec.*",
	"**/test/*.*",
	"**/tests/*.*",
	"**/__tests__/*.*",
}

// SkipDirs are directory names never descended into.
var SkipDirs = []string{"node_modules", "vendor", "testdata"}

// Finder discovers test files below Root.
type Finder struct {
	Root       string
	Extensions []string
	Patterns   []string
}

// New creates a Finder for the files with a runner for one of exts.
func New(root string, exts []string) *Finder {
	return &Finder{Root: root, Extensions: exts, Patterns: DefaultPatterns}
}

// ShouldSkipDir reports whether a directory with the given base name is ignored.
// Names with a single leading dot or underscore are hidden; "__tests__" is not.
func ShouldSkipDir(name string) bool {
	if slices.Contains(SkipDirs, name) {
		return true
	}
	if strings.HasPrefix(name, ".") && !strings.HasPrefix(name, "..") && name != "." {
		return true
	}
	return strings.HasPrefix(name, "_") && !strings.HasPrefix(name, "__")
}

// IsTestFile reports whether rel, a path relative to the root, names a test file.
func (f *Finder) IsTestFile(rel string) bool {
	rel = filepath.ToSlash(rel)
	if strings.HasSuffix(rel, "_test.go") {
		return false
	}
	if !f.HasRunner(rel) {
		return false
	}
	for _, pattern := range f.Patterns {
		if matched, err := doublestar.Match(pattern, rel); err == nil && matched {
			return true
		}
	}
	return false
}

// HasRunner reports whether the file's extension has a configured runner.
func (f *Finder) HasRunner(path string) bool {
	return slices.Contains(f.Extensions, filepath.Ext(path))
}

// IsIgnored reports whether a root-relative path lies in an ignored directory.
func (f *Finder) IsIgnored(rel string) bool {
	dir := filepath.Dir(filepath.ToSlash(rel))
	if dir == "." {
		return false
	}
	for _, part := range strings.Split(filepath.ToSlash(dir), "/") {
		if ShouldSkipDir(part) {
			return true
		}
	}
	return false
}

// Find walks the whole project and returns its test files.
func (f *Finder) Find(ctx context.Context) ([]string, error) {
	return f.FindIn(ctx, f.Root)
}

// FindIn walks dir, which must lie inside the root, and returns the test files
// below it as root-relative paths in lexical order.
func (f *Finder) FindIn(ctx context.Context, dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if walkErr != nil {
			if path == dir {
				return walkErr
			}
			// Unreadable entries below the start directory are not fatal.
			return nil
		}

		if d.IsDir() {
			if path != dir && ShouldSkipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(f.Root, path)
		if err != nil {
			return nil
		}
		if f.IsTestFile(rel) {
			files = append(files, rel)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, fmt.Sprintf("failed to scan %s", dir))
	}

	slices.Sort(files)
	return files, nil
}

// Resolve interprets a command-line argument relative to cwd and returns the
// root-relative test files it selects. An empty argument selects every test
// file in the project, a directory selects the test files below it, a file
// selects itself and anything else is treated as a glob pattern.
func (f *Finder) Resolve(ctx context.Context, cwd, arg string) ([]string, error) {
	if arg == "" {
		return f.Find(ctx)
	}

	path := arg
	if !filepath.IsAbs(path) {
		path = filepath.Join(cwd, path)
	}

	info, err := os.Stat(path)
	switch {
	case err == nil && info.IsDir():
		return f.FindIn(ctx, path)
	case err == nil:
		if !f.HasRunner(path) {
			return nil, errors.Configf("no runner configured for %q files (%s)", filepath.Ext(path), arg)
		}
		rel, err := f.rel(path)
		if err != nil {
			return nil, err
		}
		return []string{rel}, nil
	}

	return f.glob(path, arg)
}

func (f *Finder) glob(pattern, arg string) ([]string, error) {
	if !doublestar.ValidatePathPattern(pattern) {
		return nil, errors.Configf("invalid pattern %q", arg)
	}
	matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, errors.Wrap(err, fmt.Sprintf("failed to expand %q", arg))
	}

	files := make([]string, 0, len(matches))
	for _, m := range matches {
		if !f.HasRunner(m) {
			continue
		}
		rel, err := f.rel(m)
		if err != nil {
			return nil, err
		}
		files = append(files, rel)
	}
	if len(files) == 0 {
		return nil, errors.NotFound("test files", arg)
	}

	slices.Sort(files)
	return files, nil
}

func (f *Finder) rel(path string) (string, error) {
	rel, err := filepath.Rel(f.Root, path)
	if err != nil {
		return "", errors.Wrap(err, fmt.Sprintf("%s is not inside %s", path, f.Root))
	}
	return rel, nil
}
