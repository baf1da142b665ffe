// Package project locates the root of an aqa project.
package project

import (
	"errors"
	"os"
	"path/filepath"
)

// Manifest file names recognized at a project root, in lookup order.
const (
	ConfigFileName    = "aqa.yaml"
	AltConfigFileName = "aqa.yml"
	PackageFileName   = "package.json"
	GoModFileName     = "go.mod"
)

// RootMarkers lists the files whose presence marks a project root.
var RootMarkers = []string{ConfigFileName, AltConfigFileName, PackageFileName, GoModFileName}

// ErrNoProjectRoot is returned when no root marker is found.
var ErrNoProjectRoot = errors.New("no aqa.yaml, package.json or go.mod found in the working directory or any parent")

// FindRoot walks up from the current working directory until it finds a root marker.
func FindRoot() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return FindRootFrom(cwd)
}

// FindRootFrom walks up from the given directory until it finds a root marker.
func FindRootFrom(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if HasMarker(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNoProjectRoot
		}
		dir = parent
	}
}

// FindRootOrCwd returns the project root above startDir, or startDir itself
// when there is none.
func FindRootOrCwd(startDir string) (string, error) {
	root, err := FindRootFrom(startDir)
	if errors.Is(err, ErrNoProjectRoot) {
		return filepath.Abs(startDir)
	}
	return root, err
}

// HasMarker reports whether dir directly contains one of RootMarkers.
func HasMarker(dir string) bool {
	for _, name := range RootMarkers {
		if info, err := os.Stat(filepath.Join(dir, name)); err == nil && !info.IsDir() {
			return true
		}
	}
	return false
}
