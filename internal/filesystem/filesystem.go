// Package filesystem resolves asset names against an ordered list of mounted
// directories and packages.
package filesystem

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned when no mount holds the requested asset.
var ErrNotFound = fmt.Errorf("asset not found: %w", fs.ErrNotExist)

// FileSystem searches its mounts in the order they were added.
type FileSystem struct {
	mounts  []fs.FS
	closers []io.Closer
}

// New creates a file system with the given mounts.
func New(mounts ...fs.FS) *FileSystem {
	return &FileSystem{mounts: mounts}
}

// Mount appends fsys to the search order.
func (f *FileSystem) Mount(fsys fs.FS) {
	f.mounts = append(f.mounts, fsys)
}

// MountDir appends a directory on disk.
func (f *FileSystem) MountDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("failed to mount %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("failed to mount %s: not a directory", dir)
	}
	f.Mount(os.DirFS(dir))
	return nil
}

// MountPackage appends a zip archive. The archive stays open until Close.
func (f *FileSystem) MountPackage(file string) error {
	rc, err := zip.OpenReader(file)
	if err != nil {
		return fmt.Errorf("failed to mount package %s: %w", file, err)
	}
	f.Mount(rc)
	f.closers = append(f.closers, rc)
	return nil
}

// MountPath mounts p by its extension: a path ending in .zip is mounted as a package,
// anything else as a directory.
func (f *FileSystem) MountPath(p string) error {
	if strings.EqualFold(filepath.Ext(p), ".zip") {
		return f.MountPackage(p)
	}
	return f.MountDir(p)
}

// Close releases mounted packages.
func (f *FileSystem) Close() error {
	var errs []error
	for _, c := range f.closers {
		errs = append(errs, c.Close())
	}
	f.closers = nil
	return errors.Join(errs...)
}

// Open returns the asset from the first mount that has it.
func (f *FileSystem) Open(name string) (io.ReadCloser, error) {
	for _, m := range f.mounts {
		file, err := m.Open(name)
		if err == nil {
			return file, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to open %s: %w", name, err)
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
}

// Exists reports whether any mount holds name.
func (f *FileSystem) Exists(name string) bool {
	for _, m := range f.mounts {
		if _, err := fs.Stat(m, name); err == nil {
			return true
		}
	}
	return false
}

// OpenWithExts tries name+ext for each extension in order and returns the
// first asset that opens. Each extension is looked up across all mounts before
// the next extension is tried.
func (f *FileSystem) OpenWithExts(name string, exts ...string) (io.ReadCloser, error) {
	for _, ext := range exts {
		file, err := f.Open(name + ext)
		if err == nil {
			return file, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: %s (tried %s)", ErrNotFound, name, strings.Join(exts, ", "))
}
