// Package catalog lists and opens the local files that are candidates for
// backup.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"disk-backup/internal/domain"
)

var (
	// ErrNotFound is returned when the name is not a regular file in the source directory.
	ErrNotFound = errors.New("local file not found")
	// ErrInvalidName is returned for names that would resolve outside the source directory.
	ErrInvalidName = errors.New("invalid file name")
)

// Catalog is a flat source directory.
type Catalog struct {
	dir string
}

func New(dir string) *Catalog {
	return &Catalog{dir: filepath.Clean(dir)}
}

func (c *Catalog) Dir() string {
	return c.dir
}

// List returns the regular file names in the directory, sorted. A missing
// directory is created first; when listing still fails the result is empty.
func (c *Catalog) List() []string {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return []string{}
	}
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return []string{}
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names
}

// Stat checks that name is a regular file without opening it.
func (c *Catalog) Stat(name string) (os.FileInfo, error) {
	path, err := c.resolve(name)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("stat %s: %w", name, err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	return info, nil
}

// Open opens name for reading.
func (c *Catalog) Open(name string) (domain.LocalFile, error) {
	info, err := c.Stat(name)
	if err != nil {
		return domain.LocalFile{}, err
	}
	path, _ := c.resolve(name)
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.LocalFile{}, fmt.Errorf("%s: %w", name, ErrNotFound)
		}
		return domain.LocalFile{}, fmt.Errorf("open %s: %w", name, err)
	}
	return domain.LocalFile{Name: name, Size: info.Size(), ReadCloser: f}, nil
}

func (c *Catalog) resolve(name string) (string, error) {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0) {
		return "", fmt.Errorf("%q: %w", name, ErrInvalidName)
	}
	return filepath.Join(c.dir, name), nil
}
