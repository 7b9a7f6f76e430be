package vfs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// OS reads from the local disk
type OS struct {
	root string
}

// NewOS creates a disk backed file system rooted at root
func NewOS(root string) *OS {
	return &OS{root: NormalizePath(root)}
}

// Root returns the game root
func (o *OS) Root() string {
	return o.root
}

func (o *OS) native(p string) string {
	if drivePath.MatchString(p) {
		p = p[1:]
	}
	return filepath.FromSlash(p)
}

// ReadFile returns the file content
func (o *OS) ReadFile(p string) (string, error) {
	data, err := os.ReadFile(o.native(p))
	if err != nil {
		return "", wrapErr(p, err)
	}
	return string(data), nil
}

// ReadDirectory lists a directory sorted by name
func (o *OS) ReadDirectory(p string) ([]Entry, error) {
	dirEntries, err := os.ReadDir(o.native(p))
	if err != nil {
		return nil, wrapErr(p, err)
	}

	entries := make([]Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		entries = append(entries, Entry{Name: de.Name(), IsDirectory: de.IsDir()})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// Stat describes a path
func (o *OS) Stat(p string) (Stat, error) {
	info, err := os.Stat(o.native(p))
	if err != nil {
		return Stat{}, wrapErr(p, err)
	}
	return Stat{IsFile: info.Mode().IsRegular(), IsDirectory: info.IsDir(), Size: info.Size()}, nil
}

// FindFile searches startDir for a file called name
func (o *OS) FindFile(startDir, name string) (string, error) {
	return findFile(o.ReadDirectory, startDir, name)
}

// Join joins path parts
func (o *OS) Join(parts ...string) string {
	return JoinPaths(parts...)
}

func wrapErr(p string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%s: %w", p, ErrNotFound)
	}
	return fmt.Errorf("%s: %w", p, err)
}
