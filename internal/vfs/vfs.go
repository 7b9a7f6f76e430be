// Package vfs is the file access used by link resolution and resource
// completion. Paths are slash separated and absolute.
package vfs

import (
	"errors"
	"net/url"
	"regexp"
	"strings"
)

// ErrNotFound is returned when a path does not exist
var ErrNotFound = errors.New("vfs: not found")

// Entry is one item of a directory listing
type Entry struct {
	Name        string
	IsDirectory bool
}

// Stat describes a path
type Stat struct {
	IsFile      bool
	IsDirectory bool
	Size        int64
}

// FileSystem is the read side shared by all backends
type FileSystem interface {
	Root() string
	ReadFile(path string) (string, error)
	ReadDirectory(path string) ([]Entry, error)
	Stat(path string) (Stat, error)
	// FindFile walks startDir depth first and returns the first file called name
	FindFile(startDir, name string) (string, error)
	Join(parts ...string) string
}

var (
	multiSlash   = regexp.MustCompile(`/+`)
	drivePath    = regexp.MustCompile(`^/[a-zA-Z]:/`)
	windowsDrive = regexp.MustCompile(`^[a-zA-Z]:[\\/]`)
)

// NormalizePath converts backslashes, collapses repeated slashes, adds a
// leading slash and drops a trailing one
func NormalizePath(p string) string {
	p = multiSlash.ReplaceAllString(strings.ReplaceAll(p, `\`, "/"), "/")
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		p = p[:len(p)-1]
	}
	return p
}

// JoinPaths joins the non-empty parts and normalizes the result
func JoinPaths(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" && part != "/" {
			kept = append(kept, part)
		}
	}
	return NormalizePath(strings.Join(kept, "/"))
}

// URIToPath converts a file URI to a path. Other strings are normalized as paths.
// Windows drive paths keep their drive letter without a leading slash.
func URIToPath(uri string) string {
	if !strings.HasPrefix(strings.ToLower(uri), "file://") {
		return NormalizePath(uri)
	}

	stripped := "/" + strings.TrimLeft(uri[len("file://"):], "/")
	decoded, err := url.PathUnescape(stripped)
	if err != nil {
		decoded = stripped
	}
	decoded = strings.ReplaceAll(decoded, `\`, "/")
	if drivePath.MatchString(decoded) {
		return decoded[1:]
	}
	return NormalizePath(decoded)
}

// PathToURI converts a path to a file URI
func PathToURI(p string) string {
	if strings.HasPrefix(p, "file://") {
		return p
	}
	p = strings.ReplaceAll(p, `\`, "/")
	if windowsDrive.MatchString(p) {
		p = "/" + p
	}
	if !strings.HasPrefix(p, "/") {
		return p
	}
	u := url.URL{Scheme: "file", Path: p}
	return u.String()
}

// ResourceDirectory lists the directory formed by joining parts under the root
func ResourceDirectory(fsys FileSystem, parts ...string) ([]Entry, error) {
	return fsys.ReadDirectory(JoinPaths(append([]string{fsys.Root()}, parts...)...))
}

// findFile is the depth first search shared by the backends
func findFile(readDir func(string) ([]Entry, error), startDir, name string) (string, error) {
	stack := []string{startDir}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		entries, err := readDir(current)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			full := JoinPaths(current, entry.Name)
			if !entry.IsDirectory && entry.Name == name {
				return full, nil
			}
			if entry.IsDirectory {
				stack = append(stack, full)
			}
		}
	}
	return "", ErrNotFound
}
