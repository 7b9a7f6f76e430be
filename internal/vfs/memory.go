package vfs

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ChangeKind names a mutation of a Memory file system
type ChangeKind string

const (
	ChangeWriteFile ChangeKind = "writeFile"
	ChangeDelete    ChangeKind = "deletePath"
	ChangeMkdir     ChangeKind = "mkdir"
	ChangeRename    ChangeKind = "rename"
)

// Change is delivered to listeners after a mutation
type Change struct {
	Kind    ChangeKind
	Path    string
	From    string
	To      string
	Content string
}

// Listener receives changes
type Listener func(changes []Change)

var errNotDirectory = errors.New("vfs: path segment is not a directory")

type node struct {
	content  string
	children map[string]*node
}

func newDir() *node {
	return &node{children: make(map[string]*node)}
}

func (n *node) isDir() bool {
	return n.children != nil
}

// Memory is an in-memory tree, used by tests and the browser playground
type Memory struct {
	mu        sync.RWMutex
	root      string
	tree      *node
	listeners map[int]Listener
	nextID    int
}

// NewMemory creates an empty tree rooted at root
func NewMemory(root string) *Memory {
	if root == "" {
		root = "/"
	}
	return &Memory{
		root:      NormalizePath(URIToPath(root)),
		tree:      newDir(),
		listeners: make(map[int]Listener),
	}
}

// Root returns the tree root
func (m *Memory) Root() string {
	return m.root
}

// segments returns the path relative to the root
func (m *Memory) segments(p string) []string {
	resolved := NormalizePath(URIToPath(p))
	if m.root != "/" && (resolved == m.root || strings.HasPrefix(resolved, m.root+"/")) {
		resolved = resolved[len(m.root):]
	}
	resolved = strings.TrimPrefix(resolved, "/")
	if resolved == "" {
		return nil
	}
	return strings.Split(resolved, "/")
}

func (m *Memory) lookup(p string) *node {
	return m.nodeAt(m.segments(p))
}

func (m *Memory) ensureDir(segments []string) (*node, error) {
	current := m.tree
	for _, segment := range segments {
		next, ok := current.children[segment]
		if !ok {
			next = newDir()
			current.children[segment] = next
		}
		if !next.isDir() {
			return nil, errNotDirectory
		}
		current = next
	}
	return current, nil
}

// ReadFile returns the file content
func (m *Memory) ReadFile(p string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := m.lookup(p)
	if n == nil || n.isDir() {
		return "", fmt.Errorf("%s: %w", p, ErrNotFound)
	}
	return n.content, nil
}

// ReadDirectory lists a directory sorted by name
func (m *Memory) ReadDirectory(p string) ([]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := m.lookup(p)
	if n == nil || !n.isDir() {
		return nil, fmt.Errorf("%s: %w", p, ErrNotFound)
	}

	entries := make([]Entry, 0, len(n.children))
	for name, child := range n.children {
		entries = append(entries, Entry{Name: name, IsDirectory: child.isDir()})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// Stat describes a path
func (m *Memory) Stat(p string) (Stat, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := m.lookup(p)
	if n == nil {
		return Stat{}, fmt.Errorf("%s: %w", p, ErrNotFound)
	}
	if n.isDir() {
		return Stat{IsDirectory: true}, nil
	}
	return Stat{IsFile: true, Size: int64(len(n.content))}, nil
}

// FindFile searches startDir for a file called name
func (m *Memory) FindFile(startDir, name string) (string, error) {
	return findFile(m.ReadDirectory, startDir, name)
}

// Join joins path parts
func (m *Memory) Join(parts ...string) string {
	return JoinPaths(parts...)
}

// WriteFile creates or replaces a file, creating missing parent directories
func (m *Memory) WriteFile(p, content string) error {
	m.mu.Lock()
	segments := m.segments(p)
	if len(segments) == 0 {
		m.mu.Unlock()
		return nil
	}
	parent, err := m.ensureDir(segments[:len(segments)-1])
	if err != nil {
		m.mu.Unlock()
		return fmt.Errorf("write %s: %w", p, err)
	}
	parent.children[segments[len(segments)-1]] = &node{content: content}
	m.mu.Unlock()

	m.emit(Change{Kind: ChangeWriteFile, Path: NormalizePath(p), Content: content})
	return nil
}

// Mkdir creates a directory and its parents
func (m *Memory) Mkdir(p string) error {
	m.mu.Lock()
	_, err := m.ensureDir(m.segments(p))
	m.mu.Unlock()
	if err != nil {
		return fmt.Errorf("mkdir %s: %w", p, err)
	}

	m.emit(Change{Kind: ChangeMkdir, Path: NormalizePath(p)})
	return nil
}

// Delete removes a file or directory. Missing paths are ignored.
func (m *Memory) Delete(p string) error {
	m.mu.Lock()
	segments := m.segments(p)
	if len(segments) == 0 {
		m.mu.Unlock()
		return nil
	}
	parent := m.nodeAt(segments[:len(segments)-1])
	if parent == nil || !parent.isDir() {
		m.mu.Unlock()
		return nil
	}
	delete(parent.children, segments[len(segments)-1])
	m.mu.Unlock()

	m.emit(Change{Kind: ChangeDelete, Path: NormalizePath(p)})
	return nil
}

// Rename moves a file or directory
func (m *Memory) Rename(from, to string) error {
	m.mu.Lock()
	fromSegments := m.segments(from)
	toSegments := m.segments(to)
	if len(fromSegments) == 0 || len(toSegments) == 0 {
		m.mu.Unlock()
		return nil
	}

	fromParent := m.nodeAt(fromSegments[:len(fromSegments)-1])
	if fromParent == nil || !fromParent.isDir() {
		m.mu.Unlock()
		return fmt.Errorf("rename %s: %w", from, ErrNotFound)
	}
	fromName := fromSegments[len(fromSegments)-1]
	entry, ok := fromParent.children[fromName]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("rename %s: %w", from, ErrNotFound)
	}

	toParent, err := m.ensureDir(toSegments[:len(toSegments)-1])
	if err != nil {
		m.mu.Unlock()
		return fmt.Errorf("rename %s: %w", to, err)
	}
	delete(fromParent.children, fromName)
	toParent.children[toSegments[len(toSegments)-1]] = entry
	m.mu.Unlock()

	m.emit(Change{Kind: ChangeRename, From: NormalizePath(from), To: NormalizePath(to)})
	return nil
}

// OnDidChange registers a listener and returns its removal func
func (m *Memory) OnDidChange(listener Listener) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	m.listeners[id] = listener
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.listeners, id)
	}
}

func (m *Memory) nodeAt(segments []string) *node {
	current := m.tree
	for _, segment := range segments {
		if !current.isDir() {
			return nil
		}
		next, ok := current.children[segment]
		if !ok {
			return nil
		}
		current = next
	}
	return current
}

func (m *Memory) emit(changes ...Change) {
	m.mu.RLock()
	listeners := make([]Listener, 0, len(m.listeners))
	for _, l := range m.listeners {
		listeners = append(listeners, l)
	}
	m.mu.RUnlock()

	for _, l := range listeners {
		l(changes)
	}
}
