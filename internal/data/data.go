// Package data holds the command, argument, config key and stage tables
package data

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed commands.yaml
var defaultTables []byte

// SayCommand is the command of lines with no recognised command
const SayCommand = "say"

// Arg is a command argument written as -label or -label=value
type Arg struct {
	Key    string `yaml:"-"`
	Label  string `yaml:"label"`
	Insert string `yaml:"insert"`
	Detail string `yaml:"detail"`
	Doc    string `yaml:"doc,omitempty"`
}

// Command is a script command definition
type Command struct {
	Name     string   `yaml:"name"`
	Desc     string   `yaml:"desc"`
	Detail   string   `yaml:"detail"`
	Insert   string   `yaml:"insert"`
	Resource string   `yaml:"resource,omitempty"`
	Args     []string `yaml:"args"`
}

// ConfigKey is a key of game/config.txt
type ConfigKey struct {
	Key      string `yaml:"key"`
	Desc     string `yaml:"desc"`
	Required bool   `yaml:"required,omitempty"`
}

// State is a node of the $stage / $userData tree
type State struct {
	Description string            `yaml:"description"`
	Type        string            `yaml:"type,omitempty"`
	Children    map[string]*State `yaml:"children,omitempty"`
}

// Keys returns the child names sorted
func (s *State) Keys() []string {
	keys := make([]string, 0, len(s.Children))
	for k := range s.Children {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type tables struct {
	Docs       string            `yaml:"docs"`
	Args       map[string]Arg    `yaml:"args"`
	GlobalArgs []string          `yaml:"globalArgs"`
	Commands   []Command         `yaml:"commands"`
	Config     []ConfigKey       `yaml:"config"`
	States     map[string]*State `yaml:"states"`
}

// Store holds the shared tables
type Store struct {
	DocsURL    string
	Args       map[string]Arg
	GlobalArgs []Arg
	Commands   map[string]Command
	List       []Command
	Config     map[string]ConfigKey
	ConfigList []ConfigKey
	States     map[string]*State
}

// Default parses the embedded tables
func Default() (*Store, error) {
	return Parse(defaultTables)
}

// MustDefault is Default for callers that cannot recover from a broken build
func MustDefault() *Store {
	store, err := Default()
	if err != nil {
		panic(err)
	}
	return store
}

// Load reads and parses a table file
func Load(dataPath string) (*Store, error) {
	content, err := os.ReadFile(dataPath)
	if err != nil {
		return nil, err
	}
	return Parse(content)
}

// Parse builds a Store from YAML tables
func Parse(content []byte) (*Store, error) {
	var t tables
	if err := yaml.Unmarshal(content, &t); err != nil {
		return nil, fmt.Errorf("failed to parse command tables: %w", err)
	}

	store := &Store{
		DocsURL:    t.Docs,
		Args:       make(map[string]Arg, len(t.Args)),
		Commands:   make(map[string]Command, len(t.Commands)),
		List:       t.Commands,
		Config:     make(map[string]ConfigKey, len(t.Config)),
		ConfigList: t.Config,
		States:     t.States,
	}

	for key, arg := range t.Args {
		arg.Key = key
		store.Args[key] = arg
	}

	for _, key := range t.GlobalArgs {
		arg, ok := store.Args[key]
		if !ok {
			return nil, fmt.Errorf("unknown global argument %q", key)
		}
		store.GlobalArgs = append(store.GlobalArgs, arg)
	}

	for _, cmd := range t.Commands {
		for _, key := range cmd.Args {
			if _, ok := store.Args[key]; !ok {
				return nil, fmt.Errorf("command %s: unknown argument %q", cmd.Name, key)
			}
		}
		store.Commands[cmd.Name] = cmd
	}

	for _, key := range t.Config {
		store.Config[key.Key] = key
	}

	return store, nil
}

// IsCommand reports whether name is a known command
func (s *Store) IsCommand(name string) bool {
	_, ok := s.Commands[name]
	return ok
}

// Command returns a command, falling back to say for unknown names
func (s *Store) Command(name string) Command {
	if cmd, ok := s.Commands[name]; ok {
		return cmd
	}
	return s.Commands[SayCommand]
}

// ArgsFor returns the arguments of a command followed by the global
// arguments, without repeated labels
func (s *Store) ArgsFor(command string) []Arg {
	cmd := s.Command(command)

	seen := make(map[string]bool)
	var result []Arg
	add := func(arg Arg) {
		if seen[arg.Label] {
			return
		}
		seen[arg.Label] = true
		result = append(result, arg)
	}

	for _, key := range cmd.Args {
		add(s.Args[key])
	}
	for _, arg := range s.GlobalArgs {
		add(arg)
	}
	return result
}

// ArgByLabel finds an argument of command by its written label
func (s *Store) ArgByLabel(command, label string) (Arg, bool) {
	for _, arg := range s.ArgsFor(command) {
		if arg.Label == label {
			return arg, true
		}
	}
	return Arg{}, false
}

// ResourceDir returns the game folder holding the command's files
func (s *Store) ResourceDir(command string) string {
	return s.Command(command).Resource
}

// HasResource reports whether command itself names a resource folder
func (s *Store) HasResource(command string) bool {
	cmd, ok := s.Commands[command]
	return ok && cmd.Resource != ""
}

// CommandURL returns the documentation link of a command
func (s *Store) CommandURL(name string) string {
	return s.DocsURL + name + ".html"
}

// StateAt walks the state tree along path, e.g. ["stage", "bgm", "src"]
func (s *Store) StateAt(path []string) (*State, bool) {
	if len(path) == 0 {
		return nil, false
	}
	current, ok := s.States[path[0]]
	if !ok {
		return nil, false
	}
	for _, segment := range path[1:] {
		next, ok := current.Children[segment]
		if !ok {
			return nil, false
		}
		current = next
	}
	return current, true
}
