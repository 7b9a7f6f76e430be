package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/peterh/liner"

	"github.com/xiaoxustudio/webgal-language-tools/internal/debug"
	"github.com/xiaoxustudio/webgal-language-tools/internal/logger"
	"github.com/xiaoxustudio/webgal-language-tools/internal/script"
)

const (
	historyFile = ".webgal_repl_history"
	prompt      = "webgal> "
)

const helpText = `Expressions:
  $name           stage state value
  #name           scene state value
  @run            scene state keys
  @env            stage state keys
  @set name val   define a variable
  @script text    queue a script line
  name            script variable
Commands:
  :load <file>    analyze a scene script
  :state <file>   load a runtime message (JSON)
  :labels         list labels
  :vars           list variables
  :scopes         show the Locals, Env and Scene variables
  :outbox         print the queued runtime messages
  :help           show this help
  :quit           exit
`

var (
	statePath  = flag.String("state", "", "Runtime message (JSON) to evaluate against")
	scriptPath = flag.String("script", "", "Scene script to analyze")
	debugFlag  = flag.Bool("debug", false, "Log debug output to stderr")
)

// session is the REPL state shared by the commands
type session struct {
	eval *debug.Evaluator
	out  io.Writer
}

func main() {
	flag.Parse()
	os.Exit(run())
}

func run() int {
	if *debugFlag {
		if err := logger.InitWriter(os.Stderr, true); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
			return 1
		}
	}

	s := &session{
		eval: debug.NewEvaluator(debug.NewState(), script.NewStore()),
		out:  os.Stdout,
	}
	if *statePath != "" {
		if err := s.loadState(*statePath); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	}
	if *scriptPath != "" {
		if err := s.loadScript(*scriptPath); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	}

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)
	ln.SetCompleter(s.complete)

	// Load history (best-effort)
	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	for {
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			fmt.Println()
			break
		}
		if err != nil {
			// Ctrl+C aborts the current input
			continue
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		ln.AppendHistory(line)

		if strings.HasPrefix(line, ":") {
			if done := s.command(line); done {
				break
			}
			continue
		}
		fmt.Fprintln(s.out, s.eval.Evaluate(line))
	}

	// Persist history (best-effort)
	if f, err := os.Create(histPath); err == nil {
		_, _ = ln.WriteHistory(f)
		_ = f.Close()
	}
	return 0
}

// command handles a ':' command and reports whether the REPL should exit
func (s *session) command(line string) (exit bool) {
	fields := strings.Fields(line)
	switch strings.ToLower(fields[0]) {
	case ":quit", ":exit":
		return true

	case ":help":
		fmt.Fprint(s.out, helpText)

	case ":load":
		if len(fields) < 2 {
			fmt.Fprintln(s.out, "usage: :load <file>")
			return false
		}
		if err := s.loadScript(fields[1]); err != nil {
			fmt.Fprintln(s.out, err)
		}

	case ":state":
		if len(fields) < 2 {
			fmt.Fprintln(s.out, "usage: :state <file>")
			return false
		}
		if err := s.loadState(fields[1]); err != nil {
			fmt.Fprintln(s.out, err)
		}

	case ":labels":
		s.printLabels()

	case ":vars":
		s.printVariables()

	case ":scopes":
		s.printScopes()

	case ":outbox":
		for _, msg := range s.eval.Outbox() {
			encoded, err := msg.Encode()
			if err != nil {
				fmt.Fprintln(s.out, err)
				continue
			}
			fmt.Fprintln(s.out, string(encoded))
		}

	default:
		fmt.Fprintln(s.out, "unknown command. Type :help for help.")
	}
	return false
}

func (s *session) loadScript(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("cannot read %s: %w", path, err)
	}
	s.eval.SetScene(filepath.Base(path))
	defs := s.eval.LoadScript(string(content))
	fmt.Fprintf(s.out, "loaded %s: %d labels, %d variables\n", path, len(defs.Label), len(defs.SetVar))
	return nil
}

func (s *session) loadState(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("cannot read %s: %w", path, err)
	}
	msg, err := debug.ParseMessage(content)
	if err != nil {
		return err
	}
	s.eval.State().Apply(msg)
	if scene := msg.Scene(); scene != "" {
		s.eval.SetScene(scene)
	}
	return nil
}

func (s *session) printLabels() {
	defs := s.eval.Definitions()
	for _, name := range defs.LabelNames() {
		tok, _ := defs.LatestLabel(name)
		fmt.Fprintf(s.out, "%s\tline %d\n", name, tok.Position.Line+1)
	}
}

func (s *session) printVariables() {
	defs := s.eval.Definitions()
	for _, name := range defs.VariableNames() {
		tok, _ := defs.LatestVariable(name)
		value := tok.Value
		if tok.IsGetUserInput {
			value = "<input>"
		}
		line := fmt.Sprintf("%s = %s\tline %d", name, value, tok.Position.Line+1)
		if tok.IsGlobal {
			line += "\tglobal"
		}
		if tok.Desc != "" {
			line += "\t; " + strings.TrimSpace(strings.ReplaceAll(tok.Desc, "\n", " "))
		}
		fmt.Fprintln(s.out, line)
	}
}

func (s *session) printScopes() {
	inspector := debug.NewInspector(s.eval.State())
	for _, scope := range inspector.Scopes() {
		fmt.Fprintf(s.out, "%s:\n", scope.Name)
		for _, v := range inspector.Variables(scope.VariablesReference) {
			fmt.Fprintf(s.out, "  %s: %s = %s\n", v.Name, v.Type, v.Value)
		}
	}
}

// complete offers commands and known variable names
func (s *session) complete(line string) []string {
	candidates := []string{":help", ":quit", ":load", ":state", ":labels", ":vars", ":scopes", ":outbox", "@run", "@env", "@set", "@script"}
	candidates = append(candidates, s.eval.Definitions().VariableNames()...)
	for _, v := range s.eval.State().Variables(debug.ScopeLocals) {
		candidates = append(candidates, v.Name)
	}

	seen := make(map[string]bool)
	var out []string
	for _, c := range candidates {
		if strings.HasPrefix(c, line) && !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	sort.Strings(out)
	return out
}
