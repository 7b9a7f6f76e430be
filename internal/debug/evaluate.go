package debug

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/xiaoxustudio/webgal-language-tools/internal/logger"
	"github.com/xiaoxustudio/webgal-language-tools/internal/script"
	"github.com/xiaoxustudio/webgal-language-tools/pkg/lsp"
)

// ReplScope is the symbol store scope written by the evaluator
const ReplScope = "repl"

// nullResult is returned for anything that does not resolve
const nullResult = "null"

var (
	setPattern    = regexp.MustCompile(`^@set\s+(\S+)\s+(\S+)`)
	scriptPattern = regexp.MustCompile(`^@script\s+(.*)`)
)

// State is the last game state reported by the runtime
type State struct {
	mu    sync.RWMutex
	stage map[string]any
	scene map[string]any
}

// NewState creates an empty state
func NewState() *State {
	return &State{stage: map[string]any{}, scene: map[string]any{}}
}

// Apply replaces the state with the one carried by msg
func (s *State) Apply(msg *Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stage = msg.Data.StageSyncMsg
	s.scene = msg.Data.SceneMsg
	if s.stage == nil {
		s.stage = map[string]any{}
	}
	if s.scene == nil {
		s.scene = map[string]any{}
	}
}

// Variables lists the runtime variables of scope. Locals are the
// script variables; env is the rest of the stage state.
func (s *State) Variables(scope Scope) []RuntimeVariable {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var source map[string]any
	switch scope {
	case ScopeLocals:
		source = s.gameVar()
	case ScopeScene:
		source = s.scene
	default:
		source = make(map[string]any, len(s.stage))
		for k, v := range s.stage {
			if k != gameVarKey {
				source[k] = v
			}
		}
	}

	vars := make([]RuntimeVariable, 0, len(source))
	for _, key := range sortedKeys(source) {
		vars = append(vars, RuntimeVariable{Name: key, Value: source[key]})
	}
	return vars
}

func (s *State) gameVar() map[string]any {
	vars, _ := s.stage[gameVarKey].(map[string]any)
	return vars
}

// setGameVar stores a script variable, creating GameVar when missing
func (s *State) setGameVar(name string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	vars := s.gameVar()
	if vars == nil {
		vars = map[string]any{}
		s.stage[gameVarKey] = vars
	}
	vars[name] = value
}

// Evaluator answers REPL expressions:
//
//	$name          stage state key
//	#name          scene state key
//	@run           scene state keys
//	@env           stage state keys
//	@set name val  define a variable
//	@script text   queue a script line
//	name           script variable
type Evaluator struct {
	state  *State
	store  *script.Store
	scene  string
	mu     sync.Mutex
	lines  int
	outbox []Message
}

// NewEvaluator creates an evaluator recording into the repl scope of store
func NewEvaluator(state *State, store *script.Store) *Evaluator {
	if state == nil {
		state = NewState()
	}
	if store == nil {
		store = script.NewStore()
	}
	return &Evaluator{state: state, store: store}
}

// State returns the game state the evaluator reads
func (e *Evaluator) State() *State {
	return e.state
}

// SetScene names the scene attached to queued messages
func (e *Evaluator) SetScene(scene string) {
	e.scene = scene
}

// LoadScript analyzes text into the repl scope, replacing earlier definitions
func (e *Evaluator) LoadScript(text string) *script.DefinitionMap {
	lines := script.SplitLines(text)

	e.mu.Lock()
	e.lines = len(lines)
	e.mu.Unlock()

	return e.store.Update(ReplScope, lines)
}

// Definitions returns the symbol pool of the repl scope
func (e *Evaluator) Definitions() *script.DefinitionMap {
	return e.store.Pool(ReplScope)
}

// Outbox drains the messages queued for the runtime
func (e *Evaluator) Outbox() []Message {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := e.outbox
	e.outbox = nil
	return out
}

// Evaluate resolves expr against the game state
func (e *Evaluator) Evaluate(expr string) string {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nullResult
	}

	e.state.mu.RLock()
	stage, scene := e.state.stage, e.state.scene
	e.state.mu.RUnlock()

	switch expr[0] {
	case '$':
		if v, ok := stage[expr[1:]]; ok {
			return stringify(v)
		}
	case '#':
		if v, ok := scene[expr[1:]]; ok {
			return stringify(v)
		}
	case '@':
		return e.command(expr, stage, scene)
	}

	e.state.mu.RLock()
	defer e.state.mu.RUnlock()
	if v, ok := e.state.gameVar()[expr]; ok {
		return stringify(v)
	}
	return nullResult
}

func (e *Evaluator) command(expr string, stage, scene map[string]any) string {
	switch expr {
	case "@run":
		return strings.Join(sortedKeys(scene), ",")
	case "@env":
		return strings.Join(sortedKeys(stage), ",")
	}

	if m := setPattern.FindStringSubmatch(expr); m != nil {
		e.SetVariable(m[1], m[2])
		return m[2]
	}
	if m := scriptPattern.FindStringSubmatch(expr); m != nil {
		e.queue(NewScriptMessage(e.scene, m[1]))
		return m[1]
	}
	return nullResult
}

// SetVariable defines name in the repl scope and the local state, and
// queues the matching setVar line for the runtime
func (e *Evaluator) SetVariable(name, value string) {
	line := fmt.Sprintf("setVar:%s=%s;", name, value)

	e.mu.Lock()
	lineNumber := e.lines
	e.lines++
	e.mu.Unlock()

	e.store.Define(ReplScope, script.Token{
		Word:     name,
		Value:    value,
		Input:    line,
		Position: lsp.Position{Line: lineNumber, Character: len("setVar:")},
	})
	e.state.setGameVar(name, value)
	e.queue(NewScriptMessage(e.scene, line))
	logger.Debug("repl: %s", line)
}

func (e *Evaluator) queue(msg Message) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.outbox = append(e.outbox, msg)
}
