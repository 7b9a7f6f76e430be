package debug

import (
	"math"
	"strconv"
	"sync"
)

// Scope names a group of runtime variables
type Scope string

const (
	ScopeLocals Scope = "locals"
	ScopeEnv    Scope = "env"
	ScopeScene  Scope = "scene"
)

// RuntimeVariable is a named value reported by the game
type RuntimeVariable struct {
	Name  string
	Value any
}

// Handle is a reference the client can expand into variables.
// The set of implementations is closed.
type Handle interface {
	isHandle()
}

// ScopeHandle expands into the variables of a scope
type ScopeHandle struct {
	Scope Scope
}

// CollectionHandle expands into the children of an array or object
type CollectionHandle struct {
	Items []RuntimeVariable
}

// VariableHandle expands into a single variable
type VariableHandle struct {
	Variable RuntimeVariable
}

func (ScopeHandle) isHandle()      {}
func (CollectionHandle) isHandle() {}
func (VariableHandle) isHandle()   {}

// Handles hands out references starting at 1; 0 means "not expandable"
type Handles struct {
	mu    sync.Mutex
	next  int
	items map[int]Handle
}

// NewHandles creates an empty registry
func NewHandles() *Handles {
	return &Handles{next: 1, items: make(map[int]Handle)}
}

// Create registers h and returns its reference
func (h *Handles) Create(handle Handle) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	ref := h.next
	h.next++
	h.items[ref] = handle
	return ref
}

// Get returns the handle of ref
func (h *Handles) Get(ref int) (Handle, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	handle, ok := h.items[ref]
	return handle, ok
}

// Reset forgets every handle
func (h *Handles) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.next = 1
	h.items = make(map[int]Handle)
}

// ScopeRef is a named scope and its reference
type ScopeRef struct {
	Name               string `json:"name"`
	VariablesReference int    `json:"variablesReference"`
}

// Variable is a runtime value formatted for display
type Variable struct {
	Name               string `json:"name"`
	Value              string `json:"value"`
	Type               string `json:"type"`
	VariablesReference int    `json:"variablesReference"`
	EvaluateName       string `json:"evaluateName"`
}

// Inspector turns the game state into displayable variables
type Inspector struct {
	handles     *Handles
	state       *State
	ValuesInHex bool
}

// NewInspector creates an inspector over state
func NewInspector(state *State) *Inspector {
	return &Inspector{handles: NewHandles(), state: state}
}

// Scopes registers the three scopes and returns their references
func (i *Inspector) Scopes() []ScopeRef {
	return []ScopeRef{
		{Name: "Locals", VariablesReference: i.handles.Create(ScopeHandle{Scope: ScopeLocals})},
		{Name: "Env", VariablesReference: i.handles.Create(ScopeHandle{Scope: ScopeEnv})},
		{Name: "Scene", VariablesReference: i.handles.Create(ScopeHandle{Scope: ScopeScene})},
	}
}

// Variables expands the handle of ref
func (i *Inspector) Variables(ref int) []Variable {
	handle, ok := i.handles.Get(ref)
	if !ok {
		return []Variable{}
	}

	var items []RuntimeVariable
	switch h := handle.(type) {
	case ScopeHandle:
		items = i.state.Variables(h.Scope)
	case CollectionHandle:
		items = h.Items
	case VariableHandle:
		items = []RuntimeVariable{h.Variable}
	}

	vars := make([]Variable, 0, len(items))
	for _, item := range items {
		vars = append(vars, i.convert(item))
	}
	return vars
}

func (i *Inspector) convert(v RuntimeVariable) Variable {
	out := Variable{
		Name:         v.Name,
		Value:        "null",
		Type:         "undefined",
		EvaluateName: v.Name,
	}

	switch value := v.Value.(type) {
	case []any:
		items := children(value)
		out.VariablesReference = i.handles.Create(CollectionHandle{Items: items})
		out.Value = "Array(" + strconv.Itoa(len(items)) + ")"
		out.Type = "array"
	case map[string]any:
		out.VariablesReference = i.handles.Create(CollectionHandle{Items: children(value)})
		out.Value = "Object"
		out.Type = "object"
	case float64:
		if math.Trunc(value) == value && !math.IsInf(value, 0) {
			out.Value = i.formatInteger(int64(value))
			out.Type = "integer"
		} else {
			out.Value = strconv.FormatFloat(value, 'f', -1, 64)
			out.Type = "float"
		}
	case string:
		out.Value = `"` + value + `"`
		out.Type = "string"
	case bool:
		out.Value = strconv.FormatBool(value)
		out.Type = "boolean"
	case nil:
		out.Type = "object"
	default:
		out.Value = stringify(value)
	}
	return out
}

func (i *Inspector) formatInteger(n int64) string {
	if i.ValuesInHex {
		return "0x" + strconv.FormatInt(n, 16)
	}
	return strconv.FormatInt(n, 10)
}

func children(value any) []RuntimeVariable {
	switch v := value.(type) {
	case []any:
		items := make([]RuntimeVariable, len(v))
		for idx, item := range v {
			items[idx] = RuntimeVariable{Name: strconv.Itoa(idx), Value: item}
		}
		return items
	case map[string]any:
		items := make([]RuntimeVariable, 0, len(v))
		for _, key := range sortedKeys(v) {
			items = append(items, RuntimeVariable{Name: key, Value: v[key]})
		}
		return items
	}
	return nil
}
