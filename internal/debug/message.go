// Package debug models the messages exchanged with a running game and
// evaluates REPL expressions against the last known game state.
package debug

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Command is the instruction carried by a runtime message
type Command int

const (
	CommandJump Command = iota
	CommandSyncFromClient
	CommandSyncFromEditor
	CommandExecute
)

// EventMessage is the event name of every runtime message
const EventMessage = "message"

// gameVarKey holds the script variables inside the stage state
const gameVarKey = "GameVar"

// Data is the payload of a runtime message
type Data struct {
	Command      Command        `json:"command"`
	SceneMsg     map[string]any `json:"sceneMsg"`
	StageSyncMsg map[string]any `json:"stageSyncMsg"`
	Message      string         `json:"message"`
}

// Message is one runtime message
type Message struct {
	Event string `json:"event"`
	Data  Data   `json:"data"`
}

// ParseMessage decodes a runtime message. Missing scene and stage
// objects decode as empty maps.
func ParseMessage(content []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(content, &msg); err != nil {
		return nil, fmt.Errorf("invalid debug message: %w", err)
	}
	if msg.Data.SceneMsg == nil {
		msg.Data.SceneMsg = map[string]any{}
	}
	if msg.Data.StageSyncMsg == nil {
		msg.Data.StageSyncMsg = map[string]any{}
	}
	return &msg, nil
}

// NewJumpMessage asks the game to run scene from line
func NewJumpMessage(scene string, line int) Message {
	return Message{
		Event: EventMessage,
		Data: Data{
			Command:      CommandJump,
			SceneMsg:     map[string]any{"scene": scene, "sentence": line},
			StageSyncMsg: map[string]any{},
			Message:      "Sync",
		},
	}
}

// NewScriptMessage asks the game to execute a script line
func NewScriptMessage(scene, script string) Message {
	return Message{
		Event: EventMessage,
		Data: Data{
			Command:      CommandExecute,
			SceneMsg:     map[string]any{"scene": scene, "sentence": 1},
			StageSyncMsg: map[string]any{},
			Message:      script,
		},
	}
}

// Encode returns the JSON form of m
func (m Message) Encode() ([]byte, error) {
	return json.Marshal(m)
}

// Scene returns the scene name, or ""
func (m *Message) Scene() string {
	scene, _ := m.Data.SceneMsg["scene"].(string)
	return scene
}

// Sentence returns the current line, or -1
func (m *Message) Sentence() int {
	switch v := m.Data.SceneMsg["sentence"].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return -1
}

// GameVar returns the script variables of the stage state
func (m *Message) GameVar() map[string]any {
	vars, _ := m.Data.StageSyncMsg[gameVarKey].(map[string]any)
	if vars == nil {
		return map[string]any{}
	}
	return vars
}

// sortedKeys returns the keys of a decoded object in order
func sortedKeys(obj map[string]any) []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// stringify renders a decoded JSON value the way the game prints it:
// arrays join their items with ',' and objects collapse to a marker
func stringify(v any) string {
	switch value := v.(type) {
	case nil:
		return "null"
	case string:
		return value
	case bool:
		return strconv.FormatBool(value)
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case int:
		return strconv.Itoa(value)
	case []any:
		parts := make([]string, len(value))
		for i, item := range value {
			if item != nil {
				parts[i] = stringify(item)
			}
		}
		return strings.Join(parts, ",")
	case map[string]any:
		return "[object Object]"
	}
	return fmt.Sprint(v)
}
