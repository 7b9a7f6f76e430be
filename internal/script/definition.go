package script

import (
	"sort"

	"github.com/xiaoxustudio/webgal-language-tools/pkg/lsp"
)

// Token is one occurrence of a label or variable
type Token struct {
	Word           string
	Value          string
	Input          string // raw source line
	IsGlobal       bool
	IsGetUserInput bool
	Position       lsp.Position
	Desc           string
}

// ChooseOption is one "text:value" branch of a choose line
type ChooseOption struct {
	Text  string
	Value string
}

// ChooseToken holds the options of a choose line
type ChooseToken struct {
	Options []ChooseOption
	Line    int
}

// DefinitionMap is the symbol pool produced by one analysis pass.
// Occurrences are kept in line order, the last one is the most recent.
type DefinitionMap struct {
	Label  map[string][]Token
	SetVar map[string][]Token
	Choose map[int]ChooseToken
}

// NewDefinitionMap creates an empty pool
func NewDefinitionMap() *DefinitionMap {
	m := &DefinitionMap{}
	m.reset()
	return m
}

func (m *DefinitionMap) reset() {
	m.Label = make(map[string][]Token)
	m.SetVar = make(map[string][]Token)
	m.Choose = make(map[int]ChooseToken)
}

// LatestVariable returns the last occurrence of a variable
func (m *DefinitionMap) LatestVariable(name string) (Token, bool) {
	return latest(m.SetVar[name])
}

// LatestLabel returns the last occurrence of a label
func (m *DefinitionMap) LatestLabel(name string) (Token, bool) {
	return latest(m.Label[name])
}

func latest(tokens []Token) (Token, bool) {
	if len(tokens) == 0 {
		return Token{}, false
	}
	return tokens[len(tokens)-1], true
}

// VariableNames returns the sorted variable names
func (m *DefinitionMap) VariableNames() []string {
	return sortedKeys(m.SetVar)
}

// LabelNames returns the sorted label names
func (m *DefinitionMap) LabelNames() []string {
	return sortedKeys(m.Label)
}

// ChooseLines returns the lines holding choose branches in ascending order
func (m *DefinitionMap) ChooseLines() []int {
	lines := make([]int, 0, len(m.Choose))
	for line := range m.Choose {
		lines = append(lines, line)
	}
	sort.Ints(lines)
	return lines
}

func sortedKeys(pool map[string][]Token) []string {
	names := make([]string, 0, len(pool))
	for name := range pool {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
