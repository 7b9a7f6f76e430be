package references

import (
	"unicode/utf8"

	"github.com/xiaoxustudio/webgal-language-tools/internal/position"
	"github.com/xiaoxustudio/webgal-language-tools/internal/script"
	"github.com/xiaoxustudio/webgal-language-tools/pkg/lsp"
)

// SymbolType represents the type of a symbol
type SymbolType int

const (
	SymbolTypeVariable SymbolType = iota // setVar and getUserInput targets
	SymbolTypeLabel                      // label names
)

// Symbol represents a symbol under the cursor
type Symbol struct {
	Name  string
	Type  SymbolType
	Range lsp.Range
}

// labelCommands are the commands whose words name labels
var labelCommands = map[string]bool{
	"jumpLabel": true,
	"choose":    true,
	"label":     true,
}

// Provider provides go-to-definition and find-references functionality
type Provider struct{}

// NewProvider creates a new references provider
func NewProvider() *Provider {
	return &Provider{}
}

// GetDefinition returns one link per definition of the symbol at pos
func (p *Provider) GetDefinition(snap *script.Snapshot, pos lsp.Position) []lsp.LocationLink {
	symbol := p.findSymbolAtPosition(snap, pos)
	if symbol == nil {
		return nil
	}

	var links []lsp.LocationLink
	for _, tok := range p.definitions(snap.Defs, symbol) {
		if tok.Word != symbol.Name {
			continue
		}
		target := tokenRange(tok)
		origin := symbol.Range
		links = append(links, lsp.LocationLink{
			OriginSelectionRange: &origin,
			TargetURI:            snap.URI,
			TargetRange:          target,
			TargetSelectionRange: target,
		})
	}
	return links
}

// GetReferences returns every whole word occurrence of the symbol at pos
func (p *Provider) GetReferences(snap *script.Snapshot, pos lsp.Position, includeDeclaration bool) []lsp.Location {
	symbol := p.findSymbolAtPosition(snap, pos)
	if symbol == nil {
		return nil
	}

	// definition lines map to the character the name starts at or after
	declarations := make(map[int]int)
	if !includeDeclaration {
		for _, tok := range p.definitions(snap.Defs, symbol) {
			declarations[tok.Position.Line] = tok.Position.Character
		}
	}

	var locations []lsp.Location
	for lineNumber, line := range snap.Lines {
		declChar, isDeclLine := declarations[lineNumber]
		for _, start := range wordOccurrences(line, symbol.Name) {
			if isDeclLine && start >= declChar {
				isDeclLine = false
				continue
			}
			locations = append(locations, lsp.Location{
				URI: snap.URI,
				Range: lsp.Range{
					Start: lsp.Position{Line: lineNumber, Character: start},
					End:   lsp.Position{Line: lineNumber, Character: start + utf8.RuneCountInString(symbol.Name)},
				},
			})
		}
	}
	return locations
}

// findSymbolAtPosition finds the label or variable name under the cursor
func (p *Provider) findSymbolAtPosition(snap *script.Snapshot, pos lsp.Position) *Symbol {
	if snap == nil || pos.Line < 0 || pos.Line >= len(snap.Lines) {
		return nil
	}
	word, ok := snap.Doc.WordAt(pos, nil)
	if !ok {
		return nil
	}

	symbolType := SymbolTypeVariable
	if labelCommands[snap.CommandAt(pos.Line)] {
		symbolType = SymbolTypeLabel
	}
	return &Symbol{
		Name:  word.Text,
		Type:  symbolType,
		Range: snap.Doc.RangeOf(word.Start, word.End),
	}
}

func (p *Provider) definitions(defs *script.DefinitionMap, symbol *Symbol) []script.Token {
	if symbol.Type == SymbolTypeLabel {
		return defs.Label[symbol.Name]
	}
	return defs.SetVar[symbol.Name]
}

func tokenRange(tok script.Token) lsp.Range {
	return lsp.Range{
		Start: tok.Position,
		End: lsp.Position{
			Line:      tok.Position.Line,
			Character: tok.Position.Character + utf8.RuneCountInString(tok.Word),
		},
	}
}

// wordOccurrences returns the rune offsets where name appears as a whole word
func wordOccurrences(line, name string) []int {
	runes := []rune(line)
	target := []rune(name)
	if len(target) == 0 {
		return nil
	}

	var starts []int
	for i := 0; i+len(target) <= len(runes); i++ {
		if string(runes[i:i+len(target)]) != name {
			continue
		}
		if i > 0 && position.IsWordChar(runes[i-1]) {
			continue
		}
		end := i + len(target)
		if end < len(runes) && position.IsWordChar(runes[end]) {
			continue
		}
		starts = append(starts, i)
		i = end - 1
	}
	return starts
}
