package symbols

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/xiaoxustudio/webgal-language-tools/internal/script"
	"github.com/xiaoxustudio/webgal-language-tools/pkg/lsp"
)

// Provider provides document symbol functionality
type Provider struct{}

// NewProvider creates a new symbol provider
func NewProvider() *Provider {
	return &Provider{}
}

// entry is a symbol anchored to the line it starts on
type entry struct {
	line    int
	isLabel bool
	symbol  lsp.DocumentSymbol
}

// GetDocumentSymbols returns the outline of a document. Labels are
// containers for the variables and choices that follow them until the
// next label; anything before the first label is top level.
func (p *Provider) GetDocumentSymbols(snap *script.Snapshot) []lsp.DocumentSymbol {
	if snap == nil || snap.Defs == nil {
		return nil
	}

	entries := p.collect(snap)
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].line < entries[j].line
	})

	var symbols []lsp.DocumentSymbol
	current := -1
	for i, e := range entries {
		if e.isLabel {
			e.symbol.Range = p.labelRange(snap, entries, i)
			symbols = append(symbols, e.symbol)
			current = len(symbols) - 1
			continue
		}
		if current >= 0 {
			symbols[current].Children = append(symbols[current].Children, e.symbol)
			continue
		}
		symbols = append(symbols, e.symbol)
	}
	return symbols
}

func (p *Provider) collect(snap *script.Snapshot) []entry {
	var entries []entry

	for _, name := range snap.Defs.LabelNames() {
		for _, tok := range snap.Defs.Label[name] {
			entries = append(entries, entry{
				line:    tok.Position.Line,
				isLabel: true,
				symbol: lsp.DocumentSymbol{
					Name:           name,
					Detail:         "label",
					Kind:           lsp.SymbolKindNamespace,
					SelectionRange: nameRange(tok),
				},
			})
		}
	}

	for _, name := range snap.Defs.VariableNames() {
		for _, tok := range snap.Defs.SetVar[name] {
			detail := tok.Value
			if tok.IsGetUserInput {
				detail = "getUserInput"
			}
			entries = append(entries, entry{
				line: tok.Position.Line,
				symbol: lsp.DocumentSymbol{
					Name:           name,
					Detail:         detail,
					Kind:           lsp.SymbolKindVariable,
					Range:          lineRange(snap, tok.Position.Line),
					SelectionRange: nameRange(tok),
				},
			})
		}
	}

	for _, line := range snap.Defs.ChooseLines() {
		choose := snap.Defs.Choose[line]
		symbol := lsp.DocumentSymbol{
			Name:           "choose",
			Kind:           lsp.SymbolKindEnum,
			Range:          lineRange(snap, line),
			SelectionRange: lineRange(snap, line),
		}
		texts := make([]string, 0, len(choose.Options))
		for _, option := range choose.Options {
			texts = append(texts, option.Text)
			symbol.Children = append(symbol.Children, lsp.DocumentSymbol{
				Name:           option.Text,
				Detail:         option.Value,
				Kind:           lsp.SymbolKindEnumMember,
				Range:          symbol.Range,
				SelectionRange: symbol.Range,
			})
		}
		symbol.Detail = strings.Join(texts, " | ")
		entries = append(entries, entry{line: line, symbol: symbol})
	}

	return entries
}

// labelRange spans from the label line to the line before the next label
func (p *Provider) labelRange(snap *script.Snapshot, entries []entry, i int) lsp.Range {
	start := entries[i].line
	end := len(snap.Lines) - 1
	for _, e := range entries[i+1:] {
		if e.isLabel && e.line > start {
			end = e.line - 1
			break
		}
	}
	if end < start {
		end = start
	}
	return lsp.Range{
		Start: lsp.Position{Line: start, Character: 0},
		End:   lsp.Position{Line: end, Character: utf8.RuneCountInString(snap.Line(end))},
	}
}

func lineRange(snap *script.Snapshot, line int) lsp.Range {
	return lsp.Range{
		Start: lsp.Position{Line: line, Character: 0},
		End:   lsp.Position{Line: line, Character: utf8.RuneCountInString(snap.Line(line))},
	}
}

func nameRange(tok script.Token) lsp.Range {
	return lsp.Range{
		Start: tok.Position,
		End: lsp.Position{
			Line:      tok.Position.Line,
			Character: tok.Position.Character + utf8.RuneCountInString(tok.Word),
		},
	}
}
