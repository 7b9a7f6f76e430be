package symbols

import (
	"testing"

	"github.com/xiaoxustudio/webgal-language-tools/internal/script"
	"github.com/xiaoxustudio/webgal-language-tools/pkg/lsp"
)

const testScript = `setVar:chapter=1;
label:start;
setVar:name=Alice;
getUserInput:answer -title=Name;
choose:Left:left|Right:right;
label:left;
say:left side;`

func createTestProvider() (*Provider, *script.Snapshot) {
	return NewProvider(), script.NewSnapshot("file:///game/scene/start.txt", testScript)
}

func TestDocumentSymbolsOutline(t *testing.T) {
	p, snap := createTestProvider()
	symbols := p.GetDocumentSymbols(snap)

	if len(symbols) != 3 {
		t.Fatalf("Expected 3 top level symbols, got %d: %+v", len(symbols), symbols)
	}

	if symbols[0].Name != "chapter" || symbols[0].Kind != lsp.SymbolKindVariable {
		t.Errorf("Expected top level variable chapter, got %+v", symbols[0])
	}
	if symbols[0].Detail != "1" {
		t.Errorf("Expected detail 1, got %q", symbols[0].Detail)
	}

	start := symbols[1]
	if start.Name != "start" || start.Kind != lsp.SymbolKindNamespace {
		t.Fatalf("Expected label start, got %+v", start)
	}
	if start.Range.Start.Line != 1 || start.Range.End.Line != 4 {
		t.Errorf("Expected label range lines 1-4, got %+v", start.Range)
	}
	if len(start.Children) != 3 {
		t.Fatalf("Expected 3 children under start, got %d", len(start.Children))
	}
	if start.Children[0].Name != "name" || start.Children[1].Name != "answer" {
		t.Errorf("Unexpected children order %+v", start.Children)
	}
	if start.Children[1].Detail != "getUserInput" {
		t.Errorf("Expected getUserInput detail, got %q", start.Children[1].Detail)
	}

	choose := start.Children[2]
	if choose.Kind != lsp.SymbolKindEnum || len(choose.Children) != 2 {
		t.Fatalf("Expected choose with 2 options, got %+v", choose)
	}
	if choose.Detail != "Left | Right" || choose.Children[1].Detail != "right" {
		t.Errorf("Unexpected choose symbol %+v", choose)
	}

	left := symbols[2]
	if left.Range.End.Line != 6 || left.Range.End.Character != 14 {
		t.Errorf("Expected last label to run to the end, got %+v", left.Range)
	}
	if left.SelectionRange.Start.Character != 6 || left.SelectionRange.End.Character != 10 {
		t.Errorf("Unexpected selection range %+v", left.SelectionRange)
	}
}

func TestDocumentSymbolsEmpty(t *testing.T) {
	p := NewProvider()
	if symbols := p.GetDocumentSymbols(nil); symbols != nil {
		t.Errorf("Expected nil, got %+v", symbols)
	}
	if symbols := p.GetDocumentSymbols(script.NewSnapshot("file:///a.txt", "say:hi;")); len(symbols) != 0 {
		t.Errorf("Expected no symbols, got %+v", symbols)
	}
}
