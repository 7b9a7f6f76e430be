package handler

import (
	"testing"

	"github.com/xiaoxustudio/webgal-language-tools/internal/vfs"
	"github.com/xiaoxustudio/webgal-language-tools/pkg/lsp"
)

const sceneURI = "file:///project/game/scene/start.txt"

const sceneText = `label:intro;
setVar:count=1;
changeBg:bg.png -next;
changeBg：bg.png;
jumpLabel:intro;`

func createTestHandler(t *testing.T) *Handler {
	t.Helper()
	h, err := New("test", "")
	if err != nil {
		t.Fatalf("Failed to create handler: %v", err)
	}

	mem := vfs.NewMemory("/project/game")
	if err := mem.WriteFile("/project/game/background/bg.png", "png"); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	h.SetFileSystem(mem)

	if _, err := h.Initialize(lsp.InitializeParams{}); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if err := h.TextDocumentDidOpen(lsp.DidOpenTextDocumentParams{
		TextDocument: lsp.TextDocumentItem{URI: sceneURI, Text: sceneText},
	}); err != nil {
		t.Fatalf("DidOpen failed: %v", err)
	}
	return h
}

func boolPtr(b bool) *bool {
	return &b
}

func TestInitializeCapabilities(t *testing.T) {
	h, err := New("1.0.0", "/nonexistent/commands.yaml")
	if err != nil {
		t.Fatalf("Failed to create handler: %v", err)
	}
	result, err := h.Initialize(lsp.InitializeParams{})
	if err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	caps := result.Capabilities
	if caps.TextDocumentSync != lsp.TextDocumentSyncFull {
		t.Errorf("Expected full sync, got %d", caps.TextDocumentSync)
	}
	if !caps.DefinitionProvider || !caps.HoverProvider || caps.SemanticTokensProvider == nil {
		t.Errorf("Expected definition, hover and semantic tokens, got %+v", caps)
	}
	if result.ServerInfo.Name != "webgal_ls" || result.ServerInfo.Version != "1.0.0" {
		t.Errorf("Unexpected server info %+v", result.ServerInfo)
	}
}

func TestDocumentLifecycle(t *testing.T) {
	h := createTestHandler(t)

	links, err := h.TextDocumentDefinition(lsp.DefinitionParams{
		TextDocument: lsp.TextDocumentIdentifier{URI: sceneURI},
		Position:     lsp.Position{Line: 4, Character: 12},
	})
	if err != nil || len(links) != 1 || links[0].TargetRange.Start.Line != 0 {
		t.Errorf("Expected definition on line 0, got %+v (%v)", links, err)
	}

	if err := h.TextDocumentDidChange(lsp.DidChangeTextDocumentParams{
		TextDocument:   lsp.VersionedTextDocumentIdentifier{TextDocumentIdentifier: lsp.TextDocumentIdentifier{URI: sceneURI}},
		ContentChanges: []lsp.TextDocumentContentChangeEvent{{Text: "say:hi;\nlabel:intro;"}},
	}); err != nil {
		t.Fatalf("DidChange failed: %v", err)
	}
	links, _ = h.TextDocumentDefinition(lsp.DefinitionParams{
		TextDocument: lsp.TextDocumentIdentifier{URI: sceneURI},
		Position:     lsp.Position{Line: 1, Character: 7},
	})
	if len(links) != 1 || links[0].TargetRange.Start.Line != 1 {
		t.Errorf("Expected definition to follow the edit, got %+v", links)
	}

	if err := h.TextDocumentDidClose(lsp.DidCloseTextDocumentParams{
		TextDocument: lsp.TextDocumentIdentifier{URI: sceneURI},
	}); err != nil {
		t.Fatalf("DidClose failed: %v", err)
	}
	if _, ok := h.getDocument(sceneURI); ok {
		t.Error("Expected document to be dropped on close")
	}
}

func TestSnapshotSurvivesEdit(t *testing.T) {
	h := createTestHandler(t)
	before, _ := h.getDocument(sceneURI)

	if err := h.TextDocumentDidChange(lsp.DidChangeTextDocumentParams{
		TextDocument:   lsp.VersionedTextDocumentIdentifier{TextDocumentIdentifier: lsp.TextDocumentIdentifier{URI: sceneURI}},
		ContentChanges: []lsp.TextDocumentContentChangeEvent{{Text: "say:hi;"}},
	}); err != nil {
		t.Fatalf("DidChange failed: %v", err)
	}

	if _, ok := before.snap.Defs.LatestVariable("count"); !ok {
		t.Error("Expected the earlier snapshot to keep variable 'count'")
	}
	if _, ok := before.snap.Defs.LatestLabel("intro"); !ok {
		t.Error("Expected the earlier snapshot to keep label 'intro'")
	}

	after, _ := h.getDocument(sceneURI)
	if after.snap == before.snap || after.snap.Defs == before.snap.Defs {
		t.Error("Expected the edit to produce a new snapshot and pool")
	}
	if _, ok := after.snap.Defs.LatestVariable("count"); ok {
		t.Error("Expected the new snapshot to drop variable 'count'")
	}
}

func TestDiagnosticsAndSettings(t *testing.T) {
	h := createTestHandler(t)
	params := lsp.DocumentDiagnosticParams{TextDocument: lsp.TextDocumentIdentifier{URI: sceneURI}}

	report, err := h.TextDocumentDiagnostic(params)
	if err != nil {
		t.Fatalf("Diagnostic failed: %v", err)
	}
	if report.Kind != "full" || len(report.Items) == 0 {
		t.Fatalf("Expected diagnostics for the full-width colon, got %+v", report)
	}
	if report.Items[0].Range.Start.Line != 3 {
		t.Errorf("Expected diagnostic on line 3, got %+v", report.Items[0].Range)
	}

	if err := h.WorkspaceDidChangeConfiguration(lsp.DidChangeConfigurationParams{
		Settings: &lsp.SettingsPayload{Webgal: &lsp.Settings{IsShowWarning: boolPtr(false)}},
	}); err != nil {
		t.Fatalf("DidChangeConfiguration failed: %v", err)
	}
	report, _ = h.TextDocumentDiagnostic(params)
	if len(report.Items) != 0 {
		t.Errorf("Expected no diagnostics with warnings hidden, got %d", len(report.Items))
	}
}

func TestFeatureSwitches(t *testing.T) {
	h := createTestHandler(t)
	h.applySettings(lsp.Settings{Features: &lsp.FeatureOptions{Hover: boolPtr(false)}})

	hover, err := h.TextDocumentHover(lsp.HoverParams{
		TextDocument: lsp.TextDocumentIdentifier{URI: sceneURI},
		Position:     lsp.Position{Line: 2, Character: 2},
	})
	if err != nil || hover != nil {
		t.Errorf("Expected no hover when switched off, got %+v (%v)", hover, err)
	}

	list, err := h.TextDocumentCompletion(lsp.CompletionParams{
		TextDocument: lsp.TextDocumentIdentifier{URI: sceneURI},
		Position:     lsp.Position{Line: 0, Character: 0},
	})
	if err != nil || list == nil || len(list.Items) == 0 {
		t.Errorf("Expected completion items, got %+v (%v)", list, err)
	}
}

func TestDocumentFeatures(t *testing.T) {
	h := createTestHandler(t)
	id := lsp.TextDocumentIdentifier{URI: sceneURI}

	links, err := h.TextDocumentDocumentLink(lsp.DocumentLinkParams{TextDocument: id})
	if err != nil {
		t.Fatalf("DocumentLink failed: %v", err)
	}
	if len(links) != 2 || links[0].Target != "file:///project/game/background/bg.png" {
		t.Errorf("Expected 2 links to bg.png, got %+v", links)
	}

	folds, _ := h.TextDocumentFoldingRange(lsp.FoldingRangeParams{TextDocument: id})
	if len(folds) != 1 || folds[0].StartLine != 0 || folds[0].EndLine != 4 {
		t.Errorf("Expected one fold over the label, got %+v", folds)
	}

	syms, _ := h.TextDocumentDocumentSymbol(lsp.DocumentSymbolParams{TextDocument: id})
	if len(syms) != 1 || syms[0].Name != "intro" || len(syms[0].Children) != 1 {
		t.Errorf("Expected label intro with one variable, got %+v", syms)
	}

	tokens, _ := h.TextDocumentSemanticTokensFull(lsp.SemanticTokensParams{TextDocument: id})
	if tokens == nil || len(tokens.Data) == 0 || len(tokens.Data)%5 != 0 {
		t.Errorf("Expected encoded semantic tokens, got %+v", tokens)
	}

	refs, _ := h.TextDocumentReferences(lsp.ReferenceParams{
		TextDocument: id,
		Position:     lsp.Position{Line: 1, Character: 8},
		Context:      lsp.ReferenceContext{IncludeDeclaration: true},
	})
	if len(refs) != 1 {
		t.Errorf("Expected 1 reference to count, got %+v", refs)
	}
}

func TestUnknownDocument(t *testing.T) {
	h := createTestHandler(t)
	id := lsp.TextDocumentIdentifier{URI: "file:///missing.txt"}

	if hover, _ := h.TextDocumentHover(lsp.HoverParams{TextDocument: id}); hover != nil {
		t.Errorf("Expected nil hover, got %+v", hover)
	}
	report, _ := h.TextDocumentDiagnostic(lsp.DocumentDiagnosticParams{TextDocument: id})
	if report == nil || len(report.Items) != 0 {
		t.Errorf("Expected an empty report, got %+v", report)
	}
}
