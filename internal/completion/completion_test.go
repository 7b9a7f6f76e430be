package completion

import (
	"testing"

	"github.com/xiaoxustudio/webgal-language-tools/internal/data"
	"github.com/xiaoxustudio/webgal-language-tools/internal/script"
	"github.com/xiaoxustudio/webgal-language-tools/internal/vfs"
	"github.com/xiaoxustudio/webgal-language-tools/pkg/lsp"
)

const sceneURI = "file:///game/scene/start.txt"

// Helper function to create test data and providers
func createTestProviders(t *testing.T) (*data.Store, *Provider) {
	t.Helper()
	store, err := data.Default()
	if err != nil {
		t.Fatalf("Failed to load tables: %v", err)
	}

	fs := vfs.NewMemory("/game")
	for _, p := range []string{
		"/game/background/bg.png",
		"/game/background/sub/night.png",
		"/game/vocal/v1.mp3",
	} {
		if err := fs.WriteFile(p, ""); err != nil {
			t.Fatal(err)
		}
	}
	return store, NewProvider(store, fs)
}

func labels(items []lsp.CompletionItem) map[string]lsp.CompletionItem {
	result := make(map[string]lsp.CompletionItem, len(items))
	for _, item := range items {
		result[item.Label] = item
	}
	return result
}

func TestConfigCompletions(t *testing.T) {
	_, p := createTestProviders(t)
	snap := script.NewSnapshot("file:///proj/game/config.txt", "game")

	items := p.GetCompletions(snap, lsp.Position{Line: 0, Character: 4}, Options{})
	if len(items) != 3 {
		t.Fatalf("Expected 3 config keys, got %d: %+v", len(items), items)
	}
	got := labels(items)
	for _, key := range []string{"Game_name", "Game_key", "Game_Logo"} {
		if _, ok := got[key]; !ok {
			t.Errorf("Expected config key %s", key)
		}
	}
	if got["Game_name"].InsertText != "Game_name:$1;" {
		t.Errorf("Unexpected insert text %q", got["Game_name"].InsertText)
	}
}

func TestStateCompletions(t *testing.T) {
	_, p := createTestProviders(t)
	snap := script.NewSnapshot(sceneURI, "say:$stage.bgm.s")

	items := p.GetCompletions(snap, lsp.Position{Line: 0, Character: 16}, Options{})
	if len(items) != 1 || items[0].Label != "src" {
		t.Fatalf("Expected src, got %+v", items)
	}
	edit := items[0].TextEdit
	if edit == nil || edit.Range.Start.Character != 15 || edit.Range.End.Character != 16 {
		t.Errorf("Unexpected text edit %+v", edit)
	}
}

func TestStateCompletionsAfterDot(t *testing.T) {
	store, p := createTestProviders(t)
	snap := script.NewSnapshot(sceneURI, "setVar:a=$userData.")

	items := p.GetCompletions(snap, lsp.Position{Line: 0, Character: 19}, Options{})
	state, _ := store.StateAt([]string{"userData"})
	if len(items) != len(state.Children) {
		t.Errorf("Expected %d userData keys, got %d", len(state.Children), len(items))
	}
}

func TestArgCompletions(t *testing.T) {
	_, p := createTestProviders(t)
	snap := script.NewSnapshot(sceneURI, "changeBg:bg.png -ne")

	items := p.GetCompletions(snap, lsp.Position{Line: 0, Character: 19}, Options{})
	got := labels(items)
	if len(got) != len(items) {
		t.Error("Expected argument labels to be unique")
	}
	for _, label := range []string{"next", "when", "duration", "enter"} {
		if _, ok := got[label]; !ok {
			t.Errorf("Expected argument %s", label)
		}
	}
	if got["when"].InsertText != "when=" {
		t.Errorf("Unexpected insert text %q", got["when"].InsertText)
	}
}

func TestResourceCompletions(t *testing.T) {
	_, p := createTestProviders(t)

	snap := script.NewSnapshot(sceneURI, "changeBg:")
	items := p.GetCompletions(snap, lsp.Position{Line: 0, Character: 9}, Options{Resources: true})
	got := labels(items)
	if got["bg.png"].Kind != lsp.CompletionItemKindFile || got["sub"].Kind != lsp.CompletionItemKindFolder {
		t.Errorf("Unexpected resource items %+v", items)
	}

	snap = script.NewSnapshot(sceneURI, "changeBg:./sub/")
	items = p.GetCompletions(snap, lsp.Position{Line: 0, Character: 15}, Options{Resources: true})
	if len(items) != 1 || items[0].Label != "night.png" {
		t.Errorf("Expected night.png, got %+v", items)
	}

	items = p.GetCompletions(snap, lsp.Position{Line: 0, Character: 15}, Options{Resources: false})
	if len(items) != 0 {
		t.Errorf("Expected no items with resource completion off, got %+v", items)
	}
}

func TestResourceCompletionsWithoutFileSystem(t *testing.T) {
	store, _ := createTestProviders(t)
	p := NewProvider(store, nil)
	snap := script.NewSnapshot(sceneURI, "changeBg:")

	if items := p.GetCompletions(snap, lsp.Position{Line: 0, Character: 9}, Options{Resources: true}); len(items) != 0 {
		t.Errorf("Expected no items, got %+v", items)
	}
}

func TestVariableCompletions(t *testing.T) {
	_, p := createTestProviders(t)
	text := ";the score\nsetVar:score=1;\nsetVar:scene_name=2;\nsco"
	snap := script.NewSnapshot(sceneURI, text)

	items := p.GetCompletions(snap, lsp.Position{Line: 3, Character: 3}, Options{})
	if len(items) == 0 || items[0].Label != "score" {
		t.Fatalf("Expected score first, got %+v", items)
	}
	if items[0].Documentation != "the score" || items[0].Kind != lsp.CompletionItemKindVariable {
		t.Errorf("Unexpected variable item %+v", items[0])
	}

	got := labels(items)
	if _, ok := got["scene_name"]; ok {
		t.Error("Expected scene_name not to match sco")
	}
	if _, ok := got["changeBg"]; !ok {
		t.Error("Expected keywords on a line without ':'")
	}
	if _, ok := got["$stage"]; !ok {
		t.Error("Expected $stage item")
	}
}

func TestKeywordCompletionsAtLineStart(t *testing.T) {
	store, p := createTestProviders(t)
	snap := script.NewSnapshot(sceneURI, "say:hi;\n")

	items := p.GetCompletions(snap, lsp.Position{Line: 1, Character: 0}, Options{})
	if len(items) != len(store.List)+2 {
		t.Errorf("Expected %d items, got %d", len(store.List)+2, len(items))
	}
}

func TestOutOfRange(t *testing.T) {
	_, p := createTestProviders(t)
	snap := script.NewSnapshot(sceneURI, "say:hi;")

	if items := p.GetCompletions(snap, lsp.Position{Line: 5, Character: 0}, Options{}); items != nil {
		t.Errorf("Expected nil, got %+v", items)
	}
	if items := p.GetCompletions(nil, lsp.Position{}, Options{}); items != nil {
		t.Errorf("Expected nil for nil snapshot, got %+v", items)
	}
}
