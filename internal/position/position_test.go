package position

import (
	"regexp"
	"strings"
	"testing"

	"github.com/xiaoxustudio/webgal-language-tools/pkg/lsp"
)

func TestWordAt(t *testing.T) {
	text := "setVar:foo=1;"

	tests := []struct {
		offset   int
		expected Word
	}{
		{7, Word{Text: "foo", Start: 7, End: 10}},
		{8, Word{Text: "foo", Start: 7, End: 10}},
		{10, Word{Text: "foo", Start: 7, End: 10}},
		{0, Word{Text: "setVar", Start: 0, End: 6}},
		{11, Word{Text: "1", Start: 11, End: 12}},
	}

	for _, tt := range tests {
		w, ok := WordAt(text, tt.offset, nil)
		if !ok {
			t.Errorf("offset %d: expected a word", tt.offset)
			continue
		}
		if w != tt.expected {
			t.Errorf("offset %d: expected %+v, got %+v", tt.offset, tt.expected, w)
		}
	}
}

func TestWordAtNoMatch(t *testing.T) {
	if _, ok := WordAt("a;;b", 2, nil); ok {
		t.Error("Expected no word between two delimiters")
	}
	if _, ok := WordAt("abc", -1, nil); ok {
		t.Error("Expected no word for a negative offset")
	}
	if _, ok := WordAt("abc", 4, nil); ok {
		t.Error("Expected no word past the end")
	}
}

func TestWordAtCustomClass(t *testing.T) {
	isDashWord := func(r rune) bool { return IsWordChar(r) || r == '-' }

	w, ok := WordAt("changeBg:x -enter-duration=3;", 14, isDashWord)
	if !ok || w.Text != "-enter-duration" {
		t.Errorf("Expected '-enter-duration', got %+v", w)
	}
}

func TestWordAtUnicode(t *testing.T) {
	w, ok := WordAt("角色:你好世界;", 4, nil)
	if !ok || w.Text != "你好世界" || w.Start != 3 || w.End != 7 {
		t.Errorf("Expected '你好世界' at 3..7, got %+v", w)
	}
}

var stagePattern = regexp.MustCompile(`\$(stage|userData)(?:\.[\w-]*)*`)

func TestPatternAt(t *testing.T) {
	text := "say:$stage.foo.bar -next;"

	m, ok := PatternAt(text, 12, stagePattern, 0)
	if !ok {
		t.Fatal("Expected a match")
	}
	if m.Text != "$stage.foo.bar" || m.Start != 4 || m.End != 18 {
		t.Errorf("Expected '$stage.foo.bar' at 4..18, got %+v", m)
	}
	if len(m.Groups) != 1 || m.Groups[0].Text != "stage" || m.Groups[0].Start != 5 {
		t.Errorf("Expected group 'stage' at 5, got %+v", m.Groups)
	}
}

func TestPatternAtOutsideMatch(t *testing.T) {
	text := "say:$stage.foo -next;"

	if _, ok := PatternAt(text, 17, stagePattern, 0); ok {
		t.Error("Expected no match when the cursor is outside every match")
	}
	if _, ok := PatternAt(text, 100, stagePattern, 0); ok {
		t.Error("Expected no match for an out-of-range offset")
	}
}

func TestPatternAtRadius(t *testing.T) {
	text := "say:$stage.value" + strings.Repeat("x", 100)

	if _, ok := PatternAt(text, len(text), stagePattern, 10); ok {
		t.Error("Expected a far match to be outside a small radius")
	}
	if _, ok := PatternAt(text, 8, stagePattern, 10); !ok {
		t.Error("Expected a near match inside the radius")
	}
}

func TestPatternAtStartsAtBoundary(t *testing.T) {
	argPattern := regexp.MustCompile(`-(\w+)`)
	text := "changeFigure:a.png -left -next;"

	m, ok := PatternAt(text, 22, argPattern, 0)
	if !ok {
		t.Fatal("Expected a match")
	}
	if m.Text != "-left" || m.Groups[0].Text != "left" {
		t.Errorf("Expected '-left', got %+v", m)
	}
}

func TestTokenRange(t *testing.T) {
	w := TokenRange("changeBg:./bg/ma", 16)
	if w.Text != "./bg/ma" || w.Start != 9 || w.End != 16 {
		t.Errorf("Expected './bg/ma' at 9..16, got %+v", w)
	}
}

func TestDocumentPositions(t *testing.T) {
	doc := NewDocument("ab\r\ncd\nef")

	if doc.LineCount() != 3 {
		t.Fatalf("Expected 3 lines, got %d", doc.LineCount())
	}
	if doc.Line(0) != "ab" || doc.Line(1) != "cd" || doc.Line(5) != "" {
		t.Errorf("Unexpected lines: %q", doc.Lines())
	}

	if pos := doc.PositionAt(5); pos != (lsp.Position{Line: 1, Character: 1}) {
		t.Errorf("Expected 1:1, got %+v", pos)
	}
	if off := doc.OffsetAt(lsp.Position{Line: 2, Character: 1}); off != 8 {
		t.Errorf("Expected offset 8, got %d", off)
	}
	if off := doc.OffsetAt(lsp.Position{Line: 0, Character: 10}); off != 2 {
		t.Errorf("Expected clamped offset 2, got %d", off)
	}
	if pos := doc.PositionAt(100); pos != (lsp.Position{Line: 2, Character: 2}) {
		t.Errorf("Expected clamped end 2:2, got %+v", pos)
	}
}

func TestDocumentWordAt(t *testing.T) {
	doc := NewDocument("label:start;\njumpLabel:start;")

	w, ok := doc.WordAt(lsp.Position{Line: 1, Character: 12}, nil)
	if !ok || w.Text != "start" {
		t.Errorf("Expected 'start', got %+v", w)
	}
	if pos := doc.PositionAt(w.Start); pos.Line != 1 || pos.Character != 10 {
		t.Errorf("Expected word start at 1:10, got %+v", pos)
	}
}
