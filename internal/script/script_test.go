package script

import (
	"reflect"
	"strings"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		line     string
		expected string
	}{
		{"changeBg:bg.png -next;", "changeBg"},
		{"showVars;", "showVars"},
		{"a;b:c", "a;b"},
		{";comment", ""},
		{"no delimiter at all", Unclassified},
		{"", Unclassified},
		{"角色A:你好;", "角色A"},
	}

	for _, tt := range tests {
		if got := Classify(tt.line); got != tt.expected {
			t.Errorf("Classify(%q): expected '%s', got '%s'", tt.line, tt.expected, got)
		}
	}
}

func TestAnalyzeSetVar(t *testing.T) {
	m := Analyze("setVar:a=1;")

	tokens := m.SetVar["a"]
	if len(tokens) != 1 {
		t.Fatalf("Expected 1 occurrence of 'a', got %d", len(tokens))
	}
	tok := tokens[0]
	if tok.Value != "1" {
		t.Errorf("Expected value '1', got '%s'", tok.Value)
	}
	if tok.IsGlobal {
		t.Error("Expected non-global variable")
	}
	if tok.Position.Line != 0 || tok.Position.Character != 7 {
		t.Errorf("Expected position 0:7, got %d:%d", tok.Position.Line, tok.Position.Character)
	}
	if tok.Input != "setVar:a=1;" {
		t.Errorf("Expected raw line as input, got '%s'", tok.Input)
	}
}

func TestAnalyzeSetVarValues(t *testing.T) {
	tests := []struct {
		line     string
		name     string
		value    string
		isGlobal bool
	}{
		{"setVar:name=hello world -global;", "name", "hello world -global", true},
		{"setVar:x = 5 ;", "x", "5", false},
		{"setVar:flag=true", "flag", "true", false},
		{"setVar:sum=a+b;   ", "sum", "a+b", false},
		{"setVar:a=;", "a", "", false},
		{"setVar:a= ;", "a", "", false},
		{"setVar:b =", "b", "", false},
	}

	for _, tt := range tests {
		m := Analyze(tt.line)
		tok, ok := m.LatestVariable(tt.name)
		if !ok {
			t.Errorf("%q: expected variable '%s'", tt.line, tt.name)
			continue
		}
		if tok.Value != tt.value {
			t.Errorf("%q: expected value '%s', got '%s'", tt.line, tt.value, tok.Value)
		}
		if tok.IsGlobal != tt.isGlobal {
			t.Errorf("%q: expected isGlobal %v, got %v", tt.line, tt.isGlobal, tok.IsGlobal)
		}
	}
}

func TestAnalyzeLabelAndUserInput(t *testing.T) {
	text := strings.Join([]string{
		"label:start;",
		"getUserInput:playerName -title=Name;",
		"label:start;",
	}, "\n")
	m := Analyze(text)

	labels := m.Label["start"]
	if len(labels) != 2 {
		t.Fatalf("Expected 2 occurrences of label 'start', got %d", len(labels))
	}
	if labels[0].Position.Line != 0 || labels[1].Position.Line != 2 {
		t.Errorf("Expected label occurrences in line order, got lines %d and %d",
			labels[0].Position.Line, labels[1].Position.Line)
	}
	if labels[0].Position.Character != 6 {
		t.Errorf("Expected label character 6, got %d", labels[0].Position.Character)
	}

	input, ok := m.LatestVariable("playerName")
	if !ok {
		t.Fatal("Expected getUserInput to define 'playerName'")
	}
	if !input.IsGetUserInput {
		t.Error("Expected IsGetUserInput to be set")
	}
	if input.Position.Line != 1 || input.Position.Character != 13 {
		t.Errorf("Expected position 1:13, got %d:%d", input.Position.Line, input.Position.Character)
	}
}

func TestAnalyzeChoose(t *testing.T) {
	m := Analyze("say:hi;\nchoose:A:1.txt|B:2.txt;")

	choice, ok := m.Choose[1]
	if !ok {
		t.Fatal("Expected choose entry on line 1")
	}
	expected := []ChooseOption{{Text: "A", Value: "1.txt"}, {Text: "B", Value: "2.txt"}}
	if !reflect.DeepEqual(choice.Options, expected) {
		t.Errorf("Expected options %v, got %v", expected, choice.Options)
	}
	if choice.Line != 1 {
		t.Errorf("Expected owning line 1, got %d", choice.Line)
	}
}

func TestAnalyzeChooseWithoutValue(t *testing.T) {
	m := Analyze("choose:Stay|Leave:leave.txt")

	options := m.Choose[0].Options
	if len(options) != 2 {
		t.Fatalf("Expected 2 options, got %d", len(options))
	}
	if options[0].Text != "Stay" || options[0].Value != "" {
		t.Errorf("Expected {Stay, ''}, got %v", options[0])
	}
}

func TestAnalyzeFirstRuleWins(t *testing.T) {
	m := Analyze("setVar:a=1; label:b;")

	if len(m.SetVar["a"]) != 1 {
		t.Error("Expected setVar to be recorded")
	}
	if len(m.Label) != 0 {
		t.Errorf("Expected no labels, got %v", m.LabelNames())
	}

	if rules[0].name != "setVar" || rules[len(rules)-1].name != "choose" {
		t.Error("Expected setVar first and choose last in the rule cascade")
	}
}

func TestAnalyzeOccurrencesAppend(t *testing.T) {
	m := Analyze("setVar:a=1;\nsay:x;\nsetVar:a=2;")

	tokens := m.SetVar["a"]
	if len(tokens) != 2 {
		t.Fatalf("Expected 2 occurrences, got %d", len(tokens))
	}
	latest, _ := m.LatestVariable("a")
	if latest.Value != "2" || latest.Position.Line != 2 {
		t.Errorf("Expected latest occurrence '2' on line 2, got '%s' on line %d", latest.Value, latest.Position.Line)
	}
}

func TestAnalyzeDescription(t *testing.T) {
	tests := []struct {
		name     string
		lines    []string
		expected string
	}{
		{
			name:     "comments directly above",
			lines:    []string{"", ";first", ";second", "setVar:a=1;"},
			expected: "first\nsecond",
		},
		{
			name:     "blank line between comments and assignment",
			lines:    []string{";first", ";second", "", "setVar:a=1;"},
			expected: "first\nsecond",
		},
		{
			name:     "blank line ends the block",
			lines:    []string{";old", "", ";new", "setVar:a=1;"},
			expected: "new",
		},
		{
			name:     "command line ends the block",
			lines:    []string{";old", "say:hello;", ";new", "setVar:a=1;"},
			expected: "new",
		},
		{
			name:     "no comment",
			lines:    []string{"say:hello;", "setVar:a=1;"},
			expected: "",
		},
		{
			name:     "first line",
			lines:    []string{"setVar:a=1;"},
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := AnalyzeLines(tt.lines)
			tok, ok := m.LatestVariable("a")
			if !ok {
				t.Fatal("Expected variable 'a'")
			}
			if tok.Desc != tt.expected {
				t.Errorf("Expected desc %q, got %q", tt.expected, tok.Desc)
			}
		})
	}
}

func TestAnalyzeCRLF(t *testing.T) {
	m := Analyze("label:a;\r\nsetVar:b=1;\r\n")

	tok, ok := m.LatestVariable("b")
	if !ok {
		t.Fatal("Expected variable 'b'")
	}
	if tok.Value != "1" || tok.Position.Line != 1 {
		t.Errorf("Expected '1' on line 1, got '%s' on line %d", tok.Value, tok.Position.Line)
	}
	if _, ok := m.LatestLabel("a"); !ok {
		t.Error("Expected label 'a'")
	}
}

func TestAnalyzeRuneOffsets(t *testing.T) {
	m := Analyze("说:setVar:a=1;")

	tok, ok := m.LatestVariable("a")
	if !ok {
		t.Fatal("Expected variable 'a'")
	}
	if tok.Position.Character != 9 {
		t.Errorf("Expected character 9, got %d", tok.Position.Character)
	}
}

func TestAnalyzeIdempotent(t *testing.T) {
	text := "label:a;\n;note\nsetVar:x=1 -global;\nchoose:A:a.txt|B:b.txt;\ngetUserInput:y;"

	first := Analyze(text)
	second := Analyze(text)
	if first == second {
		t.Error("Expected a fresh pool per call")
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("Expected structurally equal pools for identical text")
	}
}

func TestAnalyzeMalformedLines(t *testing.T) {
	m := Analyze("setVar:;\nlabel:\nchoose:\n:::\n;;;\n")

	if len(m.SetVar) != 0 || len(m.Label) != 0 || len(m.Choose) != 0 {
		t.Errorf("Expected empty pool, got %d vars, %d labels, %d chooses",
			len(m.SetVar), len(m.Label), len(m.Choose))
	}
}
