package script

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/xiaoxustudio/webgal-language-tools/pkg/lsp"
)

// MaxDescLines bounds the upward scan for variable descriptions
const MaxDescLines = 256

// Fixed name offsets of the recognised commands
const (
	setVarNameOffset       = len("setVar:")
	labelNameOffset        = len("label:")
	getUserInputNameOffset = len("getUserInput:")
)

var (
	setVarPattern       = regexp.MustCompile(`setVar:\s*(\w+)\s*=\s*([^;]*?)\s*(?:;|$)`)
	labelPattern        = regexp.MustCompile(`label:\s*(\S+);`)
	getUserInputPattern = regexp.MustCompile(`getUserInput:\s*([^\s;]+)`)
	choosePattern       = regexp.MustCompile(`choose:\s*([^\s;]+)`)
)

// lineRule pairs a pattern with the handler that records its match.
// match holds the submatch byte indexes of the line.
type lineRule struct {
	name    string
	pattern *regexp.Regexp
	apply   func(m *DefinitionMap, lines []string, lineNumber int, match []int)
}

// rules are tried in order, the first matching rule wins
var rules = []lineRule{
	{name: "setVar", pattern: setVarPattern, apply: applySetVar},
	{name: "label", pattern: labelPattern, apply: applyLabel},
	{name: "getUserInput", pattern: getUserInputPattern, apply: applyGetUserInput},
	{name: "choose", pattern: choosePattern, apply: applyChoose},
}

// Analyze scans the text once and returns a fresh symbol pool
func Analyze(text string) *DefinitionMap {
	return AnalyzeLines(SplitLines(text))
}

// AnalyzeLines is Analyze over already split lines
func AnalyzeLines(lines []string) *DefinitionMap {
	m := NewDefinitionMap()
	Populate(m, lines)
	return m
}

// Populate clears m and fills it from lines
func Populate(m *DefinitionMap, lines []string) {
	m.reset()
	for lineNumber, line := range lines {
		for _, rule := range rules {
			match := rule.pattern.FindStringSubmatchIndex(line)
			if match == nil {
				continue
			}
			rule.apply(m, lines, lineNumber, match)
			break
		}
	}
}

func applySetVar(m *DefinitionMap, lines []string, lineNumber int, match []int) {
	line := lines[lineNumber]
	name := line[match[2]:match[3]]
	m.SetVar[name] = append(m.SetVar[name], Token{
		Word:     name,
		Value:    line[match[4]:match[5]],
		Input:    line,
		IsGlobal: strings.Contains(line, "-global"),
		Position: lsp.Position{
			Line:      lineNumber,
			Character: runeIndex(line, match[0]) + setVarNameOffset,
		},
		Desc: describe(lines, lineNumber),
	})
}

func applyLabel(m *DefinitionMap, lines []string, lineNumber int, match []int) {
	line := lines[lineNumber]
	name := line[match[2]:match[3]]
	m.Label[name] = append(m.Label[name], Token{
		Word:     name,
		Value:    line,
		Input:    line,
		Position: lsp.Position{Line: lineNumber, Character: labelNameOffset},
	})
}

func applyGetUserInput(m *DefinitionMap, lines []string, lineNumber int, match []int) {
	line := lines[lineNumber]
	name := line[match[2]:match[3]]
	m.SetVar[name] = append(m.SetVar[name], Token{
		Word:           name,
		Value:          line,
		Input:          line,
		IsGetUserInput: true,
		Position:       lsp.Position{Line: lineNumber, Character: getUserInputNameOffset},
	})
}

func applyChoose(m *DefinitionMap, lines []string, lineNumber int, match []int) {
	line := lines[lineNumber]
	m.Choose[lineNumber] = ChooseToken{
		Options: ParseChooseOptions(line[match[2]:match[3]]),
		Line:    lineNumber,
	}
}

// ParseChooseOptions splits "A:a.txt|B:b.txt" into its options
func ParseChooseOptions(text string) []ChooseOption {
	pieces := strings.Split(text, "|")
	options := make([]ChooseOption, 0, len(pieces))
	for _, piece := range pieces {
		parts := strings.Split(piece, ":")
		option := ChooseOption{Text: strings.TrimSpace(parts[0])}
		if len(parts) > 1 {
			option.Value = strings.TrimSpace(parts[1])
		}
		options = append(options, option)
	}
	return options
}

// describe collects the ';' comment block above a variable assignment.
// Blank lines directly above the assignment are skipped; the block itself
// ends at the first blank or non-comment line.
func describe(lines []string, lineNumber int) string {
	limit := lineNumber - MaxDescLines
	if limit < 0 {
		limit = 0
	}

	i := lineNumber - 1
	for i >= limit && strings.TrimSpace(lines[i]) == "" {
		i--
	}

	var desc []string
	for ; i >= limit; i-- {
		trimmed := strings.TrimLeft(lines[i], " \t")
		if !strings.HasPrefix(trimmed, ";") {
			break
		}
		desc = append(desc, trimmed[1:])
	}

	for l, r := 0, len(desc)-1; l < r; l, r = l+1, r-1 {
		desc[l], desc[r] = desc[r], desc[l]
	}
	return strings.Join(desc, "\n")
}

// runeIndex converts a byte index of s into a rune index
func runeIndex(s string, byteIndex int) int {
	return utf8.RuneCountInString(s[:byteIndex])
}
