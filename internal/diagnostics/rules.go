package diagnostics

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/xiaoxustudio/webgal-language-tools/internal/data"
	"github.com/xiaoxustudio/webgal-language-tools/internal/position"
	"github.com/xiaoxustudio/webgal-language-tools/internal/script"
	"github.com/xiaoxustudio/webgal-language-tools/pkg/lsp"
)

// Rule IDs
const (
	RuleFullWidthColon     = "fullwidth-colon"
	RuleFullWidthSemicolon = "fullwidth-semicolon"
	RuleEmptyChooseOption  = "empty-choose-option"
	RuleSetVarAssignment   = "setvar-assignment"
	RuleUndefinedLabel     = "undefined-label"
	RuleUnknownCommand     = "unknown-command"
	RuleDuplicateArgument  = "duplicate-argument"
)

var (
	fullWidthColonPattern     = regexp.MustCompile(`(?m)^[ \t]*[A-Za-z]\w*：`)
	fullWidthSemicolonPattern = regexp.MustCompile(`；\s*$`)
	emptyChooseOptionPattern  = regexp.MustCompile(`^\s*choose:\s*(?:\||;|$)|^\s*choose:.*\|\s*(?:\||;|$)`)
	setVarAssignmentPattern   = regexp.MustCompile(`^\s*setVar:[^=;]*(?:;.*)?$`)
	jumpLabelPattern          = regexp.MustCompile(`(?m)^[ \t]*jumpLabel:\s*([^\s;]+)`)
	argumentPattern           = regexp.MustCompile(` -(\w+)`)
)

func disabled() *bool {
	v := false
	return &v
}

// DefaultRules returns the built-in rule table
func DefaultRules(store *data.Store) []Rule {
	return []Rule{
		{
			ID:       RuleFullWidthColon,
			Pattern:  fullWidthColonPattern,
			Severity: lsp.SeverityWarning,
			Info:     "A full-width colon '：' after a command name is not a delimiter; use ':'.",
		},
		{
			ID:       RuleFullWidthSemicolon,
			Pattern:  fullWidthSemicolonPattern,
			PerLine:  true,
			Severity: lsp.SeverityWarning,
			Info:     "The line ends with a full-width semicolon '；'; statements end with ';'.",
		},
		{
			ID:       RuleEmptyChooseOption,
			Pattern:  emptyChooseOptionPattern,
			PerLine:  true,
			Severity: lsp.SeverityWarning,
			Info:     "A choose option between '|' separators is empty.",
		},
		{
			ID:       RuleSetVarAssignment,
			Pattern:  setVarAssignmentPattern,
			PerLine:  true,
			Severity: lsp.SeverityWarning,
			Info:     "setVar expects an assignment such as setVar:name=value;",
		},
		{
			ID:        RuleUndefinedLabel,
			Severity:  lsp.SeverityWarning,
			Info:      "jumpLabel targets a label that is not defined in this scene.",
			CheckText: checkUndefinedLabel,
		},
		{
			ID:        RuleUnknownCommand,
			PerLine:   true,
			Enabled:   disabled(),
			Severity:  lsp.SeverityInformation,
			Info:      "The text before ':' is not a known command, so the line is played as dialogue.",
			CheckLine: unknownCommandCheck(store),
		},
		{
			ID:        RuleDuplicateArgument,
			PerLine:   true,
			Severity:  lsp.SeverityWarning,
			Info:      "The same argument is given more than once; only one value takes effect.",
			CheckLine: checkDuplicateArgument,
		},
	}
}

// checkUndefinedLabel reports the first jumpLabel whose target has no label
func checkUndefinedLabel(doc *position.Document, text string) *lsp.Diagnostic {
	defs := script.AnalyzeLines(doc.Lines())
	for _, loc := range jumpLabelPattern.FindAllStringSubmatchIndex(text, -1) {
		name := text[loc[2]:loc[3]]
		if _, ok := defs.Label[name]; ok {
			continue
		}
		start := utf8.RuneCountInString(text[:loc[2]])
		return &lsp.Diagnostic{
			Range:   doc.RangeOf(start, start+utf8.RuneCountInString(name)),
			Code:    RuleUndefinedLabel,
			Message: fmt.Sprintf("(%s)%s", RuleUndefinedLabel, name),
		}
	}
	return nil
}

func unknownCommandCheck(store *data.Store) LineCheck {
	return func(doc *position.Document, line string, precedingLength int, _ []string) *lsp.Diagnostic {
		if script.IsComment(line) || !strings.Contains(line, ":") {
			return nil
		}
		command := strings.TrimSpace(script.Classify(line))
		if command == "" || store.IsCommand(command) {
			return nil
		}
		start := precedingLength + utf8.RuneCountInString(line[:strings.Index(line, command)])
		return &lsp.Diagnostic{
			Range:   doc.RangeOf(start, start+utf8.RuneCountInString(command)),
			Code:    RuleUnknownCommand,
			Message: fmt.Sprintf("(%s)%s", RuleUnknownCommand, command),
		}
	}
}

// checkDuplicateArgument reports the second occurrence of a repeated -flag
func checkDuplicateArgument(doc *position.Document, line string, precedingLength int, _ []string) *lsp.Diagnostic {
	if script.IsComment(line) {
		return nil
	}
	seen := make(map[string]bool)
	for _, loc := range argumentPattern.FindAllStringSubmatchIndex(line, -1) {
		name := line[loc[2]:loc[3]]
		if !seen[name] {
			seen[name] = true
			continue
		}
		start := precedingLength + utf8.RuneCountInString(line[:loc[2]-1])
		return &lsp.Diagnostic{
			Range:   doc.RangeOf(start, start+1+utf8.RuneCountInString(name)),
			Code:    RuleDuplicateArgument,
			Message: fmt.Sprintf("(%s)-%s", RuleDuplicateArgument, name),
		}
	}
	return nil
}
