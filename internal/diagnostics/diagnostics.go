// Package diagnostics runs an ordered table of pattern rules over a script
package diagnostics

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/xiaoxustudio/webgal-language-tools/internal/logger"
	"github.com/xiaoxustudio/webgal-language-tools/internal/position"
	"github.com/xiaoxustudio/webgal-language-tools/pkg/lsp"
)

// DefaultMaxProblems caps the diagnostics of one document
const DefaultMaxProblems = 1000

// Source is reported on every diagnostic
const Source = "WebGAL Script"

// TextCheck inspects the whole document
type TextCheck func(doc *position.Document, text string) *lsp.Diagnostic

// LineCheck inspects one line. precedingLength is the offset of the line
// start and precedingLines are the lines above it.
type LineCheck func(doc *position.Document, line string, precedingLength int, precedingLines []string) *lsp.Diagnostic

// Rule is one entry of the rule table. A rule with a check bypasses Pattern.
type Rule struct {
	ID        string
	Pattern   *regexp.Regexp
	PerLine   bool
	Enabled   *bool
	Severity  int
	Info      string
	CheckText TextCheck
	CheckLine LineCheck
}

func (r *Rule) enabled(overrides map[string]bool) bool {
	if v, ok := overrides[r.ID]; ok {
		return v
	}
	return r.Enabled == nil || *r.Enabled
}

func (r *Rule) severity() int {
	if r.Severity == 0 {
		return lsp.SeverityWarning
	}
	return r.Severity
}

// Engine applies rules to documents
type Engine struct {
	rules              []Rule
	maxProblems        int
	relatedInformation bool
	overrides          map[string]bool
}

// NewEngine creates an engine over rules, applied in order
func NewEngine(rules []Rule) *Engine {
	return &Engine{
		rules:       rules,
		maxProblems: DefaultMaxProblems,
		overrides:   make(map[string]bool),
	}
}

// SetMaxProblems changes the cap; values <= 0 restore the default
func (e *Engine) SetMaxProblems(n int) {
	if n <= 0 {
		n = DefaultMaxProblems
	}
	e.maxProblems = n
}

// SetRelatedInformation attaches the rule explanation to each diagnostic
func (e *Engine) SetRelatedInformation(enabled bool) {
	e.relatedInformation = enabled
}

// SetRuleOverrides enables or disables rules by ID
func (e *Engine) SetRuleOverrides(overrides map[string]bool) {
	e.overrides = make(map[string]bool, len(overrides))
	for id, v := range overrides {
		e.overrides[id] = v
	}
}

// Rules returns the rule table
func (e *Engine) Rules() []Rule {
	return e.rules
}

// Information returns the explanation of a rule
func (e *Engine) Information(id string) string {
	for _, r := range e.rules {
		if r.ID == id {
			return r.Info
		}
	}
	return ""
}

// lintRun holds the state of one Lint call
type lintRun struct {
	engine      *Engine
	uri         string
	doc         *position.Document
	problems    int
	diagnostics []lsp.Diagnostic
}

func (l *lintRun) full() bool {
	return l.problems >= l.engine.maxProblems
}

func (l *lintRun) add(rule *Rule, d lsp.Diagnostic) {
	if l.full() {
		return
	}
	l.problems++
	if d.Source == "" {
		d.Source = Source
	}
	if d.Code == "" {
		d.Code = rule.ID
	}
	if d.Severity == 0 {
		d.Severity = rule.severity()
	}
	if l.engine.relatedInformation && rule.Info != "" {
		d.RelatedInformation = []lsp.DiagnosticRelatedInformation{{
			Location: lsp.Location{URI: l.uri, Range: d.Range},
			Message:  rule.Info,
		}}
	}
	l.diagnostics = append(l.diagnostics, d)
}

func (l *lintRun) diagnostic(rule *Rule, start, end int, matched string) lsp.Diagnostic {
	return lsp.Diagnostic{
		Range:   l.doc.RangeOf(start, end),
		Code:    rule.ID,
		Message: fmt.Sprintf("(%s)%s", rule.ID, strings.TrimSpace(matched)),
	}
}

// Lint runs every whole-text rule over text, then every per-line rule over
// each line. Both passes share the problem cap.
func (e *Engine) Lint(uri, text string) []lsp.Diagnostic {
	run := &lintRun{engine: e, uri: uri, doc: position.NewDocument(text)}
	lines := run.doc.Lines()

	for i := range e.rules {
		rule := &e.rules[i]
		if rule.PerLine || !rule.enabled(e.overrides) || run.full() {
			continue
		}
		run.guard(rule, func() { run.applyText(rule, text) })
	}

	for lineNumber, line := range lines {
		if run.full() {
			break
		}
		precedingLength := run.doc.LineStart(lineNumber)
		for i := range e.rules {
			rule := &e.rules[i]
			if !rule.PerLine || !rule.enabled(e.overrides) {
				continue
			}
			run.guard(rule, func() {
				run.applyLine(rule, line, precedingLength, lines[:lineNumber])
			})
		}
	}

	logger.Debug("Found %d diagnostics in %s", len(run.diagnostics), uri)
	return run.diagnostics
}

// guard recovers from a failing rule so the remaining rules still run
func (l *lintRun) guard(rule *Rule, apply func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Diagnostic rule %s failed: %v", rule.ID, r)
		}
	}()
	apply()
}

func (l *lintRun) applyText(rule *Rule, text string) {
	if rule.CheckText != nil {
		if d := rule.CheckText(l.doc, text); d != nil {
			l.add(rule, *d)
		}
		return
	}
	if rule.Pattern == nil {
		return
	}

	runeOffset, byteOffset := 0, 0
	for _, loc := range rule.Pattern.FindAllStringIndex(text, -1) {
		if l.full() {
			return
		}
		runeOffset += utf8.RuneCountInString(text[byteOffset:loc[0]])
		byteOffset = loc[0]
		matched := text[loc[0]:loc[1]]
		l.add(rule, l.diagnostic(rule, runeOffset, runeOffset+utf8.RuneCountInString(matched), matched))
	}
}

func (l *lintRun) applyLine(rule *Rule, line string, precedingLength int, precedingLines []string) {
	if rule.CheckLine != nil {
		if d := rule.CheckLine(l.doc, line, precedingLength, precedingLines); d != nil {
			l.add(rule, *d)
		}
		return
	}
	if rule.Pattern == nil {
		return
	}

	lineEnd := precedingLength + utf8.RuneCountInString(line)
	for _, matched := range rule.Pattern.FindAllString(line, -1) {
		if l.full() {
			return
		}
		l.add(rule, l.diagnostic(rule, precedingLength, lineEnd, matched))
	}
}
