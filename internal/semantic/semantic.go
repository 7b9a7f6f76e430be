package semantic

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/xiaoxustudio/webgal-language-tools/internal/data"
	"github.com/xiaoxustudio/webgal-language-tools/internal/script"
	"github.com/xiaoxustudio/webgal-language-tools/pkg/lsp"
)

// TokenType represents the type of semantic token
type TokenType int

const (
	TokenTypeKeyword   TokenType = iota // commands like changeBg
	TokenTypeParameter                  // arguments like -next
	TokenTypeNamespace                  // label names
	TokenTypeVariable                   // variables defined in the document
	TokenTypeComment                    // ';' comments
)

// TokenModifier represents modifiers for semantic tokens
type TokenModifier int

const (
	TokenModifierNone TokenModifier = 0
)

// Legend returns the legend matching the TokenType values
func Legend() lsp.SemanticTokensLegend {
	return lsp.SemanticTokensLegend{
		TokenTypes:     []string{"keyword", "parameter", "namespace", "variable", "comment"},
		TokenModifiers: []string{},
	}
}

var (
	argPattern  = regexp.MustCompile(`\s(-\w+)`)
	wordPattern = regexp.MustCompile(`\w+`)
)

// commands whose operand is a label name
var labelCommands = map[string]bool{
	"label":     true,
	"jumpLabel": true,
}

// Provider provides semantic tokens for syntax highlighting
type Provider struct {
	data *data.Store
}

// NewProvider creates a new semantic token provider
func NewProvider(store *data.Store) *Provider {
	return &Provider{data: store}
}

// Token represents a single semantic token
type Token struct {
	Line      int
	StartChar int
	Length    int
	Type      TokenType
	Modifiers TokenModifier
}

// GetSemanticTokens returns the delta encoded tokens of a document
func (p *Provider) GetSemanticTokens(snap *script.Snapshot) *lsp.SemanticTokens {
	if snap == nil {
		return &lsp.SemanticTokens{Data: []int{}}
	}
	return &lsp.SemanticTokens{Data: p.encodeTokens(p.Tokens(snap))}
}

// Tokens returns the sorted, non overlapping tokens of a document
func (p *Provider) Tokens(snap *script.Snapshot) []Token {
	var tokens []Token
	for lineNumber, line := range snap.Lines {
		tokens = append(tokens, p.lineTokens(snap, lineNumber, line)...)
	}
	return tokens
}

func (p *Provider) lineTokens(snap *script.Snapshot, lineNumber int, line string) []Token {
	trimmed := strings.TrimLeft(line, " \t")
	if trimmed == "" {
		return nil
	}
	indent := utf8.RuneCountInString(line) - utf8.RuneCountInString(trimmed)
	if strings.HasPrefix(trimmed, ";") {
		return []Token{newToken(lineNumber, indent, utf8.RuneCountInString(trimmed), TokenTypeComment)}
	}

	// the statement ends at the first ';', the rest of the line is a comment
	body := line
	var tokens []Token
	if idx := strings.Index(line, ";"); idx >= 0 {
		body = line[:idx]
		if rest := strings.TrimSpace(line[idx+1:]); rest != "" {
			start := utf8.RuneCountInString(line[:idx+1])
			tokens = append(tokens, newToken(lineNumber, start, utf8.RuneCountInString(line)-start, TokenTypeComment))
		}
	}

	command := snap.CommandAt(lineNumber)
	operandStart := 0
	if colon := strings.Index(body, ":"); colon >= 0 && p.data.IsCommand(command) {
		tokens = append(tokens, newToken(lineNumber, indent, utf8.RuneCountInString(command), TokenTypeKeyword))
		operandStart = colon + 1
	}

	for _, loc := range argPattern.FindAllStringSubmatchIndex(body, -1) {
		tokens = append(tokens, span(lineNumber, body, loc[2], loc[3], TokenTypeParameter))
	}

	for _, loc := range wordPattern.FindAllStringIndex(body[operandStart:], -1) {
		start, end := loc[0]+operandStart, loc[1]+operandStart
		word := body[start:end]
		switch {
		case labelCommands[command] && snap.Defs.Label[word] != nil:
			tokens = append(tokens, span(lineNumber, body, start, end, TokenTypeNamespace))
		case snap.Defs.SetVar[word] != nil:
			tokens = append(tokens, span(lineNumber, body, start, end, TokenTypeVariable))
		}
	}

	return normalize(tokens)
}

func newToken(line, start, length int, tokenType TokenType) Token {
	return Token{Line: line, StartChar: start, Length: length, Type: tokenType, Modifiers: TokenModifierNone}
}

// span builds a token from byte offsets of s
func span(line int, s string, start, end int, tokenType TokenType) Token {
	return newToken(line, utf8.RuneCountInString(s[:start]), utf8.RuneCountInString(s[start:end]), tokenType)
}

// normalize sorts tokens by start and drops the ones overlapping an earlier token
func normalize(tokens []Token) []Token {
	sort.SliceStable(tokens, func(i, j int) bool {
		return tokens[i].StartChar < tokens[j].StartChar
	})
	out := tokens[:0]
	end := -1
	for _, t := range tokens {
		if t.StartChar < end || t.Length == 0 {
			continue
		}
		out = append(out, t)
		end = t.StartChar + t.Length
	}
	return out
}

// encodeTokens converts tokens to LSP delta-encoded format (flat integer array)
// Each token is represented by 5 integers: [deltaLine, deltaStart, length, tokenType, tokenModifiers]
func (p *Provider) encodeTokens(tokens []Token) []int {
	if len(tokens) == 0 {
		return []int{}
	}

	data := make([]int, 0, len(tokens)*5)
	prevLine := 0
	prevChar := 0

	for _, token := range tokens {
		deltaLine := token.Line - prevLine
		deltaChar := token.StartChar
		if deltaLine == 0 {
			deltaChar = token.StartChar - prevChar
		}

		data = append(data,
			deltaLine,
			deltaChar,
			token.Length,
			int(token.Type),
			int(token.Modifiers),
		)

		prevLine = token.Line
		prevChar = token.StartChar
	}

	return data
}
