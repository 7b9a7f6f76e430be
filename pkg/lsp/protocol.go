package lsp

// LSP Protocol types and structures
// Based on Language Server Protocol Specification

// Position represents a position in a text document
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// Range represents a range in a text document
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Location represents a location in a text document
type Location struct {
	URI   string `json:"uri"`
	Range Range  `json:"range"`
}

// LocationLink represents a link between a source and a target location
type LocationLink struct {
	OriginSelectionRange *Range `json:"originSelectionRange,omitempty"`
	TargetURI            string `json:"targetUri"`
	TargetRange          Range  `json:"targetRange"`
	TargetSelectionRange Range  `json:"targetSelectionRange"`
}

// Diagnostic represents a diagnostic (error, warning, etc.)
type Diagnostic struct {
	Range              Range                          `json:"range"`
	Severity           int                            `json:"severity"`
	Code               string                         `json:"code,omitempty"`
	Source             string                         `json:"source,omitempty"`
	Message            string                         `json:"message"`
	RelatedInformation []DiagnosticRelatedInformation `json:"relatedInformation,omitempty"`
}

// DiagnosticRelatedInformation points at extra context for a diagnostic
type DiagnosticRelatedInformation struct {
	Location Location `json:"location"`
	Message  string   `json:"message"`
}

// DiagnosticSeverity levels
const (
	SeverityError       = 1
	SeverityWarning     = 2
	SeverityInformation = 3
	SeverityHint        = 4
)

// TextDocumentIdentifier identifies a text document
type TextDocumentIdentifier struct {
	URI string `json:"uri"`
}

// VersionedTextDocumentIdentifier identifies a versioned text document
type VersionedTextDocumentIdentifier struct {
	TextDocumentIdentifier
	Version int `json:"version"`
}

// TextDocumentItem represents a text document
type TextDocumentItem struct {
	URI        string `json:"uri"`
	LanguageID string `json:"languageId"`
	Version    int    `json:"version"`
	Text       string `json:"text"`
}

// TextDocumentContentChangeEvent describes a change to a text document
type TextDocumentContentChangeEvent struct {
	Range       *Range `json:"range,omitempty"`
	RangeLength int    `json:"rangeLength,omitempty"`
	Text        string `json:"text"`
}

// TextEdit represents a text edit
type TextEdit struct {
	Range   Range  `json:"range"`
	NewText string `json:"newText"`
}

// CompletionItem represents a completion item
type CompletionItem struct {
	Label            string    `json:"label"`
	Kind             int       `json:"kind,omitempty"`
	Detail           string    `json:"detail,omitempty"`
	Documentation    string    `json:"documentation,omitempty"`
	FilterText       string    `json:"filterText,omitempty"`
	InsertText       string    `json:"insertText,omitempty"`
	InsertTextFormat int       `json:"insertTextFormat,omitempty"`
	TextEdit         *TextEdit `json:"textEdit,omitempty"`
}

// CompletionList is returned for textDocument/completion
type CompletionList struct {
	IsIncomplete bool             `json:"isIncomplete"`
	Items        []CompletionItem `json:"items"`
}

// CompletionItemKind values
const (
	CompletionItemKindText        = 1
	CompletionItemKindMethod      = 2
	CompletionItemKindFunction    = 3
	CompletionItemKindConstructor = 4
	CompletionItemKindField       = 5
	CompletionItemKindVariable    = 6
	CompletionItemKindClass       = 7
	CompletionItemKindInterface   = 8
	CompletionItemKindModule      = 9
	CompletionItemKindProperty    = 10
	CompletionItemKindUnit        = 11
	CompletionItemKindValue       = 12
	CompletionItemKindEnum        = 13
	CompletionItemKindKeyword     = 14
	CompletionItemKindSnippet     = 15
	CompletionItemKindFile        = 17
	CompletionItemKindFolder      = 19
	CompletionItemKindConstant    = 21
)

// InsertTextFormat values
const (
	InsertTextFormatPlainText = 1
	InsertTextFormatSnippet   = 2
)

// Hover represents hover information
type Hover struct {
	Contents MarkupContent `json:"contents"`
	Range    *Range        `json:"range,omitempty"`
}

// MarkupContent represents marked up content
type MarkupContent struct {
	Kind  string `json:"kind"`
	Value string `json:"value"`
}

// MarkupKind values
const (
	MarkupKindPlainText = "plaintext"
	MarkupKindMarkdown  = "markdown"
)

// FoldingRange represents a foldable region
type FoldingRange struct {
	StartLine     int    `json:"startLine"`
	EndLine       int    `json:"endLine"`
	Kind          string `json:"kind,omitempty"`
	CollapsedText string `json:"collapsedText,omitempty"`
}

// FoldingRangeKindRegion marks a generic region
const FoldingRangeKindRegion = "region"

// DocumentLink is a range in a document that links to a target
type DocumentLink struct {
	Range   Range  `json:"range"`
	Target  string `json:"target,omitempty"`
	Tooltip string `json:"tooltip,omitempty"`
}

// ServerCapabilities describes the capabilities of the server
type ServerCapabilities struct {
	TextDocumentSync       int                    `json:"textDocumentSync,omitempty"`
	CompletionProvider     *CompletionOptions     `json:"completionProvider,omitempty"`
	HoverProvider          bool                   `json:"hoverProvider,omitempty"`
	DiagnosticProvider     *DiagnosticOptions     `json:"diagnosticProvider,omitempty"`
	SemanticTokensProvider *SemanticTokensOptions `json:"semanticTokensProvider,omitempty"`
	DocumentSymbolProvider bool                   `json:"documentSymbolProvider,omitempty"`
	DefinitionProvider     bool                   `json:"definitionProvider,omitempty"`
	ReferencesProvider     bool                   `json:"referencesProvider,omitempty"`
	DocumentLinkProvider   *DocumentLinkOptions   `json:"documentLinkProvider,omitempty"`
	FoldingRangeProvider   bool                   `json:"foldingRangeProvider,omitempty"`
}

// TextDocumentSyncKind values
const (
	TextDocumentSyncNone        = 0
	TextDocumentSyncFull        = 1
	TextDocumentSyncIncremental = 2
)

// CompletionOptions describes completion options
type CompletionOptions struct {
	TriggerCharacters []string `json:"triggerCharacters,omitempty"`
}

// DiagnosticOptions describes diagnostic options
type DiagnosticOptions struct {
	InterFileDependencies bool `json:"interFileDependencies"`
	WorkspaceDiagnostics  bool `json:"workspaceDiagnostics"`
}

// DocumentLinkOptions describes document link options
type DocumentLinkOptions struct {
	ResolveProvider bool `json:"resolveProvider"`
}

// SemanticTokensOptions describes semantic tokens options
type SemanticTokensOptions struct {
	Legend SemanticTokensLegend `json:"legend"`
	Full   bool                 `json:"full"`
	Range  bool                 `json:"range,omitempty"`
}

// SemanticTokensLegend describes the legend for semantic tokens
type SemanticTokensLegend struct {
	TokenTypes     []string `json:"tokenTypes"`
	TokenModifiers []string `json:"tokenModifiers"`
}

// SemanticTokensParams represents parameters for semantic tokens request
type SemanticTokensParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
}

// SemanticTokens represents the result of a semantic tokens request
type SemanticTokens struct {
	Data []int `json:"data"`
}

// FeatureOptions switches individual language features on or off
type FeatureOptions struct {
	Completion         *bool `json:"completion,omitempty" yaml:"completion,omitempty"`
	Hover              *bool `json:"hover,omitempty" yaml:"hover,omitempty"`
	DocumentLink       *bool `json:"documentLink,omitempty" yaml:"documentLink,omitempty"`
	ResourceCompletion *bool `json:"resourceCompletion,omitempty" yaml:"resourceCompletion,omitempty"`
	Diagnostics        *bool `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
	FoldingRange       *bool `json:"foldingRange,omitempty" yaml:"foldingRange,omitempty"`
	Definition         *bool `json:"definition,omitempty" yaml:"definition,omitempty"`
}

// Settings are the webgal.* settings sent by the client
type Settings struct {
	MaxNumberOfProblems int             `json:"maxNumberOfProblems,omitempty"`
	IsShowWarning       *bool           `json:"isShowWarning,omitempty"`
	IsShowHint          string          `json:"isShowHint,omitempty"`
	Features            *FeatureOptions `json:"features,omitempty"`
	Rules               map[string]bool `json:"rules,omitempty"`
}

// InitializationOptions represents client-provided initialization options
type InitializationOptions struct {
	Settings *Settings `json:"settings,omitempty"`
}

// InitializeParams represents the initialize request parameters
type InitializeParams struct {
	ProcessID             int                    `json:"processId"`
	RootURI               string                 `json:"rootUri,omitempty"`
	RootPath              string                 `json:"rootPath,omitempty"`
	Capabilities          ClientCapabilities     `json:"capabilities"`
	InitializationOptions *InitializationOptions `json:"initializationOptions,omitempty"`
}

// ClientCapabilities holds the subset of client capabilities the server looks at
type ClientCapabilities struct {
	TextDocument *struct {
		PublishDiagnostics *struct {
			RelatedInformation bool `json:"relatedInformation"`
		} `json:"publishDiagnostics,omitempty"`
	} `json:"textDocument,omitempty"`
}

// InitializeResult represents the initialize response
type InitializeResult struct {
	Capabilities ServerCapabilities `json:"capabilities"`
	ServerInfo   *ServerInfo        `json:"serverInfo,omitempty"`
}

// ServerInfo contains server information
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
}

// DidChangeConfigurationParams represents workspace/didChangeConfiguration params
type DidChangeConfigurationParams struct {
	Settings *SettingsPayload `json:"settings"`
}

// SettingsPayload represents the settings sent from the client
type SettingsPayload struct {
	Webgal *Settings `json:"webgal,omitempty"`
}

// DocumentSymbolParams represents textDocument/documentSymbol request params
type DocumentSymbolParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
}

// DefinitionParams represents textDocument/definition request params
type DefinitionParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
	Position     Position               `json:"position"`
}

// ReferenceParams represents textDocument/references request params
type ReferenceParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
	Position     Position               `json:"position"`
	Context      ReferenceContext       `json:"context"`
}

// ReferenceContext contains additional context for reference requests
type ReferenceContext struct {
	IncludeDeclaration bool `json:"includeDeclaration"`
}

// DocumentLinkParams represents textDocument/documentLink request params
type DocumentLinkParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
}

// FoldingRangeParams represents textDocument/foldingRange request params
type FoldingRangeParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
}

// DocumentDiagnosticParams represents textDocument/diagnostic request params
type DocumentDiagnosticParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
}

// DocumentDiagnosticReport is the full report returned for textDocument/diagnostic
type DocumentDiagnosticReport struct {
	Kind  string       `json:"kind"`
	Items []Diagnostic `json:"items"`
}

// PublishDiagnosticsParams represents textDocument/publishDiagnostics params
type PublishDiagnosticsParams struct {
	URI         string       `json:"uri"`
	Diagnostics []Diagnostic `json:"diagnostics"`
}

// DocumentSymbol represents a symbol in a document (hierarchical)
type DocumentSymbol struct {
	Name           string           `json:"name"`
	Detail         string           `json:"detail,omitempty"`
	Kind           SymbolKind       `json:"kind"`
	Range          Range            `json:"range"`
	SelectionRange Range            `json:"selectionRange"`
	Children       []DocumentSymbol `json:"children,omitempty"`
}

// SymbolKind represents the kind of a symbol
type SymbolKind int

// SymbolKind values
const (
	SymbolKindFile          SymbolKind = 1
	SymbolKindModule        SymbolKind = 2
	SymbolKindNamespace     SymbolKind = 3
	SymbolKindPackage       SymbolKind = 4
	SymbolKindClass         SymbolKind = 5
	SymbolKindMethod        SymbolKind = 6
	SymbolKindProperty      SymbolKind = 7
	SymbolKindField         SymbolKind = 8
	SymbolKindConstructor   SymbolKind = 9
	SymbolKindEnum          SymbolKind = 10
	SymbolKindInterface     SymbolKind = 11
	SymbolKindFunction      SymbolKind = 12
	SymbolKindVariable      SymbolKind = 13
	SymbolKindConstant      SymbolKind = 14
	SymbolKindString        SymbolKind = 15
	SymbolKindNumber        SymbolKind = 16
	SymbolKindBoolean       SymbolKind = 17
	SymbolKindArray         SymbolKind = 18
	SymbolKindObject        SymbolKind = 19
	SymbolKindKey           SymbolKind = 20
	SymbolKindNull          SymbolKind = 21
	SymbolKindEnumMember    SymbolKind = 22
	SymbolKindStruct        SymbolKind = 23
	SymbolKindEvent         SymbolKind = 24
	SymbolKindOperator      SymbolKind = 25
	SymbolKindTypeParameter SymbolKind = 26
)
