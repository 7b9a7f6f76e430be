package handler

import (
	"errors"
	"io/fs"
	"os"
	"sync"

	"github.com/xiaoxustudio/webgal-language-tools/internal/completion"
	"github.com/xiaoxustudio/webgal-language-tools/internal/data"
	"github.com/xiaoxustudio/webgal-language-tools/internal/diagnostics"
	"github.com/xiaoxustudio/webgal-language-tools/internal/folding"
	"github.com/xiaoxustudio/webgal-language-tools/internal/hover"
	"github.com/xiaoxustudio/webgal-language-tools/internal/links"
	"github.com/xiaoxustudio/webgal-language-tools/internal/logger"
	"github.com/xiaoxustudio/webgal-language-tools/internal/references"
	"github.com/xiaoxustudio/webgal-language-tools/internal/script"
	"github.com/xiaoxustudio/webgal-language-tools/internal/semantic"
	"github.com/xiaoxustudio/webgal-language-tools/internal/symbols"
	"github.com/xiaoxustudio/webgal-language-tools/internal/vfs"
	"github.com/xiaoxustudio/webgal-language-tools/pkg/lsp"
)

// gameDir is the folder holding the game resources inside a project
const gameDir = "game"

// document is the cached analysis of one open document
type document struct {
	text  string
	snap  *script.Snapshot
	folds []folding.Range
}

// Handler implements the LSP handler interface
type Handler struct {
	version        string
	data           *data.Store
	documents      map[string]*document
	documentsMutex sync.RWMutex

	settings      lsp.Settings
	settingsMutex sync.RWMutex
	fs            vfs.FileSystem

	completionProvider *completion.Provider
	hoverProvider      *hover.Provider
	referencesProvider *references.Provider
	symbolsProvider    *symbols.Provider
	semanticProvider   *semantic.Provider
	diagnosticsEngine  *diagnostics.Engine
	server             *lsp.Server
}

// New creates a new handler. An empty or missing dataPath uses the
// embedded command tables.
func New(version string, dataPath string) (*Handler, error) {
	store, err := loadData(dataPath)
	if err != nil {
		return nil, err
	}

	return &Handler{
		version:            version,
		data:               store,
		documents:          make(map[string]*document),
		settings:           DefaultSettings(),
		completionProvider: completion.NewProvider(store, nil),
		hoverProvider:      hover.NewProvider(store),
		referencesProvider: references.NewProvider(),
		symbolsProvider:    symbols.NewProvider(),
		semanticProvider:   semantic.NewProvider(store),
		diagnosticsEngine:  diagnostics.NewEngine(diagnostics.DefaultRules(store)),
	}, nil
}

func loadData(dataPath string) (*data.Store, error) {
	if dataPath != "" {
		if _, err := os.Stat(dataPath); err == nil {
			logger.Info("Loading command tables from %s", dataPath)
			return data.Load(dataPath)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		logger.Info("Data file %s not found, using built-in tables", dataPath)
	}
	return data.Default()
}

// DefaultSettings returns the settings used until the client sends its own
func DefaultSettings() lsp.Settings {
	showWarning := true
	return lsp.Settings{
		MaxNumberOfProblems: diagnostics.DefaultMaxProblems,
		IsShowWarning:       &showWarning,
		Features:            &lsp.FeatureOptions{},
	}
}

// SetServer sets the LSP server (for sending notifications)
func (h *Handler) SetServer(server *lsp.Server) {
	h.server = server
}

// SetFileSystem replaces the file system used for links and resource completion
func (h *Handler) SetFileSystem(fsys vfs.FileSystem) {
	h.settingsMutex.Lock()
	h.fs = fsys
	h.settingsMutex.Unlock()
	h.completionProvider.SetFileSystem(fsys)
}

// Initialize handles the initialize request
func (h *Handler) Initialize(params lsp.InitializeParams) (*lsp.InitializeResult, error) {
	logger.Info("Initializing LSP server")

	if params.InitializationOptions != nil && params.InitializationOptions.Settings != nil {
		h.applySettings(*params.InitializationOptions.Settings)
	}

	related := false
	if td := params.Capabilities.TextDocument; td != nil && td.PublishDiagnostics != nil {
		related = td.PublishDiagnostics.RelatedInformation
	}
	h.settingsMutex.Lock()
	h.diagnosticsEngine.SetRelatedInformation(related)
	h.settingsMutex.Unlock()

	if root := workspaceRoot(params); root != "" {
		h.SetFileSystem(vfs.NewOS(gameRoot(root)))
		logger.Info("Game root: %s", h.fs.Root())
	}

	return &lsp.InitializeResult{
		Capabilities: lsp.ServerCapabilities{
			TextDocumentSync: lsp.TextDocumentSyncFull,
			CompletionProvider: &lsp.CompletionOptions{
				TriggerCharacters: []string{":", "-", "$", ".", "/", "{"},
			},
			HoverProvider:          true,
			DefinitionProvider:     true,
			ReferencesProvider:     true,
			DocumentSymbolProvider: true,
			FoldingRangeProvider:   true,
			DocumentLinkProvider:   &lsp.DocumentLinkOptions{ResolveProvider: false},
			DiagnosticProvider: &lsp.DiagnosticOptions{
				InterFileDependencies: false,
				WorkspaceDiagnostics:  false,
			},
			SemanticTokensProvider: &lsp.SemanticTokensOptions{
				Legend: semantic.Legend(),
				Full:   true,
			},
		},
		ServerInfo: &lsp.ServerInfo{
			Name:    "webgal_ls",
			Version: h.version,
		},
	}, nil
}

// workspaceRoot returns the local path of the workspace, preferring rootUri
func workspaceRoot(params lsp.InitializeParams) string {
	if params.RootURI != "" {
		return vfs.URIToPath(params.RootURI)
	}
	if params.RootPath == "" {
		return ""
	}
	return vfs.NormalizePath(params.RootPath)
}

// gameRoot descends into the game folder when the workspace is a project root
func gameRoot(root string) string {
	candidate := vfs.JoinPaths(root, gameDir)
	if st, err := vfs.NewOS(root).Stat(candidate); err == nil && st.IsDirectory {
		return candidate
	}
	return root
}

// TextDocumentDidOpen handles document open notification
func (h *Handler) TextDocumentDidOpen(params lsp.DidOpenTextDocumentParams) error {
	logger.Info("Document opened: %s", params.TextDocument.URI)

	doc := h.updateDocument(params.TextDocument.URI, params.TextDocument.Text)
	h.publishDiagnostics(params.TextDocument.URI, doc)

	return nil
}

// TextDocumentDidChange handles document change notification
func (h *Handler) TextDocumentDidChange(params lsp.DidChangeTextDocumentParams) error {
	logger.Debug("Document changed: %s", params.TextDocument.URI)

	// Full sync mode - the last change holds the entire document
	if len(params.ContentChanges) == 0 {
		return nil
	}
	text := params.ContentChanges[len(params.ContentChanges)-1].Text

	doc := h.updateDocument(params.TextDocument.URI, text)
	h.publishDiagnostics(params.TextDocument.URI, doc)

	return nil
}

// TextDocumentDidClose handles document close notification
func (h *Handler) TextDocumentDidClose(params lsp.DidCloseTextDocumentParams) error {
	logger.Info("Document closed: %s", params.TextDocument.URI)

	h.documentsMutex.Lock()
	delete(h.documents, params.TextDocument.URI)
	h.documentsMutex.Unlock()

	h.sendDiagnostics(params.TextDocument.URI, []lsp.Diagnostic{})
	return nil
}

// updateDocument analyzes a new document version into a fresh snapshot
func (h *Handler) updateDocument(uri, text string) *document {
	doc := &document{
		text:  text,
		snap:  script.NewSnapshot(uri, text),
		folds: folding.Scan(text),
	}

	h.documentsMutex.Lock()
	h.documents[uri] = doc
	h.documentsMutex.Unlock()

	return doc
}

// getDocument returns the cached analysis of uri
func (h *Handler) getDocument(uri string) (*document, bool) {
	h.documentsMutex.RLock()
	defer h.documentsMutex.RUnlock()

	doc, ok := h.documents[uri]
	if !ok {
		logger.Debug("Document not found: %s", uri)
	}
	return doc, ok
}

// TextDocumentCompletion handles completion request
func (h *Handler) TextDocumentCompletion(params lsp.CompletionParams) (*lsp.CompletionList, error) {
	logger.Debug("Completion requested at %s:%d:%d",
		params.TextDocument.URI, params.Position.Line, params.Position.Character)

	if !h.featureEnabled(func(f *lsp.FeatureOptions) *bool { return f.Completion }) {
		return nil, nil
	}
	doc, ok := h.getDocument(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}

	opts := completion.Options{
		Resources: h.featureEnabled(func(f *lsp.FeatureOptions) *bool { return f.ResourceCompletion }),
	}
	items := h.completionProvider.GetCompletions(doc.snap, params.Position, opts)
	logger.Debug("Returning %d completion items", len(items))

	if items == nil {
		items = []lsp.CompletionItem{}
	}
	return &lsp.CompletionList{IsIncomplete: false, Items: items}, nil
}

// TextDocumentHover handles hover request
func (h *Handler) TextDocumentHover(params lsp.HoverParams) (*lsp.Hover, error) {
	logger.Debug("Hover requested at %s:%d:%d",
		params.TextDocument.URI, params.Position.Line, params.Position.Character)

	if !h.featureEnabled(func(f *lsp.FeatureOptions) *bool { return f.Hover }) {
		return nil, nil
	}
	doc, ok := h.getDocument(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}

	return h.hoverProvider.GetHover(doc.snap, params.Position), nil
}

// TextDocumentDefinition handles go-to-definition request
func (h *Handler) TextDocumentDefinition(params lsp.DefinitionParams) ([]lsp.LocationLink, error) {
	if !h.featureEnabled(func(f *lsp.FeatureOptions) *bool { return f.Definition }) {
		return nil, nil
	}
	doc, ok := h.getDocument(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}

	return h.referencesProvider.GetDefinition(doc.snap, params.Position), nil
}

// TextDocumentReferences handles find-references request
func (h *Handler) TextDocumentReferences(params lsp.ReferenceParams) ([]lsp.Location, error) {
	doc, ok := h.getDocument(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}

	return h.referencesProvider.GetReferences(doc.snap, params.Position, params.Context.IncludeDeclaration), nil
}

// TextDocumentDocumentLink handles document link request
func (h *Handler) TextDocumentDocumentLink(params lsp.DocumentLinkParams) ([]lsp.DocumentLink, error) {
	if !h.featureEnabled(func(f *lsp.FeatureOptions) *bool { return f.DocumentLink }) {
		return nil, nil
	}
	doc, ok := h.getDocument(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}

	h.settingsMutex.RLock()
	fsys := h.fs
	h.settingsMutex.RUnlock()
	if fsys == nil {
		return nil, nil
	}

	resolver := links.NewResolver(fsys, h.data)
	resolved := resolver.Resolve(vfs.URIToPath(params.TextDocument.URI), links.Scan(doc.snap.Lines))
	return links.ToLSP(resolved), nil
}

// TextDocumentFoldingRange handles folding range request
func (h *Handler) TextDocumentFoldingRange(params lsp.FoldingRangeParams) ([]lsp.FoldingRange, error) {
	if !h.featureEnabled(func(f *lsp.FeatureOptions) *bool { return f.FoldingRange }) {
		return nil, nil
	}
	doc, ok := h.getDocument(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}

	return folding.ToLSP(doc.folds), nil
}

// TextDocumentDocumentSymbol handles document symbol request
func (h *Handler) TextDocumentDocumentSymbol(params lsp.DocumentSymbolParams) ([]lsp.DocumentSymbol, error) {
	doc, ok := h.getDocument(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}

	return h.symbolsProvider.GetDocumentSymbols(doc.snap), nil
}

// TextDocumentSemanticTokensFull handles semantic tokens request
func (h *Handler) TextDocumentSemanticTokensFull(params lsp.SemanticTokensParams) (*lsp.SemanticTokens, error) {
	doc, ok := h.getDocument(params.TextDocument.URI)
	if !ok {
		return &lsp.SemanticTokens{Data: []int{}}, nil
	}

	return h.semanticProvider.GetSemanticTokens(doc.snap), nil
}

// TextDocumentDiagnostic handles pull diagnostics request
func (h *Handler) TextDocumentDiagnostic(params lsp.DocumentDiagnosticParams) (*lsp.DocumentDiagnosticReport, error) {
	report := &lsp.DocumentDiagnosticReport{Kind: "full", Items: []lsp.Diagnostic{}}

	doc, ok := h.getDocument(params.TextDocument.URI)
	if !ok {
		return report, nil
	}

	report.Items = h.lint(params.TextDocument.URI, doc)
	return report, nil
}

// WorkspaceDidChangeConfiguration applies new settings and re-publishes diagnostics
func (h *Handler) WorkspaceDidChangeConfiguration(params lsp.DidChangeConfigurationParams) error {
	if params.Settings == nil || params.Settings.Webgal == nil {
		return nil
	}
	h.applySettings(*params.Settings.Webgal)

	h.documentsMutex.RLock()
	docs := make(map[string]*document, len(h.documents))
	for uri, doc := range h.documents {
		docs[uri] = doc
	}
	h.documentsMutex.RUnlock()

	for uri, doc := range docs {
		h.publishDiagnostics(uri, doc)
	}
	return nil
}

// applySettings merges client settings over the current ones
func (h *Handler) applySettings(s lsp.Settings) {
	h.settingsMutex.Lock()
	defer h.settingsMutex.Unlock()

	if s.MaxNumberOfProblems > 0 {
		h.settings.MaxNumberOfProblems = s.MaxNumberOfProblems
	}
	if s.IsShowWarning != nil {
		h.settings.IsShowWarning = s.IsShowWarning
	}
	if s.IsShowHint != "" {
		h.settings.IsShowHint = s.IsShowHint
	}
	if s.Features != nil {
		h.settings.Features = s.Features
	}
	if s.Rules != nil {
		h.settings.Rules = s.Rules
	}

	h.diagnosticsEngine.SetMaxProblems(h.settings.MaxNumberOfProblems)
	h.diagnosticsEngine.SetRuleOverrides(h.settings.Rules)
	logger.Debug("Settings applied: maxProblems=%d", h.settings.MaxNumberOfProblems)
}

// featureEnabled reads a feature switch; unset switches are on
func (h *Handler) featureEnabled(get func(*lsp.FeatureOptions) *bool) bool {
	h.settingsMutex.RLock()
	defer h.settingsMutex.RUnlock()

	if h.settings.Features == nil {
		return true
	}
	if v := get(h.settings.Features); v != nil {
		return *v
	}
	return true
}

// lint runs the diagnostic engine unless diagnostics are switched off
func (h *Handler) lint(uri string, doc *document) []lsp.Diagnostic {
	if !h.featureEnabled(func(f *lsp.FeatureOptions) *bool { return f.Diagnostics }) {
		return []lsp.Diagnostic{}
	}

	h.settingsMutex.RLock()
	defer h.settingsMutex.RUnlock()

	if h.settings.IsShowWarning != nil && !*h.settings.IsShowWarning {
		return []lsp.Diagnostic{}
	}
	diags := h.diagnosticsEngine.Lint(uri, doc.text)
	if diags == nil {
		diags = []lsp.Diagnostic{}
	}
	return diags
}

// publishDiagnostics publishes diagnostics for a document
func (h *Handler) publishDiagnostics(uri string, doc *document) {
	h.sendDiagnostics(uri, h.lint(uri, doc))
}

func (h *Handler) sendDiagnostics(uri string, diags []lsp.Diagnostic) {
	if h.server == nil {
		return
	}

	params := lsp.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diags,
	}
	if err := h.server.SendNotification("textDocument/publishDiagnostics", params); err != nil {
		logger.Error("Failed to publish diagnostics: %v", err)
	}
}
