package completion

import (
	"regexp"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/xiaoxustudio/webgal-language-tools/internal/data"
	"github.com/xiaoxustudio/webgal-language-tools/internal/logger"
	"github.com/xiaoxustudio/webgal-language-tools/internal/position"
	"github.com/xiaoxustudio/webgal-language-tools/internal/script"
	"github.com/xiaoxustudio/webgal-language-tools/internal/vfs"
	"github.com/xiaoxustudio/webgal-language-tools/pkg/lsp"
)

// StatePattern matches $stage / $userData property paths
var StatePattern = regexp.MustCompile(`\$(stage|userData)(?:\.[\w-]*)*`)

// Provider provides code completion
type Provider struct {
	data *data.Store
	fs   vfs.FileSystem
}

// NewProvider creates a new completion provider. fs may be nil when no
// game folder is known.
func NewProvider(store *data.Store, fs vfs.FileSystem) *Provider {
	return &Provider{data: store, fs: fs}
}

// SetFileSystem replaces the file system used for resource completion
func (p *Provider) SetFileSystem(fs vfs.FileSystem) {
	p.fs = fs
}

// Options switch parts of the completion
type Options struct {
	Resources bool
}

// GetCompletions returns completion items for the given position
func (p *Provider) GetCompletions(snap *script.Snapshot, pos lsp.Position, opts Options) []lsp.CompletionItem {
	if snap == nil || pos.Line < 0 || pos.Line >= len(snap.Lines) {
		return nil
	}

	token := snap.Doc.TokenRange(pos).Text

	if isConfigDocument(snap.URI) {
		return p.getConfigCompletions(token)
	}

	if match, ok := snap.Doc.PatternAt(pos, StatePattern, 0); ok {
		return p.getStateCompletions(snap, pos, match)
	}

	currentLine := snap.Line(pos.Line)
	command := snap.CommandAt(pos.Line)

	if strings.HasPrefix(token, "./") || strings.Contains(token, "/") ||
		p.data.HasResource(command) || strings.HasPrefix(token, "-") {
		var items []lsp.CompletionItem
		if opts.Resources {
			items = append(items, p.getResourceCompletions(command, token)...)
		}
		if strings.HasPrefix(token, "-") {
			items = append(items, p.getArgCompletions(command)...)
		}
		return items
	}

	var items []lsp.CompletionItem
	if token != "" {
		items = append(items, p.getVariableCompletions(snap.Defs, token)...)
	}

	_, hasLeadingWord := snap.Doc.WordAt(lsp.Position{Line: pos.Line, Character: 0}, nil)
	if (!hasLeadingWord && pos.Character == 0) || (token != "" && !strings.Contains(currentLine, ":")) {
		items = append(items, p.getKeywordCompletions()...)
	}

	items = append(items,
		lsp.CompletionItem{Label: "$stage", Kind: lsp.CompletionItemKindVariable},
		lsp.CompletionItem{Label: "$userData", Kind: lsp.CompletionItemKindVariable},
	)
	return items
}

func isConfigDocument(uri string) bool {
	return strings.HasSuffix(vfs.URIToPath(uri), "/game/config.txt")
}

// getConfigCompletions returns the config.txt keys containing token
func (p *Provider) getConfigCompletions(token string) []lsp.CompletionItem {
	lower := strings.ToLower(token)
	var items []lsp.CompletionItem
	for _, key := range p.data.ConfigList {
		if !strings.Contains(strings.ToLower(key.Key), lower) {
			continue
		}
		items = append(items, lsp.CompletionItem{
			Label:            key.Key,
			Kind:             lsp.CompletionItemKindFunction,
			Detail:           key.Key + ":<value>;",
			Documentation:    key.Desc,
			InsertText:       key.Key + ":$1;",
			InsertTextFormat: lsp.InsertTextFormatSnippet,
		})
	}
	return items
}

// getStateCompletions lists the children of the state path left of the cursor
func (p *Provider) getStateCompletions(snap *script.Snapshot, pos lsp.Position, match position.Match) []lsp.CompletionItem {
	cursor := snap.Doc.OffsetAt(pos)
	typed := []rune(match.Text)[:cursor-match.Start]
	segments := strings.Split(strings.TrimPrefix(string(typed), "$"), ".")

	parent := segments[:len(segments)-1]
	prefix := segments[len(segments)-1]
	if len(parent) == 0 {
		return nil
	}

	state, ok := p.data.StateAt(parent)
	if !ok || len(state.Children) == 0 {
		return nil
	}

	// the segment under the cursor is replaced up to the next '.'
	prefixStart := cursor - len([]rune(prefix))
	segmentEnd := cursor
	rest := []rune(match.Text)[cursor-match.Start:]
	for _, r := range rest {
		if r == '.' {
			break
		}
		segmentEnd++
	}
	replaceRange := snap.Doc.RangeOf(prefixStart, segmentEnd)

	var items []lsp.CompletionItem
	for _, key := range state.Keys() {
		if prefix != "" && !strings.Contains(key, prefix) {
			continue
		}
		items = append(items, lsp.CompletionItem{
			Label:         key,
			Kind:          lsp.CompletionItemKindConstant,
			Documentation: state.Children[key].Description,
			FilterText:    key,
			TextEdit:      &lsp.TextEdit{Range: replaceRange, NewText: key},
		})
	}
	return items
}

// getResourceCompletions lists the files of the command's resource folder
func (p *Provider) getResourceCompletions(command, token string) []lsp.CompletionItem {
	if p.fs == nil {
		return nil
	}
	baseDir := p.data.ResourceDir(command)
	if baseDir == "" {
		return nil
	}

	parts := []string{baseDir}
	if i := strings.LastIndex(token, "/"); i >= 0 {
		parts = append(parts, strings.TrimPrefix(token[:i], "./"))
	}

	entries, err := vfs.ResourceDirectory(p.fs, parts...)
	if err != nil {
		logger.Debug("No resource directory for %s: %v", command, err)
		return nil
	}

	items := make([]lsp.CompletionItem, 0, len(entries))
	for _, entry := range entries {
		kind := lsp.CompletionItemKindFile
		if entry.IsDirectory {
			kind = lsp.CompletionItemKindFolder
		}
		items = append(items, lsp.CompletionItem{Label: entry.Name, Kind: kind})
	}
	return items
}

// getArgCompletions returns the arguments of command plus the global ones
func (p *Provider) getArgCompletions(command string) []lsp.CompletionItem {
	args := p.data.ArgsFor(command)
	items := make([]lsp.CompletionItem, 0, len(args))
	for _, arg := range args {
		items = append(items, lsp.CompletionItem{
			Label:         arg.Label,
			Kind:          lsp.CompletionItemKindConstant,
			Detail:        arg.Detail,
			Documentation: arg.Doc,
			InsertText:    arg.Insert,
		})
	}
	return items
}

// getVariableCompletions ranks the pool's variables against token
func (p *Provider) getVariableCompletions(defs *script.DefinitionMap, token string) []lsp.CompletionItem {
	ranks := fuzzy.RankFindFold(token, defs.VariableNames())
	sort.Stable(ranks)

	items := make([]lsp.CompletionItem, 0, len(ranks))
	for _, rank := range ranks {
		latest, _ := defs.LatestVariable(rank.Target)
		items = append(items, lsp.CompletionItem{
			Label:         rank.Target,
			Kind:          lsp.CompletionItemKindVariable,
			Detail:        latest.Value,
			Documentation: latest.Desc,
		})
	}
	return items
}

// getKeywordCompletions returns the command snippets
func (p *Provider) getKeywordCompletions() []lsp.CompletionItem {
	items := make([]lsp.CompletionItem, 0, len(p.data.List))
	for _, cmd := range p.data.List {
		items = append(items, lsp.CompletionItem{
			Label:            cmd.Name,
			Kind:             lsp.CompletionItemKindFunction,
			Detail:           cmd.Detail,
			Documentation:    cmd.Desc,
			InsertText:       cmd.Insert,
			InsertTextFormat: lsp.InsertTextFormatSnippet,
		})
	}
	return items
}
