package hover

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/xiaoxustudio/webgal-language-tools/internal/data"
	"github.com/xiaoxustudio/webgal-language-tools/internal/position"
	"github.com/xiaoxustudio/webgal-language-tools/internal/script"
	"github.com/xiaoxustudio/webgal-language-tools/internal/vfs"
	"github.com/xiaoxustudio/webgal-language-tools/pkg/lsp"
)

var (
	argPattern   = regexp.MustCompile(`-(\w+)`)
	statePattern = regexp.MustCompile(`\$(stage|userData)((?:\.[\w-]+)+|\b)`)
)

// Provider provides hover information
type Provider struct {
	data *data.Store
}

// NewProvider creates a new hover provider
func NewProvider(store *data.Store) *Provider {
	return &Provider{data: store}
}

// GetHover returns hover information for the given position
func (p *Provider) GetHover(snap *script.Snapshot, pos lsp.Position) *lsp.Hover {
	if snap == nil || pos.Line < 0 || pos.Line >= len(snap.Lines) {
		return nil
	}
	command := snap.CommandAt(pos.Line)

	if match, ok := snap.Doc.PatternAt(pos, argPattern, 0); ok {
		if arg, ok := p.data.ArgByLabel(command, match.Groups[0].Text); ok {
			return markdown(snap.Doc, match, p.argDoc(arg))
		}
	}

	if match, ok := snap.Doc.PatternAt(pos, statePattern, 0); ok {
		path := strings.Split(match.Text[1:], ".")
		if state, ok := p.data.StateAt(path); ok {
			return markdown(snap.Doc, match, stateDoc(path, state))
		}
	}

	word, ok := snap.Doc.WordAt(pos, nil)
	if !ok {
		return nil
	}

	if strings.HasSuffix(vfs.URIToPath(snap.URI), "/game/config.txt") {
		if key, ok := p.data.Config[word.Text]; ok {
			return &lsp.Hover{Contents: lsp.MarkupContent{
				Kind:  lsp.MarkupKindMarkdown,
				Value: fmt.Sprintf("**%s**\n\n%s", key.Key, key.Desc),
			}}
		}
		return nil
	}

	if word.Text == command && p.data.IsCommand(command) {
		cmd := p.data.Command(command)
		return &lsp.Hover{Contents: lsp.MarkupContent{
			Kind: lsp.MarkupKindMarkdown,
			Value: strings.Join([]string{
				"### " + cmd.Name,
				cmd.Desc,
				"`" + cmd.Detail + "`",
				p.data.CommandURL(cmd.Name),
			}, "\n\n"),
		}}
	}

	if latest, ok := snap.Defs.LatestVariable(word.Text); ok {
		return &lsp.Hover{Contents: lsp.MarkupContent{
			Kind:  lsp.MarkupKindMarkdown,
			Value: variableDoc(word.Text, latest),
		}}
	}

	if occurrences := snap.Defs.Label[word.Text]; len(occurrences) > 0 {
		latest := occurrences[len(occurrences)-1]
		return &lsp.Hover{Contents: lsp.MarkupContent{
			Kind: lsp.MarkupKindMarkdown,
			Value: fmt.Sprintf("### label %s\n\nDefined %d time(s), last on line %d",
				word.Text, len(occurrences), latest.Position.Line+1),
		}}
	}

	return nil
}

func markdown(doc *position.Document, match position.Match, value string) *lsp.Hover {
	r := doc.RangeOf(match.Start, match.End)
	return &lsp.Hover{
		Contents: lsp.MarkupContent{Kind: lsp.MarkupKindMarkdown, Value: value},
		Range:    &r,
	}
}

func (p *Provider) argDoc(arg data.Arg) string {
	parts := []string{"### " + arg.Label}
	if arg.Doc != "" {
		parts = append(parts, arg.Doc)
	}
	parts = append(parts, "`"+arg.Detail+"`")
	return strings.Join(parts, "\n\n")
}

func stateDoc(path []string, state *data.State) string {
	kind := state.Type
	if kind == "" {
		kind = "object"
	}
	return strings.Join([]string{
		"### " + path[len(path)-1],
		"`" + kind + "`",
		state.Description,
	}, "\n\n")
}

func variableDoc(name string, tok script.Token) string {
	parts := []string{"### " + name}
	if tok.Desc != "" {
		parts = append(parts, "<hr>", tok.Desc)
	}
	parts = append(parts,
		"<hr>",
		fmt.Sprintf("Position: %d,%d", tok.Position.Line+1, tok.Position.Character+1),
		"```webgal\n"+strings.TrimSpace(tok.Input)+"\n```",
	)
	return strings.Join(parts, "\n\n")
}
