package links

import (
	"path"

	"github.com/xiaoxustudio/webgal-language-tools/internal/data"
	"github.com/xiaoxustudio/webgal-language-tools/internal/logger"
	"github.com/xiaoxustudio/webgal-language-tools/internal/vfs"
	"github.com/xiaoxustudio/webgal-language-tools/pkg/lsp"
)

// Link is a candidate resolved to a file
type Link struct {
	Candidate
	Path string
}

// Resolver turns candidates into file links
type Resolver struct {
	fs   vfs.FileSystem
	data *data.Store
}

// NewResolver creates a resolver over a file system rooted at the game folder
func NewResolver(fs vfs.FileSystem, store *data.Store) *Resolver {
	return &Resolver{fs: fs, data: store}
}

// IsConfig reports whether documentPath is the game/config.txt file
func IsConfig(documentPath string) bool {
	return path.Base(documentPath) == "config.txt" && path.Base(path.Dir(documentPath)) == "game"
}

// Resolve looks every candidate up under <root>/<resource dir>/<text>, falling
// back to a search of the whole root. Unresolved candidates are dropped.
func (r *Resolver) Resolve(documentPath string, candidates []Candidate) []Link {
	root := r.fs.Root()
	config := IsConfig(documentPath)

	var result []Link
	for _, c := range candidates {
		base := root
		if !config {
			base = r.fs.Join(root, r.data.ResourceDir(c.Command))
		}

		target := r.fs.Join(base, c.Text)
		if st, err := r.fs.Stat(target); err != nil || !st.IsFile {
			found, err := r.fs.FindFile(root, c.Text)
			if err != nil {
				logger.Debug("No file for link %q on line %d", c.Text, c.Line)
				continue
			}
			target = found
		}

		result = append(result, Link{Candidate: c, Path: target})
	}
	return result
}

// ToLSP converts resolved links to document links
func ToLSP(resolved []Link) []lsp.DocumentLink {
	result := make([]lsp.DocumentLink, 0, len(resolved))
	for _, l := range resolved {
		result = append(result, lsp.DocumentLink{
			Range: lsp.Range{
				Start: lsp.Position{Line: l.Line, Character: l.Start},
				End:   lsp.Position{Line: l.Line, Character: l.End},
			},
			Target:  vfs.PathToURI(l.Path),
			Tooltip: l.Path,
		})
	}
	return result
}
