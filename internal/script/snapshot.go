package script

import (
	"github.com/xiaoxustudio/webgal-language-tools/internal/position"
)

// Snapshot is the analysis of one document version, shared by the
// editor features. Its pool is never modified after creation; a new
// version gets a new snapshot.
type Snapshot struct {
	URI          string
	Doc          *position.Document
	Lines        []string
	CommandTypes []string
	Defs         *DefinitionMap
}

// NewSnapshot analyzes text into a fresh pool
func NewSnapshot(uri, text string) *Snapshot {
	doc := position.NewDocument(text)
	return newSnapshot(uri, doc, AnalyzeLines(doc.Lines()))
}

func newSnapshot(uri string, doc *position.Document, defs *DefinitionMap) *Snapshot {
	lines := doc.Lines()
	return &Snapshot{
		URI:          uri,
		Doc:          doc,
		Lines:        lines,
		CommandTypes: CommandTypes(lines),
		Defs:         defs,
	}
}

// Line returns line n or ""
func (s *Snapshot) Line(n int) string {
	return s.Doc.Line(n)
}

// CommandAt returns the command type of line n
func (s *Snapshot) CommandAt(n int) string {
	if n < 0 || n >= len(s.CommandTypes) {
		return Unclassified
	}
	return s.CommandTypes[n]
}
