package folding

import (
	"regexp"
	"sort"
	"strings"

	"github.com/xiaoxustudio/webgal-language-tools/pkg/lsp"
)

// DefaultPreview is shown when a label has no name text
const DefaultPreview = "..."

var (
	labelStartPattern = regexp.MustCompile(`(?m)^[ \t]*label:`)
	regionEndPattern  = regexp.MustCompile(`(?m)^[ \t]*(?:end[ \t]*;?[ \t]*\r?$|label:)`)
)

// Range is a foldable label region
type Range struct {
	StartLine int
	EndLine   int
	Preview   string
}

// Scan returns one range per label region spanning more than one line.
// A region runs from "label:" up to the next "end" statement line or
// "label:" line, or to the end of the text.
func Scan(text string) []Range {
	lineStarts := lineStartOffsets(text)

	var ranges []Range
	for _, loc := range labelStartPattern.FindAllStringIndex(text, -1) {
		bodyStart := loc[1]
		end := len(text)

		lineEnd := strings.IndexByte(text[bodyStart:], '\n')
		if lineEnd >= 0 {
			next := bodyStart + lineEnd + 1
			if m := regionEndPattern.FindStringIndex(text[next:]); m != nil {
				end = next + m[0]
			}
		}

		startLine := lineOf(lineStarts, loc[0])
		endLine := lineOf(lineStarts, end)
		if end == lineStarts[endLine] && endLine > 0 {
			endLine--
		}
		if endLine <= startLine {
			continue
		}

		ranges = append(ranges, Range{
			StartLine: startLine,
			EndLine:   endLine,
			Preview:   preview(text[bodyStart:end]),
		})
	}

	return ranges
}

// ToLSP converts ranges to folding ranges
func ToLSP(ranges []Range) []lsp.FoldingRange {
	result := make([]lsp.FoldingRange, 0, len(ranges))
	for _, r := range ranges {
		result = append(result, lsp.FoldingRange{
			StartLine:     r.StartLine,
			EndLine:       r.EndLine,
			Kind:          lsp.FoldingRangeKindRegion,
			CollapsedText: r.Preview,
		})
	}
	return result
}

func preview(body string) string {
	first := body
	if i := strings.IndexByte(body, '\n'); i >= 0 {
		first = body[:i]
	}
	first = strings.TrimSpace(strings.ReplaceAll(first, ";", ""))
	if first == "" {
		return DefaultPreview
	}
	return first
}

// lineStartOffsets returns the byte offset of every line start
func lineStartOffsets(text string) []int {
	starts := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

func lineOf(lineStarts []int, offset int) int {
	return sort.Search(len(lineStarts), func(i int) bool {
		return lineStarts[i] > offset
	}) - 1
}
